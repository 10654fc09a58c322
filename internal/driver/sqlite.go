package driver

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/agenthands/orgchart/internal/core/model"
)

// SQLiteClient implements GraphClient over a SQLite export of the organisational graph.
type SQLiteClient struct {
	db *sql.DB
}

// OpenSQLite opens an existing export read-only.
func OpenSQLite(ctx context.Context, dbPath string) (*SQLiteClient, error) {
	db, err := sql.Open("sqlite", readOnlyDSN(dbPath))
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to sqlite: %w", err)
	}

	return &SQLiteClient{db: db}, nil
}

// EnsureSchema creates the export tables in db. Used by export tooling and tests.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range allSchemaStatements() {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}
	return nil
}

// NewSQLiteClient wraps an already opened database.
func NewSQLiteClient(db *sql.DB) *SQLiteClient {
	return &SQLiteClient{db: db}
}

func (c *SQLiteClient) Close(ctx context.Context) error {
	return c.db.Close()
}

func (c *SQLiteClient) GetEntities(ctx context.Context, id string) ([]model.Entity, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT id, name, kind_major, kind_minor
		FROM entities
		WHERE id = ?
	`, id)
	if err != nil {
		return nil, fmt.Errorf("querying entity %s: %w", id, err)
	}
	defer rows.Close()

	var entities []model.Entity
	for rows.Next() {
		var e model.Entity
		if err := rows.Scan(&e.ID, &e.Name, &e.Kind.Major, &e.Kind.Minor); err != nil {
			return nil, fmt.Errorf("scanning entity: %w", err)
		}
		entities = append(entities, e)
	}
	return entities, rows.Err()
}

func (c *SQLiteClient) FetchRelations(ctx context.Context, entityID string, filter model.RelationFilter) ([]model.Relation, error) {
	direction := filter.EffectiveDirection()

	// Outgoing relations start at the entity, incoming ones end at it.
	self, other := "source_id", "target_id"
	if direction == model.Incoming {
		self, other = "target_id", "source_id"
	}

	query := fmt.Sprintf(`
		SELECT id, name, %s, start_time, end_time
		FROM relations
		WHERE %s = ? AND name = ?
	`, other, self)
	args := []any{entityID, filter.Name}

	if filter.ActiveAt != nil {
		at := filter.ActiveAt.UTC().Format(time.RFC3339)
		// julianday compares instants, so rows stored with an offset filter correctly.
		query += ` AND julianday(start_time) <= julianday(?) AND (end_time IS NULL OR julianday(end_time) > julianday(?))`
		args = append(args, at, at)
	}
	query += ` ORDER BY julianday(start_time), id`

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying %s relations of %s: %w", filter.Name, entityID, err)
	}
	defer rows.Close()

	var relations []model.Relation
	for rows.Next() {
		var (
			rel      model.Relation
			startStr string
			endStr   sql.NullString
		)
		if err := rows.Scan(&rel.ID, &rel.Name, &rel.RelatedEntityID, &startStr, &endStr); err != nil {
			return nil, fmt.Errorf("scanning relation: %w", err)
		}
		if rel.StartTime, err = parseTime(startStr); err != nil {
			return nil, fmt.Errorf("relation %s start_time: %w", rel.ID, err)
		}
		if endStr.Valid && endStr.String != "" {
			end, err := parseTime(endStr.String)
			if err != nil {
				return nil, fmt.Errorf("relation %s end_time: %w", rel.ID, err)
			}
			rel.EndTime = &end
		}
		rel.Direction = direction
		relations = append(relations, rel)
	}
	return relations, rows.Err()
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
