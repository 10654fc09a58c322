package driver

// Entities are (:Entity {id, name, kind_major, kind_minor}). Relationship types are the
// relation tags (AS_MINISTER, RENAMED_TO, ...) and carry {id, start_time, end_time}
// as RFC3339 strings. They are compared through datetime() so offsets other than Z
// still order by instant.
const (
	GetEntityQuery = `
		MATCH (e:Entity {id: $id})
		RETURN e.id AS id, e.name AS name, e.kind_major AS kind_major, e.kind_minor AS kind_minor
	`

	FetchOutgoingRelationsQuery = `
		MATCH (e:Entity {id: $id})-[r]->(other:Entity)
		WHERE type(r) = $name
		  AND ($active_at IS NULL OR (datetime(r.start_time) <= datetime($active_at) AND (r.end_time IS NULL OR datetime(r.end_time) > datetime($active_at))))
		RETURN r.id AS id, type(r) AS name, other.id AS related_id, r.start_time AS start_time, r.end_time AS end_time
		ORDER BY datetime(r.start_time)
	`

	FetchIncomingRelationsQuery = `
		MATCH (e:Entity {id: $id})<-[r]-(other:Entity)
		WHERE type(r) = $name
		  AND ($active_at IS NULL OR (datetime(r.start_time) <= datetime($active_at) AND (r.end_time IS NULL OR datetime(r.end_time) > datetime($active_at))))
		RETURN r.id AS id, type(r) AS name, other.id AS related_id, r.start_time AS start_time, r.end_time AS end_time
		ORDER BY datetime(r.start_time)
	`
)

var indexQueries = []string{
	"CREATE INDEX ON :Entity(id);",
	"CREATE INDEX ON :Entity(kind_minor);",
}
