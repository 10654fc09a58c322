package driver

// Export layout of the organisational graph. Timestamps are RFC3339 UTC text.

const schemaEntities = `
CREATE TABLE IF NOT EXISTS entities (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    kind_major TEXT NOT NULL DEFAULT '',
    kind_minor TEXT NOT NULL DEFAULT ''
)`

const schemaRelations = `
CREATE TABLE IF NOT EXISTS relations (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    source_id TEXT NOT NULL,
    target_id TEXT NOT NULL,
    start_time TEXT NOT NULL,
    end_time TEXT
)`

const indexRelationsSource = `CREATE INDEX IF NOT EXISTS idx_relations_source ON relations(source_id, name)`

const indexRelationsTarget = `CREATE INDEX IF NOT EXISTS idx_relations_target ON relations(target_id, name)`

func allSchemaStatements() []string {
	return []string{
		schemaEntities,
		schemaRelations,
		indexRelationsSource,
		indexRelationsTarget,
	}
}

// readOnlyDSN applies the pragmas on every pooled connection, not just the first one.
func readOnlyDSN(path string) string {
	return "file:" + path + "?mode=ro&_pragma=busy_timeout(5000)&_pragma=query_only(1)"
}
