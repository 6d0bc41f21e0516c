// Package sqlite implements the durable record store for Arbor. SQLite
// is the query engine; todos.jsonl is the source of truth, reloaded
// into a fresh database on every Open. The derived index structures in
// internal/index are rebuilt from a full scan of this store.
package sqlite

// Schema DDL. The secondary SQL indexes mirror the logical schema of
// the persisted layout; the authoritative lookup structures live in
// internal/index.
const (
	createTodos = `CREATE TABLE todos (
    todo_id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT,
    parent_id TEXT,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	createIdxParent = `CREATE INDEX idx_parent_id ON todos(parent_id);`

	createIdxCreated = `CREATE INDEX idx_created_at ON todos(created_at);`

	createIdxParentTitle = `CREATE INDEX idx_parent_title ON todos(parent_id, title);`
)

// schemaStatements lists the DDL executed on Open, in order.
var schemaStatements = []string{
	createTodos,
	createIdxParent,
	createIdxCreated,
	createIdxParentTitle,
}
