package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/stemhq/arbor/pkg/types"
)

// timeFormat is the column encoding for timestamps. Nanosecond
// precision keeps hydrated records byte-equal to what was written.
const timeFormat = time.RFC3339Nano

// Get retrieves the todo with the given ID.
// Returns ErrInvalidID if id is empty, ErrNotFound if absent.
func (b *Backend) Get(id string) (*types.Todo, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.open {
		return nil, types.ErrStoreClosed
	}

	row := b.db.QueryRow(
		"SELECT todo_id, title, description, parent_id, created_at, updated_at FROM todos WHERE todo_id = ?",
		id)
	return scanTodo(row)
}

// Put inserts or overwrites the todo keyed by its ID, then persists
// todos.jsonl atomically before returning.
func (b *Backend) Put(t *types.Todo) error {
	if t.TodoID == "" {
		return types.ErrInvalidID
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.open {
		return types.ErrStoreClosed
	}

	if err := b.exec(upsertTodoSQL, upsertArgs(t)...); err != nil {
		return fmt.Errorf("upserting todo: %w", err)
	}
	return b.persistTodosJSONL()
}

// Delete removes the todo with the given ID. Deleting an absent ID is a
// no-op.
func (b *Backend) Delete(id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.open {
		return types.ErrStoreClosed
	}

	if err := b.exec("DELETE FROM todos WHERE todo_id = ?", id); err != nil {
		return fmt.Errorf("deleting todo: %w", err)
	}
	return b.persistTodosJSONL()
}

// Apply executes puts and deletes in one transaction: either every
// mutation commits or none does. Deletes run first so a record that is
// both deleted and re-put (never the case today) would survive.
func (b *Backend) Apply(puts []*types.Todo, deletes []string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.open {
		return types.ErrStoreClosed
	}

	tx, err := b.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: beginning transaction: %v", types.ErrStorageUnavailable, err)
	}
	defer tx.Rollback()

	for _, id := range deletes {
		if id == "" {
			return types.ErrInvalidID
		}
		if _, err := tx.Exec("DELETE FROM todos WHERE todo_id = ?", id); err != nil {
			return fmt.Errorf("%w: deleting todo %s: %v", types.ErrStorageUnavailable, id, err)
		}
	}
	for _, t := range puts {
		if t.TodoID == "" {
			return types.ErrInvalidID
		}
		if _, err := tx.Exec(upsertTodoSQL, upsertArgs(t)...); err != nil {
			return fmt.Errorf("%w: upserting todo %s: %v", types.ErrStorageUnavailable, t.TodoID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: committing transaction: %v", types.ErrStorageUnavailable, err)
	}
	return b.persistTodosJSONL()
}

// Scan returns every todo in creation order. Used to rebuild and verify
// the derived indexes.
func (b *Backend) Scan() ([]*types.Todo, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.open {
		return nil, types.ErrStoreClosed
	}

	rows, err := b.db.Query(
		"SELECT todo_id, title, description, parent_id, created_at, updated_at FROM todos ORDER BY created_at, todo_id")
	if err != nil {
		return nil, fmt.Errorf("%w: scanning todos: %v", types.ErrStorageUnavailable, err)
	}
	defer rows.Close()

	var todos []*types.Todo
	for rows.Next() {
		t, err := scanTodoFromRows(rows)
		if err != nil {
			return nil, err
		}
		todos = append(todos, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating todos: %v", types.ErrStorageUnavailable, err)
	}
	return todos, nil
}

const upsertTodoSQL = `
	INSERT INTO todos (todo_id, title, description, parent_id, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(todo_id) DO UPDATE SET
		title = excluded.title,
		description = excluded.description,
		parent_id = excluded.parent_id,
		updated_at = excluded.updated_at`

func upsertArgs(t *types.Todo) []any {
	var desc, parent sql.NullString
	if t.Description != "" {
		desc = sql.NullString{String: t.Description, Valid: true}
	}
	if t.ParentID != "" {
		parent = sql.NullString{String: t.ParentID, Valid: true}
	}
	return []any{
		t.TodoID, t.Title, desc, parent,
		t.CreatedAt.UTC().Format(timeFormat),
		t.UpdatedAt.UTC().Format(timeFormat),
	}
}

// exec runs a single statement, wrapping failures as storage errors.
func (b *Backend) exec(query string, args ...any) error {
	if _, err := b.db.Exec(query, args...); err != nil {
		return fmt.Errorf("%w: %v", types.ErrStorageUnavailable, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTodo(row *sql.Row) (*types.Todo, error) {
	t, err := hydrateTodo(row)
	if err == sql.ErrNoRows {
		return nil, types.ErrNotFound
	}
	return t, err
}

func scanTodoFromRows(rows *sql.Rows) (*types.Todo, error) {
	return hydrateTodo(rows)
}

func hydrateTodo(s rowScanner) (*types.Todo, error) {
	var t types.Todo
	var desc, parent sql.NullString
	var createdAt, updatedAt string
	err := s.Scan(&t.TodoID, &t.Title, &desc, &parent, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scanning todo: %w", err)
	}
	if desc.Valid {
		t.Description = desc.String
	}
	if parent.Valid {
		t.ParentID = parent.String
	}
	t.CreatedAt, err = time.Parse(timeFormat, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing todo created_at: %w", err)
	}
	t.UpdatedAt, err = time.Parse(timeFormat, updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing todo updated_at: %w", err)
	}
	return &t, nil
}
