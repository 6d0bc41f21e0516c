package sqlite

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/stemhq/arbor/pkg/types"
)

// todosFileName is the JSONL source of truth inside the data directory.
const todosFileName = "todos.jsonl"

// todoRecord matches the JSONL line format for todos.
type todoRecord struct {
	TodoID      string `json:"todo_id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	ParentID    string `json:"parent_id,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// readJSONL reads a JSONL file and returns each non-empty, parseable
// line as a json.RawMessage. Malformed lines are skipped. A missing
// file yields no records.
func readJSONL(path string) ([]json.RawMessage, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var records []json.RawMessage
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 || !json.Valid(line) {
			continue
		}
		cp := make([]byte, len(line))
		copy(cp, line)
		records = append(records, json.RawMessage(cp))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning %s: %w", path, err)
	}
	return records, nil
}

// writeJSONL atomically writes records to a JSONL file using the
// temp-file, fsync, rename pattern.
func writeJSONL(path string, records []json.RawMessage) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".jsonl-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	w := bufio.NewWriter(tmp)
	for _, rec := range records {
		if _, err := w.Write(rec); err != nil {
			tmp.Close()
			os.Remove(tmpName)
			return fmt.Errorf("writing record: %w", err)
		}
		if err := w.WriteByte('\n'); err != nil {
			tmp.Close()
			os.Remove(tmpName)
			return fmt.Errorf("writing newline: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("flushing buffer: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// persistTodosJSONL reads all todos from SQLite and writes them to
// todos.jsonl atomically. The caller must hold b.mu.
func (b *Backend) persistTodosJSONL() error {
	rows, err := b.db.Query(
		"SELECT todo_id, title, description, parent_id, created_at, updated_at FROM todos ORDER BY created_at, todo_id")
	if err != nil {
		return fmt.Errorf("%w: reading todos for JSONL: %v", types.ErrStorageUnavailable, err)
	}
	defer rows.Close()

	var records []json.RawMessage
	for rows.Next() {
		t, err := scanTodoFromRows(rows)
		if err != nil {
			return fmt.Errorf("scanning todo for JSONL: %w", err)
		}
		rec := todoRecord{
			TodoID:      t.TodoID,
			Title:       t.Title,
			Description: t.Description,
			ParentID:    t.ParentID,
			CreatedAt:   t.CreatedAt.Format(timeFormat),
			UpdatedAt:   t.UpdatedAt.Format(timeFormat),
		}
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshaling todo for JSONL: %w", err)
		}
		records = append(records, data)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: iterating todos for JSONL: %v", types.ErrStorageUnavailable, err)
	}
	return writeJSONL(filepath.Join(b.dataDir, todosFileName), records)
}

// loadTodosJSONL reads todos.jsonl into the fresh SQLite database.
// The caller must hold b.mu.
func (b *Backend) loadTodosJSONL() error {
	records, err := readJSONL(filepath.Join(b.dataDir, todosFileName))
	if err != nil {
		return err
	}
	for _, raw := range records {
		var rec todoRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			// Skip lines that parse as JSON but not as todo records.
			continue
		}
		if rec.TodoID == "" {
			continue
		}
		var desc, parent any
		if rec.Description != "" {
			desc = rec.Description
		}
		if rec.ParentID != "" {
			parent = rec.ParentID
		}
		_, err := b.db.Exec(
			"INSERT OR REPLACE INTO todos (todo_id, title, description, parent_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
			rec.TodoID, rec.Title, desc, parent, rec.CreatedAt, rec.UpdatedAt)
		if err != nil {
			return fmt.Errorf("%w: loading todo %s: %v", types.ErrStorageUnavailable, rec.TodoID, err)
		}
	}
	return nil
}
