// Shared helpers for arbor CLI commands.
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/stemhq/arbor/pkg/arbor"
	"github.com/stemhq/arbor/pkg/types"
)

// openStore resolves the data directory and opens the store. The caller
// must defer store.Close().
func openStore() (types.Store, error) {
	dataDir, err := resolveDataDir()
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}

	cfg := types.Config{
		Backend: types.BackendSQLite,
		DataDir: dataDir,
	}

	store, err := arbor.Open(cfg, newLogger())
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return store, nil
}

// newLogger builds the CLI logger: debug level to stderr with
// --verbose, warnings only otherwise.
func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if flagVerbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// todoJSON is the JSON output shape for a todo.
type todoJSON struct {
	TodoID      string   `json:"todo_id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	ParentID    string   `json:"parent_id,omitempty"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
	Children    []string `json:"children,omitempty"`
}

func toTodoJSON(t *types.Todo, children []string) todoJSON {
	return todoJSON{
		TodoID:      t.TodoID,
		Title:       t.Title,
		Description: t.Description,
		ParentID:    t.ParentID,
		CreatedAt:   t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   t.UpdatedAt.Format(time.RFC3339),
		Children:    children,
	}
}

// printTodo writes one todo as JSON or human-readable text depending on
// the --json flag.
func printTodo(t *types.Todo, children []string) error {
	if flagJSON {
		data, err := json.MarshalIndent(toTodoJSON(t, children), "", "  ")
		if err != nil {
			return fmt.Errorf("marshal todo: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("%s  %s\n", t.TodoID, t.Title)
	if t.Description != "" {
		fmt.Printf("    %s\n", t.Description)
	}
	if t.ParentID != "" {
		fmt.Printf("    parent: %s\n", t.ParentID)
	}
	fmt.Printf("    created: %s  updated: %s\n",
		t.CreatedAt.Format(time.RFC3339), t.UpdatedAt.Format(time.RFC3339))
	for _, c := range children {
		fmt.Printf("    child: %s\n", c)
	}
	return nil
}

// printTodos writes a list of todos as a JSON array or one text line
// per todo.
func printTodos(todos []*types.Todo) error {
	if flagJSON {
		out := make([]todoJSON, 0, len(todos))
		for _, t := range todos {
			out = append(out, toTodoJSON(t, nil))
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal todos: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	for _, t := range todos {
		fmt.Printf("%s  %s\n", t.TodoID, t.Title)
	}
	return nil
}
