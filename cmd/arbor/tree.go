// Tree command streams the full subtree under a todo.
package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stemhq/arbor/pkg/types"
)

var treeCmd = &cobra.Command{
	Use:   "tree <id>",
	Short: "List every descendant of a todo",
	Long: `Tree walks the subtree under the given todo breadth-first and
prints every descendant.

Example:
  arbor tree 0190c3a2-...
  arbor tree 0190c3a2-... --json`,
	Args: cobra.ExactArgs(1),
	RunE: runTree,
}

func runTree(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	// Surface NotFound for the starting todo before walking.
	if _, err := store.Get(args[0]); err != nil {
		return fmt.Errorf("get todo: %w", err)
	}

	var collected []*types.Todo
	for todo, err := range store.GetDescendantsRecursive(args[0]) {
		if err != nil {
			return fmt.Errorf("walk subtree: %w", err)
		}
		if flagJSON {
			collected = append(collected, todo)
			continue
		}
		fmt.Printf("%s  %s  (parent: %s)\n", todo.TodoID, todo.Title, todo.ParentID)
	}

	if flagJSON {
		out := make([]todoJSON, 0, len(collected))
		for _, t := range collected {
			out = append(out, toTodoJSON(t, nil))
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal subtree: %w", err)
		}
		fmt.Println(string(data))
	}
	return nil
}
