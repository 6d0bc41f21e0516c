// Get command retrieves a single todo by ID.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var getChildren bool

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Retrieve a todo by ID",
	Long: `Get retrieves a single todo.

Example:
  arbor get 0190c3a2-...
  arbor get 0190c3a2-... --children --json`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

func init() {
	getCmd.Flags().BoolVar(&getChildren, "children", false, "include direct child IDs")
}

func runGet(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if getChildren {
		todo, children, err := store.GetWithChildren(args[0])
		if err != nil {
			return fmt.Errorf("get todo: %w", err)
		}
		return printTodo(todo, children)
	}

	todo, err := store.Get(args[0])
	if err != nil {
		return fmt.Errorf("get todo: %w", err)
	}
	return printTodo(todo, nil)
}
