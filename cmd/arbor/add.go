// Add command creates a new todo, optionally under a parent.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	addDescription string
	addParent      string
)

var addCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Create a new todo",
	Long: `Add creates a new todo with the given title.

Example:
  arbor add "Plan the release"
  arbor add "Write changelog" --parent 0190c3a2-...
  arbor add "Ship it" --description "Tag and push" --json`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

func init() {
	addCmd.Flags().StringVar(&addDescription, "description", "", "optional description")
	addCmd.Flags().StringVar(&addParent, "parent", "", "parent todo ID (omit for a root todo)")
}

func runAdd(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	todo, err := store.Add(args[0], addDescription, addParent)
	if err != nil {
		return fmt.Errorf("add todo: %w", err)
	}
	return printTodo(todo, nil)
}
