// Update command changes the title and/or description of a todo.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	updateTitle       string
	updateDescription string
)

var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a todo's title or description",
	Long: `Update changes the title and/or description of a todo. The
parent and creation time are immutable.

Example:
  arbor update 0190c3a2-... --title "New title"
  arbor update 0190c3a2-... --description "More detail"`,
	Args: cobra.ExactArgs(1),
	RunE: runUpdate,
}

func init() {
	updateCmd.Flags().StringVar(&updateTitle, "title", "", "new title")
	updateCmd.Flags().StringVar(&updateDescription, "description", "", "new description")
}

func runUpdate(cmd *cobra.Command, args []string) error {
	var title, description *string
	if cmd.Flags().Changed("title") {
		title = &updateTitle
	}
	if cmd.Flags().Changed("description") {
		description = &updateDescription
	}
	if title == nil && description == nil {
		return fmt.Errorf("nothing to update: pass --title and/or --description")
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	todo, err := store.Update(args[0], title, description)
	if err != nil {
		return fmt.Errorf("update todo: %w", err)
	}
	return printTodo(todo, nil)
}
