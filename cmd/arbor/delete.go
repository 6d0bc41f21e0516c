// Delete command removes a todo under one of three policies: safe
// (default, refuses when children exist), cascade (removes the whole
// subtree), or orphan (promotes children to the deleted todo's parent).
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	deleteCascade bool
	deleteOrphan  bool
)

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a todo",
	Long: `Delete removes a todo. By default it refuses when the todo has
children; pass --cascade to remove the whole subtree or --orphan to
promote the children to the deleted todo's parent.

Example:
  arbor delete 0190c3a2-...
  arbor delete 0190c3a2-... --cascade
  arbor delete 0190c3a2-... --orphan`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func init() {
	deleteCmd.Flags().BoolVar(&deleteCascade, "cascade", false, "delete the todo and its entire subtree")
	deleteCmd.Flags().BoolVar(&deleteOrphan, "orphan", false, "delete the todo and promote its children")
	deleteCmd.MarkFlagsMutuallyExclusive("cascade", "orphan")
}

func runDelete(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	id := args[0]
	switch {
	case deleteCascade:
		count, err := store.DeleteCascade(id)
		if err != nil {
			return fmt.Errorf("cascade delete: %w", err)
		}
		fmt.Printf("Deleted %d todo(s)\n", count)

	case deleteOrphan:
		_, promoted, err := store.DeleteOrphan(id)
		if err != nil {
			return fmt.Errorf("orphan delete: %w", err)
		}
		fmt.Printf("Deleted %s, promoted %d child(ren)\n", id, len(promoted))

	default:
		if _, err := store.DeleteSafe(id); err != nil {
			return fmt.Errorf("delete: %w", err)
		}
		fmt.Printf("Deleted %s\n", id)
	}
	return nil
}
