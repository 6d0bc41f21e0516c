// List command enumerates todos: roots by default, children of a
// parent, title-prefix matches, or a creation-time window.
package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	listParent      string
	listTitlePrefix string
	listSince       string
	listUntil       string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List todos",
	Long: `List enumerates todos. With no flags it lists root todos.

Example:
  arbor list
  arbor list --parent 0190c3a2-...
  arbor list --parent 0190c3a2-... --title "Fix"
  arbor list --since 2026-08-01T00:00:00Z --until 2026-08-31T23:59:59Z`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVar(&listParent, "parent", "", "list direct children of this todo ID")
	listCmd.Flags().StringVar(&listTitlePrefix, "title", "", "filter children by title prefix")
	listCmd.Flags().StringVar(&listSince, "since", "", "list todos created at or after this RFC3339 time")
	listCmd.Flags().StringVar(&listUntil, "until", "", "list todos created at or before this RFC3339 time")
}

func runList(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	switch {
	case listSince != "" || listUntil != "":
		lo, hi, err := parseWindow(listSince, listUntil)
		if err != nil {
			return err
		}
		todos, err := store.ListCreatedBetween(lo, hi)
		if err != nil {
			return fmt.Errorf("list todos: %w", err)
		}
		return printTodos(todos)

	case listTitlePrefix != "":
		todos, err := store.FindChildrenByTitle(listParent, listTitlePrefix)
		if err != nil {
			return fmt.Errorf("list todos: %w", err)
		}
		return printTodos(todos)

	case listParent != "":
		todos, err := store.GetChildren(listParent)
		if err != nil {
			return fmt.Errorf("list todos: %w", err)
		}
		return printTodos(todos)

	default:
		todos, err := store.ListRoots()
		if err != nil {
			return fmt.Errorf("list todos: %w", err)
		}
		return printTodos(todos)
	}
}

// parseWindow parses the --since/--until flags, defaulting an omitted
// bound to the open end of the range.
func parseWindow(since, until string) (time.Time, time.Time, error) {
	lo := time.Time{}
	hi := time.Now().UTC()
	if since != "" {
		t, err := time.Parse(time.RFC3339, since)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("parse --since: %w", err)
		}
		lo = t
	}
	if until != "" {
		t, err := time.Parse(time.RFC3339, until)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("parse --until: %w", err)
		}
		hi = t
	}
	return lo, hi, nil
}
