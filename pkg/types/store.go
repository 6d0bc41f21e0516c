package types

import (
	"iter"
	"time"
)

// Store is the stable operation surface consumed by request handlers
// (the CLI in this repository). All mutating operations either fully
// succeed or leave the tree unchanged; all reads observe a consistent
// snapshot of the tree.
type Store interface {
	// Add creates a todo. parentID may be empty for a root todo;
	// otherwise the referenced todo must exist, or ErrParentNotFound is
	// returned and nothing is written. Returns the created record with
	// CreatedAt == UpdatedAt.
	Add(title, description, parentID string) (*Todo, error)

	// Get retrieves a todo by ID. Returns ErrNotFound if absent.
	Get(id string) (*Todo, error)

	// GetWithChildren retrieves a todo and the IDs of its direct
	// children. Returns ErrNotFound if the todo is absent.
	GetWithChildren(id string) (*Todo, []string, error)

	// Update changes the title and/or description of a todo and
	// refreshes UpdatedAt. A nil field is left untouched. ParentID and
	// CreatedAt are immutable. Returns ErrNotFound if the todo is absent.
	Update(id string, title, description *string) (*Todo, error)

	// GetChildren returns the direct children of parentID in creation
	// order. An empty parentID enumerates root todos. An unknown
	// parentID yields an empty slice: children are served purely from
	// the by-parent index, without scanning unrelated records.
	GetChildren(parentID string) ([]*Todo, error)

	// GetDescendantsRecursive returns a lazy, finite, non-restartable
	// sequence of every transitive descendant of id, in breadth-first
	// visitation order. Consumers may stop early without paying for the
	// remainder. A cycle or dangling index entry encountered during
	// traversal yields ErrIntegrity and ends the sequence.
	GetDescendantsRecursive(id string) iter.Seq2[*Todo, error]

	// DeleteCascade removes the todo and its entire subtree as a single
	// atomic operation, returning the number of removed records.
	// Returns ErrNotFound if the todo is absent.
	DeleteCascade(id string) (int, error)

	// DeleteOrphan removes only the todo, re-parenting each direct
	// child to the todo's own parent (children of a root become roots).
	// Returns the removed record and the re-parented child IDs.
	DeleteOrphan(id string) (*Todo, []string, error)

	// DeleteSafe removes the todo only if it has no children; otherwise
	// it fails with ErrHasChildren. Returns the removed record.
	DeleteSafe(id string) (*Todo, error)

	// ListRoots returns all root todos in creation order.
	ListRoots() ([]*Todo, error)

	// ListCreatedBetween returns todos with lo <= CreatedAt <= hi in
	// creation order, served from the by-created-time index.
	ListCreatedBetween(lo, hi time.Time) ([]*Todo, error)

	// FindChildrenByTitle returns the direct children of parentID whose
	// title starts with prefix (an empty prefix matches all children),
	// served from the by-parent-and-title index. An empty parentID
	// searches root todos.
	FindChildrenByTitle(parentID, prefix string) ([]*Todo, error)

	// Close releases backend resources. Close is idempotent; after
	// Close, operations return ErrStoreClosed.
	Close() error
}
