// Package engine implements the hierarchy engine: parent-existence
// validation, child enumeration, recursive descendant traversal, the
// three deletion policies, and the single-writer concurrency model that
// keeps the record store and the derived indexes committed together.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/stemhq/arbor/internal/index"
	"github.com/stemhq/arbor/internal/sqlite"
	"github.com/stemhq/arbor/pkg/types"
)

// Compile-time interface check: Engine must implement Store.
var _ types.Store = (*Engine)(nil)

// Engine coordinates the record store and the index layer. Mutating
// operations hold the write lock across the record transaction and the
// index write-through, so no reader ever observes a record whose
// indexes reflect an in-progress write.
type Engine struct {
	mu     sync.RWMutex
	closed bool
	store  *sqlite.Backend
	idx    *index.Indexes
	logger *slog.Logger
}

// New builds an engine over an opened backend, rebuilding the derived
// indexes from a full record scan. A nil logger falls back to
// slog.Default().
func New(store *sqlite.Backend, logger *slog.Logger) (*Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}
	todos, err := store.Scan()
	if err != nil {
		return nil, fmt.Errorf("rebuilding indexes: %w", err)
	}
	idx := index.New()
	idx.Rebuild(todos)
	logger.Debug("indexes rebuilt", "todos", len(todos))
	return &Engine{store: store, idx: idx, logger: logger}, nil
}

// newID generates a UUID v7 string, falling back to v4 if v7 generation
// fails.
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// Add creates a todo under the optional parent. Validation and the
// parent-existence check run before anything is written, so a failed
// Add has no partial effect.
func (e *Engine) Add(title, description, parentID string) (*types.Todo, error) {
	t := &types.Todo{
		Title:       title,
		Description: description,
		ParentID:    parentID,
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, types.ErrStoreClosed
	}

	if parentID != "" {
		if _, err := e.store.Get(parentID); err != nil {
			if errors.Is(err, types.ErrNotFound) {
				return nil, fmt.Errorf("%w: %s", types.ErrParentNotFound, parentID)
			}
			return nil, err
		}
	}

	now := time.Now().UTC()
	t.TodoID = newID()
	t.CreatedAt = now
	t.UpdatedAt = now

	if err := e.store.Put(t); err != nil {
		return nil, err
	}
	e.idx.Insert(t)
	return t.Clone(), nil
}

// Get retrieves a todo by ID.
func (e *Engine) Get(id string) (*types.Todo, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return nil, types.ErrStoreClosed
	}
	return e.store.Get(id)
}

// GetWithChildren retrieves a todo and the IDs of its direct children.
func (e *Engine) GetWithChildren(id string) (*types.Todo, []string, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return nil, nil, types.ErrStoreClosed
	}
	t, err := e.store.Get(id)
	if err != nil {
		return nil, nil, err
	}
	return t, e.idx.Parent.LookupExact(id), nil
}

// Update changes the title and/or description of a todo and refreshes
// UpdatedAt. ParentID and CreatedAt are immutable; the only index
// touched is by-parent-and-title, and only when the title changes.
func (e *Engine) Update(id string, title, description *string) (*types.Todo, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, types.ErrStoreClosed
	}

	old, err := e.store.Get(id)
	if err != nil {
		return nil, err
	}

	updated := old.Clone()
	if title != nil {
		updated.Title = *title
	}
	if description != nil {
		updated.Description = *description
	}
	if err := updated.Validate(); err != nil {
		return nil, err
	}
	updated.UpdatedAt = time.Now().UTC()

	if err := e.store.Put(updated); err != nil {
		return nil, err
	}
	if updated.Title != old.Title {
		e.idx.Title.Remove(old.ParentID, old.Title, old.TodoID)
		e.idx.Title.Insert(updated.ParentID, updated.Title, updated.TodoID)
	}
	return updated.Clone(), nil
}

// GetChildren returns the direct children of parentID in creation
// order. An empty parentID enumerates roots. Served from the by-parent
// index: cost is O(k) in the number of children.
func (e *Engine) GetChildren(parentID string) ([]*types.Todo, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return nil, types.ErrStoreClosed
	}
	return e.hydrateLocked(e.idx.Parent.LookupExact(parentID))
}

// ListRoots returns all root todos in creation order.
func (e *Engine) ListRoots() ([]*types.Todo, error) {
	return e.GetChildren("")
}

// ListCreatedBetween returns todos with lo <= CreatedAt <= hi in
// creation order, served from the by-created-time index.
func (e *Engine) ListCreatedBetween(lo, hi time.Time) ([]*types.Todo, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return nil, types.ErrStoreClosed
	}
	return e.hydrateLocked(e.idx.Created.LookupRange(lo, hi))
}

// FindChildrenByTitle returns parentID's direct children whose title
// starts with prefix, in title order, served from the composite index.
func (e *Engine) FindChildrenByTitle(parentID, prefix string) ([]*types.Todo, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return nil, types.ErrStoreClosed
	}
	return e.hydrateLocked(e.idx.Title.LookupPrefix(parentID, prefix))
}

// DeleteCascade removes the todo and its entire subtree in one record
// store transaction, returning the number of removed records.
func (e *Engine) DeleteCascade(id string) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return 0, types.ErrStoreClosed
	}

	target, err := e.store.Get(id)
	if err != nil {
		return 0, err
	}
	descendants, err := e.descendantsLocked(id)
	if err != nil {
		return 0, err
	}

	deletes := make([]string, 0, len(descendants)+1)
	deletes = append(deletes, id)
	for _, d := range descendants {
		deletes = append(deletes, d.TodoID)
	}
	if err := e.store.Apply(nil, deletes); err != nil {
		return 0, err
	}

	e.idx.Remove(target)
	for _, d := range descendants {
		e.idx.Remove(d)
	}
	e.logger.Debug("cascade delete", "todo", id, "removed", len(deletes))
	return len(deletes), nil
}

// DeleteOrphan removes only the todo and re-parents each direct child
// to the todo's own parent; children of a root become roots. The
// deletion and every re-parented record commit in one transaction, and
// the by-parent index entries move in the same critical section.
func (e *Engine) DeleteOrphan(id string) (*types.Todo, []string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, nil, types.ErrStoreClosed
	}

	target, err := e.store.Get(id)
	if err != nil {
		return nil, nil, err
	}

	childIDs := e.idx.Parent.LookupExact(id)
	children, err := e.hydrateLocked(childIDs)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now().UTC()
	puts := make([]*types.Todo, 0, len(children))
	for _, c := range children {
		promoted := c.Clone()
		promoted.ParentID = target.ParentID
		promoted.UpdatedAt = now
		puts = append(puts, promoted)
	}
	if err := e.store.Apply(puts, []string{id}); err != nil {
		return nil, nil, err
	}

	e.idx.Remove(target)
	for _, c := range children {
		e.idx.Parent.Remove(id, c.TodoID)
		e.idx.Parent.Insert(target.ParentID, c.TodoID)
		e.idx.Title.Remove(id, c.Title, c.TodoID)
		e.idx.Title.Insert(target.ParentID, c.Title, c.TodoID)
	}
	e.logger.Debug("orphan delete", "todo", id, "promoted", len(childIDs))
	return target, childIDs, nil
}

// DeleteSafe removes the todo only if it has no children.
func (e *Engine) DeleteSafe(id string) (*types.Todo, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, types.ErrStoreClosed
	}

	target, err := e.store.Get(id)
	if err != nil {
		return nil, err
	}
	if n := len(e.idx.Parent.LookupExact(id)); n > 0 {
		return nil, fmt.Errorf("%w: %d direct children", types.ErrHasChildren, n)
	}
	if err := e.store.Delete(id); err != nil {
		return nil, err
	}
	e.idx.Remove(target)
	return target, nil
}

// VerifyIndexes checks the derived indexes against a full record scan,
// returning ErrIntegrity on any divergence.
func (e *Engine) VerifyIndexes() error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return types.ErrStoreClosed
	}
	todos, err := e.store.Scan()
	if err != nil {
		return err
	}
	if err := e.idx.Verify(todos); err != nil {
		return fmt.Errorf("%w: %v", types.ErrIntegrity, err)
	}
	return nil
}

// Close releases backend resources. Idempotent.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	if err := e.store.Close(); err != nil {
		return err
	}
	e.closed = true
	return nil
}

// hydrateLocked loads the records for ids from the store. An index
// entry pointing at a missing record is a divergence and surfaces as
// ErrIntegrity. The caller must hold e.mu.
func (e *Engine) hydrateLocked(ids []string) ([]*types.Todo, error) {
	todos := make([]*types.Todo, 0, len(ids))
	for _, id := range ids {
		t, err := e.store.Get(id)
		if errors.Is(err, types.ErrNotFound) {
			return nil, fmt.Errorf("%w: index references missing todo %s", types.ErrIntegrity, id)
		}
		if err != nil {
			return nil, err
		}
		todos = append(todos, t)
	}
	return todos, nil
}
