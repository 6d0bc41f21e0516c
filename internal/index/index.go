// Package index maintains the derived lookup structures over the todo
// record store: by-parent, by-created-time, and by-parent-and-title.
// Every structure is rebuildable from a full record scan and must never
// diverge from the store's contents; divergence is a correctness bug,
// not tolerated staleness.
//
// The structures are not internally synchronized. The hierarchy engine
// serializes all access: one writer at a time, readers behind a shared
// lock.
package index

import (
	"fmt"
	"sort"

	"github.com/stemhq/arbor/pkg/types"
)

// Indexes bundles the three derived structures and keeps them in step.
type Indexes struct {
	Parent  *ParentIndex
	Created *CreatedIndex
	Title   *TitleIndex
}

// New returns empty indexes.
func New() *Indexes {
	return &Indexes{
		Parent:  NewParentIndex(),
		Created: NewCreatedIndex(),
		Title:   NewTitleIndex(),
	}
}

// Insert adds the todo to all three structures.
func (x *Indexes) Insert(t *types.Todo) {
	x.Parent.Insert(t.ParentID, t.TodoID)
	x.Created.Insert(t.CreatedAt, t.TodoID)
	x.Title.Insert(t.ParentID, t.Title, t.TodoID)
}

// Remove deletes the todo from all three structures. The todo must
// carry the same ParentID, CreatedAt, and Title it was inserted with.
func (x *Indexes) Remove(t *types.Todo) {
	x.Parent.Remove(t.ParentID, t.TodoID)
	x.Created.Remove(t.CreatedAt, t.TodoID)
	x.Title.Remove(t.ParentID, t.Title, t.TodoID)
}

// Rebuild discards all entries and reindexes the given records. Used on
// open and for recovery after a reported divergence.
func (x *Indexes) Rebuild(todos []*types.Todo) {
	x.Parent = NewParentIndex()
	x.Created = NewCreatedIndex()
	x.Title = NewTitleIndex()
	for _, t := range todos {
		x.Insert(t)
	}
}

// Verify checks the indexes against a full record scan. It returns an
// error describing the first divergence found, or nil when every record
// is indexed exactly once under its current keys and no entry points at
// a missing record.
func (x *Indexes) Verify(todos []*types.Todo) error {
	byID := make(map[string]*types.Todo, len(todos))
	for _, t := range todos {
		byID[t.TodoID] = t
	}

	if n := x.Parent.Len(); n != len(todos) {
		return fmt.Errorf("by-parent index holds %d entries, store holds %d records", n, len(todos))
	}
	for _, t := range todos {
		if !x.Parent.Contains(t.ParentID, t.TodoID) {
			return fmt.Errorf("todo %s missing from by-parent index under %q", t.TodoID, t.ParentID)
		}
		if !x.Created.Contains(t.CreatedAt, t.TodoID) {
			return fmt.Errorf("todo %s missing from by-created-time index", t.TodoID)
		}
		if !x.Title.Contains(t.ParentID, t.Title, t.TodoID) {
			return fmt.Errorf("todo %s missing from by-parent-and-title index", t.TodoID)
		}
	}
	for parentID := range x.Parent.children {
		if parentID == "" {
			continue
		}
		if _, ok := byID[parentID]; !ok {
			return fmt.Errorf("by-parent index keyed on missing todo %s", parentID)
		}
	}
	return nil
}

// ParentIndex maps a parent ID to the set of its direct child IDs. The
// empty string is the distinguished "no parent" key for root todos.
type ParentIndex struct {
	children map[string]map[string]struct{}
}

// NewParentIndex returns an empty by-parent index.
func NewParentIndex() *ParentIndex {
	return &ParentIndex{children: make(map[string]map[string]struct{})}
}

// Insert records id as a child of parentID.
func (ix *ParentIndex) Insert(parentID, id string) {
	set, ok := ix.children[parentID]
	if !ok {
		set = make(map[string]struct{})
		ix.children[parentID] = set
	}
	set[id] = struct{}{}
}

// Remove drops id from parentID's child set. Removing an absent entry
// is a no-op.
func (ix *ParentIndex) Remove(parentID, id string) {
	set, ok := ix.children[parentID]
	if !ok {
		return
	}
	delete(set, id)
	if len(set) == 0 {
		delete(ix.children, parentID)
	}
}

// LookupExact returns the child IDs of parentID, sorted. IDs are UUID
// v7, so lexical order is creation order.
func (ix *ParentIndex) LookupExact(parentID string) []string {
	set := ix.children[parentID]
	if len(set) == 0 {
		return nil
	}
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Contains reports whether id is recorded as a child of parentID.
func (ix *ParentIndex) Contains(parentID, id string) bool {
	_, ok := ix.children[parentID][id]
	return ok
}

// Len returns the total number of indexed todos.
func (ix *ParentIndex) Len() int {
	n := 0
	for _, set := range ix.children {
		n += len(set)
	}
	return n
}
