package index

import (
	"sort"
	"strings"
	"time"
)

// CreatedIndex orders todo IDs by creation time. Entries with equal
// timestamps are tie-broken by ID so positions are deterministic.
type CreatedIndex struct {
	keys []createdKey
}

type createdKey struct {
	at time.Time
	id string
}

// NewCreatedIndex returns an empty by-created-time index.
func NewCreatedIndex() *CreatedIndex {
	return &CreatedIndex{}
}

func (ix *CreatedIndex) search(at time.Time, id string) int {
	return sort.Search(len(ix.keys), func(i int) bool {
		k := ix.keys[i]
		if !k.at.Equal(at) {
			return k.at.After(at)
		}
		return k.id >= id
	})
}

// Insert adds an entry keyed on (at, id). Inserting an existing entry
// is a no-op.
func (ix *CreatedIndex) Insert(at time.Time, id string) {
	i := ix.search(at, id)
	if i < len(ix.keys) && ix.keys[i].at.Equal(at) && ix.keys[i].id == id {
		return
	}
	ix.keys = append(ix.keys, createdKey{})
	copy(ix.keys[i+1:], ix.keys[i:])
	ix.keys[i] = createdKey{at: at, id: id}
}

// Remove drops the entry keyed on (at, id). Removing an absent entry is
// a no-op.
func (ix *CreatedIndex) Remove(at time.Time, id string) {
	i := ix.search(at, id)
	if i >= len(ix.keys) || !ix.keys[i].at.Equal(at) || ix.keys[i].id != id {
		return
	}
	ix.keys = append(ix.keys[:i], ix.keys[i+1:]...)
}

// LookupExact returns the IDs created exactly at the given time.
func (ix *CreatedIndex) LookupExact(at time.Time) []string {
	var ids []string
	i := ix.search(at, "")
	for ; i < len(ix.keys) && ix.keys[i].at.Equal(at); i++ {
		ids = append(ids, ix.keys[i].id)
	}
	return ids
}

// LookupRange returns the IDs with lo <= CreatedAt <= hi, in creation
// order.
func (ix *CreatedIndex) LookupRange(lo, hi time.Time) []string {
	var ids []string
	i := ix.search(lo, "")
	for ; i < len(ix.keys) && !ix.keys[i].at.After(hi); i++ {
		ids = append(ids, ix.keys[i].id)
	}
	return ids
}

// Contains reports whether the entry (at, id) is present.
func (ix *CreatedIndex) Contains(at time.Time, id string) bool {
	i := ix.search(at, id)
	return i < len(ix.keys) && ix.keys[i].at.Equal(at) && ix.keys[i].id == id
}

// Len returns the number of entries.
func (ix *CreatedIndex) Len() int {
	return len(ix.keys)
}

// TitleIndex orders todo IDs by the composite key (parent ID, title),
// supporting equality and prefix search scoped to one parent's direct
// children. The empty parent ID scopes the search to root todos.
type TitleIndex struct {
	keys []titleKey
}

type titleKey struct {
	parent string
	title  string
	id     string
}

func (k titleKey) less(o titleKey) bool {
	if k.parent != o.parent {
		return k.parent < o.parent
	}
	if k.title != o.title {
		return k.title < o.title
	}
	return k.id < o.id
}

// NewTitleIndex returns an empty by-parent-and-title index.
func NewTitleIndex() *TitleIndex {
	return &TitleIndex{}
}

func (ix *TitleIndex) search(k titleKey) int {
	return sort.Search(len(ix.keys), func(i int) bool {
		return !ix.keys[i].less(k)
	})
}

// Insert adds an entry keyed on (parentID, title, id). Inserting an
// existing entry is a no-op.
func (ix *TitleIndex) Insert(parentID, title, id string) {
	k := titleKey{parent: parentID, title: title, id: id}
	i := ix.search(k)
	if i < len(ix.keys) && ix.keys[i] == k {
		return
	}
	ix.keys = append(ix.keys, titleKey{})
	copy(ix.keys[i+1:], ix.keys[i:])
	ix.keys[i] = k
}

// Remove drops the entry keyed on (parentID, title, id). Removing an
// absent entry is a no-op.
func (ix *TitleIndex) Remove(parentID, title, id string) {
	k := titleKey{parent: parentID, title: title, id: id}
	i := ix.search(k)
	if i >= len(ix.keys) || ix.keys[i] != k {
		return
	}
	ix.keys = append(ix.keys[:i], ix.keys[i+1:]...)
}

// LookupExact returns the IDs of parentID's children titled exactly
// title.
func (ix *TitleIndex) LookupExact(parentID, title string) []string {
	var ids []string
	i := ix.search(titleKey{parent: parentID, title: title})
	for ; i < len(ix.keys) && ix.keys[i].parent == parentID && ix.keys[i].title == title; i++ {
		ids = append(ids, ix.keys[i].id)
	}
	return ids
}

// LookupRange returns the IDs of parentID's children with
// loTitle <= title <= hiTitle, in title order.
func (ix *TitleIndex) LookupRange(parentID, loTitle, hiTitle string) []string {
	var ids []string
	i := ix.search(titleKey{parent: parentID, title: loTitle})
	for ; i < len(ix.keys) && ix.keys[i].parent == parentID && ix.keys[i].title <= hiTitle; i++ {
		ids = append(ids, ix.keys[i].id)
	}
	return ids
}

// LookupPrefix returns the IDs of parentID's children whose title
// starts with prefix, in title order. An empty prefix matches every
// child.
func (ix *TitleIndex) LookupPrefix(parentID, prefix string) []string {
	var ids []string
	i := ix.search(titleKey{parent: parentID, title: prefix})
	for ; i < len(ix.keys) && ix.keys[i].parent == parentID && strings.HasPrefix(ix.keys[i].title, prefix); i++ {
		ids = append(ids, ix.keys[i].id)
	}
	return ids
}

// Contains reports whether the entry (parentID, title, id) is present.
func (ix *TitleIndex) Contains(parentID, title, id string) bool {
	k := titleKey{parent: parentID, title: title, id: id}
	i := ix.search(k)
	return i < len(ix.keys) && ix.keys[i] == k
}

// Len returns the number of entries.
func (ix *TitleIndex) Len() int {
	return len(ix.keys)
}
