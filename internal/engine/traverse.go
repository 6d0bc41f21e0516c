package engine

import (
	"errors"
	"fmt"
	"iter"

	"github.com/stemhq/arbor/pkg/types"
)

// GetDescendantsRecursive returns a lazy, finite, non-restartable
// breadth-first sequence of every transitive descendant of id.
// Consumers may stop early without paying for the remainder. The read
// lock is held for the lifetime of the yield loop, so the sequence
// observes one consistent tree.
//
// The parent relation is acyclic by construction (ParentID is immutable
// after creation), but the traversal still tracks visited IDs: revisiting
// one means corrupted data and yields ErrIntegrity rather than looping.
func (e *Engine) GetDescendantsRecursive(id string) iter.Seq2[*types.Todo, error] {
	return func(yield func(*types.Todo, error) bool) {
		e.mu.RLock()
		defer e.mu.RUnlock()
		if e.closed {
			yield(nil, types.ErrStoreClosed)
			return
		}

		visited := map[string]struct{}{id: {}}
		queue := e.idx.Parent.LookupExact(id)
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]

			if _, seen := visited[cur]; seen {
				yield(nil, fmt.Errorf("%w: todo %s revisited during traversal", types.ErrIntegrity, cur))
				return
			}
			visited[cur] = struct{}{}

			t, err := e.store.Get(cur)
			if errors.Is(err, types.ErrNotFound) {
				yield(nil, fmt.Errorf("%w: index references missing todo %s", types.ErrIntegrity, cur))
				return
			}
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(t, nil) {
				return
			}
			queue = append(queue, e.idx.Parent.LookupExact(cur)...)
		}
	}
}

// descendantsLocked collects every transitive descendant of id in
// breadth-first order, with the same cycle defense as the public
// iterator. The caller must hold e.mu.
func (e *Engine) descendantsLocked(id string) ([]*types.Todo, error) {
	var result []*types.Todo
	visited := map[string]struct{}{id: {}}
	queue := e.idx.Parent.LookupExact(id)
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if _, seen := visited[cur]; seen {
			return nil, fmt.Errorf("%w: todo %s revisited during traversal", types.ErrIntegrity, cur)
		}
		visited[cur] = struct{}{}

		t, err := e.store.Get(cur)
		if errors.Is(err, types.ErrNotFound) {
			return nil, fmt.Errorf("%w: index references missing todo %s", types.ErrIntegrity, cur)
		}
		if err != nil {
			return nil, err
		}
		result = append(result, t)
		queue = append(queue, e.idx.Parent.LookupExact(cur)...)
	}
	return result, nil
}
