// Tests for the hierarchy engine: creation, parent validation, child
// enumeration, the three deletion policies, updates, and the index
// write-through.
package engine

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemhq/arbor/internal/sqlite"
	"github.com/stemhq/arbor/pkg/types"
)

// newTestEngine opens a fresh backend in a temp dir and builds an
// engine over it. Cleanup closes the engine.
func newTestEngine(t *testing.T) *Engine {
	t.Helper()

	b := sqlite.NewBackend()
	config := types.Config{
		Backend: types.BackendSQLite,
		DataDir: t.TempDir(),
	}
	require.NoError(t, b.Open(config))

	e, err := New(b, nil)
	require.NoError(t, err)
	t.Cleanup(func() { e.Close() })
	return e
}

func strPtr(s string) *string { return &s }

func TestEngine_AddRoot(t *testing.T) {
	e := newTestEngine(t)

	todo, err := e.Add("Buy milk", "2 liters", "")
	require.NoError(t, err)

	assert.NotEmpty(t, todo.TodoID)
	parsed, err := uuid.Parse(todo.TodoID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())

	assert.Equal(t, "Buy milk", todo.Title)
	assert.Equal(t, "2 liters", todo.Description)
	assert.True(t, todo.IsRoot())
	assert.False(t, todo.CreatedAt.IsZero())
	assert.True(t, todo.CreatedAt.Equal(todo.UpdatedAt), "fresh todo has CreatedAt == UpdatedAt")

	got, err := e.Get(todo.TodoID)
	require.NoError(t, err)
	assert.Equal(t, todo.Title, got.Title)
	assert.True(t, got.CreatedAt.Equal(todo.CreatedAt))
}

func TestEngine_AddChild(t *testing.T) {
	e := newTestEngine(t)

	parent, err := e.Add("Parent", "", "")
	require.NoError(t, err)

	child, err := e.Add("Child", "", parent.TodoID)
	require.NoError(t, err)
	assert.Equal(t, parent.TodoID, child.ParentID)

	children, err := e.GetChildren(parent.TodoID)
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, child.TodoID, children[0].TodoID)
}

func TestEngine_AddMissingParent(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.Add("Orphan", "", "no-such-parent")
	assert.ErrorIs(t, err, types.ErrParentNotFound)

	// A failed Add must leave nothing behind.
	roots, err := e.ListRoots()
	require.NoError(t, err)
	assert.Empty(t, roots)
}

func TestEngine_AddValidation(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.Add("", "", "")
	assert.ErrorIs(t, err, types.ErrTitleEmpty)
	assert.True(t, types.IsValidation(err))

	roots, err := e.ListRoots()
	require.NoError(t, err)
	assert.Empty(t, roots, "failed validation must not create a record")
}

func TestEngine_AddReturnsClone(t *testing.T) {
	e := newTestEngine(t)

	todo, err := e.Add("Original", "", "")
	require.NoError(t, err)

	// Mutating the returned record must not corrupt engine state.
	todo.Title = "Mutated"
	got, err := e.Get(todo.TodoID)
	require.NoError(t, err)
	assert.Equal(t, "Original", got.Title)
}

func TestEngine_GetNotFound(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.Get("no-such-id")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestEngine_GetWithChildren(t *testing.T) {
	e := newTestEngine(t)

	parent, err := e.Add("Parent", "", "")
	require.NoError(t, err)
	c1, err := e.Add("First", "", parent.TodoID)
	require.NoError(t, err)
	c2, err := e.Add("Second", "", parent.TodoID)
	require.NoError(t, err)

	got, childIDs, err := e.GetWithChildren(parent.TodoID)
	require.NoError(t, err)
	assert.Equal(t, parent.TodoID, got.TodoID)
	assert.ElementsMatch(t, []string{c1.TodoID, c2.TodoID}, childIDs)

	_, _, err = e.GetWithChildren("no-such-id")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestEngine_GetChildrenOrderAndIdempotence(t *testing.T) {
	e := newTestEngine(t)

	parent, err := e.Add("Parent", "", "")
	require.NoError(t, err)

	var want []string
	for _, title := range []string{"one", "two", "three"} {
		c, err := e.Add(title, "", parent.TodoID)
		require.NoError(t, err)
		want = append(want, c.TodoID)
	}

	// UUID v7 IDs sort in creation order, so children come back in the
	// order they were added.
	first, err := e.GetChildren(parent.TodoID)
	require.NoError(t, err)
	var got []string
	for _, c := range first {
		got = append(got, c.TodoID)
	}
	assert.Equal(t, want, got)

	// Repeated enumeration of an unchanged parent yields the same set.
	second, err := e.GetChildren(parent.TodoID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestEngine_GetChildrenUnknownParent(t *testing.T) {
	e := newTestEngine(t)

	children, err := e.GetChildren("no-such-parent")
	require.NoError(t, err)
	assert.Empty(t, children)
}

func TestEngine_Update(t *testing.T) {
	e := newTestEngine(t)

	todo, err := e.Add("Old title", "old desc", "")
	require.NoError(t, err)

	t.Run("title only", func(t *testing.T) {
		got, err := e.Update(todo.TodoID, strPtr("New title"), nil)
		require.NoError(t, err)
		assert.Equal(t, "New title", got.Title)
		assert.Equal(t, "old desc", got.Description, "nil field left untouched")
		assert.True(t, got.CreatedAt.Equal(todo.CreatedAt), "CreatedAt is immutable")
		assert.False(t, got.UpdatedAt.Before(todo.UpdatedAt), "UpdatedAt refreshed")
	})

	t.Run("description only", func(t *testing.T) {
		got, err := e.Update(todo.TodoID, nil, strPtr("new desc"))
		require.NoError(t, err)
		assert.Equal(t, "New title", got.Title)
		assert.Equal(t, "new desc", got.Description)
	})

	t.Run("clear description", func(t *testing.T) {
		got, err := e.Update(todo.TodoID, nil, strPtr(""))
		require.NoError(t, err)
		assert.Empty(t, got.Description)
	})

	t.Run("missing todo", func(t *testing.T) {
		_, err := e.Update("no-such-id", strPtr("x"), nil)
		assert.ErrorIs(t, err, types.ErrNotFound)
	})

	t.Run("invalid title rejected without effect", func(t *testing.T) {
		_, err := e.Update(todo.TodoID, strPtr(""), nil)
		assert.ErrorIs(t, err, types.ErrTitleEmpty)

		got, err := e.Get(todo.TodoID)
		require.NoError(t, err)
		assert.Equal(t, "New title", got.Title)
	})
}

func TestEngine_UpdateMovesTitleIndex(t *testing.T) {
	e := newTestEngine(t)

	parent, err := e.Add("Parent", "", "")
	require.NoError(t, err)
	todo, err := e.Add("shopping", "", parent.TodoID)
	require.NoError(t, err)

	_, err = e.Update(todo.TodoID, strPtr("errands"), nil)
	require.NoError(t, err)

	// The old title must no longer match; the new one must.
	old, err := e.FindChildrenByTitle(parent.TodoID, "shopping")
	require.NoError(t, err)
	assert.Empty(t, old)

	now, err := e.FindChildrenByTitle(parent.TodoID, "errands")
	require.NoError(t, err)
	require.Len(t, now, 1)
	assert.Equal(t, todo.TodoID, now[0].TodoID)
}

func TestEngine_ListRoots(t *testing.T) {
	e := newTestEngine(t)

	r1, err := e.Add("Root 1", "", "")
	require.NoError(t, err)
	r2, err := e.Add("Root 2", "", "")
	require.NoError(t, err)
	_, err = e.Add("Child", "", r1.TodoID)
	require.NoError(t, err)

	roots, err := e.ListRoots()
	require.NoError(t, err)
	require.Len(t, roots, 2)
	assert.Equal(t, r1.TodoID, roots[0].TodoID)
	assert.Equal(t, r2.TodoID, roots[1].TodoID)
}

func TestEngine_ListCreatedBetween(t *testing.T) {
	e := newTestEngine(t)

	before := time.Now().UTC()
	a, err := e.Add("A", "", "")
	require.NoError(t, err)
	b, err := e.Add("B", "", "")
	require.NoError(t, err)
	after := time.Now().UTC()

	got, err := e.ListCreatedBetween(before, after)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, a.TodoID, got[0].TodoID)
	assert.Equal(t, b.TodoID, got[1].TodoID)

	// Window before any creation
	got, err = e.ListCreatedBetween(before.Add(-time.Hour), before.Add(-time.Minute))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestEngine_FindChildrenByTitle(t *testing.T) {
	e := newTestEngine(t)

	parent, err := e.Add("Parent", "", "")
	require.NoError(t, err)
	milk, err := e.Add("buy milk", "", parent.TodoID)
	require.NoError(t, err)
	eggs, err := e.Add("buy eggs", "", parent.TodoID)
	require.NoError(t, err)
	_, err = e.Add("clean desk", "", parent.TodoID)
	require.NoError(t, err)

	got, err := e.FindChildrenByTitle(parent.TodoID, "buy")
	require.NoError(t, err)
	require.Len(t, got, 2)
	// Title order: "buy eggs" < "buy milk".
	assert.Equal(t, eggs.TodoID, got[0].TodoID)
	assert.Equal(t, milk.TodoID, got[1].TodoID)

	all, err := e.FindChildrenByTitle(parent.TodoID, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestEngine_DeleteCascade(t *testing.T) {
	e := newTestEngine(t)

	// root -> a -> b, root -> c; sibling tree stays intact.
	root, err := e.Add("root", "", "")
	require.NoError(t, err)
	a, err := e.Add("a", "", root.TodoID)
	require.NoError(t, err)
	b, err := e.Add("b", "", a.TodoID)
	require.NoError(t, err)
	sibling, err := e.Add("sibling", "", "")
	require.NoError(t, err)

	count, err := e.DeleteCascade(root.TodoID)
	require.NoError(t, err)
	assert.Equal(t, 3, count, "target plus two descendants")

	for _, id := range []string{root.TodoID, a.TodoID, b.TodoID} {
		_, err := e.Get(id)
		assert.ErrorIs(t, err, types.ErrNotFound, "id %s should be gone", id)
	}

	got, err := e.Get(sibling.TodoID)
	require.NoError(t, err)
	assert.Equal(t, "sibling", got.Title)

	assert.NoError(t, e.VerifyIndexes(), "indexes in step after cascade")
}

func TestEngine_DeleteCascadeLeaf(t *testing.T) {
	e := newTestEngine(t)

	leaf, err := e.Add("leaf", "", "")
	require.NoError(t, err)

	count, err := e.DeleteCascade(leaf.TodoID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	_, err = e.DeleteCascade(leaf.TodoID)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestEngine_DeleteOrphan(t *testing.T) {
	e := newTestEngine(t)

	// grandparent -> target -> {c1, c2}; children must end up under
	// grandparent.
	grandparent, err := e.Add("grandparent", "", "")
	require.NoError(t, err)
	target, err := e.Add("target", "", grandparent.TodoID)
	require.NoError(t, err)
	c1, err := e.Add("c1", "", target.TodoID)
	require.NoError(t, err)
	c2, err := e.Add("c2", "", target.TodoID)
	require.NoError(t, err)

	removed, promoted, err := e.DeleteOrphan(target.TodoID)
	require.NoError(t, err)
	assert.Equal(t, target.TodoID, removed.TodoID)
	assert.ElementsMatch(t, []string{c1.TodoID, c2.TodoID}, promoted)

	_, err = e.Get(target.TodoID)
	assert.ErrorIs(t, err, types.ErrNotFound)

	for _, id := range promoted {
		got, err := e.Get(id)
		require.NoError(t, err)
		assert.Equal(t, grandparent.TodoID, got.ParentID)
	}

	children, err := e.GetChildren(grandparent.TodoID)
	require.NoError(t, err)
	assert.Len(t, children, 2)

	assert.NoError(t, e.VerifyIndexes(), "indexes in step after orphan delete")
}

func TestEngine_DeleteOrphanRootPromotesToRoots(t *testing.T) {
	e := newTestEngine(t)

	root, err := e.Add("root", "", "")
	require.NoError(t, err)
	child, err := e.Add("child", "", root.TodoID)
	require.NoError(t, err)

	_, promoted, err := e.DeleteOrphan(root.TodoID)
	require.NoError(t, err)
	require.Equal(t, []string{child.TodoID}, promoted)

	got, err := e.Get(child.TodoID)
	require.NoError(t, err)
	assert.True(t, got.IsRoot(), "child of a deleted root becomes a root")

	roots, err := e.ListRoots()
	require.NoError(t, err)
	require.Len(t, roots, 1)
	assert.Equal(t, child.TodoID, roots[0].TodoID)
}

func TestEngine_DeleteSafe(t *testing.T) {
	e := newTestEngine(t)

	parent, err := e.Add("parent", "", "")
	require.NoError(t, err)
	child, err := e.Add("child", "", parent.TodoID)
	require.NoError(t, err)

	// Refuses while children exist.
	_, err = e.DeleteSafe(parent.TodoID)
	assert.ErrorIs(t, err, types.ErrHasChildren)

	_, err = e.Get(parent.TodoID)
	require.NoError(t, err, "refused delete must not remove the record")

	// Leaf deletes fine; then the parent does too.
	removed, err := e.DeleteSafe(child.TodoID)
	require.NoError(t, err)
	assert.Equal(t, child.TodoID, removed.TodoID)

	_, err = e.DeleteSafe(parent.TodoID)
	require.NoError(t, err)

	roots, err := e.ListRoots()
	require.NoError(t, err)
	assert.Empty(t, roots)
}

func TestEngine_VerifyIndexesDetectsDrift(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.Add("indexed", "", "")
	require.NoError(t, err)
	require.NoError(t, e.VerifyIndexes())

	// Write a record behind the engine's back; the indexes no longer
	// cover the store.
	now := time.Now().UTC()
	require.NoError(t, e.store.Put(&types.Todo{
		TodoID:    "rogue-id",
		Title:     "rogue",
		CreatedAt: now,
		UpdatedAt: now,
	}))

	err = e.VerifyIndexes()
	assert.ErrorIs(t, err, types.ErrIntegrity)
}

func TestEngine_Close(t *testing.T) {
	e := newTestEngine(t)

	todo, err := e.Add("before close", "", "")
	require.NoError(t, err)

	require.NoError(t, e.Close())
	require.NoError(t, e.Close(), "Close is idempotent")

	_, err = e.Get(todo.TodoID)
	assert.ErrorIs(t, err, types.ErrStoreClosed)
	_, err = e.Add("after close", "", "")
	assert.ErrorIs(t, err, types.ErrStoreClosed)
	_, err = e.DeleteCascade(todo.TodoID)
	assert.ErrorIs(t, err, types.ErrStoreClosed)
}

func TestEngine_RebuildsIndexesOnOpen(t *testing.T) {
	dataDir := t.TempDir()
	config := types.Config{Backend: types.BackendSQLite, DataDir: dataDir}

	b := sqlite.NewBackend()
	require.NoError(t, b.Open(config))
	e, err := New(b, nil)
	require.NoError(t, err)

	parent, err := e.Add("parent", "", "")
	require.NoError(t, err)
	child, err := e.Add("child", "", parent.TodoID)
	require.NoError(t, err)
	require.NoError(t, e.Close())

	// Second session: indexes come back from the record scan.
	b2 := sqlite.NewBackend()
	require.NoError(t, b2.Open(config))
	e2, err := New(b2, nil)
	require.NoError(t, err)
	defer e2.Close()

	require.NoError(t, e2.VerifyIndexes())
	children, err := e2.GetChildren(parent.TodoID)
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, child.TodoID, children[0].TodoID)
}
