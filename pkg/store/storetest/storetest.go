// Package storetest contains the conformance suite every store.Store realisation must pass.
//
// Backends run the suite from their own tests:
//
//	func TestSuite(t *testing.T) {
//		storetest.RunTests(t, func(t *testing.T) store.Store { return newTestStore(t) })
//	}
//
// [RunEquivalence] feeds the same trees to two stores and requires identical results from
// every read operation.
package storetest

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/surrealdb/dataorg/pkg/models"
	"github.com/surrealdb/dataorg/pkg/store"
)

// Factory returns a fresh, migrated and empty store. The suite closes it.
type Factory func(t *testing.T) store.Store

// RunTests runs the common store.Store tests.
func RunTests(t *testing.T, newStore Factory) {
	run := func(name string, fn func(t *testing.T, s store.Store)) {
		t.Run(name, func(t *testing.T) {
			s := newStore(t)
			defer func() { require.NoError(t, s.Close()) }()
			fn(t, s)
		})
	}

	run("Scenario", testScenario)
	run("RoundTrip", testRoundTrip)
	run("OrderAndPagination", testOrderAndPagination)
	run("DepthBoundedLoad", testDepthBoundedLoad)
	run("ReplaceSemantics", testReplaceSemantics)
	run("Views", testViews)
	run("DeleteView", testDeleteView)
	run("UpdateNodeData", testUpdateNodeData)
	run("NotFound", testNotFound)
	run("CancelledCreateKeepsView", testCancelledCreate)
}

// ScenarioTree is root{a.txt, sub{b.txt}}.
func ScenarioTree(t testing.TB, digitalObjectID, view string) *models.FileTree {
	t.Helper()
	tree, err := models.NewTreeBuilder(digitalObjectID, view, "root").
		AddFile("a.txt", models.MustLocate("file:///a.txt")).
		EnterCollection("sub").
		AddFile("b.txt", models.MustLocate("file:///sub/b.txt")).
		Leave().
		Build()
	require.NoError(t, err)
	return tree
}

// WideTree builds dirs collections below the root, each holding files files, with a few
// attributes and descriptions so every stored field is exercised.
func WideTree(t testing.TB, digitalObjectID, view string, dirs, files int) *models.FileTree {
	t.Helper()
	b := models.NewTreeBuilder(digitalObjectID, view, "root")
	for i := 0; i < dirs; i++ {
		b.EnterCollection(fmt.Sprintf("dir-%03d", i), models.Attribute{Key: "index", Value: fmt.Sprint(i)})
		for j := 0; j < files; j++ {
			b.AddFile(fmt.Sprintf("file-%03d.dat", j),
				models.MustLocate(fmt.Sprintf("file:///dir-%03d/file-%03d.dat", i, j)),
				models.Attribute{Key: "size", Value: fmt.Sprint(i * j)},
				models.Attribute{Key: "checksum", Value: fmt.Sprintf("sha1:%04x", i*1000+j)})
		}
		if i%2 == 0 {
			b.AddCollection("empty")
		}
		b.Leave()
	}
	tree, err := b.Build()
	require.NoError(t, err)
	tree.Root().Description = "generated"
	return tree
}

func names(nodes []models.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Name
	}
	return out
}

func requireSameTree(t *testing.T, want, got *models.FileTree) {
	t.Helper()
	require.NotNil(t, got)
	if diff := cmp.Diff(models.Document(want, false), models.Document(got, false)); diff != "" {
		t.Fatalf("tree mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, want.Len(), got.Len())
	for i := 0; i < got.Len(); i++ {
		n := got.Node(models.Index(i))
		require.False(t, n.ID.IsZero(), "loaded node %q has no id", n.Name)
	}
}

func requireDepths(t *testing.T, tree *models.FileTree) {
	t.Helper()
	_ = tree.Walk(models.RootIndex, func(i models.Index, rel int) error {
		require.Equal(t, tree.Root().Depth+rel, tree.Node(i).Depth, "depth of %q", tree.Node(i).Name)
		return nil
	}, nil)
}

func testScenario(t *testing.T, s store.Store) {
	ctx := context.Background()
	tree := ScenarioTree(t, "obj-1", "")
	require.NoError(t, s.CreateFileTree(ctx, tree))

	loaded, err := s.LoadFileTree(ctx, "obj-1", "")
	require.NoError(t, err)
	requireSameTree(t, tree, loaded)
	requireDepths(t, loaded)

	root, err := s.GetRootNodeID(ctx, "obj-1", "")
	require.NoError(t, err)
	require.Equal(t, models.DefaultView, root.View)
	require.Equal(t, models.CurrentIDVersion, root.IDVersion)
	require.Equal(t, loaded.Root().ID, root)

	count, err := s.GetChildCount(ctx, root)
	require.NoError(t, err)
	require.EqualValues(t, 2, count)

	first, err := s.GetChildren(ctx, root, 0, 1)
	require.NoError(t, err)
	require.Equal(t, []string{"a.txt"}, names(first))
	loc, ok := first[0].Locator()
	require.True(t, ok)
	require.Equal(t, "file:///a.txt", loc.Value)
	require.Equal(t, 1, first[0].Depth)

	sub, err := s.LoadSubTree(ctx, root, 1)
	require.NoError(t, err)
	require.Equal(t, 3, sub.Len())
	_, ok = sub.Lookup("a.txt")
	require.True(t, ok)
	subIdx, ok := sub.Lookup("sub")
	require.True(t, ok)
	require.Empty(t, sub.Children(subIdx))
	require.Empty(t, sub.FindByName("b.txt"))

	children := loaded.Children(models.RootIndex)
	require.Equal(t, "sub", loaded.Node(children[1]).Name)
	subChildren := loaded.Children(children[1])
	require.Len(t, subChildren, 1)
	require.Equal(t, "b.txt", loaded.Node(subChildren[0]).Name)

	node, err := s.LoadNode(ctx, loaded.Node(children[1]).ID)
	require.NoError(t, err)
	require.Equal(t, "sub", node.Name)
	require.Equal(t, models.KindCollection, node.Kind())
	require.Equal(t, 1, node.Depth)
}

func testRoundTrip(t *testing.T, s store.Store) {
	ctx := context.Background()
	tree := WideTree(t, "obj-wide", "raw", 6, 9)
	require.NoError(t, s.CreateFileTree(ctx, tree))

	loaded, err := s.LoadFileTree(ctx, "obj-wide", "raw")
	require.NoError(t, err)
	requireSameTree(t, tree, loaded)
	requireDepths(t, loaded)
	require.Equal(t, "generated", loaded.Root().Description)

	whole, err := s.LoadSubTree(ctx, loaded.Root().ID, store.Unbounded)
	require.NoError(t, err)
	requireSameTree(t, tree, whole)
}

func testOrderAndPagination(t *testing.T, s store.Store) {
	ctx := context.Background()
	tree := WideTree(t, "obj-page", "", 1, 23)
	require.NoError(t, s.CreateFileTree(ctx, tree))

	root, err := s.GetRootNodeID(ctx, "obj-page", "")
	require.NoError(t, err)
	dirs, err := s.GetChildren(ctx, root, 0, store.Unbounded)
	require.NoError(t, err)
	require.Equal(t, []string{"dir-000"}, names(dirs))

	dir := dirs[0].ID
	total, err := s.GetChildCount(ctx, dir)
	require.NoError(t, err)
	require.EqualValues(t, 24, total)

	all, err := s.GetChildren(ctx, dir, 0, int(total))
	require.NoError(t, err)
	want := make([]string, 0, total)
	for _, c := range tree.Children(tree.Children(models.RootIndex)[0]) {
		want = append(want, tree.Node(c).Name)
	}
	require.Equal(t, want, names(all))

	for k := 0; k <= int(total); k++ {
		head, err := s.GetChildren(ctx, dir, 0, k)
		require.NoError(t, err)
		tail, err := s.GetChildren(ctx, dir, k, int(total)-k)
		require.NoError(t, err)
		require.Equal(t, names(all), append(names(head), names(tail)...), "split at %d", k)
	}

	beyond, err := s.GetChildren(ctx, dir, 100, 10)
	require.NoError(t, err)
	require.Empty(t, beyond)

	none, err := s.GetChildren(ctx, dir, 0, 0)
	require.NoError(t, err)
	require.Empty(t, none)

	leaves, err := s.GetChildren(ctx, all[0].ID, 0, 10)
	require.NoError(t, err)
	require.Empty(t, leaves)
	leafCount, err := s.GetChildCount(ctx, all[0].ID)
	require.NoError(t, err)
	require.Zero(t, leafCount)
}

func testDepthBoundedLoad(t *testing.T, s store.Store) {
	ctx := context.Background()
	tree := WideTree(t, "obj-depth", "", 3, 2)
	require.NoError(t, s.CreateFileTree(ctx, tree))

	root, err := s.GetRootNodeID(ctx, "obj-depth", "")
	require.NoError(t, err)

	only, err := s.LoadSubTree(ctx, root, 0)
	require.NoError(t, err)
	require.Equal(t, 1, only.Len())
	require.Empty(t, only.Children(models.RootIndex))
	require.Equal(t, "root", only.Root().Name)

	one, err := s.LoadSubTree(ctx, root, 1)
	require.NoError(t, err)
	require.Equal(t, 4, one.Len())

	dirs, err := s.GetChildren(ctx, root, 1, 1)
	require.NoError(t, err)
	require.Len(t, dirs, 1)

	dir, err := s.LoadSubTree(ctx, dirs[0].ID, store.Unbounded)
	require.NoError(t, err)
	require.Equal(t, "dir-001", dir.Root().Name)
	require.Equal(t, 1, dir.Root().Depth)
	require.Equal(t, 3, dir.Len())
	requireDepths(t, dir)

	file, err := s.LoadSubTree(ctx, dir.Node(dir.Children(models.RootIndex)[0]).ID, store.Unbounded)
	require.NoError(t, err)
	require.Equal(t, 1, file.Len())
	require.Equal(t, models.KindFile, file.Root().Kind())
	require.Equal(t, 2, file.Root().Depth)

	for _, depth := range []int{0, 1} {
		file, err := s.LoadSubTree(ctx, dir.Node(dir.Children(models.RootIndex)[1]).ID, depth)
		require.NoError(t, err)
		require.Equal(t, 1, file.Len())
		require.Empty(t, file.Children(models.RootIndex))
	}
}

func testReplaceSemantics(t *testing.T, s store.Store) {
	ctx := context.Background()
	require.NoError(t, s.CreateFileTree(ctx, WideTree(t, "obj-r", "", 4, 4)))
	second := ScenarioTree(t, "obj-r", "")
	require.NoError(t, s.CreateFileTree(ctx, second))

	loaded, err := s.LoadFileTree(ctx, "obj-r", "")
	require.NoError(t, err)
	requireSameTree(t, second, loaded)

	views, err := s.GetViews(ctx, "obj-r")
	require.NoError(t, err)
	require.Equal(t, []string{models.DefaultView}, views)
}

func testViews(t *testing.T, s store.Store) {
	ctx := context.Background()
	for _, view := range []string{"zeta", "", "alpha"} {
		require.NoError(t, s.CreateFileTree(ctx, ScenarioTree(t, "obj-v", view)))
	}
	require.NoError(t, s.CreateFileTree(ctx, ScenarioTree(t, "obj-other", "beta")))

	views, err := s.GetViews(ctx, "obj-v")
	require.NoError(t, err)
	require.Equal(t, []string{"alpha", models.DefaultView, "zeta"}, views)

	none, err := s.GetViews(ctx, "obj-missing")
	require.NoError(t, err)
	require.Empty(t, none)

	alpha, err := s.GetRootNodeID(ctx, "obj-v", "alpha")
	require.NoError(t, err)
	def, err := s.GetRootNodeID(ctx, "obj-v", "")
	require.NoError(t, err)
	require.Equal(t, "alpha", alpha.View)
	require.NotEqual(t, alpha, def)
}

func testDeleteView(t *testing.T, s store.Store) {
	ctx := context.Background()
	require.NoError(t, s.CreateFileTree(ctx, ScenarioTree(t, "obj-d", "one")))
	require.NoError(t, s.CreateFileTree(ctx, ScenarioTree(t, "obj-d", "two")))

	require.NoError(t, s.DeleteView(ctx, "obj-d", "one"))
	_, err := s.LoadFileTree(ctx, "obj-d", "one")
	require.True(t, models.ErrNotFound.Has(err), "got %v", err)

	require.NoError(t, s.CreateFileTree(ctx, models.EmptyTree("obj-d", "two")))
	_, err = s.LoadFileTree(ctx, "obj-d", "two")
	require.True(t, models.ErrNotFound.Has(err), "got %v", err)

	views, err := s.GetViews(ctx, "obj-d")
	require.NoError(t, err)
	require.Empty(t, views)

	require.NoError(t, s.DeleteView(ctx, "obj-d", "never"))
}

func testUpdateNodeData(t *testing.T, s store.Store) {
	ctx := context.Background()
	tree := ScenarioTree(t, "obj-u", "")
	a, _ := tree.Lookup("a.txt")
	tree.Node(a).Attributes.Set("old-1", "x")
	tree.Node(a).Attributes.Set("old-2", "y")
	require.NoError(t, s.CreateFileTree(ctx, tree))

	loaded, err := s.LoadFileTree(ctx, "obj-u", "")
	require.NoError(t, err)
	subIdx, _ := loaded.Lookup("sub")
	aIdx, _ := loaded.Lookup("a.txt")
	subID := loaded.Node(subIdx).ID
	aID := loaded.Node(aIdx).ID

	t.Run("rename keeps shape", func(t *testing.T) {
		data := loaded.Node(subIdx).Clone()
		data.Name = "renamed"
		require.NoError(t, s.UpdateNodeData(ctx, subID, data))

		node, err := s.LoadNode(ctx, subID)
		require.NoError(t, err)
		require.Equal(t, "renamed", node.Name)

		count, err := s.GetChildCount(ctx, subID)
		require.NoError(t, err)
		require.EqualValues(t, 1, count)

		after, err := s.LoadFileTree(ctx, "obj-u", "")
		require.NoError(t, err)
		idx, ok := after.Lookup("renamed", "b.txt")
		require.True(t, ok)
		require.Equal(t, 2, after.Node(idx).Depth)
		require.Equal(t, loaded.Len(), after.Len())
	})

	t.Run("disjoint attributes", func(t *testing.T) {
		data := models.NewFile("a.txt", models.MustLocate("file:///moved/a.txt"))
		data.Attributes.Set("new-1", "1")
		data.Attributes.Set("new-2", "2")
		data.Description = "described"
		require.NoError(t, s.UpdateNodeData(ctx, aID, data))

		node, err := s.LoadNode(ctx, aID)
		require.NoError(t, err)
		require.Equal(t, []string{"new-1", "new-2"}, node.Attributes.Keys())
		loc, _ := node.Locator()
		require.Equal(t, "file:///moved/a.txt", loc.Value)
		require.Equal(t, "described", node.Description)
	})

	t.Run("type mismatch", func(t *testing.T) {
		err := s.UpdateNodeData(ctx, aID, models.NewCollection("a.txt"))
		require.True(t, models.ErrTypeMismatch.Has(err), "got %v", err)

		node, err := s.LoadNode(ctx, aID)
		require.NoError(t, err)
		require.Equal(t, models.KindFile, node.Kind())
		require.Equal(t, []string{"new-1", "new-2"}, node.Attributes.Keys())
	})

	t.Run("no-op", func(t *testing.T) {
		node, err := s.LoadNode(ctx, aID)
		require.NoError(t, err)
		require.NoError(t, s.UpdateNodeData(ctx, aID, node))
		again, err := s.LoadNode(ctx, aID)
		require.NoError(t, err)
		require.Equal(t, node, again)
	})
}

func testNotFound(t *testing.T, s store.Store) {
	ctx := context.Background()
	require.NoError(t, s.CreateFileTree(ctx, ScenarioTree(t, "obj-n", "")))
	root, err := s.GetRootNodeID(ctx, "obj-n", "")
	require.NoError(t, err)

	_, err = s.LoadFileTree(ctx, "obj-n", "missing")
	require.True(t, models.ErrNotFound.Has(err), "got %v", err)

	_, err = s.GetRootNodeID(ctx, "obj-missing", "")
	require.True(t, models.ErrNotFound.Has(err), "got %v", err)

	bogus := root
	bogus.InTreeID = "not-an-id"
	_, err = s.LoadNode(ctx, bogus)
	require.True(t, models.ErrNotFound.Has(err), "got %v", err)
	_, err = s.GetChildren(ctx, bogus, 0, 10)
	require.True(t, models.ErrNotFound.Has(err), "got %v", err)
	_, err = s.GetChildCount(ctx, bogus)
	require.True(t, models.ErrNotFound.Has(err), "got %v", err)
	_, err = s.LoadSubTree(ctx, bogus, 1)
	require.True(t, models.ErrNotFound.Has(err), "got %v", err)
	err = s.UpdateNodeData(ctx, bogus, models.NewCollection("x"))
	require.True(t, models.ErrNotFound.Has(err), "got %v", err)

	otherView := root
	otherView.View = "elsewhere"
	_, err = s.LoadNode(ctx, otherView)
	require.True(t, models.ErrNotFound.Has(err), "got %v", err)
}

func testCancelledCreate(t *testing.T, s store.Store) {
	ctx := context.Background()
	first := ScenarioTree(t, "obj-c", "")
	require.NoError(t, s.CreateFileTree(ctx, first))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	err := s.CreateFileTree(cancelled, WideTree(t, "obj-c", "", 3, 3))
	require.Error(t, err)

	loaded, err := s.LoadFileTree(ctx, "obj-c", "")
	require.NoError(t, err)
	requireSameTree(t, first, loaded)
}

// RunEquivalence writes the same trees to a and b and requires both to report identical
// results from every read operation.
func RunEquivalence(t *testing.T, a, b store.Store) {
	ctx := context.Background()
	trees := []*models.FileTree{
		ScenarioTree(t, "eq-1", ""),
		WideTree(t, "eq-2", "raw", 5, 7),
		WideTree(t, "eq-2", "", 2, 1),
	}
	for _, tree := range trees {
		require.NoError(t, a.CreateFileTree(ctx, tree))
		require.NoError(t, b.CreateFileTree(ctx, tree))
	}
	for _, tree := range trees {
		diff, err := store.Compare(ctx, a, b, tree.DigitalObjectID, tree.View)
		require.NoError(t, err)
		require.Empty(t, diff, "view %s/%s differs between backends", tree.DigitalObjectID, tree.View)
	}

	viewsA, err := a.GetViews(ctx, "eq-2")
	require.NoError(t, err)
	viewsB, err := b.GetViews(ctx, "eq-2")
	require.NoError(t, err)
	require.Equal(t, viewsA, viewsB)
}
