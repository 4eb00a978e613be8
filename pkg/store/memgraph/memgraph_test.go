package memgraph_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/surrealdb/dataorg/pkg/models"
	"github.com/surrealdb/dataorg/pkg/store"
	"github.com/surrealdb/dataorg/pkg/store/graph"
	"github.com/surrealdb/dataorg/pkg/store/memgraph"
	"github.com/surrealdb/dataorg/pkg/store/storetest"
)

func newDriver(t *testing.T) *memgraph.Driver {
	t.Helper()
	d, err := memgraph.New()
	require.NoError(t, err)
	return d
}

func TestSuite(t *testing.T) {
	storetest.RunTests(t, func(t *testing.T) store.Store { return graph.New(newDriver(t)) })
}

func TestSuiteSmallBatches(t *testing.T) {
	storetest.RunTests(t, func(t *testing.T) store.Store {
		return graph.New(newDriver(t), graph.WithBatchSize(5))
	})
}

func TestChildrenOrderedByPosition(t *testing.T) {
	ctx := context.Background()
	d := newDriver(t)
	gen := models.NewGeneration()

	root := graph.Vertex{ID: models.NewVertexID(), DigitalObjectID: "o", View: "v", Generation: gen, Root: true, Name: "root", Kind: models.KindCollection}
	var kids []graph.Vertex
	var edges []graph.Edge
	for i := 0; i < 12; i++ {
		kid := graph.Vertex{ID: models.NewVertexID(), DigitalObjectID: "o", View: "v", Generation: gen, Depth: 1, Name: string(rune('a' + i)), Kind: models.KindCollection}
		kids = append(kids, kid)
		// reverse insertion order
		edges = append([]graph.Edge{{Parent: root.ID, Child: kid.ID, Position: i, Generation: gen}}, edges...)
	}
	require.NoError(t, d.InsertVertices(ctx, append([]graph.Vertex{root}, kids...)))
	require.NoError(t, d.InsertEdges(ctx, edges))

	got, err := d.Children(ctx, root.ID, store.NewPage(0, store.Unbounded))
	require.NoError(t, err)
	require.Len(t, got, 12)
	for i, v := range got {
		require.Equal(t, kids[i].ID, v.ID)
	}

	page, err := d.Children(ctx, root.ID, store.NewPage(10, 5))
	require.NoError(t, err)
	require.Len(t, page, 2)

	n, err := d.ChildCount(ctx, root.ID)
	require.NoError(t, err)
	require.EqualValues(t, 12, n)

	found, err := d.FindRoot(ctx, "o", "v", gen)
	require.NoError(t, err)
	require.Equal(t, root.ID, found.ID)
	require.Equal(t, []string{graph.LabelRoot, graph.LabelCollection, "object:o", "view:v"}, found.Labels())

	require.NoError(t, d.DeleteGeneration(ctx, "o", "v", gen))
	_, err = d.Vertex(ctx, root.ID)
	require.True(t, models.ErrNotFound.Has(err))
	n, err = d.ChildCount(ctx, root.ID)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestSwapGeneration(t *testing.T) {
	ctx := context.Background()
	d := newDriver(t)

	first, second := models.NewGeneration(), models.NewGeneration()
	prev, err := d.SwapGeneration(ctx, "o", "", first)
	require.NoError(t, err)
	require.True(t, prev.IsZero())

	prev, err = d.SwapGeneration(ctx, "o", "", second)
	require.NoError(t, err)
	require.Equal(t, first, prev)

	cur, err := d.CurrentGeneration(ctx, "o", models.DefaultView)
	require.NoError(t, err)
	require.Equal(t, second, cur)

	views, err := d.Views(ctx, "o")
	require.NoError(t, err)
	require.Equal(t, []string{models.DefaultView}, views)

	prev, err = d.DeleteViewPointer(ctx, "o", "")
	require.NoError(t, err)
	require.Equal(t, second, prev)
	cur, err = d.CurrentGeneration(ctx, "o", "")
	require.NoError(t, err)
	require.True(t, cur.IsZero())
}

func TestFindRootByGeneration(t *testing.T) {
	ctx := context.Background()
	d := newDriver(t)

	roots := map[string]graph.Vertex{}
	var gens []models.Generation
	for _, view := range []string{"a", "b"} {
		for i := 0; i < 3; i++ {
			gen := models.NewGeneration()
			root := graph.Vertex{ID: models.NewVertexID(), DigitalObjectID: "o", View: view, Generation: gen, Root: true, Name: view, Kind: models.KindCollection}
			kid := graph.Vertex{ID: models.NewVertexID(), DigitalObjectID: "o", View: view, Generation: gen, Depth: 1, Name: "f", Kind: models.KindFile}
			require.NoError(t, d.InsertVertices(ctx, []graph.Vertex{kid, root}))
			roots[gen.String()] = root
			gens = append(gens, gen)
		}
	}

	for _, gen := range gens {
		want := roots[gen.String()]
		found, err := d.FindRoot(ctx, "o", want.View, gen)
		require.NoError(t, err)
		require.Equal(t, want.ID, found.ID)

		_, err = d.FindRoot(ctx, "o", "other", gen)
		require.True(t, models.ErrNotFound.Has(err))
	}

	updated := roots[gens[0].String()]
	updated.Name = "renamed"
	require.NoError(t, d.UpdateVertex(ctx, updated))
	found, err := d.FindRoot(ctx, "o", "a", gens[0])
	require.NoError(t, err)
	require.Equal(t, "renamed", found.Name)

	_, err = d.FindRoot(ctx, "o", "a", models.NewGeneration())
	require.True(t, models.ErrNotFound.Has(err))
}
