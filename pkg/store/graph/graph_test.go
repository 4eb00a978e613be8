package graph_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/surrealdb/dataorg/pkg/models"
	"github.com/surrealdb/dataorg/pkg/store"
	"github.com/surrealdb/dataorg/pkg/store/graph"
	"github.com/surrealdb/dataorg/pkg/store/memgraph"
	"github.com/surrealdb/dataorg/pkg/store/storetest"
)

// failingDriver fails InsertVertices after a number of successful calls.
type failingDriver struct {
	graph.Driver
	okBatches int32
	calls     atomic.Int32
}

func (d *failingDriver) InsertVertices(ctx context.Context, vertices []graph.Vertex) error {
	if d.calls.Add(1) > d.okBatches {
		return errors.New("disk full")
	}
	return d.Driver.InsertVertices(ctx, vertices)
}

func newMem(t *testing.T) *memgraph.Driver {
	t.Helper()
	d, err := memgraph.New()
	require.NoError(t, err)
	return d
}

func TestFailedWriteKeepsPreviousTree(t *testing.T) {
	ctx := context.Background()
	mem := newMem(t)
	require.NoError(t, graph.New(mem).CreateFileTree(ctx, storetest.ScenarioTree(t, "obj", "")))

	failing := &failingDriver{Driver: mem, okBatches: 2}
	s := graph.New(failing, graph.WithBatchSize(4))
	err := s.CreateFileTree(ctx, storetest.WideTree(t, "obj", "", 4, 4))
	require.True(t, models.ErrStorage.Has(err), "got %v", err)

	loaded, err := s.LoadFileTree(ctx, "obj", "")
	require.NoError(t, err)
	require.Equal(t, 4, loaded.Len())

	// the view still points at the scenario tree
	root, err := s.GetRootNodeID(ctx, "obj", "")
	require.NoError(t, err)
	whole, err := s.LoadSubTree(ctx, root, store.Unbounded)
	require.NoError(t, err)
	require.Equal(t, 4, whole.Len())
}

func TestReplacedNodeIDsAreStale(t *testing.T) {
	ctx := context.Background()
	s := graph.New(newMem(t))
	require.NoError(t, s.CreateFileTree(ctx, storetest.ScenarioTree(t, "obj", "")))
	old, err := s.GetRootNodeID(ctx, "obj", "")
	require.NoError(t, err)

	require.NoError(t, s.CreateFileTree(ctx, storetest.ScenarioTree(t, "obj", "")))
	_, err = s.LoadNode(ctx, old)
	require.True(t, models.ErrNotFound.Has(err), "got %v", err)

	cur, err := s.GetRootNodeID(ctx, "obj", "")
	require.NoError(t, err)
	require.NotEqual(t, old, cur)
	_, err = models.ParseVertexID(cur.InTreeID)
	require.NoError(t, err)
}

func TestLabels(t *testing.T) {
	root := graph.Vertex{DigitalObjectID: "o", View: "", Root: true, Kind: models.KindCollection}
	require.Equal(t, []string{"Root", "Collection", "object:o", "view:default"}, root.Labels())

	file := graph.Vertex{DigitalObjectID: "o", View: "raw", Kind: models.KindFile}
	require.Equal(t, []string{"File", "object:o", "view:raw"}, file.Labels())
}
