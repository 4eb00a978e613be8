package mirror_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/surrealdb/dataorg/pkg/models"
	"github.com/surrealdb/dataorg/pkg/store"
	"github.com/surrealdb/dataorg/pkg/store/graph"
	"github.com/surrealdb/dataorg/pkg/store/memgraph"
	"github.com/surrealdb/dataorg/pkg/store/mirror"
	"github.com/surrealdb/dataorg/pkg/store/postgres"
	"github.com/surrealdb/dataorg/pkg/store/storetest"
)

func newNested(t *testing.T) store.Store {
	t.Helper()
	s, err := postgres.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func newGraph(t *testing.T) store.Store {
	t.Helper()
	d, err := memgraph.New()
	require.NoError(t, err)
	return graph.New(d)
}

func TestBackendsAreEquivalent(t *testing.T) {
	a, b := newNested(t), newGraph(t)
	defer a.Close()
	defer b.Close()
	storetest.RunEquivalence(t, a, b)
}

func TestSuiteInEveryMode(t *testing.T) {
	for _, mode := range []mirror.Mode{mirror.ModeSingle, mirror.ModeDualWrite, mirror.ModeValidation, mirror.ModeSwitching} {
		t.Run(string(mode), func(t *testing.T) {
			storetest.RunTests(t, func(t *testing.T) store.Store {
				return mirror.New(newNested(t), newGraph(t), mode, zerolog.Nop())
			})
		})
	}
}

func TestReadOnlyRejectsWrites(t *testing.T) {
	ctx := context.Background()
	m := mirror.New(newNested(t), newGraph(t), mirror.ModeSingle, zerolog.Nop())
	defer m.Close()
	require.NoError(t, m.CreateFileTree(ctx, storetest.ScenarioTree(t, "obj", "")))

	require.NoError(t, m.SetMode(mirror.ModeReadOnly))
	require.Error(t, m.CreateFileTree(ctx, storetest.ScenarioTree(t, "obj", "")))
	require.Error(t, m.DeleteView(ctx, "obj", ""))

	tree, err := m.LoadFileTree(ctx, "obj", "")
	require.NoError(t, err)
	require.Equal(t, 4, tree.Len())

	require.Error(t, m.SetMode("bogus"))
}

func TestDualWriteMirrorsUpdates(t *testing.T) {
	ctx := context.Background()
	m := mirror.New(newNested(t), newGraph(t), mirror.ModeDualWrite, zerolog.Nop())
	defer m.Close()
	require.NoError(t, m.CreateFileTree(ctx, storetest.ScenarioTree(t, "obj", "")))

	tree, err := m.LoadFileTree(ctx, "obj", "")
	require.NoError(t, err)
	idx, _ := tree.Lookup("sub", "b.txt")
	data := tree.Node(idx).Clone()
	data.Attributes.Set("checked", "yes")
	require.NoError(t, m.UpdateNodeData(ctx, tree.Node(idx).ID, data))

	diffs, err := m.Verify(ctx, "obj")
	require.NoError(t, err)
	require.Empty(t, diffs)

	other, err := m.Secondary().LoadFileTree(ctx, "obj", "")
	require.NoError(t, err)
	oidx, _ := other.Lookup("sub", "b.txt")
	v, ok := other.Node(oidx).Attributes.Get("checked")
	require.True(t, ok)
	require.Equal(t, "yes", v)
}

func TestSyncAndSwap(t *testing.T) {
	ctx := context.Background()
	primary, secondary := newNested(t), newGraph(t)
	m := mirror.New(primary, secondary, mirror.ModeSingle, zerolog.Nop())
	defer m.Close()

	require.NoError(t, primary.CreateFileTree(ctx, storetest.ScenarioTree(t, "obj", "")))
	require.NoError(t, primary.CreateFileTree(ctx, storetest.WideTree(t, "obj", "raw", 3, 3)))
	require.NoError(t, secondary.CreateFileTree(ctx, storetest.ScenarioTree(t, "obj", "stale")))

	diffs, err := m.Verify(ctx, "obj")
	require.NoError(t, err)
	require.Len(t, diffs, 3)

	res, err := m.Sync(ctx, "obj")
	require.NoError(t, err)
	require.Equal(t, []string{models.DefaultView, "raw"}, res.Copied)
	require.Equal(t, []string{"stale"}, res.Deleted)

	diffs, err = m.Verify(ctx, "obj")
	require.NoError(t, err)
	require.Empty(t, diffs)

	m.SwapStores()
	require.Same(t, secondary, m.Primary())
	root, err := m.GetRootNodeID(ctx, "obj", "raw")
	require.NoError(t, err)
	_, err = models.ParseVertexID(root.InTreeID)
	require.NoError(t, err)
}

func TestValidationLogsDifferences(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	primary, secondary := newNested(t), newGraph(t)
	m := mirror.New(primary, secondary, mirror.ModeValidation, zerolog.New(&buf))
	defer m.Close()

	require.NoError(t, primary.CreateFileTree(ctx, storetest.ScenarioTree(t, "obj", "")))
	require.NoError(t, secondary.CreateFileTree(ctx, storetest.WideTree(t, "obj", "", 1, 1)))

	_, err := m.LoadFileTree(ctx, "obj", "")
	require.NoError(t, err)
	require.Contains(t, buf.String(), "validation: trees differ")
}
