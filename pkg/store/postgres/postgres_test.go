package postgres_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/surrealdb/dataorg/pkg/models"
	"github.com/surrealdb/dataorg/pkg/nestedset"
	"github.com/surrealdb/dataorg/pkg/store"
	"github.com/surrealdb/dataorg/pkg/store/postgres"
	"github.com/surrealdb/dataorg/pkg/store/storetest"
)

func newSQLite(t *testing.T, opts ...postgres.Option) *postgres.PostgresStore {
	t.Helper()
	s, err := postgres.NewSQLiteStore(":memory:", opts...)
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestSQLiteSuite(t *testing.T) {
	storetest.RunTests(t, func(t *testing.T) store.Store { return newSQLite(t) })
}

func TestSQLiteSmallBatches(t *testing.T) {
	storetest.RunTests(t, func(t *testing.T) store.Store { return newSQLite(t, postgres.WithBatchSize(7)) })
}

func TestScenarioSteps(t *testing.T) {
	ctx := context.Background()
	s := newSQLite(t)
	defer s.Close()

	require.NoError(t, s.CreateFileTree(ctx, storetest.ScenarioTree(t, "obj-1", "")))
	records, err := s.Records(ctx, "obj-1", "")
	require.NoError(t, err)

	type span struct {
		name              string
		arrived, departed int64
		depth             int
	}
	var got []span
	for _, r := range records {
		got = append(got, span{r.Node.Name, r.StepArrived, r.StepDeparted, r.Depth})
	}
	require.Equal(t, []span{
		{"root", 100, 800, 0},
		{"a.txt", 200, 300, 1},
		{"sub", 400, 700, 1},
		{"b.txt", 500, 600, 2},
	}, got)

	root, err := s.GetRootNodeID(ctx, "obj-1", "")
	require.NoError(t, err)
	require.Equal(t, "100", root.InTreeID)
}

func TestNestedSetInvariant(t *testing.T) {
	ctx := context.Background()
	s := newSQLite(t, postgres.WithBatchSize(10))
	defer s.Close()

	tree := storetest.WideTree(t, "obj-inv", "", 7, 6)
	require.NoError(t, s.CreateFileTree(ctx, tree))
	records, err := s.Records(ctx, "obj-inv", "")
	require.NoError(t, err)
	require.Len(t, records, tree.Len())

	for _, p := range records {
		for _, c := range records {
			if p.StepArrived == c.StepArrived {
				continue
			}
			// spans are either nested or disjoint
			nested := p.Contains(c) || c.Contains(p)
			disjoint := p.StepDeparted < c.StepArrived || c.StepDeparted < p.StepArrived
			require.True(t, nested != disjoint, "spans %d-%d and %d-%d", p.StepArrived, p.StepDeparted, c.StepArrived, c.StepDeparted)
		}
	}

	rebuilt, err := nestedset.BuildTree(records)
	require.NoError(t, err)
	require.Equal(t, tree.Len(), rebuilt.Len())
}

func TestUpdateKeepsSteps(t *testing.T) {
	ctx := context.Background()
	s := newSQLite(t)
	defer s.Close()

	require.NoError(t, s.CreateFileTree(ctx, storetest.ScenarioTree(t, "obj-u", "")))
	before, err := s.Records(ctx, "obj-u", "")
	require.NoError(t, err)

	sub := before[2].NodeID()
	data := before[2].LoadedNode()
	data.Name = "renamed"
	data.Attributes.Set("k", "v")
	require.NoError(t, s.UpdateNodeData(ctx, sub, data))

	after, err := s.Records(ctx, "obj-u", "")
	require.NoError(t, err)
	require.Len(t, after, len(before))
	for i := range before {
		require.Equal(t, before[i].StepArrived, after[i].StepArrived)
		require.Equal(t, before[i].StepDeparted, after[i].StepDeparted)
		require.Equal(t, before[i].Depth, after[i].Depth)
	}
	require.Equal(t, "renamed", after[2].Node.Name)
	v, ok := after[2].Node.Attributes.Get("k")
	require.True(t, ok)
	require.Equal(t, "v", v)

	err = s.UpdateNodeData(ctx, sub, models.NewFile("renamed", models.MustLocate("file:///x")))
	require.True(t, models.ErrTypeMismatch.Has(err), "got %v", err)
}

func TestPostgresSuite(t *testing.T) {
	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_DSN not set")
	}
	storetest.RunTests(t, func(t *testing.T) store.Store {
		s, err := postgres.NewPostgresStore(dsn)
		require.NoError(t, err)
		ctx := context.Background()
		require.NoError(t, s.Migrate(ctx))
		for _, oid := range []string{"obj-1", "obj-wide", "obj-page", "obj-depth", "obj-r", "obj-v", "obj-other", "obj-d", "obj-u", "obj-n", "obj-c"} {
			views, err := s.GetViews(ctx, oid)
			require.NoError(t, err)
			for _, v := range views {
				require.NoError(t, s.DeleteView(ctx, oid, v))
			}
		}
		return s
	})
}
