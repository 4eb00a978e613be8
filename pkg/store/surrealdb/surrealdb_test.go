package surrealdb_test

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/surrealdb/dataorg/pkg/store"
	"github.com/surrealdb/dataorg/pkg/store/graph"
	"github.com/surrealdb/dataorg/pkg/store/memgraph"
	"github.com/surrealdb/dataorg/pkg/store/storetest"
	"github.com/surrealdb/dataorg/pkg/store/surrealdb"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// open connects to a fresh database of the server named by SURREALDB_URL.
func open(t *testing.T) *surrealdb.Driver {
	t.Helper()
	url := os.Getenv("SURREALDB_URL")
	if url == "" {
		t.Skip("SURREALDB_URL not set")
	}
	ctx := context.Background()
	d, err := surrealdb.Open(ctx, surrealdb.Config{
		URL:       url,
		Namespace: envOr("SURREALDB_NS", "dataorg_test"),
		Database:  "t_" + strings.ReplaceAll(uuid.NewString(), "-", ""),
		Username:  envOr("SURREALDB_USER", "root"),
		Password:  envOr("SURREALDB_PASS", "root"),
	})
	require.NoError(t, err)
	require.NoError(t, d.Migrate(ctx))
	return d
}

func TestSuite(t *testing.T) {
	storetest.RunTests(t, func(t *testing.T) store.Store { return graph.New(open(t)) })
}

func TestSuiteSmallBatches(t *testing.T) {
	storetest.RunTests(t, func(t *testing.T) store.Store { return graph.New(open(t), graph.WithBatchSize(3)) })
}

func TestEquivalentToMemgraph(t *testing.T) {
	remote := graph.New(open(t))
	defer remote.Close()
	mem, err := memgraph.New()
	require.NoError(t, err)
	local := graph.New(mem)
	defer local.Close()

	storetest.RunEquivalence(t, remote, local)
}
