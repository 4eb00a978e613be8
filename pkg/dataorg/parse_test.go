package dataorg

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/surrealdb/dataorg/pkg/nestedset"
	"github.com/surrealdb/dataorg/pkg/store"
	"github.com/surrealdb/dataorg/pkg/store/mirror"
)

func TestParseDefaults(t *testing.T) {
	cmd, config, err := Parse([]string{"migrate"})
	require.NoError(t, err)
	assert.IsType(t, &MigrateCommand{}, cmd)
	assert.Equal(t, BackendSQLite, config.Backend)
	assert.Equal(t, nestedset.DefaultBatchSize, config.BatchSize)
	assert.Equal(t, mirror.ModeSingle, config.MirrorMode)
	assert.Equal(t, "ws://localhost:8000/rpc", config.SurrealDB.URL)
	assert.False(t, config.ReadOnly)
}

func TestParseCommands(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want Command
	}{
		{"import", []string{"import", "tree.json", "--object", "o1", "--view", "raw"}, &ImportCommand{Path: "tree.json", Object: "o1", View: "raw"}},
		{"export", []string{"export", "--object", "o1", "--out", "x.json", "--with-ids"}, &ExportCommand{Object: "o1", Out: "x.json", WithIDs: true}},
		{"views", []string{"views", "--object", "o1"}, &ViewsCommand{Object: "o1"}},
		{"children by node", []string{"children", "--node", "o1:default:100", "--first", "2", "--max", "3"}, &ChildrenCommand{Node: "o1:default:100", First: 2, Max: 3}},
		{"children by object", []string{"children", "--object", "o1"}, &ChildrenCommand{Object: "o1", Max: store.Unbounded}},
		{"subtree", []string{"subtree", "--object", "o1", "--depth", "1"}, &SubtreeCommand{Object: "o1", Depth: 1}},
		{"sync", []string{"--backend", "mirror", "sync", "--object", "o1"}, &SyncCommand{Object: "o1"}},
		{"verify", []string{"--backend", "mirror", "verify", "--object", "o1"}, &VerifyCommand{Object: "o1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, _, err := Parse(tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.want, cmd)
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		msg  string
	}{
		{"no command", nil, "subcommand required"},
		{"unknown command", []string{"frobnicate"}, "unknown command: frobnicate"},
		{"import without file", []string{"import"}, "import requires a file argument"},
		{"export without object", []string{"export"}, "export requires --object"},
		{"children without target", []string{"children"}, "--node or --object is required"},
		{"bad node id", []string{"children", "--node", "nocolons"}, "invalid node id"},
		{"sync without mirror", []string{"sync", "--object", "o1"}, "sync requires --backend mirror"},
		{"unknown backend", []string{"--backend", "bolt", "migrate"}, "unknown backend"},
		{"bad batch size", []string{"--batch-size", "0", "migrate"}, "invalid batch size"},
		{"bad mode", []string{"--mode", "sideways", "migrate"}, "sideways"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Parse(tt.args)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestParseEnvironment(t *testing.T) {
	t.Setenv("DATAORG_BACKEND", "postgres")
	t.Setenv("DATAORG_BATCH_SIZE", "250")
	t.Setenv("POSTGRES_DSN", "postgres://env@localhost/env")
	t.Setenv("SURREALDB_NS", "envns")

	_, config, err := Parse([]string{"migrate"})
	require.NoError(t, err)
	assert.Equal(t, BackendPostgres, config.Backend)
	assert.Equal(t, 250, config.BatchSize)
	assert.Equal(t, "postgres://env@localhost/env", config.PostgresDSN)
	assert.Equal(t, "envns", config.SurrealDB.Namespace)
}

func TestParseFlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("DATAORG_BACKEND", "postgres")

	_, config, err := Parse([]string{"--backend", "memory", "migrate"})
	require.NoError(t, err)
	assert.Equal(t, BackendMemory, config.Backend)
}

func TestParseConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataorg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend: mirror\nmode: validation\nmirror-primary: sqlite\nmirror-secondary: memory\nread-only: true\n"), 0o600))

	_, config, err := Parse([]string{"--config", path, "migrate"})
	require.NoError(t, err)
	assert.Equal(t, BackendMirror, config.Backend)
	assert.Equal(t, mirror.ModeValidation, config.MirrorMode)
	assert.Equal(t, BackendSQLite, config.MirrorPrimary)
	assert.Equal(t, BackendMemory, config.MirrorSecondary)
	assert.True(t, config.ReadOnly)

	t.Setenv("DATAORG_MODE", "dual_write")
	_, config, err = Parse([]string{"--config", path, "migrate"})
	require.NoError(t, err)
	assert.Equal(t, mirror.ModeDualWrite, config.MirrorMode)
}
