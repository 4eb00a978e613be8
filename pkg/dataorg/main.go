package dataorg

import (
	"context"
	"fmt"
)

// Main parses args, opens the configured backend and runs the command. It is what the
// dataorg binary runs and can be called from tests directly.
//
// # Environment Variables
//
//	DATAORG_<FLAG>   - any flag, e.g. DATAORG_BACKEND=postgres or DATAORG_BATCH_SIZE=1000
//	POSTGRES_DSN     - PostgreSQL connection string
//	SURREALDB_URL    - SurrealDB WebSocket URL (default: ws://localhost:8000/rpc)
//	SURREALDB_NS     - SurrealDB namespace (default: dataorg)
//	SURREALDB_DB     - SurrealDB database (default: dataorg)
//	SURREALDB_USER   - SurrealDB username (default: root)
//	SURREALDB_PASS   - SurrealDB password (default: root)
//
// # Moving views between backends
//
//  1. dataorg --backend mirror --mode read_only sync --object X
//     copies every view of X from the primary to the secondary
//  2. dataorg --backend mirror --mode validation ...
//     writes go to both stores; whole-view reads are compared and differences logged
//  3. dataorg --backend mirror verify --object X
//     compares every view through all read operations
//  4. switch the plain --backend to the secondary
func Main(ctx context.Context, args []string, opts ...Option) error {
	cmd, config, err := Parse(args)
	if err != nil {
		return fmt.Errorf("failed to parse configuration: %w", err)
	}

	app, err := New(ctx, config, opts...)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}
	defer app.Close()

	switch c := cmd.(type) {
	case *MigrateCommand:
		err = app.Migrate(ctx, c)
	case *ImportCommand:
		err = app.Import(ctx, c)
	case *ExportCommand:
		err = app.Export(ctx, c)
	case *ViewsCommand:
		err = app.Views(ctx, c)
	case *ChildrenCommand:
		err = app.Children(ctx, c)
	case *SubtreeCommand:
		err = app.Subtree(ctx, c)
	case *SyncCommand:
		err = app.Sync(ctx, c)
	case *VerifyCommand:
		err = app.Verify(ctx, c)
	default:
		return fmt.Errorf("unknown command type: %T", cmd)
	}
	if err != nil {
		return fmt.Errorf("%s failed: %w", cmd.Name(), err)
	}
	return nil
}
