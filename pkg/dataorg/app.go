package dataorg

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"sync/atomic"

	"github.com/google/renameio"
	"github.com/rs/zerolog"

	"github.com/surrealdb/dataorg/pkg/logger"
	"github.com/surrealdb/dataorg/pkg/models"
	"github.com/surrealdb/dataorg/pkg/store"
	"github.com/surrealdb/dataorg/pkg/store/graph"
	"github.com/surrealdb/dataorg/pkg/store/memgraph"
	"github.com/surrealdb/dataorg/pkg/store/mirror"
	"github.com/surrealdb/dataorg/pkg/store/postgres"
	"github.com/surrealdb/dataorg/pkg/store/surrealdb"
)

// App holds the opened store and everything the commands need.
type App struct {
	config    *Config
	store     store.Store
	mirror    *mirror.MirrorStore
	organizer *Organizer
	log       zerolog.Logger
	logData   *logger.LogData
	out       io.Writer
	readOnly  atomic.Bool
}

// Option configures an App.
type Option func(*App)

// WithOutput redirects command output, stdout by default.
func WithOutput(w io.Writer) Option {
	return func(a *App) { a.out = w }
}

// WithLogger replaces the logger built from the configuration.
func WithLogger(log zerolog.Logger) Option {
	return func(a *App) { a.log = log }
}

// New opens the configured backend.
func New(ctx context.Context, config *Config, opts ...Option) (*App, error) {
	logData, err := logger.New().
		FromPath(config.LogFile).
		WithLevel(config.LogLevel).
		Console(config.LogConsole).
		Make()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	app := &App{
		config:  config,
		log:     logData.Logger,
		logData: logData,
		out:     os.Stdout,
	}
	for _, opt := range opts {
		opt(app)
	}
	app.readOnly.Store(config.ReadOnly)

	s, err := app.open(ctx)
	if err != nil {
		_ = logData.Close()
		return nil, err
	}
	app.store = store.NewReadOnlyStore(store.NewInstrumented(app.log, s), app.IsReadOnly)
	app.organizer = NewOrganizer(app.store, app.log)
	return app, nil
}

func (a *App) open(ctx context.Context) (store.Store, error) {
	config := a.config
	var s store.Store
	var err error
	if config.Backend == BackendMirror {
		primary, err := a.openStore(ctx, config.MirrorPrimary)
		if err != nil {
			return nil, err
		}
		secondary, err := a.openStore(ctx, config.MirrorSecondary)
		if err != nil {
			_ = primary.Close()
			return nil, err
		}
		a.mirror = mirror.New(primary, secondary, config.MirrorMode, a.log.With().Str("component", "mirror").Logger())
		s = a.mirror
		a.log.Info().Str("primary", string(config.MirrorPrimary)).Str("secondary", string(config.MirrorSecondary)).
			Str("mode", string(config.MirrorMode)).Msg("using mirror store")
	} else {
		if s, err = a.openStore(ctx, config.Backend); err != nil {
			return nil, err
		}
	}

	if config.AutoMigrate {
		if err := s.Migrate(ctx); err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("failed to migrate: %w", err)
		}
	}
	return s, nil
}

func (a *App) openStore(ctx context.Context, backend Backend) (store.Store, error) {
	log := a.log.With().Str("backend", string(backend)).Logger()
	switch backend {
	case BackendPostgres:
		s, err := postgres.NewPostgresStore(a.config.PostgresDSN, postgres.WithLogger(log), postgres.WithBatchSize(a.config.BatchSize))
		if err != nil {
			return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		log.Info().Msg("connected to PostgreSQL")
		return s, nil
	case BackendSQLite:
		s, err := postgres.NewSQLiteStore(a.config.SQLitePath, postgres.WithLogger(log), postgres.WithBatchSize(a.config.BatchSize))
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite: %w", err)
		}
		log.Info().Str("path", a.config.SQLitePath).Msg("opened SQLite")
		return s, nil
	case BackendSurrealDB:
		d, err := surrealdb.Open(ctx, a.config.SurrealDB)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to SurrealDB: %w", err)
		}
		log.Info().Str("url", a.config.SurrealDB.URL).Msg("connected to SurrealDB")
		return graph.New(d, graph.WithLogger(log), graph.WithBatchSize(a.config.BatchSize)), nil
	case BackendMemory:
		d, err := memgraph.New()
		if err != nil {
			return nil, err
		}
		return graph.New(d, graph.WithLogger(log), graph.WithBatchSize(a.config.BatchSize)), nil
	default:
		return nil, fmt.Errorf("unsupported backend %q", backend)
	}
}

// Close closes the store and the log file.
func (a *App) Close() error {
	err := a.store.Close()
	if cerr := a.logData.Close(); err == nil {
		err = cerr
	}
	return err
}

// Store returns the store commands run against.
func (a *App) Store() store.Store {
	return a.store
}

// Organizer returns the service facade.
func (a *App) Organizer() *Organizer {
	return a.organizer
}

// IsReadOnly reports whether writes are currently rejected.
func (a *App) IsReadOnly() bool {
	return a.readOnly.Load()
}

// SetReadOnly toggles read-only mode at runtime.
func (a *App) SetReadOnly(on bool) {
	a.readOnly.Store(on)
}

func (a *App) Migrate(ctx context.Context, c *MigrateCommand) error {
	if err := a.store.Migrate(ctx); err != nil {
		return err
	}
	a.log.Info().Msg("schema migrated")
	return nil
}

func (a *App) Import(ctx context.Context, c *ImportCommand) error {
	data, err := os.ReadFile(c.Path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", c.Path, err)
	}
	root, err := a.organizer.ImportJSON(ctx, AuthContext{}, data, c.Object, c.View)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.out, root)
	return err
}

func (a *App) Export(ctx context.Context, c *ExportCommand) error {
	data, err := a.organizer.ExportJSON(ctx, AuthContext{}, c.Object, c.View, c.WithIDs)
	if err != nil {
		return err
	}
	if c.Out == "" || c.Out == "-" {
		_, err := a.out.Write(append(data, '\n'))
		return err
	}
	if err := renameio.WriteFile(c.Out, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", c.Out, err)
	}
	a.log.Info().Str("object", c.Object).Str("view", models.ViewOrDefault(c.View)).Str("out", c.Out).Msg("exported view")
	return nil
}

func (a *App) Views(ctx context.Context, c *ViewsCommand) error {
	views, err := a.organizer.GetViews(ctx, AuthContext{}, c.Object)
	if err != nil {
		return err
	}
	for _, v := range views {
		if _, err := fmt.Fprintln(a.out, v); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) resolveNode(ctx context.Context, node, object, view string) (models.NodeID, error) {
	if node != "" {
		return models.ParseNodeID(node)
	}
	return a.organizer.GetRootNodeIDInView(ctx, AuthContext{}, object, view)
}

func (a *App) Children(ctx context.Context, c *ChildrenCommand) error {
	id, err := a.resolveNode(ctx, c.Node, c.Object, c.View)
	if err != nil {
		return err
	}
	children, err := a.organizer.GetChildren(ctx, AuthContext{}, id, c.First, c.Max)
	if err != nil {
		return err
	}
	for _, n := range children {
		if _, err := fmt.Fprintf(a.out, "%s\t%s\t%s\n", n.ID, n.Kind(), n.Name); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) Subtree(ctx context.Context, c *SubtreeCommand) error {
	id, err := a.resolveNode(ctx, c.Node, c.Object, c.View)
	if err != nil {
		return err
	}
	tree, err := a.organizer.LoadSubTree(ctx, AuthContext{}, id, c.Depth)
	if err != nil {
		return err
	}
	data, err := models.ExportJSON(tree)
	if err != nil {
		return err
	}
	_, err = a.out.Write(append(data, '\n'))
	return err
}

func (a *App) Sync(ctx context.Context, c *SyncCommand) error {
	if a.mirror == nil {
		return fmt.Errorf("sync requires the mirror backend")
	}
	res, err := a.mirror.Sync(ctx, c.Object)
	if err != nil {
		return err
	}
	for _, v := range res.Copied {
		if _, err := fmt.Fprintf(a.out, "copied\t%s\n", v); err != nil {
			return err
		}
	}
	for _, v := range res.Deleted {
		if _, err := fmt.Fprintf(a.out, "deleted\t%s\n", v); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) Verify(ctx context.Context, c *VerifyCommand) error {
	if a.mirror == nil {
		return fmt.Errorf("verify requires the mirror backend")
	}
	diffs, err := a.mirror.Verify(ctx, c.Object)
	if err != nil {
		return err
	}
	if len(diffs) == 0 {
		_, err := fmt.Fprintln(a.out, "equivalent")
		return err
	}
	views := make([]string, 0, len(diffs))
	for v := range diffs {
		views = append(views, v)
	}
	sort.Strings(views)
	for _, v := range views {
		if _, err := fmt.Fprintf(a.out, "view %s differs:\n%s\n", v, diffs[v]); err != nil {
			return err
		}
	}
	return fmt.Errorf("%d of the views of %s differ", len(diffs), c.Object)
}
