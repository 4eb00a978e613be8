package surrealdb

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/surrealdb/surrealdb.go"
	"github.com/surrealdb/surrealdb.go/pkg/connection"
	"github.com/surrealdb/surrealdb.go/pkg/connection/gorillaws"
	"github.com/surrealdb/surrealdb.go/surrealcbor"

	"github.com/surrealdb/dataorg/pkg/models"
	"github.com/surrealdb/dataorg/pkg/store"
	"github.com/surrealdb/dataorg/pkg/store/graph"
)

// expandChunk bounds the number of parents passed to one INSIDE predicate.
const expandChunk = 1000

// Config holds the connection settings.
type Config struct {
	URL       string
	Namespace string
	Database  string
	Username  string
	Password  string
}

// Driver implements graph.Driver against a SurrealDB server.
type Driver struct {
	db *surrealdb.DB
}

var _ graph.Driver = (*Driver)(nil)

// Open connects to SurrealDB, signs in when credentials are given and selects the
// namespace and database.
func Open(ctx context.Context, cfg Config) (*Driver, error) {
	u, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	conf := connection.NewConfig(u)
	codec := surrealcbor.New()
	conf.Marshaler = codec
	conf.Unmarshaler = codec
	conn := gorillaws.New(conf)

	db, err := surrealdb.FromConnection(ctx, conn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SurrealDB: %w", err)
	}

	if cfg.Username != "" && cfg.Password != "" {
		if _, err := db.SignIn(ctx, map[string]any{
			"user": cfg.Username,
			"pass": cfg.Password,
		}); err != nil {
			_ = db.Close(ctx)
			return nil, fmt.Errorf("failed to authenticate: %w", err)
		}
	}

	if err := db.Use(ctx, cfg.Namespace, cfg.Database); err != nil {
		_ = db.Close(ctx)
		return nil, fmt.Errorf("failed to use namespace/database: %w", err)
	}
	return &Driver{db: db}, nil
}

// DB exposes the connection, mainly for test cleanup.
func (d *Driver) DB() *surrealdb.DB {
	return d.db
}

// Migrate defines the tables and the indexes used by the lookups of this driver.
// Tables stay schemaless.
func (d *Driver) Migrate(ctx context.Context) error {
	const schema = `
DEFINE TABLE IF NOT EXISTS do_node SCHEMALESS;
DEFINE INDEX IF NOT EXISTS do_node_labels ON do_node FIELDS labels;
DEFINE INDEX IF NOT EXISTS do_node_generation ON do_node FIELDS generation;
DEFINE TABLE IF NOT EXISTS do_child TYPE RELATION SCHEMALESS;
DEFINE INDEX IF NOT EXISTS do_child_in ON do_child FIELDS in;
DEFINE INDEX IF NOT EXISTS do_child_generation ON do_child FIELDS generation;
DEFINE TABLE IF NOT EXISTS do_view SCHEMALESS;
DEFINE INDEX IF NOT EXISTS do_view_object ON do_view FIELDS digital_object_id;
`
	if _, err := surrealdb.Query[any](ctx, d.db, schema, nil); err != nil {
		return fmt.Errorf("failed to define schema: %w", err)
	}
	return nil
}

func (d *Driver) Close() error {
	return d.db.Close(context.Background())
}

// handleNotFound reports whether err is the SDK's way of saying that a selected record
// does not exist.
func handleNotFound(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "Expected a single or multiple results but got 0") ||
		strings.Contains(errStr, "cannot unmarshal array into Go value")
}

// query runs sql and returns the result of its last statement.
func query[T any](ctx context.Context, db *surrealdb.DB, sql string, vars map[string]any) ([]T, error) {
	res, err := surrealdb.Query[[]T](ctx, db, sql, vars)
	if err != nil {
		return nil, err
	}
	if res == nil || len(*res) == 0 {
		return nil, nil
	}
	return (*res)[len(*res)-1].Result, nil
}

func (d *Driver) InsertVertices(ctx context.Context, vertices []graph.Vertex) error {
	records := make([]vertexRecord, len(vertices))
	for i, v := range vertices {
		records[i] = recordFromVertex(v)
	}
	sql := "INSERT INTO " + tableNode + " $vertices RETURN NONE"
	if _, err := surrealdb.Query[any](ctx, d.db, sql, map[string]any{"vertices": records}); err != nil {
		return fmt.Errorf("failed to insert vertices: %w", err)
	}
	return nil
}

func (d *Driver) InsertEdges(ctx context.Context, edges []graph.Edge) error {
	if len(edges) == 0 {
		return nil
	}
	// all edges of one batch belong to the same tree
	owner, err := d.Vertex(ctx, edges[0].Parent)
	if err != nil {
		return err
	}
	records := make([]edgeRecord, len(edges))
	for i, e := range edges {
		records[i] = edgeRecord{
			In:              e.Parent,
			Out:             e.Child,
			Position:        e.Position,
			Generation:      e.Generation.String(),
			DigitalObjectID: owner.DigitalObjectID,
			View:            owner.View,
		}
	}
	sql := "INSERT RELATION INTO " + tableChild + " $edges RETURN NONE"
	if _, err := surrealdb.Query[any](ctx, d.db, sql, map[string]any{"edges": records}); err != nil {
		return fmt.Errorf("failed to insert edges: %w", err)
	}
	return nil
}

func (d *Driver) DeleteGeneration(ctx context.Context, digitalObjectID, view string, gen models.Generation) error {
	const sql = `
DELETE do_child WHERE generation = $generation AND digital_object_id = $object AND view = $view;
DELETE do_node WHERE generation = $generation AND digital_object_id = $object AND view = $view;
`
	vars := map[string]any{
		"generation": gen.String(),
		"object":     digitalObjectID,
		"view":       models.ViewOrDefault(view),
	}
	if _, err := surrealdb.Query[any](ctx, d.db, sql, vars); err != nil {
		return fmt.Errorf("failed to delete generation %s: %w", gen, err)
	}
	return nil
}

func viewVars(digitalObjectID, view string) map[string]any {
	return map[string]any{
		"object": digitalObjectID,
		"view":   models.ViewOrDefault(view),
	}
}

func (d *Driver) SwapGeneration(ctx context.Context, digitalObjectID, view string, gen models.Generation) (models.Generation, error) {
	const sql = `UPSERT type::thing('do_view', [$object, $view])
	SET digital_object_id = $object, view = $view, generation = $generation
	RETURN BEFORE`
	vars := viewVars(digitalObjectID, view)
	vars["generation"] = gen.String()
	before, err := query[*viewRecord](ctx, d.db, sql, vars)
	if err != nil {
		return models.Generation{}, fmt.Errorf("failed to swap view generation: %w", err)
	}
	if len(before) == 0 {
		return models.Generation{}, nil
	}
	return before[0].generation()
}

func (d *Driver) CurrentGeneration(ctx context.Context, digitalObjectID, view string) (models.Generation, error) {
	const sql = "SELECT generation FROM type::thing('do_view', [$object, $view])"
	rows, err := query[*viewRecord](ctx, d.db, sql, viewVars(digitalObjectID, view))
	if err != nil {
		if handleNotFound(err) {
			return models.Generation{}, nil
		}
		return models.Generation{}, fmt.Errorf("failed to read view pointer: %w", err)
	}
	if len(rows) == 0 {
		return models.Generation{}, nil
	}
	return rows[0].generation()
}

func (d *Driver) DeleteViewPointer(ctx context.Context, digitalObjectID, view string) (models.Generation, error) {
	const sql = "DELETE type::thing('do_view', [$object, $view]) RETURN BEFORE"
	before, err := query[*viewRecord](ctx, d.db, sql, viewVars(digitalObjectID, view))
	if err != nil {
		return models.Generation{}, fmt.Errorf("failed to delete view pointer: %w", err)
	}
	if len(before) == 0 {
		return models.Generation{}, nil
	}
	return before[0].generation()
}

func (d *Driver) Views(ctx context.Context, digitalObjectID string) ([]string, error) {
	const sql = "SELECT view FROM do_view WHERE digital_object_id = $object ORDER BY view"
	rows, err := query[viewRecord](ctx, d.db, sql, map[string]any{"object": digitalObjectID})
	if err != nil {
		return nil, fmt.Errorf("failed to list views: %w", err)
	}
	views := make([]string, len(rows))
	for i, r := range rows {
		views[i] = r.View
	}
	return views, nil
}

func (d *Driver) FindRoot(ctx context.Context, digitalObjectID, view string, gen models.Generation) (graph.Vertex, error) {
	const sql = `SELECT * FROM do_node
	WHERE labels CONTAINS $root AND digital_object_id = $object AND view = $view AND generation = $generation
	LIMIT 1`
	vars := viewVars(digitalObjectID, view)
	vars["root"] = graph.LabelRoot
	vars["generation"] = gen.String()
	rows, err := query[vertexRecord](ctx, d.db, sql, vars)
	if err != nil {
		return graph.Vertex{}, fmt.Errorf("failed to find root: %w", err)
	}
	if len(rows) == 0 {
		return graph.Vertex{}, models.ErrNotFound.New("root of %s/%s", digitalObjectID, models.ViewOrDefault(view))
	}
	return rows[0].vertex()
}

func (d *Driver) Vertex(ctx context.Context, id models.VertexID) (graph.Vertex, error) {
	rec, err := surrealdb.Select[vertexRecord](ctx, d.db, id.RecordID())
	if err != nil {
		if handleNotFound(err) {
			return graph.Vertex{}, models.ErrNotFound.New("vertex %s", id)
		}
		return graph.Vertex{}, fmt.Errorf("failed to select vertex: %w", err)
	}
	if rec == nil || rec.ID.IsZero() {
		return graph.Vertex{}, models.ErrNotFound.New("vertex %s", id)
	}
	return rec.vertex()
}

func (d *Driver) Children(ctx context.Context, parent models.VertexID, page store.Page) ([]graph.Vertex, error) {
	sql := "SELECT in AS parent, position, out.* AS child FROM do_child WHERE in = $parent ORDER BY position"
	vars := map[string]any{"parent": parent.RecordID(), "start": page.First}
	if page.Bounded() {
		sql += " LIMIT $limit"
		vars["limit"] = page.Max
	}
	sql += " START $start"
	rows, err := query[childRecord](ctx, d.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to select children: %w", err)
	}
	out := make([]graph.Vertex, 0, len(rows))
	for _, r := range rows {
		v, err := r.Child.vertex()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (d *Driver) ChildCount(ctx context.Context, parent models.VertexID) (int64, error) {
	const sql = "SELECT count() AS count FROM do_child WHERE in = $parent GROUP ALL"
	type countResult struct {
		Count int64 `json:"count"`
	}
	rows, err := query[countResult](ctx, d.db, sql, map[string]any{"parent": parent.RecordID()})
	if err != nil {
		return 0, fmt.Errorf("failed to count children: %w", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Count, nil
}

func (d *Driver) Expand(ctx context.Context, parents []models.VertexID) (map[models.VertexID][]graph.Vertex, error) {
	const sql = "SELECT in AS parent, position, out.* AS child FROM do_child WHERE in INSIDE $parents ORDER BY position"
	out := make(map[models.VertexID][]graph.Vertex, len(parents))
	for lo := 0; lo < len(parents); lo += expandChunk {
		hi := min(lo+expandChunk, len(parents))
		ids := make([]any, 0, hi-lo)
		for _, p := range parents[lo:hi] {
			ids = append(ids, p.RecordID())
		}
		rows, err := query[childRecord](ctx, d.db, sql, map[string]any{"parents": ids})
		if err != nil {
			return nil, fmt.Errorf("failed to expand vertices: %w", err)
		}
		// rows are globally ordered by position, so each parent's list is too
		for _, r := range rows {
			v, err := r.Child.vertex()
			if err != nil {
				return nil, err
			}
			out[r.Parent] = append(out[r.Parent], v)
		}
	}
	return out, nil
}

func (d *Driver) UpdateVertex(ctx context.Context, v graph.Vertex) error {
	const sql = `UPDATE $id SET
	name = $name,
	description = $description,
	locator_scheme = $locator_scheme,
	locator_value = $locator_value,
	attributes = $attributes`
	vars := map[string]any{
		"id":             v.ID.RecordID(),
		"name":           v.Name,
		"description":    v.Description,
		"locator_scheme": v.Locator.Scheme,
		"locator_value":  v.Locator.Value,
		"attributes":     v.Attributes.Map(),
	}
	rows, err := query[vertexRecord](ctx, d.db, sql, vars)
	if err != nil {
		return fmt.Errorf("failed to update vertex: %w", err)
	}
	if len(rows) == 0 {
		return models.ErrNotFound.New("vertex %s", v.ID)
	}
	return nil
}
