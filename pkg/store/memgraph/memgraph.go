// Package memgraph is an in-process graph.Driver built on go-memdb.
//
// It keeps vertices, edges and view pointers in three indexed tables and gives every
// write a serialisable transaction. The graph store runs on it in tests and in
// single-process deployments without a SurrealDB server; nothing is persisted.
package memgraph

import (
	"context"
	"sort"

	memdb "github.com/hashicorp/go-memdb"

	"github.com/surrealdb/dataorg/pkg/models"
	"github.com/surrealdb/dataorg/pkg/store"
	"github.com/surrealdb/dataorg/pkg/store/graph"
)

const (
	tableVertex = "vertex"
	tableEdge   = "edge"
	tableView   = "view"
)

type vertexRow struct {
	ID         string
	Generation string
	Root       bool
	Vertex     graph.Vertex
}

type edgeRow struct {
	Child      string
	Parent     string
	Generation string
	Position   int
}

type viewRow struct {
	DigitalObjectID string
	View            string
	Generation      models.Generation
}

func generationKey(digitalObjectID, view string, gen models.Generation) string {
	return digitalObjectID + "\x00" + models.ViewOrDefault(view) + "\x00" + gen.String()
}

func schema() *memdb.DBSchema {
	return &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			tableVertex: {
				Name: tableVertex,
				Indexes: map[string]*memdb.IndexSchema{
					"id":         {Name: "id", Unique: true, Indexer: &memdb.StringFieldIndex{Field: "ID"}},
					"generation": {Name: "generation", Indexer: &memdb.StringFieldIndex{Field: "Generation"}},
					"root": {Name: "root", Indexer: &memdb.CompoundIndex{Indexes: []memdb.Indexer{
						&memdb.StringFieldIndex{Field: "Generation"},
						&memdb.BoolFieldIndex{Field: "Root"},
					}}},
				},
			},
			tableEdge: {
				Name: tableEdge,
				Indexes: map[string]*memdb.IndexSchema{
					// a vertex has at most one incoming edge
					"id":         {Name: "id", Unique: true, Indexer: &memdb.StringFieldIndex{Field: "Child"}},
					"parent":     {Name: "parent", Indexer: &memdb.StringFieldIndex{Field: "Parent"}},
					"generation": {Name: "generation", Indexer: &memdb.StringFieldIndex{Field: "Generation"}},
				},
			},
			tableView: {
				Name: tableView,
				Indexes: map[string]*memdb.IndexSchema{
					"id": {
						Name:   "id",
						Unique: true,
						Indexer: &memdb.CompoundIndex{Indexes: []memdb.Indexer{
							&memdb.StringFieldIndex{Field: "DigitalObjectID"},
							&memdb.StringFieldIndex{Field: "View"},
						}},
					},
					"object": {Name: "object", Indexer: &memdb.StringFieldIndex{Field: "DigitalObjectID"}},
				},
			},
		},
	}
}

// Driver implements graph.Driver in memory.
type Driver struct {
	db *memdb.MemDB
}

var _ graph.Driver = (*Driver)(nil)

// New returns an empty in-memory graph.
func New() (*Driver, error) {
	db, err := memdb.NewMemDB(schema())
	if err != nil {
		return nil, err
	}
	return &Driver{db: db}, nil
}

// Migrate is a no-op; the schema is fixed when the driver is created.
func (d *Driver) Migrate(ctx context.Context) error { return nil }

func (d *Driver) Close() error { return nil }

func (d *Driver) InsertVertices(ctx context.Context, vertices []graph.Vertex) error {
	txn := d.db.Txn(true)
	defer txn.Abort()
	for _, v := range vertices {
		v.Attributes = v.Attributes.Clone()
		row := &vertexRow{
			ID:         v.ID.String(),
			Generation: generationKey(v.DigitalObjectID, v.View, v.Generation),
			Root:       v.Root,
			Vertex:     v,
		}
		if err := txn.Insert(tableVertex, row); err != nil {
			return err
		}
	}
	txn.Commit()
	return nil
}

func (d *Driver) InsertEdges(ctx context.Context, edges []graph.Edge) error {
	txn := d.db.Txn(true)
	defer txn.Abort()
	for _, e := range edges {
		parent, err := txn.First(tableVertex, "id", e.Parent.String())
		if err != nil {
			return err
		}
		if parent == nil {
			return models.ErrNotFound.New("edge parent %s", e.Parent)
		}
		p := parent.(*vertexRow).Vertex
		row := &edgeRow{
			Child:      e.Child.String(),
			Parent:     e.Parent.String(),
			Generation: generationKey(p.DigitalObjectID, p.View, e.Generation),
			Position:   e.Position,
		}
		if err := txn.Insert(tableEdge, row); err != nil {
			return err
		}
	}
	txn.Commit()
	return nil
}

func (d *Driver) DeleteGeneration(ctx context.Context, digitalObjectID, view string, gen models.Generation) error {
	key := generationKey(digitalObjectID, view, gen)
	txn := d.db.Txn(true)
	defer txn.Abort()
	if _, err := txn.DeleteAll(tableEdge, "generation", key); err != nil {
		return err
	}
	if _, err := txn.DeleteAll(tableVertex, "generation", key); err != nil {
		return err
	}
	txn.Commit()
	return nil
}

func currentView(txn *memdb.Txn, digitalObjectID, view string) (*viewRow, error) {
	raw, err := txn.First(tableView, "id", digitalObjectID, models.ViewOrDefault(view))
	if err != nil || raw == nil {
		return nil, err
	}
	return raw.(*viewRow), nil
}

func (d *Driver) SwapGeneration(ctx context.Context, digitalObjectID, view string, gen models.Generation) (models.Generation, error) {
	txn := d.db.Txn(true)
	defer txn.Abort()
	prev, err := currentView(txn, digitalObjectID, view)
	if err != nil {
		return models.Generation{}, err
	}
	row := &viewRow{DigitalObjectID: digitalObjectID, View: models.ViewOrDefault(view), Generation: gen}
	if err := txn.Insert(tableView, row); err != nil {
		return models.Generation{}, err
	}
	txn.Commit()
	if prev == nil {
		return models.Generation{}, nil
	}
	return prev.Generation, nil
}

func (d *Driver) CurrentGeneration(ctx context.Context, digitalObjectID, view string) (models.Generation, error) {
	txn := d.db.Txn(false)
	defer txn.Abort()
	row, err := currentView(txn, digitalObjectID, view)
	if err != nil || row == nil {
		return models.Generation{}, err
	}
	return row.Generation, nil
}

func (d *Driver) DeleteViewPointer(ctx context.Context, digitalObjectID, view string) (models.Generation, error) {
	txn := d.db.Txn(true)
	defer txn.Abort()
	row, err := currentView(txn, digitalObjectID, view)
	if err != nil || row == nil {
		return models.Generation{}, err
	}
	if err := txn.Delete(tableView, row); err != nil {
		return models.Generation{}, err
	}
	txn.Commit()
	return row.Generation, nil
}

func (d *Driver) Views(ctx context.Context, digitalObjectID string) ([]string, error) {
	txn := d.db.Txn(false)
	defer txn.Abort()
	it, err := txn.Get(tableView, "object", digitalObjectID)
	if err != nil {
		return nil, err
	}
	views := []string{}
	for raw := it.Next(); raw != nil; raw = it.Next() {
		views = append(views, raw.(*viewRow).View)
	}
	sort.Strings(views)
	return views, nil
}

func (d *Driver) FindRoot(ctx context.Context, digitalObjectID, view string, gen models.Generation) (graph.Vertex, error) {
	txn := d.db.Txn(false)
	defer txn.Abort()
	raw, err := txn.First(tableVertex, "root", generationKey(digitalObjectID, view, gen), true)
	if err != nil {
		return graph.Vertex{}, err
	}
	if raw == nil {
		return graph.Vertex{}, models.ErrNotFound.New("root of %s/%s", digitalObjectID, models.ViewOrDefault(view))
	}
	return raw.(*vertexRow).Vertex, nil
}

func (d *Driver) Vertex(ctx context.Context, id models.VertexID) (graph.Vertex, error) {
	txn := d.db.Txn(false)
	defer txn.Abort()
	raw, err := txn.First(tableVertex, "id", id.String())
	if err != nil {
		return graph.Vertex{}, err
	}
	if raw == nil {
		return graph.Vertex{}, models.ErrNotFound.New("vertex %s", id)
	}
	return raw.(*vertexRow).Vertex, nil
}

// children returns the child vertices of parent ordered by position. The index is not
// order preserving for integers, so the edges are sorted here.
func children(txn *memdb.Txn, parent models.VertexID) ([]graph.Vertex, error) {
	it, err := txn.Get(tableEdge, "parent", parent.String())
	if err != nil {
		return nil, err
	}
	var edges []*edgeRow
	for raw := it.Next(); raw != nil; raw = it.Next() {
		edges = append(edges, raw.(*edgeRow))
	}
	sort.Slice(edges, func(i, j int) bool { return edges[i].Position < edges[j].Position })

	out := make([]graph.Vertex, 0, len(edges))
	for _, e := range edges {
		raw, err := txn.First(tableVertex, "id", e.Child)
		if err != nil {
			return nil, err
		}
		if raw == nil {
			continue
		}
		out = append(out, raw.(*vertexRow).Vertex)
	}
	return out, nil
}

func (d *Driver) Children(ctx context.Context, parent models.VertexID, page store.Page) ([]graph.Vertex, error) {
	txn := d.db.Txn(false)
	defer txn.Abort()
	all, err := children(txn, parent)
	if err != nil {
		return nil, err
	}
	lo, hi := page.Slice(len(all))
	return all[lo:hi], nil
}

func (d *Driver) ChildCount(ctx context.Context, parent models.VertexID) (int64, error) {
	txn := d.db.Txn(false)
	defer txn.Abort()
	it, err := txn.Get(tableEdge, "parent", parent.String())
	if err != nil {
		return 0, err
	}
	var n int64
	for raw := it.Next(); raw != nil; raw = it.Next() {
		n++
	}
	return n, nil
}

func (d *Driver) Expand(ctx context.Context, parents []models.VertexID) (map[models.VertexID][]graph.Vertex, error) {
	txn := d.db.Txn(false)
	defer txn.Abort()
	out := make(map[models.VertexID][]graph.Vertex, len(parents))
	for _, p := range parents {
		c, err := children(txn, p)
		if err != nil {
			return nil, err
		}
		if len(c) > 0 {
			out[p] = c
		}
	}
	return out, nil
}

func (d *Driver) UpdateVertex(ctx context.Context, v graph.Vertex) error {
	txn := d.db.Txn(true)
	defer txn.Abort()
	raw, err := txn.First(tableVertex, "id", v.ID.String())
	if err != nil {
		return err
	}
	if raw == nil {
		return models.ErrNotFound.New("vertex %s", v.ID)
	}
	old := raw.(*vertexRow)
	// identity and placement are fixed at insert
	updated := old.Vertex
	updated.Name = v.Name
	updated.Description = v.Description
	updated.Locator = v.Locator
	updated.Attributes = v.Attributes.Clone()
	row := &vertexRow{ID: old.ID, Generation: old.Generation, Root: old.Root, Vertex: updated}
	if err := txn.Insert(tableVertex, row); err != nil {
		return err
	}
	txn.Commit()
	return nil
}
