package graph

import (
	"context"

	"github.com/surrealdb/dataorg/pkg/models"
	"github.com/surrealdb/dataorg/pkg/store"
)

// Label values of a vertex.
const (
	LabelRoot       = "Root"
	LabelCollection = "Collection"
	LabelFile       = "File"

	labelObjectPrefix = "object:"
	labelViewPrefix   = "view:"
)

// ObjectLabel returns the owner label of a digital object.
func ObjectLabel(digitalObjectID string) string { return labelObjectPrefix + digitalObjectID }

// ViewLabel returns the view label.
func ViewLabel(view string) string { return labelViewPrefix + models.ViewOrDefault(view) }

// Vertex is the stored form of one node.
type Vertex struct {
	ID              models.VertexID
	DigitalObjectID string
	View            string
	Generation      models.Generation
	Root            bool
	Depth           int
	Name            string
	Description     string
	Kind            models.Kind
	Locator         models.Locator
	Attributes      models.Attributes
}

// Labels returns the label set of v.
func (v Vertex) Labels() []string {
	labels := make([]string, 0, 4)
	if v.Root {
		labels = append(labels, LabelRoot)
	}
	if v.Kind == models.KindFile {
		labels = append(labels, LabelFile)
	} else {
		labels = append(labels, LabelCollection)
	}
	return append(labels, ObjectLabel(v.DigitalObjectID), ViewLabel(v.View))
}

// Edge links a parent vertex to the child at Position.
type Edge struct {
	Parent     models.VertexID
	Child      models.VertexID
	Position   int
	Generation models.Generation
}

// Driver is the physical graph layer below GraphStore. Implementations are safe for
// concurrent use. Lookups of absent vertices fail with models.ErrNotFound.
type Driver interface {
	// Migrate prepares tables and indexes.
	Migrate(ctx context.Context) error
	Close() error

	InsertVertices(ctx context.Context, vertices []Vertex) error
	InsertEdges(ctx context.Context, edges []Edge) error
	// DeleteGeneration removes every vertex and edge of gen.
	DeleteGeneration(ctx context.Context, digitalObjectID, view string, gen models.Generation) error

	// SwapGeneration points the view at gen and returns the generation it pointed at
	// before, or the zero Generation.
	SwapGeneration(ctx context.Context, digitalObjectID, view string, gen models.Generation) (models.Generation, error)
	// CurrentGeneration returns the generation the view points at, or the zero Generation.
	CurrentGeneration(ctx context.Context, digitalObjectID, view string) (models.Generation, error)
	// DeleteViewPointer removes the view pointer and returns the generation it pointed at.
	DeleteViewPointer(ctx context.Context, digitalObjectID, view string) (models.Generation, error)
	// Views lists the views of a digital object that have a pointer, sorted.
	Views(ctx context.Context, digitalObjectID string) ([]string, error)

	// FindRoot returns the Root vertex of a generation.
	FindRoot(ctx context.Context, digitalObjectID, view string, gen models.Generation) (Vertex, error)
	Vertex(ctx context.Context, id models.VertexID) (Vertex, error)
	// Children returns the page of children of parent ordered by position.
	Children(ctx context.Context, parent models.VertexID, page store.Page) ([]Vertex, error)
	ChildCount(ctx context.Context, parent models.VertexID) (int64, error)
	// Expand returns the children of every parent, each list ordered by position.
	Expand(ctx context.Context, parents []models.VertexID) (map[models.VertexID][]Vertex, error)
	// UpdateVertex overwrites the properties of an existing vertex.
	UpdateVertex(ctx context.Context, v Vertex) error
}
