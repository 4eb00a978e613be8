// Package store defines the persistence contract of the data organization engine.
//
// The [Store] interface is the one contract shared by two structurally unrelated physical
// encodings of a content tree:
//
//   - [github.com/surrealdb/dataorg/pkg/store/postgres.PostgresStore] keeps one row per node,
//     keyed by (digital object, view, arrival step). Trees are written by the nested-set
//     writer and read back with numeric range predicates.
//   - [github.com/surrealdb/dataorg/pkg/store/graph.GraphStore] keeps one vertex per node and
//     one edge per parent/child link. Trees are read back by walking edges. Its physical
//     primitives come from a [github.com/surrealdb/dataorg/pkg/store/graph.Driver], either
//     SurrealDB or the in-process memgraph.
//
// Both realisations are behaviourally equivalent: for the same input they return the same
// shapes, the same child order and the same counts. Only the in-tree part of a
// [github.com/surrealdb/dataorg/pkg/models.NodeID] differs. The conformance suite in
// [github.com/surrealdb/dataorg/pkg/store/storetest] checks this for every backend.
//
// # Replacing views
//
// Views are only ever replaced as a whole. CreateFileTree deletes the previous tree of the
// view and writes the new one; a reader never observes a half written view because each
// backend makes the replacement atomic in its own way (a single transaction for the
// relational store, a generation swap for the graph store). Long writes stop at the next
// batch boundary when the context is cancelled.
//
// # Shared algorithms
//
// Logic that does not depend on the encoding lives here and is used by every backend:
// [Page] for pagination math, [WithinDepth] for depth bounding and [Diff] for the update
// diff of UpdateNodeData.
//
// # Decorators
//
// [ReadOnlyStore] rejects writes while a predicate reports read-only mode, and
// [Instrumented] adds debug logging and monkit tasks to every call. Both embed the wrapped
// Store and can be stacked.
package store

import (
	"context"

	"github.com/surrealdb/dataorg/pkg/models"
)

// Unbounded as relativeDepth loads a whole subtree; as max it returns all children.
const Unbounded = -1

// Store is the contract implemented by every backend. All methods are safe for
// concurrent use; reads never mutate state.
type Store interface {
	// CreateFileTree replaces the view tree.View of tree.DigitalObjectID with tree.
	// An empty tree deletes the view.
	CreateFileTree(ctx context.Context, tree *models.FileTree) error

	// LoadFileTree loads the complete tree of a view. It fails with ErrNotFound when
	// the view holds no tree.
	LoadFileTree(ctx context.Context, digitalObjectID, view string) (*models.FileTree, error)

	// LoadSubTree loads the node id and its descendants up to relativeDepth levels below
	// it. A depth of 0 loads the node alone; Unbounded loads the whole subtree.
	LoadSubTree(ctx context.Context, id models.NodeID, relativeDepth int) (*models.FileTree, error)

	// GetChildren returns up to max direct children of id in document order, skipping
	// the first first children. A negative max returns all remaining children.
	GetChildren(ctx context.Context, id models.NodeID, first, max int) ([]models.Node, error)

	// GetChildCount returns the number of direct children of id.
	GetChildCount(ctx context.Context, id models.NodeID) (int64, error)

	// GetRootNodeID returns the id of the depth 0 node of a view. An empty view name
	// selects the default view.
	GetRootNodeID(ctx context.Context, digitalObjectID, view string) (models.NodeID, error)

	// LoadNode loads the stored properties of one node without its descendants.
	LoadNode(ctx context.Context, id models.NodeID) (models.Node, error)

	// UpdateNodeData replaces the name, description, locator and attributes of a stored
	// node with those of data. The kind of data must match the stored kind.
	UpdateNodeData(ctx context.Context, id models.NodeID, data models.Node) error

	// GetViews returns the names of all views stored for a digital object, sorted.
	GetViews(ctx context.Context, digitalObjectID string) ([]string, error)

	// DeleteView removes every node of a view. Deleting a missing view is not an error.
	DeleteView(ctx context.Context, digitalObjectID, view string) error

	// Migrate prepares the backing store's schema.
	Migrate(ctx context.Context) error

	// Close releases the backing store's resources.
	Close() error
}
