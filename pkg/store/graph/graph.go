package graph

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/surrealdb/dataorg/pkg/models"
	"github.com/surrealdb/dataorg/pkg/nestedset"
	"github.com/surrealdb/dataorg/pkg/store"
)

// GraphStore implements store.Store on top of a Driver.
type GraphStore struct {
	driver    Driver
	batchSize int
	log       zerolog.Logger
}

var _ store.Store = (*GraphStore)(nil)

// Option configures a GraphStore.
type Option func(*GraphStore)

// WithLogger sets the logger for write progress and cleanup failures.
func WithLogger(log zerolog.Logger) Option {
	return func(s *GraphStore) { s.log = log }
}

// WithBatchSize overrides the number of vertices written per batch.
func WithBatchSize(n int) Option {
	return func(s *GraphStore) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// New returns a GraphStore using driver. The store owns the driver and closes it.
func New(driver Driver, opts ...Option) *GraphStore {
	s := &GraphStore{
		driver:    driver,
		batchSize: nestedset.DefaultBatchSize,
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Driver returns the underlying driver.
func (s *GraphStore) Driver() Driver {
	return s.driver
}

func (s *GraphStore) Migrate(ctx context.Context) error {
	if err := s.driver.Migrate(ctx); err != nil {
		return storageErr("migrate graph", err)
	}
	return nil
}

func (s *GraphStore) Close() error {
	return s.driver.Close()
}

func storageErr(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) ||
		models.ErrNotFound.Has(err) || models.ErrTypeMismatch.Has(err) ||
		models.ErrTreeShape.Has(err) || models.ErrStorage.Has(err) {
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	return models.ErrStorage.Wrap(fmt.Errorf("failed to %s: %w", op, err))
}

func nodeID(v Vertex) models.NodeID {
	return models.NodeID{
		DigitalObjectID: v.DigitalObjectID,
		View:            v.View,
		InTreeID:        v.ID.String(),
		IDVersion:       models.CurrentIDVersion,
	}
}

// node converts a vertex to the loaded form of its node.
func (v Vertex) node() models.Node {
	var n models.Node
	if v.Kind == models.KindFile {
		n = models.NewFile(v.Name, v.Locator)
	} else {
		n = models.NewCollection(v.Name)
	}
	n.ID = nodeID(v)
	n.Depth = v.Depth
	n.Description = v.Description
	n.Attributes = v.Attributes.Clone()
	return n
}

func vertexFrom(n *models.Node, digitalObjectID, view string, gen models.Generation, depth int) Vertex {
	v := Vertex{
		ID:              models.NewVertexID(),
		DigitalObjectID: digitalObjectID,
		View:            view,
		Generation:      gen,
		Root:            depth == 0,
		Depth:           depth,
		Name:            n.Name,
		Description:     n.Description,
		Kind:            n.Kind(),
		Attributes:      n.Attributes.Clone(),
	}
	if loc, ok := n.Locator(); ok {
		v.Locator = loc
	}
	return v
}

// CreateFileTree writes tree as a new generation and swaps the view over to it once the
// write is complete. The previous generation is deleted afterwards.
func (s *GraphStore) CreateFileTree(ctx context.Context, tree *models.FileTree) error {
	if tree.IsEmpty() {
		return s.DeleteView(ctx, tree.DigitalObjectID, tree.View)
	}
	gen := models.NewGeneration()
	log := s.log.With().Str("object", tree.DigitalObjectID).Str("view", tree.View).Str("generation", gen.String()).Logger()

	if err := s.writeGeneration(ctx, tree, gen, log); err != nil {
		// the shadow generation was never visible; remove it even when ctx is done
		if cleanupErr := s.driver.DeleteGeneration(context.WithoutCancel(ctx), tree.DigitalObjectID, tree.View, gen); cleanupErr != nil {
			log.Warn().Err(cleanupErr).Msg("failed to remove incomplete generation")
		}
		return storageErr("create file tree", err)
	}

	prev, err := s.driver.SwapGeneration(ctx, tree.DigitalObjectID, tree.View, gen)
	if err != nil {
		if cleanupErr := s.driver.DeleteGeneration(context.WithoutCancel(ctx), tree.DigitalObjectID, tree.View, gen); cleanupErr != nil {
			log.Warn().Err(cleanupErr).Msg("failed to remove unswapped generation")
		}
		return storageErr("swap view generation", err)
	}
	if !prev.IsZero() && prev != gen {
		if err := s.driver.DeleteGeneration(context.WithoutCancel(ctx), tree.DigitalObjectID, tree.View, prev); err != nil {
			// unreachable from the view pointer; only costs space
			log.Warn().Err(err).Str("previous", prev.String()).Msg("failed to delete previous generation")
		}
	}
	log.Debug().Int("nodes", tree.Len()).Msg("replaced view")
	return nil
}

func (s *GraphStore) writeGeneration(ctx context.Context, tree *models.FileTree, gen models.Generation, log zerolog.Logger) error {
	ids := make([]models.VertexID, tree.Len())
	positions := make([]int, tree.Len())
	var (
		vertices = make([]Vertex, 0, min(s.batchSize, tree.Len()))
		edges    = make([]Edge, 0, min(s.batchSize, tree.Len()))
		written  int
		batches  int
	)

	flush := func() error {
		if len(vertices) == 0 {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.driver.InsertVertices(ctx, vertices); err != nil {
			return err
		}
		if len(edges) > 0 {
			if err := s.driver.InsertEdges(ctx, edges); err != nil {
				return err
			}
		}
		written += len(vertices)
		batches++
		log.Debug().Int("batch", batches).Int("vertices", len(vertices)).Int("written", written).Msg("flushed graph batch")
		vertices = vertices[:0]
		edges = edges[:0]
		return nil
	}

	// pre-order guarantees parents are written in the same or an earlier batch
	return tree.Walk(models.RootIndex, func(i models.Index, rel int) error {
		v := vertexFrom(tree.Node(i), tree.DigitalObjectID, tree.View, gen, rel)
		ids[i] = v.ID
		for p, c := range tree.Children(i) {
			positions[c] = p
		}
		vertices = append(vertices, v)
		if parent := tree.Parent(i); parent != models.NoIndex {
			edges = append(edges, Edge{
				Parent:     ids[parent],
				Child:      v.ID,
				Position:   positions[i],
				Generation: gen,
			})
		}
		if len(vertices) >= s.batchSize {
			return flush()
		}
		return nil
	}, func(i models.Index, _ int) error {
		if i == models.RootIndex {
			return flush()
		}
		return nil
	})
}

// resolve returns the vertex of id if it belongs to the current generation of its view.
func (s *GraphStore) resolve(ctx context.Context, id models.NodeID) (Vertex, error) {
	if id.IDVersion != models.CurrentIDVersion {
		return Vertex{}, models.ErrNotFound.New("node %s: unsupported id version %d", id, id.IDVersion)
	}
	vid, err := models.ParseVertexID(id.InTreeID)
	if err != nil {
		return Vertex{}, models.ErrNotFound.New("node %s: %v", id, err)
	}
	v, err := s.driver.Vertex(ctx, vid)
	if err != nil {
		return Vertex{}, err
	}
	view := models.ViewOrDefault(id.View)
	if v.DigitalObjectID != id.DigitalObjectID || v.View != view {
		return Vertex{}, models.ErrNotFound.New("node %s", id)
	}
	gen, err := s.driver.CurrentGeneration(ctx, id.DigitalObjectID, view)
	if err != nil {
		return Vertex{}, err
	}
	if gen.IsZero() || gen != v.Generation {
		return Vertex{}, models.ErrNotFound.New("node %s belongs to a replaced tree", id)
	}
	return v, nil
}

func (s *GraphStore) currentRoot(ctx context.Context, digitalObjectID, view string) (Vertex, error) {
	view = models.ViewOrDefault(view)
	gen, err := s.driver.CurrentGeneration(ctx, digitalObjectID, view)
	if err != nil {
		return Vertex{}, err
	}
	if gen.IsZero() {
		return Vertex{}, models.ErrNotFound.New("view %s of %s", view, digitalObjectID)
	}
	return s.driver.FindRoot(ctx, digitalObjectID, view, gen)
}

// expand attaches the descendants of root down to relativeDepth levels to loader, one
// Expand call per level. The loader must have been started at root.
func (s *GraphStore) expand(ctx context.Context, loader *models.Loader, root Vertex, relativeDepth int) (*models.FileTree, error) {
	type open struct {
		id  models.VertexID
		idx models.Index
	}
	var level []open
	if root.Kind != models.KindFile {
		level = append(level, open{id: root.ID, idx: models.RootIndex})
	}
	for rel := 1; len(level) > 0 && store.WithinDepth(rel, relativeDepth); rel++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		parents := make([]models.VertexID, len(level))
		for i, o := range level {
			parents[i] = o.id
		}
		children, err := s.driver.Expand(ctx, parents)
		if err != nil {
			return nil, err
		}
		var next []open
		for _, o := range level {
			for _, c := range children[o.id] {
				idx, err := loader.Attach(o.idx, c.node())
				if err != nil {
					return nil, err
				}
				next = append(next, open{id: c.ID, idx: idx})
			}
		}
		level = next
	}
	return loader.Tree(), nil
}

func (s *GraphStore) LoadFileTree(ctx context.Context, digitalObjectID, view string) (*models.FileTree, error) {
	root, err := s.currentRoot(ctx, digitalObjectID, view)
	if err != nil {
		return nil, storageErr("load file tree", err)
	}
	loader, err := models.NewLoader(root.DigitalObjectID, root.View, root.node())
	if err != nil {
		return nil, storageErr("load file tree", err)
	}
	tree, err := s.expand(ctx, loader, root, store.Unbounded)
	if err != nil {
		return nil, storageErr("load file tree", err)
	}
	return tree, nil
}

func (s *GraphStore) LoadSubTree(ctx context.Context, id models.NodeID, relativeDepth int) (*models.FileTree, error) {
	v, err := s.resolve(ctx, id)
	if err != nil {
		return nil, storageErr("load subtree", err)
	}
	loader := models.NewSubtreeLoader(v.DigitalObjectID, v.View, v.node())
	tree, err := s.expand(ctx, loader, v, store.NormalizeDepth(relativeDepth))
	if err != nil {
		return nil, storageErr("load subtree", err)
	}
	return tree, nil
}

func (s *GraphStore) GetChildren(ctx context.Context, id models.NodeID, first, max int) ([]models.Node, error) {
	v, err := s.resolve(ctx, id)
	if err != nil {
		return nil, storageErr("get children", err)
	}
	page := store.NewPage(first, max)
	if page.Empty() {
		return []models.Node{}, nil
	}
	children, err := s.driver.Children(ctx, v.ID, page)
	if err != nil {
		return nil, storageErr("get children", err)
	}
	nodes := make([]models.Node, len(children))
	for i, c := range children {
		nodes[i] = c.node()
	}
	return nodes, nil
}

func (s *GraphStore) GetChildCount(ctx context.Context, id models.NodeID) (int64, error) {
	v, err := s.resolve(ctx, id)
	if err != nil {
		return 0, storageErr("count children", err)
	}
	n, err := s.driver.ChildCount(ctx, v.ID)
	if err != nil {
		return 0, storageErr("count children", err)
	}
	return n, nil
}

func (s *GraphStore) GetRootNodeID(ctx context.Context, digitalObjectID, view string) (models.NodeID, error) {
	root, err := s.currentRoot(ctx, digitalObjectID, view)
	if err != nil {
		return models.NodeID{}, storageErr("get root node", err)
	}
	return nodeID(root), nil
}

func (s *GraphStore) LoadNode(ctx context.Context, id models.NodeID) (models.Node, error) {
	v, err := s.resolve(ctx, id)
	if err != nil {
		return models.Node{}, storageErr("load node", err)
	}
	return v.node(), nil
}

// UpdateNodeData rewrites the properties of one vertex. Edges are never touched.
func (s *GraphStore) UpdateNodeData(ctx context.Context, id models.NodeID, data models.Node) error {
	v, err := s.resolve(ctx, id)
	if err != nil {
		return storageErr("update node data", err)
	}
	change, err := store.Diff(v.node(), data)
	if err != nil {
		return storageErr("update node data", err)
	}
	if change.IsEmpty() {
		return nil
	}
	updated := change.Apply(v.node())
	v.Name = updated.Name
	v.Description = updated.Description
	v.Attributes = updated.Attributes
	if loc, ok := updated.Locator(); ok {
		v.Locator = loc
	}
	if err := s.driver.UpdateVertex(ctx, v); err != nil {
		return storageErr("update node data", err)
	}
	return nil
}

func (s *GraphStore) GetViews(ctx context.Context, digitalObjectID string) ([]string, error) {
	views, err := s.driver.Views(ctx, digitalObjectID)
	if err != nil {
		return nil, storageErr("get views", err)
	}
	if views == nil {
		views = []string{}
	}
	return views, nil
}

func (s *GraphStore) DeleteView(ctx context.Context, digitalObjectID, view string) error {
	view = models.ViewOrDefault(view)
	prev, err := s.driver.DeleteViewPointer(ctx, digitalObjectID, view)
	if err != nil {
		return storageErr("delete view", err)
	}
	if prev.IsZero() {
		return nil
	}
	if err := s.driver.DeleteGeneration(ctx, digitalObjectID, view, prev); err != nil {
		return storageErr("delete view", err)
	}
	return nil
}
