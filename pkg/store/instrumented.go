package store

import (
	"context"
	"strconv"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/spacemonkeygo/monkit/v3"

	"github.com/surrealdb/dataorg/pkg/models"
)

var mon = monkit.Package()

var instrumentedID int64

// Instrumented logs every call at debug level and records a monkit task for it.
type Instrumented struct {
	Store
	log zerolog.Logger
}

// NewInstrumented wraps store. Every wrapper gets its own numeric name in the log.
func NewInstrumented(log zerolog.Logger, store Store) *Instrumented {
	id := atomic.AddInt64(&instrumentedID, 1)
	return &Instrumented{
		Store: store,
		log:   log.With().Str("store", strconv.FormatInt(id, 10)).Logger(),
	}
}

// Unwrap returns the underlying store
func (s *Instrumented) Unwrap() Store {
	return s.Store
}

func (s *Instrumented) CreateFileTree(ctx context.Context, tree *models.FileTree) (err error) {
	defer mon.Task()(&ctx)(&err)
	s.log.Debug().Str("object", tree.DigitalObjectID).Str("view", tree.View).Int("nodes", tree.Len()).Msg("CreateFileTree")
	return s.Store.CreateFileTree(ctx, tree)
}

func (s *Instrumented) LoadFileTree(ctx context.Context, digitalObjectID, view string) (_ *models.FileTree, err error) {
	defer mon.Task()(&ctx)(&err)
	tree, err := s.Store.LoadFileTree(ctx, digitalObjectID, view)
	s.log.Debug().Str("object", digitalObjectID).Str("view", view).Int("nodes", tree.Len()).Err(err).Msg("LoadFileTree")
	return tree, err
}

func (s *Instrumented) LoadSubTree(ctx context.Context, id models.NodeID, relativeDepth int) (_ *models.FileTree, err error) {
	defer mon.Task()(&ctx)(&err)
	tree, err := s.Store.LoadSubTree(ctx, id, relativeDepth)
	s.log.Debug().Stringer("node", id).Int("depth", relativeDepth).Int("nodes", tree.Len()).Err(err).Msg("LoadSubTree")
	return tree, err
}

func (s *Instrumented) GetChildren(ctx context.Context, id models.NodeID, first, max int) (_ []models.Node, err error) {
	defer mon.Task()(&ctx)(&err)
	children, err := s.Store.GetChildren(ctx, id, first, max)
	s.log.Debug().Stringer("node", id).Int("first", first).Int("max", max).Int("children", len(children)).Err(err).Msg("GetChildren")
	return children, err
}

func (s *Instrumented) GetChildCount(ctx context.Context, id models.NodeID) (_ int64, err error) {
	defer mon.Task()(&ctx)(&err)
	n, err := s.Store.GetChildCount(ctx, id)
	s.log.Debug().Stringer("node", id).Int64("count", n).Err(err).Msg("GetChildCount")
	return n, err
}

func (s *Instrumented) GetRootNodeID(ctx context.Context, digitalObjectID, view string) (_ models.NodeID, err error) {
	defer mon.Task()(&ctx)(&err)
	id, err := s.Store.GetRootNodeID(ctx, digitalObjectID, view)
	s.log.Debug().Str("object", digitalObjectID).Str("view", view).Stringer("root", id).Err(err).Msg("GetRootNodeID")
	return id, err
}

func (s *Instrumented) LoadNode(ctx context.Context, id models.NodeID) (_ models.Node, err error) {
	defer mon.Task()(&ctx)(&err)
	s.log.Debug().Stringer("node", id).Msg("LoadNode")
	return s.Store.LoadNode(ctx, id)
}

func (s *Instrumented) UpdateNodeData(ctx context.Context, id models.NodeID, data models.Node) (err error) {
	defer mon.Task()(&ctx)(&err)
	s.log.Debug().Stringer("node", id).Str("name", data.Name).Msg("UpdateNodeData")
	return s.Store.UpdateNodeData(ctx, id, data)
}

func (s *Instrumented) GetViews(ctx context.Context, digitalObjectID string) (_ []string, err error) {
	defer mon.Task()(&ctx)(&err)
	views, err := s.Store.GetViews(ctx, digitalObjectID)
	s.log.Debug().Str("object", digitalObjectID).Strs("views", views).Err(err).Msg("GetViews")
	return views, err
}

func (s *Instrumented) DeleteView(ctx context.Context, digitalObjectID, view string) (err error) {
	defer mon.Task()(&ctx)(&err)
	s.log.Debug().Str("object", digitalObjectID).Str("view", view).Msg("DeleteView")
	return s.Store.DeleteView(ctx, digitalObjectID, view)
}
