package dataorg

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/surrealdb/dataorg/pkg/models"
	"github.com/surrealdb/dataorg/pkg/store"
)

// AuthContext identifies the caller of an Organizer operation. The engine performs no
// authorization of its own; callers are expected to be authorized already and the
// context is passed through untouched.
type AuthContext struct {
	Principal string
}

// Organizer is the service facade over a store.Store. It adds default-view overloads
// and the JSON view import and export.
type Organizer struct {
	store store.Store
	log   zerolog.Logger
}

// NewOrganizer returns an Organizer using s.
func NewOrganizer(s store.Store, log zerolog.Logger) *Organizer {
	return &Organizer{store: s, log: log}
}

// CreateFileTree replaces the view tree.View of tree.DigitalObjectID with tree.
func (o *Organizer) CreateFileTree(ctx context.Context, auth AuthContext, tree *models.FileTree) error {
	return o.store.CreateFileTree(ctx, tree)
}

// LoadFileTree loads a whole view; it fails with models.ErrNotFound for absent views.
func (o *Organizer) LoadFileTree(ctx context.Context, auth AuthContext, digitalObjectID, view string) (*models.FileTree, error) {
	return o.store.LoadFileTree(ctx, digitalObjectID, view)
}

func (o *Organizer) LoadSubTree(ctx context.Context, auth AuthContext, id models.NodeID, relativeDepth int) (*models.FileTree, error) {
	return o.store.LoadSubTree(ctx, id, relativeDepth)
}

func (o *Organizer) GetChildren(ctx context.Context, auth AuthContext, id models.NodeID, first, max int) ([]models.Node, error) {
	return o.store.GetChildren(ctx, id, first, max)
}

func (o *Organizer) GetChildCount(ctx context.Context, auth AuthContext, id models.NodeID) (int64, error) {
	return o.store.GetChildCount(ctx, id)
}

// GetRootNodeID returns the root of the default view.
func (o *Organizer) GetRootNodeID(ctx context.Context, auth AuthContext, digitalObjectID string) (models.NodeID, error) {
	return o.GetRootNodeIDInView(ctx, auth, digitalObjectID, models.DefaultView)
}

func (o *Organizer) GetRootNodeIDInView(ctx context.Context, auth AuthContext, digitalObjectID, view string) (models.NodeID, error) {
	return o.store.GetRootNodeID(ctx, digitalObjectID, view)
}

func (o *Organizer) LoadNode(ctx context.Context, auth AuthContext, id models.NodeID) (models.Node, error) {
	return o.store.LoadNode(ctx, id)
}

func (o *Organizer) UpdateNodeData(ctx context.Context, auth AuthContext, id models.NodeID, data models.Node) error {
	return o.store.UpdateNodeData(ctx, id, data)
}

func (o *Organizer) GetViews(ctx context.Context, auth AuthContext, digitalObjectID string) ([]string, error) {
	return o.store.GetViews(ctx, digitalObjectID)
}

func (o *Organizer) DeleteView(ctx context.Context, auth AuthContext, digitalObjectID, view string) error {
	return o.store.DeleteView(ctx, digitalObjectID, view)
}

// ImportJSON stores a JSON view document and returns the root id of the new tree.
// Non-empty objectID and view override the identifiers of the document.
func (o *Organizer) ImportJSON(ctx context.Context, auth AuthContext, data []byte, objectID, view string) (models.NodeID, error) {
	tree, err := models.ImportJSON(data)
	if err != nil {
		return models.NodeID{}, err
	}
	if objectID != "" {
		tree.DigitalObjectID = objectID
	}
	if view != "" {
		tree.View = models.ViewOrDefault(view)
	}
	if tree.DigitalObjectID == "" {
		return models.NodeID{}, models.ErrTreeShape.New("view document has no object id")
	}
	if err := o.store.CreateFileTree(ctx, tree); err != nil {
		return models.NodeID{}, err
	}
	o.log.Info().Str("object", tree.DigitalObjectID).Str("view", tree.View).Int("nodes", tree.Len()).Msg("imported view")
	if tree.IsEmpty() {
		return models.NodeID{}, nil
	}
	return o.store.GetRootNodeID(ctx, tree.DigitalObjectID, tree.View)
}

// ExportJSON renders a stored view as a JSON document.
func (o *Organizer) ExportJSON(ctx context.Context, auth AuthContext, digitalObjectID, view string, withIDs bool) ([]byte, error) {
	tree, err := o.store.LoadFileTree(ctx, digitalObjectID, view)
	if err != nil {
		return nil, err
	}
	if withIDs {
		return models.ExportJSON(tree)
	}
	return models.Document(tree, false).Marshal()
}
