package store

import (
	"context"
	"fmt"

	"github.com/surrealdb/dataorg/pkg/models"
)

// ReadOnlyStore wraps a Store and prevents write operations when in read-only mode.
//
// It is used while views are copied between backends: the copy runs with the source
// switched to read-only so no view changes underneath it. The read-only state is read
// from isReadOnly on every call, so the mode can be toggled without recreating the store.
//
// CreateFileTree, UpdateNodeData and DeleteView return an error while in read-only mode;
// reads continue to work normally.
type ReadOnlyStore struct {
	Store
	isReadOnly func() bool
}

// NewReadOnlyStore creates a new read-only wrapper for a store
func NewReadOnlyStore(store Store, isReadOnly func() bool) Store {
	return &ReadOnlyStore{
		Store:      store,
		isReadOnly: isReadOnly,
	}
}

// Unwrap returns the underlying store
func (r *ReadOnlyStore) Unwrap() Store {
	return r.Store
}

// checkReadOnly returns an error if the store is in read-only mode
func (r *ReadOnlyStore) checkReadOnly() error {
	if r.isReadOnly() {
		return fmt.Errorf("operation denied: store is in read-only mode")
	}
	return nil
}

func (r *ReadOnlyStore) CreateFileTree(ctx context.Context, tree *models.FileTree) error {
	if err := r.checkReadOnly(); err != nil {
		return err
	}
	return r.Store.CreateFileTree(ctx, tree)
}

func (r *ReadOnlyStore) UpdateNodeData(ctx context.Context, id models.NodeID, data models.Node) error {
	if err := r.checkReadOnly(); err != nil {
		return err
	}
	return r.Store.UpdateNodeData(ctx, id, data)
}

func (r *ReadOnlyStore) DeleteView(ctx context.Context, digitalObjectID, view string) error {
	if err := r.checkReadOnly(); err != nil {
		return err
	}
	return r.Store.DeleteView(ctx, digitalObjectID, view)
}
