package store

import (
	"context"
	"fmt"

	"github.com/google/go-cmp/cmp"

	"github.com/surrealdb/dataorg/pkg/models"
)

// NodeSnapshot is what the read operations report about one node, without backend ids.
type NodeSnapshot struct {
	Node       *models.JSONNode
	ChildCount int64
	Children   []string
	// SubTrees holds LoadSubTree results for relative depths 0, 1 and unbounded.
	SubTrees [3]*models.ViewDocument
}

// ViewSnapshot is the backend independent picture of one view.
type ViewSnapshot struct {
	Tree  *models.ViewDocument
	Nodes []NodeSnapshot
}

// Snapshot loads a view and queries every node of it through the range operations.
func Snapshot(ctx context.Context, s Store, digitalObjectID, view string) (*ViewSnapshot, error) {
	tree, err := s.LoadFileTree(ctx, digitalObjectID, view)
	if err != nil {
		return nil, err
	}
	snap := &ViewSnapshot{Tree: models.Document(tree, false)}
	err = tree.Walk(models.RootIndex, func(i models.Index, _ int) error {
		n := tree.Node(i)
		count, err := s.GetChildCount(ctx, n.ID)
		if err != nil {
			return fmt.Errorf("failed to count children of %q: %w", n.Name, err)
		}
		children, err := s.GetChildren(ctx, n.ID, 0, Unbounded)
		if err != nil {
			return fmt.Errorf("failed to list children of %q: %w", n.Name, err)
		}
		ns := NodeSnapshot{ChildCount: count}
		for _, c := range children {
			ns.Children = append(ns.Children, c.Name)
		}
		for k, depth := range []int{0, 1, Unbounded} {
			sub, err := s.LoadSubTree(ctx, n.ID, depth)
			if err != nil {
				return fmt.Errorf("failed to load subtree of %q: %w", n.Name, err)
			}
			ns.SubTrees[k] = models.Document(sub, false)
		}
		loaded, err := s.LoadNode(ctx, n.ID)
		if err != nil {
			return fmt.Errorf("failed to load node %q: %w", n.Name, err)
		}
		single, err := models.NewFileTree(digitalObjectID, view, models.NewCollection(""))
		if err != nil {
			return err
		}
		if _, err := single.Add(models.RootIndex, loaded.Detached()); err != nil {
			return err
		}
		ns.Node = models.Document(single, false).Root.Children[0]
		snap.Nodes = append(snap.Nodes, ns)
		return nil
	}, nil)
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// Compare returns a human readable difference between the same view in two stores, or
// an empty string when both report identical results.
func Compare(ctx context.Context, a, b Store, digitalObjectID, view string) (string, error) {
	sa, err := Snapshot(ctx, a, digitalObjectID, view)
	if err != nil {
		return "", fmt.Errorf("failed to snapshot first store: %w", err)
	}
	sb, err := Snapshot(ctx, b, digitalObjectID, view)
	if err != nil {
		return "", fmt.Errorf("failed to snapshot second store: %w", err)
	}
	return cmp.Diff(sa, sb), nil
}
