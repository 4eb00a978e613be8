package mirror

import (
	"context"
	"fmt"

	"github.com/google/go-cmp/cmp"

	"github.com/surrealdb/dataorg/pkg/models"
	"github.com/surrealdb/dataorg/pkg/store"
)

// copyView replaces the view in dst with its content in src. A view missing from src is
// deleted from dst.
func copyView(ctx context.Context, src, dst store.Store, digitalObjectID, view string) error {
	tree, err := src.LoadFileTree(ctx, digitalObjectID, view)
	if models.ErrNotFound.Has(err) {
		return dst.DeleteView(ctx, digitalObjectID, view)
	}
	if err != nil {
		return fmt.Errorf("failed to load view %s: %w", models.ViewOrDefault(view), err)
	}
	return dst.CreateFileTree(ctx, tree)
}

func treeDiff(a, b *models.FileTree) string {
	return cmp.Diff(models.Document(a, false), models.Document(b, false))
}

// SyncResult reports what Sync changed.
type SyncResult struct {
	Copied  []string
	Deleted []string
}

// Sync makes the secondary's views of a digital object equal to the primary's: every
// view of the primary is copied and views only the secondary has are deleted.
func (m *MirrorStore) Sync(ctx context.Context, digitalObjectID string) (SyncResult, error) {
	primary, secondary := m.Primary(), m.Secondary()
	var res SyncResult

	views, err := primary.GetViews(ctx, digitalObjectID)
	if err != nil {
		return res, fmt.Errorf("failed to list primary views: %w", err)
	}
	for _, view := range views {
		if err := copyView(ctx, primary, secondary, digitalObjectID, view); err != nil {
			return res, fmt.Errorf("failed to sync view %s: %w", view, err)
		}
		res.Copied = append(res.Copied, view)
	}

	stale, err := secondary.GetViews(ctx, digitalObjectID)
	if err != nil {
		return res, fmt.Errorf("failed to list secondary views: %w", err)
	}
	keep := make(map[string]bool, len(views))
	for _, v := range views {
		keep[v] = true
	}
	for _, view := range stale {
		if keep[view] {
			continue
		}
		if err := secondary.DeleteView(ctx, digitalObjectID, view); err != nil {
			return res, fmt.Errorf("failed to delete stale view %s: %w", view, err)
		}
		res.Deleted = append(res.Deleted, view)
	}
	m.log.Info().Str("object", digitalObjectID).Strs("copied", res.Copied).Strs("deleted", res.Deleted).Msg("synced views")
	return res, nil
}

// Verify compares every view of a digital object in both stores through all read
// operations. It returns the differences keyed by view; an empty map means equivalent.
func (m *MirrorStore) Verify(ctx context.Context, digitalObjectID string) (map[string]string, error) {
	primary, secondary := m.Primary(), m.Secondary()
	a, err := primary.GetViews(ctx, digitalObjectID)
	if err != nil {
		return nil, err
	}
	b, err := secondary.GetViews(ctx, digitalObjectID)
	if err != nil {
		return nil, err
	}

	diffs := map[string]string{}
	seen := map[string]bool{}
	for _, view := range a {
		seen[view] = true
	}
	for _, view := range b {
		if !seen[view] {
			diffs[view] = "view only exists in secondary"
		}
	}
	inB := map[string]bool{}
	for _, view := range b {
		inB[view] = true
	}
	for _, view := range a {
		if !inB[view] {
			diffs[view] = "view only exists in primary"
			continue
		}
		diff, err := store.Compare(ctx, primary, secondary, digitalObjectID, view)
		if err != nil {
			return nil, fmt.Errorf("failed to compare view %s: %w", view, err)
		}
		if diff != "" {
			diffs[view] = diff
		}
	}
	return diffs, nil
}
