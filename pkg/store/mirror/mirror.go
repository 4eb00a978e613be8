package mirror

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/surrealdb/dataorg/pkg/models"
	"github.com/surrealdb/dataorg/pkg/store"
)

// Mode selects how a MirrorStore routes operations.
type Mode string

const (
	ModeSingle     Mode = "single"
	ModeReadOnly   Mode = "read_only"
	ModeDualWrite  Mode = "dual_write"
	ModeValidation Mode = "validation"
	ModeSwitching  Mode = "switching"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeSingle, ModeReadOnly, ModeDualWrite, ModeValidation, ModeSwitching:
		return m, nil
	default:
		return "", fmt.Errorf("unknown mirror mode %q", s)
	}
}

func (m Mode) dual() bool {
	return m == ModeDualWrite || m == ModeValidation || m == ModeSwitching
}

// MirrorStore implements store.Store over a primary and a secondary store.
type MirrorStore struct {
	primary   store.Store
	secondary store.Store
	mode      Mode
	mu        sync.RWMutex
	log       zerolog.Logger
}

var _ store.Store = (*MirrorStore)(nil)

// New returns a MirrorStore in mode.
func New(primary, secondary store.Store, mode Mode, log zerolog.Logger) *MirrorStore {
	return &MirrorStore{
		primary:   primary,
		secondary: secondary,
		mode:      mode,
		log:       log,
	}
}

// SetMode changes the routing mode.
func (m *MirrorStore) SetMode(mode Mode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := ParseMode(string(mode)); err != nil {
		return err
	}
	m.log.Info().Str("from", string(m.mode)).Str("to", string(mode)).Msg("mirror mode changed")
	m.mode = mode
	return nil
}

// Mode returns the current routing mode.
func (m *MirrorStore) Mode() Mode {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.mode
}

// SwapStores exchanges primary and secondary, typically after a completed migration.
func (m *MirrorStore) SwapStores() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.primary, m.secondary = m.secondary, m.primary
}

// Primary returns the current primary store.
func (m *MirrorStore) Primary() store.Store {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.primary
}

// Secondary returns the current secondary store.
func (m *MirrorStore) Secondary() store.Store {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.secondary
}

type route struct {
	mode   Mode
	read   store.Store
	writes []store.Store
}

func (m *MirrorStore) route() route {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r := route{mode: m.mode, read: m.primary}
	switch m.mode {
	case ModeSwitching:
		r.read = m.secondary
		r.writes = []store.Store{m.secondary, m.primary}
	case ModeDualWrite, ModeValidation:
		r.writes = []store.Store{m.primary, m.secondary}
	case ModeReadOnly:
		r.writes = []store.Store{store.NewReadOnlyStore(m.primary, func() bool { return true })}
	default:
		r.writes = []store.Store{m.primary}
	}
	return r
}

func (m *MirrorStore) Migrate(ctx context.Context) error {
	if err := m.primary.Migrate(ctx); err != nil {
		return fmt.Errorf("primary migration failed: %w", err)
	}
	if err := m.secondary.Migrate(ctx); err != nil {
		return fmt.Errorf("secondary migration failed: %w", err)
	}
	return nil
}

func (m *MirrorStore) Close() error {
	return errors.Join(m.primary.Close(), m.secondary.Close())
}

// CreateFileTree writes tree to every write store, leader first. A failure of the
// follower is returned after the leader already holds the new tree; Sync repairs it.
func (m *MirrorStore) CreateFileTree(ctx context.Context, tree *models.FileTree) error {
	for i, s := range m.route().writes {
		if err := s.CreateFileTree(ctx, tree); err != nil {
			if i > 0 {
				m.log.Error().Err(err).Str("object", tree.DigitalObjectID).Str("view", tree.View).Msg("mirrored write failed")
				return fmt.Errorf("failed to mirror file tree: %w", err)
			}
			return err
		}
	}
	return nil
}

func (m *MirrorStore) DeleteView(ctx context.Context, digitalObjectID, view string) error {
	for i, s := range m.route().writes {
		if err := s.DeleteView(ctx, digitalObjectID, view); err != nil {
			if i > 0 {
				return fmt.Errorf("failed to mirror view deletion: %w", err)
			}
			return err
		}
	}
	return nil
}

// UpdateNodeData updates the node in the store that issued id and copies the resulting
// view to the other write store.
func (m *MirrorStore) UpdateNodeData(ctx context.Context, id models.NodeID, data models.Node) error {
	r := m.route()
	leader := r.writes[0]
	if err := leader.UpdateNodeData(ctx, id, data); err != nil {
		return err
	}
	if len(r.writes) == 1 {
		return nil
	}
	if err := copyView(ctx, leader, r.writes[1], id.DigitalObjectID, id.View); err != nil {
		m.log.Error().Err(err).Str("node", id.String()).Msg("mirrored update failed")
		return fmt.Errorf("failed to mirror node update: %w", err)
	}
	return nil
}

func (m *MirrorStore) LoadFileTree(ctx context.Context, digitalObjectID, view string) (*models.FileTree, error) {
	r := m.route()
	tree, err := r.read.LoadFileTree(ctx, digitalObjectID, view)
	if r.mode == ModeValidation {
		m.validateTree(ctx, tree, err, digitalObjectID, view)
	}
	return tree, err
}

func (m *MirrorStore) validateTree(ctx context.Context, want *models.FileTree, wantErr error, digitalObjectID, view string) {
	got, err := m.Secondary().LoadFileTree(ctx, digitalObjectID, view)
	log := m.log.With().Str("object", digitalObjectID).Str("view", models.ViewOrDefault(view)).Logger()
	switch {
	case wantErr != nil || err != nil:
		if models.ErrNotFound.Has(wantErr) != models.ErrNotFound.Has(err) {
			log.Warn().AnErr("primary", wantErr).AnErr("secondary", err).Msg("validation: stores disagree on view existence")
		}
	default:
		if diff := treeDiff(want, got); diff != "" {
			log.Warn().Str("diff", diff).Msg("validation: trees differ")
		}
	}
}

func (m *MirrorStore) GetViews(ctx context.Context, digitalObjectID string) ([]string, error) {
	r := m.route()
	views, err := r.read.GetViews(ctx, digitalObjectID)
	if err == nil && r.mode == ModeValidation {
		other, otherErr := m.Secondary().GetViews(ctx, digitalObjectID)
		if otherErr == nil && fmt.Sprint(views) != fmt.Sprint(other) {
			m.log.Warn().Str("object", digitalObjectID).Strs("primary", views).Strs("secondary", other).Msg("validation: view lists differ")
		}
	}
	return views, err
}

func (m *MirrorStore) LoadSubTree(ctx context.Context, id models.NodeID, relativeDepth int) (*models.FileTree, error) {
	return m.route().read.LoadSubTree(ctx, id, relativeDepth)
}

func (m *MirrorStore) GetChildren(ctx context.Context, id models.NodeID, first, max int) ([]models.Node, error) {
	return m.route().read.GetChildren(ctx, id, first, max)
}

func (m *MirrorStore) GetChildCount(ctx context.Context, id models.NodeID) (int64, error) {
	return m.route().read.GetChildCount(ctx, id)
}

func (m *MirrorStore) GetRootNodeID(ctx context.Context, digitalObjectID, view string) (models.NodeID, error) {
	return m.route().read.GetRootNodeID(ctx, digitalObjectID, view)
}

func (m *MirrorStore) LoadNode(ctx context.Context, id models.NodeID) (models.Node, error) {
	return m.route().read.LoadNode(ctx, id)
}
