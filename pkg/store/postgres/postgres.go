package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/surrealdb/dataorg/pkg/models"
	"github.com/surrealdb/dataorg/pkg/nestedset"
	"github.com/surrealdb/dataorg/pkg/store"
)

// insertChunk bounds the rows of one INSERT statement so that a 4000 record batch stays
// below the bind parameter limits of both PostgreSQL and SQLite.
const insertChunk = 500

type PostgresStore struct {
	db     *gorm.DB
	writer *nestedset.Writer
	log    zerolog.Logger
}

var _ store.Store = (*PostgresStore)(nil)

// Option configures a PostgresStore.
type Option func(*options)

type options struct {
	log       zerolog.Logger
	batchSize int
}

// WithLogger sets the logger for write progress.
func WithLogger(log zerolog.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithBatchSize overrides the number of records written per batch.
func WithBatchSize(n int) Option {
	return func(o *options) { o.batchSize = n }
}

// NewPostgresStore connects to PostgreSQL.
func NewPostgresStore(dsn string, opts ...Option) (*PostgresStore, error) {
	return New(postgres.Open(dsn), opts...)
}

// NewSQLiteStore opens an SQLite database. Use ":memory:" for a private in-memory database.
func NewSQLiteStore(path string, opts ...Option) (*PostgresStore, error) {
	s, err := New(sqlite.Open(path), opts...)
	if err != nil {
		return nil, err
	}
	// SQLite serialises writers anyway, and every connection to ":memory:" would see
	// its own empty database.
	sqlDB, err := s.db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access sqlite connection pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	return s, nil
}

// New opens a store on any GORM dialector.
func New(dialector gorm.Dialector, opts ...Option) (*PostgresStore, error) {
	o := options{log: zerolog.Nop(), batchSize: nestedset.DefaultBatchSize}
	for _, opt := range opts {
		opt(&o)
	}
	writer, err := nestedset.NewWriter(nestedset.WithBatchSize(o.batchSize), nestedset.WithLogger(o.log))
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormlogger.Discard})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return &PostgresStore{db: db, writer: writer, log: o.log}, nil
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&NodeRow{}, &AttributeRow{}); err != nil {
		return storageErr("migrate schema", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// storageErr wraps database faults into ErrStorage. Context errors and errors that
// already carry a class are only annotated.
func storageErr(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) ||
		models.ErrNotFound.Has(err) || models.ErrTypeMismatch.Has(err) ||
		models.ErrTreeShape.Has(err) || models.ErrStorage.Has(err) {
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	return models.ErrStorage.Wrap(fmt.Errorf("failed to %s: %w", op, err))
}

func viewScope(digitalObjectID, view string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("digital_object_id = ? AND view_name = ?", digitalObjectID, models.ViewOrDefault(view))
	}
}

// CreateFileTree replaces a view inside one transaction: the old rows are deleted and
// the new records inserted batch by batch. Any failure, including cancellation between
// batches, rolls back to the previous tree.
func (s *PostgresStore) CreateFileTree(ctx context.Context, tree *models.FileTree) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deleteView(tx, tree.DigitalObjectID, tree.View); err != nil {
			return err
		}
		_, err := s.writer.Write(ctx, tree, func(ctx context.Context, batch []nestedset.Record) error {
			return insertBatch(tx, batch)
		})
		return err
	})
	if err != nil {
		return storageErr("create file tree", err)
	}
	s.log.Debug().Str("object", tree.DigitalObjectID).Str("view", tree.View).Int("nodes", tree.Len()).Msg("replaced view")
	return nil
}

func insertBatch(tx *gorm.DB, batch []nestedset.Record) error {
	rows := make([]NodeRow, len(batch))
	for i, r := range batch {
		rows[i] = rowFromRecord(r)
	}
	if err := tx.Omit(clause.Associations).CreateInBatches(&rows, insertChunk).Error; err != nil {
		return fmt.Errorf("insert nodes: %w", err)
	}
	var attrs []AttributeRow
	for i, r := range batch {
		attrs = append(attrs, attributeRows(rows[i].ID, r.Node.Attributes)...)
	}
	if len(attrs) == 0 {
		return nil
	}
	if err := tx.CreateInBatches(&attrs, insertChunk).Error; err != nil {
		return fmt.Errorf("insert attributes: %w", err)
	}
	return nil
}

func deleteView(tx *gorm.DB, digitalObjectID, view string) error {
	ids := tx.Model(&NodeRow{}).Select("id").Scopes(viewScope(digitalObjectID, view))
	if err := tx.Where("node_id IN (?)", ids).Delete(&AttributeRow{}).Error; err != nil {
		return fmt.Errorf("delete attributes: %w", err)
	}
	if err := tx.Scopes(viewScope(digitalObjectID, view)).Delete(&NodeRow{}).Error; err != nil {
		return fmt.Errorf("delete nodes: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteView(ctx context.Context, digitalObjectID, view string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteView(tx, digitalObjectID, view)
	})
	if err != nil {
		return storageErr("delete view", err)
	}
	return nil
}

// withAttributes loads the attributes of rows in chunks and attaches them.
func withAttributes(db *gorm.DB, rows []NodeRow) error {
	if len(rows) == 0 {
		return nil
	}
	byID := make(map[uint64]*NodeRow, len(rows))
	ids := make([]uint64, len(rows))
	for i := range rows {
		byID[rows[i].ID] = &rows[i]
		ids[i] = rows[i].ID
	}
	for lo := 0; lo < len(ids); lo += insertChunk {
		hi := min(lo+insertChunk, len(ids))
		var attrs []AttributeRow
		if err := db.Where("node_id IN ?", ids[lo:hi]).Find(&attrs).Error; err != nil {
			return fmt.Errorf("load attributes: %w", err)
		}
		for _, a := range attrs {
			row := byID[a.NodeID]
			row.Attributes = append(row.Attributes, a)
		}
	}
	return nil
}

func recordsOf(rows []NodeRow) ([]nestedset.Record, error) {
	records := make([]nestedset.Record, len(rows))
	for i, row := range rows {
		r, err := row.record()
		if err != nil {
			return nil, err
		}
		records[i] = r
	}
	return records, nil
}

// findNode resolves a NodeID to its row, attributes included.
func findNode(db *gorm.DB, id models.NodeID) (NodeRow, error) {
	step, err := nestedset.ParseStep(id)
	if err != nil {
		return NodeRow{}, err
	}
	var row NodeRow
	err = db.Scopes(viewScope(id.DigitalObjectID, id.View)).
		Where("step_arrived = ? AND id_version = ?", step, id.IDVersion).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NodeRow{}, models.ErrNotFound.New("node %s", id)
	}
	if err != nil {
		return NodeRow{}, err
	}
	rows := []NodeRow{row}
	if err := withAttributes(db, rows); err != nil {
		return NodeRow{}, err
	}
	return rows[0], nil
}

// Records returns the stored records of a view in arrival order.
func (s *PostgresStore) Records(ctx context.Context, digitalObjectID, view string) ([]nestedset.Record, error) {
	db := s.db.WithContext(ctx)
	var rows []NodeRow
	if err := db.Scopes(viewScope(digitalObjectID, view)).Order("step_arrived").Find(&rows).Error; err != nil {
		return nil, storageErr("load view", err)
	}
	if err := withAttributes(db, rows); err != nil {
		return nil, storageErr("load view", err)
	}
	records, err := recordsOf(rows)
	if err != nil {
		return nil, storageErr("load view", err)
	}
	return records, nil
}

func (s *PostgresStore) LoadFileTree(ctx context.Context, digitalObjectID, view string) (*models.FileTree, error) {
	records, err := s.Records(ctx, digitalObjectID, view)
	if err != nil {
		return nil, err
	}
	tree, err := nestedset.BuildTree(records)
	if err != nil {
		return nil, storageErr("rebuild view", err)
	}
	if tree == nil {
		return nil, models.ErrNotFound.New("view %s of %s", models.ViewOrDefault(view), digitalObjectID)
	}
	return tree, nil
}

func (s *PostgresStore) LoadSubTree(ctx context.Context, id models.NodeID, relativeDepth int) (*models.FileTree, error) {
	db := s.db.WithContext(ctx)
	parent, err := findNode(db, id)
	if err != nil {
		return nil, storageErr("load subtree", err)
	}
	q := db.Scopes(viewScope(id.DigitalObjectID, id.View)).
		Where("step_arrived >= ? AND step_departed <= ?", parent.StepArrived, parent.StepDeparted)
	if depth := store.NormalizeDepth(relativeDepth); depth != store.Unbounded {
		q = q.Where("depth <= ?", parent.Depth+depth)
	}
	var rows []NodeRow
	if err := q.Order("step_arrived").Find(&rows).Error; err != nil {
		return nil, storageErr("load subtree", err)
	}
	if err := withAttributes(db, rows); err != nil {
		return nil, storageErr("load subtree", err)
	}
	records, err := recordsOf(rows)
	if err != nil {
		return nil, storageErr("load subtree", err)
	}
	tree, err := nestedset.BuildSubTree(records)
	if err != nil {
		return nil, storageErr("rebuild subtree", err)
	}
	if tree == nil {
		return nil, models.ErrNotFound.New("node %s", id)
	}
	return tree, nil
}

func childScope(parent NodeRow) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Scopes(viewScope(parent.DigitalObjectID, parent.ViewName)).
			Where("step_arrived > ? AND step_departed < ? AND depth = ?",
				parent.StepArrived, parent.StepDeparted, parent.Depth+1)
	}
}

func (s *PostgresStore) GetChildren(ctx context.Context, id models.NodeID, first, max int) ([]models.Node, error) {
	db := s.db.WithContext(ctx)
	parent, err := findNode(db, id)
	if err != nil {
		return nil, storageErr("get children", err)
	}
	page := store.NewPage(first, max)
	if page.Empty() {
		return []models.Node{}, nil
	}
	q := db.Scopes(childScope(parent)).Order("step_arrived").Offset(page.First)
	if page.Bounded() {
		q = q.Limit(page.Max)
	}
	var rows []NodeRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, storageErr("get children", err)
	}
	if err := withAttributes(db, rows); err != nil {
		return nil, storageErr("get children", err)
	}
	nodes := make([]models.Node, len(rows))
	for i, row := range rows {
		n, err := row.node()
		if err != nil {
			return nil, storageErr("get children", err)
		}
		nodes[i] = n
	}
	return nodes, nil
}

func (s *PostgresStore) GetChildCount(ctx context.Context, id models.NodeID) (int64, error) {
	db := s.db.WithContext(ctx)
	parent, err := findNode(db, id)
	if err != nil {
		return 0, storageErr("count children", err)
	}
	var n int64
	if err := db.Model(&NodeRow{}).Scopes(childScope(parent)).Count(&n).Error; err != nil {
		return 0, storageErr("count children", err)
	}
	return n, nil
}

func (s *PostgresStore) GetRootNodeID(ctx context.Context, digitalObjectID, view string) (models.NodeID, error) {
	var row NodeRow
	err := s.db.WithContext(ctx).Scopes(viewScope(digitalObjectID, view)).Where("depth = 0").First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NodeID{}, models.ErrNotFound.New("view %s of %s", models.ViewOrDefault(view), digitalObjectID)
	}
	if err != nil {
		return models.NodeID{}, storageErr("get root node", err)
	}
	r, err := row.record()
	if err != nil {
		return models.NodeID{}, storageErr("get root node", err)
	}
	return r.NodeID(), nil
}

func (s *PostgresStore) LoadNode(ctx context.Context, id models.NodeID) (models.Node, error) {
	row, err := findNode(s.db.WithContext(ctx), id)
	if err != nil {
		return models.Node{}, storageErr("load node", err)
	}
	n, err := row.node()
	if err != nil {
		return models.Node{}, storageErr("load node", err)
	}
	return n, nil
}

// UpdateNodeData applies the diff between the stored node and data in one transaction.
func (s *PostgresStore) UpdateNodeData(ctx context.Context, id models.NodeID, data models.Node) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := findNode(tx, id)
		if err != nil {
			return err
		}
		stored, err := row.node()
		if err != nil {
			return err
		}
		change, err := store.Diff(stored, data)
		if err != nil {
			return err
		}
		if change.IsEmpty() {
			return nil
		}

		updates := map[string]any{}
		if change.Name != nil {
			updates["name"] = *change.Name
		}
		if change.Description != nil {
			updates["description"] = *change.Description
		}
		if change.Locator != nil {
			updates["locator_scheme"] = change.Locator.Scheme
			updates["locator_value"] = change.Locator.Value
		}
		if len(updates) > 0 {
			if err := tx.Model(&NodeRow{}).Where("id = ?", row.ID).Updates(updates).Error; err != nil {
				return fmt.Errorf("update node: %w", err)
			}
		}
		if len(change.DeleteAttributes) > 0 {
			err := tx.Where("node_id = ? AND attr_key IN ?", row.ID, change.DeleteAttributes).Delete(&AttributeRow{}).Error
			if err != nil {
				return fmt.Errorf("delete attributes: %w", err)
			}
		}
		if len(change.SetAttributes) > 0 {
			attrs := attributeRows(row.ID, models.AttributesFromMap(change.SetAttributes))
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "node_id"}, {Name: "attr_key"}},
				DoUpdates: clause.AssignmentColumns([]string{"attr_value"}),
			}).Create(&attrs).Error
			if err != nil {
				return fmt.Errorf("upsert attributes: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return storageErr("update node data", err)
	}
	return nil
}

func (s *PostgresStore) GetViews(ctx context.Context, digitalObjectID string) ([]string, error) {
	views := []string{}
	err := s.db.WithContext(ctx).Model(&NodeRow{}).
		Where("digital_object_id = ?", digitalObjectID).
		Distinct("view_name").
		Order("view_name").
		Pluck("view_name", &views).Error
	if err != nil {
		return nil, storageErr("get views", err)
	}
	return views, nil
}
