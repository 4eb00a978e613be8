package nestedset

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/surrealdb/dataorg/pkg/models"
)

const (
	// DefaultStep is the distance between consecutive step numbers.
	DefaultStep int64 = 100

	// DefaultBatchSize is the number of records handed to a Sink at once.
	DefaultBatchSize = 4000
)

// Sink persists one batch of records. The slice is reused after Sink returns.
type Sink func(ctx context.Context, batch []Record) error

// Writer flattens trees into nested-set records.
type Writer struct {
	step      int64
	batchSize int
	logger    zerolog.Logger
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithStep sets the step size. It must be greater than 1.
func WithStep(step int64) WriterOption {
	return func(w *Writer) { w.step = step }
}

// WithBatchSize sets the maximum number of records per Sink call.
func WithBatchSize(n int) WriterOption {
	return func(w *Writer) { w.batchSize = n }
}

// WithLogger sets the logger used for batch progress.
func WithLogger(logger zerolog.Logger) WriterOption {
	return func(w *Writer) { w.logger = logger }
}

// NewWriter returns a Writer with the default step and batch size unless overridden.
func NewWriter(opts ...WriterOption) (*Writer, error) {
	w := &Writer{
		step:      DefaultStep,
		batchSize: DefaultBatchSize,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.step <= 1 {
		return nil, fmt.Errorf("step must be greater than 1, got %d", w.step)
	}
	if w.batchSize <= 0 {
		return nil, fmt.Errorf("batch size must be positive, got %d", w.batchSize)
	}
	return w, nil
}

// BatchSize returns the configured batch size.
func (w *Writer) BatchSize() int {
	return w.batchSize
}

// Write flattens tree and hands its records to sink in batches. The context is checked
// before every batch, so a cancelled persist stops at a batch boundary and returns the
// context's error. It returns the number of records written.
func (w *Writer) Write(ctx context.Context, tree *models.FileTree, sink Sink) (int, error) {
	if tree.IsEmpty() {
		return 0, nil
	}

	type frame struct {
		idx     models.Index
		arrived int64
	}

	var (
		counter int64
		written int
		batches int
		stack   []frame
		batch   = make([]Record, 0, min(w.batchSize, tree.Len()))
	)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := sink(ctx, batch); err != nil {
			return err
		}
		written += len(batch)
		batches++
		w.logger.Debug().
			Str("object", tree.DigitalObjectID).
			Str("view", tree.View).
			Int("batch", batches).
			Int("records", len(batch)).
			Int("written", written).
			Msg("flushed nested-set batch")
		batch = batch[:0]
		return nil
	}

	err := tree.Walk(models.RootIndex,
		func(i models.Index, _ int) error {
			counter += w.step
			stack = append(stack, frame{idx: i, arrived: counter})
			return nil
		},
		func(i models.Index, _ int) error {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			counter += w.step

			n := tree.Node(top.idx).Clone()
			n.ID = models.NodeID{}
			batch = append(batch, Record{
				DigitalObjectID: tree.DigitalObjectID,
				View:            tree.View,
				StepArrived:     top.arrived,
				StepDeparted:    counter,
				Depth:           len(stack),
				IDVersion:       models.CurrentIDVersion,
				Node:            n,
			})
			if len(batch) >= w.batchSize {
				return flush()
			}
			return nil
		})
	if err != nil {
		return written, err
	}
	if err := flush(); err != nil {
		return written, err
	}
	return written, nil
}

// Flatten returns all records of tree in departure order. It is meant for small trees and tests.
func Flatten(tree *models.FileTree) ([]Record, error) {
	w, err := NewWriter()
	if err != nil {
		return nil, err
	}
	var out []Record
	_, err = w.Write(context.Background(), tree, func(_ context.Context, batch []Record) error {
		out = append(out, batch...)
		return nil
	})
	return out, err
}
