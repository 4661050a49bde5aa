// Package journal persists batch execution outcomes for audit and the
// history API. The engine itself stays stateless; the journal records what
// happened, not trading state.
package journal

import (
	"context"
	"time"

	"tradebridge/internal/domain"
)

// BatchRecord is one persisted batch outcome.
type BatchRecord struct {
	ID         int64                `json:"id"`
	ReceivedAt time.Time            `json:"received_at"`
	Source     string               `json:"source"`
	Status     string               `json:"status"`
	Total      int                  `json:"total_orders"`
	Successful int                  `json:"successful_orders"`
	Failed     int                  `json:"failed_orders"`
	Results    []domain.OrderResult `json:"results,omitempty"`
}

// Recorder persists batch outcomes.
type Recorder interface {
	// RecordBatch persists one batch outcome. source identifies the
	// webhook route that produced it.
	RecordBatch(ctx context.Context, source string, receivedAt time.Time, batch *domain.BatchResult) error

	// Close releases underlying resources.
	Close() error
}

// Reader serves persisted batch history.
type Reader interface {
	// RecentBatches returns up to limit batches, newest first, with their
	// per-order results.
	RecentBatches(ctx context.Context, limit int) ([]BatchRecord, error)
}

// ---------------------------------------------------------------------------
// Composition helpers
// ---------------------------------------------------------------------------

// Compile-time interface checks.
var _ Recorder = (Multi)(nil)
var _ Recorder = (*Nop)(nil)

// Multi fans RecordBatch out to several recorders. The first error wins but
// all recorders are attempted.
type Multi []Recorder

// RecordBatch records the batch on every recorder.
func (m Multi) RecordBatch(ctx context.Context, source string, receivedAt time.Time, batch *domain.BatchResult) error {
	var first error
	for _, r := range m {
		if err := r.RecordBatch(ctx, source, receivedAt, batch); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Close closes every recorder.
func (m Multi) Close() error {
	var first error
	for _, r := range m {
		if err := r.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Nop discards everything. Used when no journal is configured.
type Nop struct{}

func (Nop) RecordBatch(context.Context, string, time.Time, *domain.BatchResult) error {
	return nil
}

func (Nop) Close() error { return nil }
