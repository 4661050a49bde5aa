package journal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/parquet-go/parquet-go"

	"tradebridge/internal/domain"
)

// Compile-time interface check.
var _ Recorder = (*ParquetArchive)(nil)

// ParquetArchive appends per-order outcomes to daily Parquet files on disk.
// It is write-only cold storage; queries go through the SQLite journal.
type ParquetArchive struct {
	DataDir string
}

// NewParquetArchive creates an archive rooted at the given data directory.
func NewParquetArchive(dataDir string) *ParquetArchive {
	return &ParquetArchive{DataDir: dataDir}
}

// ResultRecord is the Parquet schema for a single order outcome.
type ResultRecord struct {
	BatchID    string `parquet:"batch_id"`
	ReceivedAt int64  `parquet:"received_at,timestamp(millisecond)"` // Unix ms
	Source     string `parquet:"source"`
	OrderIndex int    `parquet:"order_index"`
	Status     string `parquet:"status"`
	Message    string `parquet:"message"`
	Details    string `parquet:"details"` // JSON-encoded
}

// RecordBatch appends the batch's results to the day file for receivedAt.
func (a *ParquetArchive) RecordBatch(_ context.Context, source string, receivedAt time.Time, batch *domain.BatchResult) error {
	batchID := uuid.NewString()
	records := make([]ResultRecord, 0, len(batch.Results))
	for _, r := range batch.Results {
		var details string
		if r.Details != nil {
			b, err := json.Marshal(r.Details)
			if err != nil {
				return fmt.Errorf("encoding result details: %w", err)
			}
			details = string(b)
		}
		records = append(records, ResultRecord{
			BatchID:    batchID,
			ReceivedAt: receivedAt.UnixMilli(),
			Source:     source,
			OrderIndex: r.Index,
			Status:     string(r.Status),
			Message:    r.Message,
			Details:    details,
		})
	}
	if len(records) == 0 {
		return nil
	}

	path := a.dayPath(receivedAt)

	// Read existing records to merge.
	existing, _ := readParquetFile[ResultRecord](path)
	merged := mergeResultRecords(existing, records)

	if err := writeParquetFile(path, merged); err != nil {
		return fmt.Errorf("writing archive for %s: %w", receivedAt.Format("2006-01-02"), err)
	}
	return nil
}

// Close is a no-op; files are closed after every write.
func (a *ParquetArchive) Close() error { return nil }

// ReadDay returns the archived results for a single day, ordered by
// received time then order index.
func (a *ParquetArchive) ReadDay(day time.Time) ([]ResultRecord, error) {
	records, err := readParquetFile[ResultRecord](a.dayPath(day))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return records, nil
}

// dayPath returns the filesystem path for a day's archive file.
// Layout: <dataDir>/journal/<YYYY-MM-DD>.parquet
func (a *ParquetArchive) dayPath(t time.Time) string {
	return filepath.Join(a.DataDir, "journal", t.UTC().Format("2006-01-02")+".parquet")
}

func writeParquetFile[T any](path string, records []T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return parquet.WriteFile(path, records)
}

func readParquetFile[T any](path string) ([]T, error) {
	rows, err := parquet.ReadFile[T](path)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// mergeResultRecords deduplicates by (batch_id, order_index), preferring new
// records. Results are sorted by received time then order index.
func mergeResultRecords(existing, incoming []ResultRecord) []ResultRecord {
	type key struct {
		batch string
		index int
	}
	seen := make(map[key]ResultRecord, len(existing)+len(incoming))
	for _, r := range existing {
		seen[key{r.BatchID, r.OrderIndex}] = r
	}
	for _, r := range incoming {
		seen[key{r.BatchID, r.OrderIndex}] = r
	}

	merged := make([]ResultRecord, 0, len(seen))
	for _, r := range seen {
		merged = append(merged, r)
	}
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].ReceivedAt != merged[j].ReceivedAt {
			return merged[i].ReceivedAt < merged[j].ReceivedAt
		}
		return merged[i].OrderIndex < merged[j].OrderIndex
	})
	return merged
}
