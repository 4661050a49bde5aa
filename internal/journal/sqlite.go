package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"tradebridge/internal/domain"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// Compile-time interface checks.
var _ Recorder = (*SQLiteJournal)(nil)
var _ Reader = (*SQLiteJournal)(nil)

// SQLiteJournal persists batches and per-order results in a SQLite database.
type SQLiteJournal struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS batches (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	received_at INTEGER NOT NULL,
	source      TEXT NOT NULL,
	status      TEXT NOT NULL,
	total       INTEGER NOT NULL,
	successful  INTEGER NOT NULL,
	failed      INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS order_results (
	batch_id    INTEGER NOT NULL REFERENCES batches(id),
	order_index INTEGER NOT NULL,
	status      TEXT NOT NULL,
	message     TEXT NOT NULL,
	details     TEXT,
	PRIMARY KEY (batch_id, order_index)
);
CREATE INDEX IF NOT EXISTS idx_batches_received_at ON batches(received_at);
`

// NewSQLiteJournal opens (or creates) a SQLite database at dbPath and runs
// the schema migration.
func NewSQLiteJournal(dbPath string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating journal schema: %w", err)
	}
	return &SQLiteJournal{db: db}, nil
}

// Close closes the underlying database connection.
func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}

// RecordBatch inserts the batch and its results in one transaction.
func (j *SQLiteJournal) RecordBatch(ctx context.Context, source string, receivedAt time.Time, batch *domain.BatchResult) error {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO batches (received_at, source, status, total, successful, failed)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		receivedAt.UnixMilli(), source, batch.StatusLabel(), batch.Total, batch.Successful, batch.Failed,
	)
	if err != nil {
		return fmt.Errorf("inserting batch: %w", err)
	}
	batchID, err := res.LastInsertId()
	if err != nil {
		return err
	}

	for _, r := range batch.Results {
		var details []byte
		if r.Details != nil {
			details, err = json.Marshal(r.Details)
			if err != nil {
				return fmt.Errorf("encoding result details: %w", err)
			}
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO order_results (batch_id, order_index, status, message, details)
			 VALUES (?, ?, ?, ?, ?)`,
			batchID, r.Index, string(r.Status), r.Message, string(details),
		); err != nil {
			return fmt.Errorf("inserting result %d: %w", r.Index, err)
		}
	}

	return tx.Commit()
}

// RecentBatches returns up to limit batches, newest first, each with its
// ordered per-order results.
func (j *SQLiteJournal) RecentBatches(ctx context.Context, limit int) ([]BatchRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := j.db.QueryContext(ctx,
		`SELECT id, received_at, source, status, total, successful, failed
		 FROM batches ORDER BY received_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var batches []BatchRecord
	for rows.Next() {
		var (
			b  BatchRecord
			ms int64
		)
		if err := rows.Scan(&b.ID, &ms, &b.Source, &b.Status, &b.Total, &b.Successful, &b.Failed); err != nil {
			return nil, err
		}
		b.ReceivedAt = time.UnixMilli(ms).UTC()
		batches = append(batches, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range batches {
		results, err := j.batchResults(ctx, batches[i].ID)
		if err != nil {
			return nil, err
		}
		batches[i].Results = results
	}
	return batches, nil
}

func (j *SQLiteJournal) batchResults(ctx context.Context, batchID int64) ([]domain.OrderResult, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT order_index, status, message, details
		 FROM order_results WHERE batch_id = ? ORDER BY order_index`, batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.OrderResult
	for rows.Next() {
		var (
			r       domain.OrderResult
			status  string
			details sql.NullString
		)
		if err := rows.Scan(&r.Index, &status, &r.Message, &details); err != nil {
			return nil, err
		}
		r.Status = domain.ResultStatus(status)
		if details.Valid && details.String != "" {
			if err := json.Unmarshal([]byte(details.String), &r.Details); err != nil {
				return nil, fmt.Errorf("decoding result details: %w", err)
			}
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
