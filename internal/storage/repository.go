package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"cashledger/internal/core"
	applog "cashledger/internal/log"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

var _ EntryStore = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// A single connection serialises writers and keeps transactions simple.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// FetchAll implements EntryStore
func (r *SQLiteRepository) FetchAll(ctx context.Context) ([]core.Entry, error) {
	rows, err := r.queries.ListEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}

	entries := make([]core.Entry, 0, len(rows))
	for _, row := range rows {
		e, err := fromRow(row)
		if err != nil {
			return nil, fmt.Errorf("decode entry %s: %w", row.ID, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// InsertOne implements EntryStore
func (r *SQLiteRepository) InsertOne(ctx context.Context, e core.Entry) error {
	if err := r.queries.InsertEntry(ctx, toRow(e)); err != nil {
		return fmt.Errorf("insert entry: %w", err)
	}

	slog.InfoContext(ctx, "Entry saved to SQLite",
		"id", e.ID,
		"type", e.Type,
		"date", e.Date.String(),
		"amount", e.Amount.String())
	return nil
}

// InsertMany implements EntryStore. All entries are written in one transaction.
func (r *SQLiteRepository) InsertMany(ctx context.Context, entries []core.Entry) error {
	return r.inTx(ctx, func(q *Queries) error {
		return insertAll(ctx, q, entries)
	})
}

// UpdateOne implements EntryStore
func (r *SQLiteRepository) UpdateOne(ctx context.Context, e core.Entry) error {
	n, err := r.queries.UpdateEntry(ctx, toRow(e))
	if err != nil {
		return fmt.Errorf("update entry: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", core.ErrEntryNotFound, e.ID)
	}

	slog.InfoContext(ctx, "Entry updated", "id", e.ID, "type", e.Type)
	return nil
}

// SetStatus implements EntryStore. Unknown ids fail the whole call.
func (r *SQLiteRepository) SetStatus(ctx context.Context, ids []string, status core.Status) error {
	return r.inTx(ctx, func(q *Queries) error {
		for _, id := range ids {
			n, err := q.SetEntryStatus(ctx, string(status), id)
			if err != nil {
				return fmt.Errorf("set status of %s: %w", id, err)
			}
			if n == 0 {
				return fmt.Errorf("%w: %s", core.ErrEntryNotFound, id)
			}
		}
		slog.InfoContext(ctx, "Entry status changed", "count", len(ids), "status", status)
		return nil
	})
}

// ArchiveAndInsert implements EntryStore
func (r *SQLiteRepository) ArchiveAndInsert(ctx context.Context, entries []core.Entry) error {
	return r.inTx(ctx, func(q *Queries) error {
		archived, err := q.ArchiveActiveEntries(ctx)
		if err != nil {
			return fmt.Errorf("archive active entries: %w", err)
		}
		if err := insertAll(ctx, q, entries); err != nil {
			return err
		}
		slog.InfoContext(ctx, "Ledger replaced",
			applog.FieldComponent, applog.ComponentStorage,
			"archived", archived,
			"inserted", len(entries))
		return nil
	})
}

// Count returns the number of stored entries, active or not.
func (r *SQLiteRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.queries.CountEntries(ctx)
	if err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) inTx(ctx context.Context, fn func(q *Queries) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(r.queries.WithTx(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			slog.ErrorContext(ctx, "Rollback failed", "error", rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func insertAll(ctx context.Context, q *Queries, entries []core.Entry) error {
	for _, e := range entries {
		if err := q.InsertEntry(ctx, toRow(e)); err != nil {
			return fmt.Errorf("insert entry %s: %w", e.ID, err)
		}
	}
	return nil
}

func toRow(e core.Entry) Entry {
	status := e.Status
	if status == "" {
		status = core.StatusActive
	}
	return Entry{
		ID:           e.ID,
		EntryDate:    e.Date.String(),
		EntryType:    string(e.Type),
		Amount:       e.Amount,
		CouponType:   e.CouponType,
		FaceValue:    e.FaceValue,
		Quantity:     e.Quantity,
		SerialStart:  e.SerialStart,
		SerialEnd:    e.SerialEnd,
		LabourCost:   e.LabourCost,
		MaterialCost: e.MaterialCost,
		EntryMode:    string(e.EntryMode),
		Notes:        e.Notes,
		TimestampMs:  e.Timestamp.UnixMilli(),
		Status:       string(status),
	}
}

func fromRow(row Entry) (core.Entry, error) {
	date, err := core.ParseDate(row.EntryDate)
	if err != nil {
		return core.Entry{}, err
	}
	return core.Entry{
		ID:           row.ID,
		Date:         date,
		Type:         core.EntryType(row.EntryType),
		Amount:       row.Amount,
		CouponType:   row.CouponType,
		FaceValue:    row.FaceValue,
		Quantity:     row.Quantity,
		SerialStart:  row.SerialStart,
		SerialEnd:    row.SerialEnd,
		LabourCost:   row.LabourCost,
		MaterialCost: row.MaterialCost,
		EntryMode:    core.EntryMode(row.EntryMode),
		Notes:        row.Notes,
		Timestamp:    time.UnixMilli(row.TimestampMs).UTC(),
		Status:       core.Status(row.Status),
	}, nil
}
