package worker

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"cashledger/internal/amqp"
	"cashledger/internal/export"
	"cashledger/internal/log"
	"cashledger/internal/sheets"
	"cashledger/internal/storage"
)

// EventSource delivers ledger change notifications until ctx is cancelled.
type EventSource interface {
	ConsumeLedgerEvents(ctx context.Context, handler func(*amqp.LedgerEvent) error) error
}

// SheetsSync mirrors the ledger views into a spreadsheet. Events only mark
// the mirror dirty; publishing happens on the ticker so a burst of changes
// costs one upload.
type SheetsSync struct {
	store     storage.EntryStore
	publisher sheets.ViewPublisher
	interval  time.Duration

	dirty atomic.Bool

	mu          sync.Mutex
	fingerprint string
	published   int
}

func NewSheetsSync(store storage.EntryStore, publisher sheets.ViewPublisher, interval time.Duration) *SheetsSync {
	if interval <= 0 {
		interval = time.Minute
	}
	return &SheetsSync{
		store:     store,
		publisher: publisher,
		interval:  interval,
	}
}

// HandleLedgerEvent records that the mirror is stale.
func (w *SheetsSync) HandleLedgerEvent(ctx context.Context, ev *amqp.LedgerEvent) error {
	slog.DebugContext(ctx, "Ledger event received",
		log.FieldComponent, log.ComponentWorker,
		log.FieldOperation, string(ev.Op),
		log.FieldCount, ev.Count)
	w.dirty.Store(true)
	return nil
}

// Dirty reports whether an event arrived since the last successful publish.
func (w *SheetsSync) Dirty() bool { return w.dirty.Load() }

// Published returns how many uploads have succeeded.
func (w *SheetsSync) Published() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.published
}

// SyncNow reloads the entries, rebuilds every view and uploads them unless
// they are identical to the last upload.
func (w *SheetsSync) SyncNow(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	entries, err := w.store.FetchAll(ctx)
	if err != nil {
		return fmt.Errorf("load entries: %w", err)
	}
	tables := export.All(entries)
	fp := fingerprint(tables)
	if fp == w.fingerprint {
		slog.DebugContext(ctx, "Sheets mirror up to date",
			log.FieldComponent, log.ComponentWorker,
			log.FieldCount, len(entries))
		return nil
	}

	start := time.Now()
	if err := w.publisher.PublishTables(ctx, tables); err != nil {
		return fmt.Errorf("publish tables: %w", err)
	}
	w.fingerprint = fp
	w.published++

	slog.InfoContext(ctx, "Published ledger views to sheets",
		log.FieldComponent, log.ComponentWorker,
		log.FieldOperation, log.OpSync,
		log.FieldCount, len(entries),
		log.FieldDuration, time.Since(start).Milliseconds())
	return nil
}

// Run performs a startup sync, then publishes on every tick. With an event
// source the tick only publishes when an event arrived since the last upload;
// without one every tick compares the rebuilt views against the last upload.
func (w *SheetsSync) Run(ctx context.Context, events EventSource) error {
	if err := w.SyncNow(ctx); err != nil {
		slog.ErrorContext(ctx, "Startup sync failed",
			log.FieldComponent, log.ComponentWorker,
			log.FieldOperation, log.OpStartup,
			log.FieldError, err)
		w.dirty.Store(true)
	}

	if events != nil {
		go func() {
			err := events.ConsumeLedgerEvents(ctx, func(ev *amqp.LedgerEvent) error {
				return w.HandleLedgerEvent(ctx, ev)
			})
			if err != nil && ctx.Err() == nil {
				slog.ErrorContext(ctx, "Ledger event consumer stopped",
					log.FieldComponent, log.ComponentWorker,
					log.FieldError, err)
			}
		}()
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Sheets sync stopping",
				log.FieldComponent, log.ComponentWorker,
				log.FieldOperation, log.OpShutdown)
			return nil
		case <-ticker.C:
			if events != nil && !w.dirty.Swap(false) {
				continue
			}
			if err := w.SyncNow(ctx); err != nil {
				slog.ErrorContext(ctx, "Periodic sync failed",
					log.FieldComponent, log.ComponentWorker,
					log.FieldOperation, log.OpSync,
					log.FieldError, err)
				w.dirty.Store(true)
			}
		}
	}
}

func fingerprint(tables []export.Table) string {
	h := sha256.New()
	for _, t := range tables {
		fmt.Fprintf(h, "%s\x1e%q\x1e", t.Name, t.Headers)
		for _, row := range t.Rows {
			fmt.Fprintf(h, "%q\x1f", row)
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}
