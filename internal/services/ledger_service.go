package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"cashledger/internal/amqp"
	"cashledger/internal/core"
	"cashledger/internal/importer"
	"cashledger/internal/ledger"
	"cashledger/internal/storage"
)

var (
	// ErrPersistence marks a change that was applied locally but could not be
	// saved. The message carries the store's error.
	ErrPersistence = errors.New("persistence failed")
	// ErrNothingToArchive is returned by ArchiveAll on a ledger with no active entries.
	ErrNothingToArchive = errors.New("no active entries to archive")
	// ErrNoEntries is returned by Import when the batch is empty.
	ErrNoEntries = errors.New("no entries to import")
)

// EventPublisher is notified after a change has been persisted.
type EventPublisher interface {
	PublishLedgerEvent(ctx context.Context, ev *amqp.LedgerEvent) error
}

// LedgerService owns the in-memory snapshot of the ledger and keeps it in
// step with the store. Mutations are applied to the snapshot first and then
// persisted; single-entry failures are reported but not rolled back.
type LedgerService struct {
	mu      sync.RWMutex
	entries []core.Entry
	status  string
	// version changes whenever the snapshot does.
	version uint64

	store   storage.EntryStore
	events  EventPublisher
	coupons core.CouponCatalog
	now     func() time.Time
	newID   func() string
}

type Option func(*LedgerService)

func WithClock(now func() time.Time) Option {
	return func(s *LedgerService) { s.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(s *LedgerService) { s.newID = newID }
}

func WithCoupons(c core.CouponCatalog) Option {
	return func(s *LedgerService) { s.coupons = c }
}

// NewLedgerService wires a service to its store. events may be nil.
func NewLedgerService(store storage.EntryStore, events EventPublisher, opts ...Option) *LedgerService {
	s := &LedgerService{
		store:   store,
		events:  events,
		coupons: core.DefaultCoupons(),
		now:     time.Now,
		newID:   uuid.NewString,
		status:  "Loading data...",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EntryInput carries the user-entered fields of a non-coupon entry.
type EntryInput struct {
	Type         core.EntryType  `json:"type"`
	Amount       decimal.Decimal `json:"amount"`
	LabourCost   decimal.Decimal `json:"labourCost"`
	MaterialCost decimal.Decimal `json:"materialCost"`
	Notes        string          `json:"notes"`
}

// CouponInput records coupons either by booklet count (BUNDLE) or by an
// inclusive serial range (SERIAL).
type CouponInput struct {
	Type        core.EntryType `json:"type"`
	CouponType  string         `json:"couponType"`
	Mode        core.EntryMode `json:"mode"`
	Booklets    int64          `json:"booklets"`
	SerialStart int64          `json:"serialStart"`
	SerialEnd   int64          `json:"serialEnd"`
	Notes       string         `json:"notes"`
}

// Load replaces the snapshot with the store's content.
func (s *LedgerService) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reloadLocked(ctx)
}

func (s *LedgerService) reloadLocked(ctx context.Context) error {
	all, err := s.store.FetchAll(ctx)
	if err != nil {
		s.status = "Error loading data."
		return fmt.Errorf("%w: fetch entries: %v", ErrPersistence, err)
	}
	s.entries = all
	s.version++
	s.status = fmt.Sprintf("Loaded %d entries.", len(all))
	slog.InfoContext(ctx, "Ledger loaded", "entries", len(all))
	return nil
}

// Version identifies the current snapshot. Any change to the entries yields
// a different value.
func (s *LedgerService) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Entries returns a copy of every entry in the snapshot.
func (s *LedgerService) Entries() []core.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Entry(nil), s.entries...)
}

func (s *LedgerService) ActiveEntries() []core.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ledger.ActiveEntries(s.entries)
}

func (s *LedgerService) InactiveEntries() []core.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.Entry
	for _, e := range s.entries {
		if !e.IsActive() {
			out = append(out, e)
		}
	}
	return out
}

// Entry looks up one entry by id.
func (s *LedgerService) Entry(id string) (core.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexLocked(id)
	if i < 0 {
		return core.Entry{}, fmt.Errorf("%w: %s", core.ErrEntryNotFound, id)
	}
	return s.entries[i], nil
}

// Status is the last human-readable outcome message.
func (s *LedgerService) Status() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// AddEntry records a non-coupon entry on day.
func (s *LedgerService) AddEntry(ctx context.Context, day core.Date, in EntryInput) (core.Entry, error) {
	e := core.Entry{
		Date:         day,
		Type:         in.Type,
		Amount:       in.Amount,
		LabourCost:   in.LabourCost,
		MaterialCost: in.MaterialCost,
		Notes:        in.Notes,
	}
	if in.Type.IsCoupon() {
		return core.Entry{}, fmt.Errorf("%w: use coupon recording for %s", core.ErrMixedFields, in.Type)
	}
	return s.create(ctx, e)
}

// RecordCoupons records an ISSUE or WITHDRAW of one coupon denomination.
// Quantity and amount are derived from the catalog.
func (s *LedgerService) RecordCoupons(ctx context.Context, day core.Date, in CouponInput) (core.Entry, error) {
	e, err := s.couponEntry(day, in)
	if err != nil {
		return core.Entry{}, err
	}
	return s.create(ctx, e)
}

func (s *LedgerService) couponEntry(day core.Date, in CouponInput) (core.Entry, error) {
	if !in.Type.IsCoupon() {
		return core.Entry{}, fmt.Errorf("%w: %q is not a coupon entry", core.ErrUnknownEntryType, in.Type)
	}
	cfg, ok := s.coupons.Lookup(in.CouponType)
	if !ok {
		return core.Entry{}, fmt.Errorf("%w: %q", core.ErrUnknownCoupon, in.CouponType)
	}

	e := core.Entry{
		Date:       day,
		Type:       in.Type,
		CouponType: cfg.Label,
		FaceValue:  cfg.FaceValue,
		EntryMode:  in.Mode,
		Notes:      in.Notes,
	}

	var qty int64
	var err error
	switch in.Mode {
	case core.ModeSerial:
		qty, err = core.QuantityFromSerials(in.SerialStart, in.SerialEnd)
		e.SerialStart, e.SerialEnd = in.SerialStart, in.SerialEnd
	case core.ModeBundle, "":
		e.EntryMode = core.ModeBundle
		qty, err = core.QuantityFromBundles(in.Booklets, cfg.BundleSize)
	default:
		return core.Entry{}, fmt.Errorf("%w: entry mode %q", core.ErrInvalidQuantity, in.Mode)
	}
	if err != nil {
		return core.Entry{}, err
	}

	e.Quantity = decimal.NewFromInt(qty)
	e.Amount = e.Quantity.Mul(cfg.FaceValue)
	return e, nil
}

func (s *LedgerService) create(ctx context.Context, e core.Entry) (core.Entry, error) {
	e.ID = s.newID()
	e.Timestamp = s.now()
	e.Status = core.StatusActive
	if err := e.Validate(); err != nil {
		return core.Entry{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.status = "Saving..."
	s.entries = append(s.entries, e)
	s.version++

	if err := s.store.InsertOne(ctx, e); err != nil {
		s.status = "Error saving."
		slog.ErrorContext(ctx, "Failed to persist entry", "id", e.ID, "type", e.Type, "error", err)
		return e, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	s.status = "Entry saved."
	s.publish(ctx, amqp.NewLedgerEvent(amqp.OpCreated, 0, e.ID))
	return e, nil
}

// UpdateEntry replaces an existing entry. The original timestamp is kept
// when the update does not carry one.
func (s *LedgerService) UpdateEntry(ctx context.Context, e core.Entry) (core.Entry, error) {
	if err := e.Validate(); err != nil {
		return core.Entry{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(e.ID)
	if i < 0 {
		return core.Entry{}, fmt.Errorf("%w: %s", core.ErrEntryNotFound, e.ID)
	}
	if e.Type != s.entries[i].Type {
		return core.Entry{}, fmt.Errorf("%w: %s is %s, not %s", core.ErrTypeChange, e.ID, s.entries[i].Type, e.Type)
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = s.entries[i].Timestamp
	}
	if e.Status == "" {
		e.Status = s.entries[i].Status
	}

	s.status = "Updating..."
	s.entries[i] = e
	s.version++

	if err := s.store.UpdateOne(ctx, e); err != nil {
		s.status = "Error updating."
		slog.ErrorContext(ctx, "Failed to persist update", "id", e.ID, "error", err)
		return e, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	s.status = "Entry updated."
	s.publish(ctx, amqp.NewLedgerEvent(amqp.OpUpdated, 0, e.ID))
	return e, nil
}

// Deactivate marks an entry Inactive. Inactive entries stay stored and can be restored.
func (s *LedgerService) Deactivate(ctx context.Context, id string) error {
	return s.setStatus(ctx, id, core.StatusInactive, "Entry marked Inactive.", "Error updating status.")
}

// Restore marks an entry Active again.
func (s *LedgerService) Restore(ctx context.Context, id string) error {
	return s.setStatus(ctx, id, core.StatusActive, "Entry restored.", "Error restoring.")
}

func (s *LedgerService) setStatus(ctx context.Context, id string, status core.Status, okMsg, errMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", core.ErrEntryNotFound, id)
	}
	s.entries[i] = s.entries[i].WithStatus(status)
	s.version++

	if err := s.store.SetStatus(ctx, []string{id}, status); err != nil {
		s.status = errMsg
		slog.ErrorContext(ctx, "Failed to persist status change", "id", id, "status", status, "error", err)
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	s.status = okMsg
	s.publish(ctx, amqp.NewLedgerEvent(amqp.OpStatus, 0, id))
	return nil
}

// DeleteLastEntry deactivates the most recent active entry on day.
func (s *LedgerService) DeleteLastEntry(ctx context.Context, day core.Date) (core.Entry, error) {
	s.mu.RLock()
	var last core.Entry
	found := false
	for _, e := range s.entries {
		if !e.IsActive() || !e.Date.Equal(day) {
			continue
		}
		if !found || e.Timestamp.After(last.Timestamp) {
			last, found = e, true
		}
	}
	s.mu.RUnlock()

	if !found {
		s.mu.Lock()
		s.status = "No active entries found for " + day.String() + "."
		s.mu.Unlock()
		return core.Entry{}, fmt.Errorf("%w: no active entries on %s", core.ErrEntryNotFound, day)
	}
	if err := s.Deactivate(ctx, last.ID); err != nil {
		return last, err
	}
	return last.WithStatus(core.StatusInactive), nil
}

// ArchiveAll marks every active entry Inactive. A store failure reloads the
// snapshot so it reflects what was actually saved.
func (s *LedgerService) ArchiveAll(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for i, e := range s.entries {
		if e.IsActive() {
			s.entries[i] = e.WithStatus(core.StatusInactive)
			n++
		}
	}
	if n == 0 {
		return 0, ErrNothingToArchive
	}
	s.version++

	s.status = "Archiving all data..."
	if err := s.store.ArchiveAndInsert(ctx, nil); err != nil {
		slog.ErrorContext(ctx, "Failed to archive entries, reloading", "error", err)
		if reloadErr := s.reloadLocked(ctx); reloadErr != nil {
			slog.ErrorContext(ctx, "Reload after failed archive also failed", "error", reloadErr)
		}
		s.status = "Error archiving data."
		return 0, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	s.status = "All data archived."
	s.publish(ctx, amqp.NewLedgerEvent(amqp.OpArchived, n))
	return n, nil
}

// Import adds a normalised batch. REPLACE archives the active ledger first.
// The snapshot only changes once the store has accepted the whole batch.
func (s *LedgerService) Import(ctx context.Context, mode importer.MergeMode, entries []core.Entry) error {
	if len(entries) == 0 {
		return ErrNoEntries
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch mode {
	case importer.Replace:
		s.status = "Archiving & Importing..."
		if err := s.store.ArchiveAndInsert(ctx, entries); err != nil {
			slog.ErrorContext(ctx, "Replace import failed, reloading", "count", len(entries), "error", err)
			if reloadErr := s.reloadLocked(ctx); reloadErr != nil {
				slog.ErrorContext(ctx, "Reload after failed import also failed", "error", reloadErr)
			}
			s.status = "Error during import."
			return fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		for i, e := range s.entries {
			if e.IsActive() {
				s.entries[i] = e.WithStatus(core.StatusInactive)
			}
		}
		s.entries = append(s.entries, entries...)
		s.version++
		s.status = fmt.Sprintf("Imported %d entries.", len(entries))
	case importer.Append:
		s.status = "Appending data..."
		if err := s.store.InsertMany(ctx, entries); err != nil {
			slog.ErrorContext(ctx, "Append import failed", "count", len(entries), "error", err)
			s.status = "Error appending data."
			return fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		s.entries = append(s.entries, entries...)
		s.version++
		s.status = fmt.Sprintf("Appended %d entries.", len(entries))
	default:
		return fmt.Errorf("%w %q", importer.ErrUnknownMergeMode, mode)
	}

	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	s.publish(ctx, amqp.NewLedgerEvent(amqp.OpImported, len(ids), ids...))
	return nil
}

// ImportText parses pasted text and imports the rows it yields. Row-level
// problems come back in the result; only the persistence step returns an error.
func (s *LedgerService) ImportText(ctx context.Context, mode importer.MergeMode, text string, strict bool) (importer.Result, error) {
	return s.ImportGrid(ctx, mode, importer.ParseDelimitedText(text), strict)
}

// ImportGrid normalises a grid and imports the rows it yields.
func (s *LedgerService) ImportGrid(ctx context.Context, mode importer.MergeMode, grid importer.Grid, strict bool) (importer.Result, error) {
	n := &importer.Normalizer{Coupons: s.coupons, Now: s.now, NewID: s.newID, Strict: strict}
	res := n.GridToEntries(grid)
	if len(res.Entries) == 0 {
		return res, ErrNoEntries
	}
	return res, s.Import(ctx, mode, res.Entries)
}

// ImportReader reads an uploaded workbook and imports its entries sheet.
func (s *LedgerService) ImportReader(ctx context.Context, mode importer.MergeMode, r io.Reader, strict bool) (importer.Result, error) {
	grid, err := importer.ParseXLSX(r, string(ledger.ViewEntries))
	if err != nil {
		return importer.Result{}, err
	}
	return s.ImportGrid(ctx, mode, grid, strict)
}

// DayAggregate summarises the active entries of day.
func (s *LedgerService) DayAggregate(day core.Date) ledger.DayAggregate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ledger.ComputeDayAggregate(s.entries, day)
}

// ClosingBalance is the coupon cash left on day.
func (s *LedgerService) ClosingBalance(day core.Date) decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ledger.ClosingBalance(s.entries, day)
}

// SuggestOpening proposes an opening float: the total withdrawn on source.
func (s *LedgerService) SuggestOpening(source core.Date) decimal.Decimal {
	total := s.WithdrawalTotal(source)
	s.mu.Lock()
	s.status = fmt.Sprintf("Fetched total withdrawals from %s: ₹%s", source, total)
	s.mu.Unlock()
	return total
}

// WithdrawalTotal sums the active withdrawals of day without touching the
// status message.
func (s *LedgerService) WithdrawalTotal(day core.Date) decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ledger.WithdrawalTotal(s.entries, day)
}

// OpeningEntry returns the active OPENING entry of day, if any.
func (s *LedgerService) OpeningEntry(day core.Date) (core.Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.entries {
		if e.IsActive() && e.Type == core.Opening && e.Date.Equal(day) {
			return e, true
		}
	}
	return core.Entry{}, false
}

func (s *LedgerService) indexLocked(id string) int {
	for i, e := range s.entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func (s *LedgerService) publish(ctx context.Context, ev *amqp.LedgerEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishLedgerEvent(ctx, ev); err != nil {
		slog.WarnContext(ctx, "Failed to publish ledger event", "op", ev.Op, "error", err)
	}
}

// Close releases the store and the event publisher when they hold resources.
func (s *LedgerService) Close() error {
	var errs []error
	if c, ok := s.store.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if c, ok := s.events.(io.Closer); ok && s.events != nil {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}
	return errors.Join(errs...)
}
