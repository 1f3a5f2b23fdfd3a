package http

import (
	"net/http"
	"strings"

	"cashledger/internal/core"
	applog "cashledger/internal/log"
	"cashledger/internal/services"
)

type createEntryRequest struct {
	Date         core.Date  `json:"date"`
	Type         string     `json:"type"`
	Amount       formAmount `json:"amount"`
	LabourCost   formAmount `json:"labourCost"`
	MaterialCost formAmount `json:"materialCost"`
	Notes        string     `json:"notes"`
}

func (req createEntryRequest) input() (services.EntryInput, error) {
	t, err := core.ParseEntryType(req.Type)
	if err != nil {
		return services.EntryInput{}, err
	}
	return services.EntryInput{
		Type:         t,
		Amount:       req.Amount.Decimal(),
		LabourCost:   req.LabourCost.Decimal(),
		MaterialCost: req.MaterialCost.Decimal(),
		Notes:        sanitizeInput(req.Notes),
	}, nil
}

type recordCouponsRequest struct {
	Date core.Date `json:"date"`
	services.CouponInput
}

// entryResponse pairs the affected entry with the service's status message.
type entryResponse struct {
	Entry  core.Entry `json:"entry"`
	Status string     `json:"status"`
}

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	var entries []core.Entry
	filter := r.URL.Query().Get("status")
	if strings.EqualFold(strings.TrimSpace(filter), "all") {
		entries = s.svc.Entries()
	} else {
		status, err := core.ParseStatus(filter)
		if err != nil {
			BadRequestError("status must be active, inactive or all").Write(w)
			return
		}
		if status == core.StatusActive {
			entries = s.svc.ActiveEntries()
		} else {
			entries = s.svc.InactiveEntries()
		}
	}
	if entries == nil {
		entries = []core.Entry{}
	}
	NewJSONResponse().Data(entries).Write(w)
}

func (s *Server) handleGetEntry(w http.ResponseWriter, r *http.Request) {
	e, err := s.svc.Entry(r.PathValue("id"))
	if err != nil {
		ServiceError(err, "").Write(w)
		return
	}
	NewJSONResponse().Data(e).Write(w)
}

func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	var req createEntryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		decodeError(err).Write(w)
		return
	}
	if req.Date.IsZero() {
		req.Date = s.today()
	}
	in, err := req.input()
	if err != nil {
		ServiceError(err, "").Write(w)
		return
	}

	e, err := s.svc.AddEntry(r.Context(), req.Date, in)
	s.writeEntryResult(w, r, applog.OpCreate, e, err, http.StatusCreated)
}

func (s *Server) handleRecordCoupons(w http.ResponseWriter, r *http.Request) {
	var req recordCouponsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	if req.Date.IsZero() {
		req.Date = s.today()
	}
	t, err := core.ParseEntryType(string(req.Type))
	if err != nil {
		ServiceError(err, "").Write(w)
		return
	}
	req.Type = t
	req.Notes = sanitizeInput(req.Notes)

	e, err := s.svc.RecordCoupons(r.Context(), req.Date, req.CouponInput)
	s.writeEntryResult(w, r, applog.OpCreate, e, err, http.StatusCreated)
}

func (s *Server) handleUpdateEntry(w http.ResponseWriter, r *http.Request) {
	var e core.Entry
	if err := decodeJSON(w, r, &e); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	e.ID = r.PathValue("id")
	e.Notes = sanitizeInput(e.Notes)

	updated, err := s.svc.UpdateEntry(r.Context(), e)
	s.writeEntryResult(w, r, applog.OpUpdate, updated, err, http.StatusOK)
}

func (s *Server) handleDeactivate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.svc.Deactivate(r.Context(), id); err != nil {
		ServiceError(err, s.svc.Status()).Write(w)
		return
	}
	e, _ := s.svc.Entry(id)
	s.writeEntryResult(w, r, applog.OpDeactivate, e, nil, http.StatusOK)
}

func (s *Server) handleRestore(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.svc.Restore(r.Context(), id); err != nil {
		ServiceError(err, s.svc.Status()).Write(w)
		return
	}
	e, _ := s.svc.Entry(id)
	s.writeEntryResult(w, r, applog.OpRestore, e, nil, http.StatusOK)
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	day, err := pathDate(r, s.now)
	if err != nil {
		ServiceError(err, "").Write(w)
		return
	}
	e, err := s.svc.DeleteLastEntry(r.Context(), day)
	s.writeEntryResult(w, r, applog.OpDeactivate, e, err, http.StatusOK)
}

func (s *Server) handleArchive(w http.ResponseWriter, r *http.Request) {
	n, err := s.svc.ArchiveAll(r.Context())
	if err != nil {
		ServiceError(err, s.svc.Status()).Write(w)
		return
	}
	s.logger.InfoContext(r.Context(), "Ledger archived", applog.FieldCount, n)
	NewJSONResponse().Data(map[string]any{
		"archived": n,
		"status":   s.svc.Status(),
	}).Write(w)
}

func (s *Server) writeEntryResult(w http.ResponseWriter, r *http.Request, op string, e core.Entry, err error, okStatus int) {
	if err != nil {
		ServiceError(err, s.svc.Status()).Write(w)
		return
	}
	s.access.LogEntryChanged(r.Context(), op, e.ID, string(e.Type), e.Date.String(), e.Amount.String())
	NewJSONResponse().
		Status(okStatus).
		Data(entryResponse{Entry: e, Status: s.svc.Status()}).
		Write(w)
}
