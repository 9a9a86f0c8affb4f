// Package ipc provides the HTTP API for the roster engine.
package ipc

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wardroster/engine/internal/calendar"
	"github.com/wardroster/engine/internal/domain"
	"github.com/wardroster/engine/internal/guard"
	"github.com/wardroster/engine/internal/roster"
	"github.com/wardroster/engine/internal/service"
)

// Handler holds all dependencies for the HTTP handlers.
type Handler struct {
	Service *service.Service
	Guard   *guard.Guard
	Version string
}

// WorkerRequest is the body for POST /api/v1/workers and
// PUT /api/v1/workers/{name}. Empty fields are left unchanged on PUT.
type WorkerRequest struct {
	Name     string          `json:"name"`
	Category domain.Category `json:"category"`
}

// MoveRequest is the body for POST /api/v1/workers/{name}/move.
type MoveRequest struct {
	Position int `json:"position"`
}

// LeaveRequest is the body for PUT /api/v1/workers/{name}/leave.
type LeaveRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// GenerateRequest is the optional body for POST /api/v1/rosters/{month}/generate.
type GenerateRequest struct {
	Seed int64 `json:"seed"`
}

// RosterView is the response for GET /api/v1/rosters/{month}.
type RosterView struct {
	Month            string           `json:"month"`
	StateVersion     int64            `json:"state_version"`
	CalendarFallback bool             `json:"calendar_fallback"`
	Grid             *domain.Grid     `json:"grid"`
	ManualEdits      []domain.CellKey `json:"manual_edits"`
}

// APIError is a structured error response.
type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Health handles GET /api/v1/health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": h.Version})
}

// ListWorkers handles GET /api/v1/workers.
func (h *Handler) ListWorkers(w http.ResponseWriter, r *http.Request) {
	workers, err := h.Service.ListWorkers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if workers == nil {
		workers = []domain.Worker{}
	}
	writeJSON(w, http.StatusOK, workers)
}

// AddWorker handles POST /api/v1/workers.
func (h *Handler) AddWorker(w http.ResponseWriter, r *http.Request) {
	var req WorkerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, APIError{Code: 400, Message: "invalid request body"})
		return
	}
	if err := h.Service.AddWorker(r.Context(), domain.Worker{Name: req.Name, Category: req.Category}); err != nil {
		writeError(w, err)
		return
	}
	h.writeWorkers(w, r, http.StatusCreated)
}

// UpdateWorker handles PUT /api/v1/workers/{name}: category change and/or rename.
func (h *Handler) UpdateWorker(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	var req WorkerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, APIError{Code: 400, Message: "invalid request body"})
		return
	}
	if req.Category != "" {
		if err := h.Service.SetCategory(r.Context(), name, req.Category); err != nil {
			writeError(w, err)
			return
		}
	}
	if req.Name != "" && req.Name != name {
		if err := h.Service.RenameWorker(r.Context(), name, req.Name); err != nil {
			writeError(w, err)
			return
		}
	}
	h.writeWorkers(w, r, http.StatusOK)
}

// RemoveWorker handles DELETE /api/v1/workers/{name}.
func (h *Handler) RemoveWorker(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.RemoveWorker(r.Context(), r.PathValue("name")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MoveWorker handles POST /api/v1/workers/{name}/move.
func (h *Handler) MoveWorker(w http.ResponseWriter, r *http.Request) {
	var req MoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, APIError{Code: 400, Message: "invalid request body"})
		return
	}
	if err := h.Service.MoveWorker(r.Context(), r.PathValue("name"), req.Position); err != nil {
		writeError(w, err)
		return
	}
	h.writeWorkers(w, r, http.StatusOK)
}

// SetLeave handles PUT /api/v1/workers/{name}/leave.
func (h *Handler) SetLeave(w http.ResponseWriter, r *http.Request) {
	var req LeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, APIError{Code: 400, Message: "invalid request body"})
		return
	}
	if err := h.Service.SetLeaveAllotment(r.Context(), r.PathValue("name"), req.Amount); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeWorkers writes the current roster with the given status.
func (h *Handler) writeWorkers(w http.ResponseWriter, r *http.Request, status int) {
	workers, err := h.Service.ListWorkers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if workers == nil {
		workers = []domain.Worker{}
	}
	writeJSON(w, status, workers)
}

// GetRoster handles GET /api/v1/rosters/{month}.
func (h *Handler) GetRoster(w http.ResponseWriter, r *http.Request) {
	rec, manual, err := h.Service.Schedule(r.Context(), r.PathValue("month"))
	if err != nil {
		writeError(w, err)
		return
	}
	keys := manual.Keys()
	if keys == nil {
		keys = []domain.CellKey{}
	}
	writeJSON(w, http.StatusOK, RosterView{
		Month:            rec.Month,
		StateVersion:     rec.StateVersion,
		CalendarFallback: rec.CalendarFallback,
		Grid:             rec.Grid,
		ManualEdits:      keys,
	})
}

// GenerateRoster handles POST /api/v1/rosters/{month}/generate.
// Only one generation per month runs at a time.
func (h *Handler) GenerateRoster(w http.ResponseWriter, r *http.Request) {
	month := r.PathValue("month")
	if _, _, err := calendar.ParseMonthKey(month); err != nil {
		writeError(w, err)
		return
	}

	var req GenerateRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, APIError{Code: 400, Message: "invalid request body"})
			return
		}
	}

	release, err := h.Guard.BeginGeneration(month)
	if err != nil {
		writeError(w, err)
		return
	}
	defer release()

	res, err := h.Service.Generate(r.Context(), month, req.Seed)
	if err != nil {
		writeError(w, err)
		return
	}
	if res.Notices == nil {
		res.Notices = []roster.Notice{}
	}
	writeJSON(w, http.StatusOK, res)
}

// SetCell handles PUT /api/v1/rosters/{month}/cells.
func (h *Handler) SetCell(w http.ResponseWriter, r *http.Request) {
	month := r.PathValue("month")
	var edit service.CellEdit
	if err := json.NewDecoder(r.Body).Decode(&edit); err != nil {
		writeJSON(w, http.StatusBadRequest, APIError{Code: 400, Message: "invalid request body"})
		return
	}
	if err := h.Guard.CheckRateLimit("edit:" + month); err != nil {
		writeError(w, err)
		return
	}
	if h.Guard.InFlight(month) {
		writeError(w, domain.ErrGenerationInFlight)
		return
	}

	grid, err := h.Service.EditCell(r.Context(), month, edit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, grid)
}

// ClearRoster handles DELETE /api/v1/rosters/{month}?actor=NAME.
func (h *Handler) ClearRoster(w http.ResponseWriter, r *http.Request) {
	month := r.PathValue("month")
	if h.Guard.InFlight(month) {
		writeError(w, domain.ErrGenerationInFlight)
		return
	}
	if err := h.Service.Clear(r.Context(), month, r.URL.Query().Get("actor")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetSummary handles GET /api/v1/rosters/{month}/summary.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	report, err := h.Service.Summary(r.Context(), r.PathValue("month"))
	if err != nil {
		writeError(w, err)
		return
	}
	if report.Rows == nil {
		report.Rows = []roster.WorkerSummary{}
	}
	writeJSON(w, http.StatusOK, report)
}

// ListEvents handles GET /api/v1/rosters/{month}/events?since_seq=N.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	month := r.PathValue("month")
	sinceSeq := int64(0)
	if s := r.URL.Query().Get("since_seq"); s != "" {
		parsed, err := strconv.ParseInt(s, 10, 64)
		if err == nil {
			sinceSeq = parsed
		}
	}

	events, err := h.Service.Events(r.Context(), month, sinceSeq)
	if err != nil {
		writeError(w, err)
		return
	}
	if events == nil {
		events = []domain.GenerationEvent{}
	}
	writeJSON(w, http.StatusOK, events)
}

// StreamEvents handles GET /api/v1/rosters/{month}/events/stream (SSE).
func (h *Handler) StreamEvents(w http.ResponseWriter, r *http.Request) {
	month := r.PathValue("month")
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, APIError{Code: 500, Message: "streaming not supported"})
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	// Send initial batch of events.
	events, err := h.Service.Events(r.Context(), month, 0)
	if err != nil {
		writeSSEError(w, flusher, err)
		return
	}
	for _, ev := range events {
		writeSSEEvent(w, flusher, ev)
	}

	// Poll for new events.
	lastSeq := int64(0)
	if len(events) > 0 {
		lastSeq = events[len(events)-1].SeqNo
	}

	ctx := r.Context()
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			newEvents, err := h.Service.Events(ctx, month, lastSeq)
			if err != nil {
				return
			}
			for _, ev := range newEvents {
				writeSSEEvent(w, flusher, ev)
				lastSeq = ev.SeqNo
			}
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	var engErr *domain.EngineError
	if errors.As(err, &engErr) {
		status := http.StatusInternalServerError
		switch engErr.Code {
		case domain.ErrScheduleNotFound.Code, domain.ErrWorkerNotFound.Code:
			status = http.StatusNotFound
		case domain.ErrDuplicateWorker.Code, domain.ErrGenerationInFlight.Code, domain.ErrOptimisticLock.Code:
			status = http.StatusConflict
		case domain.ErrRateLimitExceeded.Code:
			status = http.StatusTooManyRequests
		case domain.ErrInvalidMonth.Code, domain.ErrInvalidDutyCode.Code, domain.ErrUnknownWorker.Code,
			domain.ErrDayOutOfRange.Code, domain.ErrInvalidWorker.Code:
			status = http.StatusBadRequest
		case domain.ErrEmptyRoster.Code, domain.ErrPolicyInvalid.Code:
			status = http.StatusUnprocessableEntity
		}
		writeJSON(w, status, APIError{Code: engErr.Code, Message: engErr.Message})
		return
	}
	writeJSON(w, http.StatusInternalServerError, APIError{Code: -1, Message: err.Error()})
}

func writeSSEEvent(w http.ResponseWriter, f http.Flusher, ev domain.GenerationEvent) {
	data, _ := json.Marshal(ev)
	fmt.Fprintf(w, "data: %s\n\n", data)
	f.Flush()
}

func writeSSEError(w http.ResponseWriter, f http.Flusher, err error) {
	fmt.Fprintf(w, "event: error\ndata: %s\n\n", err.Error())
	f.Flush()
}
