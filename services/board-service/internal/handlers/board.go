package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/md-rashed-zaman/dayboard/services/board-service/internal/board"
	"github.com/md-rashed-zaman/dayboard/services/board-service/internal/calendar"
)

type BoardHandler struct {
	desk   *board.Desk
	loader *board.Loader
	logger *slog.Logger
}

func NewBoardHandler(desk *board.Desk, loader *board.Loader, logger *slog.Logger) *BoardHandler {
	return &BoardHandler{desk: desk, loader: loader, logger: logger}
}

// Register mounts the board API on mux.
func (h *BoardHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/v1/timeline", h.Timeline)
	mux.HandleFunc("/api/v1/board", h.Board)
	mux.HandleFunc("/api/v1/desk", h.Desk)
	mux.HandleFunc("/api/v1/desk/navigate", h.Navigate)
	mux.HandleFunc("/api/v1/desk/bookable", h.Bookable)
	mux.HandleFunc("/api/v1/desk/slot-click", h.SlotClick)
	mux.HandleFunc("/api/v1/desk/booking-click", h.BookingClick)
}

func (h *BoardHandler) Timeline(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, timelineBody(h.desk.Grid()))
}

// Board renders any date without touching the desk's selection.
func (h *BoardHandler) Board(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	axis, ok := axisParam(w, r)
	if !ok {
		return
	}
	dateStr := strings.TrimSpace(r.URL.Query().Get("date"))
	if dateStr == "" {
		http.Error(w, "date is required", http.StatusBadRequest)
		return
	}
	date, err := calendar.Parse(dateStr)
	if err != nil {
		http.Error(w, "invalid date", http.StatusBadRequest)
		return
	}

	snap, err := h.loader.Load(r.Context(), date)
	if err != nil {
		http.Error(w, "failed to load board", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, viewBody(board.Build(h.desk.Grid(), snap, axis)))
}

func (h *BoardHandler) Desk(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	axis, ok := axisParam(w, r)
	if !ok {
		return
	}
	h.writeView(w, axis)
}

type navigateRequest struct {
	Days *int   `json:"days"`
	Date string `json:"date"`
}

func (h *BoardHandler) Navigate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	axis, ok := axisParam(w, r)
	if !ok {
		return
	}
	var req navigateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}

	var err error
	switch {
	case req.Date != "" && req.Days != nil:
		http.Error(w, "days and date are mutually exclusive", http.StatusBadRequest)
		return
	case req.Date != "":
		date, perr := calendar.Parse(strings.TrimSpace(req.Date))
		if perr != nil {
			http.Error(w, "invalid date", http.StatusBadRequest)
			return
		}
		err = h.desk.Select(r.Context(), date)
	case req.Days != nil:
		err = h.desk.Navigate(r.Context(), *req.Days)
	default:
		http.Error(w, "days or date is required", http.StatusBadRequest)
		return
	}
	if err != nil {
		h.logger.Error("desk navigation failed", "err", err)
		http.Error(w, "failed to load board", http.StatusServiceUnavailable)
		return
	}
	h.writeView(w, axis)
}

type bookableItem struct {
	Slot    string `json:"slot"`
	Minutes int    `json:"minutes"`
}

func (h *BoardHandler) Bookable(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	axis, ok := axisParam(w, r)
	if !ok {
		return
	}
	resourceID := strings.TrimSpace(r.URL.Query().Get("resource_id"))
	duration, err := strconv.Atoi(r.URL.Query().Get("duration"))
	if resourceID == "" || err != nil || duration <= 0 {
		http.Error(w, "resource_id and a positive duration are required", http.StatusBadRequest)
		return
	}

	starts, err := h.desk.BookableStarts(axis, resourceID, duration)
	if err != nil {
		writeDeskError(w, err)
		return
	}
	resp := make([]bookableItem, 0, len(starts))
	for _, s := range starts {
		resp = append(resp, bookableItem{Slot: s.Label, Minutes: s.Minutes})
	}
	writeJSON(w, http.StatusOK, resp)
}

type slotClickRequest struct {
	Axis       string `json:"axis"`
	ResourceID string `json:"resource_id"`
	Slot       string `json:"slot"`
}

func (h *BoardHandler) SlotClick(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req slotClickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	axis, err := board.ParseAxis(strings.TrimSpace(req.Axis))
	if err != nil {
		http.Error(w, "invalid axis", http.StatusBadRequest)
		return
	}
	req.ResourceID = strings.TrimSpace(req.ResourceID)
	req.Slot = strings.TrimSpace(req.Slot)
	if req.ResourceID == "" || req.Slot == "" {
		http.Error(w, "resource_id and slot are required", http.StatusBadRequest)
		return
	}

	ev, err := h.desk.SlotClick(r.Context(), axis, req.ResourceID, req.Slot)
	if err != nil {
		writeDeskError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

type bookingClickRequest struct {
	BookingID string `json:"booking_id"`
}

func (h *BoardHandler) BookingClick(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req bookingClickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.BookingID = strings.TrimSpace(req.BookingID)
	if req.BookingID == "" {
		http.Error(w, "booking_id is required", http.StatusBadRequest)
		return
	}

	ev, err := h.desk.BookingClick(r.Context(), req.BookingID)
	if err != nil {
		writeDeskError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

func (h *BoardHandler) writeView(w http.ResponseWriter, axis board.Axis) {
	v, err := h.desk.View(axis)
	if err != nil {
		writeDeskError(w, err)
		return
	}
	if n := v.SkippedCount(); n > 0 {
		h.logger.Warn("board records skipped", "date", v.Date.String(), "count", n)
	}
	writeJSON(w, http.StatusOK, viewBody(v))
}

func axisParam(w http.ResponseWriter, r *http.Request) (board.Axis, bool) {
	axis, err := board.ParseAxis(strings.TrimSpace(r.URL.Query().Get("axis")))
	if err != nil {
		http.Error(w, "invalid axis", http.StatusBadRequest)
		return "", false
	}
	return axis, true
}

func writeDeskError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, board.ErrNotLoaded):
		http.Error(w, "board not loaded", http.StatusServiceUnavailable)
	case errors.Is(err, board.ErrSlotUnavailable):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, board.ErrUnknownResource), errors.Is(err, board.ErrUnknownBooking):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, board.ErrUnknownSlot):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "emit failed", http.StatusBadGateway)
	}
}
