package events_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/skip2/go-qrcode"

	"eventboard/internal/category"
	"eventboard/internal/events"
	"eventboard/internal/logger"
	"eventboard/internal/utils"
)

type Handler struct {
	MergeService *events.MergeService
	PublicURL    string
	Logger       *logger.Logger
}

func NewHandler(mergeService *events.MergeService, publicURL string, log *logger.Logger) *Handler {
	return &Handler{
		MergeService: mergeService,
		PublicURL:    publicURL,
		Logger:       log,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/events", h.ListEvents)
	r.Get("/events/{eventId}/qr", h.EventQR)
	r.Get("/categories", h.ListCategories)
}

// ListEvents answers the merge query. The window comes either from a
// date-only shorthand (one UTC calendar day) or an explicit from/to pair.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	h.Logger.Info("API", fmt.Sprintf("ListEvents: from=%s to=%s date=%s category=%s city=%s",
		q.Get("from"), q.Get("to"), q.Get("date"), q.Get("category"), q.Get("city")))

	window, err := h.parseWindow(q.Get("from"), q.Get("to"), q.Get("date"))
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListEvents: bad window: %v", err))
		h.writeError(w, http.StatusBadRequest, "Invalid time range", err)
		return
	}

	allAges := false
	if raw := q.Get("all_ages"); raw != "" {
		allAges, _ = strconv.ParseBool(raw)
	}

	result, err := h.MergeService.Query(r.Context(), events.QueryParams{
		Window:   window,
		Category: q.Get("category"),
		City:     q.Get("city"),
		AllAges:  allAges,
	})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, category.ErrCatalogUnavailable) || errors.Is(err, events.ErrSourceUnavailable) {
			status = http.StatusServiceUnavailable
		}
		h.Logger.Error("API", fmt.Sprintf("ListEvents: merge failed: %v", err))
		h.writeError(w, status, "Could not list events", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListEvents: failed to encode response: %v", err))
		return
	}
	h.Logger.Info("API", fmt.Sprintf("ListEvents: returned %d records", len(result.Items)))
}

func (h *Handler) parseWindow(from, to, date string) (events.Window, error) {
	if date != "" {
		day, err := time.ParseInLocation("2006-01-02", date, time.UTC)
		if err != nil {
			return events.Window{}, fmt.Errorf("%w: date %q", events.ErrInvalidTimeRange, date)
		}
		return events.DayWindow(day), nil
	}
	return events.ParseWindow(from, to)
}

// ListCategories returns the canonical catalog.
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	catalog, err := h.MergeService.Normalizer.Load(r.Context())
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListCategories: catalog load failed: %v", err))
		h.writeError(w, http.StatusServiceUnavailable, "Catalog unavailable", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string][]string{"categories": catalog.Names()}); err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListCategories: failed to encode response: %v", err))
	}
}

// EventQR serves a PNG QR code pointing at an event's ticket URL, or its
// public detail page when the event carries no ticket link. Meant for flyers
// and share links.
func (h *Handler) EventQR(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")
	h.Logger.Info("API", fmt.Sprintf("EventQR: eventId=%s", eventID))

	event, err := h.MergeService.GetEvent(r.Context(), eventID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("EventQR: event not found: %v", err))
		h.writeError(w, http.StatusNotFound, "Event not found", err)
		return
	}

	target := event.TicketURL
	if target == "" {
		target = fmt.Sprintf("%s/events/%s", h.PublicURL, event.ID)
	}

	png, err := qrcode.Encode(target, qrcode.Medium, 256)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("EventQR: failed to generate QR: %v", err))
		h.writeError(w, http.StatusInternalServerError, "Could not generate QR code", err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	if _, err := w.Write(png); err != nil {
		h.Logger.Error("API", fmt.Sprintf("EventQR: failed to write response: %v", err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string, err error) {
	utils.WriteJSON(w, status, utils.ErrorResponse(message, err.Error()))
}
