package submission_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"eventboard/internal/category"
	"eventboard/internal/logger"
	"eventboard/internal/models"
	"eventboard/internal/submission"
	rediswrap "eventboard/internal/submission/redis"
	"eventboard/internal/utils"
)

type Handler struct {
	SubmissionService *submission.Service
	Throttle          *rediswrap.Throttle
	Logger            *logger.Logger
}

func NewHandler(service *submission.Service, throttle *rediswrap.Throttle, log *logger.Logger) *Handler {
	return &Handler{
		SubmissionService: service,
		Throttle:          throttle,
		Logger:            log,
	}
}

// CreateSubmission is the public organizer-facing endpoint.
func (h *Handler) CreateSubmission(w http.ResponseWriter, r *http.Request) {
	h.Logger.Info("API", "CreateSubmission: received request")

	if !h.Throttle.Allow(r.Context(), clientIP(r)) {
		h.writeError(w, http.StatusTooManyRequests, "Too many submissions", errors.New("try again in a moment"))
		return
	}

	var req models.SubmissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateSubmission: failed to decode request body: %v", err))
		h.writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	sub, err := h.SubmissionService.Create(r.Context(), req)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, category.ErrCatalogUnavailable) {
			status = http.StatusServiceUnavailable
		}
		h.Logger.Error("API", fmt.Sprintf("CreateSubmission: %v", err))
		h.writeError(w, status, "Submission rejected", err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("Submission received", sub))
	h.Logger.Info("API", fmt.Sprintf("CreateSubmission: submission %s created", sub.ID))
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string, err error) {
	utils.WriteJSON(w, status, utils.ErrorResponse(message, err.Error()))
}

// clientIP takes the first X-Forwarded-For hop so the throttle key stays
// stable regardless of the proxy chain behind it.
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
