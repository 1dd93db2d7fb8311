package admin_api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"eventboard/internal/category"
	"eventboard/internal/events"
	"eventboard/internal/logger"
	"eventboard/internal/models"
	"eventboard/internal/submission"
	"eventboard/internal/utils"
)

type Handler struct {
	Normalizer        *category.Normalizer
	SubmissionService *submission.Service
	MergeService      *events.MergeService
	Logger            *logger.Logger
}

func NewHandler(normalizer *category.Normalizer, submissionService *submission.Service, mergeService *events.MergeService, log *logger.Logger) *Handler {
	return &Handler{
		Normalizer:        normalizer,
		SubmissionService: submissionService,
		MergeService:      mergeService,
		Logger:            log,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Put("/categories", h.UpsertCategory)
	r.Delete("/categories/{name}", h.DeleteCategory)
	r.Get("/submissions", h.ListSubmissions)
	r.Post("/submissions/{submissionId}/approve", h.ApproveSubmission)
	r.Post("/submissions/{submissionId}/reject", h.RejectSubmission)
	r.Post("/events", h.AddEvent)
}

type upsertCategoryRequest struct {
	Name       string `json:"name"`
	RenameFrom string `json:"rename_from"`
}

// UpsertCategory inserts or renames a catalog entry.
func (h *Handler) UpsertCategory(w http.ResponseWriter, r *http.Request) {
	var req upsertCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("API", fmt.Sprintf("UpsertCategory: failed to decode request body: %v", err))
		h.writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.Normalizer.Upsert(r.Context(), req.Name, req.RenameFrom); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, category.ErrInvalidCategory) {
			status = http.StatusBadRequest
		}
		h.Logger.Error("API", fmt.Sprintf("UpsertCategory: %v", err))
		h.writeError(w, status, "Could not upsert category", err)
		return
	}

	h.Logger.LogAdmin("CATEGORY_UPSERT", fmt.Sprintf("name=%q rename_from=%q", req.Name, req.RenameFrom))
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Category saved", req.Name))
}

// DeleteCategory removes a catalog entry. Events keeping the old value just
// stop matching it.
func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	name, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil || name == "" {
		h.writeError(w, http.StatusBadRequest, "Invalid category name", fmt.Errorf("bad name parameter"))
		return
	}

	if err := h.Normalizer.Delete(r.Context(), name); err != nil {
		h.Logger.Error("API", fmt.Sprintf("DeleteCategory: %v", err))
		h.writeError(w, http.StatusInternalServerError, "Could not delete category", err)
		return
	}

	h.Logger.LogAdmin("CATEGORY_DELETE", fmt.Sprintf("name=%q", name))
	w.WriteHeader(http.StatusNoContent)
}

// ListSubmissions returns submissions, filterable by ?status=.
func (h *Handler) ListSubmissions(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	submissions, err := h.SubmissionService.List(r.Context(), status)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListSubmissions: %v", err))
		h.writeError(w, http.StatusInternalServerError, "Could not list submissions", err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{"items": submissions})
}

func (h *Handler) ApproveSubmission(w http.ResponseWriter, r *http.Request) {
	h.reviewSubmission(w, r, "approve", h.SubmissionService.Approve)
}

func (h *Handler) RejectSubmission(w http.ResponseWriter, r *http.Request) {
	h.reviewSubmission(w, r, "reject", h.SubmissionService.Reject)
}

func (h *Handler) reviewSubmission(w http.ResponseWriter, r *http.Request, action string,
	decide func(context.Context, string, models.ReviewRequest) (*models.EventSubmission, error)) {
	submissionID := chi.URLParam(r, "submissionId")
	h.Logger.Info("API", fmt.Sprintf("reviewSubmission: action=%s submissionId=%s", action, submissionID))

	var review models.ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&review); err != nil {
		h.Logger.Error("API", fmt.Sprintf("reviewSubmission: failed to decode request body: %v", err))
		h.writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	sub, err := decide(r.Context(), submissionID, review)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, submission.ErrAlreadyReviewed) {
			status = http.StatusConflict
		}
		h.Logger.Error("API", fmt.Sprintf("reviewSubmission: %s failed: %v", action, err))
		h.writeError(w, status, "Could not "+action+" submission", err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Submission "+sub.Status, sub))
}

// AddEvent is the manual admin add, bypassing the submission queue but not
// the category validation.
func (h *Handler) AddEvent(w http.ResponseWriter, r *http.Request) {
	var req models.SubmissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("API", fmt.Sprintf("AddEvent: failed to decode request body: %v", err))
		h.writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	event, err := h.MergeService.AddEvent(r.Context(), req)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, category.ErrCatalogUnavailable) {
			status = http.StatusServiceUnavailable
		}
		h.Logger.Error("API", fmt.Sprintf("AddEvent: %v", err))
		h.writeError(w, status, "Could not add event", err)
		return
	}

	h.Logger.LogAdmin("EVENT_ADD", fmt.Sprintf("event %s created: %q", event.ID, event.Title))
	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("Event created", event))
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string, err error) {
	utils.WriteJSON(w, status, utils.ErrorResponse(message, err.Error()))
}
