package submission

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"eventboard/internal/category"
	"eventboard/internal/config"
	"eventboard/internal/events"
	"eventboard/internal/logger"
	"eventboard/internal/models"
)

var ErrAlreadyReviewed = errors.New("submission already reviewed")

type SubmissionDBLayer interface {
	CreateSubmission(ctx context.Context, submission models.EventSubmission) error
	GetSubmissionByID(ctx context.Context, id string) (*models.EventSubmission, error)
	ListSubmissions(ctx context.Context, status string) ([]models.EventSubmission, error)
	UpdateSubmission(ctx context.Context, submission models.EventSubmission) error
}

// EventStore is the slice of the events table a submission approval touches.
type EventStore interface {
	CreateEvent(ctx context.Context, event models.Event) error
}

type Publisher interface {
	PublishSubmission(topic string, submission models.EventSubmission) error
}

type Service struct {
	DB         SubmissionDBLayer
	Events     EventStore
	Normalizer *category.Normalizer
	Producer   Publisher
	Topics     config.TopicConfig
	Logger     *logger.Logger
}

func NewService(db SubmissionDBLayer, eventStore EventStore, normalizer *category.Normalizer, producer Publisher, topics config.TopicConfig, log *logger.Logger) *Service {
	return &Service{
		DB:         db,
		Events:     eventStore,
		Normalizer: normalizer,
		Producer:   producer,
		Topics:     topics,
		Logger:     log,
	}
}

// Create is the public submission path. The category is validated against the
// catalog before anything is persisted: an unknown category rejects the whole
// submission.
func (s *Service) Create(ctx context.Context, req models.SubmissionRequest) (*models.EventSubmission, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, fmt.Errorf("title is required")
	}

	start, startDateOnly, err := events.ParseTimestamp(req.StartsAt)
	if err != nil {
		return nil, fmt.Errorf("%w: starts_at %q", events.ErrInvalidTimeRange, req.StartsAt)
	}

	catalog, err := s.Normalizer.Load(ctx)
	if err != nil {
		return nil, err
	}

	canonical := ""
	if strings.TrimSpace(req.Category) != "" {
		canonical, err = catalog.Validate(req.Category)
		if err != nil {
			return nil, err
		}
	}

	var end time.Time
	if strings.TrimSpace(req.EndsAt) != "" {
		end, _, err = events.ParseTimestamp(req.EndsAt)
		if err != nil {
			return nil, fmt.Errorf("%w: ends_at %q", events.ErrInvalidTimeRange, req.EndsAt)
		}
	}

	sub := models.EventSubmission{
		ID:           uuid.New().String(),
		Title:        strings.TrimSpace(req.Title),
		Description:  req.Description,
		StartsAt:     start,
		EndsAt:       end,
		AllDay:       req.AllDay || startDateOnly,
		Category:     canonical,
		LocationName: req.LocationName,
		City:         strings.TrimSpace(req.City),
		Address:      req.Address,
		TicketURL:    req.TicketURL,
		ImageURL:     req.ImageURL,
		Organizer:    req.Organizer,
		Age:          req.Age,
		Status:       models.SubmissionPending,
		SubmittedAt:  time.Now().UTC(),
	}

	if err := s.DB.CreateSubmission(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to create submission: %w", err)
	}
	s.Logger.Info("SUBMISSION", fmt.Sprintf("submission %s received: %q", sub.ID, sub.Title))

	s.publish(s.Topics.SubmissionReceived, sub)
	return &sub, nil
}

// List returns submissions, optionally filtered by status.
func (s *Service) List(ctx context.Context, status string) ([]models.EventSubmission, error) {
	submissions, err := s.DB.ListSubmissions(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	return submissions, nil
}

// Approve flips a pending submission to approved and inserts the matching row
// into the authoritative events table.
func (s *Service) Approve(ctx context.Context, id string, review models.ReviewRequest) (*models.EventSubmission, error) {
	sub, err := s.DB.GetSubmissionByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("submission %s not found: %w", id, err)
	}
	if sub.Status != models.SubmissionPending {
		return nil, fmt.Errorf("%w: submission %s is %s", ErrAlreadyReviewed, id, sub.Status)
	}

	sub.Status = models.SubmissionApproved
	sub.Reviewer = review.Reviewer
	sub.ReviewNotes = review.Notes
	sub.ApprovedAt = time.Now().UTC()

	if err := s.DB.UpdateSubmission(ctx, *sub); err != nil {
		return nil, fmt.Errorf("failed to approve submission: %w", err)
	}

	event := models.Event{
		ID:           uuid.New().String(),
		Title:        sub.Title,
		Description:  sub.Description,
		StartsAt:     sub.StartsAt,
		EndsAt:       sub.EndsAt,
		AllDay:       sub.AllDay,
		Category:     sub.Category,
		LocationName: sub.LocationName,
		City:         sub.City,
		Address:      sub.Address,
		TicketURL:    sub.TicketURL,
		ImageURL:     sub.ImageURL,
		Organizer:    sub.Organizer,
		Age:          sub.Age,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.Events.CreateEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("approved submission %s but failed to create event: %w", id, err)
	}

	s.Logger.LogAdmin("APPROVE", fmt.Sprintf("submission %s approved by %s, event %s created", sub.ID, review.Reviewer, event.ID))
	s.publish(s.Topics.SubmissionApproved, *sub)
	return sub, nil
}

// Reject marks a pending submission rejected. The record stays around.
func (s *Service) Reject(ctx context.Context, id string, review models.ReviewRequest) (*models.EventSubmission, error) {
	sub, err := s.DB.GetSubmissionByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("submission %s not found: %w", id, err)
	}
	if sub.Status != models.SubmissionPending {
		return nil, fmt.Errorf("%w: submission %s is %s", ErrAlreadyReviewed, id, sub.Status)
	}

	sub.Status = models.SubmissionRejected
	sub.Reviewer = review.Reviewer
	sub.ReviewNotes = review.Notes

	if err := s.DB.UpdateSubmission(ctx, *sub); err != nil {
		return nil, fmt.Errorf("failed to reject submission: %w", err)
	}

	s.Logger.LogAdmin("REJECT", fmt.Sprintf("submission %s rejected by %s", sub.ID, review.Reviewer))
	s.publish(s.Topics.SubmissionRejected, *sub)
	return sub, nil
}

// publish is best-effort: a broker outage never fails the request.
func (s *Service) publish(topic string, sub models.EventSubmission) {
	if s.Producer == nil || topic == "" {
		return
	}
	if err := s.Producer.PublishSubmission(topic, sub); err != nil {
		s.Logger.Warn("KAFKA", fmt.Sprintf("failed to publish %s for submission %s: %v", topic, sub.ID, err))
	}
}
