package submission_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "github.com/uptrace/bun/driver/sqliteshim"

	"eventboard/internal/category"
	category_db "eventboard/internal/category/db"
	"eventboard/internal/config"
	events_db "eventboard/internal/events/db"
	"eventboard/internal/logger"
	"eventboard/internal/models"
	"eventboard/internal/submission"
	submission_db "eventboard/internal/submission/db"
)

type recordingPublisher struct {
	topics []string
}

func (p *recordingPublisher) PublishSubmission(topic string, sub models.EventSubmission) error {
	p.topics = append(p.topics, topic)
	return nil
}

type serviceFixture struct {
	service     *submission.Service
	submissions *submission_db.DB
	events      *events_db.DB
	publisher   *recordingPublisher
	bunDB       *bun.DB
}

func setupService(t *testing.T, categories ...string) *serviceFixture {
	t.Helper()

	sqldb, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { bunDB.Close() })

	for _, model := range []interface{}{
		(*models.Category)(nil),
		(*models.Event)(nil),
		(*models.EventSubmission)(nil),
	} {
		_, err = bunDB.NewCreateTable().Model(model).Exec(context.Background())
		require.NoError(t, err)
	}

	categoryStore := &category_db.DB{Bun: bunDB}
	for _, name := range categories {
		require.NoError(t, categoryStore.UpsertCategory(context.Background(), name))
	}

	submissionStore := &submission_db.DB{Bun: bunDB}
	eventStore := &events_db.DB{Bun: bunDB}
	publisher := &recordingPublisher{}

	topics := config.TopicConfig{
		SubmissionReceived: "eventboard.submission.received",
		SubmissionApproved: "eventboard.submission.approved",
		SubmissionRejected: "eventboard.submission.rejected",
	}

	service := submission.NewService(submissionStore, eventStore, category.NewNormalizer(categoryStore), publisher, topics, logger.NewLogger())
	return &serviceFixture{
		service:     service,
		submissions: submissionStore,
		events:      eventStore,
		publisher:   publisher,
		bunDB:       bunDB,
	}
}

func TestCreateSubmission(t *testing.T) {
	fixture := setupService(t, "Music")

	sub, err := fixture.service.Create(context.Background(), models.SubmissionRequest{
		Title:    "Jazz Night",
		StartsAt: "2025-03-01T19:00:00Z",
		Category: " music ",
		City:     "Springfield",
	})
	require.NoError(t, err)
	assert.Equal(t, models.SubmissionPending, sub.Status)
	assert.Equal(t, "Music", sub.Category)
	assert.False(t, sub.SubmittedAt.IsZero())

	stored, err := fixture.submissions.GetSubmissionByID(context.Background(), sub.ID)
	assert.NoError(t, err)
	assert.Equal(t, "Jazz Night", stored.Title)

	assert.Equal(t, []string{"eventboard.submission.received"}, fixture.publisher.topics)
}

func TestCreateSubmissionRejectsUnknownCategory(t *testing.T) {
	fixture := setupService(t, "Music")

	_, err := fixture.service.Create(context.Background(), models.SubmissionRequest{
		Title:    "Mystery Meetup",
		StartsAt: "2025-03-01T19:00:00Z",
		Category: "Nonexistent",
	})
	assert.ErrorIs(t, err, category.ErrInvalidCategory)

	// Nothing persisted on rejection.
	submissions, listErr := fixture.submissions.ListSubmissions(context.Background(), "")
	assert.NoError(t, listErr)
	assert.Equal(t, 0, len(submissions))
	assert.Equal(t, 0, len(fixture.publisher.topics))
}

func TestCreateSubmissionRequiresTitleAndStart(t *testing.T) {
	fixture := setupService(t)

	_, err := fixture.service.Create(context.Background(), models.SubmissionRequest{
		StartsAt: "2025-03-01T19:00:00Z",
	})
	assert.Error(t, err)

	_, err = fixture.service.Create(context.Background(), models.SubmissionRequest{
		Title:    "No start",
		StartsAt: "whenever",
	})
	assert.Error(t, err)
}

func TestCreateSubmissionDateOnlyStartIsAllDay(t *testing.T) {
	fixture := setupService(t)

	sub, err := fixture.service.Create(context.Background(), models.SubmissionRequest{
		Title:    "Street Fair",
		StartsAt: "2025-03-01",
	})
	require.NoError(t, err)
	assert.True(t, sub.AllDay)
}

func TestApproveCreatesEventRow(t *testing.T) {
	fixture := setupService(t, "Music")

	sub, err := fixture.service.Create(context.Background(), models.SubmissionRequest{
		Title:    "Jazz Night",
		StartsAt: "2025-03-01T19:00:00Z",
		Category: "Music",
		City:     "Springfield",
	})
	require.NoError(t, err)

	approved, err := fixture.service.Approve(context.Background(), sub.ID, models.ReviewRequest{
		Reviewer: "admin",
		Notes:    "welcome aboard",
	})
	require.NoError(t, err)
	assert.Equal(t, models.SubmissionApproved, approved.Status)
	assert.Equal(t, "admin", approved.Reviewer)
	assert.False(t, approved.ApprovedAt.IsZero())

	// The approval inserted a matching row into the events table.
	from := approved.StartsAt.Add(-time.Hour)
	to := approved.StartsAt.Add(time.Hour)
	rows, err := fixture.events.EventsInRange(context.Background(), from, to, "", "", false)
	assert.NoError(t, err)
	require.Equal(t, 1, len(rows))
	assert.Equal(t, "Jazz Night", rows[0].Title)
	assert.Equal(t, "Music", rows[0].Category)

	assert.Contains(t, fixture.publisher.topics, "eventboard.submission.approved")
}

func TestRejectKeepsSubmission(t *testing.T) {
	fixture := setupService(t)

	sub, err := fixture.service.Create(context.Background(), models.SubmissionRequest{
		Title:    "Loud Thing",
		StartsAt: "2025-03-01T19:00:00Z",
	})
	require.NoError(t, err)

	rejected, err := fixture.service.Reject(context.Background(), sub.ID, models.ReviewRequest{
		Reviewer: "admin",
		Notes:    "not a community event",
	})
	require.NoError(t, err)
	assert.Equal(t, models.SubmissionRejected, rejected.Status)

	// Rejected submissions stay on record.
	stored, err := fixture.submissions.GetSubmissionByID(context.Background(), sub.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.SubmissionRejected, stored.Status)
	assert.Equal(t, "not a community event", stored.ReviewNotes)
}

func TestReviewIsOneShot(t *testing.T) {
	fixture := setupService(t)

	sub, err := fixture.service.Create(context.Background(), models.SubmissionRequest{
		Title:    "Jazz Night",
		StartsAt: "2025-03-01T19:00:00Z",
	})
	require.NoError(t, err)

	_, err = fixture.service.Reject(context.Background(), sub.ID, models.ReviewRequest{Reviewer: "admin"})
	require.NoError(t, err)

	_, err = fixture.service.Approve(context.Background(), sub.ID, models.ReviewRequest{Reviewer: "admin"})
	assert.ErrorIs(t, err, submission.ErrAlreadyReviewed)

	_, err = fixture.service.Reject(context.Background(), sub.ID, models.ReviewRequest{Reviewer: "admin"})
	assert.ErrorIs(t, err, submission.ErrAlreadyReviewed)
}
