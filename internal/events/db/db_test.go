package db_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "github.com/uptrace/bun/driver/sqliteshim"

	"eventboard/internal/events/db"
	"eventboard/internal/models"
)

func setupTestDB(t *testing.T) (*db.DB, *bun.DB) {
	sqldb, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to connect to in-memory database: %v", err)
	}

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())

	_, err = bunDB.NewCreateTable().Model((*models.Event)(nil)).Exec(context.Background())
	if err != nil {
		t.Fatalf("Failed to create events table: %v", err)
	}

	return &db.DB{Bun: bunDB}, bunDB
}

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return parsed
}

func insertEvent(t *testing.T, eventDB *db.DB, title, start, city, category, age string) string {
	t.Helper()
	id := uuid.New().String()
	err := eventDB.CreateEvent(context.Background(), models.Event{
		ID:       id,
		Title:    title,
		StartsAt: mustTime(t, start),
		City:     city,
		Category: category,
		Age:      age,
	})
	require.NoError(t, err)
	return id
}

func TestEventsInRangeIsInclusiveOnBothEnds(t *testing.T) {
	eventDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	insertEvent(t, eventDB, "At from", "2025-01-10T00:00:00Z", "", "", "")
	insertEvent(t, eventDB, "Inside", "2025-01-10T12:00:00Z", "", "", "")
	insertEvent(t, eventDB, "At to", "2025-01-11T00:00:00Z", "", "", "")
	insertEvent(t, eventDB, "Before", "2025-01-09T23:59:59Z", "", "", "")
	insertEvent(t, eventDB, "After", "2025-01-11T00:00:01Z", "", "", "")

	events, err := eventDB.EventsInRange(context.Background(),
		mustTime(t, "2025-01-10T00:00:00Z"), mustTime(t, "2025-01-11T00:00:00Z"), "", "", false)
	assert.NoError(t, err)
	require.Equal(t, 3, len(events))
	assert.Equal(t, "At from", events[0].Title)
	assert.Equal(t, "Inside", events[1].Title)
	assert.Equal(t, "At to", events[2].Title)
}

func TestEventsInRangeCityAndCategoryFilters(t *testing.T) {
	eventDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	insertEvent(t, eventDB, "Match", "2025-01-10T12:00:00Z", "Springfield", "Music", "")
	insertEvent(t, eventDB, "Wrong city", "2025-01-10T12:00:00Z", "Shelbyville", "Music", "")
	insertEvent(t, eventDB, "Wrong category", "2025-01-10T12:00:00Z", "Springfield", "Art", "")

	events, err := eventDB.EventsInRange(context.Background(),
		mustTime(t, "2025-01-10T00:00:00Z"), mustTime(t, "2025-01-11T00:00:00Z"),
		"Music", "Springfield", false)
	assert.NoError(t, err)
	require.Equal(t, 1, len(events))
	assert.Equal(t, "Match", events[0].Title)
}

func TestEventsInRangeAllAgesPredicate(t *testing.T) {
	eventDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	insertEvent(t, eventDB, "No age", "2025-01-10T12:00:00Z", "", "", "")
	insertEvent(t, eventDB, "Literal", "2025-01-10T13:00:00Z", "", "", "All ages")
	insertEvent(t, eventDB, "Case variant", "2025-01-10T14:00:00Z", "", "", "ALL AGES")
	insertEvent(t, eventDB, "Adults only", "2025-01-10T15:00:00Z", "", "", "21+")

	events, err := eventDB.EventsInRange(context.Background(),
		mustTime(t, "2025-01-10T00:00:00Z"), mustTime(t, "2025-01-11T00:00:00Z"), "", "", true)
	assert.NoError(t, err)
	require.Equal(t, 3, len(events))
	for _, ev := range events {
		assert.NotEqual(t, "Adults only", ev.Title)
	}
}

func TestGetEventByID(t *testing.T) {
	eventDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	id := insertEvent(t, eventDB, "Jazz Night", "2025-01-10T19:00:00Z", "Springfield", "Music", "")

	event, err := eventDB.GetEventByID(context.Background(), id)
	assert.NoError(t, err)
	require.NotNil(t, event)
	assert.Equal(t, "Jazz Night", event.Title)

	_, err = eventDB.GetEventByID(context.Background(), "non-existent")
	assert.Error(t, err)
}
