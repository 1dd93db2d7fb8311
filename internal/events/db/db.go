package db

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"eventboard/internal/models"
)

type DB struct {
	Bun *bun.DB
}

// EventsInRange → rows whose starts_at falls in [from, to] inclusive, plus
// the optional equality filters. This is the source-side pre-filter only; the
// merge engine re-applies the overlap rule after normalization.
func (d *DB) EventsInRange(ctx context.Context, from, to time.Time, category, city string, allAges bool) ([]models.Event, error) {
	var events []models.Event
	query := d.Bun.NewSelect().
		Model(&events).
		Where("starts_at >= ?", from).
		Where("starts_at <= ?", to)

	if city != "" {
		query = query.Where("city = ?", city)
	}
	if category != "" {
		query = query.Where("category = ?", category)
	}
	if allAges {
		query = query.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				Where("age IS NULL").
				WhereOr("age = ''").
				WhereOr("LOWER(age) = ?", "all ages")
		})
	}

	err := query.Order("starts_at ASC").Scan(ctx)
	if err != nil {
		return nil, err
	}
	return events, nil
}

// GetEventByID → fetch one event row by its ID
func (d *DB) GetEventByID(ctx context.Context, id string) (*models.Event, error) {
	var event models.Event
	err := d.Bun.NewSelect().
		Model(&event).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// CreateEvent → insert new event row
func (d *DB) CreateEvent(ctx context.Context, event models.Event) error {
	_, err := d.Bun.NewInsert().Model(&event).Exec(ctx)
	return err
}
