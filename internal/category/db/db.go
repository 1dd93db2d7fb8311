package db

import (
	"context"

	"github.com/uptrace/bun"

	"eventboard/internal/models"
)

type DB struct {
	Bun *bun.DB
}

// ListCategories → full scan of the catalog ordered by name
func (d *DB) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := d.Bun.NewSelect().
		Model(&categories).
		Order("name ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return categories, nil
}

// UpsertCategory → insert-or-update on name; a conflict is a no-op success
func (d *DB) UpsertCategory(ctx context.Context, name string) error {
	category := models.Category{Name: name}
	_, err := d.Bun.NewInsert().
		Model(&category).
		On("CONFLICT (name) DO NOTHING").
		Exec(ctx)
	return err
}

// DeleteCategory → remove a catalog entry unconditionally. No referential
// check against events: dangling category values surface as unmatched on the
// next normalization.
func (d *DB) DeleteCategory(ctx context.Context, name string) error {
	_, err := d.Bun.NewDelete().
		Model((*models.Category)(nil)).
		Where("name = ?", name).
		Exec(ctx)
	return err
}
