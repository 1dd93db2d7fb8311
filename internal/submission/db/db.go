package db

import (
	"context"

	"github.com/uptrace/bun"

	"eventboard/internal/models"
)

type DB struct {
	Bun *bun.DB
}

// CreateSubmission → insert new submission, public side is insert-only
func (d *DB) CreateSubmission(ctx context.Context, submission models.EventSubmission) error {
	_, err := d.Bun.NewInsert().Model(&submission).Exec(ctx)
	return err
}

// GetSubmissionByID → fetch one submission by its ID
func (d *DB) GetSubmissionByID(ctx context.Context, id string) (*models.EventSubmission, error) {
	var submission models.EventSubmission
	err := d.Bun.NewSelect().
		Model(&submission).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

// ListSubmissions → all submissions, newest first, optionally by status
func (d *DB) ListSubmissions(ctx context.Context, status string) ([]models.EventSubmission, error) {
	var submissions []models.EventSubmission
	query := d.Bun.NewSelect().
		Model(&submissions).
		Order("submitted_at DESC")

	if status != "" {
		query = query.Where("status = ?", status)
	}

	err := query.Scan(ctx)
	if err != nil {
		return nil, err
	}
	return submissions, nil
}

// UpdateSubmission → update the review fields after an admin decision.
// Submissions are never deleted.
func (d *DB) UpdateSubmission(ctx context.Context, submission models.EventSubmission) error {
	_, err := d.Bun.NewUpdate().
		Model(&submission).
		Column("status", "reviewer", "review_notes", "approved_at").
		Where("id = ?", submission.ID).
		Exec(ctx)
	return err
}
