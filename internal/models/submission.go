package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Submission statuses. Submissions are never deleted, only transitioned.
const (
	SubmissionPending  = "pending"
	SubmissionApproved = "approved"
	SubmissionRejected = "rejected"
)

// EventSubmission is an organizer-submitted event waiting for curation.
// Approval additionally inserts a corresponding row into the events table.
type EventSubmission struct {
	bun.BaseModel `bun:"table:event_submissions"`

	ID           string    `bun:"id,pk" json:"id"`
	Title        string    `bun:"title,notnull" json:"title"`
	Description  string    `bun:"description,nullzero" json:"description,omitempty"`
	StartsAt     time.Time `bun:"starts_at,notnull" json:"starts_at"`
	EndsAt       time.Time `bun:"ends_at,nullzero" json:"ends_at,omitempty"`
	AllDay       bool      `bun:"all_day" json:"all_day"`
	Category     string    `bun:"category,nullzero" json:"category,omitempty"`
	LocationName string    `bun:"location_name,nullzero" json:"location_name,omitempty"`
	City         string    `bun:"city,nullzero" json:"city,omitempty"`
	Address      string    `bun:"address,nullzero" json:"address,omitempty"`
	TicketURL    string    `bun:"ticket_url,nullzero" json:"ticket_url,omitempty"`
	ImageURL     string    `bun:"image_url,nullzero" json:"image_url,omitempty"`
	Organizer    string    `bun:"organizer,nullzero" json:"organizer,omitempty"`
	Age          string    `bun:"age,nullzero" json:"age,omitempty"`
	Status       string    `bun:"status,notnull" json:"status"`
	Reviewer     string    `bun:"reviewer,nullzero" json:"reviewer,omitempty"`
	ReviewNotes  string    `bun:"review_notes,nullzero" json:"review_notes,omitempty"`
	ApprovedAt   time.Time `bun:"approved_at,nullzero" json:"approved_at,omitempty"`
	SubmittedAt  time.Time `bun:"submitted_at,notnull" json:"submitted_at"`
}

// SubmissionRequest is the public submission payload.
type SubmissionRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	StartsAt     string `json:"starts_at"`
	EndsAt       string `json:"ends_at"`
	AllDay       bool   `json:"all_day"`
	Category     string `json:"category"`
	LocationName string `json:"location_name"`
	City         string `json:"city"`
	Address      string `json:"address"`
	TicketURL    string `json:"ticket_url"`
	ImageURL     string `json:"image_url"`
	Organizer    string `json:"organizer"`
	Age          string `json:"age"`
}

// ReviewRequest carries the admin decision on a pending submission.
type ReviewRequest struct {
	Reviewer string `json:"reviewer"`
	Notes    string `json:"notes"`
}
