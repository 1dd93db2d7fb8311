package models

import (
	"strings"
	"time"

	"github.com/uptrace/bun"
)

// Source tags carried on merged records so duplicates across the two backing
// stores stay visible to callers instead of being silently collapsed.
const (
	SourceDB  = "db"
	SourceCSV = "csv"
)

// AllAgesLiteral is the free-text value that marks a record as open to all
// ages. Case variants are accepted; so is an empty age field.
const AllAgesLiteral = "All ages"

// Event is a row of the authoritative events table.
type Event struct {
	bun.BaseModel `bun:"table:events"`

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
	CreatedAt    time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}

// EventRecord is the common shape every merged record is normalized into,
// regardless of which backing store produced it.
type EventRecord struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	StartsAt     time.Time `json:"starts_at"`
	EndsAt       time.Time `json:"ends_at"`
	AllDay       bool      `json:"all_day"`
	Category     string    `json:"category,omitempty"`
	LocationName string    `json:"location_name,omitempty"`
	City         string    `json:"city,omitempty"`
	Address      string    `json:"address,omitempty"`
	TicketURL    string    `json:"ticket_url,omitempty"`
	ImageURL     string    `json:"image_url,omitempty"`
	Organizer    string    `json:"organizer,omitempty"`
	Age          string    `json:"age,omitempty"`
	Source       string    `json:"source"`
}

// IsAllAges reports whether the record is open to all ages: an empty age
// field or the literal "All ages" in any casing.
func (r EventRecord) IsAllAges() bool {
	age := strings.TrimSpace(r.Age)
	return age == "" || strings.EqualFold(age, AllAgesLiteral)
}
