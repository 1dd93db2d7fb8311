package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Category is one entry of the canonical catalog. The stored spelling is the
// canonical form; lookups against it are case-insensitive.
type Category struct {
	bun.BaseModel `bun:"table:categories"`

	Name      string    `bun:"name,pk" json:"name"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}
