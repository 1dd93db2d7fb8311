package category

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"eventboard/internal/models"
)

var (
	// ErrCatalogUnavailable means the category store could not be reached.
	// Callers must treat this as fatal: no operation may proceed with an
	// unvalidated category.
	ErrCatalogUnavailable = errors.New("category catalog unavailable")

	// ErrInvalidCategory means a write-path category is not in the catalog.
	ErrInvalidCategory = errors.New("category not in catalog")
)

type Store interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	UpsertCategory(ctx context.Context, name string) error
	DeleteCategory(ctx context.Context, name string) error
}

// Normalizer is the single source of truth mapping free-text category input
// to canonical catalog entries.
type Normalizer struct {
	Store Store
}

func NewNormalizer(store Store) *Normalizer {
	return &Normalizer{Store: store}
}

// Catalog is one loaded snapshot of the canonical names. It is rebuilt fresh
// on every request; there is no process-wide cached copy.
type Catalog struct {
	names  []string
	lookup map[string]string
}

// Load fetches all catalog names and builds the case-insensitive lookup.
func (n *Normalizer) Load(ctx context.Context) (*Catalog, error) {
	categories, err := n.Store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}

	catalog := &Catalog{
		names:  make([]string, 0, len(categories)),
		lookup: make(map[string]string, len(categories)),
	}
	for _, c := range categories {
		catalog.names = append(catalog.names, c.Name)
		catalog.lookup[strings.ToLower(strings.TrimSpace(c.Name))] = c.Name
	}
	return catalog, nil
}

// Names returns the canonical catalog names in load order.
func (c *Catalog) Names() []string {
	return c.names
}

// Normalize maps raw input to its canonical form. Empty input and a catalog
// miss both return "": a miss is not an error on the read path, callers
// decide what an unmatched category means.
func (c *Catalog) Normalize(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	return c.lookup[strings.ToLower(raw)]
}

// Validate is the write-path lookup: a miss is ErrInvalidCategory. The system
// never persists a category value absent from the catalog.
func (c *Catalog) Validate(raw string) (string, error) {
	canonical := c.Normalize(raw)
	if canonical == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidCategory, strings.TrimSpace(raw))
	}
	return canonical, nil
}

// Upsert inserts-or-updates a canonical name. When renameFrom is given and
// differs from name, the old entry is deleted first; if that delete fails the
// operation aborts before the upsert. The two commits are independent, so a
// read racing a rename may see neither spelling for a moment. Accepted.
func (n *Normalizer) Upsert(ctx context.Context, name, renameFrom string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidCategory)
	}

	renameFrom = strings.TrimSpace(renameFrom)
	if renameFrom != "" && renameFrom != name {
		if err := n.Store.DeleteCategory(ctx, renameFrom); err != nil {
			return fmt.Errorf("delete old category %q: %w", renameFrom, err)
		}
	}

	if err := n.Store.UpsertCategory(ctx, name); err != nil {
		return fmt.Errorf("upsert category %q: %w", name, err)
	}
	return nil
}

// Delete removes a catalog entry unconditionally.
func (n *Normalizer) Delete(ctx context.Context, name string) error {
	if err := n.Store.DeleteCategory(ctx, strings.TrimSpace(name)); err != nil {
		return fmt.Errorf("delete category %q: %w", name, err)
	}
	return nil
}
