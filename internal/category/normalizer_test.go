package category_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "github.com/uptrace/bun/driver/sqliteshim"

	"eventboard/internal/category"
	"eventboard/internal/category/db"
	"eventboard/internal/models"
)

func setupNormalizer(t *testing.T, names ...string) (*category.Normalizer, *bun.DB) {
	sqldb, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to connect to in-memory database: %v", err)
	}

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())

	_, err = bunDB.NewCreateTable().Model((*models.Category)(nil)).Exec(context.Background())
	if err != nil {
		t.Fatalf("Failed to create categories table: %v", err)
	}

	store := &db.DB{Bun: bunDB}
	for _, name := range names {
		require.NoError(t, store.UpsertCategory(context.Background(), name))
	}

	return category.NewNormalizer(store), bunDB
}

func TestNormalizeIsCaseAndWhitespaceInsensitive(t *testing.T) {
	normalizer, bunDB := setupNormalizer(t, "Music", "Art")
	defer bunDB.Close()

	catalog, err := normalizer.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Music", catalog.Normalize(" Music "))
	assert.Equal(t, "Music", catalog.Normalize("music"))
	assert.Equal(t, "Music", catalog.Normalize("MUSIC"))

	// Idempotent: normalizing the canonical result returns it unchanged.
	assert.Equal(t, "Music", catalog.Normalize(catalog.Normalize("music")))
}

func TestNormalizeMissAndEmptyReturnNoCategory(t *testing.T) {
	normalizer, bunDB := setupNormalizer(t, "Music")
	defer bunDB.Close()

	catalog, err := normalizer.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "", catalog.Normalize(""))
	assert.Equal(t, "", catalog.Normalize("   "))
	assert.Equal(t, "", catalog.Normalize("Nonexistent"))
}

func TestValidateRejectsUnknownCategory(t *testing.T) {
	normalizer, bunDB := setupNormalizer(t, "Music")
	defer bunDB.Close()

	catalog, err := normalizer.Load(context.Background())
	require.NoError(t, err)

	canonical, err := catalog.Validate("music")
	assert.NoError(t, err)
	assert.Equal(t, "Music", canonical)

	_, err = catalog.Validate("Nonexistent")
	assert.ErrorIs(t, err, category.ErrInvalidCategory)
}

func TestLoadFailureIsCatalogUnavailable(t *testing.T) {
	normalizer, bunDB := setupNormalizer(t, "Music")
	bunDB.Close()

	_, err := normalizer.Load(context.Background())
	assert.ErrorIs(t, err, category.ErrCatalogUnavailable)
}

func TestUpsertRename(t *testing.T) {
	normalizer, bunDB := setupNormalizer(t, "Musc")
	defer bunDB.Close()

	err := normalizer.Upsert(context.Background(), "Music", "Musc")
	require.NoError(t, err)

	catalog, err := normalizer.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Music"}, catalog.Names())
	assert.Equal(t, "", catalog.Normalize("Musc"))
}

func TestUpsertExistingNameIsNoOp(t *testing.T) {
	normalizer, bunDB := setupNormalizer(t, "Music")
	defer bunDB.Close()

	err := normalizer.Upsert(context.Background(), "Music", "")
	require.NoError(t, err)

	catalog, err := normalizer.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Music"}, catalog.Names())
}

func TestDeleteCategory(t *testing.T) {
	normalizer, bunDB := setupNormalizer(t, "Music", "Art")
	defer bunDB.Close()

	err := normalizer.Delete(context.Background(), "Music")
	require.NoError(t, err)

	catalog, err := normalizer.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Art"}, catalog.Names())
}
