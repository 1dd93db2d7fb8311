package csv_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventboard/internal/events/csv"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "events.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestRowsResolvesHeaderAliases(t *testing.T) {
	path := writeTempCSV(t, "Name,Start Time,End Time,Venue,Town,Genre,Link\n"+
		"Jazz Night,2025-03-01 19:00,2025-03-01 23:00,The Blue Room,Springfield,Music,https://example.org/jazz\n")

	rows, err := csv.NewReader(path).Rows(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, len(rows))

	row := rows[0]
	assert.Equal(t, 0, row.Index)
	assert.Equal(t, "Jazz Night", row.Title)
	assert.Equal(t, "2025-03-01 19:00", row.Start)
	assert.Equal(t, "2025-03-01 23:00", row.End)
	assert.Equal(t, "The Blue Room", row.Location)
	assert.Equal(t, "Springfield", row.City)
	assert.Equal(t, "Music", row.Category)
	assert.Equal(t, "https://example.org/jazz", row.TicketURL)
}

func TestRowsHandlesQuotedFields(t *testing.T) {
	path := writeTempCSV(t, `title,starts_at,description
"Soup, Bread & Song",2025-03-01,"A ""cozy"" evening.
Bring a bowl."
`)

	rows, err := csv.NewReader(path).Rows(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, len(rows))

	assert.Equal(t, "Soup, Bread & Song", rows[0].Title)
	assert.Equal(t, "A \"cozy\" evening.\nBring a bowl.", rows[0].Description)
}

func TestRowsShortRecordsYieldEmptyFields(t *testing.T) {
	path := writeTempCSV(t, "title,starts_at,city\nSolo Show,2025-03-01\n")

	rows, err := csv.NewReader(path).Rows(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, len(rows))
	assert.Equal(t, "Solo Show", rows[0].Title)
	assert.Equal(t, "", rows[0].City)
}

func TestRowsMissingFileIsAnError(t *testing.T) {
	_, err := csv.NewReader(filepath.Join(t.TempDir(), "nope.csv")).Rows(context.Background())
	assert.Error(t, err)
}

func TestRowsEmptyFileIsAnError(t *testing.T) {
	path := writeTempCSV(t, "")

	_, err := csv.NewReader(path).Rows(context.Background())
	assert.Error(t, err)
}
