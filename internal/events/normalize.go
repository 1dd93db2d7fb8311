package events

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"eventboard/internal/category"
	"eventboard/internal/events/csv"
	"eventboard/internal/models"
)

// timestampLayouts are tried in order. Layouts without a zone offset are read
// as UTC.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

const dateOnlyLayout = "2006-01-02"

// ParseTimestamp parses a raw timestamp string into an absolute instant.
// dateOnly reports that the value carried no time-of-day component, which
// matters for the all-day exclusive-end rule.
func ParseTimestamp(raw string) (t time.Time, dateOnly bool, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false, fmt.Errorf("empty timestamp")
	}

	for _, layout := range timestampLayouts {
		if parsed, perr := time.ParseInLocation(layout, raw, time.UTC); perr == nil {
			return parsed.UTC(), false, nil
		}
	}
	if parsed, perr := time.ParseInLocation(dateOnlyLayout, raw, time.UTC); perr == nil {
		return parsed, true, nil
	}
	return time.Time{}, false, fmt.Errorf("unparseable timestamp %q", raw)
}

// effectiveEnd resolves the end instant of a record. A missing end is treated
// as equal to the start, except for all-day records where the effective end is
// exclusive: the start of the calendar day after the last included day.
func effectiveEnd(start, end time.Time, allDay, endDateOnly bool) time.Time {
	if end.IsZero() {
		if allDay {
			return startOfNextDay(start)
		}
		return start
	}
	if allDay && endDateOnly {
		return end.Add(24 * time.Hour)
	}
	if end.Before(start) {
		return start
	}
	return end
}

func startOfNextDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC).Add(24 * time.Hour)
}

// dbRowToEventRecord normalizes one authoritative-table row into the common
// record shape. The stored category is reconciled against the loaded catalog;
// a dangling value (e.g. after a catalog delete) comes out empty.
func dbRowToEventRecord(row models.Event, catalog *category.Catalog) models.EventRecord {
	end := effectiveEnd(row.StartsAt.UTC(), row.EndsAt.UTC(), row.AllDay, isMidnight(row.EndsAt))
	return models.EventRecord{
		ID:           models.SourceDB + ":" + row.ID,
		Title:        row.Title,
		Description:  row.Description,
		StartsAt:     row.StartsAt.UTC(),
		EndsAt:       end,
		AllDay:       row.AllDay,
		Category:     catalog.Normalize(row.Category),
		LocationName: row.LocationName,
		City:         strings.TrimSpace(row.City),
		Address:      row.Address,
		TicketURL:    row.TicketURL,
		ImageURL:     row.ImageURL,
		Organizer:    row.Organizer,
		Age:          row.Age,
		Source:       models.SourceDB,
	}
}

// isMidnight treats a stored midnight-UTC end as date-granular for the
// all-day rule; nothing finer than that survives a round trip through the
// submission form anyway.
func isMidnight(t time.Time) bool {
	t = t.UTC()
	return t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0
}

// csvRowToEventRecord normalizes one parsed CSV row, or reports skip=false
// for rows missing a usable title or a parseable start.
func csvRowToEventRecord(row csv.Row, catalog *category.Catalog) (models.EventRecord, bool) {
	title := strings.TrimSpace(row.Title)
	if title == "" {
		return models.EventRecord{}, false
	}

	start, startDateOnly, err := ParseTimestamp(row.Start)
	if err != nil {
		return models.EventRecord{}, false
	}

	allDay := startDateOnly
	if row.AllDay != "" {
		if parsed, perr := strconv.ParseBool(strings.TrimSpace(row.AllDay)); perr == nil {
			allDay = parsed
		}
	}

	var end time.Time
	endDateOnly := false
	if strings.TrimSpace(row.End) != "" {
		if parsed, parsedDateOnly, perr := ParseTimestamp(row.End); perr == nil {
			end = parsed
			endDateOnly = parsedDateOnly
		}
	}

	return models.EventRecord{
		ID:           fmt.Sprintf("%s:%d", models.SourceCSV, row.Index),
		Title:        title,
		Description:  strings.TrimSpace(row.Description),
		StartsAt:     start,
		EndsAt:       effectiveEnd(start, end, allDay, endDateOnly),
		AllDay:       allDay,
		Category:     catalog.Normalize(row.Category),
		LocationName: strings.TrimSpace(row.Location),
		City:         strings.TrimSpace(row.City),
		Address:      strings.TrimSpace(row.Address),
		TicketURL:    strings.TrimSpace(row.TicketURL),
		ImageURL:     strings.TrimSpace(row.ImageURL),
		Organizer:    strings.TrimSpace(row.Organizer),
		Age:          strings.TrimSpace(row.Age),
		Source:       models.SourceCSV,
	}, true
}
