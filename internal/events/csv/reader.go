package csv

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"strings"
)

// Row is one raw CSV row with its columns resolved through the header alias
// sets. Values are untrimmed strings; parsing and normalization happen in the
// merge engine.
type Row struct {
	Index       int
	Title       string
	Start       string
	End         string
	Description string
	Location    string
	City        string
	Address     string
	Category    string
	TicketURL   string
	ImageURL    string
	Organizer   string
	Age         string
	AllDay      string
}

// columnAliases maps each record field to the header names accepted for it.
// Headers are matched case-insensitively after trimming; the first alias that
// appears in the header wins.
var columnAliases = map[string][]string{
	"title":       {"title", "name", "event", "event_name"},
	"start":       {"starts_at", "start", "start_time", "start_datetime", "start_date", "date"},
	"end":         {"ends_at", "end", "end_time", "end_datetime", "end_date"},
	"description": {"description", "details", "summary"},
	"location":    {"location_name", "location", "venue"},
	"city":        {"city", "town"},
	"address":     {"address", "street_address"},
	"category":    {"category", "type", "genre"},
	"ticket_url":  {"ticket_url", "tickets", "source_url", "url", "link"},
	"image_url":   {"image_url", "image", "flyer"},
	"organizer":   {"organizer", "organiser", "host"},
	"age":         {"age", "ages", "age_limit"},
	"all_day":     {"all_day", "allday", "all_day_event"},
}

// Reader parses the flat-file event source at Path. Every call re-reads the
// file from scratch.
type Reader struct {
	Path string
}

func NewReader(path string) *Reader {
	return &Reader{Path: path}
}

// Rows reads and parses the whole file. The first row is the header; fields
// may contain commas and newlines when double-quoted, and a doubled quote
// inside a quoted field is a literal quote, per standard CSV conventions.
func (r *Reader) Rows(ctx context.Context) ([]Row, error) {
	f, err := os.Open(r.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, err
	}
	columns := resolveColumns(header)

	var rows []Row
	index := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		rows = append(rows, Row{
			Index:       index,
			Title:       field(record, columns, "title"),
			Start:       field(record, columns, "start"),
			End:         field(record, columns, "end"),
			Description: field(record, columns, "description"),
			Location:    field(record, columns, "location"),
			City:        field(record, columns, "city"),
			Address:     field(record, columns, "address"),
			Category:    field(record, columns, "category"),
			TicketURL:   field(record, columns, "ticket_url"),
			ImageURL:    field(record, columns, "image_url"),
			Organizer:   field(record, columns, "organizer"),
			Age:         field(record, columns, "age"),
			AllDay:      field(record, columns, "all_day"),
		})
		index++
	}

	return rows, nil
}

// resolveColumns maps record fields to header positions via the alias sets.
func resolveColumns(header []string) map[string]int {
	positions := make(map[string]int, len(header))
	for i, name := range header {
		// "Start Time" and "start_time" are the same column.
		key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
		if _, seen := positions[key]; !seen {
			positions[key] = i
		}
	}

	columns := make(map[string]int)
	for fieldName, aliases := range columnAliases {
		for _, alias := range aliases {
			if pos, ok := positions[alias]; ok {
				columns[fieldName] = pos
				break
			}
		}
	}
	return columns
}

func field(record []string, columns map[string]int, name string) string {
	pos, ok := columns[name]
	if !ok || pos >= len(record) {
		return ""
	}
	return record[pos]
}
