package events

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"eventboard/internal/category"
	"eventboard/internal/events/csv"
	"eventboard/internal/logger"
	"eventboard/internal/models"
)

type EventDBLayer interface {
	EventsInRange(ctx context.Context, from, to time.Time, category, city string, allAges bool) ([]models.Event, error)
	GetEventByID(ctx context.Context, id string) (*models.Event, error)
	CreateEvent(ctx context.Context, event models.Event) error
}

type CSVSource interface {
	Rows(ctx context.Context) ([]csv.Row, error)
}

// QueryParams are the caller-side merge inputs. Category is the raw filter
// string as typed; it is resolved against the catalog before use.
type QueryParams struct {
	Window   Window
	Category string
	City     string
	AllAges  bool
}

type QueryResult struct {
	Items      []models.EventRecord `json:"items"`
	Categories []string             `json:"categories"`
}

// MergeService answers "which events overlap this window" by combining the
// authoritative database table and the best-effort CSV file into one
// time-ordered list.
type MergeService struct {
	DB         EventDBLayer
	CSV        CSVSource
	Normalizer *category.Normalizer
	Logger     *logger.Logger
}

func NewMergeService(db EventDBLayer, csvSource CSVSource, normalizer *category.Normalizer, log *logger.Logger) *MergeService {
	return &MergeService{
		DB:         db,
		CSV:        csvSource,
		Normalizer: normalizer,
		Logger:     log,
	}
}

// Query runs one merge. Catalog load failure and database failure are fatal;
// CSV failure degrades to an empty CSV contribution.
func (s *MergeService) Query(ctx context.Context, params QueryParams) (*QueryResult, error) {
	catalog, err := s.Normalizer.Load(ctx)
	if err != nil {
		return nil, err
	}

	result := &QueryResult{
		Items:      []models.EventRecord{},
		Categories: catalog.Names(),
	}

	// A supplied category must resolve through the catalog. An unresolved
	// filter returns an empty set immediately, never a literal string match
	// against raw category text.
	canonical := ""
	if strings.TrimSpace(params.Category) != "" {
		canonical = catalog.Normalize(params.Category)
		if canonical == "" {
			s.Logger.LogMerge("filter", fmt.Sprintf("category %q not in catalog, returning empty result", params.Category))
			return result, nil
		}
	}

	city := strings.TrimSpace(params.City)

	// The two branches are independent and side-effect-free, so they run
	// concurrently and join before the sort.
	var (
		wg         sync.WaitGroup
		dbRecords  []models.EventRecord
		dbErr      error
		csvRecords []models.EventRecord
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		dbRecords, dbErr = s.queryDatabase(ctx, params.Window, canonical, city, params.AllAges, catalog)
	}()
	go func() {
		defer wg.Done()
		csvRecords = s.queryCSV(ctx, params.Window, canonical, city, params.AllAges, catalog)
	}()
	wg.Wait()

	if dbErr != nil {
		return nil, dbErr
	}

	merged := make([]models.EventRecord, 0, len(dbRecords)+len(csvRecords))
	merged = append(merged, dbRecords...)
	merged = append(merged, csvRecords...)

	// Stable: records with identical start times keep their relative order.
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].StartsAt.Before(merged[j].StartsAt)
	})

	result.Items = merged
	s.Logger.LogMerge("result", fmt.Sprintf("%d db + %d csv records in window", len(dbRecords), len(csvRecords)))
	return result, nil
}

// queryDatabase runs the authoritative branch. The starts_at range predicate
// in the store is a pre-filter; the overlap rule is re-applied here after
// normalization.
func (s *MergeService) queryDatabase(ctx context.Context, w Window, canonical, city string, allAges bool, catalog *category.Catalog) ([]models.EventRecord, error) {
	rows, err := s.DB.EventsInRange(ctx, w.From, w.To, canonical, city, allAges)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}

	records := make([]models.EventRecord, 0, len(rows))
	for _, row := range rows {
		if row.StartsAt.IsZero() {
			// Malformed row, not a fatal error for the request.
			s.Logger.LogMerge(models.SourceDB, fmt.Sprintf("dropping event %s with no start time", row.ID))
			continue
		}
		record := dbRowToEventRecord(row, catalog)
		if !w.Overlaps(record.StartsAt, record.EndsAt) {
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

// queryCSV runs the best-effort branch. Any read or parse failure degrades to
// an empty contribution; the CSV store has no server-side filtering, so every
// predicate is applied here.
func (s *MergeService) queryCSV(ctx context.Context, w Window, canonical, city string, allAges bool, catalog *category.Catalog) []models.EventRecord {
	rows, err := s.CSV.Rows(ctx)
	if err != nil {
		s.Logger.LogCSV(fmt.Sprintf("csv source unavailable, contributing no records: %v", err))
		return nil
	}

	var records []models.EventRecord
	for _, row := range rows {
		record, ok := csvRowToEventRecord(row, catalog)
		if !ok {
			continue
		}
		if !w.Overlaps(record.StartsAt, record.EndsAt) {
			continue
		}
		if city != "" && record.City != city {
			continue
		}
		if canonical != "" && record.Category != canonical {
			continue
		}
		if allAges && !record.IsAllAges() {
			continue
		}
		records = append(records, record)
	}
	return records
}

// GetEvent returns one authoritative event row.
func (s *MergeService) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	event, err := s.DB.GetEventByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("event %s not found: %w", id, err)
	}
	return event, nil
}

// AddEvent is the admin manual-add path. The category is validated, never
// normalized-with-fallback: nothing outside the catalog gets persisted.
func (s *MergeService) AddEvent(ctx context.Context, req models.SubmissionRequest) (*models.Event, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, fmt.Errorf("title is required")
	}
	start, startDateOnly, err := ParseTimestamp(req.StartsAt)
	if err != nil {
		return nil, fmt.Errorf("%w: starts_at %q", ErrInvalidTimeRange, req.StartsAt)
	}

	catalog, err := s.Normalizer.Load(ctx)
	if err != nil {
		return nil, err
	}

	canonical := ""
	if strings.TrimSpace(req.Category) != "" {
		canonical, err = catalog.Validate(req.Category)
		if err != nil {
			return nil, err
		}
	}

	var end time.Time
	if strings.TrimSpace(req.EndsAt) != "" {
		end, _, err = ParseTimestamp(req.EndsAt)
		if err != nil {
			return nil, fmt.Errorf("%w: ends_at %q", ErrInvalidTimeRange, req.EndsAt)
		}
	}

	event := models.Event{
		ID:           uuid.New().String(),
		Title:        strings.TrimSpace(req.Title),
		Description:  req.Description,
		StartsAt:     start,
		EndsAt:       end,
		AllDay:       req.AllDay || startDateOnly,
		Category:     canonical,
		LocationName: req.LocationName,
		City:         strings.TrimSpace(req.City),
		Address:      req.Address,
		TicketURL:    req.TicketURL,
		ImageURL:     req.ImageURL,
		Organizer:    req.Organizer,
		Age:          req.Age,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.DB.CreateEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	return &event, nil
}
