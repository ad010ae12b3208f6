package reference

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/pfrederiksen/cfp-search/internal/event"
	"github.com/pfrederiksen/cfp-search/internal/fetch"
	"github.com/pfrederiksen/cfp-search/internal/logger"
	"github.com/pfrederiksen/cfp-search/internal/metrics"
)

// DefaultURL is the published ISO-3166 country list with regional codes
const DefaultURL = "https://raw.githubusercontent.com/lukes/ISO-3166-Countries-with-Regional-Codes/master/all/all.csv"

const (
	countryColumn = "name"
	regionColumn  = "region"
)

// ErrSchema is returned when the CSV no longer has the expected columns
var ErrSchema = errors.New("reference data is missing expected columns")

// nameCorrections collapses official names to the form WikiCFP locations use
var nameCorrections = map[string]string{
	"Viet Nam": "Vietnam",
	"United Kingdom of Great Britain and Northern Ireland": "United Kingdom",
}

// Entry is one country and its region
type Entry struct {
	Country string `json:"country"`
	Region  string `json:"region"`
}

// Table is the loaded reference data. It is read-only after Load.
type Table struct {
	entries []Entry
	regions map[string]string
}

// NewTable builds a table from entries, applying the same normalization as Load.
// The first entry for a country wins.
func NewTable(entries []Entry) *Table {
	t := &Table{
		entries: make([]Entry, 0, len(entries)),
		regions: make(map[string]string, len(entries)),
	}
	for _, e := range entries {
		e.Country = strings.TrimSpace(e.Country)
		if corrected, ok := nameCorrections[e.Country]; ok {
			e.Country = corrected
		}
		e.Region = strings.TrimSpace(e.Region)
		if e.Region == "" {
			e.Region = event.Undefined
		}
		t.entries = append(t.entries, e)
		if _, exists := t.regions[e.Country]; !exists {
			t.regions[e.Country] = e.Region
		}
	}
	return t
}

// Entries returns the rows in source order
func (t *Table) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Len returns the number of rows
func (t *Table) Len() int {
	return len(t.entries)
}

// Region looks up the region of a country
func (t *Table) Region(country string) event.Resolution {
	if country == "" || country == event.Undefined {
		return event.Unresolved("no country")
	}
	region, ok := t.regions[country]
	if !ok {
		return event.Unresolved("country %q not in reference table", country)
	}
	return event.Resolved(region)
}

// Parse reads the reference CSV
func Parse(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	countryIdx, regionIdx := -1, -1
	for i, col := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(col, "\ufeff"))) {
		case countryColumn:
			countryIdx = i
		case regionColumn:
			regionIdx = i
		}
	}
	if countryIdx < 0 || regionIdx < 0 {
		return nil, fmt.Errorf("%w: want %q and %q, got %v", ErrSchema, countryColumn, regionColumn, header)
	}

	var entries []Entry
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row: %w", err)
		}
		entry := Entry{Country: field(record, countryIdx), Region: field(record, regionIdx)}
		if strings.TrimSpace(entry.Country) == "" {
			continue
		}
		entries = append(entries, entry)
	}

	return NewTable(entries), nil
}

func field(record []string, idx int) string {
	if idx >= len(record) {
		return ""
	}
	return record[idx]
}

// Load fetches and parses the reference CSV at url
func Load(ctx context.Context, getter fetch.Getter, url string) (*Table, error) {
	body, err := getter.Get(ctx, metrics.TargetReference, url)
	if err != nil {
		return nil, err
	}

	table, err := Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing reference data: %w", err)
	}

	return table, nil
}

// Loader lazily loads the reference table once per process.
// A failed load is not cached, so the next caller retries.
type Loader struct {
	getter fetch.Getter
	url    string

	mu    sync.Mutex
	table *Table
}

// NewLoader creates a Loader for the CSV at url
func NewLoader(getter fetch.Getter, url string) *Loader {
	if url == "" {
		url = DefaultURL
	}
	return &Loader{getter: getter, url: url}
}

// Get returns the cached table, loading it on first use
func (l *Loader) Get(ctx context.Context) (*Table, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.table != nil {
		return l.table, nil
	}

	table, err := Load(ctx, l.getter, l.url)
	if err != nil {
		return nil, fmt.Errorf("loading reference data: %w", err)
	}

	logger.Info("Loaded reference data", logger.Fields{
		"url":       l.url,
		"countries": table.Len(),
	})

	l.table = table
	return table, nil
}
