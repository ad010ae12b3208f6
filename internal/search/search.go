// Package search runs one WikiCFP search end to end: reference data, search page,
// detail pages, merge and filter.
package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pfrederiksen/cfp-search/internal/event"
	"github.com/pfrederiksen/cfp-search/internal/fetch"
	"github.com/pfrederiksen/cfp-search/internal/filter"
	"github.com/pfrederiksen/cfp-search/internal/logger"
	"github.com/pfrederiksen/cfp-search/internal/metrics"
	"github.com/pfrederiksen/cfp-search/internal/reference"
	"github.com/pfrederiksen/cfp-search/internal/scraper"
)

// NoResultsMessage is shown when a search finds nothing
const NoResultsMessage = "No event found!"

// Result is the outcome of one search
type Result struct {
	Query      scraper.Query  `json:"query"`
	SearchURL  string         `json:"search_url"`
	Filter     *filter.Filter `json:"filter"`
	SearchedAt time.Time      `json:"searched_at"`
	NoResults  bool           `json:"no_results"`
	Total      int            `json:"total"` // events before the type/region filter
	Events     []*event.Event `json:"events"`
	Stats      filter.Stats   `json:"stats"`
}

// Service wires the pipeline components together
type Service struct {
	references *reference.Loader
	scraper    *scraper.Scraper
	metrics    *metrics.Metrics
	now        func() time.Time
}

// NewService creates a search service
func NewService(references *reference.Loader, sc *scraper.Scraper, m *metrics.Metrics) *Service {
	return &Service{
		references: references,
		scraper:    sc,
		metrics:    m,
		now:        time.Now,
	}
}

// UpstreamError reports that WikiCFP or the reference data could not be reached.
// The search may succeed if retried later.
type UpstreamError struct {
	Stage string
	Err   error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s unavailable, please retry: %v", e.Stage, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// upstreamOr marks err retryable only when it comes from an unreachable upstream.
// Anything else, such as a malformed page or a bad configured URL, will not go away on retry.
func upstreamOr(stage string, err error) error {
	var fetchErr *fetch.UpstreamError
	if errors.As(err, &fetchErr) && fetchErr.Retryable() {
		return &UpstreamError{Stage: stage, Err: err}
	}
	return fmt.Errorf("%s: %w", stage, err)
}

// Search runs one query. A page without a listing is reported as Result.NoResults,
// not as an error; unreachable upstreams are returned as *UpstreamError.
func (s *Service) Search(ctx context.Context, q scraper.Query, f *filter.Filter) (*Result, error) {
	if f == nil {
		f = filter.NewFilter()
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}

	result := &Result{
		Query:      q,
		SearchURL:  s.scraper.SearchURL(q),
		Filter:     f,
		SearchedAt: s.now().UTC(),
		Events:     []*event.Event{},
	}

	log := logger.Default().With(logger.Fields{"keyword": q.Keyword, "year": string(q.Year)})

	table, err := s.references.Get(ctx)
	if err != nil {
		s.metrics.IncSearch(metrics.OutcomeError)
		return nil, upstreamOr("reference data", err)
	}

	listing, err := s.scraper.FetchListing(ctx, q)
	if errors.Is(err, scraper.ErrNoResults) {
		log.Info("Search returned no events", logger.Fields{"url": result.SearchURL})
		s.metrics.IncSearch(metrics.OutcomeNoResults)
		result.NoResults = true
		return result, nil
	}
	if err != nil {
		s.metrics.IncSearch(metrics.OutcomeError)
		return nil, upstreamOr("WikiCFP search", err)
	}

	links, err := s.scraper.ExtractCFPLinks(ctx, listing.Links)
	if err != nil {
		s.metrics.IncSearch(metrics.OutcomeError)
		return nil, err
	}

	events, stats := filter.Build(listing.Events, table, links, f)
	s.metrics.AddDegraded("region", stats.UndefinedRegions)
	s.metrics.AddDegraded("cfp_link", stats.UndefinedLinks)
	s.metrics.IncSearch(metrics.OutcomeOK)

	result.Events = events
	result.Total = stats.Total
	result.Stats = stats
	result.NoResults = len(events) == 0

	log.Info("Search finished", logger.Fields{
		"parsed":            len(listing.Events),
		"matched":           len(events),
		"undefined_regions": stats.UndefinedRegions,
		"undefined_links":   stats.UndefinedLinks,
	})

	return result, nil
}
