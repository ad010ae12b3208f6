package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/cfp-search/internal/event"
	"github.com/pfrederiksen/cfp-search/internal/fetch"
	"github.com/pfrederiksen/cfp-search/internal/logger"
	"github.com/pfrederiksen/cfp-search/internal/metrics"
	"golang.org/x/sync/errgroup"
)

// DefaultWorkers bounds concurrent detail-page fetches
const DefaultWorkers = 4

// Options configures a Scraper
type Options struct {
	SearchURL string
	SiteURL   string
	Layout    *Layout
	Workers   int
	// LinkCache reuses resolved CFP links across searches. Nil disables caching.
	LinkCache *LinkCache
}

// Scraper handles fetching and parsing WikiCFP search results
type Scraper struct {
	getter    fetch.Getter
	searchURL string
	siteURL   string
	layout    Layout
	workers   int
	cache     *LinkCache
}

// New creates a new Scraper instance
func New(getter fetch.Getter, opts Options) *Scraper {
	s := &Scraper{
		getter:    getter,
		searchURL: opts.SearchURL,
		siteURL:   opts.SiteURL,
		layout:    DefaultLayout,
		workers:   opts.Workers,
		cache:     opts.LinkCache,
	}
	if s.searchURL == "" {
		s.searchURL = DefaultSearchURL
	}
	if s.siteURL == "" {
		s.siteURL = DefaultSiteURL
	}
	if opts.Layout != nil {
		s.layout = *opts.Layout
	}
	if s.workers <= 0 {
		s.workers = DefaultWorkers
	}
	return s
}

// Listing is the parsed search page
type Listing struct {
	URL    string
	Events []*event.Event
	Links  []Link
}

// SearchURL returns the URL a query is sent to
func (s *Scraper) SearchURL(q Query) string {
	return q.URL(s.searchURL)
}

// FetchListing fetches the search page once and runs both the plain and the
// link-preserving parse over it. Returns ErrNoResults when the page has no listing.
func (s *Scraper) FetchListing(ctx context.Context, q Query) (*Listing, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	pageURL := s.SearchURL(q)
	body, err := s.getter.Get(ctx, metrics.TargetSearch, pageURL)
	if err != nil {
		return nil, err
	}

	return s.parseListing(body, pageURL)
}

func (s *Scraper) parseListing(body []byte, pageURL string) (*Listing, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	events, err := ParseListing(doc, s.layout)
	if err != nil {
		return nil, err
	}

	links, err := ParseLinks(doc, s.layout, s.siteURL)
	if errors.Is(err, ErrNoResults) {
		logger.Warn("Listing has no link table; CFP links will be undefined", logger.Fields{
			"url": pageURL,
		})
	} else if err != nil {
		return nil, err
	}

	return &Listing{URL: pageURL, Events: events, Links: links}, nil
}

// ExtractCFPLinks fetches every detail page and scrapes its external CFP link.
//
// Fetches run concurrently, bounded by the worker count, and all of them finish before
// the map is returned. A page that cannot be fetched or lacks a Link cell yields an
// unresolved entry rather than an error. When several detail pages share an abbreviation
// the first one, in listing order, that resolves wins.
func (s *Scraper) ExtractCFPLinks(ctx context.Context, links []Link) (map[string]event.Resolution, error) {
	results := make([]event.Resolution, len(links))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, link := range links {
		i, link := i, link
		g.Go(func() error {
			results[i] = s.fetchDetail(gctx, link)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("extracting CFP links: %w", err)
	}

	byAbbr := make(map[string]event.Resolution, len(links))
	for i, link := range links {
		current, exists := byAbbr[link.Abbreviation]
		if exists && current.OK() {
			if results[i].OK() && results[i].Value != current.Value {
				logger.Warn("Abbreviation maps to several CFP links; keeping the first", logger.Fields{
					"abbreviation": link.Abbreviation,
					"kept":         current.Value,
					"dropped":      results[i].Value,
				})
			}
			continue
		}
		byAbbr[link.Abbreviation] = results[i]
	}

	if removed := s.cache.CleanExpired(); removed > 0 {
		logger.Debug("Expired cached CFP links", logger.Fields{"removed": removed})
	}

	return byAbbr, nil
}

func (s *Scraper) fetchDetail(ctx context.Context, link Link) event.Resolution {
	if cached, ok := s.cache.Get(link.DetailURL); ok {
		return event.Resolved(cached)
	}

	body, err := s.getter.Get(ctx, metrics.TargetDetail, link.DetailURL)
	if err != nil {
		logger.Warn("Detail page unavailable", logger.Fields{
			"abbreviation": link.Abbreviation,
			"url":          link.DetailURL,
			"error":        err.Error(),
		})
		return event.Unresolved("fetching detail page: %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return event.Unresolved("parsing detail page: %v", err)
	}

	res := ExtractExternalLink(doc)
	if !res.OK() {
		logger.Debug("No CFP link on detail page", logger.Fields{
			"abbreviation": link.Abbreviation,
			"url":          link.DetailURL,
			"reason":       res.Reason,
		})
		return res
	}

	s.cache.Set(link.DetailURL, res.Value)
	return res
}
