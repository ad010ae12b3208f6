package scraper

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/cfp-search/internal/event"
	"github.com/pfrederiksen/cfp-search/internal/logger"
)

// DefaultSiteURL is the scheme and host detail-page links are resolved against
const DefaultSiteURL = "http://www.wikicfp.com"

// ErrNoResults is returned when a search page does not contain an event listing
var ErrNoResults = errors.New("no events found")

// Layout describes where the listing lives on a WikiCFP search page.
//
// Table indices count every table with at least one row, in document order, nested
// tables included. The plain listing and the link-preserving listing are read from
// different tables.
type Layout struct {
	ListingTable  int // table read for event text
	MinTables     int // fewer tables than this means no results
	LinkTable     int // table read for detail-page links
	MinLinkTables int
}

// DefaultLayout matches the current WikiCFP search page
var DefaultLayout = Layout{
	ListingTable:  2,
	MinTables:     5,
	LinkTable:     3,
	MinLinkTables: 6,
}

// Link is an event's detail page on WikiCFP
type Link struct {
	Abbreviation string
	DetailURL    string
}

// ParseListing extracts one event per abbreviation from the listing table.
//
// Each event spans two rows: a summary row whose second column holds the full name,
// and a detail row with the time range, location and deadline in columns 1 to 3.
// Rows are paired by position under their shared abbreviation.
func ParseListing(doc *goquery.Document, layout Layout) ([]*event.Event, error) {
	tables := parseableTables(doc)
	if len(tables) < layout.MinTables || layout.ListingTable >= len(tables) {
		return nil, ErrNoResults
	}

	grid := expandRows(tables[layout.ListingTable].Find("tr"))
	if len(grid) < 2 {
		return nil, ErrNoResults
	}
	grid = uniqueRows(grid[1:])

	var order []string
	groups := make(map[string][][]Cell)
	for _, row := range grid {
		abbr := cellText(row, 0)
		if abbr == "" {
			continue
		}
		if _, ok := groups[abbr]; !ok {
			order = append(order, abbr)
		}
		groups[abbr] = append(groups[abbr], row)
	}

	events := make([]*event.Event, 0, len(order))
	for _, abbr := range order {
		rows := groups[abbr]
		if len(rows) < 2 {
			logger.Debug("Skipping unpaired listing row", logger.Fields{
				"abbreviation": abbr,
			})
			continue
		}

		summary, detail := rows[0], rows[1]
		events = append(events, event.NewEvent(
			abbr,
			cellText(summary, 1),
			cellText(detail, 1),
			cellText(detail, 2),
			cellText(detail, 3),
		))
	}

	if len(events) == 0 {
		return nil, ErrNoResults
	}

	return events, nil
}

// ParseLinks extracts each event's detail-page URL from the link table.
// Pairs are returned once each, in listing order.
func ParseLinks(doc *goquery.Document, layout Layout, siteURL string) ([]Link, error) {
	tables := parseableTables(doc)
	if len(tables) < layout.MinLinkTables || layout.LinkTable >= len(tables) {
		return nil, ErrNoResults
	}

	if siteURL == "" {
		siteURL = DefaultSiteURL
	}
	base, err := url.Parse(siteURL)
	if err != nil {
		return nil, fmt.Errorf("parsing site URL: %w", err)
	}

	grid := expandRows(tables[layout.LinkTable].Find("tr"))
	if len(grid) < 2 {
		return nil, ErrNoResults
	}

	seen := make(map[Link]bool)
	links := make([]Link, 0, len(grid)/2)
	for _, row := range grid[1:] {
		if len(row) == 0 || row[0].Text == "" || row[0].Href == "" {
			continue
		}

		ref, err := url.Parse(row[0].Href)
		if err != nil {
			logger.Debug("Skipping malformed detail link", logger.Fields{
				"abbreviation": row[0].Text,
				"href":         row[0].Href,
			})
			continue
		}

		link := Link{Abbreviation: row[0].Text, DetailURL: base.ResolveReference(ref).String()}
		if seen[link] {
			continue
		}
		seen[link] = true
		links = append(links, link)
	}

	return links, nil
}
