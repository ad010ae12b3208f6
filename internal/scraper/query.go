package scraper

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultSearchURL is the WikiCFP search endpoint
const DefaultSearchURL = "http://www.wikicfp.com/cfp/servlet/tool.search"

// YearFilter is the opaque year token understood by the search endpoint
type YearFilter string

const (
	YearCurrent     YearFilter = "t"
	YearNext        YearFilter = "n"
	YearFromCurrent YearFilter = "f"
	YearAll         YearFilter = "a"
)

// YearOption pairs a UI label with its year filter
type YearOption struct {
	Label string
	Year  YearFilter
}

// YearLabels returns the UI labels for each year filter relative to now, in display order
func YearLabels(now time.Time) []YearOption {
	y := now.Year()
	return []YearOption{
		{strconv.Itoa(y), YearCurrent},
		{strconv.Itoa(y + 1), YearNext},
		{strconv.Itoa(y) + "+", YearFromCurrent},
		{"All", YearAll},
	}
}

// ParseYearFilter maps a UI label ("2026", "2027", "2026+", "All") or a raw token to a YearFilter.
// An empty label selects the current year.
func ParseYearFilter(label string, now time.Time) (YearFilter, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return YearCurrent, nil
	}

	switch YearFilter(strings.ToLower(label)) {
	case YearCurrent, YearNext, YearFromCurrent, YearAll:
		return YearFilter(strings.ToLower(label)), nil
	}

	for _, opt := range YearLabels(now) {
		if strings.EqualFold(label, opt.Label) {
			return opt.Year, nil
		}
	}

	return "", fmt.Errorf("invalid year: %q (use %d, %d, %d+, all or one of t/n/f/a)",
		label, now.Year(), now.Year()+1, now.Year())
}

// Query is one user search
type Query struct {
	Keyword string     `json:"keyword"`
	Year    YearFilter `json:"year"`
}

// Validate checks that the query can be sent
func (q Query) Validate() error {
	if strings.TrimSpace(q.Keyword) == "" {
		return fmt.Errorf("keyword is required")
	}
	switch q.Year {
	case "", YearCurrent, YearNext, YearFromCurrent, YearAll:
		return nil
	default:
		return fmt.Errorf("invalid year filter: %q", q.Year)
	}
}

// EncodedKeyword encodes the keyword the way the search form does: spaces become "+",
// and comma-separated terms are trimmed and joined with "%2C+".
func (q Query) EncodedKeyword() string {
	terms := strings.Split(q.Keyword, ",")
	for i, term := range terms {
		terms[i] = url.QueryEscape(strings.TrimSpace(term))
	}
	return strings.Join(terms, "%2C+")
}

// URL builds the search URL against base
func (q Query) URL(base string) string {
	if base == "" {
		base = DefaultSearchURL
	}
	year := q.Year
	if year == "" {
		year = YearCurrent
	}
	return fmt.Sprintf("%s?q=%s&year=%s", base, q.EncodedKeyword(), year)
}
