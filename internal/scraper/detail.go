package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/cfp-search/internal/event"
)

const (
	linkLabel = "Link"
	// "Link: " precedes the URL in the cell text
	linkPrefixLen = 6
)

// ExtractExternalLink finds the cell labelled "Link" on a detail page and returns the
// URL that follows the label. The innermost matching cell is used so layout tables
// wrapping the event table are skipped.
func ExtractExternalLink(doc *goquery.Document) event.Resolution {
	var cell *goquery.Selection
	doc.Find("td").EachWithBreak(func(_ int, td *goquery.Selection) bool {
		if !strings.Contains(td.Text(), linkLabel) {
			return true
		}
		inner := td.Find("td").FilterFunction(func(_ int, s *goquery.Selection) bool {
			return strings.Contains(s.Text(), linkLabel)
		})
		if inner.Length() > 0 {
			return true
		}
		cell = td
		return false
	})

	if cell == nil {
		return event.Unresolved("no %q cell on detail page", linkLabel)
	}

	text := strings.TrimSpace(cell.Text())
	if len(text) <= linkPrefixLen {
		return event.Unresolved("empty %q cell on detail page", linkLabel)
	}

	link := strings.TrimSpace(text[linkPrefixLen:])
	if link == "" {
		return event.Unresolved("empty %q cell on detail page", linkLabel)
	}

	return event.Resolved(link)
}
