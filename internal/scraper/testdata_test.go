package scraper

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

// searchPage wraps listing rows in the WikiCFP page skeleton: banner, search form,
// a layout table holding the listing table, and two footer tables.
func searchPage(rows string) string {
	return `<html><body>
<table><tr><td>WikiCFP: A Wiki for Calls For Papers</td></tr></table>
<form action="/cfp/servlet/tool.search"><table><tr><td><input name="q"></td><td><input type="submit"></td></tr></table></form>
<table><tr><td>
  <table cellpadding="3" cellspacing="1" width="100%">
    <tr bgcolor="#bbbbbb"><td>Event</td><td>When</td><td>Where</td><td>Deadline</td></tr>
` + rows + `
  </table>
</td></tr></table>
<table><tr><td>Partners</td></tr></table>
<table><tr><td>Contact us</td></tr></table>
</body></html>`
}

// listingRows renders one event as its summary row and detail row
func listingRows(abbr, href, name, when, where, deadline string) string {
	return `<tr bgcolor="#f6f6f6"><td rowspan="2" align="left"><a href="` + href + `">` + abbr + `</a></td>` +
		`<td align="left" colspan="3">` + name + `</td></tr>` +
		`<tr bgcolor="#f6f6f6"><td align="left">` + when + `</td><td align="left">` + where + `</td>` +
		`<td align="left">` + deadline + `</td></tr>`
}

// detailPage renders a detail page whose event table sits inside a layout table
func detailPage(linkCell string) string {
	return `<html><body><table><tr><td>
<table>
  <tr><td>When</td><td>Jul 12, 2026 - Jul 18, 2026</td></tr>
  <tr><td>Where</td><td>Seoul, South Korea</td></tr>
  ` + linkCell + `
</table>
</td></tr></table></body></html>`
}

func newDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parsing fixture: %v", err)
	}
	return doc
}
