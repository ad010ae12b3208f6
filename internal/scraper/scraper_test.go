package scraper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pfrederiksen/cfp-search/internal/event"
	"github.com/pfrederiksen/cfp-search/internal/fetch"
)

var twoEvents = listingRows("ICML 2026", "/cfp/servlet/event.showcfp?eventid=1",
	"International Conference on Machine Learning",
	"Jul 12, 2026 - Jul 18, 2026", "Seoul, South Korea", "Jan 30, 2026") +
	listingRows("GLW 2026", "/cfp/servlet/event.showcfp?eventid=2",
		"Workshop on Graph Learning",
		"Sep 3, 2026", "Macau", "May 1, 2026")

func TestParseListing(t *testing.T) {
	events, err := ParseListing(newDoc(t, searchPage(twoEvents)), DefaultLayout)
	if err != nil {
		t.Fatalf("ParseListing() error: %v", err)
	}

	if len(events) != 2 {
		t.Fatalf("ParseListing() returned %d events, want 2", len(events))
	}

	icml := events[0]
	want := event.Event{
		Abbreviation: "ICML 2026",
		Name:         "International Conference on Machine Learning",
		Type:         event.TypeConference,
		StartDate:    "Jul 12, 2026",
		EndDate:      "Jul 18, 2026",
		Deadline:     "Jan 30, 2026",
		Location:     "Seoul, South Korea",
		Country:      "South Korea",
	}
	if *icml != want {
		t.Errorf("events[0] = %+v, want %+v", *icml, want)
	}

	glw := events[1]
	if glw.Type != event.TypeWorkshop {
		t.Errorf("events[1].Type = %q, want Workshop", glw.Type)
	}
	if glw.EndDate != "" {
		t.Errorf("events[1].EndDate = %q, want empty for a single date", glw.EndDate)
	}
	if glw.Country != "China" {
		t.Errorf("events[1].Country = %q, want China", glw.Country)
	}
}

func TestParseListing_EdgeCases(t *testing.T) {
	tests := []struct {
		name       string
		html       string
		wantErr    error
		wantEvents int
	}{
		{
			name:    "too few tables",
			html:    `<table><tr><td>a</td></tr></table><table><tr><td>b</td></tr></table>`,
			wantErr: ErrNoResults,
		},
		{
			name:    "listing without events",
			html:    searchPage(""),
			wantErr: ErrNoResults,
		},
		{
			name:       "repeated event collapses",
			html:       searchPage(twoEvents + listingRows("ICML 2026", "/cfp/servlet/event.showcfp?eventid=1", "International Conference on Machine Learning", "Jul 12, 2026 - Jul 18, 2026", "Seoul, South Korea", "Jan 30, 2026")),
			wantEvents: 2,
		},
		{
			name:       "unpaired footer row is skipped",
			html:       searchPage(twoEvents + `<tr><td>Total: 2</td></tr>`),
			wantEvents: 2,
		},
		{
			name: "empty tables do not count",
			html: `<table></table><table></table><table></table>` +
				`<table><tr><td>a</td></tr></table><table><tr><td>b</td></tr></table>`,
			wantErr: ErrNoResults,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, err := ParseListing(newDoc(t, tt.html), DefaultLayout)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParseListing() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseListing() error: %v", err)
			}
			if len(events) != tt.wantEvents {
				t.Errorf("ParseListing() returned %d events, want %d", len(events), tt.wantEvents)
			}
		})
	}
}

func TestParseListing_MissingLocation(t *testing.T) {
	html := searchPage(listingRows("JSA", "/cfp/servlet/event.showcfp?eventid=9",
		"Journal of Systems Architecture", "N/A", "", "Dec 31, 2026"))

	events, err := ParseListing(newDoc(t, html), DefaultLayout)
	if err != nil {
		t.Fatalf("ParseListing() error: %v", err)
	}
	if events[0].Type != event.TypeJournal {
		t.Errorf("Type = %q, want Journal", events[0].Type)
	}
	if events[0].Location != "" || events[0].Country != "" {
		t.Errorf("location/country = %q/%q, want empty", events[0].Location, events[0].Country)
	}
}

func TestParseLinks(t *testing.T) {
	links, err := ParseLinks(newDoc(t, searchPage(twoEvents)), DefaultLayout, "http://www.wikicfp.com")
	if err != nil {
		t.Fatalf("ParseLinks() error: %v", err)
	}

	want := []Link{
		{Abbreviation: "ICML 2026", DetailURL: "http://www.wikicfp.com/cfp/servlet/event.showcfp?eventid=1"},
		{Abbreviation: "GLW 2026", DetailURL: "http://www.wikicfp.com/cfp/servlet/event.showcfp?eventid=2"},
	}
	if len(links) != len(want) {
		t.Fatalf("ParseLinks() returned %d links, want %d: %+v", len(links), len(want), links)
	}
	for i := range want {
		if links[i] != want[i] {
			t.Errorf("links[%d] = %+v, want %+v", i, links[i], want[i])
		}
	}
}

func TestParseLinks_TooFewTables(t *testing.T) {
	// Five tables: enough for the plain listing, not for the link table
	html := strings.Replace(searchPage(twoEvents), `<table><tr><td>Contact us</td></tr></table>`, "", 1)

	if _, err := ParseListing(newDoc(t, html), DefaultLayout); err != nil {
		t.Fatalf("ParseListing() error: %v", err)
	}
	if _, err := ParseLinks(newDoc(t, html), DefaultLayout, ""); !errors.Is(err, ErrNoResults) {
		t.Errorf("ParseLinks() error = %v, want ErrNoResults", err)
	}
}

func TestExpandRows(t *testing.T) {
	doc := newDoc(t, `<table>
		<tr><td rowspan="2">A</td><td colspan="2">B</td></tr>
		<tr><td>C</td><td>D</td></tr>
		<tr><td>E</td><td>F</td><td rowspan="2">G</td></tr>
		<tr><td>H</td><td>I</td></tr>
	</table>`)

	grid := expandRows(doc.Find("tr"))
	want := [][]string{
		{"A", "B", "B"},
		{"A", "C", "D"},
		{"E", "F", "G"},
		{"H", "I", "G"},
	}

	if len(grid) != len(want) {
		t.Fatalf("expandRows() returned %d rows, want %d", len(grid), len(want))
	}
	for i := range want {
		got := make([]string, len(grid[i]))
		for j, c := range grid[i] {
			got[j] = c.Text
		}
		if strings.Join(got, "|") != strings.Join(want[i], "|") {
			t.Errorf("row %d = %v, want %v", i, got, want[i])
		}
	}
}

func TestExtractExternalLink(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		wantOK   bool
		wantLink string
	}{
		{
			name:     "link cell inside layout table",
			html:     detailPage(`<tr><td align="center">Link: <a href="https://icml.cc/2026">https://icml.cc/2026</a></td></tr>`),
			wantOK:   true,
			wantLink: "https://icml.cc/2026",
		},
		{
			name:     "surrounding whitespace",
			html:     detailPage("<tr><td>\n   Link: http://example.org/cfp  \n</td></tr>"),
			wantOK:   true,
			wantLink: "http://example.org/cfp",
		},
		{
			name:   "no link cell",
			html:   detailPage(""),
			wantOK: false,
		},
		{
			name:   "label without url",
			html:   detailPage(`<tr><td>Link: </td></tr>`),
			wantOK: false,
		},
		{
			name:   "no tables",
			html:   `<html><body><p>Link: http://example.org</p></body></html>`,
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ExtractExternalLink(newDoc(t, tt.html))
			if res.OK() != tt.wantOK {
				t.Fatalf("ExtractExternalLink() = %+v, want OK=%v", res, tt.wantOK)
			}
			if tt.wantOK && res.Value != tt.wantLink {
				t.Errorf("ExtractExternalLink() = %q, want %q", res.Value, tt.wantLink)
			}
			if !tt.wantOK && res.Reason == "" {
				t.Error("unresolved link should carry a reason")
			}
		})
	}
}

// fakeWikiCFP serves a search page at /search and detail pages at /cfp/servlet/event.showcfp
func fakeWikiCFP(t *testing.T, listing string, details map[string]string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(listing))
	})
	mux.HandleFunc("/cfp/servlet/event.showcfp", func(w http.ResponseWriter, r *http.Request) {
		page, ok := details[r.URL.Query().Get("eventid")]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(page))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newTestScraper(server *httptest.Server, workers int) *Scraper {
	client := fetch.New(fetch.Options{Timeout: 5 * time.Second, Retries: 0})
	return New(client, Options{
		SearchURL: server.URL + "/search",
		SiteURL:   server.URL,
		Workers:   workers,
	})
}

func TestFetchListing(t *testing.T) {
	server := fakeWikiCFP(t, searchPage(twoEvents), nil)
	s := newTestScraper(server, 1)

	listing, err := s.FetchListing(context.Background(), Query{Keyword: "machine learning", Year: YearAll})
	if err != nil {
		t.Fatalf("FetchListing() error: %v", err)
	}

	if len(listing.Events) != 2 || len(listing.Links) != 2 {
		t.Errorf("FetchListing() = %d events, %d links; want 2, 2", len(listing.Events), len(listing.Links))
	}
	if !strings.HasSuffix(listing.URL, "/search?q=machine+learning&year=a") {
		t.Errorf("URL = %q", listing.URL)
	}
	if !strings.HasPrefix(listing.Links[0].DetailURL, server.URL) {
		t.Errorf("detail URL %q should resolve against the site URL", listing.Links[0].DetailURL)
	}
}

func TestFetchListing_Errors(t *testing.T) {
	server := fakeWikiCFP(t, `<html><body><p>No results</p></body></html>`, nil)
	s := newTestScraper(server, 1)

	if _, err := s.FetchListing(context.Background(), Query{Keyword: "nothing"}); !errors.Is(err, ErrNoResults) {
		t.Errorf("FetchListing() error = %v, want ErrNoResults", err)
	}

	if _, err := s.FetchListing(context.Background(), Query{Keyword: "  "}); err == nil {
		t.Error("FetchListing() with empty keyword should fail")
	}

	down := newTestScraper(server, 1)
	down.searchURL = server.URL + "/missing"
	_, err := down.FetchListing(context.Background(), Query{Keyword: "x"})
	var upstream *fetch.UpstreamError
	if !errors.As(err, &upstream) {
		t.Errorf("FetchListing() error = %v, want *fetch.UpstreamError", err)
	}
}

func TestExtractCFPLinks(t *testing.T) {
	details := map[string]string{
		"1": detailPage(`<tr><td>Link: https://icml.cc/2026</td></tr>`),
		"2": detailPage(""), // no Link cell
		"4": detailPage(`<tr><td>Link: https://second.example.org</td></tr>`),
	}
	server := fakeWikiCFP(t, "", details)

	for _, workers := range []int{1, 4} {
		s := newTestScraper(server, workers)
		links := []Link{
			{Abbreviation: "ICML 2026", DetailURL: server.URL + "/cfp/servlet/event.showcfp?eventid=1"},
			{Abbreviation: "GLW 2026", DetailURL: server.URL + "/cfp/servlet/event.showcfp?eventid=2"},
			{Abbreviation: "GONE", DetailURL: server.URL + "/cfp/servlet/event.showcfp?eventid=3"},
			{Abbreviation: "ICML 2026", DetailURL: server.URL + "/cfp/servlet/event.showcfp?eventid=4"},
		}

		got, err := s.ExtractCFPLinks(context.Background(), links)
		if err != nil {
			t.Fatalf("ExtractCFPLinks() error: %v", err)
		}

		if len(got) != 3 {
			t.Errorf("workers=%d: %d abbreviations, want 3", workers, len(got))
		}
		if got["ICML 2026"].Value != "https://icml.cc/2026" {
			t.Errorf("workers=%d: ICML link = %+v, first detail page should win", workers, got["ICML 2026"])
		}
		if got["GLW 2026"].OK() {
			t.Errorf("workers=%d: missing Link cell should be unresolved, got %+v", workers, got["GLW 2026"])
		}
		if got["GONE"].OK() || got["GONE"].Reason == "" {
			t.Errorf("workers=%d: failed fetch should be unresolved with a reason, got %+v", workers, got["GONE"])
		}
	}
}

func TestExtractCFPLinks_Canceled(t *testing.T) {
	server := fakeWikiCFP(t, "", map[string]string{"1": detailPage(`<tr><td>Link: x</td></tr>`)})
	s := newTestScraper(server, 2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.ExtractCFPLinks(ctx, []Link{{Abbreviation: "A", DetailURL: server.URL + "/cfp/servlet/event.showcfp?eventid=1"}})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("ExtractCFPLinks() error = %v, want context.Canceled", err)
	}
}

func TestNew(t *testing.T) {
	s := New(fetch.New(fetch.Options{}), Options{})

	if s == nil {
		t.Fatal("New() returned nil")
	}
	if s.searchURL != DefaultSearchURL {
		t.Errorf("searchURL = %q, want %q", s.searchURL, DefaultSearchURL)
	}
	if s.siteURL != DefaultSiteURL {
		t.Errorf("siteURL = %q, want %q", s.siteURL, DefaultSiteURL)
	}
	if s.layout != DefaultLayout {
		t.Errorf("layout = %+v, want %+v", s.layout, DefaultLayout)
	}
	if s.workers != DefaultWorkers {
		t.Errorf("workers = %d, want %d", s.workers, DefaultWorkers)
	}
}
