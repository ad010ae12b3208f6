package filter

import (
	"testing"

	"github.com/pfrederiksen/cfp-search/internal/event"
)

type regionMap map[string]string

func (m regionMap) Region(country string) event.Resolution {
	if r, ok := m[country]; ok {
		return event.Resolved(r)
	}
	return event.Unresolved("country %q not in reference table", country)
}

var regions = regionMap{
	"France":                   "Europe",
	"China":                    "Asia",
	"United States of America": "Americas",
}

func TestBuild(t *testing.T) {
	events := []*event.Event{
		event.NewEvent("EURO 2026", "European Conference on Things", "Jun 1, 2026 - Jun 3, 2026", "Paris, France", "Feb 1, 2026"),
		event.NewEvent("MAC 2026", "Workshop on Gaming Systems", "Jul 1, 2026", "Macau", "Mar 1, 2026"),
		event.NewEvent("STAN 2026", "Symposium at Stanford", "Aug 1, 2026 - Aug 2, 2026", "Stanford University", "Apr 1, 2026"),
		event.NewEvent("SI-AI", "Special Issue on AI", "N/A", "", "Dec 31, 2026"),
	}
	links := map[string]event.Resolution{
		"EURO 2026": event.Resolved("https://euro.example.org"),
		"MAC 2026":  event.Unresolved("no Link cell"),
	}

	got, stats := Build(events, regions, links, NewFilter())

	if len(got) != 4 {
		t.Fatalf("Build() returned %d events, want 4", len(got))
	}

	tests := []struct {
		idx        int
		wantRegion string
		wantLink   string
	}{
		{0, "Europe", "https://euro.example.org"},
		{1, "Asia", event.Undefined},
		{2, event.Undefined, event.Undefined},
		{3, event.Undefined, event.Undefined},
	}
	for _, tt := range tests {
		evt := got[tt.idx]
		if evt.Region != tt.wantRegion {
			t.Errorf("%s: Region = %q, want %q", evt.Abbreviation, evt.Region, tt.wantRegion)
		}
		if evt.DeadlineLink != tt.wantLink {
			t.Errorf("%s: DeadlineLink = %q, want %q", evt.Abbreviation, evt.DeadlineLink, tt.wantLink)
		}
	}

	// Unmatched rows keep their country
	if got[2].Country != "Stanford University" {
		t.Errorf("Country = %q, unmatched rows should keep their country", got[2].Country)
	}

	// Remaining gaps are filled
	si := got[3]
	if si.Location != event.Undefined || si.Country != event.Undefined || si.EndDate != event.Undefined {
		t.Errorf("empty fields should be %q: %+v", event.Undefined, si)
	}

	if stats.Total != 4 || stats.UndefinedRegions != 2 || stats.UndefinedLinks != 3 {
		t.Errorf("stats = %+v", stats)
	}

	if events[0].Region != "" {
		t.Error("Build() should not modify its input")
	}
}

func TestBuild_Dedupe(t *testing.T) {
	a := event.NewEvent("CONF 2026", "Conference on Duplicates", "Jun 1, 2026 - Jun 3, 2026", "Paris, France", "Feb 1, 2026")
	b := event.NewEvent("CONF'26", "Conference on Duplicates", "Jun 1, 2026 - Jun 3, 2026", "Paris, France", "Feb 1, 2026")
	c := event.NewEvent("CONF 2026", "Conference on Duplicates", "Jun 1, 2026 - Jun 3, 2026", "Paris, France", "Feb 15, 2026")

	got, _ := Build([]*event.Event{a, b, c}, regions, nil, NewFilter())

	if len(got) != 2 {
		t.Fatalf("Build() returned %d events, want 2", len(got))
	}
	seen := make(map[event.Key]bool)
	for _, evt := range got {
		if seen[evt.Key()] {
			t.Errorf("duplicate key %+v", evt.Key())
		}
		seen[evt.Key()] = true
	}
	if got[0].Abbreviation != "CONF 2026" {
		t.Errorf("first occurrence should be kept, got %q", got[0].Abbreviation)
	}
}

func TestBuild_Filter(t *testing.T) {
	events := []*event.Event{
		event.NewEvent("EURO 2026", "European Conference on Things", "Jun 1, 2026", "Paris, France", "Feb 1, 2026"),
		event.NewEvent("EUWS 2026", "Workshop on Things", "Jun 2, 2026", "Lyon, France", "Feb 2, 2026"),
		event.NewEvent("US 2026", "American Conference on Things", "Jun 3, 2026", "Boston, MA, USA", "Feb 3, 2026"),
		event.NewEvent("CN 2026", "Asian Conference on Things", "Jun 4, 2026", "Beijing, China", "Feb 4, 2026"),
	}

	f := &Filter{Types: []event.Type{event.TypeConference}, Regions: []string{"Europe"}}
	got, stats := Build(events, regions, nil, f)

	if stats.Total != 4 {
		t.Errorf("stats.Total = %d, want 4 before filtering", stats.Total)
	}
	if len(got) != 1 {
		t.Fatalf("Build() returned %d events, want 1", len(got))
	}
	if got[0].Region != "Europe" || got[0].Type != event.TypeConference {
		t.Errorf("got %+v", got[0])
	}
}
