package filter

import (
	"github.com/pfrederiksen/cfp-search/internal/event"
)

// RegionLookup resolves a country to its region
type RegionLookup interface {
	Region(country string) event.Resolution
}

// Stats counts fields that fell back to the sentinel while merging
type Stats struct {
	Total            int `json:"total"` // events after dedupe, before the type/region filter
	UndefinedRegions int `json:"undefined_regions"`
	UndefinedLinks   int `json:"undefined_links"`
}

// Build merges parsed events with regions and CFP links, then filters them.
//
// Steps, in order: region by country (unmatched → sentinel), link by abbreviation
// (unmatched or unresolved → sentinel), every remaining empty field → sentinel,
// dedupe on (Name, StartDate, EndDate, Deadline), then the type/region filter.
// The input events are not modified.
func Build(events []*event.Event, regions RegionLookup, links map[string]event.Resolution, f *Filter) ([]*event.Event, Stats) {
	var stats Stats
	merged := make([]*event.Event, 0, len(events))

	for _, src := range events {
		evt := *src

		region := regions.Region(evt.Country)
		evt.Region = region.OrUndefined()

		link, ok := links[evt.Abbreviation]
		if !ok {
			link = event.Unresolved("no detail page for %q", evt.Abbreviation)
		}
		evt.DeadlineLink = link.OrUndefined()

		evt.FillUndefined()
		merged = append(merged, &evt)
	}

	merged = event.Dedupe(merged)
	stats.Total = len(merged)
	for _, evt := range merged {
		if evt.Region == event.Undefined {
			stats.UndefinedRegions++
		}
		if evt.DeadlineLink == event.Undefined {
			stats.UndefinedLinks++
		}
	}

	return f.Apply(merged), stats
}
