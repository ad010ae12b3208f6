// Package filter joins parsed events with the reference and link data and narrows the
// result to the event types and regions a user selected.
//
// Example usage:
//
//	f := filter.NewFilter()
//	f.Types = []event.Type{event.TypeConference}
//	f.Regions = []string{"Europe"}
//
//	events := filter.Build(listing.Events, table, links, f)
package filter

import (
	"fmt"
	"strings"

	"github.com/pfrederiksen/cfp-search/internal/event"
)

// AllRegions lists every region the reference data uses, plus the sentinel
var AllRegions = []string{"Asia", "Europe", "Africa", "Oceania", "Americas", event.Undefined}

// DefaultRegions is the region selection offered before the user changes it
var DefaultRegions = []string{"Europe", "Americas", event.Undefined}

// Filter represents the user's type and region selection.
// An event passes when its Type is selected AND its Region is selected;
// an empty selection matches nothing.
type Filter struct {
	Types   []event.Type `json:"types"`
	Regions []string     `json:"regions"`
}

// NewFilter creates a filter selecting every type and every region.
func NewFilter() *Filter {
	types := make([]event.Type, len(event.AllTypes))
	copy(types, event.AllTypes)
	regions := make([]string, len(AllRegions))
	copy(regions, AllRegions)
	return &Filter{Types: types, Regions: regions}
}

// ParseRegion maps a user-supplied label to one of AllRegions (case-insensitive)
func ParseRegion(s string) (string, error) {
	for _, r := range AllRegions {
		if strings.EqualFold(strings.TrimSpace(s), r) {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown region: %q (must be one of %s)", s, strings.Join(AllRegions, ", "))
}

// Matches checks if an event's type and region are both selected.
func (f *Filter) Matches(evt *event.Event) bool {
	typeOK := false
	for _, t := range f.Types {
		if evt.Type == t {
			typeOK = true
			break
		}
	}
	if !typeOK {
		return false
	}

	for _, r := range f.Regions {
		if evt.Region == r {
			return true
		}
	}
	return false
}

// Apply returns the events that match, preserving order.
func (f *Filter) Apply(events []*event.Event) []*event.Event {
	filtered := make([]*event.Event, 0, len(events))
	for _, evt := range events {
		if f.Matches(evt) {
			filtered = append(filtered, evt)
		}
	}
	return filtered
}

// String returns a human-readable description of the filter.
func (f *Filter) String() string {
	types := make([]string, len(f.Types))
	for i, t := range f.Types {
		types[i] = string(t)
	}
	return fmt.Sprintf("Types: %s; Regions: %s", strings.Join(types, ", "), strings.Join(f.Regions, ", "))
}
