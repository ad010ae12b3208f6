package cli

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pfrederiksen/cfp-search/internal/event"
)

// SortOrder represents the available sorting options
type SortOrder string

const (
	SortNone     SortOrder = "none"
	SortDeadline SortOrder = "deadline"
	SortStart    SortOrder = "start"
	SortName     SortOrder = "name"
)

// ParseSortOrder validates a --sort value
func ParseSortOrder(s string) (SortOrder, error) {
	switch order := SortOrder(strings.ToLower(strings.TrimSpace(s))); order {
	case "":
		return SortNone, nil
	case SortNone, SortDeadline, SortStart, SortName:
		return order, nil
	default:
		return "", fmt.Errorf("invalid sort: %s (must be none, deadline, start or name)", s)
	}
}

// sortEvents sorts a slice of events based on the specified sort order.
// SortNone keeps listing order.
func sortEvents(events []*event.Event, order SortOrder) {
	switch order {
	case SortDeadline:
		sort.SliceStable(events, func(i, j int) bool {
			return compareDates(events[i].DeadlineDate(), events[j].DeadlineDate(), events[i], events[j])
		})
	case SortStart:
		sort.SliceStable(events, func(i, j int) bool {
			return compareDates(events[i].Start(), events[j].Start(), events[i], events[j])
		})
	case SortName:
		sort.SliceStable(events, func(i, j int) bool {
			return strings.ToLower(events[i].Abbreviation) < strings.ToLower(events[j].Abbreviation)
		})
	}
}

// compareDates returns true if i should come before j.
// Events with a parseable date come first; ties fall back to the abbreviation.
func compareDates(dateI, dateJ time.Time, i, j *event.Event) bool {
	if !dateI.IsZero() && !dateJ.IsZero() && !dateI.Equal(dateJ) {
		return dateI.Before(dateJ)
	}

	if !dateI.IsZero() && dateJ.IsZero() {
		return true
	}
	if dateI.IsZero() && !dateJ.IsZero() {
		return false
	}

	return strings.ToLower(i.Abbreviation) < strings.ToLower(j.Abbreviation)
}
