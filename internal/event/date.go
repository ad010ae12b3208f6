package event

import (
	"strings"
	"time"
)

// dateLayouts covers the date formats WikiCFP prints in listings
var dateLayouts = []string{
	"Jan 2, 2006",
	"Jan 02, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"02 Jan 2006",
	"Jan 2 2006",
	"2006-01-02",
}

// ParseDate attempts to parse a listing date such as "Sep 16, 2026".
// Returns time.Time{} (zero value) for "TBD", the sentinel or anything unparseable.
func ParseDate(dateText string) time.Time {
	dateText = strings.TrimSpace(dateText)
	if dateText == "" || dateText == Undefined || strings.EqualFold(dateText, "TBD") {
		return time.Time{}
	}

	// Deadlines sometimes carry the abstract deadline in parentheses: "Mar 1, 2026 (Feb 20, 2026)"
	if idx := strings.Index(dateText, " ("); idx > 0 {
		dateText = dateText[:idx]
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, dateText); err == nil {
			return t
		}
	}

	return time.Time{}
}

// Start returns the parsed start date
func (e *Event) Start() time.Time {
	return ParseDate(e.StartDate)
}

// End returns the parsed end date, falling back to the start date for single-day events
func (e *Event) End() time.Time {
	if end := ParseDate(e.EndDate); !end.IsZero() {
		return end
	}
	return e.Start()
}

// DeadlineDate returns the parsed submission deadline
func (e *Event) DeadlineDate() time.Time {
	return ParseDate(e.Deadline)
}

// IsDeadlinePassed checks if the submission deadline is before now.
// Returns false if the deadline cannot be parsed.
func (e *Event) IsDeadlinePassed(now time.Time) bool {
	d := e.DeadlineDate()
	if d.IsZero() {
		return false
	}
	return d.Before(now)
}
