// Package calendar exports search results as an iCalendar feed.
package calendar

import (
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/pfrederiksen/cfp-search/internal/event"
)

const productID = "-//cfp-search//WikiCFP search results//EN"

// GenerateICS renders one all-day VEVENT per event whose start date parses.
// Events without a usable date are skipped and counted in the second return value.
func GenerateICS(events []*event.Event, now time.Time) (string, int) {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(productID)

	skipped := 0
	for _, evt := range events {
		start := evt.Start()
		if start.IsZero() {
			skipped++
			continue
		}

		vevent := cal.AddEvent(evt.ID() + "@cfp-search")
		vevent.SetDtStampTime(now.UTC())
		vevent.SetAllDayStartAt(start)
		// DTEND is exclusive for all-day events
		vevent.SetAllDayEndAt(evt.End().AddDate(0, 0, 1))
		vevent.SetSummary(summary(evt))
		if evt.Location != "" && evt.Location != event.Undefined {
			vevent.SetLocation(evt.Location)
		}
		vevent.SetDescription(description(evt))
		if isURL(evt.DeadlineLink) {
			vevent.SetURL(evt.DeadlineLink)
		}
	}

	return cal.Serialize(), skipped
}

func summary(evt *event.Event) string {
	if evt.Abbreviation == "" || evt.Abbreviation == event.Undefined {
		return evt.Name
	}
	return fmt.Sprintf("%s: %s", evt.Abbreviation, evt.Name)
}

func description(evt *event.Event) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Type: %s\n", evt.Type)
	fmt.Fprintf(&b, "Submission deadline: %s\n", evt.Deadline)
	fmt.Fprintf(&b, "Country: %s (%s)\n", evt.Country, evt.Region)
	fmt.Fprintf(&b, "Call for papers: %s", evt.DeadlineLink)
	return b.String()
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
