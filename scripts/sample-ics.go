package main

import (
	"fmt"
	"os"
	"time"

	"github.com/pfrederiksen/cfp-search/internal/calendar"
	"github.com/pfrederiksen/cfp-search/internal/event"
)

func main() {
	// A sample search result: one dated event and one whose dates are unknown
	events := []*event.Event{
		{
			Abbreviation: "ICML 2026",
			Name:         "International Conference on Machine Learning",
			Type:         event.TypeConference,
			StartDate:    "Jul 12, 2026",
			EndDate:      "Jul 18, 2026",
			Deadline:     "Jan 30, 2026",
			Location:     "Seoul, South Korea",
			Country:      "South Korea",
			Region:       "Asia",
			DeadlineLink: "https://icml.cc/2026",
		},
		{
			Abbreviation: "JML",
			Name:         "Journal of Machine Learning Special Issue",
			Type:         event.TypeJournal,
			StartDate:    event.Undefined,
			EndDate:      event.Undefined,
			Deadline:     "Dec 1, 2026",
			Location:     event.Undefined,
			Country:      event.Undefined,
			Region:       event.Undefined,
			DeadlineLink: event.Undefined,
		},
	}

	icsContent, skipped := calendar.GenerateICS(events, time.Now())

	// Write to file (owner read/write only)
	filename := "sample-cfp.ics"
	if err := os.WriteFile(filename, []byte(icsContent), 0600); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ Generated calendar file: %s (%d events without dates skipped)\n\n", filename, skipped)
	fmt.Println("Test it by:")
	fmt.Println("1. Open the .ics file with your calendar app (double-click)")
	fmt.Println("2. Or import it into Google Calendar, Apple Calendar, or Outlook")
	fmt.Println("\nFile contents preview:")
	fmt.Println("---")
	fmt.Println(icsContent)
}
