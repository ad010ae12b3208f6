package cli

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/pfrederiksen/cfp-search/internal/calendar"
	"github.com/pfrederiksen/cfp-search/internal/event"
	"github.com/pfrederiksen/cfp-search/internal/logger"
	"github.com/pfrederiksen/cfp-search/internal/search"
	"github.com/pfrederiksen/cfp-search/internal/web"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
	FormatCSV  OutputFormat = "csv"
	FormatHTML OutputFormat = "html"
	FormatICS  OutputFormat = "ics"
)

// ParseOutputFormat validates a --format value
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(s); f {
	case FormatText, FormatJSON, FormatCSV, FormatHTML, FormatICS:
		return f, nil
	default:
		return "", fmt.Errorf("invalid format: %s (must be text, json, csv, html or ics)", s)
	}
}

// now is replaced in tests
var now = time.Now

// WriteOutput writes the result in the specified format
func WriteOutput(w io.Writer, result *search.Result, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeText(w, result, verbose)
	case FormatCSV:
		return writeCSV(w, result.Events)
	case FormatHTML:
		return web.RenderTable(w, result.Events)
	case FormatICS:
		out, skipped := calendar.GenerateICS(result.Events, now())
		if skipped > 0 {
			logger.Warn("Events without a start date left out of the calendar", logger.Fields{
				"skipped":  skipped,
				"exported": len(result.Events) - skipped,
			})
		}
		_, err := io.WriteString(w, out)
		return err
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, result *search.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// writeCSV outputs one row per event in the fixed column order
func writeCSV(w io.Writer, events []*event.Event) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(event.Columns); err != nil {
		return err
	}
	for _, evt := range events {
		if err := cw.Write(evt.Row()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// writeText outputs results as human-readable text
func writeText(w io.Writer, result *search.Result, verbose bool) error {
	if len(result.Events) == 0 {
		fmt.Fprintln(w, search.NoResultsMessage)
		if verbose && result.Total > 0 {
			fmt.Fprintf(w, "(%d events were removed by the filter: %s)\n", result.Total, result.Filter)
		}
		return nil
	}

	for _, evt := range result.Events {
		fmt.Fprintf(w, "%s [%s] %s\n", evt.Abbreviation, evt.Type, evt.Name)
		fmt.Fprintf(w, "     When: %s - %s\n", evt.StartDate, evt.EndDate)
		fmt.Fprintf(w, "     Where: %s (%s, %s)\n", evt.Location, evt.Country, evt.Region)
		if evt.IsDeadlinePassed(now()) {
			fmt.Fprintf(w, "     Deadline: %s (passed)\n", evt.Deadline)
		} else {
			fmt.Fprintf(w, "     Deadline: %s\n", evt.Deadline)
		}
		fmt.Fprintf(w, "     CFP: %s\n", evt.DeadlineLink)
		if verbose {
			fmt.Fprintf(w, "     ID: %s\n", evt.ID())
		}
	}

	fmt.Fprintf(w, "\nTotal: %d events", len(result.Events))
	if result.Total != len(result.Events) {
		fmt.Fprintf(w, " (%d before filtering)", result.Total)
	}
	fmt.Fprintln(w)

	if verbose {
		fmt.Fprintf(w, "Search URL: %s\n", result.SearchURL)
		fmt.Fprintf(w, "Undefined regions: %d, undefined CFP links: %d\n",
			result.Stats.UndefinedRegions, result.Stats.UndefinedLinks)
	}

	return nil
}
