// Package cli implements the command-line interface for cfp-search.
//
// The cli package provides the Cobra-based CLI with a search command that prints results
// as text, JSON, CSV, an HTML table or an iCalendar feed, and a serve command that runs the
// browser UI. It loads the configuration and wires the fetch, reference, scraper and search
// packages together.
package cli
