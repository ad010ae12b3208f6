// Package reference loads the static country→region table used to enrich search results.
//
// The table comes from the ISO-3166 "all.csv" published alongside the
// ISO-3166-Countries-with-Regional-Codes project. Only the name and region columns are kept,
// a few official names are collapsed to their common short form, and missing regions become
// the "Undefined" sentinel. A Loader fetches the table once and serves it for the lifetime of
// the process.
package reference
