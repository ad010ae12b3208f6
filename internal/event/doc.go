// Package event provides the normalized call-for-papers record and the helpers that derive its
// fields from the free text scraped off WikiCFP.
//
// The event package owns the record layout (column order, sentinel value, uniqueness key) and the
// field extractors: splitting a date range, classifying an event as Conference/Workshop/Journal and
// mapping a location string to a country name. Fields that cannot be derived are carried as a
// Resolution so one malformed upstream page never aborts a whole search.
package event
