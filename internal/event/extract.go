package event

import "strings"

// countryExceptions maps literal location tails to reference-table country names.
// Bare university names and other comma-less locations are left unresolved.
var countryExceptions = map[string]string{
	"USA": "United States of America",
	"UK":  "United Kingdom",
}

// SplitTimeRange splits "1 Jan 2024 - 3 Jan 2024" on the first " - ".
// If there is no separator the end date is empty.
func SplitTimeRange(timeRange string) (start, end string) {
	start, end, found := strings.Cut(timeRange, " - ")
	if !found {
		return timeRange, ""
	}
	return start, end
}

// ClassifyType derives the event type from its full name.
// Journal wins over Workshop; matching is case-sensitive.
func ClassifyType(name string) Type {
	switch {
	case strings.Contains(name, "Special Issue") || strings.Contains(name, "Journal"):
		return TypeJournal
	case strings.Contains(name, "Workshop"):
		return TypeWorkshop
	default:
		return TypeConference
	}
}

// ExtractCountry maps a free-text location to a country name.
//
// The tail after the last comma is taken; any location mentioning Macau is China; finally the
// USA/UK abbreviations are expanded. An empty location stays empty.
func ExtractCountry(location string) string {
	if location == "" {
		return ""
	}

	country := location
	if strings.Contains(location, ",") {
		country = strings.TrimSpace(location[strings.LastIndex(location, ",")+1:])
	}

	// checked against the full location, not the tail
	if strings.Contains(location, "Macau") {
		country = "China"
	}

	if mapped, ok := countryExceptions[country]; ok {
		country = mapped
	}

	return country
}

func equalFoldTrim(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), b)
}
