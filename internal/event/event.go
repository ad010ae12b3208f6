package event

import (
	"crypto/sha1"
	"fmt"
)

// Undefined is the sentinel used in place of any field that could not be resolved.
const Undefined = "Undefined"

// Type classifies an event by its full name
type Type string

const (
	TypeConference Type = "Conference"
	TypeWorkshop   Type = "Workshop"
	TypeJournal    Type = "Journal"
)

// AllTypes lists every event type in display order
var AllTypes = []Type{TypeConference, TypeWorkshop, TypeJournal}

// ParseType maps a user-supplied label to a Type (case-insensitive)
func ParseType(s string) (Type, error) {
	for _, t := range AllTypes {
		if equalFoldTrim(s, string(t)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown event type: %q (must be Conference, Workshop or Journal)", s)
}

// Columns is the fixed output column order
var Columns = []string{
	"Abbreviation", "Name", "Type",
	"Start Date", "End Date", "Deadline",
	"Location", "Country", "Region", "CFP Link",
}

// Event represents one call for papers after normalization
type Event struct {
	Abbreviation string `json:"abbreviation"`
	Name         string `json:"name"`
	Type         Type   `json:"type"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	Deadline     string `json:"deadline"`
	Location     string `json:"location"`
	Country      string `json:"country"`
	Region       string `json:"region"`
	DeadlineLink string `json:"cfp_link"`
}

// NewEvent builds an event from the raw listing cells, deriving Type, StartDate, EndDate and Country.
// Region and DeadlineLink are left empty for the merge step.
func NewEvent(abbreviation, name, timeRange, location, deadline string) *Event {
	start, end := SplitTimeRange(timeRange)
	return &Event{
		Abbreviation: abbreviation,
		Name:         name,
		Type:         ClassifyType(name),
		StartDate:    start,
		EndDate:      end,
		Deadline:     deadline,
		Location:     location,
		Country:      ExtractCountry(location),
	}
}

// Key is the uniqueness key of an event in a result set
type Key struct {
	Name      string
	StartDate string
	EndDate   string
	Deadline  string
}

// Key returns the (Name, StartDate, EndDate, Deadline) tuple
func (e *Event) Key() Key {
	return Key{Name: e.Name, StartDate: e.StartDate, EndDate: e.EndDate, Deadline: e.Deadline}
}

// ID creates a deterministic identifier from the uniqueness key
func (e *Event) ID() string {
	h := sha1.New()
	h.Write([]byte(e.Name + "|" + e.StartDate + "|" + e.EndDate + "|" + e.Deadline))
	return fmt.Sprintf("%x", h.Sum(nil))
}

// Row returns the event's fields in Columns order
func (e *Event) Row() []string {
	return []string{
		e.Abbreviation, e.Name, string(e.Type),
		e.StartDate, e.EndDate, e.Deadline,
		e.Location, e.Country, e.Region, e.DeadlineLink,
	}
}

// FillUndefined replaces every empty field with the sentinel
func (e *Event) FillUndefined() {
	fields := []*string{
		&e.Abbreviation, &e.Name,
		&e.StartDate, &e.EndDate, &e.Deadline,
		&e.Location, &e.Country, &e.Region, &e.DeadlineLink,
	}
	for _, f := range fields {
		if *f == "" {
			*f = Undefined
		}
	}
	if e.Type == "" {
		e.Type = Type(Undefined)
	}
}

// Dedupe drops events whose Key was already seen, keeping the first occurrence
func Dedupe(events []*Event) []*Event {
	seen := make(map[Key]bool)
	unique := make([]*Event, 0, len(events))
	for _, evt := range events {
		k := evt.Key()
		if seen[k] {
			continue
		}
		seen[k] = true
		unique = append(unique, evt)
	}
	return unique
}

// Resolution is the outcome of deriving one field from upstream data: either a value,
// or a reason why the sentinel had to be used instead.
type Resolution struct {
	Value  string `json:"value,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// Resolved wraps a successfully derived value
func Resolved(value string) Resolution {
	return Resolution{Value: value}
}

// Unresolved records why a value could not be derived
func Unresolved(format string, args ...interface{}) Resolution {
	return Resolution{Reason: fmt.Sprintf(format, args...)}
}

// OK reports whether the value was resolved
func (r Resolution) OK() bool {
	return r.Reason == "" && r.Value != ""
}

// OrUndefined returns the value, or the sentinel when unresolved
func (r Resolution) OrUndefined() string {
	if !r.OK() {
		return Undefined
	}
	return r.Value
}
