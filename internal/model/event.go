package model

import "time"

// DateLayout is the YYYY-MM-DD form used for every date key in the system.
const DateLayout = "2006-01-02"

// EventTime is a start or end marker. Exactly one of DateTime (RFC 3339)
// or Date (all-day, YYYY-MM-DD) is normally set.
type EventTime struct {
	DateTime string `json:"dateTime,omitempty"`
	Date     string `json:"date,omitempty"`
}

// LocalDateTimeLayout is a wall-clock timestamp without a UTC offset.
const LocalDateTimeLayout = "2006-01-02T15:04:05"

// Instant resolves the marker to a point in time. Date-only values and
// timestamps without an offset are read in loc. Missing or unparsable
// markers resolve to the Unix epoch so a corrupt record degrades to a
// zero-length event instead of failing the whole analysis.
func (t EventTime) Instant(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	if t.DateTime != "" {
		if ts, err := time.Parse(time.RFC3339, t.DateTime); err == nil {
			return ts.In(loc)
		}
		if ts, err := time.ParseInLocation(LocalDateTimeLayout, t.DateTime, loc); err == nil {
			return ts
		}
		return time.Unix(0, 0).In(loc)
	}
	if t.Date != "" {
		d, err := time.ParseInLocation(DateLayout, t.Date, loc)
		if err != nil {
			return time.Unix(0, 0).In(loc)
		}
		return d
	}
	return time.Unix(0, 0).In(loc)
}

// CalendarEvent is the event shape supplied by the calendar collaborator.
// The analysis engine only reads it.
type CalendarEvent struct {
	ID          string    `json:"id,omitempty"`
	CalendarID  string    `json:"calendarId,omitempty"`
	Summary     string    `json:"summary,omitempty"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location,omitempty"`
	Start       EventTime `json:"start"`
	End         EventTime `json:"end"`
}

// AllDay reports whether the event uses date-only markers.
func (e CalendarEvent) AllDay() bool {
	return e.Start.DateTime == "" && e.Start.Date != ""
}

// Span returns the resolved start and end instants.
func (e CalendarEvent) Span(loc *time.Location) (time.Time, time.Time) {
	return e.Start.Instant(loc), e.End.Instant(loc)
}

// Minutes is the event duration in minutes (may be negative for a corrupt
// record whose end precedes its start).
func (e CalendarEvent) Minutes(loc *time.Location) float64 {
	start, end := e.Span(loc)
	return end.Sub(start).Minutes()
}

// Occurrence is one concrete instance of a calendar feed event after
// recurrence expansion, in the display zone.
type Occurrence struct {
	SourceID string
	UID      string

	// InstanceKey is the RFC 3339 local start; with UID it identifies one
	// instance of a recurring event.
	InstanceKey string
	Recurring   bool

	Summary     string
	Description string
	Location    string

	AllDay bool

	Start time.Time
	End   time.Time
}
