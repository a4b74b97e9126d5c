package ics

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	appLog "lifeplan/internal/log"
)

// ParsedEvent is one VEVENT before recurrence expansion.
type ParsedEvent struct {
	Source Source

	UID string
	Seq int

	Summary     string
	Description string
	Location    string

	Start  time.Time
	End    time.Time
	AllDay bool

	RawRRule   string
	ExDates    []time.Time
	Recurrence *time.Time // RECURRENCE-ID
	IsOverride bool
}

// ParseICS reads every VEVENT in body. Floating times and DATE values are
// read in loc (time.Local when nil). Events that cannot be parsed are
// logged and skipped.
func ParseICS(src Source, body []byte, loc *time.Location) ([]ParsedEvent, error) {
	if len(body) == 0 {
		return nil, errors.New("empty ICS body")
	}
	if loc == nil {
		loc = time.Local
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		appLog.Error("ics parse failed", err, "id", src.ID, "url", redactURL(src.URL))
		return nil, err
	}

	events := make([]ParsedEvent, 0)
	for _, comp := range cal.Events() {
		ev, err := parseVEvent(src, comp, loc)
		if err != nil {
			appLog.Error("ics vevent skipped", err, "id", src.ID, "url", redactURL(src.URL))
			continue
		}
		events = append(events, ev)
	}

	appLog.Debug("ics parsed", "id", src.ID, "events", len(events))
	return events, nil
}

func propValue(ve *ical.VEvent, p ical.ComponentProperty) string {
	if prop := ve.GetProperty(p); prop != nil {
		return prop.Value
	}
	return ""
}

func param(p *ical.IANAProperty, name string) string {
	if p == nil || p.ICalParameters == nil {
		return ""
	}
	if vs := p.ICalParameters[name]; len(vs) > 0 {
		return vs[0]
	}
	return ""
}

func parseVEvent(src Source, ve *ical.VEvent, loc *time.Location) (ParsedEvent, error) {
	out := ParsedEvent{Source: src}

	out.UID = propValue(ve, ical.ComponentPropertyUniqueId)
	if out.UID == "" {
		return out, errors.New("missing UID")
	}
	if n, err := strconv.Atoi(strings.TrimSpace(propValue(ve, ical.ComponentPropertySequence))); err == nil {
		out.Seq = n
	}
	out.Summary = propValue(ve, ical.ComponentPropertySummary)
	out.Description = propValue(ve, ical.ComponentPropertyDescription)
	out.Location = propValue(ve, ical.ComponentPropertyLocation)

	dtStart := ve.GetProperty(ical.ComponentPropertyDtStart)
	if dtStart == nil {
		return out, errors.New("missing DTSTART")
	}
	out.AllDay = strings.EqualFold(param(dtStart, "VALUE"), "DATE") || !strings.Contains(dtStart.Value, "T")

	start, err := ve.GetStartAt()
	if err != nil {
		return out, fmt.Errorf("DTSTART: %w", err)
	}
	out.Start = relocateFloating(start, dtStart, loc)

	if dtEnd := ve.GetProperty(ical.ComponentPropertyDtEnd); dtEnd != nil {
		end, err := ve.GetEndAt()
		if err != nil {
			return out, fmt.Errorf("DTEND: %w", err)
		}
		out.End = relocateFloating(end, dtEnd, loc)
	} else if d, ok := parseDuration(propValue(ve, ical.ComponentPropertyDuration)); ok {
		out.End = out.Start.Add(d)
	} else if out.AllDay {
		out.End = out.Start.AddDate(0, 0, 1)
	} else {
		out.End = out.Start
	}

	out.RawRRule = propValue(ve, ical.ComponentPropertyRrule)

	for _, p := range ve.GetProperties(ical.ComponentPropertyExdate) {
		exLoc := loc
		if tz := param(p, "TZID"); tz != "" {
			if l, err := time.LoadLocation(tz); err == nil {
				exLoc = l
			}
		}
		for _, part := range strings.Split(p.Value, ",") {
			if t, err := parseICSTime(part, exLoc); err == nil {
				out.ExDates = append(out.ExDates, t)
			}
		}
	}

	if rid := ve.GetProperty(ical.ComponentPropertyRecurrenceId); rid != nil {
		ridLoc := loc
		if tz := param(rid, "TZID"); tz != "" {
			if l, err := time.LoadLocation(tz); err == nil {
				ridLoc = l
			}
		}
		if t, err := parseICSTime(rid.Value, ridLoc); err == nil {
			out.Recurrence = &t
			out.IsOverride = true
		}
	}

	return out, nil
}

// relocateFloating re-reads a value without TZID and without a trailing Z
// in loc; the library reads those in time.Local.
func relocateFloating(t time.Time, p *ical.IANAProperty, loc *time.Location) time.Time {
	if param(p, "TZID") != "" || strings.HasSuffix(p.Value, "Z") {
		return t
	}
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc)
}

// parseICSTime parses DATE, DATE-TIME and UTC DATE-TIME values. Non-UTC
// values are read in loc.
func parseICSTime(v string, loc *time.Location) (time.Time, error) {
	v = strings.TrimSpace(v)
	switch {
	case v == "":
		return time.Time{}, errors.New("empty time value")
	case strings.HasSuffix(v, "Z"):
		return time.Parse("20060102T150405Z", v)
	case strings.Contains(v, "T"):
		return time.ParseInLocation("20060102T150405", v, loc)
	default:
		return time.ParseInLocation("20060102", v, loc)
	}
}

var durationRE = regexp.MustCompile(`^([+-])?P(?:(\d+)W)?(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

// parseDuration reads an RFC 5545 DURATION value such as PT1H30M or P1D.
func parseDuration(v string) (time.Duration, bool) {
	m := durationRE.FindStringSubmatch(strings.TrimSpace(v))
	if m == nil || v == "P" {
		return 0, false
	}
	num := func(s string) time.Duration {
		n, _ := strconv.Atoi(s)
		return time.Duration(n)
	}
	d := num(m[2])*7*24*time.Hour +
		num(m[3])*24*time.Hour +
		num(m[4])*time.Hour +
		num(m[5])*time.Minute +
		num(m[6])*time.Second
	if m[1] == "-" {
		d = -d
	}
	return d, true
}
