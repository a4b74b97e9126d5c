package ics

import (
	"errors"
	"sort"
	"time"

	"github.com/teambition/rrule-go"

	appLog "lifeplan/internal/log"
	"lifeplan/internal/model"
)

const defaultMaxOccurrencesPerEvent = 5000

// ExpandConfig controls recurrence expansion.
type ExpandConfig struct {
	// DisplayLocation is the zone occurrences are converted to. nil means
	// time.Local.
	DisplayLocation *time.Location

	// Occurrences intersecting [RangeStart, RangeEnd) are produced.
	RangeStart time.Time
	RangeEnd   time.Time

	// MaxOccurrencesPerEvent caps runaway rules; zero means 5000.
	MaxOccurrencesPerEvent int
}

type ExpandResult struct {
	// Occurrences are sorted by start, then UID.
	Occurrences []model.Occurrence
	// TruncatedEvents lists UIDs that hit MaxOccurrencesPerEvent.
	TruncatedEvents []string
}

// ExpandOccurrences turns parsed events into concrete occurrences within the
// configured range, applying RRULE, EXDATE and RECURRENCE-ID overrides.
func ExpandOccurrences(events []ParsedEvent, cfg ExpandConfig) (ExpandResult, error) {
	var result ExpandResult

	if cfg.RangeEnd.Before(cfg.RangeStart) {
		return result, errors.New("expand: RangeEnd is before RangeStart")
	}
	if cfg.DisplayLocation == nil {
		cfg.DisplayLocation = time.Local
	}
	if cfg.MaxOccurrencesPerEvent <= 0 {
		cfg.MaxOccurrencesPerEvent = defaultMaxOccurrencesPerEvent
	}

	// Overrides are keyed by source as well as UID; two calendars may
	// legitimately reuse a UID.
	type key struct{ source, uid string }
	var order []key
	base := make(map[key][]ParsedEvent)
	overrides := make(map[key][]ParsedEvent)
	for _, ev := range events {
		k := key{ev.Source.ID, ev.UID}
		if ev.IsOverride && ev.Recurrence != nil {
			overrides[k] = append(overrides[k], ev)
			continue
		}
		if _, seen := base[k]; !seen {
			order = append(order, k)
		}
		base[k] = append(base[k], ev)
	}

	all := make([]model.Occurrence, 0)
	for _, k := range order {
		truncated := false
		for _, ev := range base[k] {
			occ, hitCap := expandEvent(ev, overrides[k], cfg)
			truncated = truncated || hitCap
			all = append(all, occ...)
		}
		if truncated {
			result.TruncatedEvents = append(result.TruncatedEvents, k.uid)
			appLog.Warn("expand: occurrences truncated", "uid", k.uid, "cap", cfg.MaxOccurrencesPerEvent)
		}
	}

	sort.SliceStable(all, func(i, j int) bool {
		if !all[i].Start.Equal(all[j].Start) {
			return all[i].Start.Before(all[j].Start)
		}
		return all[i].UID < all[j].UID
	})
	result.Occurrences = all
	return result, nil
}

func expandEvent(ev ParsedEvent, overrides []ParsedEvent, cfg ExpandConfig) ([]model.Occurrence, bool) {
	if ev.RawRRule == "" {
		return expandSingleEvent(ev, overrides, cfg), false
	}
	return expandRecurringEvent(ev, overrides, cfg)
}

func expandSingleEvent(ev ParsedEvent, overrides []ParsedEvent, cfg ExpandConfig) []model.Occurrence {
	start, end := ev.Start, ev.End
	if o, ok := findOverrideForStart(overrides, start); ok {
		start, end, ev = o.Start, o.End, o
	}
	if !Intersects(start, end, cfg.RangeStart, cfg.RangeEnd) {
		return nil
	}
	return []model.Occurrence{makeOccurrence(ev, start, end, cfg.DisplayLocation, false)}
}

func expandRecurringEvent(ev ParsedEvent, overrides []ParsedEvent, cfg ExpandConfig) ([]model.Occurrence, bool) {
	r, err := rrule.StrToRRule(ev.RawRRule)
	if err != nil {
		appLog.Error("expand: bad RRULE", err, "uid", ev.UID, "rrule", ev.RawRRule)
		return nil, false
	}
	r.DTStart(ev.Start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range ev.ExDates {
		set.ExDate(ex.In(ev.Start.Location()))
	}

	// Widen the lower bound by the event duration so an occurrence that
	// started before the range but is still running is kept.
	dur := ev.End.Sub(ev.Start)
	from := cfg.RangeStart.Add(-dur).In(ev.Start.Location())
	to := cfg.RangeEnd.In(ev.Start.Location())
	starts := set.Between(from, to, true)

	hitCap := false
	if len(starts) > cfg.MaxOccurrencesPerEvent {
		starts = starts[:cfg.MaxOccurrencesPerEvent]
		hitCap = true
	}

	out := make([]model.Occurrence, 0, len(starts))
	for _, s := range starts {
		var e time.Time
		if ev.AllDay {
			s = time.Date(s.Year(), s.Month(), s.Day(), 0, 0, 0, 0, s.Location())
			days := int(dur.Hours()/24 + 0.5)
			if days < 1 {
				days = 1
			}
			e = s.AddDate(0, 0, days)
		} else {
			e = s.Add(dur)
		}

		occEv, occStart, occEnd := ev, s, e
		if o, ok := findOverrideForStart(overrides, s); ok {
			occEv, occStart, occEnd = o, o.Start, o.End
		}
		if !Intersects(occStart, occEnd, cfg.RangeStart, cfg.RangeEnd) {
			continue
		}
		out = append(out, makeOccurrence(occEv, occStart, occEnd, cfg.DisplayLocation, true))
	}
	return out, hitCap
}

// findOverrideForStart returns the override whose RECURRENCE-ID equals
// start.
func findOverrideForStart(overrides []ParsedEvent, start time.Time) (ParsedEvent, bool) {
	for _, ov := range overrides {
		if ov.Recurrence != nil && ov.Recurrence.Equal(start) {
			return ov, true
		}
	}
	return ParsedEvent{}, false
}

// makeOccurrence converts an event instance into displayLoc. All-day
// instances keep their calendar date rather than their instant.
func makeOccurrence(ev ParsedEvent, start, end time.Time, displayLoc *time.Location, recurring bool) model.Occurrence {
	if ev.AllDay {
		start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, displayLoc)
		end = time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, displayLoc)
	} else {
		start = start.In(displayLoc)
		end = end.In(displayLoc)
	}
	return model.Occurrence{
		SourceID:    ev.Source.ID,
		UID:         ev.UID,
		InstanceKey: start.Format(time.RFC3339),
		Recurring:   recurring,
		Summary:     ev.Summary,
		Description: ev.Description,
		Location:    ev.Location,
		AllDay:      ev.AllDay,
		Start:       start,
		End:         end,
	}
}

// Intersects reports whether [s, e) meets [from, to). A zero-length or
// inverted event counts when its start lies inside the range.
func Intersects(s, e, from, to time.Time) bool {
	if !e.After(s) {
		return !s.Before(from) && s.Before(to)
	}
	return s.Before(to) && e.After(from)
}
