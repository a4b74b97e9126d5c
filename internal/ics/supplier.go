package ics

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"lifeplan/internal/analysis"
	appLog "lifeplan/internal/log"
	"lifeplan/internal/model"
)

// DefaultMaxAge is how long parsed feeds are reused before GetEvents
// fetches again.
const DefaultMaxAge = 5 * time.Minute

// Supplier serves CalendarEvents from a fixed set of ICS sources. Parsed
// feeds are kept in memory and refreshed when older than MaxAge or when
// Refresh is called.
type Supplier struct {
	fetcher *Fetcher
	sources []Source
	loc     *time.Location

	MaxAge time.Duration

	mu       sync.Mutex
	parsed   []ParsedEvent
	loadedAt time.Time
	now      func() time.Time
}

func NewSupplier(fetcher *Fetcher, sources []Source, loc *time.Location) *Supplier {
	if loc == nil {
		loc = time.Local
	}
	return &Supplier{
		fetcher: fetcher,
		sources: append([]Source(nil), sources...),
		loc:     loc,
		MaxAge:  DefaultMaxAge,
		now:     time.Now,
	}
}

// Sources returns the configured calendars.
func (s *Supplier) Sources() []Source {
	return append([]Source(nil), s.sources...)
}

// Refresh fetches and parses every source. Sources that fail keep nothing;
// when every source fails the previously loaded events are kept and the
// joined error is returned.
func (s *Supplier) Refresh(ctx context.Context) error {
	results, errs := s.fetcher.FetchAll(ctx, s.sources)

	parsed := make([]ParsedEvent, 0)
	for _, res := range results {
		evs, err := ParseICS(res.Source, res.Body, s.loc)
		if err != nil {
			errs = append(errs, fmt.Errorf("calendar %s: %w", res.Source.ID, err))
			continue
		}
		parsed = append(parsed, evs...)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sources) > 0 && len(errs) == len(s.sources) {
		return errors.Join(errs...)
	}
	s.parsed = parsed
	s.loadedAt = s.now()
	appLog.Info("calendars refreshed", "sources", len(s.sources), "failed", len(errs), "events", len(parsed))
	return nil
}

func (s *Supplier) snapshot(ctx context.Context) ([]ParsedEvent, error) {
	s.mu.Lock()
	stale := s.loadedAt.IsZero() || s.now().Sub(s.loadedAt) > s.MaxAge
	s.mu.Unlock()

	if stale {
		if err := s.Refresh(ctx); err != nil {
			s.mu.Lock()
			loaded := !s.loadedAt.IsZero()
			s.mu.Unlock()
			if !loaded {
				return nil, err
			}
			appLog.Error("calendar refresh failed; serving previous events", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.parsed, nil
}

// GetEvents returns events from every calendar intersecting
// [timeMin, timeMax), sorted by start.
func (s *Supplier) GetEvents(ctx context.Context, timeMin, timeMax time.Time) ([]model.CalendarEvent, error) {
	return s.GetEventsMultiCalendar(ctx, timeMin, timeMax, nil)
}

// GetEventsMultiCalendar is GetEvents limited to calendarIDs. An empty list
// selects every calendar.
func (s *Supplier) GetEventsMultiCalendar(ctx context.Context, timeMin, timeMax time.Time, calendarIDs []string) ([]model.CalendarEvent, error) {
	parsed, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	if len(calendarIDs) > 0 {
		want := make(map[string]bool, len(calendarIDs))
		for _, id := range calendarIDs {
			want[id] = true
		}
		filtered := make([]ParsedEvent, 0, len(parsed))
		for _, ev := range parsed {
			if want[ev.Source.ID] {
				filtered = append(filtered, ev)
			}
		}
		parsed = filtered
	}

	res, err := ExpandOccurrences(parsed, ExpandConfig{
		DisplayLocation: s.loc,
		RangeStart:      timeMin,
		RangeEnd:        timeMax,
	})
	if err != nil {
		return nil, err
	}

	return ToCalendarEvents(res.Occurrences), nil
}

// EventsForDay returns the events intersecting date (YYYY-MM-DD) in the
// supplier location.
func (s *Supplier) EventsForDay(ctx context.Context, date string) ([]model.CalendarEvent, error) {
	day, err := time.ParseInLocation(model.DateLayout, date, s.loc)
	if err != nil {
		return nil, model.Invalidf("date %q: %w", date, err)
	}
	return s.GetEvents(ctx, day, day.AddDate(0, 0, 1))
}

// ToCalendarEvent converts an occurrence to the analysis event shape.
// Recurring instances get "<uid>_<start>" ids so each one is distinct.
func ToCalendarEvent(occ model.Occurrence) model.CalendarEvent {
	ev := model.CalendarEvent{
		ID:          occ.UID,
		CalendarID:  occ.SourceID,
		Summary:     occ.Summary,
		Description: occ.Description,
		Location:    occ.Location,
	}
	if occ.AllDay {
		ev.Start.Date = occ.Start.Format(model.DateLayout)
		ev.End.Date = occ.End.Format(model.DateLayout)
		if occ.Recurring {
			ev.ID = occ.UID + "_" + occ.Start.Format("20060102")
		}
		return ev
	}
	ev.Start.DateTime = occ.Start.Format(time.RFC3339)
	ev.End.DateTime = occ.End.Format(time.RFC3339)
	if occ.Recurring {
		ev.ID = occ.UID + "_" + occ.Start.UTC().Format("20060102T150405Z")
	}
	return ev
}

// ToCalendarEvents converts occurrences in order.
func ToCalendarEvents(occs []model.Occurrence) []model.CalendarEvent {
	out := make([]model.CalendarEvent, 0, len(occs))
	for _, occ := range occs {
		out = append(out, ToCalendarEvent(occ))
	}
	return out
}

// GroupByDate assigns events to each date in [startDate, endDate] they
// intersect, in loc. Every date in the range is present, in order, even
// when it has no events.
func GroupByDate(events []model.CalendarEvent, loc *time.Location, startDate, endDate string) ([]analysis.DayEvents, error) {
	if loc == nil {
		loc = time.Local
	}
	first, err := time.ParseInLocation(model.DateLayout, startDate, loc)
	if err != nil {
		return nil, model.Invalidf("start date %q: %w", startDate, err)
	}
	last, err := time.ParseInLocation(model.DateLayout, endDate, loc)
	if err != nil {
		return nil, model.Invalidf("end date %q: %w", endDate, err)
	}
	if last.Before(first) {
		return nil, model.Invalidf("end date %s is before start date %s", endDate, startDate)
	}

	var days []analysis.DayEvents
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		next := d.AddDate(0, 0, 1)
		day := analysis.DayEvents{Date: d.Format(model.DateLayout), Events: []model.CalendarEvent{}}
		for _, ev := range events {
			s, e := ev.Span(loc)
			if Intersects(s, e, d, next) {
				day.Events = append(day.Events, ev)
			}
		}
		days = append(days, day)
	}
	return days, nil
}
