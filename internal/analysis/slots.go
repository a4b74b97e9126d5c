package analysis

import (
	"strings"
	"time"

	"lifeplan/internal/interval"
	"lifeplan/internal/model"
)

// window returns the [07:00, 21:00) analysis window for date.
func (a *Analyzer) window(date string) (interval.Interval, error) {
	day, err := a.dayStart(date)
	if err != nil {
		return interval.Interval{}, err
	}
	return interval.Interval{
		Start: atMinute(day, WindowStartMinute),
		End:   atMinute(day, WindowEndMinute),
	}, nil
}

// atMinute returns wall-clock minute m on day's date, in day's location.
func atMinute(day time.Time, m int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), m/60, m%60, 0, 0, day.Location())
}

// clip trims iv to w. ok is false when nothing of iv lies inside w.
func clip(iv, w interval.Interval) (interval.Interval, bool) {
	if iv.Start.Before(w.Start) {
		iv.Start = w.Start
	}
	if iv.End.After(w.End) {
		iv.End = w.End
	}
	if !iv.End.After(iv.Start) {
		return interval.Interval{}, false
	}
	return iv, true
}

// BusyIntervals returns the merged busy time inside date's window: clipped
// events plus the protected blocks for date's weekday.
func (a *Analyzer) BusyIntervals(events []model.CalendarEvent, prefs model.UserPreferences, date string) ([]interval.Interval, error) {
	w, err := a.window(date)
	if err != nil {
		return nil, err
	}
	loc := a.loc()

	busy := make([]interval.Interval, 0, len(events))
	for _, ev := range events {
		start, end := ev.Span(loc)
		if iv, ok := clip(interval.Interval{Start: start, End: end}, w); ok {
			busy = append(busy, iv)
		}
	}

	weekday := w.Start.Weekday().String()
	for _, block := range prefs.SchedulingRules.ProtectedBlocks {
		if !strings.EqualFold(strings.TrimSpace(block.Day), weekday) {
			continue
		}
		iv := interval.Interval{
			Start: atMinute(w.Start, interval.TimeToMinutes(block.Start)),
			End:   atMinute(w.Start, interval.TimeToMinutes(block.End)),
		}
		if iv, ok := clip(iv, w); ok {
			busy = append(busy, iv)
		}
	}

	return interval.Merge(busy), nil
}

// FindFreeSlots walks date's [07:00, 21:00) window and returns every gap of
// at least minDuration minutes between busy intervals. Each slot is labelled
// with the energy level at its start; when energy is non-empty, slots at any
// other level are dropped whole.
func (a *Analyzer) FindFreeSlots(events []model.CalendarEvent, prefs model.UserPreferences, date string, minDuration int, energy model.EnergyLevel) ([]model.TimeSlot, error) {
	w, err := a.window(date)
	if err != nil {
		return nil, err
	}
	busy, err := a.BusyIntervals(events, prefs, date)
	if err != nil {
		return nil, err
	}

	gaps := make([]interval.Interval, 0, len(busy)+1)
	cursor := w.Start
	for _, b := range busy {
		if b.Start.After(cursor) {
			gaps = append(gaps, interval.Interval{Start: cursor, End: b.Start})
		}
		if b.End.After(cursor) {
			cursor = b.End
		}
	}
	if w.End.After(cursor) {
		gaps = append(gaps, interval.Interval{Start: cursor, End: w.End})
	}

	slots := make([]model.TimeSlot, 0, len(gaps))
	for _, g := range gaps {
		minutes := g.Minutes()
		if minutes < float64(minDuration) {
			continue
		}
		level := interval.EnergyLevelAt(interval.MinuteOfDay(g.Start), prefs.EnergyPatterns)
		if energy != "" && level != energy {
			continue
		}
		slots = append(slots, model.TimeSlot{
			Start:       g.Start,
			End:         g.End,
			Duration:    minutes,
			EnergyLevel: level,
		})
	}
	return slots, nil
}
