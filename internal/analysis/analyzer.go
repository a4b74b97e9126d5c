// Package analysis is the schedule-analysis engine. Every operation is a pure
// function of its arguments: events, preferences, a date, and the location
// the Analyzer was built with. Nothing here performs I/O or reads the clock.
package analysis

import (
	"time"

	"lifeplan/internal/model"
)

// Analysis window for free-slot discovery, in minutes since midnight.
const (
	WindowStartMinute = 7 * 60
	WindowEndMinute   = 21 * 60

	// DefaultMinSlotMinutes is the minimum free-slot length AnalyzeDay uses.
	DefaultMinSlotMinutes = 30
)

// Analyzer evaluates schedules in a fixed location. Dates ("YYYY-MM-DD") and
// HH:MM preference ranges are interpreted as wall-clock time there.
type Analyzer struct {
	Location *time.Location
}

// New returns an Analyzer for loc. A nil loc means time.Local.
func New(loc *time.Location) *Analyzer {
	return &Analyzer{Location: loc}
}

func (a *Analyzer) loc() *time.Location {
	if a == nil || a.Location == nil {
		return time.Local
	}
	return a.Location
}

// dayStart parses date as midnight in the analyzer's location.
func (a *Analyzer) dayStart(date string) (time.Time, error) {
	d, err := time.ParseInLocation(model.DateLayout, date, a.loc())
	if err != nil {
		return time.Time{}, model.Invalidf("date %q: %w", date, err)
	}
	return d, nil
}

// AnalyzeDay runs conflict detection, density, life-area breakdown, free-slot
// discovery and warnings over one day's events. The events slice is only read.
func (a *Analyzer) AnalyzeDay(events []model.CalendarEvent, prefs model.UserPreferences, date string) (model.ScheduleAnalysis, error) {
	if _, err := a.dayStart(date); err != nil {
		return model.ScheduleAnalysis{}, err
	}

	conflicts := make([]model.Conflict, 0)
	conflicts = append(conflicts, a.detectOverlaps(events)...)
	conflicts = append(conflicts, detectOvercommitment(events, prefs.SchedulingRules)...)
	conflicts = append(conflicts, a.detectEnergyMismatches(events, prefs.EnergyPatterns)...)

	slots, err := a.FindFreeSlots(events, prefs, date, DefaultMinSlotMinutes, "")
	if err != nil {
		return model.ScheduleAnalysis{}, err
	}

	return model.ScheduleAnalysis{
		Date:              date,
		Density:           DensityFor(a.ScheduledHours(events)),
		Conflicts:         conflicts,
		LifeAreaBreakdown: a.Breakdown(events, prefs),
		FreeSlots:         slots,
		Warnings:          a.warnings(events, prefs.SchedulingRules),
	}, nil
}

func eventLabel(ev model.CalendarEvent) string {
	if ev.Summary != "" {
		return ev.Summary
	}
	return "Untitled event"
}

// eventIDs keeps only non-empty identifiers.
func eventIDs(events ...model.CalendarEvent) []string {
	ids := make([]string, 0, len(events))
	for _, ev := range events {
		if ev.ID != "" {
			ids = append(ids, ev.ID)
		}
	}
	return ids
}
