package analysis

import (
	"fmt"

	"lifeplan/internal/interval"
	"lifeplan/internal/model"
)

// energyMismatchMinMinutes is the shortest event the energy check looks at.
const energyMismatchMinMinutes = 60

// detectOverlaps emits one high-severity conflict per unordered pair of
// events that truly overlap. Back-to-back events do not count.
func (a *Analyzer) detectOverlaps(events []model.CalendarEvent) []model.Conflict {
	loc := a.loc()
	spans := make([]interval.Interval, len(events))
	for i, ev := range events {
		start, end := ev.Span(loc)
		spans[i] = interval.Interval{Start: start, End: end}
	}

	var out []model.Conflict
	for i := 0; i < len(events); i++ {
		for j := i + 1; j < len(events); j++ {
			if !overlaps(spans[i], spans[j]) {
				continue
			}
			out = append(out, model.Conflict{
				Type:     model.ConflictOverlap,
				Severity: model.SeverityHigh,
				Description: fmt.Sprintf("%q overlaps with %q",
					eventLabel(events[i]), eventLabel(events[j])),
				AffectedEvents: eventIDs(events[i], events[j]),
				SuggestedResolutions: []string{
					"Reschedule one of the events",
					"Shorten the earlier event so they no longer overlap",
					"Decline the lower-priority event",
				},
			})
		}
	}
	return out
}

func overlaps(x, y interval.Interval) bool {
	return x.Start.Before(y.End) && y.Start.Before(x.End)
}

// detectOvercommitment flags a day holding more events than the configured
// maximum. Every event of the day is listed, not only meetings. Two or more
// events over the limit is high severity; one over is medium.
func detectOvercommitment(events []model.CalendarEvent, rules model.SchedulingRules) []model.Conflict {
	n := len(events)
	if n <= rules.MaxMeetingsPerDay {
		return nil
	}
	severity := model.SeverityMedium
	if n >= rules.MaxMeetingsPerDay+2 {
		severity = model.SeverityHigh
	}
	return []model.Conflict{{
		Type:     model.ConflictOvercommitment,
		Severity: severity,
		Description: fmt.Sprintf("%d events scheduled, above the daily limit of %d",
			n, rules.MaxMeetingsPerDay),
		AffectedEvents: eventIDs(events...),
		SuggestedResolutions: []string{
			"Move non-urgent events to a lighter day",
			"Convert some meetings to async updates",
			"Decline optional meetings",
		},
	}}
}

// detectEnergyMismatches flags long events that start in a low-energy window.
func (a *Analyzer) detectEnergyMismatches(events []model.CalendarEvent, patterns model.EnergyPatterns) []model.Conflict {
	loc := a.loc()
	var out []model.Conflict
	for _, ev := range events {
		start, end := ev.Span(loc)
		minutes := end.Sub(start).Minutes()
		if minutes < energyMismatchMinMinutes {
			continue
		}
		if interval.EnergyLevelAt(interval.MinuteOfDay(start), patterns) != model.EnergyLow {
			continue
		}
		out = append(out, model.Conflict{
			Type:     model.ConflictEnergyMismatch,
			Severity: model.SeverityMedium,
			Description: fmt.Sprintf("%q (%d min) starts during a low-energy period",
				eventLabel(ev), int(minutes)),
			AffectedEvents: eventIDs(ev),
			SuggestedResolutions: []string{
				"Move it into a high-energy window",
				"Split it into shorter sessions",
			},
		})
	}
	return out
}

// HabitGaps reports one low-severity conflict per habit not yet done on the
// status date. It is not part of AnalyzeDay; callers that track habits
// append it to a day's conflicts themselves.
func HabitGaps(status model.HabitStatus) []model.Conflict {
	var out []model.Conflict
	for _, h := range status.Habits {
		if h.Done {
			continue
		}
		out = append(out, model.Conflict{
			Type:                 model.ConflictHabitGap,
			Severity:             model.SeverityLow,
			Description:          fmt.Sprintf("Habit %q not done on %s", h.Name, status.Date),
			AffectedEvents:       []string{},
			SuggestedResolutions: []string{"Book a free slot for it"},
		})
	}
	return out
}
