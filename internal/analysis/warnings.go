package analysis

import (
	"fmt"
	"sort"

	"lifeplan/internal/interval"
	"lifeplan/internal/model"
)

const overloadWarningHours = 8

// warnings builds the advisory messages for a day. They never affect the
// rest of the analysis.
func (a *Analyzer) warnings(events []model.CalendarEvent, rules model.SchedulingRules) []string {
	out := make([]string, 0)

	if n := a.backToBackCount(events, rules.MinBreakBetweenEvents); n > 0 {
		out = append(out, fmt.Sprintf("%d back-to-back transition(s) with less than %d minutes of break",
			n, rules.MinBreakBetweenEvents))
	}

	if hours := a.ScheduledHours(events); hours > overloadWarningHours {
		out = append(out, fmt.Sprintf("%.1f hours scheduled today; consider moving something", hours))
	}
	return out
}

// backToBackCount counts adjacent pairs (by start time) whose gap is
// non-negative but shorter than minBreak minutes.
func (a *Analyzer) backToBackCount(events []model.CalendarEvent, minBreak int) int {
	loc := a.loc()
	spans := make([]interval.Interval, 0, len(events))
	for _, ev := range events {
		start, end := ev.Span(loc)
		spans = append(spans, interval.Interval{Start: start, End: end})
	}
	sort.SliceStable(spans, func(i, j int) bool {
		return spans[i].Start.Before(spans[j].Start)
	})

	count := 0
	for i := 1; i < len(spans); i++ {
		gap := spans[i].Start.Sub(spans[i-1].End).Minutes()
		if gap >= 0 && gap < float64(minBreak) {
			count++
		}
	}
	return count
}
