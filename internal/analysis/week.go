package analysis

import (
	"sort"

	"lifeplan/internal/model"
)

// DayEvents is one day's worth of events for week analysis.
type DayEvents struct {
	Date   string
	Events []model.CalendarEvent
}

// AnalyzeWeek analyzes each supplied day independently, in the order given,
// and aggregates event counts, density and life-area hours.
func (a *Analyzer) AnalyzeWeek(days []DayEvents, prefs model.UserPreferences, startDate, endDate string) (model.WeekAnalysis, error) {
	result := model.WeekAnalysis{
		StartDate: startDate,
		EndDate:   endDate,
		Days:      make([]model.ScheduleAnalysis, 0, len(days)),
	}

	totalEvents := 0
	scoreSum := 0
	areaHours := make([]float64, len(prefs.LifeAreas))

	for _, d := range days {
		day, err := a.AnalyzeDay(d.Events, prefs, d.Date)
		if err != nil {
			return model.WeekAnalysis{}, err
		}
		result.Days = append(result.Days, day)

		totalEvents += len(d.Events)
		scoreSum += densityScore(day.Density)
		for i, b := range day.LifeAreaBreakdown {
			areaHours[i] += b.ScheduledHours
		}
	}

	avg := 0.0
	if len(days) > 0 {
		avg = float64(scoreSum) / float64(len(days))
	}

	breakdown := make([]model.LifeAreaBreakdown, 0, len(prefs.LifeAreas))
	for i, la := range prefs.LifeAreas {
		scheduled := round1(areaHours[i])
		breakdown = append(breakdown, model.LifeAreaBreakdown{
			Area:           la.Name,
			ScheduledHours: scheduled,
			TargetHours:    la.WeeklyTargetHours,
			Delta:          round1(scheduled - la.WeeklyTargetHours),
		})
	}

	result.Summary = model.WeekSummary{
		TotalEvents:       totalEvents,
		AverageDensity:    densityFromScore(avg),
		LifeAreaBreakdown: breakdown,
	}
	return result, nil
}

// AnalyzeWeekMap is AnalyzeWeek over a date-keyed map. Days are analyzed in
// ascending date order so the result does not depend on map iteration.
func (a *Analyzer) AnalyzeWeekMap(eventsByDate map[string][]model.CalendarEvent, prefs model.UserPreferences, startDate, endDate string) (model.WeekAnalysis, error) {
	dates := make([]string, 0, len(eventsByDate))
	for d := range eventsByDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	days := make([]DayEvents, 0, len(dates))
	for _, d := range dates {
		days = append(days, DayEvents{Date: d, Events: eventsByDate[d]})
	}
	return a.AnalyzeWeek(days, prefs, startDate, endDate)
}
