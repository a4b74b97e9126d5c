package analysis

import (
	"math"

	"lifeplan/internal/model"
)

// ScheduledHours sums event durations. Overlapping time is counted once per
// event, so two parallel one-hour meetings add up to two hours.
func (a *Analyzer) ScheduledHours(events []model.CalendarEvent) float64 {
	loc := a.loc()
	var minutes float64
	for _, ev := range events {
		minutes += ev.Minutes(loc)
	}
	return minutes / 60
}

// DensityFor maps scheduled hours onto a busyness band.
func DensityFor(hours float64) model.Density {
	switch {
	case hours < 4:
		return model.DensityLight
	case hours < 6:
		return model.DensityModerate
	case hours < 8:
		return model.DensityHeavy
	default:
		return model.DensityOverloaded
	}
}

// densityScore is the numeric form used for weekly averaging.
func densityScore(d model.Density) int {
	switch d {
	case model.DensityLight:
		return 1
	case model.DensityModerate:
		return 2
	case model.DensityHeavy:
		return 3
	case model.DensityOverloaded:
		return 4
	default:
		return 0
	}
}

// densityFromScore re-buckets an averaged score.
func densityFromScore(score float64) model.Density {
	switch {
	case score <= 1.5:
		return model.DensityLight
	case score <= 2.5:
		return model.DensityModerate
	case score <= 3.5:
		return model.DensityHeavy
	default:
		return model.DensityOverloaded
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
