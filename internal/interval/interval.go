// Package interval holds the small time helpers the analyzer is built on:
// HH:MM parsing, energy classification by minute of day, and interval merge.
package interval

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"lifeplan/internal/model"
)

// TimeToMinutes converts "HH:MM" into minutes since midnight. It is purely
// lexical: no timezone is involved. Missing or non-numeric parts count as 0.
func TimeToMinutes(hhmm string) int {
	h, m, _ := strings.Cut(strings.TrimSpace(hhmm), ":")
	hours, _ := strconv.Atoi(h)
	minutes, _ := strconv.Atoi(m)
	return hours*60 + minutes
}

// MinuteOfDay returns the wall-clock minute of t in its own location.
func MinuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// EnergyLevelAt classifies a minute of day. High ranges are tested first,
// then medium, then low; the first half-open [start, end) match wins.
// A minute covered by no range is medium.
func EnergyLevelAt(minute int, patterns model.EnergyPatterns) model.EnergyLevel {
	tiers := []struct {
		level  model.EnergyLevel
		ranges []model.TimeRange
	}{
		{model.EnergyHigh, patterns.HighEnergy},
		{model.EnergyMedium, patterns.MediumEnergy},
		{model.EnergyLow, patterns.LowEnergy},
	}
	for _, tier := range tiers {
		for _, r := range tier.ranges {
			if minute >= TimeToMinutes(r.Start) && minute < TimeToMinutes(r.End) {
				return tier.level
			}
		}
	}
	return model.EnergyMedium
}

// Interval is a half-open span [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// Minutes is the length of the interval in minutes.
func (iv Interval) Minutes() float64 {
	return iv.End.Sub(iv.Start).Minutes()
}

// Merge sorts intervals by start and coalesces any that overlap or touch.
// The input slice is left untouched.
func Merge(in []Interval) []Interval {
	if len(in) == 0 {
		return []Interval{}
	}
	sorted := make([]Interval, len(in))
	copy(sorted, in)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	out := []Interval{sorted[0]}
	for _, iv := range sorted[1:] {
		last := &out[len(out)-1]
		if !iv.Start.After(last.End) {
			if iv.End.After(last.End) {
				last.End = iv.End
			}
			continue
		}
		out = append(out, iv)
	}
	return out
}
