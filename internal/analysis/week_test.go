package analysis

import (
	"testing"

	"lifeplan/internal/model"
)

func TestAnalyzeWeekAverageDensity(t *testing.T) {
	days := []DayEvents{
		{Date: "2025-06-09", Events: []model.CalendarEvent{
			ev("a", "Project work", "2025-06-09", "09:00", "16:00"),
		}},
		{Date: "2025-06-10", Events: []model.CalendarEvent{
			ev("b", "Standup", "2025-06-10", "09:00", "09:30"),
		}},
	}
	got, err := newUTC().AnalyzeWeek(days, testPrefs(), "2025-06-09", "2025-06-15")
	if err != nil {
		t.Fatalf("AnalyzeWeek() error = %v", err)
	}
	if got.Summary.AverageDensity != model.DensityModerate {
		t.Errorf("AverageDensity = %s, want moderate", got.Summary.AverageDensity)
	}
	if got.Summary.TotalEvents != 2 {
		t.Errorf("TotalEvents = %d, want 2", got.Summary.TotalEvents)
	}
	if len(got.Days) != 2 || got.Days[0].Density != model.DensityHeavy || got.Days[1].Density != model.DensityLight {
		t.Errorf("Days = %+v", got.Days)
	}
	work := got.Summary.LifeAreaBreakdown[0]
	if work.Area != "work" || work.ScheduledHours != 7.5 || work.TargetHours != 40 || work.Delta != -32.5 {
		t.Errorf("work breakdown = %+v", work)
	}
}

func TestAnalyzeWeekEmpty(t *testing.T) {
	got, err := newUTC().AnalyzeWeek(nil, testPrefs(), "2025-06-09", "2025-06-15")
	if err != nil {
		t.Fatalf("AnalyzeWeek() error = %v", err)
	}
	if got.Summary.AverageDensity != model.DensityLight {
		t.Errorf("AverageDensity = %s, want light", got.Summary.AverageDensity)
	}
	if got.Summary.TotalEvents != 0 || len(got.Days) != 0 {
		t.Errorf("Summary = %+v", got.Summary)
	}
}

func TestDensityFromScore(t *testing.T) {
	tests := []struct {
		score float64
		want  model.Density
	}{
		{0, model.DensityLight},
		{1.5, model.DensityLight},
		{1.51, model.DensityModerate},
		{2.5, model.DensityModerate},
		{3.5, model.DensityHeavy},
		{3.51, model.DensityOverloaded},
	}
	for _, tt := range tests {
		if got := densityFromScore(tt.score); got != tt.want {
			t.Errorf("densityFromScore(%v) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestAnalyzeWeekMapSortsDates(t *testing.T) {
	byDate := map[string][]model.CalendarEvent{
		"2025-06-11": nil,
		"2025-06-09": nil,
		"2025-06-10": nil,
	}
	got, err := newUTC().AnalyzeWeekMap(byDate, testPrefs(), "2025-06-09", "2025-06-11")
	if err != nil {
		t.Fatalf("AnalyzeWeekMap() error = %v", err)
	}
	for i, want := range []string{"2025-06-09", "2025-06-10", "2025-06-11"} {
		if got.Days[i].Date != want {
			t.Errorf("Days[%d] = %s, want %s", i, got.Days[i].Date, want)
		}
	}
}
