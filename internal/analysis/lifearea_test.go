package analysis

import (
	"testing"

	"lifeplan/internal/model"
)

func TestCategorizeDefaultTable(t *testing.T) {
	tests := []struct {
		name        string
		summary     string
		description string
		want        string
	}{
		{"plain work", "Weekly planning meeting", "", "work"},
		{"fitness keyword", "Gym", "", "fitness"},
		{"case insensitive", "YOGA class", "", "fitness"},
		{"description counts", "Thursday", "guitar lesson", "hobbies"},
		{"specific area beats work", "Sprint training", "", "fitness"},
		{"substring collision is first-match", "Brunch with friends", "", "fitness"},
		{"no match", "Flight to Lisbon", "", ""},
		{"learning before work", "Course review", "", "learning"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Categorize(model.CalendarEvent{Summary: tt.summary, Description: tt.description}, DefaultKeywords)
			if got != tt.want {
				t.Errorf("Categorize(%q, %q) = %q, want %q", tt.summary, tt.description, got, tt.want)
			}
		})
	}
}

func TestCategorizeOverrideTableOrder(t *testing.T) {
	table := model.KeywordTable{
		{Area: "work", Keywords: []string{"review"}},
		{Area: "learning", Keywords: []string{"course"}},
	}
	got := Categorize(model.CalendarEvent{Summary: "Course review"}, table)
	if got != "work" {
		t.Fatalf("Categorize() = %q, want work (first rule wins)", got)
	}
}

func TestBreakdown(t *testing.T) {
	prefs := testPrefs()
	events := []model.CalendarEvent{
		ev("a", "Team meeting", monday, "09:00", "09:50"),
		ev("b", "Gym", monday, "07:00", "08:30"),
		ev("c", "Unrelated", monday, "12:00", "13:00"),
		ev("d", "Dentist appointment", monday, "15:00", "16:00"), // personal, not configured
	}
	got := newUTC().Breakdown(events, prefs)
	want := []model.LifeAreaBreakdown{
		{Area: "work", ScheduledHours: 0.8, TargetHours: 40, Delta: -39.2},
		{Area: "fitness", ScheduledHours: 1.5, TargetHours: 5, Delta: -3.5},
	}
	if len(got) != len(want) {
		t.Fatalf("Breakdown() = %+v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Breakdown()[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestBreakdownUsesOverrideKeywords(t *testing.T) {
	prefs := testPrefs()
	prefs.CategoryKeywords = model.KeywordTable{
		{Area: "fitness", Keywords: []string{"padel"}},
	}
	events := []model.CalendarEvent{
		ev("a", "Padel", monday, "18:00", "19:00"),
		ev("b", "Gym", monday, "07:00", "08:00"),
	}
	got := newUTC().Breakdown(events, prefs)
	if got[1].ScheduledHours != 1 {
		t.Fatalf("fitness hours = %v, want 1 (gym is not in the override table)", got[1].ScheduledHours)
	}
}
