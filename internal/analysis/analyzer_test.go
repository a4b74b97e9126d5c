package analysis

import (
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"lifeplan/internal/model"
)

const monday = "2025-06-09"

func testPrefs() model.UserPreferences {
	return model.UserPreferences{
		EnergyPatterns: model.EnergyPatterns{
			HighEnergy:   []model.TimeRange{{Start: "09:00", End: "12:00"}},
			MediumEnergy: []model.TimeRange{{Start: "14:00", End: "17:00"}},
			LowEnergy:    []model.TimeRange{{Start: "13:00", End: "14:00"}, {Start: "18:00", End: "21:00"}},
		},
		LifeAreas: []model.LifeArea{
			{Name: "work", WeeklyTargetHours: 40, Priority: 1},
			{Name: "fitness", WeeklyTargetHours: 5, Priority: 2},
		},
		SchedulingRules: model.SchedulingRules{
			MinBreakBetweenEvents: 15,
			MaxMeetingsPerDay:     6,
		},
	}
}

// ev builds a timed event on date between two HH:MM marks (UTC).
func ev(id, summary, date, start, end string) model.CalendarEvent {
	return model.CalendarEvent{
		ID:      id,
		Summary: summary,
		Start:   model.EventTime{DateTime: date + "T" + start + ":00Z"},
		End:     model.EventTime{DateTime: date + "T" + end + ":00Z"},
	}
}

func newUTC() *Analyzer {
	return New(time.UTC)
}

func sumSlots(slots []model.TimeSlot) float64 {
	var total float64
	for _, s := range slots {
		total += s.Duration
	}
	return total
}

func countType(conflicts []model.Conflict, typ model.ConflictType) int {
	n := 0
	for _, c := range conflicts {
		if c.Type == typ {
			n++
		}
	}
	return n
}

func TestAnalyzeDayEmpty(t *testing.T) {
	a := newUTC()
	got, err := a.AnalyzeDay(nil, testPrefs(), monday)
	if err != nil {
		t.Fatalf("AnalyzeDay() error = %v", err)
	}
	if got.Date != monday {
		t.Errorf("Date = %q, want %q", got.Date, monday)
	}
	if got.Density != model.DensityLight {
		t.Errorf("Density = %s, want light", got.Density)
	}
	if len(got.Conflicts) != 0 {
		t.Errorf("Conflicts = %v, want none", got.Conflicts)
	}
	if len(got.Warnings) != 0 {
		t.Errorf("Warnings = %v, want none", got.Warnings)
	}
	if total := sumSlots(got.FreeSlots); total != 840 {
		t.Errorf("free minutes = %v, want 840", total)
	}
}

func TestAnalyzeDayEmptyWithMondayBlock(t *testing.T) {
	prefs := testPrefs()
	prefs.SchedulingRules.ProtectedBlocks = []model.ProtectedBlock{
		{Day: "monday", Start: "12:00", End: "13:00", Label: "Lunch"},
		{Day: "tuesday", Start: "08:00", End: "09:00", Label: "School run"},
	}
	got, err := newUTC().AnalyzeDay(nil, prefs, monday)
	if err != nil {
		t.Fatalf("AnalyzeDay() error = %v", err)
	}
	if total := sumSlots(got.FreeSlots); total != 780 {
		t.Errorf("free minutes = %v, want 780", total)
	}
	if len(got.FreeSlots) != 2 {
		t.Fatalf("slots = %d, want 2", len(got.FreeSlots))
	}
	if got.FreeSlots[1].Start.Hour() != 13 {
		t.Errorf("second slot starts at %v, want 13:00", got.FreeSlots[1].Start)
	}
}

func TestAnalyzeDayInvalidDate(t *testing.T) {
	if _, err := newUTC().AnalyzeDay(nil, testPrefs(), "06/09/2025"); err == nil {
		t.Fatal("expected error for malformed date")
	}
}

func TestOverlapScenario(t *testing.T) {
	events := []model.CalendarEvent{
		ev("a", "Design review", monday, "10:00", "11:00"),
		ev("b", "Client call", monday, "10:30", "11:30"),
	}
	got, err := newUTC().AnalyzeDay(events, testPrefs(), monday)
	if err != nil {
		t.Fatalf("AnalyzeDay() error = %v", err)
	}
	if n := countType(got.Conflicts, model.ConflictOverlap); n != 1 {
		t.Fatalf("overlap conflicts = %d, want 1", n)
	}
	c := got.Conflicts[0]
	if c.Severity != model.SeverityHigh {
		t.Errorf("Severity = %s, want high", c.Severity)
	}
	if !reflect.DeepEqual(c.AffectedEvents, []string{"a", "b"}) {
		t.Errorf("AffectedEvents = %v, want [a b]", c.AffectedEvents)
	}
}

func TestOverlapSymmetry(t *testing.T) {
	a := newUTC()
	x := ev("x", "One", monday, "09:00", "10:00")
	y := ev("y", "Two", monday, "09:30", "09:45")
	forward := a.detectOverlaps([]model.CalendarEvent{x, y})
	backward := a.detectOverlaps([]model.CalendarEvent{y, x})
	if len(forward) != 1 || len(backward) != 1 {
		t.Fatalf("overlaps forward=%d backward=%d, want 1 each", len(forward), len(backward))
	}
}

func TestBackToBackIsNotOverlap(t *testing.T) {
	events := []model.CalendarEvent{
		ev("a", "First", monday, "09:00", "10:00"),
		ev("b", "Second", monday, "10:00", "11:00"),
	}
	got, err := newUTC().AnalyzeDay(events, testPrefs(), monday)
	if err != nil {
		t.Fatalf("AnalyzeDay() error = %v", err)
	}
	if n := countType(got.Conflicts, model.ConflictOverlap); n != 0 {
		t.Errorf("overlap conflicts = %d, want 0", n)
	}
	if len(got.Warnings) != 1 || !strings.Contains(got.Warnings[0], "1 back-to-back") {
		t.Errorf("Warnings = %v, want one back-to-back warning", got.Warnings)
	}
}

func TestOverlapDropsMissingIDs(t *testing.T) {
	events := []model.CalendarEvent{
		ev("", "No id", monday, "10:00", "11:00"),
		ev("b", "Has id", monday, "10:15", "10:45"),
	}
	conflicts := newUTC().detectOverlaps(events)
	if len(conflicts) != 1 {
		t.Fatalf("conflicts = %d, want 1", len(conflicts))
	}
	if !reflect.DeepEqual(conflicts[0].AffectedEvents, []string{"b"}) {
		t.Errorf("AffectedEvents = %v, want [b]", conflicts[0].AffectedEvents)
	}
}

func TestOvercommitment(t *testing.T) {
	starts := []string{"07:00", "07:30", "08:00", "08:30", "09:00", "09:30", "10:00", "10:30"}
	ends := []string{"07:30", "08:00", "08:30", "09:00", "09:30", "10:00", "10:30", "11:00"}
	build := func(n int) []model.CalendarEvent {
		out := make([]model.CalendarEvent, 0, n)
		for i := 0; i < n; i++ {
			out = append(out, ev(fmt.Sprintf("e%d", i), "Meeting", monday, starts[i], ends[i]))
		}
		return out
	}

	tests := []struct {
		name     string
		n        int
		wantN    int
		severity model.Severity
	}{
		{"at limit", 6, 0, ""},
		{"one over", 7, 1, model.SeverityMedium},
		{"two over", 8, 1, model.SeverityHigh},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := detectOvercommitment(build(tt.n), model.SchedulingRules{MaxMeetingsPerDay: 6})
			if len(got) != tt.wantN {
				t.Fatalf("conflicts = %d, want %d", len(got), tt.wantN)
			}
			if tt.wantN == 1 && got[0].Severity != tt.severity {
				t.Errorf("Severity = %s, want %s", got[0].Severity, tt.severity)
			}
		})
	}
}

func TestEightHalfHourEventsWithLimitSix(t *testing.T) {
	events := make([]model.CalendarEvent, 0, 8)
	for i := 0; i < 8; i++ {
		h := 9 + i
		events = append(events, ev(fmt.Sprintf("e%d", i), "Sync", monday, fmt.Sprintf("%02d:00", h), fmt.Sprintf("%02d:30", h)))
	}
	prefs := testPrefs()
	prefs.SchedulingRules.MaxMeetingsPerDay = 6

	got, err := newUTC().AnalyzeDay(events, prefs, monday)
	if err != nil {
		t.Fatalf("AnalyzeDay() error = %v", err)
	}
	if n := countType(got.Conflicts, model.ConflictOvercommitment); n != 1 {
		t.Fatalf("overcommitment conflicts = %d, want 1", n)
	}
	for _, c := range got.Conflicts {
		if c.Type != model.ConflictOvercommitment {
			continue
		}
		if c.Severity != model.SeverityHigh {
			t.Errorf("Severity = %s, want high", c.Severity)
		}
		if len(c.AffectedEvents) != 8 {
			t.Errorf("AffectedEvents = %d, want 8", len(c.AffectedEvents))
		}
	}
}

func TestEnergyMismatch(t *testing.T) {
	tests := []struct {
		name  string
		event model.CalendarEvent
		want  int
	}{
		{"90 minutes in low window", ev("a", "Deep work", monday, "13:00", "14:30"), 1},
		{"30 minutes in low window", ev("a", "Deep work", monday, "13:00", "13:30"), 0},
		{"exactly 60 minutes in low window", ev("a", "Deep work", monday, "18:00", "19:00"), 1},
		{"90 minutes in high window", ev("a", "Deep work", monday, "09:00", "10:30"), 0},
		{"starts before low window", ev("a", "Deep work", monday, "12:30", "14:00"), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := newUTC().AnalyzeDay([]model.CalendarEvent{tt.event}, testPrefs(), monday)
			if err != nil {
				t.Fatalf("AnalyzeDay() error = %v", err)
			}
			if n := countType(got.Conflicts, model.ConflictEnergyMismatch); n != tt.want {
				t.Errorf("energy mismatches = %d, want %d", n, tt.want)
			}
			for _, c := range got.Conflicts {
				if c.Type == model.ConflictEnergyMismatch && c.Severity != model.SeverityMedium {
					t.Errorf("Severity = %s, want medium", c.Severity)
				}
			}
		})
	}
}

func TestDetectorsDoNotSuppressEachOther(t *testing.T) {
	events := []model.CalendarEvent{
		ev("a", "Workshop", monday, "13:00", "15:00"),
		ev("b", "Call", monday, "14:00", "14:30"),
	}
	prefs := testPrefs()
	prefs.SchedulingRules.MaxMeetingsPerDay = 1

	got, err := newUTC().AnalyzeDay(events, prefs, monday)
	if err != nil {
		t.Fatalf("AnalyzeDay() error = %v", err)
	}
	want := []model.ConflictType{model.ConflictOverlap, model.ConflictOvercommitment, model.ConflictEnergyMismatch}
	if len(got.Conflicts) != len(want) {
		t.Fatalf("conflicts = %v, want %v", got.Conflicts, want)
	}
	for i, typ := range want {
		if got.Conflicts[i].Type != typ {
			t.Errorf("conflict[%d] = %s, want %s", i, got.Conflicts[i].Type, typ)
		}
	}
}

func TestDensityFor(t *testing.T) {
	tests := []struct {
		hours float64
		want  model.Density
	}{
		{0, model.DensityLight},
		{3.99, model.DensityLight},
		{4, model.DensityModerate},
		{5.99, model.DensityModerate},
		{6, model.DensityHeavy},
		{7.99, model.DensityHeavy},
		{8, model.DensityOverloaded},
		{12, model.DensityOverloaded},
	}
	for _, tt := range tests {
		if got := DensityFor(tt.hours); got != tt.want {
			t.Errorf("DensityFor(%v) = %s, want %s", tt.hours, got, tt.want)
		}
	}
}

func TestDensityCountsOverlapsTwice(t *testing.T) {
	events := []model.CalendarEvent{
		ev("a", "A", monday, "09:00", "11:00"),
		ev("b", "B", monday, "09:00", "11:00"),
	}
	if got := newUTC().ScheduledHours(events); got != 4 {
		t.Fatalf("ScheduledHours() = %v, want 4", got)
	}
}

func TestDensityMonotonic(t *testing.T) {
	a := newUTC()
	all := []model.CalendarEvent{
		ev("a", "A", monday, "08:00", "10:00"),
		ev("b", "B", monday, "10:00", "12:30"),
		ev("c", "C", monday, "13:00", "15:00"),
		ev("d", "D", monday, "15:00", "17:00"),
	}
	prevHours := -1.0
	prevScore := 0
	for n := 0; n <= len(all); n++ {
		hours := a.ScheduledHours(all[:n])
		score := densityScore(DensityFor(hours))
		if hours < prevHours || score < prevScore {
			t.Fatalf("subset of %d events: hours %v (prev %v), score %d (prev %d)", n, hours, prevHours, score, prevScore)
		}
		prevHours, prevScore = hours, score
	}
}

func TestIdempotent(t *testing.T) {
	a := newUTC()
	events := []model.CalendarEvent{
		ev("a", "Gym workout", monday, "07:30", "08:30"),
		ev("b", "Team meeting", monday, "10:00", "11:00"),
		ev("c", "Client call", monday, "10:30", "12:00"),
	}
	first, err := a.AnalyzeDay(events, testPrefs(), monday)
	if err != nil {
		t.Fatalf("AnalyzeDay() error = %v", err)
	}
	second, err := a.AnalyzeDay(events, testPrefs(), monday)
	if err != nil {
		t.Fatalf("AnalyzeDay() error = %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("AnalyzeDay not idempotent:\n%+v\n%+v", first, second)
	}
	if events[0].ID != "a" || events[2].ID != "c" {
		t.Fatal("input events were reordered")
	}
}

func TestTimestampWithoutOffsetIsLocal(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*3600)
	a := New(loc)
	events := []model.CalendarEvent{{
		ID:      "focus",
		Summary: "Deep work",
		Start:   model.EventTime{DateTime: monday + "T10:00:00"},
		End:     model.EventTime{DateTime: monday + "T12:00:00"},
	}}

	if hours := a.ScheduledHours(events); hours != 2 {
		t.Errorf("ScheduledHours = %v, want 2", hours)
	}
	got, err := a.AnalyzeDay(events, testPrefs(), monday)
	if err != nil {
		t.Fatalf("AnalyzeDay() error = %v", err)
	}
	if total := sumSlots(got.FreeSlots); total != 720 {
		t.Errorf("free minutes = %v, want 720", total)
	}
	if len(got.FreeSlots) == 0 || !got.FreeSlots[0].End.Equal(time.Date(2025, 6, 9, 10, 0, 0, 0, loc)) {
		t.Errorf("first slot = %+v, want it to end at 10:00 local", got.FreeSlots)
	}
}

func TestDegenerateEventDoesNotFail(t *testing.T) {
	events := []model.CalendarEvent{
		{ID: "broken", Summary: "No times"},
		{ID: "garbage", Start: model.EventTime{DateTime: "not-a-time"}, End: model.EventTime{DateTime: "x"}},
	}
	got, err := newUTC().AnalyzeDay(events, testPrefs(), monday)
	if err != nil {
		t.Fatalf("AnalyzeDay() error = %v", err)
	}
	if got.Density != model.DensityLight {
		t.Errorf("Density = %s, want light", got.Density)
	}
	if total := sumSlots(got.FreeSlots); total != 840 {
		t.Errorf("free minutes = %v, want 840", total)
	}
}

func TestWarningsOverload(t *testing.T) {
	events := []model.CalendarEvent{
		ev("a", "A", monday, "07:00", "11:00"),
		ev("b", "B", monday, "12:00", "16:30"),
	}
	got, err := newUTC().AnalyzeDay(events, testPrefs(), monday)
	if err != nil {
		t.Fatalf("AnalyzeDay() error = %v", err)
	}
	if got.Density != model.DensityOverloaded {
		t.Errorf("Density = %s, want overloaded", got.Density)
	}
	found := false
	for _, w := range got.Warnings {
		if strings.HasPrefix(w, "8.5 hours") {
			found = true
		}
	}
	if !found {
		t.Errorf("Warnings = %v, want an 8.5 hours overload warning", got.Warnings)
	}
}

func TestBackToBackCount(t *testing.T) {
	events := []model.CalendarEvent{
		ev("c", "C", monday, "11:00", "12:00"),
		ev("a", "A", monday, "09:00", "10:00"),
		ev("b", "B", monday, "10:10", "10:50"),
		ev("d", "D", monday, "12:30", "13:00"),
	}
	// a->b gap 10 (<15), b->c gap 10 (<15), c->d gap 30.
	if got := newUTC().backToBackCount(events, 15); got != 2 {
		t.Fatalf("backToBackCount() = %d, want 2", got)
	}
}

func TestHabitGaps(t *testing.T) {
	status := model.HabitStatus{
		Date: monday,
		Habits: []model.HabitEntry{
			{Name: "read", Done: true},
			{Name: "stretch", Done: false},
		},
	}
	got := HabitGaps(status)
	if len(got) != 1 {
		t.Fatalf("HabitGaps() = %d, want 1", len(got))
	}
	if got[0].Type != model.ConflictHabitGap || got[0].Severity != model.SeverityLow {
		t.Errorf("conflict = %+v", got[0])
	}
}
