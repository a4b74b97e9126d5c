package prefs

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"lifeplan/internal/model"
)

func TestMerge(t *testing.T) {
	tests := []struct {
		name  string
		base  string
		patch string
		want  string
	}{
		{
			name:  "objects merge key by key",
			base:  `{"a":1,"b":{"x":1,"y":2}}`,
			patch: `{"b":{"y":3,"z":4}}`,
			want:  `{"a":1,"b":{"x":1,"y":3,"z":4}}`,
		},
		{
			name:  "arrays are replaced",
			base:  `{"list":[1,2,3]}`,
			patch: `{"list":[9]}`,
			want:  `{"list":[9]}`,
		},
		{
			name:  "new keys are appended in patch order",
			base:  `{"b":1}`,
			patch: `{"z":2,"a":3}`,
			want:  `{"b":1,"z":2,"a":3}`,
		},
		{
			name:  "scalar replaces object",
			base:  `{"a":{"x":1}}`,
			patch: `{"a":null}`,
			want:  `{"a":null}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Merge([]byte(tt.base), []byte(tt.patch))
			if err != nil {
				t.Fatalf("Merge() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("Merge() = %s, want %s", got, tt.want)
			}
		})
	}
}

func newStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "preferences.json")
	s, err := New(path)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s, path
}

func TestGetMissingFileReturnsDefaults(t *testing.T) {
	s, _ := newStore(t)
	got, err := s.Get(context.Background())
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !reflect.DeepEqual(got, model.DefaultPreferences()) {
		t.Errorf("Get() = %+v, want defaults", got)
	}
}

func TestGetAcceptsComments(t *testing.T) {
	s, path := newStore(t)
	doc := `{
  // only override the rules
  "schedulingRules": {"maxMeetingsPerDay": 3, "minBreakBetweenEvents": 10},
  "categoryKeywords": {"work": ["standup"], "fitness": ["padel"]}
}`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}
	got, err := s.Get(context.Background())
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.SchedulingRules.MaxMeetingsPerDay != 3 {
		t.Errorf("MaxMeetingsPerDay = %d, want 3", got.SchedulingRules.MaxMeetingsPerDay)
	}
	if len(got.LifeAreas) != len(model.DefaultPreferences().LifeAreas) {
		t.Errorf("LifeAreas not defaulted: %+v", got.LifeAreas)
	}
	if len(got.CategoryKeywords) != 2 || got.CategoryKeywords[0].Area != "work" || got.CategoryKeywords[1].Area != "fitness" {
		t.Errorf("CategoryKeywords order = %+v, want work then fitness", got.CategoryKeywords)
	}
}

func TestGetRejectsInvalidDocument(t *testing.T) {
	s, path := newStore(t)
	if err := os.WriteFile(path, []byte(`{"energyPatterns": {"highEnergy": [{"start": "nine", "end": "10:00"}]}}`), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(context.Background()); err == nil {
		t.Fatal("Get() accepted an invalid time range")
	}
}

func TestSaveDeepMerges(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)

	if _, err := s.Save(ctx, []byte(`{"schedulingRules": {"maxMeetingsPerDay": 4}}`)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := s.Save(ctx, []byte(`{"lifeAreas": [{"name": "work", "weeklyTargetHours": 30, "priority": 1}]}`))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if got.SchedulingRules.MaxMeetingsPerDay != 4 {
		t.Errorf("MaxMeetingsPerDay = %d, want 4 (kept from first save)", got.SchedulingRules.MaxMeetingsPerDay)
	}
	if got.SchedulingRules.MinBreakBetweenEvents != 15 {
		t.Errorf("MinBreakBetweenEvents = %d, want default 15", got.SchedulingRules.MinBreakBetweenEvents)
	}
	if len(got.LifeAreas) != 1 || got.LifeAreas[0].WeeklyTargetHours != 30 {
		t.Errorf("LifeAreas = %+v, want the replaced single-entry list", got.LifeAreas)
	}

	reread, err := s.Get(ctx)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !reflect.DeepEqual(reread, got) {
		t.Errorf("Get() after Save = %+v, want %+v", reread, got)
	}
}

func TestLifeAreasReplaceDefaultsWhole(t *testing.T) {
	ctx := context.Background()
	s, path := newStore(t)
	if err := os.WriteFile(path, []byte(`{"lifeAreas": [{"name": "gym"}]}`), 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := s.Get(ctx)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	want := []model.LifeArea{{Name: "gym"}}
	if !reflect.DeepEqual(got.LifeAreas, want) {
		t.Errorf("Get() LifeAreas = %+v, want %+v", got.LifeAreas, want)
	}
	if !reflect.DeepEqual(got.EnergyPatterns, model.DefaultPreferences().EnergyPatterns) {
		t.Errorf("EnergyPatterns not defaulted: %+v", got.EnergyPatterns)
	}

	saved, err := s.Save(ctx, []byte(`{"lifeAreas": [{"name": "gym"}, {"name": "reading", "priority": 2}]}`))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	want = []model.LifeArea{{Name: "gym"}, {Name: "reading", Priority: 2}}
	if !reflect.DeepEqual(saved.LifeAreas, want) {
		t.Errorf("Save() LifeAreas = %+v, want %+v", saved.LifeAreas, want)
	}

	reread, err := s.Get(ctx)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !reflect.DeepEqual(reread.LifeAreas, want) {
		t.Errorf("persisted LifeAreas = %+v, want %+v", reread.LifeAreas, want)
	}
}

func TestSaveRejectsInvalidPatch(t *testing.T) {
	ctx := context.Background()
	s, path := newStore(t)
	if _, err := s.Save(ctx, []byte(`{"schedulingRules": {"maxMeetingsPerDay": -1}}`)); err == nil {
		t.Fatal("Save() accepted a negative limit")
	}
	if _, err := s.Save(ctx, []byte(`[1,2]`)); err == nil {
		t.Fatal("Save() accepted a non-object patch")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("preferences file written despite invalid patches")
	}
}

func TestPriorityMap(t *testing.T) {
	got := PriorityMap(model.DefaultPreferences())
	if got["work"] != 1 || got["hobbies"] != 6 {
		t.Errorf("PriorityMap() = %v", got)
	}

	unranked := PriorityMap(model.UserPreferences{LifeAreas: []model.LifeArea{{Name: "gym"}, {Name: "work", Priority: 2}}})
	if _, ok := unranked["gym"]; ok || unranked["work"] != 2 {
		t.Errorf("PriorityMap() = %v, want only work ranked", unranked)
	}
}
