package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// TimeRange is a local wall-clock range in 24-hour HH:MM form.
type TimeRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// EnergyPatterns holds the user's declared energy rhythm. Lists are
// evaluated in order; ranges may overlap.
type EnergyPatterns struct {
	HighEnergy   []TimeRange `json:"highEnergy"`
	MediumEnergy []TimeRange `json:"mediumEnergy"`
	LowEnergy    []TimeRange `json:"lowEnergy"`
}

// LifeArea is a category with a weekly hour target. Priority 1 is highest.
type LifeArea struct {
	Name              string  `json:"name"`
	WeeklyTargetHours float64 `json:"weeklyTargetHours"`
	Priority          int     `json:"priority"`
}

// ProtectedBlock is a recurring weekly window that always counts as busy.
type ProtectedBlock struct {
	Day   string `json:"day"`
	Start string `json:"start"`
	End   string `json:"end"`
	Label string `json:"label"`
}

type SchedulingRules struct {
	MinBreakBetweenEvents int              `json:"minBreakBetweenEvents"`
	MaxMeetingsPerDay     int              `json:"maxMeetingsPerDay"`
	ProtectedBlocks       []ProtectedBlock `json:"protectedBlocks"`
	PreferredPlanningDay  string           `json:"preferredPlanningDay"`
}

// AreaKeywords maps one life area to the substrings that identify it.
type AreaKeywords struct {
	Area     string   `json:"area"`
	Keywords []string `json:"keywords"`
}

// KeywordTable is an ordered list of area keyword rules. First match wins,
// so order is significant. In JSON it is written as an object whose key
// order is preserved on decode; the array form is accepted as well.
type KeywordTable []AreaKeywords

func (k KeywordTable) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, rule := range k {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(rule.Area)
		if err != nil {
			return nil, err
		}
		kws := rule.Keywords
		if kws == nil {
			kws = []string{}
		}
		list, err := json.Marshal(kws)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(list)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (k *KeywordTable) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*k = nil
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var rules []AreaKeywords
		if err := json.Unmarshal(trimmed, &rules); err != nil {
			return err
		}
		*k = rules
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errors.New("categoryKeywords: expected object or array")
	}

	out := KeywordTable{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		area, ok := tok.(string)
		if !ok {
			return fmt.Errorf("categoryKeywords: unexpected key %v", tok)
		}
		var kws []string
		if err := dec.Decode(&kws); err != nil {
			return fmt.Errorf("categoryKeywords[%s]: %w", area, err)
		}
		out = append(out, AreaKeywords{Area: area, Keywords: kws})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*k = out
	return nil
}

// UserPreferences carries every behavioral knob of the analysis engine.
type UserPreferences struct {
	EnergyPatterns   EnergyPatterns  `json:"energyPatterns"`
	LifeAreas        []LifeArea      `json:"lifeAreas"`
	SchedulingRules  SchedulingRules `json:"schedulingRules"`
	CategoryKeywords KeywordTable    `json:"categoryKeywords,omitempty"`
}

// DefaultPreferences is what a first run sees before anything is saved.
func DefaultPreferences() UserPreferences {
	return UserPreferences{
		EnergyPatterns: EnergyPatterns{
			HighEnergy:   []TimeRange{{Start: "09:00", End: "12:00"}},
			MediumEnergy: []TimeRange{{Start: "14:00", End: "17:00"}},
			LowEnergy:    []TimeRange{{Start: "13:00", End: "14:00"}, {Start: "17:00", End: "21:00"}},
		},
		LifeAreas: []LifeArea{
			{Name: "work", WeeklyTargetHours: 40, Priority: 1},
			{Name: "fitness", WeeklyTargetHours: 5, Priority: 2},
			{Name: "learning", WeeklyTargetHours: 5, Priority: 3},
			{Name: "personal", WeeklyTargetHours: 7, Priority: 4},
			{Name: "social", WeeklyTargetHours: 4, Priority: 5},
			{Name: "hobbies", WeeklyTargetHours: 3, Priority: 6},
		},
		SchedulingRules: SchedulingRules{
			MinBreakBetweenEvents: 15,
			MaxMeetingsPerDay:     6,
			ProtectedBlocks:       []ProtectedBlock{},
			PreferredPlanningDay:  "sunday",
		},
	}
}
