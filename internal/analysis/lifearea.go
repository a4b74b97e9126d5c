package analysis

import (
	"strings"

	"lifeplan/internal/model"
)

// DefaultKeywords is the built-in categorization table. Specific areas come
// before the broad work list so that, say, "team lunch workout" lands in
// fitness. Matching is by substring, so collisions across areas can still
// happen; the first area in table order wins.
var DefaultKeywords = model.KeywordTable{
	{Area: "fitness", Keywords: []string{"gym", "workout", "run", "yoga", "exercise", "fitness", "training", "swim", "cycling", "hike", "pilates"}},
	{Area: "learning", Keywords: []string{"course", "class", "study", "learn", "lecture", "tutorial", "reading", "workshop", "webinar"}},
	{Area: "hobbies", Keywords: []string{"hobby", "guitar", "piano", "painting", "music", "craft", "gaming", "photography", "garden"}},
	{Area: "personal", Keywords: []string{"doctor", "dentist", "appointment", "errand", "personal", "therapy", "meditation", "family", "haircut"}},
	{Area: "social", Keywords: []string{"dinner", "lunch with", "party", "drinks", "friends", "birthday", "coffee with", "hangout"}},
	{Area: "work", Keywords: []string{"meeting", "standup", "sync", "review", "1:1", "call", "interview", "project", "sprint", "planning", "demo", "client", "presentation"}},
}

// keywordTable returns the override table when one is configured.
func keywordTable(prefs model.UserPreferences) model.KeywordTable {
	if len(prefs.CategoryKeywords) > 0 {
		return prefs.CategoryKeywords
	}
	return DefaultKeywords
}

// Categorize returns the first area in table whose keywords appear as a
// substring of the event's lowercased "summary description" text, or ""
// when nothing matches.
func Categorize(ev model.CalendarEvent, table model.KeywordTable) string {
	text := strings.ToLower(ev.Summary + " " + ev.Description)
	for _, rule := range table {
		for _, kw := range rule.Keywords {
			if kw == "" {
				continue
			}
			if strings.Contains(text, strings.ToLower(kw)) {
				return rule.Area
			}
		}
	}
	return ""
}

// Breakdown reports scheduled hours per configured life area against its
// weekly target. The target is used as-is for a single day.
func (a *Analyzer) Breakdown(events []model.CalendarEvent, prefs model.UserPreferences) []model.LifeAreaBreakdown {
	loc := a.loc()
	table := keywordTable(prefs)

	minutes := make([]float64, len(prefs.LifeAreas))
	for _, ev := range events {
		area := Categorize(ev, table)
		if area == "" {
			continue
		}
		for i, la := range prefs.LifeAreas {
			if strings.EqualFold(la.Name, area) {
				minutes[i] += ev.Minutes(loc)
				break
			}
		}
	}

	out := make([]model.LifeAreaBreakdown, 0, len(prefs.LifeAreas))
	for i, la := range prefs.LifeAreas {
		scheduled := round1(minutes[i] / 60)
		out = append(out, model.LifeAreaBreakdown{
			Area:           la.Name,
			ScheduledHours: scheduled,
			TargetHours:    la.WeeklyTargetHours,
			Delta:          round1(scheduled - la.WeeklyTargetHours),
		})
	}
	return out
}
