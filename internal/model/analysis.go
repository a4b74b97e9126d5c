package model

import "time"

type EnergyLevel string

const (
	EnergyHigh   EnergyLevel = "high"
	EnergyMedium EnergyLevel = "medium"
	EnergyLow    EnergyLevel = "low"
)

// Valid reports whether l is one of the three known levels.
func (l EnergyLevel) Valid() bool {
	switch l {
	case EnergyHigh, EnergyMedium, EnergyLow:
		return true
	}
	return false
}

type Density string

const (
	DensityLight      Density = "light"
	DensityModerate   Density = "moderate"
	DensityHeavy      Density = "heavy"
	DensityOverloaded Density = "overloaded"
)

type ConflictType string

const (
	ConflictOverlap        ConflictType = "overlap"
	ConflictOvercommitment ConflictType = "overcommitment"
	ConflictEnergyMismatch ConflictType = "energy_mismatch"
	ConflictHabitGap       ConflictType = "habit_gap"
)

type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

type Conflict struct {
	Type                 ConflictType `json:"type"`
	Severity             Severity     `json:"severity"`
	Description          string       `json:"description"`
	AffectedEvents       []string     `json:"affectedEvents"`
	SuggestedResolutions []string     `json:"suggestedResolutions"`
}

// TimeSlot is a free interval. Duration is in minutes.
type TimeSlot struct {
	Start       time.Time   `json:"start"`
	End         time.Time   `json:"end"`
	Duration    float64     `json:"duration"`
	EnergyLevel EnergyLevel `json:"energyLevel"`
}

type LifeAreaBreakdown struct {
	Area           string  `json:"area"`
	ScheduledHours float64 `json:"scheduledHours"`
	TargetHours    float64 `json:"targetHours"`
	Delta          float64 `json:"delta"`
}

// ScheduleAnalysis is the result for a single day.
type ScheduleAnalysis struct {
	Date              string              `json:"date"`
	Density           Density             `json:"density"`
	Conflicts         []Conflict          `json:"conflicts"`
	LifeAreaBreakdown []LifeAreaBreakdown `json:"lifeAreaBreakdown"`
	FreeSlots         []TimeSlot          `json:"freeSlots"`
	Warnings          []string            `json:"warnings"`
}

type WeekSummary struct {
	TotalEvents       int                 `json:"totalEvents"`
	AverageDensity    Density             `json:"averageDensity"`
	LifeAreaBreakdown []LifeAreaBreakdown `json:"lifeAreaBreakdown"`
}

type WeekAnalysis struct {
	StartDate string             `json:"startDate"`
	EndDate   string             `json:"endDate"`
	Days      []ScheduleAnalysis `json:"days"`
	Summary   WeekSummary        `json:"summary"`
}
