package model

import (
	"errors"
	"fmt"
)

type Size string

const (
	SizeQuick  Size = "quick"
	SizeMedium Size = "medium"
	SizeLong   Size = "long"
)

// ChecklistItem is one task in a day's checklist.
type ChecklistItem struct {
	ID             string   `json:"id"`
	Area           string   `json:"area"`
	Text           string   `json:"text"`
	Size           Size     `json:"size,omitempty"`
	Deadline       string   `json:"deadline,omitempty"`
	Completed      bool     `json:"completed"`
	CarriedFrom    string   `json:"carriedFrom,omitempty"`
	CompletedAt    string   `json:"completedAt,omitempty"`
	CompletionNote string   `json:"completionNote,omitempty"`
	BillableHours  *float64 `json:"billableHours,omitempty"`
}

type DailyChecklist struct {
	Date  string          `json:"date"`
	Items []ChecklistItem `json:"items"`
}

type HabitEntry struct {
	Name string `json:"name"`
	Done bool   `json:"done"`
}

// HabitStatus is the per-day completion state of every configured habit.
type HabitStatus struct {
	Date   string       `json:"date"`
	Habits []HabitEntry `json:"habits"`
}

type LogEntry struct {
	ID   string `json:"id"`
	Time string `json:"time"`
	Text string `json:"text"`
}

type DailyLog struct {
	Date    string     `json:"date"`
	Entries []LogEntry `json:"entries"`
}

// ErrInvalid marks errors caused by malformed caller input (bad dates,
// empty text, preferences failing validation).
var ErrInvalid = errors.New("invalid input")

// Invalidf formats an error wrapping ErrInvalid. %w verbs in format are
// honored.
func Invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...)
}

// NotFoundError is returned when an identifier does not resolve to an
// existing record.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// IsNotFound reports whether err (or anything it wraps) is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
