package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"lifeplan/internal/analysis"
	"lifeplan/internal/ics"
	"lifeplan/internal/model"
	"lifeplan/internal/report"
)

var (
	eventsFile  string
	slotMinutes int
	slotEnergy  string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a day or a week of the schedule",
}

var analyzeDayCmd = &cobra.Command{
	Use:   "day [YYYY-MM-DD]",
	Short: "Density, conflicts, life-area balance and free slots for one day",
	Args:  cobra.MaximumNArgs(1),
	RunE:  withApp(runAnalyzeDay),
}

var analyzeWeekCmd = &cobra.Command{
	Use:   "week [START] [END]",
	Short: "Per-day analysis plus a weekly summary (END defaults to START + 6 days)",
	Args:  cobra.MaximumNArgs(2),
	RunE:  withApp(runAnalyzeWeek),
}

var slotsCmd = &cobra.Command{
	Use:   "slots [YYYY-MM-DD]",
	Short: "List free time slots between 07:00 and 21:00",
	Args:  cobra.MaximumNArgs(1),
	RunE:  withApp(runSlots),
}

func init() {
	analyzeCmd.PersistentFlags().StringVar(&eventsFile, "events", "", "Read events from a JSON file instead of the configured calendars")
	slotsCmd.Flags().StringVar(&eventsFile, "events", "", "Read events from a JSON file instead of the configured calendars")
	slotsCmd.Flags().IntVar(&slotMinutes, "min", analysis.DefaultMinSlotMinutes, "Minimum slot length in minutes")
	slotsCmd.Flags().StringVar(&slotEnergy, "energy", "", "Only slots starting at this energy level (high, medium, low)")

	analyzeCmd.AddCommand(analyzeDayCmd, analyzeWeekCmd)
}

func argOr(args []string, i int, def string) string {
	if i < len(args) {
		return args[i]
	}
	return def
}

// dayRange resolves date (today when empty) to its local midnight.
func dayRange(a *app, date string) (string, time.Time, error) {
	if date == "" {
		date = time.Now().In(a.loc).Format(model.DateLayout)
	}
	d, err := time.ParseInLocation(model.DateLayout, date, a.loc)
	if err != nil {
		return "", time.Time{}, model.Invalidf("date %q: %w", date, err)
	}
	return date, d, nil
}

// events returns the events intersecting [from, to), either from the
// --events file or from the configured calendars.
func events(ctx context.Context, a *app, from, to time.Time) ([]model.CalendarEvent, error) {
	if eventsFile == "" {
		return a.calendars.GetEvents(ctx, from, to)
	}
	data, err := os.ReadFile(eventsFile)
	if err != nil {
		return nil, err
	}
	var all []model.CalendarEvent
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, fmt.Errorf("parse %s: %w", eventsFile, err)
	}
	out := make([]model.CalendarEvent, 0, len(all))
	for _, ev := range all {
		start, end := ev.Span(a.loc)
		if ics.Intersects(start, end, from, to) {
			out = append(out, ev)
		}
	}
	return out, nil
}

func runAnalyzeDay(ctx context.Context, a *app, args []string) error {
	date, day, err := dayRange(a, argOr(args, 0, ""))
	if err != nil {
		return err
	}
	p, err := a.prefs.Get(ctx)
	if err != nil {
		return err
	}
	evs, err := events(ctx, a, day, day.AddDate(0, 0, 1))
	if err != nil {
		return err
	}
	result, err := analysis.New(a.loc).AnalyzeDay(evs, p, date)
	if err != nil {
		return err
	}

	today := time.Now().In(a.loc).Format(model.DateLayout)
	if len(a.habits.Habits()) > 0 && date <= today {
		st, err := a.habits.Status(ctx, date)
		if err != nil {
			return err
		}
		result.Conflicts = append(result.Conflicts, analysis.HabitGaps(st)...)
	}

	if jsonOutput {
		return printJSON(result)
	}
	return report.Day(os.Stdout, result, a.loc)
}

func runAnalyzeWeek(ctx context.Context, a *app, args []string) error {
	start, first, err := dayRange(a, argOr(args, 0, ""))
	if err != nil {
		return err
	}
	end := argOr(args, 1, first.AddDate(0, 0, 6).Format(model.DateLayout))
	end, last, err := dayRange(a, end)
	if err != nil {
		return err
	}
	if last.Before(first) {
		return model.Invalidf("end %s is before start %s", end, start)
	}

	p, err := a.prefs.Get(ctx)
	if err != nil {
		return err
	}
	evs, err := events(ctx, a, first, last.AddDate(0, 0, 1))
	if err != nil {
		return err
	}
	days, err := ics.GroupByDate(evs, a.loc, start, end)
	if err != nil {
		return err
	}
	result, err := analysis.New(a.loc).AnalyzeWeek(days, p, start, end)
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(result)
	}
	return report.Week(os.Stdout, result)
}

func runSlots(ctx context.Context, a *app, args []string) error {
	energy := model.EnergyLevel(slotEnergy)
	if energy != "" && !energy.Valid() {
		return model.Invalidf("energy must be high, medium or low, got %q", slotEnergy)
	}
	date, day, err := dayRange(a, argOr(args, 0, ""))
	if err != nil {
		return err
	}
	p, err := a.prefs.Get(ctx)
	if err != nil {
		return err
	}
	evs, err := events(ctx, a, day, day.AddDate(0, 0, 1))
	if err != nil {
		return err
	}
	slots, err := analysis.New(a.loc).FindFreeSlots(evs, p, date, slotMinutes, energy)
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(slots)
	}
	return report.Slots(os.Stdout, date, slots, a.loc)
}
