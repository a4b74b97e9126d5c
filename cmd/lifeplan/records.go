package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"lifeplan/internal/checklist"
	"lifeplan/internal/model"
	"lifeplan/internal/report"
)

var (
	recordDate  string
	recentCount int

	itemArea     string
	itemSize     string
	itemDeadline string
	doneNote     string
	doneHours    float64
	habitUndo    bool
)

var checklistCmd = &cobra.Command{
	Use:     "checklist",
	Aliases: []string{"cl"},
	Short:   "Show and edit the daily checklist",
}

var checklistShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the checklist, carrying open items over from the previous day",
	Args:  cobra.NoArgs,
	RunE: withApp(func(ctx context.Context, a *app, _ []string) error {
		cl, err := a.checklists.GetChecklist(ctx, recordDate)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cl)
		}
		return report.Checklist(os.Stdout, cl)
	}),
}

var checklistAddCmd = &cobra.Command{
	Use:   "add TEXT...",
	Short: "Add an item",
	Args:  cobra.MinimumNArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		item, err := a.checklists.AddItem(ctx, recordDate, checklist.NewItem{
			Area:     itemArea,
			Text:     strings.Join(args, " "),
			Size:     model.Size(itemSize),
			Deadline: itemDeadline,
		})
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(item)
		}
		fmt.Printf("added %s\n", item.ID)
		return nil
	}),
}

var checklistDoneCmd = &cobra.Command{
	Use:   "done ID",
	Short: "Complete an item",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		var hours *float64
		if doneHours > 0 {
			hours = &doneHours
		}
		item, err := a.checklists.CompleteItem(ctx, recordDate, args[0], doneNote, hours)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(item)
		}
		fmt.Printf("completed %q\n", item.Text)
		return nil
	}),
}

var checklistRemoveCmd = &cobra.Command{
	Use:     "rm ID",
	Aliases: []string{"remove"},
	Short:   "Remove an item",
	Args:    cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		return a.checklists.RemoveItem(ctx, recordDate, args[0])
	}),
}

var checklistRecentCmd = &cobra.Command{
	Use:   "recent",
	Short: "Show the most recent checklists",
	Args:  cobra.NoArgs,
	RunE: withApp(func(ctx context.Context, a *app, _ []string) error {
		lists, err := a.checklists.Recent(ctx, recentCount)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(lists)
		}
		for _, cl := range lists {
			if err := report.Checklist(os.Stdout, cl); err != nil {
				return err
			}
		}
		return nil
	}),
}

var habitCmd = &cobra.Command{
	Use:   "habit",
	Short: "Track daily habits",
}

var habitStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show habit completion and streaks",
	Args:  cobra.NoArgs,
	RunE: withApp(func(ctx context.Context, a *app, _ []string) error {
		st, err := a.habits.Status(ctx, recordDate)
		if err != nil {
			return err
		}
		streaks := make(map[string]int, len(st.Habits))
		for _, h := range st.Habits {
			n, err := a.habits.Streak(ctx, st.Date, h.Name)
			if err != nil {
				return err
			}
			streaks[h.Name] = n
		}
		if jsonOutput {
			return printJSON(struct {
				model.HabitStatus
				Streaks map[string]int `json:"streaks"`
			}{st, streaks})
		}
		return report.Habits(os.Stdout, st, streaks)
	}),
}

var habitMarkCmd = &cobra.Command{
	Use:   "mark NAME",
	Short: "Mark a habit done (or not done with --undo)",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		st, err := a.habits.Mark(ctx, recordDate, args[0], !habitUndo)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(st)
		}
		return report.Habits(os.Stdout, st, nil)
	}),
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Keep a daily journal",
}

var logAddCmd = &cobra.Command{
	Use:   "add TEXT...",
	Short: "Append an entry to today's log",
	Args:  cobra.MinimumNArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		e, err := a.logs.Append(ctx, strings.Join(args, " "))
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(e)
		}
		fmt.Printf("logged at %s\n", e.Time)
		return nil
	}),
}

var logShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show one day's log",
	Args:  cobra.NoArgs,
	RunE: withApp(func(ctx context.Context, a *app, _ []string) error {
		l, err := a.logs.Get(ctx, recordDate)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(l)
		}
		return report.Logs(os.Stdout, []model.DailyLog{l})
	}),
}

var logRecentCmd = &cobra.Command{
	Use:   "recent",
	Short: "Show the most recent logs",
	Args:  cobra.NoArgs,
	RunE: withApp(func(ctx context.Context, a *app, _ []string) error {
		logs, err := a.logs.Recent(ctx, recentCount)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(logs)
		}
		return report.Logs(os.Stdout, logs)
	}),
}

func init() {
	for _, c := range []*cobra.Command{checklistCmd, habitCmd, logShowCmd} {
		c.PersistentFlags().StringVarP(&recordDate, "date", "d", "", "Day to act on, YYYY-MM-DD (default today)")
	}
	for _, c := range []*cobra.Command{checklistRecentCmd, logRecentCmd} {
		c.Flags().IntVarP(&recentCount, "count", "n", 7, "How many days to show")
	}

	checklistAddCmd.Flags().StringVarP(&itemArea, "area", "a", "", "Life area")
	checklistAddCmd.Flags().StringVarP(&itemSize, "size", "s", "", "Effort: quick, medium or long")
	checklistAddCmd.Flags().StringVar(&itemDeadline, "deadline", "", "Deadline, YYYY-MM-DD")
	checklistDoneCmd.Flags().StringVar(&doneNote, "note", "", "Completion note")
	checklistDoneCmd.Flags().Float64Var(&doneHours, "hours", 0, "Billable hours")
	habitMarkCmd.Flags().BoolVar(&habitUndo, "undo", false, "Mark the habit as not done")

	checklistCmd.AddCommand(checklistShowCmd, checklistAddCmd, checklistDoneCmd, checklistRemoveCmd, checklistRecentCmd)
	habitCmd.AddCommand(habitStatusCmd, habitMarkCmd)
	logCmd.AddCommand(logAddCmd, logShowCmd, logRecentCmd)
}
