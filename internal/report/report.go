// Package report renders analysis results and daily records for the
// terminal.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"lifeplan/internal/model"
)

var (
	muted  = lipgloss.Color("#a6adc8")
	blue   = lipgloss.Color("#74c7ec")
	green  = lipgloss.Color("#a6e3a1")
	yellow = lipgloss.Color("#f9e2af")
	peach  = lipgloss.Color("#fab387")
	red    = lipgloss.Color("#f38ba8")

	titleStyle = lipgloss.NewStyle().Foreground(blue).Bold(true)
	headStyle  = lipgloss.NewStyle().Bold(true).MarginTop(1)
	mutedStyle = lipgloss.NewStyle().Foreground(muted)
	boxStyle   = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(muted).
			Padding(0, 1)
)

func densityStyle(d model.Density) lipgloss.Style {
	c := green
	switch d {
	case model.DensityModerate:
		c = yellow
	case model.DensityHeavy:
		c = peach
	case model.DensityOverloaded:
		c = red
	}
	return lipgloss.NewStyle().Foreground(c).Bold(true)
}

func severityStyle(s model.Severity) lipgloss.Style {
	switch s {
	case model.SeverityHigh:
		return lipgloss.NewStyle().Foreground(red).Bold(true)
	case model.SeverityMedium:
		return lipgloss.NewStyle().Foreground(peach)
	default:
		return mutedStyle
	}
}

func energyStyle(e model.EnergyLevel) lipgloss.Style {
	switch e {
	case model.EnergyHigh:
		return lipgloss.NewStyle().Foreground(green)
	case model.EnergyLow:
		return mutedStyle
	default:
		return lipgloss.NewStyle().Foreground(yellow)
	}
}

// Day renders one day's analysis. Slot times are shown in loc.
func Day(w io.Writer, a model.ScheduleAnalysis, loc *time.Location) error {
	_, err := io.WriteString(w, dayView(a, loc)+"\n")
	return err
}

func dayView(a model.ScheduleAnalysis, loc *time.Location) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(a.Date) + "  " + densityStyle(a.Density).Render(string(a.Density)))
	b.WriteString("\n")

	if len(a.Conflicts) > 0 {
		b.WriteString(headStyle.Render("Conflicts") + "\n")
		for _, c := range a.Conflicts {
			tag := severityStyle(c.Severity).Render(fmt.Sprintf("[%s %s]", c.Severity, c.Type))
			fmt.Fprintf(&b, "  %s %s\n", tag, c.Description)
			for _, s := range c.SuggestedResolutions {
				b.WriteString(mutedStyle.Render("    - "+s) + "\n")
			}
		}
	}

	if len(a.Warnings) > 0 {
		b.WriteString(headStyle.Render("Warnings") + "\n")
		for _, wn := range a.Warnings {
			b.WriteString("  ! " + wn + "\n")
		}
	}

	b.WriteString(headStyle.Render("Free time") + "\n")
	b.WriteString(slotLines(a.FreeSlots, loc))

	if rows := areaRows(a.LifeAreaBreakdown); rows != "" {
		b.WriteString(headStyle.Render("Life areas") + "\n")
		b.WriteString(rows)
	}
	return boxStyle.Render(strings.TrimRight(b.String(), "\n"))
}

// Slots renders a free-slot list.
func Slots(w io.Writer, date string, slots []model.TimeSlot, loc *time.Location) error {
	out := titleStyle.Render("Free slots "+date) + "\n" + slotLines(slots, loc)
	_, err := io.WriteString(w, out)
	return err
}

func slotLines(slots []model.TimeSlot, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	if len(slots) == 0 {
		return mutedStyle.Render("  none") + "\n"
	}
	var b strings.Builder
	for _, s := range slots {
		fmt.Fprintf(&b, "  %s-%s  %4.0f min  %s\n",
			s.Start.In(loc).Format("15:04"),
			s.End.In(loc).Format("15:04"),
			s.Duration,
			energyStyle(s.EnergyLevel).Render(string(s.EnergyLevel)))
	}
	return b.String()
}

func areaRows(rows []model.LifeAreaBreakdown) string {
	var b strings.Builder
	for _, r := range rows {
		delta := fmt.Sprintf("%+.1f", r.Delta)
		style := mutedStyle
		if r.Delta < 0 {
			style = lipgloss.NewStyle().Foreground(peach)
		}
		fmt.Fprintf(&b, "  %-10s %5.1fh / %5.1fh  %s\n", r.Area, r.ScheduledHours, r.TargetHours, style.Render(delta))
	}
	return b.String()
}

// Week renders a week analysis: one line per day, then the summary.
func Week(w io.Writer, wk model.WeekAnalysis) error {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Week %s .. %s", wk.StartDate, wk.EndDate)) + "\n")
	for _, d := range wk.Days {
		fmt.Fprintf(&b, "  %s  %-11s %d conflict(s)\n", d.Date, densityStyle(d.Density).Render(string(d.Density)), len(d.Conflicts))
	}
	fmt.Fprintf(&b, "%s %d events, average %s\n",
		headStyle.Render("Summary"),
		wk.Summary.TotalEvents,
		densityStyle(wk.Summary.AverageDensity).Render(string(wk.Summary.AverageDensity)))
	b.WriteString(areaRows(wk.Summary.LifeAreaBreakdown))
	_, err := io.WriteString(w, b.String())
	return err
}

// Checklist renders a day's checklist in its stored (sorted) order.
func Checklist(w io.Writer, cl model.DailyChecklist) error {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Checklist "+cl.Date) + "\n")
	if len(cl.Items) == 0 {
		b.WriteString(mutedStyle.Render("  nothing planned") + "\n")
	}
	for _, it := range cl.Items {
		box := "[ ]"
		if it.Completed {
			box = lipgloss.NewStyle().Foreground(green).Render("[x]")
		}
		line := fmt.Sprintf("  %s %s", box, it.Text)
		var meta []string
		if it.Area != "" {
			meta = append(meta, it.Area)
		}
		if it.Size != "" {
			meta = append(meta, string(it.Size))
		}
		if it.Deadline != "" {
			meta = append(meta, "due "+it.Deadline)
		}
		if it.CarriedFrom != "" {
			meta = append(meta, "since "+it.CarriedFrom)
		}
		if len(meta) > 0 {
			line += "  " + mutedStyle.Render("("+strings.Join(meta, ", ")+")")
		}
		b.WriteString(line + "\n")
		b.WriteString(mutedStyle.Render("      "+it.ID) + "\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// Habits renders habit status with optional streaks (keyed by name).
func Habits(w io.Writer, st model.HabitStatus, streaks map[string]int) error {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Habits "+st.Date) + "\n")
	if len(st.Habits) == 0 {
		b.WriteString(mutedStyle.Render("  no habits configured") + "\n")
	}
	for _, h := range st.Habits {
		mark := "[ ]"
		if h.Done {
			mark = lipgloss.NewStyle().Foreground(green).Render("[x]")
		}
		line := "  " + mark + " " + h.Name
		if n, ok := streaks[h.Name]; ok && n > 0 {
			line += mutedStyle.Render(fmt.Sprintf("  %d day streak", n))
		}
		b.WriteString(line + "\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// Logs renders daily logs, one block per day.
func Logs(w io.Writer, logs []model.DailyLog) error {
	var b strings.Builder
	for _, l := range logs {
		b.WriteString(titleStyle.Render(l.Date) + "\n")
		for _, e := range l.Entries {
			ts := e.Time
			if t, err := time.Parse(time.RFC3339, e.Time); err == nil {
				ts = t.Format("15:04")
			}
			b.WriteString("  " + mutedStyle.Render(ts) + "  " + e.Text + "\n")
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}
