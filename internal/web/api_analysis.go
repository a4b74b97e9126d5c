package web

import (
	"context"
	"net/http"
	"time"

	"lifeplan/internal/analysis"
	"lifeplan/internal/ics"
	appLog "lifeplan/internal/log"
	"lifeplan/internal/model"
)

type eventsResponse struct {
	Events     []model.CalendarEvent `json:"events"`
	RangeStart time.Time             `json:"rangeStart"`
	RangeEnd   time.Time             `json:"rangeEnd"`
	TimeZone   string                `json:"timezone"`
}

type slotsResponse struct {
	Date  string           `json:"date"`
	Slots []model.TimeSlot `json:"slots"`
}

func (s *Server) parseDay(date string) (time.Time, error) {
	d, err := time.ParseInLocation(model.DateLayout, date, s.loc)
	if err != nil {
		return time.Time{}, model.Invalidf("date %q: %w", date, err)
	}
	return d, nil
}

func (s *Server) eventsBetween(ctx context.Context, from, to time.Time) ([]model.CalendarEvent, error) {
	if s.events == nil {
		return []model.CalendarEvent{}, nil
	}
	return s.events.GetEvents(ctx, from, to)
}

// handleEvents returns events from every calendar.
//
// GET /api/events?days=7&backfill=1
//   - days: days ahead of today (default horizon_days)
//   - backfill: days before today (default 1)
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	horizon := 7
	if s.cfg != nil {
		horizon = s.cfg.HorizonDays
	}
	days := parseIntDefault(q.Get("days"), horizon)
	if days <= 0 {
		days = horizon
	}
	backfill := parseIntDefault(q.Get("backfill"), 1)
	if backfill < 0 {
		backfill = 0
	}

	today, err := s.parseDay(s.today())
	if err != nil {
		writeErr(w, r, err)
		return
	}
	from := today.AddDate(0, 0, -backfill)
	to := today.AddDate(0, 0, days)

	events, err := s.eventsBetween(r.Context(), from, to)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, eventsResponse{
		Events:     events,
		RangeStart: from,
		RangeEnd:   to,
		TimeZone:   s.loc.String(),
	})
}

// handleAnalyzeDay: GET /api/analysis/day?date=YYYY-MM-DD
//
// When habits are configured, unfinished habits of today or a past day are
// appended to the conflicts as low-severity habit gaps.
func (s *Server) handleAnalyzeDay(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	date := s.dateParam(r, "date")
	day, err := s.parseDay(date)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	p, err := s.prefs.Get(ctx)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	events, err := s.eventsBetween(ctx, day, day.AddDate(0, 0, 1))
	if err != nil {
		writeErr(w, r, err)
		return
	}

	result, err := s.analyzer.AnalyzeDay(events, p, date)
	if err != nil {
		writeErr(w, r, err)
		return
	}

	if s.habits != nil && len(s.habits.Habits()) > 0 && date <= s.today() {
		st, err := s.habits.Status(ctx, date)
		if err != nil {
			appLog.Error("habit status unavailable for analysis", err, "date", date)
		} else {
			result.Conflicts = append(result.Conflicts, analysis.HabitGaps(st)...)
		}
	}
	writeJSON(w, http.StatusOK, result)
}

// handleAnalyzeWeek: GET /api/analysis/week?start=&end=
// start defaults to today, end to start + 6 days.
func (s *Server) handleAnalyzeWeek(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	start := s.dateParam(r, "start")
	first, err := s.parseDay(start)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	end := q.Get("end")
	if end == "" {
		end = first.AddDate(0, 0, 6).Format(model.DateLayout)
	}
	last, err := s.parseDay(end)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	if last.Before(first) {
		writeError(w, http.StatusBadRequest, "end is before start")
		return
	}

	p, err := s.prefs.Get(ctx)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	events, err := s.eventsBetween(ctx, first, last.AddDate(0, 0, 1))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	days, err := ics.GroupByDate(events, s.loc, start, end)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	result, err := s.analyzer.AnalyzeWeek(days, p, start, end)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleSlots: GET /api/slots?date=&min=30&energy=high
func (s *Server) handleSlots(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	date := s.dateParam(r, "date")
	day, err := s.parseDay(date)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	minDuration := parseIntDefault(q.Get("min"), analysis.DefaultMinSlotMinutes)
	if minDuration < 0 {
		writeError(w, http.StatusBadRequest, "min must not be negative")
		return
	}
	energy := model.EnergyLevel(q.Get("energy"))
	if energy != "" && !energy.Valid() {
		writeError(w, http.StatusBadRequest, "energy must be high, medium or low")
		return
	}

	p, err := s.prefs.Get(ctx)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	events, err := s.eventsBetween(ctx, day, day.AddDate(0, 0, 1))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	slots, err := s.analyzer.FindFreeSlots(events, p, date, minDuration, energy)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, slotsResponse{Date: date, Slots: slots})
}

func (s *Server) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	p, err := s.prefs.Get(r.Context())
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// handlePatchPreferences deep-merges the JSON body into the stored
// preferences.
func (s *Server) handlePatchPreferences(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeErr(w, r, model.Invalidf("request body: %w", err))
		return
	}
	p, err := s.prefs.Save(r.Context(), body)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
