// Package habit tracks per-day completion of a fixed list of habits.
package habit

import (
	"context"
	"time"

	appLog "lifeplan/internal/log"
	"lifeplan/internal/model"
	"lifeplan/internal/store"
)

const Namespace = "habits"

type Service struct {
	store  store.Store
	habits []string
	loc    *time.Location
	now    func() time.Time
}

// NewService tracks the given habit names in order. loc defaults to
// time.Local.
func NewService(s store.Store, habits []string, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		store:  s,
		habits: append([]string(nil), habits...),
		loc:    loc,
		now:    time.Now,
	}
}

// Habits returns the configured habit names.
func (s *Service) Habits() []string {
	return append([]string(nil), s.habits...)
}

func (s *Service) resolveDate(date string) (string, error) {
	if date == "" {
		return s.now().In(s.loc).Format(model.DateLayout), nil
	}
	if _, err := time.Parse(model.DateLayout, date); err != nil {
		return "", model.Invalidf("date %q: %w", date, err)
	}
	return date, nil
}

// Status returns every configured habit for date (today when empty), in
// configured order. Habits without a stored mark are not done. Stored marks
// for habits no longer configured are dropped.
func (s *Service) Status(ctx context.Context, date string) (model.HabitStatus, error) {
	date, err := s.resolveDate(date)
	if err != nil {
		return model.HabitStatus{}, err
	}
	var stored model.HabitStatus
	if _, err := store.GetOrDefault(ctx, s.store, Namespace, date, &stored); err != nil {
		return model.HabitStatus{}, err
	}
	done := make(map[string]bool, len(stored.Habits))
	for _, h := range stored.Habits {
		done[h.Name] = h.Done
	}

	st := model.HabitStatus{Date: date, Habits: make([]model.HabitEntry, 0, len(s.habits))}
	for _, name := range s.habits {
		st.Habits = append(st.Habits, model.HabitEntry{Name: name, Done: done[name]})
	}
	return st, nil
}

// Mark sets habit name as done or not done on date.
func (s *Service) Mark(ctx context.Context, date, name string, done bool) (model.HabitStatus, error) {
	if !s.known(name) {
		return model.HabitStatus{}, &model.NotFoundError{Kind: "habit", ID: name}
	}
	st, err := s.Status(ctx, date)
	if err != nil {
		return model.HabitStatus{}, err
	}
	for i := range st.Habits {
		if st.Habits[i].Name == name {
			st.Habits[i].Done = done
		}
	}
	if err := store.PutJSON(ctx, s.store, Namespace, st.Date, st); err != nil {
		return model.HabitStatus{}, err
	}
	appLog.Debug("habit marked", "date", st.Date, "habit", name, "done", done)
	return st, nil
}

func (s *Service) known(name string) bool {
	for _, h := range s.habits {
		if h == name {
			return true
		}
	}
	return false
}

// Streak counts consecutive days, ending at date, on which name was done.
// If date itself is not yet done the count starts from the day before, so
// an unfinished today does not break a running streak.
func (s *Service) Streak(ctx context.Context, date, name string) (int, error) {
	if !s.known(name) {
		return 0, &model.NotFoundError{Kind: "habit", ID: name}
	}
	date, err := s.resolveDate(date)
	if err != nil {
		return 0, err
	}
	day, _ := time.Parse(model.DateLayout, date)

	doneOn := func(d time.Time) (bool, error) {
		var st model.HabitStatus
		found, err := store.GetOrDefault(ctx, s.store, Namespace, d.Format(model.DateLayout), &st)
		if err != nil || !found {
			return false, err
		}
		for _, h := range st.Habits {
			if h.Name == name {
				return h.Done, nil
			}
		}
		return false, nil
	}

	ok, err := doneOn(day)
	if err != nil {
		return 0, err
	}
	streak := 0
	if ok {
		streak = 1
	}
	for d := day.AddDate(0, 0, -1); ; d = d.AddDate(0, 0, -1) {
		ok, err := doneOn(d)
		if err != nil {
			return 0, err
		}
		if !ok {
			return streak, nil
		}
		streak++
	}
}
