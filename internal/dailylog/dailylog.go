// Package dailylog keeps a free-form, append-only journal per day.
package dailylog

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"lifeplan/internal/model"
	"lifeplan/internal/store"
)

const Namespace = "logs"

type Service struct {
	store store.Store
	loc   *time.Location
	now   func() time.Time
	newID func() string
}

func NewService(s store.Store, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{store: s, loc: loc, now: time.Now, newID: uuid.NewString}
}

// Append adds text to today's log, stamped with the current local time.
func (s *Service) Append(ctx context.Context, text string) (model.LogEntry, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.LogEntry{}, model.Invalidf("log entry text is empty")
	}
	now := s.now().In(s.loc)
	date := now.Format(model.DateLayout)

	l, err := s.Get(ctx, date)
	if err != nil {
		return model.LogEntry{}, err
	}
	e := model.LogEntry{ID: s.newID(), Time: now.Format(time.RFC3339), Text: text}
	l.Entries = append(l.Entries, e)
	if err := store.PutJSON(ctx, s.store, Namespace, date, l); err != nil {
		return model.LogEntry{}, err
	}
	return e, nil
}

// Get returns the log for date (today when empty). A day without entries
// yields an empty log, not an error.
func (s *Service) Get(ctx context.Context, date string) (model.DailyLog, error) {
	if date == "" {
		date = s.now().In(s.loc).Format(model.DateLayout)
	} else if _, err := time.Parse(model.DateLayout, date); err != nil {
		return model.DailyLog{}, model.Invalidf("date %q: %w", date, err)
	}
	l := model.DailyLog{Date: date}
	if _, err := store.GetOrDefault(ctx, s.store, Namespace, date, &l); err != nil {
		return model.DailyLog{}, err
	}
	if l.Entries == nil {
		l.Entries = []model.LogEntry{}
	}
	return l, nil
}

// Recent returns up to n stored logs, newest first.
func (s *Service) Recent(ctx context.Context, n int) ([]model.DailyLog, error) {
	names, err := store.ListRecent(ctx, s.store, Namespace, n)
	if err != nil {
		return nil, err
	}
	out := make([]model.DailyLog, 0, len(names))
	for _, name := range names {
		var l model.DailyLog
		if err := store.GetJSON(ctx, s.store, Namespace, name, &l); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}
