// Package checklist manages one task checklist per day, including carrying
// unfinished items forward from the most recent earlier day.
package checklist

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	appLog "lifeplan/internal/log"
	"lifeplan/internal/model"
	"lifeplan/internal/store"
)

// Namespace is the store namespace holding one record per date.
const Namespace = "checklists"

// PrioritySource supplies the life-area priority map used for sorting.
type PrioritySource interface {
	AreaPriority(ctx context.Context) (map[string]int, error)
}

// Service reads and mutates checklists. Each mutation is a read-modify-write
// of the day's record; concurrent writers to the same day race (last write
// wins).
type Service struct {
	store      store.Store
	priorities PrioritySource
	loc        *time.Location
	now        func() time.Time
	newID      func() string
}

// NewService builds a Service. priorities may be nil (every area then sorts
// as unlisted); loc decides what "today" means and defaults to time.Local.
func NewService(s store.Store, priorities PrioritySource, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		store:      s,
		priorities: priorities,
		loc:        loc,
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

// NewItem is the input for AddItem.
type NewItem struct {
	Area     string     `json:"area"`
	Text     string     `json:"text"`
	Size     model.Size `json:"size,omitempty"`
	Deadline string     `json:"deadline,omitempty"`
}

// ItemPatch carries optional field updates; nil fields are left unchanged.
type ItemPatch struct {
	Area           *string     `json:"area,omitempty"`
	Text           *string     `json:"text,omitempty"`
	Size           *model.Size `json:"size,omitempty"`
	Deadline       *string     `json:"deadline,omitempty"`
	Completed      *bool       `json:"completed,omitempty"`
	CompletionNote *string     `json:"completionNote,omitempty"`
	BillableHours  *float64    `json:"billableHours,omitempty"`
}

// Today returns the current date in the service location.
func (s *Service) Today() string {
	return s.now().In(s.loc).Format(model.DateLayout)
}

func (s *Service) resolveDate(date string) (string, error) {
	if date == "" {
		return s.Today(), nil
	}
	if _, err := time.Parse(model.DateLayout, date); err != nil {
		return "", model.Invalidf("date %q: %w", date, err)
	}
	return date, nil
}

func (s *Service) areaPriority(ctx context.Context) map[string]int {
	if s.priorities == nil {
		return nil
	}
	p, err := s.priorities.AreaPriority(ctx)
	if err != nil {
		appLog.Error("checklist: area priorities unavailable; sorting without them", err)
		return nil
	}
	return p
}

// GetChecklist returns the checklist for date (today when empty), sorted.
// When no checklist exists yet, the incomplete items of the most recent
// earlier checklist are carried over with fresh ids and the new checklist
// is saved immediately, even when it ends up empty.
func (s *Service) GetChecklist(ctx context.Context, date string) (model.DailyChecklist, error) {
	cl, err := s.load(ctx, date)
	if err != nil {
		return model.DailyChecklist{}, err
	}
	cl.Items = SortItems(cl.Items, s.areaPriority(ctx))
	return cl, nil
}

// load returns the stored checklist for date, creating it by carry-over
// when missing. Items are in stored order.
func (s *Service) load(ctx context.Context, date string) (model.DailyChecklist, error) {
	date, err := s.resolveDate(date)
	if err != nil {
		return model.DailyChecklist{}, err
	}

	var cl model.DailyChecklist
	err = store.GetJSON(ctx, s.store, Namespace, date, &cl)
	if err == nil {
		if cl.Items == nil {
			cl.Items = []model.ChecklistItem{}
		}
		return cl, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return model.DailyChecklist{}, err
	}

	cl = model.DailyChecklist{Date: date, Items: []model.ChecklistItem{}}

	prev, err := store.LatestBefore(ctx, s.store, Namespace, date)
	if err != nil {
		return model.DailyChecklist{}, err
	}
	if prev != "" {
		var src model.DailyChecklist
		if err := store.GetJSON(ctx, s.store, Namespace, prev, &src); err != nil {
			return model.DailyChecklist{}, err
		}
		cl.Items = carryOver(src, s.newID)
	}

	if err := s.save(ctx, cl); err != nil {
		return model.DailyChecklist{}, err
	}
	appLog.Info("checklist created", "date", date, "carried_from", prev, "carried_items", len(cl.Items))
	return cl, nil
}

// carryOver copies the incomplete items of src. Each copy gets a new id;
// carriedFrom keeps the first day the task appeared.
func carryOver(src model.DailyChecklist, newID func() string) []model.ChecklistItem {
	out := make([]model.ChecklistItem, 0, len(src.Items))
	for _, it := range src.Items {
		if it.Completed {
			continue
		}
		c := it
		c.ID = newID()
		if c.CarriedFrom == "" {
			c.CarriedFrom = src.Date
		}
		out = append(out, c)
	}
	return out
}

func (s *Service) save(ctx context.Context, cl model.DailyChecklist) error {
	return store.PutJSON(ctx, s.store, Namespace, cl.Date, cl)
}

func (s *Service) uniqueID(cl model.DailyChecklist) string {
	for {
		id := s.newID()
		if indexOf(cl, id) < 0 {
			return id
		}
	}
}

func indexOf(cl model.DailyChecklist, id string) int {
	for i, it := range cl.Items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

func notFound(id string) error {
	return &model.NotFoundError{Kind: "checklist item", ID: id}
}

// AddItem appends a new incomplete item to date's checklist.
func (s *Service) AddItem(ctx context.Context, date string, in NewItem) (model.ChecklistItem, error) {
	if strings.TrimSpace(in.Text) == "" {
		return model.ChecklistItem{}, model.Invalidf("checklist item text is empty")
	}
	cl, err := s.load(ctx, date)
	if err != nil {
		return model.ChecklistItem{}, err
	}
	item := model.ChecklistItem{
		ID:       s.uniqueID(cl),
		Area:     in.Area,
		Text:     in.Text,
		Size:     in.Size,
		Deadline: in.Deadline,
	}
	cl.Items = append(cl.Items, item)
	if err := s.save(ctx, cl); err != nil {
		return model.ChecklistItem{}, err
	}
	return item, nil
}

// UpdateItem applies patch to item id. Marking an item completed stamps
// completedAt; marking it incomplete clears it.
func (s *Service) UpdateItem(ctx context.Context, date, id string, patch ItemPatch) (model.ChecklistItem, error) {
	cl, err := s.load(ctx, date)
	if err != nil {
		return model.ChecklistItem{}, err
	}
	i := indexOf(cl, id)
	if i < 0 {
		return model.ChecklistItem{}, notFound(id)
	}

	it := &cl.Items[i]
	if patch.Area != nil {
		it.Area = *patch.Area
	}
	if patch.Text != nil {
		it.Text = *patch.Text
	}
	if patch.Size != nil {
		it.Size = *patch.Size
	}
	if patch.Deadline != nil {
		it.Deadline = *patch.Deadline
	}
	if patch.CompletionNote != nil {
		it.CompletionNote = *patch.CompletionNote
	}
	if patch.BillableHours != nil {
		h := *patch.BillableHours
		it.BillableHours = &h
	}
	if patch.Completed != nil && *patch.Completed != it.Completed {
		it.Completed = *patch.Completed
		if it.Completed {
			it.CompletedAt = s.now().UTC().Format(time.RFC3339)
		} else {
			it.CompletedAt = ""
		}
	}

	if err := s.save(ctx, cl); err != nil {
		return model.ChecklistItem{}, err
	}
	return *it, nil
}

// CompleteItem marks item id done with an optional note and billable hours.
func (s *Service) CompleteItem(ctx context.Context, date, id, note string, billableHours *float64) (model.ChecklistItem, error) {
	done := true
	patch := ItemPatch{Completed: &done, BillableHours: billableHours}
	if note != "" {
		patch.CompletionNote = &note
	}
	return s.UpdateItem(ctx, date, id, patch)
}

// RemoveItem deletes item id from date's checklist. The day's record itself
// is kept.
func (s *Service) RemoveItem(ctx context.Context, date, id string) error {
	cl, err := s.load(ctx, date)
	if err != nil {
		return err
	}
	i := indexOf(cl, id)
	if i < 0 {
		return notFound(id)
	}
	cl.Items = append(cl.Items[:i], cl.Items[i+1:]...)
	return s.save(ctx, cl)
}

// Recent returns up to n stored checklists, newest first. No carry-over is
// triggered.
func (s *Service) Recent(ctx context.Context, n int) ([]model.DailyChecklist, error) {
	names, err := store.ListRecent(ctx, s.store, Namespace, n)
	if err != nil {
		return nil, err
	}
	priorities := s.areaPriority(ctx)
	out := make([]model.DailyChecklist, 0, len(names))
	for _, name := range names {
		var cl model.DailyChecklist
		if err := store.GetJSON(ctx, s.store, Namespace, name, &cl); err != nil {
			return nil, err
		}
		cl.Items = SortItems(cl.Items, priorities)
		out = append(out, cl)
	}
	return out, nil
}
