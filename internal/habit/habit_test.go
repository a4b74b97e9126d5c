package habit

import (
	"context"
	"testing"
	"time"

	"lifeplan/internal/model"
	"lifeplan/internal/store"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	st, err := store.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	svc := NewService(st, []string{"meditate", "read", "walk"}, time.UTC)
	svc.now = func() time.Time { return time.Date(2025, 6, 9, 22, 0, 0, 0, time.UTC) }
	return svc
}

func TestStatusDefaultsToNotDone(t *testing.T) {
	svc := newTestService(t)
	st, err := svc.Status(context.Background(), "")
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if st.Date != "2025-06-09" {
		t.Errorf("Date = %s, want 2025-06-09", st.Date)
	}
	want := []string{"meditate", "read", "walk"}
	if len(st.Habits) != len(want) {
		t.Fatalf("Habits = %+v", st.Habits)
	}
	for i, h := range st.Habits {
		if h.Name != want[i] || h.Done {
			t.Errorf("Habits[%d] = %+v, want %s not done", i, h, want[i])
		}
	}
}

func TestMark(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	if _, err := svc.Mark(ctx, "2025-06-09", "read", true); err != nil {
		t.Fatalf("Mark() error = %v", err)
	}
	st, err := svc.Status(ctx, "2025-06-09")
	if err != nil {
		t.Fatal(err)
	}
	for _, h := range st.Habits {
		if h.Done != (h.Name == "read") {
			t.Errorf("%s done = %v", h.Name, h.Done)
		}
	}

	if _, err := svc.Mark(ctx, "2025-06-09", "juggle", true); !model.IsNotFound(err) {
		t.Errorf("Mark(unknown) error = %v, want not found", err)
	}
}

func TestStreak(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	for _, d := range []string{"2025-06-05", "2025-06-07", "2025-06-08"} {
		if _, err := svc.Mark(ctx, d, "walk", true); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		date string
		want int
	}{
		{"2025-06-09", 2}, // today not done yet
		{"2025-06-08", 2},
		{"2025-06-06", 1},
		{"2025-06-04", 0},
	}
	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			got, err := svc.Streak(ctx, tt.date, "walk")
			if err != nil {
				t.Fatalf("Streak() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Streak(%s) = %d, want %d", tt.date, got, tt.want)
			}
		})
	}
}
