package web

import (
	"bytes"
	"net/http"

	"lifeplan/internal/checklist"
	"lifeplan/internal/model"
)

type completeRequest struct {
	Note          string   `json:"note,omitempty"`
	BillableHours *float64 `json:"billableHours,omitempty"`
}

type markRequest struct {
	Done *bool `json:"done,omitempty"`
}

type appendLogRequest struct {
	Text string `json:"text"`
}

type habitsResponse struct {
	model.HabitStatus
	Streaks map[string]int `json:"streaks"`
}

func (s *Server) handleGetChecklist(w http.ResponseWriter, r *http.Request) {
	cl, err := s.lists.GetChecklist(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cl)
}

func (s *Server) handleRecentChecklists(w http.ResponseWriter, r *http.Request) {
	lists, err := s.lists.Recent(r.Context(), parseIntDefault(r.URL.Query().Get("n"), 7))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lists)
}

func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var in checklist.NewItem
	if err := decodeBody(r, &in); err != nil {
		writeErr(w, r, err)
		return
	}
	item, err := s.lists.AddItem(r.Context(), r.URL.Query().Get("date"), in)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	var patch checklist.ItemPatch
	if err := decodeBody(r, &patch); err != nil {
		writeErr(w, r, err)
		return
	}
	item, err := s.lists.UpdateItem(r.Context(), r.URL.Query().Get("date"), r.PathValue("id"), patch)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	if err := s.lists.RemoveItem(r.Context(), r.URL.Query().Get("date"), r.PathValue("id")); err != nil {
		writeErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleCompleteItem accepts an optional {"note", "billableHours"} body.
func (s *Server) handleCompleteItem(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeErr(w, r, model.Invalidf("request body: %w", err))
		return
	}
	var in completeRequest
	if len(bytes.TrimSpace(body)) > 0 {
		if err := decodeBytes(body, &in); err != nil {
			writeErr(w, r, err)
			return
		}
	}
	item, err := s.lists.CompleteItem(r.Context(), r.URL.Query().Get("date"), r.PathValue("id"), in.Note, in.BillableHours)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleHabits(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	st, err := s.habits.Status(ctx, r.URL.Query().Get("date"))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	streaks := make(map[string]int, len(st.Habits))
	for _, h := range st.Habits {
		n, err := s.habits.Streak(ctx, st.Date, h.Name)
		if err != nil {
			writeErr(w, r, err)
			return
		}
		streaks[h.Name] = n
	}
	writeJSON(w, http.StatusOK, habitsResponse{HabitStatus: st, Streaks: streaks})
}

// handleMarkHabit: POST /api/habits/{name}?date= with {"done": bool};
// an empty body marks the habit done.
func (s *Server) handleMarkHabit(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeErr(w, r, model.Invalidf("request body: %w", err))
		return
	}
	done := true
	if len(bytes.TrimSpace(body)) > 0 {
		var in markRequest
		if err := decodeBytes(body, &in); err != nil {
			writeErr(w, r, err)
			return
		}
		if in.Done != nil {
			done = *in.Done
		}
	}
	st, err := s.habits.Mark(r.Context(), r.URL.Query().Get("date"), r.PathValue("name"), done)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleGetLog(w http.ResponseWriter, r *http.Request) {
	l, err := s.logs.Get(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (s *Server) handleAppendLog(w http.ResponseWriter, r *http.Request) {
	var in appendLogRequest
	if err := decodeBody(r, &in); err != nil {
		writeErr(w, r, err)
		return
	}
	e, err := s.logs.Append(r.Context(), in.Text)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (s *Server) handleRecentLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := s.logs.Recent(r.Context(), parseIntDefault(r.URL.Query().Get("n"), 7))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, logs)
}
