package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/tgienger/tasktracker/internal/errs"
	"github.com/tgienger/tasktracker/internal/models"
	"github.com/tgienger/tasktracker/internal/tracker"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type clearRequest struct {
	Confirm bool `json:"confirm"`
}

type clearResponse struct {
	Cleared int `json:"cleared"`
	Pending int `json:"pending_confirmation,omitempty"`
}

func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.tasks.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		s.respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, nonNil(tasks))
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	var in models.TaskInput
	if err := decode(r, &in); err != nil {
		s.respondErr(w, err)
		return
	}

	task, err := s.tasks.Create(r.Context(), in)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, task)
}

func (s *Server) getTask(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.respondErr(w, err)
		return
	}

	task, err := s.tasks.Get(r.Context(), id)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, task)
}

func (s *Server) updateTask(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.respondErr(w, err)
		return
	}

	var in models.TaskInput
	if err := decode(r, &in); err != nil {
		s.respondErr(w, err)
		return
	}

	task, err := s.tasks.Update(r.Context(), id, in)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, task)
}

func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.respondErr(w, err)
		return
	}

	if err := s.tasks.Delete(r.Context(), id); err != nil {
		s.respondErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// clearCompleted requires {"confirm": true}. Without it the count of tasks
// that would be removed comes back with 409.
func (s *Server) clearCompleted(w http.ResponseWriter, r *http.Request) {
	var req clearRequest
	if r.ContentLength != 0 {
		if err := decode(r, &req); err != nil {
			s.respondErr(w, err)
			return
		}
	}

	res, err := s.tasks.ClearCompleted(r.Context(), func(int) bool { return req.Confirm })
	if err != nil {
		s.respondErr(w, err)
		return
	}

	switch res.Outcome {
	case tracker.ClearDeclined:
		respondJSON(w, http.StatusConflict, clearResponse{Pending: res.Count})
	default:
		respondJSON(w, http.StatusOK, clearResponse{Cleared: res.Count})
	}
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	asOf := models.DateOf(s.now())
	if q := r.URL.Query().Get("date"); q != "" {
		d, err := models.ParseDate(q)
		if err != nil {
			s.respondErr(w, fmt.Errorf("%w: %w", errs.ErrValidation, err))
			return
		}
		asOf = d
	}

	st, err := s.tasks.Statistics(r.Context(), asOf)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, st)
}

func (s *Server) listDeleted(w http.ResponseWriter, r *http.Request) {
	bin, err := s.tasks.Deleted(r.Context())
	if err != nil {
		s.respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, nonNil(bin))
}

func (s *Server) restoreTask(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.respondErr(w, err)
		return
	}

	task, err := s.tasks.Restore(r.Context(), id)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, task)
}

func parseID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid id %q", errs.ErrValidation, raw)
	}
	return id, nil
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: invalid request body: %w", errs.ErrValidation, err)
	}
	return nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

// statusFor maps an error kind to an HTTP status
func statusFor(err error) int {
	switch {
	case errors.Is(err, errs.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, errs.ErrAuth):
		return http.StatusUnauthorized
	case errors.Is(err, errs.ErrExternalService):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) respondErr(w http.ResponseWriter, err error) {
	code := statusFor(err)
	msg := err.Error()
	if code == http.StatusInternalServerError {
		s.log.Error("internal server error", zap.Error(err))
		msg = "internal server error"
	}
	respondJSON(w, code, errorResponse{Error: errs.Title(err), Message: msg})
}

func respondError(w http.ResponseWriter, code int, message string) {
	respondJSON(w, code, errorResponse{Error: http.StatusText(code), Message: message})
}

func respondJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
