package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jmylchreest/deskshell/internal/markup"
	"github.com/jmylchreest/deskshell/internal/shell"
)

// eventResponse is returned by POST /api/events.
type eventResponse struct {
	Event   string         `json:"event"`
	Handled bool           `json:"handled"`
	State   shell.Snapshot `json:"state"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.Page().Render(w, s.shell.Snapshot()); err != nil {
		s.logger.Error("failed to render page", "error", err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
	}
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.shell.Snapshot())
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.shell.Layout())
}

func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	var spec markup.EventSpec
	if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid event: " + err.Error()})
		return
	}

	handled, err := s.apply(spec)
	if err != nil {
		writeJSON(w, eventStatus(err), errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, eventResponse{
		Event:   spec.String(),
		Handled: handled,
		State:   s.shell.Snapshot(),
	})
}

// apply resolves spec against the served page and dispatches it.
func (s *Server) apply(spec markup.EventSpec) (bool, error) {
	ev, err := s.Page().Resolve(spec, s.shell.Snapshot())
	if err != nil {
		return false, err
	}
	handled := s.dispatcher.Dispatch(ev)
	s.logger.Debug("event applied", "event", spec.String(), "handled", handled)
	return handled, nil
}

func eventStatus(err error) int {
	switch {
	case errors.Is(err, markup.ErrTargetNotFound):
		return http.StatusNotFound
	case errors.Is(err, markup.ErrUnknownEventType), errors.Is(err, markup.ErrEmptyEvent),
		errors.Is(err, markup.ErrInvalidSelector):
		return http.StatusBadRequest
	default:
		return http.StatusUnprocessableEntity
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
