package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/flowscope/flowscope/pkg/errors"
	"github.com/flowscope/flowscope/pkg/flow"
	"github.com/flowscope/flowscope/pkg/pipeline"
	"github.com/flowscope/flowscope/pkg/session"
	"github.com/flowscope/flowscope/pkg/store"
)

// renderRequest is the body of the render endpoints. For stored graphs the
// snapshot is omitted and loaded from the store instead.
type renderRequest struct {
	Snapshot flow.Snapshot    `json:"snapshot"`
	Options  pipeline.Options `json:"options"`
}

// createGraphRequest is the body of POST /api/graphs.
type createGraphRequest struct {
	Name     string        `json:"name,omitempty"`
	Snapshot flow.Snapshot `json:"snapshot"`
}

// toggleResponse reports the new collapse state, the session carrying it,
// and the graph re-rendered under the viewer's updated view.
type toggleResponse struct {
	SessionID   string           `json:"session_id"`
	ContainerID string           `json:"container_id"`
	Collapsed   bool             `json:"collapsed"`
	Result      *pipeline.Result `json:"result"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body"))
		return
	}
	req.Options.Logger = s.logger

	result, err := s.runner.Execute(r.Context(), req.Snapshot, req.Options)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleCreateGraph(w http.ResponseWriter, r *http.Request) {
	var req createGraphRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body"))
		return
	}
	if err := req.Snapshot.Validate(); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidGraph, err, "invalid snapshot"))
		return
	}

	doc := &store.Document{Name: req.Name, Snapshot: req.Snapshot}
	if err := s.store.Save(r.Context(), doc); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, doc.Summarize())
}

func (s *Server) handleListGraphs(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetGraph(w http.ResponseWriter, r *http.Request) {
	doc, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleDeleteGraph(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRenderGraph(w http.ResponseWriter, r *http.Request) {
	doc, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req renderRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body"))
			return
		}
	}
	req.Options.Logger = s.logger

	snapshot := doc.Snapshot
	if sess, err := s.viewerSession(r); err != nil {
		s.writeError(w, r, err)
		return
	} else if sess != nil {
		snapshot = sess.View.Apply(snapshot)
		req.Options.ShowPropertyLabels = req.Options.ShowPropertyLabels || sess.View.ShowPropertyLabels
		req.Options.EnableAnimations = req.Options.EnableAnimations || sess.View.EnableAnimations
	}

	result, err := s.runner.Execute(r.Context(), snapshot, req.Options)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	doc, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	containerID := chi.URLParam(r, "containerID")

	sess, err := s.viewerSession(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if sess == nil {
		sess, err = session.New(doc.ID, session.DefaultTTL)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	collapsed, ok := sess.Toggle(doc.Snapshot, containerID)
	if !ok {
		s.writeError(w, r, errors.New(errors.ErrCodeNotFound, "container %q not found", containerID))
		return
	}
	if err := s.sessions.Set(r.Context(), sess); err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.runner.Execute(r.Context(), sess.View.Apply(doc.Snapshot), pipeline.Options{
		ShowPropertyLabels: sess.View.ShowPropertyLabels,
		EnableAnimations:   sess.View.EnableAnimations,
		Logger:             s.logger,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toggleResponse{
		SessionID:   sess.ID,
		ContainerID: containerID,
		Collapsed:   collapsed,
		Result:      result,
	})
}

// viewerSession resolves the request's session header. No header means no
// session (nil, nil); an expired or unknown session is an error so clients
// don't silently lose their view state.
func (s *Server) viewerSession(r *http.Request) (*session.Session, error) {
	id := r.Header.Get(SessionHeader)
	if id == "" {
		return nil, nil
	}
	sess, err := s.sessions.Get(r.Context(), id)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSessionNotFound, err, "session %q", id)
	}
	if sess == nil {
		return nil, errors.New(errors.ErrCodeSessionNotFound, "session %q not found", id)
	}
	return sess, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps error codes to HTTP statuses and emits a JSON error body.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.ErrCodeNotFound, errors.ErrCodeGraphNotFound, errors.ErrCodeSessionNotFound:
		status = http.StatusNotFound
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidGraph,
		errors.ErrCodeInvalidStyle, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidElement:
		status = http.StatusBadRequest
	case errors.ErrCodeMissingLayout, errors.ErrCodeInconsistentHierarchy:
		status = http.StatusUnprocessableEntity
	}

	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
	}
	writeJSON(w, status, map[string]string{
		"error": errors.UserMessage(err),
		"code":  string(errors.GetCode(err)),
	})
}
