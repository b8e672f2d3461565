package httpserver

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/soorena/annotation-browser/internal/browse"
	"github.com/soorena/annotation-browser/internal/domain"
	"github.com/soorena/annotation-browser/internal/repository"
)

// maxRequestBodySize bounds filter and pagination request bodies.
const maxRequestBodySize = 1 << 20

// createSession handles POST /sessions. A fresh session has an empty filter
// (matching every record) and default pagination.
func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.registry.Create(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, sessionResponse{
		SessionID:    session.ID().String(),
		PageSize:     session.PageState().Size,
		PageSizeMenu: domain.PageSizeMenu,
	})
}

// closeSession handles DELETE /sessions/{sessionID}. Closing releases the
// session's dedicated store connection.
func (s *Server) closeSession(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUID(w, chi.URLParam(r, "sessionID"), "session_id")
	if !ok {
		return
	}

	if err := s.registry.Close(id); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "closed"})
}

// replaceFilters handles PUT /sessions/{sessionID}/filters. The whole filter
// specification is replaced; pagination resets to the first page.
func (s *Server) replaceFilters(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}

	var req filterRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	session.SetFilter(req.toFilterSpec())

	view, err := session.View(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// getRecords handles GET /sessions/{sessionID}/records.
func (s *Server) getRecords(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r, (*browse.Session).View)
}

// pageNext handles POST /sessions/{sessionID}/page/next.
func (s *Server) pageNext(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r, (*browse.Session).NextPage)
}

// pagePrevious handles POST /sessions/{sessionID}/page/previous.
func (s *Server) pagePrevious(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r, (*browse.Session).PreviousPage)
}

// pageReset handles POST /sessions/{sessionID}/page/reset.
func (s *Server) pageReset(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r, (*browse.Session).ResetPage)
}

// setPageSize handles PUT /sessions/{sessionID}/page/size.
func (s *Server) setPageSize(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}

	var req pageSizeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, "size must be a positive integer")
		return
	}

	view, err := session.SetPageSize(r.Context(), req.Size)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// getStats handles GET /sessions/{sessionID}/stats?by={dimension}. Statistics
// cover the session's entire filtered set, not just the current page.
func (s *Server) getStats(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}

	dim, err := repository.ParseDimension(r.URL.Query().Get("by"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	buckets, err := session.Stats(r.Context(), dim)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, statsResponse{
		Dimension: string(dim),
		Buckets:   buckets,
	})
}

// session resolves the sessionID path parameter against the registry,
// refreshing the session's idle timer.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*browse.Session, bool) {
	id, ok := parseUUID(w, chi.URLParam(r, "sessionID"), "session_id")
	if !ok {
		return nil, false
	}

	session, err := s.registry.Get(id)
	if err != nil {
		writeDomainError(w, err)
		return nil, false
	}
	return session, true
}

// renderPage runs one page transition and writes the resulting view.
func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, transition func(*browse.Session, context.Context) (browse.View, error)) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}

	view, err := transition(session, r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// decodeBody reads and unmarshals a bounded JSON request body.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	defer r.Body.Close()
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodySize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return false
	}
	if err := json.Unmarshal(body, v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON request body")
		return false
	}
	return true
}
