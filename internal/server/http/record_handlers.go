package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// getRecord handles GET /records/{ac}, a stateless exact-accession lookup
// that needs no session.
func (s *Server) getRecord(w http.ResponseWriter, r *http.Request) {
	ac := chi.URLParam(r, "ac")

	record, err := s.repo.GetByAC(r.Context(), ac)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, s.registry.Projector().Project(record))
}
