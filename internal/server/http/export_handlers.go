package httpserver

import (
	"fmt"
	"net/http"
	"time"

	"github.com/soorena/annotation-browser/internal/export"
)

// exportRecords handles GET /sessions/{sessionID}/export. The session's whole
// filtered set is streamed as a CSV attachment in browse order. Exports scan
// the full set, so they are rate limited across all sessions.
func (s *Server) exportRecords(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}

	if !s.exportLimiter.Allow() {
		s.metrics.RecordExportRateLimited()
		writeError(w, http.StatusTooManyRequests, "export rate limit exceeded")
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName(time.Now())))
	w.WriteHeader(http.StatusOK)

	// The status line is already written; a mid-stream store fault can only
	// truncate the payload.
	if _, err := s.exporter.Write(r.Context(), w, session.StreamFiltered); err != nil {
		s.logger.Error().
			Err(err).
			Str("session_id", session.ID().String()).
			Msg("export aborted mid-stream")
	}
}
