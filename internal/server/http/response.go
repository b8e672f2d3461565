package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/soorena/annotation-browser/internal/domain"
	"github.com/soorena/annotation-browser/internal/repository"
)

// validate checks filter and pagination request bodies. Shared because
// validator caches struct metadata.
var validate = validator.New()

// sessionResponse is returned when a browsing session is created.
type sessionResponse struct {
	SessionID    string `json:"session_id"`
	PageSize     int    `json:"page_size"`
	PageSizeMenu []int  `json:"page_size_menu"`
}

// textFilterRequest is one free-text filter slot. Mode defaults to contains.
type textFilterRequest struct {
	Value string `json:"value"`
	Mode  string `json:"mode,omitempty" validate:"omitempty,oneof=contains exact"`
}

// filterRequest is the JSON request body replacing a session's filter
// specification. Year bounds arrive as strings; non-numeric values degrade to
// an absent bound rather than rejecting the request.
type filterRequest struct {
	Search      *textFilterRequest `json:"search,omitempty"`
	Types       []string           `json:"types,omitempty"`
	Polarities  []string           `json:"polarities,omitempty" validate:"dive,oneof=+ – ±"`
	YearFrom    string             `json:"year_from,omitempty"`
	YearTo      string             `json:"year_to,omitempty"`
	Months      []string           `json:"months,omitempty"`
	Source      string             `json:"source,omitempty" validate:"omitempty,oneof=UniProt Non-UniProt"`
	Journals    []string           `json:"journals,omitempty"`
	Organisms   []string           `json:"organisms,omitempty"`
	Author      *textFilterRequest `json:"author,omitempty"`
	ProteinName *textFilterRequest `json:"protein_name,omitempty"`
	GeneName    *textFilterRequest `json:"gene_name,omitempty"`
	ProteinID   *textFilterRequest `json:"protein_id,omitempty"`
	PMID        *textFilterRequest `json:"pmid,omitempty"`
	UniProt     *textFilterRequest `json:"uniprot,omitempty"`
	AC          *textFilterRequest `json:"ac,omitempty"`
}

// toFilterSpec converts the request body into a domain filter specification.
func (req *filterRequest) toFilterSpec() domain.FilterSpec {
	return domain.FilterSpec{
		Search:      toTextFilter(req.Search),
		Types:       req.Types,
		Polarities:  req.Polarities,
		Years:       domain.YearRange{From: parseYearBound(req.YearFrom), To: parseYearBound(req.YearTo)},
		Months:      req.Months,
		Source:      strings.TrimSpace(req.Source),
		Journals:    req.Journals,
		Organisms:   req.Organisms,
		Author:      toTextFilter(req.Author),
		ProteinName: toTextFilter(req.ProteinName),
		GeneName:    toTextFilter(req.GeneName),
		ProteinID:   toTextFilter(req.ProteinID),
		PMID:        toTextFilter(req.PMID),
		UniProt:     toTextFilter(req.UniProt),
		AC:          toTextFilter(req.AC),
	}
}

func toTextFilter(req *textFilterRequest) domain.TextFilter {
	if req == nil {
		return domain.TextFilter{}
	}
	mode := domain.TextMatch(req.Mode)
	if !mode.IsValid() {
		mode = domain.MatchContains
	}
	return domain.TextFilter{Value: req.Value, Mode: mode}
}

// parseYearBound parses one year bound. Malformed numeric input is treated as
// an absent bound.
func parseYearBound(s string) *int {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	year, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &year
}

// pageSizeRequest is the JSON request body changing a session's page size.
type pageSizeRequest struct {
	Size int `json:"size" validate:"required,gt=0"`
}

// statsResponse is the aggregate-count payload for one dimension.
type statsResponse struct {
	Dimension string                  `json:"dimension"`
	Buckets   []repository.GroupCount `json:"buckets"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Best-effort log; headers already sent.
		_ = err
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{
		"error": message,
	})
}

// writeDomainError maps domain errors to appropriate HTTP status codes and
// writes a JSON error response. Internal error details are not leaked to
// clients.
func writeDomainError(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}

	switch {
	case errors.Is(err, domain.ErrSessionExpired):
		writeError(w, http.StatusGone, "session expired")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "resource not found")
	case errors.Is(err, domain.ErrInvalidInput):
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			writeError(w, http.StatusBadRequest, ve.Error())
		} else {
			writeError(w, http.StatusBadRequest, "invalid input")
		}
	case errors.Is(err, domain.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, "rate limited")
	case errors.Is(err, domain.ErrServiceUnavailable):
		writeError(w, http.StatusServiceUnavailable, "service unavailable")
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// parseUUID parses a UUID from a string, writing a 400 error response if invalid.
// Returns the parsed UUID and true on success, or uuid.Nil and false on failure.
// The parse error details are not included to avoid echoing potentially malicious input.
func parseUUID(w http.ResponseWriter, s, fieldName string) (uuid.UUID, bool) {
	id, err := uuid.Parse(s)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("%s must be a valid UUID", fieldName))
		return uuid.Nil, false
	}
	return id, true
}
