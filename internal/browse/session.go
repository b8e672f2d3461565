// Package browse implements stateful browsing sessions over the annotation
// store. A session owns one filter specification, one page state, and the
// predicate compiled from the filter. The predicate is compiled once per
// filter change and handed unchanged to every consumer (count, page fetch,
// statistics, export), so all result surfaces a session presents describe the
// same record set.
package browse

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/soorena/annotation-browser/internal/domain"
	"github.com/soorena/annotation-browser/internal/observability"
	"github.com/soorena/annotation-browser/internal/query"
	"github.com/soorena/annotation-browser/internal/repository"
)

// View is one rendered page of the session's current record set.
type View struct {
	// Total is the number of records matching the session's filter.
	Total int64 `json:"total"`
	// Page is the clamped 1-based page number actually served.
	Page int `json:"page"`
	// PageSize is the session's page size.
	PageSize int `json:"page_size"`
	// MaxPage is the last valid page for the current total and size.
	MaxPage int `json:"max_page"`
	// Records are the projected rows of the served page.
	Records []Row `json:"records"`
}

// Session is one analyst's browsing state. All methods are safe for
// concurrent use; store queries run on the session's dedicated connection.
type Session struct {
	id          uuid.UUID
	repo        repository.AnnotationRepository
	release     func()
	projector   *Projector
	journalTopN int
	metrics     *observability.Metrics
	logger      zerolog.Logger

	mu       sync.Mutex
	filter   domain.FilterSpec
	pred     query.Predicate
	page     domain.PageState
	lastUsed time.Time

	closeOnce sync.Once
}

func newSession(id uuid.UUID, repo repository.AnnotationRepository, release func(), projector *Projector, defaultPageSize, journalTopN int, metrics *observability.Metrics, logger zerolog.Logger) *Session {
	return &Session{
		id:          id,
		repo:        repo,
		release:     release,
		projector:   projector,
		journalTopN: journalTopN,
		metrics:     metrics,
		logger:      observability.WithSessionContext(logger, id.String()),
		page:        domain.NewPageState().WithSize(defaultPageSize),
		lastUsed:    time.Now(),
	}
}

// ID returns the session identifier.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// Filter returns the session's current filter specification.
func (s *Session) Filter() domain.FilterSpec {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

// PageState returns the session's current page state.
func (s *Session) PageState() domain.PageState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page
}

// SetFilter replaces the session's filter specification, recompiles the
// predicate, and resets pagination to the first page.
func (s *Session) SetFilter(spec domain.FilterSpec) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.filter = spec
	s.pred = query.Compile(spec)
	s.page = s.page.Reset()

	s.logger.Debug().
		Str("clause", s.pred.Clause).
		Int("args", len(s.pred.Args)).
		Msg("filter replaced")
}

// View renders the current page. The total is recounted and the page number
// reconciled against it before fetching, so a filter change elsewhere in the
// session can never leave the view pointing past the end.
func (s *Session) View(ctx context.Context) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.render(ctx, func(total int64) domain.PageState {
		return s.page.Reconcile(total)
	})
}

// NextPage advances to the next page and renders it. At the last page the
// transition is a no-op.
func (s *Session) NextPage(ctx context.Context) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.render(ctx, func(total int64) domain.PageState {
		return s.page.Next(total)
	})
}

// PreviousPage steps back one page and renders it. At the first page the
// transition is a no-op.
func (s *Session) PreviousPage(ctx context.Context) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.render(ctx, func(total int64) domain.PageState {
		return s.page.Previous().Reconcile(total)
	})
}

// ResetPage returns to the first page and renders it.
func (s *Session) ResetPage(ctx context.Context) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.render(ctx, func(total int64) domain.PageState {
		return s.page.Reset()
	})
}

// SetPageSize changes the page size and renders the first page at the new
// size. Sizes outside the configured menu are rejected.
func (s *Session) SetPageSize(ctx context.Context, size int) (View, error) {
	if !domain.IsValidPageSize(size) {
		return View{}, domain.NewValidationError("page_size", "page size is not in the configured menu")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.render(ctx, func(total int64) domain.PageState {
		return s.page.WithSize(size).Reconcile(total)
	})
}

// render recounts the filtered set, applies the page transition against the
// fresh total, and fetches the resulting page. The transition is applied only
// after a successful count, so a store fault leaves the session state as it
// was. Caller must hold s.mu.
func (s *Session) render(ctx context.Context, transition func(total int64) domain.PageState) (View, error) {
	start := time.Now()
	total, err := s.repo.Count(ctx, s.pred)
	if err != nil {
		s.metrics.RecordQueryFailed(observability.ConsumerCount)
		return View{}, err
	}
	s.metrics.RecordQuery(observability.ConsumerCount, time.Since(start).Seconds())

	s.page = transition(total)

	start = time.Now()
	records, err := s.repo.FetchPage(ctx, s.pred, s.page.Size, s.page.Offset())
	if err != nil {
		s.metrics.RecordQueryFailed(observability.ConsumerPage)
		return View{}, err
	}
	s.metrics.RecordQuery(observability.ConsumerPage, time.Since(start).Seconds())

	rows := make([]Row, 0, len(records))
	for _, record := range records {
		rows = append(rows, s.projector.Project(record))
	}

	return View{
		Total:    total,
		Page:     s.page.Page,
		PageSize: s.page.Size,
		MaxPage:  s.page.MaxPage(total),
		Records:  rows,
	}, nil
}

// Stats returns aggregate counts over the session's current record set for
// the given dimension. Journal statistics are capped to the configured top-N.
func (s *Session) Stats(ctx context.Context, dim repository.Dimension) ([]repository.GroupCount, error) {
	s.mu.Lock()
	pred := s.pred
	s.mu.Unlock()

	limit := 0
	if dim == repository.DimensionJournal {
		limit = s.journalTopN
	}

	start := time.Now()
	buckets, err := s.repo.StatsBy(ctx, pred, dim, limit)
	if err != nil {
		s.metrics.RecordQueryFailed(observability.ConsumerStats)
		return nil, err
	}
	s.metrics.RecordQuery(observability.ConsumerStats, time.Since(start).Seconds())

	return buckets, nil
}

// StreamFiltered visits every record in the session's current record set in
// browse order. The predicate is snapshotted up front; a concurrent filter
// change does not affect a stream already in flight.
func (s *Session) StreamFiltered(ctx context.Context, fn func(*domain.Annotation) error) error {
	s.mu.Lock()
	pred := s.pred
	s.mu.Unlock()

	start := time.Now()
	if err := s.repo.StreamAll(ctx, pred, fn); err != nil {
		s.metrics.RecordQueryFailed(observability.ConsumerExport)
		return err
	}
	s.metrics.RecordQuery(observability.ConsumerExport, time.Since(start).Seconds())

	return nil
}

// Projector returns the projector sessions use to render rows.
func (s *Session) Projector() *Projector {
	return s.projector
}

// touch refreshes the idle timer.
func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUsed = now
}

// idleSince reports the last time the session was used.
func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

// close releases the session's dedicated connection. Safe to call more than
// once.
func (s *Session) close() {
	s.closeOnce.Do(func() {
		if s.release != nil {
			s.release()
		}
		s.logger.Debug().Msg("session closed")
	})
}
