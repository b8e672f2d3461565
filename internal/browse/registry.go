package browse

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/soorena/annotation-browser/internal/config"
	"github.com/soorena/annotation-browser/internal/domain"
	"github.com/soorena/annotation-browser/internal/observability"
	"github.com/soorena/annotation-browser/internal/repository"
)

// RepositoryFactory produces a repository bound to a dedicated store
// connection plus the release function returning that connection to the pool.
// The registry calls the factory once per session and holds the connection
// for the session's lifetime.
type RepositoryFactory func(ctx context.Context) (repository.AnnotationRepository, func(), error)

// Registry is the in-memory session store. Sessions are keyed by UUID and
// evicted after the configured idle TTL.
type Registry struct {
	factory   RepositoryFactory
	projector *Projector
	cfg       config.BrowseConfig
	metrics   *observability.Metrics
	logger    zerolog.Logger

	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
}

// NewRegistry builds a session registry. Call Run to start TTL eviction.
func NewRegistry(factory RepositoryFactory, projector *Projector, cfg config.BrowseConfig, metrics *observability.Metrics, logger zerolog.Logger) *Registry {
	return &Registry{
		factory:   factory,
		projector: projector,
		cfg:       cfg,
		metrics:   metrics,
		logger:    observability.WithComponent(logger, "session_registry"),
		sessions:  make(map[uuid.UUID]*Session),
	}
}

// Projector returns the registry's shared row projector.
func (r *Registry) Projector() *Projector {
	return r.projector
}

// Create opens a new session with an empty filter and default pagination,
// backed by its own store connection.
func (r *Registry) Create(ctx context.Context) (*Session, error) {
	repo, release, err := r.factory(ctx)
	if err != nil {
		return nil, err
	}

	id := uuid.New()
	session := newSession(id, repo, release, r.projector, r.cfg.DefaultPageSize, r.cfg.JournalTopN, r.metrics, r.logger)
	session.SetFilter(domain.FilterSpec{})

	r.mu.Lock()
	r.sessions[id] = session
	r.mu.Unlock()

	r.metrics.RecordSessionCreated()
	r.logger.Info().Str("session_id", id.String()).Msg("session created")

	return session, nil
}

// Get returns the session with the given id and refreshes its idle timer.
// Unknown ids report ErrSessionExpired; a swept session and a session that
// never existed are indistinguishable to the caller.
func (r *Registry) Get(id uuid.UUID) (*Session, error) {
	r.mu.Lock()
	session, ok := r.sessions[id]
	r.mu.Unlock()

	if !ok {
		return nil, domain.ErrSessionExpired
	}
	session.touch(time.Now())
	return session, nil
}

// Close ends the session and releases its connection.
func (r *Registry) Close(id uuid.UUID) error {
	r.mu.Lock()
	session, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
	}
	r.mu.Unlock()

	if !ok {
		return domain.ErrSessionExpired
	}

	session.close()
	r.metrics.RecordSessionClosed()
	r.logger.Info().Str("session_id", id.String()).Msg("session closed")
	return nil
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep evicts every session idle longer than the TTL and returns how many
// were evicted.
func (r *Registry) Sweep(now time.Time) int {
	r.mu.Lock()
	var expired []*Session
	for id, session := range r.sessions {
		if now.Sub(session.idleSince()) > r.cfg.SessionTTL {
			expired = append(expired, session)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, session := range expired {
		session.close()
		r.metrics.RecordSessionExpired()
		r.logger.Info().
			Str("session_id", session.ID().String()).
			Dur("ttl", r.cfg.SessionTTL).
			Msg("session expired")
	}
	return len(expired)
}

// Run sweeps expired sessions on the configured interval until ctx is
// cancelled, then closes every remaining session.
func (r *Registry) Run(ctx context.Context) {
	ticker := time.NewTicker(r.cfg.SessionSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.Shutdown()
			return
		case now := <-ticker.C:
			r.Sweep(now)
		}
	}
}

// Shutdown closes all live sessions and releases their connections.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	sessions := make([]*Session, 0, len(r.sessions))
	for id, session := range r.sessions {
		sessions = append(sessions, session)
		delete(r.sessions, id)
	}
	r.mu.Unlock()

	for _, session := range sessions {
		session.close()
		r.metrics.RecordSessionClosed()
	}
	if len(sessions) > 0 {
		r.logger.Info().Int("sessions", len(sessions)).Msg("registry shut down")
	}
}
