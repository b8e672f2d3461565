package browse

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/soorena/annotation-browser/internal/domain"
	"github.com/soorena/annotation-browser/internal/query"
	"github.com/soorena/annotation-browser/internal/repository"
)

// fakeRepository is an in-memory repository for session tests. It applies a
// tiny interpretation of compiled predicates: a record matches when every
// string argument of the predicate appears as a substring of one of its
// fields. That is crude, but session logic only needs totals and windows to
// be internally consistent, not SQL-faithful.
type fakeRepository struct {
	mu      sync.Mutex
	records []*domain.Annotation
	err     error

	countCalls  int
	fetchCalls  int
	statsCalls  int
	streamCalls int
	lastLimit   int
	lastOffset  int
}

var _ repository.AnnotationRepository = (*fakeRepository)(nil)

func (f *fakeRepository) matching(p query.Predicate) []*domain.Annotation {
	if p.IsEmpty() {
		return f.records
	}
	var out []*domain.Annotation
	for _, r := range f.records {
		if fakeMatches(r, p) {
			out = append(out, r)
		}
	}
	return out
}

func fakeMatches(r *domain.Annotation, p query.Predicate) bool {
	haystack := strings.ToLower(strings.Join([]string{
		r.AC, r.PMID, r.UniProtAccessions, r.AutoregulatoryType, r.Polarity,
		r.Title, r.Abstract, r.Journal, r.Authors, r.Month, r.Source,
		r.ProteinName, r.GeneName, r.ProteinID, r.Organism,
	}, "\x00"))
	for _, arg := range p.Args {
		s, ok := arg.(string)
		if !ok {
			continue
		}
		needle := strings.ToLower(strings.Trim(s, "%,"))
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	return true
}

func (f *fakeRepository) Count(ctx context.Context, p query.Predicate) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.countCalls++
	if f.err != nil {
		return 0, f.err
	}
	return int64(len(f.matching(p))), nil
}

func (f *fakeRepository) FetchPage(ctx context.Context, p query.Predicate, limit, offset int) ([]*domain.Annotation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchCalls++
	f.lastLimit = limit
	f.lastOffset = offset
	if f.err != nil {
		return nil, f.err
	}
	matched := f.matching(p)
	if offset >= len(matched) {
		return nil, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}

func (f *fakeRepository) StatsBy(ctx context.Context, p query.Predicate, dim repository.Dimension, limit int) ([]repository.GroupCount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statsCalls++
	f.lastLimit = limit
	if f.err != nil {
		return nil, f.err
	}

	counts := make(map[string]int64)
	var order []string
	for _, r := range f.matching(p) {
		var label string
		switch dim {
		case repository.DimensionSource:
			label = r.Source
		case repository.DimensionType:
			label = r.AutoregulatoryType
		case repository.DimensionJournal:
			label = r.Journal
		case repository.DimensionYear:
			if r.Year == nil {
				label = "Unknown"
			} else {
				label = strconv.Itoa(*r.Year)
			}
		}
		if label == "" {
			label = "Unknown"
		}
		if _, seen := counts[label]; !seen {
			order = append(order, label)
		}
		counts[label]++
	}

	out := make([]repository.GroupCount, 0, len(order))
	for _, label := range order {
		out = append(out, repository.GroupCount{Label: label, Count: counts[label]})
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeRepository) StreamAll(ctx context.Context, p query.Predicate, fn func(*domain.Annotation) error) error {
	f.mu.Lock()
	f.streamCalls++
	err := f.err
	matched := f.matching(p)
	f.mu.Unlock()

	if err != nil {
		return err
	}
	for _, r := range matched {
		if err := fn(r); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeRepository) GetByAC(ctx context.Context, ac string) (*domain.Annotation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, r := range f.records {
		if r.AC == ac {
			return r, nil
		}
	}
	return nil, domain.NewNotFoundError("annotation", ac)
}
