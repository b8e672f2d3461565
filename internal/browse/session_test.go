package browse

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soorena/annotation-browser/internal/domain"
	"github.com/soorena/annotation-browser/internal/observability"
	"github.com/soorena/annotation-browser/internal/repository"
)

// testMetrics is shared across the package's tests: promauto registers with
// the default registry, so NewMetrics must run once per test binary.
var testMetrics = observability.NewMetrics("browse_test")

func intPtr(n int) *int { return &n }

// seedAnnotations builds n records, alternating source and type so statistics
// have more than one bucket.
func seedAnnotations(n int) []*domain.Annotation {
	records := make([]*domain.Annotation, 0, n)
	for i := 1; i <= n; i++ {
		source := domain.SourceUniProt
		mechType := "Autophosphorylation"
		if i%2 == 0 {
			source = domain.SourceNonUniProt
			mechType = "Autoinhibition"
		}
		records = append(records, &domain.Annotation{
			AC:                 fmt.Sprintf("SOORENA-SP-%07d-1", i),
			PMID:               fmt.Sprintf("%07d", i),
			AutoregulatoryType: mechType,
			Title:              fmt.Sprintf("record %d", i),
			Journal:            "Nature",
			Year:               intPtr(2000 + i%5),
			Source:             source,
		})
	}
	return records
}

func newTestSession(t *testing.T, repo repository.AnnotationRepository) *Session {
	t.Helper()
	projector := NewProjector(300, testMetrics, zerolog.Nop())
	s := newSession(uuid.New(), repo, nil, projector, domain.DefaultPageSize, 25, testMetrics, zerolog.Nop())
	s.SetFilter(domain.FilterSpec{})
	return s
}

func TestSession_View(t *testing.T) {
	ctx := context.Background()

	t.Run("first page of unfiltered set", func(t *testing.T) {
		repo := &fakeRepository{records: seedAnnotations(60)}
		s := newTestSession(t, repo)

		view, err := s.View(ctx)
		require.NoError(t, err)

		assert.Equal(t, int64(60), view.Total)
		assert.Equal(t, 1, view.Page)
		assert.Equal(t, domain.DefaultPageSize, view.PageSize)
		assert.Equal(t, 3, view.MaxPage)
		assert.Len(t, view.Records, domain.DefaultPageSize)
		assert.Equal(t, "SOORENA-SP-0000001-1", view.Records[0].AC)
	})

	t.Run("empty set serves one empty page", func(t *testing.T) {
		repo := &fakeRepository{}
		s := newTestSession(t, repo)

		view, err := s.View(ctx)
		require.NoError(t, err)

		assert.Equal(t, int64(0), view.Total)
		assert.Equal(t, 1, view.Page)
		assert.Equal(t, 1, view.MaxPage)
		assert.Empty(t, view.Records)
	})

	t.Run("store failure surfaces error and keeps state", func(t *testing.T) {
		repo := &fakeRepository{err: domain.NewStoreError("count annotations", errors.New("down"))}
		s := newTestSession(t, repo)

		before := s.PageState()
		_, err := s.View(ctx)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrServiceUnavailable)
		assert.Equal(t, before, s.PageState())
	})
}

func TestSession_Pagination(t *testing.T) {
	ctx := context.Background()

	t.Run("next advances and clamps at the last page", func(t *testing.T) {
		repo := &fakeRepository{records: seedAnnotations(60)}
		s := newTestSession(t, repo)

		view, err := s.NextPage(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, view.Page)
		assert.Equal(t, 25, repo.lastOffset)

		view, err = s.NextPage(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, view.Page)
		assert.Len(t, view.Records, 10)

		view, err = s.NextPage(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, view.Page, "next past the end is a no-op")
	})

	t.Run("previous steps back and clamps at page 1", func(t *testing.T) {
		repo := &fakeRepository{records: seedAnnotations(60)}
		s := newTestSession(t, repo)

		_, err := s.NextPage(ctx)
		require.NoError(t, err)

		view, err := s.PreviousPage(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, view.Page)

		view, err = s.PreviousPage(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, view.Page)
	})

	t.Run("reset returns to the first page", func(t *testing.T) {
		repo := &fakeRepository{records: seedAnnotations(60)}
		s := newTestSession(t, repo)

		_, err := s.NextPage(ctx)
		require.NoError(t, err)

		view, err := s.ResetPage(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, view.Page)
		assert.Equal(t, 0, repo.lastOffset)
	})

	t.Run("page size change resets to page 1 at the new size", func(t *testing.T) {
		repo := &fakeRepository{records: seedAnnotations(60)}
		s := newTestSession(t, repo)

		_, err := s.NextPage(ctx)
		require.NoError(t, err)

		view, err := s.SetPageSize(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, 1, view.Page)
		assert.Equal(t, 10, view.PageSize)
		assert.Equal(t, 6, view.MaxPage)
	})

	t.Run("page size outside the menu is rejected", func(t *testing.T) {
		repo := &fakeRepository{records: seedAnnotations(5)}
		s := newTestSession(t, repo)

		_, err := s.SetPageSize(ctx, 33)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.Equal(t, domain.DefaultPageSize, s.PageState().Size)
	})
}

func TestSession_SetFilter(t *testing.T) {
	ctx := context.Background()

	t.Run("filter change resets pagination", func(t *testing.T) {
		repo := &fakeRepository{records: seedAnnotations(60)}
		s := newTestSession(t, repo)

		_, err := s.NextPage(ctx)
		require.NoError(t, err)
		require.Equal(t, 2, s.PageState().Page)

		s.SetFilter(domain.FilterSpec{
			Types: []string{"Autoinhibition"},
		})
		assert.Equal(t, 1, s.PageState().Page)

		view, err := s.View(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(30), view.Total)
		for _, row := range view.Records {
			assert.Equal(t, "Autoinhibition", row.AutoregulatoryType)
		}
	})

	t.Run("view reconciles after the set shrinks", func(t *testing.T) {
		repo := &fakeRepository{records: seedAnnotations(60)}
		s := newTestSession(t, repo)

		_, err := s.NextPage(ctx)
		require.NoError(t, err)
		_, err = s.NextPage(ctx)
		require.NoError(t, err)
		require.Equal(t, 3, s.PageState().Page)

		repo.mu.Lock()
		repo.records = repo.records[:20]
		repo.mu.Unlock()

		view, err := s.View(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(20), view.Total)
		assert.Equal(t, 1, view.Page)
		assert.Len(t, view.Records, 20)
	})
}

func TestSession_Stats(t *testing.T) {
	ctx := context.Background()

	t.Run("type statistics cover the whole filtered set", func(t *testing.T) {
		repo := &fakeRepository{records: seedAnnotations(60)}
		s := newTestSession(t, repo)

		buckets, err := s.Stats(ctx, repository.DimensionType)
		require.NoError(t, err)
		require.Len(t, buckets, 2)

		var total int64
		for _, b := range buckets {
			total += b.Count
		}
		assert.Equal(t, int64(60), total)
	})

	t.Run("journal statistics pass the configured top-N", func(t *testing.T) {
		repo := &fakeRepository{records: seedAnnotations(10)}
		s := newTestSession(t, repo)

		_, err := s.Stats(ctx, repository.DimensionJournal)
		require.NoError(t, err)
		assert.Equal(t, 25, repo.lastLimit)
	})

	t.Run("other dimensions are unlimited", func(t *testing.T) {
		repo := &fakeRepository{records: seedAnnotations(10)}
		s := newTestSession(t, repo)

		_, err := s.Stats(ctx, repository.DimensionYear)
		require.NoError(t, err)
		assert.Equal(t, 0, repo.lastLimit)
	})
}

// TestSession_ConsumerConsistency checks that count, pages, and statistics
// describe the same record set: the reported total equals both the sum of all
// page lengths and the sum of the type buckets.
func TestSession_ConsumerConsistency(t *testing.T) {
	ctx := context.Background()

	repo := &fakeRepository{records: seedAnnotations(57)}
	s := newTestSession(t, repo)
	s.SetFilter(domain.FilterSpec{Source: domain.SourceUniProt})

	view, err := s.View(ctx)
	require.NoError(t, err)
	total := view.Total

	paged := int64(len(view.Records))
	for view.Page < view.MaxPage {
		view, err = s.NextPage(ctx)
		require.NoError(t, err)
		paged += int64(len(view.Records))
	}
	assert.Equal(t, total, paged)

	buckets, err := s.Stats(ctx, repository.DimensionType)
	require.NoError(t, err)
	var counted int64
	for _, b := range buckets {
		counted += b.Count
	}
	assert.Equal(t, total, counted)

	var streamed int64
	err = s.StreamFiltered(ctx, func(*domain.Annotation) error {
		streamed++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, total, streamed)
}

func TestSession_StreamFiltered(t *testing.T) {
	ctx := context.Background()

	t.Run("visitor error stops the stream", func(t *testing.T) {
		repo := &fakeRepository{records: seedAnnotations(10)}
		s := newTestSession(t, repo)

		boom := errors.New("sink failed")
		var visited int
		err := s.StreamFiltered(ctx, func(*domain.Annotation) error {
			visited++
			if visited == 3 {
				return boom
			}
			return nil
		})
		require.ErrorIs(t, err, boom)
		assert.Equal(t, 3, visited)
	})
}
