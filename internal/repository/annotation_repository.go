package repository

import (
	"context"
	"fmt"

	"github.com/soorena/annotation-browser/internal/domain"
	"github.com/soorena/annotation-browser/internal/query"
)

// Dimension selects the grouping column for aggregate statistics.
type Dimension string

// Supported statistics dimensions.
const (
	DimensionSource  Dimension = "source"
	DimensionType    Dimension = "type"
	DimensionYear    Dimension = "year"
	DimensionJournal Dimension = "journal"
)

// ParseDimension validates a statistics dimension received from a client.
func ParseDimension(s string) (Dimension, error) {
	switch Dimension(s) {
	case DimensionSource, DimensionType, DimensionYear, DimensionJournal:
		return Dimension(s), nil
	default:
		return "", domain.NewValidationError("by", fmt.Sprintf("unsupported statistics dimension %q", s))
	}
}

// GroupCount is one bucket of an aggregate statistics result.
type GroupCount struct {
	// Label is the bucket key, "Unknown" for records missing the grouped value.
	Label string `json:"label"`
	Count int64  `json:"count"`
}

// AnnotationRepository defines the read operations over the annotation store.
// All filtered methods receive a compiled predicate; callers must pass the
// same predicate to every method whose results they present together.
type AnnotationRepository interface {
	// Count returns the number of records matching the predicate.
	Count(ctx context.Context, p query.Predicate) (int64, error)

	// FetchPage returns one page of records matching the predicate, in the
	// fixed browse order. Limit and offset must be non-negative.
	FetchPage(ctx context.Context, p query.Predicate, limit, offset int) ([]*domain.Annotation, error)

	// StatsBy returns per-bucket record counts for the given dimension over
	// the records matching the predicate. A positive limit caps the number of
	// buckets returned; zero means unlimited.
	StatsBy(ctx context.Context, p query.Predicate, dim Dimension, limit int) ([]GroupCount, error)

	// StreamAll visits every record matching the predicate in the fixed
	// browse order, calling fn once per record. Iteration stops on the first
	// error returned by fn.
	StreamAll(ctx context.Context, p query.Predicate, fn func(*domain.Annotation) error) error

	// GetByAC returns the single record with the given accession.
	GetByAC(ctx context.Context, ac string) (*domain.Annotation, error)
}
