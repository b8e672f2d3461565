package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/soorena/annotation-browser/internal/domain"
	"github.com/soorena/annotation-browser/internal/query"
)

// Compile-time interface verification.
var _ AnnotationRepository = (*PgAnnotationRepository)(nil)

// annotationColumns is the full column list, in scan order.
const annotationColumns = `ac, pmid, uniprot_accessions, autoregulatory_type, polarity,
		mechanism_probability, type_confidence, title, abstract, journal, authors,
		year, month, source, protein_name, gene_name, protein_id, os`

// browseOrder is the fixed presentation order: curated records before
// predicted ones, records without a title last within their category, then
// numeric PMID ascending with non-numeric publication identifiers last, and
// the accession as the final tiebreak so the order is total.
const browseOrder = `ORDER BY
		CASE WHEN source = 'UniProt' THEN 0 ELSE 1 END,
		CASE WHEN title IS NULL OR title = '' THEN 1 ELSE 0 END,
		CASE WHEN pmid ~ '^[0-9]+$' THEN pmid::bigint END ASC NULLS LAST,
		ac ASC`

// PgAnnotationRepository is a PostgreSQL implementation of AnnotationRepository.
type PgAnnotationRepository struct {
	db DBTX
}

// NewPgAnnotationRepository creates a new PostgreSQL annotation repository.
func NewPgAnnotationRepository(db DBTX) *PgAnnotationRepository {
	return &PgAnnotationRepository{db: db}
}

// Count returns the number of records matching the predicate.
func (r *PgAnnotationRepository) Count(ctx context.Context, p query.Predicate) (int64, error) {
	sql := fmt.Sprintf("SELECT COUNT(*) FROM annotations %s", p.Where())

	var total int64
	if err := r.db.QueryRow(ctx, sql, p.Args...).Scan(&total); err != nil {
		return 0, domain.NewStoreError("count annotations", err)
	}
	return total, nil
}

// FetchPage returns one page of records matching the predicate, in the fixed
// browse order. The limit and offset placeholders continue the predicate's
// numbering.
func (r *PgAnnotationRepository) FetchPage(ctx context.Context, p query.Predicate, limit, offset int) ([]*domain.Annotation, error) {
	if limit < 0 {
		return nil, domain.NewValidationError("limit", "limit cannot be negative")
	}
	if offset < 0 {
		return nil, domain.NewValidationError("offset", "offset cannot be negative")
	}

	sql := fmt.Sprintf(`SELECT %s
		FROM annotations
		%s
		%s
		LIMIT $%d OFFSET $%d`,
		annotationColumns, p.Where(), browseOrder, len(p.Args)+1, len(p.Args)+2)

	args := append(append([]any{}, p.Args...), limit, offset)

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, domain.NewStoreError("fetch annotation page", err)
	}
	defer rows.Close()

	records := make([]*domain.Annotation, 0, limit)
	for rows.Next() {
		record, err := scanAnnotationFromRows(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan annotation: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStoreError("fetch annotation page", err)
	}

	return records, nil
}

// StatsBy returns per-bucket record counts for the given dimension. Records
// missing the grouped value land in the "Unknown" bucket. Year buckets are
// returned in chronological order; all other dimensions are ordered by
// descending count with the label as tiebreak.
func (r *PgAnnotationRepository) StatsBy(ctx context.Context, p query.Predicate, dim Dimension, limit int) ([]GroupCount, error) {
	var labelExpr, tail string
	switch dim {
	case DimensionSource:
		labelExpr = "COALESCE(NULLIF(source, ''), 'Unknown')"
		tail = "GROUP BY 1 ORDER BY 2 DESC, 1 ASC"
	case DimensionType:
		labelExpr = "COALESCE(NULLIF(autoregulatory_type, ''), 'Unknown')"
		tail = "GROUP BY 1 ORDER BY 2 DESC, 1 ASC"
	case DimensionJournal:
		labelExpr = "COALESCE(NULLIF(journal, ''), 'Unknown')"
		tail = "GROUP BY 1 ORDER BY 2 DESC, 1 ASC"
	case DimensionYear:
		labelExpr = "COALESCE(year::text, 'Unknown')"
		tail = "GROUP BY year ORDER BY year NULLS LAST"
	default:
		return nil, domain.NewValidationError("by", fmt.Sprintf("unsupported statistics dimension %q", dim))
	}

	sql := fmt.Sprintf("SELECT %s AS label, COUNT(*) AS total FROM annotations %s %s",
		labelExpr, p.Where(), tail)

	args := append([]any{}, p.Args...)
	if limit > 0 {
		sql += fmt.Sprintf(" LIMIT $%d", len(args)+1)
		args = append(args, limit)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, domain.NewStoreError("aggregate annotations", err)
	}
	defer rows.Close()

	var buckets []GroupCount
	for rows.Next() {
		var b GroupCount
		if err := rows.Scan(&b.Label, &b.Count); err != nil {
			return nil, fmt.Errorf("failed to scan statistics bucket: %w", err)
		}
		buckets = append(buckets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStoreError("aggregate annotations", err)
	}

	return buckets, nil
}

// StreamAll visits every record matching the predicate in the fixed browse
// order. The result set is streamed row by row; no full materialization.
func (r *PgAnnotationRepository) StreamAll(ctx context.Context, p query.Predicate, fn func(*domain.Annotation) error) error {
	if fn == nil {
		return domain.NewValidationError("fn", "visitor function cannot be nil")
	}

	sql := fmt.Sprintf("SELECT %s FROM annotations %s %s", annotationColumns, p.Where(), browseOrder)

	rows, err := r.db.Query(ctx, sql, p.Args...)
	if err != nil {
		return domain.NewStoreError("stream annotations", err)
	}
	defer rows.Close()

	for rows.Next() {
		record, err := scanAnnotationFromRows(rows)
		if err != nil {
			return fmt.Errorf("failed to scan annotation: %w", err)
		}
		if err := fn(record); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return domain.NewStoreError("stream annotations", err)
	}

	return nil
}

// GetByAC returns the single record with the given accession.
func (r *PgAnnotationRepository) GetByAC(ctx context.Context, ac string) (*domain.Annotation, error) {
	if _, err := domain.ParseAccession(ac); err != nil {
		return nil, err
	}

	sql := fmt.Sprintf("SELECT %s FROM annotations WHERE ac = $1", annotationColumns)

	record, err := scanAnnotation(r.db.QueryRow(ctx, sql, ac))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("annotation", ac)
		}
		return nil, domain.NewStoreError("get annotation", err)
	}

	return record, nil
}

// annotationDestinations returns the scan destinations in annotationColumns
// order. Year is the only nullable destination; absent text is stored as the
// empty string.
func annotationDestinations(a *domain.Annotation) []any {
	return []any{
		&a.AC, &a.PMID, &a.UniProtAccessions, &a.AutoregulatoryType, &a.Polarity,
		&a.MechanismProbability, &a.TypeConfidence, &a.Title, &a.Abstract, &a.Journal, &a.Authors,
		&a.Year, &a.Month, &a.Source, &a.ProteinName, &a.GeneName, &a.ProteinID, &a.Organism,
	}
}

// scanAnnotation scans a single row into an Annotation.
func scanAnnotation(row pgx.Row) (*domain.Annotation, error) {
	var a domain.Annotation
	if err := row.Scan(annotationDestinations(&a)...); err != nil {
		return nil, err
	}
	return &a, nil
}

// scanAnnotationFromRows scans the current row from pgx.Rows into an Annotation.
func scanAnnotationFromRows(rows pgx.Rows) (*domain.Annotation, error) {
	var a domain.Annotation
	if err := rows.Scan(annotationDestinations(&a)...); err != nil {
		return nil, err
	}
	return &a, nil
}
