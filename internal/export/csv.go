// Package export streams filtered annotation sets as CSV. Exports always
// carry the full field values; preview truncation applies to page views only.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/soorena/annotation-browser/internal/browse"
	"github.com/soorena/annotation-browser/internal/domain"
	"github.com/soorena/annotation-browser/internal/observability"
)

// ContentType is the MIME type of the export payload.
const ContentType = "text/csv; charset=utf-8"

// Source streams the records of one filtered set in browse order.
// browse.Session.StreamFiltered satisfies this signature.
type Source func(ctx context.Context, fn func(*domain.Annotation) error) error

// columns is the CSV header, in annotation display order.
var columns = []string{
	"AC",
	"PMID",
	"PubMed URL",
	"UniProt Accessions",
	"Autoregulatory Type",
	"Polarity",
	"Mechanism Probability",
	"Type Confidence",
	"Title",
	"Abstract",
	"Journal",
	"Authors",
	"Year",
	"Month",
	"Source",
	"Protein Name",
	"Gene Name",
	"Protein ID",
	"Organism",
}

// FileName returns the download file name for an export started at now.
func FileName(now time.Time) string {
	return "soorena_export_" + now.Format("2006-01-02") + ".csv"
}

// Exporter writes filtered record sets as CSV.
type Exporter struct {
	projector *browse.Projector
	metrics   *observability.Metrics
	logger    zerolog.Logger
}

// NewExporter builds an exporter sharing the browse projector, so exported
// polarity values match what page views show.
func NewExporter(projector *browse.Projector, metrics *observability.Metrics, logger zerolog.Logger) *Exporter {
	return &Exporter{
		projector: projector,
		metrics:   metrics,
		logger:    observability.WithComponent(logger, "exporter"),
	}
}

// Write streams the source's records to w as CSV, header first, and returns
// the number of data rows written. Rows are written as they arrive from the
// store; the full set is never buffered.
func (e *Exporter) Write(ctx context.Context, w io.Writer, src Source) (int64, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return 0, fmt.Errorf("failed to write csv header: %w", err)
	}

	var rows int64
	err := src(ctx, func(a *domain.Annotation) error {
		if err := cw.Write(e.record(a)); err != nil {
			return fmt.Errorf("failed to write csv row for %s: %w", a.AC, err)
		}
		rows++
		return nil
	})
	if err != nil {
		return rows, err
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return rows, fmt.Errorf("failed to flush csv: %w", err)
	}

	e.metrics.RecordExport(rows)
	e.logger.Info().Int64("rows", rows).Msg("export completed")
	return rows, nil
}

func (e *Exporter) record(a *domain.Annotation) []string {
	row := e.projector.Project(a)

	year := ""
	if row.Year != nil {
		year = strconv.Itoa(*row.Year)
	}
	pubmed := ""
	if row.PubMed != nil {
		pubmed = row.PubMed.URL
	}

	return []string{
		row.AC,
		row.PMID,
		pubmed,
		a.UniProtAccessions,
		row.AutoregulatoryType,
		row.Polarity,
		formatScore(row.MechanismProbability),
		formatScore(row.TypeConfidence),
		row.Title,
		row.Abstract,
		row.Journal,
		row.Authors,
		year,
		row.Month,
		row.Source,
		row.ProteinName,
		row.GeneName,
		row.ProteinID,
		row.Organism,
	}
}

func formatScore(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
