package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soorena/annotation-browser/internal/browse"
	"github.com/soorena/annotation-browser/internal/domain"
	"github.com/soorena/annotation-browser/internal/observability"
)

var testMetrics = observability.NewMetrics("export_test")

func newTestExporter() *Exporter {
	projector := browse.NewProjector(300, testMetrics, zerolog.Nop())
	return NewExporter(projector, testMetrics, zerolog.Nop())
}

func sliceSource(records []*domain.Annotation) Source {
	return func(ctx context.Context, fn func(*domain.Annotation) error) error {
		for _, r := range records {
			if err := fn(r); err != nil {
				return err
			}
		}
		return nil
	}
}

func intPtr(n int) *int { return &n }

func TestFileName(t *testing.T) {
	now := time.Date(2026, time.August, 25, 14, 30, 0, 0, time.UTC)
	assert.Equal(t, "soorena_export_2026-08-25.csv", FileName(now))
}

func TestExporter_Write(t *testing.T) {
	ctx := context.Background()

	t.Run("writes header and full rows", func(t *testing.T) {
		records := []*domain.Annotation{
			{
				AC:                   "SOORENA-SP-1234567-1",
				PMID:                 "1234567",
				UniProtAccessions:    "P12345, Q99999",
				AutoregulatoryType:   "Autoinhibition",
				MechanismProbability: 0.97,
				TypeConfidence:       0.85,
				Title:                "Autoinhibition of a kinase",
				Abstract:             strings.Repeat("long abstract ", 100),
				Journal:              "Nature",
				Authors:              "Doe J, Roe R",
				Year:                 intPtr(2021),
				Month:                "Mar",
				Source:               domain.SourceUniProt,
				ProteinName:          "Kinase X",
				GeneName:             "KINX",
				ProteinID:            "KINX_HUMAN",
				Organism:             "Homo sapiens",
			},
			{
				AC:                 "SOORENA-PM-UNKNOWN-1",
				PMID:               domain.UnknownPublication,
				AutoregulatoryType: domain.NonMechanismType,
				Source:             domain.SourceNonUniProt,
			},
		}

		var buf bytes.Buffer
		rows, err := newTestExporter().Write(ctx, &buf, sliceSource(records))
		require.NoError(t, err)
		assert.Equal(t, int64(2), rows)

		parsed, err := csv.NewReader(&buf).ReadAll()
		require.NoError(t, err)
		require.Len(t, parsed, 3)

		header := parsed[0]
		assert.Equal(t, "AC", header[0])
		assert.Equal(t, "Autoregulatory Type", header[4])
		assert.Equal(t, "Organism", header[18])

		first := parsed[1]
		assert.Equal(t, "SOORENA-SP-1234567-1", first[0])
		assert.Equal(t, "https://pubmed.ncbi.nlm.nih.gov/1234567/", first[2])
		assert.Equal(t, "P12345, Q99999", first[3])
		assert.Equal(t, domain.PolarityNegative, first[5], "polarity resolved from the taxonomy")
		assert.Equal(t, "0.97", first[6])
		assert.Equal(t, records[0].Abstract, first[9], "abstract exported untruncated")
		assert.Equal(t, "2021", first[12])

		second := parsed[2]
		assert.Empty(t, second[2], "placeholder publication id gets no link")
		assert.Empty(t, second[5], "non-mechanism record has no polarity")
		assert.Empty(t, second[12], "unknown year exports empty")
	})

	t.Run("empty set exports the header only", func(t *testing.T) {
		var buf bytes.Buffer
		rows, err := newTestExporter().Write(ctx, &buf, sliceSource(nil))
		require.NoError(t, err)
		assert.Equal(t, int64(0), rows)

		parsed, err := csv.NewReader(&buf).ReadAll()
		require.NoError(t, err)
		assert.Len(t, parsed, 1)
	})

	t.Run("source failure stops the export", func(t *testing.T) {
		boom := errors.New("connection reset")
		src := func(ctx context.Context, fn func(*domain.Annotation) error) error {
			if err := fn(&domain.Annotation{AC: "SOORENA-SP-1-1"}); err != nil {
				return err
			}
			return boom
		}

		var buf bytes.Buffer
		rows, err := newTestExporter().Write(ctx, &buf, src)
		require.ErrorIs(t, err, boom)
		assert.Equal(t, int64(1), rows)
	})

	t.Run("fields containing delimiters are quoted", func(t *testing.T) {
		records := []*domain.Annotation{{
			AC:    "SOORENA-SP-2-1",
			Title: `Regulation, "feedback", and control`,
		}}

		var buf bytes.Buffer
		_, err := newTestExporter().Write(ctx, &buf, sliceSource(records))
		require.NoError(t, err)

		parsed, err := csv.NewReader(&buf).ReadAll()
		require.NoError(t, err)
		require.Len(t, parsed, 2)
		assert.Equal(t, `Regulation, "feedback", and control`, parsed[1][8])
	})
}
