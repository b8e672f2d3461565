package browse

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soorena/annotation-browser/internal/domain"
)

func TestProjector_Project(t *testing.T) {
	p := NewProjector(40, testMetrics, zerolog.Nop())

	t.Run("projects links and resolved polarity", func(t *testing.T) {
		row := p.Project(&domain.Annotation{
			AC:                 "SOORENA-SP-1234567-1",
			PMID:               "1234567",
			UniProtAccessions:  "P12345, Q99999",
			AutoregulatoryType: "Autoinhibition",
			Title:              "Short title",
			Source:             domain.SourceUniProt,
		})

		require.NotNil(t, row.PubMed)
		assert.Equal(t, "1234567", row.PubMed.Label)
		assert.Equal(t, "https://pubmed.ncbi.nlm.nih.gov/1234567/", row.PubMed.URL)

		require.Len(t, row.UniProtAccessions, 2)
		assert.Equal(t, "P12345", row.UniProtAccessions[0].Label)
		assert.Equal(t, "https://www.uniprot.org/uniprotkb/P12345", row.UniProtAccessions[0].URL)
		assert.Equal(t, "Q99999", row.UniProtAccessions[1].Label)

		assert.Equal(t, domain.PolarityNegative, row.Polarity)
	})

	t.Run("persisted polarity wins over the taxonomy", func(t *testing.T) {
		row := p.Project(&domain.Annotation{
			AC:                 "SOORENA-SP-1-1",
			AutoregulatoryType: "Autoinhibition",
			Polarity:           domain.PolarityPositive,
		})
		assert.Equal(t, domain.PolarityPositive, row.Polarity)
	})

	t.Run("unrecognized label is surfaced, not guessed", func(t *testing.T) {
		row := p.Project(&domain.Annotation{
			AC:                 "SOORENA-SP-2-1",
			AutoregulatoryType: "Autofrobnication",
		})
		assert.Equal(t, PolarityUnrecognized, row.Polarity)
	})

	t.Run("non-mechanism record has no polarity", func(t *testing.T) {
		row := p.Project(&domain.Annotation{
			AC:                 "SOORENA-PM-3-1",
			AutoregulatoryType: domain.NonMechanismType,
		})
		assert.Empty(t, row.Polarity)
	})

	t.Run("placeholder publication id gets no link", func(t *testing.T) {
		row := p.Project(&domain.Annotation{
			AC:   "SOORENA-PM-UNKNOWN-4",
			PMID: domain.UnknownPublication,
		})
		assert.Nil(t, row.PubMed)
	})

	t.Run("non-numeric publication id gets no link", func(t *testing.T) {
		row := p.Project(&domain.Annotation{
			AC:   "SOORENA-PM-5-1",
			PMID: "PMC123456",
		})
		assert.Nil(t, row.PubMed)
		assert.Equal(t, "PMC123456", row.PMID)
	})

	t.Run("long abstract gets a preview, full text kept", func(t *testing.T) {
		abstract := strings.Repeat("autoregulation ", 10)
		row := p.Project(&domain.Annotation{
			AC:       "SOORENA-SP-6-1",
			Abstract: abstract,
		})

		assert.Equal(t, abstract, row.Abstract)
		require.NotEmpty(t, row.AbstractPreview)
		assert.True(t, strings.HasSuffix(row.AbstractPreview, "…"))
		assert.LessOrEqual(t, len([]rune(row.AbstractPreview)), 41)
	})

	t.Run("short abstract gets no preview", func(t *testing.T) {
		row := p.Project(&domain.Annotation{
			AC:       "SOORENA-SP-7-1",
			Abstract: "fits in the budget",
		})
		assert.Empty(t, row.AbstractPreview)
	})
}

func TestTruncate(t *testing.T) {
	t.Run("multibyte runes are never split", func(t *testing.T) {
		s := strings.Repeat("±", 50)
		out := truncate(s, 10)
		assert.Equal(t, strings.Repeat("±", 10)+"…", out)
	})

	t.Run("trailing space before the cut is trimmed", func(t *testing.T) {
		out := truncate("hello world again", 6)
		assert.Equal(t, "hello…", out)
	})

	t.Run("zero budget disables previews", func(t *testing.T) {
		assert.Empty(t, truncate("anything", 0))
	})
}

func TestUniProtLinks(t *testing.T) {
	t.Run("empty list yields nil", func(t *testing.T) {
		assert.Nil(t, uniprotLinks(""))
		assert.Nil(t, uniprotLinks("  ,  "))
	})

	t.Run("entries are trimmed", func(t *testing.T) {
		links := uniprotLinks(" P12345 ,Q99999")
		require.Len(t, links, 2)
		assert.Equal(t, "P12345", links[0].Label)
		assert.Equal(t, "Q99999", links[1].Label)
	})
}
