package browse

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/soorena/annotation-browser/internal/domain"
	"github.com/soorena/annotation-browser/internal/observability"
)

// PolarityUnrecognized is the polarity value presented for records whose
// taxonomy label maps to no known entry. The label is surfaced as-is instead
// of being silently coerced to a symbol.
const PolarityUnrecognized = "unrecognized"

// External resource URL templates.
const (
	pubmedBaseURL  = "https://pubmed.ncbi.nlm.nih.gov/"
	uniprotBaseURL = "https://www.uniprot.org/uniprotkb/"
)

// Link is a hyperlink-ready reference to an external resource.
type Link struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// Row is one annotation record projected for display. Free-text fields carry
// the full value plus a preview truncated to the configured character budget.
type Row struct {
	AC                   string  `json:"ac"`
	PMID                 string  `json:"pmid,omitempty"`
	PubMed               *Link   `json:"pubmed,omitempty"`
	UniProtAccessions    []Link  `json:"uniprot_accessions,omitempty"`
	AutoregulatoryType   string  `json:"autoregulatory_type"`
	Polarity             string  `json:"polarity,omitempty"`
	MechanismProbability float64 `json:"mechanism_probability"`
	TypeConfidence       float64 `json:"type_confidence"`
	Title                string  `json:"title,omitempty"`
	Abstract             string  `json:"abstract,omitempty"`
	AbstractPreview      string  `json:"abstract_preview,omitempty"`
	Journal              string  `json:"journal,omitempty"`
	Authors              string  `json:"authors,omitempty"`
	Year                 *int    `json:"year,omitempty"`
	Month                string  `json:"month,omitempty"`
	Source               string  `json:"source"`
	ProteinName          string  `json:"protein_name,omitempty"`
	GeneName             string  `json:"gene_name,omitempty"`
	ProteinID            string  `json:"protein_id,omitempty"`
	Organism             string  `json:"organism,omitempty"`
}

// Projector turns stored annotations into display rows.
type Projector struct {
	previewLength int
	metrics       *observability.Metrics
	logger        zerolog.Logger
}

// NewProjector builds a projector. previewLength is the free-text preview
// budget in runes.
func NewProjector(previewLength int, metrics *observability.Metrics, logger zerolog.Logger) *Projector {
	return &Projector{
		previewLength: previewLength,
		metrics:       metrics,
		logger:        observability.WithComponent(logger, "projector"),
	}
}

// Project renders one annotation. Polarity is resolved from the persisted
// symbol with the taxonomy as fallback; unrecognized labels are surfaced and
// counted rather than guessed.
func (p *Projector) Project(a *domain.Annotation) Row {
	row := Row{
		AC:                   a.AC,
		PMID:                 a.PMID,
		PubMed:               pubmedLink(a.PMID),
		UniProtAccessions:    uniprotLinks(a.UniProtAccessions),
		AutoregulatoryType:   a.AutoregulatoryType,
		Polarity:             p.resolvePolarity(a),
		MechanismProbability: a.MechanismProbability,
		TypeConfidence:       a.TypeConfidence,
		Title:                a.Title,
		Abstract:             a.Abstract,
		AbstractPreview:      truncate(a.Abstract, p.previewLength),
		Journal:              a.Journal,
		Authors:              a.Authors,
		Year:                 a.Year,
		Month:                a.Month,
		Source:               a.Source,
		ProteinName:          a.ProteinName,
		GeneName:             a.GeneName,
		ProteinID:            a.ProteinID,
		Organism:             a.Organism,
	}
	return row
}

func (p *Projector) resolvePolarity(a *domain.Annotation) string {
	res := domain.ResolvePolarity(a.Polarity, a.AutoregulatoryType)
	if res.Unrecognized {
		p.metrics.RecordUnrecognizedLabel(res.NormalizedLabel)
		p.logger.Warn().
			Str("ac", a.AC).
			Str("label", res.NormalizedLabel).
			Msg("unrecognized taxonomy label")
		return PolarityUnrecognized
	}
	return res.Symbol
}

// pubmedLink builds a PubMed link for numeric publication identifiers.
// Placeholder and free-text identifiers get no link.
func pubmedLink(pmid string) *Link {
	pmid = strings.TrimSpace(pmid)
	if pmid == "" || pmid == domain.UnknownPublication || !isDigits(pmid) {
		return nil
	}
	return &Link{Label: pmid, URL: pubmedBaseURL + pmid + "/"}
}

// uniprotLinks splits the comma-delimited accession list into one link per
// accession.
func uniprotLinks(accessions string) []Link {
	if strings.TrimSpace(accessions) == "" {
		return nil
	}
	parts := strings.Split(accessions, ",")
	links := make([]Link, 0, len(parts))
	for _, part := range parts {
		acc := strings.TrimSpace(part)
		if acc == "" {
			continue
		}
		links = append(links, Link{Label: acc, URL: uniprotBaseURL + acc})
	}
	if len(links) == 0 {
		return nil
	}
	return links
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// truncate cuts s to at most limit runes, appending an ellipsis when anything
// was cut. Returns the empty string when s already fits: callers treat an
// empty preview as "full text is short enough".
func truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return ""
	}
	return strings.TrimRight(string(runes[:limit]), " ") + "…"
}
