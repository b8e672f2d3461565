package domain

import (
	"strings"
	"unicode"
)

// Polarity symbols. A mechanism is self-amplifying (+), self-limiting (–, an
// en dash, as displayed in the UI) or context-dependent (±).
const (
	PolarityPositive = "+"
	PolarityNegative = "–"
	PolarityBoth     = "±"
)

// PolarityDomain is the full set of selectable polarity symbols. A polarity
// multi-select equal to this set is semantically unconstrained.
var PolarityDomain = []string{PolarityPositive, PolarityNegative, PolarityBoth}

// NonMechanismType is the sentinel label for records the pipeline classified
// as carrying no autoregulatory mechanism.
const NonMechanismType = "None"

// TaxonomyEntry is one canonical mechanism type with its fixed polarity.
type TaxonomyEntry struct {
	Name     string
	Polarity string
}

// MechanismTaxonomy is the closed set of active mechanism categories produced
// by the classification pipeline, in display order.
var MechanismTaxonomy = []TaxonomyEntry{
	{Name: "Autophosphorylation", Polarity: PolarityPositive},
	{Name: "Autoregulation", Polarity: PolarityBoth},
	{Name: "Autocatalytic", Polarity: PolarityPositive},
	{Name: "Autoinhibition", Polarity: PolarityNegative},
	{Name: "Autoubiquitination", Polarity: PolarityNegative},
	{Name: "Autolysis", Polarity: PolarityNegative},
	{Name: "Autoinducer", Polarity: PolarityPositive},
}

// typeAliases maps normalized label spellings that occur in source data to
// their canonical taxonomy name.
var typeAliases = map[string]string{
	"Autocatalysis": "Autocatalytic",
}

// legacyPolarities covers labels emitted by earlier ingestion runs that are
// no longer active taxonomy categories but still appear in persisted data.
var legacyPolarities = map[string]string{
	"Autodephosphorylation": PolarityNegative,
	"Autoacetylation":       PolarityPositive,
	"Autodemethylation":     PolarityBoth,
}

// MechanismTypeDomain returns the canonical mechanism names plus the
// non-mechanism sentinel, the full domain of the type multi-select.
func MechanismTypeDomain() []string {
	names := make([]string, 0, len(MechanismTaxonomy)+1)
	for _, e := range MechanismTaxonomy {
		names = append(names, e.Name)
	}
	return append(names, NonMechanismType)
}

// PolarityResult is the outcome of resolving a record's polarity.
type PolarityResult struct {
	// Symbol is one of the three polarity symbols, or empty when the record
	// has no mechanism or the label is unrecognized.
	Symbol string
	// Unrecognized is set when the label is a non-empty mechanism label that
	// maps to no known taxonomy entry. Callers must surface this rather than
	// defaulting to a symbol: a silently guessed polarity corrupts statistics.
	Unrecognized bool
	// NormalizedLabel is the normalized form of the input label, populated
	// when resolution fell through to the taxonomy lookup.
	NormalizedLabel string
}

// ResolvePolarity resolves the polarity of a record. A persisted non-empty
// polarity is used verbatim (modulo normalizing a plain ASCII hyphen to the
// en dash the UI uses). Otherwise the raw type label is normalized and looked
// up in the taxonomy. The function is total and deterministic: it never
// panics, and equal inputs always produce equal results.
func ResolvePolarity(persisted, rawLabel string) PolarityResult {
	if p := strings.TrimSpace(persisted); p != "" {
		if p == "-" {
			p = PolarityNegative
		}
		return PolarityResult{Symbol: p}
	}
	return ResolveLabelPolarity(rawLabel)
}

// ResolveLabelPolarity maps a raw taxonomy label to its polarity symbol.
// Empty labels and the non-mechanism sentinels produce no symbol.
func ResolveLabelPolarity(rawLabel string) PolarityResult {
	normalized := NormalizeLabel(rawLabel)
	switch normalized {
	case "", "None", "Nonautoregulatory":
		return PolarityResult{}
	}

	name := normalized
	if canonical, ok := typeAliases[name]; ok {
		name = canonical
	}
	for _, e := range MechanismTaxonomy {
		if e.Name == name {
			return PolarityResult{Symbol: e.Polarity, NormalizedLabel: name}
		}
	}
	if symbol, ok := legacyPolarities[name]; ok {
		return PolarityResult{Symbol: symbol, NormalizedLabel: name}
	}
	return PolarityResult{Unrecognized: true, NormalizedLabel: normalized}
}

// NormalizeLabel strips non-letter characters from a raw taxonomy label and
// title-cases the remainder, matching the normalization the ingestion
// pipeline applies before labels are persisted.
func NormalizeLabel(raw string) string {
	var sb strings.Builder
	for _, r := range raw {
		if unicode.IsLetter(r) {
			sb.WriteRune(r)
		}
	}
	letters := []rune(sb.String())
	if len(letters) == 0 {
		return ""
	}
	return string(unicode.ToUpper(letters[0])) + strings.ToLower(string(letters[1:]))
}
