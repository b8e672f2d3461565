// Package domain provides domain models and business logic for the SOORENA
// annotation browser service.
package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Source categories for annotation records. Curated records originate from a
// reference database; everything else is produced by the prediction pipeline.
// These values must match the values stored in the annotations.source column.
const (
	SourceUniProt    = "UniProt"
	SourceNonUniProt = "Non-UniProt"
)

// AccessionPrefix is the fixed prefix of every record accession.
const AccessionPrefix = "SOORENA"

// UnknownPublication is the placeholder used in an accession when the record
// has no publication identifier.
const UnknownPublication = "UNKNOWN"

// Annotation is one immutable literature-derived annotation entry. Records are
// produced by the upstream ingestion pipeline and are read-only to this
// service; no record is ever mutated or deleted during a session.
type Annotation struct {
	// AC is the globally unique record accession (SOORENA-{source}-{pmid}-{n}).
	AC string
	// PMID is the source publication identifier. May be empty or "UNKNOWN".
	PMID string
	// UniProtAccessions is a comma-delimited list of UniProtKB accessions.
	UniProtAccessions string
	// AutoregulatoryType is the mechanism-type label from the closed taxonomy,
	// or "None" for records without a mechanism.
	AutoregulatoryType string
	// Polarity is the persisted polarity symbol. Empty when the ingestion
	// pipeline did not classify it; resolved at read time from the type.
	Polarity string
	// MechanismProbability is the presence-of-mechanism confidence score.
	MechanismProbability float64
	// TypeConfidence is the type-classification confidence score.
	TypeConfidence float64

	Title    string
	Abstract string
	Journal  string
	Authors  string

	// Year is the publication year; nil when unknown.
	Year  *int
	Month string

	Source      string
	ProteinName string
	GeneName    string
	ProteinID   string
	// Organism is the organism species (the OS column).
	Organism string
}

// HasTitle reports whether the record carries a non-empty title. Records
// without a title sort last within their source category.
func (a *Annotation) HasTitle() bool {
	return strings.TrimSpace(a.Title) != ""
}

// Accession is a parsed record accession.
type Accession struct {
	SourceCode string
	// PublicationID is the PMID portion, or "UNKNOWN".
	PublicationID string
	// Counter restarts at 1 for each distinct (SourceCode, PublicationID) pair.
	Counter int
}

// String formats the accession back into its canonical wire form.
func (a Accession) String() string {
	return fmt.Sprintf("%s-%s-%s-%d", AccessionPrefix, a.SourceCode, a.PublicationID, a.Counter)
}

// ParseAccession parses a record accession of the form
// PREFIX-{SourceCode}-{PMID|UNKNOWN}-{Counter}. The accession is generated at
// ingestion time; this service only validates and decomposes it.
func ParseAccession(s string) (Accession, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 4 {
		return Accession{}, NewValidationError("ac", fmt.Sprintf("malformed accession %q: expected 4 dash-separated segments", s))
	}
	if parts[0] != AccessionPrefix {
		return Accession{}, NewValidationError("ac", fmt.Sprintf("malformed accession %q: expected prefix %s", s, AccessionPrefix))
	}
	if parts[1] == "" {
		return Accession{}, NewValidationError("ac", fmt.Sprintf("malformed accession %q: empty source code", s))
	}
	if parts[2] == "" {
		return Accession{}, NewValidationError("ac", fmt.Sprintf("malformed accession %q: empty publication segment", s))
	}
	counter, err := strconv.Atoi(parts[3])
	if err != nil || counter < 1 {
		return Accession{}, NewValidationError("ac", fmt.Sprintf("malformed accession %q: counter must be a positive integer", s))
	}
	return Accession{
		SourceCode:    parts[1],
		PublicationID: parts[2],
		Counter:       counter,
	}, nil
}
