package domain

import (
	"fmt"
	"strings"
	"time"
)

// Locale identifies one language/country edition of the pipeline.
type Locale struct {
	Language string
	Country  string
}

// ParseLocale parses a "lang-COUNTRY" tag such as "en-US".
func ParseLocale(tag string) (Locale, error) {
	parts := strings.SplitN(tag, "-", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return Locale{}, fmt.Errorf("%w: %q", ErrInvalidLocale, tag)
	}

	return Locale{Language: parts[0], Country: parts[1]}, nil
}

func (l Locale) String() string {
	return l.Language + "-" + l.Country
}

// SourceItem is one raw item contributed by a single news source.
type SourceItem struct {
	SourceID    string    `json:"source_id"`
	Headline    string    `json:"headline"`
	PublishedAt time.Time `json:"published_at"`
}

// RawCandidate bundles the raw source items that may become one report.
// Candidates are fetched fresh per run and never persisted.
type RawCandidate struct {
	Sources []SourceItem `json:"sources"`
}

// EvidenceWeight is the number of distinct sources backing the candidate.
func (c RawCandidate) EvidenceWeight() int {
	seen := make(map[string]struct{}, len(c.Sources))
	for _, s := range c.Sources {
		seen[s.SourceID] = struct{}{}
	}

	return len(seen)
}

// SourceIDs returns the distinct source identifiers in contribution order.
func (c RawCandidate) SourceIDs() []string {
	seen := make(map[string]struct{}, len(c.Sources))
	ids := make([]string, 0, len(c.Sources))

	for _, s := range c.Sources {
		if _, ok := seen[s.SourceID]; ok {
			continue
		}

		seen[s.SourceID] = struct{}{}
		ids = append(ids, s.SourceID)
	}

	return ids
}

// Dateline is the publication time of the candidate's earliest source item.
func (c RawCandidate) Dateline() time.Time {
	var earliest time.Time
	for _, s := range c.Sources {
		if earliest.IsZero() || s.PublishedAt.Before(earliest) {
			earliest = s.PublishedAt
		}
	}

	return earliest
}
