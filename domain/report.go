package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DeduplicationState tracks whether a report has been found to duplicate
// an earlier one. It evolves independently of ClassificationState.
type DeduplicationState string

const (
	DedupPending   DeduplicationState = "pending"
	DedupUnique    DeduplicationState = "unique"
	DedupDuplicate DeduplicationState = "duplicate"
)

// ClassificationState tracks whether a report has received its editorial tier.
type ClassificationState string

const (
	ClassificationPending    ClassificationState = "pending"
	ClassificationClassified ClassificationState = "classified"
)

// Tier is the editorial classification assigned when a report is classified.
type Tier string

const (
	TierGeneral  Tier = "general"
	TierNiche    Tier = "niche"
	TierOffTopic Tier = "off_topic"
)

// ReportTraits are boolean editorial feature flags, set together with the tier.
type ReportTraits struct {
	HighValue bool `json:"high_value"`
	Uplifting bool `json:"uplifting"`
}

// Report is one deduplicated, evidence-backed news event moving through the
// pipeline. Created by ingestion, mutated only via the orchestrator that owns
// the respective state track, never deleted.
type Report struct {
	ID                  string
	Locale              Locale
	SourceRefs          []string
	Dateline            time.Time
	Core                string
	Background          string
	Categories          []string
	Angles              []string
	DeduplicationState  DeduplicationState
	CanonicalReportID   string
	ClassificationState ClassificationState
	Tier                Tier
	Traits              *ReportTraits
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// IngestionDecision is the editorial decision service's verdict on a candidate.
type IngestionDecision struct {
	Core       string   `json:"core"`
	Background string   `json:"background"`
	Categories []string `json:"categories"`
	Angles     []string `json:"angles"`
}

// ClassificationDecision assigns a tier and traits to a pending report.
type ClassificationDecision struct {
	Tier   Tier         `json:"tier"`
	Traits ReportTraits `json:"traits"`
	Reason string       `json:"reason"`
}

// NewReport builds a report from a surviving candidate and its ingestion
// decision. Both state tracks start pending.
func NewReport(locale Locale, candidate RawCandidate, decision *IngestionDecision) (*Report, error) {
	if decision == nil {
		return nil, ErrNoDecision
	}

	if decision.Core == "" {
		return nil, fmt.Errorf("%w: empty core summary", ErrInvalidReport)
	}

	if len(decision.Categories) == 0 {
		return nil, fmt.Errorf("%w: at least one category is required", ErrInvalidReport)
	}

	sourceRefs := candidate.SourceIDs()
	if len(sourceRefs) == 0 {
		return nil, fmt.Errorf("%w: candidate has no sources", ErrInvalidReport)
	}

	now := time.Now().UTC()

	return &Report{
		ID:                  uuid.NewString(),
		Locale:              locale,
		SourceRefs:          sourceRefs,
		Dateline:            candidate.Dateline(),
		Core:                decision.Core,
		Background:          decision.Background,
		Categories:          decision.Categories,
		Angles:              decision.Angles,
		DeduplicationState:  DedupPending,
		ClassificationState: ClassificationPending,
		CreatedAt:           now,
		UpdatedAt:           now,
	}, nil
}

// PrimaryCategory returns the first (primary) topical tag.
func (r *Report) PrimaryCategory() string {
	if len(r.Categories) == 0 {
		return ""
	}

	return r.Categories[0]
}

// Classify applies a classification decision. The transition happens exactly
// once; tier and traits are set atomically with the state.
func (r *Report) Classify(decision *ClassificationDecision) error {
	if decision == nil {
		return ErrNoDecision
	}

	if r.ClassificationState == ClassificationClassified {
		return fmt.Errorf("%w: report %s", ErrAlreadyClassified, r.ID)
	}

	switch decision.Tier {
	case TierGeneral, TierNiche, TierOffTopic:
	default:
		return fmt.Errorf("%w: unknown tier %q", ErrInvalidReport, decision.Tier)
	}

	traits := decision.Traits
	r.Tier = decision.Tier
	r.Traits = &traits
	r.ClassificationState = ClassificationClassified
	r.UpdatedAt = time.Now().UTC()

	return nil
}

// MarkDuplicate flags the report as a duplicate of the canonical report.
// Duplicates are permanently excluded from classification and composition.
func (r *Report) MarkDuplicate(canonicalID string) error {
	if canonicalID == "" || canonicalID == r.ID {
		return fmt.Errorf("%w: invalid canonical report id %q", ErrInvalidReport, canonicalID)
	}

	r.DeduplicationState = DedupDuplicate
	r.CanonicalReportID = canonicalID
	r.UpdatedAt = time.Now().UTC()

	return nil
}

// EligibleForComposition reports whether this report may become an article:
// not a duplicate, classified, and in a publishable tier.
func (r *Report) EligibleForComposition() bool {
	if r.DeduplicationState == DedupDuplicate {
		return false
	}

	if r.ClassificationState != ClassificationClassified {
		return false
	}

	return r.Tier == TierGeneral || r.Tier == TierNiche
}
