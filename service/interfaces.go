package service

import (
	"context"

	"report-pipeline/domain"
)

//go:generate mockgen -source=interfaces.go -destination=../test/mocks/service_mocks.go -package=mocks

// IngestionService drives raw candidates through admission control and the
// editorial ingestion decision into new reports.
type IngestionService interface {
	IngestLocale(ctx context.Context, locale domain.Locale) (*IngestionResult, error)
}

// ClassificationService drives pending reports through the classification
// decision into a tier.
type ClassificationService interface {
	ClassifyPending(ctx context.Context) (*ClassificationResult, error)
}

// CompositionService drives eligible reports through the composition decision
// into articles.
type CompositionService interface {
	ComposeLocale(ctx context.Context, locale domain.Locale) (*CompositionResult, error)
}

// NewsProvider fetches the current raw candidate batch for a locale.
type NewsProvider interface {
	FetchCandidates(ctx context.Context, locale domain.Locale) ([]domain.RawCandidate, error)
}

// EditorialDecider is the external decision service behind all three stages.
// A nil decision with a nil error means "no decision", never a failure.
type EditorialDecider interface {
	DecideIngestion(ctx context.Context, locale domain.Locale, candidate domain.RawCandidate) (*domain.IngestionDecision, error)
	DecideClassification(ctx context.Context, report *domain.Report) (*domain.ClassificationDecision, error)
	DecideComposition(ctx context.Context, report *domain.Report) (*domain.CompositionDecision, error)
}

// IngestionResult represents the outcome of one ingestion run.
type IngestionResult struct {
	Created        []*domain.Report
	Errors         []error
	CandidateCount int
	AdmittedCount  int
	SuccessCount   int
	SkippedCount   int
	ErrorCount     int
}

// ClassificationResult represents the outcome of one classification run.
type ClassificationResult struct {
	Errors         []error
	ProcessedCount int
	SuccessCount   int
	SkippedCount   int
	ErrorCount     int
}

// CompositionResult represents the outcome of one composition run.
type CompositionResult struct {
	Errors         []error
	ProcessedCount int
	SuccessCount   int
	SkippedCount   int
	ErrorCount     int
}
