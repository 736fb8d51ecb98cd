package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"report-pipeline/admission"
	"report-pipeline/domain"
	"report-pipeline/repository"
)

// IngestionService implementation.
type ingestionService struct {
	reportRepo  repository.ReportRepository
	seenCache   repository.SeenSourceCache
	provider    NewsProvider
	decider     EditorialDecider
	dailyTarget int
	logger      *slog.Logger
	now         func() time.Time
}

// NewIngestionService creates a new ingestion service.
func NewIngestionService(
	reportRepo repository.ReportRepository,
	seenCache repository.SeenSourceCache,
	provider NewsProvider,
	decider EditorialDecider,
	dailyTarget int,
	logger *slog.Logger,
) IngestionService {
	return &ingestionService{
		reportRepo:  reportRepo,
		seenCache:   seenCache,
		provider:    provider,
		decider:     decider,
		dailyTarget: dailyTarget,
		logger:      logger,
		now:         time.Now,
	}
}

// IngestLocale runs one admission-controlled ingestion pass for a locale.
// Failures before the per-candidate loop (count query, seen-source query,
// candidate fetch) abort the run and propagate; failures inside the loop are
// logged, counted, and never poison the remaining candidates.
func (s *ingestionService) IngestLocale(ctx context.Context, locale domain.Locale) (*IngestionResult, error) {
	s.logger.InfoContext(ctx, "starting ingestion", "locale", locale.String())

	accepted, err := s.reportRepo.CountAcceptedSince(ctx, locale, startOfDayUTC(s.now()))
	if err != nil {
		return nil, fmt.Errorf("failed to count accepted reports: %w", err)
	}

	thresholds := admission.Thresholds(accepted, s.dailyTarget)

	seen, err := s.seenSources(ctx, locale)
	if err != nil {
		return nil, fmt.Errorf("failed to load seen sources: %w", err)
	}

	candidates, err := s.provider.FetchCandidates(ctx, locale)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch candidates: %w", err)
	}

	picked := admission.FilterCandidates(candidates, thresholds, seen)

	result := &IngestionResult{
		CandidateCount: len(candidates),
		AdmittedCount:  len(picked),
	}

	s.logger.InfoContext(ctx, "admission control applied",
		"locale", locale.String(),
		"accepted_today", accepted,
		"min_evidence", thresholds.MinEvidence,
		"max_intake", thresholds.MaxIntake,
		"candidates", len(candidates),
		"admitted", len(picked))

	for _, candidate := range picked {
		if ctx.Err() != nil {
			s.logger.WarnContext(ctx, "context canceled, skipping remaining candidates",
				"locale", locale.String(), "reason", ctx.Err())
			break
		}

		report, err := s.ingestCandidate(ctx, locale, candidate)
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to ingest candidate",
				"locale", locale.String(),
				"sources", candidate.EvidenceWeight(),
				"error", err)

			result.ErrorCount++
			result.Errors = append(result.Errors, err)

			continue
		}

		if report == nil {
			s.logger.InfoContext(ctx, "editor saw insufficient signal, skipping candidate",
				"locale", locale.String(), "sources", candidate.EvidenceWeight())

			result.SkippedCount++

			continue
		}

		result.Created = append(result.Created, report)
		result.SuccessCount++

		// Make this report's sources visible to later candidates in the run.
		s.seenCache.Add(ctx, locale, report.SourceRefs)
	}

	s.logger.InfoContext(ctx, "ingestion completed",
		"locale", locale.String(),
		"admitted", result.AdmittedCount,
		"created", result.SuccessCount,
		"skipped", result.SkippedCount,
		"errors", result.ErrorCount)

	return result, nil
}

// ingestCandidate decides and persists one candidate. A nil report with a nil
// error means the editor declined to form a report.
func (s *ingestionService) ingestCandidate(ctx context.Context, locale domain.Locale, candidate domain.RawCandidate) (*domain.Report, error) {
	decision, err := s.decider.DecideIngestion(ctx, locale, candidate)
	if err != nil {
		return nil, fmt.Errorf("ingestion decision failed: %w", err)
	}

	if decision == nil {
		return nil, nil
	}

	report, err := domain.NewReport(locale, candidate, decision)
	if err != nil {
		return nil, fmt.Errorf("failed to construct report: %w", err)
	}

	if err := s.reportRepo.Create(ctx, report); err != nil {
		return nil, fmt.Errorf("failed to persist report: %w", err)
	}

	return report, nil
}

// seenSources loads the seen-source set, preferring the cache and warming it
// from the store on a miss. Only the store path can fail the run.
func (s *ingestionService) seenSources(ctx context.Context, locale domain.Locale) (map[string]struct{}, error) {
	if seen, ok := s.seenCache.Load(ctx, locale); ok {
		return seen, nil
	}

	seen, err := s.reportRepo.AllSeenSourceRefs(ctx, locale)
	if err != nil {
		return nil, err
	}

	s.seenCache.Warm(ctx, locale, seen)

	return seen, nil
}

func startOfDayUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
