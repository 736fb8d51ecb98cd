package service

import (
	"context"
	"fmt"
	"log/slog"

	"report-pipeline/repository"
)

// ClassificationService implementation.
type classificationService struct {
	reportRepo repository.ReportRepository
	decider    EditorialDecider
	batchSize  int
	logger     *slog.Logger
}

// NewClassificationService creates a new classification service.
func NewClassificationService(
	reportRepo repository.ReportRepository,
	decider EditorialDecider,
	batchSize int,
	logger *slog.Logger,
) ClassificationService {
	return &classificationService{
		reportRepo: reportRepo,
		decider:    decider,
		batchSize:  batchSize,
		logger:     logger,
	}
}

// ClassifyPending runs one classification pass over the global batch of
// pending reports. The initial fetch propagates; per-report failures leave
// the report pending so the next scheduled run retries it.
func (s *classificationService) ClassifyPending(ctx context.Context) (*ClassificationResult, error) {
	s.logger.InfoContext(ctx, "starting classification", "batch_size", s.batchSize)

	reports, err := s.reportRepo.FindPendingClassification(ctx, s.batchSize)
	if err != nil {
		return nil, fmt.Errorf("failed to find pending reports: %w", err)
	}

	result := &ClassificationResult{
		ProcessedCount: len(reports),
	}

	for _, report := range reports {
		if ctx.Err() != nil {
			s.logger.WarnContext(ctx, "context canceled, skipping remaining reports",
				"remaining", len(reports)-result.SuccessCount-result.SkippedCount-result.ErrorCount,
				"reason", ctx.Err())
			break
		}

		decision, err := s.decider.DecideClassification(ctx, report)
		if err != nil {
			s.logger.ErrorContext(ctx, "classification decision failed, report stays pending",
				"report_id", report.ID, "error", err)

			result.ErrorCount++
			result.Errors = append(result.Errors, err)

			continue
		}

		if decision == nil {
			s.logger.InfoContext(ctx, "editor returned no classification, report stays pending",
				"report_id", report.ID)

			result.SkippedCount++

			continue
		}

		// Validate the decision against the lifecycle rules before touching
		// the store.
		if err := report.Classify(decision); err != nil {
			s.logger.ErrorContext(ctx, "invalid classification decision",
				"report_id", report.ID, "tier", string(decision.Tier), "error", err)

			result.ErrorCount++
			result.Errors = append(result.Errors, err)

			continue
		}

		if err := s.reportRepo.MarkClassified(ctx, report.ID, decision.Tier, decision.Traits); err != nil {
			s.logger.ErrorContext(ctx, "failed to persist classification",
				"report_id", report.ID, "error", err)

			result.ErrorCount++
			result.Errors = append(result.Errors, err)

			continue
		}

		result.SuccessCount++

		s.logger.DebugContext(ctx, "report classified",
			"report_id", report.ID,
			"tier", string(decision.Tier),
			"reason", decision.Reason)
	}

	s.logger.InfoContext(ctx, "classification completed",
		"processed", result.ProcessedCount,
		"success", result.SuccessCount,
		"skipped", result.SkippedCount,
		"errors", result.ErrorCount)

	return result, nil
}
