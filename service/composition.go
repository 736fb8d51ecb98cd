package service

import (
	"context"
	"fmt"
	"log/slog"

	"report-pipeline/domain"
	"report-pipeline/repository"
)

// CompositionService implementation.
type compositionService struct {
	reportRepo  repository.ReportRepository
	articleRepo repository.ArticleRepository
	decider     EditorialDecider
	batchSize   int
	logger      *slog.Logger
}

// NewCompositionService creates a new composition service.
func NewCompositionService(
	reportRepo repository.ReportRepository,
	articleRepo repository.ArticleRepository,
	decider EditorialDecider,
	batchSize int,
	logger *slog.Logger,
) CompositionService {
	return &compositionService{
		reportRepo:  reportRepo,
		articleRepo: articleRepo,
		decider:     decider,
		batchSize:   batchSize,
		logger:      logger,
	}
}

// ComposeLocale runs one composition pass for a locale. The eligibility fetch
// and the final batch insert propagate; per-report failures (including a
// frame/angle count mismatch) skip the report and continue.
func (s *compositionService) ComposeLocale(ctx context.Context, locale domain.Locale) (*CompositionResult, error) {
	s.logger.InfoContext(ctx, "starting composition",
		"locale", locale.String(), "batch_size", s.batchSize)

	reports, err := s.reportRepo.FindEligibleWithoutArticle(ctx, locale, s.batchSize)
	if err != nil {
		return nil, fmt.Errorf("failed to find eligible reports: %w", err)
	}

	result := &CompositionResult{
		ProcessedCount: len(reports),
	}

	articles := make([]*domain.Article, 0, len(reports))

	for _, report := range reports {
		if ctx.Err() != nil {
			s.logger.WarnContext(ctx, "context canceled, skipping remaining reports",
				"locale", locale.String(), "reason", ctx.Err())
			break
		}

		article, err := s.composeReport(ctx, report)
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to compose article",
				"report_id", report.ID, "error", err)

			result.ErrorCount++
			result.Errors = append(result.Errors, err)

			continue
		}

		if article == nil {
			s.logger.InfoContext(ctx, "editor returned no composition, skipping report",
				"report_id", report.ID)

			result.SkippedCount++

			continue
		}

		articles = append(articles, article)
		result.SuccessCount++
	}

	if err := s.articleRepo.CreateMany(ctx, articles); err != nil {
		return nil, fmt.Errorf("failed to persist articles: %w", err)
	}

	s.logger.InfoContext(ctx, "composition completed",
		"locale", locale.String(),
		"processed", result.ProcessedCount,
		"composed", result.SuccessCount,
		"skipped", result.SkippedCount,
		"errors", result.ErrorCount)

	return result, nil
}

// composeReport decides and assembles one article. A nil article with a nil
// error means the editor declined. A frame count that does not match the
// report's angles is rejected by domain.NewArticle.
func (s *compositionService) composeReport(ctx context.Context, report *domain.Report) (*domain.Article, error) {
	decision, err := s.decider.DecideComposition(ctx, report)
	if err != nil {
		return nil, fmt.Errorf("composition decision failed: %w", err)
	}

	if decision == nil {
		return nil, nil
	}

	article, err := domain.NewArticle(report, decision)
	if err != nil {
		return nil, fmt.Errorf("failed to assemble article: %w", err)
	}

	return article, nil
}
