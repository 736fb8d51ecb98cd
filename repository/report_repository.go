package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"report-pipeline/domain"
	"report-pipeline/driver"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ReportRepository implementation.
type reportRepository struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

// NewReportRepository creates a new report repository.
func NewReportRepository(db *pgxpool.Pool, logger *slog.Logger) ReportRepository {
	return &reportRepository{
		db:     db,
		logger: logger,
	}
}

// CountAcceptedSince counts reports accepted for the locale since the given
// instant.
func (r *reportRepository) CountAcceptedSince(ctx context.Context, locale domain.Locale, since time.Time) (int, error) {
	count, err := driver.CountReportsAcceptedSince(ctx, r.db, locale, since)
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to count accepted reports",
			"locale", locale.String(), "error", err)

		return 0, fmt.Errorf("failed to count accepted reports: %w", err)
	}

	return count, nil
}

// AllSeenSourceRefs returns the set of source identifiers already referenced
// by any report in the locale.
func (r *reportRepository) AllSeenSourceRefs(ctx context.Context, locale domain.Locale) (map[string]struct{}, error) {
	refs, err := driver.GetSeenSourceRefs(ctx, r.db, locale)
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to load seen source refs",
			"locale", locale.String(), "error", err)

		return nil, fmt.Errorf("failed to load seen source refs: %w", err)
	}

	seen := make(map[string]struct{}, len(refs))
	for _, ref := range refs {
		seen[ref] = struct{}{}
	}

	return seen, nil
}

// Create persists a newly ingested report.
func (r *reportRepository) Create(ctx context.Context, report *domain.Report) error {
	if err := driver.CreateReport(ctx, r.db, report); err != nil {
		r.logger.ErrorContext(ctx, "failed to create report",
			"report_id", report.ID, "error", err)

		return fmt.Errorf("failed to create report: %w", err)
	}

	r.logger.InfoContext(ctx, "report created",
		"report_id", report.ID,
		"locale", report.Locale.String(),
		"sources", len(report.SourceRefs))

	return nil
}

// FindPendingClassification returns reports awaiting classification.
func (r *reportRepository) FindPendingClassification(ctx context.Context, limit int) ([]*domain.Report, error) {
	reports, err := driver.GetPendingClassification(ctx, r.db, limit)
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to find pending reports", "error", err)
		return nil, fmt.Errorf("failed to find pending reports: %w", err)
	}

	return reports, nil
}

// MarkClassified records the classification decision atomically with the
// state transition.
func (r *reportRepository) MarkClassified(ctx context.Context, reportID string, tier domain.Tier, traits domain.ReportTraits) error {
	if err := driver.MarkReportClassified(ctx, r.db, reportID, tier, traits); err != nil {
		r.logger.ErrorContext(ctx, "failed to mark report classified",
			"report_id", reportID, "tier", string(tier), "error", err)

		return fmt.Errorf("failed to mark report classified: %w", err)
	}

	return nil
}

// MarkDuplicate flags a report as duplicate and merges its source refs onto
// the canonical report.
func (r *reportRepository) MarkDuplicate(ctx context.Context, reportID, canonicalID string) error {
	if err := driver.MarkReportDuplicate(ctx, r.db, reportID, canonicalID); err != nil {
		r.logger.ErrorContext(ctx, "failed to mark report duplicate",
			"report_id", reportID, "canonical_id", canonicalID, "error", err)

		return fmt.Errorf("failed to mark report duplicate: %w", err)
	}

	return nil
}

// FindEligibleWithoutArticle returns composable reports that have no article
// yet.
func (r *reportRepository) FindEligibleWithoutArticle(ctx context.Context, locale domain.Locale, limit int) ([]*domain.Report, error) {
	reports, err := driver.GetEligibleWithoutArticle(ctx, r.db, locale, limit)
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to find eligible reports",
			"locale", locale.String(), "error", err)

		return nil, fmt.Errorf("failed to find eligible reports: %w", err)
	}

	return reports, nil
}
