package driver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"report-pipeline/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const reportColumns = `
	id, locale, source_refs, dateline, core, background, categories, angles,
	dedup_state, canonical_report_id, classification_state, tier,
	trait_high_value, trait_uplifting, created_at, updated_at
`

// CountReportsAcceptedSince counts reports created for a locale at or after
// the given instant.
func CountReportsAcceptedSince(ctx context.Context, db *pgxpool.Pool, locale domain.Locale, since time.Time) (int, error) {
	if db == nil {
		return 0, fmt.Errorf("database connection is nil")
	}

	query := `
		SELECT COUNT(*) FROM reports WHERE locale = $1 AND created_at >= $2
	`

	var count int

	err := db.QueryRow(ctx, query, locale.String(), since).Scan(&count)
	if err != nil {
		return 0, err
	}

	return count, nil
}

// GetSeenSourceRefs returns every source identifier referenced by any report
// in the locale.
func GetSeenSourceRefs(ctx context.Context, db *pgxpool.Pool, locale domain.Locale) ([]string, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	query := `
		SELECT DISTINCT unnest(source_refs) FROM reports WHERE locale = $1
	`

	rows, err := db.Query(ctx, query, locale.String())
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// CreateReport inserts a new report.
func CreateReport(ctx context.Context, db *pgxpool.Pool, report *domain.Report) error {
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}

	query := `
		INSERT INTO reports (
			id, locale, source_refs, dateline, core, background, categories, angles,
			dedup_state, classification_state, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := db.Exec(ctx, query,
		report.ID,
		report.Locale.String(),
		report.SourceRefs,
		report.Dateline,
		report.Core,
		report.Background,
		report.Categories,
		report.Angles,
		string(report.DeduplicationState),
		string(report.ClassificationState),
		report.CreatedAt,
		report.UpdatedAt,
	)
	if err != nil {
		return err
	}

	return nil
}

// GetPendingClassification returns up to limit reports that still await
// classification, oldest first. Duplicates are excluded permanently.
func GetPendingClassification(ctx context.Context, db *pgxpool.Pool, limit int) ([]*domain.Report, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	query := `
		SELECT ` + reportColumns + `
		FROM reports
		WHERE classification_state = 'pending' AND dedup_state <> 'duplicate'
		ORDER BY created_at
		LIMIT $1
	`

	rows, err := db.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, collectReport)
}

// MarkReportClassified sets tier, traits, and the classified state in one
// statement, guarded so the pending -> classified transition happens at most
// once.
func MarkReportClassified(ctx context.Context, db *pgxpool.Pool, reportID string, tier domain.Tier, traits domain.ReportTraits) error {
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}

	query := `
		UPDATE reports
		SET classification_state = 'classified',
			tier = $2,
			trait_high_value = $3,
			trait_uplifting = $4,
			updated_at = now()
		WHERE id = $1 AND classification_state = 'pending'
	`

	tag, err := db.Exec(ctx, query, reportID, string(tier), traits.HighValue, traits.Uplifting)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrAlreadyClassified
	}

	return nil
}

// MarkReportDuplicate flags a report as a duplicate of the canonical report
// and merges its source references onto the canonical one.
func MarkReportDuplicate(ctx context.Context, db *pgxpool.Pool, reportID, canonicalID string) error {
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}

	tx, err := db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	markQuery := `
		UPDATE reports
		SET dedup_state = 'duplicate',
			canonical_report_id = $2,
			updated_at = now()
		WHERE id = $1
	`

	tag, err := tx.Exec(ctx, markQuery, reportID, canonicalID)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrReportNotFound
	}

	mergeQuery := `
		UPDATE reports
		SET source_refs = ARRAY(
				SELECT DISTINCT ref FROM unnest(
					source_refs || (SELECT source_refs FROM reports WHERE id = $2)
				) AS ref
			),
			dedup_state = 'unique',
			updated_at = now()
		WHERE id = $1
	`

	tag, err = tx.Exec(ctx, mergeQuery, canonicalID, reportID)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrReportNotFound
	}

	return tx.Commit(ctx)
}

// GetEligibleWithoutArticle returns up to limit reports that satisfy the
// composition eligibility invariant and have no article yet.
func GetEligibleWithoutArticle(ctx context.Context, db *pgxpool.Pool, locale domain.Locale, limit int) ([]*domain.Report, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	query := `
		SELECT ` + reportColumns + `
		FROM reports r
		WHERE r.locale = $1
			AND r.dedup_state <> 'duplicate'
			AND r.classification_state = 'classified'
			AND r.tier IN ('general', 'niche')
			AND NOT EXISTS (SELECT 1 FROM articles a WHERE a.report_id = r.id)
		ORDER BY r.created_at
		LIMIT $2
	`

	rows, err := db.Query(ctx, query, locale.String(), limit)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, collectReport)
}

// GetReportByID fetches one report.
func GetReportByID(ctx context.Context, db *pgxpool.Pool, reportID string) (*domain.Report, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	query := `
		SELECT ` + reportColumns + `
		FROM reports
		WHERE id = $1
	`

	rows, err := db.Query(ctx, query, reportID)
	if err != nil {
		return nil, err
	}

	report, err := pgx.CollectOneRow(rows, collectReport)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrReportNotFound
	}

	if err != nil {
		return nil, err
	}

	return report, nil
}

func collectReport(row pgx.CollectableRow) (*domain.Report, error) {
	var (
		report         domain.Report
		localeTag      string
		dedupState     string
		classState     string
		canonicalID    *string
		tier           *string
		traitHighValue *bool
		traitUplifting *bool
	)

	err := row.Scan(
		&report.ID,
		&localeTag,
		&report.SourceRefs,
		&report.Dateline,
		&report.Core,
		&report.Background,
		&report.Categories,
		&report.Angles,
		&dedupState,
		&canonicalID,
		&classState,
		&tier,
		&traitHighValue,
		&traitUplifting,
		&report.CreatedAt,
		&report.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	locale, err := domain.ParseLocale(localeTag)
	if err != nil {
		return nil, err
	}

	report.Locale = locale
	report.DeduplicationState = domain.DeduplicationState(dedupState)
	report.ClassificationState = domain.ClassificationState(classState)

	if canonicalID != nil {
		report.CanonicalReportID = *canonicalID
	}

	if tier != nil {
		report.Tier = domain.Tier(*tier)
	}

	if traitHighValue != nil && traitUplifting != nil {
		report.Traits = &domain.ReportTraits{
			HighValue: *traitHighValue,
			Uplifting: *traitUplifting,
		}
	}

	return &report, nil
}
