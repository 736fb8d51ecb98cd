package repository

import (
	"context"
	"time"

	"report-pipeline/domain"
)

//go:generate mockgen -source=interfaces.go -destination=../test/mocks/repository_mocks.go -package=mocks

// ReportRepository handles report persistence.
type ReportRepository interface {
	CountAcceptedSince(ctx context.Context, locale domain.Locale, since time.Time) (int, error)
	AllSeenSourceRefs(ctx context.Context, locale domain.Locale) (map[string]struct{}, error)
	Create(ctx context.Context, report *domain.Report) error
	FindPendingClassification(ctx context.Context, limit int) ([]*domain.Report, error)
	MarkClassified(ctx context.Context, reportID string, tier domain.Tier, traits domain.ReportTraits) error
	MarkDuplicate(ctx context.Context, reportID, canonicalID string) error
	FindEligibleWithoutArticle(ctx context.Context, locale domain.Locale, limit int) ([]*domain.Report, error)
}

// ArticleRepository handles article persistence.
type ArticleRepository interface {
	CreateMany(ctx context.Context, articles []*domain.Article) error
}

// SeenSourceCache fronts the seen-source set so candidates admitted earlier
// in a run are visible to later ones without a store round trip. Cache
// failures must degrade to the store, never fail ingestion.
type SeenSourceCache interface {
	Load(ctx context.Context, locale domain.Locale) (map[string]struct{}, bool)
	Warm(ctx context.Context, locale domain.Locale, refs map[string]struct{})
	Add(ctx context.Context, locale domain.Locale, refs []string)
}
