package repository

import (
	"context"
	"fmt"
	"log/slog"

	"report-pipeline/domain"
	"report-pipeline/driver"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ArticleRepository implementation.
type articleRepository struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

// NewArticleRepository creates a new article repository.
func NewArticleRepository(db *pgxpool.Pool, logger *slog.Logger) ArticleRepository {
	return &articleRepository{
		db:     db,
		logger: logger,
	}
}

// CreateMany persists a batch of composed articles.
func (r *articleRepository) CreateMany(ctx context.Context, articles []*domain.Article) error {
	if len(articles) == 0 {
		return nil
	}

	if err := driver.CreateArticles(ctx, r.db, articles); err != nil {
		r.logger.ErrorContext(ctx, "failed to create articles",
			"count", len(articles), "error", err)

		return fmt.Errorf("failed to create articles: %w", err)
	}

	r.logger.InfoContext(ctx, "articles created", "count", len(articles))

	return nil
}
