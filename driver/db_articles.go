package driver

import (
	"context"
	"encoding/json"
	"fmt"

	"report-pipeline/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CreateArticles inserts a batch of articles in one transaction. Frames are
// stored as JSON alongside the article row.
func CreateArticles(ctx context.Context, db *pgxpool.Pool, articles []*domain.Article) error {
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}

	if len(articles) == 0 {
		return nil
	}

	query := `
		INSERT INTO articles (id, report_id, locale, headline, body, frames, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	batch := &pgx.Batch{}

	for _, article := range articles {
		frames, err := json.Marshal(article.Frames)
		if err != nil {
			return fmt.Errorf("failed to marshal frames for article %s: %w", article.ID, err)
		}

		batch.Queue(query,
			article.ID,
			article.ReportID,
			article.Locale.String(),
			article.Headline,
			article.Body,
			frames,
			article.CreatedAt,
		)
	}

	results := db.SendBatch(ctx, batch)

	for range articles {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return err
		}
	}

	return results.Close()
}
