package handler

import (
	"context"
	"log/slog"

	"report-pipeline/domain"
	"report-pipeline/service"

	"golang.org/x/sync/errgroup"
)

// PipelineHandler drives one full pipeline run: ingestion for every locale
// concurrently, then a single global classification pass, then composition
// for every locale concurrently. Composition must come last because its
// eligibility depends on classification having assigned a tier.
type PipelineHandler struct {
	ingestion      service.IngestionService
	classification service.ClassificationService
	composition    service.CompositionService
	locales        []domain.Locale
	logger         *slog.Logger
}

// NewPipelineHandler creates a new pipeline handler.
func NewPipelineHandler(
	ingestion service.IngestionService,
	classification service.ClassificationService,
	composition service.CompositionService,
	locales []domain.Locale,
	logger *slog.Logger,
) *PipelineHandler {
	return &PipelineHandler{
		ingestion:      ingestion,
		classification: classification,
		composition:    composition,
		locales:        locales,
		logger:         logger,
	}
}

// RunPipeline executes one full run. Locale tasks are independent: one
// locale's infrastructure failure is logged and reported after every locale
// has finished, never canceling its siblings. The returned error is the first
// stage failure, surfaced so the scheduler can log and back off.
func (h *PipelineHandler) RunPipeline(ctx context.Context) error {
	h.logger.InfoContext(ctx, "pipeline run started", "locales", len(h.locales))

	if err := h.runIngestion(ctx); err != nil {
		return err
	}

	if _, err := h.classification.ClassifyPending(ctx); err != nil {
		h.logger.ErrorContext(ctx, "classification pass failed", "error", err)
		return err
	}

	if err := h.runComposition(ctx); err != nil {
		return err
	}

	h.logger.InfoContext(ctx, "pipeline run finished")

	return nil
}

func (h *PipelineHandler) runIngestion(ctx context.Context) error {
	// Plain errgroup without WithContext: a failing locale must not cancel
	// the others.
	var g errgroup.Group

	for _, locale := range h.locales {
		locale := locale
		g.Go(func() error {
			result, err := h.ingestion.IngestLocale(ctx, locale)
			if err != nil {
				h.logger.ErrorContext(ctx, "ingestion failed for locale",
					"locale", locale.String(), "error", err)

				return err
			}

			h.logger.InfoContext(ctx, "ingestion finished for locale",
				"locale", locale.String(),
				"created", result.SuccessCount,
				"skipped", result.SkippedCount,
				"errors", result.ErrorCount)

			return nil
		})
	}

	return g.Wait()
}

func (h *PipelineHandler) runComposition(ctx context.Context) error {
	var g errgroup.Group

	for _, locale := range h.locales {
		locale := locale
		g.Go(func() error {
			result, err := h.composition.ComposeLocale(ctx, locale)
			if err != nil {
				h.logger.ErrorContext(ctx, "composition failed for locale",
					"locale", locale.String(), "error", err)

				return err
			}

			h.logger.InfoContext(ctx, "composition finished for locale",
				"locale", locale.String(),
				"composed", result.SuccessCount,
				"skipped", result.SkippedCount,
				"errors", result.ErrorCount)

			return nil
		})
	}

	return g.Wait()
}
