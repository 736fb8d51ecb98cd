package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"report-pipeline/domain"
	"report-pipeline/repository"

	"github.com/labstack/echo/v4"
)

// ReportHandler exposes report-level editorial operations over HTTP. Today
// that is the dedup verdict: marking a report as a duplicate of a canonical
// one, which merges its source evidence onto the canonical report.
type ReportHandler struct {
	reports repository.ReportRepository
	logger  *slog.Logger
}

// NewReportHandler creates a new report handler.
func NewReportHandler(reports repository.ReportRepository, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{
		reports: reports,
		logger:  logger,
	}
}

type markDuplicateRequest struct {
	CanonicalReportID string `json:"canonical_report_id"`
}

// MarkDuplicate handles POST /v1/reports/:id/duplicate.
func (h *ReportHandler) MarkDuplicate(c echo.Context) error {
	reportID := c.Param("id")

	var req markDuplicateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	if req.CanonicalReportID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "canonical_report_id is required",
		})
	}

	if req.CanonicalReportID == reportID {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "a report cannot be its own canonical",
		})
	}

	ctx := c.Request().Context()

	if err := h.reports.MarkDuplicate(ctx, reportID, req.CanonicalReportID); err != nil {
		if errors.Is(err, domain.ErrReportNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": "report not found",
			})
		}

		h.logger.ErrorContext(ctx, "failed to mark report duplicate",
			"report_id", reportID,
			"canonical_id", req.CanonicalReportID,
			"error", err)

		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to mark report duplicate",
		})
	}

	h.logger.InfoContext(ctx, "report marked duplicate",
		"report_id", reportID, "canonical_id", req.CanonicalReportID)

	return c.JSON(http.StatusOK, map[string]string{
		"status":              "duplicate",
		"canonical_report_id": req.CanonicalReportID,
	})
}
