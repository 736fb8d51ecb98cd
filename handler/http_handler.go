package handler

import (
	"log/slog"
	"net/http"

	"report-pipeline/orchestrator"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// NewHTTPServer creates the Echo server exposing the thin HTTP surface:
// health, a manual pipeline trigger, and the dedup verdict endpoint.
func NewHTTPServer(runner *orchestrator.PipelineRunner, reports *ReportHandler, logger *slog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			return c.Request().URL.Path == "/v1/health"
		},
		LogMethod: true,
		LogURI:    true,
		LogStatus: true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.InfoContext(c.Request().Context(), "HTTP request completed",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"error", v.Error)
			return nil
		},
	}))
	e.Use(middleware.Recover())

	e.GET("/v1/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"service": "report-pipeline",
		})
	})

	e.POST("/v1/pipeline/run", func(c echo.Context) error {
		runner.Trigger()

		return c.JSON(http.StatusAccepted, map[string]string{
			"status": "triggered",
		})
	})

	e.POST("/v1/reports/:id/duplicate", reports.MarkDuplicate)

	return e
}
