package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"report-pipeline/domain"
	"report-pipeline/repository"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubReports struct {
	repository.ReportRepository

	markedReport    string
	markedCanonical string
	markErr         error
}

func (s *stubReports) MarkDuplicate(_ context.Context, reportID, canonicalID string) error {
	if s.markErr != nil {
		return s.markErr
	}

	s.markedReport = reportID
	s.markedCanonical = canonicalID

	return nil
}

func markDuplicateContext(t *testing.T, reportID, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/reports/"+reportID+"/duplicate",
		strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	c := e.NewContext(req, rec)
	c.SetPath("/v1/reports/:id/duplicate")
	c.SetParamNames("id")
	c.SetParamValues(reportID)

	return c, rec
}

func TestReportHandler_MarkDuplicate(t *testing.T) {
	t.Run("should mark the report duplicate of the canonical", func(t *testing.T) {
		repo := &stubReports{}
		h := NewReportHandler(repo, testLogger())

		c, rec := markDuplicateContext(t, "r2", `{"canonical_report_id": "r1"}`)

		require.NoError(t, h.MarkDuplicate(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "r2", repo.markedReport)
		assert.Equal(t, "r1", repo.markedCanonical)
	})

	t.Run("missing canonical id is a bad request", func(t *testing.T) {
		repo := &stubReports{}
		h := NewReportHandler(repo, testLogger())

		c, rec := markDuplicateContext(t, "r2", `{}`)

		require.NoError(t, h.MarkDuplicate(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Empty(t, repo.markedReport)
	})

	t.Run("a report cannot be its own canonical", func(t *testing.T) {
		repo := &stubReports{}
		h := NewReportHandler(repo, testLogger())

		c, rec := markDuplicateContext(t, "r1", `{"canonical_report_id": "r1"}`)

		require.NoError(t, h.MarkDuplicate(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown report is a 404", func(t *testing.T) {
		repo := &stubReports{markErr: domain.ErrReportNotFound}
		h := NewReportHandler(repo, testLogger())

		c, rec := markDuplicateContext(t, "ghost", `{"canonical_report_id": "r1"}`)

		require.NoError(t, h.MarkDuplicate(c))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("store failure is a 500", func(t *testing.T) {
		repo := &stubReports{markErr: errors.New("db down")}
		h := NewReportHandler(repo, testLogger())

		c, rec := markDuplicateContext(t, "r2", `{"canonical_report_id": "r1"}`)

		require.NoError(t, h.MarkDuplicate(c))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
