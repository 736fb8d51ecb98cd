package driver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"report-pipeline/config"
	"report-pipeline/domain"
)

// EditorClient talks to the editorial decision service. Every decision
// endpoint may answer 204 No Content, which means "no decision" and is not an
// error; the caller handles the nil result explicitly.
type EditorClient struct {
	cfg        config.EditorConfig
	httpClient *http.Client
	logger     *slog.Logger
}

// NewEditorClient creates a new editorial decision service client.
func NewEditorClient(cfg config.EditorConfig, logger *slog.Logger) *EditorClient {
	return &EditorClient{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

type ingestRequest struct {
	Model     string              `json:"model"`
	Locale    string              `json:"locale"`
	Candidate domain.RawCandidate `json:"candidate"`
}

type classifyRequest struct {
	Model      string   `json:"model"`
	Core       string   `json:"core"`
	Background string   `json:"background"`
	Categories []string `json:"categories"`
}

type composeRequest struct {
	Model      string   `json:"model"`
	Locale     string   `json:"locale"`
	Core       string   `json:"core"`
	Background string   `json:"background"`
	Angles     []string `json:"angles"`
}

// DecideIngestion asks the editor whether a candidate carries enough signal
// to form a report. A nil decision means it does not.
func (c *EditorClient) DecideIngestion(ctx context.Context, locale domain.Locale, candidate domain.RawCandidate) (*domain.IngestionDecision, error) {
	req := ingestRequest{
		Model:     c.cfg.Model,
		Locale:    locale.String(),
		Candidate: candidate,
	}

	var decision domain.IngestionDecision

	ok, err := c.post(ctx, c.cfg.IngestPath, req, &decision)
	if err != nil || !ok {
		return nil, err
	}

	return &decision, nil
}

// DecideClassification asks the editor for a report's tier and traits. A nil
// decision leaves the report pending for the next run.
func (c *EditorClient) DecideClassification(ctx context.Context, report *domain.Report) (*domain.ClassificationDecision, error) {
	req := classifyRequest{
		Model:      c.cfg.Model,
		Core:       report.Core,
		Background: report.Background,
		Categories: report.Categories,
	}

	var decision domain.ClassificationDecision

	ok, err := c.post(ctx, c.cfg.ClassifyPath, req, &decision)
	if err != nil || !ok {
		return nil, err
	}

	return &decision, nil
}

// DecideComposition asks the editor to draft an article for an eligible
// report. The frame/angle count precondition is checked by the caller.
func (c *EditorClient) DecideComposition(ctx context.Context, report *domain.Report) (*domain.CompositionDecision, error) {
	req := composeRequest{
		Model:      c.cfg.Model,
		Locale:     report.Locale.String(),
		Core:       report.Core,
		Background: report.Background,
		Angles:     report.Angles,
	}

	var decision domain.CompositionDecision

	ok, err := c.post(ctx, c.cfg.ComposePath, req, &decision)
	if err != nil || !ok {
		return nil, err
	}

	return &decision, nil
}

// post sends the request and decodes the decision into out. It returns false
// with a nil error when the service declined to decide (204 or empty body).
func (c *EditorClient) post(ctx context.Context, path string, payload any, out any) (bool, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return false, fmt.Errorf("failed to marshal payload: %w", err)
	}

	url := c.cfg.Host + path

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("%w: %w", domain.ErrDecisionServiceUnavailable, err)
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	switch {
	case resp.StatusCode == http.StatusNoContent:
		c.logger.DebugContext(ctx, "editor declined to decide", "path", path)
		return false, nil
	case resp.StatusCode == http.StatusOK:
	default:
		c.logger.ErrorContext(ctx, "editor returned unexpected status",
			"path", path, "status", resp.StatusCode)

		return false, fmt.Errorf("%w: status %d", domain.ErrDecisionServiceUnavailable, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, fmt.Errorf("failed to read response: %w", err)
	}

	if len(bytes.TrimSpace(data)) == 0 || bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return false, nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("failed to decode decision: %w", err)
	}

	return true, nil
}
