package driver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"report-pipeline/config"
	"report-pipeline/domain"
	"report-pipeline/retry"
)

// NewswireClient fetches clustered raw candidates from the news provider.
// Availability errors are retried with backoff because a failed fetch aborts
// the whole locale run.
type NewswireClient struct {
	cfg        config.NewswireConfig
	httpClient *http.Client
	retrier    *retry.Retrier
	logger     *slog.Logger
}

// NewNewswireClient creates a new news provider client.
func NewNewswireClient(cfg config.NewswireConfig, logger *slog.Logger) *NewswireClient {
	return &NewswireClient{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		retrier: retry.New(retry.DefaultConfig(), func(err error) bool {
			return errors.Is(err, domain.ErrNewswireUnavailable)
		}, logger),
		logger: logger,
	}
}

type candidatesResponse struct {
	Candidates []domain.RawCandidate `json:"candidates"`
}

// FetchCandidates fetches the current candidate batch for a locale. An empty
// batch is a normal outcome.
func (c *NewswireClient) FetchCandidates(ctx context.Context, locale domain.Locale) ([]domain.RawCandidate, error) {
	var candidates []domain.RawCandidate

	err := c.retrier.Do(ctx, func() error {
		var err error
		candidates, err = c.fetchOnce(ctx, locale)

		return err
	})
	if err != nil {
		return nil, err
	}

	return candidates, nil
}

func (c *NewswireClient) fetchOnce(ctx context.Context, locale domain.Locale) ([]domain.RawCandidate, error) {
	endpoint := fmt.Sprintf("%s/v1/candidates?%s", c.cfg.Host, url.Values{
		"language": {locale.Language},
		"country":  {locale.Country},
	}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrNewswireUnavailable, err)
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	if resp.StatusCode != http.StatusOK {
		c.logger.ErrorContext(ctx, "newswire returned unexpected status",
			"locale", locale.String(), "status", resp.StatusCode)

		return nil, fmt.Errorf("%w: status %d", domain.ErrNewswireUnavailable, resp.StatusCode)
	}

	var body candidatesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode candidates: %w", err)
	}

	c.logger.DebugContext(ctx, "fetched candidates",
		"locale", locale.String(), "count", len(body.Candidates))

	return body.Candidates, nil
}
