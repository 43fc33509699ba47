package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"openF1Poll/internal/modules/telemetry/application/port"
	"openF1Poll/internal/modules/telemetry/domain"
)

// OpenF1HTTPClient implements RecordFetcher against the OpenF1 REST API.
type OpenF1HTTPClient struct {
	rest    *RESTClient
	timeout time.Duration
}

// NewOpenF1HTTPClient creates a fetcher; a nil client gets a default http.Client with timeout.
func NewOpenF1HTTPClient(baseURL string, timeout time.Duration, client *http.Client) *OpenF1HTTPClient {
	return &OpenF1HTTPClient{rest: NewRESTClient(baseURL, timeout, client), timeout: timeoutOrDefault(timeout)}
}

// Fetch issues one unauthenticated GET and decodes the body into records.
func (c *OpenF1HTTPClient) Fetch(ctx context.Context, rawURL string) ([]domain.Record, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := c.rest.NewRequest(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		slog.Error("openf1 request build failed", slog.String("url", rawURL), slog.Any("error", err))
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	slog.Debug("openf1 request", slog.String("url", req.URL.String()))

	res, err := c.rest.Do(req)
	if err != nil {
		slog.Error("openf1 request error", slog.String("url", rawURL), slog.Any("error", err))
		return nil, fmt.Errorf("%w: %w", port.ErrUpstreamTransport, err)
	}
	defer res.Body.Close()

	slog.Debug("openf1 response", slog.Int("status", res.StatusCode), slog.String("url", req.URL.String()))

	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 2048))
		slog.Error("openf1 fetch unexpected status", slog.Int("status", res.StatusCode), slog.String("url", req.URL.String()), slog.String("body", strings.TrimSpace(string(body))))
		return nil, fmt.Errorf("%w: status %d", port.ErrUpstreamStatus, res.StatusCode)
	}

	records, err := decodeRecords(res.Body)
	if err != nil {
		return nil, err
	}
	slog.Debug("openf1 records decoded", slog.String("url", rawURL), slog.Int("records", len(records)))
	return records, nil
}

var _ port.RecordFetcher = (*OpenF1HTTPClient)(nil)
