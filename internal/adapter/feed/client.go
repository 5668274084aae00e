package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/simaogato/mutualfund-backend/internal/domain"
)

const (
	// DefaultTimeout bounds a single snapshot fetch
	DefaultTimeout = 60 * time.Second

	latestPath   = "/latest"
	headerAPIKey = "X-RapidAPI-Key"
	headerHost   = "X-RapidAPI-Host"

	// maxErrorBody caps how much of a failed response is kept on the error
	maxErrorBody = 4 << 10
)

// Config holds the feed endpoint and its static credentials
type Config struct {
	Host    string        // API host, also sent as X-RapidAPI-Host
	BaseURL string        // Overrides https://<Host> when set
	APIKey  string        // Sent as X-RapidAPI-Key
	Timeout time.Duration // Per-call timeout, DefaultTimeout when zero
}

// Client fetches NAV snapshots from the external feed
type Client struct {
	cfg        Config
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a feed client. A nil httpClient gets one bounded by cfg.Timeout.
func NewClient(httpClient *http.Client, cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://" + cfg.Host
	}
	return &Client{
		cfg:        cfg,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// FetchLatestSnapshot returns every record of the latest snapshot.
// Any failure is a *domain.FeedUnavailableError; retrying is the caller's concern.
func (c *Client) FetchLatestSnapshot(ctx context.Context) ([]domain.RawRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+latestPath, nil)
	if err != nil {
		return nil, &domain.FeedUnavailableError{Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(headerAPIKey, c.cfg.APIKey)
	req.Header.Set(headerHost, c.cfg.Host)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.FeedUnavailableError{Err: fmt.Errorf("request failed: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.FeedUnavailableError{StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &domain.FeedUnavailableError{StatusCode: resp.StatusCode, Body: truncate(body)}
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var records []domain.RawRecord
	if err := dec.Decode(&records); err != nil {
		return nil, &domain.FeedUnavailableError{
			StatusCode: resp.StatusCode,
			Body:       truncate(body),
			Err:        fmt.Errorf("failed to decode snapshot: %w", err),
		}
	}

	return records, nil
}

func truncate(body []byte) string {
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	return string(body)
}
