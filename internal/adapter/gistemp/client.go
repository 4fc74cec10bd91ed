package gistemp

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/climate-dashboard/internal/domain"
)

// maxErrorBody caps how much of a failed response is quoted in the error.
const maxErrorBody = 512

// Client downloads the GISTEMP table. It implements pipeline.Loader.
type Client struct {
	url        string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a dataset client for the given URL.
func NewClient(url string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Source returns the URL the client reads from.
func (c *Client) Source() string {
	return c.url
}

// Load fetches the CSV and parses it, skipping the title line.
func (c *Client) Load(ctx context.Context) (domain.RawTable, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return domain.RawTable{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "text/csv")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.RawTable{}, fmt.Errorf("fetch dataset: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return domain.RawTable{}, fmt.Errorf("dataset server error: status %d: %s", resp.StatusCode, body)
	}

	raw, err := Parse(resp.Body)
	if err != nil {
		return domain.RawTable{}, err
	}

	c.logger.Debug("dataset fetched", "url", c.url, "columns", len(raw.Header), "records", len(raw.Records))
	return raw, nil
}
