package scraper

import (
	"fmt"
	"net/http"

	"github.com/epasquet/boursobot/internal/config"
	"github.com/go-resty/resty/v2"
)

// Fetcher retrieves raw page markup. The runner only depends on this
// interface so cycles can be driven from canned pages in tests.
type Fetcher interface {
	Fetch(url string) (string, error)
}

// HTTPFetcher is the production Fetcher: one plain GET per page, no
// retries; a failed fetch just fails that ticker's cycle.
type HTTPFetcher struct {
	client *resty.Client
}

func NewHTTPFetcher(cfg config.ScrapeConfig) *HTTPFetcher {
	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", cfg.UserAgent).
		SetRetryCount(0)
	return &HTTPFetcher{client: client}
}

func (f *HTTPFetcher) Fetch(url string) (string, error) {
	resp, err := f.client.R().Get(url)
	if err != nil {
		return "", fmt.Errorf("failed to fetch page: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d fetching %s", resp.StatusCode(), url)
	}
	return resp.String(), nil
}
