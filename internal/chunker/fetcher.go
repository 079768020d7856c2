package chunker

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mprates/dailylesson/internal/logger"
)

const maxFetchBytes = 2 << 20

// HTTPFetcher fetches remote sources over plain HTTP GET.
type HTTPFetcher struct {
	client *http.Client
}

func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{
		client: &http.Client{Timeout: 20 * time.Second},
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	log := logger.FromContext(ctx).WithPrefix("fetcher")
	log.Debug("fetching %s", url)
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	log.Debug("response received in %v, status=%d", time.Since(start), resp.StatusCode)

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("fetch status %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		return "", err
	}
	return string(body), nil
}
