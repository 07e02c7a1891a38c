package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	rateBurst    = 5
	maxRetries   = 3
	initialDelay = 1 * time.Second
)

// NovelEntry is one catalog record from the upstream source.
type NovelEntry struct {
	Ref         string  `json:"ref"`
	Title       string  `json:"title"`
	Slug        string  `json:"slug"`
	Author      *string `json:"author"`
	Status      *string `json:"status"`
	Description *string `json:"description"`
	CoverURL    *string `json:"coverUrl"`
	Chapters    int     `json:"chapters"`
}

// PageInfo mirrors the upstream paging envelope.
type PageInfo struct {
	CurrentPage int  `json:"currentPage"`
	LastPage    int  `json:"lastPage"`
	HasNextPage bool `json:"hasNextPage"`
}

type NovelPageResponse struct {
	PageInfo PageInfo     `json:"pageInfo"`
	Novels   []NovelEntry `json:"novels"`
}

// Client talks to the upstream novel catalog with rate limiting so imports
// stay inside the source's request budget.
type Client struct {
	apiURL      string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
}

func NewClient(apiURL string, rps float64, timeout time.Duration) *Client {
	return &Client{
		apiURL:      apiURL,
		rateLimiter: rate.NewLimiter(rate.Limit(rps), rateBurst),
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// GetNovels fetches one catalog page, retrying transient failures with
// exponential backoff.
func (c *Client) GetNovels(ctx context.Context, page, perPage int) (*NovelPageResponse, error) {
	url := fmt.Sprintf("%s/novels?page=%d&perPage=%d", c.apiURL, page, perPage)

	var lastErr error
	delay := initialDelay
	for attempt := 0; attempt < maxRetries; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, err
		}

		resp, err := c.get(ctx, url)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
			delay *= 2
		}
	}
	return nil, fmt.Errorf("catalog fetch failed after %d attempts: %w", maxRetries, lastErr)
}

func (c *Client) get(ctx context.Context, url string) (*NovelPageResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("catalog returned %d: %s", resp.StatusCode, body)
	}

	var page NovelPageResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("failed to decode catalog response: %w", err)
	}
	return &page, nil
}
