// Package devto reads articles and comment trees from the Dev.to (Forem) API.
package devto

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	DefaultBaseURL   = "https://dev.to/api"
	requestTimeout   = 10 * time.Second
	maxResponseBytes = 4 << 20
)

// Client is a minimal Forem API client.
type Client struct {
	http      *http.Client
	baseURL   string
	userAgent string
}

// NewClient creates a client. Empty baseURL means DefaultBaseURL and a
// timeout <= 0 means 10s.
func NewClient(baseURL, userAgent string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = requestTimeout
	}
	return &Client{
		http:      &http.Client{Timeout: timeout},
		baseURL:   baseURL,
		userAgent: userAgent,
	}
}

func (c *Client) get(ctx context.Context, u string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("fetching %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d from %s", resp.StatusCode, u)
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(dst); err != nil {
		return fmt.Errorf("decoding response from %s: %w", u, err)
	}
	return nil
}

// TopArticles lists the most reacted-to articles of the last day.
func (c *Client) TopArticles(ctx context.Context, perPage int) ([]Article, error) {
	q := url.Values{
		"per_page": {fmt.Sprint(perPage)},
		"top":      {"1"},
	}
	var articles []Article
	if err := c.get(ctx, c.baseURL+"/articles?"+q.Encode(), &articles); err != nil {
		return nil, fmt.Errorf("listing top articles: %w", err)
	}
	return articles, nil
}

// Article fetches one article including its body.
func (c *Client) Article(ctx context.Context, id int) (*Article, error) {
	var a Article
	if err := c.get(ctx, fmt.Sprintf("%s/articles/%d", c.baseURL, id), &a); err != nil {
		return nil, fmt.Errorf("fetching article %d: %w", id, err)
	}
	return &a, nil
}

// Comments fetches the full comment tree of an article.
func (c *Client) Comments(ctx context.Context, articleID int) ([]Comment, error) {
	var comments []Comment
	u := fmt.Sprintf("%s/comments?a_id=%d", c.baseURL, articleID)
	if err := c.get(ctx, u, &comments); err != nil {
		return nil, fmt.Errorf("fetching comments for article %d: %w", articleID, err)
	}
	return comments, nil
}
