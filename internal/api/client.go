package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/fragmede/ingest/internal/thread"
)

const (
	DefaultBaseURL   = "https://hacker-news.firebaseio.com/v0"
	DefaultUserAgent = "ingest/1.0"
	requestTimeout   = 10 * time.Second
	maxResponseBytes = 1 << 20
)

// Options configures a Client. Zero fields take defaults.
type Options struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	Logger    *slog.Logger
}

// Client is the HN API client.
type Client struct {
	http      *http.Client
	baseURL   string
	userAgent string
	log       *slog.Logger
}

// NewClient creates a new HN API client.
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = requestTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Client{
		http: &http.Client{
			Timeout: opts.Timeout,
		},
		baseURL:   opts.BaseURL,
		userAgent: opts.UserAgent,
		log:       opts.Logger,
	}
}

// get fetches a URL and decodes the JSON response into dst.
func (c *Client) get(ctx context.Context, url string, dst interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("HTTP %d from %s: %s", resp.StatusCode, url, string(body))
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(dst); err != nil {
		return fmt.Errorf("decoding response from %s: %w", url, err)
	}
	return nil
}

// GetItem fetches a single item by ID. HN answers unknown ids with a JSON
// null, which yields a nil item and no error.
func (c *Client) GetItem(ctx context.Context, id int) (*Item, error) {
	url := fmt.Sprintf("%s/item/%d.json", c.baseURL, id)
	var item *Item
	if err := c.get(ctx, url, &item); err != nil {
		return nil, err
	}
	return item, nil
}

// FetchItem implements thread.Store. Failures are logged and reported as
// an absent item.
func (c *Client) FetchItem(ctx context.Context, id string) (*thread.Item, bool) {
	n, err := strconv.Atoi(id)
	if err != nil {
		c.log.Warn("invalid HN item id", slog.String("id", id))
		return nil, false
	}
	item, err := c.GetItem(ctx, n)
	if err != nil {
		c.log.Warn("fetching HN item", slog.Int("id", n), slog.Any("error", err))
		return nil, false
	}
	if item == nil {
		c.log.Warn("HN item not found", slog.Int("id", n))
		return nil, false
	}
	return item.ThreadItem(), true
}

// ThreadItem converts to the tree node used by the aggregator. Dead items
// are treated as removed.
func (it *Item) ThreadItem() *thread.Item {
	return &thread.Item{
		ID:       strconv.Itoa(it.ID),
		Author:   it.By,
		RawBody:  it.Text,
		Score:    it.Score,
		ChildIDs: it.KidIDs(),
		Deleted:  it.Deleted,
		Removed:  it.Dead,
		Title:    it.Title,
		URL:      it.URL,
	}
}

// ItemURL returns the discussion page for an item.
func ItemURL(id int) string {
	return fmt.Sprintf("https://news.ycombinator.com/item?id=%d", id)
}
