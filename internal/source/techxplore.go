package source

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/mmcdole/gofeed"

	"github.com/fragmede/ingest/internal/render"
)

const (
	DefaultTechXploreFeed = "https://techxplore.com/rss-feed/"
	TechXploreNoComments  = "(TechXplore RSS feed does not include comments)"
)

// TechXplore ingests the newest article of the TechXplore RSS feed.
type TechXplore struct {
	Fetcher
	FeedURL string
}

func (t *TechXplore) Name() string { return "techxplore" }

func (t *TechXplore) Description() string {
	return "latest TechXplore article from its RSS feed"
}

func (t *TechXplore) Fetch(ctx context.Context) (*Record, error) {
	feedURL := t.FeedURL
	if feedURL == "" {
		feedURL = DefaultTechXploreFeed
	}
	feed, err := parseFeed(ctx, t.Fetcher, gofeed.NewParser(), t.Name(), feedURL)
	if err != nil {
		return nil, err
	}

	for _, item := range feed.Items {
		title := render.NormalizeInline(item.Title)
		desc := render.Normalize(item.Description)
		if title == "" || desc == "" || item.Link == "" {
			continue
		}
		text := fmt.Sprintf("%s\n\nSource: %s\nPublished: %s\n\n[Attribution: Content from TechXplore.com]",
			desc, item.Link, item.Published)
		return &Record{
			Source:   t.Name(),
			Title:    title,
			Text:     text,
			Comments: TechXploreNoComments,
			URL:      item.Link,
		}, nil
	}
	return nil, ErrNoContent
}

// parseFeed downloads and parses an RSS or Atom document.
func parseFeed(ctx context.Context, f Fetcher, parser *gofeed.Parser, source, feedURL string) (*gofeed.Feed, error) {
	header := http.Header{"Accept": {"application/rss+xml, application/atom+xml, application/xml;q=0.9"}}
	body, err := f.get(ctx, source, feedURL, header)
	if err != nil {
		return nil, err
	}
	feed, err := parser.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%s: parsing feed: %w", source, err)
	}
	return feed, nil
}
