package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/fragmede/ingest/internal/config"
	"github.com/fragmede/ingest/internal/render"
)

const (
	DefaultNewsAPIURL = "https://newsapi.org/v2/top-headlines"
	NewsAPINoComments = "(News API does not include comments)"
)

// NewsAPI ingests the top US technology headline from newsapi.org.
type NewsAPI struct {
	Fetcher
	BaseURL string
	APIKey  string
}

type newsAPIResponse struct {
	Status       string `json:"status"`
	Code         string `json:"code"`
	Message      string `json:"message"`
	TotalResults int    `json:"totalResults"`
	Articles     []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Author      string `json:"author"`
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		PublishedAt string `json:"publishedAt"`
	} `json:"articles"`
}

func (n *NewsAPI) Name() string { return "newsapi" }

func (n *NewsAPI) Description() string {
	return "top US technology headline from newsapi.org (needs " + config.EnvNewsAPIKey + ")"
}

func (n *NewsAPI) Fetch(ctx context.Context) (*Record, error) {
	if n.APIKey == "" {
		return nil, fmt.Errorf("%s: %w: set %s", n.Name(), ErrMissingCredential, config.EnvNewsAPIKey)
	}
	base := n.BaseURL
	if base == "" {
		base = DefaultNewsAPIURL
	}
	q := url.Values{
		"category": {"technology"},
		"country":  {"us"},
		"pageSize": {"5"},
	}
	header := http.Header{
		"Accept":    {"application/json"},
		"X-Api-Key": {n.APIKey},
	}

	body, code, err := n.do(ctx, n.Name(), base+"?"+q.Encode(), header)
	if err != nil {
		return nil, err
	}
	var resp newsAPIResponse
	if err := decodeJSON(n.Name(), body, &resp); err != nil {
		if code != http.StatusOK {
			return nil, &StatusError{Source: n.Name(), Code: code, Body: snippet(body)}
		}
		return nil, err
	}
	if resp.Status != "ok" {
		return nil, fmt.Errorf("%s: non-ok status %q: %s %s", n.Name(), resp.Status, resp.Code, resp.Message)
	}
	if len(resp.Articles) == 0 {
		return nil, ErrNoContent
	}

	a := resp.Articles[0]
	desc := render.Normalize(a.Description)
	if desc == "" {
		desc = NoDescription
	}
	author := a.Author
	if author == "" {
		author = "Unknown"
	}
	text := strings.Join([]string{
		desc,
		"",
		"Source: " + a.Source.Name,
		"Author: " + author,
		"Published: " + a.PublishedAt,
		"URL: " + a.URL,
	}, "\n")

	return &Record{
		Source:   n.Name(),
		Title:    render.NormalizeInline(a.Title),
		Text:     text,
		Comments: NewsAPINoComments,
		URL:      a.URL,
	}, nil
}
