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
	DefaultNewsDataURL = "https://newsdata.io/api/1/news"
	NewsDataNoComments = "(NewsData.io does not provide comments)"
)

// NewsData ingests the latest English technology article from newsdata.io.
type NewsData struct {
	Fetcher
	BaseURL string
	APIKey  string
}

type newsDataResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Title       string   `json:"title"`
		Link        string   `json:"link"`
		Keywords    []string `json:"keywords"`
		Creator     []string `json:"creator"`
		Description string   `json:"description"`
		PubDate     string   `json:"pubDate"`
		SourceID    string   `json:"source_id"`
		Country     []string `json:"country"`
	} `json:"results"`
}

// newsDataError is the body newsdata.io sends with a non-success status.
type newsDataError struct {
	Status  string `json:"status"`
	Results struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"results"`
}

func (n *NewsData) Name() string { return "newsdata" }

func (n *NewsData) Description() string {
	return "latest technology article from newsdata.io (needs " + config.EnvNewsDataKey + ")"
}

func (n *NewsData) Fetch(ctx context.Context) (*Record, error) {
	if n.APIKey == "" {
		return nil, fmt.Errorf("%s: %w: set %s", n.Name(), ErrMissingCredential, config.EnvNewsDataKey)
	}
	base := n.BaseURL
	if base == "" {
		base = DefaultNewsDataURL
	}
	q := url.Values{
		"apikey":   {n.APIKey},
		"category": {"technology"},
		"language": {"en"},
		"size":     {"5"},
	}

	body, code, err := n.do(ctx, n.Name(), base+"?"+q.Encode(), http.Header{"Accept": {"application/json"}})
	if err != nil {
		return nil, err
	}
	if code != http.StatusOK {
		var e newsDataError
		if decodeJSON(n.Name(), body, &e) == nil && e.Results.Message != "" {
			return nil, &StatusError{Source: n.Name(), Code: code, Body: e.Results.Message}
		}
		return nil, &StatusError{Source: n.Name(), Code: code, Body: snippet(body)}
	}

	var resp newsDataResponse
	if err := decodeJSON(n.Name(), body, &resp); err != nil {
		return nil, err
	}
	if resp.Status != "success" {
		return nil, fmt.Errorf("%s: non-success status %q", n.Name(), resp.Status)
	}
	if len(resp.Results) == 0 {
		return nil, ErrNoContent
	}

	a := resp.Results[0]
	desc := render.NormalizeInline(a.Description)
	if desc == "" {
		desc = NoDescription
	}
	lines := []string{desc, ""}
	if len(a.Creator) > 0 {
		lines = append(lines, "Author: "+strings.Join(a.Creator, ", "))
	}
	lines = append(lines,
		"Source: "+a.SourceID,
		"Published: "+a.PubDate,
	)
	if len(a.Keywords) > 0 {
		lines = append(lines, "Keywords: "+strings.Join(a.Keywords, ", "))
	}
	if len(a.Country) > 0 {
		lines = append(lines, "Country: "+strings.Join(a.Country, ", "))
	}
	lines = append(lines, "Link: "+a.Link)

	return &Record{
		Source:   n.Name(),
		Title:    render.NormalizeInline(a.Title),
		Text:     strings.Join(lines, "\n"),
		Comments: NewsDataNoComments,
		URL:      a.Link,
	}, nil
}
