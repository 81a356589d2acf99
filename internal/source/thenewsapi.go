package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/fragmede/ingest/internal/config"
	"github.com/fragmede/ingest/internal/render"
)

const (
	DefaultTheNewsURL = "https://api.thenewsapi.com/v1/news/top"
	TheNewsNoComments = "(The News API does not include comments)"
	// Free plans return at most three articles per request.
	theNewsLimit = 3
)

// TheNews ingests the top US technology headline from thenewsapi.com.
type TheNews struct {
	Fetcher
	BaseURL string
	APIKey  string
}

type theNewsResponse struct {
	Meta struct {
		Found    int `json:"found"`
		Returned int `json:"returned"`
	} `json:"meta"`
	Data []struct {
		UUID        string   `json:"uuid"`
		Title       string   `json:"title"`
		Description string   `json:"description"`
		Snippet     string   `json:"snippet"`
		URL         string   `json:"url"`
		PublishedAt string   `json:"published_at"`
		Source      string   `json:"source"`
		Categories  []string `json:"categories"`
		Locale      string   `json:"locale"`
	} `json:"data"`
}

func (n *TheNews) Name() string { return "thenewsapi" }

func (n *TheNews) Description() string {
	return "top US tech headline from thenewsapi.com (needs " + config.EnvTheNewsKey + ")"
}

func (n *TheNews) Fetch(ctx context.Context) (*Record, error) {
	if n.APIKey == "" {
		return nil, fmt.Errorf("%s: %w: set %s", n.Name(), ErrMissingCredential, config.EnvTheNewsKey)
	}
	base := n.BaseURL
	if base == "" {
		base = DefaultTheNewsURL
	}
	q := url.Values{
		"api_token":  {n.APIKey},
		"categories": {"tech"},
		"locale":     {"us"},
		"language":   {"en"},
		"limit":      {fmt.Sprint(theNewsLimit)},
	}

	body, code, err := n.do(ctx, n.Name(), base+"?"+q.Encode(), http.Header{"Accept": {"application/json"}})
	if err != nil {
		return nil, err
	}
	if code != http.StatusOK {
		return nil, theNewsError(code, body)
	}

	var resp theNewsResponse
	if err := decodeJSON(n.Name(), body, &resp); err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, ErrNoContent
	}

	a := resp.Data[0]
	desc := render.NormalizeInline(a.Description)
	if desc == "" {
		desc = render.NormalizeInline(a.Snippet)
	}
	if desc == "" {
		desc = NoDescription
	}
	lines := []string{
		desc,
		"",
		"Source: " + a.Source,
		"Published: " + a.PublishedAt,
	}
	if len(a.Categories) > 0 {
		lines = append(lines, "Categories: "+strings.Join(a.Categories, ", "))
	}
	lines = append(lines, "URL: "+a.URL)

	return &Record{
		Source:   n.Name(),
		Title:    render.NormalizeInline(a.Title),
		Text:     strings.Join(lines, "\n"),
		Comments: TheNewsNoComments,
		URL:      a.URL,
	}, nil
}

// theNewsError maps the documented failure statuses to readable errors.
func theNewsError(code int, body []byte) error {
	var payload struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	_ = json.Unmarshal(body, &payload)
	detail := payload.Error.Message

	var msg string
	switch code {
	case http.StatusBadRequest:
		msg = "bad request (invalid parameters)"
	case http.StatusUnauthorized:
		msg = "authentication failed: invalid API token"
	case http.StatusPaymentRequired:
		msg = "usage limit reached for this plan"
	case http.StatusForbidden:
		msg = "access restricted (endpoint not on this plan, or commercial use on the free tier)"
	case http.StatusNotFound:
		msg = "resource not found"
	case http.StatusTooManyRequests:
		msg = "rate limit exceeded: too many requests in the past 60 seconds"
	default:
		if detail == "" {
			detail = snippet(body)
		}
		return &StatusError{Source: "thenewsapi", Code: code, Body: detail}
	}
	if detail != "" {
		msg += ": " + detail
	}
	return fmt.Errorf("thenewsapi: %s (HTTP %d)", msg, code)
}
