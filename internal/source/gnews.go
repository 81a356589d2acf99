package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/fragmede/ingest/internal/config"
	"github.com/fragmede/ingest/internal/render"
)

const (
	DefaultGNewsURL = "https://gnews.io/api/v4/top-headlines"
	GNewsNoComments = "(GNews does not include comments)"
	gnewsMaxResults = 10
)

// GNews ingests the top technology headline from gnews.io. The free tier
// is limited to non-commercial use and 10 results per request.
type GNews struct {
	Fetcher
	BaseURL    string
	APIKey     string
	MaxResults int
}

type gnewsResponse struct {
	TotalArticles int `json:"totalArticles"`
	Articles      []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Content     string `json:"content"`
		URL         string `json:"url"`
		PublishedAt string `json:"publishedAt"`
		Source      struct {
			Name string `json:"name"`
			URL  string `json:"url"`
		} `json:"source"`
	} `json:"articles"`
}

func (g *GNews) Name() string { return "gnews" }

func (g *GNews) Description() string {
	return "top technology headline from gnews.io (needs " + config.EnvGNewsKey + ")"
}

func (g *GNews) Fetch(ctx context.Context) (*Record, error) {
	if g.APIKey == "" {
		return nil, fmt.Errorf("%s: %w: set %s", g.Name(), ErrMissingCredential, config.EnvGNewsKey)
	}
	base := g.BaseURL
	if base == "" {
		base = DefaultGNewsURL
	}
	limit := g.MaxResults
	if limit <= 0 {
		limit = 5
	}
	if limit > gnewsMaxResults {
		limit = gnewsMaxResults
	}
	q := url.Values{
		"category": {"technology"},
		"lang":     {"en"},
		"country":  {"us"},
		"max":      {fmt.Sprint(limit)},
		"apikey":   {g.APIKey},
	}

	body, code, err := g.do(ctx, g.Name(), base+"?"+q.Encode(), http.Header{"Accept": {"application/json"}})
	if err != nil {
		return nil, err
	}
	if code != http.StatusOK {
		return nil, gnewsError(code, body)
	}

	var resp gnewsResponse
	if err := decodeJSON(g.Name(), body, &resp); err != nil {
		return nil, err
	}
	if len(resp.Articles) == 0 {
		return nil, ErrNoContent
	}

	a := resp.Articles[0]
	desc := render.Normalize(a.Description)
	if desc == "" {
		desc = NoDescription
	}
	text := strings.Join([]string{
		desc,
		"",
		"Source: " + a.Source.Name,
		"Published: " + a.PublishedAt,
		"URL: " + a.URL,
	}, "\n")

	return &Record{
		Source:   g.Name(),
		Title:    render.NormalizeInline(a.Title),
		Text:     text,
		Comments: GNewsNoComments,
		URL:      a.URL,
	}, nil
}

// gnewsError explains the documented failure statuses.
func gnewsError(code int, body []byte) error {
	detail := gnewsErrorDetail(body)
	var msg string
	switch code {
	case http.StatusBadRequest:
		msg = "bad request"
		if detail == "" {
			detail = "invalid parameters"
		}
	case http.StatusUnauthorized:
		msg = "authentication failed: invalid API key"
	case http.StatusForbidden:
		msg = "access forbidden"
		if detail == "" {
			detail = "possible commercial use on free tier or account suspended"
		}
	case http.StatusTooManyRequests:
		msg = "rate limit exceeded: daily request limit reached"
	default:
		return &StatusError{Source: "gnews", Code: code, Body: detail}
	}
	if detail != "" {
		msg += ": " + detail
	}
	return fmt.Errorf("gnews: %s (HTTP %d)", msg, code)
}

// gnewsErrorDetail reads the "errors" field, which is either a list of
// messages or an object keyed by parameter.
func gnewsErrorDetail(body []byte) string {
	var payload struct {
		Errors json.RawMessage `json:"errors"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Errors) == 0 {
		return ""
	}
	var list []string
	if err := json.Unmarshal(payload.Errors, &list); err == nil {
		return strings.Join(list, ", ")
	}
	var byField map[string]string
	if err := json.Unmarshal(payload.Errors, &byField); err == nil {
		parts := make([]string, 0, len(byField))
		for k, v := range byField {
			parts = append(parts, k+": "+v)
		}
		slices.Sort(parts)
		return strings.Join(parts, ", ")
	}
	return ""
}
