// Package source turns one provider (a news site, feed or API) into a
// single Record: a title, a body and, where the provider has them, a
// flattened comment thread.
package source

import (
	"context"
	"errors"
)

// Markers stand in for empty sections so a printed record is never blank.
const (
	NoComments     = "(No comments yet)"
	CommentsFailed = "(Failed to fetch comments)"
	NoDescription  = "(No description)"
	NoContent      = "(No content available)"
)

var (
	// ErrNoContent means the provider answered but had nothing to ingest.
	ErrNoContent = errors.New("no content available")
	// ErrMissingCredential means a required API key is not configured.
	ErrMissingCredential = errors.New("missing credential")
)

// Record is the ingested result of one source.
type Record struct {
	Source   string `json:"source"`
	Title    string `json:"title"`
	Text     string `json:"text"`
	Comments string `json:"comments"`
	URL      string `json:"url,omitempty"`

	Stats Stats `json:"-"`
}

// Stats describes how a record was produced.
type Stats struct {
	RootID  string
	Fetches int
	Blocks  int
}

// Source fetches the current top item of one provider.
type Source interface {
	Name() string
	Fetch(ctx context.Context) (*Record, error)
}

// Describer is implemented by sources that can explain themselves.
type Describer interface {
	Description() string
}
