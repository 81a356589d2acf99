// Package thread walks a remote discussion tree under depth and breadth
// limits and flattens the surviving branches into one plain-text transcript.
package thread

import (
	"context"

	"github.com/fragmede/ingest/internal/render"
)

// Item is a node in a discussion tree: a story, article, comment or reply.
type Item struct {
	ID       string
	Author   string
	RawBody  string
	Score    int
	ChildIDs []string
	Deleted  bool
	Removed  bool

	// Only set on roots that carry them.
	Title string
	URL   string
}

// AuthorName returns the display name, "unknown" when absent.
func (it *Item) AuthorName() string {
	if it.Author == "" {
		return "unknown"
	}
	return it.Author
}

// Text returns the normalized body.
func (it *Item) Text() string {
	return render.Normalize(it.RawBody)
}

// Hidden reports whether the item was deleted or removed by moderation.
func (it *Item) Hidden() bool {
	return it.Deleted || it.Removed
}

// Store fetches single items from a remote item store. An absent item
// (transport failure, non-success status, unknown id) is reported with
// ok == false; implementations log the cause and never return an error.
type Store interface {
	FetchItem(ctx context.Context, id string) (item *Item, ok bool)
}

// StoreFunc adapts a function to the Store interface.
type StoreFunc func(ctx context.Context, id string) (*Item, bool)

// FetchItem calls f.
func (f StoreFunc) FetchItem(ctx context.Context, id string) (*Item, bool) {
	return f(ctx, id)
}
