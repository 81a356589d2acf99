package devto

import (
	"context"
	"fmt"

	"github.com/fragmede/ingest/internal/thread"
)

// TreeStore serves an already fetched comment tree as a thread.Store, so
// the aggregator walks it without further requests.
type TreeStore struct {
	rootID string
	items  map[string]*thread.Item
}

// NewTreeStore indexes an article and its comments. The article becomes the
// root item; its top-level comments are the root's children.
func NewTreeStore(article *Article, comments []Comment) *TreeStore {
	s := &TreeStore{
		rootID: RootID(article.ID),
		items:  make(map[string]*thread.Item),
	}
	root := &thread.Item{
		ID:     s.rootID,
		Author: article.User.Username,
		Title:  article.Title,
		URL:    article.URL,
		Score:  article.PositiveReactionsCount,
	}
	for i := range comments {
		root.ChildIDs = append(root.ChildIDs, s.add(&comments[i]))
	}
	s.items[s.rootID] = root
	return s
}

func (s *TreeStore) add(c *Comment) string {
	it := &thread.Item{
		ID:      c.IDCode,
		Author:  c.User.Username,
		RawBody: c.BodyHTML,
		Deleted: c.Deleted,
	}
	for i := range c.Children {
		it.ChildIDs = append(it.ChildIDs, s.add(&c.Children[i]))
	}
	s.items[it.ID] = it
	return it.ID
}

// RootID is the store id of an article.
func RootID(articleID int) string {
	return fmt.Sprintf("article:%d", articleID)
}

// Root returns the id of the article item.
func (s *TreeStore) Root() string {
	return s.rootID
}

// Len returns the number of indexed items, the article included.
func (s *TreeStore) Len() int {
	return len(s.items)
}

// FetchItem implements thread.Store.
func (s *TreeStore) FetchItem(_ context.Context, id string) (*thread.Item, bool) {
	it, ok := s.items[id]
	return it, ok
}
