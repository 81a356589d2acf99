package source

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/fragmede/ingest/internal/api"
	"github.com/fragmede/ingest/internal/thread"
)

// HackerNews ingests the first story of an HN list with its best comments.
type HackerNews struct {
	Client *api.Client
	List   api.StoryType
	Thread thread.Config
	Log    *slog.Logger
}

func (h *HackerNews) Name() string { return "hackernews" }

func (h *HackerNews) Description() string {
	return "Hacker News top story with its highest scored comment threads"
}

func (h *HackerNews) Fetch(ctx context.Context) (*Record, error) {
	list := h.List
	if list == "" {
		list = api.StoryTypeTop
	}
	ids, err := h.Client.GetStoryIDs(ctx, list)
	if err != nil {
		return nil, fmt.Errorf("hackernews: listing %s stories: %w", list, err)
	}
	if len(ids) == 0 {
		return nil, ErrNoContent
	}

	rootID := strconv.Itoa(ids[0])
	th, err := thread.New(h.Client, h.Thread, h.Log).Render(ctx, rootID)
	if err != nil {
		return nil, err
	}
	if th == nil {
		return nil, fmt.Errorf("hackernews: story %s: %w", rootID, ErrNoContent)
	}

	rec := &Record{
		Source:   h.Name(),
		Title:    th.Root.Title,
		Text:     th.Root.Text(),
		Comments: th.Text,
		URL:      api.ItemURL(ids[0]),
		Stats:    Stats{RootID: rootID, Fetches: th.Fetches, Blocks: th.Blocks},
	}
	if rec.Comments == "" {
		rec.Comments = NoComments
	}
	return rec, nil
}
