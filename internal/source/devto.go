package source

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/fragmede/ingest/internal/devto"
	"github.com/fragmede/ingest/internal/render"
	"github.com/fragmede/ingest/internal/thread"
)

// DevTo ingests the day's top Dev.to article and its comment tree.
type DevTo struct {
	Client *devto.Client
	Thread thread.Config
	Log    *slog.Logger
}

func (d *DevTo) Name() string { return "devto" }

func (d *DevTo) Description() string {
	return "Dev.to top article of the day with its comment tree"
}

func (d *DevTo) Fetch(ctx context.Context) (*Record, error) {
	log := d.log()

	articles, err := d.Client.TopArticles(ctx, 10)
	if err != nil {
		return nil, fmt.Errorf("devto: %w", err)
	}
	if len(articles) == 0 {
		return nil, ErrNoContent
	}
	summary := articles[0]

	full, err := d.Client.Article(ctx, summary.ID)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Warn("article detail unavailable, using listing", slog.Int("id", summary.ID), slog.Any("error", err))
		full = &summary
	}

	desc := render.NormalizeInline(full.Description)
	if desc == "" {
		desc = render.NormalizeInline(summary.Description)
	}
	if desc == "" {
		desc = devto.FirstParagraph(full.BodyHTML)
	}
	if desc == "" {
		desc = NoDescription
	}

	meta := []string{
		fmt.Sprintf("Author: %s (@%s)", summary.User.Name, summary.User.Username),
		"Published: " + summary.ReadablePublishDate,
		fmt.Sprintf("Reading time: %d min", summary.ReadingTimeMinutes),
		"Tags: " + strings.Join(summary.TagList, ", "),
		fmt.Sprintf("Reactions: %d", summary.PositiveReactionsCount),
		"URL: " + summary.URL,
	}

	rec := &Record{
		Source:   d.Name(),
		Title:    render.NormalizeInline(summary.Title),
		Text:     desc + "\n\n" + strings.Join(meta, "\n"),
		Comments: NoComments,
		URL:      summary.URL,
		Stats:    Stats{RootID: devto.RootID(summary.ID)},
	}
	if summary.CommentsCount == 0 {
		return rec, nil
	}

	comments, err := d.Client.Comments(ctx, summary.ID)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Warn("fetching comments", slog.Int("id", summary.ID), slog.Any("error", err))
		rec.Comments = CommentsFailed
		return rec, nil
	}

	store := devto.NewTreeStore(full, comments)
	cfg := d.Thread
	cfg.HideScore = true
	// The tree is already in memory.
	cfg.InterRequestDelay = 0
	th, err := thread.New(store, cfg, log).Render(ctx, store.Root())
	if err != nil {
		return nil, err
	}
	if th != nil && th.Text != "" {
		rec.Comments = th.Text
		rec.Stats.Fetches = th.Fetches
		rec.Stats.Blocks = th.Blocks
	}
	return rec, nil
}

func (d *DevTo) log() *slog.Logger {
	if d.Log == nil {
		return slog.Default()
	}
	return d.Log
}
