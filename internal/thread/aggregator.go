package thread

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

const (
	// BlockSeparator sits between top-level comment blocks.
	BlockSeparator = "\n\n---\n\n"
	// Indent is prepended once per depth level.
	Indent = "  "
)

// Config bounds a traversal. Start from DefaultConfig; the zero value of
// InterRequestDelay means no delay.
type Config struct {
	MaxComments        int
	MaxDepth           int
	MaxChildrenPerNode int
	InterRequestDelay  time.Duration
	// HideScore drops the "(N pts)" segment, for stores without scores.
	HideScore bool
}

// DefaultConfig returns 10 top-level comments, depth 2, 3 replies per node
// and 100ms between requests.
func DefaultConfig() Config {
	return Config{
		MaxComments:        10,
		MaxDepth:           2,
		MaxChildrenPerNode: 3,
		InterRequestDelay:  100 * time.Millisecond,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MaxComments <= 0 {
		c.MaxComments = d.MaxComments
	}
	if c.MaxDepth < 0 {
		c.MaxDepth = d.MaxDepth
	}
	if c.MaxChildrenPerNode <= 0 {
		c.MaxChildrenPerNode = d.MaxChildrenPerNode
	}
	if c.InterRequestDelay < 0 {
		c.InterRequestDelay = 0
	}
	return c
}

// Thread is a rendered discussion.
type Thread struct {
	Root    *Item
	Text    string
	Blocks  int // top-level comments that rendered
	Fetches int // store calls issued
}

// Aggregator renders discussion trees from a Store. It holds no per-call
// state and may be shared between goroutines.
type Aggregator struct {
	store Store
	cfg   Config
	log   *slog.Logger
}

// New creates an Aggregator.
func New(store Store, cfg Config, log *slog.Logger) *Aggregator {
	if log == nil {
		log = slog.Default()
	}
	return &Aggregator{store: store, cfg: cfg.withDefaults(), log: log}
}

// Config returns the effective configuration.
func (a *Aggregator) Config() Config {
	return a.cfg
}

// Render fetches the root item and its replies and returns the transcript.
// A nil Thread with a nil error means the root is absent (unknown, deleted
// or unreachable). The only error returned is ctx.Err() when the caller
// gives up, in which case nothing partial is returned.
func (a *Aggregator) Render(ctx context.Context, rootID string) (*Thread, error) {
	w := &walk{Aggregator: a, visited: make(map[string]bool)}

	root, err := w.fetch(ctx, rootID)
	if err != nil {
		return nil, err
	}
	if root == nil || root.Hidden() {
		return nil, nil
	}

	top := make([]*Item, 0, len(root.ChildIDs))
	for _, id := range root.ChildIDs {
		it, err := w.fetch(ctx, id)
		if err != nil {
			return nil, err
		}
		if it != nil {
			top = append(top, it)
		}
	}

	selected := Select(top, a.cfg.MaxComments, ByScoreDesc)
	a.log.Debug("selected top-level comments",
		slog.String("root", rootID),
		slog.Int("fetched", len(top)),
		slog.Int("selected", len(selected)))

	blocks := make([]string, 0, len(selected))
	for _, it := range selected {
		block, err := w.renderNode(ctx, it, 0)
		if err != nil {
			return nil, err
		}
		if block != "" {
			blocks = append(blocks, block)
		}
	}

	return &Thread{
		Root:    root,
		Text:    strings.Join(blocks, BlockSeparator),
		Blocks:  len(blocks),
		Fetches: w.fetches,
	}, nil
}

// walk is the state of one Render call.
type walk struct {
	*Aggregator
	visited map[string]bool
	fetches int
}

// fetch returns (nil, nil) for absent or already visited items.
func (w *walk) fetch(ctx context.Context, id string) (*Item, error) {
	if w.visited[id] {
		w.log.Debug("pruning revisited item", slog.String("id", id))
		return nil, nil
	}
	w.visited[id] = true

	if w.fetches > 0 {
		if err := pause(ctx, w.cfg.InterRequestDelay); err != nil {
			return nil, err
		}
	} else if err := ctx.Err(); err != nil {
		return nil, err
	}

	w.fetches++
	item, ok := w.store.FetchItem(ctx, id)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !ok || item == nil {
		w.log.Warn("item unavailable, skipping", slog.String("id", id))
		return nil, nil
	}
	return item, nil
}

// renderNode returns the block for it and its replies, or "" when it has
// nothing to show. Replies are a prefix of the child list in store order.
func (w *walk) renderNode(ctx context.Context, it *Item, depth int) (string, error) {
	if it == nil || it.Hidden() {
		return "", nil
	}
	text := it.Text()
	if text == "" {
		return "", nil
	}

	var b strings.Builder
	b.WriteString(w.cfg.formatLine(it, text, depth))

	if depth >= w.cfg.MaxDepth || len(it.ChildIDs) == 0 {
		return b.String(), nil
	}

	ids := it.ChildIDs
	if len(ids) > w.cfg.MaxChildrenPerNode {
		ids = ids[:w.cfg.MaxChildrenPerNode]
	}
	replies := make([]*Item, 0, len(ids))
	for _, id := range ids {
		reply, err := w.fetch(ctx, id)
		if err != nil {
			return "", err
		}
		if reply != nil {
			replies = append(replies, reply)
		}
	}

	for _, reply := range Select(replies, len(ids), NativeOrder) {
		sub, err := w.renderNode(ctx, reply, depth+1)
		if err != nil {
			return "", err
		}
		if sub != "" {
			b.WriteString("\n")
			b.WriteString(sub)
		}
	}
	return b.String(), nil
}

func (c Config) formatLine(it *Item, text string, depth int) string {
	indent := strings.Repeat(Indent, depth)
	head := "[" + it.AuthorName() + "]"
	if !c.HideScore {
		head += fmt.Sprintf(" (%d pts)", it.Score)
	}
	if depth > 0 {
		text = strings.ReplaceAll(text, "\n", "\n"+indent)
	}
	return indent + head + ": " + text
}

// pause waits d or until ctx is done.
func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
