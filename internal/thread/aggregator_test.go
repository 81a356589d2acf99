package thread

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore serves items from a map and records every call.
type memStore struct {
	mu    sync.Mutex
	items map[string]*Item
	calls []string
}

func (s *memStore) FetchItem(_ context.Context, id string) (*Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, id)
	it, ok := s.items[id]
	return it, ok
}

func newStore(items ...*Item) *memStore {
	s := &memStore{items: make(map[string]*Item)}
	for _, it := range items {
		s.items[it.ID] = it
	}
	return s
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.InterRequestDelay = 0
	return cfg
}

func TestRenderOrdersTopLevelByScore(t *testing.T) {
	store := newStore(
		&Item{ID: "root", Title: "Story", ChildIDs: []string{"c1", "c2"}},
		&Item{ID: "c1", Author: "alice", RawBody: "five", Score: 5},
		&Item{ID: "c2", Author: "bob", RawBody: "nine", Score: 9},
	)
	cfg := testConfig()
	cfg.MaxComments = 1

	th, err := New(store, cfg, quietLogger()).Render(context.Background(), "root")
	require.NoError(t, err)
	require.NotNil(t, th)
	assert.Equal(t, "[bob] (9 pts): nine", th.Text)
	assert.Equal(t, 1, th.Blocks)
	assert.Equal(t, "Story", th.Root.Title)
}

func TestRenderStableOnTies(t *testing.T) {
	store := newStore(
		&Item{ID: "root", ChildIDs: []string{"a", "b", "c"}},
		&Item{ID: "a", Author: "a", RawBody: "first"},
		&Item{ID: "b", Author: "b", RawBody: "second"},
		&Item{ID: "c", Author: "c", RawBody: "third", Score: 1},
	)
	th, err := New(store, testConfig(), quietLogger()).Render(context.Background(), "root")
	require.NoError(t, err)
	assert.Equal(t,
		"[c] (1 pts): third"+BlockSeparator+"[a] (0 pts): first"+BlockSeparator+"[b] (0 pts): second",
		th.Text)
}

func TestRenderSkipsMissingChild(t *testing.T) {
	store := newStore(
		&Item{ID: "root", ChildIDs: []string{"missing", "ok"}},
		&Item{ID: "ok", Author: "carol", RawBody: "still here", Score: 1},
	)
	th, err := New(store, testConfig(), quietLogger()).Render(context.Background(), "root")
	require.NoError(t, err)
	require.NotNil(t, th)
	assert.Equal(t, "[carol] (1 pts): still here", th.Text)
	assert.Equal(t, []string{"root", "missing", "ok"}, store.calls)
}

func TestRenderAbsentRoot(t *testing.T) {
	store := newStore()
	th, err := New(store, testConfig(), quietLogger()).Render(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, th)
	assert.Equal(t, []string{"nope"}, store.calls)
}

func TestRenderDeletedRootIsAbsent(t *testing.T) {
	store := newStore(&Item{ID: "root", Deleted: true, ChildIDs: []string{"c"}})
	th, err := New(store, testConfig(), quietLogger()).Render(context.Background(), "root")
	require.NoError(t, err)
	assert.Nil(t, th)
	assert.Equal(t, []string{"root"}, store.calls)
}

func TestRenderMarkupOnlyBodyExcluded(t *testing.T) {
	store := newStore(
		&Item{ID: "root", ChildIDs: []string{"tag", "text"}},
		&Item{ID: "tag", Author: "x", RawBody: "<p></p>", Score: 10},
		&Item{ID: "text", Author: "y", RawBody: "<i>words</i>", Score: 1},
	)
	th, err := New(store, testConfig(), quietLogger()).Render(context.Background(), "root")
	require.NoError(t, err)
	assert.Equal(t, "[y] (1 pts): words", th.Text)
}

func TestRenderNestedRepliesIndentedInStoreOrder(t *testing.T) {
	store := newStore(
		&Item{ID: "root", ChildIDs: []string{"top"}},
		&Item{ID: "top", Author: "op", RawBody: "top", Score: 3, ChildIDs: []string{"r1", "r2", "r3", "r4"}},
		&Item{ID: "r1", Author: "a", RawBody: "low", Score: 1, ChildIDs: []string{"rr1"}},
		&Item{ID: "r2", Author: "b", RawBody: "high", Score: 100},
		&Item{ID: "r3", RawBody: "anon"},
		&Item{ID: "r4", Author: "d", RawBody: "over breadth"},
		&Item{ID: "rr1", Author: "e", RawBody: "deep", ChildIDs: []string{"rrr1"}},
		&Item{ID: "rrr1", Author: "f", RawBody: "too deep"},
	)
	th, err := New(store, testConfig(), quietLogger()).Render(context.Background(), "root")
	require.NoError(t, err)

	want := strings.Join([]string{
		"[op] (3 pts): top",
		"  [a] (1 pts): low",
		"    [e] (0 pts): deep",
		"  [b] (100 pts): high",
		"  [unknown] (0 pts): anon",
	}, "\n")
	assert.Equal(t, want, th.Text)
	assert.NotContains(t, store.calls, "r4")
	assert.NotContains(t, store.calls, "rrr1")
}

func TestRenderMaxDepthZeroNeverFetchesReplies(t *testing.T) {
	store := newStore(
		&Item{ID: "root", ChildIDs: []string{"top"}},
		&Item{ID: "top", Author: "a", RawBody: "t", ChildIDs: []string{"r"}},
		&Item{ID: "r", Author: "b", RawBody: "r"},
	)
	cfg := testConfig()
	cfg.MaxDepth = 0
	th, err := New(store, cfg, quietLogger()).Render(context.Background(), "root")
	require.NoError(t, err)
	assert.Equal(t, "[a] (0 pts): t", th.Text)
	assert.Equal(t, []string{"root", "top"}, store.calls)
}

func TestRenderHideScoreAndMultilineIndent(t *testing.T) {
	store := newStore(
		&Item{ID: "root", ChildIDs: []string{"top"}},
		&Item{ID: "top", Author: "a", RawBody: "para one\n\npara two", ChildIDs: []string{"r"}},
		&Item{ID: "r", Author: "b", RawBody: "x\ny"},
	)
	cfg := testConfig()
	cfg.HideScore = true
	th, err := New(store, cfg, quietLogger()).Render(context.Background(), "root")
	require.NoError(t, err)
	assert.Equal(t, "[a]: para one\n\npara two\n  [b]: x\n  y", th.Text)
}

func TestRenderFetchBound(t *testing.T) {
	// Full tree: every node has 5 children, 6 levels deep.
	const fanout, levels = 5, 6
	store := newStore()
	var build func(id string, level int)
	build = func(id string, level int) {
		it := &Item{ID: id, Author: "u", RawBody: "body " + id, Score: len(id)}
		if level < levels {
			for i := 0; i < fanout; i++ {
				child := fmt.Sprintf("%s.%d", id, i)
				it.ChildIDs = append(it.ChildIDs, child)
				build(child, level+1)
			}
		}
		store.items[id] = it
	}
	build("r", 0)

	cfg := testConfig()
	cfg.MaxComments = 2
	cfg.MaxChildrenPerNode = 2
	cfg.MaxDepth = 2

	th, err := New(store, cfg, quietLogger()).Render(context.Background(), "r")
	require.NoError(t, err)

	// root + all top-level + maxComments*k + maxComments*k*k
	bound := 1 + fanout + 2*2 + 2*2*2
	assert.Equal(t, bound, th.Fetches)
	assert.Len(t, store.calls, bound)
	for _, id := range store.calls {
		// r.a.b.c has depth 2 below the top-level comment r.a
		assert.LessOrEqual(t, strings.Count(id, "."), 3, id)
	}
}

func TestRenderGuardsAgainstCycles(t *testing.T) {
	store := newStore(
		&Item{ID: "root", ChildIDs: []string{"a"}},
		&Item{ID: "a", Author: "a", RawBody: "a", ChildIDs: []string{"b"}},
		&Item{ID: "b", Author: "b", RawBody: "b", ChildIDs: []string{"a", "root"}},
	)
	cfg := testConfig()
	cfg.MaxDepth = 10
	th, err := New(store, cfg, quietLogger()).Render(context.Background(), "root")
	require.NoError(t, err)
	assert.Equal(t, "[a] (0 pts): a\n  [b] (0 pts): b", th.Text)
	assert.Equal(t, []string{"root", "a", "b"}, store.calls)
}

func TestRenderHonoursDelayAndCancellation(t *testing.T) {
	store := newStore(
		&Item{ID: "root", ChildIDs: []string{"a", "b"}},
		&Item{ID: "a", RawBody: "a"},
		&Item{ID: "b", RawBody: "b"},
	)
	cfg := testConfig()
	cfg.InterRequestDelay = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	th, err := New(store, cfg, quietLogger()).Render(ctx, "root")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Nil(t, th)
	assert.Equal(t, []string{"root"}, store.calls)
}

func TestRenderCancelledBeforeStart(t *testing.T) {
	store := newStore(&Item{ID: "root"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	th, err := New(store, testConfig(), quietLogger()).Render(ctx, "root")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, th)
	assert.Empty(t, store.calls)
}

func TestRenderEmptyThread(t *testing.T) {
	store := newStore(&Item{ID: "root", Title: "quiet"})
	th, err := New(store, testConfig(), quietLogger()).Render(context.Background(), "root")
	require.NoError(t, err)
	require.NotNil(t, th)
	assert.Equal(t, "", th.Text)
	assert.Zero(t, th.Blocks)
	assert.Equal(t, 1, th.Fetches)
}

func TestConfigDefaults(t *testing.T) {
	a := New(StoreFunc(func(context.Context, string) (*Item, bool) { return nil, false }),
		Config{MaxDepth: -1, InterRequestDelay: -time.Second}, nil)
	cfg := a.Config()
	assert.Equal(t, 10, cfg.MaxComments)
	assert.Equal(t, 2, cfg.MaxDepth)
	assert.Equal(t, 3, cfg.MaxChildrenPerNode)
	assert.Zero(t, cfg.InterRequestDelay)
}
