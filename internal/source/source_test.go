package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fragmede/ingest/internal/api"
	"github.com/fragmede/ingest/internal/config"
	"github.com/fragmede/ingest/internal/devto"
	"github.com/fragmede/ingest/internal/thread"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fastThread() thread.Config {
	cfg := thread.DefaultConfig()
	cfg.InterRequestDelay = 0
	return cfg
}

func serve(t *testing.T, routes map[string]string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	for path, body := range routes {
		body := body
		mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, body)
		})
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestHackerNewsFetch(t *testing.T) {
	srv := serve(t, map[string]string{
		"/topstories.json": `[1, 99]`,
		"/item/1.json":     `{"id":1,"type":"story","by":"pg","title":"Ask HN: Tabs?","text":"<p>Which &amp; why","kids":[2,3]}`,
		"/item/2.json":     `{"id":2,"type":"comment","by":"u2","text":"a","score":5}`,
		"/item/3.json":     `{"id":3,"type":"comment","by":"u3","text":"b","score":9,"kids":[4]}`,
		"/item/4.json":     `{"id":4,"type":"comment","by":"u4","text":"c","score":4}`,
	})
	hn := &HackerNews{
		Client: api.NewClient(api.Options{BaseURL: srv.URL, Logger: quietLogger()}),
		Thread: fastThread(),
		Log:    quietLogger(),
	}

	rec, err := hn.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "hackernews", rec.Source)
	assert.Equal(t, "Ask HN: Tabs?", rec.Title)
	assert.Equal(t, "Which & why", rec.Text)
	assert.Equal(t, "[u3] (9 pts): b\n  [u4] (4 pts): c\n\n---\n\n[u2] (5 pts): a", rec.Comments)
	assert.Equal(t, "https://news.ycombinator.com/item?id=1", rec.URL)
	assert.Equal(t, Stats{RootID: "1", Fetches: 4, Blocks: 2}, rec.Stats)
}

func TestHackerNewsNoComments(t *testing.T) {
	srv := serve(t, map[string]string{
		"/topstories.json": `[1]`,
		"/item/1.json":     `{"id":1,"type":"story","title":"Quiet"}`,
	})
	hn := &HackerNews{Client: api.NewClient(api.Options{BaseURL: srv.URL, Logger: quietLogger()}), Thread: fastThread(), Log: quietLogger()}

	rec, err := hn.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, NoComments, rec.Comments)
	assert.Empty(t, rec.Text)
}

func TestHackerNewsNoContent(t *testing.T) {
	tests := []struct {
		name   string
		routes map[string]string
	}{
		{"empty list", map[string]string{"/topstories.json": `[]`}},
		{"root missing", map[string]string{"/topstories.json": `[1]`, "/item/1.json": `null`}},
		{"root deleted", map[string]string{"/topstories.json": `[1]`, "/item/1.json": `{"id":1,"deleted":true}`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := serve(t, tt.routes)
			hn := &HackerNews{Client: api.NewClient(api.Options{BaseURL: srv.URL, Logger: quietLogger()}), Thread: fastThread(), Log: quietLogger()}
			_, err := hn.Fetch(context.Background())
			assert.ErrorIs(t, err, ErrNoContent)
		})
	}
}

const devtoListing = `[{"id":7,"title":"Hello &amp; welcome","description":"","readable_publish_date":"Oct 19",
  "url":"https://dev.to/ann/hello","comments_count":%d,"positive_reactions_count":42,"reading_time_minutes":3,
  "tag_list":["go","webdev"],"user":{"name":"Ann","username":"ann"}}]`

func devtoServer(t *testing.T, commentsCount int, commentsHandler http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/articles", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, devtoListing, commentsCount)
	})
	mux.HandleFunc("/articles/7", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"id":7,"title":"Hello","description":"","tag_list":"go, webdev","body_html":"<h2>Intro</h2><p>First <em>real</em> paragraph.</p><p>Second.</p>"}`)
	})
	mux.HandleFunc("/comments", commentsHandler)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestDevToFetch(t *testing.T) {
	srv := devtoServer(t, 2, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[
		  {"id_code":"a","body_html":"<p>Great post</p>","user":{"username":"bob"},
		   "children":[{"id_code":"a1","body_html":"<p>Agreed</p>","user":{"username":"cy"}}]},
		  {"id_code":"b","body_html":"<p>Thanks!</p>","user":{"username":"dee"}}]`)
	})
	d := &DevTo{Client: devto.NewClient(srv.URL, "", 0), Thread: fastThread(), Log: quietLogger()}

	rec, err := d.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Hello & welcome", rec.Title)
	assert.Equal(t, "First real paragraph.\n\n"+
		"Author: Ann (@ann)\n"+
		"Published: Oct 19\n"+
		"Reading time: 3 min\n"+
		"Tags: go, webdev\n"+
		"Reactions: 42\n"+
		"URL: https://dev.to/ann/hello", rec.Text)
	assert.Equal(t, "[bob]: Great post\n  [cy]: Agreed\n\n---\n\n[dee]: Thanks!", rec.Comments)
	assert.Equal(t, "article:7", rec.Stats.RootID)
	assert.Equal(t, 2, rec.Stats.Blocks)
}

func TestDevToCommentMarkers(t *testing.T) {
	t.Run("no comments", func(t *testing.T) {
		srv := devtoServer(t, 0, func(w http.ResponseWriter, r *http.Request) {
			t.Error("comments should not be requested")
		})
		d := &DevTo{Client: devto.NewClient(srv.URL, "", 0), Thread: fastThread(), Log: quietLogger()}
		rec, err := d.Fetch(context.Background())
		require.NoError(t, err)
		assert.Equal(t, NoComments, rec.Comments)
	})

	t.Run("comment fetch fails", func(t *testing.T) {
		srv := devtoServer(t, 3, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})
		d := &DevTo{Client: devto.NewClient(srv.URL, "", 0), Thread: fastThread(), Log: quietLogger()}
		rec, err := d.Fetch(context.Background())
		require.NoError(t, err)
		assert.Equal(t, CommentsFailed, rec.Comments)
	})

	t.Run("only deleted comments", func(t *testing.T) {
		srv := devtoServer(t, 1, func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `[{"id_code":"a","body_html":"<p>x</p>","deleted":true}]`)
		})
		d := &DevTo{Client: devto.NewClient(srv.URL, "", 0), Thread: fastThread(), Log: quietLogger()}
		rec, err := d.Fetch(context.Background())
		require.NoError(t, err)
		assert.Equal(t, NoComments, rec.Comments)
	})
}

func TestRegistry(t *testing.T) {
	cfg := config.Default()
	all := Registry(cfg, quietLogger())
	assert.Equal(t, []string{"hackernews", "devto", "techxplore", "arxiv", "github", "newsapi", "gnews",
		"newsdata", "thenewsapi", "congress", "eulex"}, Names(all))

	for _, s := range all {
		d, ok := s.(Describer)
		require.True(t, ok, s.Name())
		assert.NotEmpty(t, d.Description())
	}

	s, ok := Lookup(all, "arxiv")
	require.True(t, ok)
	assert.Equal(t, "cs.AI", s.(*Arxiv).Category)

	picked, err := Enabled(all, []string{"github", "hackernews"})
	require.NoError(t, err)
	assert.Equal(t, []string{"github", "hackernews"}, Names(picked))

	_, err = Enabled(all, []string{"slashdot"})
	assert.Error(t, err)

	everything, err := Enabled(all, nil)
	require.NoError(t, err)
	assert.Len(t, everything, len(all))
}
