package source

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/fragmede/ingest/internal/api"
	"github.com/fragmede/ingest/internal/config"
	"github.com/fragmede/ingest/internal/devto"
)

// Registry builds every known source from cfg, in display order.
func Registry(cfg *config.Config, log *slog.Logger) []Source {
	if log == nil {
		log = slog.Default()
	}
	httpClient := &http.Client{Timeout: cfg.HTTP.Timeout}
	fetcher := Fetcher{Client: httpClient, UserAgent: cfg.HTTP.UserAgent}
	tc := cfg.ThreadConfig()

	hn := api.NewClient(api.Options{
		UserAgent: cfg.HTTP.UserAgent,
		Timeout:   cfg.HTTP.Timeout,
		Logger:    log.With(slog.String("source", "hackernews")),
	})

	return []Source{
		&HackerNews{Client: hn, List: api.StoryTypeTop, Thread: tc, Log: log.With(slog.String("source", "hackernews"))},
		&DevTo{
			Client: devto.NewClient("", cfg.HTTP.UserAgent, cfg.HTTP.Timeout),
			Thread: tc,
			Log:    log.With(slog.String("source", "devto")),
		},
		&TechXplore{Fetcher: fetcher},
		&Arxiv{Fetcher: fetcher, Category: cfg.Arxiv.Category, MaxResults: cfg.Arxiv.MaxResults},
		&GitHubTrending{UserAgent: cfg.HTTP.UserAgent, Timeout: cfg.HTTP.Timeout},
		&NewsAPI{Fetcher: fetcher, APIKey: cfg.NewsAPIKey},
		&GNews{Fetcher: fetcher, APIKey: cfg.GNewsKey},
		&NewsData{Fetcher: fetcher, APIKey: cfg.NewsDataKey},
		&TheNews{Fetcher: fetcher, APIKey: cfg.TheNewsKey},
		&Congress{Fetcher: fetcher, APIKey: cfg.CongressKey, Log: log.With(slog.String("source", "congress"))},
		&EULex{Fetcher: fetcher},
	}
}

// Lookup finds a source by name.
func Lookup(sources []Source, name string) (Source, bool) {
	for _, s := range sources {
		if s.Name() == name {
			return s, true
		}
	}
	return nil, false
}

// Enabled filters sources down to names, in the order given. An empty list
// keeps everything.
func Enabled(sources []Source, names []string) ([]Source, error) {
	if len(names) == 0 {
		return sources, nil
	}
	out := make([]Source, 0, len(names))
	for _, name := range names {
		s, ok := Lookup(sources, name)
		if !ok {
			return nil, fmt.Errorf("unknown source %q", name)
		}
		out = append(out, s)
	}
	return out, nil
}

// Names lists source names in order.
func Names(sources []Source) []string {
	names := make([]string, len(sources))
	for i, s := range sources {
		names[i] = s.Name()
	}
	return names
}
