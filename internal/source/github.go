package source

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"github.com/fragmede/ingest/internal/render"
)

const (
	DefaultTrendingURL   = "https://github.com/trending?spoken_language_code=en"
	GitHubNoComments     = "(GitHub Trending does not include comments)"
	trendingUnknownLang  = "Unknown"
	defaultScrapeTimeout = 10 * time.Second
)

// GitHubTrending scrapes the top repository from GitHub's trending page,
// which has no official API.
type GitHubTrending struct {
	URL       string
	UserAgent string
	Timeout   time.Duration
}

// Repo is one row of the trending page.
type Repo struct {
	Owner       string
	Name        string
	Description string
	Language    string
	Stars       int
	Forks       int
	StarsToday  int
	URL         string
}

// FullName returns owner/name.
func (r Repo) FullName() string {
	return r.Owner + "/" + r.Name
}

func (g *GitHubTrending) Name() string { return "github" }

func (g *GitHubTrending) Description() string {
	return "top repository on GitHub Trending"
}

func (g *GitHubTrending) Fetch(ctx context.Context) (*Record, error) {
	repos, err := g.Repos(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(repos) == 0 {
		return nil, ErrNoContent
	}
	r := repos[0]

	desc := r.Description
	if desc == "" {
		desc = NoDescription
	}
	meta := []string{
		"Repository: " + r.FullName(),
		"Language: " + r.Language,
		"Stars: " + formatCount(r.Stars),
		"Forks: " + formatCount(r.Forks),
		"Stars today: " + formatCount(r.StarsToday),
		"URL: " + r.URL,
	}
	return &Record{
		Source:   g.Name(),
		Title:    r.FullName(),
		Text:     desc + "\n\n" + strings.Join(meta, "\n"),
		Comments: GitHubNoComments,
		URL:      r.URL,
	}, nil
}

// Repos scrapes up to limit repositories in page order. limit <= 0 means all.
func (g *GitHubTrending) Repos(ctx context.Context, limit int) ([]Repo, error) {
	pageURL := g.URL
	if pageURL == "" {
		pageURL = DefaultTrendingURL
	}
	timeout := g.Timeout
	if timeout <= 0 {
		timeout = defaultScrapeTimeout
	}

	c := colly.NewCollector()
	if g.UserAgent != "" {
		c.UserAgent = g.UserAgent
	}
	c.SetRequestTimeout(timeout)
	c.WithTransport(contextTransport{ctx: ctx, base: http.DefaultTransport})

	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
			return
		}
		r.Headers.Set("Accept", "text/html")
	})

	var repos []Repo
	c.OnHTML("article.Box-row", func(e *colly.HTMLElement) {
		if limit > 0 && len(repos) >= limit {
			return
		}
		if repo, ok := parseRepo(e.DOM); ok {
			repos = append(repos, repo)
		}
	})

	if err := c.Visit(pageURL); err != nil {
		return nil, fmt.Errorf("github: scraping trending page: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return repos, nil
}

func parseRepo(s *goquery.Selection) (Repo, bool) {
	href, ok := s.Find("h2 a").First().Attr("href")
	if !ok {
		return Repo{}, false
	}
	owner, name, ok := strings.Cut(strings.Trim(strings.TrimSpace(href), "/"), "/")
	if !ok || owner == "" || name == "" {
		return Repo{}, false
	}

	desc := s.Find("p.col-9")
	if desc.Length() == 0 {
		desc = s.Find("p")
	}
	lang := render.NormalizeInline(s.Find(`[itemprop="programmingLanguage"]`).First().Text())
	if lang == "" {
		lang = trendingUnknownLang
	}

	return Repo{
		Owner:       owner,
		Name:        name,
		Description: render.NormalizeInline(desc.First().Text()),
		Language:    lang,
		Stars:       parseCount(s.Find(`a[href$="/stargazers"]`).First().Text()),
		Forks:       parseCount(s.Find(`a[href$="/forks"]`).First().Text()),
		StarsToday:  parseCount(firstNumber.FindString(s.Find("span.float-sm-right").First().Text())),
		URL:         "https://github.com/" + owner + "/" + name,
	}, true
}

var firstNumber = regexp.MustCompile(`[\d,.]+[kK]?`)

// parseCount reads counts such as "1,234" or "12.3k".
func parseCount(text string) int {
	text = strings.ReplaceAll(strings.TrimSpace(text), ",", "")
	if text == "" {
		return 0
	}
	multiplier := 1.0
	if strings.HasSuffix(text, "k") || strings.HasSuffix(text, "K") {
		multiplier = 1000
		text = text[:len(text)-1]
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return 0
	}
	return int(f * multiplier)
}

// formatCount renders n with thousands separators.
func formatCount(n int) string {
	s := strconv.Itoa(n)
	if n < 0 {
		return "-" + formatCount(-n)
	}
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	return s
}

// contextTransport binds every request of a collector to ctx so that
// cancelling the fetch also aborts an in-flight scrape.
type contextTransport struct {
	ctx  context.Context
	base http.RoundTripper
}

func (t contextTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	return t.base.RoundTrip(r.WithContext(t.ctx))
}
