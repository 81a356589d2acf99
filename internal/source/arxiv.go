package source

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/mmcdole/gofeed"
	"github.com/mmcdole/gofeed/atom"
	ext "github.com/mmcdole/gofeed/extensions"

	"github.com/fragmede/ingest/internal/render"
)

const (
	DefaultArxivURL  = "https://export.arxiv.org/api/query"
	ArxivNoComments  = "(arXiv listings do not include comments)"
	arxivExtensionNS = "arxiv"
	// pdfKey holds the entry's PDF link in gofeed.Item.Custom.
	pdfKey = "pdf"
)

// Arxiv ingests the most recently submitted paper of one arXiv category.
type Arxiv struct {
	Fetcher
	BaseURL    string
	Category   string
	MaxResults int
}

func (a *Arxiv) Name() string { return "arxiv" }

func (a *Arxiv) Description() string {
	return fmt.Sprintf("newest arXiv submission in %s", a.category())
}

func (a *Arxiv) category() string {
	if a.Category == "" {
		return "cs.AI"
	}
	return a.Category
}

// QueryURL returns the export API query for the configured category.
func (a *Arxiv) QueryURL() string {
	base := a.BaseURL
	if base == "" {
		base = DefaultArxivURL
	}
	n := a.MaxResults
	if n <= 0 {
		n = 5
	}
	q := url.Values{
		"search_query": {"cat:" + a.category()},
		"start":        {"0"},
		"max_results":  {strconv.Itoa(n)},
		"sortBy":       {"submittedDate"},
		"sortOrder":    {"descending"},
	}
	return base + "?" + q.Encode()
}

func (a *Arxiv) Fetch(ctx context.Context) (*Record, error) {
	parser := gofeed.NewParser()
	parser.AtomTranslator = &arxivTranslator{}
	feed, err := parseFeed(ctx, a.Fetcher, parser, a.Name(), a.QueryURL())
	if err != nil {
		return nil, err
	}

	papers := make([]paper, 0, len(feed.Items))
	for _, item := range feed.Items {
		if p := newPaper(item); p.Title != "" {
			papers = append(papers, p)
		}
	}
	if len(papers) == 0 {
		return nil, ErrNoContent
	}

	top := papers[0]
	text := top.text()
	if len(papers) > 1 {
		var more strings.Builder
		more.WriteString("\n\nMore recent papers:")
		for i, p := range papers[1:] {
			fmt.Fprintf(&more, "\n[%d] %s (%s)", i+2, p.Title, p.HTMLURL)
		}
		text += more.String()
	}

	return &Record{
		Source:   a.Name(),
		Title:    top.Title,
		Text:     text,
		Comments: ArxivNoComments,
		URL:      top.HTMLURL,
	}, nil
}

type paper struct {
	Title           string
	Abstract        string
	Authors         []string
	Published       string
	PrimaryCategory string
	Categories      []string
	PDFURL          string
	HTMLURL         string
	DOI             string
	JournalRef      string
	Comment         string
}

func newPaper(item *gofeed.Item) paper {
	p := paper{
		Title:      render.NormalizeInline(item.Title),
		Abstract:   render.NormalizeInline(item.Description),
		Published:  item.Published,
		Categories: item.Categories,
		HTMLURL:    item.Link,
	}
	if item.PublishedParsed != nil {
		p.Published = item.PublishedParsed.Format("2006-01-02")
	}
	if p.HTMLURL == "" {
		p.HTMLURL = item.GUID
	}
	for _, author := range item.Authors {
		if author != nil && author.Name != "" {
			p.Authors = append(p.Authors, strings.TrimSpace(author.Name))
		}
	}
	p.PDFURL = item.Custom[pdfKey]
	if p.PDFURL == "" {
		for _, link := range item.Links {
			if strings.Contains(link, "/pdf/") {
				p.PDFURL = link
				break
			}
		}
	}

	if e, ok := arxivExtension(item, "primary_category"); ok {
		p.PrimaryCategory = e.Attrs["term"]
	}
	if p.PrimaryCategory == "" && len(p.Categories) > 0 {
		p.PrimaryCategory = p.Categories[0]
	}
	if e, ok := arxivExtension(item, "doi"); ok {
		p.DOI = strings.TrimSpace(e.Value)
	}
	if e, ok := arxivExtension(item, "journal_ref"); ok {
		p.JournalRef = render.NormalizeInline(e.Value)
	}
	if e, ok := arxivExtension(item, "comment"); ok {
		p.Comment = render.NormalizeInline(e.Value)
	}
	return p
}

// arxivTranslator is the default Atom translation plus the entry link
// titled "pdf". arXiv marks it rel="related", which the default drops.
type arxivTranslator struct {
	gofeed.DefaultAtomTranslator
}

func (t *arxivTranslator) Translate(feed interface{}) (*gofeed.Feed, error) {
	af, ok := feed.(*atom.Feed)
	if !ok {
		return nil, fmt.Errorf("arxiv: expected an Atom feed, got %T", feed)
	}
	out, err := t.DefaultAtomTranslator.Translate(af)
	if err != nil {
		return nil, err
	}
	// Items are translated one per entry, in order.
	for i, entry := range af.Entries {
		if i >= len(out.Items) || entry == nil {
			break
		}
		for _, link := range entry.Links {
			if link != nil && link.Title == pdfKey && link.Href != "" {
				item := out.Items[i]
				if item.Custom == nil {
					item.Custom = make(map[string]string)
				}
				item.Custom[pdfKey] = link.Href
				break
			}
		}
	}
	return out, nil
}

func arxivExtension(item *gofeed.Item, name string) (ext.Extension, bool) {
	vals := item.Extensions[arxivExtensionNS][name]
	if len(vals) == 0 {
		return ext.Extension{}, false
	}
	return vals[0], true
}

func (p paper) text() string {
	abstract := p.Abstract
	if abstract == "" {
		abstract = NoDescription
	}
	lines := []string{
		abstract,
		"",
		"Authors: " + strings.Join(p.Authors, ", "),
		"Published: " + p.Published,
		"Primary Category: " + p.PrimaryCategory,
		"All Categories: " + strings.Join(p.Categories, ", "),
	}
	if p.PDFURL != "" {
		lines = append(lines, "PDF: "+p.PDFURL)
	}
	lines = append(lines, "HTML: "+p.HTMLURL)
	if p.DOI != "" {
		lines = append(lines, "DOI: "+p.DOI)
	}
	if p.JournalRef != "" {
		lines = append(lines, "Journal Reference: "+p.JournalRef)
	}
	if p.Comment != "" {
		lines = append(lines, "Comment: "+p.Comment)
	}
	return strings.Join(lines, "\n")
}
