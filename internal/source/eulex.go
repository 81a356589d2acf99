package source

import (
	"context"
	"net/http"
	"strings"

	"github.com/fragmede/ingest/internal/render"
)

const (
	DefaultEULexURL = "http://api.epdb.eu/eurlex/document/"
	EULexNoComments = "(EUR-Lex does not include comments)"
)

// EULex ingests the most recent EUR-Lex legislative document listed by
// the epdb.eu API.
type EULex struct {
	Fetcher
	BaseURL string
}

type eulexDoc struct {
	DocID          string `json:"doc_id"`
	Form           string `json:"form"`
	Title          string `json:"title"`
	PermaURL       string `json:"eurlex_perma_url"`
	DateDocument   string `json:"date_document"`
	OfEffect       string `json:"of_effect"`
	EndValidity    string `json:"end_validity"`
	DirectoryCodes []struct {
		Code string `json:"directory_code"`
	} `json:"directory_codes"`
	LegalBasis []struct {
		Basis string `json:"legal_basis"`
	} `json:"legal_basis"`
	SubjectMatter []struct {
		Subject string `json:"subject_matter"`
	} `json:"subject_matter"`
	Eurovoc []struct {
		Descriptor string `json:"eurovoc_descriptor"`
	} `json:"eurovoc_descriptors"`
}

func (e *EULex) Name() string { return "eulex" }

func (e *EULex) Description() string {
	return "most recent EU legislative document from EUR-Lex (via epdb.eu)"
}

func (e *EULex) Fetch(ctx context.Context) (*Record, error) {
	base := e.BaseURL
	if base == "" {
		base = DefaultEULexURL
	}
	body, err := e.get(ctx, e.Name(), base+"?limit=5&format=json", http.Header{"Accept": {"application/json"}})
	if err != nil {
		return nil, err
	}
	// The listing is an object keyed by document id.
	var docs map[string]eulexDoc
	if err := decodeJSON(e.Name(), body, &docs); err != nil {
		return nil, err
	}
	doc, ok := latestDoc(docs)
	if !ok {
		return nil, ErrNoContent
	}

	title := strings.NewReplacer("/*", "", "*/", "").Replace(doc.Title)
	title = render.NormalizeInline(title)
	if title == "" {
		title = "Untitled"
	}
	form := orDefault(doc.Form, "Document")
	date := orDefault(doc.DateDocument, "unknown date")

	subjects := make([]string, 0, len(doc.SubjectMatter))
	for _, s := range doc.SubjectMatter {
		subjects = append(subjects, s.Subject)
	}
	codes := make([]string, 0, len(doc.DirectoryCodes))
	for _, c := range doc.DirectoryCodes {
		codes = append(codes, c.Code)
	}
	bases := make([]string, 0, len(doc.LegalBasis))
	for _, b := range doc.LegalBasis {
		bases = append(bases, b.Basis)
	}
	descriptors := make([]string, 0, len(doc.Eurovoc))
	for _, d := range doc.Eurovoc {
		descriptors = append(descriptors, d.Descriptor)
	}

	lines := []string{
		form + " from " + date + ".",
		"",
		"Document ID: " + orDefault(doc.DocID, "unknown"),
		"Form: " + form,
		"Date: " + date,
		"Subject: " + joinOrNA(subjects),
		"Directory codes: " + joinOrNA(codes),
		"Legal basis: " + joinOrNA(bases),
		"EuroVoc: " + joinOrNA(descriptors),
	}
	if doc.OfEffect != "" {
		lines = append(lines, "In effect: "+doc.OfEffect)
	}
	if doc.EndValidity != "" {
		lines = append(lines, "End of validity: "+doc.EndValidity)
	}
	if doc.PermaURL != "" {
		lines = append(lines, "URL: "+doc.PermaURL)
	}

	return &Record{
		Source:   e.Name(),
		Title:    title,
		Text:     strings.Join(lines, "\n"),
		Comments: EULexNoComments,
		URL:      doc.PermaURL,
	}, nil
}

// latestDoc picks the document with the newest date. Dates are ISO, so
// they compare as strings; ties go to the larger id.
func latestDoc(docs map[string]eulexDoc) (eulexDoc, bool) {
	var (
		best  eulexDoc
		found bool
	)
	for id, d := range docs {
		if d.DocID == "" {
			d.DocID = id
		}
		if !found || d.DateDocument > best.DateDocument ||
			(d.DateDocument == best.DateDocument && d.DocID > best.DocID) {
			best, found = d, true
		}
	}
	return best, found
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s == "" {
		return def
	}
	return s
}

func joinOrNA(parts []string) string {
	if len(parts) == 0 {
		return "N/A"
	}
	return strings.Join(parts, ", ")
}
