package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fragmede/ingest/internal/source"
)

var rule = strings.Repeat("=", 80)

func TestFormatLayout(t *testing.T) {
	rec := &source.Record{
		Source:   "hackernews",
		Title:    "Show HN: ingest",
		Text:     "A tool.",
		Comments: "[ann] (3 pts): nice\n  [bob] (1 pts): agreed",
	}

	want := rule + "\nTITLE:\nShow HN: ingest\n\n" +
		rule + "\nTEXT:\nA tool.\n\n" +
		rule + "\nCOMMENTS:\n[ann] (3 pts): nice\n  [bob] (1 pts): agreed\n\n" +
		rule + "\n\nComment string length: 43 characters"
	assert.Equal(t, want, Format(rec, 0))
}

func TestFormatMarkers(t *testing.T) {
	out := Format(&source.Record{Title: "Empty"}, 0)
	assert.Contains(t, out, "TEXT:\n"+NoTextContent+"\n")
	assert.Contains(t, out, "COMMENTS:\n"+source.NoComments+"\n")
	assert.Contains(t, out, "Comment string length: 0 characters")
}

func TestFormatWraps(t *testing.T) {
	rec := &source.Record{
		Title:    "t",
		Text:     "alpha beta gamma delta epsilon zeta eta theta iota kappa",
		Comments: "  [bob]: alpha beta gamma delta epsilon zeta eta theta",
	}
	out := Format(rec, 30)
	assert.Contains(t, out, "TEXT:\nalpha beta gamma delta epsilon\nzeta eta theta iota kappa\n")
	assert.Contains(t, out, "COMMENTS:\n  [bob]: alpha beta gamma\n  delta epsilon zeta eta theta\n")
}

func TestPrinterPlainWhenNotATerminal(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, 0)
	require.NoError(t, p.Print(&source.Record{Title: "x", Text: "y", Comments: "[a] (1 pts): z"}))
	assert.NotContains(t, buf.String(), "\x1b[", "no escape codes for a buffer")
	assert.True(t, strings.HasSuffix(buf.String(), "characters\n"))
}

func TestPrintError(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, 0)

	require.NoError(t, p.PrintError("gnews", fmt.Errorf("gnews: %w", source.ErrNoContent)))
	assert.Contains(t, buf.String(), "GNEWS:\n"+source.NoContent)

	buf.Reset()
	require.NoError(t, p.PrintError("newsapi", errors.New("boom")))
	assert.Contains(t, buf.String(), "NEWSAPI:\nERROR: boom")

	buf.Reset()
	require.NoError(t, p.PrintError("gnews", fmt.Errorf("gnews: %w: set GNEWS_API_KEY", source.ErrMissingCredential)))
	assert.Contains(t, buf.String(), "GNEWS:\n(Skipped: gnews: missing credential: set GNEWS_API_KEY)")
	assert.NotContains(t, buf.String(), "ERROR")
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	rec := &source.Record{Source: "devto", Title: "a <b> & c", Text: "t", Comments: "c", Stats: source.Stats{Fetches: 3}}
	require.NoError(t, WriteJSON(&buf, rec))
	assert.Contains(t, buf.String(), `"title": "a <b> & c"`)
	assert.NotContains(t, buf.String(), "Fetches")

	var back map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &back))
	assert.Equal(t, "devto", back["source"])
	assert.NotContains(t, back, "url", "empty url is omitted")
}

func TestColorAuthorsKeepsText(t *testing.T) {
	in := "[a] (1 pts): x\n  [b] (2 pts): y\n  continued"
	assert.Equal(t, in, colorAuthors(in, NewTheme(plainRenderer())))
}

func plainRenderer() *lipgloss.Renderer {
	return lipgloss.NewRenderer(&bytes.Buffer{})
}
