// Package report lays a source.Record out for the terminal: ruled TITLE,
// TEXT and COMMENTS sections, optional wrapping, or JSON.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/fragmede/ingest/internal/render"
	"github.com/fragmede/ingest/internal/source"
	"github.com/fragmede/ingest/internal/thread"
)

const (
	ruleWidth     = 80
	NoTextContent = "(No text content)"
)

// Printer writes records to one writer.
type Printer struct {
	w     io.Writer
	width int
	theme Theme
}

// NewPrinter returns a Printer for w. Colors are used only when w is a
// terminal. width > 0 wraps text and comments.
func NewPrinter(w io.Writer, width int) *Printer {
	return &Printer{w: w, width: width, theme: NewTheme(lipgloss.NewRenderer(w))}
}

// Print writes one record followed by the comment length summary.
func (p *Printer) Print(rec *source.Record) error {
	_, err := io.WriteString(p.w, Render(rec, p.width, p.theme)+"\n")
	return err
}

// PrintError reports a source that produced no record.
func (p *Printer) PrintError(name string, err error) error {
	_, werr := io.WriteString(p.w, RenderError(name, err, p.theme)+"\n")
	return werr
}

// Format returns the plain-text layout of rec.
func Format(rec *source.Record, width int) string {
	return Render(rec, width, NewTheme(lipgloss.NewRenderer(io.Discard)))
}

// Render lays rec out with the given theme.
func Render(rec *source.Record, width int, theme Theme) string {
	rule := theme.Rule.Render(strings.Repeat("=", ruleWidth))

	text := rec.Text
	if text == "" {
		text = theme.Marker.Render(NoTextContent)
	} else {
		text = render.Wrap(text, width)
	}

	comments := rec.Comments
	if comments == "" {
		comments = source.NoComments
	}
	if isMarker(comments) {
		comments = theme.Marker.Render(comments)
	} else {
		comments = colorAuthors(render.WrapIndented(comments, width), theme)
	}

	var b strings.Builder
	section := func(name, body string) {
		b.WriteString(rule + "\n")
		b.WriteString(theme.Heading.Render(name+":") + "\n")
		b.WriteString(body + "\n\n")
	}
	section("TITLE", theme.Title.Render(rec.Title))
	section("TEXT", text)
	section("COMMENTS", comments)
	b.WriteString(rule + "\n\n")
	b.WriteString(theme.Meta.Render(fmt.Sprintf("Comment string length: %d characters", utf8.RuneCountInString(rec.Comments))))
	return b.String()
}

// RenderError lays out a failed source. ErrNoContent and a missing API key
// are shown as markers rather than failures.
func RenderError(name string, err error, theme Theme) string {
	rule := theme.Rule.Render(strings.Repeat("=", ruleWidth))
	line := theme.Error.Render("ERROR: ") + err.Error()
	switch {
	case IsNoContent(err):
		line = theme.Marker.Render(source.NoContent)
	case errors.Is(err, source.ErrMissingCredential):
		line = theme.Marker.Render("(Skipped: " + err.Error() + ")")
	}
	return rule + "\n" + theme.Heading.Render(strings.ToUpper(name)+":") + "\n" + line + "\n\n" + rule
}

var authorLine = regexp.MustCompile(`(?m)^( *)(\[[^\]\n]+\])`)

// colorAuthors styles the "[author]" prefix of each transcript line by its
// depth. Continuation lines have no bracketed prefix and are left alone.
func colorAuthors(transcript string, theme Theme) string {
	return authorLine.ReplaceAllStringFunc(transcript, func(m string) string {
		author := strings.TrimLeft(m, " ")
		indent := m[:len(m)-len(author)]
		depth := len(indent) / len(thread.Indent)
		return indent + theme.Author(depth).Render(author)
	})
}

func isMarker(s string) bool {
	return strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") && !strings.Contains(s, "\n")
}

// IsNoContent reports whether err means the source had nothing to show.
func IsNoContent(err error) bool {
	return errors.Is(err, source.ErrNoContent)
}

// WriteJSON writes v as indented JSON without HTML escaping.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
