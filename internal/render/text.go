// Package render turns the marked-up bodies served by news and discussion
// APIs into plain text.
package render

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

var (
	cdataRe  = regexp.MustCompile(`(?s)<!\[CDATA\[(.*?)\]\]>`)
	tagRe    = regexp.MustCompile(`<[^>]+?>`)
	entityRe = regexp.MustCompile(`&#?[A-Za-z0-9]+;`)
	spaceRe  = regexp.MustCompile(`\s+`)
)

// decodedTagRe matches element-like markup that only appeared once
// references such as &lt;b&gt; were decoded.
var decodedTagRe = regexp.MustCompile(`</?[A-Za-z][A-Za-z0-9-]*(?:\s[^<>]*)?/?>`)

// namedEntities is the fixed table of named references that get decoded.
// Anything not listed here (and not numeric) is kept as written.
var namedEntities = map[string]string{
	"&quot;":  `"`,
	"&amp;":   "&",
	"&lt;":    "<",
	"&gt;":    ">",
	"&apos;":  "'",
	"&nbsp;":  " ",
	"&rsquo;": "'",
	"&lsquo;": "'",
	"&rdquo;": `"`,
	"&ldquo;": `"`,
	"&mdash;": "—",
	"&ndash;": "–",
}

// Normalize strips markup tags from raw, decodes character references and
// trims the result. Line structure is preserved. It never fails; the worst
// case is an empty string.
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}
	s := cdataRe.ReplaceAllString(raw, "$1")
	s = tagRe.ReplaceAllLiteralString(s, "")
	s = entityRe.ReplaceAllStringFunc(s, decodeEntity)
	s = decodedTagRe.ReplaceAllStringFunc(s, escapeTag)
	return strings.TrimSpace(s)
}

// NormalizeInline is Normalize followed by collapsing every whitespace run
// to a single space. Used for titles, summaries and scraped fields.
func NormalizeInline(raw string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllLiteralString(Normalize(raw), " "))
}

// escapeTag keeps escaped markup escaped, so text that spelled out a tag
// is shown rather than turned into one and output stays stable.
func escapeTag(tag string) string {
	return "&lt;" + tag[1:len(tag)-1] + "&gt;"
}

func decodeEntity(ref string) string {
	if v, ok := namedEntities[ref]; ok {
		return v
	}
	if !strings.HasPrefix(ref, "&#") {
		return ref
	}
	body := ref[2 : len(ref)-1]
	base := 10
	if strings.HasPrefix(body, "x") || strings.HasPrefix(body, "X") {
		body, base = body[1:], 16
	}
	n, err := strconv.ParseUint(body, base, 32)
	if err != nil || n == 0 || !utf8.ValidRune(rune(n)) {
		return ref
	}
	return string(rune(n))
}

// Wrap performs simple word wrapping to the given width. Lines indented by
// four spaces are treated as preformatted and left alone. A width <= 0
// returns text unchanged.
func Wrap(text string, width int) string {
	if width <= 0 {
		return text
	}
	var result strings.Builder
	for _, paragraph := range strings.Split(text, "\n") {
		if strings.HasPrefix(paragraph, "    ") {
			result.WriteString(paragraph)
			result.WriteString("\n")
			continue
		}
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			result.WriteString("\n")
			continue
		}
		lineLen := 0
		for i, word := range words {
			wlen := utf8.RuneCountInString(word)
			if i > 0 && lineLen+1+wlen > width {
				result.WriteString("\n")
				lineLen = 0
			} else if i > 0 {
				result.WriteString(" ")
				lineLen++
			}
			result.WriteString(word)
			lineLen += wlen
		}
		result.WriteString("\n")
	}
	return strings.TrimRight(result.String(), "\n")
}

// WrapIndented wraps each line to width, keeping its leading spaces and
// repeating them on continuation lines. Thread transcripts use it so a
// wrapped reply stays under its parent.
func WrapIndented(text string, width int) string {
	if width <= 0 {
		return text
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		body := strings.TrimLeft(line, " ")
		indent := line[:len(line)-len(body)]
		avail := width - len(indent)
		if avail < 20 {
			avail = 20
		}
		wrapped := Wrap(body, avail)
		lines[i] = indent + strings.ReplaceAll(wrapped, "\n", "\n"+indent)
	}
	return strings.Join(lines, "\n")
}
