package devto

import (
	"strings"

	xhtml "golang.org/x/net/html"

	"github.com/fragmede/ingest/internal/render"
)

// FirstParagraph returns the text of the first non-empty <p> in an article
// body, or "" if there is none.
func FirstParagraph(bodyHTML string) string {
	if bodyHTML == "" {
		return ""
	}
	tokenizer := xhtml.NewTokenizer(strings.NewReader(bodyHTML))
	var sb strings.Builder
	depth := 0

	for {
		tt := tokenizer.Next()
		switch tt {
		case xhtml.ErrorToken:
			return ""

		case xhtml.StartTagToken:
			if t := tokenizer.Token(); t.Data == "p" {
				depth++
			}

		case xhtml.EndTagToken:
			t := tokenizer.Token()
			if t.Data != "p" || depth == 0 {
				continue
			}
			depth--
			if depth == 0 {
				if text := render.NormalizeInline(sb.String()); text != "" {
					return text
				}
				sb.Reset()
			}

		case xhtml.TextToken:
			if depth > 0 {
				sb.Write(tokenizer.Raw())
			}
		}
	}
}
