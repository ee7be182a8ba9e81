// Package chroma provides syntax highlighting using the chroma library.
package chroma

import (
	"html"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/pmichalik/diffcore"
)

// Compile-time interface verification.
var _ diffcore.Highlighter = (*Highlighter)(nil)

// Highlighter produces per-line HTML markup using chroma lexers. Token text
// is HTML-escaped and wrapped in spans carrying the standard short class
// names ("k", "s", "nf", ...), so indentation markers can be injected into
// the output without knowing the language.
type Highlighter struct{}

// NewHighlighter creates a new chroma-based highlighter.
func NewHighlighter() *Highlighter {
	return &Highlighter{}
}

// Highlight marks up each line for the given language, which may also be a
// file name to match a lexer against. The lines are tokenized as one source
// text so that multi-line constructs keep their lexer state. Returns nil if
// the language is not supported or tokenization fails; callers then render
// plain escaped text.
func (h *Highlighter) Highlight(language string, lines []string) []string {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Match(language)
	}
	if lexer == nil {
		return nil
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, strings.Join(lines, "\n"))
	if err != nil {
		return nil
	}

	out := make([]string, len(lines))
	builders := make([]strings.Builder, len(lines))
	cur := 0
	for token := iterator(); token != chroma.EOF; token = iterator() {
		class := tokenClass(token.Type)
		for i, part := range strings.Split(token.Value, "\n") {
			if i > 0 {
				cur++
			}
			if part == "" || cur >= len(builders) {
				continue
			}
			writeSpan(&builders[cur], class, part)
		}
	}
	for i := range builders {
		out[i] = builders[i].String()
	}
	return out
}

func writeSpan(sb *strings.Builder, class, text string) {
	if class == "" {
		sb.WriteString(html.EscapeString(text))
		return
	}
	sb.WriteString(`<span class="`)
	sb.WriteString(class)
	sb.WriteString(`">`)
	sb.WriteString(html.EscapeString(text))
	sb.WriteString(`</span>`)
}

// tokenClass resolves the short class name for a token type, walking up the
// type hierarchy until a named ancestor is found.
func tokenClass(tt chroma.TokenType) string {
	for t := tt; t != 0; t = t.Parent() {
		if class, ok := chroma.StandardTypes[t]; ok {
			return class
		}
	}
	return ""
}
