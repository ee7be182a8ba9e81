// Package highlight prepares line pairs for rendering: it serializes
// indentation changes into visible marker glyphs, injects those markers into
// markup without corrupting existing span nesting, and computes the
// character regions that changed between two versions of a line.
package highlight

import (
	"regexp"
	"strings"

	"github.com/pmichalik/diffcore"
	"github.com/pmichalik/diffcore/differ"
)

// leadingMarkupRe captures an optional wrapping span followed by the leading
// whitespace run of a marked-up line.
var leadingMarkupRe = regexp.MustCompile(`^(<span[^>]+>)?([ \t]+)`)

// SerializeIndentation renders a run of added leading whitespace as escaped
// marker glyphs. Spaces become "&gt;"; a tab becomes a dash-filled arrow
// sized to the distance to the next tab stop.
func SerializeIndentation(ws string, tabSize int) string {
	var sb strings.Builder
	pos := 0
	for i := 0; i < len(ws); i++ {
		if ws[i] == '\t' {
			width := tabSize - pos%tabSize
			pos += width
			if width >= 2 {
				sb.WriteString(strings.Repeat("&mdash;", width-2))
				sb.WriteString("&gt;|")
			} else {
				sb.WriteString("|")
			}
		} else {
			sb.WriteString("&gt;")
			pos++
		}
	}
	return sb.String()
}

// SerializeUnindentation renders a run of removed leading whitespace, the
// mirror image of SerializeIndentation.
func SerializeUnindentation(ws string, tabSize int) string {
	var sb strings.Builder
	pos := 0
	for i := 0; i < len(ws); i++ {
		if ws[i] == '\t' {
			width := tabSize - pos%tabSize
			pos += width
			if width >= 2 {
				sb.WriteString("|&lt;")
				sb.WriteString(strings.Repeat("&mdash;", width-2))
			} else {
				sb.WriteString("|")
			}
		} else {
			sb.WriteString("&lt;")
			pos++
		}
	}
	return sb.String()
}

// HighlightIndentation injects indentation markers into one side of a
// marked-up line pair. Growth marks the new side, shrinkage the old side.
// When rawChars of leading whitespace cannot be located cleanly, possibly
// inside a single wrapping span, the line is returned untouched rather than
// risking malformed markup.
func HighlightIndentation(oldMarkup, newMarkup string, isIndent bool, rawChars, tabSize int) (string, string) {
	if isIndent {
		return oldMarkup, injectMarkers(newMarkup, "indent", rawChars, tabSize, SerializeIndentation)
	}
	return injectMarkers(oldMarkup, "unindent", rawChars, tabSize, SerializeUnindentation), newMarkup
}

func injectMarkers(markup, class string, rawChars, tabSize int, serialize func(string, int) string) string {
	m := leadingMarkupRe.FindStringSubmatch(markup)
	if m == nil || len(m[2]) < rawChars {
		return markup
	}
	tag, ws := m[1], m[2]

	var sb strings.Builder
	sb.WriteString(tag)
	sb.WriteString(`<span class="`)
	sb.WriteString(class)
	sb.WriteString(`">`)
	sb.WriteString(serialize(ws[:rawChars], tabSize))
	sb.WriteString(`</span>`)
	sb.WriteString(ws[rawChars:])
	sb.WriteString(markup[len(tag)+len(ws):])
	return sb.String()
}

// changedRegionsMinRatio is the similarity floor below which two lines are
// treated as wholly different, with no intraline regions reported.
const changedRegionsMinRatio = 0.6

// ChangedRegions computes the character spans (rune offsets, half-open) that
// differ between two versions of a line. Both results are nil when the lines
// are too dissimilar for intraline markers to be meaningful. Equal runs
// shorter than three characters on either side are absorbed into the
// following changed region, so sequences like "Person" vs "User" read as one
// region instead of confetti.
func ChangedRegions(oldLine, newLine string) (oldRegions, newRegions []diffcore.Region) {
	m := differ.NewMatcher(differ.SplitRunes(oldLine), differ.SplitRunes(newLine), nil, true)
	if m.Ratio() < changedRegionsMinRatio {
		return nil, nil
	}

	backOld, backNew := 0, 0
	for _, op := range m.Opcodes() {
		if op.Tag == diffcore.TagEqual {
			if op.I2-op.I1 < 3 || op.J2-op.J1 < 3 {
				backOld, backNew = op.I2-op.I1, op.J2-op.J1
			} else {
				backOld, backNew = 0, 0
			}
			continue
		}

		oldRegions = appendRegion(oldRegions, op.I1-backOld, op.I2)
		newRegions = appendRegion(newRegions, op.J1-backNew, op.J2)
		backOld, backNew = 0, 0
	}
	return oldRegions, newRegions
}

// appendRegion adds a span, merging it into the previous one when they
// overlap.
func appendRegion(regions []diffcore.Region, start, end int) []diffcore.Region {
	if n := len(regions); n > 0 && start <= regions[n-1].End && regions[n-1].End < end {
		regions[n-1].End = end
		return regions
	}
	return append(regions, diffcore.Region{Start: start, End: end})
}
