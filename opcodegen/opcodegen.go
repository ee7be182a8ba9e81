// Package opcodegen augments a raw opcode stream with move and indentation
// metadata. Move detection pairs deleted lines with identical inserted lines
// elsewhere in the file and reports them as relocations; indentation analysis
// pairs lines that differ only in leading whitespace and reports how the
// indentation changed. Neither pass alters the opcodes themselves.
package opcodegen

import (
	"regexp"
	"strings"

	"github.com/pmichalik/diffcore"
)

var alnumRe = regexp.MustCompile(`[0-9A-Za-z]`)

// Options holds the heuristic thresholds for move detection and the tab stop
// width used when comparing indentation. The thresholds keep short,
// low-information lines (separators, braces, blank padding) from being
// reported as moves on text equality alone.
type Options struct {
	// PreferredMinLineLength is the minimum content length for a line to
	// count as a move when it stands alone, with no adjacent moved lines.
	PreferredMinLineLength int

	// MinAnchorLineLength is the minimum content length of at least one
	// line in a multi-line run for the whole run to count as a move.
	MinAnchorLineLength int

	// MinMoveLineLength is the minimum content length for an individual
	// line inside a qualifying run to receive move metadata.
	MinMoveLineLength int

	// TabSize is the tab stop width for indentation comparison.
	TabSize int
}

// DefaultOptions returns the thresholds used in production.
func DefaultOptions() Options {
	return Options{
		PreferredMinLineLength: 20,
		MinAnchorLineLength:    10,
		MinMoveLineLength:      4,
		TabSize:                8,
	}
}

// Result is the annotated form of one file pair's opcode stream.
type Result struct {
	Opcodes []diffcore.Opcode

	// Moves maps relocated lines between the two sides, 1-based.
	Moves diffcore.Moves

	// Indents records indentation-only changes keyed by 1-based new-side
	// line number.
	Indents map[int]*diffcore.IndentChange
}

// Generator wraps a Differ and emits annotated opcode streams.
type Generator struct {
	differ diffcore.Differ
	opts   Options
}

// New creates a Generator around the given differ.
func New(d diffcore.Differ, opts Options) *Generator {
	return &Generator{differ: d, opts: opts}
}

// Generate diffs a against b and annotates the resulting opcodes.
func (g *Generator) Generate(a, b []string) *Result {
	opcodes := g.differ.Opcodes(a, b)
	return &Result{
		Opcodes: opcodes,
		Moves:   g.DetectMoves(opcodes, a, b),
		Indents: g.ComputeIndents(opcodes, a, b),
	}
}

// DetectMoves finds deleted lines that reappear verbatim as inserted lines
// elsewhere and returns the relocation mappings, 1-based on each side.
// Only delete-side lines can be moved-from and only insert-side lines can be
// moved-to; replace opcodes contribute lines to both pools.
func (g *Generator) DetectMoves(opcodes []diffcore.Opcode, a, b []string) diffcore.Moves {
	moves := diffcore.Moves{
		To:   make(map[int]int),
		From: make(map[int]int),
	}

	// Index every removed line by its text. Values are ascending 1-based
	// old line numbers.
	removed := make(map[string][]int)
	for _, op := range opcodes {
		if op.Tag != diffcore.TagDelete && op.Tag != diffcore.TagReplace {
			continue
		}
		for i := op.I1; i < op.I2; i++ {
			text := a[i]
			removed[text] = append(removed[text], i+1)
		}
	}
	used := make(map[int]bool)

	for _, op := range opcodes {
		if op.Tag != diffcore.TagInsert && op.Tag != diffcore.TagReplace {
			continue
		}
		g.matchBlock(op, b, removed, used, moves)
	}
	return moves
}

// movePair links a 1-based new line number to the old line it matched, or 0
// when the line found no partner.
type movePair struct {
	newNum int
	oldNum int
	text   string
}

// matchBlock pairs the inserted lines of one opcode against removed lines,
// groups the pairings into contiguous runs, and records the runs that pass
// the thresholds.
func (g *Generator) matchBlock(op diffcore.Opcode, b []string, removed map[string][]int, used map[int]bool, moves diffcore.Moves) {
	pairs := make([]movePair, 0, op.J2-op.J1)
	prevOld := 0
	for j := op.J1; j < op.J2; j++ {
		text := b[j]
		p := movePair{newNum: j + 1, text: text}
		if strings.TrimSpace(text) != "" {
			p.oldNum = pickCandidate(removed[text], prevOld, used)
		}
		if p.oldNum != 0 {
			used[p.oldNum] = true
		}
		prevOld = p.oldNum
		pairs = append(pairs, p)
	}

	for start := 0; start < len(pairs); {
		if pairs[start].oldNum == 0 {
			start++
			continue
		}
		end := start + 1
		for end < len(pairs) && pairs[end].oldNum == pairs[end-1].oldNum+1 {
			end++
		}
		g.recordRun(pairs[start:end], moves)
		start = end
	}
}

// pickCandidate chooses an old line for the current text. Extending the run
// matched so far wins over any other occurrence of the same text, so
// contiguous blocks move together; otherwise the earliest unclaimed
// occurrence is taken.
func pickCandidate(candidates []int, prevOld int, used map[int]bool) int {
	if prevOld != 0 && !used[prevOld+1] {
		for _, c := range candidates {
			if c == prevOld+1 {
				return c
			}
		}
	}
	for _, c := range candidates {
		if !used[c] {
			return c
		}
	}
	return 0
}

// recordRun applies the length thresholds to one contiguous run of matched
// lines and writes the survivors into the move mappings.
func (g *Generator) recordRun(run []movePair, moves diffcore.Moves) {
	if len(run) == 1 {
		content := strings.TrimSpace(run[0].text)
		if len(content) >= g.opts.PreferredMinLineLength && alnumRe.MatchString(content) {
			moves.From[run[0].newNum] = run[0].oldNum
			moves.To[run[0].oldNum] = run[0].newNum
		}
		return
	}

	anchored := false
	for _, p := range run {
		content := strings.TrimSpace(p.text)
		if len(content) >= g.opts.MinAnchorLineLength && alnumRe.MatchString(content) {
			anchored = true
			break
		}
	}
	if !anchored {
		return
	}
	for _, p := range run {
		if len(strings.TrimSpace(p.text)) < g.opts.MinMoveLineLength {
			continue
		}
		moves.From[p.newNum] = p.oldNum
		moves.To[p.oldNum] = p.newNum
	}
}

// ComputeIndents scans the line pairings of equal and replace opcodes for
// indentation-only changes, keyed by 1-based new-side line number.
func (g *Generator) ComputeIndents(opcodes []diffcore.Opcode, a, b []string) map[int]*diffcore.IndentChange {
	indents := make(map[int]*diffcore.IndentChange)
	for _, op := range opcodes {
		if op.Tag != diffcore.TagEqual && op.Tag != diffcore.TagReplace {
			continue
		}
		n := min(op.I2-op.I1, op.J2-op.J1)
		for k := 0; k < n; k++ {
			if ind := ComputeIndentation(a[op.I1+k], b[op.J1+k], g.opts.TabSize); ind != nil {
				indents[op.J1+k+1] = ind
			}
		}
	}
	return indents
}

// ComputeIndentation compares the leading whitespace of two lines whose
// remaining content is identical. It reports whether the indentation grew and
// how many raw whitespace characters changed, or nil when the lines' content
// differs, the effective widths are equal, or no consistent relationship
// between the runs exists.
func ComputeIndentation(oldLine, newLine string, tabSize int) *diffcore.IndentChange {
	oldIndent := leadingWhitespace(oldLine)
	newIndent := leadingWhitespace(newLine)
	if oldLine[len(oldIndent):] != newLine[len(newIndent):] {
		return nil
	}

	oldWidth := indentWidth(oldIndent, tabSize)
	newWidth := indentWidth(newIndent, tabSize)
	if oldWidth == newWidth {
		return nil
	}

	common := commonSuffixLen(oldIndent, newIndent)
	if newWidth > oldWidth {
		return &diffcore.IndentChange{IsIndent: true, RawChars: len(newIndent) - common}
	}
	return &diffcore.IndentChange{IsIndent: false, RawChars: len(oldIndent) - common}
}

func leadingWhitespace(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] != ' ' && s[i] != '\t' {
			return s[:i]
		}
	}
	return s
}

// indentWidth is the rendered width of a whitespace run with tabs expanded
// to the next tab stop.
func indentWidth(indent string, tabSize int) int {
	width := 0
	for i := 0; i < len(indent); i++ {
		if indent[i] == '\t' {
			width = (width/tabSize + 1) * tabSize
		} else {
			width++
		}
	}
	return width
}

func commonSuffixLen(a, b string) int {
	n := 0
	for n < len(a) && n < len(b) && a[len(a)-1-n] == b[len(b)-1-n] {
		n++
	}
	return n
}
