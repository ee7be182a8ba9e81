// Package processors transforms opcode streams after generation. The filter
// pass reclassifies equal regions that carry no interest when two diffs of
// the same file are compared against each other; the merge pass coalesces
// adjacent same-tag opcodes.
package processors

import (
	"bytes"
	"regexp"
	"strconv"

	"github.com/pmichalik/diffcore"
)

var hunkHeaderRe = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)

// lineRange is a half-open 0-based line span on the new side of a hunk,
// starting where the hunk's leading context ends.
type lineRange struct {
	start int
	end   int
}

// findHunkRanges scans a unified diff for its hunks and returns, per hunk,
// the span from the first changed line through the end of the hunk. The
// leading context is measured by counting lines from the hunk header to the
// first +/- line, since diff generation settings make the context width
// unreliable to assume.
func findHunkRanges(diff []byte) []lineRange {
	var ranges []lineRange
	inHunk := false
	newStart := 0
	newLen := 0
	context := 0

	for _, line := range bytes.Split(diff, []byte("\n")) {
		if inHunk {
			if len(line) > 0 && (line[0] == '+' || line[0] == '-') {
				start := newStart - 1 + context
				ranges = append(ranges, lineRange{start: start, end: start + newLen})
				inHunk = false
				continue
			}
			context++
		}
		if m := hunkHeaderRe.FindSubmatch(line); m != nil {
			newStart, _ = strconv.Atoi(string(m[3]))
			newLen = 1
			if len(m[4]) > 0 {
				newLen, _ = strconv.Atoi(string(m[4]))
			}
			context = 0
			inHunk = true
		}
	}
	return ranges
}

// spanInside reports whether the half-open span [lo, hi) sits inside the
// range at idx.
func spanInside(ranges []lineRange, idx, lo, hi int) bool {
	if idx >= len(ranges) {
		return false
	}
	r := ranges[idx]
	return lo >= r.start && lo < r.end && hi <= r.end
}

// FilterInterdiffOpcodes reclassifies equal opcodes as filtered-equal when
// they fall outside the hunks' changed regions in both underlying diffs.
// origDiff and newDiff are the raw unified diffs whose revisions the opcode
// stream compares; their hunk ranges apply to the old and new side of each
// opcode respectively, advancing in lockstep with the stream. Tags other
// than equal always pass through untouched, as do all ranges and order.
func FilterInterdiffOpcodes(opcodes []diffcore.Opcode, origDiff, newDiff []byte) []diffcore.Opcode {
	origRanges := findHunkRanges(origDiff)
	newRanges := findHunkRanges(newDiff)

	out := make([]diffcore.Opcode, 0, len(opcodes))
	if len(origRanges) == 0 || len(newRanges) == 0 {
		// Not a pair of unified diffs. Nothing can be classified as
		// uninteresting.
		return append(out, opcodes...)
	}

	oi, ni := 0, 0
	for _, op := range opcodes {
		if op.Tag == diffcore.TagEqual &&
			!spanInside(origRanges, oi, op.I1, op.I2) &&
			!spanInside(newRanges, ni, op.J1, op.J2) {
			op.Tag = diffcore.TagFilteredEqual
		}
		out = append(out, op)

		for oi < len(origRanges) && op.I2 >= origRanges[oi].end {
			oi++
		}
		for ni < len(newRanges) && op.J2 >= newRanges[ni].end {
			ni++
		}
	}
	return out
}

// MergeAdjacentChunks coalesces neighboring opcodes that share a tag and
// meet exactly at their boundaries.
func MergeAdjacentChunks(opcodes []diffcore.Opcode) []diffcore.Opcode {
	out := make([]diffcore.Opcode, 0, len(opcodes))
	for _, op := range opcodes {
		if n := len(out); n > 0 {
			last := &out[n-1]
			if last.Tag == op.Tag && last.I2 == op.I1 && last.J2 == op.J1 {
				last.I2 = op.I2
				last.J2 = op.J2
				continue
			}
		}
		out = append(out, op)
	}
	return out
}
