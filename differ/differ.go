// Package differ computes minimal line-level edit scripts between two
// sequences using longest-common-block matching with recursive subdivision.
// Ties in the longest-match search always favor the earliest-starting match,
// so identical inputs yield identical opcodes across runs.
package differ

import (
	"sort"

	"github.com/pmichalik/diffcore"
)

// Compile-time interface verification.
var _ diffcore.Differ = (*Differ)(nil)

// Differ is a reusable diffcore.Differ. The zero value compares all lines
// verbatim; IsJunk and AutoJunk tune the matching heuristics.
type Differ struct {
	// IsJunk marks lines that should not anchor matches (for example
	// blank lines or brace-only lines). Junk lines still appear in the
	// resulting opcodes; they just never start a matching block.
	IsJunk func(string) bool

	// AutoJunk treats lines occurring in more than 1% of a large new
	// sequence as popular and skips them when anchoring matches. This
	// keeps duplicate-heavy inputs (separator lines, blank lines) from
	// degrading toward quadratic behavior.
	AutoJunk bool
}

// New returns a Differ with the autojunk heuristic enabled.
func New() *Differ {
	return &Differ{AutoJunk: true}
}

// Opcodes implements diffcore.Differ.
func (d *Differ) Opcodes(a, b []string) []diffcore.Opcode {
	return NewMatcher(a, b, d.IsJunk, d.AutoJunk).Opcodes()
}

// Match is a matching block between the two sequences: a[A:A+Size] equals
// b[B:B+Size].
type Match struct {
	A    int
	B    int
	Size int
}

// Matcher compares one fixed pair of sequences. It caches the matching
// blocks, so Opcodes and Ratio can be called repeatedly for free.
type Matcher struct {
	a, b     []string
	isJunk   func(string) bool
	autoJunk bool

	b2j     map[string][]int
	junk    map[string]struct{}
	popular map[string]struct{}

	blocks  []Match
	opcodes []diffcore.Opcode
}

// NewMatcher returns a matcher over a and b. isJunk may be nil.
func NewMatcher(a, b []string, isJunk func(string) bool, autoJunk bool) *Matcher {
	m := &Matcher{a: a, b: b, isJunk: isJunk, autoJunk: autoJunk}
	m.indexB()
	return m
}

// indexB builds the line -> positions index over b, pulling junk and popular
// lines out so they never anchor a match.
func (m *Matcher) indexB() {
	m.b2j = make(map[string][]int, len(m.b))
	for j, line := range m.b {
		m.b2j[line] = append(m.b2j[line], j)
	}

	m.junk = make(map[string]struct{})
	if m.isJunk != nil {
		for line := range m.b2j {
			if m.isJunk(line) {
				m.junk[line] = struct{}{}
			}
		}
		for line := range m.junk {
			delete(m.b2j, line)
		}
	}

	m.popular = make(map[string]struct{})
	if m.autoJunk && len(m.b) >= 200 {
		threshold := len(m.b)/100 + 1
		for line, idx := range m.b2j {
			if len(idx) > threshold {
				m.popular[line] = struct{}{}
			}
		}
		for line := range m.popular {
			delete(m.b2j, line)
		}
	}
}

func (m *Matcher) isBJunk(line string) bool {
	_, ok := m.junk[line]
	return ok
}

// findLongestMatch locates the longest contiguous matching block within
// a[alo:ahi] and b[blo:bhi]. Of all maximal blocks it returns the one
// starting earliest in a, then earliest in b.
func (m *Matcher) findLongestMatch(alo, ahi, blo, bhi int) Match {
	bestI, bestJ, bestSize := alo, blo, 0
	j2len := map[int]int{}

	for i := alo; i < ahi; i++ {
		newJ2len := map[int]int{}
		for _, j := range m.b2j[m.a[i]] {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			k := j2len[j-1] + 1
			newJ2len[j] = k
			if k > bestSize {
				bestI, bestJ, bestSize = i-k+1, j-k+1, k
			}
		}
		j2len = newJ2len
	}

	// Extend the best match with equal junk-free context, then with any
	// equal junk hugging it on either side.
	for bestI > alo && bestJ > blo && !m.isBJunk(m.b[bestJ-1]) &&
		m.a[bestI-1] == m.b[bestJ-1] {
		bestI, bestJ, bestSize = bestI-1, bestJ-1, bestSize+1
	}
	for bestI+bestSize < ahi && bestJ+bestSize < bhi &&
		!m.isBJunk(m.b[bestJ+bestSize]) &&
		m.a[bestI+bestSize] == m.b[bestJ+bestSize] {
		bestSize++
	}
	for bestI > alo && bestJ > blo && m.isBJunk(m.b[bestJ-1]) &&
		m.a[bestI-1] == m.b[bestJ-1] {
		bestI, bestJ, bestSize = bestI-1, bestJ-1, bestSize+1
	}
	for bestI+bestSize < ahi && bestJ+bestSize < bhi &&
		m.isBJunk(m.b[bestJ+bestSize]) &&
		m.a[bestI+bestSize] == m.b[bestJ+bestSize] {
		bestSize++
	}

	return Match{bestI, bestJ, bestSize}
}

// MatchingBlocks returns the matching blocks in order, terminated by a
// zero-size sentinel at (len(a), len(b)).
func (m *Matcher) MatchingBlocks() []Match {
	if m.blocks != nil {
		return m.blocks
	}

	queue := [][4]int{{0, len(m.a), 0, len(m.b)}}
	var found []Match
	for len(queue) > 0 {
		q := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		alo, ahi, blo, bhi := q[0], q[1], q[2], q[3]

		match := m.findLongestMatch(alo, ahi, blo, bhi)
		if match.Size == 0 {
			continue
		}
		found = append(found, match)
		if alo < match.A && blo < match.B {
			queue = append(queue, [4]int{alo, match.A, blo, match.B})
		}
		if match.A+match.Size < ahi && match.B+match.Size < bhi {
			queue = append(queue, [4]int{match.A + match.Size, ahi, match.B + match.Size, bhi})
		}
	}
	sort.Slice(found, func(i, j int) bool {
		if found[i].A != found[j].A {
			return found[i].A < found[j].A
		}
		return found[i].B < found[j].B
	})

	// Coalesce adjacent blocks.
	var merged []Match
	i1, j1, k1 := 0, 0, 0
	for _, blk := range found {
		if i1+k1 == blk.A && j1+k1 == blk.B {
			k1 += blk.Size
			continue
		}
		if k1 > 0 {
			merged = append(merged, Match{i1, j1, k1})
		}
		i1, j1, k1 = blk.A, blk.B, blk.Size
	}
	if k1 > 0 {
		merged = append(merged, Match{i1, j1, k1})
	}
	merged = append(merged, Match{len(m.a), len(m.b), 0})

	m.blocks = merged
	return merged
}

// Opcodes returns the edit script transforming a into b.
func (m *Matcher) Opcodes() []diffcore.Opcode {
	if m.opcodes != nil {
		return m.opcodes
	}

	i, j := 0, 0
	opcodes := make([]diffcore.Opcode, 0, len(m.MatchingBlocks()))
	for _, blk := range m.MatchingBlocks() {
		tag := diffcore.Tag("")
		switch {
		case i < blk.A && j < blk.B:
			tag = diffcore.TagReplace
		case i < blk.A:
			tag = diffcore.TagDelete
		case j < blk.B:
			tag = diffcore.TagInsert
		}
		if tag != "" {
			opcodes = append(opcodes, diffcore.Opcode{Tag: tag, I1: i, I2: blk.A, J1: j, J2: blk.B})
		}
		i, j = blk.A+blk.Size, blk.B+blk.Size
		if blk.Size > 0 {
			opcodes = append(opcodes, diffcore.Opcode{Tag: diffcore.TagEqual, I1: blk.A, I2: i, J1: blk.B, J2: j})
		}
	}

	m.opcodes = opcodes
	return opcodes
}

// Ratio measures similarity of the two sequences in [0, 1]: twice the number
// of matched lines over the total number of lines.
func (m *Matcher) Ratio() float64 {
	matches := 0
	for _, blk := range m.MatchingBlocks() {
		matches += blk.Size
	}
	total := len(m.a) + len(m.b)
	if total == 0 {
		return 1.0
	}
	return 2.0 * float64(matches) / float64(total)
}

// SplitRunes explodes a string into single-rune elements for character-level
// matching.
func SplitRunes(s string) []string {
	runes := []rune(s)
	out := make([]string, len(runes))
	for i, r := range runes {
		out[i] = string(r)
	}
	return out
}
