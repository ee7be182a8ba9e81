package opcodegen_test

import (
	"fmt"
	"testing"

	"github.com/pmichalik/diffcore"
	"github.com/pmichalik/diffcore/differ"
	"github.com/pmichalik/diffcore/opcodegen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func detect(t *testing.T, a, b []string) diffcore.Moves {
	t.Helper()

	g := opcodegen.New(differ.New(), opcodegen.DefaultOptions())
	return g.Generate(a, b).Moves
}

func TestDetectMoves(t *testing.T) {
	t.Parallel()

	t.Run("relocated block", func(t *testing.T) {
		t.Parallel()

		content := func(n int) string {
			return fmt.Sprintf("line %02d with enough content to anchor", n)
		}
		var a, b []string
		for n := 1; n <= 35; n++ {
			a = append(a, content(n))
		}
		// Move lines 28-31 up to position 15-18.
		for n := 1; n <= 14; n++ {
			b = append(b, content(n))
		}
		for n := 28; n <= 31; n++ {
			b = append(b, content(n))
		}
		for n := 15; n <= 27; n++ {
			b = append(b, content(n))
		}
		for n := 32; n <= 35; n++ {
			b = append(b, content(n))
		}

		moves := detect(t, a, b)

		assert.Equal(t, map[int]int{15: 28, 16: 29, 17: 30, 18: 31}, moves.From)
		assert.Equal(t, map[int]int{28: 15, 29: 16, 30: 17, 31: 18}, moves.To)
	})

	t.Run("swap across replace lines", func(t *testing.T) {
		t.Parallel()

		moves := detect(t,
			[]string{
				"this is line 1, and it is sufficiently long",
				"-------------------------------------------",
				"-------------------------------------------",
				"this is line 2, and it is sufficiently long",
			},
			[]string{
				"this is line 2, and it is sufficiently long",
				"-------------------------------------------",
				"-------------------------------------------",
				"this is line 1, and it is sufficiently long",
			})

		assert.Equal(t, map[int]int{1: 4, 4: 1}, moves.From)
		assert.Equal(t, map[int]int{1: 4, 4: 1}, moves.To)
	})

	t.Run("adjacent regions keep their own runs", func(t *testing.T) {
		t.Parallel()

		moves := detect(t,
			[]string{
				"1. Lorem ipsum dolor sit amet, consectetur adipiscing elit.",
				"2. Phasellus et lectus vulputate, dictum mi id, auctor ante.",
				"3. Nulla accumsan tellus ut felis ultrices euismod.",
				"4. Donec quis augue sed arcu tristique pellentesque.",
				"5. Fusce rutrum diam vel viverra sagittis.",
				"6. Nam tincidunt sapien vitae lorem vestibulum tempor.",
				"7. Donec fermentum tortor ut egestas convallis.",
			},
			[]string{
				"6. Nam tincidunt sapien vitae lorem vestibulum tempor.",
				"7. Donec fermentum tortor ut egestas convallis.",
				"4. Donec quis augue sed arcu tristique pellentesque.",
				"5. Fusce rutrum diam vel viverra sagittis.",
				"1. Lorem ipsum dolor sit amet, consectetur adipiscing elit.",
				"2. Phasellus et lectus vulputate, dictum mi id, auctor ante.",
				"3. Nulla accumsan tellus ut felis ultrices euismod.",
			})

		assert.Equal(t, map[int]int{1: 6, 2: 7, 3: 4, 4: 5}, moves.From)
		assert.Equal(t, map[int]int{4: 3, 5: 4, 6: 1, 7: 2}, moves.To)
	})

	t.Run("single line length threshold", func(t *testing.T) {
		t.Parallel()

		// A lone 19-character line stays unflagged; 20 characters is
		// enough.
		moves := detect(t,
			[]string{
				"0123456789012345678",
				"----",
				"----",
				"abcdefghijklmnopqrst",
			},
			[]string{
				"abcdefghijklmnopqrst",
				"----",
				"----",
				"0123456789012345678",
			})

		assert.Equal(t, map[int]int{1: 4}, moves.From)
		assert.Equal(t, map[int]int{4: 1}, moves.To)
	})

	t.Run("multi line run thresholds", func(t *testing.T) {
		t.Parallel()

		// The run is anchored by the 11-character line; within it the
		// 4-character line is kept and the 3-character line dropped.
		moves := detect(t,
			[]string{"123", "456", "789", "ten", "abcdefghijk", "lmno", "pqr"},
			[]string{"abcdefghijk", "lmno", "pqr", "123", "456", "789", "ten"})

		assert.Equal(t, map[int]int{1: 5, 2: 6}, moves.From)
		assert.Equal(t, map[int]int{5: 1, 6: 2}, moves.To)
	})

	t.Run("separator-only lines never anchor a move", func(t *testing.T) {
		t.Parallel()

		// Long enough to pass the length threshold, but pure punctuation.
		a := []string{"=============================================", "shared line kept intact"}
		b := []string{"shared line kept intact", "============================================="}
		opcodes := []diffcore.Opcode{
			{Tag: diffcore.TagDelete, I1: 0, I2: 1, J1: 0, J2: 0},
			{Tag: diffcore.TagEqual, I1: 1, I2: 2, J1: 0, J2: 1},
			{Tag: diffcore.TagInsert, I1: 2, I2: 2, J1: 1, J2: 2},
		}

		g := opcodegen.New(differ.New(), opcodegen.DefaultOptions())
		moves := g.DetectMoves(opcodes, a, b)

		assert.Empty(t, moves.From)
		assert.Empty(t, moves.To)
	})
}

func TestComputeIndentation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		old  string
		new  string
		want *diffcore.IndentChange
	}{
		{
			name: "indenting spaces",
			old:  "    foo",
			new:  "        foo",
			want: &diffcore.IndentChange{IsIndent: true, RawChars: 4},
		},
		{
			name: "indenting tabs",
			old:  "    foo",
			new:  "\t    foo",
			want: &diffcore.IndentChange{IsIndent: true, RawChars: 1},
		},
		{
			name: "indenting spaces and tabs",
			old:  "    foo",
			new:  "  \t    foo",
			want: &diffcore.IndentChange{IsIndent: true, RawChars: 3},
		},
		{
			name: "indenting tabs and spaces",
			old:  "    foo",
			new:  "\t      foo",
			want: &diffcore.IndentChange{IsIndent: true, RawChars: 3},
		},
		{
			name: "replacing tabs with spaces of equal width",
			old:  "\tfoo",
			new:  "        foo",
			want: nil,
		},
		{
			name: "replacing spaces with tabs of equal width",
			old:  "        foo",
			new:  "\tfoo",
			want: nil,
		},
		{
			name: "no changes",
			old:  "    foo",
			new:  "    foo",
			want: nil,
		},
		{
			name: "unindenting spaces",
			old:  "        foo",
			new:  "    foo",
			want: &diffcore.IndentChange{IsIndent: false, RawChars: 4},
		},
		{
			name: "unindenting tabs",
			old:  "\t    foo",
			new:  "    foo",
			want: &diffcore.IndentChange{IsIndent: false, RawChars: 1},
		},
		{
			name: "unindenting spaces and tabs",
			old:  "  \t    foo",
			new:  "    foo",
			want: &diffcore.IndentChange{IsIndent: false, RawChars: 3},
		},
		{
			name: "unindenting tabs and spaces",
			old:  "\t      foo",
			new:  "    foo",
			want: &diffcore.IndentChange{IsIndent: false, RawChars: 3},
		},
		{
			name: "replacing a tab with narrower spaces",
			old:  "\tfoo",
			new:  "    foo",
			want: &diffcore.IndentChange{IsIndent: false, RawChars: 1},
		},
		{
			name: "different content",
			old:  "    foo",
			new:  "        bar",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := opcodegen.ComputeIndentation(tt.old, tt.new, 8)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGenerate_IndentsOnReplacedLines(t *testing.T) {
	t.Parallel()

	g := opcodegen.New(differ.New(), opcodegen.DefaultOptions())
	res := g.Generate(
		[]string{"func main() {", "    doWork()", "}"},
		[]string{"func main() {", "        doWork()", "}"},
	)

	require.Contains(t, res.Indents, 2)
	assert.Equal(t, &diffcore.IndentChange{IsIndent: true, RawChars: 4}, res.Indents[2])
	assert.NotContains(t, res.Indents, 1)
	assert.NotContains(t, res.Indents, 3)
}
