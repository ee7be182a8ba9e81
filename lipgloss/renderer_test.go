package lipgloss_test

import (
	"io"
	"testing"

	"github.com/pmichalik/diffcore"
	"github.com/pmichalik/diffcore/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newRenderer writes to io.Discard, so styles collapse to plain text and
// assertions can match content directly.
func newRenderer() *lipgloss.Renderer {
	return lipgloss.NewRenderer(io.Discard)
}

func TestRenderer_Render(t *testing.T) {
	t.Parallel()

	t.Run("unified layout with markers and counts", func(t *testing.T) {
		t.Parallel()

		fc := &diffcore.FileChunks{
			File:   diffcore.DiffFile{SourcePath: "main.go", DestPath: "main.go"},
			Counts: diffcore.LineCounts{InsertCount: 1, DeleteCount: 1, EqualCount: 1, TotalLineCount: 3},
			Chunks: []diffcore.Chunk{
				{
					Tag: diffcore.TagEqual, OldStart: 0, OldEnd: 1, NewStart: 0, NewEnd: 1,
					Lines: []diffcore.ChunkLine{
						{OldLineNum: 1, NewLineNum: 1, OldText: "ctx", NewText: "ctx"},
					},
				},
				{
					Tag: diffcore.TagDelete, OldStart: 1, OldEnd: 2, NewStart: 1, NewEnd: 1,
					Lines: []diffcore.ChunkLine{
						{OldLineNum: 2, OldText: "gone"},
					},
				},
				{
					Tag: diffcore.TagInsert, OldStart: 2, OldEnd: 2, NewStart: 1, NewEnd: 2,
					Lines: []diffcore.ChunkLine{
						{NewLineNum: 2, NewText: "added"},
					},
				},
			},
		}

		out, err := newRenderer().Render(fc)

		require.NoError(t, err)
		assert.Contains(t, out, "main.go")
		assert.Contains(t, out, "+1 -1 ~0")
		assert.Contains(t, out, "-gone")
		assert.Contains(t, out, "+added")
	})

	t.Run("renamed file shows both paths", func(t *testing.T) {
		t.Parallel()

		fc := &diffcore.FileChunks{
			File: diffcore.DiffFile{SourcePath: "old.go", DestPath: "new.go", IsRename: true},
		}

		out, err := newRenderer().Render(fc)

		require.NoError(t, err)
		assert.Contains(t, out, "old.go -> new.go")
	})

	t.Run("move annotations", func(t *testing.T) {
		t.Parallel()

		fc := &diffcore.FileChunks{
			File: diffcore.DiffFile{DestPath: "f"},
			Chunks: []diffcore.Chunk{
				{
					Tag: diffcore.TagInsert, NewStart: 0, NewEnd: 1,
					Lines: []diffcore.ChunkLine{
						{NewLineNum: 1, NewText: "relocated", MovedFrom: 7},
					},
				},
				{
					Tag: diffcore.TagDelete, OldStart: 6, OldEnd: 7,
					Lines: []diffcore.ChunkLine{
						{OldLineNum: 7, OldText: "relocated", MovedTo: 1},
					},
				},
			},
		}

		out, err := newRenderer().Render(fc)

		require.NoError(t, err)
		assert.Contains(t, out, "(moved from 7)")
		assert.Contains(t, out, "(moved to 1)")
	})

	t.Run("filtered regions collapse", func(t *testing.T) {
		t.Parallel()

		fc := &diffcore.FileChunks{
			File: diffcore.DiffFile{DestPath: "f"},
			Chunks: []diffcore.Chunk{
				{Tag: diffcore.TagFilteredEqual, OldStart: 0, OldEnd: 120, NewStart: 0, NewEnd: 120},
			},
		}

		out, err := newRenderer().Render(fc)

		require.NoError(t, err)
		assert.Contains(t, out, "... 120 unchanged lines")
	})

	t.Run("binary file", func(t *testing.T) {
		t.Parallel()

		fc := &diffcore.FileChunks{
			File: diffcore.DiffFile{DestPath: "logo.png", IsBinary: true},
		}

		out, err := newRenderer().Render(fc)

		require.NoError(t, err)
		assert.Contains(t, out, "binary file differs")
	})

	t.Run("tabs expand to tab stops", func(t *testing.T) {
		t.Parallel()

		fc := &diffcore.FileChunks{
			File: diffcore.DiffFile{DestPath: "f"},
			Chunks: []diffcore.Chunk{
				{
					Tag: diffcore.TagInsert, NewStart: 0, NewEnd: 1,
					Lines: []diffcore.ChunkLine{
						{NewLineNum: 1, NewText: "\tindented"},
					},
				},
			},
		}

		out, err := newRenderer().Render(fc)

		require.NoError(t, err)
		assert.NotContains(t, out, "\t")
		assert.Contains(t, out, "+        indented")
	})
}
