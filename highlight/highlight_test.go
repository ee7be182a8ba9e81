package highlight_test

import (
	"testing"

	"github.com/pmichalik/diffcore"
	"github.com/pmichalik/diffcore/highlight"
	"github.com/stretchr/testify/assert"
)

func TestSerializeIndentation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ws   string
		want string
	}{
		{"spaces", "    ", "&gt;&gt;&gt;&gt;"},
		{"tab", "\t", "&mdash;&mdash;&mdash;&mdash;&mdash;&mdash;&gt;|"},
		{"spaces then tab", "   \t", "&gt;&gt;&gt;&mdash;&mdash;&mdash;&gt;|"},
		{"tab then spaces", "\t   ", "&mdash;&mdash;&mdash;&mdash;&mdash;&mdash;&gt;|&gt;&gt;&gt;"},
		{"7 spaces and tab", "       \t", "&gt;&gt;&gt;&gt;&gt;&gt;&gt;|"},
		{"6 spaces and tab", "      \t", "&gt;&gt;&gt;&gt;&gt;&gt;&gt;|"},
		{"5 spaces and tab", "     \t", "&gt;&gt;&gt;&gt;&gt;&mdash;&gt;|"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, highlight.SerializeIndentation(tt.ws, 8))
		})
	}
}

func TestSerializeUnindentation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ws   string
		want string
	}{
		{"spaces", "    ", "&lt;&lt;&lt;&lt;"},
		{"tab", "\t", "|&lt;&mdash;&mdash;&mdash;&mdash;&mdash;&mdash;"},
		{"spaces then tab", "   \t", "&lt;&lt;&lt;|&lt;&mdash;&mdash;&mdash;"},
		{"tab then spaces", "\t   ", "|&lt;&mdash;&mdash;&mdash;&mdash;&mdash;&mdash;&lt;&lt;&lt;"},
		{"7 spaces and tab", "       \t", "&lt;&lt;&lt;&lt;&lt;&lt;&lt;|"},
		{"6 spaces and tab", "      \t", "&lt;&lt;&lt;&lt;&lt;&lt;|&lt;"},
		{"5 spaces and tab", "     \t", "&lt;&lt;&lt;&lt;&lt;|&lt;&mdash;"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, highlight.SerializeUnindentation(tt.ws, 8))
		})
	}
}

func TestHighlightIndentation(t *testing.T) {
	t.Parallel()

	t.Run("indent marks the new side", func(t *testing.T) {
		t.Parallel()

		oldM, newM := highlight.HighlightIndentation("", "        foo", true, 4, 8)
		assert.Equal(t, "", oldM)
		assert.Equal(t, `<span class="indent">&gt;&gt;&gt;&gt;</span>    foo`, newM)
	})

	t.Run("indent inside an adjacent tag keeps the nesting", func(t *testing.T) {
		t.Parallel()

		oldM, newM := highlight.HighlightIndentation("", `<span class="s"> </span>foo`, true, 1, 8)
		assert.Equal(t, "", oldM)
		assert.Equal(t, `<span class="s"><span class="indent">&gt;</span></span>foo`, newM)
	})

	t.Run("indent with unexpected markup fails open", func(t *testing.T) {
		t.Parallel()

		line := " <span>  </span> foo"
		oldM, newM := highlight.HighlightIndentation("", line, true, 4, 8)
		assert.Equal(t, "", oldM)
		assert.Equal(t, line, newM)
	})

	t.Run("unindent marks the old side", func(t *testing.T) {
		t.Parallel()

		oldM, newM := highlight.HighlightIndentation("        foo", "", false, 4, 8)
		assert.Equal(t, `<span class="unindent">&lt;&lt;&lt;&lt;</span>    foo`, oldM)
		assert.Equal(t, "", newM)
	})

	t.Run("unindent inside an adjacent tag keeps the nesting", func(t *testing.T) {
		t.Parallel()

		oldM, newM := highlight.HighlightIndentation(`<span class="s"> </span>foo`, "", false, 1, 8)
		assert.Equal(t, `<span class="s"><span class="unindent">&lt;</span></span>foo`, oldM)
		assert.Equal(t, "", newM)
	})

	t.Run("unindent with unexpected markup fails open", func(t *testing.T) {
		t.Parallel()

		line := " <span>  </span> foo"
		oldM, newM := highlight.HighlightIndentation(line, "", false, 4, 8)
		assert.Equal(t, line, oldM)
		assert.Equal(t, "", newM)
	})
}

func TestChangedRegions(t *testing.T) {
	t.Parallel()

	t.Run("single word replaced", func(t *testing.T) {
		t.Parallel()

		oldR, newR := highlight.ChangedRegions(
			`submitter = models.ForeignKey(Person, verbose_name="Submitter")`,
			`submitter = models.ForeignKey(User, verbose_name="Submitter")`)

		assert.Equal(t, []diffcore.Region{{Start: 30, End: 36}}, oldR)
		assert.Equal(t, []diffcore.Region{{Start: 30, End: 34}}, newR)
	})

	t.Run("multiple regions with zero-width spans", func(t *testing.T) {
		t.Parallel()

		oldR, newR := highlight.ChangedRegions(
			"-from reviews.models import ReviewRequest, Person, Group",
			"+from .reviews.models import ReviewRequest, Group")

		assert.Equal(t, []diffcore.Region{
			{Start: 0, End: 1},
			{Start: 6, End: 6},
			{Start: 43, End: 51},
		}, oldR)
		assert.Equal(t, []diffcore.Region{
			{Start: 0, End: 1},
			{Start: 6, End: 7},
			{Start: 44, End: 44},
		}, newR)
	})

	t.Run("dissimilar lines report nothing", func(t *testing.T) {
		t.Parallel()

		oldR, newR := highlight.ChangedRegions("abcdefghijklm", "nopqrstuvwxyz")
		assert.Nil(t, oldR)
		assert.Nil(t, newR)
	})

	t.Run("identical lines report nothing", func(t *testing.T) {
		t.Parallel()

		oldR, newR := highlight.ChangedRegions("same text", "same text")
		assert.Nil(t, oldR)
		assert.Nil(t, newR)
	})

	t.Run("empty lines report nothing", func(t *testing.T) {
		t.Parallel()

		oldR, newR := highlight.ChangedRegions("", "")
		assert.Nil(t, oldR)
		assert.Nil(t, newR)
	})
}
