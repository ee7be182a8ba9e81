// Package lipgloss renders chunk streams for the terminal using the
// lipgloss styling library.
package lipgloss

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/pmichalik/diffcore"
)

// Compile-time interface verification.
var _ diffcore.Renderer = (*Renderer)(nil)

// tabWidth is the standard terminal tab stop interval.
const tabWidth = 8

// Renderer renders a file's chunks as a unified terminal diff: line number
// gutters, +/- markers, intraline change emphasis, move annotations, and
// collapsed filtered regions.
type Renderer struct {
	header   lipgloss.Style
	insert   lipgloss.Style
	delete   lipgloss.Style
	context  lipgloss.Style
	emphasis lipgloss.Style
	note     lipgloss.Style
}

// NewRenderer creates a Renderer writing color sequences suitable for w.
func NewRenderer(w io.Writer) *Renderer {
	r := lipgloss.NewRenderer(w)
	return &Renderer{
		header:   r.NewStyle().Bold(true),
		insert:   r.NewStyle().Foreground(lipgloss.Color("2")),
		delete:   r.NewStyle().Foreground(lipgloss.Color("1")),
		context:  r.NewStyle().Faint(true),
		emphasis: r.NewStyle().Reverse(true),
		note:     r.NewStyle().Foreground(lipgloss.Color("6")).Italic(true),
	}
}

// Render implements diffcore.Renderer.
func (r *Renderer) Render(fc *diffcore.FileChunks) (string, error) {
	var sb strings.Builder

	name := fc.File.DestPath
	if fc.File.SourcePath != fc.File.DestPath {
		name = fc.File.SourcePath + " -> " + fc.File.DestPath
	}
	sb.WriteString(r.header.Render(name))
	sb.WriteString("  ")
	sb.WriteString(r.note.Render(fmt.Sprintf("+%d -%d ~%d",
		fc.Counts.InsertCount, fc.Counts.DeleteCount, fc.Counts.ReplaceCount)))
	sb.WriteString("\n")

	if fc.File.IsBinary {
		sb.WriteString(r.note.Render("binary file differs"))
		sb.WriteString("\n")
		return sb.String(), nil
	}

	gutter := gutterWidth(fc)
	for _, chunk := range fc.Chunks {
		if chunk.Tag == diffcore.TagFilteredEqual {
			sb.WriteString(r.note.Render(fmt.Sprintf("... %d unchanged lines", chunk.NewEnd-chunk.NewStart)))
			sb.WriteString("\n")
			continue
		}
		for _, line := range chunk.Lines {
			r.renderLine(&sb, chunk.Tag, line, gutter)
		}
	}
	return sb.String(), nil
}

func (r *Renderer) renderLine(sb *strings.Builder, tag diffcore.Tag, line diffcore.ChunkLine, gutter int) {
	switch tag {
	case diffcore.TagEqual:
		fmt.Fprintf(sb, "%*d %*d  ", gutter, line.OldLineNum, gutter, line.NewLineNum)
		sb.WriteString(r.context.Render(expandTabs(line.NewText)))
		sb.WriteString("\n")

	case diffcore.TagInsert:
		fmt.Fprintf(sb, "%*s %*d  ", gutter, "", gutter, line.NewLineNum)
		sb.WriteString(r.insert.Render("+" + expandTabs(line.NewText)))
		r.writeMoveNote(sb, "moved from", line.MovedFrom)
		sb.WriteString("\n")

	case diffcore.TagDelete:
		fmt.Fprintf(sb, "%*d %*s  ", gutter, line.OldLineNum, gutter, "")
		sb.WriteString(r.delete.Render("-" + expandTabs(line.OldText)))
		r.writeMoveNote(sb, "moved to", line.MovedTo)
		sb.WriteString("\n")

	case diffcore.TagReplace:
		if line.OldLineNum != 0 {
			fmt.Fprintf(sb, "%*d %*s  ", gutter, line.OldLineNum, gutter, "")
			sb.WriteString(r.emphasizeRegions(line.OldText, line.OldRegions, r.delete, "-"))
			r.writeMoveNote(sb, "moved to", line.MovedTo)
			sb.WriteString("\n")
		}
		if line.NewLineNum != 0 {
			fmt.Fprintf(sb, "%*s %*d  ", gutter, "", gutter, line.NewLineNum)
			sb.WriteString(r.emphasizeRegions(line.NewText, line.NewRegions, r.insert, "+"))
			r.writeMoveNote(sb, "moved from", line.MovedFrom)
			sb.WriteString("\n")
		}
	}
}

func (r *Renderer) writeMoveNote(sb *strings.Builder, label string, lineNum int) {
	if lineNum == 0 {
		return
	}
	sb.WriteString("  ")
	sb.WriteString(r.note.Render(fmt.Sprintf("(%s %d)", label, lineNum)))
}

// emphasizeRegions styles a line, inverting the rune spans that changed.
// Offsets are rune-based, so the text is only expanded after slicing.
func (r *Renderer) emphasizeRegions(text string, regions []diffcore.Region, base lipgloss.Style, marker string) string {
	runes := []rune(text)
	var sb strings.Builder
	sb.WriteString(base.Render(marker))
	pos := 0
	for _, reg := range regions {
		if reg.Start > pos {
			sb.WriteString(base.Render(expandTabs(string(runes[pos:reg.Start]))))
		}
		if reg.End > reg.Start {
			sb.WriteString(r.emphasis.Render(expandTabs(string(runes[reg.Start:reg.End]))))
		}
		pos = reg.End
	}
	if pos < len(runes) {
		sb.WriteString(base.Render(expandTabs(string(runes[pos:]))))
	}
	return sb.String()
}

// expandTabs replaces tabs with spaces up to the next tab stop, since
// styled terminal output cannot rely on the terminal's own tab handling.
func expandTabs(s string) string {
	if !strings.ContainsRune(s, '\t') {
		return s
	}
	var sb strings.Builder
	col := 0
	for _, r := range s {
		if r == '\t' {
			n := tabWidth - col%tabWidth
			sb.WriteString(strings.Repeat(" ", n))
			col += n
		} else {
			sb.WriteRune(r)
			col += lipgloss.Width(string(r))
		}
	}
	return sb.String()
}

func gutterWidth(fc *diffcore.FileChunks) int {
	maxNum := 1
	for _, chunk := range fc.Chunks {
		if chunk.OldEnd > maxNum {
			maxNum = chunk.OldEnd
		}
		if chunk.NewEnd > maxNum {
			maxNum = chunk.NewEnd
		}
	}
	return len(fmt.Sprint(maxNum))
}
