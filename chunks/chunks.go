// Package chunks turns annotated opcode streams into the renderable chunk
// structure: per-line text and markup pairs with 1-based line numbers, move
// and indentation metadata, intraline changed regions, and the derived line
// counts the parser's raw tallies cannot provide.
package chunks

import (
	"context"
	"fmt"
	"html"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/pmichalik/diffcore"
	"github.com/pmichalik/diffcore/highlight"
	"github.com/pmichalik/diffcore/opcodegen"
	"github.com/pmichalik/diffcore/processors"
)

// Generator builds FileChunks from file contents. The highlighter is
// optional; without one, or when it does not support the file, lines render
// as plain escaped text.
type Generator struct {
	gen         *opcodegen.Generator
	highlighter diffcore.Highlighter
	opts        opcodegen.Options
}

// NewGenerator creates a chunk generator on top of the given differ.
func NewGenerator(d diffcore.Differ, h diffcore.Highlighter, opts opcodegen.Options) *Generator {
	return &Generator{
		gen:         opcodegen.New(d, opts),
		highlighter: h,
		opts:        opts,
	}
}

// Generate produces the chunk stream for one file pair.
func (g *Generator) Generate(file diffcore.DiffFile, oldLines, newLines []string) *diffcore.FileChunks {
	res := g.gen.Generate(oldLines, newLines)
	opcodes := processors.MergeAdjacentChunks(res.Opcodes)
	return g.build(file, opcodes, res, oldLines, newLines)
}

// GenerateInterdiff produces the chunk stream comparing the results of two
// diffs of the same file, reclassifying equal regions neither diff touched
// so the view can collapse them.
func (g *Generator) GenerateInterdiff(file, interFile diffcore.DiffFile, oldLines, newLines []string) *diffcore.FileChunks {
	res := g.gen.Generate(oldLines, newLines)
	opcodes := processors.FilterInterdiffOpcodes(res.Opcodes, file.Data, interFile.Data)
	opcodes = processors.MergeAdjacentChunks(opcodes)
	return g.build(file, opcodes, res, oldLines, newLines)
}

func (g *Generator) build(file diffcore.DiffFile, opcodes []diffcore.Opcode, res *opcodegen.Result, oldLines, newLines []string) *diffcore.FileChunks {
	fc := &diffcore.FileChunks{
		File:  file,
		Moves: res.Moves,
		Counts: diffcore.LineCounts{
			RawInsertCount: file.RawInsertCount,
			RawDeleteCount: file.RawDeleteCount,
		},
	}
	if file.IsBinary {
		return fc
	}

	oldMarkup := g.markupLines(file.SourcePath, oldLines)
	newMarkup := g.markupLines(file.DestPath, newLines)

	for _, op := range opcodes {
		chunk := diffcore.Chunk{
			Tag:      op.Tag,
			OldStart: op.I1,
			OldEnd:   op.I2,
			NewStart: op.J1,
			NewEnd:   op.J2,
		}

		switch op.Tag {
		case diffcore.TagInsert:
			for j := op.J1; j < op.J2; j++ {
				chunk.Lines = append(chunk.Lines, diffcore.ChunkLine{
					NewLineNum: j + 1,
					NewText:    newLines[j],
					NewMarkup:  newMarkup[j],
					MovedFrom:  res.Moves.From[j+1],
				})
			}
			fc.Counts.InsertCount += op.J2 - op.J1

		case diffcore.TagDelete:
			for i := op.I1; i < op.I2; i++ {
				chunk.Lines = append(chunk.Lines, diffcore.ChunkLine{
					OldLineNum: i + 1,
					OldText:    oldLines[i],
					OldMarkup:  oldMarkup[i],
					MovedTo:    res.Moves.To[i+1],
				})
			}
			fc.Counts.DeleteCount += op.I2 - op.I1

		case diffcore.TagReplace:
			chunk.Lines = g.replaceLines(op, res, oldLines, newLines, oldMarkup, newMarkup)
			fc.Counts.ReplaceCount += max(op.I2-op.I1, op.J2-op.J1)

		default: // equal, filtered-equal
			chunk.Lines = g.equalLines(op, res, oldLines, newLines, oldMarkup, newMarkup)
			fc.Counts.EqualCount += op.I2 - op.I1
		}

		fc.Chunks = append(fc.Chunks, chunk)
	}

	fc.Counts.TotalLineCount = fc.Counts.InsertCount + fc.Counts.DeleteCount +
		fc.Counts.ReplaceCount + fc.Counts.EqualCount
	return fc
}

// replaceLines pairs the two sides of a replace opcode positionally. The
// longer side's surplus lines appear with only one side populated.
func (g *Generator) replaceLines(op diffcore.Opcode, res *opcodegen.Result, oldLines, newLines, oldMarkup, newMarkup []string) []diffcore.ChunkLine {
	n := max(op.I2-op.I1, op.J2-op.J1)
	lines := make([]diffcore.ChunkLine, 0, n)
	for k := 0; k < n; k++ {
		var line diffcore.ChunkLine
		i, j := op.I1+k, op.J1+k
		if i < op.I2 {
			line.OldLineNum = i + 1
			line.OldText = oldLines[i]
			line.OldMarkup = oldMarkup[i]
			line.MovedTo = res.Moves.To[i+1]
		}
		if j < op.J2 {
			line.NewLineNum = j + 1
			line.NewText = newLines[j]
			line.NewMarkup = newMarkup[j]
			line.MovedFrom = res.Moves.From[j+1]
		}
		if i < op.I2 && j < op.J2 {
			g.annotatePair(&line, res)
		}
		lines = append(lines, line)
	}
	return lines
}

func (g *Generator) equalLines(op diffcore.Opcode, res *opcodegen.Result, oldLines, newLines, oldMarkup, newMarkup []string) []diffcore.ChunkLine {
	lines := make([]diffcore.ChunkLine, 0, op.I2-op.I1)
	for k := 0; k < op.I2-op.I1; k++ {
		i, j := op.I1+k, op.J1+k
		line := diffcore.ChunkLine{
			OldLineNum: i + 1,
			NewLineNum: j + 1,
			OldText:    oldLines[i],
			NewText:    newLines[j],
			OldMarkup:  oldMarkup[i],
			NewMarkup:  newMarkup[j],
		}
		g.annotatePair(&line, res)
		lines = append(lines, line)
	}
	return lines
}

// annotatePair attaches indentation metadata and intraline changed regions
// to a line present on both sides. An indentation change takes precedence:
// its markers are injected into the markup and region highlighting is
// skipped for that line.
func (g *Generator) annotatePair(line *diffcore.ChunkLine, res *opcodegen.Result) {
	if ind, ok := res.Indents[line.NewLineNum]; ok {
		line.Indent = ind
		line.OldMarkup, line.NewMarkup = highlight.HighlightIndentation(
			line.OldMarkup, line.NewMarkup, ind.IsIndent, ind.RawChars, g.opts.TabSize)
		return
	}
	if line.OldText != line.NewText {
		line.OldRegions, line.NewRegions = highlight.ChangedRegions(line.OldText, line.NewText)
	}
}

// markupLines highlights a file's lines, falling back to escaped plain text.
func (g *Generator) markupLines(path string, lines []string) []string {
	if g.highlighter != nil {
		if markup := g.highlighter.Highlight(path, lines); markup != nil {
			return markup
		}
	}
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = html.EscapeString(l)
	}
	return out
}

// GenerateAll resolves each parsed file's contents and builds its chunks,
// one errgroup worker per file. The source side resolves through oldRepo and
// the destination side through newRepo; SCM-backed callers pass the same
// repository twice. Results keep the input order.
func (g *Generator) GenerateAll(ctx context.Context, oldRepo, newRepo diffcore.Repository, files []diffcore.DiffFile) ([]*diffcore.FileChunks, error) {
	out := make([]*diffcore.FileChunks, len(files))
	eg, ctx := errgroup.WithContext(ctx)
	for i, f := range files {
		eg.Go(func() error {
			if f.IsBinary {
				out[i] = g.Generate(f, nil, nil)
				return nil
			}
			oldLines, err := fetchLines(ctx, oldRepo, f.SourcePath, f.SourceRevision)
			if err != nil {
				return fmt.Errorf("resolving %s@%s: %w", f.SourcePath, f.SourceRevision, err)
			}
			newLines, err := fetchLines(ctx, newRepo, f.DestPath, f.DestRevision)
			if err != nil {
				return fmt.Errorf("resolving %s@%s: %w", f.DestPath, f.DestRevision, err)
			}
			out[i] = g.Generate(f, oldLines, newLines)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// fetchLines loads one side of a file pair. A file that did not exist before
// the change has no old side.
func fetchLines(ctx context.Context, repo diffcore.Repository, path, revision string) ([]string, error) {
	if revision == diffcore.PreCreation {
		return nil, nil
	}
	data, err := repo.Get(ctx, path, revision)
	if err != nil {
		return nil, err
	}
	return SplitContent(data), nil
}

// SplitContent splits file bytes into lines without terminators. A trailing
// newline does not produce a final empty line.
func SplitContent(data []byte) []string {
	if len(data) == 0 {
		return nil
	}
	s := strings.TrimSuffix(string(data), "\n")
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
