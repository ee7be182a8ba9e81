// Package diffparser parses multi-file patch text into diffcore.DiffFile
// records. It auto-detects the supported dialects (git diffs, plain unified
// diffs, and historical SCM preambles such as Subversion "Index:" banners and
// Mercurial "# Node ID" headers) with a small per-file state machine:
// seeking a file header, reading file preamble, reading hunk content.
package diffparser

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/pmichalik/diffcore"
)

// Compile-time interface verification.
var _ diffcore.Parser = (*Parser)(nil)

var hunkHeaderRe = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)

// Parser parses raw patch bytes. The zero value is ready to use.
type Parser struct{}

// NewParser creates a new Parser.
func NewParser() *Parser {
	return &Parser{}
}

// bufLine is one line of the patch with its byte range in the original
// buffer. The text excludes the line terminator.
type bufLine struct {
	text  string
	start int
	end   int
}

// fileBuilder accumulates one DiffFile while its lines are consumed.
type fileBuilder struct {
	f          diffcore.DiffFile
	hasPaths   bool
	hasContent bool
}

// Parse implements diffcore.Parser.
func (p *Parser) Parse(r io.Reader) ([]diffcore.DiffFile, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading diff: %w", err)
	}
	lines := splitLines(data)

	var files []diffcore.DiffFile
	var cur *fileBuilder
	sawMarker := false // any recognized dialect marker anywhere
	leftover := false  // non-blank text outside any recognized structure

	// flush closes the current file at the given byte boundary, dropping
	// empty changes.
	flush := func(end int) {
		if cur == nil {
			return
		}
		if cur.hasContent {
			cur.f.End = end
			cur.f.Data = data[cur.f.Start:cur.f.End]
			files = append(files, cur.f)
		}
		cur = nil
	}

	i := 0
	for i < len(lines) {
		ln := lines[i]
		text := ln.text

		switch {
		case strings.HasPrefix(text, "diff --git "):
			sawMarker = true
			flush(ln.start)
			cur = &fileBuilder{f: diffcore.DiffFile{Start: ln.start}}
			cur.setGitHeaderPaths(text)
			i++

		case strings.HasPrefix(text, "Index: "):
			sawMarker = true
			flush(ln.start)
			cur = &fileBuilder{f: diffcore.DiffFile{Start: ln.start}}
			path := strings.TrimSpace(strings.TrimPrefix(text, "Index: "))
			cur.f.SourcePath = path
			cur.f.DestPath = path
			if path != "" {
				cur.hasPaths = true
			}
			i++

		case strings.HasPrefix(text, "# Node ID ") || strings.HasPrefix(text, "# Parent "):
			// Mercurial changeset preamble.
			sawMarker = true
			i++

		case isFromFilePair(lines, i):
			sawMarker = true
			if cur == nil {
				cur = &fileBuilder{f: diffcore.DiffFile{Start: ln.start}}
			}
			cur.setPaths(lines[i].text, lines[i+1].text)
			i += 2

		case strings.HasPrefix(text, "@@ "):
			sawMarker = true
			if !hunkHeaderRe.MatchString(text) {
				return nil, &diffcore.ParseError{LineNum: i, Msg: "malformed hunk header"}
			}
			if cur == nil || !cur.hasPaths {
				return nil, &diffcore.ParseError{LineNum: i, Msg: "hunk header with no preceding file declaration"}
			}
			i = cur.consumeHunk(lines, i+1)

		case cur != nil && strings.HasPrefix(text, "index "):
			cur.setIndexRevisions(text)
			i++

		case cur != nil && (strings.HasPrefix(text, "rename from ") ||
			strings.HasPrefix(text, "rename to ") ||
			strings.HasPrefix(text, "copy from ") ||
			strings.HasPrefix(text, "copy to ")):
			cur.f.IsRename = true
			cur.hasContent = true
			i++

		case cur != nil && (strings.HasPrefix(text, "Binary files ") || text == "GIT binary patch"):
			cur.f.IsBinary = true
			cur.hasContent = true
			i++

		default:
			if cur == nil && strings.TrimSpace(text) != "" {
				leftover = true
			}
			// Inside a file this is preamble or trailing metadata;
			// it never contributes to line counts.
			i++
		}
	}
	flush(len(data))

	if len(files) == 0 {
		if !sawMarker {
			return nil, diffcore.ErrUnsupportedFormat
		}
		if leftover {
			return nil, &diffcore.ParseError{LineNum: 0, Msg: "this does not appear to be a valid diff"}
		}
	}
	return files, nil
}

// consumeHunk reads hunk body lines starting at index i, tallying raw
// insert/delete counts. It returns the index of the first line past the
// hunk. Hunk headers in the wild frequently carry stale counts, so the body
// is delimited by line prefixes rather than header arithmetic.
func (b *fileBuilder) consumeHunk(lines []bufLine, i int) int {
	for i < len(lines) {
		text := lines[i].text
		if strings.HasPrefix(text, "@@ ") ||
			strings.HasPrefix(text, "diff --git ") ||
			strings.HasPrefix(text, "Index: ") ||
			isFromFilePair(lines, i) {
			return i
		}
		switch {
		case strings.HasPrefix(text, "+"):
			b.f.RawInsertCount++
			b.hasContent = true
		case strings.HasPrefix(text, "-"):
			b.f.RawDeleteCount++
			b.hasContent = true
		case text == "" || strings.HasPrefix(text, " "):
			// Context line.
		case strings.HasPrefix(text, `\`):
			// "\ No newline at end of file" marker.
		default:
			// Anything else closes the hunk; the outer loop decides
			// what it is.
			return i
		}
		i++
	}
	return i
}

// isFromFilePair reports whether lines[i] and lines[i+1] form a
// "--- "/"+++ " file declaration pair. Requiring the pair disambiguates a
// file header from a deleted content line that happens to start with dashes.
func isFromFilePair(lines []bufLine, i int) bool {
	return strings.HasPrefix(lines[i].text, "--- ") &&
		i+1 < len(lines) &&
		strings.HasPrefix(lines[i+1].text, "+++ ")
}

// setGitHeaderPaths resolves provisional paths from a "diff --git a/x b/y"
// header. A later ---/+++ pair overrides them.
func (b *fileBuilder) setGitHeaderPaths(text string) {
	rest := strings.TrimPrefix(text, "diff --git ")
	idx := strings.LastIndex(rest, " b/")
	if idx < 0 {
		return
	}
	b.f.SourcePath = strings.TrimPrefix(rest[:idx], "a/")
	b.f.DestPath = rest[idx+len(" b/"):]
	b.hasPaths = b.f.SourcePath != "" && b.f.DestPath != ""
}

// setIndexRevisions pulls revisions out of a git "index oldsha..newsha mode"
// line. An all-zero source SHA marks a file that does not exist yet.
func (b *fileBuilder) setIndexRevisions(text string) {
	fields := strings.Fields(text)
	if len(fields) < 2 {
		return
	}
	shas := strings.SplitN(fields[1], "..", 2)
	if len(shas) != 2 {
		return
	}
	if isZeroSHA(shas[0]) {
		b.f.SourceRevision = diffcore.PreCreation
	} else {
		b.f.SourceRevision = shas[0]
	}
	b.f.DestRevision = shas[1]
}

func isZeroSHA(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c != '0' {
			return false
		}
	}
	return true
}

// setPaths resolves the file's paths and revisions from a ---/+++ pair.
func (b *fileBuilder) setPaths(fromLine, toLine string) {
	srcPath, srcRev := splitFileField(strings.TrimPrefix(fromLine, "--- "))
	dstPath, dstRev := splitFileField(strings.TrimPrefix(toLine, "+++ "))

	srcPath = stripPathPrefix(srcPath, "a/")
	dstPath = stripPathPrefix(dstPath, "b/")

	if srcPath == "/dev/null" {
		srcPath = dstPath
		srcRev = diffcore.PreCreation
	}
	if dstPath == "/dev/null" {
		dstPath = srcPath
	}

	b.f.SourcePath = srcPath
	b.f.DestPath = dstPath
	if srcRev != "" && srcRev != b.f.SourceRevision {
		b.f.SourceRevision = srcRev
	}
	if dstRev != "" {
		b.f.DestRevision = dstRev
	}
	b.hasPaths = srcPath != "" && dstPath != ""
}

var revisionSepRe = regexp.MustCompile(`\s{2,}`)

// splitFileField splits "path<TAB>revision" (or the two-or-more-space
// variant some tools emit) into its parts.
func splitFileField(s string) (path, revision string) {
	if idx := strings.IndexByte(s, '\t'); idx >= 0 {
		return strings.TrimSpace(s[:idx]), strings.TrimSpace(s[idx+1:])
	}
	if loc := revisionSepRe.FindStringIndex(s); loc != nil {
		return strings.TrimSpace(s[:loc[0]]), strings.TrimSpace(s[loc[1]:])
	}
	return strings.TrimSpace(s), ""
}

func stripPathPrefix(path, prefix string) string {
	if path != "/dev/null" {
		return strings.TrimPrefix(path, prefix)
	}
	return path
}

// splitLines splits the buffer into lines with byte offsets. Text excludes
// the \n (and a preceding \r); offsets include it.
func splitLines(data []byte) []bufLine {
	var out []bufLine
	start := 0
	for i := range data {
		if data[i] == '\n' {
			out = append(out, bufLine{
				text:  strings.TrimSuffix(string(data[start:i]), "\r"),
				start: start,
				end:   i + 1,
			})
			start = i + 1
		}
	}
	if start < len(data) {
		out = append(out, bufLine{
			text:  strings.TrimSuffix(string(data[start:]), "\r"),
			start: start,
			end:   len(data),
		})
	}
	return out
}
