// Package diffcore provides the diff engine for a code review system:
// parsing raw patch text into per-file change records, computing line-level
// edit scripts between file revisions, detecting block moves, filtering
// interdiff noise, and producing renderable chunk sequences with intraline
// and indentation highlighting.
package diffcore

// PreCreation is the sentinel revision for a file that does not exist yet
// in the repository, such as the source side of a newly added file.
const PreCreation = "PRE-CREATION"

// Tag classifies an opcode or chunk.
type Tag string

// Opcode tags.
const (
	TagEqual         Tag = "equal"
	TagInsert        Tag = "insert"
	TagDelete        Tag = "delete"
	TagReplace       Tag = "replace"
	TagFilteredEqual Tag = "filtered-equal"
)

// Opcode describes how one region of the old sequence maps to the new
// sequence. I1:I2 is a half-open line-index range into the old sequence,
// J1:J2 into the new one. A valid opcode list tiles both sequences
// contiguously: each opcode starts where the previous one ended, the first
// starts at 0 and the last ends at the sequence lengths.
type Opcode struct {
	Tag    Tag
	I1, I2 int
	J1, J2 int
}

// DiffFile is one file entry parsed from a patch.
type DiffFile struct {
	SourcePath     string
	DestPath       string
	SourceRevision string // revision identifier, or PreCreation
	DestRevision   string
	IsBinary       bool
	IsRename       bool

	// Start and End delimit the file's byte range in the original patch
	// buffer; Data is the corresponding subslice.
	Start int
	End   int
	Data  []byte

	// RawInsertCount and RawDeleteCount tally the +/- lines inside the
	// file's recognized hunks. Preamble and metadata lines never count.
	RawInsertCount int
	RawDeleteCount int
}

// LineCounts aggregates per-file line statistics. The raw counts come from
// the parser; the remaining fields are derived from the opcode stream by the
// chunk layer and are zero until computed.
type LineCounts struct {
	RawInsertCount int
	RawDeleteCount int
	InsertCount    int
	DeleteCount    int
	ReplaceCount   int
	EqualCount     int
	TotalLineCount int
}

// Moves maps relocated lines between the two revisions. Both maps use
// 1-based line numbers: To maps an old line to the new line it moved to,
// From maps a new line back to the old line it came from.
type Moves struct {
	To   map[int]int
	From map[int]int
}

// IndentChange describes how a line's leading whitespace changed relative to
// its paired line: whether it grew, and by how many raw whitespace
// characters. A nil *IndentChange means no consistent indentation
// relationship exists between the two lines.
type IndentChange struct {
	IsIndent bool
	RawChars int
}

// Region is a half-open character range inside a single line, used for
// intraline change highlighting.
type Region struct {
	Start int
	End   int
}

// ChunkLine is one renderable line pair within a chunk. Line numbers are
// 1-based; a zero line number means the line has no counterpart on that side.
type ChunkLine struct {
	OldLineNum int
	NewLineNum int

	// Raw line text without trailing newlines.
	OldText string
	NewText string

	// HTML-safe markup for the view layer, with syntax spans when a
	// highlighter is configured and indentation markers applied.
	OldMarkup string
	NewMarkup string

	// Intraline changed-character regions, nil outside replace chunks.
	OldRegions []Region
	NewRegions []Region

	// MovedFrom is the old line this new line was relocated from;
	// MovedTo is the new line this old line was relocated to. Zero when
	// the line is not part of a detected move.
	MovedFrom int
	MovedTo   int

	// Indent is set when the pair differs only by leading whitespace.
	Indent *IndentChange
}

// Chunk is one renderable opcode with its resolved lines.
type Chunk struct {
	Tag      Tag
	OldStart int // half-open 0-based line range into the old sequence
	OldEnd   int
	NewStart int
	NewEnd   int
	Lines    []ChunkLine
}

// FileChunks is the complete render-ready comparison for one file pair.
type FileChunks struct {
	File   DiffFile
	Chunks []Chunk
	Counts LineCounts
	Moves  Moves
}
