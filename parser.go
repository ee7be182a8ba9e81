package diffcore

import "io"

// Parser parses raw patch content into per-file change records.
type Parser interface {
	// Parse reads a complete patch and returns its file entries in order.
	// Files whose hunks amount to no actual change are omitted. It returns
	// a *ParseError for malformed patch structure and ErrUnsupportedFormat
	// when the input carries no recognizable diff dialect markers at all.
	Parse(r io.Reader) ([]DiffFile, error)
}
