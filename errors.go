package diffcore

import (
	"errors"
	"fmt"
)

// ErrUnsupportedFormat is returned when the input carries no recognizable
// diff dialect markers at all. It signals "not a diff" as opposed to a
// malformed diff, which is reported with *ParseError.
var ErrUnsupportedFormat = errors.New("diffcore: unsupported diff format")

// ParseError reports malformed patch structure, such as a hunk header with
// no preceding file declaration or a truncated patch.
type ParseError struct {
	// LineNum is the 0-based line number where the problem was detected.
	LineNum int
	Msg     string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("diffcore: %s (line %d)", e.Msg, e.LineNum)
}
