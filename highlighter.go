package diffcore

// Highlighter produces HTML-safe syntax markup for source lines.
type Highlighter interface {
	// Highlight returns one markup fragment per input line for the given
	// language. It returns nil if the language is not supported, in which
	// case callers fall back to plain escaping.
	Highlight(language string, lines []string) []string
}
