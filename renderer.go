package diffcore

// Renderer presents a generated chunk stream to the user.
type Renderer interface {
	// Render produces a display representation of one file comparison.
	Render(fc *FileChunks) (string, error)
}
