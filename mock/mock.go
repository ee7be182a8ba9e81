// Package mock provides function-field test doubles for the root
// interfaces.
package mock

import (
	"context"
	"io"

	"github.com/pmichalik/diffcore"
)

// Compile-time interface verification.
var (
	_ diffcore.Parser      = (*Parser)(nil)
	_ diffcore.Differ      = (*Differ)(nil)
	_ diffcore.Repository  = (*Repository)(nil)
	_ diffcore.Highlighter = (*Highlighter)(nil)
	_ diffcore.Renderer    = (*Renderer)(nil)
)

// Parser is a mock implementation of diffcore.Parser.
type Parser struct {
	ParseFn func(r io.Reader) ([]diffcore.DiffFile, error)
}

func (m *Parser) Parse(r io.Reader) ([]diffcore.DiffFile, error) {
	return m.ParseFn(r)
}

// Differ is a mock implementation of diffcore.Differ.
type Differ struct {
	OpcodesFn func(a, b []string) []diffcore.Opcode
}

func (m *Differ) Opcodes(a, b []string) []diffcore.Opcode {
	return m.OpcodesFn(a, b)
}

// Repository is a mock implementation of diffcore.Repository.
type Repository struct {
	GetFn func(ctx context.Context, path, revision string) ([]byte, error)
}

func (m *Repository) Get(ctx context.Context, path, revision string) ([]byte, error) {
	return m.GetFn(ctx, path, revision)
}

// Highlighter is a mock implementation of diffcore.Highlighter.
type Highlighter struct {
	HighlightFn func(language string, lines []string) []string
}

func (m *Highlighter) Highlight(language string, lines []string) []string {
	return m.HighlightFn(language, lines)
}

// Renderer is a mock implementation of diffcore.Renderer.
type Renderer struct {
	RenderFn func(fc *diffcore.FileChunks) (string, error)
}

func (m *Renderer) Render(fc *diffcore.FileChunks) (string, error) {
	return m.RenderFn(fc)
}
