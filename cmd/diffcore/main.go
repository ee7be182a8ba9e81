// Command diffcore parses a patch, resolves the affected files against two
// directory trees, and prints the resulting chunk stream to the terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/pmichalik/diffcore"
	"github.com/pmichalik/diffcore/chroma"
	"github.com/pmichalik/diffcore/chunks"
	"github.com/pmichalik/diffcore/differ"
	"github.com/pmichalik/diffcore/diffparser"
	"github.com/pmichalik/diffcore/fs"
	"github.com/pmichalik/diffcore/lipgloss"
	"github.com/pmichalik/diffcore/opcodegen"
)

// App holds the wiring for one invocation. Zero fields get production
// defaults in Run, so tests can swap in readers, repositories, and mocks.
type App struct {
	// Input is the patch text. Path, when set, takes precedence and is
	// read from disk instead.
	Input io.Reader
	Path  string

	// OldDir and NewDir are the trees holding the pre- and post-change
	// file contents. OldRepo/NewRepo override them when set.
	OldDir  string
	NewDir  string
	OldRepo diffcore.Repository
	NewRepo diffcore.Repository

	Output    io.Writer
	Parser    diffcore.Parser
	Generator *chunks.Generator
	Renderer  diffcore.Renderer
}

// Run parses the patch, builds every file's chunks, and renders them to
// Output. The generated chunks are returned for callers that post-process
// them.
func (a *App) Run(ctx context.Context) ([]*diffcore.FileChunks, error) {
	a.applyDefaults()

	input := a.Input
	if a.Path != "" {
		f, err := os.Open(a.Path)
		if err != nil {
			return nil, fmt.Errorf("opening patch: %w", err)
		}
		defer f.Close()
		input = f
	}

	files, err := a.Parser.Parse(input)
	if err != nil {
		return nil, err
	}

	all, err := a.Generator.GenerateAll(ctx, a.OldRepo, a.NewRepo, files)
	if err != nil {
		return nil, err
	}

	for _, fc := range all {
		out, err := a.Renderer.Render(fc)
		if err != nil {
			return nil, fmt.Errorf("rendering %s: %w", fc.File.DestPath, err)
		}
		if _, err := io.WriteString(a.Output, out); err != nil {
			return nil, err
		}
	}
	return all, nil
}

func (a *App) applyDefaults() {
	if a.Input == nil {
		a.Input = os.Stdin
	}
	if a.Output == nil {
		a.Output = os.Stdout
	}
	if a.Parser == nil {
		a.Parser = diffparser.NewParser()
	}
	if a.Generator == nil {
		a.Generator = chunks.NewGenerator(differ.New(), chroma.NewHighlighter(), opcodegen.DefaultOptions())
	}
	if a.Renderer == nil {
		a.Renderer = lipgloss.NewRenderer(a.Output)
	}
	if a.OldRepo == nil {
		dir := a.OldDir
		if dir == "" {
			dir = "."
		}
		a.OldRepo = fs.New(dir)
	}
	if a.NewRepo == nil {
		dir := a.NewDir
		if dir == "" {
			dir = "."
		}
		a.NewRepo = fs.New(dir)
	}
}

func main() {
	oldDir := flag.String("old", ".", "directory tree with pre-change file contents")
	newDir := flag.String("new", ".", "directory tree with post-change file contents")
	flag.Parse()

	app := &App{
		OldDir: *oldDir,
		NewDir: *newDir,
		Path:   flag.Arg(0),
	}
	if _, err := app.Run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "diffcore:", err)
		os.Exit(1)
	}
}
