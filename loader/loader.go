// Package loader reads bill files from disk and runs them through the ledger
// pipeline. It is the only part of the engine that touches the filesystem.
//
// Example usage:
//
//	cfg, _ := config.Load("billtext.json")
//	ldr := loader.New(cfg.Rules(), loader.WithProcessOptions(cfg.ProcessOptions()...))
//
//	file, err := ldr.Load(ctx, "2025/01.txt")
//	files, err := ldr.LoadDir(ctx, "2025")
package loader

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/robinvdvleuten/billtext/ledger"
	"github.com/robinvdvleuten/billtext/logger"
	"github.com/robinvdvleuten/billtext/telemetry"
)

// DefaultExtensions are the file extensions LoadDir picks up.
var DefaultExtensions = []string{".txt", ".bill"}

// Loader loads bill files against one set of category rules.
//
// Configure the loader using functional options passed to New:
//
//	loader := New(rules, WithExtensions(".bills"))
type Loader struct {
	rules          *ledger.Rules
	extensions     []string
	processOptions []ledger.Option
}

// Option configures a Loader.
type Option func(*Loader)

// WithExtensions replaces the extensions LoadDir accepts. Extensions are
// matched case-insensitively and include the dot.
func WithExtensions(exts ...string) Option {
	return func(l *Loader) {
		l.extensions = exts
	}
}

// WithProcessOptions passes options to every ledger.Process call.
func WithProcessOptions(opts ...ledger.Option) Option {
	return func(l *Loader) {
		l.processOptions = append(l.processOptions, opts...)
	}
}

// New creates a Loader.
func New(rules *ledger.Rules, opts ...Option) *Loader {
	l := &Loader{
		rules:      rules,
		extensions: DefaultExtensions,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// File is a loaded bill. Err holds a hard failure for the file, in which
// case Result is nil.
type File struct {
	Filename string
	Source   []byte
	Result   *ledger.Result
	Err      error
}

// Load reads and processes one bill file. Read errors and hard failures are
// returned as errors; structural problems are in the result's diagnostics.
func (l *Loader) Load(ctx context.Context, filename string) (*File, error) {
	timer := telemetry.StartTimer(ctx, "loader.read "+filepath.Base(filename))
	data, err := os.ReadFile(filename)
	timer.End()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}

	return l.LoadBytes(ctx, filename, data)
}

// LoadBytes processes an in-memory bill, such as stdin or an editor buffer.
func (l *Loader) LoadBytes(ctx context.Context, filename string, data []byte) (*File, error) {
	opts := append([]ledger.Option{ledger.WithFilename(filename)}, l.processOptions...)

	result, err := ledger.Process(ctx, l.rules, data, opts...)
	if err != nil {
		return nil, err
	}

	log := logger.FromContext(ctx)
	log.Debug().
		Str("file", filename).
		Int("documents", len(result.Documents)).
		Int("diagnostics", len(result.Diagnostics)).
		Msg("loaded bill")

	return &File{Filename: filename, Source: data, Result: result}, nil
}

// LoadDir loads every bill file below dir, in lexical path order. A file that
// fails hard does not stop the walk; its error is kept on the File.
func (l *Loader) LoadDir(ctx context.Context, dir string) ([]*File, error) {
	paths, err := l.Discover(dir)
	if err != nil {
		return nil, err
	}

	timer := telemetry.StartTimer(ctx, fmt.Sprintf("loader.dir (%d files)", len(paths)))
	defer timer.End()

	files := make([]*File, 0, len(paths))
	for _, path := range paths {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		file, err := l.Load(ctx, path)
		if err != nil {
			log := logger.FromContext(ctx)
			log.Warn().Err(err).Str("file", path).Msg("bill failed to load")
			file = &File{Filename: path, Err: err}
		}
		files = append(files, file)
	}

	return files, nil
}

// Discover lists the bill files below dir without loading them. Hidden
// files and directories are skipped.
func (l *Loader) Discover(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() && l.Accepts(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}

	sort.Strings(paths)
	return paths, nil
}

// Accepts reports whether path has one of the loader's extensions.
func (l *Loader) Accepts(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range l.extensions {
		if strings.ToLower(e) == ext {
			return true
		}
	}
	return false
}
