// Package cli implements the billtext command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/robinvdvleuten/billtext/loader"
)

var (
	successSymbol = "✓"
	errorSymbol   = "✗"
	warningSymbol = "!"
	infoSymbol    = "→"

	successStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#00D787", Dark: "#00D787"})
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#FF5F87", Dark: "#FF5F87"})
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#D7AF00", Dark: "#FFD75F"})
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#5FAFFF", Dark: "#5FAFFF"})
	pathStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#00D7D7", Dark: "#00D7D7"})
)

func printSuccess(w io.Writer, message string) {
	_, _ = fmt.Fprintf(w, "%s %s\n",
		successStyle.Render(successSymbol),
		message,
	)
}

func printError(w io.Writer, message string) {
	_, _ = fmt.Fprintf(w, "%s %s\n",
		errorStyle.Render(errorSymbol),
		errorStyle.Render(message),
	)
}

func printWarning(w io.Writer, message string) {
	_, _ = fmt.Fprintf(w, "%s %s\n",
		warningStyle.Render(warningSymbol),
		message,
	)
}

func printInfof(w io.Writer, format string, args ...interface{}) {
	formatted := fmt.Sprintf(format, args...)
	_, _ = fmt.Fprintf(w, "%s %s\n",
		infoStyle.Render(infoSymbol),
		formatted,
	)
}

// promptYesNo asks a yes/no question. It returns false without asking when
// stdin is not a terminal.
func promptYesNo(question string) (bool, error) {
	if !isTerminal() {
		return false, nil
	}

	var confirm bool

	form := huh.NewConfirm().
		Title(question).
		WithButtonAlignment(lipgloss.Left).
		Value(&confirm)

	if err := form.Run(); err != nil {
		return false, fmt.Errorf("failed to read response: %w", err)
	}

	return confirm, nil
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

const stdinName = "<stdin>"

// FileOrStdin accepts either a file path or "-" for stdin.
// For stdin: Filename="<stdin>", Contents populated.
// For files: Filename set, Contents nil until Read.
type FileOrStdin struct {
	Filename string
	Contents []byte
}

// Decode implements kong.MapperValue.
func (f *FileOrStdin) Decode(ctx *kong.DecodeContext) error {
	var filename string
	if err := ctx.Scan.PopValueInto("filename", &filename); err != nil {
		return err
	}

	if filename == "-" || filename == "" {
		return f.readStdin()
	}

	if _, err := os.Stat(filename); err != nil {
		return err
	}
	f.Filename = filename
	f.Contents = nil

	return nil
}

func (f *FileOrStdin) readStdin() error {
	contents, err := io.ReadAll(os.Stdin)
	if err != nil {
		return fmt.Errorf("failed to read from stdin: %w", err)
	}
	f.Filename = stdinName
	f.Contents = contents
	return nil
}

// IsStdin reports whether the input comes from stdin.
func (f *FileOrStdin) IsStdin() bool {
	return f.Filename == "" || f.Filename == stdinName
}

// Read returns the source, reading stdin when no file was given.
func (f *FileOrStdin) Read() ([]byte, error) {
	if f.Filename == "" {
		if err := f.readStdin(); err != nil {
			return nil, err
		}
	}
	if f.Contents != nil {
		return f.Contents, nil
	}
	contents, err := os.ReadFile(f.Filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", f.Filename, err)
	}
	f.Contents = contents
	return contents, nil
}

// DisplayName is the name used in diagnostics: the path as given, or
// "<stdin>".
func (f *FileOrStdin) DisplayName() string {
	if f.IsStdin() {
		return stdinName
	}
	return filepath.Clean(f.Filename)
}

// Load reads the source and runs it through the loader.
func (f *FileOrStdin) Load(ctx context.Context, ldr *loader.Loader) (*loader.File, error) {
	source, err := f.Read()
	if err != nil {
		return nil, err
	}
	return ldr.LoadBytes(ctx, f.DisplayName(), source)
}
