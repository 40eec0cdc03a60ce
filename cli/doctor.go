package cli

import (
	"fmt"

	"github.com/alecthomas/kong"
	"github.com/alecthomas/repr"

	"github.com/robinvdvleuten/billtext/parser"
)

// DoctorCmd provides doctor utilities for debugging bill files.
type DoctorCmd struct {
	Classify ClassifyCmd `cmd:"" help:"Show how each line of a bill file is classified."`
}

// ClassifyCmd shows the line kind of every line.
type ClassifyCmd struct {
	File FileOrStdin `help:"Bill input filename (use '-' for stdin, or omit for stdin)." arg:"" optional:""`
	Dump bool        `help:"Dump the classified values as Go syntax."`
}

// Run executes the classify command.
func (cmd *ClassifyCmd) Run(ctx *kong.Context, globals *Globals) error {
	cfg, err := globals.config()
	if err != nil {
		return err
	}

	content, err := cmd.File.Read()
	if err != nil {
		return err
	}

	lines, err := parser.SplitLines(content)
	if err != nil {
		return fmt.Errorf("failed to split lines: %w", err)
	}

	classifier := parser.NewClassifier(parser.WithMetadataPrefixes(cfg.MetadataPrefixes...))
	classified := classifier.ClassifyAll(lines)

	if cmd.Dump {
		repr.New(ctx.Stdout).Println(classified)
		return nil
	}

	// Format: line KIND detail
	for _, c := range classified {
		_, _ = fmt.Fprintf(ctx.Stdout, "%4d  %-12s %s\n", c.Line.Number, parser.KindName(c.Kind), describe(c.Kind))
	}

	return nil
}

func describe(kind parser.LineKind) string {
	switch k := kind.(type) {
	case parser.Date:
		return k.Value
	case parser.Remark:
		return fmt.Sprintf("%q", k.Text)
	case parser.Metadata:
		return fmt.Sprintf("%s=%q", k.Key, k.Value)
	case parser.ParentTitle:
		return k.Name
	case parser.ChildTitle:
		return k.Name
	case parser.ContentLine:
		detail := fmt.Sprintf("expr=%q description=%q", k.Expr, k.Description)
		if k.Comment != "" {
			detail += fmt.Sprintf(" comment=%q", k.Comment)
		}
		return detail
	case parser.Unrecognized:
		return fmt.Sprintf("%q", k.Text)
	}
	return ""
}
