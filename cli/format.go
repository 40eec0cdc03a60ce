package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"

	"github.com/robinvdvleuten/billtext/formatter"
)

type FormatCmd struct {
	File                FileOrStdin `help:"Bill input filename (use '-' for stdin, or omit for stdin)." arg:"" optional:""`
	DescriptionColumn   int         `help:"Column where descriptions start (auto-calculated from content if 0)." default:"0"`
	CommentColumn       int         `help:"Column where // comments start (auto-calculated from content if 0)." default:"0"`
	PreserveExpressions bool        `help:"Keep amount expressions as written instead of their reduced values."`
	Diff                bool        `help:"Print a unified diff instead of the formatted bill." short:"d"`
	Write               bool        `help:"Write the result back to the file." short:"w"`
	Yes                 bool        `help:"Do not ask for confirmation before writing." short:"y"`
}

func (cmd *FormatCmd) Run(ctx *kong.Context, globals *Globals) error {
	if cmd.Write && cmd.File.IsStdin() {
		return fmt.Errorf("--write needs a file, not stdin")
	}

	s, err := globals.start(context.Background(), ctx, "format")
	if err != nil {
		return err
	}
	defer s.finish()

	source, err := cmd.File.Read()
	if err != nil {
		return err
	}

	file, err := s.loader.LoadBytes(s.ctx, cmd.File.DisplayName(), source)
	// Unrecognized and misplaced lines are not part of the tree, so a bill
	// with errors cannot be formatted without losing them.
	if code := reportFile(ctx.Stderr, file, err, source); code != 0 {
		return NewCommandError(code)
	}

	var opts []formatter.Option
	if cmd.DescriptionColumn > 0 {
		opts = append(opts, formatter.WithDescriptionColumn(cmd.DescriptionColumn))
	}
	if cmd.CommentColumn > 0 {
		opts = append(opts, formatter.WithCommentColumn(cmd.CommentColumn))
	}
	if cmd.PreserveExpressions {
		opts = append(opts, formatter.WithPreserveExpressions())
	}
	formatted := formatter.New(opts...).String(file.Result.Documents...)

	if cmd.Diff {
		_, _ = fmt.Fprint(ctx.Stdout, unifiedDiff(cmd.File.DisplayName(), string(source), formatted))
		return nil
	}

	if !cmd.Write {
		_, _ = fmt.Fprint(ctx.Stdout, formatted)
		return nil
	}

	if formatted == string(source) {
		printInfof(ctx.Stdout, "%s is already formatted", pathStyle.Render(cmd.File.Filename))
		return nil
	}

	if !cmd.Yes {
		confirmed, err := promptYesNo(fmt.Sprintf("Overwrite %s?", cmd.File.Filename))
		if err != nil {
			return err
		}
		if !confirmed {
			printError(ctx.Stderr, "not written (use --yes to skip confirmation)")
			return NewCommandError(ExitRejected)
		}
	}

	info, err := os.Stat(cmd.File.Filename)
	if err != nil {
		return err
	}
	if err := os.WriteFile(cmd.File.Filename, []byte(formatted), info.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to write %s: %w", cmd.File.Filename, err)
	}

	printSuccess(ctx.Stdout, fmt.Sprintf("Formatted %s", pathStyle.Render(cmd.File.Filename)))
	return nil
}

// unifiedDiff returns an empty string when before and after are equal.
func unifiedDiff(name, before, after string) string {
	edits := myers.ComputeEdits(span.URIFromPath(name), before, after)
	return fmt.Sprint(gotextdiff.ToUnified(name, name+" (formatted)", before, edits))
}
