package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/billtext/errors"
	"github.com/robinvdvleuten/billtext/loader"
)

type CheckCmd struct {
	File FileOrStdin `help:"Bill input filename (use '-' for stdin, or omit for stdin)." arg:"" optional:""`
	JSON bool        `help:"Print diagnostics as JSON." name:"json"`
}

func (cmd *CheckCmd) Run(ctx *kong.Context, globals *Globals) error {
	s, err := globals.start(context.Background(), ctx, fmt.Sprintf("check %s", filepath.Base(cmd.File.DisplayName())))
	if err != nil {
		return err
	}
	defer s.finish()

	source, err := cmd.File.Read()
	if err != nil {
		return err
	}

	file, err := s.loader.LoadBytes(s.ctx, cmd.File.DisplayName(), source)

	if cmd.JSON {
		return cmd.printJSON(ctx, file, err)
	}

	if code := reportFile(ctx.Stderr, file, err, source); code != 0 {
		return NewCommandError(code)
	}

	printSuccess(ctx.Stdout, "Check passed")

	return nil
}

func (cmd *CheckCmd) printJSON(ctx *kong.Context, file *loader.File, err error) error {
	jf := errors.NewJSONFormatter()

	if err != nil {
		_, _ = fmt.Fprintln(ctx.Stdout, jf.FormatAll([]error{err}))
		return NewCommandError(ExitFailure)
	}

	_, _ = fmt.Fprintln(ctx.Stdout, jf.FormatAll(errors.Diagnostics(file.Result.Diagnostics)))
	if file.Result.HasErrors() {
		return NewCommandError(ExitRejected)
	}
	return nil
}
