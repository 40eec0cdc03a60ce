package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/billtext/report"
)

type ReportCmd struct {
	File   FileOrStdin `help:"Bill input filename (use '-' for stdin, or omit for stdin)." arg:"" optional:""`
	Format string      `help:"Report format (${formats})." default:"markdown" short:"f"`
	Output string      `help:"Write the report to this file instead of stdout." short:"o" type:"path"`
}

func (cmd *ReportCmd) Run(ctx *kong.Context, globals *Globals) error {
	renderer, err := report.Lookup(cmd.Format)
	if err != nil {
		return err
	}

	s, err := globals.start(context.Background(), ctx, "report "+cmd.Format)
	if err != nil {
		return err
	}
	defer s.finish()

	source, err := cmd.File.Read()
	if err != nil {
		return err
	}

	file, err := s.loader.LoadBytes(s.ctx, cmd.File.DisplayName(), source)
	if code := reportFile(ctx.Stderr, file, err, source); code != 0 {
		return NewCommandError(code)
	}

	var buf bytes.Buffer
	if err := renderer.Render(&buf, file.Result.Documents); err != nil {
		return fmt.Errorf("failed to render %s report: %w", renderer.Name(), err)
	}

	if cmd.Output == "" {
		_, _ = ctx.Stdout.Write(buf.Bytes())
		return nil
	}

	if err := os.WriteFile(cmd.Output, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	printSuccess(ctx.Stdout, fmt.Sprintf("Wrote %s report to %s", renderer.Name(), pathStyle.Render(cmd.Output)))
	return nil
}
