package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/billtext/ledger"
	"github.com/robinvdvleuten/billtext/output"
)

// ShowCmd prints the processed bill. Diagnostics go to stderr; the output is
// produced even when the bill has errors.
type ShowCmd struct {
	File    FileOrStdin `help:"Bill input filename (use '-' for stdin, or omit for stdin)." arg:"" optional:""`
	Summary bool        `help:"Print per-category totals instead of JSON." short:"s"`
}

func (cmd *ShowCmd) Run(ctx *kong.Context, globals *Globals) error {
	s, err := globals.start(context.Background(), ctx, "show")
	if err != nil {
		return err
	}
	defer s.finish()

	source, err := cmd.File.Read()
	if err != nil {
		return err
	}

	file, err := s.loader.LoadBytes(s.ctx, cmd.File.DisplayName(), source)
	if err != nil {
		reportFile(ctx.Stderr, nil, err, source)
		return NewCommandError(ExitFailure)
	}
	reportFile(ctx.Stderr, file, nil, source)

	if cmd.Summary {
		printSummary(ctx, file.Result)
		return nil
	}

	data, err := json.MarshalIndent(ledger.ProjectAll(file.Result.Documents), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode bill: %w", err)
	}
	_, _ = fmt.Fprintln(ctx.Stdout, string(data))

	return nil
}

func printSummary(ctx *kong.Context, result *ledger.Result) {
	styles := output.NewStyles(ctx.Stdout)

	for i, doc := range result.Documents {
		if i > 0 {
			_, _ = fmt.Fprintln(ctx.Stdout)
		}
		date := doc.Date
		if date == "" {
			date = "(undated)"
		}
		_, _ = fmt.Fprintf(ctx.Stdout, "%s %s\n", styles.Keyword("date"), date)
		for _, p := range doc.Parents {
			_, _ = fmt.Fprintf(ctx.Stdout, "  %s %s\n", styles.Category(p.Title), styles.Amount(p.Subtotal))
			for _, c := range p.Children {
				_, _ = fmt.Fprintf(ctx.Stdout, "    %s %s\n", c.Title, styles.Amount(c.Subtotal))
			}
		}
		_, _ = fmt.Fprintf(ctx.Stdout, "  %s %s  %s %s  %s %s\n",
			styles.Dim("income"), styles.Amount(doc.TotalIncome),
			styles.Dim("expense"), styles.Amount(doc.TotalExpense),
			styles.Dim("balance"), styles.Amount(doc.Balance),
		)
	}
}
