package cli

import (
	"context"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/billtext/lsp"
)

// LspCmd runs the language server. Stdout carries the protocol, so logs and
// telemetry go to stderr.
type LspCmd struct{}

func (cmd *LspCmd) Run(ctx *kong.Context, globals *Globals) error {
	s, err := globals.start(context.Background(), ctx, "lsp")
	if err != nil {
		return err
	}
	defer s.finish()

	version, _ := buildVersion()
	return lsp.New(s.ctx, s.loader, version).RunStdio()
}
