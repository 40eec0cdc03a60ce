package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/billtext/web"
)

type WebCmd struct {
	Dir    string `help:"Directory of bill files to serve." arg:"" type:"path"`
	Port   int    `help:"Port to listen on." default:"8080"`
	Create bool   `help:"Create the directory if it doesn't exist (no confirmation prompt)." short:"c"`
	Watch  bool   `help:"Reload when bill files change." default:"true" negatable:""`
}

func (cmd *WebCmd) Run(ctx *kong.Context, globals *Globals) error {
	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	s, err := globals.start(runCtx, ctx, "web")
	if err != nil {
		return err
	}
	defer s.finish()

	dir, err := filepath.Abs(cmd.Dir)
	if err != nil {
		return fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	if err := cmd.ensureDir(ctx, dir); err != nil {
		return err
	}

	version, commitSHA := buildVersion()
	server := web.NewWithVersion(cmd.Port, dir, s.loader, version, commitSHA)
	server.WatchEnabled = cmd.Watch

	printInfof(ctx.Stdout, "Starting server on %s:%d", server.Host, cmd.Port)
	printInfof(ctx.Stdout, "Serving bills: %s", pathStyle.Render(dir))

	return server.Start(s.ctx)
}

func (cmd *WebCmd) ensureDir(ctx *kong.Context, dir string) error {
	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return fmt.Errorf("not a directory: %s", dir)
		}
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("failed to access directory: %w", err)
	}

	shouldCreate := cmd.Create
	if !shouldCreate {
		confirmed, err := promptYesNo(fmt.Sprintf("Directory %q does not exist. Create it?", dir))
		if err != nil {
			return fmt.Errorf("failed to read confirmation: %w", err)
		}
		shouldCreate = confirmed
	}

	if !shouldCreate {
		return fmt.Errorf("directory does not exist: %s", dir)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	printInfof(ctx.Stdout, "Created bills directory: %s", pathStyle.Render(dir))
	return nil
}
