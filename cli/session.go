package cli

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/billtext/config"
	"github.com/robinvdvleuten/billtext/loader"
	"github.com/robinvdvleuten/billtext/logger"
	"github.com/robinvdvleuten/billtext/output"
	"github.com/robinvdvleuten/billtext/telemetry"
)

// session is the per-command runtime built from the global flags: the
// configuration, a loader for it, and a context carrying logger, config and
// telemetry.
type session struct {
	ctx    context.Context
	config *config.Config
	loader *loader.Loader
	stderr io.Writer

	collector telemetry.Collector
	root      telemetry.Timer
	once      sync.Once
}

func (g *Globals) start(ctx context.Context, kctx *kong.Context, name string) (*session, error) {
	level, err := logger.ParseLevel(g.LogLevel)
	if err != nil {
		return nil, err
	}

	cfg, err := g.config()
	if err != nil {
		return nil, err
	}

	ctx = logger.WithContext(ctx, logger.New(kctx.Stderr, level))
	ctx = cfg.WithContext(ctx)

	s := &session{config: cfg, stderr: kctx.Stderr}

	if g.Telemetry {
		s.collector = telemetry.NewTimingCollector()
		ctx = telemetry.WithCollector(ctx, s.collector)

		s.root = s.collector.Start(name)
		ctx = telemetry.WithRootTimer(ctx, s.root)
	}

	s.ctx = ctx
	s.loader = loader.New(cfg.Rules(), loader.WithProcessOptions(cfg.ProcessOptions()...))

	return s, nil
}

func (g *Globals) config() (*config.Config, error) {
	return config.LoadOrDefault(g.Config)
}

// finish prints the telemetry report once, if enabled.
func (s *session) finish() {
	s.once.Do(func() {
		if s.collector == nil {
			return
		}
		s.root.End()
		_, _ = fmt.Fprintln(s.stderr)
		s.collector.Report(s.stderr, output.NewStyles(s.stderr))
	})
}
