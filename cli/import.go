package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/billtext/ledger"
	"github.com/robinvdvleuten/billtext/loader"
	"github.com/robinvdvleuten/billtext/store"
)

// ImportCmd commits bill files to a store. The import is all-or-nothing:
// a single error diagnostic in any file rejects every file.
type ImportCmd struct {
	Files   []string `help:"Bill files or directories to import." arg:"" type:"path"`
	Store   string   `help:"Store snapshot file." env:"BILLTEXT_STORE" default:"billtext-store.json" type:"path"`
	Replace bool     `help:"Replace periods that are already stored."`
	Yes     bool     `help:"Do not ask for confirmation." short:"y"`
}

func (cmd *ImportCmd) Run(ctx *kong.Context, globals *Globals) error {
	s, err := globals.start(context.Background(), ctx, "import")
	if err != nil {
		return err
	}
	defer s.finish()

	files, err := loadPaths(s, cmd.Files)
	if err != nil {
		return err
	}

	exitCode := 0
	results := make([]*ledger.Result, 0, len(files))
	bills := 0
	for _, f := range files {
		if code := reportFile(ctx.Stderr, f, f.Err, f.Source); code > exitCode {
			exitCode = code
		}
		if f.Err == nil {
			results = append(results, f.Result)
			bills += len(f.Result.Documents)
		}
	}
	if exitCode != 0 {
		printError(ctx.Stderr, "import rejected, nothing was written")
		return NewCommandError(exitCode)
	}
	if bills == 0 {
		printError(ctx.Stderr, "no bills found")
		return NewCommandError(ExitRejected)
	}

	st, err := store.Open(cmd.Store)
	if err != nil {
		return err
	}

	if !cmd.Yes {
		confirmed, err := promptYesNo(fmt.Sprintf("Import %d bill(s) from %d file(s) into %s?", bills, len(files), cmd.Store))
		if err != nil {
			return err
		}
		if !confirmed {
			printError(ctx.Stderr, "import cancelled (use --yes to skip confirmation)")
			return NewCommandError(ExitRejected)
		}
	}

	var opts []store.ImportOption
	if cmd.Replace {
		opts = append(opts, store.WithReplace())
	}

	batch, err := store.Import(s.ctx, st, results, opts...)
	if err != nil {
		printError(ctx.Stderr, err.Error())
		return NewCommandError(ExitRejected)
	}
	if err := st.Save(); err != nil {
		return err
	}

	printSuccess(ctx.Stdout, fmt.Sprintf("Imported %d bill(s) into %s (batch %s)", len(batch.Bills), pathStyle.Render(cmd.Store), batch.ID))
	return nil
}

// loadPaths loads files and directories in the order given. Per-file
// failures are kept on the returned files.
func loadPaths(s *session, paths []string) ([]*loader.File, error) {
	var files []*loader.File
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}

		if info.IsDir() {
			loaded, err := s.loader.LoadDir(s.ctx, path)
			if err != nil {
				return nil, err
			}
			files = append(files, loaded...)
			continue
		}

		f, err := s.loader.Load(s.ctx, path)
		if err != nil {
			f = &loader.File{Filename: path, Err: err}
		}
		files = append(files, f)
	}
	return files, nil
}
