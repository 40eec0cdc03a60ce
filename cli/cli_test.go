package cli

import (
	"bytes"
	"encoding/json"
	stdErrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/alecthomas/kong"
)

const janBill = `date:202501
remark:January
MEAL
lunch
30 noodles
12*2 coffee // with Bob
INCOME
salary
3000 pay
`

const badBill = `date:202502
MEAL
drinks
5 cola
`

const brokenBill = `date:202503
MEAL
lunch
1..2 tea
`

type runResult struct {
	stdout string
	stderr string
	err    error
}

func (r runResult) exitCode() int {
	var cmdErr *CommandError
	if stdErrors.As(r.err, &cmdErr) {
		return cmdErr.ExitCode()
	}
	if r.err != nil {
		return -1
	}
	return 0
}

func run(t *testing.T, args ...string) runResult {
	t.Helper()

	var cmds Commands
	var stdout, stderr bytes.Buffer
	parser, err := kong.New(&cmds,
		Vars(),
		kong.Name("billtext"),
		kong.Writers(&stdout, &stderr),
		kong.Bind(&cmds.Globals),
		kong.Exit(func(int) { t.Fatalf("unexpected exit for %v", args) }),
	)
	assert.NoError(t, err)

	kctx, err := parser.Parse(args)
	if err != nil {
		return runResult{err: err}
	}
	err = kctx.Run()
	return runResult{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func writeBill(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestCheckCmd(t *testing.T) {
	dir := t.TempDir()

	t.Run("Passes", func(t *testing.T) {
		res := run(t, "check", writeBill(t, dir, "jan.txt", janBill))
		assert.NoError(t, res.err)
		assert.Contains(t, res.stdout, "Check passed")
	})

	t.Run("ErrorDiagnostics", func(t *testing.T) {
		path := writeBill(t, dir, "bad.txt", badBill)
		res := run(t, "check", path)
		assert.Equal(t, ExitRejected, res.exitCode())
		assert.Contains(t, res.stderr, `invalid sub-category "drinks" for parent "MEAL"`)
		assert.Contains(t, res.stderr, "> 3 | drinks")
		assert.Contains(t, res.stderr, "1 error(s), 0 warning(s)")
	})

	t.Run("HardFailure", func(t *testing.T) {
		res := run(t, "check", writeBill(t, dir, "broken.txt", brokenBill))
		assert.Equal(t, ExitFailure, res.exitCode())
		assert.Contains(t, res.stderr, `invalid number "1..2"`)
		assert.Contains(t, res.stderr, "bill could not be processed")
	})

	t.Run("WarningsOnly", func(t *testing.T) {
		res := run(t, "check", writeBill(t, dir, "warn.txt", "date:202501\nMEAL\nlunch\n"))
		assert.NoError(t, res.err)
		assert.Contains(t, res.stderr, "warning:")
		assert.Contains(t, res.stdout, "Check passed")
	})

	t.Run("JSON", func(t *testing.T) {
		res := run(t, "check", "--json", writeBill(t, dir, "bad-json.txt", badBill))
		assert.Equal(t, ExitRejected, res.exitCode())

		var diags []map[string]any
		assert.NoError(t, json.Unmarshal([]byte(res.stdout), &diags))
		assert.Equal(t, 1, len(diags))
		assert.Equal(t, "invalid-child", diags[0]["code"].(string))
	})

	t.Run("CustomConfig", func(t *testing.T) {
		cfg := writeBill(t, dir, "config.json", `{"categories": [{"parent_item": "MEAL", "sub_items": ["drinks"]}]}`)
		res := run(t, "--config", cfg, "check", filepath.Join(dir, "bad.txt"))
		assert.NoError(t, res.err)
	})

	t.Run("InvalidConfig", func(t *testing.T) {
		cfg := writeBill(t, dir, "broken.json", `{"categories": [{"parent_item": "meal", "sub_items": []}]}`)
		res := run(t, "--config", cfg, "check", filepath.Join(dir, "jan.txt"))
		assert.Error(t, res.err)
		assert.Contains(t, res.err.Error(), "broken.json")
	})

	t.Run("InvalidLogLevel", func(t *testing.T) {
		res := run(t, "--log-level", "loud", "check", filepath.Join(dir, "jan.txt"))
		assert.EqualError(t, res.err, `invalid log level "loud"`)
	})

	t.Run("Telemetry", func(t *testing.T) {
		res := run(t, "--telemetry", "check", filepath.Join(dir, "jan.txt"))
		assert.NoError(t, res.err)
		assert.Contains(t, res.stderr, "check jan.txt")
		assert.Contains(t, res.stderr, "ledger.validate")
	})
}

func TestShowCmd(t *testing.T) {
	dir := t.TempDir()
	path := writeBill(t, dir, "jan.txt", janBill)

	t.Run("JSON", func(t *testing.T) {
		res := run(t, "show", path)
		assert.NoError(t, res.err)

		var docs []map[string]any
		assert.NoError(t, json.Unmarshal([]byte(res.stdout), &docs))
		assert.Equal(t, 1, len(docs))
		assert.Equal(t, "202501", docs[0]["date"].(string))
		assert.Equal(t, 2946.0, docs[0]["balance"].(float64))
	})

	t.Run("Summary", func(t *testing.T) {
		res := run(t, "show", "--summary", path)
		assert.NoError(t, res.err)
		assert.Contains(t, res.stdout, "date 202501")
		assert.Contains(t, res.stdout, "  MEAL -54.00")
		assert.Contains(t, res.stdout, "    lunch -54.00")
		assert.Contains(t, res.stdout, "balance 2946.00")
	})

	t.Run("StillShowsBillWithErrors", func(t *testing.T) {
		res := run(t, "show", writeBill(t, dir, "bad.txt", badBill))
		assert.NoError(t, res.err)
		assert.Contains(t, res.stderr, "invalid sub-category")
		assert.Contains(t, res.stdout, `"date": "202502"`)
	})
}

func TestFormatCmd(t *testing.T) {
	dir := t.TempDir()
	path := writeBill(t, dir, "jan.txt", janBill)

	res := run(t, "format", path)
	assert.NoError(t, res.err)
	formatted := res.stdout
	assert.Contains(t, formatted, "+3000.00")
	assert.Contains(t, formatted, "// with Bob")

	t.Run("Idempotent", func(t *testing.T) {
		again := run(t, "format", writeBill(t, dir, "formatted.txt", formatted))
		assert.NoError(t, again.err)
		assert.Equal(t, formatted, again.stdout)
	})

	t.Run("Diff", func(t *testing.T) {
		res := run(t, "format", "--diff", path)
		assert.NoError(t, res.err)
		assert.Contains(t, res.stdout, "--- "+path)
		assert.Contains(t, res.stdout, "@@")
		assert.Contains(t, res.stdout, "+3000.00")
	})

	t.Run("DiffOfFormattedFileIsEmpty", func(t *testing.T) {
		res := run(t, "format", "--diff", filepath.Join(dir, "formatted.txt"))
		assert.NoError(t, res.err)
		assert.Equal(t, "", res.stdout)
	})

	t.Run("PreserveExpressions", func(t *testing.T) {
		res := run(t, "format", "--preserve-expressions", path)
		assert.NoError(t, res.err)
		assert.Contains(t, res.stdout, "12*2")
	})

	t.Run("Write", func(t *testing.T) {
		target := writeBill(t, dir, "write.txt", janBill)
		res := run(t, "format", "--write", "--yes", target)
		assert.NoError(t, res.err)
		assert.Contains(t, res.stdout, "Formatted")

		written, err := os.ReadFile(target)
		assert.NoError(t, err)
		assert.Equal(t, formatted, string(written))
	})

	t.Run("RefusesBillWithErrors", func(t *testing.T) {
		target := writeBill(t, dir, "bad.txt", badBill)
		res := run(t, "format", "--write", "--yes", target)
		assert.Equal(t, ExitRejected, res.exitCode())

		written, err := os.ReadFile(target)
		assert.NoError(t, err)
		assert.Equal(t, badBill, string(written))
	})
}

func TestReportCmd(t *testing.T) {
	dir := t.TempDir()
	path := writeBill(t, dir, "jan.txt", janBill)

	t.Run("Markdown", func(t *testing.T) {
		res := run(t, "report", path)
		assert.NoError(t, res.err)
		assert.Contains(t, res.stdout, "Bills January 2025")
	})

	t.Run("OutputFile", func(t *testing.T) {
		out := filepath.Join(dir, "jan.tex")
		res := run(t, "report", "--format", "latex", "--output", out, path)
		assert.NoError(t, res.err)

		data, err := os.ReadFile(out)
		assert.NoError(t, err)
		assert.Contains(t, string(data), `\section*{Bills January 2025}`)
	})

	t.Run("UnknownFormat", func(t *testing.T) {
		res := run(t, "report", "--format", "pdf", path)
		assert.Error(t, res.err)
		assert.Contains(t, res.err.Error(), `unknown report format "pdf"`)
	})
}

func TestImportCmd(t *testing.T) {
	dir := t.TempDir()
	storePath := filepath.Join(dir, "store.json")
	jan := writeBill(t, dir, "jan.txt", janBill)

	t.Run("RejectsWholeBatch", func(t *testing.T) {
		bad := writeBill(t, dir, "bad.txt", badBill)
		res := run(t, "import", "--yes", "--store", storePath, jan, bad)
		assert.Equal(t, ExitRejected, res.exitCode())
		assert.Contains(t, res.stderr, "nothing was written")

		_, err := os.Stat(storePath)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("Commits", func(t *testing.T) {
		res := run(t, "import", "--yes", "--store", storePath, jan)
		assert.NoError(t, res.err)
		assert.Contains(t, res.stdout, "Imported 1 bill(s)")

		data, err := os.ReadFile(storePath)
		assert.NoError(t, err)
		assert.Contains(t, string(data), `"period": "202501"`)
	})

	t.Run("DuplicatePeriod", func(t *testing.T) {
		res := run(t, "import", "--yes", "--store", storePath, jan)
		assert.Equal(t, ExitRejected, res.exitCode())
		assert.Contains(t, res.stderr, "already stored")

		res = run(t, "import", "--yes", "--replace", "--store", storePath, jan)
		assert.NoError(t, res.err)
	})

	t.Run("Directory", func(t *testing.T) {
		billsDir := filepath.Join(dir, "bills")
		assert.NoError(t, os.MkdirAll(billsDir, 0o755))
		writeBill(t, billsDir, "feb.txt", "date:202502\nMEAL\ndinner\n45 hotpot\n")
		writeBill(t, billsDir, "mar.bill", "date:202503\nMEAL\ndinner\n20 dumplings\n")

		res := run(t, "import", "--yes", "--store", storePath, billsDir)
		assert.NoError(t, res.err)
		assert.Contains(t, res.stdout, "Imported 2 bill(s)")
	})

	t.Run("NeedsConfirmation", func(t *testing.T) {
		if isTerminal() {
			t.Skip("stdin is a terminal")
		}
		res := run(t, "import", "--replace", "--store", storePath, jan)
		assert.Equal(t, ExitRejected, res.exitCode())
		assert.Contains(t, res.stderr, "import cancelled")
	})
}

func TestDoctorClassifyCmd(t *testing.T) {
	dir := t.TempDir()
	path := writeBill(t, dir, "jan.txt", janBill+"\n???\n")

	res := run(t, "doctor", "classify", path)
	assert.NoError(t, res.err)

	lines := strings.Split(strings.TrimSuffix(res.stdout, "\n"), "\n")
	assert.Equal(t, "   1  date         202501", lines[0])
	assert.Equal(t, `   2  remark       "January"`, lines[1])
	assert.Equal(t, "   3  parent       MEAL", lines[2])
	assert.Equal(t, "   4  child        lunch", lines[3])
	assert.Equal(t, `   6  content      expr="12*2" description="coffee" comment="with Bob"`, lines[5])
	assert.Equal(t, "  10  blank        ", lines[9])
	assert.Equal(t, `  11  unrecognized "???"`, lines[10])

	res = run(t, "doctor", "classify", "--dump", path)
	assert.NoError(t, res.err)
	assert.Contains(t, res.stdout, "parser.ContentLine{")
}

func TestErrorRenderer(t *testing.T) {
	res := run(t, "check", writeBill(t, t.TempDir(), "bad.txt", badBill))
	assert.Equal(t, ExitRejected, res.exitCode())

	r := NewErrorRenderer(nil)
	assert.Equal(t, "", r.RenderAll(nil))
	assert.Contains(t, r.Render(stdErrors.New("boom")), "boom")
}

func TestCommandError(t *testing.T) {
	var err error = NewCommandError(ExitFailure)
	assert.EqualError(t, err, "command failed")

	var cmdErr *CommandError
	assert.True(t, stdErrors.As(err, &cmdErr))
	assert.Equal(t, 2, cmdErr.ExitCode())
}
