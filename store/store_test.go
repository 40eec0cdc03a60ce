package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
	"github.com/robinvdvleuten/billtext/ledger"
	"github.com/shopspring/decimal"
)

func testRules() *ledger.Rules {
	return ledger.NewRules([]ledger.Category{
		{Parent: "MEAL", Children: []string{"lunch", "dinner"}},
		{Parent: "INCOME", Children: []string{"salary"}},
	}, ledger.WithIncomeCategories("INCOME"))
}

func process(t *testing.T, filename, source string) *ledger.Result {
	t.Helper()
	result, err := ledger.Process(context.Background(), testRules(), []byte(source), ledger.WithFilename(filename))
	assert.NoError(t, err)
	return result
}

func fixedNow() time.Time {
	return time.Date(2025, 2, 1, 9, 30, 0, 0, time.UTC)
}

func TestImportCommitsBatch(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()

	jan := process(t, "jan.txt", "date:202501\nMEAL\nlunch\n30 noodles // spicy\nINCOME\nsalary\n8000 pay\n")
	feb := process(t, "feb.txt", "date:202502\nremark:February\nMEAL\ndinner\n45 hotpot\n")

	batch, err := Import(ctx, st, []*ledger.Result{jan, feb}, WithNow(fixedNow))
	assert.NoError(t, err)
	assert.Equal(t, 2, len(batch.Bills))
	assert.Equal(t, fixedNow(), batch.ImportedAt)
	assert.NotEqual(t, "", batch.ID)

	bills, err := st.List(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 2, len(bills))
	assert.Equal(t, "202501", bills[0].Period)
	assert.Equal(t, "202502", bills[1].Period)
	assert.Equal(t, batch.ID, bills[0].BatchID)
	assert.NotEqual(t, bills[0].ID, bills[1].ID)

	got, err := st.Get(ctx, "202501")
	assert.NoError(t, err)
	assert.Equal(t, "jan.txt", got.Source)
	assert.Equal(t, "7970.00", got.Balance.StringFixed(2))
	assert.Equal(t, 2, len(got.Entries))

	var noodles Entry
	for _, e := range got.Entries {
		if e.Description == "noodles" {
			noodles = e
		}
	}
	assert.Equal(t, "MEAL", noodles.Parent)
	assert.Equal(t, "lunch", noodles.SubCategory)
	assert.Equal(t, "spicy", noodles.Comment)
	assert.Equal(t, "manual", noodles.Source)
	assert.Equal(t, "-30.00", noodles.Amount.StringFixed(2))
}

func TestImportRejectsWholeBatch(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()

	good := process(t, "good.txt", "date:202501\nMEAL\nlunch\n30 noodles\n")
	bad := process(t, "bad.txt", "date:202502\nFOOD\nlunch\n30 noodles\n")

	_, err := Import(ctx, st, []*ledger.Result{good, bad})
	assert.Error(t, err)

	var rejected *ledger.RejectedError
	assert.True(t, errors.As(err, &rejected))
	assert.Equal(t, "bad.txt", rejected.Filename)

	bills, err := st.List(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 0, len(bills))
}

func TestImportDuplicatePeriod(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()

	first := process(t, "a.txt", "date:202501\nMEAL\nlunch\n30 noodles\n")
	_, err := Import(ctx, st, []*ledger.Result{first})
	assert.NoError(t, err)

	second := process(t, "b.txt", "date:202501\nMEAL\nlunch\n12 rice\n")
	_, err = Import(ctx, st, []*ledger.Result{second})
	var dup *DuplicatePeriodError
	assert.True(t, errors.As(err, &dup))
	assert.Equal(t, "202501", dup.Period)

	got, err := st.Get(ctx, "202501")
	assert.NoError(t, err)
	assert.Equal(t, "a.txt", got.Source)

	_, err = Import(ctx, st, []*ledger.Result{second}, WithReplace())
	assert.NoError(t, err)
	got, err = st.Get(ctx, "202501")
	assert.NoError(t, err)
	assert.Equal(t, "b.txt", got.Source)
}

func TestMemoryStorePutIsAtomic(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()

	err := st.Put(ctx, []*Bill{
		{Period: "202501", Source: "a.txt"},
		{Period: "202501", Source: "b.txt"},
	}, false)
	assert.Error(t, err)

	bills, err := st.List(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 0, len(bills))
}

func TestMemoryStoreGetAndDelete(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()

	_, err := st.Get(ctx, "202501")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, errors.Is(st.Delete(ctx, "202501"), ErrNotFound))

	assert.NoError(t, st.Put(ctx, []*Bill{{Period: "202501", Source: "a.txt"}}, false))

	got, err := st.Get(ctx, "202501")
	assert.NoError(t, err)
	got.Source = "changed"

	again, err := st.Get(ctx, "202501")
	assert.NoError(t, err)
	assert.Equal(t, "a.txt", again.Source)

	assert.NoError(t, st.Delete(ctx, "202501"))
	_, err = st.Get(ctx, "202501")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestMemoryStoreSnapshot(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "bills.json")

	st, err := Open(path)
	assert.NoError(t, err)

	assert.NoError(t, st.Put(ctx, []*Bill{{
		ID:         "bill-1",
		Period:     "202501",
		Source:     "jan.txt",
		ImportedAt: fixedNow(),
		Balance:    decimal.RequireFromString("-30"),
		Entries: []Entry{{
			Parent:      "MEAL",
			SubCategory: "lunch",
			Description: "noodles",
			Amount:      decimal.RequireFromString("-30"),
			Source:      "manual",
		}},
	}}, false))
	assert.NoError(t, st.Save())

	reopened, err := Open(path)
	assert.NoError(t, err)
	got, err := reopened.Get(ctx, "202501")
	assert.NoError(t, err)
	assert.Equal(t, "bill-1", got.ID)
	assert.Equal(t, "-30.00", got.Balance.StringFixed(2))
	assert.Equal(t, "noodles", got.Entries[0].Description)
	assert.True(t, fixedNow().Equal(got.ImportedAt))
}

func TestSaveWithoutPath(t *testing.T) {
	assert.Error(t, NewMemoryStore().Save())
}

func TestNewBillRepeatedMetadataKeepsFirst(t *testing.T) {
	result, err := ledger.Process(context.Background(), testRules(),
		[]byte("date:202501\nauthor: bob\nauthor: eve\nMEAL\nlunch\n5 tea\n"),
		ledger.WithMetadataPrefixes("author:"))
	assert.NoError(t, err)

	bill := NewBill("jan.txt", result.Documents[0])
	assert.Equal(t, map[string]string{"author": "bob"}, bill.Metadata)
}
