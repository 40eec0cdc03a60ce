package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/robinvdvleuten/billtext/ledger"
	"github.com/robinvdvleuten/billtext/logger"
)

// Batch describes one committed import.
type Batch struct {
	ID         string
	ImportedAt time.Time
	Bills      []*Bill
}

// ImportOption configures Import.
type ImportOption func(*importOptions)

type importOptions struct {
	replace bool
	now     func() time.Time
}

// WithReplace overwrites periods that are already stored.
func WithReplace() ImportOption {
	return func(o *importOptions) {
		o.replace = true
	}
}

// WithNow sets the clock used for ImportedAt.
func WithNow(now func() time.Time) ImportOption {
	return func(o *importOptions) {
		o.now = now
	}
}

// Import commits every document of every result as one batch. If any result
// has an error diagnostic nothing is written and the rejections are returned
// joined; each is a *ledger.RejectedError.
func Import(ctx context.Context, st Store, results []*ledger.Result, opts ...ImportOption) (*Batch, error) {
	o := &importOptions{now: time.Now}
	for _, opt := range opts {
		opt(o)
	}

	var rejections []error
	for _, r := range results {
		if err := r.Rejection(); err != nil {
			rejections = append(rejections, err)
		}
	}
	if len(rejections) > 0 {
		return nil, errors.Join(rejections...)
	}

	batch := &Batch{ID: uuid.NewString(), ImportedAt: o.now().UTC()}
	for _, r := range results {
		for _, doc := range r.Documents {
			bill := NewBill(r.Filename, doc)
			bill.ID = uuid.NewString()
			bill.BatchID = batch.ID
			bill.ImportedAt = batch.ImportedAt
			batch.Bills = append(batch.Bills, bill)
		}
	}

	if err := st.Put(ctx, batch.Bills, o.replace); err != nil {
		return nil, err
	}

	log := logger.FromContext(ctx)
	log.Info().
		Str("batch", batch.ID).
		Int("bills", len(batch.Bills)).
		Msg("imported bills")

	return batch, nil
}
