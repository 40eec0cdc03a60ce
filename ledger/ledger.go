// Package ledger validates classified bill lines against category rules and
// turns them into finished, totals-balanced documents.
//
// Processing runs in fixed stages:
//
//	lines ─▶ classify ─▶ validate ─▶ inject renewals ─▶ sort and prune ─▶ summarize
//
// Structural problems are returned as Diagnostics next to the documents and
// never stop processing. Hard failures (an amount that cannot be reduced,
// empty or non UTF-8 input) are returned as errors with no documents.
//
// Example usage:
//
//	rules := ledger.NewRules([]ledger.Category{
//	    {Parent: "MEAL", Children: []string{"lunch", "dinner"}},
//	})
//
//	result, err := ledger.Process(ctx, rules, source, ledger.WithFilename("bills.txt"))
//	if err != nil {
//	    return err // nothing usable was produced
//	}
//	for _, d := range result.Diagnostics {
//	    fmt.Println(d)
//	}
package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/robinvdvleuten/billtext/ast"
	"github.com/robinvdvleuten/billtext/logger"
	"github.com/robinvdvleuten/billtext/parser"
	"github.com/robinvdvleuten/billtext/telemetry"
)

// ErrNoRules is returned when Process is called without category rules.
var ErrNoRules = errors.New("ledger: category rules are required")

// Result is the outcome of processing one bill source: a document per
// dated section and every diagnostic in line order.
type Result struct {
	Filename    string
	Documents   []*ast.Document
	Diagnostics Diagnostics
}

// HasErrors reports whether any error diagnostic was found.
func (r *Result) HasErrors() bool {
	return r.Diagnostics.HasErrors()
}

// Rejection returns a *RejectedError when the result carries error
// diagnostics, and nil otherwise. Callers that persist bills use it to refuse
// the whole source rather than a part of it.
func (r *Result) Rejection() error {
	errs := r.Diagnostics.Errors()
	if len(errs) == 0 {
		return nil
	}
	return &RejectedError{Filename: r.Filename, Diagnostics: errs}
}

// Option configures a Process call.
type Option func(*options)

type options struct {
	filename         string
	renewals         []RenewalRule
	metadataPrefixes []string
}

// WithFilename sets the filename used in positions and diagnostics.
func WithFilename(name string) Option {
	return func(o *options) {
		o.filename = name
	}
}

// WithRenewalRules enables auto-renewal injection.
func WithRenewalRules(rules ...RenewalRule) Option {
	return func(o *options) {
		o.renewals = append(o.renewals, rules...)
	}
}

// WithMetadataPrefixes accepts header lines starting with any of prefixes.
func WithMetadataPrefixes(prefixes ...string) Option {
	return func(o *options) {
		o.metadataPrefixes = append(o.metadataPrefixes, prefixes...)
	}
}

// Process runs the full pipeline over a bill source.
func Process(ctx context.Context, rules *Rules, source []byte, opts ...Option) (*Result, error) {
	o := buildOptions(opts)

	timer := telemetry.StartTimer(ctx, "ledger.split")
	lines, err := parser.SplitLines(source)
	timer.End()
	if err != nil {
		return nil, parser.NewParseError(o.filename, err)
	}

	return processLines(ctx, rules, lines, o)
}

// ProcessLines runs the pipeline over already split lines.
func ProcessLines(ctx context.Context, rules *Rules, lines []parser.RawLine, opts ...Option) (*Result, error) {
	return processLines(ctx, rules, lines, buildOptions(opts))
}

func buildOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func processLines(ctx context.Context, rules *Rules, lines []parser.RawLine, o *options) (*Result, error) {
	if rules == nil {
		return nil, ErrNoRules
	}
	if !parser.HasContent(lines) {
		return nil, parser.NewParseError(o.filename, parser.ErrEmptyInput)
	}

	log := logger.FromContext(ctx).With().Str("file", o.filename).Logger()

	timer := telemetry.StartTimer(ctx, fmt.Sprintf("ledger.classify (%d lines)", len(lines)))
	classified := parser.NewClassifier(parser.WithMetadataPrefixes(o.metadataPrefixes...)).ClassifyAll(lines)
	timer.End()

	timer = telemetry.StartTimer(ctx, "ledger.validate")
	docs, diagnostics, err := validate(rules, o.filename, classified)
	timer.End()
	if err != nil {
		log.Debug().Err(err).Msg("hard failure during validation")
		return nil, err
	}
	log.Debug().Int("sections", len(docs)).Int("diagnostics", len(diagnostics)).Msg("validated")

	timer = telemetry.StartTimer(ctx, "ledger.finish")
	injected := make([]int, len(docs))
	for i, doc := range docs {
		injected[i] = InjectRenewals(doc, rules, o.renewals)
	}
	diagnostics = dropFilledEmpty(diagnostics, docs)

	for i, doc := range docs {
		children, parents := SortAndPrune(doc)
		Summarize(doc)

		log.Debug().
			Str("date", doc.Date).
			Int("renewals", injected[i]).
			Int("pruned_children", children).
			Int("pruned_parents", parents).
			Int("transactions", doc.TransactionCount()).
			Msg("finished section")
	}
	timer.End()

	return &Result{Filename: o.filename, Documents: docs, Diagnostics: diagnostics}, nil
}
