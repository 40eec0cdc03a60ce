// Package config loads the JSON configuration that defines category rules,
// auto-renewal rules and metadata prefixes:
//
//	{
//	  "categories": [
//	    {"parent_item": "MEAL", "sub_items": ["breakfast", "lunch", "dinner"]}
//	  ],
//	  "auto_renewal_rules": [
//	    {"header_location": "SUBSCRIPTION", "amount": -15.99, "description": "netflix"}
//	  ],
//	  "metadata_prefixes": ["author:"],
//	  "income_categories": ["INCOME"]
//	}
package config

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/robinvdvleuten/billtext/ledger"
	"github.com/robinvdvleuten/billtext/parser"
	"github.com/shopspring/decimal"
)

// Config is the bill engine configuration.
type Config struct {
	Categories       []Category    `json:"categories"`
	AutoRenewalRules []RenewalRule `json:"auto_renewal_rules,omitempty"`
	MetadataPrefixes []string      `json:"metadata_prefixes,omitempty"`
	IncomeCategories []string      `json:"income_categories,omitempty"`
}

// Category maps a parent title to its allowed sub-categories.
type Category struct {
	ParentItem string   `json:"parent_item"`
	SubItems   []string `json:"sub_items"`
}

// RenewalRule is a recurring entry guaranteed under a parent. Amount may be
// written as a JSON number or string.
type RenewalRule struct {
	HeaderLocation string          `json:"header_location"`
	Amount         decimal.Decimal `json:"amount"`
	Description    string          `json:"description"`
}

// Error is returned when configuration cannot be read or is invalid. It is a
// hard failure: no bill is processed without valid rules.
type Error struct {
	Path string // empty for in-memory configuration
	Err  error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("invalid configuration: %v", e.Err)
	}
	return fmt.Sprintf("configuration %s: %v", e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Default returns a small built-in configuration, used when no file is given.
func Default() *Config {
	return &Config{
		Categories: []Category{
			{ParentItem: "MEAL", SubItems: []string{"breakfast", "lunch", "dinner", "snacks"}},
			{ParentItem: "TRANSPORT", SubItems: []string{"bus", "metro", "taxi", "fuel"}},
			{ParentItem: "HOUSING", SubItems: []string{"rent", "utilities", "repairs"}},
			{ParentItem: "SHOPPING", SubItems: []string{"groceries", "clothes", "electronics"}},
			{ParentItem: "SUBSCRIPTION", SubItems: []string{"streaming", "cloud", "phone"}},
			{ParentItem: "INCOME", SubItems: []string{"salary", "bonus", "interest"}},
		},
		IncomeCategories: []string{"INCOME"},
	}
}

// Load reads and validates a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Path: path, Err: err}
	}

	cfg, err := Parse(data)
	if err != nil {
		var cerr *Error
		if errors.As(err, &cerr) {
			cerr.Path = path
		}
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault loads path, or returns Default when path is empty.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

// Parse decodes and validates configuration JSON. Unknown fields are
// rejected so that typos do not silently disable rules.
func Parse(data []byte) (*Config, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		return nil, &Error{Err: fmt.Errorf("decode: %w", err)}
	}
	if err := cfg.Validate(); err != nil {
		return nil, &Error{Err: err}
	}
	return &cfg, nil
}

// Validate checks the configuration structurally and returns every problem
// found, joined.
func (c *Config) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if len(c.Categories) == 0 {
		fail("categories: at least one category is required")
	}

	parents := make(map[string]bool, len(c.Categories))
	for i, cat := range c.Categories {
		switch {
		case cat.ParentItem == "":
			fail("categories[%d]: parent_item is empty", i)
			continue
		case parents[cat.ParentItem]:
			fail("categories[%d]: duplicate parent_item %q", i, cat.ParentItem)
		}
		parents[cat.ParentItem] = true

		if _, ok := parser.Classify(parser.RawLine{Text: cat.ParentItem}).(parser.ParentTitle); !ok || strings.TrimSpace(cat.ParentItem) != cat.ParentItem {
			fail("categories[%d]: parent_item %q would not be read as a parent title", i, cat.ParentItem)
		}

		seen := make(map[string]bool, len(cat.SubItems))
		for j, sub := range cat.SubItems {
			if _, ok := parser.Classify(parser.RawLine{Text: sub}).(parser.ChildTitle); !ok || sub != strings.TrimSpace(sub) {
				fail("categories[%d].sub_items[%d]: %q must consist of lowercase letters and underscores", i, j, sub)
			}
			if seen[sub] {
				fail("categories[%d].sub_items[%d]: duplicate sub-category %q", i, j, sub)
			}
			seen[sub] = true
		}
	}

	for i, rule := range c.AutoRenewalRules {
		if !parents[rule.HeaderLocation] {
			fail("auto_renewal_rules[%d]: header_location %q is not a configured parent_item", i, rule.HeaderLocation)
		}
		if strings.TrimSpace(rule.Description) == "" {
			fail("auto_renewal_rules[%d]: description is empty", i)
		}
	}

	for i, prefix := range c.MetadataPrefixes {
		switch {
		case !strings.HasSuffix(prefix, ":") || len(prefix) < 2:
			fail("metadata_prefixes[%d]: %q must be a name followed by ':'", i, prefix)
		case prefix == "date:" || prefix == "remark:":
			fail("metadata_prefixes[%d]: %q is reserved", i, prefix)
		}
	}

	for i, name := range c.IncomeCategories {
		if !parents[name] {
			fail("income_categories[%d]: %q is not a configured parent_item", i, name)
		}
	}

	return errors.Join(errs...)
}

// Rules builds the category rules.
func (c *Config) Rules() *ledger.Rules {
	categories := make([]ledger.Category, len(c.Categories))
	for i, cat := range c.Categories {
		categories[i] = ledger.Category{Parent: cat.ParentItem, Children: cat.SubItems}
	}
	return ledger.NewRules(categories, ledger.WithIncomeCategories(c.IncomeCategories...))
}

// RenewalRules converts the configured auto-renewal rules.
func (c *Config) RenewalRules() []ledger.RenewalRule {
	rules := make([]ledger.RenewalRule, len(c.AutoRenewalRules))
	for i, r := range c.AutoRenewalRules {
		rules[i] = ledger.RenewalRule{HeaderLocation: r.HeaderLocation, Amount: r.Amount, Description: r.Description}
	}
	return rules
}

// ProcessOptions returns the ledger options implied by the configuration.
func (c *Config) ProcessOptions() []ledger.Option {
	var opts []ledger.Option
	if len(c.AutoRenewalRules) > 0 {
		opts = append(opts, ledger.WithRenewalRules(c.RenewalRules()...))
	}
	if len(c.MetadataPrefixes) > 0 {
		opts = append(opts, ledger.WithMetadataPrefixes(c.MetadataPrefixes...))
	}
	return opts
}

type contextKey struct{}

// WithContext returns a new context with the Config attached.
func (c *Config) WithContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, c)
}

// FromContext retrieves the Config from context, or Default when absent.
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(contextKey{}).(*Config); ok {
		return cfg
	}
	return Default()
}
