package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/assert/v2"
)

const sample = `{
  "categories": [
    {"parent_item": "MEAL", "sub_items": ["lunch", "dinner"]},
    {"parent_item": "SUBSCRIPTION", "sub_items": ["streaming"]},
    {"parent_item": "INCOME", "sub_items": ["salary"]}
  ],
  "auto_renewal_rules": [
    {"header_location": "SUBSCRIPTION", "amount": -15.99, "description": "netflix"},
    {"header_location": "SUBSCRIPTION", "amount": "-2", "description": "icloud"}
  ],
  "metadata_prefixes": ["author:"],
  "income_categories": ["INCOME"]
}`

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(sample))
	assert.NoError(t, err)

	assert.Equal(t, 3, len(cfg.Categories))
	assert.Equal(t, "-15.99", cfg.AutoRenewalRules[0].Amount.StringFixed(2))
	assert.Equal(t, "-2.00", cfg.AutoRenewalRules[1].Amount.StringFixed(2))

	rules := cfg.Rules()
	assert.True(t, rules.Allows("MEAL", "dinner"))
	assert.True(t, rules.IsIncome("INCOME"))
	assert.False(t, rules.IsIncome("MEAL"))

	renewals := cfg.RenewalRules()
	assert.Equal(t, 2, len(renewals))
	assert.Equal(t, "SUBSCRIPTION", renewals[0].HeaderLocation)
	assert.Equal(t, 2, len(cfg.ProcessOptions()))
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte(`{"categories": [{"parent_item": "MEAL", "sub_items": []}], "categoires": []}`))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "categoires")

	var cerr *Error
	assert.True(t, errors.As(err, &cerr))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		json string
		want string
	}{
		{"no categories", `{"categories": []}`, "at least one category"},
		{"empty parent", `{"categories": [{"parent_item": "", "sub_items": []}]}`, "parent_item is empty"},
		{"duplicate parent", `{"categories": [{"parent_item": "MEAL"}, {"parent_item": "MEAL"}]}`, `duplicate parent_item "MEAL"`},
		{"lowercase parent", `{"categories": [{"parent_item": "meal"}]}`, "would not be read as a parent title"},
		{"numeric parent", `{"categories": [{"parent_item": "2024"}]}`, "would not be read as a parent title"},
		{"bad child", `{"categories": [{"parent_item": "MEAL", "sub_items": ["Lunch"]}]}`, "lowercase letters and underscores"},
		{"duplicate child", `{"categories": [{"parent_item": "MEAL", "sub_items": ["lunch", "lunch"]}]}`, `duplicate sub-category "lunch"`},
		{"renewal header", `{"categories": [{"parent_item": "MEAL"}], "auto_renewal_rules": [{"header_location": "X", "amount": 1, "description": "d"}]}`, "not a configured parent_item"},
		{"renewal description", `{"categories": [{"parent_item": "MEAL"}], "auto_renewal_rules": [{"header_location": "MEAL", "amount": 1, "description": " "}]}`, "description is empty"},
		{"metadata without colon", `{"categories": [{"parent_item": "MEAL"}], "metadata_prefixes": ["author"]}`, "must be a name followed by ':'"},
		{"reserved metadata", `{"categories": [{"parent_item": "MEAL"}], "metadata_prefixes": ["remark:"]}`, "is reserved"},
		{"income category", `{"categories": [{"parent_item": "MEAL"}], "income_categories": ["INCOME"]}`, `"INCOME" is not a configured parent_item`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.json))
			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidateJoinsAllProblems(t *testing.T) {
	cfg := &Config{
		Categories:       []Category{{ParentItem: "meal", SubItems: []string{"Lunch"}}},
		IncomeCategories: []string{"INCOME"},
	}
	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "parent title")
	assert.Contains(t, err.Error(), "sub_items[0]")
	assert.Contains(t, err.Error(), "income_categories[0]")
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "billtext.json")
	assert.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	cfg, err := Load(path)
	assert.NoError(t, err)
	assert.Equal(t, []string{"author:"}, cfg.MetadataPrefixes)

	_, err = Load(filepath.Join(dir, "missing.json"))
	var cerr *Error
	assert.True(t, errors.As(err, &cerr))
	assert.True(t, errors.Is(err, os.ErrNotExist))

	bad := filepath.Join(dir, "bad.json")
	assert.NoError(t, os.WriteFile(bad, []byte(`{"categories": []}`), 0o644))
	_, err = Load(bad)
	assert.Contains(t, err.Error(), "configuration "+bad)
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault("")
	assert.NoError(t, err)
	assert.NoError(t, cfg.Validate())
	assert.True(t, cfg.Rules().HasParent("MEAL"))
}

func TestContext(t *testing.T) {
	cfg, err := Parse([]byte(sample))
	assert.NoError(t, err)

	ctx := cfg.WithContext(context.Background())
	assert.True(t, FromContext(ctx) == cfg)
	assert.NotZero(t, FromContext(context.Background()))
}
