package ledger

// Category is one entry of the category allow-list: a parent title and the
// child titles it accepts.
type Category struct {
	Parent   string
	Children []string
}

// Rules is the read-only category allow-list consulted while validating a
// bill. A Rules value is never modified after NewRules returns and can be
// shared across any number of sequential or concurrent Process calls.
type Rules struct {
	parents  []string
	children map[string][]string
	allowed  map[string]map[string]struct{}
	income   map[string]struct{}
}

// RulesOption configures Rules.
type RulesOption func(*Rules)

// WithIncomeCategories marks parents whose unsigned amounts default to
// income. Every other parent defaults to expense.
func WithIncomeCategories(parents ...string) RulesOption {
	return func(r *Rules) {
		for _, p := range parents {
			r.income[p] = struct{}{}
		}
	}
}

// NewRules builds rules from categories. Repeated parents merge their child
// lists; order of first appearance is kept.
func NewRules(categories []Category, opts ...RulesOption) *Rules {
	r := &Rules{
		children: make(map[string][]string, len(categories)),
		allowed:  make(map[string]map[string]struct{}, len(categories)),
		income:   make(map[string]struct{}),
	}

	for _, c := range categories {
		set, ok := r.allowed[c.Parent]
		if !ok {
			set = make(map[string]struct{}, len(c.Children))
			r.allowed[c.Parent] = set
			r.parents = append(r.parents, c.Parent)
		}
		for _, child := range c.Children {
			if _, dup := set[child]; dup {
				continue
			}
			set[child] = struct{}{}
			r.children[c.Parent] = append(r.children[c.Parent], child)
		}
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// HasParent reports whether title is a configured parent category.
func (r *Rules) HasParent(title string) bool {
	_, ok := r.allowed[title]
	return ok
}

// Allows reports whether child is a valid sub-category of parent.
func (r *Rules) Allows(parent, child string) bool {
	_, ok := r.allowed[parent][child]
	return ok
}

// Children returns the allowed sub-categories of parent in configured order.
func (r *Rules) Children(parent string) []string {
	return append([]string(nil), r.children[parent]...)
}

// Parents returns the configured parent titles in configured order.
func (r *Rules) Parents() []string {
	return append([]string(nil), r.parents...)
}

// IsIncome reports whether unsigned amounts under parent are income.
func (r *Rules) IsIncome(parent string) bool {
	_, ok := r.income[parent]
	return ok
}
