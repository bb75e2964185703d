package transform

// Rule is one named derivation step. Reads lists the keys the rule consumes
// and the runner skips the rule when none of them is in the table. A rule
// with Defaults set runs anyway because it fills in a value for absent
// inputs, and a rule without Reads always runs. A rule that fails for a field
// must leave that field as it found it and report a FieldDerivationError.
type Rule struct {
	Name     string
	Reads    []string
	Defaults bool
	Apply    func(t *Table) error
}

// applies reports whether r has something to work on in t.
func (r Rule) applies(t *Table) bool {
	if r.Defaults || len(r.Reads) == 0 {
		return true
	}
	for _, k := range r.Reads {
		if t.Has(k) {
			return true
		}
	}
	return false
}

// runRules executes rules in order over t and collects per-field failures.
func runRules(t *Table, rules []Rule) []*FieldDerivationError {
	var issues []*FieldDerivationError
	for _, r := range rules {
		if !r.applies(t) {
			continue
		}
		issues = append(issues, flatten(r.Apply(t), r.Name)...)
	}
	return issues
}
