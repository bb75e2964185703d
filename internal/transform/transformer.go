// Package transform normalizes the raw tables of each source site into the
// canonical field space.
//
// A Transformer renames raw keys, cleans unit noise out of the values, runs
// an ordered list of named derivation rules and finally emits one row per
// registry key in registry order. Transformers hold only static
// configuration and are safe for concurrent use.
package transform

import (
	"fmt"
	"strings"

	"homologation/internal/logger"
	"homologation/internal/registry"
	"homologation/pkg/models"
)

// Source names, in merge column order.
const (
	Site1 = "site1"
	Site2 = "site2"
	Site3 = "site3"
)

type Transformer struct {
	Source  string
	Mapping Mapping
	Rules   []Rule
	Log     *logger.Logger
}

// Result is a canonical table plus the fields that could not be derived.
type Result struct {
	Table  *models.CanonicalTable
	Issues []*FieldDerivationError
}

// Transform runs the full pipeline over raw. It only fails when raw itself
// is malformed; per-field problems end up in Result.Issues.
func (tr *Transformer) Transform(raw models.RawTable) (Result, error) {
	if err := validate(raw); err != nil {
		return Result{}, fmt.Errorf("%s: %w", tr.Source, err)
	}

	t := tr.rename(raw)
	for _, k := range t.Keys() {
		if v, ok := t.Get(k); ok {
			t.Set(k, cleanValue(v))
		}
	}

	issues := runRules(t, tr.Rules)
	for _, is := range issues {
		is.Source = tr.Source
		tr.Log.Warn("field derivation failed",
			"source", tr.Source, "rule", is.Rule, "field", is.Field, "error", is.Cause)
	}

	return Result{Table: finalize(t), Issues: issues}, nil
}

func validate(raw models.RawTable) error {
	for i, r := range raw {
		if strings.TrimSpace(r.Key) == "" {
			return fmt.Errorf("%w: record %d has an empty key", ErrInvalidRecord, i)
		}
	}
	return nil
}

// rename applies the mapping. The first occurrence of a raw key wins; two
// different raw keys landing on the same target resolve to the later one.
func (tr *Transformer) rename(raw models.RawTable) *Table {
	t := newTable(len(raw) + registry.Len())
	seen := make(map[string]bool, len(raw))
	for _, r := range raw {
		key := strings.TrimSpace(r.Key)
		if seen[key] {
			continue
		}
		seen[key] = true

		v := models.Missing
		if r.Value != nil {
			v = models.Present(*r.Value)
		}
		for _, target := range tr.Mapping.targets(key) {
			t.SetValue(target, v)
		}
	}
	return t
}

// finalize fills missing registry keys and drops everything else.
func finalize(t *Table) *models.CanonicalTable {
	keys := registry.OrderedKeys()
	rows := make([]models.CanonicalRecord, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, models.CanonicalRecord{Key: k, Value: t.Lookup(k)})
	}
	return models.NewCanonicalTable(rows)
}

// ForSource returns the transformer for one of Site1, Site2 or Site3.
func ForSource(source string, log *logger.Logger) (*Transformer, error) {
	switch source {
	case Site1:
		return NewSite1(log), nil
	case Site2:
		return NewSite2(log), nil
	case Site3:
		return NewSite3(log), nil
	}
	return nil, fmt.Errorf("unknown source %q", source)
}
