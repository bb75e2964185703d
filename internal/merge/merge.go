// Package merge reconciles the canonical tables of the three sources into
// one final value per registry field.
package merge

import (
	"sort"

	"homologation/internal/registry"
	"homologation/pkg/models"
)

// Sources holds the canonical tables in column order: site 1, site 2,
// site 3. A nil entry is a source that did not respond.
type Sources [3]*models.CanonicalTable

// priority is the column order tried for a final value: site 2, then site 1,
// then site 3.
var priority = [...]int{1, 0, 2}

// Row is the per-field view handed to override rules.
type Row struct {
	Key    string
	Values [3]string
}

// Merge outer-joins the sources on the registry and picks final values.
// The result always has one row per registry key, in registry order.
func Merge(src Sources) models.MergedTable {
	keys := registry.OrderedKeys()
	out := make(models.MergedTable, 0, len(keys))

	for _, k := range keys {
		row := Row{Key: k}
		for i, t := range src {
			if t == nil {
				row.Values[i] = models.SentinelAbsent
				continue
			}
			row.Values[i] = t.Lookup(k).Wire()
		}

		out = append(out, models.MergedRecord{
			Key:     k,
			Source1: row.Values[0],
			Source2: row.Values[1],
			Source3: row.Values[2],
			Final:   finalValue(row),
		})
	}

	correct(out)

	sort.SliceStable(out, func(i, j int) bool {
		return registry.Position(out[i].Key) < registry.Position(out[j].Key)
	})
	return out
}

func finalValue(row Row) string {
	if o, ok := overrides[row.Key]; ok {
		if v, ok := o(row); ok {
			return v
		}
	}
	return byPriority(row)
}

func byPriority(row Row) string {
	for _, i := range priority {
		if models.Usable(row.Values[i]) {
			return row.Values[i]
		}
	}
	return models.SentinelAbsent
}
