package models

// CanonicalRecord is one normalized (field, value) row.
type CanonicalRecord struct {
	Key   string
	Value Value
}

// CanonicalTable holds exactly one row per registry key, in registry order.
type CanonicalTable struct {
	Rows  []CanonicalRecord
	index map[string]int
}

func NewCanonicalTable(rows []CanonicalRecord) *CanonicalTable {
	idx := make(map[string]int, len(rows))
	for i, r := range rows {
		idx[r.Key] = i
	}
	return &CanonicalTable{Rows: rows, index: idx}
}

// Lookup returns the value stored for key. Keys not in the table are Missing.
func (t *CanonicalTable) Lookup(key string) Value {
	if t == nil {
		return Missing
	}
	i, ok := t.index[key]
	if !ok {
		return Missing
	}
	return t.Rows[i].Value
}

func (t *CanonicalTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Map renders the table with wire sentinels.
func (t *CanonicalTable) Map() map[string]string {
	out := make(map[string]string, t.Len())
	if t == nil {
		return out
	}
	for _, r := range t.Rows {
		out[r.Key] = r.Value.Wire()
	}
	return out
}
