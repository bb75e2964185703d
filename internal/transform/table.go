package transform

import "homologation/pkg/models"

// Table is the ordered working set a transformer mutates while its rules
// run. Writing an existing key replaces the value in place; a new key is
// appended.
type Table struct {
	keys []string
	vals map[string]models.Value
}

func newTable(capacity int) *Table {
	return &Table{
		keys: make([]string, 0, capacity),
		vals: make(map[string]models.Value, capacity),
	}
}

// Get returns a present value. Missing and absent keys both report false.
func (t *Table) Get(key string) (string, bool) {
	v, ok := t.vals[key]
	if !ok {
		return "", false
	}
	return v.Get()
}

// Has reports whether the key exists, present or not.
func (t *Table) Has(key string) bool {
	_, ok := t.vals[key]
	return ok
}

func (t *Table) Lookup(key string) models.Value {
	return t.vals[key]
}

func (t *Table) Set(key, value string) {
	t.SetValue(key, models.Present(value))
}

func (t *Table) SetValue(key string, v models.Value) {
	if _, ok := t.vals[key]; !ok {
		t.keys = append(t.keys, key)
	}
	t.vals[key] = v
}

func (t *Table) Delete(keys ...string) {
	for _, k := range keys {
		if _, ok := t.vals[k]; !ok {
			continue
		}
		delete(t.vals, k)
		for i, existing := range t.keys {
			if existing == k {
				t.keys = append(t.keys[:i], t.keys[i+1:]...)
				break
			}
		}
	}
}

// Keys returns the keys in insertion order.
func (t *Table) Keys() []string {
	out := make([]string, len(t.keys))
	copy(out, t.keys)
	return out
}

func (t *Table) Len() int { return len(t.keys) }
