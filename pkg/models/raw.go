package models

import (
	"encoding/json"
	"fmt"
)

// RawRecord is one (key, value) pair as emitted by a scraping adapter.
// A nil Value means the page had the label but no value.
type RawRecord struct {
	Key   string
	Value *string
}

// RawTable is the ordered output of one adapter.
type RawTable []RawRecord

func Raw(key, value string) RawRecord {
	v := value
	return RawRecord{Key: key, Value: &v}
}

func RawNull(key string) RawRecord { return RawRecord{Key: key} }

// MarshalJSON encodes the record as a two-element array: [key, value].
func (r RawRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{r.Key, r.Value})
}

func (r *RawRecord) UnmarshalJSON(b []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(b, &pair); err != nil {
		return fmt.Errorf("raw record: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("raw record: want [key, value], got %d elements", len(pair))
	}
	if err := json.Unmarshal(pair[0], &r.Key); err != nil {
		return fmt.Errorf("raw record key: %w", err)
	}
	r.Value = nil
	if string(pair[1]) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(pair[1], &s); err != nil {
		return fmt.Errorf("raw record %q value: %w", r.Key, err)
	}
	r.Value = &s
	return nil
}

// Empty reports whether the adapter produced no rows; an empty table is
// treated as a source that did not respond.
func (t RawTable) Empty() bool { return len(t) == 0 }
