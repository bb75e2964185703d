package models

// MergedRecord is one row of the reconciliation output. JSON names are the
// ones the front end and the document exporter already consume.
type MergedRecord struct {
	Key     string `json:"Key"`
	Source1 string `json:"Valor Sitio 1"`
	Source2 string `json:"Valor Sitio 2"`
	Source3 string `json:"Valor Sitio 3"`
	Final   string `json:"Valor Final"`
}

// MergedTable is ordered by the canonical registry.
type MergedTable []MergedRecord

// Final returns the final value for key and whether the row exists.
func (t MergedTable) Final(key string) (string, bool) {
	for _, r := range t {
		if r.Key == key {
			return r.Final, true
		}
	}
	return "", false
}

// FinalPair is the (Key, Valor Final) projection used for export.
type FinalPair struct {
	Key   string `json:"Key"`
	Final string `json:"Valor Final"`
}

func (t MergedTable) Finals() []FinalPair {
	out := make([]FinalPair, 0, len(t))
	for _, r := range t {
		out = append(out, FinalPair{Key: r.Key, Final: r.Final})
	}
	return out
}
