package downloads

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"slices"
	"strings"

	"homologation/internal/registry"
	"homologation/pkg/models"
)

// Languages with a document template.
var Languages = []string{"en", "de", "pt", "it", "fr", "nl", "sv", "ro", "pl", "cs"}

const unknownCDS = "N/A"

// NormalizeLanguage lower-cases lang and reports whether it has a template.
func NormalizeLanguage(lang string) (string, bool) {
	l := strings.ToLower(strings.TrimSpace(lang))
	return l, slices.Contains(Languages, l)
}

// CDSIdentifier returns the final CdS value, or "N/A".
func CDSIdentifier(data []models.FinalPair) string {
	for _, p := range data {
		if p.Key == "CdS" {
			return p.Final
		}
	}
	return unknownCDS
}

// FileName is the attachment name for a sheet.
func FileName(cds string) string {
	return "homologacion_" + strings.ReplaceAll(cds, " ", "_") + ".csv"
}

// RenderCSV writes the sheet as Key,Value rows. Registry keys come first in
// registry order; any other keys follow in the order given.
func RenderCSV(data []models.FinalPair) ([]byte, error) {
	ordered := slices.Clone(data)
	slices.SortStableFunc(ordered, func(a, b models.FinalPair) int {
		return rank(a.Key) - rank(b.Key)
	})

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"Key", "Value"}); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for _, p := range ordered {
		if err := w.Write([]string{p.Key, p.Final}); err != nil {
			return nil, fmt.Errorf("write %s: %w", p.Key, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

func rank(key string) int {
	if p := registry.Position(key); p >= 0 {
		return p
	}
	return registry.Len()
}
