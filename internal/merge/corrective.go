package merge

import (
	"strconv"
	"strings"

	"homologation/pkg/models"
)

var earlyEuroTiers = map[string]bool{
	"EURO 1": true,
	"EURO 2": true,
	"EURO 3": true,
	"EURO 4": true,
}

var earlyTierEmissions = []string{"co_emissions", "hc_emissions", "nox_emissions", "hc_nox_emissions"}

// correct applies cross-field rules that depend on other rows' final
// values. It must run after every row has been merged.
func correct(t models.MergedTable) {
	idx := make(map[string]int, len(t))
	for i, r := range t {
		idx[r.Key] = i
	}
	final := func(key string) string {
		if i, ok := idx[key]; ok {
			return t[i].Final
		}
		return ""
	}

	if isPetrol(final("fuel")) {
		if i, ok := idx["particulates"]; ok {
			t[i].Final = models.SentinelZero
		}
	}

	if earlyEuroTiers[strings.TrimSpace(final("emissions_standard"))] {
		for _, k := range earlyTierEmissions {
			i, ok := idx[k]
			if !ok {
				continue
			}
			f, err := strconv.ParseFloat(strings.TrimSpace(t[i].Final), 64)
			if err != nil {
				continue
			}
			t[i].Final = strconv.FormatFloat(f, 'f', 3, 64)
		}
	}
}

func isPetrol(fuel string) bool {
	f := strings.ToLower(fuel)
	return strings.HasPrefix(f, "petrol") || strings.HasPrefix(f, "gasoline") || strings.HasPrefix(f, "benzine")
}
