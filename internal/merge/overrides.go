package merge

import (
	"strings"

	"homologation/pkg/models"
)

// override computes a bespoke final value. Returning false falls back to
// the default priority.
type override func(Row) (string, bool)

var overrides = map[string]override{
	"fuel": fuelFinal,
}

// fuelFinal renames the COC fuel code and marks hybrids whose powertrain
// description on site 3 points at an external charging range.
func fuelFinal(row Row) (string, bool) {
	s2 := strings.TrimSpace(row.Values[1])
	if !models.Usable(s2) {
		return "", false
	}
	rangeExtended := hasChargingRange(row.Values[2])

	switch s2 {
	case "Diesel / Electric":
		if rangeExtended {
			return "Diesel/ElectricRange", true
		}
		return "Diesel/Electric", true
	case "Gasoline / Electric":
		if rangeExtended {
			return "Petrol/ElectricRange", true
		}
		return "Petrol/Electric", true
	case "Diesel":
		return "Diesel", true
	case "Gasoline":
		return "Petrol", true
	case "Electric":
		return "Electric", true
	}
	return row.Values[1], true
}

func hasChargingRange(s string) bool {
	if !models.Usable(s) {
		return false
	}
	s = strings.ToLower(s)
	return strings.Contains(s, "plug-in") || strings.Contains(s, "phev") || strings.Contains(s, "range")
}
