package transform

import (
	"errors"
	"math"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"homologation/internal/logger"
	"homologation/pkg/models"
)

// Scratch keys produced by the site 1 rename and consumed by its rules.
const (
	s1Wheels        = "wheel"
	s1Track1        = "Axle track  1"
	s1Track2        = "Axle track  2"
	s1Distribution1 = "Distribution of this mass among the axles – 1"
	s1Distribution2 = "Distribution of this mass among the axles – 2"
	s1Braked        = "Braked"
	s1Unbraked      = "Unbraked"
	s1Stationary    = "Stationary"
	s1EngineSpeed   = "Engine speed"
	s1EmissionsOp1  = "Emissions_standard_op1"
	s1EmissionsOp2  = "Emissions_standard_op2"
)

var site1Mapping = Mapping{
	"Algemeen - Merk":                                     {"make", "engine_manufacturer"},
	"Algemeen - Type":                                     {"type"},
	"Algemeen - Variant":                                  {"variant"},
	"Algemeen - Uitvoering":                               {"version"},
	"Algemeen - Model":                                    {"commercial_name"},
	"Algemeen - Typegoedkeuringsnummer":                   {"implication_number"},
	"Brandstof #1 - Nominaal continu elektrisch vermogen": {"remark_electric_1"},
	"Brandstof #1 - Netto maximaal elektrisch vermogen":   {"remark_electric_2"},
	"Brandstof #1 - Elektrisch vermogen over 60 minuten":  {"remark_electric_3"},

	"Afmetingen - Wielbasis":                             {"wheelbase"},
	"Afmetingen - Lengte":                                {"length"},
	"Afmetingen - Breedte":                               {"width"},
	"Massa - Rijklaar gewicht":                           {"running_mass"},
	"Massa - Technisch limiet massa":                     {"max_mass"},
	"Massa - Maximum massa samenstelling":                {"max_combination_mass"},
	"Motor - Aantal cilinders":                           {"cylinders"},
	"Motor - Cilinderinhoud":                             {"capacity"},
	"Brandstof #1 - Brandstof":                           {"fuel"},
	"Brandstof #1 - Vermogen":                            {"max_power"},
	"Brandstof #1 - Milieuklasse licht":                  {"emissions_exhaust"},
	"Brandstof #1 - Uitstoot deeltjes WLTP":              {"particulates"},
	"Brandstof #1 - Roetuitstoot NEDC":                   {"smoke_absorption"},
	"Brandstof #1 - CO2-uitstoot gecombineerd NEDC":      {"co2_combined_nedc"},
	"Brandstof #1 - Brandstofverbruik gecombineerd NEDC": {"fuel_combined_nedc"},
	"Brandstof #1 - Brandstofverbruik in stad NEDC":      {"fuel_urban_nedc"},
	"Brandstof #1 - Brandstofverbruik op snelweg NEDC":   {"fuel_extra_urban_nedc"},
	"Brandstof #1 - CO2-uitstoot gecombineerd WLTP":      {"co2_combined_wltp"},
	"Brandstof #1 - Brandstofverbruik gecombineerd WLTP": {"fuel_combined_wltp"},
	"Brandstof #1 - Hybrideverbruik WLTP":                {"power_consumption"},
	"Brandstof #1 - Hybride actieradius WLTP":            {"electric_range"},
	"Brandstof #1 - Hybride actieradius in stad WLTP":    {"electric_range_city"},
	"Brandstof #1 - Geluidsniveau rijdend":               {"noise_drive_by"},

	"Eigenschappen - Aantal wielen":              {s1Wheels},
	"As #1 - Spoorbreedte":                       {s1Track1},
	"As #2 - Spoorbreedte":                       {s1Track2},
	"As #1 - Technisch limiet":                   {s1Distribution1},
	"As #2 - Technisch limiet":                   {s1Distribution2},
	"Trekkracht - Maximaal trekgewicht geremd":   {s1Braked},
	"Trekkracht - Maximaal trekgewicht ongeremd": {s1Unbraked},
	"Brandstof #1 - Geluidsniveau stationair":    {s1Stationary},
	"Brandstof #1 - Geluidsniveau toerental":     {s1EngineSpeed},
	"Brandstof #1 - Emissieklasse":               {s1EmissionsOp1},
	"Brandstof #2 - Emissieklasse":               {s1EmissionsOp2},
}

// NewSite1 builds the transformer for the Dutch vehicle register pages.
func NewSite1(log *logger.Logger) *Transformer {
	return &Transformer{
		Source:  Site1,
		Mapping: site1Mapping,
		Log:     log.With("source", Site1),
		Rules: []Rule{
			{Name: "axles", Reads: []string{s1Wheels}, Apply: s1Axles},
			{Name: "axle_track", Reads: []string{s1Track1, s1Track2}, Apply: joinPair(s1Track1, s1Track2, "axle_track")},
			{Name: "mass_distribution", Reads: []string{s1Distribution1, s1Distribution2},
				Apply: joinPair(s1Distribution1, s1Distribution2, "mass_distribution", "max_axle_mass")},
			{Name: "max_trailer_mass", Reads: []string{s1Braked, s1Unbraked}, Apply: joinPair(s1Braked, s1Unbraked, "max_trailer_mass")},
			{Name: "emissions_standard", Reads: []string{s1EmissionsOp1, s1EmissionsOp2}, Defaults: true, Apply: s1EmissionsStandard},
			{Name: "emissions_exhaust", Reads: []string{"emissions_exhaust"}, Apply: upper("emissions_exhaust")},
			{Name: "particulates", Reads: []string{"particulates", "emissions_standard"}, Defaults: true, Apply: s1Particulates},
			{Name: "smoke_absorption", Reads: []string{"smoke_absorption"}, Apply: s1Smoke},
			{Name: "noise_stationary", Reads: []string{s1Stationary, s1EngineSpeed}, Apply: s1NoiseStationary},
			{Name: "co2_nedc", Reads: []string{"co2_combined_nedc"},
				Apply: co2Variants("co2_combined_nedc", offset{"co2_urban_nedc", 12}, offset{"co2_extra_urban_nedc", -12})},
			{Name: "fuel_nedc", Reads: []string{"fuel_combined_nedc", "fuel_urban_nedc", "fuel_extra_urban_nedc"}, Apply: s1FuelNEDC},
			{Name: "co2_wltp", Reads: []string{"co2_combined_wltp"},
				Apply: co2Variants("co2_combined_wltp",
					offset{"co2_low_wltp", 6}, offset{"co2_medium_wltp", -3},
					offset{"co2_high_wltp", -6}, offset{"co2_maximum_value_wltp", 3})},
			{Name: "fuel_wltp", Reads: []string{"fuel_combined_wltp"}, Apply: s1FuelWLTP},
			{Name: "remarks_electric", Reads: []string{"remark_electric_1", "remark_electric_2", "remark_electric_3"}, Apply: s1RemarksElectric},
			{Name: "make", Reads: []string{"make"}, Apply: upper("make")},
		},
	}
}

func s1Axles(t *Table) error {
	if w, ok := t.Get(s1Wheels); ok {
		t.Set("axles", "2/"+w)
	}
	return nil
}

// joinPair writes "a/b" to every target when both inputs are present.
func joinPair(a, b string, targets ...string) func(*Table) error {
	return func(t *Table) error {
		va, okA := t.Get(a)
		vb, okB := t.Get(b)
		if !okA || !okB {
			return nil
		}
		for _, target := range targets {
			t.Set(target, va+"/"+vb)
		}
		return nil
	}
}

// upper builds a fresh Caser per call; a Caser must not be shared between
// goroutines.
func upper(key string) func(*Table) error {
	return func(t *Table) error {
		if v, ok := t.Get(key); ok {
			t.Set(key, cases.Upper(language.Und).String(v))
		}
		return nil
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// s1EmissionsStandard picks between the two fuel slots, preferring a numeric
// class. The field is always written.
func s1EmissionsStandard(t *Table) error {
	op1, _ := t.Get(s1EmissionsOp1)
	op2, _ := t.Get(s1EmissionsOp2)
	op1, op2 = strings.TrimSpace(op1), strings.TrimSpace(op2)

	var class string
	switch {
	case isDigits(op1):
		class = op1
	case isDigits(op2):
		class = op2
	case op1 == "Z" && op2 == "Z":
		class = "Z"
	case op1 != "" && op1 != "Z":
		class = op1
	case op2 != "" && op2 != "Z":
		class = op2
	default:
		class = "Z"
	}
	t.Set("emissions_standard", "EURO "+class)
	return nil
}

func s1Particulates(t *Table) error {
	raw, ok := t.Get("particulates")
	if !ok {
		if std, _ := t.Get("emissions_standard"); std == "EURO Z" {
			t.Set("particulates", models.SentinelZero)
		} else {
			t.Set("particulates", "0.00001")
		}
		return nil
	}

	s := strings.ReplaceAll(strings.TrimSpace(stripGramsPerKm(raw)), ",", ".")
	f, err := parseFloat(s)
	if err != nil {
		return fieldErr("particulates", raw, err)
	}
	switch {
	case f == 0:
		t.Set("particulates", models.SentinelZero)
	case significantDigits(s) == 1:
		t.Set("particulates", fixed(f/10000, 5))
	default:
		t.Set("particulates", fixed(f/1000, 5))
	}
	return nil
}

func s1Smoke(t *Table) error {
	raw, ok := t.Get("smoke_absorption")
	if !ok {
		return nil
	}
	f, err := parseFloat(strings.ReplaceAll(stripGramsPerKm(raw), ",", "."))
	if err != nil {
		return fieldErr("smoke_absorption", raw, err)
	}
	t.Set("smoke_absorption", fixed(f, 2))
	return nil
}

func s1NoiseStationary(t *Table) error {
	s, okS := t.Get(s1Stationary)
	e, okE := t.Get(s1EngineSpeed)
	if okS && okE {
		t.Set("noise_stationary", s+" at "+e)
	}
	return nil
}

type offset struct {
	key   string
	delta int
}

// co2Variants truncates the combined CO2 figure to an integer and derives
// the cycle variants from it by fixed offsets.
func co2Variants(combined string, variants ...offset) func(*Table) error {
	return func(t *Table) error {
		raw, ok := t.Get(combined)
		if !ok {
			return nil
		}
		f, err := parseFloat(stripGramsPerKm(raw))
		if err != nil {
			return fieldErr(combined, raw, err)
		}
		if math.Abs(f) > math.MaxInt32 {
			return fieldErr(combined, raw, errOutOfRange)
		}
		base := int(f)
		t.Set(combined, truncInt(f))
		for _, v := range variants {
			t.Set(v.key, truncInt(float64(base+v.delta)))
		}
		return nil
	}
}

func s1FuelNEDC(t *Table) error {
	var errs []error
	for _, key := range []string{"fuel_combined_nedc", "fuel_urban_nedc", "fuel_extra_urban_nedc"} {
		raw, ok := t.Get(key)
		if !ok {
			continue
		}
		f, err := parseLitres(raw)
		if err != nil {
			errs = append(errs, fieldErr(key, raw, err))
			continue
		}
		t.Set(key, fixed(f, 1))
	}
	return errors.Join(errs...)
}

var wltpFuelOffsets = []struct {
	key   string
	delta float64
}{
	{"fuel_low_wltp", 0.6},
	{"fuel_medium_wltp", -0.3},
	{"fuel_high_wltp", -0.6},
	{"fuel_maximum_value_wltp", 0.3},
}

func s1FuelWLTP(t *Table) error {
	raw, ok := t.Get("fuel_combined_wltp")
	if !ok {
		return nil
	}
	f, err := parseLitres(raw)
	if err != nil {
		return fieldErr("fuel_combined_wltp", raw, err)
	}
	t.Set("fuel_combined_wltp", fixed(f, 1))
	for _, o := range wltpFuelOffsets {
		t.Set(o.key, fixed(f+o.delta, 1))
	}
	return nil
}

var parenthetical = regexp.MustCompile(`\(.*?\)`)

func s1RemarksElectric(t *Table) error {
	for _, key := range []string{"remark_electric_1", "remark_electric_2", "remark_electric_3"} {
		if v, ok := t.Get(key); ok {
			v = parenthetical.ReplaceAllString(v, "")
			t.Set(key, strings.TrimSpace(strings.ReplaceAll(v, ",", ".")))
		}
	}
	return nil
}
