package transform

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"homologation/internal/logger"
	"homologation/pkg/models"
)

// Scratch keys of the COC data site.
const (
	s2Track1        = "Axle(s) track – 1"
	s2Track2        = "Axle(s) track – 2"
	s2Distribution1 = "Distribution of this mass among the axles - 1"
	s2Distribution2 = "Distribution of this mass among the axles - 2"
	s2Braked        = "Braked trailer"
	s2Unbraked      = "Unbraked trailer"
	s2SupportLoad   = "Support load"
	s2BrandType     = "Brand / Type"
	s2DesignType    = "Design type"
	s2Transmission  = "Transmission/IA"
	s2VMax          = "19 Vehicle VMax"
	s2Remark56      = "Remark 56"

	emissionsPrefix       = "72 Emissions -"
	emissionsTransmission = "72 Emissions - Transmission"
)

var site2Mapping = oneToOne(map[string]string{
	"14 Axles/Wheels":      "axles",
	"16 Final drive":       "powered_axles",
	"27 Capacity:":         "capacity",
	"40 Length":            "length",
	"41 Width":             "width",
	"42 Height":            "height",
	"43 Überhange f/b":     "rear_overhang",
	"44 Distance axis 1-2": "wheelbase",
	"52 Netweight":         "running_mass",
	"Wet Weigh Kg":         "max_mass",
	"55 Roof load":         "max_roof_load",
	"28 Power / n":         "max_power",
	"Fuel code":            "fuel",
	"Tow hitch":            "coupling_approval",

	"47 Track Axis 1":       s2Track1,
	"48 Track Axis 2":       s2Track2,
	"54 Axle guarantees v.": s2Distribution1,
	"54 Axle guarantees b.": s2Distribution2,
	"57 braked":             s2Braked,
	"58 unbraked":           s2Unbraked,
	"67 Support load":       s2SupportLoad,
	"25 Brand / Type":       s2BrandType,
	"26 Design type":        s2DesignType,
	"18 Transmission/IA":    s2Transmission,
})

// NewSite2 builds the transformer for the certificate-of-conformity pages.
func NewSite2(log *logger.Logger) *Transformer {
	return &Transformer{
		Source:  Site2,
		Mapping: site2Mapping,
		Log:     log.With("source", Site2),
		Rules: []Rule{
			{Name: "powered_axles", Reads: []string{"powered_axles"}, Apply: s2PoweredAxles},
			{Name: "dimensions", Reads: []string{"length", "width", "height", "rear_overhang", "running_mass"}, Apply: s2Dimensions},
			{Name: "axle_track", Reads: []string{s2Track1, s2Track2}, Apply: s2AxleTrack},
			{Name: "rear_overhang", Reads: []string{"rear_overhang"}, Apply: s2RearOverhang},
			{Name: "mass_distribution", Reads: []string{s2Distribution1, s2Distribution2}, Apply: s2MassDistribution},
			{Name: "max_trailer_mass", Reads: []string{s2Braked, s2Unbraked}, Apply: s2TrailerMass},
			{Name: "max_coupling_load", Reads: []string{s2SupportLoad}, Apply: s2CouplingLoad},
			{Name: "engine", Reads: []string{s2BrandType}, Apply: s2Engine},
			{Name: "working_principle", Reads: []string{"fuel"}, Apply: s2WorkingPrinciple},
			{Name: "direct_injection", Reads: []string{s2DesignType}, Apply: s2DirectInjection},
			{Name: "pure_electric", Reads: []string{"fuel"}, Apply: s2PureElectric},
			{Name: "hybrid", Reads: []string{"fuel"}, Apply: s2Hybrid},
			{Name: "cylinders", Reads: []string{s2DesignType}, Apply: s2Cylinders},
			{Name: "max_power", Reads: []string{"max_power"}, Apply: s2MaxPower},
			{Name: "transmission", Reads: []string{s2Transmission}, Apply: s2Gearbox},
			{Name: "final_drive_ratio", Reads: []string{s2Transmission}, Apply: s2FinalDrive},
			{Name: "max_speed", Reads: []string{"gearbox_type", s2VMax, "fuel"}, Apply: s2MaxSpeed},
			{Name: "coupling_approval", Reads: []string{s2Remark56}, Apply: s2CouplingApproval},
			// emissions_group matches its keys by prefix
			{Name: "emissions_group", Apply: s2EmissionsGroup},
			{Name: "emissions_values", Reads: []string{"Emissions CO", "Emissions HC", "Emissions NOx", "Emissions HC NOx", "Emissions PM"}, Apply: s2EmissionValues},
		},
	}
}

func s2PoweredAxles(t *Table) error {
	v, ok := t.Get("powered_axles")
	if !ok {
		return nil
	}
	if v == "All-wheel drive" {
		t.Set("powered_axles", "2")
	} else {
		t.Set("powered_axles", "1")
	}
	return nil
}

var dimensionRemarks = []struct{ field, remark string }{
	{"length", "remarks_6_1"},
	{"width", "remarks_7_1"},
	{"height", "remarks_8"},
	{"rear_overhang", "remarks_11"},
	{"running_mass", "remarks_12"},
}

// s2Dimensions keeps the lower bound of "a - b" ranges and moves the upper
// bound into the matching remark field.
func s2Dimensions(t *Table) error {
	for _, d := range dimensionRemarks {
		v, ok := t.Get(d.field)
		if !ok {
			continue
		}
		parts := trimmedParts(v, "-")
		t.Set(d.field, parts[0])
		if len(parts) > 1 && parts[1] != "" {
			t.Set(d.remark, parts[1])
		} else {
			t.SetValue(d.remark, models.Missing)
		}
	}
	return nil
}

func s2AxleTrack(t *Table) error {
	a, okA := t.Get(s2Track1)
	b, okB := t.Get(s2Track2)
	if !okA || !okB {
		return nil
	}
	t.Set("axle_track", lastPart(a, "-")+"/"+lastPart(b, "-"))
	t.Delete(s2Track1, s2Track2)
	return nil
}

// s2RearOverhang reads the rear value out of "front / rear".
func s2RearOverhang(t *Table) error {
	v, ok := t.Get("rear_overhang")
	if !ok {
		return nil
	}
	rear, err := part(v, "/", 1)
	if err != nil {
		return fieldErr("rear_overhang", v, err)
	}
	t.Set("rear_overhang", rear)
	return nil
}

func s2MassDistribution(t *Table) error {
	a, okA := t.Get(s2Distribution1)
	b, okB := t.Get(s2Distribution2)
	if !okA || !okB {
		return nil
	}
	m1, err := maxOfPair(a, "-")
	if err != nil {
		return fieldErr("mass_distribution", a, err)
	}
	m2, err := maxOfPair(b, "-")
	if err != nil {
		return fieldErr("mass_distribution", b, err)
	}
	v := strconv.Itoa(m1) + "/" + strconv.Itoa(m2)
	t.Delete(s2Distribution1, s2Distribution2)
	t.Set("mass_distribution", v)
	t.Set("max_axle_mass", v)
	return nil
}

// s2TrailerMass pairs braked and unbraked masses per variant:
// "1500 / 1600" and "750 / 750" become "1500/750 - 1600/750".
func s2TrailerMass(t *Table) error {
	b, okB := t.Get(s2Braked)
	u, okU := t.Get(s2Unbraked)
	if !okB || !okU {
		return nil
	}
	braked, err := intPair(b, "/")
	if err != nil {
		return fieldErr("max_trailer_mass", b, err)
	}
	unbraked, err := intPair(u, "/")
	if err != nil {
		return fieldErr("max_trailer_mass", u, err)
	}
	if braked == [2]int{} && unbraked == [2]int{} {
		return nil
	}
	t.Delete(s2Braked, s2Unbraked)
	t.Set("max_trailer_mass",
		strconv.Itoa(braked[0])+"/"+strconv.Itoa(unbraked[0])+" - "+
			strconv.Itoa(braked[1])+"/"+strconv.Itoa(unbraked[1]))
	return nil
}

func s2CouplingLoad(t *Table) error {
	v, ok := t.Get(s2SupportLoad)
	if !ok {
		return nil
	}
	m, err := maxOfPair(v, "/")
	if err != nil {
		return fieldErr("max_coupling_load", v, err)
	}
	t.Delete(s2SupportLoad)
	t.Set("max_coupling_load", strconv.Itoa(m))
	return nil
}

func s2Engine(t *Table) error {
	v, ok := t.Get(s2BrandType)
	if !ok {
		return nil
	}
	parts := trimmedParts(v, "/")
	t.Set("engine_manufacturer", parts[0])
	t.Set("engine_code", strings.Join(parts[1:], " / "))
	t.Delete(s2BrandType)
	return nil
}

func s2WorkingPrinciple(t *Table) error {
	fuel, ok := t.Get("fuel")
	if !ok {
		return nil
	}
	switch fuel {
	case "Diesel / Electric", "Diesel":
		t.Set("working_principle", "Common Rail")
	case "Gasoline / Electric", "Gasoline":
		t.Set("working_principle", "Spark Ignition, 4-stroke")
	case "Electric":
		t.Set("working_principle", "BEV")
	}
	return nil
}

func s2DirectInjection(t *Table) error {
	v, ok := t.Get(s2DesignType)
	if !ok {
		return nil
	}
	parts := trimmedParts(v, "/")
	if len(parts) > 3 && strings.Contains(parts[3], "Reihe-Inj-T") {
		t.Set("direct_injection", "Yes")
	} else {
		t.Set("direct_injection", "No")
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func s2PureElectric(t *Table) error {
	if fuel, ok := t.Get("fuel"); ok {
		t.Set("pure_electric", yesNo(fuel == "Electric"))
	}
	return nil
}

func s2Hybrid(t *Table) error {
	if fuel, ok := t.Get("fuel"); ok {
		t.Set("hybrid", yesNo(strings.Contains(fuel, "Diesel / Electric") || strings.Contains(fuel, "Gasoline / Electric")))
	}
	return nil
}

// s2Cylinders reads count and layout from a design type such as
// "4-Takt / OHC / 4 / Reihe-Inj-T".
func s2Cylinders(t *Table) error {
	v, ok := t.Get(s2DesignType)
	if !ok {
		return nil
	}
	parts := trimmedParts(v, "/")
	out := "Unknown"
	switch {
	case len(parts) == 3:
		out = parts[2]
	case len(parts) > 3:
		layout := parts[3]
		switch {
		case strings.Contains(layout, "Reihe"):
			out = parts[2] + ", in line"
		case strings.Contains(layout, "V"):
			out = parts[2] + ", in V"
		case strings.Contains(layout, "W"):
			out = parts[2] + ", in W"
		}
	}
	t.Set("cylinders", out)
	return nil
}

// s2MaxPower turns "110.0 / 4000" into "110/4000".
func s2MaxPower(t *Table) error {
	v, ok := t.Get("max_power")
	if !ok {
		return nil
	}
	var nums [2]string
	for i := range nums {
		p, err := part(v, "/", i)
		if err != nil {
			return fieldErr("max_power", v, err)
		}
		f, err := parseFloat(p)
		if err != nil {
			return fieldErr("max_power", v, err)
		}
		nums[i] = compact(f)
	}
	t.Set("max_power", nums[0]+"/"+nums[1])
	return nil
}

var (
	dualClutchCode = regexp.MustCompile(`^m(\d+)a$`)
	automaticCode  = regexp.MustCompile(`^a(\d+)$`)
	manualCode     = regexp.MustCompile(`^m(\d+)$`)
)

// Gearbox is the classification of a COC transmission code.
type Gearbox struct {
	Clutch string
	Type   string
	Gears  string
}

// ClassifyTransmission maps codes like "m6", "a8", "m7a" or "s".
func ClassifyTransmission(code string) Gearbox {
	code = strings.ToLower(strings.TrimSpace(code))
	if m := dualClutchCode.FindStringSubmatch(code); m != nil {
		return Gearbox{Clutch: "Dual clutch", Type: "Automatic", Gears: trimLeadingZeros(m[1])}
	}
	if m := automaticCode.FindStringSubmatch(code); m != nil {
		return Gearbox{Clutch: "Single plate dry", Type: "Automatic", Gears: trimLeadingZeros(m[1])}
	}
	if m := manualCode.FindStringSubmatch(code); m != nil {
		return Gearbox{Clutch: "Single plate dry", Type: "Manual", Gears: trimLeadingZeros(m[1])}
	}
	if code == "s" {
		return Gearbox{Clutch: "Continuously Variable", Type: "Automatic", Gears: "1"}
	}
	return Gearbox{Clutch: "Unknown", Type: "Unknown"}
}

func trimLeadingZeros(digits string) string {
	n, err := strconv.Atoi(digits)
	if err != nil {
		return digits
	}
	return strconv.Itoa(n)
}

func s2Gearbox(t *Table) error {
	v, ok := t.Get(s2Transmission)
	if !ok {
		return nil
	}
	code, _ := part(v, "/", 0)
	g := ClassifyTransmission(code)
	t.Set("clutch_type", g.Clutch)
	t.Set("gearbox_type", g.Type)
	if g.Gears != "" {
		t.Set("gear", g.Gears)
	}
	return nil
}

// s2FinalDrive reads the axle ratio from "m6 / 3,94+..." and drops the
// scratch transmission row.
func s2FinalDrive(t *Table) error {
	v, ok := t.Get(s2Transmission)
	if !ok {
		return nil
	}
	ratio, err := part(v, "/", 1)
	if err != nil {
		return fieldErr("final_drive_ratio", v, err)
	}
	ratio = strings.TrimSpace(strings.Split(ratio, "+")[0])
	t.Set("final_drive_ratio", strings.ReplaceAll(ratio, ",", "."))
	t.Delete(s2Transmission)
	return nil
}

var (
	mechSpeed  = regexp.MustCompile(`(?i)mech\s*(\d+)`)
	automSpeed = regexp.MustCompile(`(?i)autom\s*(\d+)`)
)

func s2MaxSpeed(t *Table) error {
	gearbox, okG := t.Get("gearbox_type")
	vmax, okV := t.Get(s2VMax)
	if !okG || !okV {
		return nil
	}
	gearbox = strings.ToLower(strings.TrimSpace(gearbox))
	mech := mechSpeed.FindStringSubmatch(vmax)
	autom := automSpeed.FindStringSubmatch(vmax)

	switch {
	case gearbox == "manual" && mech != nil:
		t.Set("max_speed", mech[1])
	case gearbox == "automatic" && autom != nil:
		t.Set("max_speed", autom[1])
	default:
		fuel, _ := t.Get("fuel")
		if fuel != "Electric" {
			t.Set("max_speed", models.SentinelAbsent)
			return nil
		}
		if mech == nil {
			return fieldErr("max_speed", vmax, errors.New("no mechanical top speed for electric vehicle"))
		}
		t.Set("max_speed", mech[1])
	}
	return nil
}

func s2CouplingApproval(t *Table) error {
	remark, ok := t.Get(s2Remark56)
	if !ok {
		return nil
	}
	if marks := ExtractApprovalMarks(remark); marks != "" || !t.Has("coupling_approval") {
		t.Set("coupling_approval", marks)
	}
	return nil
}

var (
	emissionsPrefixRe = regexp.MustCompile(`72 Emissions -\s*`)
	emissionsSuffixRe = regexp.MustCompile(`\s*\(.*\)`)
)

// s2EmissionsGroup picks the emission figures that apply. Pages list one
// group, or two groups suffixed "(mec)" and "(autom)" of which the one
// matching the gearbox is used.
func s2EmissionsGroup(t *Table) error {
	groups := 0
	for _, k := range t.Keys() {
		if strings.Contains(k, emissionsTransmission) {
			groups++
		}
	}

	switch groups {
	case 1:
		for _, k := range t.Keys() {
			if !strings.HasPrefix(k, emissionsPrefix) || strings.Contains(k, "Transmission") {
				continue
			}
			kind := emissionsSuffixRe.ReplaceAllString(emissionsPrefixRe.ReplaceAllString(k, ""), "")
			t.SetValue("Emissions "+kind, t.Lookup(k))
		}
	case 2:
		gearbox, ok := t.Get("gearbox_type")
		if !ok {
			return nil
		}
		var suffix string
		switch strings.ToLower(strings.TrimSpace(gearbox)) {
		case "manual":
			suffix = "(mec)"
		case "automatic":
			suffix = "(autom)"
		default:
			return nil
		}
		for _, k := range t.Keys() {
			if !strings.HasPrefix(k, emissionsPrefix) || !strings.Contains(k, suffix) {
				continue
			}
			kind := strings.TrimSpace(strings.ReplaceAll(emissionsPrefixRe.ReplaceAllString(k, ""), suffix, ""))
			t.SetValue("Emissions "+kind, t.Lookup(k))
		}
	}
	return nil
}

var emissionFields = []struct{ from, to string }{
	{"Emissions CO", "co_emissions"},
	{"Emissions HC", "hc_emissions"},
	{"Emissions NOx", "nox_emissions"},
	{"Emissions HC NOx", "hc_nox_emissions"},
	{"Emissions PM", "particulates"},
}

// s2EmissionValues converts mg/km figures to g/km: four decimals, five for
// particulates, and the zero sentinel for 0.
func s2EmissionValues(t *Table) error {
	var errs []error
	for _, f := range emissionFields {
		if !t.Has(f.from) {
			continue
		}
		t.SetValue(f.to, t.Lookup(f.from))
		t.Delete(f.from)

		raw, ok := t.Get(f.to)
		if !ok {
			continue
		}
		n, err := parseFloat(raw)
		if err != nil {
			errs = append(errs, fieldErr(f.to, raw, err))
			continue
		}
		switch {
		case n == 0:
			t.Set(f.to, models.SentinelZero)
		case f.to == "particulates":
			t.Set(f.to, fixed(n/1000, 5))
		default:
			t.Set(f.to, fixed(n/1000, 4))
		}
	}
	return errors.Join(errs...)
}
