package transform

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homologation/internal/registry"
	"homologation/pkg/models"
)

func TestSite1CoversRegistryInOrder(t *testing.T) {
	res, err := NewSite1(nil).Transform(raw("Algemeen - Merk", "toyota", "Eigenschappen - Aantal wielen", "4"))
	require.NoError(t, err)

	require.Equal(t, registry.Len(), res.Table.Len())
	for i, k := range registry.OrderedKeys() {
		assert.Equal(t, k, res.Table.Rows[i].Key)
	}

	got := res.Table.Map()
	assert.Equal(t, "TOYOTA", got["make"])
	assert.Equal(t, "toyota", got["engine_manufacturer"])
	assert.Equal(t, "2/4", got["axles"])
	assert.Equal(t, models.SentinelMissing, got["wheelbase"])
	assert.NotContains(t, got, "wheel")
}

func TestSite1Composites(t *testing.T) {
	got, res := transformMap(t, NewSite1(nil), raw(
		"As #1 - Spoorbreedte", "1200",
		"As #2 - Spoorbreedte", "1250",
		"As #1 - Technisch limiet", "1.100 kg",
		"As #2 - Technisch limiet", "1.050 kg",
		"Trekkracht - Maximaal trekgewicht geremd", "1.500 kg",
		"Trekkracht - Maximaal trekgewicht ongeremd", "750 kg",
		"Brandstof #1 - Geluidsniveau stationair", "80 dB(A)",
		"Brandstof #1 - Geluidsniveau toerental", "3000",
		"Brandstof #1 - Geluidsniveau rijdend", "70 dB(A)",
	))
	assert.Empty(t, res.Issues)

	assert.Equal(t, "1200/1250", got["axle_track"])
	assert.Equal(t, "1100/1050", got["mass_distribution"])
	assert.Equal(t, "1100/1050", got["max_axle_mass"])
	assert.Equal(t, "1500/750", got["max_trailer_mass"])
	assert.Equal(t, "80 at 3000", got["noise_stationary"])
	assert.Equal(t, "70", got["noise_drive_by"])
}

func TestSite1AxleTrackFromCentimetres(t *testing.T) {
	got, _ := transformMap(t, NewSite1(nil), raw(
		"As #1 - Spoorbreedte", "152 cm",
		"As #2 - Spoorbreedte", "153 cm",
	))
	assert.Equal(t, "1520/1530", got["axle_track"])
}

func TestSite1CompositeNeedsBothInputs(t *testing.T) {
	got, _ := transformMap(t, NewSite1(nil), raw("As #1 - Spoorbreedte", "1200"))
	assert.Equal(t, models.SentinelMissing, got["axle_track"])
}

func TestSite1EmissionsStandard(t *testing.T) {
	cases := []struct {
		op1, op2 string
		want     string
	}{
		{"6", "", "EURO 6"},
		{"Z", "6", "EURO 6"},
		{"Z", "Z", "EURO Z"},
		{"6d", "", "EURO 6d"},
		{"Z", "6d-TEMP", "EURO 6d-TEMP"},
		{" 5 ", "6", "EURO 5"},
		{"Z", "", "EURO Z"},
	}
	for _, tc := range cases {
		in := models.RawTable{}
		if tc.op1 != "" {
			in = append(in, models.Raw("Brandstof #1 - Emissieklasse", tc.op1))
		}
		if tc.op2 != "" {
			in = append(in, models.Raw("Brandstof #2 - Emissieklasse", tc.op2))
		}
		got, _ := transformMap(t, NewSite1(nil), in)
		assert.Equal(t, tc.want, got["emissions_standard"], "%q/%q", tc.op1, tc.op2)
	}

	got, _ := transformMap(t, NewSite1(nil), nil)
	assert.Equal(t, "EURO Z", got["emissions_standard"])
}

func TestSite1Particulates(t *testing.T) {
	cases := []struct {
		name string
		in   models.RawTable
		want string
	}{
		{"one significant digit", raw("Brandstof #1 - Uitstoot deeltjes WLTP", "5 g/km"), "0.00050"},
		{"one significant digit below unit", raw("Brandstof #1 - Uitstoot deeltjes WLTP", "0.005 g/km"), "0.00000"},
		{"two significant digits", raw("Brandstof #1 - Uitstoot deeltjes WLTP", "12 g/km"), "0.01200"},
		{"trailing zero counts", raw("Brandstof #1 - Uitstoot deeltjes WLTP", "10 g/km"), "0.01000"},
		{"two digits without zero", raw("Brandstof #1 - Uitstoot deeltjes WLTP", "11 g/km"), "0.01100"},
		{"decimal comma", raw("Brandstof #1 - Uitstoot deeltjes WLTP", "1,5 g/km"), "0.00150"},
		{"zero", raw("Brandstof #1 - Uitstoot deeltjes WLTP", "0 g/km"), models.SentinelZero},
		{"absent under EURO Z", raw("Brandstof #1 - Emissieklasse", "Z"), models.SentinelZero},
		{"absent under numeric class", raw("Brandstof #1 - Emissieklasse", "6"), "0.00001"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, _ := transformMap(t, NewSite1(nil), tc.in)
			assert.Equal(t, tc.want, got["particulates"])
		})
	}
}

func TestSite1ParticulatesMalformedKeepsValue(t *testing.T) {
	got, res := transformMap(t, NewSite1(nil), raw("Brandstof #1 - Uitstoot deeltjes WLTP", "n.b."))
	assert.Equal(t, "n.b.", got["particulates"])
	require.Len(t, res.Issues, 1)
	assert.Equal(t, "particulates", res.Issues[0].Field)
	assert.Equal(t, Site1, res.Issues[0].Source)
	assert.Equal(t, "particulates", res.Issues[0].Rule)

	var fe *FieldDerivationError
	assert.True(t, errors.As(error(res.Issues[0]), &fe))
}

func TestSite1ConsumptionCycles(t *testing.T) {
	got, res := transformMap(t, NewSite1(nil), raw(
		"Brandstof #1 - CO2-uitstoot gecombineerd NEDC", "120.7 g/km",
		"Brandstof #1 - Brandstofverbruik gecombineerd NEDC", "5,6 liter/100km",
		"Brandstof #1 - Brandstofverbruik in stad NEDC", "7",
		"Brandstof #1 - Brandstofverbruik op snelweg NEDC", "4.4",
		"Brandstof #1 - CO2-uitstoot gecombineerd WLTP", "130 g/km",
		"Brandstof #1 - Brandstofverbruik gecombineerd WLTP", "5,8 liter/100km",
	))
	assert.Empty(t, res.Issues)

	assert.Equal(t, "120", got["co2_combined_nedc"])
	assert.Equal(t, "132", got["co2_urban_nedc"])
	assert.Equal(t, "108", got["co2_extra_urban_nedc"])

	assert.Equal(t, "5.6", got["fuel_combined_nedc"])
	assert.Equal(t, "7.0", got["fuel_urban_nedc"])
	assert.Equal(t, "4.4", got["fuel_extra_urban_nedc"])

	assert.Equal(t, "130", got["co2_combined_wltp"])
	assert.Equal(t, "136", got["co2_low_wltp"])
	assert.Equal(t, "127", got["co2_medium_wltp"])
	assert.Equal(t, "124", got["co2_high_wltp"])
	assert.Equal(t, "133", got["co2_maximum_value_wltp"])

	assert.Equal(t, "5.8", got["fuel_combined_wltp"])
	assert.Equal(t, "6.4", got["fuel_low_wltp"])
	assert.Equal(t, "5.5", got["fuel_medium_wltp"])
	assert.Equal(t, "5.2", got["fuel_high_wltp"])
	assert.Equal(t, "6.1", got["fuel_maximum_value_wltp"])
}

func TestSite1BadConsumptionDegradesPerField(t *testing.T) {
	got, res := transformMap(t, NewSite1(nil), raw(
		"Brandstof #1 - Brandstofverbruik gecombineerd NEDC", "onbekend",
		"Brandstof #1 - Brandstofverbruik in stad NEDC", "7,1 liter/100km",
		"Brandstof #1 - Brandstofverbruik gecombineerd WLTP", "n/a",
		"Algemeen - Merk", "skoda",
	))

	assert.ElementsMatch(t, []string{"fuel_combined_nedc", "fuel_combined_wltp"}, issueFields(res))
	assert.Equal(t, "onbekend", got["fuel_combined_nedc"])
	assert.Equal(t, "7.1", got["fuel_urban_nedc"])
	assert.Equal(t, "n/a", got["fuel_combined_wltp"])
	assert.Equal(t, models.SentinelMissing, got["fuel_low_wltp"])
	assert.Equal(t, "SKODA", got["make"])
}

func TestSite1NonDecimalCO2KeepsValue(t *testing.T) {
	for _, in := range []string{"NaN g/km", "Inf g/km", "0x1p4 g/km", "1e3 g/km"} {
		t.Run(in, func(t *testing.T) {
			got, res := transformMap(t, NewSite1(nil), raw("Brandstof #1 - CO2-uitstoot gecombineerd WLTP", in))
			assert.Equal(t, in, got["co2_combined_wltp"])
			assert.Equal(t, models.SentinelMissing, got["co2_low_wltp"])
			assert.Equal(t, models.SentinelMissing, got["co2_maximum_value_wltp"])
			require.Equal(t, []string{"co2_combined_wltp"}, issueFields(res))
			assert.ErrorIs(t, res.Issues[0], errNotDecimal)
		})
	}
}

func TestSite1HugeCO2KeepsValue(t *testing.T) {
	got, res := transformMap(t, NewSite1(nil), raw("Brandstof #1 - CO2-uitstoot gecombineerd WLTP", "99999999999 g/km"))
	assert.Equal(t, "99999999999 g/km", got["co2_combined_wltp"])
	require.Equal(t, []string{"co2_combined_wltp"}, issueFields(res))
	assert.ErrorIs(t, res.Issues[0], errOutOfRange)
}

func TestSite1DecimalPowerConsumption(t *testing.T) {
	got, res := transformMap(t, NewSite1(nil), raw("Brandstof #1 - Hybrideverbruik WLTP", "15.5 Wh/km"))
	assert.Equal(t, "15.5", got["power_consumption"])
	assert.Empty(t, res.Issues)
}

func TestSite1TextNormalization(t *testing.T) {
	got, _ := transformMap(t, NewSite1(nil), raw(
		"Brandstof #1 - Milieuklasse licht", "euro 6 ag",
		"Brandstof #1 - Nominaal continu elektrisch vermogen", "85,0 kW (116 pk)",
		"Brandstof #1 - Roetuitstoot NEDC", "0,5 g/km",
		"Brandstof #1 - Brandstof\t", "Benzine",
		"Motor - Cilinderinhoud", "1.598 cm³",
		"Brandstof #1 - Hybrideverbruik WLTP", "162 Wh/km",
	))
	assert.Equal(t, "EURO 6 AG", got["emissions_exhaust"])
	assert.Equal(t, "85.0 kW", got["remark_electric_1"])
	assert.Equal(t, "0.50", got["smoke_absorption"])
	assert.Equal(t, "Benzine", got["fuel"])
	assert.Equal(t, "1598", got["capacity"])
	assert.Equal(t, "162", got["power_consumption"])
}

func TestSite1NullAndDuplicateKeys(t *testing.T) {
	in := models.RawTable{
		models.Raw("Algemeen - Type", "first"),
		models.Raw("Algemeen - Type", "second"),
		models.RawNull("Algemeen - Variant"),
	}
	got, _ := transformMap(t, NewSite1(nil), in)
	assert.Equal(t, "first", got["type"])
	assert.Equal(t, models.SentinelMissing, got["variant"])
}

func TestSite1RejectsEmptyKey(t *testing.T) {
	_, err := NewSite1(nil).Transform(raw(" ", "x"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidRecord)
}

func TestSite1IsDeterministic(t *testing.T) {
	in := raw(
		"Algemeen - Merk", "volkswagen",
		"Brandstof #1 - Uitstoot deeltjes WLTP", "5 g/km",
		"Brandstof #1 - CO2-uitstoot gecombineerd WLTP", "130 g/km",
		"As #1 - Spoorbreedte", "1200",
		"As #2 - Spoorbreedte", "1250",
	)
	tr := NewSite1(nil)
	a, err := tr.Transform(in)
	require.NoError(t, err)
	b, err := tr.Transform(in)
	require.NoError(t, err)
	assert.Equal(t, a.Table.Rows, b.Table.Rows)
}
