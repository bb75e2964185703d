package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homologation/internal/registry"
	"homologation/internal/transform"
	"homologation/pkg/models"
)

// table builds a total canonical table with the given present values.
func table(values map[string]string) *models.CanonicalTable {
	keys := registry.OrderedKeys()
	rows := make([]models.CanonicalRecord, 0, len(keys))
	for _, k := range keys {
		v := models.Missing
		if s, ok := values[k]; ok {
			v = models.Present(s)
		}
		rows = append(rows, models.CanonicalRecord{Key: k, Value: v})
	}
	return models.NewCanonicalTable(rows)
}

func final(t *testing.T, m models.MergedTable, key string) string {
	t.Helper()
	v, ok := m.Final(key)
	require.True(t, ok, "missing row %q", key)
	return v
}

func TestMergeCoversRegistryInOrder(t *testing.T) {
	inputs := []Sources{
		{},
		{table(nil), nil, nil},
		{nil, table(map[string]string{"make": "BMW"}), nil},
		{table(nil), table(nil), table(nil)},
	}
	for _, in := range inputs {
		m := Merge(in)
		require.Len(t, m, registry.Len())
		for i, k := range registry.OrderedKeys() {
			assert.Equal(t, k, m[i].Key)
		}
	}
}

func TestMergeAllAbsentIsSentinel(t *testing.T) {
	for _, r := range Merge(Sources{}) {
		assert.Equal(t, models.SentinelAbsent, r.Final, r.Key)
		assert.Equal(t, models.SentinelAbsent, r.Source1)
		assert.Equal(t, models.SentinelAbsent, r.Source2)
		assert.Equal(t, models.SentinelAbsent, r.Source3)
	}
}

func TestMergeAllMissingIsSentinel(t *testing.T) {
	for _, r := range Merge(Sources{table(nil), table(nil), table(nil)}) {
		assert.Equal(t, models.SentinelAbsent, r.Final, r.Key)
		assert.Equal(t, models.SentinelMissing, r.Source2)
	}
}

func TestMergePriority(t *testing.T) {
	s1 := table(map[string]string{"length": "4500", "width": "1800", "height": "1450", "max_speed": "200"})
	s2 := table(map[string]string{"length": "4520", "max_speed": models.SentinelAbsent})
	s3 := table(map[string]string{"length": "4510", "width": "1790", "height": "1440", "body_type": "SUV"})

	m := Merge(Sources{s1, s2, s3})
	assert.Equal(t, "4520", final(t, m, "length"), "site 2 wins")
	assert.Equal(t, "1800", final(t, m, "width"), "site 1 before site 3")
	assert.Equal(t, "SUV", final(t, m, "body_type"), "site 3 as last resort")
	assert.Equal(t, "200", final(t, m, "max_speed"), "dash is not a value")
	assert.Equal(t, models.SentinelAbsent, final(t, m, "wheelbase"))

	row := m[registry.Position("length")]
	assert.Equal(t, "4500", row.Source1)
	assert.Equal(t, "4520", row.Source2)
	assert.Equal(t, "4510", row.Source3)
}

func TestMergeToleratesMissingSources(t *testing.T) {
	m := Merge(Sources{nil, nil, table(map[string]string{"doors_config": "5"})})
	assert.Equal(t, "5", final(t, m, "doors_config"))
	row := m[registry.Position("doors_config")]
	assert.Equal(t, models.SentinelAbsent, row.Source1)
	assert.Equal(t, models.SentinelAbsent, row.Source2)
}

func TestFuelOverride(t *testing.T) {
	cases := []struct {
		name       string
		s1, s2, s3 string
		want       string
	}{
		{"diesel hybrid", "", "Diesel / Electric", "Mild hybrid", "Diesel/Electric"},
		{"diesel plug-in", "", "Diesel / Electric", "Plug-in hybrid", "Diesel/ElectricRange"},
		{"petrol hybrid", "", "Gasoline / Electric", "", "Petrol/Electric"},
		{"petrol phev", "", "Gasoline / Electric", "PHEV", "Petrol/ElectricRange"},
		{"petrol range extender", "", "Gasoline / Electric", "Range extender", "Petrol/ElectricRange"},
		{"diesel", "", "Diesel", "", "Diesel"},
		{"gasoline", "Benzine", "Gasoline", "", "Petrol"},
		{"electric", "", "Electric", "BEV", "Electric"},
		{"unknown code verbatim", "", "Hydrogen", "", "Hydrogen"},
		{"no site 2 uses priority", "Benzine", "", "Plug-in hybrid", "Benzine"},
		{"only site 3", "", "", "Plug-in hybrid", "Plug-in hybrid"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var src Sources
			for i, v := range []string{tc.s1, tc.s2, tc.s3} {
				if v != "" {
					src[i] = table(map[string]string{"fuel": v})
				}
			}
			assert.Equal(t, tc.want, final(t, Merge(src), "fuel"))
		})
	}
}

func TestPetrolForcesZeroParticulates(t *testing.T) {
	s2 := table(map[string]string{"fuel": "Gasoline", "particulates": "0.00045"})
	m := Merge(Sources{nil, s2, nil})
	assert.Equal(t, models.SentinelZero, final(t, m, "particulates"))

	s2 = table(map[string]string{"fuel": "Diesel", "particulates": "0.00045"})
	m = Merge(Sources{nil, s2, nil})
	assert.Equal(t, "0.00045", final(t, m, "particulates"))

	s1 := table(map[string]string{"fuel": "Benzine", "particulates": "0.00050"})
	m = Merge(Sources{s1, nil, nil})
	assert.Equal(t, models.SentinelZero, final(t, m, "particulates"))
}

func TestEarlyEuroTierReformatsEmissions(t *testing.T) {
	s1 := table(map[string]string{"emissions_standard": "EURO 4"})
	s2 := table(map[string]string{
		"co_emissions":     "0.2500",
		"hc_emissions":     models.SentinelZero,
		"nox_emissions":    "0.0604",
		"hc_nox_emissions": "n/a",
	})
	m := Merge(Sources{s1, s2, nil})
	assert.Equal(t, "0.250", final(t, m, "co_emissions"))
	assert.Equal(t, models.SentinelZero, final(t, m, "hc_emissions"))
	assert.Equal(t, "0.060", final(t, m, "nox_emissions"))
	assert.Equal(t, "n/a", final(t, m, "hc_nox_emissions"))

	s1 = table(map[string]string{"emissions_standard": "EURO 6"})
	m = Merge(Sources{s1, s2, nil})
	assert.Equal(t, "0.2500", final(t, m, "co_emissions"))
}

func TestSingleFieldSourcesEndToEnd(t *testing.T) {
	in := models.RawTable{models.Raw("Algemeen - Merk", "toyota")}

	var src Sources
	for i, name := range []string{transform.Site1, transform.Site2, transform.Site3} {
		tr, err := transform.ForSource(name, nil)
		require.NoError(t, err)
		res, err := tr.Transform(in)
		require.NoError(t, err)
		src[i] = res.Table
	}

	m := Merge(src)
	require.Len(t, m, registry.Len())
	assert.Equal(t, "TOYOTA", final(t, m, "make"))
	assert.Equal(t, "toyota", final(t, m, "engine_manufacturer"))
	assert.Equal(t, "EURO Z", final(t, m, "emissions_standard"))

	derived := map[string]bool{
		"make": true, "engine_manufacturer": true, "emissions_standard": true,
		"particulates": true, "braking_system_1": true, "braking_system_2": true,
	}
	for _, r := range m {
		if !derived[r.Key] {
			assert.Equal(t, models.SentinelAbsent, r.Final, r.Key)
		}
	}
}

func TestMergeIsDeterministic(t *testing.T) {
	src := Sources{
		table(map[string]string{"make": "KIA", "fuel": "Benzine"}),
		table(map[string]string{"fuel": "Gasoline / Electric", "co_emissions": "0.1000"}),
		table(map[string]string{"fuel": "Plug-in hybrid"}),
	}
	assert.Equal(t, Merge(src), Merge(src))
}
