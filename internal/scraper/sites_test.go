package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const site1Page = `<html><body>
<article class="container">
  <h2 class="h3 mt-4">Algemeen</h2>
  <div class="list-group striped-rows">
    <div class="list-group-item"><div class="row">
      <div class="col-sm-6 one-line text-sm-bold">Merk</div>
      <div class="col-sm-6 one-line">TOYOTA</div>
    </div></div>
    <div class="list-group-item"><div class="row">
      <div class="col-sm-6 one-line text-sm-bold">Handelsbenaming</div>
      <div class="col-sm-6 one-line"> <span>COROLLA</span> </div>
    </div></div>
  </div>
  <h2 class="h3 mt-4">Gewichten</h2>
  <div class="list-group striped-rows">
    <div class="list-group-item"><div class="row">
      <div class="col-sm-6 one-line text-sm-bold">Massa rijklaar</div>
      <div class="col-sm-6 one-line">1.395 kg</div>
    </div></div>
    <div class="list-group-item"><div class="row">
      <div class="col-sm-6 one-line text-sm-bold">Zonder waarde</div>
    </div></div>
  </div>
</article>
<h2 class="h3 mt-4">Buiten artikel</h2>
</body></html>`

func TestParseSite1(t *testing.T) {
	got := ParseSite1(parse(t, site1Page))

	assert.Equal(t, []string{
		"Algemeen - Merk",
		"Algemeen - Handelsbenaming",
		"Gewichten - Massa rijklaar",
	}, keys(got))
	m := asMap(got)
	assert.Equal(t, "COROLLA", m["Algemeen - Handelsbenaming"])
	assert.Equal(t, "1.395 kg", m["Gewichten - Massa rijklaar"])
}

const site2Page = `<html><body>
<div class="row cocRow">
  <div class="col-sm-7 cocInfo">40 Length</div><div class="col-sm-5">4.500 mm</div>
  <div class="col-sm-7 cocInfo">47 Track Axis 1</div><div class="col-sm-5">1.560</div>
  <div class="col-sm-7 cocInfo">99 Not wanted</div><div class="col-sm-5">x</div>
</div>
<div class="row cocRow">
  <div class="col-sm-5 cocInfo">25 Brand / Type</div><div class="col-sm-7">BMW / B47D20A</div>
  <div class="col-sm-5 cocInfo">Fuel code</div><div class="col-sm-7">Diesel</div>
</div>
<div class="row"><label class="col-sm-2 cocInfo">Wet Weigh Kg</label><label class="col-sm-2">1.640</label></div>
<div class="row cocRow">
  <div class="col-sm-6 cocInfo">54 Axle guarantees</div>
  <div class="col-sm-1 cocInfo">v.</div><div class="col-sm-5">1.020</div>
  <div class="offset-sm-6 col-sm-1 cocInfo">b.</div><div class="col-sm-5">1.100</div>
</div>
<div class="row cocRow">
  <div class="col-sm-6 cocInfo">19 Vehicle VMax mech.</div><div class="col-sm-1 no-gutters">230</div>
  <div class="col-sm-2 cocInfo">autom.</div><div class="col-sm-3">225</div>
</div>
<div class="row cocRow">
  <div class="col-sm-2 cocInfo">72 Emissions</div>
  <div>Transmission</div><div>CO</div><div>HC</div><div>NOx</div><div>HC NOx</div><div>PM</div><div>PN</div><div>Standard</div>
  <div>Manual</div><div>120</div><div>30</div><div>40</div><div>70</div><div>0.5</div><div>1</div><div>Euro 6</div>
  <div>Automatic</div><div>110</div><div>25</div><div>35</div><div>60</div><div>0.4</div><div>1</div><div>Euro 6</div>
</div>
<div class="row cocRow">
  <div class="col-sm-5 cocInfo">18 Transmission/IA</div><div class="col-sm-7">m6 / 3,94</div>
  <div class="col-sm-5 cocInfo">Assignment</div><div class="col-sm-7">a8 / 2,81</div>
</div>
<div class="row"><div class="col-sm-12">Remarks</div></div>
<pre>12) Something else<br>56) Anhängevorrichtung Konformitätszeichen: e1*94/20*0123   weitere<br>continued<br>57) Other</pre>
</body></html>`

func TestParseSite2(t *testing.T) {
	got := ParseSite2(parse(t, site2Page), nil)
	m := asMap(got)

	assert.Equal(t, "4.500 mm", m["40 Length"])
	assert.Equal(t, "1.560", m["47 Track Axis 1"])
	assert.NotContains(t, m, "99 Not wanted")
	assert.Equal(t, "BMW / B47D20A", m["25 Brand / Type"])
	assert.Equal(t, "Diesel", m["Fuel code"])
	assert.Equal(t, "1.640", m["Wet Weigh Kg"])
	assert.Equal(t, "1.020", m["54 Axle guarantees v."])
	assert.Equal(t, "1.100", m["54 Axle guarantees b."])
	assert.Equal(t, "mech 230 - autom 225", m["19 Vehicle VMax"])
	assert.Equal(t, "e1*94/20*0123   weitere", m["Tow hitch"])
	assert.Equal(t, "Anhängevorrichtung Konformitätszeichen: e1*94/20*0123   weitere\ncontinued", m["Remark 56"])
	assert.Equal(t, "m6 / 3,94", m["18 Transmission/IA"])

	assert.Equal(t, "Manual", m["72 Emissions - Transmission (mec)"])
	assert.Equal(t, "120", m["72 Emissions - CO (mec)"])
	assert.Equal(t, "Automatic", m["72 Emissions - Transmission (autom)"])
	assert.Equal(t, "0.4", m["72 Emissions - PM (autom)"])

	ks := keys(got)
	assert.Equal(t, "40 Length", ks[0])
	assert.Equal(t, "18 Transmission/IA", ks[len(ks)-1])
}

func TestParseSite2TransmissionChoice(t *testing.T) {
	manual, automatic := true, false
	cases := []struct {
		name   string
		choice *bool
		want   string
	}{
		{"unspecified", nil, "m6 / 3,94"},
		{"manual", &manual, "m6 / 3,94"},
		{"automatic", &automatic, "a8 / 2,81"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := asMap(ParseSite2(parse(t, site2Page), tc.choice))
			assert.Equal(t, tc.want, m["18 Transmission/IA"])
		})
	}
}

func TestParseSite2SingleEmissionGroup(t *testing.T) {
	page := `<div class="row cocRow">
  <div class="col-sm-2 cocInfo">72 Emissions</div>
  <div>Transmission</div><div>CO</div><div>HC</div><div>NOx</div><div>HC NOx</div><div>PM</div><div>PN</div><div>Standard</div>
  <div>-</div><div>120</div><div>30</div><div>40</div><div>70</div><div>0.5</div><div>1</div><div>Euro 6</div>
</div>`
	m := asMap(ParseSite2(parse(t, page), nil))
	assert.Equal(t, "120", m["72 Emissions - CO"])
	assert.Equal(t, "-", m["72 Emissions - Transmission"])
}

func TestParseSite2RaggedEmissionsIgnored(t *testing.T) {
	page := `<div class="row cocRow">
  <div>72 Emissions</div>
  <div>Transmission</div><div>CO</div><div>HC</div><div>NOx</div><div>HC NOx</div><div>PM</div><div>PN</div><div>Standard</div>
  <div>Manual</div><div>120</div>
</div>`
	got := ParseSite2(parse(t, page), nil)
	assert.Empty(t, got)
}

func TestNumberedRemark(t *testing.T) {
	lines := []string{"1) first", "56) Genehmigungsnummer e1*00", "  more", "57) next"}
	got, ok := numberedRemark(lines, "56")
	require.True(t, ok)
	assert.Equal(t, "Genehmigungsnummer e1*00\n  more", got)

	_, ok = numberedRemark(lines, "99")
	assert.False(t, ok)
}

const site3Page = `<html><body>
<table class="cardetailsout car2">
  <tr><th>Body type</th><td>Hatchback</td></tr>
  <tr><th>Power steering</th><td>Electric Steering</td></tr>
  <tr><th>Assisting systems</th><td>ABS (Anti-lock braking system)<br><span>ESP</span></td></tr>
  <tr><th>Front suspension</th><td>McPherson - coil spring</td></tr>
  <tr><th>Engine</th><td>ignored</td></tr>
  <tr><th colspan="2">Section only</th></tr>
</table>
<table class="cardetailsout"><tr><th>Doors</th><td>5</td></tr></table>
</body></html>`

func TestParseSite3(t *testing.T) {
	got := ParseSite3(parse(t, site3Page))

	assert.Equal(t, []string{
		"Type of body",
		"Steering, method of assistance",
		"Assisting systems",
		"Front suspension",
	}, keys(got))
	m := asMap(got)
	assert.Equal(t, "Hatchback", m["Type of body"])
	assert.Equal(t, "ABS (Anti-lock braking system)", m["Assisting systems"])
	assert.Equal(t, "McPherson - coil spring", m["Front suspension"])
}

func TestParseSite3NoTable(t *testing.T) {
	assert.Nil(t, ParseSite3(parse(t, "<p>nothing here</p>")))
}
