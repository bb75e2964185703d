package scraper

import (
	"context"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	nethtml "golang.org/x/net/html"

	"homologation/pkg/models"
)

const site2Name = "site2"

// labelConfig describes one family of label/value cells on the COC page:
// the label cell's exact class, the class of the value cell that follows it,
// and the labels worth keeping.
type labelConfig struct {
	tag         string
	labelClass  string
	valueClass  string
	identifiers []string
}

var site2Labels = []labelConfig{
	{
		tag:        "div",
		labelClass: "col-sm-7 cocInfo",
		valueClass: "col-sm-5",
		identifiers: []string{
			"40 Length", "41 Width", "42 Height", "44 Distance axis 1-2",
			"43 Überhange f/b", "52 Netweight", "55 Roof load",
			"57 braked", "58 unbraked", "67 Support load",
			"47 Track Axis 1", "48 Track Axis 2",
		},
	},
	{
		tag:        "div",
		labelClass: "col-sm-5 cocInfo",
		valueClass: "col-sm-7",
		identifiers: []string{
			"14 Axles/Wheels", "25 Brand / Type", "27 Capacity:", "26 Design type",
			"28 Power / n", "16 Final drive", "Fuel code",
		},
	},
	{
		tag:         "label",
		labelClass:  "col-sm-2 cocInfo",
		valueClass:  "col-sm-2",
		identifiers: []string{"Wet Weigh Kg"},
	},
}

var (
	towHitchRe = regexp.MustCompile(`(?s)tszeichen:(.*?)(?:<br\s*/?>|\z)`)
	remarkNoRe = regexp.MustCompile(`^\s*(\d+)\)`)
)

// Site2 reads certificate-of-conformity pages. TransmissionManual selects
// the first (true) or the "Assignment" (false) transmission block.
type Site2 struct {
	Fetcher            *Fetcher
	TransmissionManual *bool
}

func (s *Site2) Name() string { return site2Name }

func (s *Site2) Scrape(ctx context.Context, url string) (models.RawTable, error) {
	doc, err := s.Fetcher.Document(ctx, url)
	if err != nil {
		return nil, err
	}
	return ParseSite2(doc, s.TransmissionManual), nil
}

// ParseSite2 extracts the COC fields from a parsed page.
func ParseSite2(doc *goquery.Document, transmissionManual *bool) models.RawTable {
	var out models.RawTable
	for _, cfg := range site2Labels {
		out = append(out, s2Labelled(doc, cfg)...)
	}
	out = append(out, s2AxleGuarantees(doc)...)
	out = append(out, s2Remarks(doc)...)
	out = append(out, s2VMax(doc)...)
	out = append(out, s2Emissions(doc)...)
	out = append(out, s2Transmission(doc, transmissionManual)...)
	return out
}

func s2Labelled(doc *goquery.Document, cfg labelConfig) models.RawTable {
	var out models.RawTable
	valueCell := elem(cfg.tag, cfg.valueClass)
	for _, label := range findAll(doc, elem(cfg.tag, cfg.labelClass)) {
		text := strippedText(label)
		if !containsAny(text, cfg.identifiers) {
			continue
		}
		if v := findNext(label, valueCell); v != nil {
			out = append(out, models.Raw(text, strippedText(v)))
		}
	}
	return out
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func s2AxleGuarantees(doc *goquery.Document) models.RawTable {
	main := findFirst(doc, elem("div", "col-sm-6 cocInfo").withString(equals("54 Axle guarantees")))
	if main == nil {
		return nil
	}
	var out models.RawTable
	value := elem("div", "col-sm-5")
	if v := findNext(main, elem("div", "col-sm-1 cocInfo").withString(equals("v."))); v != nil {
		if cell := findNext(v, value); cell != nil {
			out = append(out, models.Raw("54 Axle guarantees v.", strippedText(cell)))
		}
	}
	if b := findNext(main, elem("div", "offset-sm-6 col-sm-1 cocInfo").withString(equals("b."))); b != nil {
		if cell := findNext(b, value); cell != nil {
			out = append(out, models.Raw("54 Axle guarantees b.", strippedText(cell)))
		}
	}
	return out
}

// s2Remarks reads the free-text remarks block: the conformity mark after
// "...tszeichen:" becomes "Tow hitch", and remark 56 is kept whole for the
// approval-mark extraction downstream.
func s2Remarks(doc *goquery.Document) models.RawTable {
	header := findFirst(doc, elem("div", "").withString(equals("Remarks")))
	pre := findNext(header, elem("pre", ""))
	if pre == nil {
		return nil
	}

	var out models.RawTable
	inner, err := goquery.NewDocumentFromNode(pre).Html()
	if err == nil {
		if m := towHitchRe.FindStringSubmatch(inner); m != nil {
			out = append(out, models.Raw("Tow hitch", strings.TrimSpace(html.UnescapeString(m[1]))))
		}
	}
	if remark, ok := numberedRemark(preLines(pre), "56"); ok {
		out = append(out, models.Raw("Remark 56", remark))
	}
	return out
}

// preLines renders a <pre> block as text with <br> turned into line breaks.
func preLines(pre *nethtml.Node) []string {
	var b strings.Builder
	var walk func(*nethtml.Node)
	walk = func(n *nethtml.Node) {
		switch {
		case n.Type == nethtml.TextNode:
			b.WriteString(n.Data)
		case n.Type == nethtml.ElementNode && n.Data == "br":
			b.WriteByte('\n')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(pre)
	return strings.Split(b.String(), "\n")
}

// numberedRemark returns the remark "<no>) ..." and its continuation lines,
// up to the next numbered remark.
func numberedRemark(lines []string, no string) (string, bool) {
	var kept []string
	in := false
	for _, line := range lines {
		if m := remarkNoRe.FindStringSubmatch(line); m != nil {
			if in {
				break
			}
			if m[1] == no {
				in = true
				line = strings.TrimSpace(line[len(m[0]):])
			}
		}
		if in {
			kept = append(kept, line)
		}
	}
	if !in {
		return "", false
	}
	return strings.TrimSpace(strings.Join(kept, "\n")), true
}

func s2VMax(doc *goquery.Document) models.RawTable {
	label := findFirst(doc, elem("div", "col-sm-6 cocInfo").withString(contains("19 Vehicle VMax mech.")))
	if label == nil {
		return nil
	}
	mech := strippedText(findNext(label, elem("div", "col-sm-1 no-gutters")))

	var autom string
	if a := findNext(label, elem("div", "col-sm-2 cocInfo").withString(contains("autom."))); a != nil {
		autom = strippedText(findNext(a, elem("div", "col-sm-3")))
	}
	return models.RawTable{models.Raw("19 Vehicle VMax", fmt.Sprintf("mech %s - autom %s", mech, autom))}
}

const emissionHeaders = 8

// s2Emissions reads the "72 Emissions" row: the title cell, eight column
// headers, then one or more groups of eight values. With two groups each
// key is suffixed by the group's gearbox, taken from its first cell.
func s2Emissions(doc *goquery.Document) models.RawTable {
	title := findFirst(doc, elem("div", "").withString(equals("72 Emissions")))
	if title == nil {
		return nil
	}
	var row *nethtml.Node
	for p := title.Parent; p != nil; p = p.Parent {
		if elem("div", "row cocRow")(p) {
			row = p
			break
		}
	}
	if row == nil {
		return nil
	}

	var cells []*nethtml.Node
	idx := 0
	for c := row.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == nethtml.ElementNode && c.Data == "div" {
			if c == title {
				idx = len(cells)
			}
			cells = append(cells, c)
		}
	}

	end := min(idx+1+emissionHeaders, len(cells))
	var headers []string
	for _, c := range cells[min(idx+1, len(cells)):end] {
		headers = append(headers, strippedText(c))
	}
	data := cells[end:]
	if len(headers) == 0 || len(data)%len(headers) != 0 {
		return nil
	}

	var out models.RawTable
	groups := len(data) / len(headers)
	for g := 0; g < groups; g++ {
		values := make([]string, len(headers))
		for i := range headers {
			values[i] = strippedText(data[g*len(headers)+i])
		}
		suffix := ""
		if groups == 2 {
			switch first := strings.ToLower(values[0]); {
			case strings.HasPrefix(first, "m"):
				suffix = " (mec)"
			case strings.HasPrefix(first, "a"):
				suffix = " (autom)"
			}
		}
		for i, h := range headers {
			out = append(out, models.Raw("72 Emissions - "+h+suffix, values[i]))
		}
	}
	return out
}

func s2Transmission(doc *goquery.Document, manual *bool) models.RawTable {
	header := findFirst(doc, elem("div", "col-sm-5 cocInfo").withString(contains("18 Transmission/IA")))
	if header == nil {
		return nil
	}
	valueCell := elem("div", "col-sm-7")

	var first, second string
	if cell := findNext(header, valueCell); cell != nil {
		first = strippedText(cell)
		if assignment := findNext(cell, elem("div", "col-sm-5 cocInfo").withString(contains("Assignment"))); assignment != nil {
			second = strippedText(findNext(assignment, valueCell))
		}
	}

	value := first
	if manual != nil && !*manual {
		value = second
	}
	return models.RawTable{models.Raw("18 Transmission/IA", value)}
}
