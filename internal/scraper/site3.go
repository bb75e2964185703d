package scraper

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"homologation/pkg/models"
)

const site3Name = "site3"

// site3Headers maps the spec-table headers worth keeping to the labels the
// transform stage expects.
var site3Headers = map[string]string{
	"Power steering":          "Steering, method of assistance",
	"Body type":               "Type of body",
	"Doors":                   "Number and configuration of doors",
	"Seats":                   "Number and position of seats",
	"Front suspension":        "Front suspension",
	"Rear suspension":         "Rear suspension",
	"Front brakes":            "Front brakes",
	"Rear brakes":             "Rear brakes",
	"Assisting systems":       "Assisting systems",
	"Powertrain Architecture": "Powertrain architecture",
}

// Site3 reads the technical-specification database pages.
type Site3 struct {
	Fetcher *Fetcher
}

func (s *Site3) Name() string { return site3Name }

func (s *Site3) Scrape(ctx context.Context, url string) (models.RawTable, error) {
	doc, err := s.Fetcher.Document(ctx, url)
	if err != nil {
		return nil, err
	}
	return ParseSite3(doc), nil
}

// ParseSite3 extracts the mapped rows of the details table.
func ParseSite3(doc *goquery.Document) models.RawTable {
	table := findFirst(doc, elem("table", "cardetailsout car2"))
	if table == nil {
		return nil
	}
	var out models.RawTable
	for _, row := range within(table, elem("tr", "")) {
		th := firstWithin(row, elem("th", ""))
		td := firstWithin(row, elem("td", ""))
		if th == nil || td == nil {
			continue
		}
		key, ok := site3Headers[strippedText(th)]
		if !ok {
			continue
		}
		value := strippedText(td)
		if key == "Assisting systems" {
			if s, ok := leadingText(td); ok {
				value = strings.TrimSpace(s)
			}
		}
		out = append(out, models.Raw(key, value))
	}
	return out
}

// leadingText returns the first text node directly under n.
func leadingText(n *html.Node) (string, bool) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			return c.Data, true
		}
	}
	return "", false
}
