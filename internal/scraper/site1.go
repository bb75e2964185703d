package scraper

import (
	"context"

	"github.com/PuerkitoBio/goquery"

	"homologation/pkg/models"
)

const site1Name = "site1"

var (
	s1Article   = elem("article", "container")
	s1Header    = elem("h2", "h3 mt-4")
	s1ListGroup = elem("div", "list-group striped-rows")
	s1Item      = elem("div", "list-group-item")
	s1Key       = elem("div", "col-sm-6 one-line text-sm-bold")
	s1Value     = elem("div", "col-sm-6 one-line")
)

// Site1 reads the Dutch vehicle register. Every section header is followed
// by a striped list of label/value rows; keys come out as
// "<section> - <label>".
type Site1 struct {
	Fetcher *Fetcher
}

func (s *Site1) Name() string { return site1Name }

func (s *Site1) Scrape(ctx context.Context, url string) (models.RawTable, error) {
	doc, err := s.Fetcher.Document(ctx, url)
	if err != nil {
		return nil, err
	}
	return ParseSite1(doc), nil
}

// ParseSite1 extracts the register rows from a parsed page.
func ParseSite1(doc *goquery.Document) models.RawTable {
	var out models.RawTable
	for _, article := range findAll(doc, s1Article) {
		for _, header := range within(article, s1Header) {
			section := strippedText(header)
			list := findNext(header, s1ListGroup)
			if list == nil {
				continue
			}
			for _, item := range within(list, s1Item) {
				key := firstWithin(item, s1Key)
				value := firstWithin(item, s1Value)
				if key == nil || value == nil {
					continue
				}
				out = append(out, models.Raw(section+" - "+strippedText(key), strippedText(value)))
			}
		}
	}
	return out
}
