// Package scraper turns the three vehicle data sites into raw (key, value)
// tables for the transform stage.
package scraper

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"homologation/internal/logger"
	"homologation/pkg/models"
)

// ErrNoURL is returned when an adapter is asked to scrape an empty URL.
var ErrNoURL = errors.New("scraper: no url")

// Adapter is implemented by each site. It fetches one page and extracts its
// label/value pairs in page order.
type Adapter interface {
	Name() string
	Scrape(ctx context.Context, url string) (models.RawTable, error)
}

// Request names the pages to scrape. Empty URLs are skipped.
// TransmissionManual picks the gearbox block on the COC page; nil means the
// first block.
type Request struct {
	URL1, URL2, URL3   string
	TransmissionManual *bool
}

func (r Request) urls() [3]string { return [3]string{r.URL1, r.URL2, r.URL3} }

// Empty reports whether no URL was given.
func (r Request) Empty() bool {
	for _, u := range r.urls() {
		if u != "" {
			return false
		}
	}
	return true
}

// Scraped holds one slot per site. A nil table means the site was not asked
// for, failed, or produced nothing; Errors says which.
type Scraped struct {
	Tables [3]models.RawTable
	Errors [3]error
}

// Responded lists the names of the sites that produced a table.
func (s Scraped) Responded() []string {
	var out []string
	for i, t := range s.Tables {
		if t != nil {
			out = append(out, siteNames[i])
		}
	}
	return out
}

var siteNames = [3]string{site1Name, site2Name, site3Name}

// Options configure a Scraper.
type Options struct {
	Timeout       time.Duration
	UserAgent     string
	MaxConcurrent int
}

// Scraper runs the site adapters for a request.
type Scraper struct {
	fetcher       *Fetcher
	log           *logger.Logger
	maxConcurrent int
}

func New(fetcher *Fetcher, opts Options, log *logger.Logger) *Scraper {
	if fetcher == nil {
		fetcher = NewFetcher(nil, opts.Timeout, opts.UserAgent)
	}
	return &Scraper{fetcher: fetcher, log: log, maxConcurrent: opts.MaxConcurrent}
}

// Adapters returns the adapter for each slot of the request.
func (s *Scraper) Adapters(req Request) [3]Adapter {
	return [3]Adapter{
		&Site1{Fetcher: s.fetcher},
		&Site2{Fetcher: s.fetcher, TransmissionManual: req.TransmissionManual},
		&Site3{Fetcher: s.fetcher},
	}
}

// Collect scrapes every requested site concurrently. A site that fails
// leaves its slot empty; Collect itself only fails when ctx is done before
// any work starts.
func (s *Scraper) Collect(ctx context.Context, req Request) (Scraped, error) {
	var out Scraped
	if err := ctx.Err(); err != nil {
		return out, err
	}

	adapters := s.Adapters(req)
	urls := req.urls()

	g, gctx := errgroup.WithContext(ctx)
	if s.maxConcurrent > 0 {
		g.SetLimit(s.maxConcurrent)
	}
	for i := range adapters {
		if urls[i] == "" {
			continue
		}
		a, url := adapters[i], urls[i]
		i := i
		g.Go(func() error {
			start := time.Now()
			s.log.Info("scraping", "source", a.Name(), "url", url)

			table, err := a.Scrape(gctx, url)
			switch {
			case err != nil:
				s.log.Warn("scrape failed", "source", a.Name(), "url", url, "error", err)
				out.Errors[i] = err
			case table.Empty():
				s.log.Warn("scrape returned no rows", "source", a.Name(), "url", url)
			default:
				s.log.Info("scraped", "source", a.Name(), "rows", len(table), "took", time.Since(start))
				out.Tables[i] = table
			}
			// one broken site must not cancel the others
			return nil
		})
	}
	_ = g.Wait()
	return out, nil
}
