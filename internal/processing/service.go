// Package processing runs a homologation request end to end: scrape the
// three sites, normalize each raw table and reconcile them into one sheet.
package processing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"homologation/internal/events"
	"homologation/internal/logger"
	"homologation/internal/merge"
	"homologation/internal/scraper"
	"homologation/internal/transform"
	"homologation/pkg/models"
)

var ErrNoURLs = errors.New("processing: at least one url is required")

// Collector produces the raw tables for a request.
type Collector interface {
	Collect(ctx context.Context, req scraper.Request) (scraper.Scraped, error)
}

type Request struct {
	URL1               string `json:"url1"`
	URL2               string `json:"url2"`
	URL3               string `json:"url3"`
	TransmissionOption string `json:"transmission_option"`
}

// Result is the reconciled sheet. Rows is empty when no site produced data.
type Result struct {
	Rows    models.MergedTable
	Sources []string
	Issues  []string
}

// ParseTransmission maps the gearbox choice of the form to the COC block
// selector: manual, automatic, or nil for the page default.
func ParseTransmission(option string) *bool {
	var manual bool
	switch strings.ToLower(strings.TrimSpace(option)) {
	case "manual":
		manual = true
	case "automático", "automatico", "automatic":
		manual = false
	default:
		return nil
	}
	return &manual
}

type Service struct {
	scraper      Collector
	transformers [3]*transform.Transformer
	events       events.Publisher
	log          *logger.Logger
}

func NewService(c Collector, pub events.Publisher, log *logger.Logger) *Service {
	if pub == nil {
		pub = events.Discard
	}
	return &Service{
		scraper: c,
		transformers: [3]*transform.Transformer{
			transform.NewSite1(log),
			transform.NewSite2(log),
			transform.NewSite3(log),
		},
		events: pub,
		log:    log,
	}
}

// Process scrapes the requested pages and builds the sheet. userID is only
// used to attribute the published event.
func (s *Service) Process(ctx context.Context, userID string, req Request) (Result, error) {
	sreq := scraper.Request{
		URL1:               strings.TrimSpace(req.URL1),
		URL2:               strings.TrimSpace(req.URL2),
		URL3:               strings.TrimSpace(req.URL3),
		TransmissionManual: ParseTransmission(req.TransmissionOption),
	}
	if sreq.Empty() {
		return Result{}, ErrNoURLs
	}

	scraped, err := s.scraper.Collect(ctx, sreq)
	if err != nil {
		return Result{}, fmt.Errorf("scrape: %w", err)
	}

	res, err := s.ProcessRaw(ctx, scraped.Tables)
	if err != nil {
		return Result{}, err
	}
	if len(res.Rows) > 0 {
		cds, _ := res.Rows.Final("CdS")
		s.events.Publish(events.Event{
			Type:          events.TypeVehicleProcessed,
			UserID:        userID,
			CDSIdentifier: cds,
			Sources:       res.Sources,
		})
	}
	return res, nil
}

// ProcessRaw normalizes and merges already scraped tables. Nil or empty
// tables count as sites that did not respond. Only a structurally invalid
// table is an error.
func (s *Service) ProcessRaw(ctx context.Context, tables [3]models.RawTable) (Result, error) {
	var (
		sources merge.Sources
		issues  [3][]*transform.FieldDerivationError
		names   []string
	)

	g, _ := errgroup.WithContext(ctx)
	for i, raw := range tables {
		if raw.Empty() {
			continue
		}
		names = append(names, s.transformers[i].Source)
		tr := s.transformers[i]
		i, raw := i, raw
		g.Go(func() error {
			res, err := tr.Transform(raw)
			if err != nil {
				return err
			}
			sources[i] = res.Table
			issues[i] = res.Issues
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, fmt.Errorf("transform: %w", err)
	}

	if len(names) == 0 {
		s.log.Warn("no source produced data")
		return Result{}, nil
	}

	out := Result{Rows: merge.Merge(sources), Sources: names}
	for _, list := range issues {
		for _, is := range list {
			out.Issues = append(out.Issues, is.Error())
		}
	}
	s.log.Info("sheet built", "sources", strings.Join(names, ","), "rows", len(out.Rows), "issues", len(out.Issues))
	return out, nil
}
