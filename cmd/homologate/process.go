package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"homologation/internal/processing"
	"homologation/internal/scraper"
)

func newProcessCommand(ctx *commandContext) *cobra.Command {
	var (
		req       processing.Request
		asJSON    bool
		finalOnly bool
	)

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Scrape up to three vehicle pages and print the merged sheet",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			log := ctx.logger(cmd, cfg)

			fetcher := scraper.NewFetcher(nil, cfg.Scraper.Timeout(), cfg.Scraper.UserAgent)
			scr := scraper.New(fetcher, scraper.Options{
				Timeout:       cfg.Scraper.Timeout(),
				UserAgent:     cfg.Scraper.UserAgent,
				MaxConcurrent: cfg.Scraper.MaxConcurrent,
			}, log)
			svc := processing.NewService(scr, nil, log)

			res, err := svc.Process(cmd.Context(), "", req)
			if err != nil {
				return err
			}
			if len(res.Rows) == 0 {
				return errors.New("no data could be obtained from any URL")
			}
			return printResult(cmd, res, asJSON, finalOnly)
		},
	}

	cmd.Flags().StringVar(&req.URL1, "url1", "", "Vehicle register page (site 1)")
	cmd.Flags().StringVar(&req.URL2, "url2", "", "Certificate of conformity page (site 2)")
	cmd.Flags().StringVar(&req.URL3, "url3", "", "Specification page (site 3)")
	cmd.Flags().StringVar(&req.TransmissionOption, "transmission", "", "Gearbox for site 2: Manual or Automatic")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print rows as JSON")
	cmd.Flags().BoolVar(&finalOnly, "final", false, "Only show the final column")
	return cmd
}

func printResult(cmd *cobra.Command, res processing.Result, asJSON, finalOnly bool) error {
	if asJSON {
		if finalOnly {
			return writeJSON(cmd, res.Rows.Finals())
		}
		return writeJSON(cmd, res.Rows)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, renderSheet(res.Rows, finalOnly))
	fmt.Fprintf(out, "sources: %s\n", strings.Join(res.Sources, ", "))
	for _, issue := range res.Issues {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", issue)
	}
	return nil
}
