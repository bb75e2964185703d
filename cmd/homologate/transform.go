package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"homologation/internal/processing"
	"homologation/pkg/models"
)

func newTransformCommand(ctx *commandContext) *cobra.Command {
	var (
		files     [3]string
		asJSON    bool
		finalOnly bool
	)

	cmd := &cobra.Command{
		Use:   "transform",
		Short: "Build a sheet from saved raw tables",
		Long: "Build a sheet from saved raw tables. Each file holds a JSON array of\n" +
			"[key, value] pairs as produced by the scrapers; value may be null.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			var tables [3]models.RawTable
			loaded := 0
			for i, path := range files {
				if strings.TrimSpace(path) == "" {
					continue
				}
				t, err := readRawTable(path)
				if err != nil {
					return err
				}
				tables[i] = t
				loaded++
			}
			if loaded == 0 {
				return errors.New("at least one of --site1, --site2, --site3 is required")
			}

			svc := processing.NewService(nil, nil, ctx.logger(cmd, cfg))
			res, err := svc.ProcessRaw(cmd.Context(), tables)
			if err != nil {
				return err
			}
			return printResult(cmd, res, asJSON, finalOnly)
		},
	}

	cmd.Flags().StringVar(&files[0], "site1", "", "Raw table JSON for site 1")
	cmd.Flags().StringVar(&files[1], "site2", "", "Raw table JSON for site 2")
	cmd.Flags().StringVar(&files[2], "site3", "", "Raw table JSON for site 3")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print rows as JSON")
	cmd.Flags().BoolVar(&finalOnly, "final", false, "Only show the final column")
	return cmd
}

func readRawTable(path string) (models.RawTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var t models.RawTable
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return t, nil
}
