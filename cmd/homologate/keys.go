package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"homologation/internal/registry"
)

func newKeysCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "List the canonical sheet keys in document order",
		RunE: func(cmd *cobra.Command, args []string) error {
			keys := registry.OrderedKeys()
			if asJSON {
				return writeJSON(cmd, keys)
			}
			rows := make([][]string, 0, len(keys))
			for i, k := range keys {
				rows = append(rows, []string{strconv.Itoa(i + 1), k})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"#", "Key"}, rows, []columnAlignment{alignRight, alignLeft}))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print keys as JSON")
	return cmd
}
