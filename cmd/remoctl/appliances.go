package main

import (
	"fmt"
	"io"

	"github.com/levinOo/remo-exporter/internal/echonet"
	"github.com/levinOo/remo-exporter/internal/models"
	"github.com/spf13/cobra"
)

var appliancesCmd = &cobra.Command{
	Use:   "appliances",
	Short: "List appliances and their smart meter properties",
	RunE:  runAppliances,
}

func init() {
	rootCmd.AddCommand(appliancesCmd)
}

func runAppliances(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	client, err := newClient(cfg)
	if err != nil {
		return err
	}

	appliances, err := client.Appliances(cmd.Context())
	if err != nil {
		return fmt.Errorf("fetching appliances: %w", err)
	}

	printAppliances(cmd.OutOrStdout(), appliances)
	return nil
}

func printAppliances(w io.Writer, appliances []models.Appliance) {
	if len(appliances) == 0 {
		fmt.Fprintln(w, "No appliances found")
		return
	}

	for _, a := range appliances {
		fmt.Fprintf(w, "\n%s (%s)\n", a.Nickname, a.ID)

		properties, ok := a.Properties()
		if !ok {
			fmt.Fprintln(w, "  no smart meter data")
			continue
		}

		fmt.Fprintln(w, "----------------------------------------------------------------------")
		fmt.Fprintf(w, "%-6s  %-48s  %12s\n", "EPC", "Metric", "Value")
		fmt.Fprintln(w, "----------------------------------------------------------------------")
		for _, p := range properties {
			name := p.Name
			if prop, ok := echonet.Lookup(p.EPC); ok {
				name = prop.Name
			}
			fmt.Fprintf(w, "0x%02X    %-48s  %12s\n", p.EPC, name, p.Val)
		}
	}
}
