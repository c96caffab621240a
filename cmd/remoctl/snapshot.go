package main

import (
	"fmt"

	"github.com/levinOo/remo-exporter/internal/echonet"
	"github.com/levinOo/remo-exporter/internal/engine"
	"github.com/levinOo/remo-exporter/internal/handler"
	"github.com/levinOo/remo-exporter/internal/repository"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Refresh once and print metrics in Prometheus text format",
	Long: `Fetches appliances once, stores the smart meter readings the same way the exporter does,
and writes the resulting exposition to stdout.`,
	RunE: runSnapshot,
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	client, err := newClient(cfg)
	if err != nil {
		return err
	}

	store := repository.NewMemStorage()
	if err := echonet.DefineSeries(store); err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	if err := reg.Register(store); err != nil {
		return fmt.Errorf("registering store: %w", err)
	}

	if err := engine.New(client, store).Refresh(cmd.Context()); err != nil {
		return fmt.Errorf("refreshing metrics: %w", err)
	}

	return handler.WriteMetrics(cmd.OutOrStdout(), reg, expfmt.NewFormat(expfmt.TypeTextPlain))
}
