package main

import (
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/levinOo/remo-exporter/internal/config"
	"github.com/levinOo/remo-exporter/internal/nature"
	"github.com/spf13/cobra"
)

var (
	cfgFile   string
	token     string
	tokenFile string
	apiURL    string
)

var rootCmd = &cobra.Command{
	Use:   "remoctl",
	Short: "Inspect Nature Remo smart meter readings",
	Long: `remoctl queries the Nature Remo cloud API with the same configuration as the exporter.
It is meant for checking a token and looking at raw smart meter properties without running a server.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (json or yaml)")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "Nature Remo API token")
	rootCmd.PersistentFlags().StringVar(&tokenFile, "token-file", "", "file containing the API token")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "", "API base url")
}

// configArgs переводит флаги CLI в аргументы загрузчика конфигурации.
func configArgs() []string {
	var args []string
	if cfgFile != "" {
		args = append(args, "-config", cfgFile)
	}
	if token != "" {
		args = append(args, "-t", token)
	}
	if tokenFile != "" {
		args = append(args, "-token-file", tokenFile)
	}
	if apiURL != "" {
		args = append(args, "-api", apiURL)
	}
	return args
}

// loadConfig загружает конфигурацию так же, как сервер.
func loadConfig() (config.Config, error) {
	return config.Load(configArgs(), env.ToMap(os.Environ()))
}

// newClient создаёт клиент API по конфигурации.
func newClient(cfg config.Config) (*nature.Client, error) {
	return nature.NewClient(cfg.APIBaseURL, cfg.Token, cfg.APITimeout())
}
