package cmd

import (
	"fmt"
	"os"

	"github.com/1auto-market/vehiclestore-backend/config"
	"github.com/1auto-market/vehiclestore-backend/internal/logging"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "vehiclestore",
	Short: "1auto.market vehicle classifieds backend",
	Long: `Backend for the 1auto.market vehicle classifieds marketplace.

Configuration is read from config/config.yaml (optional), a .env file and
environment variables.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "./config", "directory containing config.yaml")
}

// loadConfig reads the configuration and sets up logging.
func loadConfig() (config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)
	return cfg, nil
}
