package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"igapi/pkg/config"
	"igapi/pkg/logger"
	"igapi/pkg/ui"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage igapi configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables (IGAPI_*)
  - .env files
  - Configuration file
  - Default values (lowest priority)`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration to a file",
	Long: `Write the default configuration with all available options.

The file is created as '.igapi.yaml' in the current directory unless a
different path is given with --config. An existing file is never overwritten.`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long:  `Show the configuration after merging all sources. The signature key is masked.`,
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath := configFile
	if configPath == "" {
		configPath = ".igapi.yaml"
	}

	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("configuration file already exists: %s", configPath)
	}

	if err := config.DefaultConfig().Save(configPath); err != nil {
		return err
	}

	ui.PrintSuccess("Configuration written to " + configPath)
	ui.PrintInfo("Next", "igapi login -u <username>")
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	display := *cfg
	display.API.SigKey = logger.Mask(display.API.SigKey)

	data, err := yaml.Marshal(&display)
	if err != nil {
		return fmt.Errorf("failed to format configuration: %w", err)
	}

	fmt.Print(string(data))
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg := config.DefaultConfig()
	if err := cfg.LoadFromFile(configFile); err != nil {
		return err
	}
	if err := cfg.LoadFromEnv(); err != nil {
		return err
	}
	cfg.MergeCommandLineFlags(flagMap())

	if err := cfg.Validate(); err != nil {
		ui.PrintError("Configuration has errors")
		var joined interface{ Unwrap() []error }
		if errors.As(err, &joined) {
			for _, e := range joined.Unwrap() {
				fmt.Fprintf(os.Stderr, "  - %v\n", e)
			}
		}
		return err
	}

	ui.PrintSuccess("Configuration is valid")
	ui.PrintInfo("Session store", cfg.Session.Store)
	ui.PrintInfo("Rate limit", fmt.Sprintf("%d requests/minute, burst %d", cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.BurstSize))
	ui.PrintInfo("Retries", fmt.Sprintf("%d attempts, relogin %v", cfg.Retry.MaxAttempts, cfg.Retry.Relogin))
	ui.PrintInfo("Log level", cfg.Logging.Level)
	return nil
}
