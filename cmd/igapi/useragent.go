package main

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/spf13/cobra"

	"igapi/pkg/useragent"
)

var (
	uaRandom     bool
	uaAppVersion string
	uaLocale     string
)

// useragentCmd groups user agent helpers
var useragentCmd = &cobra.Command{
	Use:   "useragent",
	Short: "Parse or build Android user agents",
}

var useragentParseCmd = &cobra.Command{
	Use:   "parse <user-agent>",
	Short: "Print the device described by a user agent",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := useragent.Parse(args[0])
		if err != nil {
			return err
		}
		return printJSON(d)
	},
}

var useragentGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Build a user agent from the configured device or a random profile",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		appVersion, locale := cfg.API.AppVersion, cfg.API.Locale
		if uaAppVersion != "" {
			appVersion = uaAppVersion
		}
		if uaLocale != "" {
			locale = uaLocale
		}

		d := useragent.Device{
			AppVersion:     appVersion,
			AndroidVersion: cfg.Device.AndroidVersion,
			AndroidRelease: cfg.Device.AndroidRelease,
			DPI:            cfg.Device.DPI,
			Resolution:     cfg.Device.Resolution,
			Manufacturer:   cfg.Device.Manufacturer,
			Device:         cfg.Device.Device,
			Model:          cfg.Device.Model,
			Chipset:        cfg.Device.Chipset,
			Locale:         locale,
		}
		if uaRandom {
			d = useragent.Random(rand.New(rand.NewSource(time.Now().UnixNano())), appVersion, locale)
		}

		ua, err := useragent.Generate(d)
		if err != nil {
			return err
		}
		fmt.Println(ua)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(useragentCmd)
	useragentCmd.AddCommand(useragentParseCmd)
	useragentCmd.AddCommand(useragentGenerateCmd)

	useragentGenerateCmd.Flags().BoolVar(&uaRandom, "random", false, "pick a random built-in device profile")
	useragentGenerateCmd.Flags().StringVar(&uaAppVersion, "app-version", "", "app version (default from config)")
	useragentGenerateCmd.Flags().StringVar(&uaLocale, "locale", "", "locale such as en_US (default from config)")
}
