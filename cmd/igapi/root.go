package main

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"igapi/pkg/ui"
)

var (
	// Version information
	version   = "0.1.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile       string
	logLevel         string
	settingsFile     string
	username         string
	storeKind        string
	userAgent        string
	timeout          time.Duration
	autoPatch        bool
	dropIncompatKeys bool
	quiet            bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "igapi",
	Short: "Talk to the Instagram private API from the command line",
	Long: `igapi drives the Instagram private mobile API: it logs in as an Android
device, keeps the session between runs and calls any endpoint.

Sessions are kept in the system keychain or an encrypted file, or in a plain
settings file with --settings. An expired session is renewed once with the
stored password; throttled calls are retried with backoff.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if quiet {
			ui.SetQuietMode(true)
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		ui.PrintError("Error", err)
		os.Exit(exitCode(err))
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configFile, "config", "c", "", "config file (default is .igapi.yaml or ~/.config/igapi/config.yaml)")
	flags.StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error, disabled)")
	flags.StringVar(&settingsFile, "settings", "", "keep the session in this plain JSON file")
	flags.StringVarP(&username, "username", "u", "", "account to act as")
	flags.StringVar(&storeKind, "store", "", "session store: auto, keyring, encrypted or file")
	flags.StringVar(&userAgent, "user-agent", "", "override the generated user agent")
	flags.DurationVar(&timeout, "timeout", 0, "HTTP timeout per request")
	flags.BoolVar(&autoPatch, "auto-patch", false, "add web API compatible keys to responses")
	flags.BoolVar(&dropIncompatKeys, "drop-incompat-keys", false, "with --auto-patch, remove keys the web API lacks")
	flags.BoolVar(&quiet, "quiet", false, "suppress status output except errors")

	rootCmd.SetVersionTemplate(`igapi {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	// Disable default completion command
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// flagMap collects the global flags in the shape config.MergeCommandLineFlags reads
func flagMap() map[string]interface{} {
	return map[string]interface{}{
		"username":           username,
		"settings":           settingsFile,
		"store":              storeKind,
		"timeout":            timeout,
		"user-agent":         userAgent,
		"auto-patch":         autoPatch,
		"drop-incompat-keys": dropIncompatKeys,
		"log-level":          logLevel,
	}
}
