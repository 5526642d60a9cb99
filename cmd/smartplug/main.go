// Smartplug controls TP-Link style smart plugs over their local TCP protocol.
//
// Every command sends one encrypted JSON request to port 9999 of the device
// and prints the decoded reply. Devices can be addressed directly or by a
// name registered with 'smartplug devices add'.
//
// Usage:
//
//	smartplug [command] [flags]
//
// Set SMARTPLUG_LOG_LEVEL=debug (or pass --log-level debug) to see the
// request and reply of every exchange.
package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/smartplug/internal/config"
	"github.com/muurk/smartplug/internal/logging"
	"github.com/muurk/smartplug/internal/ui"
	"github.com/muurk/smartplug/internal/version"
)

// Global flags
var (
	deviceTarget string
	timeout      time.Duration
	outputFormat string
	logLevel     string
	configPath   string
)

func main() {
	defer logging.Sync()

	if err := rootCmd.Execute(); err != nil {
		var reported reportedError
		if !errors.As(err, &reported) {
			ui.NewPrinter(os.Stderr).PrintError("smartplug", err)
		}
		logging.Sync()
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "smartplug",
	Short: "Smart plug control utility",
	Long: `A command line client for TP-Link style smart plugs.

Talks to the plug directly on the local network (TCP port 9999) using the
length-prefixed, XOR-obfuscated JSON protocol. No cloud account is needed.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := logging.Initialize(logLevel); err != nil {
			return err
		}
		if outputFormat != "" {
			if err := config.ValidateOutputFormat(outputFormat); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVarP(&deviceTarget, "device", "d", "", "Device name or address (host or host:port)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Exchange timeout (default from config, 5s)")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", "", "Output format (detailed, compact, json)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides "+logging.LogLevelEnvVar)
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default is the user config directory)")

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "smartplug %s\n", version.Full())
	},
}
