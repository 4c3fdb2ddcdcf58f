// Package cli wires the vitals commands together. The root command runs
// the dashboard; subcommands cover version, config bootstrap, and shell
// completion.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// configFlag holds the --config override path.
var configFlag string

// rootCmd runs the dashboard directly; there is no separate "monitor"
// subcommand since monitoring is the whole program.
var rootCmd = &cobra.Command{
	Use:   "vitals [interval-ms]",
	Short: "Real-time system vitals dashboard",
	Long: `vitals is a terminal dashboard showing live CPU, memory, disk,
GPU, and network metrics for the local machine, sampled from procfs.

The optional positional argument sets the refresh interval in
milliseconds (default 1000, minimum 100).

Keyboard shortcuts:
  q / Ctrl+C  Quit
  r           Force refresh
  ?           Show help

Examples:
  vitals
  vitals 500
  vitals 2000`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return monitorCommand(args)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "config file (default ~/.vitals.yaml)")
}

// Config returns the explicit config path from --config, or empty string.
func Config() string {
	return configFlag
}

// Execute runs the root command, exiting 1 on any error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
