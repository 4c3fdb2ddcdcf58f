package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/vitals/internal/errors"
)

// Command-specific flags
var (
	initForce          bool
	initNonInteractive bool
)

// initCmd creates a ~/.vitals.yaml configuration
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create ~/.vitals.yaml configuration",
	Long: `Initialize a vitals configuration file.

Guides you through refresh interval, GPU monitoring, and history size
with interactive prompts. vitals works without a config file; this just
makes the defaults explicit and editable.

Examples:
  vitals init
  vitals init --force
  vitals init --non-interactive`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Init(InitOptions{
			Overwrite:      initForce,
			NonInteractive: initNonInteractive,
		})
	},
}

// completionCmd generates shell completion scripts
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate shell completion scripts for vitals.

Examples:
  # Bash
  vitals completion bash > /etc/bash_completion.d/vitals

  # Zsh
  vitals completion zsh > "${fpath[1]}/_vitals"

  # Fish
  vitals completion fish > ~/.config/fish/completions/vitals.fish`,
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(os.Stdout)
		case "zsh":
			return rootCmd.GenZshCompletion(os.Stdout)
		case "fish":
			return rootCmd.GenFishCompletion(os.Stdout, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletion(os.Stdout)
		default:
			return errors.New(errors.ErrConfig,
				"Unknown shell: "+args[0],
				"Supported shells: bash, zsh, fish, powershell")
		}
	},
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite existing config")
	initCmd.Flags().BoolVar(&initNonInteractive, "non-interactive", false, "skip prompts, use defaults")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(completionCmd)
}
