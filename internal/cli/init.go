package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/rileyhilliard/vitals/internal/config"
	"github.com/rileyhilliard/vitals/internal/errors"
)

// InitOptions holds options for the init command.
type InitOptions struct {
	Overwrite      bool // Overwrite existing config without asking
	NonInteractive bool // Skip prompts, use defaults
}

// Init creates a ~/.vitals.yaml configuration file.
func Init(opts InitOptions) error {
	configPath := config.DefaultPath()
	if configPath == "" {
		return errors.New(errors.ErrConfig,
			"Cannot determine home directory",
			"Set HOME and try again")
	}

	// Check for existing config
	if _, err := os.Stat(configPath); err == nil && !opts.Overwrite {
		if opts.NonInteractive {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Config file already exists: %s", configPath),
				"Use --force to overwrite")
		}

		var overwrite bool
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Config file '%s' already exists. Overwrite?", configPath)).
					Value(&overwrite),
			),
		)
		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Try running with --force to overwrite")
		}
		if !overwrite {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	cfg := config.DefaultConfig()

	if !opts.NonInteractive {
		intervalStr := strconv.Itoa(int(cfg.Interval.Milliseconds()))
		historyStr := strconv.Itoa(cfg.HistorySize)
		gpuEnabled := cfg.GPU

		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Refresh interval (milliseconds)").
					Description("How often metrics are sampled; minimum 100").
					Placeholder("1000").
					Value(&intervalStr).
					Validate(func(s string) error {
						ms, err := strconv.Atoi(strings.TrimSpace(s))
						if err != nil {
							return fmt.Errorf("enter a number of milliseconds")
						}
						if ms < 100 {
							return fmt.Errorf("minimum interval is 100ms")
						}
						return nil
					}),
			),
			huh.NewGroup(
				huh.NewConfirm().
					Title("Enable GPU monitoring?").
					Description("Uses the NVIDIA driver when present, sysfs otherwise").
					Value(&gpuEnabled),
			),
			huh.NewGroup(
				huh.NewInput().
					Title("History size").
					Description("Samples retained for the sparkline graphs").
					Placeholder("60").
					Value(&historyStr).
					Validate(func(s string) error {
						n, err := strconv.Atoi(strings.TrimSpace(s))
						if err != nil || n <= 0 {
							return fmt.Errorf("enter a positive number")
						}
						return nil
					}),
			),
		)
		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Check terminal compatibility or use --non-interactive")
		}

		ms, _ := strconv.Atoi(strings.TrimSpace(intervalStr))
		cfg.Interval = time.Duration(ms) * time.Millisecond
		cfg.GPU = gpuEnabled
		cfg.HistorySize, _ = strconv.Atoi(strings.TrimSpace(historyStr))
	}

	if err := config.Validate(cfg); err != nil {
		return err
	}
	if err := config.Save(cfg, configPath); err != nil {
		return err
	}

	fmt.Printf("✓ Created %s\n\n", configPath)
	fmt.Println("Next steps:")
	fmt.Println("  vitals        - Start the dashboard")
	fmt.Println("  vitals 500    - Start with a 500ms refresh interval")

	return nil
}
