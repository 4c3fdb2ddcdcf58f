package cli

import (
	"fmt"
	"os"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/rileyhilliard/vitals/internal/config"
	"github.com/rileyhilliard/vitals/internal/dashboard"
	"github.com/rileyhilliard/vitals/internal/errors"
	"github.com/rileyhilliard/vitals/internal/gpu"
	"github.com/rileyhilliard/vitals/internal/logger"
	"github.com/rileyhilliard/vitals/internal/stats"
)

// monitorCommand starts the dashboard. The optional positional argument
// overrides the configured refresh interval, in milliseconds.
func monitorCommand(args []string) error {
	log := logger.NewEnvLogger("[vitals]")

	path := Config()
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	if len(args) == 1 {
		ms, err := strconv.Atoi(args[0])
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				fmt.Sprintf("Invalid interval: %s", args[0]),
				"Pass the refresh interval in milliseconds, e.g. 'vitals 500'")
		}
		if ms < 100 {
			return errors.New(errors.ErrConfig,
				"Interval too short",
				"Minimum interval is 100 milliseconds")
		}
		cfg.Interval = time.Duration(ms) * time.Millisecond
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New(errors.ErrDisplay,
			"Standard output is not a terminal",
			"vitals is interactive; run it in a terminal")
	}
	if termenv.ColorProfile() == termenv.Ascii {
		return errors.New(errors.ErrDisplay,
			"Terminal does not support colors",
			"Use a color-capable terminal or check your TERM setting")
	}

	src := stats.NewSource()

	// The CPU counters are the one mandatory subsystem: if /proc/stat is
	// unreadable nothing useful can be displayed, so fail before entering
	// the alternate screen.
	if _, _, err := src.CPU(); err != nil {
		return err
	}

	backend := gpu.Disabled()
	if cfg.GPU {
		backend = gpu.Detect(log)
	}
	defer backend.Close()
	log.Debug("gpu backend: %s", backend.Name())

	agg := stats.NewAggregator(src, stats.NewEngine(), backend, log)
	model := dashboard.NewModel(agg, cfg.Interval, cfg.HistorySize, log)

	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
