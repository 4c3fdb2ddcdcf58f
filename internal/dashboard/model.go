package dashboard

import (
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rileyhilliard/vitals/internal/logger"
	"github.com/rileyhilliard/vitals/internal/stats"
)

// Collector produces one complete snapshot per polling cycle. Implemented
// by stats.Aggregator; tests substitute stubs.
type Collector interface {
	Update() (*stats.Snapshot, error)
}

// Model is the Bubble Tea model for the vitals dashboard.
type Model struct {
	collector Collector
	history   *History
	log       logger.Logger

	// snapshot is the last successfully assembled snapshot. A failed cycle
	// leaves it in place so the dashboard keeps showing consistent (stale)
	// data instead of a partial frame.
	snapshot *stats.Snapshot
	lastErr  error

	gauge    progress.Model
	interval time.Duration
	width    int
	height   int
	quitting bool
	showHelp bool
}

// tickMsg signals a periodic refresh.
type tickMsg time.Time

// snapshotMsg carries the result of one collection cycle.
type snapshotMsg struct {
	snapshot *stats.Snapshot
	err      error
}

// NewModel creates a dashboard model polling the collector at interval.
func NewModel(collector Collector, interval time.Duration, historySize int, log logger.Logger) Model {
	gauge := progress.New(
		progress.WithGradient(string(ColorHealthy), string(ColorCritical)),
		progress.WithoutPercentage(),
	)
	return Model{
		collector: collector,
		history:   NewHistory(historySize),
		log:       log,
		gauge:     gauge,
		interval:  interval,
	}
}

// Init starts the tick timer and triggers an initial collection.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.tickCmd(), m.collectCmd())
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		handled, cmd := m.HandleKeyMsg(msg)
		if handled {
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tickMsg:
		return m, tea.Batch(m.tickCmd(), m.collectCmd())

	case snapshotMsg:
		if msg.err != nil {
			// Keep the previous snapshot; only the error line changes.
			m.lastErr = msg.err
			m.log.Warn("collection cycle failed: %v", msg.err)
			return m, nil
		}
		m.snapshot = msg.snapshot
		m.lastErr = nil
		m.history.Push(msg.snapshot)
	}

	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	return m.renderDashboard()
}

// Snapshot returns the currently displayed snapshot, nil before the first
// successful cycle.
func (m Model) Snapshot() *stats.Snapshot {
	return m.snapshot
}

// LastError returns the error from the most recent failed cycle, nil when
// the last cycle succeeded.
func (m Model) LastError() error {
	return m.lastErr
}

// tickCmd returns a command that sends a tick after the refresh interval.
func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// collectCmd runs one collection cycle off the update loop.
func (m Model) collectCmd() tea.Cmd {
	collector := m.collector
	return func() tea.Msg {
		snap, err := collector.Update()
		return snapshotMsg{snapshot: snap, err: err}
	}
}
