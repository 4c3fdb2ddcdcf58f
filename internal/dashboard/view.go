package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

const (
	minCardWidth  = 40
	maxCardWidth  = 72
	sparklineSpan = 30
)

// renderDashboard assembles the full frame: header, metric cards, footer.
func (m Model) renderDashboard() string {
	if m.showHelp {
		return m.renderHelp()
	}

	width := m.cardWidth()

	var sections []string
	sections = append(sections, m.renderHeader())

	if m.snapshot == nil {
		waiting := LabelStyle.Render("Collecting first sample...")
		sections = append(sections, CardStyle.Width(width).Render(waiting))
	} else {
		sections = append(sections, m.renderCPUCard(width))
		sections = append(sections, m.renderMemoryCard(width))
		if card := m.renderDiskCard(width); card != "" {
			sections = append(sections, card)
		}
		if card := m.renderGPUCard(width); card != "" {
			sections = append(sections, card)
		}
		if card := m.renderNetworkCard(width); card != "" {
			sections = append(sections, card)
		}
	}

	sections = append(sections, m.renderFooter())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// cardWidth picks a card width for the current terminal, clamped so narrow
// terminals still get readable cards and wide ones don't stretch lines out.
func (m Model) cardWidth() int {
	width := m.width - 2
	if width < minCardWidth {
		width = minCardWidth
	}
	if width > maxCardWidth {
		width = maxCardWidth
	}
	return width
}

// renderHeader shows host identity and uptime.
func (m Model) renderHeader() string {
	title := "vitals"
	if m.snapshot != nil && m.snapshot.Host.Hostname != "" {
		h := m.snapshot.Host
		title = fmt.Sprintf("vitals · %s · %s %s · up %s",
			h.Hostname, h.OS, h.Kernel, formatUptime(h.Uptime))
	}
	return HeaderStyle.Render(title)
}

func (m Model) renderCPUCard(width int) string {
	cpu := m.snapshot.CPU
	inner := width - 4

	var lines []string
	header := TitleStyle.Render("CPU") + "  " +
		LabelStyle.Render(truncateWithEllipsis(cpu.Model, inner-20)) + "  " +
		MutedStyle.Render(fmt.Sprintf("%d cores", cpu.Cores))
	lines = append(lines, header)
	lines = append(lines, renderDivider(inner))

	pct := MetricStyle(cpu.Usage).Render(fmt.Sprintf("%5.1f%%", cpu.Usage))
	lines = append(lines, m.renderGauge("usage", pct, cpu.Usage, inner))

	load := LabelStyle.Render("load") + "  " + ValueStyle.Render(
		fmt.Sprintf("%.2f %.2f %.2f", cpu.LoadAvg[0], cpu.LoadAvg[1], cpu.LoadAvg[2]))
	if spark := RenderSparkline(m.history.CPU(sparklineSpan), sparklineSpan); spark != "" {
		load += "  " + spark
	}
	lines = append(lines, load)

	return CardStyle.Width(width).Render(strings.Join(lines, "\n"))
}

func (m Model) renderMemoryCard(width int) string {
	mem := m.snapshot.Memory
	inner := width - 4

	var lines []string
	header := TitleStyle.Render("Memory") + "  " +
		LabelStyle.Render(fmt.Sprintf("%s / %s", formatBytes(mem.Used), formatBytes(mem.Total)))
	lines = append(lines, header)
	lines = append(lines, renderDivider(inner))

	pct := MetricStyle(mem.Usage).Render(fmt.Sprintf("%5.1f%%", mem.Usage))
	lines = append(lines, m.renderGauge("ram", pct, mem.Usage, inner))

	detail := LabelStyle.Render("free") + " " + ValueStyle.Render(formatBytes(mem.Free)) +
		"  " + LabelStyle.Render("buff") + " " + ValueStyle.Render(formatBytes(mem.Buffers)) +
		"  " + LabelStyle.Render("cache") + " " + ValueStyle.Render(formatBytes(mem.Cached))
	if spark := RenderSparkline(m.history.Memory(sparklineSpan), sparklineSpan); spark != "" {
		detail += "  " + spark
	}
	lines = append(lines, detail)

	if mem.SwapTotal > 0 {
		swapPct := MetricStyle(mem.SwapUsage).Render(fmt.Sprintf("%5.1f%%", mem.SwapUsage))
		lines = append(lines, m.renderGauge("swap", swapPct, mem.SwapUsage, inner))
	}

	return CardStyle.Width(width).Render(strings.Join(lines, "\n"))
}

func (m Model) renderDiskCard(width int) string {
	disks := m.snapshot.Disks
	if len(disks) == 0 {
		return ""
	}
	inner := width - 4

	var lines []string
	lines = append(lines, TitleStyle.Render("Disks"))
	lines = append(lines, renderDivider(inner))

	for _, d := range disks {
		mount := truncateWithEllipsis(d.Mount, 16)
		row := fmt.Sprintf("%-16s %s %s  %s",
			ValueStyle.Render(mount),
			MetricStyle(d.Usage).Render(fmt.Sprintf("%5.1f%%", d.Usage)),
			LabelStyle.Render(fmt.Sprintf("%s/%s", formatBytes(d.Used), formatBytes(d.Total))),
			MutedStyle.Render(fmt.Sprintf("r:%s w:%s", formatOps(d.ReadsPerSec), formatOps(d.WritesPerSec))))
		if d.InFlight > 0 {
			row += " " + MutedStyle.Render(fmt.Sprintf("q:%d", d.InFlight))
		}
		lines = append(lines, row)
	}

	return CardStyle.Width(width).Render(strings.Join(lines, "\n"))
}

func (m Model) renderGPUCard(width int) string {
	gpus := m.snapshot.GPUs
	if len(gpus) == 0 {
		return ""
	}
	inner := width - 4

	var lines []string
	lines = append(lines, TitleStyle.Render("GPU"))
	lines = append(lines, renderDivider(inner))

	for _, g := range gpus {
		name := truncateWithEllipsis(g.Name, inner-10)
		if !g.Supported {
			lines = append(lines, ValueStyle.Render(name)+"  "+MutedStyle.Render("(no driver metrics)"))
			continue
		}

		lines = append(lines, ValueStyle.Render(name))
		pct := MetricStyle(g.Utilization).Render(fmt.Sprintf("%5.1f%%", g.Utilization))
		lines = append(lines, m.renderGauge("util", pct, g.Utilization, inner))

		detail := LabelStyle.Render("vram") + " " +
			ValueStyle.Render(fmt.Sprintf("%s/%s", formatBytes(g.MemoryUsed), formatBytes(g.MemoryTotal))) +
			"  " + LabelStyle.Render("temp") + " " + MetricStyle(float64(g.Temperature)).Render(fmt.Sprintf("%d°C", g.Temperature)) +
			"  " + LabelStyle.Render("pwr") + " " + ValueStyle.Render(fmt.Sprintf("%.0fW", float64(g.PowerMilliwatts)/1000)) +
			"  " + LabelStyle.Render("fan") + " " + ValueStyle.Render(fmt.Sprintf("%d%%", g.FanPercent))
		lines = append(lines, detail)

		if spark := RenderSparkline(m.history.GPU(g.Index, sparklineSpan), sparklineSpan); spark != "" {
			lines = append(lines, spark)
		}
	}

	return CardStyle.Width(width).Render(strings.Join(lines, "\n"))
}

func (m Model) renderNetworkCard(width int) string {
	network := m.snapshot.Network
	if len(network) == 0 {
		return ""
	}
	inner := width - 4

	var lines []string
	lines = append(lines, TitleStyle.Render("Network"))
	lines = append(lines, renderDivider(inner))

	for _, iface := range network {
		row := fmt.Sprintf("%-10s %s %s  %s %s",
			ValueStyle.Render(truncateWithEllipsis(iface.Name, 10)),
			LabelStyle.Render("↓"),
			ValueStyle.Render(formatRate(iface.RxBytesPerSec)),
			LabelStyle.Render("↑"),
			ValueStyle.Render(formatRate(iface.TxBytesPerSec)))
		if iface.RxErrors+iface.TxErrors > 0 {
			row += "  " + ErrorStyle.Render(fmt.Sprintf("err:%d", iface.RxErrors+iface.TxErrors))
		}
		if iface.RxDrops+iface.TxDrops > 0 {
			row += "  " + MutedStyle.Render(fmt.Sprintf("drop:%d", iface.RxDrops+iface.TxDrops))
		}
		lines = append(lines, row)
	}

	return CardStyle.Width(width).Render(strings.Join(lines, "\n"))
}

func (m Model) renderFooter() string {
	footer := "q quit · r refresh · ? help"
	if m.lastErr != nil {
		footer += "   " + ErrorStyle.Render(truncateWithEllipsis("stale: "+m.lastErr.Error(), 60))
	}
	return FooterStyle.Render(footer)
}

func (m Model) renderHelp() string {
	lines := []string{
		TitleStyle.Render("vitals keys"),
		"",
		LabelStyle.Render("q / ctrl+c") + "  " + ValueStyle.Render("quit"),
		LabelStyle.Render("r") + "           " + ValueStyle.Render("refresh now"),
		LabelStyle.Render("?") + "           " + ValueStyle.Render("toggle this help"),
		LabelStyle.Render("esc") + "         " + ValueStyle.Render("close help"),
	}
	return CardStyle.Width(m.cardWidth()).Render(strings.Join(lines, "\n"))
}

// renderGauge renders one labelled gauge line using the shared progress bar.
func (m Model) renderGauge(label, value string, percent float64, inner int) string {
	gauge := m.gauge
	gauge.Width = inner - lipgloss.Width(value) - 8
	if gauge.Width < 10 {
		gauge.Width = 10
	}
	return LabelStyle.Render(fmt.Sprintf("%-5s", label)) + " " +
		gauge.ViewAs(percent/100) + " " + value
}

// formatBytes renders a byte count in binary units.
func formatBytes(b uint64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%dB", b)
	}
	div, exp := uint64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f%c", float64(b)/float64(div), "KMGTPE"[exp])
}

// formatRate renders a bytes-per-second throughput.
func formatRate(bps float64) string {
	switch {
	case bps >= 1<<30:
		return fmt.Sprintf("%.1fG/s", bps/(1<<30))
	case bps >= 1<<20:
		return fmt.Sprintf("%.1fM/s", bps/(1<<20))
	case bps >= 1<<10:
		return fmt.Sprintf("%.1fK/s", bps/(1<<10))
	default:
		return fmt.Sprintf("%.0fB/s", bps)
	}
}

// formatOps renders an operations-per-second rate.
func formatOps(ops float64) string {
	if ops >= 1000 {
		return fmt.Sprintf("%.1fk/s", ops/1000)
	}
	return fmt.Sprintf("%.0f/s", ops)
}

// formatUptime renders an uptime duration as days/hours/minutes.
func formatUptime(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	if days > 0 {
		return fmt.Sprintf("%dd %dh", days, hours)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}
