package widgets

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"gitlab.com/tinyland/lab/infoboard/pkg/components"
	"gitlab.com/tinyland/lab/infoboard/pkg/services/host"
	"gitlab.com/tinyland/lab/infoboard/pkg/stores"
	"gitlab.com/tinyland/lab/infoboard/pkg/theme"
)

// labelWidth is the column reserved for gauge labels.
const labelWidth = 6

// HostWidget shows CPU, memory and disk gauges plus a load sparkline.
type HostWidget struct {
	base
	store *stores.HostStore
	env   Env
}

// NewHostWidget creates a host widget.
func NewHostWidget(s *stores.HostStore, env Env) *HostWidget {
	env = env.withDefaults()
	return &HostWidget{base: newBase(host.Name, "Host", env, s.Meta), store: s, env: env}
}

// MinSize returns the minimum width and height this widget requires.
func (w *HostWidget) MinSize() (int, int) { return 24, 4 }

// Update handles theme and loading messages.
func (w *HostWidget) Update(msg tea.Msg) tea.Cmd { return w.update(msg) }

// HandleKey is a no-op.
func (w *HostWidget) HandleKey(tea.KeyMsg) tea.Cmd { return nil }

// View renders the snapshot.
func (w *HostWidget) View(width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	snap, ok := w.store.Snapshot()
	if !ok {
		return w.empty(width, height)
	}

	lines := []string{
		components.Spread(
			w.th.Strong().Render(snap.Hostname)+w.th.Muted().Render(" "+snap.Platform),
			w.th.Muted().Render("up "+uptime(snap.Uptime)),
			width),
		w.gauge("cpu", snap.CPUPercent, fmt.Sprintf("%d cores", snap.CPUCount), width),
		w.gauge("mem", snap.MemPercent, humanize.IBytes(snap.MemUsed)+"/"+humanize.IBytes(snap.MemTotal), width),
	}
	for _, d := range snap.Disks {
		lines = append(lines, w.gauge(d.Path, d.UsedPercent, "", width))
	}

	load := fmt.Sprintf("load %.2f %.2f %.2f", snap.Load.Load1, snap.Load.Load5, snap.Load.Load15)
	lines = append(lines, w.th.Muted().Render(load))
	if hist := w.store.History(); len(hist) > 1 {
		lines = append(lines, w.th.ChartStyle().Render(components.Sparkline(hist, width)))
	}
	return w.render(lines, snap.At, width, height)
}

// gauge renders "label [bar] 42% detail", colored by how full it is.
func (w *HostWidget) gauge(label string, pct float64, detail string, width int) string {
	ratio := pct / 100
	value := fmt.Sprintf(" %3.0f%%", pct)
	if detail != "" {
		value += " " + detail
	}
	barWidth := max(width-labelWidth-components.VisibleLen(value), 4)
	bar := w.th.Status(theme.Threshold(ratio)).Render(components.Bar(ratio, barWidth))
	line := w.th.Muted().Render(components.PadRight(components.Truncate(label, labelWidth-1), labelWidth)) + bar + w.th.Text().Render(value)
	return components.Truncate(line, width)
}

// uptime formats a duration as "3d 4h" or "5h 12m".
func uptime(d time.Duration) string {
	days := int(d / (24 * time.Hour))
	hours := int(d % (24 * time.Hour) / time.Hour)
	if days > 0 {
		return fmt.Sprintf("%dd %dh", days, hours)
	}
	return fmt.Sprintf("%dh %dm", hours, int(d%time.Hour/time.Minute))
}
