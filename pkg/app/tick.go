package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// TickCmd returns a bubbletea Cmd that sends a TickEvent after the given
// duration. This drives the periodic UI refresh cycle.
func TickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return TickEvent{Time: t}
	})
}

// RefreshCmd runs a manual refresh of source (or of everything when source
// is empty) and delivers a RefreshDoneEvent. The refresh is bounded by
// timeout when it is positive.
func RefreshCmd(r Refresher, source string, timeout time.Duration) tea.Cmd {
	if r == nil {
		return nil
	}
	return func() tea.Msg {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		start := time.Now()
		var err error
		if source == "" {
			err = r.RefreshAll(ctx)
		} else {
			err = r.Refresh(ctx, source)
		}
		return RefreshDoneEvent{Source: source, Err: err, Took: time.Since(start)}
	}
}
