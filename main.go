// infoboard is a terminal dashboard for the clock, weather, calendar,
// transit departures, news headlines and the local host.
//
// Usage:
//
//	infoboard [flags]
//
// Flags:
//
//	-config string    Path to configuration file (default: ~/.config/infoboard/config.toml)
//	-once             Load every source, print one frame and exit
//	-inspect string   Load every source and print the value at a store path (e.g. weather.forecast.location)
//	-status           Load every source and print per-source health
//	-use-mocks        Use sample data instead of real sources
//	-verbose          Enable verbose logging
//	-version          Print version and exit
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"gitlab.com/tinyland/lab/infoboard/pkg/app"
	"gitlab.com/tinyland/lab/infoboard/pkg/config"
	"gitlab.com/tinyland/lab/infoboard/pkg/dashboard"
	"gitlab.com/tinyland/lab/infoboard/pkg/terminal"
	"gitlab.com/tinyland/lab/infoboard/pkg/theme"
	"gitlab.com/tinyland/lab/infoboard/pkg/widgets"
)

var (
	version = "0.1.0"
	commit  = "dev"
	date    = "unknown"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to configuration file")
		once       = flag.Bool("once", false, "Load every source, print one frame and exit")
		inspect    = flag.String("inspect", "", "Print the value at a store path and exit")
		showStatus = flag.Bool("status", false, "Print per-source health and exit")
		useMocks   = flag.Bool("use-mocks", false, "Use sample data instead of real sources")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
		showVer    = flag.Bool("version", false, "Print version and exit")
	)
	flag.Parse()

	if *showVer {
		fmt.Printf("infoboard %s (commit: %s, built: %s)\n", version, commit, date)
		return
	}

	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.LoadFromFile(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *useMocks {
		dashboard.EnableAll(cfg)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	interactive := !*once && *inspect == "" && !*showStatus
	logger, closeLog, err := setupLogger(cfg, *verbose, interactive)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var opts []dashboard.Option
	if *useMocks {
		logger.Info("using sample data")
		opts = append(opts, dashboard.WithServices(dashboard.MockServices()))
	}
	d, err := dashboard.New(cfg, logger, opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build dashboard: %v\n", err)
		os.Exit(1)
	}

	th, err := theme.Resolve(cfg.Display.Theme)
	if err != nil {
		logger.Warn("falling back to default theme", "theme", cfg.Display.Theme, "error", err)
		th = theme.Default()
	}

	switch {
	case *inspect != "":
		os.Exit(runInspect(ctx, d, cfg, *inspect))
	case *showStatus:
		os.Exit(runStatus(ctx, d, cfg))
	case *once:
		os.Exit(runOnce(ctx, d, cfg, th))
	}

	if err := runTUI(ctx, d, cfg, th, logger); err != nil {
		logger.Error("TUI error", "error", err)
		fmt.Fprintf(os.Stderr, "infoboard: %v\n", err)
		os.Exit(1)
	}
}

// setupLogger logs to stderr, or to the configured log file while the TUI
// owns the terminal.
func setupLogger(cfg *config.Config, verbose, interactive bool) (*slog.Logger, func(), error) {
	level := parseLevel(cfg.General.LogLevel)
	if verbose {
		level = slog.LevelDebug
	}

	var w io.Writer = os.Stderr
	closeFn := func() {}
	if interactive {
		if cfg.General.LogFile == "" {
			return slog.New(slog.DiscardHandler), closeFn, nil
		}
		if err := os.MkdirAll(filepath.Dir(cfg.General.LogFile), 0o755); err != nil {
			return nil, nil, err
		}
		f, err := os.OpenFile(cfg.General.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, err
		}
		w = f
		closeFn = func() { f.Close() }
	}
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	return logger, closeFn, nil
}

func parseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return slog.LevelInfo
	}
	return l
}

// loadOnce refreshes every source once, bounded by the request timeout.
// Individual failures are reported but do not abort.
func loadOnce(ctx context.Context, d *dashboard.Dashboard, cfg *config.Config) {
	ctx, cancel := context.WithTimeout(ctx, cfg.General.RequestTimeout.Duration+5*time.Second)
	defer cancel()
	if err := d.RefreshAll(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "some sources failed: %v\n", err)
	}
}

func runInspect(ctx context.Context, d *dashboard.Dashboard, cfg *config.Config, path string) int {
	loadOnce(ctx, d, cfg)
	v, err := d.Lookup(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	return 0
}

func runStatus(ctx context.Context, d *dashboard.Dashboard, cfg *config.Config) int {
	loadOnce(ctx, d, cfg)
	code := 0
	for _, st := range d.Status() {
		state := "ok"
		if !st.Healthy {
			state = "failing"
			code = 1
		}
		line := fmt.Sprintf("%-10s %-8s runs=%d errors=%d", st.Name, state, st.RunCount, st.ErrorCount)
		if st.LastError != nil {
			line += " last error: " + st.LastError.Error()
		}
		fmt.Println(line)
	}
	return code
}

func newModel(d *dashboard.Dashboard, cfg *config.Config, th theme.Theme) app.AppModel {
	env := widgets.EnvFromConfig(cfg, th, time.Now)
	ws := widgets.Build(widgets.Types, d.Stores, cfg, env)
	return app.NewAppModel(app.Config{
		RefreshInterval: cfg.Display.RenderInterval.Duration,
		RefreshTimeout:  cfg.General.RequestTimeout.Duration + 5*time.Second,
		Theme:           th,
		Layout:          cfg.Display.Layout,
		Refresher:       d,
	}, ws...)
}

// runOnce prints a single frame sized to the terminal.
func runOnce(ctx context.Context, d *dashboard.Dashboard, cfg *config.Config, th theme.Theme) int {
	lipgloss.SetColorProfile(terminal.ColorProfile(os.Stdout))
	loadOnce(ctx, d, cfg)

	size := terminal.GetSize()
	var m tea.Model = newModel(d, cfg, th)
	m, _ = m.Update(tea.WindowSizeMsg{Width: size.Cols, Height: size.Rows})
	fmt.Println(m.View())
	return 0
}

func runTUI(ctx context.Context, d *dashboard.Dashboard, cfg *config.Config, th theme.Theme, logger *slog.Logger) error {
	p := tea.NewProgram(newModel(d, cfg, th),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)

	for _, name := range append([]string{dashboard.Clock}, d.Sources()...) {
		d.Store(name).OnChange(func() { p.Send(app.StoreChangedEvent{Store: name}) })
	}

	if err := d.Start(ctx); err != nil {
		return err
	}
	defer d.Stop()

	logger.Info("starting TUI", "sources", d.Sources(), "theme", th.Name)
	_, err := p.Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}
