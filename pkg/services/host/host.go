// Package host reports a small snapshot of the local machine: hostname,
// uptime, load averages, CPU and memory usage. It uses gopsutil so it works
// on Linux and Darwin without reading /proc directly.
package host

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	gohost "github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"
)

// Name is the source identifier.
const Name = "host"

// Load holds system load averages.
type Load struct {
	Load1  float64 `json:"load1"`
	Load5  float64 `json:"load5"`
	Load15 float64 `json:"load15"`
}

// Disk holds usage data for a single mount point.
type Disk struct {
	Path        string  `json:"path"`
	UsedPercent float64 `json:"used_percent"`
}

// Snapshot is the value produced by one Load call.
type Snapshot struct {
	Hostname   string        `json:"hostname"`
	Platform   string        `json:"platform"`
	Uptime     time.Duration `json:"uptime"`
	Load       Load          `json:"load"`
	CPUPercent float64       `json:"cpu_percent"`
	CPUCount   int           `json:"cpu_count"`
	MemPercent float64       `json:"mem_percent"`
	MemUsed    uint64        `json:"mem_used"`
	MemTotal   uint64        `json:"mem_total"`
	Disks      []Disk        `json:"disks"`
	At         time.Time     `json:"at"`
}

// Config controls which mounts are reported.
type Config struct {
	// Mounts lists the mount paths to report. Empty means "/" only.
	Mounts []string
}

// Service gathers host metrics.
type Service struct {
	cfg Config
}

// New creates a host Service.
func New(cfg Config) *Service {
	if len(cfg.Mounts) == 0 {
		cfg.Mounts = []string{"/"}
	}
	return &Service{cfg: cfg}
}

// Name returns "host".
func (s *Service) Name() string { return Name }

// Load gathers a snapshot. Individual reader failures are joined into the
// returned error; the snapshot still carries whatever succeeded. When every
// reader fails the snapshot is zero.
func (s *Service) Load(ctx context.Context, now time.Time) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{At: now}
	readers := []struct {
		name string
		fn   func(context.Context, *Snapshot) error
	}{
		{"info", readInfo},
		{"load", readLoad},
		{"cpu", readCPU},
		{"memory", readMemory},
		{"disk", s.readDisks},
	}

	var errs []error
	for _, p := range readers {
		if err := p.fn(ctx, &snap); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", p.name, err))
		}
	}

	if len(errs) == len(readers) {
		return Snapshot{}, fmt.Errorf("host: all readers failed: %w", errors.Join(errs...))
	}
	if len(errs) > 0 {
		return snap, fmt.Errorf("host: partial errors: %w", errors.Join(errs...))
	}
	return snap, nil
}

func readInfo(ctx context.Context, snap *Snapshot) error {
	info, err := gohost.InfoWithContext(ctx)
	if err != nil {
		return err
	}
	snap.Hostname = info.Hostname
	snap.Platform = info.Platform
	snap.Uptime = time.Duration(info.Uptime) * time.Second
	return nil
}

func readLoad(ctx context.Context, snap *Snapshot) error {
	avg, err := load.AvgWithContext(ctx)
	if err != nil {
		return err
	}
	snap.Load = Load{Load1: avg.Load1, Load5: avg.Load5, Load15: avg.Load15}
	return nil
}

func readCPU(ctx context.Context, snap *Snapshot) error {
	// interval=0 compares against the previous call, which is what a
	// periodic refresh wants.
	total, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		return err
	}
	if len(total) > 0 {
		snap.CPUPercent = total[0]
	}
	count, err := cpu.CountsWithContext(ctx, true)
	if err != nil {
		return err
	}
	snap.CPUCount = count
	return nil
}

func readMemory(ctx context.Context, snap *Snapshot) error {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return err
	}
	snap.MemPercent = vm.UsedPercent
	snap.MemUsed = vm.Used
	snap.MemTotal = vm.Total
	return nil
}

func (s *Service) readDisks(ctx context.Context, snap *Snapshot) error {
	var errs []error
	for _, mp := range s.cfg.Mounts {
		usage, err := disk.UsageWithContext(ctx, mp)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", mp, err))
			continue
		}
		snap.Disks = append(snap.Disks, Disk{Path: usage.Path, UsedPercent: usage.UsedPercent})
	}
	if len(snap.Disks) == 0 && len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
