package system

import (
	"fmt"
	"os"
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// ResourceSnapshot describes the host and this process at one moment
type ResourceSnapshot struct {
	LogicalCPUs   int
	TotalMemory   uint64
	AvailMemory   uint64
	ProcessRSS    uint64
	ProcessCPUPct float64
}

// Snapshot collects what gopsutil can report. Missing values stay zero.
func Snapshot() ResourceSnapshot {
	var s ResourceSnapshot

	if n, err := cpu.Counts(true); err == nil {
		s.LogicalCPUs = n
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		s.TotalMemory = vm.Total
		s.AvailMemory = vm.Available
	}
	if p, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if mi, err := p.MemoryInfo(); err == nil {
			s.ProcessRSS = mi.RSS
		}
		if pct, err := p.CPUPercent(); err == nil {
			s.ProcessCPUPct = pct
		}
	}

	return s
}

// DefaultWorkers is the number of render bands worked on in parallel
func DefaultWorkers() int {
	if n, err := cpu.Counts(true); err == nil && n > 0 {
		return n
	}
	return runtime.NumCPU()
}

func (s ResourceSnapshot) String() string {
	return fmt.Sprintf("CPUs: %d | RAM: %s free of %s | RSS: %s | CPU: %.1f%%",
		s.LogicalCPUs, FormatBytes(s.AvailMemory), FormatBytes(s.TotalMemory), FormatBytes(s.ProcessRSS), s.ProcessCPUPct)
}

func FormatBytes(b uint64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := uint64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}
