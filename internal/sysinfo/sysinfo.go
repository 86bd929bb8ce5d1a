// Package sysinfo describes the host for the info command and sizes the
// default worker pool.
package sysinfo

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/klauspost/cpuid/v2"
)

// Info is a snapshot of the runtime and CPU.
type Info struct {
	GoVersion     string
	OS            string
	Arch          string
	NumCPU        int
	GOMAXPROCS    int
	CPUBrand      string
	Vendor        string
	PhysicalCores int
	LogicalCores  int
	CacheLine     int
	L1DataCache   int // bytes, -1 if unknown
	L2Cache       int // bytes, -1 if unknown
	Features      []string
	WideSIMD      bool // AVX2 or AVX-512F
	HeapAlloc     uint64
	Sys           uint64
}

// Collect gathers Info from the runtime and cpuid.
func Collect() Info {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return Info{
		GoVersion:     runtime.Version(),
		OS:            runtime.GOOS,
		Arch:          runtime.GOARCH,
		NumCPU:        runtime.NumCPU(),
		GOMAXPROCS:    runtime.GOMAXPROCS(0),
		CPUBrand:      cpuid.CPU.BrandName,
		Vendor:        cpuid.CPU.VendorString,
		PhysicalCores: cpuid.CPU.PhysicalCores,
		LogicalCores:  cpuid.CPU.LogicalCores,
		CacheLine:     cpuid.CPU.CacheLine,
		L1DataCache:   cpuid.CPU.Cache.L1D,
		L2Cache:       cpuid.CPU.Cache.L2,
		Features:      cpuid.CPU.FeatureSet(),
		WideSIMD:      HasWideSIMD(),
		HeapAlloc:     ms.HeapAlloc,
		Sys:           ms.Sys,
	}
}

// DefaultWorkers returns the worker count used when none is configured:
// the logical cores cpuid reports, capped at runtime.NumCPU() so a
// restricted CPU set is respected.
func DefaultWorkers() int {
	return workersFor(cpuid.CPU.LogicalCores, runtime.NumCPU())
}

func workersFor(logical, numCPU int) int {
	if logical <= 0 || logical > numCPU {
		return numCPU
	}
	return logical
}

// HasWideSIMD reports whether the CPU has AVX2 or AVX-512F.
func HasWideSIMD() bool {
	return cpuid.CPU.Supports(cpuid.AVX2) || cpuid.CPU.Supports(cpuid.AVX512F)
}

// Write prints i as aligned "key: value" lines.
func (i Info) Write(w io.Writer) error {
	brand := i.CPUBrand
	if brand == "" {
		brand = "unknown"
	}
	lines := []struct {
		k string
		v any
	}{
		{"go", i.GoVersion},
		{"os/arch", i.OS + "/" + i.Arch},
		{"cpus", i.NumCPU},
		{"gomaxprocs", i.GOMAXPROCS},
		{"cpu", brand},
		{"vendor", i.Vendor},
		{"physical cores", i.PhysicalCores},
		{"logical cores", i.LogicalCores},
		{"cache line", fmt.Sprintf("%d B", i.CacheLine)},
		{"l1d cache", formatBytes(i.L1DataCache)},
		{"l2 cache", formatBytes(i.L2Cache)},
		{"features", strings.Join(i.Features, " ")},
		{"wide simd", i.WideSIMD},
		{"heap alloc", formatBytes(int(i.HeapAlloc))},
		{"sys memory", formatBytes(int(i.Sys))},
		{"default workers", workersFor(i.LogicalCores, i.NumCPU)},
	}
	for _, l := range lines {
		if _, err := fmt.Fprintf(w, "%-16s %v\n", l.k+":", l.v); err != nil {
			return err
		}
	}
	return nil
}

func formatBytes(n int) string {
	switch {
	case n < 0:
		return "unknown"
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
