package sysinfo

import (
	"bytes"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollect(t *testing.T) {
	info := Collect()
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.Equal(t, runtime.GOOS, info.OS)
	assert.Equal(t, runtime.NumCPU(), info.NumCPU)
	assert.Positive(t, info.GOMAXPROCS)
	assert.Positive(t, info.Sys)
}

func TestDefaultWorkers(t *testing.T) {
	n := DefaultWorkers()
	assert.GreaterOrEqual(t, n, 1)
	assert.LessOrEqual(t, n, runtime.NumCPU())
}

func TestWorkersFor(t *testing.T) {
	assert.Equal(t, 8, workersFor(0, 8), "undetected")
	assert.Equal(t, 4, workersFor(16, 4), "capped by affinity")
	assert.Equal(t, 6, workersFor(6, 8))
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "unknown", formatBytes(-1))
	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "32.0 KiB", formatBytes(32*1024))
	assert.Equal(t, "1.5 MiB", formatBytes(3<<19))
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Info{GoVersion: "go1.25", OS: "linux", Arch: "amd64", NumCPU: 4, L1DataCache: -1, L2Cache: -1}.Write(&buf))

	out := buf.String()
	assert.Contains(t, out, "os/arch:")
	assert.Contains(t, out, "linux/amd64")
	assert.Contains(t, out, "cpu:             unknown")
	assert.Contains(t, out, "default workers: 4")
	assert.Equal(t, 16, strings.Count(out, "\n"))
	assert.Contains(t, out, "wide simd:       false")
}
