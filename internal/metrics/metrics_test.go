package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fakeStat = `cpu  8000 200 2000 10000 1000 500 100 0 0 0
cpu0 3000 100 1000 5000 500 200 50 0 0 0
cpu1 1000 100 1000 3000 500 300 50 0 0 0
intr 12345
ctxt 6789
`

func writeStat(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stat")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestSnapshotResponseTime(t *testing.T) {
	start := time.Now()
	c := &Collector{
		now:      func() time.Time { return start.Add(42 * time.Millisecond) },
		statPath: writeStat(t, fakeStat),
	}

	snap := c.Snapshot(start)
	assert.InDelta(t, 42.000, snap.ResponseTimeMs, 0.0005)
}

func TestSnapshotResponseTimePrecision(t *testing.T) {
	start := time.Now()
	c := &Collector{
		now:      func() time.Time { return start.Add(1234567 * time.Nanosecond) },
		statPath: writeStat(t, fakeStat),
	}

	// 1.234567 ms rounds to three decimal places.
	snap := c.Snapshot(start)
	assert.InDelta(t, 1.235, snap.ResponseTimeMs, 0.0005)
}

func TestReadCPUAggregation(t *testing.T) {
	c := &Collector{now: time.Now, statPath: writeStat(t, fakeStat)}

	cpu, err := c.readCPU()
	require.NoError(t, err)

	// Per-core sums: user=4000 nice=200 system=2000 idle=8000 irq=500,
	// total=14700. The aggregate "cpu " line is ignored.
	assert.Equal(t, uint64(14700), cpu.TotalTicks)
	assert.InDelta(t, 27.21, cpu.UserPercent, 0.005)
	assert.InDelta(t, 13.61, cpu.SystemPercent, 0.005)
	assert.InDelta(t, 54.42, cpu.IdlePercent, 0.005)
}

func TestCPUPercentagesAreSane(t *testing.T) {
	c := &Collector{now: time.Now, statPath: writeStat(t, fakeStat)}

	cpu, err := c.readCPU()
	require.NoError(t, err)

	for name, v := range map[string]float64{
		"user":   cpu.UserPercent,
		"system": cpu.SystemPercent,
		"idle":   cpu.IdlePercent,
	} {
		assert.GreaterOrEqual(t, v, 0.0, name)
		assert.LessOrEqual(t, v, 100.0, name)
	}
	assert.LessOrEqual(t, cpu.UserPercent+cpu.SystemPercent+cpu.IdlePercent, 100.0)
}

func TestReadCPUMissingStat(t *testing.T) {
	c := &Collector{now: time.Now, statPath: filepath.Join(t.TempDir(), "missing")}

	_, err := c.readCPU()
	assert.Error(t, err)

	// Snapshot still succeeds, reporting zero CPU usage.
	snap := c.Snapshot(time.Now())
	assert.Zero(t, snap.CPU)
}

func TestSnapshotMemory(t *testing.T) {
	c := &Collector{now: time.Now, statPath: writeStat(t, fakeStat)}

	snap := c.Snapshot(time.Now())
	assert.Greater(t, snap.Memory.RSS, uint64(0))
	assert.Greater(t, snap.Memory.HeapUsed, uint64(0))
	assert.GreaterOrEqual(t, snap.Memory.HeapTotal, snap.Memory.HeapUsed)
}
