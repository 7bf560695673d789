package metrics

import (
	"fmt"
	"math"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"telemetry_logger/internal/models"
)

const procStatPath = "/proc/stat"

// Snapshot is everything the collector captures at response completion.
type Snapshot struct {
	ResponseTimeMs float64
	Memory         models.MemoryUsage
	CPU            models.CPUUsage
}

// Collector reads timing, process memory and machine-wide CPU counters.
// It has no side effects; every call is a pure read of process/OS state.
type Collector struct {
	now      func() time.Time
	statPath string
}

// NewCollector returns a collector backed by the real clock and /proc/stat.
func NewCollector() *Collector {
	return &Collector{
		now:      time.Now,
		statPath: procStatPath,
	}
}

// Snapshot captures the state at the moment a response completes. start must
// come from the same clock (time.Now at request begin); the delta uses the
// monotonic reading embedded in it. CPU counters are unavailable on hosts
// without /proc/stat and are reported as zeros there.
func (c *Collector) Snapshot(start time.Time) Snapshot {
	elapsed := c.now().Sub(start)

	snap := Snapshot{
		ResponseTimeMs: round(float64(elapsed)/float64(time.Millisecond), 3),
		Memory:         readMemory(),
	}
	if cpu, err := c.readCPU(); err == nil {
		snap.CPU = cpu
	}
	return snap
}

func readMemory() models.MemoryUsage {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	return models.MemoryUsage{
		RSS:       ms.Sys,
		HeapTotal: ms.HeapSys,
		HeapUsed:  ms.HeapAlloc,
		External:  ms.StackSys + ms.MSpanSys + ms.MCacheSys,
	}
}

// readCPU sums the per-core tick counters (user, nice, system, idle, irq)
// from /proc/stat and turns them into utilization ratios since boot.
func (c *Collector) readCPU() (models.CPUUsage, error) {
	data, err := os.ReadFile(c.statPath)
	if err != nil {
		return models.CPUUsage{}, err
	}

	var user, nice, system, idle, irq uint64
	for _, line := range strings.Split(string(data), "\n") {
		fields := strings.Fields(line)
		// per-core lines look like: cpu0 user nice system idle iowait irq softirq ...
		if len(fields) < 7 || !strings.HasPrefix(fields[0], "cpu") || fields[0] == "cpu" {
			continue
		}

		ticks := make([]uint64, 6)
		ok := true
		for i := range ticks {
			v, err := strconv.ParseUint(fields[i+1], 10, 64)
			if err != nil {
				ok = false
				break
			}
			ticks[i] = v
		}
		if !ok {
			continue
		}

		user += ticks[0]
		nice += ticks[1]
		system += ticks[2]
		idle += ticks[3]
		irq += ticks[5]
	}

	total := user + nice + system + idle + irq
	if total == 0 {
		return models.CPUUsage{}, fmt.Errorf("no per-core cpu lines in %s", c.statPath)
	}

	return models.CPUUsage{
		UserPercent:   round(float64(user)/float64(total)*100, 2),
		SystemPercent: round(float64(system)/float64(total)*100, 2),
		IdlePercent:   round(float64(idle)/float64(total)*100, 2),
		TotalTicks:    total,
	}, nil
}

func round(v float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(v*factor) / factor
}
