package models

import (
	"time"

	"github.com/google/uuid"
)

// LogRecord is one immutable snapshot of a completed HTTP request: its verb,
// URL, final status, timing and the process/system resource counters captured
// at response completion. A record is built once per request and handed to
// exactly one sink.
type LogRecord struct {
	RequestID      uuid.UUID   `json:"request_id" db:"request_id"`
	Method         string      `json:"method" db:"method"`
	URL            string      `json:"url" db:"url"`
	StatusCode     int         `json:"status_code" db:"status_code"`
	ResponseTimeMs float64     `json:"response_time_ms" db:"response_time"`
	Timestamp      time.Time   `json:"timestamp" db:"timestamp"`
	MemoryUsage    MemoryUsage `json:"memory_usage" db:"memory_usage"`
	CPUUsage       CPUUsage    `json:"cpu_usage" db:"cpu_usage"`
}

// MemoryUsage is a point-in-time snapshot of the process allocator counters,
// in bytes. It is not a per-request delta.
type MemoryUsage struct {
	RSS       uint64 `json:"rss"`
	HeapTotal uint64 `json:"heap_total"`
	HeapUsed  uint64 `json:"heap_used"`
	External  uint64 `json:"external"`
}

// CPUUsage aggregates utilization across all logical CPUs since boot.
// Percentages are rounded to 2 decimals; TotalTicks is the raw tick sum.
// This is a machine-wide signal, not the cost of the single request.
type CPUUsage struct {
	UserPercent   float64 `json:"user_percent"`
	SystemPercent float64 `json:"system_percent"`
	IdlePercent   float64 `json:"idle_percent"`
	TotalTicks    uint64  `json:"total_ticks"`
}
