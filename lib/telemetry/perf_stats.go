package telemetry

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"go.opentelemetry.io/otel"
)

var meter = otel.Meter("go.perf_stats")
var cpuGauge, _ = meter.Float64Gauge("cpu_usage")
var memoryGauge, _ = meter.Int64Gauge("allocated_mb")
var goroutineGauge, _ = meter.Int64Gauge("goroutine_count")

// LogPerfStats samples process statistics once, records them as gauges and
// logs them under `label`.
func LogPerfStats(ctx context.Context, label string) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	allocatedMb := int64(memStats.Alloc / 1_000_000)
	goroutines := int64(runtime.NumGoroutine())
	memoryGauge.Record(ctx, allocatedMb)
	goroutineGauge.Record(ctx, goroutines)

	attrs := []any{
		"label", label,
		"allocated_mb", allocatedMb,
		"goroutines", goroutines,
	}

	cpuUsage, err := cpu.PercentWithContext(ctx, 200*time.Millisecond, false)
	if err == nil && len(cpuUsage) > 0 {
		cpuGauge.Record(ctx, cpuUsage[0])
		attrs = append(attrs, "cpu_percent", cpuUsage[0])
	} else if err != nil {
		slog.DebugContext(ctx, "failed to read cpu usage", "err", err)
	}

	slog.InfoContext(ctx, "perf stats", attrs...)
}
