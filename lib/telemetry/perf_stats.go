package telemetry

import (
	"context"
	"os"
	"runtime"

	"github.com/shirou/gopsutil/v4/process"
	"go.opentelemetry.io/otel/metric"
)

// InstrumentPerfStats reports the cpu, memory and goroutine usage of this
// process on every metric collection until ctx is done.
func InstrumentPerfStats(ctx context.Context) error {
	proc, err := process.NewProcessWithContext(ctx, int32(os.Getpid()))
	if err != nil {
		return err
	}

	meter := Meter("matchcast.perf_stats")
	cpuUsage, err := meter.Float64ObservableGauge(
		"process_cpu_percent",
		metric.WithDescription("Cpu usage of the process since the last collection."),
	)
	if err != nil {
		return err
	}
	rss, err := meter.Int64ObservableGauge("process_rss", metric.WithUnit("By"))
	if err != nil {
		return err
	}
	heap, err := meter.Int64ObservableGauge("heap_alloc", metric.WithUnit("By"))
	if err != nil {
		return err
	}
	goroutines, err := meter.Int64ObservableGauge("goroutine_count")
	if err != nil {
		return err
	}

	registration, err := meter.RegisterCallback(
		func(cbctx context.Context, o metric.Observer) error {
			var memStats runtime.MemStats
			runtime.ReadMemStats(&memStats)
			o.ObserveInt64(heap, int64(memStats.HeapAlloc))
			o.ObserveInt64(goroutines, int64(runtime.NumGoroutine()))

			// 0 interval compares against the previous call
			percent, err := proc.PercentWithContext(cbctx, 0)
			if err == nil {
				o.ObserveFloat64(cpuUsage, percent)
			}
			mem, err := proc.MemoryInfoWithContext(cbctx)
			if err == nil {
				o.ObserveInt64(rss, int64(mem.RSS))
			}
			return nil
		},
		cpuUsage, rss, heap, goroutines,
	)
	if err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		registration.Unregister()
	}()
	return nil
}
