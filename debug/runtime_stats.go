package debug

// Runtime metrics logger, started only when config.Debug is true. Each
// capture spawns a short-lived post-processing goroutine and preview frames
// cycle through a pool, so goroutine count and heap growth are the two
// numbers worth watching.

import (
	"log/slog"
	"runtime"
	"runtime/metrics"
	"time"
)

// StartRuntimeLogger launches a ticker that logs goroutine count and memory
// stats. It is lightweight; disable by running without the debug flag.
func StartRuntimeLogger(interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		interval = time.Second
	}

	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		samples := []metrics.Sample{{Name: "/sched/goroutines:goroutines"}}
		for range t.C {
			metrics.Read(samples)
			goroutines := samples[0].Value.Uint64()
			var ms runtime.MemStats
			runtime.ReadMemStats(&ms)
			logger.Info("runtime-stats",
				slog.Uint64("goroutines", goroutines),
				slog.Uint64("heap_alloc", ms.HeapAlloc),
				slog.Uint64("heap_inuse", ms.HeapInuse),
				slog.Uint64("stack_inuse", uint64(ms.StackInuse)),
				slog.Uint64("num_gc", uint64(ms.NumGC)),
			)
		}
	}()
}
