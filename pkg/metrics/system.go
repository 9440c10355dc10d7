package metrics

import (
	"context"
	"runtime"
	"time"
)

// CollectSystem samples runtime statistics into the system gauges.
func CollectSystem() {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	UpdateSystemMemoryUsage(ms.Alloc)
	UpdateSystemGoroutineCount(runtime.NumGoroutine())
	if ms.NumGC > 0 {
		last := ms.PauseNs[(ms.NumGC+255)%256]
		RecordSystemGCPauseTime(float64(last) / float64(time.Millisecond))
	}
}

// RunSystemCollector samples runtime statistics on the manager's refresh
// interval until ctx is cancelled.
func RunSystemCollector(ctx context.Context) {
	ticker := time.NewTicker(globalManager.refreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			CollectSystem()
		}
	}
}
