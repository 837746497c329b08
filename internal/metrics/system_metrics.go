package metrics

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// MetricsManager is a singleton owning the registry every dashboard metric is
// registered on, plus the host and process gauges of the API process
type MetricsManager struct {
	hostCPU    *prometheus.GaugeVec
	hostMemory *prometheus.GaugeVec

	// process gauges, labelled by "resident", "open_fds", "goroutines", "heap_alloc"
	processStats     *prometheus.GaugeVec
	processStartTime prometheus.Gauge
	gcPause          prometheus.Histogram

	proc     *process.Process
	registry *prometheus.Registry

	initialized bool
	mu          sync.RWMutex
}

var (
	instance *MetricsManager
	once     sync.Once
)

// GetInstance returns the singleton instance of MetricsManager
func GetInstance() *MetricsManager {
	once.Do(func() {
		instance = &MetricsManager{
			registry: prometheus.NewRegistry(),
		}
	})
	return instance
}

// InitializeMetrics registers the host and process gauges once
func (mm *MetricsManager) InitializeMetrics() {
	mm.mu.Lock()
	defer mm.mu.Unlock()

	if mm.initialized {
		return
	}

	mm.hostCPU = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "icudash_host_cpu_usage_percent",
		Help: "CPU usage of the host running the dashboard API, per core",
	}, []string{"core"})
	mm.hostMemory = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "icudash_host_memory_bytes",
		Help: "Host memory by kind (total, available, used)",
	}, []string{"kind"})
	mm.processStats = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "icudash_process_stat",
		Help: "Dashboard API process statistics (resident bytes, open fds, goroutines, heap bytes)",
	}, []string{"stat"})
	mm.processStartTime = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "icudash_process_start_time_seconds",
		Help: "Start time of the dashboard API process since unix epoch in seconds",
	})
	mm.gcPause = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "icudash_gc_pause_seconds",
		Help:    "Most recent GC pause observed at each collection",
		Buckets: prometheus.ExponentialBuckets(1e-6, 4, 10),
	})

	mm.registry.MustRegister(
		mm.hostCPU,
		mm.hostMemory,
		mm.processStats,
		mm.processStartTime,
		mm.gcPause,
	)

	if proc, err := process.NewProcess(int32(os.Getpid())); err == nil {
		mm.proc = proc
		if created, err := proc.CreateTime(); err == nil {
			mm.processStartTime.Set(float64(created) / 1000)
		}
	}

	mm.initialized = true
}

// Handler serves the MetricsManager registry in the Prometheus text format
func Handler() http.Handler {
	return promhttp.HandlerFor(GetInstance().registry, promhttp.HandlerOpts{})
}

// StartSystemMetrics collects host and process metrics every interval until
// ctx ends. It does nothing unless ENABLE_SYSTEM_METRICS is "true".
func StartSystemMetrics(ctx context.Context, interval time.Duration) {
	if os.Getenv("ENABLE_SYSTEM_METRICS") != "true" {
		return
	}

	mm := GetInstance()
	mm.InitializeMetrics()
	mm.collect()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				mm.collect()
			}
		}
	}()
}

// collect takes one sample of every host and process gauge
func (mm *MetricsManager) collect() {
	mm.mu.RLock()
	defer mm.mu.RUnlock()

	if !mm.initialized {
		return
	}

	if perCore, err := cpu.Percent(0, true); err == nil {
		for i, pct := range perCore {
			mm.hostCPU.WithLabelValues(fmt.Sprintf("cpu%d", i)).Set(pct)
		}
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		mm.hostMemory.WithLabelValues("total").Set(float64(vm.Total))
		mm.hostMemory.WithLabelValues("available").Set(float64(vm.Available))
		mm.hostMemory.WithLabelValues("used").Set(float64(vm.Used))
	}

	if mm.proc != nil {
		if info, err := mm.proc.MemoryInfo(); err == nil {
			mm.processStats.WithLabelValues("resident").Set(float64(info.RSS))
		}
		if fds, err := mm.proc.NumFDs(); err == nil {
			mm.processStats.WithLabelValues("open_fds").Set(float64(fds))
		}
	}

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	mm.processStats.WithLabelValues("goroutines").Set(float64(runtime.NumGoroutine()))
	mm.processStats.WithLabelValues("heap_alloc").Set(float64(ms.HeapAlloc))
	if ms.NumGC > 0 {
		mm.gcPause.Observe(time.Duration(ms.PauseNs[(ms.NumGC+255)%256]).Seconds())
	}
}
