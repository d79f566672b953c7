package metrics

import (
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
)

// runtimeMetric одна метрика рантайма: дескриптор плюс способ прочитать
// значение из MemStats.
type runtimeMetric struct {
	desc *prometheus.Desc
	kind prometheus.ValueType
	read func(ms *runtime.MemStats) float64

	// requiresGC метрика имеет смысл только после первого цикла GC
	requiresGC bool
}

// RuntimeCollector отдаёт горутины, память и GC процесса планировщика.
// Регистрируется из InitMetrics вместе с остальными метриками.
type RuntimeCollector struct {
	metrics []runtimeMetric
}

// NewRuntimeCollector создаёт коллектор с заданным пространством имён.
func NewRuntimeCollector(namespace, subsystem string) *RuntimeCollector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(
			prometheus.BuildFQName(namespace, subsystem, name),
			help,
			nil, nil,
		)
	}

	return &RuntimeCollector{
		metrics: []runtimeMetric{
			{
				desc: desc("runtime_goroutines", "Number of goroutines"),
				kind: prometheus.GaugeValue,
				read: func(*runtime.MemStats) float64 { return float64(runtime.NumGoroutine()) },
			},
			{
				desc: desc("runtime_memory_alloc_bytes", "Bytes allocated and still in use"),
				kind: prometheus.GaugeValue,
				read: func(ms *runtime.MemStats) float64 { return float64(ms.Alloc) },
			},
			{
				desc: desc("runtime_memory_total_alloc_bytes", "Total bytes allocated (even if freed)"),
				kind: prometheus.CounterValue,
				read: func(ms *runtime.MemStats) float64 { return float64(ms.TotalAlloc) },
			},
			{
				desc: desc("runtime_memory_sys_bytes", "Bytes obtained from system"),
				kind: prometheus.GaugeValue,
				read: func(ms *runtime.MemStats) float64 { return float64(ms.Sys) },
			},
			{
				desc: desc("runtime_gc_runs_total", "Total number of completed GC cycles"),
				kind: prometheus.CounterValue,
				read: func(ms *runtime.MemStats) float64 { return float64(ms.NumGC) },
			},
			{
				desc:       desc("runtime_gc_pause_seconds", "Last GC pause duration"),
				kind:       prometheus.GaugeValue,
				read:       lastGCPause,
				requiresGC: true,
			},
		},
	}
}

func lastGCPause(ms *runtime.MemStats) float64 {
	return float64(ms.PauseNs[(ms.NumGC-1)%uint32(len(ms.PauseNs))]) / 1e9
}

func (c *RuntimeCollector) Describe(ch chan<- *prometheus.Desc) {
	for _, m := range c.metrics {
		ch <- m.desc
	}
}

func (c *RuntimeCollector) Collect(ch chan<- prometheus.Metric) {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	for _, m := range c.metrics {
		if m.requiresGC && ms.NumGC == 0 {
			continue
		}
		ch <- prometheus.MustNewConstMetric(m.desc, m.kind, m.read(&ms))
	}
}
