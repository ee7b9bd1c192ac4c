// Package metrics exposes pool, queue, and pipeline health to
// prometheus. The hot path never touches a collector; everything here is
// sampled on scrape from the lock-free statistics the core already
// maintains.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"mevcore/bufpool"
	"mevcore/mpsc"
)

// PipelineCounters is a point-in-time snapshot of the engine's atomic
// counters.
type PipelineCounters struct {
	Detected     uint64
	Dropped      uint64
	Submitted    uint64
	SubmitErrors uint64
	Malformed    uint64
	NotASwap     uint64
	Filtered     uint64
}

// Collector samples the pools, the queue, and a pipeline snapshot
// function at scrape time.
type Collector struct {
	pools    *bufpool.Set
	queue    *mpsc.Queue
	pipeline func() PipelineCounters
}

// NewCollector wires the three sources. pipeline may be nil when no
// engine is running (tooling, tests).
func NewCollector(pools *bufpool.Set, queue *mpsc.Queue, pipeline func() PipelineCounters) *Collector {
	return &Collector{pools: pools, queue: queue, pipeline: pipeline}
}

// NewRegistry returns a fresh prometheus registry with the collector
// installed, ready for promhttp exposure.
func NewRegistry(c *Collector) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(c)
	return reg
}

var (
	descQueueDepth = prometheus.NewDesc(
		"mevcore_queue_depth",
		"Approximate opportunity queue occupancy",
		nil, nil,
	)
	descQueueCapacity = prometheus.NewDesc(
		"mevcore_queue_capacity",
		"Fixed opportunity queue capacity",
		nil, nil,
	)
	descPoolAvailable = prometheus.NewDesc(
		"mevcore_pool_available_blocks",
		"Free blocks currently tracked by the pool",
		[]string{"class"}, nil,
	)
	descPoolSlowAllocs = prometheus.NewDesc(
		"mevcore_pool_slow_allocs_total",
		"Acquires that fell back to the allocator",
		[]string{"class"}, nil,
	)
	descPoolDiscards = prometheus.NewDesc(
		"mevcore_pool_discards_total",
		"Releases dropped because the pool was at tracked capacity",
		[]string{"class"}, nil,
	)
	descPipeline = prometheus.NewDesc(
		"mevcore_pipeline_events_total",
		"Pipeline events by outcome",
		[]string{"outcome"}, nil,
	)
)

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- descQueueDepth
	ch <- descQueueCapacity
	ch <- descPoolAvailable
	ch <- descPoolSlowAllocs
	ch <- descPoolDiscards
	ch <- descPipeline
}

// Collect implements prometheus.Collector. Pool and queue figures are
// approximate under concurrent traffic, which is all monitoring needs.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(descQueueDepth, prometheus.GaugeValue, float64(c.queue.Size()))
	ch <- prometheus.MustNewConstMetric(descQueueCapacity, prometheus.GaugeValue, float64(c.queue.Capacity()))

	emit := func(class string, st bufpool.Stats) {
		ch <- prometheus.MustNewConstMetric(descPoolAvailable, prometheus.GaugeValue, float64(st.Available), class)
		ch <- prometheus.MustNewConstMetric(descPoolSlowAllocs, prometheus.CounterValue, float64(st.SlowAllocs), class)
		ch <- prometheus.MustNewConstMetric(descPoolDiscards, prometheus.CounterValue, float64(st.Discards), class)
	}
	result, tx, calldata := c.pools.Stats()
	emit("result", result)
	emit("tx", tx)
	emit("calldata", calldata)

	if c.pipeline == nil {
		return
	}
	pc := c.pipeline()
	counter := func(outcome string, v uint64) {
		ch <- prometheus.MustNewConstMetric(descPipeline, prometheus.CounterValue, float64(v), outcome)
	}
	counter("detected", pc.Detected)
	counter("dropped", pc.Dropped)
	counter("submitted", pc.Submitted)
	counter("submit_error", pc.SubmitErrors)
	counter("malformed", pc.Malformed)
	counter("not_a_swap", pc.NotASwap)
	counter("filtered", pc.Filtered)
}
