// Package metrics instruments the offset log engine with Prometheus
// collectors. It is library-only: nothing here registers an HTTP
// handler or starts a server — wiring /metrics is the embedding
// application's job, not the core's (spec.md §1 keeps RPC surfaces out
// of scope).
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector holds the counters and histograms a Log reports to as it
// operates. Construct with NewCollector; the zero value is not usable.
type Collector struct {
	appendsTotal       prometheus.Counter
	appendBytesTotal   prometheus.Counter
	appendDuration     prometheus.Histogram
	readsTotal         prometheus.Counter
	corruptFramesTotal prometheus.Counter
}

// NewCollector creates and registers a new Collector against reg.
// Pass prometheus.DefaultRegisterer in a real process, or a fresh
// prometheus.NewRegistry() in tests or when more than one Collector
// lives in the same process — registering the same metric name twice
// against one registerer panics, same as it would with a bare
// promauto.NewCounter call.
func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		appendsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "huginn_appends_total",
			Help: "Total number of Append and AppendBatch calls made against the offset log.",
		}),
		appendBytesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "huginn_append_bytes_total",
			Help: "Total number of payload bytes appended to the offset log.",
		}),
		appendDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "huginn_append_duration_seconds",
			Help:    "Time taken to encode and write a single append (or append_batch) call.",
			Buckets: prometheus.DefBuckets,
		}),
		readsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "huginn_reads_total",
			Help: "Total number of successful Get calls.",
		}),
		corruptFramesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "huginn_corrupt_frames_total",
			Help: "Total number of frames that failed framing validation.",
		}),
	}
}

// ObserveAppend records one append (or one append_batch call covering
// n bytes across one or more records).
func (c *Collector) ObserveAppend(bytes int, dur time.Duration) {
	if c == nil {
		return
	}
	c.appendsTotal.Inc()
	c.appendBytesTotal.Add(float64(bytes))
	c.appendDuration.Observe(dur.Seconds())
}

// ObserveRead records one successful Get.
func (c *Collector) ObserveRead() {
	if c == nil {
		return
	}
	c.readsTotal.Inc()
}

// ObserveCorruption records one frame that failed validation, whether
// encountered via Get, an iterator step, or IntegrityCheck.
func (c *Collector) ObserveCorruption() {
	if c == nil {
		return
	}
	c.corruptFramesTotal.Inc()
}
