// Package prom exports the buffer and hash Metrics hooks as Prometheus
// collectors. Core packages only see their local Metrics interfaces; this
// adapter is wired in by the embedding application.
package prom

import (
	"github.com/prometheus/client_golang/prometheus"

	"bufferpool-golang/src/buffer"
	"bufferpool-golang/src/hash"
)

// ReplacerAdapter implements buffer.Metrics.
// Safe for concurrent use; all Prometheus metric types are goroutine-safe.
type ReplacerAdapter struct {
	evictions prometheus.Counter
	evictable prometheus.Gauge
}

// NewReplacer constructs a Prometheus adapter for a replacer.
//   - reg:         registry to register metrics with (nil => prometheus.DefaultRegisterer)
//   - ns, sub:     Prometheus namespace and subsystem
//   - constLabels: static labels applied to all metrics (may be nil)
func NewReplacer(reg prometheus.Registerer, ns, sub string, constLabels prometheus.Labels) *ReplacerAdapter {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	a := &ReplacerAdapter{
		evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "evictions_total",
			Help:        "Frames evicted by the replacement policy",
			ConstLabels: constLabels,
		}),
		evictable: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "evictable_frames",
			Help:        "Frames currently eligible for eviction",
			ConstLabels: constLabels,
		}),
	}
	reg.MustRegister(a.evictions, a.evictable)
	return a
}

func (a *ReplacerAdapter) Evict() { a.evictions.Inc() }

func (a *ReplacerAdapter) Size(evictable int) { a.evictable.Set(float64(evictable)) }

var _ buffer.Metrics = (*ReplacerAdapter)(nil)

// TableAdapter implements hash.Metrics.
type TableAdapter struct {
	lookups     *prometheus.CounterVec
	splits      prometheus.Counter
	globalDepth prometheus.Gauge
	buckets     prometheus.Gauge
}

// NewTable constructs a Prometheus adapter for a hash table.
// Arguments as in NewReplacer.
func NewTable(reg prometheus.Registerer, ns, sub string, constLabels prometheus.Labels) *TableAdapter {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	a := &TableAdapter{
		lookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   sub,
				Name:        "lookups_total",
				Help:        "Key lookups by outcome",
				ConstLabels: constLabels,
			},
			[]string{"outcome"},
		),
		splits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "bucket_splits_total",
			Help:        "Bucket splits",
			ConstLabels: constLabels,
		}),
		globalDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "global_depth",
			Help:        "Hash bits indexing the directory",
			ConstLabels: constLabels,
		}),
		buckets: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "buckets",
			Help:        "Live buckets",
			ConstLabels: constLabels,
		}),
	}
	reg.MustRegister(a.lookups, a.splits, a.globalDepth, a.buckets)
	return a
}

func (a *TableAdapter) Lookup(hit bool) {
	if hit {
		a.lookups.WithLabelValues("hit").Inc()
	} else {
		a.lookups.WithLabelValues("miss").Inc()
	}
}

func (a *TableAdapter) Split() { a.splits.Inc() }

func (a *TableAdapter) Depth(globalDepth, numBuckets int) {
	a.globalDepth.Set(float64(globalDepth))
	a.buckets.Set(float64(numBuckets))
}

var _ hash.Metrics = (*TableAdapter)(nil)
