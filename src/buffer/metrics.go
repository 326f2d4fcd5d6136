package buffer

// Metrics exposes replacer-level observability hooks.
type Metrics interface {
	Evict()
	Size(evictable int)
}

// NoopMetrics is the default Metrics implementation; it does nothing and is
// safe for concurrent use.
type NoopMetrics struct{}

func (NoopMetrics) Evict()   {}
func (NoopMetrics) Size(int) {}

var _ Metrics = NoopMetrics{}
