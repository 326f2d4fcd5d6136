package hash

// Metrics exposes table-level observability hooks.
type Metrics interface {
	Lookup(hit bool)
	Split()
	Depth(globalDepth, numBuckets int)
}

// NoopMetrics is the default Metrics implementation; it does nothing and is
// safe for concurrent use.
type NoopMetrics struct{}

func (NoopMetrics) Lookup(bool)    {}
func (NoopMetrics) Split()         {}
func (NoopMetrics) Depth(int, int) {}

var _ Metrics = NoopMetrics{}
