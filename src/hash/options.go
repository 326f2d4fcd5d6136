package hash

type config[K comparable] struct {
	hasher   func(K) uint64
	hashBits int
	metrics  Metrics
}

type Option[K comparable] func(*config[K])

// WithHasher replaces DefaultHasher. The hasher must be deterministic for
// the lifetime of the table; changing it invalidates every bucket index.
func WithHasher[K comparable](h func(K) uint64) Option[K] {
	return func(c *config[K]) {
		c.hasher = h
	}
}

// WithHashBits bounds directory growth to the given hash width. Splitting a
// bucket whose local depth already equals the width fails with
// ErrBucketOverflow instead of doubling forever. Default is 64.
func WithHashBits[K comparable](bits int) Option[K] {
	return func(c *config[K]) {
		c.hashBits = bits
	}
}

// WithMetrics attaches an observability backend. Default is NoopMetrics.
func WithMetrics[K comparable](m Metrics) Option[K] {
	return func(c *config[K]) {
		c.metrics = m
	}
}
