package hash

import (
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"
)

const maxHashBits = 64

type entry[K comparable, V any] struct {
	key   K
	value V
}

// bucket holds up to bucketSize pairs in insertion order. localDepth is the
// number of low-order hash bits that route a key to this bucket; every
// directory slot whose index matches the bucket on those bits aliases it.
type bucket[K comparable, V any] struct {
	items      []entry[K, V]
	localDepth int
}

func newBucket[K comparable, V any](size, depth int) *bucket[K, V] {
	return &bucket[K, V]{
		items:      make([]entry[K, V], 0, size),
		localDepth: depth,
	}
}

// ExtendibleHashTable maps keys to values through a directory of
// 2^globalDepth bucket references. Full buckets split in place and the
// directory doubles incrementally; there is no global rehash and no bucket
// merging on remove. A single mutex serializes all operations, which is the
// known throughput limit of this implementation.
type ExtendibleHashTable[K comparable, V any] struct {
	bucketSize  int
	globalDepth int
	numBuckets  int
	dir         []*bucket[K, V]
	hasher      func(K) uint64
	hashBits    int
	metrics     Metrics
	mu          sync.Mutex
}

func NewExtendibleHashTable[K comparable, V any](bucketSize int, opts ...Option[K]) (*ExtendibleHashTable[K, V], error) {
	if bucketSize < 1 {
		return nil, fmt.Errorf("%w: bucket size must be >= 1, got %d", ErrInvalidCapacity, bucketSize)
	}
	cfg := config[K]{
		hasher:   DefaultHasher[K],
		hashBits: maxHashBits,
		metrics:  NoopMetrics{},
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.hashBits < 1 || cfg.hashBits > maxHashBits {
		return nil, fmt.Errorf("%w: hash width must be in [1, %d], got %d", ErrInvalidCapacity, maxHashBits, cfg.hashBits)
	}
	return &ExtendibleHashTable[K, V]{
		bucketSize: bucketSize,
		numBuckets: 1,
		dir:        []*bucket[K, V]{newBucket[K, V](bucketSize, 0)},
		hasher:     cfg.hasher,
		hashBits:   cfg.hashBits,
		metrics:    cfg.metrics,
	}, nil
}

// indexOf returns the directory slot for key: the low globalDepth bits of
// its hash.
func (ht *ExtendibleHashTable[K, V]) indexOf(key K) int {
	mask := (uint64(1) << ht.globalDepth) - 1
	return int(ht.hasher(key) & mask)
}

// Find returns the value stored for key, if any.
func (ht *ExtendibleHashTable[K, V]) Find(key K) (V, bool) {
	ht.mu.Lock()
	defer ht.mu.Unlock()

	b := ht.dir[ht.indexOf(key)]
	for _, e := range b.items {
		if e.key == key {
			ht.metrics.Lookup(true)
			return e.value, true
		}
	}
	ht.metrics.Lookup(false)
	var zero V
	return zero, false
}

// Remove deletes the pair stored for key and reports whether one existed.
// Buckets never merge back, matching the usual extendible-hashing trade-off.
func (ht *ExtendibleHashTable[K, V]) Remove(key K) bool {
	ht.mu.Lock()
	defer ht.mu.Unlock()

	b := ht.dir[ht.indexOf(key)]
	for i, e := range b.items {
		if e.key == key {
			b.items = append(b.items[:i], b.items[i+1:]...)
			return true
		}
	}
	return false
}

// Insert stores value under key, overwriting any previous value. When the
// target bucket is full it splits, doubling the directory as needed, until
// the key finds room. Growth past the configured hash width fails with
// ErrBucketOverflow before the new pair is stored.
func (ht *ExtendibleHashTable[K, V]) Insert(key K, value V) error {
	ht.mu.Lock()
	defer ht.mu.Unlock()

	b := ht.dir[ht.indexOf(key)]
	for i := range b.items {
		if b.items[i].key == key {
			b.items[i].value = value
			return nil
		}
	}

	for {
		b = ht.dir[ht.indexOf(key)]
		if len(b.items) < ht.bucketSize {
			break
		}
		if b.localDepth == ht.hashBits {
			log.Warnf("Hash directory exhausted %d hash bits splitting a full bucket.", ht.hashBits)
			return fmt.Errorf("%w: bucket still full at local depth %d", ErrBucketOverflow, b.localDepth)
		}
		ht.split(ht.indexOf(key))
	}
	b.items = append(b.items, entry[K, V]{key: key, value: value})
	return nil
}

// split divides the bucket at the given directory index into two buckets at
// one greater depth, doubling the directory first when the bucket already
// uses every global bit.
func (ht *ExtendibleHashTable[K, V]) split(index int) {
	old := ht.dir[index]
	if old.localDepth == ht.globalDepth {
		// New upper half aliases the lower half slot for slot.
		ht.dir = append(ht.dir, ht.dir...)
		ht.globalDepth++
		log.Debugf("Hash directory doubled to %d slots (global depth %d).", len(ht.dir), ht.globalDepth)
	}

	bit := uint64(1) << old.localDepth
	b0 := newBucket[K, V](ht.bucketSize, old.localDepth+1)
	b1 := newBucket[K, V](ht.bucketSize, old.localDepth+1)
	for _, e := range old.items {
		if ht.hasher(e.key)&bit == 0 {
			b0.items = append(b0.items, e)
		} else {
			b1.items = append(b1.items, e)
		}
	}

	// Every slot aliasing the old bucket shares its low localDepth bits;
	// walk that stride and pick a side by the newly significant bit.
	for i := index & int(bit-1); i < len(ht.dir); i += int(bit) {
		if uint64(i)&bit == 0 {
			ht.dir[i] = b0
		} else {
			ht.dir[i] = b1
		}
	}
	ht.numBuckets++
	ht.metrics.Split()
	ht.metrics.Depth(ht.globalDepth, ht.numBuckets)
}

// GetGlobalDepth returns the number of hash bits indexing the directory.
func (ht *ExtendibleHashTable[K, V]) GetGlobalDepth() int {
	ht.mu.Lock()
	defer ht.mu.Unlock()
	return ht.globalDepth
}

// GetLocalDepth returns the local depth of the bucket referenced by the
// given directory index.
func (ht *ExtendibleHashTable[K, V]) GetLocalDepth(dirIndex int) int {
	ht.mu.Lock()
	defer ht.mu.Unlock()
	return ht.dir[dirIndex].localDepth
}

// GetNumBuckets returns the number of live buckets.
func (ht *ExtendibleHashTable[K, V]) GetNumBuckets() int {
	ht.mu.Lock()
	defer ht.mu.Unlock()
	return ht.numBuckets
}
