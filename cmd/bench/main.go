// Command bench drives a synthetic buffer-pool workload against the hash
// directory and the LRU-K replacer and exposes Prometheus metrics.
package main

import (
	"flag"
	"math/rand"
	"net/http"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"bufferpool-golang/src/buffer"
	"bufferpool-golang/src/common"
	"bufferpool-golang/src/hash"
	"bufferpool-golang/src/metrics/prom"
)

// Alias, not a defined type: DefaultHasher dispatches on the underlying kind.
type pageId = uint64

// pool glues the two components together the way a buffer pool manager
// would: the directory maps resident pages to frames, the replacer picks
// the frame to recycle when none are free. Every frame is immediately
// evictable since the synthetic workload never pins pages.
type pool struct {
	table    *hash.ExtendibleHashTable[pageId, common.FrameId]
	replacer *buffer.LRUKReplacer
	resident []pageId
	free     []common.FrameId
	mu       sync.Mutex
}

// access touches a page and reports whether it was already resident.
func (p *pool) access(id pageId) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if frame, ok := p.table.Find(id); ok {
		p.touch(frame)
		return true
	}
	var frame common.FrameId
	if n := len(p.free); n > 0 {
		frame = p.free[n-1]
		p.free = p.free[:n-1]
	} else {
		victim, ok := p.replacer.Evict()
		if !ok {
			log.Fatalf("No evictable frame; the workload never pins, so this cannot happen.")
		}
		frame = victim
		p.table.Remove(p.resident[frame])
	}
	if err := p.table.Insert(id, frame); err != nil {
		log.WithError(err).Fatalf("Cannot map page %d.", id)
	}
	p.resident[frame] = id
	p.touch(frame)
	return false
}

func (p *pool) touch(frame common.FrameId) {
	if err := p.replacer.RecordAccess(frame); err != nil {
		log.WithError(err).Fatalf("Cannot record access to frame %d.", frame)
	}
	if err := p.replacer.SetEvictable(frame, true); err != nil {
		log.WithError(err).Fatalf("Cannot mark frame %d evictable.", frame)
	}
}

func main() {
	var (
		frames     = flag.Int("frames", 4096, "buffer pool size (frames)")
		k          = flag.Int("k", 2, "LRU-K history length")
		bucketSize = flag.Int("bucket", 8, "hash bucket capacity (pairs)")

		workers  = flag.Int("workers", 2*runtime.GOMAXPROCS(0), "number of worker goroutines")
		duration = flag.Duration("duration", 10*time.Second, "benchmark duration")

		pages = flag.Uint64("pages", 1_000_000, "page id space")
		zipfS = flag.Float64("zipf_s", 1.1, "Zipf s > 1 (skew)")
		zipfV = flag.Float64("zipf_v", 1.0, "Zipf v")
		seed  = flag.Int64("seed", time.Now().UnixNano(), "random seed")

		metricsAddr = flag.String("http", ":8080", "serve Prometheus metrics at addr")
	)
	flag.Parse()

	table, err := hash.NewExtendibleHashTable[pageId, common.FrameId](*bucketSize,
		hash.WithMetrics[pageId](prom.NewTable(nil, "bufferpool", "directory", nil)))
	if err != nil {
		log.WithError(err).Fatalf("Cannot create hash directory.")
	}
	p := &pool{
		table: table,
		replacer: buffer.NewLRUKReplacer(*frames, *k,
			buffer.WithMetrics(prom.NewReplacer(nil, "bufferpool", "replacer", nil))),
		resident: make([]pageId, *frames),
		free:     make([]common.FrameId, 0, *frames),
	}
	for i := *frames - 1; i >= 0; i-- {
		p.free = append(p.free, common.FrameId(i))
	}

	http.Handle("/metrics", promhttp.Handler())
	go func() {
		log.Infof("Serving metrics at %s.", *metricsAddr)
		log.WithError(http.ListenAndServe(*metricsAddr, nil)).Warnf("Metrics server stopped.")
	}()

	var hits, total uint64
	deadline := time.Now().Add(*duration)
	var g errgroup.Group
	for w := 0; w < *workers; w++ {
		w := w
		g.Go(func() error {
			rng := rand.New(rand.NewSource(*seed + int64(w)*9973))
			zipf := rand.NewZipf(rng, *zipfS, *zipfV, *pages-1)
			for time.Now().Before(deadline) {
				if p.access(pageId(zipf.Uint64())) {
					atomic.AddUint64(&hits, 1)
				}
				atomic.AddUint64(&total, 1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.WithError(err).Fatalf("Worker failed.")
	}

	h, n := atomic.LoadUint64(&hits), atomic.LoadUint64(&total)
	log.Infof("Accesses: %d, hit rate: %.2f%%, global depth: %d, buckets: %d.",
		n, 100*float64(h)/float64(n), table.GetGlobalDepth(), table.GetNumBuckets())
}
