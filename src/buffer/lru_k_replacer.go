package buffer

import (
	"fmt"
	"sync"

	"bufferpool-golang/src/common"
)

// frameRecord tracks the last k access timestamps of one frame, oldest first.
// kDistance is recomputed on every access so it is never read stale.
type frameRecord struct {
	history   []uint64
	kDistance uint64
	infinite  bool // fewer than k accesses recorded
	evictable bool
}

// LRUKReplacer picks eviction victims by backward k-distance: the elapsed
// logical time since the k-th most recent access to a frame. Frames with
// fewer than k recorded accesses have infinite distance and are evicted
// before any frame with a finite one; ties go to the frame whose earliest
// recorded access is oldest. A single mutex serializes all operations.
type LRUKReplacer struct {
	numFrames int
	k         int
	frames    map[common.FrameId]*frameRecord
	timestamp uint64
	currSize  int // evictable frames
	metrics   Metrics
	mu        sync.Mutex
}

type Option func(*LRUKReplacer)

// WithMetrics attaches an observability backend. Default is NoopMetrics.
func WithMetrics(m Metrics) Option {
	return func(lru *LRUKReplacer) {
		lru.metrics = m
	}
}

func NewLRUKReplacer(numFrames, k int, opts ...Option) *LRUKReplacer {
	lru := &LRUKReplacer{
		numFrames: numFrames,
		k:         k,
		frames:    make(map[common.FrameId]*frameRecord),
		metrics:   NoopMetrics{},
	}
	for _, opt := range opts {
		opt(lru)
	}
	return lru
}

// RecordAccess stamps the current logical time onto the frame's history,
// creating the record on first access, then advances the clock.
func (lru *LRUKReplacer) RecordAccess(frameId common.FrameId) error {
	lru.mu.Lock()
	defer lru.mu.Unlock()

	if frameId < 0 || int(frameId) >= lru.numFrames {
		return fmt.Errorf("%w: frame %d, replacer tracks %d frames", ErrInvalidFrame, frameId, lru.numFrames)
	}
	rec, ok := lru.frames[frameId]
	if !ok {
		rec = &frameRecord{history: make([]uint64, 0, lru.k)}
		lru.frames[frameId] = rec
	}
	if len(rec.history) == lru.k {
		copy(rec.history, rec.history[1:])
		rec.history[lru.k-1] = lru.timestamp
	} else {
		rec.history = append(rec.history, lru.timestamp)
	}
	lru.updateKDistance(rec)
	lru.timestamp++
	return nil
}

func (lru *LRUKReplacer) updateKDistance(rec *frameRecord) {
	if len(rec.history) < lru.k {
		rec.infinite = true
		rec.kDistance = 0
		return
	}
	rec.infinite = false
	rec.kDistance = lru.timestamp - rec.history[0]
}

// SetEvictable toggles whether the frame may be chosen by Evict.
// Frames that were never accessed are ignored.
func (lru *LRUKReplacer) SetEvictable(frameId common.FrameId, evictable bool) error {
	lru.mu.Lock()
	defer lru.mu.Unlock()

	if frameId < 0 || int(frameId) >= lru.numFrames {
		return fmt.Errorf("%w: frame %d, replacer tracks %d frames", ErrInvalidFrame, frameId, lru.numFrames)
	}
	rec, ok := lru.frames[frameId]
	if !ok {
		return nil
	}
	if rec.evictable != evictable {
		rec.evictable = evictable
		if evictable {
			lru.currSize++
		} else {
			lru.currSize--
		}
		lru.metrics.Size(lru.currSize)
	}
	return nil
}

// Evict removes and returns the evictable frame with the largest backward
// k-distance, or false when no frame is evictable.
func (lru *LRUKReplacer) Evict() (common.FrameId, bool) {
	lru.mu.Lock()
	defer lru.mu.Unlock()

	if lru.currSize == 0 {
		return 0, false
	}
	victim := common.InvalidFrameId
	var best *frameRecord
	for id, rec := range lru.frames {
		if !rec.evictable {
			continue
		}
		if best == nil || beats(rec, best) {
			victim, best = id, rec
		}
	}
	if best == nil {
		return 0, false
	}
	delete(lru.frames, victim)
	lru.currSize--
	lru.metrics.Evict()
	lru.metrics.Size(lru.currSize)
	return victim, true
}

// beats reports whether a is a better victim than b. Infinite distance
// dominates; otherwise larger distance wins, with the earliest recorded
// access breaking ties. Timestamps are unique, so the order is total.
func beats(a, b *frameRecord) bool {
	if a.infinite != b.infinite {
		return a.infinite
	}
	if a.infinite || a.kDistance == b.kDistance {
		return a.history[0] < b.history[0]
	}
	return a.kDistance > b.kDistance
}

// Remove deletes the frame's record regardless of its k-distance. Removing
// a non-evictable frame is an error; removing an unknown frame is a no-op.
func (lru *LRUKReplacer) Remove(frameId common.FrameId) error {
	lru.mu.Lock()
	defer lru.mu.Unlock()

	rec, ok := lru.frames[frameId]
	if !ok {
		return nil
	}
	if !rec.evictable {
		return fmt.Errorf("%w: frame %d", ErrInvalidOperation, frameId)
	}
	delete(lru.frames, frameId)
	lru.currSize--
	lru.metrics.Size(lru.currSize)
	return nil
}

// Size returns the number of evictable frames.
func (lru *LRUKReplacer) Size() int {
	lru.mu.Lock()
	defer lru.mu.Unlock()
	return lru.currSize
}
