package hash

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// identity keeps tests deterministic: directory indices follow the key bits.
func identity(k int) uint64 { return uint64(k) }

func TestNewExtendibleHashTable(t *testing.T) {
	_, err := NewExtendibleHashTable[int, int](0)
	require.ErrorIs(t, err, ErrInvalidCapacity)

	_, err = NewExtendibleHashTable[int, int](4, WithHashBits[int](0))
	require.ErrorIs(t, err, ErrInvalidCapacity)
	_, err = NewExtendibleHashTable[int, int](4, WithHashBits[int](65))
	require.ErrorIs(t, err, ErrInvalidCapacity)

	ht, err := NewExtendibleHashTable[int, int](4)
	require.NoError(t, err)
	require.Equal(t, 0, ht.GetGlobalDepth())
	require.Equal(t, 0, ht.GetLocalDepth(0))
	require.Equal(t, 1, ht.GetNumBuckets())
	require.Len(t, ht.dir, 1)
}

// Filling the single depth-0 bucket and inserting once more doubles the
// directory and splits the bucket.
func TestExtendibleHashTable_FirstSplit(t *testing.T) {
	ht, err := NewExtendibleHashTable[int, string](2, WithHasher(identity))
	require.NoError(t, err)

	require.NoError(t, ht.Insert(1, "a"))
	require.NoError(t, ht.Insert(2, "b"))
	require.Equal(t, 0, ht.GetGlobalDepth())

	require.NoError(t, ht.Insert(3, "c"))
	require.Equal(t, 1, ht.GetGlobalDepth())
	require.Equal(t, 2, ht.GetNumBuckets())
	require.Len(t, ht.dir, 2)

	for key, want := range map[int]string{1: "a", 2: "b", 3: "c"} {
		got, ok := ht.Find(key)
		require.True(t, ok)
		require.Equal(t, want, got)
	}
}

func TestExtendibleHashTable_Upsert(t *testing.T) {
	ht, err := NewExtendibleHashTable[string, int](2)
	require.NoError(t, err)

	require.NoError(t, ht.Insert("x", 1))
	require.NoError(t, ht.Insert("y", 2))

	// Overwriting never grows the bucket, even though it is full.
	require.NoError(t, ht.Insert("x", 3))
	got, ok := ht.Find("x")
	require.True(t, ok)
	require.Equal(t, 3, got)
	require.Equal(t, 0, ht.GetGlobalDepth())
	require.Equal(t, 1, ht.GetNumBuckets())
	require.Len(t, ht.dir[0].items, 2)
}

func TestExtendibleHashTable_Remove(t *testing.T) {
	ht, err := NewExtendibleHashTable[int, string](2, WithHasher(identity))
	require.NoError(t, err)

	require.False(t, ht.Remove(1))

	for i := 0; i < 8; i++ {
		require.NoError(t, ht.Insert(i, fmt.Sprint(i)))
	}
	buckets := ht.GetNumBuckets()

	require.True(t, ht.Remove(5))
	_, ok := ht.Find(5)
	require.False(t, ok)
	require.False(t, ht.Remove(5))

	// No merging on remove.
	require.Equal(t, buckets, ht.GetNumBuckets())
}

// Keys that share every low bit force repeated doubling within one Insert.
func TestExtendibleHashTable_RepeatedSplit(t *testing.T) {
	ht, err := NewExtendibleHashTable[int, int](2, WithHasher(identity))
	require.NoError(t, err)

	// 4, 8, 16 are all congruent to 0 mod 4.
	for _, k := range []int{4, 8} {
		require.NoError(t, ht.Insert(k, k))
	}
	require.NoError(t, ht.Insert(16, 16))
	require.GreaterOrEqual(t, ht.GetGlobalDepth(), 3)
	for _, k := range []int{4, 8, 16} {
		got, ok := ht.Find(k)
		require.True(t, ok)
		require.Equal(t, k, got)
	}
}

// After any sequence of splits, all directory slots sharing a bucket agree
// on the bucket's low localDepth bits, and every key is still reachable.
func TestExtendibleHashTable_SplitInvariant(t *testing.T) {
	ht, err := NewExtendibleHashTable[int, int](4)
	require.NoError(t, err)

	const n = 1000
	for i := 0; i < n; i++ {
		require.NoError(t, ht.Insert(i, i*i))
	}
	for i := 0; i < n; i++ {
		got, ok := ht.Find(i)
		require.True(t, ok)
		require.Equal(t, i*i, got)
	}

	global := ht.GetGlobalDepth()
	require.Len(t, ht.dir, 1<<global)
	for i, b := range ht.dir {
		require.LessOrEqual(t, b.localDepth, global)
		canonical := i & ((1 << b.localDepth) - 1)
		require.Same(t, ht.dir[canonical], b)
		for _, e := range b.items {
			require.Equal(t, canonical, int(ht.hasher(e.key)&((1<<b.localDepth)-1)))
		}
	}
}

// A constant hash cannot be split apart; growth must stop at the configured
// hash width instead of looping.
func TestExtendibleHashTable_BucketOverflow(t *testing.T) {
	ht, err := NewExtendibleHashTable[int, int](2,
		WithHasher(func(int) uint64 { return 0 }),
		WithHashBits[int](4))
	require.NoError(t, err)

	require.NoError(t, ht.Insert(1, 1))
	require.NoError(t, ht.Insert(2, 2))
	require.ErrorIs(t, ht.Insert(3, 3), ErrBucketOverflow)
	require.Equal(t, 4, ht.GetGlobalDepth())

	// The table still serves the keys that fit.
	for _, k := range []int{1, 2} {
		got, ok := ht.Find(k)
		require.True(t, ok)
		require.Equal(t, k, got)
	}
	_, ok := ht.Find(3)
	require.False(t, ok)
}

func TestExtendibleHashTable_Concurrent(t *testing.T) {
	ht, err := NewExtendibleHashTable[int, int](4)
	require.NoError(t, err)

	var g errgroup.Group
	for w := 0; w < 8; w++ {
		w := w
		g.Go(func() error {
			for i := 0; i < 500; i++ {
				k := w*500 + i
				if err := ht.Insert(k, k); err != nil {
					return err
				}
				if _, ok := ht.Find(k); !ok {
					return fmt.Errorf("key %d lost", k)
				}
				if i%7 == 0 {
					ht.Remove(k)
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
}

func FuzzExtendibleHashTable(f *testing.F) {
	f.Add([]byte("abcabc"), uint8(3))
	f.Add([]byte{0, 0, 0, 0, 0, 0, 0, 0}, uint8(1))
	f.Add([]byte("extendible"), uint8(8))

	f.Fuzz(func(t *testing.T, data []byte, size uint8) {
		ht, err := NewExtendibleHashTable[string, int](int(size%8) + 1)
		require.NoError(t, err)
		model := map[string]int{}

		for i, b := range data {
			key := fmt.Sprintf("k%d", b%32)
			if b%5 == 0 {
				_, tracked := model[key]
				require.Equal(t, tracked, ht.Remove(key))
				delete(model, key)
				continue
			}
			model[key] = i
			require.NoError(t, ht.Insert(key, i))
		}
		for key, want := range model {
			got, ok := ht.Find(key)
			require.True(t, ok)
			require.Equal(t, want, got)
		}
		for i := 0; i < 32; i++ {
			key := fmt.Sprintf("k%d", i)
			if _, tracked := model[key]; !tracked {
				_, ok := ht.Find(key)
				require.False(t, ok)
			}
		}
	})
}

func BenchmarkExtendibleHashTable_Insert(b *testing.B) {
	ht, _ := NewExtendibleHashTable[int, int](8)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = ht.Insert(i, i)
	}
}

func BenchmarkExtendibleHashTable_Find(b *testing.B) {
	ht, _ := NewExtendibleHashTable[int, int](8)
	for i := 0; i < 1<<16; i++ {
		_ = ht.Insert(i, i)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ht.Find(i & (1<<16 - 1))
	}
}
