package hash

import "errors"

var (
	// ErrInvalidCapacity may be returned from NewExtendibleHashTable.
	ErrInvalidCapacity = errors.New("invalid capacity")

	// ErrBucketOverflow is returned by Insert when every hash bit has been
	// consumed and the target bucket is still full. It indicates a
	// degenerate hash function or an adversarial key set.
	ErrBucketOverflow = errors.New("bucket overflow")
)
