package buffer

import "errors"

var (
	// ErrInvalidFrame is returned when a frame id lies outside the range
	// the replacer was constructed for.
	ErrInvalidFrame = errors.New("frame id out of range")

	// ErrInvalidOperation is returned when removing a frame that is
	// currently not evictable.
	ErrInvalidOperation = errors.New("frame is not evictable")
)
