package buffer

import (
	"bufferpool-golang/src/common"
)

type Replacer interface {
	RecordAccess(common.FrameId) error
	SetEvictable(common.FrameId, bool) error
	Evict() (common.FrameId, bool)
	Remove(common.FrameId) error
	Size() int
}
