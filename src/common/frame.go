package common

// FrameId identifies a fixed slot in the buffer pool's frame array.
type FrameId int

const InvalidFrameId = FrameId(-1)
