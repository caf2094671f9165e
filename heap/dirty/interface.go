package dirty

// DirtyTracker is the minimal interface for recording modified byte ranges.
// Allocators only need to report writes; they never flush.
type DirtyTracker interface {
	// Add marks [off, off+length) as dirty. off is a region offset.
	Add(off, length int64)
}

// Target is the region a Tracker flushes.
type Target interface {
	Bytes() []byte
	// FD returns the backing file descriptor, or -1 when there is no file.
	FD() int
}

// writeBacker is implemented by regions that keep their bytes in memory and
// must copy them to the file explicitly.
type writeBacker interface {
	WriteBack(off, n int64) error
}
