package alloc

import "errors"

var (
	// ErrOutOfMemory indicates the region could not grow to satisfy a request.
	ErrOutOfMemory = errors.New("alloc: out of memory")

	// ErrUnknownPointer indicates a pointer not owned by this allocator was
	// freed in strict mode, or passed to Payload.
	ErrUnknownPointer = errors.New("alloc: unknown pointer")

	// ErrInvalidResize indicates Realloc was given a non-nil pointer this
	// allocator does not own.
	ErrInvalidResize = errors.New("alloc: resize of unknown pointer")

	// ErrInvalidSize indicates a negative size.
	ErrInvalidSize = errors.New("alloc: invalid size")

	// ErrCorrupt indicates the block list inside the region is malformed.
	ErrCorrupt = errors.New("alloc: corrupt block list")
)
