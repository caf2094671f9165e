package main

import (
	"fmt"

	"github.com/joshuapare/heapkit/internal/mmfile"
)

// withHeapFile maps path read-only for the duration of fn.
func withHeapFile(path string, fn func(data []byte) error) (err error) {
	printVerbose("Mapping heap file: %s\n", path)
	data, cleanup, err := mmfile.Map(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer func() {
		if cerr := cleanup(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(data)
}
