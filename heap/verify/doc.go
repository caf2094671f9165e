// Package verify checks the structural invariants of heapkit region bytes.
//
// # Overview
//
// The checks work on raw bytes and share no code with the allocator, so they
// can judge its output independently. Tests run AllInvariants after every
// operation; heapctl runs it against heap files.
//
// Validation categories:
//   - Base block: signature, version, checksum
//   - Region size: recorded data size matches the bytes present
//   - Directory: address ordering, prev/next links, head/tail, block count,
//     word alignment, no two adjacent free blocks
//
// # Quick Start
//
//	data, _ := os.ReadFile("heap.bin")
//	if err := verify.AllInvariants(data); err != nil {
//	    fmt.Printf("Validation failed: %v\n", err)
//	}
//
// # ValidationError
//
// Every check returns *ValidationError on failure:
//
//	var verr *verify.ValidationError
//	if errors.As(err, &verr) {
//	    fmt.Printf("%s at 0x%X: %s\n", verr.Type, verr.Offset, verr.Message)
//	}
//
// Offset is -1 when the failure has no single location.
package verify
