// Package trace reads allocation trace scripts and replays them against an
// allocator.
//
// A script holds one operation per line; '#' starts a comment:
//
//	a <id> <size>   allocate size bytes into slot id
//	f <id>          free slot id
//	r <id> <size>   resize slot id to size bytes
//	w <id> <byte>   fill slot id with byte
//	c <id> <byte>   check every byte of slot id equals byte
//
// Sizes are integers or humanized sizes such as 4KiB. Bytes are decimal or
// 0x-prefixed hex. Scripts are UTF-8, or UTF-16 with a byte order mark.
package trace

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/klauspost/readahead"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const (
	scannerInitialBufferSize = 4 * 1024
	scannerMaxLineSize       = 64 * 1024

	readaheadBuffers    = 4
	readaheadBufferSize = 64 * 1024

	commentPrefix = "#"
)

// Kind is a trace operation.
type Kind byte

const (
	Alloc   Kind = 'a'
	Free    Kind = 'f'
	Realloc Kind = 'r'
	Write   Kind = 'w'
	Check   Kind = 'c'
)

func (k Kind) String() string {
	switch k {
	case Alloc:
		return "alloc"
	case Free:
		return "free"
	case Realloc:
		return "realloc"
	case Write:
		return "write"
	case Check:
		return "check"
	}
	return fmt.Sprintf("Kind(%q)", byte(k))
}

// Op is one parsed line.
type Op struct {
	Kind Kind
	ID   string
	Size int  // Alloc, Realloc
	Byte byte // Write, Check
	Line int
}

// SyntaxError reports a malformed line.
type SyntaxError struct {
	Line int
	Text string
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("trace: line %d: %s: %q", e.Line, e.Msg, e.Text)
}

// ParseFile parses the script at path.
func ParseFile(path string) ([]Op, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ra, err := readahead.NewReaderSize(f, readaheadBuffers, readaheadBufferSize)
	if err != nil {
		return nil, err
	}
	defer ra.Close()
	return Parse(ra)
}

// Parse reads a whole script.
func Parse(r io.Reader) ([]Op, error) {
	// Strip a UTF-8 BOM, or switch to UTF-16 when one is present.
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	scanner := bufio.NewScanner(transform.NewReader(r, dec))
	scanner.Buffer(make([]byte, 0, scannerInitialBufferSize), scannerMaxLineSize)

	var ops []Op
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if i := strings.Index(text, commentPrefix); i >= 0 {
			text = text[:i]
		}
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}
		op, err := parseOp(fields, line)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("trace: line %d: %w", line+1, err)
	}
	return ops, nil
}

func parseOp(fields []string, line int) (Op, error) {
	text := strings.Join(fields, " ")
	fail := func(msg string) (Op, error) {
		return Op{}, &SyntaxError{Line: line, Text: text, Msg: msg}
	}
	if len(fields[0]) != 1 {
		return fail("unknown operation")
	}
	op := Op{Kind: Kind(fields[0][0]), Line: line}

	want := 3
	if op.Kind == Free {
		want = 2
	}
	switch op.Kind {
	case Alloc, Free, Realloc, Write, Check:
	default:
		return fail("unknown operation")
	}
	if len(fields) != want {
		return fail(fmt.Sprintf("%s takes %d arguments", op.Kind, want-1))
	}
	op.ID = fields[1]

	switch op.Kind {
	case Alloc, Realloc:
		n, err := parseSize(fields[2])
		if err != nil {
			return fail(err.Error())
		}
		op.Size = n
	case Write, Check:
		b, err := strconv.ParseUint(fields[2], 0, 8)
		if err != nil {
			return fail("bad byte value")
		}
		op.Byte = byte(b)
	}
	return op, nil
}

// parseSize accepts plain integers (including negatives, which the allocator
// rejects itself) and humanized sizes.
func parseSize(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("bad size")
	}
	if n > math.MaxInt32 {
		return 0, fmt.Errorf("size too large")
	}
	return int(n), nil
}
