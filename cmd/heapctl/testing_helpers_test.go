package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/heap"
	"github.com/joshuapare/heapkit/heap/alloc"
)

// resetFlags restores every global flag to its default.
func resetFlags() {
	quiet, verbose, jsonOut = false, false, false
	dumpFreeOnly = false
}

// writeTestHeap builds a heap file with five blocks: used 16, free 32,
// used 64, used 8, free 128.
func writeTestHeap(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "heap.bin")
	f, err := heap.Create(path, 0)
	require.NoError(t, err)

	a, err := alloc.New(f)
	require.NoError(t, err)
	var ptrs []alloc.Ptr
	for _, size := range []int{16, 32, 64, 8, 128} {
		p, err := a.Malloc(size)
		require.NoError(t, err)
		ptrs = append(ptrs, p)
	}
	require.NoError(t, a.Free(ptrs[1]))
	require.NoError(t, a.Free(ptrs[4]))

	require.NoError(t, f.Sync(context.Background()))
	require.NoError(t, f.Close())
	return path
}

// writeTrace writes a trace script into the test's temp dir.
func writeTrace(t *testing.T, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.trace")
	require.NoError(t, os.WriteFile(path, []byte(script), 0o644))
	return path
}

// captureOutput captures stdout while running a function
func captureOutput(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	origStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	// Drain concurrently so large outputs cannot fill the pipe.
	done := make(chan struct{})
	var buf bytes.Buffer
	go func() {
		buf.ReadFrom(r)
		close(done)
	}()

	fnErr := fn()

	w.Close()
	os.Stdout = origStdout
	<-done

	return buf.String(), fnErr
}

// assertJSON checks that output is valid JSON
func assertJSON(t *testing.T, output string) {
	t.Helper()
	var result any
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Errorf("invalid JSON output: %v\nOutput: %s", err, output)
	}
}

// assertContains checks that output contains all expected strings
func assertContains(t *testing.T, output string, expected []string) {
	t.Helper()
	for _, want := range expected {
		if !strings.Contains(output, want) {
			t.Errorf("output missing expected string %q\nGot: %s", want, output)
		}
	}
}

// assertNotContains checks that output doesn't contain unwanted strings
func assertNotContains(t *testing.T, output string, unwanted []string) {
	t.Helper()
	for _, dont := range unwanted {
		if strings.Contains(output, dont) {
			t.Errorf("output contains unwanted string %q\nGot: %s", dont, output)
		}
	}
}
