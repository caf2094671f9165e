package heap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/internal/format"
)

func newBase(t *testing.T) []byte {
	t.Helper()
	data := make([]byte, format.BaseSize)
	_, err := InitBaseBlock(data, 0)
	require.NoError(t, err)
	return data
}

func TestInitAndParseBaseBlock(t *testing.T) {
	data := newBase(t)

	bb, err := ParseBaseBlock(data)
	require.NoError(t, err)
	assert.Equal(t, uint32(format.BaseVersion), bb.Version())
	assert.Zero(t, bb.Head())
	assert.Zero(t, bb.Tail())
	assert.Zero(t, bb.DataSize())
	assert.Equal(t, bb.ComputeChecksum(), bb.Checksum())
	require.NoError(t, bb.ValidateSanity(len(data)))
}

func TestBaseBlockSettersKeepChecksum(t *testing.T) {
	data := newBase(t)
	bb, err := ParseBaseBlock(data)
	require.NoError(t, err)

	bb.SetHead(format.BaseSize)
	bb.SetTail(format.BaseSize + 96)
	bb.SetDataSize(160)
	bb.SetBlockCount(2)

	again, err := ParseBaseBlock(data)
	require.NoError(t, err, "setters must leave a valid checksum")
	assert.Equal(t, int64(format.BaseSize), again.Head())
	assert.Equal(t, int64(format.BaseSize+96), again.Tail())
	assert.Equal(t, int64(160), again.DataSize())
	assert.Equal(t, uint32(2), again.BlockCount())
}

func TestParseBaseBlockErrors(t *testing.T) {
	_, err := ParseBaseBlock(make([]byte, 10))
	require.ErrorIs(t, err, ErrBadBaseBlock)

	data := newBase(t)
	copy(data, "xxxx")
	_, err = ParseBaseBlock(data)
	require.ErrorIs(t, err, ErrBadBaseBlock)
	require.ErrorIs(t, err, format.ErrSignatureMismatch)

	data = newBase(t)
	format.PutU32(data, format.BaseVersionOffset, 9)
	_, err = ParseBaseBlock(data)
	require.ErrorIs(t, err, format.ErrUnsupported)

	data = newBase(t)
	format.PutU64(data, format.BaseHeadOffset, 0x1234)
	_, err = ParseBaseBlock(data)
	require.ErrorIs(t, err, ErrBadBaseBlock)
	require.Contains(t, err.Error(), "checksum")
}

func TestValidateSanity(t *testing.T) {
	data := newBase(t)
	bb, err := ParseBaseBlock(data)
	require.NoError(t, err)

	require.Error(t, bb.ValidateSanity(len(data)+32), "data size must match region")

	bb.SetDataSize(32)
	require.NoError(t, bb.ValidateSanity(len(data)+32))

	bb.SetHead(format.BaseSize)
	require.ErrorIs(t, bb.ValidateSanity(len(data)+32), ErrBadBaseBlock, "head without tail")
}
