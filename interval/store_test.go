package interval_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retrodis/dasmfw/interval"
)

func TestAddAndGet(t *testing.T) {
	s := interval.New[string, byte]()
	_, err := s.Add(0x100, 4, "code", 0xFF)
	require.NoError(t, err)

	v, ok := s.Get(0x101)
	require.True(t, ok)
	assert.Equal(t, byte(0xFF), v)

	_, ok = s.Get(0x104)
	assert.False(t, ok, "one past the span end must be unmapped")

	_, ok = s.Get(0x0FF)
	assert.False(t, ok, "one before the span start must be unmapped")
}

func TestAddRejectsOverlap(t *testing.T) {
	s := interval.New[string, byte]()
	_, err := s.Add(0x100, 4, "code", 0)
	require.NoError(t, err)

	_, err = s.Add(0x102, 4, "code", 0) // overlaps tail
	assert.Error(t, err)

	_, err = s.Add(0x0FE, 4, "code", 0) // overlaps head
	assert.Error(t, err)

	_, err = s.Add(0x104, 4, "code", 0) // touches but does not overlap
	assert.Error(t, err, "a span touching an existing one must be rejected")
}

func TestAddRejectsZeroLength(t *testing.T) {
	s := interval.New[string, byte]()
	_, err := s.Add(0x100, 0, "code", 0)
	assert.Error(t, err)
}

func TestSetUnmappedIsNoop(t *testing.T) {
	s := interval.New[string, byte]()
	assert.False(t, s.Set(0x100, 1))
}

func TestSpansAscendingOrder(t *testing.T) {
	s := interval.New[string, byte]()
	_, err := s.Add(0x200, 2, "b", 0)
	require.NoError(t, err)
	_, err = s.Add(0x100, 2, "a", 0)
	require.NoError(t, err)
	_, err = s.Add(0x300, 2, "c", 0)
	require.NoError(t, err)

	spans := s.Spans()
	require.Len(t, spans, 3)
	assert.Equal(t, uint64(0x100), spans[0].Start)
	assert.Equal(t, uint64(0x200), spans[1].Start)
	assert.Equal(t, uint64(0x300), spans[2].Start)
}

func TestRemoveAndReAdd(t *testing.T) {
	s := interval.New[string, byte]()
	_, err := s.Add(0x100, 4, "code", 0)
	require.NoError(t, err)

	assert.True(t, s.Remove(0x100))
	assert.False(t, s.Remove(0x100), "removing twice reports no match")

	_, ok := s.Get(0x101)
	assert.False(t, ok)

	_, err = s.Add(0x100, 8, "data", 0)
	assert.NoError(t, err, "removed span must free its address range")
}

func TestFindSpanAndTagMutation(t *testing.T) {
	s := interval.New[int, byte]()
	_, err := s.Add(0x10, 2, 1, 0)
	require.NoError(t, err)

	span, ok := s.FindSpan(0x11)
	require.True(t, ok)
	assert.Equal(t, uint64(0x12), span.End())

	span.Tag = 2
	span2, _ := s.FindSpan(0x10)
	assert.Equal(t, 2, span2.Tag, "tag mutation through one lookup must be visible via another")
}
