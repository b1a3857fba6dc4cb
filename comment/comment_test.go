package comment_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/retrodis/dasmfw/bus"
	"github.com/retrodis/dasmfw/comment"
)

func texts(cs []*comment.Comment) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Text
	}
	return out
}

func TestAtOrdersPrependBeforeAppend(t *testing.T) {
	s := comment.New()
	s.Add(bus.Code, 0x100, comment.Before, "appended-first", false)
	s.Add(bus.Code, 0x100, comment.Before, "appended-second", false)
	s.Add(bus.Code, 0x100, comment.Before, "prepended-first", true)
	s.Add(bus.Code, 0x100, comment.Before, "prepended-second", true)

	got := s.At(bus.Code, comment.Before, 0x100)
	assert.Equal(t, []string{"prepended-first", "prepended-second", "appended-first", "appended-second"}, texts(got))
}

func TestAtFiltersByBusKindAndAddress(t *testing.T) {
	s := comment.New()
	s.Add(bus.Code, 0x100, comment.Before, "code-before", false)
	s.Add(bus.Code, 0x100, comment.After, "code-after", false)
	s.Add(bus.Code, 0x200, comment.Before, "other-address", false)
	s.Add(bus.Data, 0x100, comment.Before, "other-bus", false)

	got := s.At(bus.Code, comment.Before, 0x100)
	assert.Equal(t, []string{"code-before"}, texts(got))
}

func TestAddVerbatimSetsFlag(t *testing.T) {
	s := comment.New()
	c := s.AddVerbatim(bus.Code, 0x100, comment.Line, "; raw text", true)
	assert.True(t, c.Verbatim)
	assert.True(t, c.Prepend)
}

func TestHasAnyAcrossKinds(t *testing.T) {
	s := comment.New()
	assert.False(t, s.HasAny(bus.Code, 0x100))

	s.Add(bus.Code, 0x100, comment.After, "note", false)
	assert.True(t, s.HasAny(bus.Code, 0x100))
	assert.False(t, s.HasAny(bus.Code, 0x101))
}

func TestRemoveRange(t *testing.T) {
	s := comment.New()
	s.Add(bus.Code, 0x100, comment.Before, "a", false)
	s.Add(bus.Code, 0x150, comment.Before, "b", false)
	s.Add(bus.Code, 0x200, comment.Before, "c", false)

	n := s.RemoveRange(bus.Code, comment.Before, 0x100, 0x200)
	assert.Equal(t, 2, n)
	assert.Empty(t, s.At(bus.Code, comment.Before, 0x100))
	assert.NotEmpty(t, s.At(bus.Code, comment.Before, 0x200))
}

func TestRemoveRangeOnlyAffectsGivenKind(t *testing.T) {
	s := comment.New()
	s.Add(bus.Code, 0x100, comment.Before, "before", false)
	s.Add(bus.Code, 0x100, comment.After, "after", false)

	s.RemoveRange(bus.Code, comment.Before, 0x100, 0x101)
	assert.Empty(t, s.At(bus.Code, comment.Before, 0x100))
	assert.NotEmpty(t, s.At(bus.Code, comment.After, 0x100))
}
