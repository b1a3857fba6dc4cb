package label_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/retrodis/dasmfw/bus"
	"github.com/retrodis/dasmfw/label"
	"github.com/retrodis/dasmfw/memmap"
)

func TestResolveLabelsRewritesPositiveOffset(t *testing.T) {
	r := label.New()
	r.AddLabel(bus.Code, 0x100, memmap.CodeMem, "table", true, label.SourceUser)
	r.AddLabel(bus.Code, 0x999, memmap.CodeMem, "table+4", true, label.SourceUser)

	r.ResolveLabels(bus.Code)

	got := r.FindByText(bus.Code, "table")
	if assert.NotNil(t, got) {
		assert.Equal(t, bus.Address(0x104), got.Address)
	}
	assert.Nil(t, r.FindByText(bus.Code, "table+4"), "the expression-named record is removed once resolved")
}

func TestResolveLabelsRewritesNegativeOffset(t *testing.T) {
	r := label.New()
	r.AddLabel(bus.Code, 0x200, memmap.CodeMem, "vector", true, label.SourceUser)
	r.AddLabel(bus.Code, 0x999, memmap.CodeMem, "vector-0x10", true, label.SourceUser)

	r.ResolveLabels(bus.Code)

	got := r.FindByText(bus.Code, "vector")
	if assert.NotNil(t, got) {
		assert.Equal(t, bus.Address(0x1F0), got.Address)
	}
}

func TestResolveLabelsIsIdempotent(t *testing.T) {
	r := label.New()
	r.AddLabel(bus.Code, 0x100, memmap.CodeMem, "table", true, label.SourceUser)
	r.AddLabel(bus.Code, 0x999, memmap.CodeMem, "table+4", true, label.SourceUser)

	r.ResolveLabels(bus.Code)
	before := r.All(bus.Code)
	r.ResolveLabels(bus.Code)
	after := r.All(bus.Code)

	assert.Equal(t, len(before), len(after), "a second pass over an already-resolved registry is a no-op")
}

func TestResolveLabelsSkipsAutoLabels(t *testing.T) {
	r := label.New()
	r.AddLabel(bus.Code, 0x100, memmap.CodeMem, "table", true, label.SourceUser)
	r.AddLabel(bus.Code, 0x999, memmap.CodeMem, "table+4", true, label.SourceAuto)

	r.ResolveLabels(bus.Code)

	got := r.FindByText(bus.Code, "table+4")
	if assert.NotNil(t, got, "auto-named expression-shaped labels are left untouched") {
		assert.Equal(t, bus.Address(0x999), got.Address)
	}
}

func TestResolveLabelsSkipsUnused(t *testing.T) {
	r := label.New()
	r.AddLabel(bus.Code, 0x100, memmap.CodeMem, "table", true, label.SourceUser)
	r.AddLabel(bus.Code, 0x999, memmap.CodeMem, "table+4", false, label.SourceUser)

	r.ResolveLabels(bus.Code)

	got := r.FindByText(bus.Code, "table+4")
	if assert.NotNil(t, got) {
		assert.Equal(t, bus.Address(0x999), got.Address)
	}
}

func TestResolveLabelsIgnoresUnknownBase(t *testing.T) {
	r := label.New()
	r.AddLabel(bus.Code, 0x999, memmap.CodeMem, "nosuchbase+4", true, label.SourceUser)

	r.ResolveLabels(bus.Code)

	got := r.FindByText(bus.Code, "nosuchbase+4")
	if assert.NotNil(t, got) {
		assert.Equal(t, bus.Address(0x999), got.Address)
	}
}
