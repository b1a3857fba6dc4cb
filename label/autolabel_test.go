package label_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/retrodis/dasmfw/bus"
	"github.com/retrodis/dasmfw/label"
	"github.com/retrodis/dasmfw/memmap"
)

func TestCreateAutoLabelCodeUsesZPrefix(t *testing.T) {
	r := label.New()
	l := r.CreateAutoLabel(bus.Code, 0x104, memmap.CodeMem, true)
	assert.Equal(t, "Z0104", l.Text)
	assert.True(t, l.Used)
	assert.Equal(t, label.SourceAuto, l.Source)
}

func TestCreateAutoLabelDataUsesMPrefix(t *testing.T) {
	r := label.New()
	l := r.CreateAutoLabel(bus.Code, 0x2000, memmap.DataMem, false)
	assert.Equal(t, "M2000", l.Text)
}

func TestCreateAutoLabelReusesExactMatch(t *testing.T) {
	r := label.New()
	first := r.AddLabel(bus.Code, 0x100, memmap.CodeMem, "loop", false, label.SourceUser)
	second := r.CreateAutoLabel(bus.Code, 0x100, memmap.CodeMem, true)

	assert.Same(t, first, second)
	assert.True(t, first.Used, "CreateAutoLabel marks a reused label used")
}

func TestCreateAutoLabelNamesOffDominatingLabel(t *testing.T) {
	r := label.New()
	r.AddLabel(bus.Code, 0x100, memmap.CodeMem, "start", true, label.SourceUser)

	l := r.CreateAutoLabel(bus.Code, 0x108, memmap.CodeMem, true)
	assert.Equal(t, "start+8", l.Text)
}

func TestCreateAutoLabelPrefersNearestDominatingLabel(t *testing.T) {
	r := label.New()
	r.AddLabel(bus.Code, 0x100, memmap.CodeMem, "far", true, label.SourceUser)
	r.AddLabel(bus.Code, 0x180, memmap.CodeMem, "near", true, label.SourceUser)

	l := r.CreateAutoLabel(bus.Code, 0x190, memmap.CodeMem, true)
	assert.Equal(t, "near+16", l.Text)
}

func TestCreateAutoLabelIgnoresOtherAutoLabelsAsDominators(t *testing.T) {
	r := label.New()
	r.AddLabel(bus.Code, 0x100, memmap.CodeMem, "Z0100", true, label.SourceAuto)

	l := r.CreateAutoLabel(bus.Code, 0x108, memmap.CodeMem, true)
	assert.Equal(t, "Z0108", l.Text, "an auto-named label never dominates another auto label")
}

func TestCreateAutoLabelReusesDominatingLabelExactlyAtAddr(t *testing.T) {
	r := label.New()
	r.AddLabel(bus.Code, 0x100, memmap.DataMem, "data_x", true, label.SourceUser)

	l := r.CreateAutoLabel(bus.Code, 0x100, memmap.CodeMem, true)
	assert.Equal(t, "data_x", l.Text, "a same-address label of a different memType still dominates")
}
