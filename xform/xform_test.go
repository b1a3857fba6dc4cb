package xform_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retrodis/dasmfw/bus"
	"github.com/retrodis/dasmfw/xform"
)

// Phase [$200,$300) maps logical window [$8000,$80FF] onto that physical
// span (spec §8 scenario 3: a JSR operand encoding $8234, outside the
// window, stays bare; an operand inside the window resolves down into the
// physical bytes that actually back it).
func TestPhaseInnerRewritesInsideWindow(t *testing.T) {
	tf := xform.New()
	require.NoError(t, tf.AddPhase(bus.Code, 0x200, 0x100, 0x8000))

	got := tf.PhaseInner(0x8050, 0x200, bus.Code)
	assert.Equal(t, bus.Address(0x250), got, "an in-window logical target resolves into the physical span backing it")
}

func TestPhaseInnerLeavesOutsideWindowUnchanged(t *testing.T) {
	tf := xform.New()
	require.NoError(t, tf.AddPhase(bus.Code, 0x200, 0x100, 0x8000))

	got := tf.PhaseInner(0x8234, 0x200, bus.Code)
	assert.Equal(t, bus.Address(0x8234), got, "a target outside the phased logical window passes through untouched")
}

func TestPhaseInnerOutsideSpanIsIdentity(t *testing.T) {
	tf := xform.New()
	require.NoError(t, tf.AddPhase(bus.Code, 0x200, 0x100, 0x8000))

	got := tf.PhaseInner(0x9999, 0x050, bus.Code) // 0x050 is not in any phase span
	assert.Equal(t, bus.Address(0x9999), got)
}

// Spec §8 invariant: DephaseOuter(PhaseInner(v,a,bus),a,bus) == v when a is
// inside a phase span and v is outside the phase window (here v is also
// within the physical span bounds, so PhaseInner's pass-through is the
// identity DephaseOuter must reproduce).
func TestDephaseOuterInvertsPhaseInner(t *testing.T) {
	tf := xform.New()
	require.NoError(t, tf.AddPhase(bus.Code, 0x200, 0x100, 0x8000))

	a := bus.Address(0x200)
	v := bus.Address(0x0250)

	phased := tf.PhaseInner(v, a, bus.Code)
	dephased := tf.DephaseOuter(phased, a, bus.Code)
	assert.Equal(t, v, dephased)
}

// DephaseOuter is exercised directly when a phased target resolves to a
// physical address outside the span bounds: it must add the span's delta
// back in to recover the originally-encoded logical address.
func TestDephaseOuterRecoversLogicalAddress(t *testing.T) {
	tf := xform.New()
	require.NoError(t, tf.AddPhase(bus.Code, 0x200, 0x100, 0x8000))

	got := tf.DephaseOuter(0x0050, 0x200, bus.Code) // $50 lies outside [$200,$300)
	assert.Equal(t, bus.Address(0x7E50), got)
}

func TestRelativeDeltaAppliedBeforePhase(t *testing.T) {
	tf := xform.New()
	require.NoError(t, tf.AddRelative(bus.Code, 0x100, 0x10, 0x1000))
	got := tf.Resolve(0x0010, 0x100, bus.Code)
	assert.Equal(t, bus.Address(0x1010), got, "relative bias applies before any phase lookup")
}

func TestGetRelativeDefaultsToZero(t *testing.T) {
	tf := xform.New()
	assert.Equal(t, bus.Address(0), tf.GetRelative(bus.Code, 0x100))
}

func TestRemovePhaseAndRelative(t *testing.T) {
	tf := xform.New()
	require.NoError(t, tf.AddPhase(bus.Code, 0x200, 0x10, 0x8000))
	require.NoError(t, tf.AddRelative(bus.Code, 0x100, 0x10, 5))

	assert.True(t, tf.RemovePhase(bus.Code, 0x200))
	assert.True(t, tf.RemoveRelative(bus.Code, 0x100))
	assert.False(t, tf.InPhase(bus.Code, 0x200))
	assert.Equal(t, bus.Address(0), tf.GetRelative(bus.Code, 0x100))
}

func TestSetPhaseOverrideDefaultAddressMeansZeroDelta(t *testing.T) {
	tf := xform.New()
	require.NoError(t, tf.AddPhase(bus.Code, 0x200, 0x10, 0x8000))
	assert.True(t, tf.SetPhaseOverride(bus.Code, 0x205, bus.DefaultAddress))

	// Override forces the rewrite regardless of window, with delta 0.
	got := tf.PhaseInner(0x9999, 0x205, bus.Code)
	assert.Equal(t, bus.Address(0x9999), got)
}
