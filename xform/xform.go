// Package xform implements the address-transform layer (spec component
// C4): per-bus phase spans (logical-PC rebasing over a range) and relative
// spans (a per-address bias added to decoded operands before label lookup).
// The two transforms are independent and composable; the engine always
// composes them in the fixed order relative-then-phase (spec §4.4/§9).
package xform

import (
	"fmt"

	"github.com/retrodis/dasmfw/bus"
	"github.com/retrodis/dasmfw/interval"
)

// Transforms holds the phase and relative tables for every bus.
type Transforms struct {
	phases    [bus.Count]*interval.Store[bus.Address, bus.Address]
	relatives [bus.Count]*interval.Store[struct{}, bus.Address]
}

// New creates an empty transform table.
func New() *Transforms {
	t := &Transforms{}
	for i := range t.phases {
		t.phases[i] = interval.New[bus.Address, bus.Address]()
		t.relatives[i] = interval.New[struct{}, bus.Address]()
	}
	return t
}

// AddPhase creates a phase span [start,start+length) whose logical address
// at start is phaseStart. Per-cell deltas default to bus.NoAddress ("use
// span default").
func (t *Transforms) AddPhase(b bus.Bus, start bus.Address, length uint64, phaseStart bus.Address) error {
	_, err := t.phases[b].Add(uint64(start), length, phaseStart, bus.NoAddress)
	if err != nil {
		return fmt.Errorf("xform: %w", err)
	}
	return nil
}

// RemovePhase deletes the phase span starting exactly at start.
func (t *Transforms) RemovePhase(b bus.Bus, start bus.Address) bool {
	return t.phases[b].Remove(uint64(start))
}

// SetPhaseOverride sets the per-cell delta override at addr within its
// phase span; bus.DefaultAddress means "zero", any other valid address is
// used as the literal delta for that cell.
func (t *Transforms) SetPhaseOverride(b bus.Bus, addr bus.Address, override bus.Address) bool {
	return t.phases[b].Set(uint64(addr), override)
}

func (t *Transforms) phaseDelta(span *interval.Span[bus.Address, bus.Address], addr bus.Address) (delta bus.Address, overridden bool) {
	override := span.Cells[uint64(addr)-span.Start]
	switch override {
	case bus.NoAddress:
		return bus.Address(span.Start) - span.Tag, false
	case bus.DefaultAddress:
		return 0, true
	default:
		return override, true
	}
}

// PhaseInner rewrites v (computed while decoding at address a on bus b)
// into the phased space, if a lies in a phase span and v is inside its
// logical window (or a per-cell override forces it regardless of window).
func (t *Transforms) PhaseInner(v, a bus.Address, b bus.Bus) bus.Address {
	span, ok := t.phases[b].FindSpan(uint64(a))
	if !ok {
		return v
	}
	delta, overridden := t.phaseDelta(span, a)
	phaseStart := span.Tag
	phaseEnd := phaseStart + bus.Address(span.Len) - 1
	inWindow := v >= phaseStart && v <= phaseEnd
	if inWindow || overridden {
		return v + delta
	}
	return v
}

// DephaseOuter reverses PhaseInner, used when a rendered target address
// leaves the physical phase span (as opposed to the logical window
// PhaseInner tests against).
func (t *Transforms) DephaseOuter(v, a bus.Address, b bus.Bus) bus.Address {
	span, ok := t.phases[b].FindSpan(uint64(a))
	if !ok {
		return v
	}
	delta, _ := t.phaseDelta(span, a)
	spanStart := bus.Address(span.Start)
	spanEnd := bus.Address(span.End())
	if v < spanStart || v >= spanEnd {
		return v - delta
	}
	return v
}

// PhaseAt returns the logical phase-start address in effect at addr (the
// physical address minus the span's delta), or false if addr isn't phased.
// Used by the info interpreter's relative PHASE +/-delta form, which rebases
// off whatever phase already applies at that cell.
func (t *Transforms) PhaseAt(b bus.Bus, addr bus.Address) (bus.Address, bool) {
	span, ok := t.phases[b].FindSpan(uint64(addr))
	if !ok {
		return 0, false
	}
	delta, _ := t.phaseDelta(span, addr)
	return addr - delta, true
}

// InPhase reports whether addr falls inside any phase span on the bus.
func (t *Transforms) InPhase(b bus.Bus, addr bus.Address) bool {
	_, ok := t.phases[b].FindSpan(uint64(addr))
	return ok
}

// AddRelative creates a relative span applying a constant delta to every
// decoded operand address inside [start,start+length). It fails if the span
// touches or overlaps an existing relative span on the bus.
func (t *Transforms) AddRelative(b bus.Bus, start bus.Address, length uint64, delta bus.Address) error {
	_, err := t.relatives[b].Add(uint64(start), length, struct{}{}, delta)
	if err != nil {
		return fmt.Errorf("xform: %w", err)
	}
	return nil
}

// RemoveRelative deletes the relative span starting exactly at start.
func (t *Transforms) RemoveRelative(b bus.Bus, start bus.Address) bool {
	return t.relatives[b].Remove(uint64(start))
}

// GetRelative returns the stored delta for a, or 0 if a is not covered by
// any relative span.
func (t *Transforms) GetRelative(b bus.Bus, a bus.Address) bus.Address {
	v, ok := t.relatives[b].Get(uint64(a))
	if !ok {
		return 0
	}
	return v
}

// Resolve composes the full operand-address resolution order the engine
// uses before any label lookup: raw -> +relative(a) -> PhaseInner (spec
// §4.4/§9: "relative, then phase; any deviation is a backend bug").
func (t *Transforms) Resolve(raw, a bus.Address, b bus.Bus) bus.Address {
	v := raw + t.GetRelative(b, a)
	return t.PhaseInner(v, a, b)
}
