// Package attrs implements the attribute overlay (spec component C3): a
// per-bus, per-cell attribute record parallel to the memory map, plus
// derivation of the 32-bit disassembly-flags word backends consume instead
// of re-inspecting attributes themselves.
package attrs

import (
	"github.com/retrodis/dasmfw/bus"
	"github.com/retrodis/dasmfw/interval"
	"github.com/retrodis/dasmfw/memmap"
)

// Overlay holds one attribute store per bus, mirroring the memory map's
// span layout.
type Overlay struct {
	mem   *memmap.Map
	cells [bus.Count]*interval.Store[struct{}, Cell]
}

// New creates an overlay bound to mem, from which it reads memory types
// when deriving disassembly flags.
func New(mem *memmap.Map) *Overlay {
	o := &Overlay{mem: mem}
	for i := range o.cells {
		o.cells[i] = interval.New[struct{}, Cell]()
	}
	return o
}

func (o *Overlay) store(b bus.Bus) *interval.Store[struct{}, Cell] {
	return o.cells[b]
}

// AddSpan creates the default attribute record for a newly mapped span; it
// must be called with the same (bus, start, length) as the matching
// memmap.AddMemory call so the two stores stay aligned.
func (o *Overlay) AddSpan(b bus.Bus, start bus.Address, length int, memType memmap.MemoryType) error {
	_, err := o.store(b).Add(uint64(start), uint64(length), struct{}{}, DefaultCell(memType))
	return err
}

// SyncSpans adds a default attribute record for every memory-map span on
// bus b that has no overlay coverage yet — e.g. after a file loader coalesces
// raw bytes into spans directly via memmap.Map.AddMemory, bypassing AddSpan.
// Without this, a loaded cell is never "used" (IsUsed reads the overlay, not
// the memory map) and the engine never parses it.
func (o *Overlay) SyncSpans(b bus.Bus) {
	for _, span := range o.mem.Spans(b) {
		if _, ok := o.Get(b, bus.Address(span.Start)); ok {
			continue
		}
		o.AddSpan(b, bus.Address(span.Start), int(span.Len), span.Tag)
	}
}

// Get returns the attribute record at addr, if mapped.
func (o *Overlay) Get(b bus.Bus, addr bus.Address) (Cell, bool) {
	return o.store(b).Get(uint64(addr))
}

// Set overwrites the whole attribute record at addr.
func (o *Overlay) Set(b bus.Bus, addr bus.Address, c Cell) bool {
	return o.store(b).Set(uint64(addr), c)
}

// mutate reads-modifies-writes the cell at addr, returning false if
// unmapped.
func (o *Overlay) mutate(b bus.Bus, addr bus.Address, f func(*Cell)) bool {
	c, ok := o.Get(b, addr)
	if !ok {
		return false
	}
	f(&c)
	return o.Set(b, addr, c)
}

// IsUsed reports whether the cell at addr both exists and is marked used;
// memmap.GetNextAddr is driven by this predicate.
func (o *Overlay) IsUsed(b bus.Bus, addr bus.Address) bool {
	c, ok := o.Get(b, addr)
	return ok && c.Used
}

// SetUsed marks a cell used or not. UNUSED info directives clear it.
func (o *Overlay) SetUsed(b bus.Bus, addr bus.Address, used bool) bool {
	return o.mutate(b, addr, func(c *Cell) { c.Used = used })
}

// SetCellType sets the cell's interpreted type.
func (o *Overlay) SetCellType(b bus.Bus, addr bus.Address, t CellType) bool {
	return o.mutate(b, addr, func(c *Cell) { c.CellType = t })
}

// SetCellSize sets the cell's byte width (1/2/4/8/10) and marks the
// following (size-1) cells unused, matching "multi-byte cells occupy the
// first cell; intermediate cells have used=false" (spec §3).
func (o *Overlay) SetCellSize(b bus.Bus, addr bus.Address, size int) bool {
	ok := o.mutate(b, addr, func(c *Cell) { c.CellSize = size })
	if !ok {
		return false
	}
	for i := 1; i < size; i++ {
		o.SetUsed(b, addr+bus.Address(i), false)
	}
	return true
}

// SetDisplay sets the cell's radix/representation.
func (o *Overlay) SetDisplay(b bus.Bus, addr bus.Address, d Display) bool {
	return o.mutate(b, addr, func(c *Cell) { c.Display = d })
}

// SetBreakBefore sets or clears the forced blank-separator flag.
func (o *Overlay) SetBreakBefore(b bus.Bus, addr bus.Address, v bool) bool {
	return o.mutate(b, addr, func(c *Cell) { c.BreakBefore = v })
}

// SetMemType sets the cell's own memType directly, independent of the
// memory map's coarser per-span tag — the info interpreter's CODE/DATA/
// CONST/RMB directives retype individual cells within a span this way
// (spec §4.8), distinct from SyncMemType's span-wide mirroring.
func (o *Overlay) SetMemType(b bus.Bus, addr bus.Address, t memmap.MemoryType) bool {
	return o.mutate(b, addr, func(c *Cell) { c.MemType = t })
}

// SyncMemType copies the memory map's current tag for addr's span into the
// overlay cell, keeping the mirrored field current after an info directive
// retags memory.
func (o *Overlay) SyncMemType(b bus.Bus, addr bus.Address) bool {
	t, ok := o.mem.MemType(b, addr)
	if !ok {
		return false
	}
	return o.mutate(b, addr, func(c *Cell) { c.MemType = t })
}

// isPrintable reports whether v is a standard printable ASCII character.
func isPrintable(v byte) bool {
	return v >= 0x20 && v <= 0x7E
}

// GetDisassemblyFlags composes the 32-bit word a backend's DisassembleData
// hook consumes instead of re-deriving attributes itself (spec §3-4.3).
// hasLabel reports whether a label exists at addr, forcing a BREAK.
func (o *Overlay) GetDisassemblyFlags(b bus.Bus, addr bus.Address, value byte, hasLabel bool) uint32 {
	c, ok := o.Get(b, addr)
	if !ok {
		return 0
	}
	size := c.CellSize
	if size < 1 {
		size = 1
	}
	flags := uint32(size-1) & FlagSizeMask

	switch c.MemType {
	case memmap.DataMem, memmap.Const, memmap.Bss:
		flags |= FlagData
	}
	if c.MemType == memmap.Bss {
		flags |= FlagRMB
	}

	textOK := c.Display != Binary && c.Display != Octal && c.Display != Decimal &&
		c.Display != Hex && c.Display != Undisplayable
	if isPrintable(value) && textOK {
		flags |= FlagTXT
	}
	if c.Display == Binary || c.Display == Octal || c.Display == Decimal || c.Display == Hex {
		flags |= FlagNoTXT
	}

	brk := c.BreakBefore || hasLabel
	if !brk && addr.Valid() && addr > 0 {
		if prev, ok := o.Get(b, addr-1); ok && prev.MemType != c.MemType {
			brk = true
		}
	}
	if brk {
		flags |= FlagBreak
	}
	return flags
}
