// Package engine implements the two-pass parse-then-render driver (spec
// component C9): pass 1 walks every bus's used cells to discover branch and
// data-pointer targets and auto-create labels; pass 2 walks the same cells
// again to materialize listing lines, consulting the address-transform and
// label layers whenever an operand resolves to an address.
package engine

import (
	"github.com/golang/glog"

	"github.com/retrodis/dasmfw/attrs"
	"github.com/retrodis/dasmfw/backend"
	"github.com/retrodis/dasmfw/bus"
	"github.com/retrodis/dasmfw/memmap"
)

// Stats tallies the run, for the diagnostic summary original_source/ prints
// after rendering (SPEC_FULL.md's "supplemented features"): bytes loaded,
// labels created, unresolved targets, and cells demoted to data after a
// decode failure.
type Stats struct {
	BytesLoaded       int
	LabelsCreated     int
	UnresolvedTargets int
	InvalidOpcodes    int
}

// Engine drives Parse and Render over the shared stores bundled in ctx,
// against a selected backend. It holds no state of its own beyond the
// per-run Stats; every store it mutates is owned by the caller and survives
// the Engine's lifetime.
type Engine struct {
	Ctx     *backend.Context
	Backend backend.Backend

	// MaxParmLen bounds how many data items DisassembleData renders on one
	// line (spec §4.9 GetConsecutiveData's "per-line byte ceiling").
	MaxParmLen int

	Stats Stats
}

// New creates an Engine with the spec's implied default line width.
func New(ctx *backend.Context, be backend.Backend) *Engine {
	return &Engine{Ctx: ctx, Backend: be, MaxParmLen: 8}
}

// Buses returns the buses that have at least one mapped span, in Code/Data/
// IO order — the set pass 1 and pass 2 both iterate over (spec §4.9 "for
// each bus with mapped memory").
func (e *Engine) Buses() []bus.Bus {
	var out []bus.Bus
	for i := 0; i < bus.Count; i++ {
		b := bus.Bus(i)
		if e.Ctx.Mem.LowestAddr(b).Valid() {
			out = append(out, b)
		}
	}
	return out
}

func (e *Engine) isUsed(b bus.Bus) func(bus.Address) bool {
	return func(a bus.Address) bool { return e.Ctx.Attrs.IsUsed(b, a) }
}

// Parse runs pass 1 and pass 1' over b, then resolves expression labels.
// The second walk visits the same cells again; every target it finds
// already carries the label the first walk gave it, and CreateAutoLabel
// returns that label unchanged, so auto-names chosen on the first walk are
// not revised by the second.
func (e *Engine) Parse(b bus.Bus) {
	e.parsePass(b)
	e.parsePass(b)
	e.Ctx.Labels.ResolveLabels(b)
}

func (e *Engine) parsePass(b bus.Bus) {
	isUsed := e.isUsed(b)
	addr := e.Ctx.Mem.GetNextAddr(b, bus.NoAddress, isUsed)
	for addr.Valid() {
		// Only Code cells are decoded; any other cell (including one demoted
		// by an earlier walk) is stepped over by its cell size.
		size := 1
		if cell, ok := e.Ctx.Attrs.Get(b, addr); ok && cell.MemType != memmap.CodeMem {
			if cell.CellSize > 1 {
				size = cell.CellSize
			}
		} else if n, err := e.Backend.Parse(e.Ctx, addr, b); err != nil || n <= 0 {
			e.demote(b, addr, err)
		} else {
			size = n
		}
		addr = e.Ctx.Mem.GetNextAddr(b, addr+bus.Address(size-1), isUsed)
	}
}

// demote implements the failure semantics of spec §4.9/§7: a backend that
// cannot decode a cell gets it turned into a one-byte Const/Untyped stub
// instead of aborting the run.
func (e *Engine) demote(b bus.Bus, addr bus.Address, err error) {
	e.Ctx.Attrs.SetMemType(b, addr, memmap.Const)
	e.Ctx.Attrs.SetCellSize(b, addr, 1)
	e.Ctx.Attrs.SetCellType(b, addr, attrs.Untyped)
	e.Stats.InvalidOpcodes++
	if err != nil {
		glog.Warningf("engine: %s on %s bus: %v, demoted to data", addr, b, err)
	}
}

func (e *Engine) byteAt(b bus.Bus, addr bus.Address) byte {
	v, _ := e.Ctx.Mem.GetByte(b, addr)
	return v
}

// breakBefore reports whether the listing should insert a blank separator
// line ahead of addr: a label sits there, a comment of any kind is attached
// there (spec §4.6 "a BREAK attribute is asserted on every commented
// address"), or the attribute overlay's own derived flags call for one
// (memType change, explicit BreakBefore).
func (e *Engine) breakBefore(b bus.Bus, addr bus.Address) bool {
	hasLabel := e.Ctx.Labels.FindLabel(b, addr, 0, true) != nil
	hasComment := e.Ctx.Comments.HasAny(b, addr)
	flags := e.Ctx.Attrs.GetDisassemblyFlags(b, addr, e.byteAt(b, addr), hasLabel || hasComment)
	return flags&attrs.FlagBreak != 0
}

// consecutiveDataEnd implements GetConsecutiveData (spec §4.9): the longest
// run [addr,end) of cells sharing addr's memType/display/cellType/cellSize,
// stopping at a breakBefore flag, a label, an unused gap, or the
// MaxParmLen-derived byte ceiling, whichever comes first.
func (e *Engine) consecutiveDataEnd(b bus.Bus, addr bus.Address) bus.Address {
	start, ok := e.Ctx.Attrs.Get(b, addr)
	if !ok || start.CellSize < 1 {
		return addr + 1
	}
	maxItems := e.MaxParmLen
	if maxItems < 1 {
		maxItems = 1
	}
	limit := addr + bus.Address(maxItems*start.CellSize)

	cur := addr + bus.Address(start.CellSize)
	for cur < limit {
		cell, ok := e.Ctx.Attrs.Get(b, cur)
		if !ok || !cell.Used {
			break
		}
		if cell.MemType != start.MemType || cell.Display != start.Display ||
			cell.CellType != start.CellType || cell.CellSize != start.CellSize {
			break
		}
		if cell.BreakBefore {
			break
		}
		if e.Ctx.Labels.FindLabel(b, cur, cell.MemType, true) != nil {
			break
		}
		cur += bus.Address(cell.CellSize)
	}
	return cur
}

// ComputeStats folds the label registry and memory map's final state into
// e.Stats, for callers that want the supplemented per-run summary after
// Render completes.
func (e *Engine) ComputeStats() Stats {
	s := e.Stats
	for i := 0; i < bus.Count; i++ {
		b := bus.Bus(i)
		for _, l := range e.Ctx.Labels.All(b) {
			s.LabelsCreated++
			if _, mapped := e.Ctx.Mem.MemType(b, l.Address); !mapped {
				s.UnresolvedTargets++
			}
		}
		for _, span := range e.Ctx.Mem.Spans(b) {
			s.BytesLoaded += int(span.Len)
		}
	}
	return s
}
