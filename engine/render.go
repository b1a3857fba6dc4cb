package engine

import (
	"fmt"

	"github.com/retrodis/dasmfw/bus"
	"github.com/retrodis/dasmfw/comment"
	"github.com/retrodis/dasmfw/memmap"
)

// Line is one emitted listing record. Render streams these to emit in
// output order; the listing package is the only intended consumer, but
// nothing here depends on it, so tests can inspect the event stream
// directly. Exactly one of {Blank, Verbatim, the columnar fields} applies
// to any given Line.
type Line struct {
	Bus bus.Bus

	// Blank marks a forced separator line; every other field is ignored.
	Blank bool

	// Verbatim marks a line that renders exactly as-is, with no column
	// layout — backend pseudo-op changes (DisassembleChanges) and the
	// info script's INSERT/PREPEND comments (spec §4.8) both render this
	// way.
	Verbatim string

	HasAddress bool
	Address    bus.Address
	// Size is the number of bytes the cell at Address consumed; zero for
	// header/comment-only lines that carry no address of their own. The
	// listing package's hex/ASCII gutter uses it to know how many raw bytes
	// to show alongside the line.
	Size     int
	Label    string
	Mnemonic string
	Operands string
	// Comment holds any Line-kind comment text to render trailing the
	// columnar line, plus Before/After comments rendered as their own
	// comment-only Line when Mnemonic and Label are both empty.
	Comment string
}

// Render materializes the full listing for bus b: DefLabel/unused-label
// headers, then one Line per used cell in ascending address order (spec
// §4.9 pass 2). Render is not read-only: every label it prints is marked
// used, and a cell the backend cannot render is demoted to a one-byte Const
// stub (see demote).
func (e *Engine) Render(b bus.Bus, emit func(Line)) {
	e.renderDefLabels(b, emit)
	e.renderHeaderLabels(b, emit)

	isUsed := e.isUsed(b)
	addr := e.Ctx.Mem.GetNextAddr(b, bus.NoAddress, isUsed)
	prevAddr := bus.NoAddress
	prevSize := 0

	for addr.Valid() {
		e.emitCommentLines(b, comment.Before, addr, emit)

		if chg := e.Backend.DisassembleChanges(e.Ctx, addr, prevAddr, prevSize, false); chg != "" {
			emit(Line{Bus: b, Verbatim: chg})
		}
		if e.breakBefore(b, addr) {
			emit(Line{Bus: b, Blank: true})
		}

		size, mnemonic, operands := e.renderCell(b, addr)

		lbl := ""
		if l := e.Ctx.Labels.FindLabel(b, addr, 0, true); l != nil {
			l.Used = true
			lbl = l.Text
		}
		emit(Line{
			Bus:        b,
			HasAddress: true,
			Address:    addr,
			Size:       size,
			Label:      lbl,
			Mnemonic:   mnemonic,
			Operands:   operands,
			Comment:    e.lineComment(b, addr),
		})

		if chg := e.Backend.DisassembleChanges(e.Ctx, addr, prevAddr, prevSize, true); chg != "" {
			emit(Line{Bus: b, Verbatim: chg})
		}
		e.emitCommentLines(b, comment.After, addr, emit)

		prevAddr, prevSize = addr, size
		addr = e.Ctx.Mem.GetNextAddr(b, addr+bus.Address(size-1), isUsed)
	}
}

// renderCell decodes and renders the line at addr, demoting to a one-byte
// FCB stub on any backend failure (spec §4.9/§7 failure semantics).
func (e *Engine) renderCell(b bus.Bus, addr bus.Address) (size int, mnemonic, operands string) {
	cell, ok := e.Ctx.Attrs.Get(b, addr)
	if !ok {
		return 1, "FCB", fmt.Sprintf("$%02X", e.byteAt(b, addr))
	}

	var err error
	if cell.MemType == memmap.CodeMem {
		size, mnemonic, operands, err = e.Backend.DisassembleCode(e.Ctx, addr, b)
	} else {
		end := e.consecutiveDataEnd(b, addr)
		hasLabel := e.Ctx.Labels.FindLabel(b, addr, cell.MemType, false) != nil
		flags := e.Ctx.Attrs.GetDisassemblyFlags(b, addr, e.byteAt(b, addr), hasLabel)
		size, mnemonic, operands, err = e.Backend.DisassembleData(e.Ctx, addr, end, flags, e.MaxParmLen, b)
	}
	if err != nil || size <= 0 {
		e.demote(b, addr, err)
		return 1, "FCB", fmt.Sprintf("$%02X", e.byteAt(b, addr))
	}
	return size, mnemonic, operands
}

// renderDefLabels emits the EQU-style header for every script-defined
// symbolic constant on b (spec §4.9 step 1, first half).
func (e *Engine) renderDefLabels(b bus.Bus, emit func(Line)) {
	for _, d := range e.Ctx.Labels.DefLabels(b) {
		mnemonic, operands := e.Backend.DisassembleDefLabel(e.Ctx, d)
		emit(Line{Bus: b, Label: d.Text, Mnemonic: mnemonic, Operands: operands})
	}
}

// renderHeaderLabels emits every used label whose target address has no
// real data (unmapped, or mapped but Untyped) — spec §4.9 step 1, second
// half: "for each used label whose cell is Untyped... call backend
// DisassembleLabel". Labels over typed/mapped cells render inline as part
// of the normal per-cell walk instead.
func (e *Engine) renderHeaderLabels(b bus.Bus, emit func(Line)) {
	for _, l := range e.Ctx.Labels.All(b) {
		if !l.Used {
			continue
		}
		memType, mapped := e.Ctx.Mem.MemType(b, l.Address)
		if mapped && memType != memmap.Untyped {
			continue
		}
		mnemonic, operands := e.Backend.DisassembleLabel(e.Ctx, l)
		e.emitCommentLines(b, comment.Before, l.Address, emit)
		emit(Line{Bus: b, Label: l.Text, Mnemonic: mnemonic, Operands: operands, Comment: e.lineComment(b, l.Address)})
		e.emitCommentLines(b, comment.After, l.Address, emit)
	}
}

// emitCommentLines emits one comment-only Line per Before/After comment
// store entry at addr, prepend entries first (spec §4.6 render order).
func (e *Engine) emitCommentLines(b bus.Bus, kind comment.Kind, addr bus.Address, emit func(Line)) {
	for _, c := range e.Ctx.Comments.At(b, kind, addr) {
		if c.Verbatim {
			emit(Line{Bus: b, Verbatim: c.Text})
			continue
		}
		emit(Line{Bus: b, Comment: c.Text})
	}
}

// lineComment joins every Line-kind comment at addr into the single
// trailing-comment string a columnar Line carries.
func (e *Engine) lineComment(b bus.Bus, addr bus.Address) string {
	cs := e.Ctx.Comments.At(b, comment.Line, addr)
	if len(cs) == 0 {
		return ""
	}
	out := cs[0].Text
	for _, c := range cs[1:] {
		out += "; " + c.Text
	}
	return out
}
