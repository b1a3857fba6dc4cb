package m6800

import (
	"fmt"

	"github.com/retrodis/dasmfw/backend"
	"github.com/retrodis/dasmfw/bus"
	"github.com/retrodis/dasmfw/memmap"
)

// address2String formats a bare address operand, honoring the
// forceExtendedAddr/forceDirectAddr cosmetic width overrides (spec
// §4.10): the underlying opcode/byte-count never changes, only how many
// hex digits the operand text uses.
func (b *Backend) address2String(addr bus.Address, extendedOperand bool) string {
	digits := 2
	if extendedOperand {
		digits = 4
	}
	if extendedOperand && b.flag("forceDirectAddr") && addr <= 0xFF {
		digits = 2
	}
	if !extendedOperand && b.flag("forceExtendedAddr") {
		digits = 4
	}
	return fmt.Sprintf("$%0*X", digits, uint64(addr))
}

// label2String resolves a decoded target through the relative/phase
// transform chain, looks it up in the label registry, and falls back to a
// bare address string if no label claims it (spec §4.4 composition order).
func (b *Backend) label2String(ctx *backend.Context, raw, at bus.Address, busSel bus.Bus, memType memmap.MemoryType, extendedOperand bool) string {
	resolved := ctx.Xform.Resolve(raw, at, busSel)
	if l := ctx.Labels.FindLabel(busSel, resolved, memType, false); l != nil {
		l.Used = true
		return l.Text
	}
	// The target may legitimately sit outside the phase window the
	// operand was decoded in (code that jumps back out of a phased
	// region); try the dephased address too before giving up on a label.
	dephased := ctx.Xform.DephaseOuter(resolved, at, busSel)
	if dephased != resolved {
		if l := ctx.Labels.FindLabel(busSel, dephased, memType, false); l != nil {
			l.Used = true
			return l.Text
		}
	}
	return b.address2String(resolved, extendedOperand)
}

// indexedOperand formats an indexed-mode operand, e.g. "$04,X" or, with
// showIndexedModeZeroOperand off, ",X" for a zero offset.
func (b *Backend) indexedOperand(offset byte) string {
	if offset == 0 && !b.flag("showIndexedModeZeroOperand") {
		return ",X"
	}
	return fmt.Sprintf("$%02X,X", offset)
}

// immByteOperand formats an 8-bit immediate operand. With closeCC off (the
// default) a space separates the # marker from the value, e.g. "# $FF";
// closeCC on tightens it to "#$FF".
func (b *Backend) immByteOperand(v byte) string {
	if b.flag("closeCC") {
		return fmt.Sprintf("#$%02X", v)
	}
	return fmt.Sprintf("# $%02X", v)
}

func (b *Backend) immWordOperand(v uint16) string {
	return fmt.Sprintf("#$%04X", v)
}

// convenientPair recognizes the two 6800 instruction pairs the original
// tool synthesizes into 6809-style double-accumulator mnemonics when
// useConvenience is on: LSRA;RORB -> LSRD, ASLB;ROLA -> ASLD.
func convenientPair(first, second byte) (string, bool) {
	switch {
	case first == 0x44 && second == 0x56:
		return "LSRD", true
	case first == 0x58 && second == 0x49:
		return "ASLD", true
	default:
		return "", false
	}
}

// DisassembleCode decodes the instruction at addr for rendering, resolving
// any memory-referencing operand into a label or formatted address string.
func (b *Backend) DisassembleCode(ctx *backend.Context, addr bus.Address, busSel bus.Bus) (int, string, string, error) {
	if b.flag("useConvenience") {
		if op1, ok := ctx.Mem.GetByte(busSel, addr); ok {
			if op2, ok2 := ctx.Mem.GetByte(busSel, addr+1); ok2 {
				if mn, isPair := convenientPair(op1, op2); isPair {
					return 2, mn, "", nil
				}
			}
		}
	}

	d, err := b.decodeAt(ctx, addr, busSel)
	if err != nil {
		return 0, "", "", err
	}

	mnemonic := d.Entry.Mnemonic
	var operand string

	switch d.Entry.Mode {
	case ModeInherent:
		// no operand text
	case ModeImmByte:
		operand = b.immByteOperand(d.Operand[0])
	case ModeImmWord:
		operand = b.immWordOperand(uint16(d.Operand[0])<<8 | uint16(d.Operand[1]))
	case ModeDirect:
		raw, _ := d.rawTargetAddress()
		memType := memmap.DataMem
		if d.isCodeTarget() {
			memType = memmap.CodeMem
		}
		operand = b.label2String(ctx, raw, addr, busSel, memType, false)
	case ModeExtended:
		raw, _ := d.rawTargetAddress()
		memType := memmap.DataMem
		if d.isCodeTarget() {
			memType = memmap.CodeMem
		}
		operand = b.label2String(ctx, raw, addr, busSel, memType, true)
	case ModeIndexed:
		operand = b.indexedOperand(d.Operand[0])
	case ModeRelative:
		raw, _ := d.rawTargetAddress()
		operand = b.label2String(ctx, raw, addr, busSel, memmap.CodeMem, true)
	}

	return d.Size, mnemonic, operand, nil
}
