package m6800

import (
	"fmt"

	"github.com/retrodis/dasmfw/backend"
	"github.com/retrodis/dasmfw/bus"
)

const addrMask = bus.Address(0xFFFF)

// decoded is the intermediate result of reading one instruction's bytes,
// shared by Parse (pass 1) and DisassembleCode (pass 2) so the two never
// drift apart on what an opcode means.
type decoded struct {
	Addr    bus.Address
	Opcode  byte
	Entry   opEntry
	Operand []byte
	Size    int
}

func (b *Backend) decodeAt(ctx *backend.Context, addr bus.Address, busSel bus.Bus) (decoded, error) {
	opByte, ok := ctx.Mem.GetByte(busSel, addr)
	if !ok {
		return decoded{}, fmt.Errorf("m6800: unmapped opcode at %s", addr)
	}
	entry := opcodes[opByte]
	if entry.Mnemonic == "" {
		return decoded{Addr: addr, Opcode: opByte, Entry: entry, Size: 1}, fmt.Errorf("m6800: illegal opcode $%02X at %s", opByte, addr)
	}
	n := entry.Mode.OperandBytes()
	operand := make([]byte, 0, n)
	for i := 1; i <= n; i++ {
		v, ok := ctx.Mem.GetByte(busSel, addr+bus.Address(i))
		if !ok {
			return decoded{}, fmt.Errorf("m6800: truncated operand for %s at %s", entry.Mnemonic, addr)
		}
		operand = append(operand, v)
	}
	return decoded{Addr: addr, Opcode: opByte, Entry: entry, Operand: operand, Size: 1 + n}, nil
}

// rawTargetAddress computes the undecorated address an instruction's
// memory-referencing operand points at, before relative/phase resolution.
func (d decoded) rawTargetAddress() (bus.Address, bool) {
	switch d.Entry.Mode {
	case ModeDirect:
		return bus.Address(d.Operand[0]), true
	case ModeExtended:
		return (bus.Address(d.Operand[0])<<8 | bus.Address(d.Operand[1])) & addrMask, true
	case ModeRelative:
		disp := int8(d.Operand[0])
		return (d.Addr + bus.Address(d.Size) + bus.Address(int64(disp))) & addrMask, true
	default:
		return 0, false
	}
}

// isCodeTarget reports whether this instruction's memory-referencing
// operand names a code address (branch/jump/call) as opposed to a data
// address.
func (d decoded) isCodeTarget() bool {
	return branchMnemonics[d.Entry.Mnemonic]
}
