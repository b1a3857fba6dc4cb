package attrs

import "github.com/retrodis/dasmfw/memmap"

// CellType classifies how a cell's raw bytes should be interpreted when no
// code decode applies.
type CellType int

const (
	Untyped CellType = iota
	UnsignedInt
	SignedInt
	Float
	Char
)

// Display selects the radix/representation used when rendering a data
// cell's value.
type Display int

const (
	DisplayDefault Display = iota
	Binary
	Octal
	Decimal
	Hex
	CharDisplay
	Undisplayable
)

// Cell is the per-byte attribute record overlaid on a mapped memory cell.
type Cell struct {
	Used        bool
	CellType    CellType
	CellSize    int // 1, 2, 4, 8 or 10 bytes; multi-byte cells occupy the first cell
	Display     Display
	BreakBefore bool
	MemType     memmap.MemoryType
}

// DefaultCell is the attribute state a freshly mapped byte starts in:
// used, untyped, one byte wide, default display.
func DefaultCell(memType memmap.MemoryType) Cell {
	return Cell{Used: true, CellType: Untyped, CellSize: 1, Display: DisplayDefault, MemType: memType}
}

// Disassembly-flags bit layout (spec §3): low 8 bits hold cellSize-1, the
// remaining bits are single-purpose flags consumed by backend render hooks
// so they never need to re-inspect the overlay directly.
const (
	FlagSizeMask uint32 = 0xFF
	FlagData     uint32 = 1 << 8
	FlagRMB      uint32 = 1 << 9
	FlagTXT      uint32 = 1 << 10
	FlagBreak    uint32 = 1 << 11
	FlagNoTXT    uint32 = 1 << 12
)
