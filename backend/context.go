// Package backend defines the narrow processor-backend contract (spec
// component C10): decode/parse/render one address at a time, against the
// shared stores the engine owns. The 6800 reference implementation lives in
// the sibling backend/m6800 package.
package backend

import (
	"github.com/retrodis/dasmfw/attrs"
	"github.com/retrodis/dasmfw/bus"
	"github.com/retrodis/dasmfw/comment"
	"github.com/retrodis/dasmfw/label"
	"github.com/retrodis/dasmfw/memmap"
	"github.com/retrodis/dasmfw/xform"
)

// Context bundles the shared, engine-owned stores a backend needs to
// decode an instruction and name its operands. A backend never owns these
// stores; it only reads and mutates them through the methods they expose.
type Context struct {
	Mem      *memmap.Map
	Attrs    *attrs.Overlay
	Labels   *label.Registry
	Xform    *xform.Transforms
	Comments *comment.Store
}

// OptionInfo documents one backend-specific named option.
type OptionInfo struct {
	Name    string
	Help    string
	Default string
}

// Backend is the processor-plugin contract the engine drives. Every method
// that touches an address takes the bus it applies to; Von-Neumann targets
// like the 6800 only ever see bus.Code.
type Backend interface {
	// Metadata.
	Name() string
	Endianness() memmap.Endian
	Architecture() string
	BusWidth(b bus.Bus) int
	LowestAddr(b bus.Bus) bus.Address
	HighestAddr(b bus.Bus) bus.Address
	CodePtrSize() int
	DataPtrSize() int
	DefaultMemoryType(b bus.Bus) memmap.MemoryType

	// Options.
	SetOption(name, value string) error
	GetOption(name string) (string, bool)
	Options() []OptionInfo

	// Parse decodes the instruction at addr, reads all operand bytes, and
	// registers any branch/data target it finds as a used label. It
	// returns the number of bytes consumed, or an error on a hard decode
	// failure (the engine demotes the cell to Const and advances by one
	// byte per spec §4.9).
	Parse(ctx *Context, addr bus.Address, b bus.Bus) (size int, err error)

	// DisassembleCode decodes the instruction at addr again (this time for
	// rendering) and returns its size plus mnemonic/operand text.
	DisassembleCode(ctx *Context, addr bus.Address, b bus.Bus) (size int, mnemonic, operands string, err error)

	// DisassembleData renders the longest run [addr,end) of consecutive
	// same-attribute data cells using flags (spec §3 disassembly-flags
	// word) and maxParmLen as the most cells to render on one line.
	DisassembleData(ctx *Context, addr, end bus.Address, flags uint32, maxParmLen int, b bus.Bus) (size int, mnemonic, operands string, err error)

	// DisassembleLabel renders the header line for a used label whose
	// cell carries no data (an EQU-like bare symbol).
	DisassembleLabel(ctx *Context, l *label.Label) (mnemonic, operands string)

	// DisassembleDefLabel renders a DefLabel as an EQU directive.
	DisassembleDefLabel(ctx *Context, d *label.DefLabel) (mnemonic, operands string)

	// DisassembleChanges renders any pseudo-op needed between addr and
	// the previous emitted line (e.g. an ORG change); afterLine selects
	// the after-line-directive slot instead of the before-line one.
	DisassembleChanges(ctx *Context, addr, prevAddr bus.Address, prevSize int, afterLine bool) string

	// ProcessInfo gives the backend first refusal on an info-script
	// directive; returning true suppresses the interpreter's generic
	// handling of that keyword.
	ProcessInfo(ctx *Context, keyword string, args []string) bool
}
