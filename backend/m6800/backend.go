package m6800

import (
	"fmt"
	"strconv"

	"github.com/retrodis/dasmfw/backend"
	"github.com/retrodis/dasmfw/bus"
	"github.com/retrodis/dasmfw/memmap"
)

func init() {
	backend.Register("6800", New)
}

// optionSpec describes one named option this backend accepts, along with
// its default and help text, and whether it takes a boolean value.
type optionSpec struct {
	info    backend.OptionInfo
	boolean bool
}

// Backend is the 6800 reference processor backend (spec §4.10).
type Backend struct {
	opts map[string]string
}

var optionSpecs = []optionSpec{
	{info: backend.OptionInfo{Name: "useConvenience", Help: "emit LSRD/ASLD for recognized instruction pairs", Default: "on"}, boolean: true},
	{info: backend.OptionInfo{Name: "useFCC", Help: "emit FCC instead of FCB for ASCII data runs", Default: "on"}, boolean: true},
	{info: backend.OptionInfo{Name: "showIndexedModeZeroOperand", Help: "write 0,X instead of ,X for a zero index offset", Default: "on"}, boolean: true},
	{info: backend.OptionInfo{Name: "closeCC", Help: "omit the space after # in 8-bit immediate operands", Default: "off"}, boolean: true},
	{info: backend.OptionInfo{Name: "forceExtendedAddr", Help: "always print absolute operands as 4 hex digits", Default: "off"}, boolean: true},
	{info: backend.OptionInfo{Name: "forceDirectAddr", Help: "print an extended operand as 2 hex digits when its high byte is zero", Default: "off"}, boolean: true},
}

// New constructs a 6800 backend with default option values.
func New() backend.Backend {
	b := &Backend{opts: map[string]string{}}
	for _, spec := range optionSpecs {
		b.opts[spec.info.Name] = spec.info.Default
	}
	return b
}

func (b *Backend) Name() string             { return "6800" }
func (b *Backend) Architecture() string     { return "Motorola 6800" }
func (b *Backend) Endianness() memmap.Endian { return memmap.BigEndian }
func (b *Backend) CodePtrSize() int         { return 2 }
func (b *Backend) DataPtrSize() int         { return 2 }

func (b *Backend) BusWidth(busSel bus.Bus) int {
	if busSel == bus.Code {
		return 16
	}
	return 0
}

func (b *Backend) LowestAddr(busSel bus.Bus) bus.Address {
	if busSel == bus.Code {
		return 0
	}
	return bus.NoAddress
}

func (b *Backend) HighestAddr(busSel bus.Bus) bus.Address {
	if busSel == bus.Code {
		return 0xFFFF
	}
	return bus.NoAddress
}

func (b *Backend) DefaultMemoryType(busSel bus.Bus) memmap.MemoryType {
	if busSel == bus.Code {
		return memmap.CodeMem
	}
	return memmap.DataMem
}

func (b *Backend) optionSpec(name string) (optionSpec, bool) {
	for _, s := range optionSpecs {
		if s.info.Name == name {
			return s, true
		}
	}
	return optionSpec{}, false
}

// SetOption validates and stores a named option value. Unknown options or
// unparseable values are reported but do not fail the run (spec §7).
func (b *Backend) SetOption(name, value string) error {
	spec, ok := b.optionSpec(name)
	if !ok {
		return fmt.Errorf("m6800: unknown option %q", name)
	}
	if spec.boolean {
		norm, err := normalizeBool(value)
		if err != nil {
			return fmt.Errorf("m6800: option %q: %w", name, err)
		}
		b.opts[name] = norm
		return nil
	}
	b.opts[name] = value
	return nil
}

func normalizeBool(value string) (string, error) {
	switch value {
	case "", "on", "1", "true", "yes":
		return "on", nil
	case "off", "0", "false", "no":
		return "off", nil
	default:
		if v, err := strconv.ParseBool(value); err == nil {
			if v {
				return "on", nil
			}
			return "off", nil
		}
		return "", fmt.Errorf("not a boolean: %q", value)
	}
}

func (b *Backend) GetOption(name string) (string, bool) {
	v, ok := b.opts[name]
	return v, ok
}

func (b *Backend) Options() []backend.OptionInfo {
	out := make([]backend.OptionInfo, len(optionSpecs))
	for i, s := range optionSpecs {
		out[i] = s.info
	}
	return out
}

func (b *Backend) flag(name string) bool {
	return b.opts[name] == "on"
}

// ProcessInfo: the 6800 reference backend defines no processor-specific
// info-script keywords, so every directive falls through to the
// interpreter's generic handling.
func (b *Backend) ProcessInfo(ctx *backend.Context, keyword string, args []string) bool {
	return false
}
