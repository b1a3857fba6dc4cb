// Package loader implements the binary-format file loaders (spec component
// C7): raw binary, Intel HEX, Motorola S-record, and FLEX binary, each
// populating a memmap.Map and reporting how many spans it added and any
// discovered entry point.
package loader

import (
	"fmt"

	"github.com/golang/glog"

	"github.com/retrodis/dasmfw/bus"
	"github.com/retrodis/dasmfw/memmap"
)

// Format names one of the recognized binary-file formats.
type Format int

const (
	Raw Format = iota
	IntelHex
	SRecord
	Flex
)

func (f Format) String() string {
	switch f {
	case IntelHex:
		return "intel-hex"
	case SRecord:
		return "s-record"
	case Flex:
		return "flex"
	default:
		return "raw"
	}
}

// Options configures a single file load (spec §4.7's "offset"/"interleave"
// raw-binary options, plus the bus/memory-type a loader defaults newly
// mapped bytes to, and the backend-declared address bounds used to
// silently discard out-of-range bytes).
type Options struct {
	Bus         bus.Bus
	DefaultType memmap.MemoryType
	Offset      bus.Address
	Interleave  int
	Low, High   bus.Address // backend.LowestAddr/HighestAddr(Bus); unset (NoAddress) means unbounded
}

// inRange reports whether addr is within [opts.Low, opts.High], treating an
// unset bound (bus.NoAddress) as no constraint on that side.
func (o Options) inRange(addr bus.Address) bool {
	if o.Low.Valid() && addr < o.Low {
		return false
	}
	if o.High.Valid() && addr > o.High {
		return false
	}
	return true
}

// Result reports what a Load call did.
type Result struct {
	Bus         bus.Bus
	SpansAdded  int
	Format      Format
	EntryPoint  bus.Address
	HasEntry    bool
}

// Loader is the collaborator interface every binary-file format implements.
type Loader interface {
	// Detect reports whether data looks like this loader's format, by
	// inspecting only the leading bytes (spec §6: "detection by
	// first-byte inspection").
	Detect(data []byte) bool
	// Load parses data and maps its bytes into mem per opts.
	Load(mem *memmap.Map, data []byte, opts Options) (Result, error)
	Format() Format
}

var loaders = []Loader{
	intelHexLoader{},
	sRecordLoader{},
	flexLoader{},
}

// Detect returns the loader matching data's leading bytes, falling back to
// the raw binary loader (spec §4.7 "Raw binary (fallback)").
func Detect(data []byte) Loader {
	for _, l := range loaders {
		if l.Detect(data) {
			return l
		}
	}
	return rawLoader{}
}

// Load auto-detects data's format and loads it into mem.
func Load(mem *memmap.Map, data []byte, opts Options) (Result, error) {
	l := Detect(data)
	res, err := l.Load(mem, data, opts)
	if err != nil {
		return res, fmt.Errorf("loader: %w", err)
	}
	glog.Infof("loaded %d span(s) on %s bus from %s", res.SpansAdded, opts.Bus, l.Format())
	return res, nil
}

// spanBuilder coalesces a stream of (address, byte) writes into the fewest
// contiguous spans, flushing to the memory map whenever the address stream
// breaks continuity (spec §4.7: "adjacent data records coalesce into one
// span per contiguous region"). Out-of-range bytes are dropped before they
// ever reach the builder.
type spanBuilder struct {
	mem     *memmap.Map
	bus     bus.Bus
	defType memmap.MemoryType

	start   bus.Address
	pending []byte
	added   int
	err     error
}

func newSpanBuilder(mem *memmap.Map, b bus.Bus, defType memmap.MemoryType) *spanBuilder {
	return &spanBuilder{mem: mem, bus: b, defType: defType}
}

func (s *spanBuilder) put(addr bus.Address, v byte) {
	if s.err != nil {
		return
	}
	if len(s.pending) > 0 && addr == s.start+bus.Address(len(s.pending)) {
		s.pending = append(s.pending, v)
		return
	}
	s.flush()
	s.start = addr
	s.pending = append(s.pending[:0], v)
}

func (s *spanBuilder) flush() {
	if s.err != nil || len(s.pending) == 0 {
		return
	}
	if _, err := s.mem.AddMemory(s.bus, s.start, s.pending, s.defType); err != nil {
		s.err = err
		return
	}
	s.added++
	s.pending = nil
}

// finish flushes any trailing pending run and returns the first error
// encountered, if any.
func (s *spanBuilder) finish() (int, error) {
	s.flush()
	return s.added, s.err
}
