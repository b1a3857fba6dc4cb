// Package memmap implements the per-bus byte-addressable memory map (spec
// component C2): one sparse interval store of raw bytes per bus, with
// endianness-aware multibyte accessors built on top of the single-byte
// get/set primitives.
package memmap

import (
	"fmt"
	"math"

	"github.com/retrodis/dasmfw/bus"
	"github.com/retrodis/dasmfw/interval"
)

// Endian selects the byte order used to interpret multibyte reads/writes.
// It is a property of the target architecture, not the host.
type Endian int

const (
	BigEndian Endian = iota
	LittleEndian
)

// Map holds one sparse interval store of bytes per bus.
type Map struct {
	endian Endian
	buses  [bus.Count]*interval.Store[MemoryType, byte]
}

// New creates an empty memory map using the given target endianness.
func New(endian Endian) *Map {
	m := &Map{endian: endian}
	for i := range m.buses {
		m.buses[i] = interval.New[MemoryType, byte]()
	}
	return m
}

// Endian reports the configured target byte order.
func (m *Map) Endian() Endian {
	return m.endian
}

func (m *Map) store(b bus.Bus) *interval.Store[MemoryType, byte] {
	return m.buses[b]
}

// AddMemory maps a new span of bytes on the given bus, tagged with the
// given default memory type. It fails if the span touches or overlaps an
// already-mapped region (§4.7 "loader overlap policy... a conservative
// implementation rejects the overlap").
func (m *Map) AddMemory(b bus.Bus, start bus.Address, data []byte, defaultType MemoryType) (*interval.Span[MemoryType, byte], error) {
	span, err := m.store(b).Add(uint64(start), uint64(len(data)), defaultType, 0)
	if err != nil {
		return nil, fmt.Errorf("memmap: %w", err)
	}
	copy(span.Cells, data)
	return span, nil
}

// FindSpan returns the span covering addr on the given bus.
func (m *Map) FindSpan(b bus.Bus, addr bus.Address) (*interval.Span[MemoryType, byte], bool) {
	return m.store(b).FindSpan(uint64(addr))
}

// GetByte returns the byte at addr on the given bus, and whether addr is
// mapped at all.
func (m *Map) GetByte(b bus.Bus, addr bus.Address) (byte, bool) {
	return m.store(b).Get(uint64(addr))
}

// SetByte writes a single byte; it is a no-op returning false if addr is
// unmapped.
func (m *Map) SetByte(b bus.Bus, addr bus.Address, v byte) bool {
	return m.store(b).Set(uint64(addr), v)
}

// GetRange reads n contiguous bytes starting at addr into a newly allocated
// slice in natural (ascending-address) order, regardless of target
// endianness — endian interpretation only matters to the typed accessors
// below. It fails if any of the n bytes is unmapped.
func (m *Map) GetRange(b bus.Bus, addr bus.Address, n int) ([]byte, error) {
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		v, ok := m.GetByte(b, addr+bus.Address(i))
		if !ok {
			return nil, fmt.Errorf("memmap: unmapped byte at %s on %s bus", addr+bus.Address(i), b)
		}
		out[i] = v
	}
	return out, nil
}

// SetRange writes data starting at addr in ascending-address order. It
// fails if any target byte is unmapped.
func (m *Map) SetRange(b bus.Bus, addr bus.Address, data []byte) error {
	for i, v := range data {
		if !m.SetByte(b, addr+bus.Address(i), v) {
			return fmt.Errorf("memmap: unmapped byte at %s on %s bus", addr+bus.Address(i), b)
		}
	}
	return nil
}

func (m *Map) order(raw []byte) []byte {
	if m.endian == BigEndian {
		return raw
	}
	// Present as big-endian-ordered bytes to the stdlib binary helpers
	// regardless of the target's actual order, by reversing little-endian
	// input before the shared big-endian decode below.
	out := make([]byte, len(raw))
	for i, v := range raw {
		out[len(raw)-1-i] = v
	}
	return out
}

func be16(b []byte) uint16 { return uint16(b[0])<<8 | uint16(b[1]) }
func be32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}
func be64(b []byte) uint64 {
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return v
}

// GetU16 reads an unsigned 16-bit cell using the target's endianness.
func (m *Map) GetU16(b bus.Bus, addr bus.Address) (uint16, error) {
	raw, err := m.GetRange(b, addr, 2)
	if err != nil {
		return 0, err
	}
	return be16(m.order(raw)), nil
}

// GetS16 reads a signed 16-bit cell.
func (m *Map) GetS16(b bus.Bus, addr bus.Address) (int16, error) {
	v, err := m.GetU16(b, addr)
	return int16(v), err
}

// GetU32 reads an unsigned 32-bit cell.
func (m *Map) GetU32(b bus.Bus, addr bus.Address) (uint32, error) {
	raw, err := m.GetRange(b, addr, 4)
	if err != nil {
		return 0, err
	}
	return be32(m.order(raw)), nil
}

// GetU64 reads an unsigned 64-bit cell.
func (m *Map) GetU64(b bus.Bus, addr bus.Address) (uint64, error) {
	raw, err := m.GetRange(b, addr, 8)
	if err != nil {
		return 0, err
	}
	return be64(m.order(raw)), nil
}

// GetFloat reads a 4-byte IEEE-754 float cell.
func (m *Map) GetFloat(b bus.Bus, addr bus.Address) (float32, error) {
	v, err := m.GetU32(b, addr)
	return math.Float32frombits(v), err
}

// GetDouble reads an 8-byte IEEE-754 double cell.
func (m *Map) GetDouble(b bus.Bus, addr bus.Address) (float64, error) {
	v, err := m.GetU64(b, addr)
	return math.Float64frombits(v), err
}

// SetU16 writes an unsigned 16-bit cell using the target's endianness.
func (m *Map) SetU16(b bus.Bus, addr bus.Address, v uint16) error {
	raw := []byte{byte(v >> 8), byte(v)}
	return m.SetRange(b, addr, m.order(raw))
}

// SetU32 writes an unsigned 32-bit cell.
func (m *Map) SetU32(b bus.Bus, addr bus.Address, v uint32) error {
	raw := []byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
	return m.SetRange(b, addr, m.order(raw))
}

// SetFloat writes a 4-byte IEEE-754 float cell.
func (m *Map) SetFloat(b bus.Bus, addr bus.Address, v float32) error {
	return m.SetU32(b, addr, math.Float32bits(v))
}

// LowestAddr returns the start of the lowest-addressed span on the bus, or
// bus.NoAddress if nothing is mapped.
func (m *Map) LowestAddr(b bus.Bus) bus.Address {
	spans := m.store(b).Spans()
	if len(spans) == 0 {
		return bus.NoAddress
	}
	return bus.Address(spans[0].Start)
}

// HighestAddr returns the address one before the end of the highest span on
// the bus, or bus.NoAddress if nothing is mapped.
func (m *Map) HighestAddr(b bus.Bus) bus.Address {
	spans := m.store(b).Spans()
	if len(spans) == 0 {
		return bus.NoAddress
	}
	last := spans[len(spans)-1]
	return bus.Address(last.End() - 1)
}

// MemType returns the memory type tag of the span covering addr.
func (m *Map) MemType(b bus.Bus, addr bus.Address) (MemoryType, bool) {
	span, ok := m.FindSpan(b, addr)
	if !ok {
		return Untyped, false
	}
	return span.Tag, true
}

// SetMemType retags the whole span covering addr. Per-cell retyping within
// a span is not supported at this layer; the info directives retype single
// cells through the attribute overlay instead.
func (m *Map) SetMemType(b bus.Bus, addr bus.Address, t MemoryType) bool {
	span, ok := m.FindSpan(b, addr)
	if !ok {
		return false
	}
	span.Tag = t
	return true
}

// Spans exposes the ordered list of mapped spans for a bus, e.g. for a
// loader's span-added report or the engine's iteration seed.
func (m *Map) Spans(b bus.Bus) []*interval.Span[MemoryType, byte] {
	return m.store(b).Spans()
}

// GetNextAddr returns the smallest address a' > a that is mapped on the
// given bus AND for which isUsed reports true, or bus.NoAddress. The
// "used" predicate is supplied by the attribute overlay layer so this
// package stays independent of it (spec §4.2: "The 'used' check consults
// the Attribute Overlay").
func (m *Map) GetNextAddr(b bus.Bus, a bus.Address, isUsed func(bus.Address) bool) bus.Address {
	spans := m.store(b).Spans()
	start := uint64(a) + 1
	if a == bus.NoAddress {
		start = 0
	}
	for _, span := range spans {
		spanEnd := span.End()
		if spanEnd <= start {
			continue
		}
		from := span.Start
		if start > from {
			from = start
		}
		for addr := from; addr < spanEnd; addr++ {
			if isUsed == nil || isUsed(bus.Address(addr)) {
				return bus.Address(addr)
			}
		}
	}
	return bus.NoAddress
}
