package label

import (
	"fmt"

	"github.com/retrodis/dasmfw/bus"
	"github.com/retrodis/dasmfw/memmap"
)

// hexAddr formats an address the way auto-labels render it: uppercase hex,
// at least four digits, no "0x"/"$" prefix.
func hexAddr(a bus.Address) string {
	return fmt.Sprintf("%04X", uint64(a))
}

// dominatingLabel finds the nearest non-auto label at or below addr on the
// bus, searched by a backward scan over address order, so an auto-created
// label can be rendered relative to a human-chosen name instead of a bare
// hex address.
func (r *Registry) dominatingLabel(b bus.Bus, addr bus.Address) *Label {
	var best *Label
	for _, l := range r.buses[b].labels {
		if l.Source == SourceAuto || l.Address > addr {
			continue
		}
		if best == nil || l.Address > best.Address || (l.Address == best.Address && l.Seq > best.Seq) {
			best = l
		}
	}
	return best
}

// CreateAutoLabel creates (or reuses) a used, engine-synthesized label at
// addr. Code targets are named "Z<hex>", data targets "M<hex>", unless a
// previously named (non-auto) label dominates addr, in which case the new
// label reads "<dominating-text>+N" (spec §4.5).
func (r *Registry) CreateAutoLabel(b bus.Bus, addr bus.Address, memType memmap.MemoryType, isCode bool) *Label {
	if existing := r.FindLabel(b, addr, memType, false); existing != nil {
		existing.Used = true
		return existing
	}

	var text string
	if dom := r.dominatingLabel(b, addr); dom != nil && dom.Address != addr {
		offset := int64(addr) - int64(dom.Address)
		if offset >= 0 {
			text = fmt.Sprintf("%s+%d", dom.Text, offset)
		} else {
			text = fmt.Sprintf("%s-%d", dom.Text, -offset)
		}
	} else if dom != nil && dom.Address == addr {
		dom.Used = true
		return dom
	} else if isCode {
		text = "Z" + hexAddr(addr)
	} else {
		text = "M" + hexAddr(addr)
	}

	return r.AddLabel(b, addr, memType, text, true, SourceAuto)
}
