package loader

import (
	"github.com/retrodis/dasmfw/bus"
	"github.com/retrodis/dasmfw/memmap"
)

// rawLoader is the fallback format: the whole file loaded at opts.Offset,
// optionally distributed across interleaved images (spec §4.7).
type rawLoader struct{}

func (rawLoader) Format() Format        { return Raw }
func (rawLoader) Detect(data []byte) bool { return true }

// Load maps data at opts.Offset. With opts.Interleave > 1, byte i only
// belongs to this call's lane — i%interleave selecting which of several
// interleaved EPROM images a byte goes to (spec §4.7) — so the caller is
// expected to issue one Load per lane, each with its own opts.Bus, to fill
// every image; bytes belonging to other lanes are skipped here.
func (rawLoader) Load(mem *memmap.Map, data []byte, opts Options) (Result, error) {
	interleave := opts.Interleave
	if interleave < 1 {
		interleave = 1
	}
	lane := int(opts.Bus) % interleave

	b := newSpanBuilder(mem, opts.Bus, opts.DefaultType)
	for i, v := range data {
		if interleave > 1 && i%interleave != lane {
			continue
		}
		pos := i
		if interleave > 1 {
			pos = i / interleave
		}
		addr := opts.Offset + bus.Address(pos)
		if opts.inRange(addr) {
			b.put(addr, v)
		}
	}
	added, err := b.finish()
	if err != nil {
		return Result{}, err
	}
	return Result{Bus: opts.Bus, SpansAdded: added, Format: Raw}, nil
}
