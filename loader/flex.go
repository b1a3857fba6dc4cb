package loader

import (
	"fmt"

	"github.com/retrodis/dasmfw/bus"
	"github.com/retrodis/dasmfw/memmap"
)

type flexLoader struct{}

func (flexLoader) Format() Format { return Flex }

// Detect looks for a leading data-frame marker (0x02) or transfer-address
// marker (0x16); FLEX binaries have no textual header to key off of, so
// this is necessarily weaker than the Intel HEX/S-record checks and only
// runs after both of those fail (spec §6 "detection by first-byte
// inspection").
func (flexLoader) Detect(data []byte) bool {
	return len(data) > 0 && (data[0] == 0x02 || data[0] == 0x16)
}

// Frame markers (spec §4.7).
const (
	flexDataFrame     = 0x02
	flexTransferFrame = 0x16
)

func (flexLoader) Load(mem *memmap.Map, data []byte, opts Options) (Result, error) {
	b := newSpanBuilder(mem, opts.Bus, opts.DefaultType)
	var entry bus.Address
	hasEntry := false

	i := 0
	for i < len(data) {
		switch data[i] {
		case flexDataFrame:
			if i+4 > len(data) {
				return Result{}, fmt.Errorf("flex: truncated data frame at offset %d", i)
			}
			addr := bus.Address(data[i+1])<<8 | bus.Address(data[i+2])
			length := int(data[i+3])
			i += 4
			if i+length > len(data) {
				return Result{}, fmt.Errorf("flex: data frame at offset %d runs past end of file", i-4)
			}
			for k := 0; k < length; k++ {
				a := addr + bus.Address(k)
				if opts.inRange(a) {
					b.put(a, data[i+k])
				}
			}
			i += length
		case flexTransferFrame:
			if i+3 > len(data) {
				return Result{}, fmt.Errorf("flex: truncated transfer-address frame at offset %d", i)
			}
			entry = bus.Address(data[i+1])<<8 | bus.Address(data[i+2])
			hasEntry = true
			i += 3
		default:
			// Anything else is skipped (spec §4.7).
			i++
		}
	}

	added, err := b.finish()
	if err != nil {
		return Result{}, err
	}
	return Result{Bus: opts.Bus, SpansAdded: added, Format: Flex, EntryPoint: entry, HasEntry: hasEntry}, nil
}
