package m6800

import (
	"fmt"
	"strings"

	"github.com/retrodis/dasmfw/attrs"
	"github.com/retrodis/dasmfw/backend"
	"github.com/retrodis/dasmfw/bus"
	"github.com/retrodis/dasmfw/label"
)

// DisassembleData renders the longest run [addr,end) the engine has already
// grouped by identical disassembly flags (spec §3/§4.9). The 6800 backend's
// cell size is always 1 or 2 bytes; RMB/TXT/FCB/FDB selection follows the
// flags word the attribute overlay computed.
func (b *Backend) DisassembleData(ctx *backend.Context, addr, end bus.Address, flags uint32, maxParmLen int, busSel bus.Bus) (int, string, string, error) {
	cellSize := int(flags&attrs.FlagSizeMask) + 1
	if cellSize < 1 {
		cellSize = 1
	}

	if flags&attrs.FlagRMB != 0 {
		count := (int(end-addr) + cellSize - 1) / cellSize
		return int(end - addr), "RMB", fmt.Sprintf("%d", count), nil
	}

	if flags&attrs.FlagTXT != 0 {
		return b.disassembleText(ctx, addr, end, maxParmLen, busSel)
	}

	mnemonic := "FCB"
	if cellSize == 2 {
		mnemonic = "FDB"
	}

	maxItems := maxParmLen
	if maxItems < 1 {
		maxItems = 1
	}
	limit := addr + bus.Address(maxItems*cellSize)
	if limit > end {
		limit = end
	}

	var parts []string
	cur := addr
	for cur < limit {
		switch cellSize {
		case 2:
			v, err := ctx.Mem.GetU16(busSel, cur)
			if err != nil {
				return 0, "", "", err
			}
			parts = append(parts, fmt.Sprintf("$%04X", v))
		default:
			v, ok := ctx.Mem.GetByte(busSel, cur)
			if !ok {
				return 0, "", "", fmt.Errorf("m6800: unmapped data at %s", cur)
			}
			parts = append(parts, fmt.Sprintf("$%02X", v))
		}
		cur += bus.Address(cellSize)
	}
	return int(cur - addr), mnemonic, strings.Join(parts, ","), nil
}

// disassembleText renders a printable-character run as an FCC (or FCB
// fallback when useFCC is off), stopping at the first non-printable byte,
// end, or the maxParmLen budget, whichever comes first.
func (b *Backend) disassembleText(ctx *backend.Context, addr, end bus.Address, maxParmLen int, busSel bus.Bus) (int, string, string, error) {
	if maxParmLen < 1 {
		maxParmLen = 1
	}
	limit := addr + bus.Address(maxParmLen)
	if limit > end {
		limit = end
	}
	var text strings.Builder
	cur := addr
	for cur < limit {
		v, ok := ctx.Mem.GetByte(busSel, cur)
		if !ok {
			break
		}
		text.WriteByte(v)
		cur++
	}
	if !b.flag("useFCC") {
		var parts []string
		for _, c := range []byte(text.String()) {
			parts = append(parts, fmt.Sprintf("$%02X", c))
		}
		return int(cur - addr), "FCB", strings.Join(parts, ","), nil
	}
	return int(cur - addr), "FCC", fmt.Sprintf("%q", text.String()), nil
}

// DisassembleLabel renders the header line for a used label whose own cell
// carries no data of its own (a bare symbol marking an address).
func (b *Backend) DisassembleLabel(ctx *backend.Context, l *label.Label) (string, string) {
	return l.Text, ""
}

// DisassembleDefLabel renders a script-defined symbol as an EQU directive.
func (b *Backend) DisassembleDefLabel(ctx *backend.Context, d *label.DefLabel) (string, string) {
	return "EQU", d.Definition
}

// DisassembleChanges renders an ORG pseudo-op whenever the address about to
// be emitted does not immediately follow the previous line.
func (b *Backend) DisassembleChanges(ctx *backend.Context, addr, prevAddr bus.Address, prevSize int, afterLine bool) string {
	if afterLine {
		return ""
	}
	if prevAddr.Valid() && prevAddr+bus.Address(prevSize) == addr {
		return ""
	}
	return fmt.Sprintf("\tORG\t$%04X", uint64(addr))
}
