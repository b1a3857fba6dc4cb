package m6800

import (
	"github.com/retrodis/dasmfw/backend"
	"github.com/retrodis/dasmfw/bus"
	"github.com/retrodis/dasmfw/memmap"
)

// Parse decodes the instruction at addr and, for any memory-referencing
// operand, registers its resolved target as a used label (spec §4.10:
// "applies relative and phase transforms on the target first").
func (b *Backend) Parse(ctx *backend.Context, addr bus.Address, busSel bus.Bus) (int, error) {
	d, err := b.decodeAt(ctx, addr, busSel)
	if err != nil {
		return 0, err
	}
	if d.Entry.Mode.memRef() {
		if raw, ok := d.rawTargetAddress(); ok {
			resolved := ctx.Xform.Resolve(raw, addr, busSel)
			isCode := d.isCodeTarget()
			memType := memmap.DataMem
			if isCode {
				memType = memmap.CodeMem
			}
			ctx.Labels.CreateAutoLabel(busSel, resolved, memType, isCode)
		}
	}
	return d.Size, nil
}
