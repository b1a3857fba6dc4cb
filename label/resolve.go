package label

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/retrodis/dasmfw/bus"
)

// exprRe matches "base+N" / "base-N" label text, e.g. "table+4" or
// "vector-0x10". The base is any non-empty text; ResolveLabels rewrites the
// label only when a label with exactly that text exists.
var exprRe = regexp.MustCompile(`^(.+)([+-])(0[xX][0-9a-fA-F]+|\d+)$`)

// parseOffset parses the numeric suffix captured by exprRe, honoring an
// optional 0x prefix.
func parseOffset(s string) (int64, bool) {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err := strconv.ParseInt(s[2:], 16, 64)
		return v, err == nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	return v, err == nil
}

// ResolveLabels rewrites every used, non-auto label whose text matches
// "base+N"/"base-N" into (baseAddress ± N, baseText), where baseAddress is
// the address of an existing label literally named "base". Auto-named
// labels already carry their final, concrete target address (spec §4.5
// creates them directly at the decoded target) and are left untouched so
// the readable "prevlabel+N" auto-name text they were given survives
// rendering — see DESIGN.md for why this deviates from a literal reading
// of "rewrites them" applying to every expression-shaped label.
//
// The registry is re-scanned after each rewrite, since removing and
// re-adding a label can shift any index a caller might have cached; this
// function instead always restarts from the current label slice, and
// terminates when a full pass makes no further change (a fixed point, per
// the ResolveLabels-is-idempotent invariant in spec §8).
func (r *Registry) ResolveLabels(b bus.Bus) {
	for {
		changed := false
		pb := r.buses[b]
		for _, l := range append([]*Label(nil), pb.labels...) {
			if !l.Used || l.Source == SourceAuto {
				continue
			}
			m := exprRe.FindStringSubmatch(l.Text)
			if m == nil {
				continue
			}
			baseText, sign, numText := m[1], m[2], m[3]
			base := pb.byText[baseText]
			if base == nil || base == l {
				continue
			}
			offset, ok := parseOffset(numText)
			if !ok {
				continue
			}
			if sign == "-" {
				offset = -offset
			}
			newAddr := bus.Address(int64(base.Address) + offset)
			if l.Text == baseText && l.Address == newAddr {
				continue
			}
			r.RemoveLabel(b, l.Text)
			r.AddLabel(b, newAddr, l.MemType, baseText, true, l.Source)
			changed = true
		}
		if !changed {
			return
		}
	}
}
