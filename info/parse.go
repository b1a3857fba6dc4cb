package info

import (
	"strconv"
	"strings"

	"github.com/retrodis/dasmfw/bus"
)

// splitLines splits raw info-script text into significant lines: trailing
// CR stripped, blank lines and '*'-comment lines dropped (spec §4.8).
func splitLines(text string) []string {
	var out []string
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimRight(raw, "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "*") {
			continue
		}
		out = append(out, line)
	}
	return out
}

// joinContinuations merges any line whose trimmed form starts with '+' onto
// the previous logical line (spec §4.8: "leading + continues a previous
// logical line"). A '+' line with no line before it is dropped.
func joinContinuations(lines []string) []string {
	var out []string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "+") {
			if len(out) > 0 {
				out[len(out)-1] = strings.TrimRight(out[len(out)-1], " \t") + " " + strings.TrimSpace(trimmed[1:])
			}
			continue
		}
		out = append(out, trimmed)
	}
	return out
}

// fieldsWithRest splits line into up to n+1 whitespace-separated fields,
// the last of which is the untouched remainder of the line (preserving
// internal spacing) — used by directives whose trailing argument is
// verbatim text (COMMENT, INSERT, PREPEND, ...).
func fieldsWithRest(line string, n int) []string {
	out := make([]string, 0, n+1)
	rest := line
	for i := 0; i < n; i++ {
		rest = strings.TrimLeft(rest, " \t")
		if rest == "" {
			return out
		}
		idx := strings.IndexAny(rest, " \t")
		if idx < 0 {
			out = append(out, rest)
			return out
		}
		out = append(out, rest[:idx])
		rest = rest[idx+1:]
	}
	out = append(out, strings.TrimLeft(rest, " \t"))
	return out
}

// fields splits line on whitespace with no remainder preserved.
func fields(line string) []string {
	return strings.Fields(line)
}

// parseNumber parses a bare/"0x"-prefixed/"$"-prefixed integer using radix
// as the default base (spec §4.8: "parsed in the current bus's default
// radix... with 0x prefix overriding to 16").
func parseNumber(s string, radix int) (uint64, error) {
	switch {
	case strings.HasPrefix(s, "0x"), strings.HasPrefix(s, "0X"):
		return strconv.ParseUint(s[2:], 16, 64)
	case strings.HasPrefix(s, "$"):
		return strconv.ParseUint(s[1:], 16, 64)
	default:
		return strconv.ParseUint(s, radix, 64)
	}
}

// parseRange parses "addr" or "addr-addr" into a half-open [from,to) range;
// a bare address yields a single-cell range [addr,addr+1).
func parseRange(s string, radix int) (from, to bus.Address, err error) {
	parts := strings.SplitN(s, "-", 2)
	a, err := parseNumber(parts[0], radix)
	if err != nil {
		return 0, 0, err
	}
	if len(parts) == 1 {
		return bus.Address(a), bus.Address(a) + 1, nil
	}
	b, err := parseNumber(parts[1], radix)
	if err != nil {
		return 0, 0, err
	}
	return bus.Address(a), bus.Address(b) + 1, nil
}
