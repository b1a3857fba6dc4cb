// Package listing renders an engine.Line event stream as column-aligned
// text (spec §6): label in columns 0-7, mnemonic in 8-15, operands in
// 16-40, comment from column 41. spec.md calls the whole formatter "trivial
// and replaceable" (§1 Non-goals: "the final line pretty-printer... is
// trivial and replaceable"), so this package carries no invariants of its
// own beyond matching those column numbers; it exists only so the engine
// has a concrete consumer to demonstrate end-to-end behavior against.
package listing

import (
	"fmt"
	"io"
	"strings"

	"github.com/retrodis/dasmfw/bus"
	"github.com/retrodis/dasmfw/engine"
)

// BytesFunc fetches up to size raw bytes at addr on b, for the optional
// hex/ASCII gutter. A Formatter with a nil BytesFunc just omits the gutter
// even when Options asks for it.
type BytesFunc func(b bus.Bus, addr bus.Address, size int) []byte

// Options selects the listing's optional leading columns; the label/
// mnemonic/operand/comment columns themselves are always on (spec §6).
type Options struct {
	ShowAddress bool
	ShowHex     bool
	ShowASCII   bool

	// AddrDigits is the address column's zero-padded hex width; 4 fits the
	// 6800 backend's 16-bit bus and is the default when unset.
	AddrDigits int

	// GutterBytes caps how many raw bytes the hex/ASCII gutter shows per
	// line; 0 means "show exactly the cell's own size".
	GutterBytes int

	// CommentChar prefixes a comment-only line (spec §6 "cchar" backend
	// option); defaults to ";" when empty.
	CommentChar string

	// LabelDelim suffixes a non-empty label column (spec §6 "ldchar"
	// backend option); defaults to ":" when empty.
	LabelDelim string
}

const (
	labelCol   = 8
	mnemCol    = 8
	operandCol = 25
)

// Formatter writes one engine.Line at a time to W as column-aligned text.
type Formatter struct {
	W     io.Writer
	Opts  Options
	Bytes BytesFunc
}

// Emit is the func(engine.Line) callback engine.Render expects.
func (f *Formatter) Emit(l engine.Line) {
	switch {
	case l.Blank:
		fmt.Fprintln(f.W)
	case l.Verbatim != "":
		fmt.Fprintln(f.W, l.Verbatim)
	case !l.HasAddress && l.Label == "" && l.Mnemonic == "":
		fmt.Fprintln(f.W, f.commentChar()+" "+l.Comment)
	default:
		fmt.Fprintln(f.W, f.gutter(l)+f.columns(l))
	}
}

func (f *Formatter) commentChar() string {
	if f.Opts.CommentChar != "" {
		return f.Opts.CommentChar
	}
	return ";"
}

func (f *Formatter) labelDelim() string {
	if f.Opts.LabelDelim != "" {
		return f.Opts.LabelDelim
	}
	return ":"
}

// gutter renders the optional address and hex/ASCII columns ahead of the
// fixed label/mnemonic/operand/comment layout.
func (f *Formatter) gutter(l engine.Line) string {
	if !f.Opts.ShowAddress && !f.Opts.ShowHex && !f.Opts.ShowASCII {
		return ""
	}
	var b strings.Builder
	if f.Opts.ShowAddress {
		digits := f.Opts.AddrDigits
		if digits < 1 {
			digits = 4
		}
		if l.HasAddress {
			fmt.Fprintf(&b, "%0*X  ", digits, uint64(l.Address))
		} else {
			fmt.Fprintf(&b, "%*s  ", digits, "")
		}
	}
	if (f.Opts.ShowHex || f.Opts.ShowASCII) && f.Bytes != nil && l.HasAddress && l.Size > 0 {
		n := l.Size
		if f.Opts.GutterBytes > 0 && f.Opts.GutterBytes < n {
			n = f.Opts.GutterBytes
		}
		raw := f.Bytes(l.Bus, l.Address, n)
		if f.Opts.ShowHex {
			for _, v := range raw {
				fmt.Fprintf(&b, "%02X ", v)
			}
			for i := len(raw); i < n; i++ {
				b.WriteString("   ")
			}
			b.WriteByte(' ')
		}
		if f.Opts.ShowASCII {
			for _, v := range raw {
				if v >= 0x20 && v < 0x7F {
					b.WriteByte(v)
				} else {
					b.WriteByte('.')
				}
			}
			b.WriteString("  ")
		}
	}
	return b.String()
}

// columns lays out label/mnemonic/operands/comment at their fixed column
// offsets, trimming trailing padding when nothing follows.
func (f *Formatter) columns(l engine.Line) string {
	var b strings.Builder
	label := l.Label
	if label != "" {
		label += f.labelDelim()
	}
	pad(&b, label, labelCol)
	pad(&b, l.Mnemonic, mnemCol)
	if l.Comment == "" {
		b.WriteString(l.Operands)
		return strings.TrimRight(b.String(), " ")
	}
	pad(&b, l.Operands, operandCol)
	b.WriteString(f.commentChar())
	b.WriteByte(' ')
	b.WriteString(l.Comment)
	return b.String()
}

func pad(b *strings.Builder, s string, width int) {
	b.WriteString(s)
	for i := len(s); i < width; i++ {
		b.WriteByte(' ')
	}
}
