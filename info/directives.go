package info

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/golang/glog"

	"github.com/retrodis/dasmfw/attrs"
	"github.com/retrodis/dasmfw/bus"
	"github.com/retrodis/dasmfw/comment"
	"github.com/retrodis/dasmfw/label"
	"github.com/retrodis/dasmfw/memmap"
)

// errEndFile signals the END directive: stop processing the current file
// without treating it as an error.
var errEndFile = errors.New("info: END")

type remapWindow struct {
	from, to bus.Address
	offset   bus.Address
}

// peelBus strips an optional leading "BUS code|data" pair from fields,
// returning the effective bus (ip.bus if no override) and the remaining
// fields.
func (ip *Interpreter) peelBus(fields []string) (bus.Bus, []string) {
	if len(fields) >= 2 && strings.EqualFold(fields[0], "BUS") {
		if b, ok := bus.Parse(strings.ToLower(fields[1])); ok {
			return b, fields[2:]
		}
	}
	return ip.bus, fields
}

func (ip *Interpreter) remapAddr(addr bus.Address) bus.Address {
	for _, w := range ip.remaps {
		if addr >= w.from && addr < w.to {
			addr += w.offset
		}
	}
	return addr
}

func (ip *Interpreter) parseRemappedRange(s string) (bus.Address, bus.Address, error) {
	from, to, err := parseRange(s, ip.Radix)
	if err != nil {
		return 0, 0, err
	}
	return ip.remapAddr(from), ip.remapAddr(to), nil
}

// execLine dispatches one already-continuation-joined, comment-stripped
// info-script line. baseDir resolves relative INCLUDE/FILE paths.
func (ip *Interpreter) execLine(line string, pass passKind, baseDir string) error {
	fs := fields(line)
	if len(fs) == 0 {
		return nil
	}
	keyword := strings.ToUpper(fs[0])
	args := fs[1:]

	if ip.Backend.ProcessInfo(ip.Ctx, keyword, args) {
		return nil
	}

	switch keyword {
	case "INCLUDE":
		if len(args) < 1 {
			return nil
		}
		path := args[0]
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		return ip.runPass(path, pass)
	case "OPTION":
		if pass != passBootstrap && pass != passFull {
			return nil
		}
		return ip.doOption(args)
	case "FILE":
		if pass != passBootstrap {
			return nil
		}
		return ip.doFile(args, baseDir)
	case "END":
		return errEndFile
	}

	if pass == passBootstrap {
		return nil // everything else waits for pass B
	}

	switch keyword {
	case "BUS":
		if len(args) >= 1 {
			if b, ok := bus.Parse(strings.ToLower(args[0])); ok {
				ip.bus = b
			}
		}
	case "CODE", "DATA", "CONST", "RMB", "UNUSED":
		return ip.doMemType(keyword, args)
	case "CVECTOR", "DVECTOR":
		return ip.doVector(keyword, args)
	case "BYTE", "WORD", "DWORD", "FLOAT", "DOUBLE", "TENBYTES":
		return ip.doCellSize(keyword, args)
	case "BIN", "OCT", "DEC", "HEX", "CHAR":
		return ip.doDisplay(keyword, args)
	case "BREAK", "UNBREAK":
		return ip.doBreak(keyword, args)
	case "RELATIVE", "UNRELATIVE":
		return ip.doRelative(keyword, args)
	case "PHASE", "UNPHASE":
		return ip.doPhase(keyword, args)
	case "LABEL", "USEDLABEL", "UNLABEL":
		return ip.doLabel(keyword, args)
	case "COMMENT", "PREPCOMM", "LCOMMENT", "PREPLCOMM", "INSERT", "PREPEND",
		"UNCOMMENT", "UNLCOMMENT":
		return ip.doComment(keyword, line)
	case "PATCH", "PATCHW", "PATCHDW", "PATCHF":
		return ip.doPatch(keyword, args)
	case "REMAP":
		return ip.doRemap(args)
	default:
		glog.Warningf("info: unknown directive %q ignored", keyword)
	}
	return nil
}

func (ip *Interpreter) doOption(args []string) error {
	if len(args) < 1 {
		return nil
	}
	value := ""
	if len(args) >= 2 {
		value = args[1]
	}
	if err := ip.Backend.SetOption(args[0], value); err != nil {
		glog.Warningf("info: OPTION %s: %v", args[0], err)
	}
	return nil
}

func (ip *Interpreter) doFile(args []string, baseDir string) error {
	b, rest := ip.peelBus(args)
	if len(rest) < 1 {
		return nil
	}
	path := rest[0]
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}
	var offset bus.Address
	if len(rest) >= 2 {
		v, err := parseNumber(rest[1], ip.Radix)
		if err == nil {
			offset = bus.Address(v)
		}
	}
	ip.queue = append(ip.queue, queuedFile{path: path, offset: offset, bus: b})
	return nil
}

func memTypeFor(keyword string) (memmap.MemoryType, bool) {
	switch keyword {
	case "CODE":
		return memmap.CodeMem, true
	case "DATA":
		return memmap.DataMem, true
	case "CONST":
		return memmap.Const, true
	case "RMB":
		return memmap.Bss, true
	case "UNUSED":
		return memmap.Untyped, true
	default:
		return memmap.Untyped, false
	}
}

func (ip *Interpreter) doMemType(keyword string, args []string) error {
	b, rest := ip.peelBus(args)
	if len(rest) < 1 {
		return nil
	}
	from, to, err := ip.parseRemappedRange(rest[0])
	if err != nil {
		return fmt.Errorf("%s: %w", keyword, err)
	}
	t, _ := memTypeFor(keyword)
	for addr := from; addr < to; addr++ {
		ip.Ctx.Attrs.SetMemType(b, addr, t)
		if keyword == "UNUSED" {
			ip.Ctx.Attrs.SetUsed(b, addr, false)
			ip.Ctx.Attrs.SetCellSize(b, addr, 1)
		}
	}
	return nil
}

func (ip *Interpreter) doVector(keyword string, args []string) error {
	b, rest := ip.peelBus(args)
	if len(rest) < 1 {
		return nil
	}
	from, to, err := ip.parseRemappedRange(rest[0])
	if err != nil {
		return fmt.Errorf("%s: %w", keyword, err)
	}
	isCode := keyword == "CVECTOR"
	ptrSize := ip.Backend.DataPtrSize()
	if isCode {
		ptrSize = ip.Backend.CodePtrSize()
	}
	targetType := memmap.DataMem
	if isCode {
		targetType = memmap.CodeMem
	}
	for addr := from; addr < to; addr += bus.Address(ptrSize) {
		ip.Ctx.Attrs.SetCellSize(b, addr, ptrSize)
		var raw uint64
		switch ptrSize {
		case 2:
			v, err := ip.Ctx.Mem.GetU16(b, addr)
			if err != nil {
				continue
			}
			raw = uint64(v)
		case 4:
			v, err := ip.Ctx.Mem.GetU32(b, addr)
			if err != nil {
				continue
			}
			raw = uint64(v)
		default:
			continue
		}
		target := ip.Ctx.Xform.Resolve(bus.Address(raw), addr, b)
		prefix := "M"
		if isCode {
			prefix = "Z"
		}
		name := fmt.Sprintf("%s%04Xvia%04X", prefix, uint64(target), uint64(addr))
		ip.Ctx.Labels.AddLabel(b, target, targetType, name, true, label.SourceInfo)
	}
	return nil
}

func cellSizeFor(keyword string) (size int, isFloat bool) {
	switch keyword {
	case "BYTE":
		return 1, false
	case "WORD":
		return 2, false
	case "DWORD":
		return 4, false
	case "FLOAT":
		return 4, true
	case "DOUBLE":
		return 8, true
	case "TENBYTES":
		return 10, true
	default:
		return 1, false
	}
}

func (ip *Interpreter) doCellSize(keyword string, args []string) error {
	b, rest := ip.peelBus(args)
	if len(rest) < 1 {
		return nil
	}
	from, to, err := ip.parseRemappedRange(rest[0])
	if err != nil {
		return fmt.Errorf("%s: %w", keyword, err)
	}
	size, isFloat := cellSizeFor(keyword)
	for addr := from; addr < to; addr += bus.Address(size) {
		ip.Ctx.Attrs.SetCellSize(b, addr, size)
		if isFloat {
			ip.Ctx.Attrs.SetCellType(b, addr, attrs.Float)
		}
	}
	return nil
}

func displayFor(keyword string) (attrs.Display, bool) {
	switch keyword {
	case "BIN":
		return attrs.Binary, true
	case "OCT":
		return attrs.Octal, true
	case "DEC":
		return attrs.Decimal, true
	case "HEX":
		return attrs.Hex, true
	case "CHAR":
		return attrs.CharDisplay, true
	default:
		return attrs.DisplayDefault, false
	}
}

func (ip *Interpreter) doDisplay(keyword string, args []string) error {
	b, rest := ip.peelBus(args)
	if len(rest) < 1 {
		return nil
	}
	from, to, err := ip.parseRemappedRange(rest[0])
	if err != nil {
		return fmt.Errorf("%s: %w", keyword, err)
	}
	d, _ := displayFor(keyword)
	for addr := from; addr < to; addr++ {
		ip.Ctx.Attrs.SetDisplay(b, addr, d)
	}
	return nil
}

func (ip *Interpreter) doBreak(keyword string, args []string) error {
	b, rest := ip.peelBus(args)
	if len(rest) < 1 {
		return nil
	}
	from, to, err := ip.parseRemappedRange(rest[0])
	if err != nil {
		return fmt.Errorf("%s: %w", keyword, err)
	}
	v := keyword == "BREAK"
	for addr := from; addr < to; addr++ {
		ip.Ctx.Attrs.SetBreakBefore(b, addr, v)
	}
	return nil
}

func (ip *Interpreter) doRelative(keyword string, args []string) error {
	b, rest := ip.peelBus(args)
	if len(rest) < 1 {
		return nil
	}
	from, to, err := ip.parseRemappedRange(rest[0])
	if err != nil {
		return fmt.Errorf("%s: %w", keyword, err)
	}
	if keyword == "UNRELATIVE" {
		ip.Ctx.Xform.RemoveRelative(b, from)
		return nil
	}
	if len(rest) < 2 {
		return fmt.Errorf("RELATIVE: missing delta")
	}
	v, err := parseNumber(rest[1], ip.Radix)
	if err != nil {
		return fmt.Errorf("RELATIVE: %w", err)
	}
	return ip.Ctx.Xform.AddRelative(b, from, uint64(to-from), bus.Address(v))
}

func (ip *Interpreter) doPhase(keyword string, args []string) error {
	b, rest := ip.peelBus(args)
	if len(rest) < 1 {
		return nil
	}
	from, to, err := ip.parseRemappedRange(rest[0])
	if err != nil {
		return fmt.Errorf("%s: %w", keyword, err)
	}
	if keyword == "UNPHASE" {
		ip.Ctx.Xform.RemovePhase(b, from)
		return nil
	}
	if len(rest) < 2 {
		return fmt.Errorf("PHASE: missing phase value")
	}
	spec := rest[1]
	relative := strings.HasPrefix(spec, "+") || strings.HasPrefix(spec, "-")
	sign := bus.Address(1)
	numStr := spec
	if relative {
		if strings.HasPrefix(spec, "-") {
			sign = bus.Address(^uint64(0)) // -1 as two's complement Address
		}
		numStr = spec[1:]
	}
	v, err := parseNumber(numStr, ip.Radix)
	if err != nil {
		return fmt.Errorf("PHASE: %w", err)
	}
	phaseStart := bus.Address(v)
	if relative {
		base, ok := ip.Ctx.Xform.PhaseAt(b, from)
		if !ok {
			base = from
		}
		phaseStart = base + sign*bus.Address(v)
	}
	return ip.Ctx.Xform.AddPhase(b, from, uint64(to-from), phaseStart)
}

func (ip *Interpreter) doLabel(keyword string, args []string) error {
	b, rest := ip.peelBus(args)
	if len(rest) < 1 {
		return nil
	}
	from, to, err := ip.parseRemappedRange(rest[0])
	if err != nil {
		return fmt.Errorf("%s: %w", keyword, err)
	}
	if keyword == "UNLABEL" {
		ip.Ctx.Labels.RemoveRange(b, from, to)
		return nil
	}
	if len(rest) < 2 {
		return fmt.Errorf("%s: missing name", keyword)
	}
	base := rest[1]
	used := keyword == "USEDLABEL"
	for addr := from; addr < to; addr++ {
		name := base
		if n := uint64(addr - from); n > 0 {
			name = fmt.Sprintf("%s+%d", base, n)
		}
		memType := ip.Backend.DefaultMemoryType(b)
		if c, ok := ip.Ctx.Attrs.Get(b, addr); ok {
			memType = c.MemType
		}
		ip.Ctx.Labels.AddLabel(b, addr, memType, name, used, label.SourceInfo)
	}
	return nil
}

// doComment handles every comment-store directive. It walks the line's
// leading tokens by hand (rather than strings.Fields on the whole line)
// so the trailing text argument keeps its original internal spacing (spec
// §4.8: "INSERT/PREPEND lines are verbatim").
func (ip *Interpreter) doComment(keyword, line string) error {
	toks := fields(line) // [0] is the keyword itself
	consumed := 1
	b := ip.bus
	if len(toks) >= 3 && strings.EqualFold(toks[1], "BUS") {
		if parsed, ok := bus.Parse(strings.ToLower(toks[2])); ok {
			b = parsed
			consumed += 2
		}
	}
	afterKind := false
	if len(toks) > consumed && strings.EqualFold(toks[consumed], "AFTER") {
		afterKind = true
		consumed++
	}
	if len(toks) <= consumed {
		return nil
	}
	rangeTok := toks[consumed]
	consumed++

	parts := fieldsWithRest(line, consumed)
	text := ""
	if len(parts) > consumed {
		text = parts[consumed]
	}

	from, to, err := ip.parseRemappedRange(rangeTok)
	if err != nil {
		return fmt.Errorf("%s: %w", keyword, err)
	}

	kind := comment.Before
	if afterKind {
		kind = comment.After
	}
	switch keyword {
	case "LCOMMENT", "PREPLCOMM", "UNLCOMMENT":
		kind = comment.Line
	}

	switch keyword {
	case "UNCOMMENT", "UNLCOMMENT":
		ip.Ctx.Comments.RemoveRange(b, kind, from, to)
		return nil
	}

	prepend := keyword == "PREPCOMM" || keyword == "PREPLCOMM" || keyword == "PREPEND"
	verbatim := keyword == "INSERT" || keyword == "PREPEND"
	if verbatim {
		ip.Ctx.Comments.AddVerbatim(b, from, kind, text, prepend)
	} else {
		ip.Ctx.Comments.Add(b, from, kind, text, prepend)
	}
	return nil
}

func (ip *Interpreter) doPatch(keyword string, args []string) error {
	b, rest := ip.peelBus(args)
	if len(rest) < 2 {
		return fmt.Errorf("%s: need address and value", keyword)
	}
	addrV, err := parseNumber(rest[0], ip.Radix)
	if err != nil {
		return fmt.Errorf("%s: %w", keyword, err)
	}
	addr := ip.remapAddr(bus.Address(addrV))

	switch keyword {
	case "PATCH":
		v, err := parseNumber(rest[1], ip.Radix)
		if err != nil {
			return fmt.Errorf("PATCH: %w", err)
		}
		ip.ensureMapped(b, addr, 1)
		ip.Ctx.Mem.SetByte(b, addr, byte(v))
	case "PATCHW":
		v, err := parseNumber(rest[1], ip.Radix)
		if err != nil {
			return fmt.Errorf("PATCHW: %w", err)
		}
		ip.ensureMapped(b, addr, 2)
		return ip.Ctx.Mem.SetU16(b, addr, uint16(v))
	case "PATCHDW":
		v, err := parseNumber(rest[1], ip.Radix)
		if err != nil {
			return fmt.Errorf("PATCHDW: %w", err)
		}
		ip.ensureMapped(b, addr, 4)
		return ip.Ctx.Mem.SetU32(b, addr, uint32(v))
	case "PATCHF":
		var f float64
		if _, err := fmt.Sscanf(rest[1], "%g", &f); err != nil {
			return fmt.Errorf("PATCHF: %w", err)
		}
		ip.ensureMapped(b, addr, 4)
		return ip.Ctx.Mem.SetFloat(b, addr, float32(f))
	}
	return nil
}

// ensureMapped maps zero fill over whichever of the n bytes at addr are
// currently unmapped, one span per contiguous unmapped run, so PATCH* can
// write into previously empty space (spec §4.8: "auto-AddMemory if the
// target is unmapped").
func (ip *Interpreter) ensureMapped(b bus.Bus, addr bus.Address, n int) {
	for i := 0; i < n; {
		a := addr + bus.Address(i)
		if _, ok := ip.Ctx.Mem.GetByte(b, a); ok {
			i++
			continue
		}
		run := 1
		for i+run < n {
			if _, ok := ip.Ctx.Mem.GetByte(b, a+bus.Address(run)); ok {
				break
			}
			run++
		}
		i += run
		if _, err := ip.Ctx.Mem.AddMemory(b, a, make([]byte, run), ip.Backend.DefaultMemoryType(b)); err != nil {
			glog.Warningf("info: PATCH at %s: %v", a, err)
			continue
		}
		ip.Ctx.Attrs.AddSpan(b, a, run, ip.Backend.DefaultMemoryType(b))
	}
}

func (ip *Interpreter) doRemap(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("REMAP: need range and offset")
	}
	from, to, err := parseRange(args[0], ip.Radix)
	if err != nil {
		return fmt.Errorf("REMAP: %w", err)
	}
	v, err := parseNumber(args[1], ip.Radix)
	if err != nil {
		return fmt.Errorf("REMAP: %w", err)
	}
	ip.remaps = append(ip.remaps, remapWindow{from: from, to: to, offset: bus.Address(v)})
	return nil
}
