package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retrodis/dasmfw/attrs"
	"github.com/retrodis/dasmfw/backend"
	_ "github.com/retrodis/dasmfw/backend/m6800"
	"github.com/retrodis/dasmfw/bus"
	"github.com/retrodis/dasmfw/comment"
	"github.com/retrodis/dasmfw/engine"
	"github.com/retrodis/dasmfw/info"
	"github.com/retrodis/dasmfw/label"
	"github.com/retrodis/dasmfw/memmap"
	"github.com/retrodis/dasmfw/xform"
)

// newFixture builds a fresh 6800 context with nothing loaded yet.
func newFixture(t *testing.T) (*backend.Context, backend.Backend) {
	t.Helper()
	be, ok := backend.Lookup("6800")
	require.True(t, ok, "6800 backend must self-register")
	mem := memmap.New(be.Endianness())
	ctx := &backend.Context{
		Mem:      mem,
		Attrs:    attrs.New(mem),
		Labels:   label.New(),
		Xform:    xform.New(),
		Comments: comment.New(),
	}
	return ctx, be
}

// load maps data at addr on bus.Code, with matching attribute spans, as a
// loader + info pass A/B would.
func load(t *testing.T, ctx *backend.Context, be backend.Backend, addr bus.Address, data []byte) {
	t.Helper()
	_, err := ctx.Mem.AddMemory(bus.Code, addr, data, be.DefaultMemoryType(bus.Code))
	require.NoError(t, err)
	require.NoError(t, ctx.Attrs.AddSpan(bus.Code, addr, len(data), be.DefaultMemoryType(bus.Code)))
}

func render(e *engine.Engine, b bus.Bus) []engine.Line {
	var lines []engine.Line
	e.Render(b, func(l engine.Line) { lines = append(lines, l) })
	return lines
}

func findLine(t *testing.T, lines []engine.Line, addr bus.Address) engine.Line {
	t.Helper()
	for _, l := range lines {
		if l.HasAddress && l.Address == addr {
			return l
		}
	}
	t.Fatalf("no line at %s", addr)
	return engine.Line{}
}

// Scenario 1 (spec §8): load "20 02 01 01 39" at $0100, expect an
// auto-label Z0104 at $0104 and "BRA Z0104" at $0100.
func TestBranchAutoLabel(t *testing.T) {
	ctx, be := newFixture(t)
	load(t, ctx, be, 0x100, []byte{0x20, 0x02, 0x01, 0x01, 0x39})

	e := engine.New(ctx, be)
	e.Parse(bus.Code)
	lines := render(e, bus.Code)

	branch := findLine(t, lines, 0x100)
	assert.Equal(t, "BRA", branch.Mnemonic)
	assert.Equal(t, "Z0104", branch.Operands)

	target := findLine(t, lines, 0x104)
	assert.Equal(t, "Z0104", target.Label)
	assert.Equal(t, "RTS", target.Mnemonic)
}

// Scenario 2 (spec §8): "A6 00" at $0100 renders "LDAA $00,X" by default and
// "LDAA ,X" with showIndexedModeZeroOperand off.
func TestIndexedZeroOperand(t *testing.T) {
	ctx, be := newFixture(t)
	load(t, ctx, be, 0x100, []byte{0xA6, 0x00})

	e := engine.New(ctx, be)
	e.Parse(bus.Code)
	line := findLine(t, render(e, bus.Code), 0x100)
	assert.Equal(t, "LDAA", line.Mnemonic)
	assert.Equal(t, "$00,X", line.Operands)

	require.NoError(t, be.SetOption("showIndexedModeZeroOperand", "off"))
	line = findLine(t, render(e, bus.Code), 0x100)
	assert.Equal(t, ",X", line.Operands)
}

// Scenario 3 (spec §8): a PHASE over [$0200,$0300) mapped to logical $8000
// leaves an out-of-window JSR operand ($8234) outside the phase, so it
// auto-labels its own target rather than staying bare (spec §4.5: "every
// memory-referencing operand's resolved target gets a used label").
func TestPhaseJSR(t *testing.T) {
	ctx, be := newFixture(t)
	load(t, ctx, be, 0x200, []byte{0xBD, 0x82, 0x34})
	require.NoError(t, ctx.Xform.AddPhase(bus.Code, 0x200, 0x100, 0x8000))

	e := engine.New(ctx, be)
	e.Parse(bus.Code)
	line := findLine(t, render(e, bus.Code), 0x200)
	assert.Equal(t, "JSR", line.Mnemonic)
	assert.Equal(t, "Z8234", line.Operands)

	l := ctx.Labels.FindLabel(bus.Code, 0x8234, memmap.CodeMem, false)
	require.NotNil(t, l)
	assert.True(t, l.Used)
	assert.Equal(t, "Z8234", l.Text)
}

// Scenario 5 (spec §8): an info LABEL directive overriding the target name
// of a self-branch resolves to "loop: BRA loop".
func TestInfoLabelOverride(t *testing.T) {
	ctx, be := newFixture(t)
	load(t, ctx, be, 0x100, []byte{0x20, 0xFE})

	ip := info.New(ctx, be)
	ip.Read = func(path string) ([]byte, error) {
		return []byte("LABEL 0x100 loop\n"), nil
	}
	require.NoError(t, ip.Run("fixture.nfo"))

	e := engine.New(ctx, be)
	e.Parse(bus.Code)
	line := findLine(t, render(e, bus.Code), 0x100)
	assert.Equal(t, "loop", line.Label)
	assert.Equal(t, "BRA", line.Mnemonic)
	assert.Equal(t, "loop", line.Operands)
}

func TestConsecutiveDataCoalesces(t *testing.T) {
	ctx, be := newFixture(t)
	data := []byte{0x01, 0x02, 0x03, 0x04}
	_, err := ctx.Mem.AddMemory(bus.Code, 0x300, data, memmap.Const)
	require.NoError(t, err)
	require.NoError(t, ctx.Attrs.AddSpan(bus.Code, 0x300, len(data), memmap.Const))

	e := engine.New(ctx, be)
	lines := render(e, bus.Code)
	require.Len(t, lines, 2)
	assert.Equal(t, "\tORG\t$0300", lines[0].Verbatim)
	assert.Equal(t, "FCB", lines[1].Mnemonic)
	assert.Equal(t, "$01,$02,$03,$04", lines[1].Operands)
}

func TestInvalidOpcodeDemotesToStub(t *testing.T) {
	ctx, be := newFixture(t)
	// $18 is unassigned in the 6800 table.
	load(t, ctx, be, 0x400, []byte{0x18})

	e := engine.New(ctx, be)
	e.Parse(bus.Code)
	line := findLine(t, render(e, bus.Code), 0x400)
	assert.Equal(t, "FCB", line.Mnemonic)
	assert.Equal(t, "$18", line.Operands)
	assert.Equal(t, 1, e.Stats.InvalidOpcodes)
}
