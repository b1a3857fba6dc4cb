package m6800

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retrodis/dasmfw/backend"
	"github.com/retrodis/dasmfw/bus"
	"github.com/retrodis/dasmfw/memmap"
)

func fixtureCtx(t *testing.T, addr bus.Address, data []byte) *backend.Context {
	t.Helper()
	mem := memmap.New(memmap.BigEndian)
	_, err := mem.AddMemory(bus.Code, addr, data, memmap.CodeMem)
	require.NoError(t, err)
	return &backend.Context{Mem: mem}
}

func TestDecodeAtInherent(t *testing.T) {
	b := &Backend{opts: map[string]string{}}
	ctx := fixtureCtx(t, 0x100, []byte{0x01}) // NOP
	d, err := b.decodeAt(ctx, 0x100, bus.Code)
	require.NoError(t, err)
	assert.Equal(t, "NOP", d.Entry.Mnemonic)
	assert.Equal(t, 1, d.Size)
	assert.Empty(t, d.Operand)
}

func TestDecodeAtReadsOperandBytes(t *testing.T) {
	b := &Backend{opts: map[string]string{}}
	ctx := fixtureCtx(t, 0x100, []byte{0xB6, 0x12, 0x34}) // LDAA extended
	d, err := b.decodeAt(ctx, 0x100, bus.Code)
	require.NoError(t, err)
	assert.Equal(t, "LDAA", d.Entry.Mnemonic)
	assert.Equal(t, 3, d.Size)
	assert.Equal(t, []byte{0x12, 0x34}, d.Operand)
}

func TestDecodeAtIllegalOpcode(t *testing.T) {
	b := &Backend{opts: map[string]string{}}
	ctx := fixtureCtx(t, 0x100, []byte{0x18}) // unassigned
	d, err := b.decodeAt(ctx, 0x100, bus.Code)
	require.Error(t, err)
	assert.Equal(t, 1, d.Size)
	assert.Empty(t, d.Entry.Mnemonic)
}

func TestDecodeAtTruncatedOperand(t *testing.T) {
	b := &Backend{opts: map[string]string{}}
	ctx := fixtureCtx(t, 0x100, []byte{0xB6, 0x12}) // LDAA extended, missing 2nd operand byte
	_, err := b.decodeAt(ctx, 0x100, bus.Code)
	assert.Error(t, err)
}

func TestDecodeAtUnmappedOpcode(t *testing.T) {
	b := &Backend{opts: map[string]string{}}
	ctx := fixtureCtx(t, 0x100, []byte{0x01})
	_, err := b.decodeAt(ctx, 0x200, bus.Code)
	assert.Error(t, err)
}

func TestRawTargetAddressExtendedIsBigEndian(t *testing.T) {
	d := decoded{Entry: opEntry{Mode: ModeExtended}, Operand: []byte{0x81, 0x00}}
	addr, ok := d.rawTargetAddress()
	require.True(t, ok)
	assert.Equal(t, bus.Address(0x8100), addr)
}

func TestRawTargetAddressDirectIsZeroPage(t *testing.T) {
	d := decoded{Entry: opEntry{Mode: ModeDirect}, Operand: []byte{0x42}}
	addr, ok := d.rawTargetAddress()
	require.True(t, ok)
	assert.Equal(t, bus.Address(0x42), addr)
}

func TestRawTargetAddressRelativeForwardBranch(t *testing.T) {
	d := decoded{Addr: 0x100, Size: 2, Entry: opEntry{Mode: ModeRelative}, Operand: []byte{0x02}}
	addr, ok := d.rawTargetAddress()
	require.True(t, ok)
	assert.Equal(t, bus.Address(0x104), addr)
}

func TestRawTargetAddressRelativeBackwardBranch(t *testing.T) {
	d := decoded{Addr: 0x100, Size: 2, Entry: opEntry{Mode: ModeRelative}, Operand: []byte{0xFE}} // -2
	addr, ok := d.rawTargetAddress()
	require.True(t, ok)
	assert.Equal(t, bus.Address(0x100), addr, "a -2 displacement branches back onto itself")
}

func TestRawTargetAddressNoneForInherentAndImmediate(t *testing.T) {
	d := decoded{Entry: opEntry{Mode: ModeInherent}}
	_, ok := d.rawTargetAddress()
	assert.False(t, ok)

	d = decoded{Entry: opEntry{Mode: ModeImmByte}, Operand: []byte{0x05}}
	_, ok = d.rawTargetAddress()
	assert.False(t, ok)
}

func TestIsCodeTarget(t *testing.T) {
	jsr := decoded{Entry: opEntry{Mnemonic: "JSR", Mode: ModeExtended}}
	assert.True(t, jsr.isCodeTarget())

	ldaa := decoded{Entry: opEntry{Mnemonic: "LDAA", Mode: ModeExtended}}
	assert.False(t, ldaa.isCodeTarget())
}

func TestModeOperandBytes(t *testing.T) {
	assert.Equal(t, 0, ModeInherent.OperandBytes())
	assert.Equal(t, 1, ModeImmByte.OperandBytes())
	assert.Equal(t, 2, ModeImmWord.OperandBytes())
	assert.Equal(t, 1, ModeDirect.OperandBytes())
	assert.Equal(t, 2, ModeExtended.OperandBytes())
	assert.Equal(t, 1, ModeIndexed.OperandBytes())
	assert.Equal(t, 1, ModeRelative.OperandBytes())
}
