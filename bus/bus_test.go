package bus_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/retrodis/dasmfw/bus"
)

func TestSentinelsDoNotCollideWithValidAddresses(t *testing.T) {
	assert.False(t, bus.NoAddress.Valid())
	assert.False(t, bus.DefaultAddress.Valid())
	assert.NotEqual(t, bus.NoAddress, bus.DefaultAddress)
	assert.True(t, bus.Address(0).Valid())
	assert.True(t, bus.Address(0xFFFF).Valid())
}

func TestAddressString(t *testing.T) {
	assert.Equal(t, "0100", bus.Address(0x100).String())
	assert.Equal(t, "<none>", bus.NoAddress.String())
	assert.Equal(t, "<default>", bus.DefaultAddress.String())
}

func TestBusParse(t *testing.T) {
	tests := []struct {
		in   string
		want bus.Bus
		ok   bool
	}{
		{"code", bus.Code, true},
		{"data", bus.Data, true},
		{"io", bus.IO, true},
		{"nonsense", 0, false},
	}
	for _, tt := range tests {
		got, ok := bus.Parse(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		if tt.ok {
			assert.Equal(t, tt.want, got, tt.in)
		}
	}
}

func TestBusString(t *testing.T) {
	assert.Equal(t, "code", bus.Code.String())
	assert.Equal(t, "data", bus.Data.String())
	assert.Equal(t, "io", bus.IO.String())
}
