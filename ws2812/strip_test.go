package ws2812

import (
	"context"
	"errors"
	"image/color"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBus = errors.New("spi: transfer failed")

func newStrip(t *testing.T, bus Bus, n int, idleHigh bool) *Strip {
	t.Helper()
	s, err := New(bus, &Opts{NumPixels: n, IdleHigh: idleHigh})
	require.NoError(t, err)
	return s
}

func blank() []byte {
	return make([]byte, DefaultResetLen)
}

func TestNew(t *testing.T) {
	s, err := New(&fakeBus{}, &Opts{NumPixels: 3})
	require.NoError(t, err)
	assert.Equal(t, 3, s.Len())
	assert.Len(t, s.data, 36)
	assert.Equal(t, blank(), s.blank)
	assert.Equal(t, "ws2812{3}", s.String())

	s, err = New(&fakeBus{}, &Opts{NumPixels: 1, ResetLen: 20})
	require.NoError(t, err)
	assert.Len(t, s.blank, 20)

	_, err = New(&fakeBus{}, &Opts{NumPixels: -1})
	assert.Error(t, err)
	_, err = New(&fakeBus{}, &Opts{NumPixels: 1, ResetLen: -1})
	assert.Error(t, err)
	_, err = New(nil, &DefaultOpts)
	assert.Error(t, err)
}

func TestWriteColors_ThreeLeds(t *testing.T) {
	bus := &fakeBus{}
	s := newStrip(t, bus, 3, false)

	colors := []Color{{255, 0, 0}, {0, 255, 0}, {0, 0, 255}}
	require.NoError(t, s.WriteColors(context.Background(), slices.Values(colors)))

	writes := bus.writes()
	require.Len(t, writes, 2)
	assert.Equal(t, 0, bus.reads())

	data := writes[0]
	require.Len(t, data, 36)
	for i := 0; i < 4; i++ {
		assert.Equal(t, Pattern(3), data[i], "red of led 0")
		assert.Equal(t, Pattern(3), data[12+4+i], "green of led 1")
		assert.Equal(t, Pattern(3), data[24+8+i], "blue of led 2")
	}
	for _, i := range []int{4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 20, 21, 22, 23, 24, 25, 26, 27, 28, 29, 30, 31} {
		assert.Equal(t, Pattern(0), data[i], "byte %d", i)
	}
	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, colors, decoded)

	assert.Equal(t, blank(), writes[1])
}

func TestWriteColors_BufferLength(t *testing.T) {
	for _, n := range []int{0, 1, 60} {
		bus := &fakeBus{}
		s := newStrip(t, bus, n, false)

		// Offer more colors than fit.
		seq := slices.Values(slices.Repeat([]Color{{1, 2, 3}}, n+5))
		require.NoError(t, s.WriteColors(context.Background(), seq))

		writes := bus.writes()
		require.Len(t, writes, 2)
		assert.Len(t, writes[0], n*BytesPerLed, "leds %d", n)
		assert.Equal(t, blank(), writes[1])
	}
}

func TestWriteColors_Short(t *testing.T) {
	bus := &fakeBus{}
	s := newStrip(t, bus, 4, false)
	ctx := context.Background()

	full := slices.Repeat([]Color{{10, 20, 30}}, 4)
	require.NoError(t, s.WriteColors(ctx, slices.Values(full)))
	require.NoError(t, s.WriteColors(ctx, slices.Values([]Color{{0, 0, 0}})))

	writes := bus.writes()
	require.Len(t, writes, 4)
	assert.Len(t, writes[2], 4*BytesPerLed, "the whole buffer is sent")
	decoded, err := Decode(writes[2])
	require.NoError(t, err)
	// The tail is not cleared.
	assert.Equal(t, []Color{{}, {10, 20, 30}, {10, 20, 30}, {10, 20, 30}}, decoded)
}

func TestFlush(t *testing.T) {
	bus := &fakeBus{}
	s := newStrip(t, bus, 2, false)
	require.NoError(t, s.Flush(context.Background()))
	assert.Equal(t, [][]byte{blank()}, bus.writes())
	assert.Equal(t, 0, bus.reads())
}

func TestWriteColors_ResetFails(t *testing.T) {
	bus := &fakeBus{failAt: 2, err: errBus}
	s := newStrip(t, bus, 3, false)

	err := s.WriteColors(context.Background(), slices.Values([]Color{{1, 1, 1}}))
	assert.Same(t, errBus, err, "bus errors are returned unchanged")
	assert.Len(t, bus.ops, 2, "no operation after the failure")
}

func TestWriteColors_DataFails(t *testing.T) {
	bus := &fakeBus{failAt: 1, err: errBus}
	s := newStrip(t, bus, 3, false)

	err := s.WriteColors(context.Background(), slices.Values([]Color{{1, 1, 1}}))
	assert.Same(t, errBus, err)
	assert.Len(t, bus.ops, 1)
}

func TestWrite_Framing(t *testing.T) {
	for _, count := range []int{0, 1, 3, 8} {
		bus := &fakeBus{}
		s := newStrip(t, bus, 5, false)

		require.NoError(t, s.Write(slices.Values(slices.Repeat([]Color{{9, 9, 9}}, count))))

		require.Len(t, bus.ops, 4, "colors %d", count)
		assert.Equal(t, op{data: []byte{0}}, bus.ops[0], "filler first")
		assert.False(t, bus.ops[1].read)
		assert.Len(t, bus.ops[1].data, 5*BytesPerLed)
		assert.Equal(t, op{data: blank()}, bus.ops[2])
		assert.Equal(t, op{read: true, data: []byte{0}}, bus.ops[3], "one byte read back")
	}
}

func TestWrite_IdleHigh(t *testing.T) {
	bus := &fakeBus{}
	s := newStrip(t, bus, 2, true)

	require.NoError(t, s.Write(slices.Values([]Color{{1, 2, 3}, {4, 5, 6}})))

	require.Len(t, bus.ops, 5)
	assert.Equal(t, []byte{0}, bus.ops[0].data)
	assert.Equal(t, blank(), bus.ops[1].data, "extra reset before the payload")
	assert.Len(t, bus.ops[2].data, 2*BytesPerLed)
	assert.Equal(t, blank(), bus.ops[3].data)
	assert.True(t, bus.ops[4].read)
	assert.Len(t, bus.ops[4].data, 1)
}

func TestWrite_Errors(t *testing.T) {
	// Operation numbers: filler, data, reset, read.
	for failAt := 1; failAt <= 4; failAt++ {
		bus := &fakeBus{failAt: failAt, err: errBus}
		s := newStrip(t, bus, 1, false)

		err := s.Write(slices.Values([]Color{{1, 2, 3}}))
		assert.Same(t, errBus, err, "failing operation %d", failAt)
		assert.Len(t, bus.ops, failAt, "nothing runs after operation %d failed", failAt)
	}

	bus := &fakeBus{failAt: 2, err: errBus}
	s := newStrip(t, bus, 1, true)
	assert.Same(t, errBus, s.Write(slices.Values([]Color{{1, 2, 3}})), "idle high reset fails")
	assert.Len(t, bus.ops, 2)
}

func TestColors(t *testing.T) {
	in := []color.Color{
		color.RGBA{R: 255, G: 128, B: 0, A: 255},
		color.NRGBA{R: 255, G: 255, B: 255, A: 0},
		Color{1, 2, 3},
	}
	got := slices.Collect(Colors(slices.Values(in)))
	assert.Equal(t, []Color{{255, 128, 0}, {}, {1, 2, 3}}, got)
}

func TestColor(t *testing.T) {
	r, g, b, a := Color{R: 255, G: 1}.RGBA()
	assert.Equal(t, uint32(0xffff), r)
	assert.Equal(t, uint32(0x101), g)
	assert.Equal(t, uint32(0), b)
	assert.Equal(t, uint32(0xffff), a)
	assert.True(t, Black.IsBlack())
	assert.False(t, Color{B: 1}.IsBlack())
}
