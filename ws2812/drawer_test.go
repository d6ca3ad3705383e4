package ws2812

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDraw(t *testing.T) {
	bus := &fakeBus{}
	s := newStrip(t, bus, 4, false)
	assert.Equal(t, image.Rect(0, 0, 4, 1), s.Bounds())
	assert.Same(t, Model, s.ColorModel())

	img := image.NewNRGBA(image.Rect(0, 0, 4, 1))
	for x := 0; x < 4; x++ {
		img.Set(x, 0, color.NRGBA{R: uint8(x + 1), A: 255})
	}
	require.NoError(t, s.Draw(s.Bounds(), img, image.Point{}))

	require.Len(t, bus.ops, 4)
	assert.Equal(t, []byte{0}, bus.ops[0].data)
	got, err := Decode(bus.ops[1].data)
	require.NoError(t, err)
	assert.Equal(t, []Color{{R: 1}, {R: 2}, {R: 3}, {R: 4}}, got)
	assert.True(t, bus.ops[3].read)
}

func TestDraw_Partial(t *testing.T) {
	bus := &fakeBus{}
	s := newStrip(t, bus, 4, false)
	require.NoError(t, s.Halt())

	img := image.NewUniform(color.White)
	require.NoError(t, s.Draw(image.Rect(1, 0, 3, 1), img, image.Point{}))

	writes := bus.writes()
	got, err := Decode(writes[len(writes)-2])
	require.NoError(t, err)
	white := Color{255, 255, 255}
	assert.Equal(t, []Color{{}, white, white, {}}, got)
}

func TestDraw_OutOfBounds(t *testing.T) {
	bus := &fakeBus{}
	s := newStrip(t, bus, 2, false)
	img := image.NewUniform(color.White)
	require.NoError(t, s.Draw(image.Rect(5, 0, 8, 1), img, image.Point{}))
	assert.Empty(t, bus.ops)
}

func TestHalt(t *testing.T) {
	bus := &fakeBus{}
	s := newStrip(t, bus, 3, false)
	require.NoError(t, s.Halt())

	require.Len(t, bus.ops, 4)
	got, err := Decode(bus.ops[1].data)
	require.NoError(t, err)
	assert.Equal(t, []Color{{}, {}, {}}, got)
}
