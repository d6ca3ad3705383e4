package ws2812

import (
	"image/color"
	"iter"
)

// Color is the value of a single LED.
type Color struct {
	R, G, B uint8
}

// Black switches an LED off.
var Black = Color{}

// RGBA implements color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	r = uint32(c.R) * 0x101
	g = uint32(c.G) * 0x101
	b = uint32(c.B) * 0x101
	return r, g, b, 0xffff
}

// IsBlack is true when all channels are zero.
func (c Color) IsBlack() bool {
	return c.R == 0 && c.G == 0 && c.B == 0
}

// Model converts any color.Color into a Color. Alpha is applied, so a half
// transparent white ends up as a dimmed white.
var Model = color.ModelFunc(convert)

func convert(c color.Color) color.Color {
	if v, ok := c.(Color); ok {
		return v
	}
	r, g, b, _ := c.RGBA()
	return Color{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8)}
}

// Colors adapts a sequence of any color.Color implementation into a
// sequence of Color.
func Colors[T color.Color](seq iter.Seq[T]) iter.Seq[Color] {
	return func(yield func(Color) bool) {
		for c := range seq {
			if !yield(Model.Convert(c).(Color)) {
				return
			}
		}
	}
}
