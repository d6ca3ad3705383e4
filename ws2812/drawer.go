package ws2812

import (
	"context"
	"fmt"
	"image"
	"image/color"

	"periph.io/x/conn/v3/display"
)

// String implements conn.Resource.
func (s *Strip) String() string {
	return fmt.Sprintf("ws2812{%d}", s.Len())
}

// Halt implements conn.Resource. It switches every LED off.
func (s *Strip) Halt() error {
	return s.Write(func(yield func(Color) bool) {
		for range s.Len() {
			if !yield(Black) {
				return
			}
		}
	})
}

// ColorModel implements display.Drawer.
func (s *Strip) ColorModel() color.Model {
	return Model
}

// Bounds implements display.Drawer. Min is guaranteed to be {0, 0}.
func (s *Strip) Bounds() image.Rectangle {
	return image.Rect(0, 0, s.Len(), 1)
}

// Draw implements display.Drawer.
//
// Only the pixels inside r are encoded; the others keep the color they were
// last sent with. The frame is sent with the same framing as Write.
func (s *Strip) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	r = r.Intersect(s.Bounds())
	if r.Empty() {
		return nil
	}
	srcR := src.Bounds()
	srcR.Min = srcR.Min.Add(sp)
	if dX := r.Dx(); dX < srcR.Dx() {
		srcR.Max.X = srcR.Min.X + dX
	}
	return s.framed(func(ctx context.Context) error {
		dst := s.data[r.Min.X*BytesPerLed : r.Max.X*BytesPerLed]
		Encode(dst, func(yield func(Color) bool) {
			for x := srcR.Min.X; x < srcR.Max.X; x++ {
				if !yield(Model.Convert(src.At(x, srcR.Min.Y)).(Color)) {
					return
				}
			}
		})
		return s.send(ctx)
	})
}

var _ display.Drawer = &Strip{}
