package producer

import (
	"math"
	"time"

	"lautenbacher.net/ws2812spi/ws2812"
)

// Cylon moves a blob of light back and forth over the strip. The blob
// advances by step LEDs per frame; its edges are dimmed by how much of the
// LED they cover.
type Cylon struct {
	color     ws2812.Color
	x         float64
	step      float64
	radius    int
	direction int
}

func NewCylon(color ws2812.Color, step float64, width int) *Cylon {
	return &Cylon{
		color:     color,
		step:      step,
		radius:    width / 2,
		direction: 1,
	}
}

func (s *Cylon) UID() string {
	return "cylon"
}

func (s *Cylon) Render(_ time.Time, leds []ws2812.Color) {
	if s.x < 0 || s.x > float64(len(leds)-1) {
		s.direction = -s.direction
	}
	s.x += float64(s.direction) * s.step

	left := s.x - float64(s.radius)
	right := s.x + float64(s.radius)
	for i := range leds {
		switch {
		case float64(i) < math.Floor(left) || float64(i) > math.Floor(right+1):
			leds[i] = ws2812.Black
		case i == int(math.Floor(left)):
			leds[i] = scale(s.color, 1-(left-float64(i)))
		case i == int(math.Floor(right+1)):
			leds[i] = scale(s.color, 1-(float64(i)-right))
		default:
			leds[i] = s.color
		}
	}
}
