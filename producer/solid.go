package producer

import (
	"time"

	"lautenbacher.net/ws2812spi/ws2812"
)

// Solid shows one color on every LED.
type Solid struct {
	color ws2812.Color
}

func NewSolid(color ws2812.Color) *Solid {
	return &Solid{color: color}
}

func (s *Solid) UID() string {
	return "solid"
}

func (s *Solid) Render(_ time.Time, leds []ws2812.Color) {
	fill(leds, s.color)
}
