package producer

import (
	"fmt"
	"math"
	"time"

	"lautenbacher.net/ws2812spi/config"
	"lautenbacher.net/ws2812spi/util"
	"lautenbacher.net/ws2812spi/ws2812"
)

// Producer computes the colors of the strip for one frame.
type Producer interface {
	// UID identifies the producer in logs.
	UID() string
	// Render fills leds for the point in time now. It is called once per
	// frame from a single goroutine.
	Render(now time.Time, leds []ws2812.Color)
}

// New builds the producer selected in conf.
func New(conf config.ProducerConfig) (Producer, error) {
	color := rgb(conf.LedRGB)
	switch conf.Type {
	case config.ProducerSolid:
		return NewSolid(color), nil
	case config.ProducerCylon:
		return NewCylon(color, conf.Step, conf.Width), nil
	case config.ProducerNightlight:
		return NewNightlight(color, conf.Latitude, conf.Longitude), nil
	case config.ProducerClock:
		return NewClock(rgb(conf.LedHour), rgb(conf.LedMinute)), nil
	default:
		return nil, fmt.Errorf("unknown producer type: %s", conf.Type)
	}
}

func rgb(v []float64) ws2812.Color {
	if len(v) != 3 {
		return ws2812.Black
	}
	return ws2812.Color{R: channel(v[0]), G: channel(v[1]), B: channel(v[2])}
}

func channel(v float64) uint8 {
	return uint8(math.Round(util.Clamp(v, 0, 255)))
}

// scale dims c by f in [0, 1].
func scale(c ws2812.Color, f float64) ws2812.Color {
	f = util.Clamp(f, 0, 1)
	return ws2812.Color{
		R: channel(float64(c.R) * f),
		G: channel(float64(c.G) * f),
		B: channel(float64(c.B) * f),
	}
}

func fill(leds []ws2812.Color, c ws2812.Color) {
	for i := range leds {
		leds[i] = c
	}
}
