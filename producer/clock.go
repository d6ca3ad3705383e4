package producer

import (
	"math"
	"time"

	"lautenbacher.net/ws2812spi/ws2812"
)

// Clock shows the time of day with two LEDs. The hour hand spreads the
// twelve hours over the strip, the minute hand the sixty minutes. When both
// hands meet, the minute wins.
type Clock struct {
	hour   ws2812.Color
	minute ws2812.Color
}

func NewClock(hour, minute ws2812.Color) *Clock {
	return &Clock{hour: hour, minute: minute}
}

func (s *Clock) UID() string {
	return "clock"
}

func (s *Clock) Render(now time.Time, leds []ws2812.Color) {
	fill(leds, ws2812.Black)
	if len(leds) == 0 {
		return
	}
	length := float64(len(leds) - 1)
	hourDist := length / 11.0
	minuteDist := length / 59.0

	leds[int(math.Round(float64(now.Hour()%12)*hourDist))] = s.hour
	leds[int(math.Round(float64(now.Minute())*minuteDist))] = s.minute
}
