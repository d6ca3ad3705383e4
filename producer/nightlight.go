package producer

import (
	"time"

	"github.com/nathan-osman/go-sunrise"

	"lautenbacher.net/ws2812spi/ws2812"
)

// Nightlight switches the strip on between sunset and sunrise at the
// configured location.
type Nightlight struct {
	color     ws2812.Color
	latitude  float64
	longitude float64

	day       time.Time
	rise, set time.Time
}

func NewNightlight(color ws2812.Color, latitude, longitude float64) *Nightlight {
	return &Nightlight{
		color:     color,
		latitude:  latitude,
		longitude: longitude,
	}
}

func (s *Nightlight) UID() string {
	return "nightlight"
}

// IsNight reports if now lies outside the day's sunrise to sunset window.
// On days without a sunrise or sunset the season decides: the local summer
// half year is midnight sun, the winter half polar night.
func (s *Nightlight) IsNight(now time.Time) bool {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if !day.Equal(s.day) {
		s.day = day
		s.rise, s.set = sunrise.SunriseSunset(s.latitude, s.longitude, now.Year(), now.Month(), now.Day())
	}
	if s.rise.IsZero() || s.set.IsZero() {
		return !polarDay(s.latitude, now.Month())
	}
	return !(now.After(s.rise) && now.Before(s.set))
}

func (s *Nightlight) Render(now time.Time, leds []ws2812.Color) {
	if s.IsNight(now) {
		fill(leds, s.color)
	} else {
		fill(leds, ws2812.Black)
	}
}

// polarDay is true in the summer half year of the hemisphere at latitude,
// April to September in the north.
func polarDay(latitude float64, month time.Month) bool {
	northernSummer := month >= time.April && month <= time.September
	if latitude >= 0 {
		return northernSummer
	}
	return !northernSummer
}
