// Package bus provides the SPI transports a ws2812.Strip can own.
package bus

import (
	"fmt"
	"io"
	"log/slog"

	"lautenbacher.net/ws2812spi/config"
	"lautenbacher.net/ws2812spi/ws2812"
	"periph.io/x/conn/v3/physic"
)

// Bus is a ws2812.Bus that holds a hardware resource.
type Bus interface {
	ws2812.Bus
	io.Closer
}

// Open opens the SPI bus described by conf with the configured library.
func Open(conf config.HardwareConfig) (Bus, error) {
	slog.Info("Initialise SPI", "library", conf.Library, "frequency", conf.SPIFrequency)
	switch conf.Library {
	case config.LibraryPeriph:
		return OpenPeriph(conf.SPIDevice, physic.Frequency(conf.SPIFrequency)*physic.Hertz)
	case config.LibraryRpio:
		return OpenRpio(conf.SPIFrequency)
	default:
		return nil, fmt.Errorf("unknown SPI library: %s", conf.Library)
	}
}
