package bus

import (
	"context"
	"fmt"

	"github.com/stianeikeland/go-rpio/v4"
)

// Rpio drives SPI0 of a Raspberry Pi through /dev/gpiomem with go-rpio.
type Rpio struct {
	dev rpio.SpiDev
}

// OpenRpio maps the GPIO memory and starts SPI0 at freq Hz in mode 0.
func OpenRpio(freq int) (*Rpio, error) {
	if err := rpio.Open(); err != nil {
		return nil, fmt.Errorf("failed to open rpio: %w", err)
	}
	if err := rpio.SpiBegin(rpio.Spi0); err != nil {
		rpio.Close()
		return nil, fmt.Errorf("failed to begin spi: %w", err)
	}
	rpio.SpiSpeed(freq)
	rpio.SpiMode(0, 0)
	rpio.SpiChipSelect(0)
	return &Rpio{dev: rpio.Spi0}, nil
}

// Write transmits data on SPI0 and ignores what is clocked in.
func (r *Rpio) Write(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	rpio.SpiTransmit(data...)
	return nil
}

// Read clocks in len(data) bytes from SPI0.
func (r *Rpio) Read(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	copy(data, rpio.SpiReceive(len(data)))
	return nil
}

// Close ends SPI0 and unmaps the GPIO memory.
func (r *Rpio) Close() error {
	rpio.SpiEnd(r.dev)
	if err := rpio.Close(); err != nil {
		return fmt.Errorf("failed to close rpio: %w", err)
	}
	return nil
}
