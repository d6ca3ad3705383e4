package bus

import (
	"context"
	"fmt"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// Periph is a bus on top of a periph.io SPI connection.
type Periph struct {
	port    spi.PortCloser
	conn    spi.Conn
	scratch []byte
}

// OpenPeriph initialises the host drivers and connects to the SPI port dev
// (e.g. /dev/spidev0.0, "" for the first one) in mode 0 with 8 bit words.
//
// spidev limits a single transfer to its bufsiz parameter (4096 by
// default). A frame must go out in one piece, so raise it for long strips,
// e.g. spidev.bufsiz=65536 on the kernel command line.
func OpenPeriph(dev string, freq physic.Frequency) (*Periph, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to init periph: %w", err)
	}
	port, err := spireg.Open(dev)
	if err != nil {
		return nil, fmt.Errorf("failed to open spi: %w", err)
	}
	conn, err := port.Connect(freq, spi.Mode0, 8)
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("failed to connect to spi device: %w", err)
	}
	p := NewPeriph(conn)
	p.port = port
	return p, nil
}

// NewPeriph wraps an already connected spi.Conn. Close does not close it.
func NewPeriph(conn spi.Conn) *Periph {
	return &Periph{conn: conn, scratch: make([]byte, 1)}
}

// Write sends p and ignores what is clocked in.
func (p *Periph) Write(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	return p.conn.Tx(data, nil)
}

// Read clocks in len(data) bytes while sending zeros.
func (p *Periph) Read(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	if len(data) > len(p.scratch) {
		p.scratch = make([]byte, len(data))
	}
	w := p.scratch[:len(data)]
	clear(w)
	return p.conn.Tx(w, data)
}

func (p *Periph) String() string {
	return p.conn.String()
}

// Close releases the SPI port if it was opened by OpenPeriph.
func (p *Periph) Close() error {
	if p.port == nil {
		return nil
	}
	err := p.port.Close()
	p.port = nil
	return err
}
