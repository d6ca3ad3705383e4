package ws2812

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"lautenbacher.net/ws2812spi/util"
)

// Bus is the byte oriented transport a Strip owns. Both calls block until
// the transfer completed or failed; the error is returned to the caller of
// the Strip unchanged.
type Bus interface {
	Write(ctx context.Context, p []byte) error
	Read(ctx context.Context, p []byte) error
}

// Writer is implemented by anything that accepts a full set of LED colors
// in one synchronous call.
type Writer interface {
	Write(seq iter.Seq[Color]) error
}

// Opts defines the options for the device.
type Opts struct {
	// NumPixels is the number of LEDs on the strip. It fixes the size of the
	// output buffer for the lifetime of the Strip.
	NumPixels int
	// IdleHigh sends an extra reset run before the payload in Write. Use it
	// when the MOSI line idles high between transfers.
	IdleHigh bool
	// ResetLen is the number of zero bytes sent after each frame. Zero means
	// DefaultResetLen; see ResetLen() to derive it from the clock.
	ResetLen int
}

// DefaultOpts is the recommended default options.
var DefaultOpts = Opts{
	NumPixels: 150,
	ResetLen:  DefaultResetLen,
}

// Strip is a handle to a WS2812 LED string on a SPI bus.
//
// A Strip is not safe for concurrent use.
type Strip struct {
	bus      Bus
	data     []byte
	blank    []byte
	filler   [1]byte
	idleHigh bool
}

// New returns a Strip that takes exclusive ownership of bus.
func New(bus Bus, opts *Opts) (*Strip, error) {
	if bus == nil {
		return nil, errors.New("ws2812: bus is required")
	}
	if opts.NumPixels < 0 {
		return nil, fmt.Errorf("ws2812: invalid number of pixels %d", opts.NumPixels)
	}
	if opts.ResetLen < 0 {
		return nil, fmt.Errorf("ws2812: invalid reset length %d", opts.ResetLen)
	}
	resetLen := opts.ResetLen
	if resetLen == 0 {
		resetLen = DefaultResetLen
	}
	return &Strip{
		bus:      bus,
		data:     make([]byte, opts.NumPixels*BytesPerLed),
		blank:    make([]byte, resetLen),
		idleHigh: opts.IdleHigh,
	}, nil
}

// Len returns the number of LEDs the Strip was built for.
func (s *Strip) Len() int {
	return len(s.data) / BytesPerLed
}

// WriteColors encodes seq and sends the whole output buffer followed by the
// reset run.
//
// At most Len() colors are consumed; the rest of seq is ignored. When seq
// is shorter, the tail of the buffer still holds the previous frame and is
// sent again, so send Len() black values to switch trailing LEDs off.
func (s *Strip) WriteColors(ctx context.Context, seq iter.Seq[Color]) error {
	Encode(s.data, seq)
	return s.send(ctx)
}

func (s *Strip) send(ctx context.Context) error {
	if err := s.bus.Write(ctx, s.data); err != nil {
		return err
	}
	return s.Flush(ctx)
}

// Flush sends only the reset run, latching whatever the strip received.
func (s *Strip) Flush(ctx context.Context) error {
	return s.bus.Write(ctx, s.blank)
}

// Write implements Writer. It runs WriteColors to completion and frames it
// with a filler byte written before and read back after the payload.
func (s *Strip) Write(seq iter.Seq[Color]) error {
	return s.framed(func(ctx context.Context) error {
		return s.WriteColors(ctx, seq)
	})
}

func (s *Strip) framed(payload func(ctx context.Context) error) error {
	return util.BlockOn(func(ctx context.Context) error {
		s.filler[0] = 0
		if err := s.bus.Write(ctx, s.filler[:]); err != nil {
			return err
		}
		if s.idleHigh {
			if err := s.Flush(ctx); err != nil {
				return err
			}
		}
		if err := payload(ctx); err != nil {
			return err
		}
		return s.bus.Read(ctx, s.filler[:])
	})
}

var _ Writer = &Strip{}
