package bus

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gammazero/deque"

	"lautenbacher.net/ws2812spi/util"
	"lautenbacher.net/ws2812spi/ws2812"
)

const defaultHistory = 64

// Transfer is one recorded bus operation.
type Transfer struct {
	Read bool
	Data []byte
	At   time.Time
}

// Stats counts what went over a simulated bus.
type Stats struct {
	Writes       int
	Reads        int
	BytesWritten int
	Frames       int
	Resets       int
	Errors       int
}

// Sim is an in-memory bus that understands the WS2812 encoding. Every data
// write is decoded and published as the latest frame, so a preview can show
// what a real strip would display.
type Sim struct {
	mu         sync.Mutex
	history    deque.Deque[Transfer]
	maxHistory int
	stats      Stats
	writeErr   error
	byteTime   time.Duration
	frames     *util.AtomicEvent[[]ws2812.Color]
}

// NewSim creates a simulator keeping the last history transfers. byteTime is
// the simulated time one byte takes on the wire, zero for none.
func NewSim(history int, byteTime time.Duration) *Sim {
	if history <= 0 {
		history = defaultHistory
	}
	s := &Sim{
		maxHistory: history,
		byteTime:   byteTime,
		frames:     util.NewAtomicEvent[[]ws2812.Color](),
	}
	s.history.SetBaseCap(history)
	return s
}

// Frames publishes every decoded frame.
func (s *Sim) Frames() *util.AtomicEvent[[]ws2812.Color] {
	return s.frames
}

// FailWrites makes every following write return err. A nil err heals the
// bus again.
func (s *Sim) FailWrites(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeErr = err
}

func (s *Sim) wait(ctx context.Context, n int) error {
	if s.byteTime <= 0 || n == 0 {
		return ctx.Err()
	}
	t := time.NewTimer(time.Duration(n) * s.byteTime)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (s *Sim) record(tr Transfer) {
	if s.history.Len() >= s.maxHistory {
		s.history.PopFront()
	}
	s.history.PushBack(tr)
}

// Write records data. A write that is a whole number of LEDs and not all
// zero is decoded and published as a frame.
func (s *Sim) Write(ctx context.Context, data []byte) error {
	s.mu.Lock()
	err := s.writeErr
	if err != nil {
		s.stats.Errors++
	}
	s.mu.Unlock()
	if err != nil {
		return err
	}
	if err := s.wait(ctx, len(data)); err != nil {
		return err
	}

	tr := Transfer{Data: bytes.Clone(data), At: time.Now()}
	var frame []ws2812.Color
	isFrame := len(data)%ws2812.BytesPerLed == 0 && !isZero(data)
	if isFrame {
		var decodeErr error
		frame, decodeErr = decodeFrame(data)
		if decodeErr != nil {
			slog.Warn("Simulated strip received garbage", "error", decodeErr)
			isFrame = false
		}
	}

	s.mu.Lock()
	s.record(tr)
	s.stats.Writes++
	s.stats.BytesWritten += len(data)
	if isFrame {
		s.stats.Frames++
	} else if len(data) > 1 && isZero(data) {
		s.stats.Resets++
	}
	s.mu.Unlock()

	if isFrame {
		s.frames.Send(frame)
	}
	return nil
}

// Read returns zeros, the line is not connected to anything.
func (s *Sim) Read(ctx context.Context, data []byte) error {
	if err := s.wait(ctx, len(data)); err != nil {
		return err
	}
	clear(data)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(Transfer{Read: true, Data: bytes.Clone(data), At: time.Now()})
	s.stats.Reads++
	return nil
}

// History returns the recorded transfers, oldest first.
func (s *Sim) History() []Transfer {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Transfer, s.history.Len())
	for i := range out {
		out[i] = s.history.At(i)
	}
	return out
}

// Stats returns the counters collected so far.
func (s *Sim) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Close is a no-op, the simulator holds no resources.
func (s *Sim) Close() error {
	return nil
}

// decodeFrame decodes data LED by LED. LEDs that are still all zero, like
// the untouched tail of a fresh buffer, keep the line low and show as black.
func decodeFrame(data []byte) ([]ws2812.Color, error) {
	frame := make([]ws2812.Color, len(data)/ws2812.BytesPerLed)
	for i := range frame {
		led := data[i*ws2812.BytesPerLed : (i+1)*ws2812.BytesPerLed]
		if isZero(led) {
			continue
		}
		c, err := ws2812.Decode(led)
		if err != nil {
			return nil, fmt.Errorf("led %d: %w", i, err)
		}
		frame[i] = c[0]
	}
	return frame, nil
}

func isZero(p []byte) bool {
	for _, b := range p {
		if b != 0 {
			return false
		}
	}
	return true
}
