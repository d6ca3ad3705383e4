package controller

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"lautenbacher.net/ws2812spi/config"
	"lautenbacher.net/ws2812spi/producer"
	"lautenbacher.net/ws2812spi/ws2812"
)

// Controller renders the current producer into a frame buffer at a fixed
// rate and hands every frame to the strip. It is the single owner of the
// strip.
type Controller struct {
	strip     *ws2812.Strip
	leds      []ws2812.Color
	interval  time.Duration
	syncWrite bool
	now       func() time.Time

	producerMutex sync.Mutex
	producer      producer.Producer

	statsMutex sync.Mutex
	frames     int
	failures   int
}

// Stats reports the number of frames sent and the number of failed sends.
type Stats struct {
	Frames   int
	Failures int
}

func NewController(strip *ws2812.Strip, conf config.DisplayConfig, p producer.Producer) *Controller {
	fps := conf.FPS
	if fps <= 0 {
		fps = 1
	}
	return &Controller{
		strip:     strip,
		leds:      make([]ws2812.Color, strip.Len()),
		interval:  time.Second / time.Duration(fps),
		syncWrite: conf.SyncWrite,
		now:       time.Now,
		producer:  p,
	}
}

// SetProducer replaces the producer starting with the next frame.
func (s *Controller) SetProducer(p producer.Producer) {
	s.producerMutex.Lock()
	defer s.producerMutex.Unlock()
	slog.Info("Switching producer", "from", s.producer.UID(), "to", p.UID())
	s.producer = p
}

func (s *Controller) getProducer() producer.Producer {
	s.producerMutex.Lock()
	defer s.producerMutex.Unlock()
	return s.producer
}

func (s *Controller) Stats() Stats {
	s.statsMutex.Lock()
	defer s.statsMutex.Unlock()
	return Stats{Frames: s.frames, Failures: s.failures}
}

// Run drives the frame loop until ctx is done. On the way out all LEDs are
// switched off.
func (s *Controller) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	slog.Info("Starting frame loop", "leds", len(s.leds), "interval", s.interval, "sync", s.syncWrite)
	s.Frame(ctx)
	for {
		select {
		case <-ctx.Done():
			slog.Info("Ending frame loop, switching LEDs off...")
			return s.strip.Halt()
		case <-ticker.C:
			s.Frame(ctx)
		}
	}
}

// Frame renders and sends one frame. A failed send is logged; the next frame
// simply tries again.
func (s *Controller) Frame(ctx context.Context) {
	s.getProducer().Render(s.now(), s.leds)

	var err error
	if s.syncWrite {
		err = s.strip.Write(slices.Values(s.leds))
	} else {
		err = s.strip.WriteColors(ctx, slices.Values(s.leds))
	}

	s.statsMutex.Lock()
	defer s.statsMutex.Unlock()
	if err != nil {
		s.failures++
		if ctx.Err() == nil {
			slog.Error("Sending frame failed", "error", err)
		}
		return
	}
	s.frames++
}
