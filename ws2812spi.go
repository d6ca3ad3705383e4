package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"periph.io/x/conn/v3/physic"

	"lautenbacher.net/ws2812spi/bus"
	"lautenbacher.net/ws2812spi/config"
	"lautenbacher.net/ws2812spi/controller"
	"lautenbacher.net/ws2812spi/logging"
	"lautenbacher.net/ws2812spi/producer"
	"lautenbacher.net/ws2812spi/tui"
	"lautenbacher.net/ws2812spi/ws2812"
)

const simHistory = 64

type App struct {
	ossignal   chan os.Signal
	cfile      string
	real       bool
	conf       *config.Config
	bus        bus.Bus
	sim        *bus.Sim
	viewer     *tui.Viewer
	strip      *ws2812.Strip
	controller *controller.Controller
	shutdownWg sync.WaitGroup
	confMutex  sync.Mutex
}

func NewApp(ossignal chan os.Signal) *App {
	return &App{ossignal: ossignal}
}

func main() {
	cfile := flag.String("config", config.CONFILE, "Config file to use")
	realp := flag.Bool("real", false, "Drive a real strip instead of the simulation TUI")
	flag.Parse()

	ossignal := make(chan os.Signal, 1)
	signal.Notify(ossignal, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)

	app := NewApp(ossignal)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := app.initialise(ctx, *cfile, *realp); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start: %v\n", err)
		app.shutdown()
		os.Exit(1)
	}
	app.run(ctx, cancel)
	app.shutdown()
}

func (s *App) initialise(ctx context.Context, cfile string, real bool) error {
	s.cfile = cfile
	s.real = real

	conf, err := config.ReadConfig(cfile)
	if err != nil {
		return err
	}
	s.conf = conf

	if err := logging.Init(conf.Logging, !real); err != nil {
		return fmt.Errorf("failed to initialise logging: %w", err)
	}

	if real {
		s.bus, err = bus.Open(conf.Hardware)
		if err != nil {
			return fmt.Errorf("failed to open SPI bus: %w", err)
		}
	} else {
		s.sim = bus.NewSim(simHistory, byteTime(conf.Hardware.SPIFrequency))
		s.bus = s.sim
		s.viewer = tui.NewViewer(s.sim, s.ossignal)
		s.viewer.Start(ctx, conf.Hardware.LedsTotal)
		select {
		case <-s.viewer.Ready():
		case sig := <-s.ossignal:
			return fmt.Errorf("interrupted by %v while starting the TUI", sig)
		}
	}

	s.strip, err = ws2812.New(s.bus, stripOpts(conf.Hardware))
	if err != nil {
		return err
	}
	prod, err := producer.New(conf.Producer)
	if err != nil {
		return err
	}
	s.controller = controller.NewController(s.strip, conf.Display, prod)
	slog.Info("Initialised", "strip", s.strip.String(), "producer", prod.UID(), "real", real)
	return nil
}

// stripOpts maps the hardware section onto the strip options. A configured
// reset time is converted to bytes at the bus clock.
func stripOpts(conf config.HardwareConfig) *ws2812.Opts {
	opts := &ws2812.Opts{
		NumPixels: conf.LedsTotal,
		IdleHigh:  conf.IdleHigh,
		ResetLen:  ws2812.DefaultResetLen,
	}
	if conf.ResetTime > 0 {
		opts.ResetLen = ws2812.ResetLen(physic.Frequency(conf.SPIFrequency)*physic.Hertz, conf.ResetTime)
	}
	return opts
}

// byteTime is how long one byte takes on the wire at freq Hz.
func byteTime(freq int) time.Duration {
	if freq <= 0 {
		return 0
	}
	return time.Duration(8 * int64(time.Second) / int64(freq))
}

func (s *App) run(ctx context.Context, cancel context.CancelFunc) {
	s.shutdownWg.Add(2)
	go func() {
		defer s.shutdownWg.Done()
		if err := s.controller.Run(ctx); err != nil {
			slog.Error("Failed to switch LEDs off", "error", err)
		}
	}()
	go func() {
		defer s.shutdownWg.Done()
		if err := config.Watch(ctx, s.cfile, s.reload); err != nil {
			slog.Error("Config watcher stopped", "error", err)
		}
	}()

	for sig := range s.ossignal {
		if sig == syscall.SIGHUP {
			slog.Info("Reloading config", "file", s.cfile)
			conf, err := config.ReadConfig(s.cfile)
			if err != nil {
				slog.Error("Failed to read config, keeping the old one", "error", err)
				continue
			}
			s.reload(conf)
			continue
		}
		slog.Info("Received signal, shutting down", "signal", sig)
		break
	}
	cancel()
	s.shutdownWg.Wait()
}

// reload swaps in the producer from conf. Hardware and display settings
// only take effect after a restart.
func (s *App) reload(conf *config.Config) {
	s.confMutex.Lock()
	defer s.confMutex.Unlock()
	if conf.Hardware != s.conf.Hardware || conf.Display != s.conf.Display {
		slog.Warn("Hardware and display changes need a restart")
	}
	prod, err := producer.New(conf.Producer)
	if err != nil {
		slog.Error("Failed to create producer", "error", err)
		return
	}
	s.controller.SetProducer(prod)
	s.conf.Producer = conf.Producer
}

func (s *App) shutdown() {
	if s.viewer != nil {
		s.viewer.Stop()
	}
	if s.bus != nil {
		if err := s.bus.Close(); err != nil {
			slog.Error("Failed to close SPI bus", "error", err)
		}
	}
	if err := logging.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close logging: %v\n", err)
	}
}
