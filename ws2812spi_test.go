package main

import (
	"context"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lautenbacher.net/ws2812spi/bus"
	"lautenbacher.net/ws2812spi/config"
	"lautenbacher.net/ws2812spi/controller"
	"lautenbacher.net/ws2812spi/producer"
	"lautenbacher.net/ws2812spi/ws2812"
)

const testConfig = `
Hardware:
  LedsTotal: 3
Display:
  FPS: 100
  SyncWrite: true
Producer:
  Type: solid
  LedRGB: [0, 0, 255]
`

func TestStripOpts(t *testing.T) {
	opts := stripOpts(config.HardwareConfig{LedsTotal: 60, IdleHigh: true, SPIFrequency: 3200000})
	assert.Equal(t, ws2812.Opts{NumPixels: 60, IdleHigh: true, ResetLen: ws2812.DefaultResetLen}, *opts)

	opts = stripOpts(config.HardwareConfig{LedsTotal: 60, SPIFrequency: 3200000, ResetTime: 300 * time.Microsecond})
	assert.Equal(t, 120, opts.ResetLen)
}

func TestByteTime(t *testing.T) {
	assert.Equal(t, 2500*time.Nanosecond, byteTime(3200000))
	assert.Equal(t, time.Duration(0), byteTime(0))
}

func newTestApp(t *testing.T) (*App, *bus.Sim) {
	t.Helper()
	cfile := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(cfile, []byte(testConfig), 0o644))
	conf, err := config.ReadConfig(cfile)
	require.NoError(t, err)

	app := NewApp(make(chan os.Signal, 2))
	app.cfile = cfile
	app.conf = conf
	app.sim = bus.NewSim(16, 0)
	app.bus = app.sim
	app.strip, err = ws2812.New(app.bus, stripOpts(conf.Hardware))
	require.NoError(t, err)
	app.controller = controller.NewController(app.strip, conf.Display, producer.NewSolid(ws2812.Color{R: 255}))
	return app, app.sim
}

func TestReload(t *testing.T) {
	app, sim := newTestApp(t)
	conf := *app.conf
	conf.Producer.LedRGB = []float64{0, 255, 0}
	app.reload(&conf)

	app.controller.Frame(context.Background())
	frame, _ := sim.Frames().Value()
	green := ws2812.Color{G: 255}
	assert.Equal(t, []ws2812.Color{green, green, green}, frame)
	assert.Equal(t, []float64{0, 255, 0}, app.conf.Producer.LedRGB)
}

func TestReload_InvalidProducerKeepsOld(t *testing.T) {
	app, sim := newTestApp(t)
	conf := *app.conf
	conf.Producer.Type = "rainbow"
	app.reload(&conf)

	app.controller.Frame(context.Background())
	frame, _ := sim.Frames().Value()
	red := ws2812.Color{R: 255}
	assert.Equal(t, []ws2812.Color{red, red, red}, frame)
}

func TestRun_HangupAndInterrupt(t *testing.T) {
	app, sim := newTestApp(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app.ossignal <- syscall.SIGHUP
	done := make(chan struct{})
	go func() {
		app.run(ctx, cancel)
		close(done)
	}()

	blue := ws2812.Color{B: 255}
	assert.Eventually(t, func() bool {
		frame, _ := sim.Frames().Value()
		return len(frame) == 3 && frame[0] == blue
	}, time.Second, 5*time.Millisecond)

	app.ossignal <- os.Interrupt
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("run did not return")
	}
	frame, _ := sim.Frames().Value()
	assert.Equal(t, make([]ws2812.Color, 3), frame)
}
