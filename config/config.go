package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const CONFILE = "config.yml"

// maxResetTime bounds the latch time, a strip needs a few hundred µs.
const maxResetTime = time.Second

const (
	LibraryPeriph = "periph.io"
	LibraryRpio   = "rpio"

	ProducerSolid      = "solid"
	ProducerCylon      = "cylon"
	ProducerNightlight = "nightlight"
	ProducerClock      = "clock"
)

// Config is the complete content of the configuration file.
type Config struct {
	Hardware HardwareConfig `yaml:"Hardware"`
	Display  DisplayConfig  `yaml:"Display"`
	Producer ProducerConfig `yaml:"Producer"`
	Logging  LoggingConfig  `yaml:"Logging"`
}

// HardwareConfig describes the SPI bus and the strip attached to it.
type HardwareConfig struct {
	// Library selects the GPIO/SPI library used with real hardware.
	Library      string `yaml:"Library"`
	SPIDevice    string `yaml:"SPIDevice"`
	SPIFrequency int    `yaml:"SPIFrequency"`
	LedsTotal    int    `yaml:"LedsTotal"`
	// IdleHigh adds a reset run before each frame for boards whose MOSI
	// line idles high.
	IdleHigh bool `yaml:"IdleHigh"`
	// ResetTime is the minimum latch time. Zero keeps the 140 byte default.
	ResetTime time.Duration `yaml:"ResetTime"`
}

type DisplayConfig struct {
	FPS       int  `yaml:"FPS"`
	SyncWrite bool `yaml:"SyncWrite"`
}

type ProducerConfig struct {
	Type      string    `yaml:"Type"`
	LedRGB    []float64 `yaml:"LedRGB"`
	Step      float64   `yaml:"Step"`
	Width     int       `yaml:"Width"`
	Latitude  float64   `yaml:"Latitude"`
	Longitude float64   `yaml:"Longitude"`
	// LedHour and LedMinute color the two hands of the clock producer.
	LedHour   []float64 `yaml:"LedHour"`
	LedMinute []float64 `yaml:"LedMinute"`
}

type LoggingConfig struct {
	Level  string `yaml:"Level"`
	Format string `yaml:"Format"`
	File   string `yaml:"File"`
}

// ReadConfig reads, decodes and validates the configuration file cfile.
func ReadConfig(cfile string) (*Config, error) {
	f, err := os.Open(cfile)
	if err != nil {
		return nil, fmt.Errorf("can't open config file %s: %w", cfile, err)
	}
	defer f.Close()

	conf := defaults()
	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	if err := decoder.Decode(conf); err != nil {
		return nil, fmt.Errorf("can't decode config file %s: %w", cfile, err)
	}
	if err := conf.validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", cfile, err)
	}
	return conf, nil
}

func defaults() *Config {
	return &Config{
		Hardware: HardwareConfig{
			Library:      LibraryPeriph,
			SPIDevice:    "/dev/spidev0.0",
			SPIFrequency: 3200000,
		},
		Display: DisplayConfig{
			FPS:       30,
			SyncWrite: true,
		},
		Producer: ProducerConfig{
			Type:      ProducerSolid,
			LedRGB:    []float64{255, 255, 255},
			Step:      1,
			Width:     4,
			LedHour:   []float64{255, 0, 0},
			LedMinute: []float64{0, 0, 255},
		},
		Logging: LoggingConfig{
			Level:  "INFO",
			Format: "text",
		},
	}
}

func (c *Config) validate() error {
	hw := c.Hardware
	switch hw.Library {
	case LibraryPeriph, LibraryRpio:
	default:
		return fmt.Errorf("Hardware.Library %q must be %q or %q", hw.Library, LibraryPeriph, LibraryRpio)
	}
	if hw.Library == LibraryPeriph && hw.SPIDevice == "" {
		return fmt.Errorf("Hardware.SPIDevice is required for %s", LibraryPeriph)
	}
	if hw.LedsTotal <= 0 {
		return fmt.Errorf("Hardware.LedsTotal must be positive, got %d", hw.LedsTotal)
	}
	if hw.SPIFrequency < 2400000 || hw.SPIFrequency > 4000000 {
		return fmt.Errorf("Hardware.SPIFrequency %d must be between 2400000 and 4000000", hw.SPIFrequency)
	}
	if hw.ResetTime < 0 || hw.ResetTime > maxResetTime {
		return fmt.Errorf("Hardware.ResetTime must be between 0 and %s, got %s", maxResetTime, hw.ResetTime)
	}

	if c.Display.FPS < 1 || c.Display.FPS > 200 {
		return fmt.Errorf("Display.FPS must be between 1 and 200, got %d", c.Display.FPS)
	}

	if err := c.Producer.validate(); err != nil {
		return err
	}

	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("Logging.Format %q must be text or json", c.Logging.Format)
	}
	return nil
}

func (p ProducerConfig) validate() error {
	switch p.Type {
	case ProducerSolid, ProducerNightlight:
	case ProducerClock:
		if err := validateRGB("Producer.LedHour", p.LedHour); err != nil {
			return err
		}
		if err := validateRGB("Producer.LedMinute", p.LedMinute); err != nil {
			return err
		}
	case ProducerCylon:
		if p.Width < 1 {
			return fmt.Errorf("Producer.Width must be at least 1, got %d", p.Width)
		}
		if p.Step <= 0 {
			return fmt.Errorf("Producer.Step must be positive, got %g", p.Step)
		}
	default:
		return fmt.Errorf("unknown Producer.Type %q", p.Type)
	}
	if err := validateRGB("Producer.LedRGB", p.LedRGB); err != nil {
		return err
	}
	if p.Type == ProducerNightlight {
		if p.Latitude < -90 || p.Latitude > 90 {
			return fmt.Errorf("Producer.Latitude %g must be between -90 and 90", p.Latitude)
		}
		if p.Longitude < -180 || p.Longitude > 180 {
			return fmt.Errorf("Producer.Longitude %g must be between -180 and 180", p.Longitude)
		}
	}
	return nil
}

func validateRGB(name string, rgb []float64) error {
	if len(rgb) != 3 {
		return fmt.Errorf("%s must have 3 components, got %d", name, len(rgb))
	}
	for i, v := range rgb {
		if v < 0 || v > 255 {
			return fmt.Errorf("%s[%d] = %g must be between 0 and 255", name, i, v)
		}
	}
	return nil
}
