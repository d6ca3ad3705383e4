package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strings"
	"sync"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"lautenbacher.net/ws2812spi/bus"
	"lautenbacher.net/ws2812spi/logging"
	"lautenbacher.net/ws2812spi/ws2812"
)

const rowWidth = 75

var errInjected = errors.New("injected transport failure")

// Viewer previews the frames a simulated bus receives.
type Viewer struct {
	tviewapp     *tview.Application
	intro        *tview.TextView
	ledDisplay   *tview.TextView
	logView      *tview.TextView
	sim          *bus.Sim
	ossignalChan chan<- os.Signal
	failing      bool
	logFlushOnce sync.Once
	readyChan    chan struct{}
}

func NewViewer(sim *bus.Sim, ossignalChan chan<- os.Signal) *Viewer {
	return &Viewer{
		sim:          sim,
		ossignalChan: ossignalChan,
		readyChan:    make(chan struct{}),
	}
}

// Ready is closed once the first screen is drawn and logging goes to the
// log pane.
func (s *Viewer) Ready() <-chan struct{} {
	return s.readyChan
}

// Start builds the screen and runs it until Stop is called. Frames are
// picked up from the simulator until ctx is done.
func (s *Viewer) Start(ctx context.Context, ledsTotal int) {
	s.initTUI(ledsTotal)
	go s.frameReader(ctx)
	go func() {
		if err := s.tviewapp.Run(); err != nil {
			slog.Error("Error running TUI", "error", err)
			s.signal(os.Interrupt)
		}
	}()
}

// Stop ends the TUI and buffers log output again until logging is closed.
func (s *Viewer) Stop() {
	logging.Hold()
	if s.tviewapp != nil {
		s.tviewapp.Stop()
	}
}

func (s *Viewer) frameReader(ctx context.Context) {
	frames := s.sim.Frames()
	for {
		select {
		case <-ctx.Done():
			return
		case <-frames.Channel():
			frame, _ := frames.Value()
			text := renderLeds(frame)
			stats := s.sim.Stats()
			s.tviewapp.QueueUpdateDraw(func() {
				s.ledDisplay.SetText(text)
				s.intro.SetText(introText(stats, s.failing))
			})
		}
	}
}

func introText(stats bus.Stats, failing bool) string {
	state := "[green]ok[-]"
	if failing {
		state = "[red]failing[-]"
	}
	line1 := fmt.Sprintf("Frames: [#ffff00]%-6d[-] Resets: [#ffff00]%-6d[-] Errors: [#ffff00]%-6d[-] Bus: %s",
		stats.Frames, stats.Resets, stats.Errors, state)
	line2 := "Hit [#ff0000]f[-] to toggle a transport failure"
	line3 := "Hit [#ff0000]q[-] to exit, [#ff0000]r[-] to reload, [#ff0000]Up/Down[-] to scroll logs"
	return fmt.Sprintf("%s\n%s\n%s", line1, line2, line3)
}

func (s *Viewer) initTUI(ledsTotal int) {
	s.tviewapp = tview.NewApplication()

	s.intro = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	s.intro.SetText(introText(bus.Stats{}, false))
	s.intro.SetBorder(true).SetTitle(" WS2812 SPI Simulation ").SetTitleColor(tcell.ColorLightBlue)
	s.intro.SetBackgroundColor(tcell.NewRGBColor(20, 20, 20))

	s.ledDisplay = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)
	s.ledDisplay.SetBorder(true)
	s.ledDisplay.SetBackgroundColor(tcell.NewRGBColor(30, 30, 30))

	s.logView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetChangedFunc(func() {
			s.logView.ScrollToEnd()
			s.tviewapp.Draw()
		})
	s.logView.SetBorder(true).SetTitle(" Logs ").SetTitleColor(tcell.ColorLightBlue)
	s.logView.SetBackgroundColor(tcell.NewRGBColor(40, 40, 40))

	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(s.intro, 5, 0, false).
		AddItem(s.ledDisplay, displayHeight(ledsTotal), 0, false).
		AddItem(s.logView, 0, 1, true)

	s.tviewapp.SetAfterDrawFunc(func(screen tcell.Screen) {
		s.logFlushOnce.Do(func() {
			if err := logging.Attach(tview.ANSIWriter(s.logView)); err != nil {
				slog.Error("Failed to attach log view", "error", err)
			}
			close(s.readyChan)
		})
	})

	s.tviewapp.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyCtrlC:
			s.signal(os.Interrupt)
			return nil
		case tcell.KeyRune:
			switch event.Rune() {
			case 'q', 'Q':
				s.signal(os.Interrupt)
				return nil
			case 'r', 'R':
				s.signal(syscall.SIGHUP)
				return nil
			case 'f', 'F':
				s.toggleFailure()
				return nil
			}
		case tcell.KeyUp:
			row, col := s.logView.GetScrollOffset()
			s.logView.ScrollTo(row-1, col)
			return nil
		case tcell.KeyDown:
			row, col := s.logView.GetScrollOffset()
			s.logView.ScrollTo(row+1, col)
			return nil
		}
		return event
	})

	s.tviewapp.SetRoot(layout, true)
}

// signal never blocks the TUI; a signal already waiting is enough.
func (s *Viewer) signal(sig os.Signal) {
	select {
	case s.ossignalChan <- sig:
	default:
	}
}

// toggleFailure runs on the TUI goroutine.
func (s *Viewer) toggleFailure() {
	s.failing = !s.failing
	if s.failing {
		slog.Warn("Injecting transport failure")
		s.sim.FailWrites(errInjected)
	} else {
		slog.Info("Transport healed")
		s.sim.FailWrites(nil)
	}
	s.intro.SetText(introText(s.sim.Stats(), s.failing))
}

// displayHeight is two text lines per row of LEDs, a blank line between
// rows and the border.
func displayHeight(ledsTotal int) int {
	rows := max(1, (ledsTotal+rowWidth-1)/rowWidth)
	return rows*3 - 1 + 2
}

// renderLeds draws every LED as a two character high bar whose height
// follows its brightness, wrapped after rowWidth LEDs.
func renderLeds(leds []ws2812.Color) string {
	var buf strings.Builder
	for start := 0; start < len(leds); start += rowWidth {
		row := leds[start:min(start+rowWidth, len(leds))]
		top, bottom := renderRow(row)
		if start > 0 {
			buf.WriteString("\n\n")
		}
		buf.WriteString(" ")
		buf.WriteString(top)
		buf.WriteString("\n ")
		buf.WriteString(bottom)
	}
	return buf.String()
}

var blocks = []string{" ", "▁", "▂", "▃", "▄", "▅", "▆", "▇", "█"}

func renderRow(leds []ws2812.Color) (string, string) {
	var buf1, buf2 strings.Builder
	buf1.Grow(len(leds) * (len("[-][#000000]") + 3))
	buf2.Grow(len(leds) * (len("[-][#000000]") + 3))

	for _, v := range leds {
		if v.IsBlack() {
			buf1.WriteString(" ")
			buf2.WriteString(" ")
			continue
		}
		topChar, bottomChar := barChars(v)
		colorStr := scaledColor(v)
		buf1.WriteString(colorStr + topChar + "[-]")
		buf2.WriteString(colorStr + bottomChar + "[-]")
	}
	return buf1.String(), buf2.String()
}

// barChars maps the mean channel value to one of 16 bar heights spread over
// two lines. Any lit LED shows at least the lowest bar.
func barChars(c ws2812.Color) (string, string) {
	value := (float64(c.R) + float64(c.G) + float64(c.B)) / 3
	level := max(1, int(math.Round(value*16/255)))
	return blocks[max(level-8, 0)], blocks[min(level, 8)]
}

// scaledColor stretches c to full brightness so that dim LEDs keep their hue
// on screen.
func scaledColor(c ws2812.Color) string {
	maxColor := max(c.R, c.G, c.B)
	if maxColor == 0 {
		return "[#000000]"
	}
	factor := 255 / float64(maxColor)
	scale := func(v uint8) byte {
		return byte(math.Min(math.Round(float64(v)*factor), 255))
	}
	return fmt.Sprintf("[#%02x%02x%02x]", scale(c.R), scale(c.G), scale(c.B))
}
