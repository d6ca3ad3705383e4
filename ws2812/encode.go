package ws2812

import (
	"errors"
	"fmt"
	"iter"
	"time"

	"periph.io/x/conn/v3/physic"
)

const (
	// BytesPerChannel is the number of SPI bytes one 8 bit channel expands to.
	BytesPerChannel = 4
	// BytesPerLed is the number of SPI bytes used by one LED.
	BytesPerLed = 3 * BytesPerChannel

	// DefaultResetLen is the length of the zero run that terminates a frame.
	// At 3.2MHz it keeps the line low for 350µs.
	DefaultResetLen = 140

	// Frequency is the SPI clock the pattern table is timed for.
	Frequency = 3200 * physic.KiloHertz
)

// patterns maps a 2 bit symbol to the SPI byte sending it. Each nibble is
// one strip bit, 1000 for a "0" and 1110 for a "1".
var patterns = [4]byte{0b1000_1000, 0b1000_1110, 0b1110_1000, 0b1110_1110}

var (
	errLength  = errors.New("ws2812: encoded length is not a multiple of 12")
	errPattern = errors.New("ws2812: byte is not a symbol pattern")
)

// Pattern returns the SPI byte for the low two bits of symbol.
func Pattern(symbol uint8) byte {
	return patterns[symbol&0b11]
}

// encodeChannel writes the four pattern bytes for v into dst, most
// significant pair first.
func encodeChannel(dst []byte, v uint8) {
	for i := range BytesPerChannel {
		dst[i] = patterns[v>>6]
		v <<= 2
	}
}

// Encode expands seq into dst, 12 bytes per LED, and returns the number of
// LEDs written. Colors that do not fit into dst are not consumed. Bytes of
// dst past the last written LED are left untouched.
func Encode(dst []byte, seq iter.Seq[Color]) int {
	limit := len(dst) / BytesPerLed
	if limit == 0 {
		return 0
	}
	n := 0
	for c := range seq {
		led := dst[n*BytesPerLed : (n+1)*BytesPerLed]
		encodeChannel(led[0:4], c.R)
		encodeChannel(led[4:8], c.G)
		encodeChannel(led[8:12], c.B)
		n++
		if n == limit {
			break
		}
	}
	return n
}

func decodeChannel(src []byte) (uint8, error) {
	var v uint8
	for i, b := range src {
		sym := -1
		for s, p := range patterns {
			if p == b {
				sym = s
				break
			}
		}
		if sym < 0 {
			return 0, fmt.Errorf("%w: 0x%02x at offset %d", errPattern, b, i)
		}
		v = v<<2 | uint8(sym)
	}
	return v, nil
}

// Decode is the inverse of Encode. It fails on a byte that is not one of
// the four patterns.
func Decode(src []byte) ([]Color, error) {
	if len(src)%BytesPerLed != 0 {
		return nil, errLength
	}
	out := make([]Color, len(src)/BytesPerLed)
	for i := range out {
		led := src[i*BytesPerLed : (i+1)*BytesPerLed]
		var ch [3]uint8
		for j := range ch {
			v, err := decodeChannel(led[j*BytesPerChannel : (j+1)*BytesPerChannel])
			if err != nil {
				return nil, fmt.Errorf("led %d: %w", i, err)
			}
			ch[j] = v
		}
		out[i] = Color{R: ch[0], G: ch[1], B: ch[2]}
	}
	return out, nil
}

// ResetLen returns the number of zero bytes that keep the data line low
// for at least d at the SPI clock freq.
func ResetLen(freq physic.Frequency, d time.Duration) int {
	if freq <= 0 || d <= 0 {
		return 0
	}
	hz := int64(freq / physic.Hertz)
	// Whole seconds first, so long durations cannot overflow.
	secs, frac := int64(d/time.Second), int64(d%time.Second)
	bits := hz*secs + (hz*frac+int64(time.Second)-1)/int64(time.Second)
	return int((bits + 7) / 8)
}
