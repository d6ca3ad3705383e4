// Package ws2812 drives WS2812, WS2812b and compatible LED strings over a
// plain SPI bus.
//
// The strip's one-wire protocol encodes every bit as a high pulse of
// either ~0.4µs ("0") or ~0.8µs ("1") within a ~1.25µs slot. With the SPI
// clock at 3.2MHz four SPI bits last 1.25µs, so the nibble 1000 produces a
// "0" and the nibble 1110 a "1". Every SPI byte therefore carries two strip
// bits and every 8 bit channel needs four bytes.
//
// A frame is the encoded colors followed by a run of zero bytes long
// enough for the strip to latch. Some SPI controllers only have a one byte
// transmit FIFO; Strip.Write keeps a single filler byte in flight around
// the payload so back to back writes cannot overrun it.
//
// Datasheet
//
// https://github.com/cpldcpu/light_ws2812/tree/master/Datasheets
package ws2812
