// Package escpos composes ESC/POS command streams for thermal receipt printers
package escpos

import (
	"bytes"
)

// ESC/POS control bytes
const (
	ESC byte = 0x1B
	GS  byte = 0x1D
	LF  byte = 0x0A
)

// Encoder accumulates ESC/POS commands in a buffer
type Encoder struct {
	buffer *bytes.Buffer
}

// NewEncoder creates a new ESC/POS encoder
func NewEncoder() *Encoder {
	return &Encoder{
		buffer: new(bytes.Buffer),
	}
}

// Initialize resets the printer to its power-on state
func (e *Encoder) Initialize() {
	e.buffer.Write([]byte{ESC, '@'})
}

// SetCenter selects centered (true) or left (false) alignment
func (e *Encoder) SetCenter(centered bool) {
	e.buffer.Write([]byte{ESC, 'a', flag(centered)})
}

// SetBold enables or disables emphasized printing
func (e *Encoder) SetBold(enabled bool) {
	e.buffer.Write([]byte{ESC, 'E', flag(enabled)})
}

// SetDoubleSize selects double width and height (true) or normal size (false)
func (e *Encoder) SetDoubleSize(enabled bool) {
	size := byte(0x00)
	if enabled {
		size = 0x11
	}
	e.buffer.Write([]byte{GS, '!', size})
}

// Text writes raw text bytes
func (e *Encoder) Text(text string) {
	e.buffer.WriteString(text)
}

// LineFeed advances the paper one line
func (e *Encoder) LineFeed() {
	e.buffer.WriteByte(LF)
}

// ResetFormatting returns bold, size and alignment to their defaults,
// independent of whatever the last line selected
func (e *Encoder) ResetFormatting() {
	e.SetBold(false)
	e.SetDoubleSize(false)
	e.SetCenter(false)
}

// FeedAndCut advances the paper clear of the blade, then performs a full cut
func (e *Encoder) FeedAndCut() {
	e.buffer.Write([]byte{ESC, 'd', 3})
	e.buffer.Write([]byte{GS, 'V', 0})
}

// Bytes returns the accumulated command stream
func (e *Encoder) Bytes() []byte {
	return e.buffer.Bytes()
}

func flag(on bool) byte {
	if on {
		return 1
	}
	return 0
}
