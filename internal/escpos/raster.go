package escpos

import (
	"image"
	"image/color"
)

// inkThreshold splits 8-bit grayscale into ink and paper.
const inkThreshold = 128

// Raster emits a GS v 0 raster image command for img. Pixels darker than the
// threshold become ink bits, packed row-major, most significant bit first.
// Unused trailing bits in the last byte of a row stay 0.
func (e *Encoder) Raster(img image.Image) {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	widthBytes := (width + 7) / 8

	e.buffer.Write([]byte{GS, 'v', '0', 0})
	e.buffer.WriteByte(byte(widthBytes & 0xFF))
	e.buffer.WriteByte(byte((widthBytes >> 8) & 0xFF))
	e.buffer.WriteByte(byte(height & 0xFF))
	e.buffer.WriteByte(byte((height >> 8) & 0xFF))

	for y := 0; y < height; y++ {
		for xb := 0; xb < widthBytes; xb++ {
			var b byte
			for bit := 0; bit < 8; bit++ {
				x := xb*8 + bit
				if x >= width {
					break
				}

				px := img.At(bounds.Min.X+x, bounds.Min.Y+y)
				gray := color.GrayModel.Convert(px).(color.Gray)
				if gray.Y < inkThreshold {
					b |= 1 << (7 - bit)
				}
			}
			e.buffer.WriteByte(b)
		}
	}
}
