package escpos

import (
	"bytes"
	"image"
	"image/color"
	"testing"
)

// grayImage builds a width x height grayscale image filled with level.
func grayImage(width, height int, level uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for i := range img.Pix {
		img.Pix[i] = level
	}
	return img
}

func TestRaster_Header(t *testing.T) {
	e := NewEncoder()
	e.Raster(grayImage(200, 200, 255))

	data := e.Bytes()
	expected := []byte{0x1D, 0x76, 0x30, 0x00, 25, 0, 200, 0}
	if !bytes.Equal(data[:8], expected) {
		t.Errorf("Header mismatch:\n got  %X\n want %X", data[:8], expected)
	}

	if len(data) != 8+25*200 {
		t.Errorf("Expected %d packed bytes, got %d", 25*200, len(data)-8)
	}
}

func TestRaster_WhiteIsNotInk(t *testing.T) {
	e := NewEncoder()
	e.Raster(grayImage(8, 2, 255))

	data := e.Bytes()
	for i, b := range data[8:] {
		if b != 0 {
			t.Errorf("Row byte %d should be 0 for white input, got %02X", i, b)
		}
	}
}

func TestRaster_TrailingBitsZero(t *testing.T) {
	// 10 px wide, all black: second byte of each row may only carry the two
	// high-order bits, the six unused trailing bits must stay 0
	e := NewEncoder()
	e.Raster(grayImage(10, 3, 0))

	data := e.Bytes()
	packed := data[8:]
	widthBytes := 2
	if len(packed) != widthBytes*3 {
		t.Fatalf("Expected %d packed bytes, got %d", widthBytes*3, len(packed))
	}

	for y := 0; y < 3; y++ {
		first := packed[y*widthBytes]
		last := packed[y*widthBytes+1]
		if first != 0xFF {
			t.Errorf("Row %d first byte: got %02X, want FF", y, first)
		}
		if last != 0xC0 {
			t.Errorf("Row %d last byte: got %02X, want C0 (trailing bits clear)", y, last)
		}
	}
}

func TestRaster_ThresholdBoundary(t *testing.T) {
	// 127 is ink, 128 is paper
	e := NewEncoder()
	e.Raster(grayImage(8, 1, 127))
	if ink := e.Bytes()[8]; ink != 0xFF {
		t.Errorf("Intensity 127 should be ink, got %02X", ink)
	}

	e = NewEncoder()
	e.Raster(grayImage(8, 1, 128))
	if paper := e.Bytes()[8]; paper != 0x00 {
		t.Errorf("Intensity 128 should be paper, got %02X", paper)
	}
}

func TestRaster_MSBFirst(t *testing.T) {
	// Single black pixel at x=0 sets only bit 7
	img := image.NewGray(image.Rect(0, 0, 8, 1))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	img.SetGray(0, 0, color.Gray{Y: 0})

	e := NewEncoder()
	e.Raster(img)
	if b := e.Bytes()[8]; b != 0x80 {
		t.Errorf("Expected 80 (MSB first), got %02X", b)
	}
}
