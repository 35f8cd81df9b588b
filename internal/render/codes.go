// Package render generates the raster artwork embedded in receipts
package render

import (
	"errors"
	"fmt"
	"image"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/boombuler/barcode/code39"
	"github.com/boombuler/barcode/ean"
	"github.com/disintegration/imaging"
	"github.com/skip2/go-qrcode"
)

// ErrEncode reports a payload the code generators cannot represent.
var ErrEncode = errors.New("unencodable payload")

// QRCanvas is the fixed square edge, in dots, that QR symbols are printed at.
const QRCanvas = 200

// Barcode target size in dots.
const (
	barcodeWidth  = 360
	barcodeHeight = 120
)

// QR encodes data into a QR symbol at medium error correction.
func QR(data string) (image.Image, error) {
	qr, err := qrcode.New(data, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}

	return qr.Image(QRCanvas), nil
}

// PrepareQR forces img onto the fixed QRCanvas square. Nearest-neighbor
// sampling keeps module edges hard so the raster threshold stays clean.
func PrepareQR(img image.Image) image.Image {
	return imaging.Resize(img, QRCanvas, QRCanvas, imaging.NearestNeighbor)
}

// Barcode encodes value in the given symbology and scales it to the
// printable size. An empty format selects CODE128.
func Barcode(value, format string) (image.Image, error) {
	var bc barcode.Barcode
	var err error

	switch format {
	case "", "CODE128":
		bc, err = code128.Encode(value)
	case "CODE39":
		bc, err = code39.Encode(value, false, false)
	case "EAN13", "EAN8":
		bc, err = ean.Encode(value)
	default:
		return nil, fmt.Errorf("%w: unknown barcode format '%s'", ErrEncode, format)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}

	scaled, err := barcode.Scale(bc, barcodeWidth, barcodeHeight)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}

	return scaled, nil
}
