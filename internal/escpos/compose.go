package escpos

import (
	"github.com/printdesk/print-agent/internal/render"
	"github.com/printdesk/print-agent/pkg/printjob"
)

// Compose turns an ordered sequence of lines into one complete ESC/POS job.
// The output is a function of lines alone: identical input always yields
// byte-identical output. Alignment, bold and size are emitted for every line
// so each line's formatting stands on its own regardless of what came before.
func Compose(lines []printjob.Line) ([]byte, error) {
	e := NewEncoder()
	e.Initialize()

	for _, line := range lines {
		e.SetCenter(line.Center)
		e.SetBold(line.Bold)
		e.SetDoubleSize(line.DoubleSize)

		if line.Text != "" {
			e.Text(line.Text)
			e.LineFeed()
		}

		if line.QR != "" {
			img, err := render.QR(line.QR)
			if err != nil {
				return nil, err
			}
			e.Raster(render.PrepareQR(img))
			e.LineFeed()
		}

		if line.Barcode != "" {
			img, err := render.Barcode(line.Barcode, line.BarcodeFormat)
			if err != nil {
				return nil, err
			}
			e.Raster(img)
			e.LineFeed()
		}
	}

	e.ResetFormatting()
	e.FeedAndCut()

	return e.Bytes(), nil
}
