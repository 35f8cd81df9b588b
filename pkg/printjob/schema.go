// Package printjob defines the wire types for a print job
package printjob

// Line is one printable line with its formatting and optional embedded codes.
// A line with empty text and no code still participates in formatting.
type Line struct {
	Text          string `json:"text"`
	Center        bool   `json:"center"`
	Bold          bool   `json:"bold"`
	DoubleSize    bool   `json:"double_size"`
	QR            string `json:"qr,omitempty"`
	Barcode       string `json:"barcode,omitempty"`
	BarcodeFormat string `json:"barcode_format,omitempty"` // CODE128, CODE39, EAN13, EAN8
}

// PrintInfo is a full print job. Lines is the print order.
type PrintInfo struct {
	Name  string `json:"name"`
	VID   uint16 `json:"vid"`
	PID   uint16 `json:"pid"`
	Lines []Line `json:"lines"`
}
