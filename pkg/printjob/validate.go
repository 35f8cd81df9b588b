package printjob

import "fmt"

// MaxLines caps how many lines a single job may carry. Deserialized requests
// are bounded before any composing happens.
const MaxLines = 500

// Validate validates a PrintInfo structure
func Validate(p *PrintInfo) error {
	if p.VID == 0 {
		return fmt.Errorf("vid is required")
	}
	if p.PID == 0 {
		return fmt.Errorf("pid is required")
	}

	if len(p.Lines) > MaxLines {
		return fmt.Errorf("too many lines: %d (max %d)", len(p.Lines), MaxLines)
	}

	for i, line := range p.Lines {
		if err := validateLine(&line); err != nil {
			return fmt.Errorf("line[%d]: %w", i, err)
		}
	}

	return nil
}

func validateLine(line *Line) error {
	if line.BarcodeFormat != "" && line.Barcode == "" {
		return fmt.Errorf("barcode_format '%s' used without barcode", line.BarcodeFormat)
	}

	if line.BarcodeFormat != "" {
		validFormats := []string{"CODE128", "CODE39", "EAN13", "EAN8"}
		valid := false
		for _, f := range validFormats {
			if line.BarcodeFormat == f {
				valid = true
				break
			}
		}
		if !valid {
			return fmt.Errorf("invalid barcode_format '%s' (must be CODE128, CODE39, EAN13, or EAN8)", line.BarcodeFormat)
		}
	}

	return nil
}
