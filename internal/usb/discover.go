package usb

import (
	"fmt"

	"github.com/google/gousb"
)

// DeviceInfo describes one attached USB device.
type DeviceInfo struct {
	VID         uint16 `json:"vid"`
	PID         uint16 `json:"pid"`
	Description string `json:"description"`
}

// Discover lists every attached USB device. Descriptions include manufacturer
// and product strings when the device reports them.
func Discover() ([]DeviceInfo, error) {
	ctx := gousb.NewContext()
	defer ctx.Close()

	devices, err := ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		// Accept all devices - matching happens per job
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate USB devices: %w", err)
	}

	var infos []DeviceInfo
	for _, dev := range devices {
		desc := dev.Desc

		manufacturer, _ := dev.Manufacturer()
		product, _ := dev.Product()

		description := fmt.Sprintf("USB: %04X:%04X", uint16(desc.Vendor), uint16(desc.Product))
		if manufacturer != "" || product != "" {
			description = fmt.Sprintf("USB: %s %s (%04X:%04X)",
				manufacturer, product, uint16(desc.Vendor), uint16(desc.Product))
		}

		infos = append(infos, DeviceInfo{
			VID:         uint16(desc.Vendor),
			PID:         uint16(desc.Product),
			Description: description,
		})
		dev.Close()
	}

	return infos, nil
}
