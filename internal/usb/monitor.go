package usb

import (
	"context"
	"log"
	"time"
)

// Monitor polls the bus and reports devices appearing or disappearing.
type Monitor struct {
	interval  time.Duration
	discover  func() ([]DeviceInfo, error)
	ctx       context.Context
	cancel    context.CancelFunc
	onAdded   func(DeviceInfo)
	onRemoved func(DeviceInfo)
}

// NewMonitor creates a monitor that rescans the bus every interval.
func NewMonitor(interval time.Duration) *Monitor {
	ctx, cancel := context.WithCancel(context.Background())

	return &Monitor{
		interval: interval,
		discover: Discover,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// OnAdded sets a callback for newly attached devices
func (m *Monitor) OnAdded(callback func(DeviceInfo)) {
	m.onAdded = callback
}

// OnRemoved sets a callback for detached devices
func (m *Monitor) OnRemoved(callback func(DeviceInfo)) {
	m.onRemoved = callback
}

// Start begins watching for device changes
func (m *Monitor) Start() {
	previous := make(map[deviceKey]DeviceInfo)

	go func() {
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		for {
			select {
			case <-m.ctx.Done():
				return
			case <-ticker.C:
				m.checkChanges(previous)
			}
		}
	}()
}

// Stop stops the monitor
func (m *Monitor) Stop() {
	m.cancel()
}

func (m *Monitor) checkChanges(previous map[deviceKey]DeviceInfo) {
	devices, err := m.discover()
	if err != nil {
		log.Printf("Warning: device scan failed: %v", err)
		return
	}

	current := make(map[deviceKey]DeviceInfo, len(devices))
	for _, d := range devices {
		current[deviceKey{vid: d.VID, pid: d.PID}] = d
	}

	for key, dev := range current {
		if _, exists := previous[key]; !exists {
			if m.onAdded != nil {
				m.onAdded(dev)
			}
		}
	}

	for key, dev := range previous {
		if _, exists := current[key]; !exists {
			if m.onRemoved != nil {
				m.onRemoved(dev)
			}
		}
	}

	for key := range previous {
		delete(previous, key)
	}
	for key, dev := range current {
		previous[key] = dev
	}
}
