// Package registry manages persistent printer IDs and custom names
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"

	"github.com/printdesk/print-agent/internal/usb"
)

// Registry maps USB printer identities to stable IDs and user-set names
type Registry struct {
	filePath string
	data     map[string]*Entry
	mu       sync.RWMutex
}

// Entry stores persistent information about a printer
type Entry struct {
	ID          string `json:"id"`
	IdentityKey string `json:"identity_key"`
	VID         uint16 `json:"vid"`
	PID         uint16 `json:"pid"`
	Description string `json:"description"`
	Name        string `json:"name,omitempty"` // Custom user-set name
}

// New creates a new Registry backed by filePath
func New(filePath string) (*Registry, error) {
	r := &Registry{
		filePath: filePath,
		data:     make(map[string]*Entry),
	}

	if err := r.load(); err != nil {
		// Missing file is fine - it is created on first save
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load registry: %w", err)
		}
	}

	return r, nil
}

// PrinterID gets or creates a stable ID for a detected device
func (r *Registry) PrinterID(dev usb.DeviceInfo) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := identityKey(dev.VID, dev.PID)

	if entry, exists := r.data[key]; exists {
		return entry.ID
	}

	entry := &Entry{
		ID:          uuid.New().String(),
		IdentityKey: key,
		VID:         dev.VID,
		PID:         dev.PID,
		Description: dev.Description,
	}
	r.data[key] = entry

	// Save failure is non-critical: the ID is still handed out and the next
	// mutation retries the write.
	_ = r.save()

	return entry.ID
}

// PrinterName returns the custom name for a printer, or "" if unset
func (r *Registry) PrinterName(printerID string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, entry := range r.data {
		if entry.ID == printerID {
			return entry.Name
		}
	}
	return ""
}

// SetPrinterName stores a custom name for a printer
func (r *Registry) SetPrinterName(printerID string, name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, entry := range r.data {
		if entry.ID == printerID {
			entry.Name = name
			_ = r.save()
			return true
		}
	}
	return false
}

// Lookup returns a copy of the stored entry for a printer, or nil
func (r *Registry) Lookup(printerID string) *Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, entry := range r.data {
		if entry.ID == printerID {
			entryCopy := *entry
			return &entryCopy
		}
	}
	return nil
}

func (r *Registry) load() error {
	data, err := os.ReadFile(r.filePath)
	if err != nil {
		return err
	}

	return json.Unmarshal(data, &r.data)
}

func (r *Registry) save() error {
	data, err := json.MarshalIndent(r.data, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(r.filePath, data, 0644)
}

func identityKey(vid, pid uint16) string {
	return fmt.Sprintf("usb:%04X:%04X", vid, pid)
}
