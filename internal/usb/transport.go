package usb

import (
	"context"
	"fmt"
	"time"
)

const (
	// WriteTimeout bounds the bulk transfer of one composed job.
	WriteTimeout = 5 * time.Second
	// DialTimeout bounds discovery, open, claim and endpoint resolution
	// together, so a stalled device cannot hang a caller indefinitely.
	DialTimeout = 10 * time.Second
)

// Connection is the write half of an open printer. Close releases the claimed
// interface and open handle; it must run on every exit path, success or not.
type Connection interface {
	Write(ctx context.Context, data []byte) (int, error)
	Close() error
}

// dialFunc opens a connection to the printer identified by (vid, pid).
// Swapped for a fake in tests.
type dialFunc func(ctx context.Context, vid, pid uint16) (Connection, error)

// Transport sends composed ESC/POS byte streams to USB printers, one job at a
// time per physical device. The endpoint is resolved fresh for every job.
type Transport struct {
	dial  dialFunc
	locks *lockRegistry
}

// NewTransport returns a Transport backed by libusb.
func NewTransport() *Transport {
	return &Transport{
		dial:  dialUSB,
		locks: newLockRegistry(),
	}
}

// Send transmits data to the printer identified by (vid, pid). The per-device
// lock is held from discovery through release, so two jobs for the same
// printer can never interleave bytes on the wire.
func (t *Transport) Send(ctx context.Context, vid, pid uint16, data []byte) error {
	lock := t.locks.get(vid, pid)
	lock.Lock()
	defer lock.Unlock()

	dialCtx, cancelDial := context.WithTimeout(ctx, DialTimeout)
	defer cancelDial()

	conn, err := t.dial(dialCtx, vid, pid)
	if err != nil {
		return err
	}
	defer conn.Close()

	writeCtx, cancelWrite := context.WithTimeout(ctx, WriteTimeout)
	defer cancelWrite()

	n, err := conn.Write(writeCtx, data)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	if n != len(data) {
		return fmt.Errorf("%w: short write, %d of %d bytes", ErrWrite, n, len(data))
	}

	return nil
}
