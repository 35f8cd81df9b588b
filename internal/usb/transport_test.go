package usb

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

// recordingSink collects every byte written through any connection, in
// arrival order, so tests can check whole jobs stay contiguous.
type recordingSink struct {
	mu     sync.Mutex
	stream []byte
}

func (s *recordingSink) append(b byte) {
	s.mu.Lock()
	s.stream = append(s.stream, b)
	s.mu.Unlock()
}

// fakeConn writes into the shared sink one byte at a time, yielding between
// bytes to give a competing job every chance to interleave.
type fakeConn struct {
	sink     *recordingSink
	writeErr error
	short    bool
	closed   bool
	mu       sync.Mutex
}

func (c *fakeConn) Write(ctx context.Context, data []byte) (int, error) {
	if c.writeErr != nil {
		return 0, c.writeErr
	}
	for i, b := range data {
		if c.short && i == len(data)/2 {
			return i, nil
		}
		c.sink.append(b)
		time.Sleep(time.Microsecond)
	}
	return len(data), nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func newTestTransport(dial dialFunc) *Transport {
	return &Transport{dial: dial, locks: newLockRegistry()}
}

func TestSend_DeviceNotFound(t *testing.T) {
	transport := newTestTransport(func(ctx context.Context, vid, pid uint16) (Connection, error) {
		return nil, fmt.Errorf("%w: %04x:%04x", ErrDeviceNotFound, vid, pid)
	})

	err := transport.Send(context.Background(), 0x0FE6, 0x811E, []byte{0x1B, 0x40})
	if !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("Expected ErrDeviceNotFound, got %v", err)
	}
}

func TestSend_WriteFailureStillCloses(t *testing.T) {
	conn := &fakeConn{sink: &recordingSink{}, writeErr: errors.New("pipe stall")}
	transport := newTestTransport(func(ctx context.Context, vid, pid uint16) (Connection, error) {
		return conn, nil
	})

	err := transport.Send(context.Background(), 1, 2, []byte("data"))
	if !errors.Is(err, ErrWrite) {
		t.Errorf("Expected ErrWrite, got %v", err)
	}
	if !conn.closed {
		t.Error("Connection must be released after a write failure")
	}
}

func TestSend_ShortWrite(t *testing.T) {
	conn := &fakeConn{sink: &recordingSink{}, short: true}
	transport := newTestTransport(func(ctx context.Context, vid, pid uint16) (Connection, error) {
		return conn, nil
	})

	err := transport.Send(context.Background(), 1, 2, []byte("0123456789"))
	if !errors.Is(err, ErrWrite) {
		t.Errorf("Expected ErrWrite for short write, got %v", err)
	}
	if !conn.closed {
		t.Error("Connection must be released after a short write")
	}
}

func TestSend_SuccessCloses(t *testing.T) {
	sink := &recordingSink{}
	conn := &fakeConn{sink: sink}
	transport := newTestTransport(func(ctx context.Context, vid, pid uint16) (Connection, error) {
		return conn, nil
	})

	payload := []byte{0x1B, 0x40, 'h', 'i', 0x0A}
	if err := transport.Send(context.Background(), 1, 2, payload); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if !bytes.Equal(sink.stream, payload) {
		t.Errorf("Wire mismatch: got %X, want %X", sink.stream, payload)
	}
	if !conn.closed {
		t.Error("Connection must be released after success")
	}
}

func TestSend_ConcurrentJobsSamePrinterStayContiguous(t *testing.T) {
	sink := &recordingSink{}
	transport := newTestTransport(func(ctx context.Context, vid, pid uint16) (Connection, error) {
		return &fakeConn{sink: sink}, nil
	})

	jobA := bytes.Repeat([]byte{0xAA}, 256)
	jobB := bytes.Repeat([]byte{0xBB}, 256)

	var wg sync.WaitGroup
	for _, job := range [][]byte{jobA, jobB} {
		wg.Add(1)
		go func(data []byte) {
			defer wg.Done()
			if err := transport.Send(context.Background(), 0x0FE6, 0x811E, data); err != nil {
				t.Errorf("Send failed: %v", err)
			}
		}(job)
	}
	wg.Wait()

	if len(sink.stream) != len(jobA)+len(jobB) {
		t.Fatalf("Expected %d bytes on the wire, got %d", len(jobA)+len(jobB), len(sink.stream))
	}
	if !bytes.Contains(sink.stream, jobA) {
		t.Error("Job A bytes did not arrive as one contiguous block")
	}
	if !bytes.Contains(sink.stream, jobB) {
		t.Error("Job B bytes did not arrive as one contiguous block")
	}
}

func TestSend_DifferentPrintersRunConcurrently(t *testing.T) {
	// The first printer's connection blocks until the second printer's job
	// has finished; a shared lock would deadlock this test.
	release := make(chan struct{})
	secondDone := make(chan struct{})

	transport := newTestTransport(func(ctx context.Context, vid, pid uint16) (Connection, error) {
		if vid == 1 {
			<-release
		}
		return &fakeConn{sink: &recordingSink{}}, nil
	})

	go func() {
		if err := transport.Send(context.Background(), 2, 2, []byte("b")); err != nil {
			t.Errorf("Second printer send failed: %v", err)
		}
		close(secondDone)
	}()

	done := make(chan struct{})
	go func() {
		transport.Send(context.Background(), 1, 1, []byte("a"))
		close(done)
	}()

	select {
	case <-secondDone:
		close(release)
	case <-time.After(2 * time.Second):
		t.Fatal("Job for an unrelated printer was blocked")
	}
	<-done
}

func TestLockRegistry_KeyedByDevice(t *testing.T) {
	locks := newLockRegistry()

	if locks.get(1, 2) != locks.get(1, 2) {
		t.Error("Same (vid, pid) must map to the same lock")
	}
	if locks.get(1, 2) == locks.get(1, 3) {
		t.Error("Different (vid, pid) must map to different locks")
	}
}

func TestMonitor_ReportsChanges(t *testing.T) {
	scans := [][]DeviceInfo{
		{{VID: 1, PID: 2, Description: "USB: 0001:0002"}},
		{{VID: 1, PID: 2, Description: "USB: 0001:0002"}, {VID: 3, PID: 4, Description: "USB: 0003:0004"}},
		{{VID: 3, PID: 4, Description: "USB: 0003:0004"}},
	}

	m := NewMonitor(time.Hour)
	defer m.Stop()

	var added, removed []DeviceInfo
	m.OnAdded(func(d DeviceInfo) { added = append(added, d) })
	m.OnRemoved(func(d DeviceInfo) { removed = append(removed, d) })

	previous := make(map[deviceKey]DeviceInfo)
	for _, scan := range scans {
		scan := scan
		m.discover = func() ([]DeviceInfo, error) { return scan, nil }
		m.checkChanges(previous)
	}

	if len(added) != 2 {
		t.Errorf("Expected 2 added events, got %d", len(added))
	}
	if len(removed) != 1 {
		t.Errorf("Expected 1 removed event, got %d", len(removed))
	}
	if len(removed) == 1 && (removed[0].VID != 1 || removed[0].PID != 2) {
		t.Errorf("Wrong device reported removed: %04X:%04X", removed[0].VID, removed[0].PID)
	}
}
