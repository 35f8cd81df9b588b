// Package agent coordinates composing and transmitting print jobs
package agent

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/printdesk/print-agent/internal/escpos"
	"github.com/printdesk/print-agent/internal/render"
	"github.com/printdesk/print-agent/internal/usb"
	"github.com/printdesk/print-agent/pkg/printjob"
)

// Failure kinds reported to callers. One kind per failed job, no retries.
const (
	KindInvalid        = "invalid_request"
	KindEncoding       = "encoding_error"
	KindDeviceNotFound = "device_not_found"
	KindDeviceOpen     = "device_open_error"
	KindClaimInterface = "interface_claim_error"
	KindNoEndpoint     = "no_endpoint_error"
	KindWrite          = "write_error"
)

// Sender transmits a composed byte stream to one printer.
type Sender interface {
	Send(ctx context.Context, vid, pid uint16, data []byte) error
}

// Result is the outcome of one print job.
type Result struct {
	JobID  string `json:"job_id"`
	OK     bool   `json:"ok"`
	Kind   string `json:"kind,omitempty"`
	Status string `json:"status"`
	Err    string `json:"error,omitempty"`
}

// Service runs jobs end to end: validate, compose, transmit. It owns no
// protocol logic of its own.
type Service struct {
	sender Sender
}

// New creates a Service sending through the given transport.
func New(sender Sender) *Service {
	return &Service{sender: sender}
}

// Submit runs one job. The status line names the caller whatever the outcome.
// Jobs whose payload cannot be composed never touch the device.
func (s *Service) Submit(ctx context.Context, info *printjob.PrintInfo) Result {
	res := Result{
		JobID:  uuid.New().String(),
		Status: fmt.Sprintf("User: %s", info.Name),
	}

	if err := printjob.Validate(info); err != nil {
		return s.fail(res, KindInvalid, err)
	}

	data, err := escpos.Compose(info.Lines)
	if err != nil {
		return s.fail(res, KindEncoding, err)
	}

	if err := s.sender.Send(ctx, info.VID, info.PID, data); err != nil {
		return s.fail(res, kindOf(err), err)
	}

	log.Printf("job %s: sent %d bytes to %04x:%04x", res.JobID, len(data), info.VID, info.PID)
	res.OK = true
	return res
}

func (s *Service) fail(res Result, kind string, err error) Result {
	log.Printf("job %s: %s: %v", res.JobID, kind, err)
	res.Kind = kind
	res.Err = err.Error()
	return res
}

func kindOf(err error) string {
	switch {
	case errors.Is(err, usb.ErrDeviceNotFound):
		return KindDeviceNotFound
	case errors.Is(err, usb.ErrDeviceOpen):
		return KindDeviceOpen
	case errors.Is(err, usb.ErrClaimInterface):
		return KindClaimInterface
	case errors.Is(err, usb.ErrNoEndpoint):
		return KindNoEndpoint
	case errors.Is(err, render.ErrEncode):
		return KindEncoding
	default:
		return KindWrite
	}
}
