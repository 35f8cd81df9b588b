// Package usb discovers USB printers and transmits composed jobs over their
// bulk-out endpoint
package usb

import "errors"

// Failure kinds for one transport job. Every failure returned by the package
// carries exactly one of these in its chain; callers distinguish them with
// errors.Is. All are terminal for the current job.
var (
	ErrDeviceNotFound = errors.New("device not found")
	ErrDeviceOpen     = errors.New("failed to open device")
	ErrClaimInterface = errors.New("failed to claim interface")
	ErrNoEndpoint     = errors.New("no bulk-out endpoint")
	ErrWrite          = errors.New("bulk write failed")
)
