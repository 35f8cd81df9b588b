package usb

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/gousb"
)

// printerInterface is the fixed interface number ESC/POS printers expose
// their bulk-out endpoint on.
const printerInterface = 0

// usbConnection holds everything acquired for one job. Close releases in
// reverse acquisition order; libusb reattaches any detached kernel driver
// when the interface is released.
type usbConnection struct {
	ctx  *gousb.Context
	dev  *gousb.Device
	cfg  *gousb.Config
	intf *gousb.Interface
	ep   *gousb.OutEndpoint
}

func (c *usbConnection) Write(ctx context.Context, data []byte) (int, error) {
	return c.ep.WriteContext(ctx, data)
}

func (c *usbConnection) Close() error {
	if c.intf != nil {
		c.intf.Close()
	}

	var err error
	if c.cfg != nil {
		err = c.cfg.Close()
	}
	if c.dev != nil {
		if cerr := c.dev.Close(); err == nil {
			err = cerr
		}
	}
	if c.ctx != nil {
		if cerr := c.ctx.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// dialUSB runs discovery, open, claim and endpoint resolution for one job.
// libusb calls are not context-aware, so the sequence runs in its own
// goroutine; on deadline the eventual result is still closed out.
func dialUSB(ctx context.Context, vid, pid uint16) (Connection, error) {
	type result struct {
		conn Connection
		err  error
	}
	done := make(chan result, 1)

	go func() {
		conn, err := openPrinter(vid, pid)
		done <- result{conn: conn, err: err}
	}()

	select {
	case <-ctx.Done():
		go func() {
			if r := <-done; r.conn != nil {
				r.conn.Close()
			}
		}()
		return nil, fmt.Errorf("%w %04x:%04x: %v", ErrDeviceOpen, vid, pid, ctx.Err())
	case r := <-done:
		return r.conn, r.err
	}
}

func openPrinter(vid, pid uint16) (Connection, error) {
	uctx := gousb.NewContext()

	dev, err := uctx.OpenDeviceWithVIDPID(gousb.ID(vid), gousb.ID(pid))
	if err != nil {
		uctx.Close()
		return nil, fmt.Errorf("%w %04x:%04x: %v", ErrDeviceOpen, vid, pid, err)
	}
	if dev == nil {
		uctx.Close()
		return nil, fmt.Errorf("%w: %04x:%04x", ErrDeviceNotFound, vid, pid)
	}

	conn := &usbConnection{ctx: uctx, dev: dev}

	// libusb detaches a kernel driver holding the interface before the claim
	// and reattaches it on release, failure paths included.
	if err := dev.SetAutoDetach(true); err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: set auto-detach: %v", ErrClaimInterface, err)
	}

	cfgNum, err := dev.ActiveConfigNum()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: active config: %v", ErrClaimInterface, err)
	}

	cfg, err := dev.Config(cfgNum)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: config %d: %v", ErrClaimInterface, cfgNum, err)
	}
	conn.cfg = cfg

	intf, err := cfg.Interface(printerInterface, 0)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: interface %d: %v", ErrClaimInterface, printerInterface, err)
	}
	conn.intf = intf

	ep, err := bulkOut(intf)
	if err != nil {
		conn.Close()
		return nil, err
	}
	conn.ep = ep

	return conn, nil
}

// bulkOut resolves the first bulk-out endpoint of the claimed interface,
// lowest endpoint number first. The endpoint map has no stable iteration
// order, so candidates are sorted before picking.
func bulkOut(intf *gousb.Interface) (*gousb.OutEndpoint, error) {
	var numbers []int
	for _, epDesc := range intf.Setting.Endpoints {
		if epDesc.Direction == gousb.EndpointDirectionOut && epDesc.TransferType == gousb.TransferTypeBulk {
			numbers = append(numbers, epDesc.Number)
		}
	}
	if len(numbers) == 0 {
		return nil, fmt.Errorf("%w on interface %d", ErrNoEndpoint, printerInterface)
	}
	sort.Ints(numbers)

	ep, err := intf.OutEndpoint(numbers[0])
	if err != nil {
		return nil, fmt.Errorf("%w: endpoint %d: %v", ErrNoEndpoint, numbers[0], err)
	}
	return ep, nil
}
