package usb

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/gousb"

	"github.com/moffa90/go-goodixtls/driver"
	"github.com/moffa90/go-goodixtls/transport"
)

// Device is a claimed sensor interface. It implements transport.Device and
// io.Closer.
type Device struct {
	variant driver.Variant

	mu     sync.Mutex
	ctx    *gousb.Context
	dev    *gousb.Device
	cfg    *gousb.Config
	intf   *gousb.Interface
	in     *gousb.InEndpoint
	out    *gousb.OutEndpoint
	closed bool
}

// Open opens the first attached device matching v and claims its bulk
// interface. Kernel drivers bound to the interface are detached.
//
// Example:
//
//	dev, err := usb.Open(driver.Goodix5395)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer dev.Close()
func Open(v driver.Variant) (*Device, error) {
	ctx := gousb.NewContext()

	dev, err := ctx.OpenDeviceWithVIDPID(gousb.ID(v.VendorID), gousb.ID(v.ProductID))
	if err != nil {
		ctx.Close()
		return nil, fmt.Errorf("open %04x:%04x: %w", v.VendorID, v.ProductID, err)
	}
	if dev == nil {
		ctx.Close()
		return nil, fmt.Errorf("no %s sensor (%04x:%04x) attached", v.Name, v.VendorID, v.ProductID)
	}

	d := &Device{variant: v, ctx: ctx, dev: dev}
	if err := d.claim(); err != nil {
		d.Close()
		return nil, err
	}
	return d, nil
}

func (d *Device) claim() error {
	if err := d.dev.SetAutoDetach(true); err != nil {
		return fmt.Errorf("enable auto detach: %w", err)
	}

	num, err := d.dev.ActiveConfigNum()
	if err != nil {
		return fmt.Errorf("read active config: %w", err)
	}
	if d.cfg, err = d.dev.Config(num); err != nil {
		return fmt.Errorf("select config %d: %w", num, err)
	}
	if d.intf, err = d.cfg.Interface(d.variant.Interface, 0); err != nil {
		return fmt.Errorf("claim interface %d: %w", d.variant.Interface, err)
	}
	if d.in, err = d.intf.InEndpoint(endpointNumber(d.variant.EndpointIn)); err != nil {
		return fmt.Errorf("open endpoint 0x%02X: %w", d.variant.EndpointIn, err)
	}
	if d.out, err = d.intf.OutEndpoint(endpointNumber(d.variant.EndpointOut)); err != nil {
		return fmt.Errorf("open endpoint 0x%02X: %w", d.variant.EndpointOut, err)
	}
	return nil
}

// Variant returns the variant the device was opened for.
func (d *Device) Variant() driver.Variant {
	return d.variant
}

// BulkWrite implements transport.Device.
func (d *Device) BulkWrite(endpoint uint8, data []byte, timeout time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return transport.ErrClosed
	}
	if endpoint != d.variant.EndpointOut {
		return fmt.Errorf("endpoint 0x%02X is not the bulk out endpoint", endpoint)
	}

	ctx, cancel := transferContext(timeout)
	defer cancel()

	n, err := d.out.WriteContext(ctx, data)
	if err != nil {
		return mapError(ctx, err)
	}
	if n != len(data) {
		return fmt.Errorf("short write: %d of %d bytes", n, len(data))
	}
	return nil
}

// BulkRead implements transport.Device.
func (d *Device) BulkRead(endpoint uint8, maxLen int, timeout time.Duration) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil, transport.ErrClosed
	}
	if endpoint != d.variant.EndpointIn {
		return nil, fmt.Errorf("endpoint 0x%02X is not the bulk in endpoint", endpoint)
	}

	ctx, cancel := transferContext(timeout)
	defer cancel()

	buf := make([]byte, maxLen)
	n, err := d.in.ReadContext(ctx, buf)
	if err != nil {
		return nil, mapError(ctx, err)
	}
	return buf[:n], nil
}

// IsOpen implements transport.Device.
func (d *Device) IsOpen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return !d.closed
}

// Close releases the interface and the device. It is safe to call more than
// once.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}
	d.closed = true

	var errs []error
	if d.intf != nil {
		d.intf.Close()
	}
	if d.cfg != nil {
		errs = append(errs, d.cfg.Close())
	}
	if d.dev != nil {
		errs = append(errs, d.dev.Close())
	}
	if d.ctx != nil {
		errs = append(errs, d.ctx.Close())
	}
	return errors.Join(errs...)
}

// endpointNumber strips the direction bit from an endpoint address.
func endpointNumber(address uint8) int {
	return int(address & 0x0F)
}

func transferContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), timeout)
}

// mapError converts libusb timeouts into transport.ErrTimeout.
func mapError(ctx context.Context, err error) error {
	if errors.Is(err, gousb.TransferTimedOut) || errors.Is(err, gousb.ErrorTimeout) ||
		errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%v: %w", err, transport.ErrTimeout)
	}
	return err
}
