package usb

import (
	"context"
	"time"

	"github.com/google/gousb"

	"github.com/moffa90/go-goodixtls/driver"
)

// DefaultWatchInterval is the polling interval used when Watch is given
// none.
const DefaultWatchInterval = time.Second

// Enumerator lists the attached devices.
type Enumerator func() ([]driver.Descriptor, error)

// Enumerate lists every attached device without opening any of them.
func Enumerate(ctx *gousb.Context) ([]driver.Descriptor, error) {
	var out []driver.Descriptor
	_, err := ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		out = append(out, driver.Descriptor{
			Bus:       desc.Bus,
			Address:   desc.Address,
			VendorID:  uint16(desc.Vendor),
			ProductID: uint16(desc.Product),
		})
		return false
	})
	return out, err
}

// Watch polls the USB bus and emits an event whenever a device supported by
// reg is attached or detached. Devices present when Watch starts are
// reported as added. The channel is closed once ctx ends.
//
// Example:
//
//	for ev := range usb.Watch(ctx, driver.DefaultRegistry(), 0) {
//	    fmt.Println(ev.Type, ev.Descriptor)
//	}
func Watch(ctx context.Context, reg *driver.Registry, interval time.Duration) <-chan driver.Event {
	usbCtx := gousb.NewContext()
	enumerate := func() ([]driver.Descriptor, error) {
		return Enumerate(usbCtx)
	}
	return watch(ctx, enumerate, reg, interval, func() { usbCtx.Close() })
}

// WatchWith is Watch over a custom enumerator.
func WatchWith(ctx context.Context, enumerate Enumerator, reg *driver.Registry, interval time.Duration) <-chan driver.Event {
	return watch(ctx, enumerate, reg, interval, nil)
}

// watch runs the poller; stop runs after the channel is closed.
func watch(ctx context.Context, enumerate Enumerator, reg *driver.Registry, interval time.Duration, stop func()) <-chan driver.Event {
	if interval <= 0 {
		interval = DefaultWatchInterval
	}

	events := make(chan driver.Event)
	go func() {
		if stop != nil {
			defer stop()
		}
		defer close(events)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		var prev []driver.Descriptor
		for {
			// A failed enumeration keeps the previous view.
			if cur, err := enumerate(); err == nil {
				for _, ev := range driver.Diff(prev, cur, reg) {
					select {
					case events <- ev:
					case <-ctx.Done():
						return
					}
				}
				prev = cur
			}

			select {
			case <-ticker.C:
			case <-ctx.Done():
				return
			}
		}
	}()
	return events
}
