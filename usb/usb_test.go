package usb

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/gousb"

	"github.com/moffa90/go-goodixtls/driver"
	"github.com/moffa90/go-goodixtls/transport"
)

func TestEndpointNumber(t *testing.T) {
	tests := []struct {
		address uint8
		want    int
	}{
		{0x83, 3},
		{0x01, 1},
		{0x8F, 15},
	}
	for _, tt := range tests {
		if got := endpointNumber(tt.address); got != tt.want {
			t.Errorf("endpointNumber(0x%02X) = %d, want %d", tt.address, got, tt.want)
		}
	}
}

func TestMapError(t *testing.T) {
	expired, cancel := context.WithTimeout(context.Background(), 0)
	defer cancel()
	<-expired.Done()

	tests := []struct {
		name        string
		ctx         context.Context
		err         error
		wantTimeout bool
	}{
		{"transfer timed out", context.Background(), gousb.TransferTimedOut, true},
		{"libusb timeout", context.Background(), gousb.ErrorTimeout, true},
		{"deadline exceeded", expired, gousb.TransferCancelled, true},
		{"stall", context.Background(), gousb.TransferStall, false},
		{"no device", context.Background(), gousb.ErrorNoDevice, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := mapError(tt.ctx, tt.err)
			if got := transport.IsTimeout(err); got != tt.wantTimeout {
				t.Errorf("IsTimeout(%v) = %v, want %v", err, got, tt.wantTimeout)
			}
		})
	}
}

// fakeBus returns scripted enumerations, repeating the last one.
type fakeBus struct {
	mu    sync.Mutex
	scans [][]driver.Descriptor
	calls int
}

func (b *fakeBus) enumerate() ([]driver.Descriptor, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.calls
	b.calls++
	if i >= len(b.scans) {
		i = len(b.scans) - 1
	}
	if b.scans[i] == nil {
		return nil, fmt.Errorf("bus busy")
	}
	return b.scans[i], nil
}

func TestWatchWith(t *testing.T) {
	sensorA := driver.Descriptor{Bus: 1, Address: 3, VendorID: 0x27C6, ProductID: 0x5395}
	sensorB := driver.Descriptor{Bus: 1, Address: 9, VendorID: 0x27C6, ProductID: 0x5395}
	mouse := driver.Descriptor{Bus: 1, Address: 2, VendorID: 0x046D, ProductID: 0xC077}

	bus := &fakeBus{scans: [][]driver.Descriptor{
		{sensorA, mouse},
		nil, // failed scan keeps the previous view
		{mouse},
		{mouse, sensorB},
	}}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := WatchWith(ctx, bus.enumerate, driver.DefaultRegistry(), time.Millisecond)

	want := []driver.Event{
		{Type: driver.DeviceAdded, Descriptor: sensorA, Variant: driver.Goodix5395},
		{Type: driver.DeviceRemoved, Descriptor: sensorA, Variant: driver.Goodix5395},
		{Type: driver.DeviceAdded, Descriptor: sensorB, Variant: driver.Goodix5395},
	}

	var got []driver.Event
	timeout := time.After(5 * time.Second)
	for len(got) < len(want) {
		select {
		case ev := <-events:
			got = append(got, ev)
		case <-timeout:
			t.Fatalf("timed out after %d events", len(got))
		}
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}

	cancel()
	for range events {
	}
}

func TestWatchWithClosesOnCancel(t *testing.T) {
	bus := &fakeBus{scans: [][]driver.Descriptor{{}}}
	ctx, cancel := context.WithCancel(context.Background())

	events := WatchWith(ctx, bus.enumerate, driver.DefaultRegistry(), time.Millisecond)
	cancel()

	select {
	case _, ok := <-events:
		if ok {
			t.Error("unexpected event")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("channel not closed after cancel")
	}
}

func TestClosedDevice(t *testing.T) {
	d := &Device{variant: driver.Goodix5395, closed: true}

	if d.IsOpen() {
		t.Error("IsOpen() = true")
	}
	if err := d.BulkWrite(0x01, make([]byte, 64), time.Second); !errors.Is(err, transport.ErrClosed) {
		t.Errorf("BulkWrite() error = %v, want ErrClosed", err)
	}
	if _, err := d.BulkRead(0x83, 64, time.Second); !errors.Is(err, transport.ErrClosed) {
		t.Errorf("BulkRead() error = %v, want ErrClosed", err)
	}
	if err := d.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}
