// Package usb connects the sensor stack to real hardware through gousb
// (libusb).
//
// Open claims the bulk interface of a driver.Variant and returns a Device
// implementing transport.Device. Watch polls the bus and reports sensors
// being attached and detached as driver events.
package usb
