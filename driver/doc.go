// Package driver describes the supported sensor variants as data.
//
// A Variant carries the USB IDs, endpoint layout and chunk sizes of one
// sensor model. Variants are collected in an explicit Registry, which maps an
// attached device to the best matching variant. Diff turns two successive
// enumerations into DeviceAdded and DeviceRemoved events.
package driver
