package driver

import (
	"fmt"

	"github.com/moffa90/go-goodixtls/transport"
)

// Descriptor identifies one attached USB device.
type Descriptor struct {
	Bus       int
	Address   int
	VendorID  uint16
	ProductID uint16
}

// Key returns a string that identifies the device for as long as it stays
// attached.
func (d Descriptor) Key() string {
	return fmt.Sprintf("%03d:%03d", d.Bus, d.Address)
}

func (d Descriptor) String() string {
	return fmt.Sprintf("bus %d address %d (%04x:%04x)", d.Bus, d.Address, d.VendorID, d.ProductID)
}

// Variant is the capability set of one sensor model.
type Variant struct {
	// Name identifies the variant in logs and in the registry
	Name string

	// VendorID and ProductID select the USB device
	VendorID  uint16
	ProductID uint16

	// Interface is the USB interface number carrying the bulk endpoints
	Interface int

	// EndpointIn and EndpointOut are the bulk endpoint addresses
	EndpointIn  uint8
	EndpointOut uint8

	// MaxChunkIn and MaxChunkOut are the bulk transfer sizes
	MaxChunkIn  int
	MaxChunkOut int

	// Score ranks how well the variant supports a device. When nil, a device
	// with matching IDs scores 1 and any other device 0.
	Score func(Descriptor) int
}

// Goodix5395 is the 27c6:5395 sensor.
var Goodix5395 = Variant{
	Name:        "goodix-5395",
	VendorID:    0x27C6,
	ProductID:   0x5395,
	Interface:   1,
	EndpointIn:  0x83,
	EndpointOut: 0x01,
	MaxChunkIn:  transport.DefaultMaxChunkIn,
	MaxChunkOut: transport.DefaultMaxChunkOut,
}

// TransportConfig returns the transport configuration of the variant.
func (v Variant) TransportConfig() transport.Config {
	return transport.Config{
		EndpointIn:  v.EndpointIn,
		EndpointOut: v.EndpointOut,
		MaxChunkIn:  v.MaxChunkIn,
		MaxChunkOut: v.MaxChunkOut,
	}
}

// Matches returns the score of d for this variant; 0 means unsupported.
func (v Variant) Matches(d Descriptor) int {
	if v.Score != nil {
		return v.Score(d)
	}
	if d.VendorID == v.VendorID && d.ProductID == v.ProductID {
		return 1
	}
	return 0
}
