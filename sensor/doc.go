// Package sensor drives a Goodix TLS fingerprint sensor of the 5395 family.
//
// A Sensor wraps a transport.Device and exposes the sensor commands (reset,
// sleep, EC control, OTP, finger detection, config upload), the MCU
// sub-protocol used by the GTLS handshake, and Open, which runs the whole
// initialisation sequence:
//
//	dev, err := usb.Open(driver.Goodix5395)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	s := sensor.New(dev, sensor.WithLogger(slog.Default()))
//	defer s.Close()
//
//	cfg, err := calibration.ParseConfig("goodix5395.cfg")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := s.Open(ctx, cfg); err != nil {
//	    log.Fatal(err)
//	}
//
// Every operation blocks on bulk transfers and is bounded by explicit
// timeouts; none of them retries. A Sensor must be used from one goroutine.
package sensor
