// Package sensortest provides a protocol-level 5395 sensor simulator.
//
// The Simulator implements transport.Device and answers resets, OTP reads,
// EC control, finger detection, config uploads and the PSK GTLS handshake.
// It lets code built on the sensor package run end to end without hardware:
//
//	sim := sensortest.New()
//	s := sensor.New(sim)
//	err := s.Open(ctx, sensortest.SampleConfig())
package sensortest
