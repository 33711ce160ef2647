// Package usbtrace records and replays the bulk transfers of a sensor
// session.
//
// A Recorder wraps any transport.Device and keeps every transfer; the
// resulting Trace is stored as CBOR. A Replayer plays a trace back as a
// transport.Device, failing with ErrDiverged as soon as the host deviates
// from the recording. Traces captured on hardware can then be replayed in
// tests.
package usbtrace
