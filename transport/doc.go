// Package transport moves encoded frames over a chunked USB bulk channel.
//
// # Overview
//
// A Transport owns no USB state of its own. It drives a Device, the minimal
// bulk handle implemented by the usb package (real hardware), the usbtrace
// package (recording and replay) and the sensortest package (simulator):
//
//	t := transport.New(dev, transport.Config{
//	    EndpointIn:  0x83,
//	    EndpointOut: 0x01,
//	    MaxChunkIn:  0x2000,
//	    MaxChunkOut: 0x40,
//	})
//
//	frame, _ := protocol.BuildSleepModeCmd().Encode(true)
//	if err := t.Send(ctx, frame, 200*time.Millisecond); err != nil {
//	    return err
//	}
//	reply, err := t.ReceiveMessageBytes(ctx)
//
// # Chunking
//
// Send splits a frame with protocol.SplitChunks and issues one bulk write per
// chunk. ReceiveMessageBytes reads chunks until the length declared in the
// first chunk has been reached and returns the frame without USB padding.
// Zero-length reads are wakeup packets and are re-issued.
//
// # Errors
//
// Failed transfers are reported as *TransferError. Device implementations
// wrap ErrTimeout when a transfer did not complete in time, so both of these
// hold for a timed out read:
//
//	var te *transport.TransferError
//	errors.As(err, &te)
//	errors.Is(err, transport.ErrTimeout)
//
// Cancellation is checked between transfers. A message that was partly sent
// when the context ended is not rolled back.
package transport
