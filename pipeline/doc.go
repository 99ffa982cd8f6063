// SPDX-License-Identifier: EPL-2.0

// Package pipeline drives a stream from a source, through the input
// reservoir and the decode step, into an output ring.
//
// # Loop
//
// A Driver is a state machine stepped by a single goroutine:
//
//	Filling -> Syncing -> Streaming -> Draining -> Stopped
//
// Every Streaming iteration does at most three things, in order:
//
//  1. Push the pending block, but only while the output has more than
//     Headroom times its size free. Nothing else happens until it is gone.
//  2. Admit one source chunk when the reservoir has room for it.
//  3. Decode exactly one unit into the now empty pending block.
//
// Memory is bounded by the reservoir, the pending block and the ring. None
// of them grows.
//
// # Errors
//
// A unit that fails to decode is skipped. A lost marker triggers a
// resynchronization; too many failed searches in a row stop the stream with
// audio.ErrAlignmentLost. Source failures let buffered units drain and are
// then returned from Run. Cancelling the context stops the output and
// returns ctx.Err().
//
//	d, err := pipeline.New(pipeline.DefaultConfig(), res, src, ring, logger)
//	if err != nil {
//	    return err
//	}
//	stats, err := d.Run(ctx)
package pipeline
