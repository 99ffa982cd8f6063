// SPDX-License-Identifier: EPL-2.0

// Package output holds the output ring buffer and the hardware that drains it.
//
// The pipeline driver only writes: it checks Available and pushes whole
// blocks. Once Start hands the ring to a Hardware, that hardware reads from
// it at a fixed rate through Drain:
//
//	engine := output.NewEngine(sink, output.DefaultPeriod, 1, logger)
//	ring, _ := output.NewRing(32768, engine, logger)
//	_ = ring.Start(format)
//	if ring.Available() > 2*len(block) {
//	    _ = ring.Push(block)
//	}
//	_ = ring.Stop()
//
// Engine simulates DMA by writing drained PCM to any io.Writer, padding
// underruns with silence. Device, built with the malgo tag, plays through the
// default sound card.
package output
