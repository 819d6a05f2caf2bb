// Package pipeline moves frames from the composer to the sound device and the
// display.
//
// Three units take part. The Processor composes frames on its own goroutine
// and keeps up to Lookahead of them ready. The AudioUnit is driven by the
// device callback: when its frame runs out it sends NeedFrame, blocks until
// the next frame arrives and forwards that frame's video to the display. The
// DisplayUnit is ticked by the window loop, never blocks and keeps showing
// the last snapshot while it waits.
//
// Frames are consumed strictly in production order. Ownership moves with the
// value on every send: the producer never touches a frame after handing it
// over.
package pipeline
