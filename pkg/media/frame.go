// Package media holds the decoded-frame unit and the synchronization
// primitives shared between the decode producer and the render consumer.
package media

// Frame is one decoded unit handed from the producer to the consumer.
// A unit carries either video pixels or audio samples, set by which
// packet it was decoded from. Ownership transfers with the frame: the
// producer must not touch a frame after a successful push, the consumer
// owns it after a pop.
type Frame struct {
	// Seq is the enqueue order number, starting at 1 per session.
	Seq uint64
	// Video holds packed 32-bit pixels sized width*height*4, or nil.
	Video []byte
	// Audio holds interleaved float samples, or nil.
	Audio []float32
}
