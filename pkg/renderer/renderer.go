// Package renderer defines the presentation collaborators of the pipeline
// and ships an SDL2 implementation of both.
package renderer

// Renderer receives converted video frames. Texture upload details stay
// behind this interface; the pipeline only hands over packed pixels.
type Renderer interface {
	// CreateSurface sizes the render target. Called once per session,
	// before any Upload.
	CreateSurface(w, h int) error
	// Upload presents one frame of w*h*4 packed ARGB bytes.
	Upload(pixels []byte) error
	Close()
}

// AudioSink receives converted audio payloads as interleaved float samples.
type AudioSink interface {
	Queue(samples []float32) error
	Close()
}

// NopAudio discards audio payloads. Used when audio output is disabled.
type NopAudio struct{}

func (NopAudio) Queue([]float32) error { return nil }
func (NopAudio) Close()                {}
