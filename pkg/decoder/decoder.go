// Package decoder wraps an external container/codec library behind a
// small interface set and drives it through a staged session state machine.
package decoder

// MediaType tags a container stream.
type MediaType uint8

const (
	MediaTypeUnknown MediaType = iota
	MediaTypeVideo
	MediaTypeAudio
)

// Library is the external decoding collaborator. Production code uses the
// ffmpeg-backed implementation; tests substitute stubs.
type Library interface {
	OpenContainer(path string) (Container, error)
	// NewPixelConverter builds a converter from the codec's native pixel
	// format to packed 32-bit ARGB at the codec's native resolution.
	NewPixelConverter(src Codec) (PixelConverter, error)
	// NewSampleConverter builds a converter from the codec's native sample
	// format to interleaved float samples at the given rate and channel
	// count. Implementations should pass data through unchanged when the
	// native format already matches.
	NewSampleConverter(src Codec, dstHz, dstChannels int) (SampleConverter, error)
}

// Container is one opened media file.
type Container interface {
	FindStreamInfo() error
	Streams() []Stream
	// ReadPacket returns the next packet or io.EOF when the container
	// is exhausted. The caller owns the packet and must Release it.
	ReadPacket() (Packet, error)
	Close()
}

type Stream interface {
	Index() int
	MediaType() MediaType
	OpenCodec() (Codec, error)
}

// Codec decodes packets of a single stream.
type Codec interface {
	// Decode feeds one packet. ok is false when the codec buffered the
	// packet and produced no frame yet; that is not an error.
	Decode(p Packet) (f RawFrame, ok bool, err error)
	Width() int
	Height() int
	SampleRate() int
	Channels() int
	Close()
}

// Packet is one compressed unit read from the container.
type Packet interface {
	StreamIndex() int
	Release()
}

// RawFrame is one decoded, not yet converted unit.
type RawFrame interface {
	Release()
}

// PixelConverter turns a raw video frame into packed target pixels.
type PixelConverter interface {
	Convert(f RawFrame) ([]byte, error)
	Close()
}

// SampleConverter turns a raw audio frame into target float samples.
type SampleConverter interface {
	Convert(f RawFrame) ([]float32, error)
	Close()
}
