package decoder

import (
	"github.com/playpipe/playpipe/pkg/config"
	"github.com/playpipe/playpipe/pkg/logger"
)

// State is the session setup progression. It only moves forward; the
// first failing stage parks the machine in Failed for good.
type State uint8

const (
	Unopened State = iota
	Opened
	StreamInfoResolved
	VideoStreamLocated
	VideoCodecReady
	AudioStreamLocated
	AudioCodecReady
	ConverterReady
	Ready
	Failed
)

func (s State) String() string {
	switch s {
	case Unopened:
		return "unopened"
	case Opened:
		return "opened"
	case StreamInfoResolved:
		return "stream_info_resolved"
	case VideoStreamLocated:
		return "video_stream_located"
	case VideoCodecReady:
		return "video_codec_ready"
	case AudioStreamLocated:
		return "audio_stream_located"
	case AudioCodecReady:
		return "audio_codec_ready"
	case ConverterReady:
		return "converter_ready"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Session is one opened container with its codecs and converters.
// All methods except Close are called by the producer only; Close must
// not run concurrently with a producer iteration.
type Session struct {
	log   *logger.Logger
	state State

	container Container
	video     Stream
	audio     Stream
	vcodec    Codec
	acodec    Codec
	pixels    PixelConverter
	samples   SampleConverter

	width  int
	height int

	// resources in acquisition order, released in reverse by Close
	releases []func()
	closed   bool
}

// Open runs the staged setup to completion or to the first failure.
// On failure every already-acquired resource is released and the returned
// error is a *SetupError tagged with the stage that broke.
//
// A container without any audio stream still reaches Ready: the session
// simply has no audio side. A present audio stream with an unopenable
// codec is still fatal.
func Open(lib Library, path string, conf config.Decoder, log *logger.Logger) (*Session, error) {
	s := &Session{log: log, state: Unopened}

	container, err := lib.OpenContainer(path)
	if err != nil {
		return nil, s.fail(StageOpenContainer, path, err)
	}
	s.container = container
	s.releases = append(s.releases, container.Close)
	s.state = Opened

	if err := container.FindStreamInfo(); err != nil {
		return nil, s.fail(StageStreamInfo, path, err)
	}
	s.state = StreamInfoResolved

	streams := container.Streams()
	s.video = firstOf(streams, MediaTypeVideo)
	if s.video == nil {
		return nil, s.fail(StageVideoStream, path, ErrNoVideoStream)
	}
	s.state = VideoStreamLocated

	vcodec, err := s.video.OpenCodec()
	if err != nil {
		return nil, s.fail(StageVideoCodec, path, err)
	}
	s.vcodec = vcodec
	s.releases = append(s.releases, vcodec.Close)
	s.width, s.height = vcodec.Width(), vcodec.Height()
	s.state = VideoCodecReady

	s.audio = firstOf(streams, MediaTypeAudio)
	s.state = AudioStreamLocated
	if s.audio == nil {
		log.Debug().Str("path", path).Msg("no audio stream, playing video only")
		s.state = AudioCodecReady
	} else {
		acodec, err := s.audio.OpenCodec()
		if err != nil {
			return nil, s.fail(StageAudioCodec, path, err)
		}
		s.acodec = acodec
		s.releases = append(s.releases, acodec.Close)
		s.state = AudioCodecReady
	}

	pixels, err := lib.NewPixelConverter(vcodec)
	if err != nil {
		return nil, s.fail(StageConverter, path, err)
	}
	s.pixels = pixels
	s.releases = append(s.releases, pixels.Close)

	if s.acodec != nil {
		samples, err := lib.NewSampleConverter(s.acodec, conf.AudioHz, conf.AudioChannels)
		if err != nil {
			return nil, s.fail(StageConverter, path, err)
		}
		s.samples = samples
		s.releases = append(s.releases, samples.Close)
	}
	s.state = ConverterReady

	s.state = Ready
	log.Info().
		Str("path", path).
		Int("w", s.width).Int("h", s.height).
		Bool("audio", s.acodec != nil).
		Msg("session ready")
	return s, nil
}

func firstOf(streams []Stream, mt MediaType) Stream {
	for _, st := range streams {
		if st.MediaType() == mt {
			return st
		}
	}
	return nil
}

func (s *Session) fail(stage Stage, path string, err error) error {
	s.state = Failed
	s.Close()
	return &SetupError{Stage: stage, Path: path, Err: err}
}

// ReadPacket returns the next packet from the container or io.EOF.
func (s *Session) ReadPacket() (Packet, error) { return s.container.ReadPacket() }

func (s *Session) DecodeVideo(p Packet) (RawFrame, bool, error) { return s.vcodec.Decode(p) }

func (s *Session) DecodeAudio(p Packet) (RawFrame, bool, error) { return s.acodec.Decode(p) }

// ConvertVideo produces Width*Height*4 bytes of packed ARGB.
func (s *Session) ConvertVideo(f RawFrame) ([]byte, error) { return s.pixels.Convert(f) }

func (s *Session) ConvertAudio(f RawFrame) ([]float32, error) { return s.samples.Convert(f) }

func (s *Session) VideoIndex() int { return s.video.Index() }

// AudioIndex returns the audio stream index or -1 for video-only sessions.
func (s *Session) AudioIndex() int {
	if s.audio == nil {
		return -1
	}
	return s.audio.Index()
}

func (s *Session) HasAudio() bool { return s.acodec != nil }
func (s *Session) Width() int     { return s.width }
func (s *Session) Height() int    { return s.height }
func (s *Session) State() State   { return s.state }

// Close releases converters, codecs, and the container in reverse
// acquisition order. Safe to call more than once.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.closed = true
	for i := len(s.releases) - 1; i >= 0; i-- {
		s.releases[i]()
	}
	s.releases = nil
	if s.state != Failed {
		s.state = Unopened
	}
}
