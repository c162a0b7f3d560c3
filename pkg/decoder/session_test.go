package decoder

import (
	"errors"
	"io"
	"testing"

	"github.com/playpipe/playpipe/pkg/config"
	"github.com/playpipe/playpipe/pkg/logger"
)

var testConf = config.Decoder{AudioHz: 48000, AudioChannels: 2}

type closeLog struct{ order []string }

func (c *closeLog) add(name string) { c.order = append(c.order, name) }

type stubLib struct {
	log       *closeLog
	openErr   error
	container *stubContainer
	pixErr    error
	smpErr    error
}

func (l *stubLib) OpenContainer(string) (Container, error) {
	if l.openErr != nil {
		return nil, l.openErr
	}
	return l.container, nil
}

func (l *stubLib) NewPixelConverter(Codec) (PixelConverter, error) {
	if l.pixErr != nil {
		return nil, l.pixErr
	}
	return &stubPixConv{log: l.log}, nil
}

func (l *stubLib) NewSampleConverter(Codec, int, int) (SampleConverter, error) {
	if l.smpErr != nil {
		return nil, l.smpErr
	}
	return &stubSmpConv{log: l.log}, nil
}

type stubContainer struct {
	log     *closeLog
	infoErr error
	streams []Stream
	packets []stubPacket
	pos     int
}

func (c *stubContainer) FindStreamInfo() error { return c.infoErr }
func (c *stubContainer) Streams() []Stream     { return c.streams }
func (c *stubContainer) Close()                { c.log.add("container") }

func (c *stubContainer) ReadPacket() (Packet, error) {
	if c.pos >= len(c.packets) {
		return nil, io.EOF
	}
	p := c.packets[c.pos]
	c.pos++
	return &p, nil
}

type stubStream struct {
	log      *closeLog
	index    int
	mt       MediaType
	codecErr error
	w, h     int
}

func (s *stubStream) Index() int           { return s.index }
func (s *stubStream) MediaType() MediaType { return s.mt }

func (s *stubStream) OpenCodec() (Codec, error) {
	if s.codecErr != nil {
		return nil, s.codecErr
	}
	name := "vcodec"
	if s.mt == MediaTypeAudio {
		name = "acodec"
	}
	return &stubCodec{log: s.log, name: name, w: s.w, h: s.h}, nil
}

type stubCodec struct {
	log  *closeLog
	name string
	w, h int
}

func (c *stubCodec) Decode(Packet) (RawFrame, bool, error) { return stubRaw{}, true, nil }
func (c *stubCodec) Width() int                            { return c.w }
func (c *stubCodec) Height() int                           { return c.h }
func (c *stubCodec) SampleRate() int                       { return 48000 }
func (c *stubCodec) Channels() int                         { return 2 }
func (c *stubCodec) Close()                                { c.log.add(c.name) }

type stubPacket struct{ index int }

func (p *stubPacket) StreamIndex() int { return p.index }
func (p *stubPacket) Release()         {}

type stubRaw struct{}

func (stubRaw) Release() {}

type stubPixConv struct{ log *closeLog }

func (p *stubPixConv) Convert(RawFrame) ([]byte, error) { return make([]byte, 64*48*4), nil }
func (p *stubPixConv) Close()                           { p.log.add("pixconv") }

type stubSmpConv struct{ log *closeLog }

func (s *stubSmpConv) Convert(RawFrame) ([]float32, error) { return make([]float32, 128), nil }
func (s *stubSmpConv) Close()                              { s.log.add("smpconv") }

func avLib(log *closeLog) *stubLib {
	return &stubLib{
		log: log,
		container: &stubContainer{
			log: log,
			streams: []Stream{
				&stubStream{log: log, index: 0, mt: MediaTypeVideo, w: 64, h: 48},
				&stubStream{log: log, index: 1, mt: MediaTypeAudio},
			},
		},
	}
}

func TestSessionOpen(t *testing.T) {
	log := &closeLog{}
	s, err := Open(avLib(log), "movie.mp4", testConf, logger.Default())
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if s.State() != Ready {
		t.Errorf("expected state ready, got %v", s.State())
	}
	if s.Width() != 64 || s.Height() != 48 {
		t.Errorf("unexpected dimensions %vx%v", s.Width(), s.Height())
	}
	if !s.HasAudio() || s.AudioIndex() != 1 || s.VideoIndex() != 0 {
		t.Errorf("stream wiring broken: audio=%v aIdx=%v vIdx=%v", s.HasAudio(), s.AudioIndex(), s.VideoIndex())
	}
	s.Close()
	want := []string{"smpconv", "pixconv", "acodec", "vcodec", "container"}
	if len(log.order) != len(want) {
		t.Fatalf("expected %v releases, got %v", want, log.order)
	}
	for i := range want {
		if log.order[i] != want[i] {
			t.Fatalf("release order %v, want %v", log.order, want)
		}
	}
	// second close must be a no-op
	s.Close()
	if len(log.order) != len(want) {
		t.Errorf("close is not idempotent: %v", log.order)
	}
}

func TestSessionOpenVideoOnly(t *testing.T) {
	log := &closeLog{}
	lib := avLib(log)
	lib.container.streams = lib.container.streams[:1]

	s, err := Open(lib, "silent.mp4", testConf, logger.Default())
	if err != nil {
		t.Fatalf("video-only open failed: %v", err)
	}
	if s.State() != Ready {
		t.Errorf("expected state ready, got %v", s.State())
	}
	if s.HasAudio() || s.AudioIndex() != -1 {
		t.Error("video-only session claims to have audio")
	}
	s.Close()
}

func TestSessionStageFailures(t *testing.T) {
	cause := errors.New("boom")
	tests := []struct {
		name     string
		breakLib func(*stubLib)
		stage    Stage
		released []string
	}{
		{
			name:     "container",
			breakLib: func(l *stubLib) { l.openErr = cause },
			stage:    StageOpenContainer,
			released: nil,
		},
		{
			name:     "stream info",
			breakLib: func(l *stubLib) { l.container.infoErr = cause },
			stage:    StageStreamInfo,
			released: []string{"container"},
		},
		{
			name: "no video stream",
			breakLib: func(l *stubLib) {
				l.container.streams = l.container.streams[1:]
			},
			stage:    StageVideoStream,
			released: []string{"container"},
		},
		{
			name: "video codec",
			breakLib: func(l *stubLib) {
				l.container.streams[0].(*stubStream).codecErr = cause
			},
			stage:    StageVideoCodec,
			released: []string{"container"},
		},
		{
			name: "audio codec",
			breakLib: func(l *stubLib) {
				l.container.streams[1].(*stubStream).codecErr = cause
			},
			stage:    StageAudioCodec,
			released: []string{"vcodec", "container"},
		},
		{
			name:     "pixel converter",
			breakLib: func(l *stubLib) { l.pixErr = cause },
			stage:    StageConverter,
			released: []string{"acodec", "vcodec", "container"},
		},
		{
			name:     "sample converter",
			breakLib: func(l *stubLib) { l.smpErr = cause },
			stage:    StageConverter,
			released: []string{"pixconv", "acodec", "vcodec", "container"},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			log := &closeLog{}
			lib := avLib(log)
			test.breakLib(lib)

			_, err := Open(lib, "movie.mp4", testConf, logger.Default())
			if err == nil {
				t.Fatal("expected setup error")
			}
			var se *SetupError
			if !errors.As(err, &se) {
				t.Fatalf("expected *SetupError, got %T", err)
			}
			if se.Stage != test.stage {
				t.Errorf("expected stage %v, got %v", test.stage, se.Stage)
			}
			if len(log.order) != len(test.released) {
				t.Fatalf("released %v, want %v", log.order, test.released)
			}
			for i := range test.released {
				if log.order[i] != test.released[i] {
					t.Fatalf("released %v, want %v", log.order, test.released)
				}
			}
		})
	}
}
