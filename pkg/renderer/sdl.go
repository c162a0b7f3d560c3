package renderer

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/playpipe/playpipe/pkg/logger"
	"github.com/playpipe/playpipe/pkg/thread"
)

// SDL renders frames into a streaming ARGB8888 texture. All SDL calls go
// through thread.MainMaybe because window and renderer handles are not
// usable off the main thread on macOS.
type SDL struct {
	log    *logger.Logger
	title  string
	hidden bool

	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture
	w, h     int
}

func NewSDL(title string, hidden bool, log *logger.Logger) *SDL {
	return &SDL{log: log, title: title, hidden: hidden}
}

func (s *SDL) CreateSurface(w, h int) (err error) {
	if w <= 0 || h <= 0 {
		return fmt.Errorf("renderer: bad surface size %vx%v", w, h)
	}
	thread.MainMaybe(func() {
		if err = sdl.InitSubSystem(sdl.INIT_VIDEO); err != nil {
			return
		}
		flags := uint32(sdl.WINDOW_SHOWN)
		if s.hidden {
			flags = sdl.WINDOW_HIDDEN
		}
		s.window, err = sdl.CreateWindow(s.title,
			sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED, int32(w), int32(h), flags)
		if err != nil {
			return
		}
		s.renderer, err = sdl.CreateRenderer(s.window, -1, sdl.RENDERER_ACCELERATED)
		if err != nil {
			return
		}
		s.texture, err = s.renderer.CreateTexture(
			sdl.PIXELFORMAT_ARGB8888, sdl.TEXTUREACCESS_STREAMING, int32(w), int32(h))
	})
	if err != nil {
		s.Close()
		return err
	}
	s.w, s.h = w, h
	s.log.Debug().Int("w", w).Int("h", h).Msg("surface created")
	return nil
}

func (s *SDL) Upload(pixels []byte) (err error) {
	if len(pixels) != s.w*s.h*4 {
		return fmt.Errorf("renderer: payload size %v, want %v", len(pixels), s.w*s.h*4)
	}
	if s.texture == nil {
		return errors.New("renderer: no surface")
	}
	thread.MainMaybe(func() {
		if err = s.texture.Update(nil, unsafe.Pointer(&pixels[0]), s.w*4); err != nil {
			return
		}
		if err = s.renderer.Clear(); err != nil {
			return
		}
		if err = s.renderer.Copy(s.texture, nil, nil); err != nil {
			return
		}
		s.renderer.Present()
	})
	return err
}

func (s *SDL) Close() {
	thread.MainMaybe(func() {
		if s.texture != nil {
			_ = s.texture.Destroy()
			s.texture = nil
		}
		if s.renderer != nil {
			_ = s.renderer.Destroy()
			s.renderer = nil
		}
		if s.window != nil {
			_ = s.window.Destroy()
			s.window = nil
		}
		sdl.QuitSubSystem(sdl.INIT_VIDEO)
	})
}

// SDLAudio queues float samples into an SDL audio device.
type SDLAudio struct {
	log *logger.Logger
	dev sdl.AudioDeviceID
}

func NewSDLAudio(hz, channels int, log *logger.Logger) (*SDLAudio, error) {
	if err := sdl.InitSubSystem(sdl.INIT_AUDIO); err != nil {
		return nil, err
	}
	want := sdl.AudioSpec{
		Freq:     int32(hz),
		Format:   sdl.AUDIO_F32SYS,
		Channels: uint8(channels),
		Samples:  1024,
	}
	dev, err := sdl.OpenAudioDevice("", false, &want, nil, 0)
	if err != nil {
		sdl.QuitSubSystem(sdl.INIT_AUDIO)
		return nil, err
	}
	sdl.PauseAudioDevice(dev, false)
	log.Debug().Int("hz", hz).Int("channels", channels).Msg("audio device opened")
	return &SDLAudio{log: log, dev: dev}, nil
}

func (a *SDLAudio) Queue(samples []float32) error {
	if len(samples) == 0 {
		return nil
	}
	data := unsafe.Slice((*byte)(unsafe.Pointer(&samples[0])), len(samples)*4)
	return sdl.QueueAudio(a.dev, data)
}

func (a *SDLAudio) Close() {
	sdl.CloseAudioDevice(a.dev)
	sdl.QuitSubSystem(sdl.INIT_AUDIO)
}
