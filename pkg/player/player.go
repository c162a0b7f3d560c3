// Package player couples the decode producer, the frame buffer, and the
// ticked render consumer into one playback session per media file.
package player

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/playpipe/playpipe/pkg/config"
	"github.com/playpipe/playpipe/pkg/decoder"
	"github.com/playpipe/playpipe/pkg/logger"
	"github.com/playpipe/playpipe/pkg/media"
	"github.com/playpipe/playpipe/pkg/renderer"
)

// Player orchestrates playback sessions. One instance plays files
// sequentially; Pause and Cancel may be called from any goroutine.
type Player struct {
	conf   config.Player
	dconf  config.Decoder
	lib    decoder.Library
	out    renderer.Renderer
	audio  renderer.AudioSink
	events Events
	log    *logger.Logger

	gate *media.Gate

	mu      sync.Mutex
	cancel  *media.Flag
	stopped atomic.Bool
}

func New(conf config.AppConfig, lib decoder.Library, out renderer.Renderer,
	audio renderer.AudioSink, events Events, log *logger.Logger) *Player {
	return &Player{
		conf:   conf.Player,
		dconf:  conf.Decoder,
		lib:    lib,
		out:    out,
		audio:  audio,
		events: events,
		log:    log,
		gate:   media.NewGate(),
	}
}

// SetPaused suspends or resumes the decode producer. The consumer keeps
// ticking; it just sees a buffer that stops growing.
func (p *Player) SetPaused(v bool) { p.gate.Set(v) }

func (p *Player) Paused() bool { return p.gate.Paused() }

// Cancel requests a cooperative stop of the current session and of the
// playlist. The gate is reopened so a paused producer can observe the flag.
func (p *Player) Cancel() {
	p.stopped.Store(true)
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel.Set()
	}
	p.mu.Unlock()
	p.gate.Resume()
}

// Play runs one full session for path: staged setup, surface prep,
// producer start, the consumer start barrier, ticked consumption, and
// teardown once the producer reports a terminal state.
func (p *Player) Play(path string) error {
	flag := &media.Flag{}
	p.mu.Lock()
	p.cancel = flag
	p.mu.Unlock()
	if p.stopped.Load() {
		flag.Set()
		return nil
	}

	sess, err := decoder.Open(p.lib, path, p.dconf, p.log)
	if err != nil {
		p.log.Error().Err(err).Str("path", path).Msg("session setup failed")
		p.events.error(err)
		return err
	}
	defer sess.Close()

	if err := p.out.CreateSurface(sess.Width(), sess.Height()); err != nil {
		p.events.error(err)
		return err
	}

	buf := media.NewBuffer(p.conf.BufferSize)
	prod := newProducer(sess, buf, p.gate, flag, p.conf.FullRetry, &p.events, p.log)
	go prod.run()

	// Consumer start barrier: do not tick against a buffer the producer
	// has not touched yet.
	<-prod.Ready()

	cons := newConsumer(buf, p.out, p.audio, &p.events, p.log)
	tick := p.conf.Tick
	if tick <= 0 {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

loop:
	for {
		select {
		case <-ticker.C:
			cons.Tick()
		case <-prod.Done():
			break loop
		}
	}

	// Natural end of stream: keep ticking until the buffered tail is
	// rendered, then let the final tick report the empty buffer.
	if prod.EOS() && !flag.Done() {
		for buf.Len() > 0 && !flag.Done() {
			<-ticker.C
			cons.Tick()
		}
		cons.Tick()
	}

	// Teardown must not overlap a producer iteration.
	flag.Set()
	<-prod.Done()

	p.log.Info().Str("path", path).Uint64("rendered", cons.rendered).Msg("session finished")
	p.events.finished()
	return nil
}

// PlayAll plays the given files back to back. Setup failures skip to the
// next file unless the config says to halt; Cancel stops the whole list.
func (p *Player) PlayAll(paths []string) error {
	for _, path := range paths {
		if p.stopped.Load() {
			return nil
		}
		err := p.Play(path)
		var se *decoder.SetupError
		if errors.As(err, &se) {
			if p.conf.HaltOnError {
				return err
			}
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}
