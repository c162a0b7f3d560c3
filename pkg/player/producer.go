package player

import (
	"errors"
	"io"
	"sync"
	"time"

	"github.com/playpipe/playpipe/pkg/decoder"
	"github.com/playpipe/playpipe/pkg/logger"
	"github.com/playpipe/playpipe/pkg/media"
	"github.com/playpipe/playpipe/pkg/metrics"
)

// source is the slice of decoder.Session the producer needs. Tests
// substitute stubs.
type source interface {
	ReadPacket() (decoder.Packet, error)
	DecodeVideo(decoder.Packet) (decoder.RawFrame, bool, error)
	DecodeAudio(decoder.Packet) (decoder.RawFrame, bool, error)
	ConvertVideo(decoder.RawFrame) ([]byte, error)
	ConvertAudio(decoder.RawFrame) ([]float32, error)
	VideoIndex() int
	AudioIndex() int
}

// producer pulls packets from the source, decodes and converts them, and
// pushes the results into the frame buffer. It stops on end-of-stream,
// on a container read error, or when the cancel flag is set.
type producer struct {
	src    source
	buf    *media.Buffer
	gate   *media.Gate
	cancel *media.Flag
	log    *logger.Logger
	events *Events
	retry  time.Duration

	seq     uint64
	wasFull bool
	eos     bool

	readyOnce sync.Once
	ready     chan struct{}
	done      chan struct{}
}

func newProducer(src source, buf *media.Buffer, gate *media.Gate, cancel *media.Flag,
	retry time.Duration, events *Events, log *logger.Logger) *producer {
	if retry <= 0 {
		retry = 5 * time.Millisecond
	}
	return &producer{
		src:    src,
		buf:    buf,
		gate:   gate,
		cancel: cancel,
		log:    log,
		events: events,
		retry:  retry,
		ready:  make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Ready is the consumer start barrier: closed after the first enqueue or
// the first buffer-full stall, and at the latest when the producer exits.
func (p *producer) Ready() <-chan struct{} { return p.ready }

// Done is closed exactly once, after the loop exits and all per-session
// decode work has stopped.
func (p *producer) Done() <-chan struct{} { return p.done }

// EOS reports whether the loop ended by exhausting the container.
// Valid only after Done is closed.
func (p *producer) EOS() bool { return p.eos }

func (p *producer) run() {
	defer p.finish()
	for {
		p.gate.WaitIfPaused()
		if p.cancel.Done() {
			p.log.Debug().Msg("producer cancelled")
			return
		}
		pkt, err := p.src.ReadPacket()
		if err != nil {
			if errors.Is(err, io.EOF) {
				p.eos = true
				p.log.Debug().Uint64("frames", p.seq).Msg("end of stream")
			} else {
				p.log.Error().Err(err).Msg("container read failed")
			}
			return
		}
		p.handlePacket(pkt)
	}
}

// handlePacket decodes and converts one packet. Decode and conversion
// failures skip the packet, they never stop the stream. The packet's
// native resources are released before the next read no matter what.
func (p *producer) handlePacket(pkt decoder.Packet) {
	defer pkt.Release()

	var frame media.Frame
	switch pkt.StreamIndex() {
	case p.src.VideoIndex():
		raw, ok, err := p.src.DecodeVideo(pkt)
		if err != nil {
			p.skip("video decode", err)
			return
		}
		if !ok {
			return
		}
		defer raw.Release()
		pixels, err := p.src.ConvertVideo(raw)
		if err != nil {
			p.skip("video convert", err)
			return
		}
		frame.Video = pixels
		metrics.FramesProduced.WithLabelValues("video").Inc()
	case p.src.AudioIndex():
		raw, ok, err := p.src.DecodeAudio(pkt)
		if err != nil {
			p.skip("audio decode", err)
			return
		}
		if !ok {
			return
		}
		defer raw.Release()
		samples, err := p.src.ConvertAudio(raw)
		if err != nil {
			p.skip("audio convert", err)
			return
		}
		frame.Audio = samples
		metrics.FramesProduced.WithLabelValues("audio").Inc()
	default:
		return
	}
	p.enqueue(frame)
}

// enqueue pushes the frame, backing off briefly while the buffer is full.
// The stall is a poll with a sleep, not a hot spin, and it stays
// responsive to cancellation.
func (p *producer) enqueue(f media.Frame) {
	f.Seq = p.seq + 1
	for {
		if p.cancel.Done() {
			return
		}
		if p.buf.TryPush(f) {
			p.seq++
			p.wasFull = false
			p.signalReady()
			return
		}
		if !p.wasFull {
			p.wasFull = true
			p.events.bufferFull()
			metrics.BufferFull.Inc()
		}
		p.signalReady()
		time.Sleep(p.retry)
	}
}

func (p *producer) skip(what string, err error) {
	p.log.Warn().Err(err).Msgf("%s failed, packet skipped", what)
	metrics.PacketsSkipped.Inc()
}

func (p *producer) signalReady() {
	p.readyOnce.Do(func() { close(p.ready) })
}

func (p *producer) finish() {
	p.signalReady() // never leave the start barrier hanging
	close(p.done)
}
