package player

import (
	"github.com/playpipe/playpipe/pkg/logger"
	"github.com/playpipe/playpipe/pkg/media"
	"github.com/playpipe/playpipe/pkg/metrics"
	"github.com/playpipe/playpipe/pkg/renderer"
)

// consumer pops at most one frame per tick and hands it to the
// presentation collaborators. It never blocks and never reorders.
type consumer struct {
	buf    *media.Buffer
	out    renderer.Renderer
	audio  renderer.AudioSink
	log    *logger.Logger
	events *Events

	wasEmpty bool
	rendered uint64
}

func newConsumer(buf *media.Buffer, out renderer.Renderer, audio renderer.AudioSink,
	events *Events, log *logger.Logger) *consumer {
	if audio == nil {
		audio = renderer.NopAudio{}
	}
	return &consumer{buf: buf, out: out, audio: audio, log: log, events: events}
}

// Tick runs one consumer step. Upload failures are logged and the frame
// is dropped; presentation errors must not stall the pipeline.
func (c *consumer) Tick() {
	f, ok := c.buf.TryPop()
	metrics.BufferDepth.Set(float64(c.buf.Len()))
	if !ok {
		if !c.wasEmpty {
			c.wasEmpty = true
			c.events.bufferEmpty()
			metrics.BufferEmpty.Inc()
		}
		return
	}
	c.wasEmpty = false

	if f.Video != nil {
		if err := c.out.Upload(f.Video); err != nil {
			c.log.Warn().Err(err).Uint64("seq", f.Seq).Msg("frame upload failed")
		} else {
			c.rendered++
			metrics.FramesRendered.Inc()
		}
	}
	if f.Audio != nil {
		if err := c.audio.Queue(f.Audio); err != nil {
			c.log.Warn().Err(err).Uint64("seq", f.Seq).Msg("audio queue failed")
		}
	}
}
