package decoder

import (
	"errors"
	"fmt"
	"io"
	"unsafe"

	"github.com/asticode/go-astiav"
)

// AstiavLibrary implements Library on top of the ffmpeg bindings.
type AstiavLibrary struct{}

func NewAstiavLibrary() AstiavLibrary { return AstiavLibrary{} }

func (AstiavLibrary) OpenContainer(path string) (Container, error) {
	fc := astiav.AllocFormatContext()
	if fc == nil {
		return nil, errors.New("decoder: format context alloc failed")
	}
	if err := fc.OpenInput(path, nil, nil); err != nil {
		fc.Free()
		return nil, err
	}
	return &astiavContainer{fc: fc}, nil
}

func (AstiavLibrary) NewPixelConverter(src Codec) (PixelConverter, error) {
	c, ok := src.(*astiavCodec)
	if !ok {
		return nil, errors.New("decoder: source codec is not an ffmpeg codec")
	}
	sws, err := astiav.CreateSoftwareScaleContext(
		c.cc.Width(), c.cc.Height(), c.cc.PixelFormat(),
		c.cc.Width(), c.cc.Height(), astiav.PixelFormatArgb,
		astiav.NewSoftwareScaleContextFlags(astiav.SoftwareScaleContextFlagBilinear),
	)
	if err != nil {
		return nil, err
	}
	return &astiavPixelConverter{sws: sws, dst: astiav.AllocFrame()}, nil
}

func (AstiavLibrary) NewSampleConverter(src Codec, dstHz, dstChannels int) (SampleConverter, error) {
	c, ok := src.(*astiavCodec)
	if !ok {
		return nil, errors.New("decoder: source codec is not an ffmpeg codec")
	}
	layout := astiav.ChannelLayoutStereo
	if dstChannels == 1 {
		layout = astiav.ChannelLayoutMono
	}
	// zero-copy when the native format already matches the target
	if c.cc.SampleFormat() == astiav.SampleFormatFlt &&
		c.cc.SampleRate() == dstHz && c.cc.ChannelLayout().Channels() == dstChannels {
		return &astiavSamplePassthrough{}, nil
	}
	dst := astiav.AllocFrame()
	dst.SetChannelLayout(layout)
	dst.SetSampleRate(dstHz)
	dst.SetSampleFormat(astiav.SampleFormatFlt)
	return &astiavSampleConverter{swr: astiav.AllocSoftwareResampleContext(), dst: dst}, nil
}

type astiavContainer struct{ fc *astiav.FormatContext }

func (c *astiavContainer) FindStreamInfo() error { return c.fc.FindStreamInfo(nil) }

func (c *astiavContainer) Streams() []Stream {
	var ss []Stream
	for _, s := range c.fc.Streams() {
		ss = append(ss, &astiavStream{s: s})
	}
	return ss
}

func (c *astiavContainer) ReadPacket() (Packet, error) {
	pkt := astiav.AllocPacket()
	if err := c.fc.ReadFrame(pkt); err != nil {
		pkt.Free()
		if errors.Is(err, astiav.ErrEof) {
			return nil, io.EOF
		}
		return nil, err
	}
	return &astiavPacket{pkt: pkt}, nil
}

func (c *astiavContainer) Close() {
	c.fc.CloseInput()
	c.fc.Free()
}

type astiavStream struct{ s *astiav.Stream }

func (s *astiavStream) Index() int { return s.s.Index() }

func (s *astiavStream) MediaType() MediaType {
	switch s.s.CodecParameters().MediaType() {
	case astiav.MediaTypeVideo:
		return MediaTypeVideo
	case astiav.MediaTypeAudio:
		return MediaTypeAudio
	}
	return MediaTypeUnknown
}

func (s *astiavStream) OpenCodec() (Codec, error) {
	cp := s.s.CodecParameters()
	codec := astiav.FindDecoder(cp.CodecID())
	if codec == nil {
		return nil, fmt.Errorf("decoder: unsupported codec %s", cp.CodecID().Name())
	}
	cc := astiav.AllocCodecContext(codec)
	if cc == nil {
		return nil, errors.New("decoder: codec context alloc failed")
	}
	if err := cp.ToCodecContext(cc); err != nil {
		cc.Free()
		return nil, err
	}
	if err := cc.Open(codec, nil); err != nil {
		cc.Free()
		return nil, err
	}
	return &astiavCodec{cc: cc}, nil
}

type astiavCodec struct{ cc *astiav.CodecContext }

func (c *astiavCodec) Decode(p Packet) (RawFrame, bool, error) {
	pkt := p.(*astiavPacket)
	if err := c.cc.SendPacket(pkt.pkt); err != nil {
		return nil, false, err
	}
	f := astiav.AllocFrame()
	if err := c.cc.ReceiveFrame(f); err != nil {
		f.Free()
		// the codec buffered the data and has nothing to output yet
		if errors.Is(err, astiav.ErrEagain) || errors.Is(err, astiav.ErrEof) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return &astiavFrame{f: f}, true, nil
}

func (c *astiavCodec) Width() int      { return c.cc.Width() }
func (c *astiavCodec) Height() int     { return c.cc.Height() }
func (c *astiavCodec) SampleRate() int { return c.cc.SampleRate() }
func (c *astiavCodec) Channels() int   { return c.cc.ChannelLayout().Channels() }
func (c *astiavCodec) Close()          { c.cc.Free() }

type astiavPacket struct{ pkt *astiav.Packet }

func (p *astiavPacket) StreamIndex() int { return p.pkt.StreamIndex() }
func (p *astiavPacket) Release()         { p.pkt.Free() }

type astiavFrame struct{ f *astiav.Frame }

func (f *astiavFrame) Release() { f.f.Free() }

type astiavPixelConverter struct {
	sws *astiav.SoftwareScaleContext
	dst *astiav.Frame
}

func (pc *astiavPixelConverter) Convert(f RawFrame) ([]byte, error) {
	src := f.(*astiavFrame)
	pc.dst.Unref()
	if err := pc.sws.ScaleFrame(src.f, pc.dst); err != nil {
		return nil, err
	}
	b, err := pc.dst.Data().Bytes(1)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out, nil
}

func (pc *astiavPixelConverter) Close() {
	pc.dst.Free()
	pc.sws.Free()
}

type astiavSampleConverter struct {
	swr *astiav.SoftwareResampleContext
	dst *astiav.Frame
}

func (sc *astiavSampleConverter) Convert(f RawFrame) ([]float32, error) {
	src := f.(*astiavFrame)
	if err := sc.swr.ConvertFrame(src.f, sc.dst); err != nil {
		return nil, err
	}
	return frameSamples(sc.dst)
}

func (sc *astiavSampleConverter) Close() {
	sc.dst.Free()
	sc.swr.Free()
}

// astiavSamplePassthrough copies samples out without resampling.
type astiavSamplePassthrough struct{}

func (astiavSamplePassthrough) Convert(f RawFrame) ([]float32, error) {
	return frameSamples(f.(*astiavFrame).f)
}

func (astiavSamplePassthrough) Close() {}

func frameSamples(f *astiav.Frame) ([]float32, error) {
	b, err := f.Data().Bytes(0)
	if err != nil {
		return nil, err
	}
	if len(b) < 4 {
		return nil, nil
	}
	raw := unsafe.Slice((*float32)(unsafe.Pointer(&b[0])), len(b)/4)
	out := make([]float32, len(raw))
	copy(out, raw)
	return out, nil
}
