package decoder

import (
	"errors"
	"fmt"
)

// Stage names the setup step a SetupError happened in.
type Stage string

const (
	StageOpenContainer Stage = "container"
	StageStreamInfo    Stage = "stream_info"
	StageVideoStream   Stage = "video_stream"
	StageVideoCodec    Stage = "video_codec"
	StageAudioStream   Stage = "audio_stream"
	StageAudioCodec    Stage = "audio_codec"
	StageConverter     Stage = "converter"
)

var (
	ErrNoVideoStream = errors.New("no video stream")
	ErrNoAudioStream = errors.New("no audio stream")
)

// SetupError is a fatal session setup failure. Unlike per-packet decode
// errors it aborts the whole session.
type SetupError struct {
	Stage Stage
	Path  string
	Err   error
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("decoder: %s stage failed for %q: %v", e.Stage, e.Path, e.Err)
}

func (e *SetupError) Unwrap() error { return e.Err }
