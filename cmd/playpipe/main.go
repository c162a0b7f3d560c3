package main

import (
	"context"
	goflag "flag"

	"github.com/playpipe/playpipe/pkg/config"
	"github.com/playpipe/playpipe/pkg/decoder"
	"github.com/playpipe/playpipe/pkg/logger"
	"github.com/playpipe/playpipe/pkg/monitoring"
	"github.com/playpipe/playpipe/pkg/os"
	"github.com/playpipe/playpipe/pkg/player"
	"github.com/playpipe/playpipe/pkg/renderer"
	"github.com/playpipe/playpipe/pkg/thread"
	flag "github.com/spf13/pflag"
)

var Version = "?"

func main() {
	conf := config.NewAppConfig()
	flag.CommandLine.AddGoFlagSet(goflag.CommandLine)
	conf.ParseFlags()

	log := logger.NewConsole(conf.Debug, "pp", false)

	log.Info().Msgf("version %s", Version)
	if conf.Debug {
		log.Debug().Msgf("config: %+v", conf)
	}

	paths := goflag.Args()
	if len(paths) == 0 {
		log.Fatal().Msg("no media files given")
	}

	lock, err := os.NewFileLock("")
	if err != nil {
		log.Fatal().Err(err).Msg("couldn't create the instance lock")
	}
	ok, err := lock.TryLock()
	if err != nil || !ok {
		log.Fatal().Err(err).Msg("another player instance is running")
	}
	defer func() { _ = lock.Unlock() }()

	if conf.Monitoring.IsEnabled() {
		m := monitoring.New(conf.Monitoring, log)
		go m.Run()
		defer func() {
			if err := m.Shutdown(context.Background()); err != nil {
				log.Error().Err(err).Msg("monitoring shutdown errors")
			}
		}()
	}

	thread.MainWrapMaybe(func() { run(conf, paths, log) })
}

func run(conf config.AppConfig, paths []string, log *logger.Logger) {
	out := renderer.NewSDL(conf.Renderer.Title, conf.Renderer.HideWindow, log)
	defer out.Close()

	var audio renderer.AudioSink
	if !conf.Renderer.DisableAudio {
		sink, err := renderer.NewSDLAudio(conf.Decoder.AudioHz, conf.Decoder.AudioChannels, log)
		if err != nil {
			log.Warn().Err(err).Msg("no audio device, playing video only")
		} else {
			audio = sink
			defer sink.Close()
		}
	}

	events := player.Events{
		OnBufferFull:  func() { log.Debug().Msg("frame buffer is full") },
		OnBufferEmpty: func() { log.Debug().Msg("frame buffer is empty") },
	}
	p := player.New(conf, decoder.NewAstiavLibrary(), out, audio, events, log)

	go func() {
		<-os.ExpectTermination()
		log.Info().Msg("termination signal received")
		p.Cancel()
	}()

	if err := p.PlayAll(paths); err != nil {
		log.Error().Err(err).Msg("playback failed")
	}
}
