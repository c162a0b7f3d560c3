package config

import (
	"errors"
	"flag"
	"time"

	"github.com/kkyr/fig"
)

type AppConfig struct {
	Player     Player
	Decoder    Decoder
	Renderer   Renderer
	Monitoring Monitoring
	Debug      bool
}

type Player struct {
	// max number of decoded frames held between the producer and the consumer
	BufferSize int `fig:"bufferSize" default:"30"`
	// consumer tick period
	Tick time.Duration `fig:"tick" default:"10ms"`
	// producer backoff while the buffer has no space
	FullRetry time.Duration `fig:"fullRetry" default:"5ms"`
	// stop the playlist on the first setup failure instead of skipping the file
	HaltOnError bool `fig:"haltOnError"`
}

type Decoder struct {
	// target audio params, decoded audio is resampled to these
	AudioHz       int `fig:"audioHz" default:"48000"`
	AudioChannels int `fig:"audioChannels" default:"2"`
}

type Renderer struct {
	Title        string `fig:"title" default:"playpipe"`
	HideWindow   bool   `fig:"hideWindow"`
	DisableAudio bool   `fig:"disableAudio"`
}

type Monitoring struct {
	Port             int    `fig:"port" default:"6601"`
	URLPrefix        string `fig:"urlPrefix"`
	MetricEnabled    bool   `fig:"metricEnabled"`
	ProfilingEnabled bool   `fig:"profilingEnabled"`
}

func (m *Monitoring) IsEnabled() bool { return m.MetricEnabled || m.ProfilingEnabled }

// allows custom config path
var appConfigPath string

func NewAppConfig() (conf AppConfig) {
	err := LoadConfig(&conf, appConfigPath)
	if errors.Is(err, fig.ErrFileNotFound) {
		err = LoadConfigEnv(&conf)
	}
	if err != nil {
		panic(err)
	}
	return
}

// ParseFlags updates config values from passed runtime flags.
// Define own flags with default value set to the current config param.
// Don't forget to call flag.Parse().
func (c *AppConfig) ParseFlags() {
	flag.BoolVar(&c.Debug, "debug", c.Debug, "Enable debug logging")
	flag.IntVar(&c.Player.BufferSize, "buffer", c.Player.BufferSize, "Frame buffer capacity")
	flag.DurationVar(&c.Player.Tick, "tick", c.Player.Tick, "Render tick period")
	flag.BoolVar(&c.Player.HaltOnError, "halt", c.Player.HaltOnError, "Halt the playlist on setup errors")
	flag.IntVar(&c.Monitoring.Port, "monitoring.port", c.Monitoring.Port, "Monitoring server port")
	flag.StringVar(&appConfigPath, "conf", appConfigPath, "Set custom configuration file path")
	flag.Parse()
}
