package config

import (
	"os"

	"github.com/kkyr/fig"
)

const EnvPrefix = "PLAYPIPE"

// LoadConfig loads a configuration file into the given struct.
// The path param specifies a custom path to the configuration file.
// Reads and puts environment variables with the prefix PLAYPIPE_.
// Params from the config should be in uppercase separated with _.
func LoadConfig(config any, path string) error {
	var dirs []string
	if path != "" {
		dirs = append(dirs, path)
	} else {
		dirs = append(dirs, ".", "configs", "../../configs")
		if home, err := os.UserHomeDir(); err == nil {
			dirs = append(dirs, home+"/.playpipe")
		}
	}
	return fig.Load(config, fig.Dirs(dirs...), fig.UseEnv(EnvPrefix))
}

// LoadConfigEnv fills the struct from defaults and environment only.
func LoadConfigEnv(config any) error {
	return fig.Load(config, fig.IgnoreFile(), fig.UseEnv(EnvPrefix))
}
