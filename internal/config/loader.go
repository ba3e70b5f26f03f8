package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// PathEnv names the environment variable pointing at the YAML file.
const PathEnv = "CONFIG_PATH"

// DefaultPath is read when PathEnv is unset and the file exists.
const DefaultPath = "./config.yaml"

// Load builds the configuration from env-default tags, the YAML file and the
// environment, in increasing priority, then validates it. A file named by
// PathEnv must exist; the default one is optional.
func Load() (*Config, error) {
	path, required := filePath()
	cfg, err := read(path, required)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return cfg, nil
}

func filePath() (path string, required bool) {
	if p := os.Getenv(PathEnv); p != "" {
		return p, true
	}
	return DefaultPath, false
}

func read(path string, required bool) (*Config, error) {
	var cfg Config
	_, statErr := os.Stat(path)
	switch {
	case statErr == nil:
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	case required:
		return nil, fmt.Errorf("config: file %s: %w", path, statErr)
	default:
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config: read env: %w", err)
		}
	}
	return &cfg, nil
}
