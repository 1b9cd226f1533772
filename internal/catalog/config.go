package catalog

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is the prefix of environment variables overriding a Config.
const EnvPrefix = "MEDIACAT"

// Config captures catalog settings loaded from a JSON file and the environment.
type Config struct {
	Root               string   `json:"root" envconfig:"ROOT"`
	SizeThresholdMB    int64    `json:"size_threshold_mb" envconfig:"SIZE_THRESHOLD_MB"`
	VideoExtensions    []string `json:"video_extensions" envconfig:"VIDEO_EXTENSIONS"`
	SubtitleExtensions []string `json:"subtitle_extensions" envconfig:"SUBTITLE_EXTENSIONS"`
	JournalPath        string   `json:"journal" envconfig:"JOURNAL"`
	HookCommand        string   `json:"hook_command" envconfig:"HOOK_COMMAND"`
	LogLevel           string   `json:"log_level" envconfig:"LOG_LEVEL"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() Config {
	return Config{
		SizeThresholdMB:    DefaultSizeThreshold / (1024 * 1024),
		VideoExtensions:    append([]string(nil), DefaultVideoExtensions...),
		SubtitleExtensions: append([]string(nil), DefaultSubtitleExtensions...),
		LogLevel:           "info",
	}
}

// LoadConfig starts from DefaultConfig, applies the JSON file at path when
// path is not empty, then applies MEDIACAT_* environment overrides.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := json.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("load environment config: %w", err)
	}
	if cfg.SizeThresholdMB <= 0 {
		return Config{}, fmt.Errorf("%w: size threshold must be positive, got %d MB", ErrInvalidArgument, cfg.SizeThresholdMB)
	}
	return cfg, nil
}

// Options converts the configuration into catalog options. Collaborators
// such as the logger and targets are left for the caller to set.
func (c Config) Options() Options {
	return Options{
		SizeThreshold:      c.SizeThresholdMB * 1024 * 1024,
		VideoExtensions:    append([]string(nil), c.VideoExtensions...),
		SubtitleExtensions: append([]string(nil), c.SubtitleExtensions...),
	}
}
