package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	// Width of exported animation frames in pixels; height follows the 3:2 canvas.
	Width      int    `mapstructure:"width"`
	Speed      string `mapstructure:"speed"`
	Steps      int    `mapstructure:"steps"`
	Easing     string `mapstructure:"easing"`
	Workers    int    `mapstructure:"workers"`
	Dither     bool   `mapstructure:"dither"`
	Background string `mapstructure:"background"`

	ThumbnailWidth   int           `mapstructure:"thumbnailWidth"`
	PlaybackInterval time.Duration `mapstructure:"playbackInterval"`

	Document DocumentConfig `mapstructure:"document"`

	VideoEncoder string `mapstructure:"videoEncoder"`
	Quality      int    `mapstructure:"quality"`

	LogLevel     string `mapstructure:"logLevel"`
	ScenariosDir string `mapstructure:"scenariosDir"`
	OutputDir    string `mapstructure:"outputDir"`

	API  APIConfig  `mapstructure:"api"`
	Poll PollConfig `mapstructure:"poll"`
}

type DocumentConfig struct {
	PageSize    string `mapstructure:"pageSize"`
	Orientation string `mapstructure:"orientation"`
	DPI         int    `mapstructure:"dpi"`
	// ShareURL is a template; "{id}" is replaced with the drill id.
	ShareURL string `mapstructure:"shareUrl"`
}

type APIConfig struct {
	BaseURL string        `mapstructure:"baseUrl"`
	Token   string        `mapstructure:"token"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type PollConfig struct {
	Interval    time.Duration `mapstructure:"interval"`
	MaxAttempts int           `mapstructure:"maxAttempts"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("width", 900)
	v.SetDefault("speed", "regular")
	v.SetDefault("steps", 10)
	v.SetDefault("easing", "linear")
	v.SetDefault("workers", 0)
	v.SetDefault("dither", true)
	v.SetDefault("background", "")

	v.SetDefault("thumbnailWidth", 300)
	v.SetDefault("playbackInterval", 2*time.Second)

	v.SetDefault("document.pageSize", "A4")
	v.SetDefault("document.orientation", "L")
	v.SetDefault("document.dpi", 150)
	v.SetDefault("document.shareUrl", "")

	v.SetDefault("videoEncoder", "auto")
	v.SetDefault("quality", 0)

	v.SetDefault("logLevel", "info")
	v.SetDefault("scenariosDir", "scenarios")
	v.SetDefault("outputDir", "output")

	v.SetDefault("api.baseUrl", "http://localhost:8000")
	v.SetDefault("api.token", "")
	v.SetDefault("api.timeout", 30*time.Second)

	v.SetDefault("poll.interval", 10*time.Second)
	v.SetDefault("poll.maxAttempts", 90)
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg, err := decode(newViper())
	if err != nil {
		// defaults are static and always decode
		panic(err)
	}
	return cfg
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("DRILLANIM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads drillanim.yaml. An explicit path must exist; with an empty path
// the working directory is searched and a missing file means defaults.
// DRILLANIM_* environment variables override file values.
func Load(path string) (*Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("drillanim")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values the pipeline cannot work with.
func (c *Config) Validate() error {
	switch {
	case c.Width <= 0:
		return fmt.Errorf("width must be positive, got %d", c.Width)
	case c.Steps < 1:
		return fmt.Errorf("steps must be at least 1, got %d", c.Steps)
	case c.ThumbnailWidth <= 0:
		return fmt.Errorf("thumbnailWidth must be positive, got %d", c.ThumbnailWidth)
	case c.Poll.Interval <= 0:
		return fmt.Errorf("poll.interval must be positive, got %s", c.Poll.Interval)
	case c.Poll.MaxAttempts < 1:
		return fmt.Errorf("poll.maxAttempts must be at least 1, got %d", c.Poll.MaxAttempts)
	}
	return nil
}

// ShareURLFor expands the document share URL template for a drill id.
func (c *Config) ShareURLFor(id string) string {
	if c.Document.ShareURL == "" || id == "" {
		return ""
	}
	return strings.ReplaceAll(c.Document.ShareURL, "{id}", id)
}
