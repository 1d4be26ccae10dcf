// Package config layers subforge settings: built-in defaults, an optional
// YAML file (subforge.yaml in the working directory or the user config
// directory, or an explicit --config path) and SUBFORGE_* environment
// variables, e.g. SUBFORGE_STYLE_FONT_SIZE=32.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/mgpai22/subforge/internal/subtitle"
)

const EnvPrefix = "SUBFORGE"

type Config struct {
	Style     StyleConfig     `mapstructure:"style"`
	Editor    EditorConfig    `mapstructure:"editor"`
	FFmpeg    FFmpegConfig    `mapstructure:"ffmpeg"`
	Translate TranslateConfig `mapstructure:"translate"`
}

// defaults for cues created in the editor
type StyleConfig struct {
	X               float64 `mapstructure:"x"`
	Y               float64 `mapstructure:"y"`
	FontSize        int     `mapstructure:"font_size"`
	Color           string  `mapstructure:"color"`
	BackgroundColor string  `mapstructure:"background_color"`
	FontFamily      string  `mapstructure:"font_family"`
}

type EditorConfig struct {
	FineStep     float64 `mapstructure:"fine_step"`
	CoarseStep   float64 `mapstructure:"coarse_step"`
	FPS          float64 `mapstructure:"fps"`
	CanvasWidth  int     `mapstructure:"canvas_width"`
	CanvasHeight int     `mapstructure:"canvas_height"`
	FramesDir    string  `mapstructure:"frames_dir"`
}

type FFmpegConfig struct {
	FFmpegPath    string `mapstructure:"ffmpeg_path"`
	FFprobePath   string `mapstructure:"ffprobe_path"`
	AllowDownload bool   `mapstructure:"allow_download"`
}

type TranslateConfig struct {
	Provider    string `mapstructure:"provider"`
	Model       string `mapstructure:"model"`
	BatchSize   int    `mapstructure:"batch_size"`
	Concurrency int    `mapstructure:"concurrency"`
}

func setDefaults(v *viper.Viper) {
	d := subtitle.DefaultStyle
	v.SetDefault("style.x", d.X)
	v.SetDefault("style.y", d.Y)
	v.SetDefault("style.font_size", d.FontSize)
	v.SetDefault("style.color", d.Color)
	v.SetDefault("style.background_color", d.BackgroundColor)
	v.SetDefault("style.font_family", d.FontFamily)

	v.SetDefault("editor.fine_step", 1.0)
	v.SetDefault("editor.coarse_step", 5.0)
	v.SetDefault("editor.fps", 10.0)
	v.SetDefault("editor.canvas_width", 1280)
	v.SetDefault("editor.canvas_height", 720)
	v.SetDefault("editor.frames_dir", filepath.Join(os.TempDir(), "subforge-frames"))

	v.SetDefault("ffmpeg.ffmpeg_path", "")
	v.SetDefault("ffmpeg.ffprobe_path", "")
	v.SetDefault("ffmpeg.allow_download", false)

	v.SetDefault("translate.provider", "gemini")
	v.SetDefault("translate.model", "")
	v.SetDefault("translate.batch_size", 50)
	v.SetDefault("translate.concurrency", 3)
}

// Default returns the built-in configuration.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	cfg := &Config{}
	_ = v.Unmarshal(cfg)
	return cfg
}

// Load reads the configuration. An explicit path must exist; without one a
// missing subforge.yaml is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("subforge")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "subforge"))
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	s := c.Style
	if s.X < 0 || s.X > 100 || s.Y < 0 || s.Y > 100 {
		return fmt.Errorf("style position must be within 0..100, got x=%v y=%v", s.X, s.Y)
	}
	if s.FontSize < subtitle.MinFontSize || s.FontSize > subtitle.MaxFontSize {
		return fmt.Errorf(
			"style.font_size must be within %d..%d, got %d",
			subtitle.MinFontSize, subtitle.MaxFontSize, s.FontSize,
		)
	}
	if _, err := subtitle.ParseColor(s.Color); err != nil {
		return fmt.Errorf("style.color: %w", err)
	}
	if _, err := subtitle.ParseColor(s.BackgroundColor); err != nil {
		return fmt.Errorf("style.background_color: %w", err)
	}
	if c.Editor.FineStep <= 0 || c.Editor.CoarseStep <= 0 {
		return fmt.Errorf("editor steps must be positive")
	}
	if c.Editor.FPS <= 0 {
		return fmt.Errorf("editor.fps must be positive, got %v", c.Editor.FPS)
	}
	if c.Editor.CanvasWidth <= 0 || c.Editor.CanvasHeight <= 0 {
		return fmt.Errorf("editor canvas size must be positive")
	}
	return nil
}

// style applied to new cues
func (c *Config) CueStyle() subtitle.Style {
	return subtitle.Style{
		X:               c.Style.X,
		Y:               c.Style.Y,
		FontSize:        c.Style.FontSize,
		Color:           c.Style.Color,
		BackgroundColor: c.Style.BackgroundColor,
		FontFamily:      c.Style.FontFamily,
	}
}
