// Package config loads compositor settings from defaults, an optional TOML
// file and PICO_ environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"pico-compositor/internal/scene"
	"pico-compositor/pkg/colorutil"
)

// Config holds application configuration.
type Config struct {
	Canvas      CanvasConfig      `mapstructure:"canvas"`
	Intake      IntakeConfig      `mapstructure:"intake"`
	Interaction InteractionConfig `mapstructure:"interaction"`
	Scale       ScaleConfig       `mapstructure:"scale"`
	Export      ExportConfig      `mapstructure:"export"`
	Log         LogConfig         `mapstructure:"log"`
	Preview     PreviewConfig     `mapstructure:"preview"`
}

// CanvasConfig holds frame settings.
type CanvasConfig struct {
	Aspect    string `mapstructure:"aspect"`
	FillColor string `mapstructure:"fill_color"`
}

// IntakeConfig holds upload limits.
type IntakeConfig struct {
	MaxDimension int `mapstructure:"max_dimension"`
}

// InteractionConfig holds pointer settings.
type InteractionConfig struct {
	DeselectDebounce time.Duration `mapstructure:"deselect_debounce"`
}

// ScaleConfig holds slider bounds.
type ScaleConfig struct {
	Min  float64 `mapstructure:"min"`
	Max  float64 `mapstructure:"max"`
	Step float64 `mapstructure:"step"`
}

// ExportConfig holds output settings.
type ExportConfig struct {
	Filename  string `mapstructure:"filename"`
	Directory string `mapstructure:"directory"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// PreviewConfig holds live canvas settings.
type PreviewConfig struct {
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// Load reads configuration from $PICO_CONFIG, or
// ~/.config/pico-compositor/config.toml when unset. A missing file is not
// an error.
func Load() (Config, error) {
	return LoadFile(os.Getenv("PICO_CONFIG"))
}

// LoadFile reads configuration from path. An empty path searches the
// default location.
func LoadFile(path string) (Config, error) {
	v := viper.New()

	v.SetDefault("canvas.aspect", string(scene.DefaultAspect))
	v.SetDefault("canvas.fill_color", colorutil.Hex(colorutil.Zinc))
	v.SetDefault("intake.max_dimension", 2048)
	v.SetDefault("interaction.deselect_debounce", 300*time.Millisecond)
	v.SetDefault("scale.min", scene.MinScale)
	v.SetDefault("scale.max", scene.MaxScale)
	v.SetDefault("scale.step", 0.01)
	v.SetDefault("export.filename", "generated-image.png")
	v.SetDefault("export.directory", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("preview.cache_ttl", 2*time.Minute)

	v.SetConfigType("toml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "pico-compositor"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("PICO")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate rejects settings the compositor cannot run with.
func (c Config) Validate() error {
	var errs []error
	if _, err := scene.ParseAspect(c.Canvas.Aspect); err != nil {
		errs = append(errs, fmt.Errorf("canvas.aspect: %w", err))
	}
	if _, err := colorutil.ParseHex(c.Canvas.FillColor); err != nil {
		errs = append(errs, fmt.Errorf("canvas.fill_color: %w", err))
	}
	if c.Intake.MaxDimension <= 0 {
		errs = append(errs, fmt.Errorf("intake.max_dimension must be positive, got %d", c.Intake.MaxDimension))
	}
	if c.Interaction.DeselectDebounce < 0 {
		errs = append(errs, fmt.Errorf("interaction.deselect_debounce must not be negative"))
	}
	if c.Scale.Min < scene.MinScale || c.Scale.Max > scene.MaxScale || c.Scale.Min >= c.Scale.Max {
		errs = append(errs, fmt.Errorf("scale range [%g, %g] must lie within [%g, %g]",
			c.Scale.Min, c.Scale.Max, scene.MinScale, scene.MaxScale))
	}
	if c.Scale.Step <= 0 {
		errs = append(errs, fmt.Errorf("scale.step must be positive"))
	}
	if c.Export.Filename == "" || filepath.Base(c.Export.Filename) != c.Export.Filename {
		errs = append(errs, fmt.Errorf("export.filename must be a bare file name, got %q", c.Export.Filename))
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}
	if c.Preview.CacheTTL <= 0 {
		errs = append(errs, fmt.Errorf("preview.cache_ttl must be positive"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// Aspect returns the configured frame preset.
func (c Config) Aspect() scene.Aspect {
	a, err := scene.ParseAspect(c.Canvas.Aspect)
	if err != nil {
		return scene.DefaultAspect
	}
	return a
}

// ExportPath joins the export directory and filename.
func (c Config) ExportPath() string {
	return filepath.Join(c.Export.Directory, c.Export.Filename)
}
