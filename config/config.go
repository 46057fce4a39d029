// Package config loads service settings from an optional YAML file, a .env
// file and DOCCONV_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all settings for the converter service.
type Config struct {
	Port            string        `mapstructure:"port"`
	UploadDir       string        `mapstructure:"upload_dir"`
	MaxUploadBytes  int64         `mapstructure:"max_upload_bytes"`
	StaticDir       string        `mapstructure:"static_dir"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	// Worker pool
	Workers   int `mapstructure:"workers"`
	QueueSize int `mapstructure:"queue_size"`

	// Codecs
	PDFToJPEGEnabled bool    `mapstructure:"pdf_to_jpeg_enabled"`
	RasterDPI        float64 `mapstructure:"raster_dpi"`
	RasterPages      int     `mapstructure:"raster_pages"`
	JPEGQuality      int     `mapstructure:"jpeg_quality"`
	SofficePath      string  `mapstructure:"soffice_path"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

const EnvPrefix = "DOCCONV"

// SetDefaults registers every key so that env overrides work without a file.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("port", "3000")
	v.SetDefault("upload_dir", "uploads")
	v.SetDefault("max_upload_bytes", 5*1024*1024)
	v.SetDefault("static_dir", "public")
	v.SetDefault("cors_origins", []string{"https://lifetechgyan.com", "http://lifetechgyan.com"})
	v.SetDefault("shutdown_timeout", 10*time.Second)
	v.SetDefault("workers", runtime.NumCPU())
	v.SetDefault("queue_size", 100)
	v.SetDefault("pdf_to_jpeg_enabled", false)
	v.SetDefault("raster_dpi", 150)
	v.SetDefault("raster_pages", 1)
	v.SetDefault("jpeg_quality", 90)
	v.SetDefault("soffice_path", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
}

// Load reads configuration. cfgFile may be empty, in which case docconv.yaml
// is looked up in the working directory; a missing file is not an error.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("docconv")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	// The bare PORT variable wins when DOCCONV_PORT is not set.
	if port := os.Getenv("PORT"); port != "" && os.Getenv(EnvPrefix+"_PORT") == "" {
		cfg.Port = port
	}
	cfg.CORSOrigins = splitList(cfg.CORSOrigins)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the service cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Port == "":
		return fmt.Errorf("%w: port is empty", ErrInvalidConfig)
	case c.UploadDir == "":
		return fmt.Errorf("%w: upload_dir is empty", ErrInvalidConfig)
	case c.MaxUploadBytes <= 0:
		return fmt.Errorf("%w: max_upload_bytes must be positive", ErrInvalidConfig)
	case c.Workers <= 0:
		return fmt.Errorf("%w: workers must be positive", ErrInvalidConfig)
	case c.QueueSize < 0:
		return fmt.Errorf("%w: queue_size must not be negative", ErrInvalidConfig)
	case c.RasterDPI <= 0:
		return fmt.Errorf("%w: raster_dpi must be positive", ErrInvalidConfig)
	case c.RasterPages <= 0:
		return fmt.Errorf("%w: raster_pages must be positive", ErrInvalidConfig)
	case c.JPEGQuality < 1 || c.JPEGQuality > 100:
		return fmt.Errorf("%w: jpeg_quality must be between 1 and 100, got %d", ErrInvalidConfig, c.JPEGQuality)
	}
	return nil
}

// splitList accepts both YAML lists and comma separated env values.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
