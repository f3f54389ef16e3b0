package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	internal "github.com/ZanzyTHEbar/videohash/vhash"

	"github.com/spf13/viper"
)

// Config stores all configuration of the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	VideoHash VideoHashConfig `mapstructure:"videohash"`
	Log       LogConfig       `mapstructure:"log"`
}

// VideoHashConfig stores the hashing pipeline settings.
type VideoHashConfig struct {
	StorageDir     string  `mapstructure:"storageDir"`
	CollageWidth   int     `mapstructure:"collageWidth"`
	CollageName    string  `mapstructure:"collageName"`
	FrameInterval  float64 `mapstructure:"frameInterval"`
	FrameSize      string  `mapstructure:"frameSize"`
	DownloadWorst  bool    `mapstructure:"downloadWorst"`
	CropDetect     bool    `mapstructure:"cropDetect"`
	Algorithm      string  `mapstructure:"algorithm"`
	FFmpegPath     string  `mapstructure:"ffmpegPath"`
	DownloaderPath string  `mapstructure:"downloaderPath"`
	Workers        int     `mapstructure:"workers"`
}

// LogConfig stores logger settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// New returns a viper instance carrying every default and reading
// environment variables, e.g. videohash.collageWidth from VIDEOHASH_COLLAGEWIDTH.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("videohash.storageDir", "")
	v.SetDefault("videohash.collageWidth", internal.DefaultCollageWidth)
	v.SetDefault("videohash.collageName", internal.DefaultCollageName)
	v.SetDefault("videohash.frameInterval", internal.DefaultFrameInterval)
	v.SetDefault("videohash.frameSize", internal.DefaultFrameSize)
	v.SetDefault("videohash.downloadWorst", true)
	v.SetDefault("videohash.cropDetect", true)
	v.SetDefault("videohash.algorithm", internal.DefaultAlgorithm)
	v.SetDefault("videohash.ffmpegPath", "")
	v.SetDefault("videohash.downloaderPath", "")
	v.SetDefault("videohash.workers", internal.DefaultWorkers)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(configPath string) (*Config, error) {
	return Load(New(), configPath)
}

// Load reads the optional config file into v and decodes the result.
// Flags bound to v before the call take precedence over the file.
func Load(v *viper.Viper, configPath string) (*Config, error) {
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath(filepath.Join("etc", internal.DefaultAppName))
		v.AddConfigPath(internal.DefaultConfigPath)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found; defaults will be used.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}
	return &cfg, nil
}
