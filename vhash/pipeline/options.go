package pipeline

import (
	"context"

	internal "github.com/ZanzyTHEbar/videohash/vhash"
	"github.com/ZanzyTHEbar/videohash/vhash/acquire"
	"github.com/ZanzyTHEbar/videohash/vhash/common"
	"github.com/ZanzyTHEbar/videohash/vhash/config"

	"github.com/rs/zerolog"
)

// FrameExtractor samples a video into ordered frame images
type FrameExtractor interface {
	Extract(ctx context.Context, video, outDir string) ([]string, error)
}

// ImageHasher reduces an image file to a 64-bit sequence
type ImageHasher interface {
	HashFile(path string) ([]int, error)
}

// Options configures one pipeline run. Exactly one of Path and URL is set.
type Options struct {
	Path string
	URL  string

	// StorageDir must exist; empty uses a private temporary root
	StorageDir    string
	CollageWidth  int
	CollageName   string
	FrameInterval float64
	FrameSize     string
	DownloadWorst bool
	CropDetect    bool
	Algorithm     string

	// FFmpegPath and DownloaderPath override the PATH lookup
	FFmpegPath     string
	DownloaderPath string

	Logger zerolog.Logger

	// Optional collaborators; nil selects the ffmpeg / yt-dlp backed ones
	Runner    common.CommandRunner
	Fetcher   acquire.Fetcher
	Extractor FrameExtractor
	Hasher    ImageHasher
}

// DefaultOptions returns the documented defaults with no source set
func DefaultOptions() Options {
	return Options{
		CollageWidth:  internal.DefaultCollageWidth,
		CollageName:   internal.DefaultCollageName,
		FrameInterval: internal.DefaultFrameInterval,
		FrameSize:     internal.DefaultFrameSize,
		DownloadWorst: true,
		CropDetect:    true,
		Algorithm:     internal.DefaultAlgorithm,
		Logger:        zerolog.Nop(),
	}
}

// FromConfig maps loaded configuration onto Options
func FromConfig(cfg config.VideoHashConfig, logger zerolog.Logger) Options {
	return Options{
		StorageDir:     cfg.StorageDir,
		CollageWidth:   cfg.CollageWidth,
		CollageName:    cfg.CollageName,
		FrameInterval:  cfg.FrameInterval,
		FrameSize:      cfg.FrameSize,
		DownloadWorst:  cfg.DownloadWorst,
		CropDetect:     cfg.CropDetect,
		Algorithm:      cfg.Algorithm,
		FFmpegPath:     cfg.FFmpegPath,
		DownloaderPath: cfg.DownloaderPath,
		Logger:         logger,
	}
}

// WithPath returns a copy of o hashing the local file path
func (o Options) WithPath(path string) Options {
	o.Path, o.URL = path, ""
	return o
}

// WithURL returns a copy of o hashing the remote video at url
func (o Options) WithURL(url string) Options {
	o.Path, o.URL = "", url
	return o
}

func (o Options) collageName() string {
	if o.CollageName == "" {
		return internal.DefaultCollageName
	}
	return o.CollageName
}
