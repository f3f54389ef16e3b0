package main

import (
	"fmt"
	"strings"

	internal "github.com/ZanzyTHEbar/videohash/vhash"
	"github.com/ZanzyTHEbar/videohash/vhash/config"
	"github.com/ZanzyTHEbar/videohash/vhash/fingerprint"
	"github.com/ZanzyTHEbar/videohash/vhash/pipeline"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app carries the state shared by every subcommand once flags are parsed
type app struct {
	configPath string
	v          *viper.Viper
	cfg        *config.Config
	logger     zerolog.Logger
}

// flag name -> config key
var boundFlags = map[string]string{
	"storage-dir":    "videohash.storageDir",
	"collage-width":  "videohash.collageWidth",
	"interval":       "videohash.frameInterval",
	"frame-size":     "videohash.frameSize",
	"download-worst": "videohash.downloadWorst",
	"crop-detect":    "videohash.cropDetect",
	"algorithm":      "videohash.algorithm",
	"ffmpeg":         "videohash.ffmpegPath",
	"downloader":     "videohash.downloaderPath",
	"workers":        "videohash.workers",
	"log-level":      "log.level",
	"log-pretty":     "log.pretty",
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.New()}

	root := &cobra.Command{
		Use:           internal.DefaultAppCMDShortCut,
		Short:         "Perceptual hashes for videos",
		Long:          "videohash samples frames from a video, tiles them into a collage and reduces the collage to a 64-bit perceptual hash that can be compared by Hamming distance.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default searches ./config.yaml and "+internal.DefaultConfigPath+")")
	flags.String("storage-dir", "", "existing directory for working files (default: a private temp dir)")
	flags.Int("collage-width", internal.DefaultCollageWidth, "collage width in pixels")
	flags.Float64("interval", internal.DefaultFrameInterval, "frames sampled per second")
	flags.String("frame-size", internal.DefaultFrameSize, "size frames are scaled to")
	flags.Bool("download-worst", true, "download the lowest quality rendition of URLs")
	flags.Bool("crop-detect", true, "remove letterbox bars before sampling")
	flags.String("algorithm", internal.DefaultAlgorithm, "image hash: whash, phash, dhash or ahash")
	flags.String("ffmpeg", "", "path to ffmpeg (default: PATH lookup)")
	flags.String("downloader", "", "path to yt-dlp or youtube-dl (default: PATH lookup)")
	flags.Int("workers", internal.DefaultWorkers, "videos hashed concurrently by batch")
	flags.String("log-level", "info", "log level")
	flags.Bool("log-pretty", false, "human readable logs")

	root.AddCommand(newHashCmd(a), newCompareCmd(a), newBatchCmd(a))
	return root
}

func (a *app) load(cmd *cobra.Command) error {
	for name, key := range boundFlags {
		if err := a.v.BindPFlag(key, cmd.Flags().Lookup(name)); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}

	cfg, err := config.Load(a.v, a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = internal.NewLogger(cfg.Log.Level, cfg.Log.Pretty)
	return nil
}

func (a *app) options() pipeline.Options {
	return pipeline.FromConfig(a.cfg.VideoHash, a.logger)
}

// optionsFor treats input as a URL when it carries a scheme
func (a *app) optionsFor(input string) pipeline.Options {
	if strings.Contains(input, "://") {
		return a.options().WithURL(input)
	}
	return a.options().WithPath(input)
}

// isEncodedHash reports whether input is a 0x or 0b hash rather than a video
func isEncodedHash(input string) bool {
	lower := strings.ToLower(input)
	return strings.HasPrefix(lower, "0x") || strings.HasPrefix(lower, "0b")
}

func printHash(cmd *cobra.Command, h fingerprint.Hash, label string) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", h.Hex(), h.Binary(), label)
}
