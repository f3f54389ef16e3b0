package ffmpeg

import (
	"context"
	"regexp"
	"strconv"

	"github.com/ZanzyTHEbar/videohash/vhash/common"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

// ProbeOffsets are the timestamps, in seconds, sampled for crop detection
var ProbeOffsets = []int{2, 5, 10, 20, 40, 100, 300, 600, 1200, 2400, 7200, 14400}

// framesPerProbe is how many frames cropdetect sees at each offset
const framesPerProbe = 3

var cropPattern = regexp.MustCompile(`crop=-?\d+:-?\d+:-?\d+:-?\d+`)

// ParseCrops returns every crop=W:H:X:Y filter in output, in order
func ParseCrops(output string) []string {
	return cropPattern.FindAllString(output, -1)
}

// ModeCrop returns the most frequent crop, preferring the one seen first on
// ties. It is empty when crops is empty.
func ModeCrop(crops []string) string {
	counts := lo.CountValues(crops)
	best, bestCount := "", 0
	for _, crop := range lo.Uniq(crops) {
		if counts[crop] > bestCount {
			best, bestCount = crop, counts[crop]
		}
	}
	return best
}

// CropProbeArgs runs cropdetect over a few frames starting at offset
func CropProbeArgs(video string, offset int) []string {
	return []string{
		"-hide_banner",
		"-ss", strconv.Itoa(offset),
		"-i", video,
		"-vframes", strconv.Itoa(framesPerProbe),
		"-vf", "cropdetect",
		"-f", "null",
		"-",
	}
}

// CropDetector votes on the letterbox crop of a video
type CropDetector struct {
	ffmpegPath string
	runner     common.CommandRunner
	prober     *Prober
	logger     zerolog.Logger
}

// NewCropDetector creates a CropDetector for the given ffmpeg binary
func NewCropDetector(ffmpegPath string, runner common.CommandRunner, logger zerolog.Logger) *CropDetector {
	return &CropDetector{
		ffmpegPath: ffmpegPath,
		runner:     runner,
		prober:     NewProber(ffmpegPath, runner),
		logger:     logger.With().Str("component", "cropdetect").Logger(),
	}
}

// Detect samples ProbeOffsets and returns the winning crop filter, or an
// empty string when ffmpeg reported none. Offsets past the end of a video
// of known duration are skipped.
func (cd *CropDetector) Detect(ctx context.Context, video string) (string, error) {
	duration, err := cd.prober.Duration(ctx, video)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		cd.logger.Debug().Err(err).Str("video", video).Msg("Duration unknown, probing every offset")
		duration = 0
	}

	var crops []string
	for _, offset := range ProbeOffsets {
		if duration > 0 && float64(offset) >= duration {
			break
		}

		stdout, stderr, err := cd.runner.Run(ctx, cd.ffmpegPath, CropProbeArgs(video, offset)...)
		if err != nil && !common.IsExitError(err) {
			return "", err
		}
		crops = append(crops, ParseCrops(string(stdout)+string(stderr))...)
	}

	crop := ModeCrop(crops)
	cd.logger.Debug().
		Str("video", video).
		Int("samples", len(crops)).
		Str("crop", crop).
		Msg("Crop detection finished")
	return crop, nil
}
