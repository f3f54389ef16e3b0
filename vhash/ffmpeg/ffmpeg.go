// Package ffmpeg drives the ffmpeg binary: tool discovery, duration probing,
// letterbox crop detection and frame extraction.
package ffmpeg

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ZanzyTHEbar/videohash/vhash/common"
)

const versionMarker = "ffmpeg version"

// Locate resolves the ffmpeg binary and checks that it runs. An empty path
// searches PATH.
func Locate(ctx context.Context, path string, runner common.CommandRunner) (string, error) {
	if path == "" {
		found, err := common.LookPath("ffmpeg")
		if err != nil {
			return "", err
		}
		path = found
	}

	stdout, stderr, err := runner.Run(ctx, path, "-version")
	if err != nil && ctx.Err() != nil {
		return "", ctx.Err()
	}
	if !strings.Contains(string(stdout)+string(stderr), versionMarker) {
		return "", fmt.Errorf("%w: %s -version did not report %q", common.ErrToolNotFound, path, versionMarker)
	}
	return path, nil
}

var durationPattern = regexp.MustCompile(`Duration:\s*(\d+):(\d{2}):(\d{2}(?:\.\d+)?)`)

// ParseDuration reads the "Duration: HH:MM:SS.xx" line ffmpeg prints for an
// input and returns it in seconds.
func ParseDuration(output string) (float64, error) {
	m := durationPattern.FindStringSubmatch(output)
	if m == nil {
		return 0, fmt.Errorf("%w: no duration in ffmpeg output", common.ErrNotFound)
	}
	hours, _ := strconv.ParseFloat(m[1], 64)
	minutes, _ := strconv.ParseFloat(m[2], 64)
	seconds, _ := strconv.ParseFloat(m[3], 64)
	return hours*3600 + minutes*60 + seconds, nil
}

// Prober reads stream metadata
type Prober struct {
	ffmpegPath string
	runner     common.CommandRunner
	validation *common.ValidationUtils
}

// NewProber creates a Prober for the given ffmpeg binary
func NewProber(ffmpegPath string, runner common.CommandRunner) *Prober {
	return &Prober{ffmpegPath: ffmpegPath, runner: runner, validation: common.NewValidationUtils()}
}

// Duration returns the length of video in seconds
func (p *Prober) Duration(ctx context.Context, video string) (float64, error) {
	if err := p.validation.ValidateFileExists(video); err != nil {
		return 0, err
	}

	// ffmpeg exits non-zero when given no output; the banner is still printed
	stdout, stderr, err := p.runner.Run(ctx, p.ffmpegPath, "-hide_banner", "-i", video)
	if err != nil && !common.IsExitError(err) {
		return 0, err
	}
	d, perr := ParseDuration(string(stdout) + string(stderr))
	if perr != nil {
		return 0, fmt.Errorf("failed to probe %s: %w", video, perr)
	}
	return d, nil
}
