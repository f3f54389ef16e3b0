package ffmpeg

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	internal "github.com/ZanzyTHEbar/videohash/vhash"
	"github.com/ZanzyTHEbar/videohash/vhash/common"

	"github.com/rs/zerolog"
)

// FramePattern names extracted frames so lexical order is temporal order
const FramePattern = "video_frame_%07d.jpeg"

// Options tunes frame extraction
type Options struct {
	// Interval is the number of frames sampled per second
	Interval float64
	// Size is the WxH every frame is scaled to
	Size string
	// CropDetect runs the letterbox detection pass first
	CropDetect bool
}

// DefaultOptions samples one 144x144 frame per second with crop detection
func DefaultOptions() Options {
	return Options{
		Interval:   internal.DefaultFrameInterval,
		Size:       internal.DefaultFrameSize,
		CropDetect: true,
	}
}

// ExtractArgs builds the ffmpeg argv for one extraction. crop is a
// crop=W:H:X:Y filter or empty.
func ExtractArgs(video, outDir, crop string, opts Options) []string {
	args := []string{"-i", video}
	if crop != "" {
		args = append(args, "-vf", crop)
	}
	return append(args,
		"-s", opts.Size,
		"-r", strconv.FormatFloat(opts.Interval, 'f', -1, 64),
		filepath.Join(outDir, FramePattern),
	)
}

// Extractor samples frames from a video
type Extractor struct {
	ffmpegPath string
	opts       Options
	runner     common.CommandRunner
	crop       *CropDetector
	paths      *common.PathUtils
	validation *common.ValidationUtils
	logger     zerolog.Logger
}

// NewExtractor creates an Extractor. Zero-valued options fall back to
// DefaultOptions field by field, except CropDetect which is taken as given.
func NewExtractor(ffmpegPath string, opts Options, runner common.CommandRunner, logger zerolog.Logger) *Extractor {
	def := DefaultOptions()
	if opts.Interval <= 0 {
		opts.Interval = def.Interval
	}
	if opts.Size == "" {
		opts.Size = def.Size
	}

	e := &Extractor{
		ffmpegPath: ffmpegPath,
		opts:       opts,
		runner:     runner,
		paths:      common.NewPathUtils(),
		validation: common.NewValidationUtils(),
		logger:     logger.With().Str("component", "extractor").Logger(),
	}
	if opts.CropDetect {
		e.crop = NewCropDetector(ffmpegPath, runner, logger)
	}
	return e
}

// Options returns the effective extraction options
func (e *Extractor) Options() Options {
	return e.opts
}

// Extract writes frames of video into outDir and returns their paths in
// temporal order. The video must exist and outDir must be a directory.
func (e *Extractor) Extract(ctx context.Context, video, outDir string) ([]string, error) {
	if err := e.validation.ValidateFileExists(video); err != nil {
		return nil, err
	}
	if err := e.validation.ValidateDirectoryExists(outDir, common.ErrConfiguration); err != nil {
		return nil, err
	}

	var crop string
	if e.crop != nil {
		var err error
		if crop, err = e.crop.Detect(ctx, video); err != nil {
			return nil, fmt.Errorf("crop detection failed: %w", err)
		}
	}

	args := ExtractArgs(video, outDir, crop, e.opts)
	_, stderr, runErr := e.runner.Run(ctx, e.ffmpegPath, args...)
	if runErr != nil && !common.IsExitError(runErr) {
		return nil, runErr
	}

	frames, err := e.frames(outDir)
	if err != nil {
		return nil, err
	}
	if len(frames) == 0 {
		return nil, fmt.Errorf("%w: ffmpeg wrote no frames for %s: %s",
			common.ErrExtractionFailed, video, common.Tail(stderr, 512))
	}

	e.logger.Info().
		Str("video", video).
		Int("frames", len(frames)).
		Str("crop", crop).
		Msg("Frames extracted")
	return frames, nil
}

func (e *Extractor) frames(outDir string) ([]string, error) {
	files, err := e.paths.ListFiles(outDir)
	if err != nil {
		return nil, err
	}
	prefix := FramePattern[:strings.Index(FramePattern, "%")]
	out := files[:0]
	for _, f := range files {
		if strings.HasPrefix(filepath.Base(f), prefix) {
			out = append(out, f)
		}
	}
	return out, nil
}
