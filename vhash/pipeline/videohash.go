// Package pipeline wires acquisition, frame sampling, the collage and the
// image hash into one videohash computation.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/ZanzyTHEbar/videohash/vhash/acquire"
	"github.com/ZanzyTHEbar/videohash/vhash/collage"
	"github.com/ZanzyTHEbar/videohash/vhash/common"
	"github.com/ZanzyTHEbar/videohash/vhash/ffmpeg"
	"github.com/ZanzyTHEbar/videohash/vhash/fingerprint"
	"github.com/ZanzyTHEbar/videohash/vhash/imagehash"
	"github.com/ZanzyTHEbar/videohash/vhash/workspace"

	"github.com/rs/zerolog"
)

// VideoHash is the fingerprint of one video together with the artifacts
// that produced it. The workspace stays on disk until DeleteWorkspace.
type VideoHash struct {
	Hash        fingerprint.Hash
	Source      acquire.Source
	Algorithm   imagehash.Algorithm
	VideoPath   string
	Frames      int
	CollagePath string
	Layout      collage.Layout
	Workspace   *workspace.Workspace
	Metrics     *common.StageMetrics
}

// New computes the videohash described by opts. Stages run strictly in
// sequence and the first failure aborts the run; the workspace of a failed
// run is removed.
func New(ctx context.Context, opts Options) (vh *VideoHash, err error) {
	src, err := acquire.NewSource(opts.Path, opts.URL)
	if err != nil {
		return nil, err
	}
	alg, err := imagehash.ParseAlgorithm(opts.Algorithm)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger.With().Str("component", "pipeline").Str("source", src.String()).Logger()
	metrics := common.NewStageMetrics()

	runner := opts.Runner
	if runner == nil {
		runner = common.NewExecRunner(opts.Logger)
	}

	fetcher := opts.Fetcher
	if fetcher == nil && src.IsRemote() {
		tool, err := acquire.LocateDownloader(ctx, opts.DownloaderPath, runner)
		if err != nil {
			return nil, err
		}
		fetcher = acquire.NewDownloader(tool, opts.DownloadWorst, runner, opts.Logger)
	}

	extractor := opts.Extractor
	if extractor == nil {
		tool, err := ffmpeg.Locate(ctx, opts.FFmpegPath, runner)
		if err != nil {
			return nil, err
		}
		extractor = ffmpeg.NewExtractor(tool, ffmpeg.Options{
			Interval:   opts.FrameInterval,
			Size:       opts.FrameSize,
			CropDetect: opts.CropDetect,
		}, runner, opts.Logger)
	}

	hasher := opts.Hasher
	if hasher == nil {
		if hasher, err = imagehash.New(alg); err != nil {
			return nil, err
		}
	}

	ws, err := workspace.New(opts.StorageDir)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			if derr := ws.Delete(); derr != nil {
				logger.Debug().Err(derr).Msg("Failed to clean up workspace")
			}
		}
	}()

	vh = &VideoHash{
		Source:    src,
		Algorithm: alg,
		Workspace: ws,
		Metrics:   metrics,
	}

	stop := metrics.Track(common.StageAcquire)
	vh.VideoPath, err = acquire.NewResolver(fetcher, opts.Logger).Resolve(ctx, src, ws)
	stop()
	if err != nil {
		return nil, err
	}

	stop = metrics.Track(common.StageExtract)
	frames, err := extractor.Extract(ctx, vh.VideoPath, ws.FramesDir)
	stop()
	if err != nil {
		return nil, err
	}
	vh.Frames = len(frames)

	stop = metrics.Track(common.StageCollage)
	c, err := collage.NewBuilder(opts.CollageWidth, opts.Logger).Build(ctx, frames, filepath.Join(ws.CollageDir, opts.collageName()))
	stop()
	if err != nil {
		return nil, err
	}
	vh.CollagePath, vh.Layout = c.Path, c.Layout

	stop = metrics.Track(common.StageHash)
	bits, err := hasher.HashFile(c.Path)
	stop()
	if err != nil {
		return nil, fmt.Errorf("failed to hash collage %s: %w", c.Path, err)
	}
	if vh.Hash, err = fingerprint.New(bits); err != nil {
		return nil, err
	}

	metrics.Log(logger)
	logger.Info().
		Str("hash", vh.Hash.Hex()).
		Str("algorithm", string(alg)).
		Int("frames", vh.Frames).
		Msg("Video hashed")
	return vh, nil
}

// Binary is the "0b" rendering of the hash
func (vh *VideoHash) Binary() string { return vh.Hash.Binary() }

// Hex is the zero-padded "0x" rendering of the hash
func (vh *VideoHash) Hex() string { return vh.Hash.Hex() }

// String is the binary rendering of the hash
func (vh *VideoHash) String() string { return vh.Hash.String() }

// Len is the length of the binary rendering, 66
func (vh *VideoHash) Len() int { return vh.Hash.Len() }

// Difference is the Hamming distance to other
func (vh *VideoHash) Difference(other fingerprint.Operand) (int, error) {
	return vh.Hash.Difference(other)
}

// Equal reports a Hamming distance of zero to other
func (vh *VideoHash) Equal(other fingerprint.Operand) (bool, error) {
	d, err := vh.Difference(other)
	if err != nil {
		return false, err
	}
	return d == 0, nil
}

// NotEqual is the negation of Equal
func (vh *VideoHash) NotEqual(other fingerprint.Operand) (bool, error) {
	eq, err := vh.Equal(other)
	if err != nil {
		return false, err
	}
	return !eq, nil
}

// DeleteWorkspace removes the files of this run. A caller-supplied
// storage directory is left in place.
func (vh *VideoHash) DeleteWorkspace() error {
	if vh.Workspace == nil {
		return nil
	}
	return vh.Workspace.Delete()
}

// MarshalZerologObject writes the summary fields of vh
func (vh *VideoHash) MarshalZerologObject(e *zerolog.Event) {
	e.Str("hash", vh.Hash.Hex()).
		Str("source", vh.Source.String()).
		Str("collage", vh.CollagePath).
		Int("frames", vh.Frames)
}
