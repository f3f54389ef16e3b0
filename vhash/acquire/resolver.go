package acquire

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/ZanzyTHEbar/videohash/vhash/common"
	"github.com/ZanzyTHEbar/videohash/vhash/workspace"

	"github.com/rs/zerolog"
)

// Resolver places the canonical copy of a Source in a workspace
type Resolver struct {
	fetcher    Fetcher
	files      *common.FileUtils
	paths      *common.PathUtils
	validation *common.ValidationUtils
	errors     *common.ErrorUtils
	logger     zerolog.Logger
}

// NewResolver creates a Resolver. fetcher may be nil when only local paths
// are resolved.
func NewResolver(fetcher Fetcher, logger zerolog.Logger) *Resolver {
	logger = logger.With().Str("component", "acquire").Logger()
	return &Resolver{
		fetcher:    fetcher,
		files:      common.NewFileUtils(),
		paths:      common.NewPathUtils(),
		validation: common.NewValidationUtils(),
		errors:     common.NewErrorUtils(logger),
		logger:     logger,
	}
}

// Resolve copies the source video to <ws.VideoDir>/video.<ext> and returns
// that path. Remote sources are downloaded into ws.DownloadDir first. The
// original file is never moved or modified.
func (r *Resolver) Resolve(ctx context.Context, src Source, ws *workspace.Workspace) (string, error) {
	if _, err := NewSource(src.Path, src.URL); err != nil {
		return "", err
	}

	input := src.Path
	if src.IsRemote() {
		if r.fetcher == nil {
			return "", fmt.Errorf("%w: no downloader configured for %s", common.ErrConfiguration, src.URL)
		}
		downloaded, err := r.fetcher.Fetch(ctx, src.URL, ws.DownloadDir)
		if err != nil {
			return "", r.errors.HandleOperationError(err, "download", src.URL)
		}
		input = downloaded
	}

	ext, err := r.paths.Extension(input)
	if err != nil {
		return "", err
	}
	if err := r.validation.ValidateFileExists(input); err != nil {
		return "", err
	}

	target := filepath.Join(ws.VideoDir, "video."+ext)
	n, err := r.files.CopyFile(ctx, input, target)
	if err != nil {
		return "", r.errors.HandleOperationError(err, "copy", input)
	}

	r.logger.Debug().Str("source", src.String()).Str("video", target).Int64("bytes", n).Msg("Video acquired")
	return target, nil
}
