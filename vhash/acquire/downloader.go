package acquire

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"

	"github.com/ZanzyTHEbar/videohash/vhash/common"

	"github.com/rs/zerolog"
)

// Fetcher downloads a URL into dir and returns the path of the new file
type Fetcher interface {
	Fetch(ctx context.Context, url, dir string) (string, error)
}

// DownloadTemplate is the downloader's output name; the tool fills in ext
const DownloadTemplate = "video_file.%(ext)s"

var downloaderVersion = regexp.MustCompile(`[0-9]{4}\.[0-9]{2}\.[0-9]{2}`)

// LocateDownloader resolves yt-dlp, falling back to youtube-dl, and checks
// that --version prints a release date. An explicit path skips the search.
func LocateDownloader(ctx context.Context, path string, runner common.CommandRunner) (string, error) {
	if path == "" {
		found, err := common.LookPath("yt-dlp", "youtube-dl")
		if err != nil {
			return "", err
		}
		path = found
	}

	stdout, _, err := runner.Run(ctx, path, "--version")
	if err != nil && ctx.Err() != nil {
		return "", ctx.Err()
	}
	if !downloaderVersion.Match(stdout) {
		return "", fmt.Errorf("%w: %s --version did not print a release date", common.ErrToolNotFound, path)
	}
	return path, nil
}

// DownloadArgs builds the downloader argv
func DownloadArgs(url, dir string, worst bool) []string {
	var args []string
	if worst {
		args = append(args, "-f", "worst")
	}
	return append(args, url, "-o", filepath.Join(dir, DownloadTemplate))
}

// Downloader fetches videos with yt-dlp or youtube-dl
type Downloader struct {
	toolPath   string
	worst      bool
	runner     common.CommandRunner
	paths      *common.PathUtils
	validation *common.ValidationUtils
	logger     zerolog.Logger
}

// NewDownloader wraps a located downloader binary. worst selects the lowest
// quality rendition; otherwise the tool's default quality is used.
func NewDownloader(toolPath string, worst bool, runner common.CommandRunner, logger zerolog.Logger) *Downloader {
	return &Downloader{
		toolPath:   toolPath,
		worst:      worst,
		runner:     runner,
		paths:      common.NewPathUtils(),
		validation: common.NewValidationUtils(),
		logger:     logger.With().Str("component", "downloader").Logger(),
	}
}

// Fetch runs the downloader once. An exit status is not trusted either way:
// the call fails only when dir is still empty afterwards.
func (d *Downloader) Fetch(ctx context.Context, url, dir string) (string, error) {
	if err := d.validation.ValidateDirectoryExists(dir, common.ErrNotFound); err != nil {
		return "", err
	}

	_, stderr, runErr := d.runner.Run(ctx, d.toolPath, DownloadArgs(url, dir, d.worst)...)
	if runErr != nil && !common.IsExitError(runErr) {
		return "", runErr
	}

	files, err := d.paths.ListFiles(dir)
	if err != nil {
		return "", err
	}
	if len(files) == 0 {
		return "", fmt.Errorf("%w: %s produced no file for %s: %s",
			common.ErrDownloadFailed, filepath.Base(d.toolPath), url, common.Tail(stderr, 512))
	}

	d.logger.Info().Str("url", url).Str("file", files[0]).Msg("Video downloaded")
	return files[0], nil
}
