package pipeline

import (
	"context"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/ZanzyTHEbar/videohash/vhash/common"
	"github.com/ZanzyTHEbar/videohash/vhash/config"
	"github.com/ZanzyTHEbar/videohash/vhash/fingerprint"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

const (
	leftRight = "left-right"
	topBottom = "top-bottom"
)

// syntheticExtractor draws frames from the video file's text content, so
// identical files always produce identical frames.
type syntheticExtractor struct {
	calls atomic.Int32
}

func (s *syntheticExtractor) Extract(_ context.Context, video, outDir string) ([]string, error) {
	s.calls.Add(1)
	data, err := os.ReadFile(video)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(string(data)) == "broken" {
		return nil, fmt.Errorf("%w: synthetic failure", common.ErrExtractionFailed)
	}
	return drawFrames(outDir, strings.TrimSpace(string(data)), 4)
}

func drawFrames(outDir, pattern string, n int) ([]string, error) {
	frames := make([]string, n)
	for i := range frames {
		img := imaging.New(256, 256, color.Black)
		for y := 0; y < 256; y++ {
			for x := 0; x < 256; x++ {
				if (pattern == leftRight && x < 128) || (pattern == topBottom && y < 128) {
					img.Set(x, y, color.White)
				}
			}
		}
		frames[i] = filepath.Join(outDir, fmt.Sprintf("video_frame_%07d.png", i+1))
		if err := imaging.Save(img, frames[i]); err != nil {
			return nil, err
		}
	}
	return frames, nil
}

// copyFetcher serves a URL from a local file
type copyFetcher struct {
	source string
}

func (f copyFetcher) Fetch(ctx context.Context, _ string, dir string) (string, error) {
	dst := filepath.Join(dir, "video_file.mp4")
	_, err := common.NewFileUtils().CopyFile(ctx, f.source, dst)
	return dst, err
}

func writeVideo(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func testOptions(t *testing.T) Options {
	t.Helper()
	opts := DefaultOptions()
	opts.StorageDir = t.TempDir()
	opts.CollageWidth = 512
	opts.CollageName = "collage.png"
	opts.Extractor = &syntheticExtractor{}
	return opts
}

func TestNewComputesHash(t *testing.T) {
	opts := testOptions(t)
	video := writeVideo(t, t.TempDir(), "clip.mp4", leftRight)

	vh, err := New(context.Background(), opts.WithPath(video))
	require.NoError(t, err)

	assert.Equal(t, "0x"+strings.Repeat("cc", 8), vh.Hex())
	assert.Equal(t, 66, vh.Len())
	assert.Equal(t, vh.Binary(), vh.String())
	assert.Equal(t, 4, vh.Frames)
	assert.Equal(t, 2, vh.Layout.Columns)
	assert.FileExists(t, vh.CollagePath)
	assert.Equal(t, filepath.Join(vh.Workspace.VideoDir, "video.mp4"), vh.VideoPath)
	assert.FileExists(t, video, "input is left untouched")

	assert.Equal(t,
		[]string{common.StageAcquire, common.StageExtract, common.StageCollage, common.StageHash},
		vh.Metrics.Stages())
}

func TestNewIsDeterministic(t *testing.T) {
	opts := testOptions(t)
	video := writeVideo(t, t.TempDir(), "clip.webm", topBottom)

	first, err := New(context.Background(), opts.WithPath(video))
	require.NoError(t, err)
	second, err := New(context.Background(), opts.WithPath(video))
	require.NoError(t, err)

	assert.NotEqual(t, first.Workspace.ID, second.Workspace.ID)
	eq, err := first.Equal(second.Hash)
	require.NoError(t, err)
	assert.True(t, eq)
}

func TestPathAndURLAgree(t *testing.T) {
	opts := testOptions(t)
	video := writeVideo(t, t.TempDir(), "clip.mp4", leftRight)

	local, err := New(context.Background(), opts.WithPath(video))
	require.NoError(t, err)

	remoteOpts := opts.WithURL("https://videos.example.com/clip")
	remoteOpts.Fetcher = copyFetcher{source: video}
	remote, err := New(context.Background(), remoteOpts)
	require.NoError(t, err)

	d, err := local.Difference(remote.Hash)
	require.NoError(t, err)
	assert.Zero(t, d)
	assert.FileExists(t, filepath.Join(remote.Workspace.DownloadDir, "video_file.mp4"))
}

func TestDifferentContentIsFarApart(t *testing.T) {
	opts := testOptions(t)
	dir := t.TempDir()

	a, err := New(context.Background(), opts.WithPath(writeVideo(t, dir, "a.mp4", leftRight)))
	require.NoError(t, err)
	b, err := New(context.Background(), opts.WithPath(writeVideo(t, dir, "b.mp4", topBottom)))
	require.NoError(t, err)

	d, err := a.Difference(b.Hash)
	require.NoError(t, err)
	assert.Equal(t, 32, d)

	ne, err := a.NotEqual(fingerprint.Encoded(b.Hex()))
	require.NoError(t, err)
	assert.True(t, ne)
}

func TestNewRejectsBadOptionsBeforeIO(t *testing.T) {
	opts := testOptions(t)
	extractor := opts.Extractor.(*syntheticExtractor)

	_, err := New(context.Background(), opts)
	assert.ErrorIs(t, err, common.ErrConfiguration)

	both := opts
	both.Path, both.URL = "/a.mp4", "https://example.com"
	_, err = New(context.Background(), both)
	assert.ErrorIs(t, err, common.ErrConfiguration)

	badAlg := opts.WithPath("/a.mp4")
	badAlg.Algorithm = "colorhash"
	_, err = New(context.Background(), badAlg)
	assert.ErrorIs(t, err, common.ErrConfiguration)

	entries, err := os.ReadDir(opts.StorageDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Zero(t, extractor.calls.Load())
}

func TestNewMissingStorageDir(t *testing.T) {
	opts := testOptions(t)
	opts.StorageDir = filepath.Join(opts.StorageDir, "missing")

	_, err := New(context.Background(), opts.WithPath(writeVideo(t, t.TempDir(), "a.mp4", leftRight)))
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestFailedRunRemovesWorkspace(t *testing.T) {
	opts := testOptions(t)

	_, err := New(context.Background(), opts.WithPath(writeVideo(t, t.TempDir(), "a.mp4", "broken")))
	assert.ErrorIs(t, err, common.ErrExtractionFailed)

	_, err = New(context.Background(), opts.WithPath(writeVideo(t, t.TempDir(), "noext", leftRight)))
	assert.ErrorIs(t, err, common.ErrUnknownFormat)

	entries, err := os.ReadDir(opts.StorageDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDeleteWorkspace(t *testing.T) {
	opts := testOptions(t)
	vh, err := New(context.Background(), opts.WithPath(writeVideo(t, t.TempDir(), "a.mp4", leftRight)))
	require.NoError(t, err)

	require.NoError(t, vh.DeleteWorkspace())
	assert.NoDirExists(t, vh.Workspace.TaskDir)
	assert.DirExists(t, opts.StorageDir)
}

func TestNewWithFFmpegRunner(t *testing.T) {
	runner := &scriptedRunner{}
	opts := DefaultOptions()
	opts.StorageDir = t.TempDir()
	opts.CollageWidth = 512
	opts.CollageName = "collage.png"
	opts.CropDetect = false
	opts.FFmpegPath = "ffmpeg"
	opts.Runner = runner

	vh, err := New(context.Background(), opts.WithPath(writeVideo(t, t.TempDir(), "a.mkv", leftRight)))
	require.NoError(t, err)
	assert.Equal(t, "0x"+strings.Repeat("cc", 8), vh.Hex())

	require.Len(t, runner.calls, 2)
	assert.Equal(t, []string{"ffmpeg", "-version"}, runner.calls[0][:2])
}

// scriptedRunner answers the ffmpeg version probe and writes frames for
// the extraction call
type scriptedRunner struct {
	calls [][]string
}

func (s *scriptedRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	s.calls = append(s.calls, append([]string{name}, args...))
	if len(args) == 1 && args[0] == "-version" {
		return []byte("ffmpeg version 7.0"), nil, nil
	}
	out := args[len(args)-1]
	_, err := drawFrames(filepath.Dir(out), leftRight, 4)
	return nil, nil, err
}

func TestFromConfig(t *testing.T) {
	cfg, err := config.LoadConfig("")
	require.NoError(t, err)

	opts := FromConfig(cfg.VideoHash, zerolog.Nop())
	assert.Equal(t, 1024, opts.CollageWidth)
	assert.Equal(t, "whash", opts.Algorithm)
	assert.True(t, opts.CropDetect)
	assert.True(t, opts.DownloadWorst)
	assert.Equal(t, 1.0, opts.FrameInterval)
}

func TestHashAll(t *testing.T) {
	defer goleak.VerifyNone(t)

	opts := testOptions(t)
	dir := t.TempDir()
	batch := []Options{
		opts.WithPath(writeVideo(t, dir, "a.mp4", leftRight)),
		opts.WithPath(filepath.Join(dir, "missing.mp4")),
		opts.WithPath(writeVideo(t, dir, "b.mp4", topBottom)),
		opts.WithPath(writeVideo(t, dir, "c.mp4", leftRight)),
	}

	var done atomic.Int32
	results := HashAllFunc(context.Background(), batch, 2, func(Result) { done.Add(1) })
	require.Len(t, results, 4)
	assert.EqualValues(t, 4, done.Load())

	for i, r := range results {
		assert.Equal(t, i, r.Index)
	}
	assert.ErrorIs(t, results[1].Err, common.ErrNotFound)
	assert.Nil(t, results[1].Hash)

	hashes := []fingerprint.Hash{results[0].Hash.Hash, results[2].Hash.Hash, results[3].Hash.Hash}
	m, err := DistanceMatrix(hashes)
	require.NoError(t, err)
	assert.Equal(t, [][]int{
		{0, 32, 0},
		{32, 0, 32},
		{0, 32, 0},
	}, m)
}

func TestDistanceMatrixRejectsEmptyHash(t *testing.T) {
	_, err := DistanceMatrix([]fingerprint.Hash{fingerprint.FromUint64(1), {}})
	assert.ErrorIs(t, err, common.ErrLengthMismatch)

	m, err := DistanceMatrix(nil)
	require.NoError(t, err)
	assert.Empty(t, m)
}
