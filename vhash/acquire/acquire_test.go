package acquire

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ZanzyTHEbar/videohash/vhash/common"
	"github.com/ZanzyTHEbar/videohash/vhash/workspace"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRunner struct {
	calls   [][]string
	handler func(args []string) (string, string, error)
}

func (s *stubRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	s.calls = append(s.calls, append([]string{name}, args...))
	stdout, stderr, err := s.handler(args)
	return []byte(stdout), []byte(stderr), err
}

// copyFetcher "downloads" by copying a local file
type copyFetcher struct {
	source string
	ext    string
	urls   []string
}

func (f *copyFetcher) Fetch(ctx context.Context, url, dir string) (string, error) {
	f.urls = append(f.urls, url)
	dst := filepath.Join(dir, "video_file."+f.ext)
	if _, err := common.NewFileUtils().CopyFile(ctx, f.source, dst); err != nil {
		return "", err
	}
	return dst, nil
}

func newWorkspace(t *testing.T) *workspace.Workspace {
	t.Helper()
	ws, err := workspace.New(t.TempDir())
	require.NoError(t, err)
	return ws
}

func writeVideo(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("video bytes"), 0o644))
	return path
}

func TestNewSource(t *testing.T) {
	_, err := NewSource("", "")
	assert.ErrorIs(t, err, common.ErrConfiguration)

	_, err = NewSource("/a.mp4", "https://example.com/v")
	assert.ErrorIs(t, err, common.ErrConfiguration)

	_, err = NewSource("  ", "\t")
	assert.ErrorIs(t, err, common.ErrConfiguration)

	src, err := NewSource("", " https://example.com/v ")
	require.NoError(t, err)
	assert.True(t, src.IsRemote())
	assert.Equal(t, "https://example.com/v", src.String())

	src, err = NewSource("/a.mp4", "")
	require.NoError(t, err)
	assert.False(t, src.IsRemote())
}

func TestResolveLocalPathCopies(t *testing.T) {
	ws := newWorkspace(t)
	input := writeVideo(t, "clip.final.webm")

	video, err := NewResolver(nil, zerolog.Nop()).Resolve(context.Background(), Source{Path: input}, ws)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(ws.VideoDir, "video.webm"), video)

	data, err := os.ReadFile(video)
	require.NoError(t, err)
	assert.Equal(t, "video bytes", string(data))
	assert.FileExists(t, input, "the input is copied, never moved")
}

func TestResolveErrors(t *testing.T) {
	ws := newWorkspace(t)
	r := NewResolver(nil, zerolog.Nop())
	ctx := context.Background()

	_, err := r.Resolve(ctx, Source{}, ws)
	assert.ErrorIs(t, err, common.ErrConfiguration)

	_, err = r.Resolve(ctx, Source{Path: "/a.mp4", URL: "https://example.com"}, ws)
	assert.ErrorIs(t, err, common.ErrConfiguration)

	_, err = r.Resolve(ctx, Source{Path: writeVideo(t, "noextension")}, ws)
	assert.ErrorIs(t, err, common.ErrUnknownFormat)

	_, err = r.Resolve(ctx, Source{Path: filepath.Join(t.TempDir(), "gone.mp4")}, ws)
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = r.Resolve(ctx, Source{URL: "https://example.com/v"}, ws)
	assert.ErrorIs(t, err, common.ErrConfiguration)
}

func TestResolveURL(t *testing.T) {
	ws := newWorkspace(t)
	fetcher := &copyFetcher{source: writeVideo(t, "remote.mkv"), ext: "mkv"}

	video, err := NewResolver(fetcher, zerolog.Nop()).Resolve(context.Background(), Source{URL: "https://example.com/v"}, ws)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(ws.VideoDir, "video.mkv"), video)
	assert.Equal(t, []string{"https://example.com/v"}, fetcher.urls)
	assert.FileExists(t, filepath.Join(ws.DownloadDir, "video_file.mkv"))
}

func TestDownloadArgs(t *testing.T) {
	assert.Equal(t,
		[]string{"-f", "worst", "https://example.com/v", "-o", filepath.Join("/d", "video_file.%(ext)s")},
		DownloadArgs("https://example.com/v", "/d", true))
	assert.Equal(t,
		[]string{"https://example.com/v", "-o", filepath.Join("/d", "video_file.%(ext)s")},
		DownloadArgs("https://example.com/v", "/d", false))
}

func TestDownloaderFetch(t *testing.T) {
	dir := t.TempDir()
	runner := &stubRunner{handler: func(args []string) (string, string, error) {
		out := strings.Replace(args[len(args)-1], "%(ext)s", "mp4", 1)
		return "", "", os.WriteFile(out, []byte("mp4"), 0o644)
	}}

	file, err := NewDownloader("yt-dlp", true, runner, zerolog.Nop()).Fetch(context.Background(), "https://example.com/v", dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "video_file.mp4"), file)
	require.Len(t, runner.calls, 1)
	assert.Equal(t, "worst", runner.calls[0][2])
}

func TestDownloaderFetchNothingDownloaded(t *testing.T) {
	runner := &stubRunner{handler: func(args []string) (string, string, error) {
		return "", "ERROR: Unsupported URL", &exec.ExitError{}
	}}
	d := NewDownloader("yt-dlp", true, runner, zerolog.Nop())

	_, err := d.Fetch(context.Background(), "https://example.com/v", t.TempDir())
	assert.ErrorIs(t, err, common.ErrDownloadFailed)
	assert.Contains(t, err.Error(), "Unsupported URL")
	assert.Len(t, runner.calls, 1, "no retry")

	_, err = d.Fetch(context.Background(), "https://example.com/v", filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestLocateDownloader(t *testing.T) {
	ok := &stubRunner{handler: func(args []string) (string, string, error) {
		return "2024.08.06\n", "", nil
	}}
	path, err := LocateDownloader(context.Background(), "/usr/local/bin/yt-dlp", ok)
	require.NoError(t, err)
	assert.Equal(t, "/usr/local/bin/yt-dlp", path)

	bad := &stubRunner{handler: func(args []string) (string, string, error) {
		return "", "", &exec.ExitError{}
	}}
	_, err = LocateDownloader(context.Background(), "/usr/local/bin/yt-dlp", bad)
	assert.ErrorIs(t, err, common.ErrToolNotFound)
}
