// Package workspace owns the scratch directories of one hashing run.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"

	internal "github.com/ZanzyTHEbar/videohash/vhash"
	"github.com/ZanzyTHEbar/videohash/vhash/common"

	"github.com/google/uuid"
)

// Workspace is a task-scoped directory tree:
//
//	<Root>/<ID>/video     canonical copy of the input
//	<Root>/<ID>/download  raw downloader output
//	<Root>/<ID>/frames    extracted frames
//	<Root>/<ID>/collage   the composite image
type Workspace struct {
	ID          string
	Root        string
	TaskDir     string
	VideoDir    string
	DownloadDir string
	FramesDir   string
	CollageDir  string

	// ownsRoot is set when Root was created here rather than supplied
	ownsRoot bool
}

// New creates a workspace under storageDir, which must already exist.
// An empty storageDir creates a private root in the OS temp directory
// that Delete removes as a whole.
func New(storageDir string) (*Workspace, error) {
	ws := &Workspace{ID: uuid.NewString()}

	if storageDir == "" {
		root, err := os.MkdirTemp("", internal.DefaultAppName+"-*")
		if err != nil {
			return nil, fmt.Errorf("failed to create temporary storage: %w", err)
		}
		ws.Root = root
		ws.ownsRoot = true
	} else {
		if err := common.NewValidationUtils().ValidateDirectoryExists(storageDir, common.ErrNotFound); err != nil {
			return nil, err
		}
		ws.Root = common.NewPathUtils().NormalizePath(storageDir)
	}

	ws.TaskDir = filepath.Join(ws.Root, ws.ID)
	ws.VideoDir = filepath.Join(ws.TaskDir, internal.DefaultVideoDirName)
	ws.DownloadDir = filepath.Join(ws.TaskDir, internal.DefaultDownloadDirName)
	ws.FramesDir = filepath.Join(ws.TaskDir, internal.DefaultFramesDirName)
	ws.CollageDir = filepath.Join(ws.TaskDir, internal.DefaultCollageDirName)

	for _, dir := range ws.Dirs() {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			_ = ws.Delete()
			return nil, fmt.Errorf("failed to create workspace directory %s: %w", dir, err)
		}
	}
	return ws, nil
}

// Dirs lists the four stage directories
func (ws *Workspace) Dirs() []string {
	return []string{ws.VideoDir, ws.DownloadDir, ws.FramesDir, ws.CollageDir}
}

// OwnsRoot reports whether Delete removes Root itself
func (ws *Workspace) OwnsRoot() bool {
	return ws.ownsRoot
}

// Delete removes the task tree. A root created by New goes with it; a
// caller-supplied root is left in place.
func (ws *Workspace) Delete() error {
	target := ws.TaskDir
	if ws.ownsRoot {
		target = ws.Root
	}
	if err := os.RemoveAll(target); err != nil {
		return fmt.Errorf("failed to delete workspace %s: %w", target, err)
	}
	return nil
}
