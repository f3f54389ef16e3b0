// Package acquire turns a local path or a remote URL into one canonical
// video file inside a workspace.
package acquire

import (
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/videohash/vhash/common"
)

// Source is exactly one of a local path or a remote URL
type Source struct {
	Path string
	URL  string
}

// NewSource checks that exactly one of path and url is set
func NewSource(path, url string) (Source, error) {
	path, url = strings.TrimSpace(path), strings.TrimSpace(url)
	switch {
	case path == "" && url == "":
		return Source{}, fmt.Errorf("%w: specify either a path or a URL of the video", common.ErrConfiguration)
	case path != "" && url != "":
		return Source{}, fmt.Errorf("%w: specify either a path or a URL, not both", common.ErrConfiguration)
	}
	return Source{Path: path, URL: url}, nil
}

// IsRemote reports whether the video must be downloaded
func (s Source) IsRemote() bool {
	return s.URL != ""
}

func (s Source) String() string {
	if s.IsRemote() {
		return s.URL
	}
	return s.Path
}
