package internal

import (
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

var (
	// DefaultAppName is used for config lookup and temp directory prefixes
	DefaultAppName        = "videohash"
	DefaultAppCMDShortCut = "videohash"
	DefaultConfigPath     = filepath.Join(getHomeDir(), ".config", DefaultAppName)
	DefaultConfigFile     = filepath.Join(DefaultConfigPath, "config.yaml")

	// Pipeline defaults
	DefaultBitsInHash    = 64
	DefaultCollageWidth  = 1024
	DefaultCollageName   = "collage.jpg"
	DefaultFrameInterval = 1.0
	DefaultFrameSize     = "144x144"
	DefaultAlgorithm     = "whash"
	DefaultWorkers       = 4

	// Workspace layout, one directory per stage under the task root
	DefaultVideoDirName    = "video"
	DefaultDownloadDirName = "download"
	DefaultFramesDirName   = "frames"
	DefaultCollageDirName  = "collage"
)

func getHomeDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current working directory if home directory is unavailable
		cwd, cwdErr := os.Getwd()
		if cwdErr != nil {
			log.Printf("Unable to get home or working directory, using /tmp: %v", err)
			return "/tmp"
		}
		log.Printf("Unable to get home directory, using current working directory: %v", err)
		return cwd
	}
	return homeDir
}

// GetLogger returns a properly configured zerolog logger instance
func GetLogger() zerolog.Logger {
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}

// NewLogger builds a stderr logger at the given level. Unknown levels fall
// back to info. pretty switches to the human readable console writer.
func NewLogger(level string, pretty bool) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	if pretty {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(lvl).With().Timestamp().Logger()
	}
	return GetLogger().Level(lvl)
}
