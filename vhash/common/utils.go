package common

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// PathUtils provides path manipulation utilities used across packages
type PathUtils struct{}

// NewPathUtils creates a new PathUtils instance
func NewPathUtils() *PathUtils {
	return &PathUtils{}
}

// NormalizePath returns a cleaned absolute form of path
func (pu *PathUtils) NormalizePath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return filepath.Clean(abs)
}

// Extension returns the file extension of path without the leading dot.
// Only the final path element is considered, so "/a.b/video" has none.
func (pu *PathUtils) Extension(path string) (string, error) {
	ext := strings.TrimPrefix(filepath.Ext(filepath.Base(path)), ".")
	if ext == "" {
		return "", fmt.Errorf("%w: %s has no file extension", ErrUnknownFormat, path)
	}
	return ext, nil
}

// ListFiles returns the absolute paths of all regular files in dir,
// sorted lexicographically by name.
func (pu *PathUtils) ListFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// FileUtils provides file manipulation utilities used across packages
type FileUtils struct{}

// NewFileUtils creates a new FileUtils instance
func NewFileUtils() *FileUtils {
	return &FileUtils{}
}

// CopyFile copies srcPath to dstPath, truncating any existing destination.
// The source is never modified or removed.
func (fu *FileUtils) CopyFile(ctx context.Context, srcPath, dstPath string) (int64, error) {
	srcFile, err := os.Open(srcPath)
	if err != nil {
		return 0, fmt.Errorf("failed to open source file: %w", err)
	}
	defer srcFile.Close()

	dstFile, err := os.Create(dstPath)
	if err != nil {
		return 0, fmt.Errorf("failed to create destination file: %w", err)
	}

	n, err := fu.copyWithContext(ctx, dstFile, srcFile)
	if err != nil {
		dstFile.Close()
		return n, fmt.Errorf("failed to copy file content: %w", err)
	}

	if err := dstFile.Close(); err != nil {
		return n, fmt.Errorf("failed to close destination file: %w", err)
	}
	return n, nil
}

func (fu *FileUtils) copyWithContext(ctx context.Context, dst io.Writer, src io.Reader) (int64, error) {
	buffer := make([]byte, 32*1024) // 32KB buffer
	var totalBytes int64

	for {
		select {
		case <-ctx.Done():
			return totalBytes, ctx.Err()
		default:
		}

		n, readErr := src.Read(buffer)
		if n > 0 {
			if _, writeErr := dst.Write(buffer[:n]); writeErr != nil {
				return totalBytes, writeErr
			}
			totalBytes += int64(n)
		}

		if readErr != nil {
			if readErr == io.EOF {
				return totalBytes, nil
			}
			return totalBytes, readErr
		}
	}
}
