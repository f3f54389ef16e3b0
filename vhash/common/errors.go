package common

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

// Error kinds surfaced by the hashing pipeline and the hash algebra.
// Callers match them with errors.Is; every returned error wraps exactly one.
var (
	ErrConfiguration    = errors.New("invalid configuration")
	ErrUnknownFormat    = errors.New("unknown video format")
	ErrNotFound         = errors.New("not found")
	ErrToolNotFound     = errors.New("external tool not found")
	ErrDownloadFailed   = errors.New("download failed")
	ErrExtractionFailed = errors.New("frame extraction failed")
	ErrEmptyInput       = errors.New("empty input")
	ErrImageTooSmall    = errors.New("image too small to hash")
	ErrFormat           = errors.New("malformed hash string")
	ErrLengthMismatch   = errors.New("hash length mismatch")
	ErrNullArgument     = errors.New("nil hash operand")
	ErrType             = errors.New("unsupported hash operand type")
)

// ValidationUtils provides common validation utilities used across packages
type ValidationUtils struct{}

// NewValidationUtils creates a new ValidationUtils instance
func NewValidationUtils() *ValidationUtils {
	return &ValidationUtils{}
}

// ValidateContextCancellation checks if context is cancelled and returns appropriate error
func (vu *ValidationUtils) ValidateContextCancellation(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

// ValidateFileExists validates that a regular file exists at path
func (vu *ValidationUtils) ValidateFileExists(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: no file at %s", ErrNotFound, path)
		}
		return fmt.Errorf("failed to access file %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory, not a file", ErrNotFound, path)
	}
	return nil
}

// ValidateDirectoryExists validates that a directory exists.
// notExist is the sentinel wrapped when the directory is missing, since
// callers differ on whether that is a lookup or a configuration failure.
func (vu *ValidationUtils) ValidateDirectoryExists(path string, notExist error) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: no directory at %s", notExist, path)
		}
		return fmt.Errorf("failed to access directory %s: %w", path, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: path is not a directory: %s", notExist, path)
	}
	return nil
}

// ErrorUtils provides common error handling utilities
type ErrorUtils struct {
	logger zerolog.Logger
}

// NewErrorUtils creates a new ErrorUtils instance
func NewErrorUtils(logger zerolog.Logger) *ErrorUtils {
	return &ErrorUtils{logger: logger}
}

// WrapError wraps an error with additional context
func (eu *ErrorUtils) WrapError(err error, message string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	context := fmt.Sprintf(message, args...)
	return fmt.Errorf("%s: %w", context, err)
}

// HandleOperationError logs a failed stage at debug level and wraps it.
// The error is always returned; the pipeline has no partial-success mode.
func (eu *ErrorUtils) HandleOperationError(err error, operation, path string) error {
	if err == nil {
		return nil
	}

	eu.logger.Debug().
		Str("operation", operation).
		Str("path", path).
		Err(err).
		Msg("Operation failed")

	return eu.WrapError(err, "failed to %s %s", operation, path)
}
