// Package collage tiles an ordered frame sequence into one image whose grid
// is as close to square as the frame count allows.
package collage

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"path/filepath"

	internal "github.com/ZanzyTHEbar/videohash/vhash"
	"github.com/ZanzyTHEbar/videohash/vhash/common"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog"
)

// Collage is a written composite image
type Collage struct {
	Path   string
	Layout Layout
}

// Builder writes collages of a fixed width
type Builder struct {
	width      int
	logger     zerolog.Logger
	validation *common.ValidationUtils
}

// NewBuilder returns a Builder producing collages width pixels wide.
// A non-positive width selects the default.
func NewBuilder(width int, logger zerolog.Logger) *Builder {
	if width <= 0 {
		width = internal.DefaultCollageWidth
	}
	return &Builder{
		width:      width,
		logger:     logger.With().Str("component", "collage").Logger(),
		validation: common.NewValidationUtils(),
	}
}

// Width is the collage width in pixels
func (b *Builder) Width() int {
	return b.width
}

// Build pastes frames onto a black canvas in order, left to right then top
// to bottom, and saves it to outputPath. The format follows the extension
// and an existing file is overwritten. The first frame's size is taken as
// the size of every frame.
func (b *Builder) Build(ctx context.Context, frames []string, outputPath string) (*Collage, error) {
	if len(frames) == 0 {
		return nil, fmt.Errorf("%w: cannot make a collage of zero frames", common.ErrEmptyInput)
	}
	if err := b.validation.ValidateDirectoryExists(filepath.Dir(outputPath), common.ErrNotFound); err != nil {
		return nil, err
	}

	first, err := imaging.Open(frames[0])
	if err != nil {
		return nil, fmt.Errorf("failed to open frame %s: %w", frames[0], err)
	}
	bounds := first.Bounds()

	layout, err := ComputeLayout(len(frames), bounds.Dx(), bounds.Dy(), b.width)
	if err != nil {
		return nil, err
	}

	canvas := imaging.New(layout.Width, layout.Height, color.Black)
	for i, path := range frames {
		if err := b.validation.ValidateContextCancellation(ctx); err != nil {
			return nil, err
		}

		var frame image.Image = first
		if i > 0 {
			if frame, err = imaging.Open(path); err != nil {
				return nil, fmt.Errorf("failed to open frame %s: %w", path, err)
			}
		}

		thumb := imaging.Fit(frame, layout.CellWidth, layout.CellHeight, imaging.Lanczos)
		canvas = imaging.Paste(canvas, thumb, layout.Position(i))
	}

	if err := imaging.Save(canvas, outputPath, imaging.JPEGQuality(75)); err != nil {
		return nil, fmt.Errorf("failed to save collage %s: %w", outputPath, err)
	}

	b.logger.Debug().
		Int("frames", layout.Count).
		Int("columns", layout.Columns).
		Int("rows", layout.Rows).
		Int("width", layout.Width).
		Int("height", layout.Height).
		Str("path", outputPath).
		Msg("Collage written")

	return &Collage{Path: outputPath, Layout: layout}, nil
}
