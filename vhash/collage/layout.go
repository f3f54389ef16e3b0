package collage

import (
	"fmt"
	"image"
	"math"

	"github.com/ZanzyTHEbar/videohash/vhash/common"
)

// Layout is the grid geometry for a collage of Count equally sized frames
type Layout struct {
	Count      int
	Columns    int
	Rows       int
	CellWidth  int
	CellHeight int
	Width      int
	Height     int
	Scale      float64
}

// ComputeLayout sizes a grid of n frames of frameW×frameH pixels whose
// total width is width. Columns are round(sqrt(n)) so the grid stays close
// to square; rows, cell sizes and the height round up.
func ComputeLayout(n, frameW, frameH, width int) (Layout, error) {
	if n <= 0 {
		return Layout{}, fmt.Errorf("%w: cannot lay out %d frames", common.ErrEmptyInput, n)
	}
	if frameW <= 0 || frameH <= 0 {
		return Layout{}, fmt.Errorf("%w: frame size %dx%d", common.ErrConfiguration, frameW, frameH)
	}
	if width <= 0 {
		return Layout{}, fmt.Errorf("%w: collage width %d", common.ErrConfiguration, width)
	}

	columns := int(math.Round(math.Sqrt(float64(n))))
	rows := (n + columns - 1) / columns
	scale := float64(width) / float64(columns*frameW)

	return Layout{
		Count:      n,
		Columns:    columns,
		Rows:       rows,
		CellWidth:  int(math.Ceil(float64(frameW) * scale)),
		CellHeight: int(math.Ceil(float64(frameH) * scale)),
		Width:      width,
		Height:     int(math.Ceil(scale * float64(frameH) * float64(rows))),
		Scale:      scale,
	}, nil
}

// Position is the top-left corner of frame i
func (l Layout) Position(i int) image.Point {
	return image.Pt((i%l.Columns)*l.CellWidth, (i/l.Columns)*l.CellHeight)
}

// BlankCells counts the trailing grid cells left empty
func (l Layout) BlankCells() int {
	return l.Columns*l.Rows - l.Count
}
