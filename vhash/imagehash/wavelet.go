package imagehash

import (
	"fmt"
	"image"
	"math"
	"math/bits"
	"sort"

	"github.com/ZanzyTHEbar/videohash/vhash/common"

	"github.com/disintegration/imaging"
	"gonum.org/v1/gonum/mat"
)

// Matrix is a square significance matrix, indexed [row][column]
type Matrix [][]bool

// Linearize flattens m row-major: row 0 first, each row left to right
func Linearize(m Matrix) []int {
	out := make([]int, 0, len(m)*len(m))
	for _, row := range m {
		for _, v := range row {
			if v {
				out = append(out, 1)
			} else {
				out = append(out, 0)
			}
		}
	}
	return out
}

// WaveletHash computes a size×size Haar wavelet hash of img.
//
// The image is converted to grayscale and resized to the largest power of
// two not exceeding its shorter side. The coarsest approximation coefficient
// is removed, the result is decomposed down to size×size and every
// approximation coefficient is compared against their median.
func WaveletHash(img image.Image, size int) (Matrix, error) {
	if size < 2 || bits.OnesCount(uint(size)) != 1 {
		return nil, fmt.Errorf("%w: hash size %d is not a power of two", common.ErrConfiguration, size)
	}

	b := img.Bounds()
	shorter := min(b.Dx(), b.Dy())
	if shorter < size {
		return nil, fmt.Errorf("%w: %dx%d image cannot produce a %dx%d hash", common.ErrImageTooSmall, b.Dx(), b.Dy(), size, size)
	}

	maxLevel := bits.Len(uint(shorter)) - 1
	scale := 1 << maxLevel
	level := maxLevel - (bits.Len(uint(size)) - 1)

	pixels := grayMatrix(img, scale)

	// drop the global average before the real decomposition
	approx, details := wavedec2(pixels, maxLevel)
	approx.Zero()
	pixels = waverec2(approx, details)

	low, _ := wavedec2(pixels, level)
	med := median(low.RawMatrix().Data)

	out := make(Matrix, size)
	for r := 0; r < size; r++ {
		out[r] = make([]bool, size)
		for c := 0; c < size; c++ {
			out[r][c] = low.At(r, c) > med
		}
	}
	return out, nil
}

func grayMatrix(img image.Image, scale int) *mat.Dense {
	gray := imaging.Resize(imaging.Grayscale(img), scale, scale, imaging.Lanczos)

	m := mat.NewDense(scale, scale, nil)
	for y := 0; y < scale; y++ {
		for x := 0; x < scale; x++ {
			off := gray.PixOffset(x, y)
			m.Set(y, x, float64(gray.Pix[off])/255)
		}
	}
	return m
}

// haarDetail holds the three detail bands of one decomposition level
type haarDetail struct {
	horizontal, vertical, diagonal *mat.Dense
}

// dwt2 runs one orthonormal 2D Haar step over 2x2 blocks
func dwt2(x *mat.Dense) (*mat.Dense, haarDetail) {
	rows, cols := x.Dims()
	h, w := rows/2, cols/2

	ll := mat.NewDense(h, w, nil)
	d := haarDetail{
		horizontal: mat.NewDense(h, w, nil),
		vertical:   mat.NewDense(h, w, nil),
		diagonal:   mat.NewDense(h, w, nil),
	}

	for r := 0; r < h; r++ {
		for c := 0; c < w; c++ {
			a := x.At(2*r, 2*c)
			b := x.At(2*r, 2*c+1)
			e := x.At(2*r+1, 2*c)
			f := x.At(2*r+1, 2*c+1)

			ll.Set(r, c, (a+b+e+f)/2)
			d.horizontal.Set(r, c, (a+b-e-f)/2)
			d.vertical.Set(r, c, (a-b+e-f)/2)
			d.diagonal.Set(r, c, (a-b-e+f)/2)
		}
	}
	return ll, d
}

// idwt2 inverts dwt2
func idwt2(ll *mat.Dense, d haarDetail) *mat.Dense {
	h, w := ll.Dims()
	x := mat.NewDense(2*h, 2*w, nil)

	for r := 0; r < h; r++ {
		for c := 0; c < w; c++ {
			s := ll.At(r, c)
			hz := d.horizontal.At(r, c)
			vt := d.vertical.At(r, c)
			dg := d.diagonal.At(r, c)

			x.Set(2*r, 2*c, (s+hz+vt+dg)/2)
			x.Set(2*r, 2*c+1, (s+hz-vt-dg)/2)
			x.Set(2*r+1, 2*c, (s-hz+vt-dg)/2)
			x.Set(2*r+1, 2*c+1, (s-hz-vt+dg)/2)
		}
	}
	return x
}

// wavedec2 decomposes x level times. Details are ordered coarsest first.
func wavedec2(x *mat.Dense, level int) (*mat.Dense, []haarDetail) {
	details := make([]haarDetail, level)
	approx := x
	for i := level - 1; i >= 0; i-- {
		var d haarDetail
		approx, d = dwt2(approx)
		details[i] = d
	}
	return approx, details
}

// waverec2 rebuilds the signal from wavedec2 output
func waverec2(approx *mat.Dense, details []haarDetail) *mat.Dense {
	x := approx
	for _, d := range details {
		x = idwt2(x, d)
	}
	return x
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
