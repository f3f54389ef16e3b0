// Package imagehash turns a collage image into an ordered 64-bit sequence.
// The default algorithm is a Haar wavelet hash; perceptual, difference and
// average hashes are available as alternates.
package imagehash

import (
	"fmt"
	"image"
	"strings"

	"github.com/ZanzyTHEbar/videohash/vhash/common"

	"github.com/corona10/goimagehash"
	"github.com/disintegration/imaging"
)

// HashSize is the edge of the square significance matrix
const HashSize = 8

// Algorithm names an image hash
type Algorithm string

const (
	Wavelet    Algorithm = "whash"
	Perception Algorithm = "phash"
	Difference Algorithm = "dhash"
	Average    Algorithm = "ahash"
)

// Algorithms lists every supported algorithm, default first
var Algorithms = []Algorithm{Wavelet, Perception, Difference, Average}

// ParseAlgorithm matches name case-insensitively. An empty name selects Wavelet.
func ParseAlgorithm(name string) (Algorithm, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return Wavelet, nil
	}
	for _, alg := range Algorithms {
		if string(alg) == name {
			return alg, nil
		}
	}
	return "", fmt.Errorf("%w: unknown hash algorithm %q", common.ErrConfiguration, name)
}

// Hasher applies one algorithm to images
type Hasher struct {
	algorithm Algorithm
}

// New returns a Hasher for alg
func New(alg Algorithm) (*Hasher, error) {
	parsed, err := ParseAlgorithm(string(alg))
	if err != nil {
		return nil, err
	}
	return &Hasher{algorithm: parsed}, nil
}

// Algorithm reports which hash h computes
func (h *Hasher) Algorithm() Algorithm {
	return h.algorithm
}

// Hash returns the HashSize*HashSize bits of img, first bit first
func (h *Hasher) Hash(img image.Image) ([]int, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: image is nil", common.ErrNullArgument)
	}

	if h.algorithm == Wavelet {
		m, err := WaveletHash(img, HashSize)
		if err != nil {
			return nil, err
		}
		return Linearize(m), nil
	}

	var (
		hash *goimagehash.ImageHash
		err  error
	)
	switch h.algorithm {
	case Perception:
		hash, err = goimagehash.PerceptionHash(img)
	case Difference:
		hash, err = goimagehash.DifferenceHash(img)
	case Average:
		hash, err = goimagehash.AverageHash(img)
	default:
		return nil, fmt.Errorf("%w: unknown hash algorithm %q", common.ErrConfiguration, h.algorithm)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to compute %s: %w", h.algorithm, err)
	}
	return unpack(hash.GetHash()), nil
}

// HashFile decodes the image at path and hashes it
func (h *Hasher) HashFile(path string) ([]int, error) {
	if err := common.NewValidationUtils().ValidateFileExists(path); err != nil {
		return nil, err
	}
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image %s: %w", path, err)
	}
	return h.Hash(img)
}

// unpack spreads v into 64 bits, most significant first
func unpack(v uint64) []int {
	const width = HashSize * HashSize
	out := make([]int, width)
	for i := range out {
		out[i] = int((v >> uint(width-1-i)) & 1)
	}
	return out
}
