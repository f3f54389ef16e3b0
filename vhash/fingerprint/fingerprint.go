// Package fingerprint holds the 64-bit videohash value and the comparison
// algebra over its three encodings: a bit list, a "0b"-prefixed binary
// string and a "0x"-prefixed hex string.
package fingerprint

import (
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/videohash/vhash/common"
)

// BitsInHash is the length of every videohash
const BitsInHash = 64

const (
	binaryPrefix = "0b"
	hexPrefix    = "0x"
)

// Hash is an immutable videohash. The binary and hex renderings are derived
// once at construction and always describe the same bit sequence.
type Hash struct {
	bits   []int
	binary string
	hex    string
}

// New builds a Hash from an ordered list of 0/1 values
func New(bits []int) (Hash, error) {
	if len(bits) != BitsInHash {
		return Hash{}, fmt.Errorf("%w: got %d bits, want %d", common.ErrLengthMismatch, len(bits), BitsInHash)
	}
	if err := validateBits(bits); err != nil {
		return Hash{}, err
	}

	owned := make([]int, len(bits))
	copy(owned, bits)

	var sb strings.Builder
	sb.Grow(len(binaryPrefix) + len(owned))
	sb.WriteString(binaryPrefix)
	for _, b := range owned {
		sb.WriteByte(byte('0' + b))
	}
	binary := sb.String()

	hex, err := BinaryToHex(binary)
	if err != nil {
		return Hash{}, err
	}

	return Hash{bits: owned, binary: binary, hex: hex}, nil
}

// FromUint64 builds a Hash whose most significant bit is the first element
func FromUint64(v uint64) Hash {
	bits := make([]int, BitsInHash)
	for i := range bits {
		bits[i] = int((v >> uint(BitsInHash-1-i)) & 1)
	}
	h, _ := New(bits)
	return h
}

// ParseBinary parses a "0b"-prefixed string of exactly BitsInHash digits
func ParseBinary(s string) (Hash, error) {
	body, err := stripPrefix(s, binaryPrefix)
	if err != nil {
		return Hash{}, err
	}
	if len(body) != BitsInHash {
		return Hash{}, fmt.Errorf("%w: binary string has %d bits, want %d", common.ErrLengthMismatch, len(body), BitsInHash)
	}

	bits := make([]int, len(body))
	for i := 0; i < len(body); i++ {
		switch body[i] {
		case '0':
		case '1':
			bits[i] = 1
		default:
			return Hash{}, fmt.Errorf("%w: %q is not a binary digit", common.ErrFormat, body[i])
		}
	}
	return New(bits)
}

// ParseHex parses a "0x"-prefixed string describing at most BitsInHash bits
func ParseHex(s string) (Hash, error) {
	binary, err := HexToBinary(s, BitsInHash)
	if err != nil {
		return Hash{}, err
	}
	return ParseBinary(binary)
}

// Bits returns a copy of the bit sequence
func (h Hash) Bits() []int {
	out := make([]int, len(h.bits))
	copy(out, h.bits)
	return out
}

// Binary returns "0b" followed by one '0'/'1' per bit
func (h Hash) Binary() string { return h.binary }

// Hex returns "0x" followed by 16 lowercase, zero-padded hex digits
func (h Hash) Hex() string { return h.hex }

// String returns the binary rendering
func (h Hash) String() string { return h.binary }

// Len is the length of the binary rendering, prefix included
func (h Hash) Len() int { return len(h.binary) }

// Uint64 packs the bits, first bit most significant
func (h Hash) Uint64() uint64 {
	var v uint64
	for _, b := range h.bits {
		v = v<<1 | uint64(b)
	}
	return v
}

// HexToBinary converts a "0x"-prefixed hex string to a "0b"-prefixed binary
// string zero-padded on the left to bitWidth digits. Values wider than
// bitWidth are not truncated.
func HexToBinary(hex string, bitWidth int) (string, error) {
	body, err := stripPrefix(hex, hexPrefix)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.Grow(len(body) * 4)
	for i := 0; i < len(body); i++ {
		nibble, ok := hexValue(body[i])
		if !ok {
			return "", fmt.Errorf("%w: %q is not a hex digit", common.ErrFormat, body[i])
		}
		fmt.Fprintf(&sb, "%04b", nibble)
	}

	digits := strings.TrimLeft(sb.String(), "0")
	if digits == "" {
		digits = "0"
	}
	if pad := bitWidth - len(digits); pad > 0 {
		digits = strings.Repeat("0", pad) + digits
	}
	return binaryPrefix + digits, nil
}

// BinaryToHex converts a "0b"-prefixed binary string to a "0x"-prefixed
// lowercase hex string with one digit per started nibble, so leading zero
// bits survive the conversion.
func BinaryToHex(bin string) (string, error) {
	body, err := stripPrefix(bin, binaryPrefix)
	if err != nil {
		return "", err
	}
	for i := 0; i < len(body); i++ {
		if body[i] != '0' && body[i] != '1' {
			return "", fmt.Errorf("%w: %q is not a binary digit", common.ErrFormat, body[i])
		}
	}

	if rem := len(body) % 4; rem != 0 {
		body = strings.Repeat("0", 4-rem) + body
	}

	const digits = "0123456789abcdef"
	out := make([]byte, 0, len(hexPrefix)+len(body)/4)
	out = append(out, hexPrefix...)
	for i := 0; i < len(body); i += 4 {
		var nibble byte
		for _, c := range body[i : i+4] {
			nibble = nibble<<1 | byte(c-'0')
		}
		out = append(out, digits[nibble])
	}
	return string(out), nil
}

// HammingDistance counts the positions at which two equal-length strings differ
func HammingDistance(a, b string) (int, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: cannot compare strings of length %d and %d", common.ErrLengthMismatch, len(a), len(b))
	}
	distance := 0
	for i := 0; i < len(a); i++ {
		if a[i] != b[i] {
			distance++
		}
	}
	return distance, nil
}

// HammingDistanceBits counts the positions at which two equal-length bit lists differ
func HammingDistanceBits(a, b []int) (int, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: cannot compare %d bits with %d bits", common.ErrLengthMismatch, len(a), len(b))
	}
	distance := 0
	for i := range a {
		if a[i] != b[i] {
			distance++
		}
	}
	return distance, nil
}

func stripPrefix(s, prefix string) (string, error) {
	if len(s) < len(prefix) || !strings.EqualFold(s[:len(prefix)], prefix) {
		return "", fmt.Errorf("%w: %q must start with %q", common.ErrFormat, s, prefix)
	}
	body := s[len(prefix):]
	if body == "" {
		return "", fmt.Errorf("%w: %q has no digits after the prefix", common.ErrFormat, s)
	}
	return body, nil
}

func hexValue(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

func validateBits(bits []int) error {
	for i, b := range bits {
		if b != 0 && b != 1 {
			return fmt.Errorf("%w: bit %d has value %d", common.ErrFormat, i, b)
		}
	}
	return nil
}
