package fingerprint

import (
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/videohash/vhash/common"
)

// Operand is anything a Hash can be compared against. The set is closed:
// Encoded, HexString, BinString, BitList, Hash and *Hash.
type Operand interface {
	operand()
}

// Encoded is a string whose encoding is chosen by its prefix,
// "0x" for hex or "0b" for binary, case-insensitively.
type Encoded string

// HexString is a "0x"-prefixed hex encoding
type HexString string

// BinString is a "0b"-prefixed binary encoding
type BinString string

// BitList is an ordered list of 0/1 values
type BitList []int

func (Encoded) operand()   {}
func (HexString) operand() {}
func (BinString) operand() {}
func (BitList) operand()   {}
func (Hash) operand()      {}

// OperandOf maps a dynamically typed value onto the Operand union.
// Matching is by exact type: a bool is rejected even though it could be read
// as a single bit.
func OperandOf(v any) (Operand, error) {
	switch o := v.(type) {
	case nil:
		return nil, fmt.Errorf("%w: other hash is nil", common.ErrNullArgument)
	case Operand:
		return o, nil
	case string:
		return Encoded(o), nil
	case []int:
		return BitList(o), nil
	case bool:
		return nil, fmt.Errorf("%w: cannot compare a hash with a boolean", common.ErrType)
	default:
		return nil, fmt.Errorf("%w: cannot compare a hash with %T", common.ErrType, v)
	}
}

// Difference returns the Hamming distance between h and other
func (h Hash) Difference(other Operand) (int, error) {
	switch o := other.(type) {
	case nil:
		return 0, fmt.Errorf("%w: other hash is nil", common.ErrNullArgument)
	case *Hash:
		if o == nil {
			return 0, fmt.Errorf("%w: other hash is nil", common.ErrNullArgument)
		}
		return HammingDistanceBits(h.bits, o.bits)
	case Hash:
		return HammingDistanceBits(h.bits, o.bits)
	case Encoded:
		lower := strings.ToLower(string(o))
		switch {
		case strings.HasPrefix(lower, hexPrefix):
			return h.Difference(HexString(o))
		case strings.HasPrefix(lower, binaryPrefix):
			return h.Difference(BinString(o))
		}
		return 0, fmt.Errorf("%w: hash string must start with %q for hex or %q for binary", common.ErrFormat, hexPrefix, binaryPrefix)
	case HexString:
		binary, err := HexToBinary(string(o), BitsInHash)
		if err != nil {
			return 0, err
		}
		return HammingDistance(h.binary, binary)
	case BinString:
		if _, err := stripPrefix(string(o), binaryPrefix); err != nil {
			return 0, err
		}
		if len(o) != len(h.binary) {
			return 0, fmt.Errorf("%w: binary string has length %d, want %d (%d bits)", common.ErrLengthMismatch, len(o), len(h.binary), BitsInHash)
		}
		lower := strings.ToLower(string(o))
		for i := len(binaryPrefix); i < len(lower); i++ {
			if lower[i] != '0' && lower[i] != '1' {
				return 0, fmt.Errorf("%w: %q is not a binary digit", common.ErrFormat, lower[i])
			}
		}
		return HammingDistance(h.binary, lower)
	case BitList:
		if len(o) != BitsInHash {
			return 0, fmt.Errorf("%w: bit list has %d bits, want %d", common.ErrLengthMismatch, len(o), BitsInHash)
		}
		if err := validateBits(o); err != nil {
			return 0, err
		}
		return HammingDistanceBits(h.bits, o)
	}
	return 0, fmt.Errorf("%w: cannot compare a hash with %T", common.ErrType, other)
}

// Equal reports whether other is at Hamming distance zero from h
func (h Hash) Equal(other Operand) (bool, error) {
	d, err := h.Difference(other)
	if err != nil {
		return false, err
	}
	return d == 0, nil
}

// NotEqual is the negation of Equal
func (h Hash) NotEqual(other Operand) (bool, error) {
	eq, err := h.Equal(other)
	if err != nil {
		return false, err
	}
	return !eq, nil
}
