package cbor

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrIndefiniteLength is returned when decoding encounters an
// indefinite-length major type — dCBOR is restricted to definite-length
// encodings, so streaming forms are rejected rather than silently
// accumulated.
var ErrIndefiniteLength = errors.New("cbor: indefinite-length encoding is not valid dCBOR")

// ErrTruncated is returned when the input ends before a value is fully
// decoded.
var ErrTruncated = errors.New("cbor: truncated input")

// Decode decodes a single deterministic-CBOR-encoded value from data,
// returning the value and the number of bytes consumed.
func Decode(data []byte) (Value, int, error) {
	return decodeValue(data)
}

func decodeValue(data []byte) (Value, int, error) {
	if len(data) == 0 {
		return Value{}, 0, ErrTruncated
	}
	first := data[0]
	major := first >> 5
	minor := first & 0x1F

	switch major {
	case 0: // unsigned int
		u, n, err := decodeUint(data, minor)
		if err != nil {
			return Value{}, 0, err
		}
		return Uint(u), n, nil
	case 1: // negative int
		u, n, err := decodeUint(data, minor)
		if err != nil {
			return Value{}, 0, err
		}
		return Int(-1 - int64(u)), n, nil
	case 2: // byte string
		return decodeBytes(data, minor)
	case 3: // text string
		return decodeText(data, minor)
	case 4: // array
		return decodeArray(data, minor)
	case 5: // map
		return decodeMap(data, minor)
	case 6: // tag
		return decodeTag(data, minor)
	case 7: // simple/float
		return decodeSimple(data, minor)
	}
	return Value{}, 0, fmt.Errorf("cbor: unknown major type %d", major)
}

func decodeUint(data []byte, minor byte) (uint64, int, error) {
	switch {
	case minor < 24:
		return uint64(minor), 1, nil
	case minor == 24:
		if len(data) < 2 {
			return 0, 0, ErrTruncated
		}
		return uint64(data[1]), 2, nil
	case minor == 25:
		if len(data) < 3 {
			return 0, 0, ErrTruncated
		}
		return uint64(binary.BigEndian.Uint16(data[1:3])), 3, nil
	case minor == 26:
		if len(data) < 5 {
			return 0, 0, ErrTruncated
		}
		return uint64(binary.BigEndian.Uint32(data[1:5])), 5, nil
	case minor == 27:
		if len(data) < 9 {
			return 0, 0, ErrTruncated
		}
		return binary.BigEndian.Uint64(data[1:9]), 9, nil
	case minor == 31:
		return 0, 0, ErrIndefiniteLength
	}
	return 0, 0, fmt.Errorf("cbor: invalid length minor %d", minor)
}

func decodeBytes(data []byte, minor byte) (Value, int, error) {
	length, hdr, err := decodeUint(data, minor)
	if err != nil {
		return Value{}, 0, err
	}
	// Compare as uint64 before narrowing: a declared length anywhere near
	// 2^64 would overflow int on narrowing and wrap negative, making the
	// truncation check below pass when it shouldn't.
	if length > uint64(len(data)-hdr) {
		return Value{}, 0, ErrTruncated
	}
	total := hdr + int(length)
	b := make([]byte, length)
	copy(b, data[hdr:total])
	return Bytes(b), total, nil
}

func decodeText(data []byte, minor byte) (Value, int, error) {
	length, hdr, err := decodeUint(data, minor)
	if err != nil {
		return Value{}, 0, err
	}
	if length > uint64(len(data)-hdr) {
		return Value{}, 0, ErrTruncated
	}
	total := hdr + int(length)
	return Text(string(data[hdr:total])), total, nil
}

func decodeArray(data []byte, minor byte) (Value, int, error) {
	count, n, err := decodeUint(data, minor)
	if err != nil {
		return Value{}, 0, err
	}
	items := make([]Value, 0, count)
	for i := uint64(0); i < count; i++ {
		v, consumed, err := decodeValue(data[n:])
		if err != nil {
			return Value{}, 0, err
		}
		items = append(items, v)
		n += consumed
	}
	return Array(items...), n, nil
}

func decodeMap(data []byte, minor byte) (Value, int, error) {
	count, n, err := decodeUint(data, minor)
	if err != nil {
		return Value{}, 0, err
	}
	entries := make([]MapEntry, 0, count)
	for i := uint64(0); i < count; i++ {
		k, consumed, err := decodeValue(data[n:])
		if err != nil {
			return Value{}, 0, err
		}
		n += consumed
		v, consumed2, err := decodeValue(data[n:])
		if err != nil {
			return Value{}, 0, err
		}
		n += consumed2
		entries = append(entries, MapEntry{Key: k, Value: v})
	}
	return Map(entries...), n, nil
}

func decodeTag(data []byte, minor byte) (Value, int, error) {
	tagNum, n, err := decodeUint(data, minor)
	if err != nil {
		return Value{}, 0, err
	}
	content, consumed, err := decodeValue(data[n:])
	if err != nil {
		return Value{}, 0, err
	}
	return Tagged(tagNum, content), n + consumed, nil
}

func decodeSimple(data []byte, minor byte) (Value, int, error) {
	switch minor {
	case 20:
		return Bool(false), 1, nil
	case 21:
		return Bool(true), 1, nil
	case 22:
		return Null(), 1, nil
	case 23:
		return Undefined(), 1, nil
	case 25:
		if len(data) < 3 {
			return Value{}, 0, ErrTruncated
		}
		return Float(float64(math.Float32frombits(halfToFloat32bits(binary.BigEndian.Uint16(data[1:3]))))), 3, nil
	case 26:
		if len(data) < 5 {
			return Value{}, 0, ErrTruncated
		}
		return Float(float64(math.Float32frombits(binary.BigEndian.Uint32(data[1:5])))), 5, nil
	case 27:
		if len(data) < 9 {
			return Value{}, 0, ErrTruncated
		}
		return Float(math.Float64frombits(binary.BigEndian.Uint64(data[1:9]))), 9, nil
	}
	return Value{}, 0, fmt.Errorf("cbor: unsupported simple value %d", minor)
}

// halfToFloat32bits converts an IEEE 754 half-precision (binary16) value
// to the bit pattern of the equivalent binary32 value.
func halfToFloat32bits(h uint16) uint32 {
	sign := uint32(h&0x8000) << 16
	exp := uint32(h&0x7C00) >> 10
	frac := uint32(h & 0x03FF)

	switch exp {
	case 0:
		if frac == 0 {
			return sign
		}
		// subnormal half -> normalize
		e := int32(-14)
		for frac&0x0400 == 0 {
			frac <<= 1
			e--
		}
		frac &= 0x03FF
		return sign | uint32(e+127)<<23 | frac<<13
	case 0x1F:
		if frac == 0 {
			return sign | 0x7F800000
		}
		return sign | 0x7F800000 | frac<<13
	default:
		return sign | (exp-15+127)<<23 | frac<<13
	}
}
