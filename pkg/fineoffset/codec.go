// Package fineoffset decodes the memory image of Fine Offset (WH1080 family)
// weather stations: the 256-byte settings block, the 16-byte history records
// and the circular history area that holds them.
package fineoffset

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// Placeholder is the text rendered for a field whose raw bytes carry the
// "no data" sentinel.
const Placeholder = "--.-"

// FieldType identifies how a raw byte window is interpreted.
type FieldType uint8

const (
	UnsignedByte  FieldType = iota // ub
	SignedByte                     // sb, sign-magnitude
	UnsignedShort                  // us, little endian
	SignedShort                    // ss, little endian sign-magnitude
	DateTime                       // dt, BCD yy mm dd hh mm
	TimeOfDay                      // tt, BCD hh mm
	Bitfield                       // pb
	WindAverage                    // wa, 12 bits: low byte + low nibble of byte 2
	WindGust                       // wg, 12 bits: low byte + high nibble of byte 1
	DewPoint                       // dp, humidity byte followed by a signed short temperature
)

type fieldTypeInfo struct {
	name   string
	width  int
	exempt bool // never treated as a sentinel
}

var fieldTypes = [...]fieldTypeInfo{
	UnsignedByte:  {"ub", 1, false},
	SignedByte:    {"sb", 1, false},
	UnsignedShort: {"us", 2, false},
	SignedShort:   {"ss", 2, false},
	DateTime:      {"dt", 5, true},
	TimeOfDay:     {"tt", 2, true},
	Bitfield:      {"pb", 1, true},
	WindAverage:   {"wa", 3, false},
	WindGust:      {"wg", 3, false},
	DewPoint:      {"dp", 3, false},
}

func (t FieldType) info() (fieldTypeInfo, bool) {
	if int(t) >= len(fieldTypes) {
		return fieldTypeInfo{}, false
	}
	return fieldTypes[t], true
}

// Width returns the number of raw bytes the type consumes, or 0 for an unknown type.
func (t FieldType) Width() int {
	info, _ := t.info()
	return info.width
}

func (t FieldType) String() string {
	if info, ok := t.info(); ok {
		return info.name
	}
	return "FieldType(" + strconv.Itoa(int(t)) + ")"
}

// Value is a decoded field. An invalid value carries no number and must be
// rendered with its Text (the placeholder), never as zero.
type Value struct {
	Type   FieldType
	Number float64
	Time   time.Time
	Text   string
	Valid  bool
}

// Float returns the numeric value and whether it is present.
func (v Value) Float() (float64, bool) {
	return v.Number, v.Valid
}

func (v Value) String() string {
	if !v.Valid {
		return Placeholder
	}
	return v.Text
}

func invalid(t FieldType) Value {
	return Value{Type: t, Text: Placeholder}
}

// Decode interprets the leading bytes of raw as a field of type t and returns
// raw*scale + offset for the numeric types. A window made entirely of 0xFF
// bytes yields an invalid Value; date, time and bitfield types are exempt
// from that rule. The only errors are structural: an unknown type or a window
// shorter than the type's width.
func Decode(raw []byte, t FieldType, scale, offset float64) (Value, error) {
	info, ok := t.info()
	if !ok {
		return Value{}, fmt.Errorf("%w: %d", ErrUnknownFieldType, t)
	}
	if len(raw) < info.width {
		return Value{}, fmt.Errorf("%w: %s needs %d bytes, got %d", ErrShortWindow, t, info.width, len(raw))
	}
	raw = raw[:info.width]

	if !info.exempt && isSentinel(raw) {
		return invalid(t), nil
	}

	v := Value{Type: t, Valid: true}
	switch t {
	case UnsignedByte:
		v.Number = float64(raw[0])
	case SignedByte:
		v.Number = float64(signMagnitude8(raw[0]))
	case UnsignedShort:
		v.Number = float64(le16(raw))
	case SignedShort:
		v.Number = float64(signMagnitude16(le16(raw)))
	case WindAverage:
		v.Number = float64(uint16(raw[0]) | uint16(raw[2]&0x0F)<<8)
	case WindGust:
		v.Number = float64(uint16(raw[0]) | uint16(raw[1]&0xF0)<<4)
	case DewPoint:
		hum := raw[0]
		if hum == 0 || hum == 0xFF || le16(raw[1:]) == 0xFFFF {
			return invalid(t), nil
		}
		temp := float64(signMagnitude16(le16(raw[1:])))*scale + offset
		v.Number = DewPointC(temp, float64(hum))
		v.Text = formatNumber(v.Number, scale)
		return v, nil
	case DateTime:
		ts, ok := decodeBCDDateTime(raw)
		if !ok {
			return invalid(t), nil
		}
		v.Time = ts
		v.Text = ts.Format("2006-01-02 15:04")
		return v, nil
	case TimeOfDay:
		hour, minute, ok := decodeBCDTime(raw)
		if !ok {
			return invalid(t), nil
		}
		v.Number = float64(hour*60 + minute)
		v.Text = fmt.Sprintf("%02d:%02d", hour, minute)
		return v, nil
	case Bitfield:
		v.Number = float64(raw[0])
		v.Text = fmt.Sprintf("%02x", raw[0])
		return v, nil
	}

	v.Number = v.Number*scale + offset
	v.Text = formatNumber(v.Number, scale)
	return v, nil
}

func isSentinel(raw []byte) bool {
	for _, b := range raw {
		if b != 0xFF {
			return false
		}
	}
	return true
}

// formatNumber renders n with as many decimals as the scale resolves, at least one.
func formatNumber(n, scale float64) string {
	decimals := 1
	if scale > 0 {
		if d := int(math.Round(-math.Log10(scale))); d > decimals {
			decimals = d
		}
	}
	return strconv.FormatFloat(n, 'f', decimals, 64)
}

func le16(raw []byte) uint16 {
	return uint16(raw[0]) | uint16(raw[1])<<8
}

func signMagnitude8(b byte) int {
	magnitude := int(b & 0x7F)
	if b&0x80 != 0 {
		return -magnitude
	}
	return magnitude
}

func signMagnitude16(u uint16) int {
	magnitude := int(u & 0x7FFF)
	if u&0x8000 != 0 {
		return -magnitude
	}
	return magnitude
}

// EncodeSignedByte is the inverse of the sign-magnitude byte decoding.
// The magnitude is clamped to 127.
func EncodeSignedByte(n int) byte {
	var sign byte
	if n < 0 {
		sign = 0x80
		n = -n
	}
	if n > 0x7F {
		n = 0x7F
	}
	return sign | byte(n)
}

// EncodeSignedShort is the inverse of the sign-magnitude short decoding,
// little endian. The magnitude is clamped to 32767.
func EncodeSignedShort(n int) [2]byte {
	var sign uint16
	if n < 0 {
		sign = 0x8000
		n = -n
	}
	if n > 0x7FFF {
		n = 0x7FFF
	}
	u := sign | uint16(n)
	return [2]byte{byte(u), byte(u >> 8)}
}

// EncodeUnsignedShort writes n little endian.
func EncodeUnsignedShort(n uint16) [2]byte {
	return [2]byte{byte(n), byte(n >> 8)}
}
