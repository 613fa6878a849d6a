package radio

import (
	"strconv"
)

// Encoder turns a padded digit string into an event payload.
type Encoder func(digits string) (uint32, bool)

// EncodeBCD drops the leading sentinel digit (the implied "1" of a NAV
// frequency) and nibble-packs the rest: "11345" -> 0x1345.
func EncodeBCD(digits string) (uint32, bool) {
	if len(digits) < 2 {
		return 0, false
	}
	return packNibbles(digits[1:])
}

// EncodeBCDFull nibble-packs every digit: "7700" -> 0x7700.
func EncodeBCDFull(digits string) (uint32, bool) {
	return packNibbles(digits)
}

// EncodeScaledHz parses the digits as kHz and scales to Hz: "118275" -> 118275000.
func EncodeScaledHz(digits string) (uint32, bool) {
	if !isDigits(digits) {
		return 0, false
	}
	v, err := strconv.ParseUint(digits, 10, 32)
	if err != nil {
		return 0, false
	}
	hz := v * 1000
	if hz > 0xFFFFFFFF {
		return 0, false
	}
	return uint32(hz), true
}

// EncodeADFHz right-pads to four digits and nibble-packs into the upper word.
// The first nibble is kept; SimConnect documents that it ignores it.
func EncodeADFHz(digits string) (uint32, bool) {
	digits = padRight(digits, 4)
	if len(digits) > 4 {
		return 0, false
	}
	v, ok := packNibbles(digits)
	if !ok {
		return 0, false
	}
	return v << 16, true
}

func packNibbles(digits string) (uint32, bool) {
	if digits == "" || len(digits) > 8 || !isDigits(digits) {
		return 0, false
	}
	v, err := strconv.ParseUint(digits, 16, 32)
	if err != nil {
		return 0, false
	}
	return uint32(v), true
}

func padRight(s string, n int) string {
	for len(s) < n {
		s += "0"
	}
	return s
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
