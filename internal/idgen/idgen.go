// =============================================================================
// Oficina Recibos - Receipt Number Generator
// =============================================================================
//
// Receipt numbers are decimal strings zero-padded to six digits ("000042").
// Historical spreadsheets also hold numbers typed by hand ("R-17", "17",
// "0017/2023"), so the generator only looks at the digits of each id.
//
// =============================================================================

package idgen

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// Width is the minimum number of digits of a receipt number.
const Width = 6

// NextID returns the next receipt number given the existing ones.
//
// The digits of each id are concatenated and parsed; the result is the
// largest value plus one, left-padded with zeros to Width. Ids without
// digits are ignored; with no usable id the sequence starts at 1. Values
// wider than Width are never truncated.
func NextID(existing []string) string {
	max := decimal.Zero
	for _, id := range existing {
		digits := Digits(id)
		if digits == "" {
			continue
		}
		n, err := decimal.NewFromString(digits)
		if err != nil {
			continue
		}
		if n.GreaterThan(max) {
			max = n
		}
	}
	return Pad(max.Add(decimal.NewFromInt(1)).String())
}

// Normalize trims an id typed by a user and zero-pads it when it consists
// of digits only, so that "42" finds receipt "000042".
func Normalize(id string) string {
	id = strings.TrimSpace(id)
	if id != "" && Digits(id) == id {
		return Pad(id)
	}
	return id
}

// Pad left-pads s with zeros to Width.
func Pad(s string) string {
	if len(s) >= Width {
		return s
	}
	return strings.Repeat("0", Width-len(s)) + s
}

// Digits returns the ASCII digits of s in order.
func Digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r < unicode.MaxASCII && unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
