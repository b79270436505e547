package format

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Money renders d with two decimals, "," as decimal mark and "." as
// thousands mark: 1234.5 -> "1.234,50".
func Money(d decimal.Decimal) string {
	fixed := d.StringFixed(2)
	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign, fixed = "-", fixed[1:]
	}
	intPart, frac := fixed, "00"
	if i := strings.IndexByte(fixed, '.'); i >= 0 {
		intPart, frac = fixed[:i], fixed[i+1:]
	}
	if sign != "" && strings.Trim(intPart+frac, "0") == "" {
		sign = ""
	}
	return sign + groupThousands(intPart) + "," + frac
}

// MoneyString formats a typed amount. Anything that does not parse as an
// amount is shown as "0,00".
func MoneyString(s string) string {
	d, err := ParseMoney(s)
	if err != nil {
		return Money(decimal.Zero)
	}
	return Money(d)
}

// MoneyValue formats any value the document renderer may hand over:
// decimals, numbers, strings or nil. Missing or unparseable values are
// shown as "0,00".
func MoneyValue(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return Money(decimal.Zero)
	case decimal.Decimal:
		return Money(x)
	case *decimal.Decimal:
		if x == nil {
			return Money(decimal.Zero)
		}
		return Money(*x)
	case float64:
		return Money(decimal.NewFromFloat(x))
	case float32:
		return Money(decimal.NewFromFloat32(x))
	case int:
		return Money(decimal.NewFromInt(int64(x)))
	case int64:
		return Money(decimal.NewFromInt(x))
	case string:
		return MoneyString(x)
	default:
		return MoneyString(fmt.Sprint(x))
	}
}

// ParseMoney parses an amount typed in either notation:
//
//   "1234.5"   -> 1234.5
//   "1234,5"   -> 1234.5
//   "1.234,50" -> 1234.5
//   "R$ 10,00" -> 10
//
// When a "," is present it is the decimal mark and every "." is a
// thousands mark.
func ParseMoney(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "R$")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return d, nil
}
