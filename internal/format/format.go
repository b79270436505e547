// =============================================================================
// Oficina Recibos - Input Formatters
// =============================================================================
//
// This module provides the input masks applied to form fields while they are
// edited, and the Brazilian money format used everywhere a value is shown.
//
// FORMATTER RULES:
//   Every formatter is a pure string -> string function that:
//   - looks only at the digits of its input;
//   - never adds, drops or reorders a digit the user typed (apart from
//     discarding digits beyond the field's maximum length);
//   - is idempotent: formatting its own output yields the same output.
//
// FIELD KINDS:
//   Callers never pick a formatter by inspecting a value. Each form field is
//   tagged with a FieldKind, and Apply dispatches through a lookup table.
//
// =============================================================================

package format

import (
	"strings"

	"github.com/ginjaninja78/oficina-recibos/internal/idgen"
)

// =============================================================================
// FIELD KINDS
// =============================================================================

// FieldKind tags a form field with the input mask it uses.
type FieldKind int

const (
	Text FieldKind = iota
	Choice
	Currency
	Phone
	TaxID
	Odometer
	PostalCode
)

func (k FieldKind) String() string {
	switch k {
	case Choice:
		return "choice"
	case Currency:
		return "currency"
	case Phone:
		return "phone"
	case TaxID:
		return "taxid"
	case Odometer:
		return "odometer"
	case PostalCode:
		return "cep"
	default:
		return "text"
	}
}

// Func is a formatter.
type Func func(string) string

// formatters maps each field kind to its formatter.
var formatters = map[FieldKind]Func{
	Text:       identity,
	Choice:     identity,
	Currency:   MoneyString,
	Phone:      FormatPhone,
	TaxID:      FormatTaxID,
	Odometer:   FormatOdometer,
	PostalCode: FormatPostalCode,
}

// Apply formats text according to the field kind.
// Unknown kinds leave the text unchanged.
func Apply(kind FieldKind, text string) string {
	if f, ok := formatters[kind]; ok {
		return f(text)
	}
	return text
}

// ParseKind returns the field kind with the given name, as printed by String.
func ParseKind(name string) (FieldKind, bool) {
	for k := range formatters {
		if k.String() == strings.ToLower(strings.TrimSpace(name)) {
			return k, true
		}
	}
	return Text, false
}

func identity(s string) string { return s }

// =============================================================================
// PHONE
// =============================================================================

// maxPhoneDigits is the length of a mobile number with area code.
const maxPhoneDigits = 11

// FormatPhone renders a phone number as "(DD) NNNNN-NNNN" progressively.
//
// EXAMPLES:
//   "2"           -> "2"
//   "21"          -> "(21) "
//   "2199757"     -> "(21) 99757"
//   "21997570103" -> "(21) 99757-0103"
func FormatPhone(s string) string {
	d := truncate(idgen.Digits(s), maxPhoneDigits)
	if len(d) < 2 {
		return d
	}
	out := "(" + d[:2] + ") "
	switch {
	case len(d) > 7:
		out += d[2:7] + "-" + d[7:]
	default:
		out += d[2:]
	}
	return out
}

// =============================================================================
// TAX ID (CPF / CNPJ)
// =============================================================================

const (
	personIDDigits  = 11
	companyIDDigits = 14
)

// FormatTaxID renders a person id (CPF, up to 11 digits) as
// "XXX.XXX.XXX-XX" or a company id (CNPJ, 12 to 14 digits) as
// "XX.XXX.XXX/XXXX-XX", progressively as digits accumulate.
func FormatTaxID(s string) string {
	d := truncate(idgen.Digits(s), companyIDDigits)
	if len(d) <= personIDDigits {
		switch {
		case len(d) > 9:
			return d[:3] + "." + d[3:6] + "." + d[6:9] + "-" + d[9:]
		case len(d) > 6:
			return d[:3] + "." + d[3:6] + "." + d[6:]
		case len(d) > 3:
			return d[:3] + "." + d[3:]
		default:
			return d
		}
	}
	switch {
	case len(d) > 12:
		return d[:2] + "." + d[2:5] + "." + d[5:8] + "/" + d[8:12] + "-" + d[12:]
	default:
		return d[:2] + "." + d[2:5] + "." + d[5:8] + "/" + d[8:]
	}
}

// =============================================================================
// ODOMETER
// =============================================================================

// FormatOdometer groups the digits of an odometer reading in thousands
// with ".". Leading zeros typed by the user are kept.
func FormatOdometer(s string) string {
	return groupThousands(idgen.Digits(s))
}

// OdometerDigits strips the grouping of a formatted odometer reading.
func OdometerDigits(s string) string {
	return idgen.Digits(s)
}

// =============================================================================
// POSTAL CODE (CEP)
// =============================================================================

// postalCodeDigits is the length of a CEP.
const postalCodeDigits = 8

// FormatPostalCode renders a CEP as "XXXXX-XXX" progressively.
func FormatPostalCode(s string) string {
	d := truncate(idgen.Digits(s), postalCodeDigits)
	if len(d) > 5 {
		return d[:5] + "-" + d[5:]
	}
	return d
}

// =============================================================================
// HELPERS
// =============================================================================

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

// groupThousands inserts "." every three digits counting from the right.
func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
