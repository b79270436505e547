// =============================================================================
// Oficina Recibos - Line-Item Ledger
// =============================================================================
//
// The ledger is the ordered list of parts and services of the receipt being
// edited. Items are appended by Add, removed by position with Remove and
// never modified in place; a reload replaces the whole list.
//
// LINE TOTAL:
//   line_total = unit_price * quantity * (1 - discount_percent / 100)
//   rounded to cents when the item is created.
//
// =============================================================================

package ledger

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ginjaninja78/oficina-recibos/internal/format"
	"github.com/ginjaninja78/oficina-recibos/internal/types"
	"github.com/ginjaninja78/oficina-recibos/pkg/apperror"
	"github.com/shopspring/decimal"
)

// DefaultUnit is the unit of measure of items added through the form.
const DefaultUnit = "un"

// ErrIndexOutOfRange is wrapped by Remove when the position does not exist.
var ErrIndexOutOfRange = errors.New("index out of range")

var hundred = decimal.NewFromInt(100)

// =============================================================================
// LEDGER
// =============================================================================

// Ledger holds the line items of one receipt.
type Ledger struct {
	items []types.LineItem
}

// New creates a ledger holding a copy of items.
func New(items []types.LineItem) *Ledger {
	l := &Ledger{}
	l.Replace(items)
	return l
}

// Items returns a copy of the items in order.
func (l *Ledger) Items() []types.LineItem {
	out := make([]types.LineItem, len(l.items))
	copy(out, l.items)
	return out
}

// Len returns the number of items, placeholders included.
func (l *Ledger) Len() int {
	return len(l.items)
}

// Replace discards every item and loads a copy of items.
func (l *Ledger) Replace(items []types.LineItem) {
	l.items = make([]types.LineItem, len(items))
	copy(l.items, items)
}

// Clear removes every item.
func (l *Ledger) Clear() {
	l.items = nil
}

// Input is a line item as typed by the user.
type Input struct {
	Category        string
	Code            string
	Description     string
	UnitPrice       string
	Quantity        string
	DiscountPercent string
}

// Add validates the input, appends the new item and returns the new total.
//
// The category, code, description, unit price and quantity are required;
// an empty discount means 0. The unit price and quantity must be greater
// than zero and the discount must lie in [0, 100]. On failure the ledger is
// left unchanged and an apperror of kind Validation is returned.
func (l *Ledger) Add(in Input) (decimal.Decimal, error) {
	item, err := NewItem(in)
	if err != nil {
		return l.Total(), err
	}
	l.items = append(l.items, item)
	return l.Total(), nil
}

// Remove deletes the item at index and returns the new total.
func (l *Ledger) Remove(index int) (decimal.Decimal, error) {
	if index < 0 || index >= len(l.items) {
		return l.Total(), &apperror.Error{
			Kind:    apperror.KindValidation,
			Op:      "ledger.remove",
			Message: fmt.Sprintf("no item at position %d (have %d)", index, len(l.items)),
			Err:     ErrIndexOutOfRange,
		}
	}
	l.items = append(l.items[:index:index], l.items[index+1:]...)
	return l.Total(), nil
}

// Total returns the sum of all line totals, zero when empty.
func (l *Ledger) Total() decimal.Decimal {
	return Total(l.items)
}

// Encode returns the persisted text form of the ledger.
func (l *Ledger) Encode() string {
	return Encode(l.items)
}

// Total sums the line totals of items. Placeholders count as zero.
func Total(items []types.LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		if it.IsRaw() {
			continue
		}
		sum = sum.Add(it.LineTotal)
	}
	return sum
}

// =============================================================================
// ITEM CONSTRUCTION
// =============================================================================

// NewItem validates a typed line item and computes its total.
func NewItem(in Input) (types.LineItem, error) {
	var fields []apperror.FieldError
	fail := func(field, msg string) {
		fields = append(fields, apperror.FieldError{Field: field, Message: msg})
	}

	category, ok := ParseCategory(in.Category)
	if strings.TrimSpace(in.Category) == "" {
		fail("category", "is required")
	} else if !ok {
		fail("category", fmt.Sprintf("must be %q or %q", types.CategoryPart, types.CategoryService))
	}

	code := strings.TrimSpace(in.Code)
	description := strings.TrimSpace(in.Description)
	for _, f := range []struct{ name, value string }{{"code", code}, {"description", description}} {
		switch {
		case f.value == "":
			fail(f.name, "is required")
		case strings.ContainsAny(f.value, fieldDelimiter+itemDelimiter):
			fail(f.name, "must not contain '|' or ';'")
		}
	}

	var price decimal.Decimal
	if strings.TrimSpace(in.UnitPrice) == "" {
		fail("unit_price", "is required")
	} else if p, err := format.ParseMoney(in.UnitPrice); err != nil {
		fail("unit_price", "must be a number")
	} else if !p.IsPositive() {
		fail("unit_price", "must be greater than zero")
	} else {
		price = p
	}

	var qty int
	if strings.TrimSpace(in.Quantity) == "" {
		fail("quantity", "is required")
	} else if q, err := strconv.Atoi(strings.TrimSpace(in.Quantity)); err != nil {
		fail("quantity", "must be a whole number")
	} else if q <= 0 {
		fail("quantity", "must be greater than zero")
	} else {
		qty = q
	}

	discount := decimal.Zero
	if s := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(in.DiscountPercent), "%")); s != "" {
		if d, err := format.ParseMoney(s); err != nil {
			fail("discount_percent", "must be a number")
		} else if d.IsNegative() || d.GreaterThan(hundred) {
			fail("discount_percent", "must be between 0 and 100")
		} else {
			discount = d
		}
	}

	if len(fields) > 0 {
		return types.LineItem{}, apperror.NewValidationError("ledger.add", "invalid item", fields...)
	}

	return types.LineItem{
		Category:        category,
		Code:            code,
		Description:     description,
		Unit:            DefaultUnit,
		UnitPrice:       price,
		Quantity:        qty,
		DiscountPercent: discount,
		LineTotal:       LineTotal(price, qty, discount),
	}, nil
}

// LineTotal computes price * qty * (1 - discount/100) rounded to cents.
func LineTotal(price decimal.Decimal, qty int, discount decimal.Decimal) decimal.Decimal {
	factor := decimal.NewFromInt(1).Sub(discount.Div(hundred))
	return price.Mul(decimal.NewFromInt(int64(qty))).Mul(factor).Round(2)
}

// ParseCategory accepts the stored category names and their unaccented or
// English spellings, case-insensitively.
func ParseCategory(s string) (types.Category, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "peça", "peca", "part":
		return types.CategoryPart, true
	case "serviço", "servico", "service":
		return types.CategoryService, true
	}
	return "", false
}
