package ledger

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ginjaninja78/oficina-recibos/internal/format"
	"github.com/ginjaninja78/oficina-recibos/internal/logging"
	"github.com/ginjaninja78/oficina-recibos/internal/types"
	"github.com/shopspring/decimal"
)

// =============================================================================
// TEXT ENCODING
// =============================================================================
//
// All items of a receipt are stored in a single spreadsheet cell:
//
//   Tipo: Peça | Código: F-01 | Descrição: Filtro | Quantia: 3 | Valor Unit: 10.00 | Desc(%): 10 | Valor Total: 27.00; Tipo: ...
//
// Items are separated by "; ", fields by " | ", and each field is a
// "key: value" pair. The key names are part of the stored format and are
// shared with every workbook written so far.
//
// =============================================================================

const (
	itemDelimiter  = ";"
	fieldDelimiter = "|"

	itemSeparator  = itemDelimiter + " "
	fieldSeparator = " " + fieldDelimiter + " "
	keySeparator   = ": "
)

// Stored field keys.
const (
	keyCategory    = "Tipo"
	keyCode        = "Código"
	keyDescription = "Descrição"
	keyUnit        = "Uni"
	keyQuantity    = "Quantia"
	keyUnitPrice   = "Valor Unit"
	keyDiscount    = "Desc(%)"
	keyLineTotal   = "Valor Total"

	// Keys written by older versions.
	keyLegacyCode        = "Ref"
	keyLegacyDescription = "Desc"
)

// missing is stored for text fields absent from a record.
const missing = "N/A"

// Encode serializes items into their stored text form. Placeholders are
// written back verbatim.
func Encode(items []types.LineItem) string {
	records := make([]string, 0, len(items))
	for _, it := range items {
		if it.IsRaw() {
			records = append(records, it.Raw)
			continue
		}
		fields := []string{
			keyCategory + keySeparator + string(it.Category),
			keyCode + keySeparator + it.Code,
			keyDescription + keySeparator + it.Description,
		}
		if it.Unit != "" && it.Unit != DefaultUnit {
			fields = append(fields, keyUnit+keySeparator+it.Unit)
		}
		fields = append(fields,
			keyQuantity+keySeparator+strconv.Itoa(it.Quantity),
			keyUnitPrice+keySeparator+it.UnitPrice.StringFixed(2),
			keyDiscount+keySeparator+it.DiscountPercent.String(),
			keyLineTotal+keySeparator+it.LineTotal.StringFixed(2),
		)
		records = append(records, strings.Join(fields, fieldSeparator))
	}
	return strings.Join(records, itemSeparator)
}

// Decode parses the stored text form back into items.
//
// Decode never fails. A record that cannot be parsed becomes a placeholder
// item holding the original text, the problem is logged, and decoding goes
// on with the next record. Currency symbols, percent signs and comma
// decimals left by older versions are stripped.
func Decode(text string, log logging.Logger) []types.LineItem {
	log = logging.OrNop(log)

	var items []types.LineItem
	for i, record := range strings.Split(text, itemSeparator) {
		record = strings.TrimSpace(record)
		if record == "" {
			continue
		}
		item, err := decodeRecord(record)
		if err != nil {
			log.Warnf("keeping unparsed line item %d %q: %v", i+1, record, err)
			items = append(items, types.LineItem{Raw: record})
			continue
		}
		items = append(items, item)
	}
	return items
}

// decodeRecord parses one "key: value | key: value" record.
func decodeRecord(record string) (types.LineItem, error) {
	parts := make(map[string]string)
	for _, field := range strings.Split(record, fieldSeparator) {
		k, v, ok := strings.Cut(field, keySeparator)
		if !ok {
			continue
		}
		parts[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	if len(parts) == 0 {
		return types.LineItem{}, fmt.Errorf("no key/value fields")
	}

	get := func(def string, keys ...string) string {
		for _, k := range keys {
			if v, ok := parts[k]; ok {
				return v
			}
		}
		return def
	}

	qty, err := strconv.Atoi(get("0", keyQuantity))
	if err != nil {
		return types.LineItem{}, fmt.Errorf("invalid quantity: %w", err)
	}
	price, err := parseAmount(get("0", keyUnitPrice))
	if err != nil {
		return types.LineItem{}, fmt.Errorf("invalid unit price: %w", err)
	}
	discount, err := parseAmount(strings.TrimSuffix(get("0", keyDiscount), "%"))
	if err != nil {
		return types.LineItem{}, fmt.Errorf("invalid discount: %w", err)
	}
	total, err := parseAmount(get("0", keyLineTotal))
	if err != nil {
		return types.LineItem{}, fmt.Errorf("invalid line total: %w", err)
	}

	category := types.Category(get(missing, keyCategory))
	if c, ok := ParseCategory(string(category)); ok {
		category = c
	}

	return types.LineItem{
		Category:        category,
		Code:            get(missing, keyCode, keyLegacyCode),
		Description:     get(missing, keyDescription, keyLegacyDescription),
		Unit:            get(DefaultUnit, keyUnit),
		UnitPrice:       price,
		Quantity:        qty,
		DiscountPercent: discount,
		LineTotal:       total,
	}, nil
}

// parseAmount parses a stored amount, tolerating "R$" and comma decimals.
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	return format.ParseMoney(s)
}
