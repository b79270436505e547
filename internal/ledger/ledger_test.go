package ledger

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/ginjaninja78/oficina-recibos/internal/types"
	"github.com/ginjaninja78/oficina-recibos/pkg/apperror"
	"github.com/google/go-cmp/cmp"
	"github.com/sebdah/goldie/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var decimalEqual = cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })

func filter() Input {
	return Input{
		Category:        "Peça",
		Code:            "F-01",
		Description:     "Filtro de óleo",
		UnitPrice:       "10",
		Quantity:        "3",
		DiscountPercent: "10",
	}
}

func mustAdd(t *testing.T, l *Ledger, in Input) decimal.Decimal {
	t.Helper()
	total, err := l.Add(in)
	if err != nil {
		t.Fatalf("Add(%+v) returned error: %v", in, err)
	}
	return total
}

func TestAddComputesTotals(t *testing.T) {
	l := New(nil)

	if got := mustAdd(t, l, filter()); !got.Equal(decimal.RequireFromString("27.00")) {
		t.Errorf("total after first add = %s, want 27.00", got)
	}
	if got := mustAdd(t, l, filter()); !got.Equal(decimal.RequireFromString("54.00")) {
		t.Errorf("total after second add = %s, want 54.00", got)
	}
	if got := l.Items()[0].LineTotal; !got.Equal(decimal.RequireFromString("27")) {
		t.Errorf("line total = %s, want 27.00", got)
	}
	if l.Len() != 2 {
		t.Errorf("Len() = %d, want 2", l.Len())
	}
}

func TestTotalEmpty(t *testing.T) {
	if got := New(nil).Total(); !got.IsZero() {
		t.Errorf("Total() of empty ledger = %s, want 0", got)
	}
}

func TestAddValidation(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Input)
		field  string
	}{
		{"blank category", func(in *Input) { in.Category = " " }, "category"},
		{"unknown category", func(in *Input) { in.Category = "Brinde" }, "category"},
		{"blank code", func(in *Input) { in.Code = "" }, "code"},
		{"blank description", func(in *Input) { in.Description = "" }, "description"},
		{"delimiter in description", func(in *Input) { in.Description = "óleo | filtro" }, "description"},
		{"item delimiter in code", func(in *Input) { in.Code = "F;01" }, "code"},
		{"blank price", func(in *Input) { in.UnitPrice = "" }, "unit_price"},
		{"non-numeric price", func(in *Input) { in.UnitPrice = "dez" }, "unit_price"},
		{"zero price", func(in *Input) { in.UnitPrice = "0" }, "unit_price"},
		{"negative price", func(in *Input) { in.UnitPrice = "-1" }, "unit_price"},
		{"blank quantity", func(in *Input) { in.Quantity = "" }, "quantity"},
		{"fractional quantity", func(in *Input) { in.Quantity = "1.5" }, "quantity"},
		{"zero quantity", func(in *Input) { in.Quantity = "0" }, "quantity"},
		{"discount above 100", func(in *Input) { in.DiscountPercent = "100.01" }, "discount_percent"},
		{"negative discount", func(in *Input) { in.DiscountPercent = "-5" }, "discount_percent"},
		{"non-numeric discount", func(in *Input) { in.DiscountPercent = "muito" }, "discount_percent"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			l := New(nil)
			in := filter()
			test.modify(&in)

			total, err := l.Add(in)
			if err == nil {
				t.Fatalf("Add(%+v) succeeded, want validation error", in)
			}
			var appErr *apperror.Error
			if !errors.As(err, &appErr) || appErr.Kind != apperror.KindValidation {
				t.Fatalf("Add() error = %v, want validation error", err)
			}
			if len(appErr.Fields) != 1 || appErr.Fields[0].Field != test.field {
				t.Errorf("Add() fields = %v, want a single %q problem", appErr.Fields, test.field)
			}
			if l.Len() != 0 || !total.IsZero() {
				t.Errorf("ledger changed on failed add: len %d, total %s", l.Len(), total)
			}
		})
	}
}

func TestAddAcceptsBoundaries(t *testing.T) {
	tests := []struct {
		discount string
		want     string
	}{
		{"", "30"},
		{"0", "30"},
		{"100", "0"},
		{"10%", "27"},
		{"12,5", "26.25"},
	}
	for _, test := range tests {
		in := filter()
		in.DiscountPercent = test.discount
		item, err := NewItem(in)
		if err != nil {
			t.Errorf("NewItem(discount %q) returned error: %v", test.discount, err)
			continue
		}
		if !item.LineTotal.Equal(decimal.RequireFromString(test.want)) {
			t.Errorf("NewItem(discount %q) line total = %s, want %s", test.discount, item.LineTotal, test.want)
		}
	}
}

func TestRemove(t *testing.T) {
	l := New(nil)
	mustAdd(t, l, filter())
	second := filter()
	second.Code = "F-02"
	second.DiscountPercent = ""
	mustAdd(t, l, second)

	for _, index := range []int{-1, 2, 10} {
		_, err := l.Remove(index)
		if !errors.Is(err, ErrIndexOutOfRange) {
			t.Errorf("Remove(%d) error = %v, want ErrIndexOutOfRange", index, err)
		}
		if apperror.KindOf(err) != apperror.KindValidation {
			t.Errorf("Remove(%d) kind = %v, want validation", index, apperror.KindOf(err))
		}
	}
	if l.Len() != 2 {
		t.Fatalf("Len() after failed removes = %d, want 2", l.Len())
	}

	total, err := l.Remove(0)
	if err != nil {
		t.Fatalf("Remove(0) returned error: %v", err)
	}
	if !total.Equal(decimal.NewFromInt(30)) {
		t.Errorf("total after Remove(0) = %s, want 30", total)
	}
	if got := l.Items()[0].Code; got != "F-02" {
		t.Errorf("remaining item code = %q, want F-02", got)
	}
}

func TestItemsIsACopy(t *testing.T) {
	l := New(nil)
	mustAdd(t, l, filter())
	items := l.Items()
	items[0].Code = "changed"
	if l.Items()[0].Code != "F-01" {
		t.Errorf("modifying Items() result changed the ledger")
	}
}

func TestParseCategory(t *testing.T) {
	tests := map[string]types.Category{
		"Peça":      types.CategoryPart,
		"PEÇA":      types.CategoryPart,
		"peca":      types.CategoryPart,
		"part":      types.CategoryPart,
		"Serviço":   types.CategoryService,
		"servico":   types.CategoryService,
		" Service ": types.CategoryService,
	}
	for input, want := range tests {
		got, ok := ParseCategory(input)
		if !ok || got != want {
			t.Errorf("ParseCategory(%q) = %q, %v, want %q, true", input, got, ok, want)
		}
	}
	if _, ok := ParseCategory("brinde"); ok {
		t.Errorf("ParseCategory(%q) accepted an unknown category", "brinde")
	}
}

// =============================================================================
// CODEC
// =============================================================================

func sampleItems(t *testing.T) []types.LineItem {
	t.Helper()
	inputs := []Input{
		filter(),
		{Category: "Serviço", Code: "S-02", Description: "Troca de óleo", UnitPrice: "80.5", Quantity: "1"},
		{Category: "peca", Code: "P-9", Description: "Pastilha de freio", UnitPrice: "1.234,50", Quantity: "2", DiscountPercent: "12,5"},
	}
	var items []types.LineItem
	for _, in := range inputs {
		item, err := NewItem(in)
		if err != nil {
			t.Fatalf("NewItem(%+v) returned error: %v", in, err)
		}
		items = append(items, item)
	}
	return items
}

func TestEncodeGolden(t *testing.T) {
	items := append(sampleItems(t), types.LineItem{Raw: "anotação manual sem campos"})
	goldie.New(t).Assert(t, "encode", []byte(Encode(items)))
}

func TestRoundTrip(t *testing.T) {
	items := sampleItems(t)
	got := Decode(Encode(items), nil)
	if diff := cmp.Diff(items, got, decimalEqual); diff != "" {
		t.Errorf("Decode(Encode(items)) mismatch (-want +got):\n%s", diff)
	}
}

func TestRoundTripSingleItems(t *testing.T) {
	for _, item := range sampleItems(t) {
		got := Decode(Encode([]types.LineItem{item}), nil)
		if len(got) != 1 {
			t.Fatalf("Decode returned %d items, want 1", len(got))
		}
		d := got[0]
		if d.Category != item.Category || d.Code != item.Code || d.Description != item.Description ||
			d.Quantity != item.Quantity || !d.DiscountPercent.Equal(item.DiscountPercent) {
			t.Errorf("round trip of %+v changed an exact field: %+v", item, d)
		}
		if !d.UnitPrice.Equal(item.UnitPrice.Round(2)) || !d.LineTotal.Equal(item.LineTotal.Round(2)) {
			t.Errorf("round trip of %+v changed an amount: %+v", item, d)
		}
	}
}

// textRunes feeds generated codes and descriptions. It holds the key
// separator's characters and accents but never a delimiter.
var textRunes = []rune("abcxyzABCXYZ0129 -/:().,%$ºªáéíóúâêôãõçÇÉ")

func randomText(rng *rand.Rand, max int) string {
	n := 1 + rng.IntN(max)
	out := []rune{'A' + rune(rng.IntN(26))}
	for i := 1; i < n; i++ {
		out = append(out, textRunes[rng.IntN(len(textRunes))])
	}
	if rng.IntN(4) == 0 {
		out = append(out, []rune(": valor")...)
	}
	return string(out)
}

func randomInput(rng *rand.Rand) Input {
	category := "Peça"
	if rng.IntN(2) == 0 {
		category = "Serviço"
	}
	return Input{
		Category:        category,
		Code:            randomText(rng, 12),
		Description:     randomText(rng, 300),
		UnitPrice:       fmt.Sprintf("%d.%04d", rng.IntN(100000), 1+rng.IntN(9999)),
		Quantity:        fmt.Sprint(1 + rng.IntN(999)),
		DiscountPercent: fmt.Sprintf("%d.%03d", rng.IntN(100), rng.IntN(1000)),
	}
}

func TestRoundTripGeneratedItems(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 42))
	for round := 0; round < 200; round++ {
		var items []types.LineItem
		for n := 1 + rng.IntN(5); len(items) < n; {
			in := randomInput(rng)
			item, err := NewItem(in)
			if err != nil {
				t.Fatalf("NewItem(%+v) returned error: %v", in, err)
			}
			items = append(items, item)
		}

		got := Decode(Encode(items), nil)
		if len(got) != len(items) {
			t.Fatalf("round %d: decoded %d items from %d: %q", round, len(got), len(items), Encode(items))
		}
		for i, item := range items {
			d := got[i]
			if d.IsRaw() {
				t.Fatalf("round %d: item %d came back unparsed: %q", round, i, d.Raw)
			}
			if d.Category != item.Category || d.Code != item.Code || d.Description != item.Description ||
				d.Quantity != item.Quantity || !d.DiscountPercent.Equal(item.DiscountPercent) {
				t.Errorf("round %d: %+v changed an exact field: %+v", round, item, d)
			}
			if !d.UnitPrice.Equal(item.UnitPrice.Round(2)) || !d.LineTotal.Equal(item.LineTotal) {
				t.Errorf("round %d: %+v changed an amount: %+v", round, item, d)
			}
		}
	}
}

func TestRoundTripKeepsUnitAndRaw(t *testing.T) {
	items := []types.LineItem{
		{
			Category:        types.CategoryPart,
			Code:            "O-5W30",
			Description:     "Óleo 5W30",
			Unit:            "lt",
			UnitPrice:       decimal.RequireFromString("45.90"),
			Quantity:        4,
			DiscountPercent: decimal.Zero,
			LineTotal:       decimal.RequireFromString("183.60"),
		},
		{Raw: "Tipo: Peça | Quantia: dois"},
	}
	encoded := Encode(items)
	if !strings.Contains(encoded, "Uni: lt") {
		t.Errorf("Encode() = %q, want the unit to be stored", encoded)
	}
	if diff := cmp.Diff(items, Decode(encoded, nil), decimalEqual); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
	if got := Total(items); !got.Equal(decimal.RequireFromString("183.60")) {
		t.Errorf("Total() = %s, want 183.60 (placeholders count as zero)", got)
	}
}

func TestDecodeLegacy(t *testing.T) {
	text := "Tipo: Peça | Ref: A1 | Desc: Pastilha | Uni: jg | Quantia: 2 | Valor Unit: R$ 1.234,50 | Desc(%): 5% | Valor Total: R$ 2.345,55" +
		"; Tipo: Serviço | Quantia: 1 | Valor Unit: 50 | Valor Total: 50"
	want := []types.LineItem{
		{
			Category:        types.CategoryPart,
			Code:            "A1",
			Description:     "Pastilha",
			Unit:            "jg",
			UnitPrice:       decimal.RequireFromString("1234.50"),
			Quantity:        2,
			DiscountPercent: decimal.NewFromInt(5),
			LineTotal:       decimal.RequireFromString("2345.55"),
		},
		{
			Category:        types.CategoryService,
			Code:            "N/A",
			Description:     "N/A",
			Unit:            DefaultUnit,
			UnitPrice:       decimal.NewFromInt(50),
			Quantity:        1,
			DiscountPercent: decimal.Zero,
			LineTotal:       decimal.NewFromInt(50),
		},
	}
	if diff := cmp.Diff(want, Decode(text, nil), decimalEqual); diff != "" {
		t.Errorf("Decode() mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeMalformedKeepsGoing(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	log := zap.New(core).Sugar()

	text := "apenas texto; Tipo: Peça | Código: X | Descrição: Y | Quantia: três | Valor Unit: 1 | Valor Total: 3" +
		"; Tipo: Serviço | Código: S | Descrição: Alinhamento | Quantia: 1 | Valor Unit: 90.00 | Desc(%): 0 | Valor Total: 90.00" +
		"; Tipo: Peça | Código: Z | Descrição: W | Quantia: 1 | Valor Unit: caro | Valor Total: 1"
	got := Decode(text, log)

	if len(got) != 4 {
		t.Fatalf("Decode() returned %d items, want 4: %+v", len(got), got)
	}
	for _, i := range []int{0, 1, 3} {
		if !got[i].IsRaw() {
			t.Errorf("item %d = %+v, want a raw placeholder", i, got[i])
		}
	}
	if got[0].Raw != "apenas texto" {
		t.Errorf("placeholder text = %q, want %q", got[0].Raw, "apenas texto")
	}
	if got[2].IsRaw() || got[2].Description != "Alinhamento" {
		t.Errorf("item 2 = %+v, want the parsed service", got[2])
	}
	if !Total(got).Equal(decimal.NewFromInt(90)) {
		t.Errorf("Total() = %s, want 90", Total(got))
	}
	if logs.Len() != 3 {
		t.Errorf("logged %d warnings, want 3", logs.Len())
	}

	if again := Encode(got); again != text {
		t.Errorf("re-encoding changed the placeholders:\n got %q\nwant %q", again, text)
	}
}
