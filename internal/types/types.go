// =============================================================================
// Oficina Recibos - Shared Types
// =============================================================================
//
// This package contains the domain types shared across modules to avoid
// import cycles. Types defined here are used by:
//   - ledger   (line items and their text codec)
//   - store    (spreadsheet persistence)
//   - render   (PDF document)
//   - form     (the editing session)
//
// Enumerated values are stored as the exact text persisted in the spreadsheet,
// so older workbooks keep loading without any translation table.
//
// =============================================================================

package types

import (
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// LINE ITEM TYPES
// =============================================================================

// Category distinguishes parts from labour on a line item.
type Category string

const (
	CategoryPart    Category = "Peça"
	CategoryService Category = "Serviço"
)

// Categories lists the accepted line item categories in display order.
var Categories = []Category{CategoryPart, CategoryService}

// LineItem represents a single priced part or service within a receipt.
//
// A LineItem with a non-empty Raw field is the unparsed fallback produced when
// a stored record could not be decoded. Its numeric fields are zero and it
// contributes nothing to the receipt total; the original text is kept so that
// it is written back unchanged on the next save.
type LineItem struct {
	Category        Category        `yaml:"category,omitempty"`
	Code            string          `yaml:"code,omitempty"`
	Description     string          `yaml:"description,omitempty"`
	Unit            string          `yaml:"unit,omitempty"`
	UnitPrice       decimal.Decimal `yaml:"unit_price"`
	Quantity        int             `yaml:"quantity"`
	DiscountPercent decimal.Decimal `yaml:"discount_percent"`
	LineTotal       decimal.Decimal `yaml:"line_total"`

	// Raw holds the original text of a record that could not be parsed.
	Raw string `yaml:"raw,omitempty"`
}

// IsRaw reports whether the item is an unparsed placeholder.
func (li LineItem) IsRaw() bool {
	return li.Raw != ""
}

// =============================================================================
// RECEIPT ENUMERATIONS
// =============================================================================

// Status is the service order situation.
type Status string

const (
	StatusQuote         Status = "Orçamento"
	StatusApproved      Status = "Aprovado"
	StatusInProgress    Status = "Em Andamento"
	StatusAwaitingParts Status = "Aguardando Peças"
	StatusFinished      Status = "Finalizado"
	StatusDelivered     Status = "Entregue"
)

// Statuses lists every known status in display order.
var Statuses = []Status{
	StatusQuote, StatusApproved, StatusInProgress,
	StatusAwaitingParts, StatusFinished, StatusDelivered,
}

// PaymentTerms is how the client pays.
type PaymentTerms string

const (
	PaymentUpfront     PaymentTerms = "À Vista"
	PaymentPix         PaymentTerms = "PIX"
	PaymentCreditCard  PaymentTerms = "Cartão Crédito"
	PaymentDebitCard   PaymentTerms = "Cartão Débito"
	PaymentCash        PaymentTerms = "Dinheiro"
	PaymentBankSlip    PaymentTerms = "Boleto"
	PaymentInstallment PaymentTerms = "Parcelado"
)

// PaymentOptions lists every known payment term in display order.
var PaymentOptions = []PaymentTerms{
	PaymentUpfront, PaymentPix, PaymentCreditCard, PaymentDebitCard,
	PaymentCash, PaymentBankSlip, PaymentInstallment,
}

// FuelType is the vehicle fuel.
type FuelType string

const (
	FuelGasoline FuelType = "Gasolina"
	FuelEthanol  FuelType = "Etanol"
	FuelFlex     FuelType = "Flex"
	FuelDiesel   FuelType = "Diesel"
	FuelCNG      FuelType = "GNV"
	FuelElectric FuelType = "Elétrico"
	FuelHybrid   FuelType = "Híbrido"
)

// FuelTypes lists every known fuel type in display order.
var FuelTypes = []FuelType{
	FuelGasoline, FuelEthanol, FuelFlex, FuelDiesel,
	FuelCNG, FuelElectric, FuelHybrid,
}

// Bay is where the vehicle is parked in the shop.
type Bay string

const (
	Bay1    Bay = "Box 1"
	Bay2    Bay = "Box 2"
	Bay3    Bay = "Box 3"
	Bay4    Bay = "Box 4"
	BayYard Bay = "Pátio"
)

// Bays lists every known bay in display order.
var Bays = []Bay{Bay1, Bay2, Bay3, Bay4, BayYard}

// =============================================================================
// RECEIPT
// =============================================================================

// Client is the client block of a receipt.
type Client struct {
	Name       string `yaml:"name"`
	Phone      string `yaml:"phone,omitempty"`
	TaxID      string `yaml:"tax_id,omitempty"`
	Email      string `yaml:"email,omitempty"`
	Street     string `yaml:"street,omitempty"`
	Number     string `yaml:"number,omitempty"`
	District   string `yaml:"district,omitempty"`
	City       string `yaml:"city,omitempty"`
	State      string `yaml:"state,omitempty"`
	PostalCode string `yaml:"postal_code,omitempty"`
}

// Address joins the non-empty address parts with ", ".
// It is stored in the legacy combined address column.
func (c Client) Address() string {
	var parts []string
	for _, p := range []string{c.Street, c.Number, c.District, c.City, c.State} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// Vehicle is the vehicle block of a receipt.
type Vehicle struct {
	Plate       string   `yaml:"plate,omitempty"`
	Brand       string   `yaml:"brand,omitempty"`
	Model       string   `yaml:"model,omitempty"`
	Color       string   `yaml:"color,omitempty"`
	Year        string   `yaml:"year,omitempty"`
	OdometerIn  string   `yaml:"odometer_in,omitempty"`
	OdometerOut string   `yaml:"odometer_out,omitempty"`
	Fuel        FuelType `yaml:"fuel,omitempty"`
	Bay         Bay      `yaml:"bay,omitempty"`
}

// Receipt is one full service transaction record.
//
// Total is never edited on its own: it is recomputed from Items whenever a
// receipt is assembled by the form or loaded from the store.
type Receipt struct {
	Number      string `yaml:"number"`
	CreatedDate string `yaml:"created_date"`
	CreatedTime string `yaml:"created_time"`

	Client  Client  `yaml:"client"`
	Vehicle Vehicle `yaml:"vehicle"`

	Items []LineItem      `yaml:"items"`
	Total decimal.Decimal `yaml:"total"`

	ResponsibleParty string       `yaml:"responsible_party,omitempty"`
	Status           Status       `yaml:"status,omitempty"`
	PaymentTerms     PaymentTerms `yaml:"payment_terms,omitempty"`
	Notes            string       `yaml:"notes,omitempty"`
	NextReviewNote   string       `yaml:"next_review_note,omitempty"`

	// Workshop notes kept in the spreadsheet; optional on the document.
	ProblemReported string `yaml:"problem_reported,omitempty"`
	ProblemFound    string `yaml:"problem_found,omitempty"`
	WorkPerformed   string `yaml:"work_performed,omitempty"`

	// Extra keeps the values of spreadsheet columns this version does not
	// know about, keyed by column header, so they survive a rewrite.
	Extra map[string]string `yaml:"-"`
}

// =============================================================================
// SHOP IDENTITY
// =============================================================================

// ShopInfo identifies the workshop on the printed document.
type ShopInfo struct {
	Name       string `yaml:"name"`
	Address    string `yaml:"address"`
	PostalCode string `yaml:"postal_code"`
	Phone      string `yaml:"phone"`
	Email      string `yaml:"email"`
	TaxID      string `yaml:"tax_id"`
}
