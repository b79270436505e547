// =============================================================================
// Oficina Recibos - Spreadsheet Column Schema
// =============================================================================
//
// One receipt per row, one field per column. The first row holds the column
// headers; columns are located by header name, never by position, so older
// workbooks with fewer or reordered columns keep loading.
//
//   | Numero_Recibo | Data_Recibo | Hora_Recibo | Nome_Cliente | ... | Endereco_Cliente |
//   |---------------|-------------|-------------|--------------|-----|------------------|
//   | 000042        | 18/10/2026  | 14:03:11    | Maria Silva  | ... | Rua A, 10, ...   |
//
// SCHEMA EVOLUTION:
//   - A known column missing from the file reads as empty.
//   - A column this version does not know is kept in Receipt.Extra and
//     written back after the known columns.
//   - Columns renamed over time are read through legacyColumns.
//
// =============================================================================

package store

import (
	"fmt"
	"unicode/utf16"

	"github.com/ginjaninja78/oficina-recibos/internal/format"
	"github.com/ginjaninja78/oficina-recibos/internal/ledger"
	"github.com/ginjaninja78/oficina-recibos/internal/types"
	"github.com/ginjaninja78/oficina-recibos/pkg/apperror"
	"github.com/xuri/excelize/v2"
)

// Column headers that need special handling.
const (
	colNumber     = "Numero_Recibo"
	colItems      = "Detalhes_Itens"
	colItemsTotal = "Total_Itens"
	colTravelFee  = "Deslocamento"
	colDiscount   = "Desconto_Geral"
	colFinalTotal = "Valor_Total_Final"
)

// column binds a spreadsheet header to a receipt field.
//
// get returns the cell value to write: a string, or a float64 for numeric
// cells. set is nil for derived columns, which are written but never read.
type column struct {
	name string
	get  func(r *types.Receipt) interface{}
	set  func(r *types.Receipt, v string)
}

// text builds a column backed by a string field.
func text(name string, field func(r *types.Receipt) *string) column {
	return column{
		name: name,
		get:  func(r *types.Receipt) interface{} { return *field(r) },
		set:  func(r *types.Receipt, v string) { *field(r) = v },
	}
}

// odometer builds a column holding a reading stored as bare digits and
// shown grouped by thousands.
func odometer(name string, field func(r *types.Receipt) *string) column {
	return column{
		name: name,
		get:  func(r *types.Receipt) interface{} { return format.OdometerDigits(*field(r)) },
		set:  func(r *types.Receipt, v string) { *field(r) = format.FormatOdometer(v) },
	}
}

// zero builds a numeric column kept for older readers and always written as 0.
func zero(name string) column {
	return column{name: name, get: func(*types.Receipt) interface{} { return 0.0 }}
}

// total builds a numeric column holding the receipt total.
func total(name string) column {
	return column{name: name, get: func(r *types.Receipt) interface{} { return r.Total.InexactFloat64() }}
}

// columns is the store schema, in file order.
var columns = []column{
	text(colNumber, func(r *types.Receipt) *string { return &r.Number }),
	text("Data_Recibo", func(r *types.Receipt) *string { return &r.CreatedDate }),
	text("Hora_Recibo", func(r *types.Receipt) *string { return &r.CreatedTime }),
	text("Nome_Cliente", func(r *types.Receipt) *string { return &r.Client.Name }),
	text("Rua_Cliente", func(r *types.Receipt) *string { return &r.Client.Street }),
	text("Numero_Cliente", func(r *types.Receipt) *string { return &r.Client.Number }),
	text("Bairro_Cliente", func(r *types.Receipt) *string { return &r.Client.District }),
	text("Cidade_Cliente", func(r *types.Receipt) *string { return &r.Client.City }),
	text("UF_Cliente", func(r *types.Receipt) *string { return &r.Client.State }),
	text("CEP_Cliente", func(r *types.Receipt) *string { return &r.Client.PostalCode }),
	text("Telefone_Cliente", func(r *types.Receipt) *string { return &r.Client.Phone }),
	text("CPF_CNPJ_Cliente", func(r *types.Receipt) *string { return &r.Client.TaxID }),
	text("Placa_Veiculo", func(r *types.Receipt) *string { return &r.Vehicle.Plate }),
	text("Marca_Veiculo", func(r *types.Receipt) *string { return &r.Vehicle.Brand }),
	text("Modelo_Veiculo", func(r *types.Receipt) *string { return &r.Vehicle.Model }),
	text("Cor_Veiculo", func(r *types.Receipt) *string { return &r.Vehicle.Color }),
	text("Ano_Veiculo", func(r *types.Receipt) *string { return &r.Vehicle.Year }),
	odometer("KM_Entrada_Veiculo", func(r *types.Receipt) *string { return &r.Vehicle.OdometerIn }),
	odometer("KM_Saida_Veiculo", func(r *types.Receipt) *string { return &r.Vehicle.OdometerOut }),
	{
		name: "Combustivel_Veiculo",
		get:  func(r *types.Receipt) interface{} { return string(r.Vehicle.Fuel) },
		set:  func(r *types.Receipt, v string) { r.Vehicle.Fuel = types.FuelType(v) },
	},
	{
		name: "Box_Veiculo",
		get:  func(r *types.Receipt) interface{} { return string(r.Vehicle.Bay) },
		set:  func(r *types.Receipt, v string) { r.Vehicle.Bay = types.Bay(v) },
	},
	text("Problema_Informado", func(r *types.Receipt) *string { return &r.ProblemReported }),
	text("Problema_Constatado", func(r *types.Receipt) *string { return &r.ProblemFound }),
	text("Servico_Executado", func(r *types.Receipt) *string { return &r.WorkPerformed }),
	// Items are decoded by the store itself, which owns the logger.
	{name: colItems, get: func(r *types.Receipt) interface{} { return ledger.Encode(r.Items) }},
	total(colItemsTotal),
	zero(colTravelFee),
	zero(colDiscount),
	total(colFinalTotal),
	text("Responsavel", func(r *types.Receipt) *string { return &r.ResponsibleParty }),
	{
		name: "Situacao_Atual",
		get:  func(r *types.Receipt) interface{} { return string(r.Status) },
		set:  func(r *types.Receipt, v string) { r.Status = types.Status(v) },
	},
	{
		name: "Condicoes_Pagamento",
		get:  func(r *types.Receipt) interface{} { return string(r.PaymentTerms) },
		set:  func(r *types.Receipt, v string) { r.PaymentTerms = types.PaymentTerms(v) },
	},
	text("Email_Cliente", func(r *types.Receipt) *string { return &r.Client.Email }),
	text("Observacoes_Gerais", func(r *types.Receipt) *string { return &r.Notes }),
	text("Prox_Revisao", func(r *types.Receipt) *string { return &r.NextReviewNote }),
	// Combined address written for older readers. Never read back: the
	// address parts are authoritative.
	{name: "Endereco_Cliente", get: func(r *types.Receipt) interface{} { return r.Client.Address() }},
}

// legacyColumns maps a known column to the header older versions used for
// the same field. The legacy value is read only when the column is empty.
var legacyColumns = map[string]string{
	"KM_Entrada_Veiculo": "KM_Atual_Veiculo",
	"Numero_Cliente":     "Numero_Imovel_Cliente",
}

// Columns returns the known column headers in file order.
func Columns() []string {
	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.name
	}
	return names
}

// isKnown reports whether name is a schema column.
func isKnown(name string) bool {
	for _, c := range columns {
		if c.name == name {
			return true
		}
	}
	return false
}

// checkCells rejects a receipt with a text cell longer than a worksheet cell
// can hold. Excel counts UTF-16 units; longer values would be cut on write.
func checkCells(r *types.Receipt) error {
	var fields []apperror.FieldError
	check := func(name, v string) {
		if n := len(utf16.Encode([]rune(v))); n > excelize.TotalCellChars {
			fields = append(fields, apperror.FieldError{
				Field:   name,
				Message: fmt.Sprintf("has %d characters, a cell holds at most %d", n, excelize.TotalCellChars),
			})
		}
	}
	for _, c := range columns {
		if v, ok := c.get(r).(string); ok {
			check(c.name, v)
		}
	}
	for name, v := range r.Extra {
		check(name, v)
	}
	if len(fields) > 0 {
		return apperror.NewValidationError("store.upsert", "receipt does not fit in the workbook", fields...)
	}
	return nil
}
