package render

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/ginjaninja78/oficina-recibos/internal/format"
	"github.com/ginjaninja78/oficina-recibos/internal/logging"
	"github.com/ginjaninja78/oficina-recibos/internal/types"
	"github.com/jung-kurt/gofpdf"
	"golang.org/x/text/encoding/charmap"
)

// =============================================================================
// PDF RENDERER
// =============================================================================
//
// LAYOUT (A4 portrait, 10 mm margins):
//
//   +--------+-------------------------------+----------------------+
//   |  logo  | shop name, address, contacts  | RECIBO Nº / date     |
//   +--------+-------------------------------+----------------------+
//   | client table                                                  |
//   | vehicle table                                                 |
//   | items table (repeats its header on every page)                |
//   | total, status, payment, responsible                           |
//   | notes, next review                                            |
//   +---------------------------------------------------------------+
//   | footer: issue date                                  page x/y  |
//
// The core PDF fonts only cover Windows-1252, so every string is transcoded
// before it is drawn; characters outside that code page become "?".
//
// =============================================================================

const (
	fontFamily = "Helvetica"
	pageWidth  = 190.0 // A4 width minus margins
	lineHeight = 6.0
	wrapHeight = 5.0 // line height inside a wrapped table cell
	logoSize   = 25.0
)

// descriptionColumn is the items table column that wraps instead of
// being shortened.
const descriptionColumn = 2

// itemColumns are the items table columns and their widths in mm.
var itemColumns = []struct {
	title string
	width float64
	align string
}{
	{"Tipo", 20, "L"},
	{"Código", 25, "L"},
	{"Descrição", 65, "L"},
	{"Qtd", 15, "C"},
	{"Valor Unit.", 25, "R"},
	{"Desc.(%)", 15, "C"},
	{"Total", 25, "R"},
}

// PDF renders receipts with gofpdf.
type PDF struct {
	log logging.Logger
}

// NewPDF creates a PDF renderer. log may be nil.
func NewPDF(log logging.Logger) *PDF {
	return &PDF{log: logging.OrNop(log)}
}

// Render implements Renderer.
func (p *PDF) Render(ctx Context) ([]byte, error) {
	r := ctx.Receipt

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(true, 20)
	pdf.SetTitle(fmt.Sprintf("Recibo %s", r.Number), true)
	pdf.SetAuthor(ctx.Shop.Name, true)
	pdf.SetCreationDate(ctx.Now)
	pdf.AliasNbPages("")

	issued := ctx.Now.Format(DateLayout + " " + TimeLayout)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(fontFamily, "I", 8)
		pdf.CellFormat(pageWidth/2, 10, p.tr("Emitido em "+issued), "T", 0, "L", false, 0, "")
		pdf.CellFormat(pageWidth/2, 10, p.tr(fmt.Sprintf("Página %d/{nb}", pdf.PageNo())), "T", 0, "R", false, 0, "")
	})

	pdf.AddPage()
	p.header(pdf, ctx)
	p.clientTable(pdf, r.Client)
	p.vehicleTable(pdf, r.Vehicle)
	p.itemsTable(pdf, r.Items)
	p.summary(pdf, r)
	p.notes(pdf, r)

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("failed to render receipt %s: %w", r.Number, err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write receipt %s: %w", r.Number, err)
	}
	p.log.Debugf("rendered receipt %s: %d pages, %d bytes", r.Number, pdf.PageNo(), buf.Len())
	return buf.Bytes(), nil
}

// =============================================================================
// SECTIONS
// =============================================================================

func (p *PDF) header(pdf *gofpdf.Fpdf, ctx Context) {
	top := pdf.GetY()
	left := 10.0

	if p.logo(pdf, ctx.Logo, left, top) {
		left += logoSize + 4
	}

	infoWidth := pageWidth - (left - 10) - 60
	pdf.SetXY(left, top)
	pdf.SetFont(fontFamily, "B", 13)
	pdf.CellFormat(infoWidth, 7, p.tr(ctx.Shop.Name), "", 2, "L", false, 0, "")
	pdf.SetFont(fontFamily, "", 8)
	for _, line := range []string{
		ctx.Shop.Address,
		joinNonEmpty(" - ", prefixed("CEP: ", ctx.Shop.PostalCode), prefixed("Tel: ", ctx.Shop.Phone)),
		joinNonEmpty(" - ", prefixed("E-mail: ", ctx.Shop.Email), prefixed("CNPJ: ", ctx.Shop.TaxID)),
	} {
		if line != "" {
			pdf.CellFormat(infoWidth, 4, p.tr(line), "", 2, "L", false, 0, "")
		}
	}

	pdf.SetXY(10+pageWidth-60, top)
	pdf.SetFont(fontFamily, "B", 14)
	pdf.CellFormat(60, 8, p.tr("RECIBO Nº "+ctx.Receipt.Number), "1", 2, "C", false, 0, "")
	pdf.SetFont(fontFamily, "", 9)
	created := joinNonEmpty(" ", ctx.Receipt.CreatedDate, ctx.Receipt.CreatedTime)
	pdf.CellFormat(60, 6, p.tr("Data: "+created), "LRB", 2, "C", false, 0, "")

	pdf.SetXY(10, top+logoSize+4)
}

// logo draws the logo and reports whether it did. Unsupported images are
// skipped with a warning; the document is still produced.
func (p *PDF) logo(pdf *gofpdf.Fpdf, logo []byte, x, y float64) bool {
	if len(logo) == 0 {
		return false
	}

	var imageType string
	switch http.DetectContentType(logo) {
	case "image/png":
		imageType = "PNG"
	case "image/jpeg":
		imageType = "JPG"
	default:
		p.log.Warnf("logo is not a PNG or JPEG image, leaving it out")
		return false
	}

	opts := gofpdf.ImageOptions{ImageType: imageType, ReadDpi: true}
	pdf.RegisterImageOptionsReader("logo", opts, bytes.NewReader(logo))
	if err := pdf.Error(); err != nil {
		p.log.Warnf("failed to load logo, leaving it out: %v", err)
		pdf.ClearError()
		return false
	}
	pdf.ImageOptions("logo", x, y, logoSize, 0, false, opts, 0, "")
	return true
}

func (p *PDF) clientTable(pdf *gofpdf.Fpdf, c types.Client) {
	p.sectionTitle(pdf, "DADOS DO CLIENTE")
	p.pairs(pdf, [][2]string{
		{"Nome", c.Name},
		{"Telefone", c.Phone},
		{"CPF/CNPJ", c.TaxID},
		{"E-mail", c.Email},
		{"Endereço", c.Address()},
		{"CEP", c.PostalCode},
	})
}

func (p *PDF) vehicleTable(pdf *gofpdf.Fpdf, v types.Vehicle) {
	p.sectionTitle(pdf, "DADOS DO VEÍCULO")
	p.pairs(pdf, [][2]string{
		{"Placa", v.Plate},
		{"Marca", v.Brand},
		{"Modelo", v.Model},
		{"Cor", v.Color},
		{"Ano", v.Year},
		{"Combustível", string(v.Fuel)},
		{"KM Entrada", format.FormatOdometer(v.OdometerIn)},
		{"KM Saída", format.FormatOdometer(v.OdometerOut)},
		{"Box", string(v.Bay)},
	})
}

func (p *PDF) itemsTable(pdf *gofpdf.Fpdf, items []types.LineItem) {
	p.sectionTitle(pdf, "PEÇAS E SERVIÇOS")

	tableHeader := func() {
		pdf.SetFont(fontFamily, "B", 9)
		pdf.SetFillColor(230, 230, 230)
		for _, c := range itemColumns {
			pdf.CellFormat(c.width, 7, p.tr(c.title), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont(fontFamily, "", 9)
	}
	tableHeader()

	_, pageHeight := pdf.GetPageSize()
	left, top, _, bottom := pdf.GetMargins()
	limit := pageHeight - bottom - 10
	// A row never grows past one page below the table header.
	maxLines := int((limit - top - 7) / wrapHeight)
	for _, it := range items {
		if it.IsRaw() {
			if pdf.GetY()+lineHeight > limit {
				pdf.AddPage()
				tableHeader()
			}
			pdf.CellFormat(pageWidth, lineHeight, p.fit(pdf, it.Raw, pageWidth), "1", 1, "L", false, 0, "")
			continue
		}

		description := p.wrap(pdf, it.Description, itemColumns[descriptionColumn].width, maxLines)
		h, lineH := lineHeight, lineHeight
		if len(description) > 1 {
			h, lineH = float64(len(description))*wrapHeight, wrapHeight
		}
		if pdf.GetY()+h > limit {
			pdf.AddPage()
			tableHeader()
		}

		cells := []string{
			string(it.Category),
			it.Code,
			"",
			strconv.Itoa(it.Quantity),
			format.Money(it.UnitPrice),
			it.DiscountPercent.String(),
			format.Money(it.LineTotal),
		}
		x, y := pdf.GetXY()
		for i, c := range itemColumns {
			if i != descriptionColumn {
				pdf.CellFormat(c.width, h, p.fit(pdf, cells[i], c.width), "1", 0, c.align, false, 0, "")
				x += c.width
				continue
			}
			pdf.Rect(x, y, c.width, h, "D")
			for n, line := range description {
				pdf.SetXY(x, y+float64(n)*lineH)
				pdf.CellFormat(c.width, lineH, line, "", 0, c.align, false, 0, "")
			}
			x += c.width
			pdf.SetXY(x, y)
		}
		pdf.SetXY(left, y+h)
	}
	if len(items) == 0 {
		pdf.CellFormat(pageWidth, lineHeight, p.tr("Nenhum item"), "1", 1, "C", false, 0, "")
	}
}

func (p *PDF) summary(pdf *gofpdf.Fpdf, r types.Receipt) {
	pdf.Ln(2)
	pdf.SetFont(fontFamily, "B", 11)
	pdf.CellFormat(pageWidth, 8, p.tr("VALOR TOTAL: R$ "+format.Money(r.Total)), "1", 1, "R", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont(fontFamily, "", 9)
	p.pairs(pdf, [][2]string{
		{"Situação", string(r.Status)},
		{"Pagamento", string(r.PaymentTerms)},
		{"Responsável", r.ResponsibleParty},
	})
}

func (p *PDF) notes(pdf *gofpdf.Fpdf, r types.Receipt) {
	for _, block := range []struct{ title, body string }{
		{"PROBLEMA INFORMADO", r.ProblemReported},
		{"PROBLEMA CONSTATADO", r.ProblemFound},
		{"SERVIÇO EXECUTADO", r.WorkPerformed},
		{"OBSERVAÇÕES", r.Notes},
		{"PRÓXIMA REVISÃO", r.NextReviewNote},
	} {
		if strings.TrimSpace(block.body) == "" {
			continue
		}
		p.sectionTitle(pdf, block.title)
		pdf.SetFont(fontFamily, "", 9)
		pdf.MultiCell(pageWidth, 5, p.tr(block.body), "1", "L", false)
	}
}

// =============================================================================
// HELPERS
// =============================================================================

func (p *PDF) sectionTitle(pdf *gofpdf.Fpdf, title string) {
	pdf.Ln(3)
	pdf.SetFont(fontFamily, "B", 10)
	pdf.SetFillColor(40, 40, 40)
	pdf.SetTextColor(255, 255, 255)
	pdf.CellFormat(pageWidth, 7, p.tr(title), "", 1, "L", true, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

// pairs draws label/value pairs two per row.
func (p *PDF) pairs(pdf *gofpdf.Fpdf, pairs [][2]string) {
	const labelWidth, valueWidth = 28.0, pageWidth/2 - 28.0
	for i, kv := range pairs {
		pdf.SetFont(fontFamily, "B", 9)
		pdf.CellFormat(labelWidth, lineHeight, p.tr(kv[0]+":"), "LTB", 0, "L", false, 0, "")
		pdf.SetFont(fontFamily, "", 9)
		ln := 0
		if i%2 == 1 || i == len(pairs)-1 {
			ln = 1
		}
		w := valueWidth
		if i%2 == 0 && i == len(pairs)-1 {
			w += pageWidth / 2
		}
		pdf.CellFormat(w, lineHeight, p.fit(pdf, kv[1], w), "RTB", ln, "L", false, 0, "")
	}
}

// tr transcodes s to Windows-1252.
func (p *PDF) tr(s string) string {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		if b, ok := charmap.Windows1252.EncodeRune(r); ok {
			out = append(out, b)
		} else {
			out = append(out, '?')
		}
	}
	return string(out)
}

// fit transcodes s and shortens it until it fits in width mm.
func (p *PDF) fit(pdf *gofpdf.Fpdf, s string, width float64) string {
	out := p.tr(s)
	if pdf.GetStringWidth(out) <= width-cellPadding {
		return out
	}
	return clip(pdf, out, width)
}

// wrap transcodes s and splits it into lines that fit in width mm, at most
// maxLines of them. Text past the last line is cut and marked with "...".
func (p *PDF) wrap(pdf *gofpdf.Fpdf, s string, width float64, maxLines int) []string {
	var lines []string
	for _, l := range pdf.SplitLines([]byte(p.tr(s)), width) {
		lines = append(lines, string(l))
	}
	if len(lines) == 0 {
		return []string{""}
	}
	if maxLines > 0 && len(lines) > maxLines {
		lines = lines[:maxLines]
		lines[maxLines-1] = clip(pdf, lines[maxLines-1], width)
	}
	return lines
}

// cellPadding is the horizontal room a table cell keeps around its text.
const cellPadding = 2.0

// clip shortens an already transcoded line and appends "..." so that it
// fits in width mm.
func clip(pdf *gofpdf.Fpdf, s string, width float64) string {
	for len(s) > 0 && pdf.GetStringWidth(s+"...") > width-cellPadding {
		s = s[:len(s)-1]
	}
	return s + "..."
}

func prefixed(prefix, s string) string {
	if s == "" {
		return ""
	}
	return prefix + s
}

func joinNonEmpty(sep string, parts ...string) string {
	var kept []string
	for _, s := range parts {
		if s != "" {
			kept = append(kept, s)
		}
	}
	return strings.Join(kept, sep)
}
