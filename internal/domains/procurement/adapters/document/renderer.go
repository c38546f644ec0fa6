package document

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/Apurer/go-gin-p2p-server/internal/domains/procurement/domain"
	"github.com/Apurer/go-gin-p2p-server/internal/domains/procurement/ports"
)

var _ ports.DocumentRenderer = (*Renderer)(nil)

const (
	ContentType = "application/pdf"

	descriptionLimit = 50
	bottomMargin     = 15.0
	rowHeight        = 7.0
	lineHeight       = 4.5
	itemFontSize     = 9.0
	minFontSize      = 5.0
)

var (
	brandColor  = [3]int{31, 71, 136}
	columnNames = [...]string{"Item", "Description", "Qty", "Unit Price", "Total"}
	columnWidth = [...]float64{45, 60, 15, 30, 30}
	columnAlign = [...]string{"L", "L", "C", "R", "R"}
)

// Renderer synthesizes purchase order PDFs.
type Renderer struct {
	now func() time.Time
}

// Option configures the renderer.
type Option func(*Renderer)

// WithClock overrides the generation timestamp source.
func WithClock(now func() time.Time) Option {
	return func(r *Renderer) {
		r.now = now
	}
}

// NewRenderer builds a PDF renderer.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{now: func() time.Time { return time.Now().UTC() }}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Filename is the artifact name for a purchase order number.
func Filename(number string) string {
	return fmt.Sprintf("PO_%s.pdf", number)
}

// Render lays out the purchase order and returns the encoded PDF.
func (r *Renderer) Render(ctx context.Context, order *domain.PurchaseOrder, items []domain.RequestItem) (*domain.Document, error) {
	if order == nil {
		return nil, errors.New("purchase order is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pdf := layout(order, items)
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("encode pdf: %w", err)
	}
	return &domain.Document{
		Filename:    Filename(order.Number),
		ContentType: ContentType,
		Content:     buf.Bytes(),
		GeneratedAt: r.now(),
	}, nil
}

func layout(order *domain.PurchaseOrder, items []domain.RequestItem) *fpdf.Fpdf {
	pdf := fpdf.New("P", "mm", "Letter", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Purchase Order "+order.Number, true)
	pdf.SetCreationDate(order.CreatedAt)
	pdf.SetAutoPageBreak(true, bottomMargin)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-bottomMargin)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 24)
	pdf.SetTextColor(brandColor[0], brandColor[1], brandColor[2])
	pdf.CellFormat(0, 14, "PURCHASE ORDER", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	for _, row := range [][2]string{
		{"PO Number:", order.Number},
		{"Date:", order.CreatedAt.Format("2006-01-02")},
		{"Status:", statusLabel(order.Status)},
	} {
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(50, rowHeight, row[0], "", 0, "L", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
		pdf.CellFormat(0, rowHeight, tr(row[1]), "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	if !order.Vendor.Empty() {
		heading(pdf, "Vendor Information")
		for _, row := range [][2]string{
			{"Name:", order.Vendor.Name},
			{"Email:", order.Vendor.Email},
			{"Phone:", order.Vendor.Phone},
			{"Address:", order.Vendor.Address},
		} {
			pdf.SetFont("Helvetica", "B", 10)
			pdf.CellFormat(40, 6, row[0], "", 0, "L", false, 0, "")
			pdf.SetFont("Helvetica", "", 10)
			pdf.MultiCell(0, 6, tr(orNA(row[1])), "", "L", false)
		}
		pdf.Ln(6)
	}

	heading(pdf, "Items")
	if len(items) > 0 {
		itemTable(pdf, tr, items)
	}

	pdf.Ln(8)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetTextColor(brandColor[0], brandColor[1], brandColor[2])
	pdf.CellFormat(0, 8, "Total Amount: "+domain.FormatCurrency(order.TotalAmount), "", 1, "R", false, 0, "")
	pdf.SetTextColor(0, 0, 0)

	if strings.TrimSpace(order.Notes) != "" {
		pdf.Ln(6)
		heading(pdf, "Notes")
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 5, tr(order.Notes), "", "L", false)
	}
	return pdf
}

func heading(pdf *fpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, 9, title, "", 1, "L", false, 0, "")
	pdf.Ln(2)
}

// itemTable writes the item grid, repeating the header row after each break.
// Names wrap onto extra lines; descriptions stay on one line and shrink instead.
func itemTable(pdf *fpdf.Fpdf, tr func(string) string, items []domain.RequestItem) {
	_, pageHeight := pdf.GetPageSize()
	left, _, _, _ := pdf.GetMargins()
	tableHeader(pdf)
	pdf.SetFont("Helvetica", "", itemFontSize)
	for _, item := range items {
		name := pdf.SplitText(tr(item.Name), columnWidth[0])
		if len(name) == 0 {
			name = []string{""}
		}
		height := math.Max(rowHeight, float64(len(name))*lineHeight+2)
		if pdf.GetY()+height > pageHeight-bottomMargin {
			pdf.AddPage()
			tableHeader(pdf)
			pdf.SetFont("Helvetica", "", itemFontSize)
		}
		pdf.SetFillColor(245, 245, 220)
		x, y := left, pdf.GetY()
		for i, width := range columnWidth {
			pdf.Rect(x, y, width, height, "FD")
			pdf.SetXY(x, y)
			switch i {
			case 0:
				pdf.SetXY(x, y+(height-float64(len(name))*lineHeight)/2)
				for _, line := range name {
					pdf.CellFormat(width, lineHeight, line, "", 2, columnAlign[i], false, 0, "")
				}
			case 1:
				text := tr(domain.Truncate(item.Description, descriptionLimit))
				pdf.SetFontSize(fitFontSize(pdf, text, width))
				pdf.CellFormat(width, height, text, "", 0, columnAlign[i], false, 0, "")
				pdf.SetFontSize(itemFontSize)
			default:
				pdf.CellFormat(width, height, itemCell(item, i), "", 0, columnAlign[i], false, 0, "")
			}
			x += width
		}
		pdf.SetXY(left, y+height)
	}
}

func itemCell(item domain.RequestItem, column int) string {
	switch column {
	case 2:
		return fmt.Sprintf("%d", item.Quantity)
	case 3:
		return domain.FormatCurrency(item.UnitPrice)
	default:
		return domain.FormatCurrency(item.TotalPrice)
	}
}

func tableHeader(pdf *fpdf.Fpdf) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(128, 128, 128)
	pdf.SetTextColor(245, 245, 245)
	for i, name := range columnNames {
		pdf.CellFormat(columnWidth[i], rowHeight+1, name, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetTextColor(0, 0, 0)
}

// fitFontSize is the largest size, from itemFontSize down to minFontSize, at
// which text fits its cell. Text is never shortened.
func fitFontSize(pdf *fpdf.Fpdf, text string, width float64) float64 {
	limit := width - 2*pdf.GetCellMargin()
	size := itemFontSize
	for size > minFontSize {
		pdf.SetFontSize(size)
		if pdf.GetStringWidth(text) <= limit {
			break
		}
		size -= 0.5
	}
	pdf.SetFontSize(itemFontSize)
	return size
}

func statusLabel(status domain.OrderStatus) string {
	s := strings.ToLower(string(status))
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func orNA(value string) string {
	if strings.TrimSpace(value) == "" {
		return "N/A"
	}
	return value
}
