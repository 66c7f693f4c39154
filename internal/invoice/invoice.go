// Package invoice lays out the printable single-page order invoice.
package invoice

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"

	"github.com/flicky/aqua-storefront/internal/config"
	"github.com/flicky/aqua-storefront/internal/model"
	"github.com/flicky/aqua-storefront/internal/pricing"
)

const margin = 20.0

var terms = []string{
	"- No Cash on Delivery. Prepaid orders only.",
	"- Every MONDAY only we dispatch parcels.",
	"- No replacement without unboxing video.",
	"- In case of damages, 45% of amount will be refunded.",
}

var legacyTaxDivisor = decimal.RequireFromString("1.18")

type Renderer struct {
	Business config.BusinessConfig
}

func NewRenderer(business config.BusinessConfig) *Renderer {
	return &Renderer{Business: business}
}

func FileName(order model.Order) string {
	return "MVS_Invoice_" + order.ID + ".pdf"
}

// Render produces the invoice bytes. The output depends only on the order and
// business details, so saved and printed copies are identical.
func (r *Renderer) Render(order model.Order) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCreationDate(order.Date)
	pdf.SetCatalogSort(true)
	pdf.SetTitle("Invoice "+order.ID, true)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pageW, pageH := pdf.GetPageSize()

	y := 30.0
	pdf.SetFont("Helvetica", "", 22)
	pdf.SetTextColor(0, 51, 102)
	pdf.Text(margin, y, tr(r.Business.Name+" - "+r.Business.Tagline))

	y += 10
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(100, 100, 100)
	pdf.Text(margin, y, tr(r.Business.Address))
	pdf.Text(margin, y+5, tr("Contact: "+r.Business.Phone))

	y += 20
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFontSize(16)
	pdf.Text(margin, y, tr("INVOICE: #"+strings.ToUpper(order.ID)))
	pdf.SetFontSize(10)
	pdf.Text(pageW-60, y, "Date: "+order.Date.Format("2/1/2006"))

	y += 15
	pdf.SetFontSize(12)
	pdf.Text(margin, y, "Bill To:")
	y += 6
	pdf.SetFontSize(10)
	pdf.Text(margin, y, tr(order.CustomerName))
	y += 5
	pdf.Text(margin, y, tr(order.Address))
	y += 5
	email := order.Email
	if email == "" {
		email = "N/A"
	}
	pdf.Text(margin, y, tr("Email: "+email))
	y += 5
	pdf.Text(margin, y, tr("Phone: "+order.Phone))

	y += 15
	pdf.SetFillColor(240, 240, 240)
	pdf.Rect(margin, y, 170, 8, "F")
	pdf.Text(margin+2, y+6, "Description")
	pdf.Text(margin+100, y+6, "Qty")
	pdf.Text(margin+120, y+6, "Price")
	pdf.Text(margin+150, y+6, "Total")

	y += 14
	for _, item := range order.Items {
		pdf.Text(margin+2, y, tr(item.Name))
		pdf.Text(margin+100, y, fmt.Sprint(item.Quantity))
		pdf.Text(margin+120, y, inr(pricing.FormatAmount(item.Price)))
		pdf.Text(margin+150, y, inr(pricing.FormatAmount(item.LineTotal())))
		y += 8
	}

	y += 10
	pdf.SetDrawColor(230, 230, 230)
	pdf.Line(margin+100, y, margin+170, y)
	y += 10

	s := summarize(order)
	pdf.Text(margin+120, y, "Subtotal:")
	pdf.Text(margin+150, y, inr(s.subtotal))
	y += 6
	pdf.Text(margin+120, y, "Tax (GST 18%):")
	pdf.Text(margin+150, y, inr(s.tax))
	y += 6
	pdf.Text(margin+120, y, "Shipping:")
	pdf.Text(margin+150, y, inr(s.shipping))
	y += 10
	pdf.SetFontSize(14)
	pdf.Text(margin+120, y, "Grand Total:")
	pdf.Text(margin+150, y, inr(s.total))

	y = pageH - 50
	pdf.SetFontSize(8)
	pdf.SetTextColor(150, 150, 150)
	pdf.Text(margin, y, "TERMS & CONDITIONS:")
	y += 5
	for i, line := range terms {
		if i > 0 {
			y += 4
		}
		pdf.Text(margin, y, line)
	}
	y += 8
	pdf.SetFontSize(10)
	pdf.SetTextColor(0, 51, 102)
	pdf.Text(margin, y, tr("Thank you for choosing "+r.Business.Name+"!"))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render invoice %s: %w", order.ID, err)
	}
	return buf.Bytes(), nil
}

// Save writes the invoice into dir and returns the file path.
func (r *Renderer) Save(dir string, order model.Order) (string, error) {
	data, err := r.Render(order)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create invoice dir: %w", err)
	}
	path := filepath.Join(dir, FileName(order))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write invoice: %w", err)
	}
	return path, nil
}

type summary struct {
	subtotal, tax, shipping, total string
}

// summarize formats the totals block. Orders saved without a subtotal and tax
// get both derived from the total at the flat 18% rate.
func summarize(o model.Order) summary {
	s := summary{
		subtotal: pricing.FormatAmount(o.Subtotal),
		tax:      pricing.FormatAmount(o.Tax),
		shipping: pricing.FormatAmount(o.Shipping),
		total:    pricing.FormatAmount(o.Total),
	}
	if o.Total == 0 {
		return s
	}
	// Orders recorded without a breakdown derive each missing figure from the total.
	total := decimal.NewFromInt(o.Total)
	base := total.Div(legacyTaxDivisor)
	if o.Subtotal == 0 {
		s.subtotal = base.StringFixed(2)
	}
	if o.Tax == 0 {
		s.tax = total.Sub(base).StringFixed(2)
	}
	return s
}

func inr(amount string) string { return "INR " + amount }
