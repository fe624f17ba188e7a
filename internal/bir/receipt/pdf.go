package receipt

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
)

// receiptWidth is an 80mm thermal roll.
const receiptWidth = 80.0

// RenderPDF lays the receipt out for an 80mm POS printer. The core PDF fonts
// have no peso glyph, so amounts print with the PHP code.
func RenderPDF(r Receipt) ([]byte, error) {
	height := 110.0 + 6.0*float64(len(r.Items))
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "mm",
		Size:    gofpdf.SizeType{Wd: receiptWidth, Ht: height},
	})
	pdf.SetMargins(4, 4, 4)
	pdf.SetAutoPageBreak(false, 4)
	pdf.AddPage()

	content := receiptWidth - 8

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(content, 5, r.BusinessName, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	pdf.MultiCell(content, 3.5, r.BusinessAddress, "", "C", false)
	pdf.CellFormat(content, 3.5, "VAT REG TIN: "+r.TIN, "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(content, 5, "OFFICIAL RECEIPT", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(content/2, 4, "OR No. "+r.ORNumber, "", 0, "L", false, 0, "")
	pdf.CellFormat(content/2, 4, r.Date.Format("2006-01-02 15:04"), "", 1, "R", false, 0, "")
	if r.CustomerName != "" || r.CustomerTIN != "" {
		pdf.CellFormat(content, 4, "Sold to: "+r.CustomerName, "", 1, "L", false, 0, "")
		pdf.CellFormat(content, 4, "TIN: "+r.CustomerTIN, "", 1, "L", false, 0, "")
	}
	pdf.Line(4, pdf.GetY()+1, receiptWidth-4, pdf.GetY()+1)
	pdf.Ln(2)

	for _, item := range r.Items {
		pdf.CellFormat(content*0.55, 4, item.Description, "", 0, "L", false, 0, "")
		pdf.CellFormat(content*0.15, 4, item.Quantity.String(), "", 0, "R", false, 0, "")
		pdf.CellFormat(content*0.30, 4, amount(item.Amount), "", 1, "R", false, 0, "")
	}
	pdf.Line(4, pdf.GetY()+1, receiptWidth-4, pdf.GetY()+1)
	pdf.Ln(2)

	totals := []struct {
		label string
		value decimal.Decimal
	}{
		{"VATable Sales", r.VatableAmount},
		{"VAT (12%)", r.VATAmount},
		{"TOTAL", r.TotalAmount},
	}
	for _, row := range totals {
		pdf.CellFormat(content*0.6, 4, row.label, "", 0, "L", false, 0, "")
		pdf.CellFormat(content*0.4, 4, amount(row.value), "", 1, "R", false, 0, "")
	}
	pdf.Ln(3)
	pdf.SetFont("Helvetica", "I", 6)
	pdf.MultiCell(content, 3, "THIS SERVES AS AN OFFICIAL RECEIPT.", "", "C", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("receipt: render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func amount(d decimal.Decimal) string {
	return "PHP " + d.StringFixed(2)
}
