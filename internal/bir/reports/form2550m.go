package reports

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-pos/internal/bir/money"
	"github.com/odyssey-erp/odyssey-pos/internal/bir/records"
)

// BusinessProfile is the registered taxpayer identity printed on forms. It
// comes from configuration, never from the sales data.
type BusinessProfile struct {
	TIN            string `json:"tin"`
	RegisteredName string `json:"registered_name"`
	Address        string `json:"address"`
	RDOCode        string `json:"rdo_code"`
	LineOfBusiness string `json:"line_of_business"`
}

// Form2550M is the Monthly Value-Added Tax Declaration summary.
type Form2550M struct {
	BusinessProfile
	Period       string          `json:"period"`
	GrossSales   decimal.Decimal `json:"gross_sales"`
	VatableSales decimal.Decimal `json:"vatable_sales"`
	OutputVAT    decimal.Decimal `json:"output_vat"`
	SalesCount   int             `json:"sales_count"`
}

// GenerateForm2550M sums the period's sales: total into gross sales,
// subtotal into vatable sales and tax into output VAT.
func GenerateForm2550M(profile BusinessProfile, sales []records.Sale, period Period) (Form2550M, error) {
	if err := period.Validate(); err != nil {
		return Form2550M{}, err
	}
	if !period.IsMonthly() {
		return Form2550M{}, fmt.Errorf("%w: got %s", ErrMonthlyPeriodRequired, period)
	}
	form := Form2550M{
		BusinessProfile: profile,
		Period:          period.String(),
		GrossSales:      decimal.Zero,
		VatableSales:    decimal.Zero,
		OutputVAT:       decimal.Zero,
	}
	for _, s := range sales {
		if !period.Contains(s.CreatedAt) {
			continue
		}
		form.GrossSales = form.GrossSales.Add(s.Total)
		form.VatableSales = form.VatableSales.Add(s.Subtotal)
		form.OutputVAT = form.OutputVAT.Add(s.Tax)
		form.SalesCount++
	}
	form.GrossSales = money.Round(form.GrossSales)
	form.VatableSales = money.Round(form.VatableSales)
	form.OutputVAT = money.Round(form.OutputVAT)
	return form, nil
}

// VATRecords converts sales into VAT report input rows.
func VATRecords(sales []records.Sale) []Record {
	out := make([]Record, 0, len(sales))
	for _, s := range sales {
		out = append(out, Record{Date: s.CreatedAt, Amount: s.Subtotal, VAT: s.Tax})
	}
	return out
}
