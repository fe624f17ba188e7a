package reports

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-pos/internal/bir/money"
	"github.com/odyssey-erp/odyssey-pos/internal/bir/taxtable"
)

// ReportType selects the aggregation performed by GenerateBIRReport.
type ReportType string

const (
	ReportVAT       ReportType = "VAT"
	ReportIncomeTax ReportType = "INCOME_TAX"
)

// ErrUnknownReportType indicates an unsupported ReportType.
var ErrUnknownReportType = errors.New("reports: unknown report type")

// Record is one input row. VAT reports read Date, Amount and VAT; income tax
// reports read Revenue and Expenses.
type Record struct {
	Date     time.Time       `json:"date"`
	Amount   decimal.Decimal `json:"amount"`
	VAT      decimal.Decimal `json:"vat"`
	Revenue  decimal.Decimal `json:"revenue"`
	Expenses decimal.Decimal `json:"expenses"`
}

// VATSummary totals sales and output VAT for the period.
type VATSummary struct {
	TotalSales  decimal.Decimal `json:"total_sales"`
	TotalVAT    decimal.Decimal `json:"total_vat"`
	RecordCount int             `json:"record_count"`
}

// IncomeTaxSummary applies the corporate schedule to revenue less expenses.
type IncomeTaxSummary struct {
	Revenue       decimal.Decimal `json:"revenue"`
	Expenses      decimal.Decimal `json:"expenses"`
	TaxableIncome decimal.Decimal `json:"taxable_income"`
	IncomeTax     decimal.Decimal `json:"income_tax"`
	RecordCount   int             `json:"record_count"`
}

// BIRReport carries exactly one of VAT or IncomeTax depending on Type.
type BIRReport struct {
	Type      ReportType        `json:"type"`
	Period    string            `json:"period"`
	VAT       *VATSummary       `json:"vat,omitempty"`
	IncomeTax *IncomeTaxSummary `json:"income_tax,omitempty"`
}

// GenerateBIRReport aggregates records for the period. VAT reports filter by
// calendar period; income tax reports expect records already scoped by the
// caller.
func GenerateBIRReport(kind ReportType, records []Record, period Period) (BIRReport, error) {
	if err := period.Validate(); err != nil {
		return BIRReport{}, err
	}
	report := BIRReport{Type: kind, Period: period.String()}
	switch kind {
	case ReportVAT:
		summary := VATSummary{TotalSales: decimal.Zero, TotalVAT: decimal.Zero}
		for _, r := range records {
			if !period.Contains(r.Date) {
				continue
			}
			summary.TotalSales = summary.TotalSales.Add(r.Amount)
			summary.TotalVAT = summary.TotalVAT.Add(r.VAT)
			summary.RecordCount++
		}
		summary.TotalSales = money.Round(summary.TotalSales)
		summary.TotalVAT = money.Round(summary.TotalVAT)
		report.VAT = &summary
	case ReportIncomeTax:
		revenue, expenses := decimal.Zero, decimal.Zero
		for _, r := range records {
			revenue = revenue.Add(r.Revenue)
			expenses = expenses.Add(r.Expenses)
		}
		taxable := money.Round(revenue.Sub(expenses))
		report.IncomeTax = &IncomeTaxSummary{
			Revenue:       money.Round(revenue),
			Expenses:      money.Round(expenses),
			TaxableIncome: taxable,
			IncomeTax:     money.Round(taxtable.CorporateIncome.Tax(taxable)),
			RecordCount:   len(records),
		}
	default:
		return BIRReport{}, fmt.Errorf("%w: %q", ErrUnknownReportType, kind)
	}
	return report, nil
}
