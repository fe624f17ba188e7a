package reports

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-pos/internal/bir/contributions"
	"github.com/odyssey-erp/odyssey-pos/internal/bir/money"
	"github.com/odyssey-erp/odyssey-pos/internal/bir/records"
)

var (
	monthsPerYear         = decimal.NewFromInt(12)
	alphalistTaxFloor     = decimal.NewFromInt(250000)
	alphalistEstimateRate = decimal.RequireFromString("0.20")
)

// AlphalistEntry is one employee row of the annual alphalist.
type AlphalistEntry struct {
	Year                    int             `json:"year"`
	EmployeeID              string          `json:"employee_id"`
	TIN                     string          `json:"tin"`
	LastName                string          `json:"last_name"`
	FirstName               string          `json:"first_name"`
	MiddleName              string          `json:"middle_name"`
	GrossCompensation       decimal.Decimal `json:"gross_compensation"`
	NonTaxableContributions decimal.Decimal `json:"non_taxable_contributions"`
	TaxableCompensation     decimal.Decimal `json:"taxable_compensation"`
	TaxWithheld             decimal.Decimal `json:"tax_withheld"`
}

// GenerateAlphalist builds one entry per employee from the basic monthly
// salary. Tax withheld is the alphalist estimate (AlphalistTaxEstimate), not
// the payroll withholding computed by withholding.EmployeeMonthlyTax.
func GenerateAlphalist(employees []records.Employee, year int) ([]AlphalistEntry, error) {
	if err := (Period{Year: year}).Validate(); err != nil {
		return nil, err
	}
	entries := make([]AlphalistEntry, 0, len(employees))
	for _, e := range employees {
		contrib, err := contributions.Compute(e.BasicSalary)
		if err != nil {
			return nil, fmt.Errorf("reports: employee %s: %w", e.ID, err)
		}
		gross := money.Round(e.BasicSalary.Mul(monthsPerYear))
		nonTaxable := money.Round(contrib.EmployeeTotal.Mul(monthsPerYear))
		taxable := gross.Sub(nonTaxable)
		if taxable.IsNegative() {
			taxable = decimal.Zero
		}
		entry := AlphalistEntry{
			Year:                    year,
			EmployeeID:              e.ID,
			LastName:                e.LastName,
			FirstName:               e.FirstName,
			GrossCompensation:       gross,
			NonTaxableContributions: nonTaxable,
			TaxableCompensation:     taxable,
			TaxWithheld:             AlphalistTaxEstimate(taxable),
		}
		if e.TINNumber != nil {
			entry.TIN = *e.TINNumber
		}
		if e.MiddleName != nil {
			entry.MiddleName = *e.MiddleName
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// AlphalistTaxEstimate is a flat 20% of annual taxable compensation above
// 250,000. It deliberately ignores the higher brackets.
func AlphalistTaxEstimate(taxable decimal.Decimal) decimal.Decimal {
	excess := taxable.Sub(alphalistTaxFloor)
	if !excess.IsPositive() {
		return decimal.Zero
	}
	return money.Round(excess.Mul(alphalistEstimateRate))
}
