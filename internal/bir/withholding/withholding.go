// Package withholding computes creditable (expanded) withholding tax and
// employee compensation withholding.
package withholding

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-pos/internal/bir/money"
	"github.com/odyssey-erp/odyssey-pos/internal/bir/taxtable"
)

// Category is the income payment class an amount is withheld under.
type Category string

const (
	CategoryGoods        Category = "goods"
	CategoryServices     Category = "services"
	CategoryProfessional Category = "professional"
	CategoryCompensation Category = "compensation"
)

// DefaultExemptions is the number of exemption slots assumed for an employee.
const DefaultExemptions = 4

var (
	// ErrUnknownCategory indicates a category outside the rate table.
	ErrUnknownCategory = errors.New("withholding: unknown category")
	// ErrInvalidExemptions indicates a negative exemption count.
	ErrInvalidExemptions = errors.New("withholding: invalid exemptions")
)

type rule struct {
	rate      decimal.Decimal
	threshold decimal.Decimal
}

// Compensation is listed with a zero rate; employees go through
// EmployeeMonthlyTax instead.
var rules = map[Category]rule{
	CategoryGoods:        {rate: decimal.RequireFromString("0.01"), threshold: decimal.NewFromInt(1000)},
	CategoryServices:     {rate: decimal.RequireFromString("0.02"), threshold: decimal.NewFromInt(1000)},
	CategoryProfessional: {rate: decimal.RequireFromString("0.10"), threshold: decimal.Zero},
	CategoryCompensation: {rate: decimal.Zero, threshold: decimal.Zero},
}

var (
	personalExemption = decimal.NewFromInt(50000)
	perSlotExemption  = decimal.NewFromInt(25000)
	monthsPerYear     = decimal.NewFromInt(12)
)

// Result is the outcome of a creditable withholding computation.
type Result struct {
	Rate      decimal.Decimal `json:"rate"`
	Amount    decimal.Decimal `json:"amount"`
	NetAmount decimal.Decimal `json:"net_amount"`
	Type      Category        `json:"type"`
}

// ParseCategory validates a user supplied category.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if _, ok := rules[c]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
	}
	return c, nil
}

// Rate returns the withholding rate for c.
func Rate(c Category) (decimal.Decimal, error) {
	r, ok := rules[c]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrUnknownCategory, c)
	}
	return r.rate, nil
}

// Calculate withholds tax from gross. Amounts strictly below the category
// threshold are not withheld; an amount equal to the threshold is.
func Calculate(gross decimal.Decimal, c Category) (Result, error) {
	if err := money.RequireNonNegative(gross); err != nil {
		return Result{}, err
	}
	r, ok := rules[c]
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownCategory, c)
	}
	gross = money.Round(gross)
	withheld := decimal.Zero
	if !gross.LessThan(r.threshold) {
		withheld = money.Round(gross.Mul(r.rate))
	}
	return Result{
		Rate:      r.rate,
		Amount:    withheld,
		NetAmount: gross.Sub(withheld),
		Type:      c,
	}, nil
}

// EmployeeMonthlyTax returns the monthly compensation withholding for a
// monthly gross pay, annualized and run through the individual schedule.
func EmployeeMonthlyTax(monthlyGross decimal.Decimal, exemptions int) (decimal.Decimal, error) {
	if err := money.RequireNonNegative(monthlyGross); err != nil {
		return decimal.Zero, err
	}
	if exemptions < 0 {
		return decimal.Zero, fmt.Errorf("%w: %d", ErrInvalidExemptions, exemptions)
	}
	taxable := AnnualTaxableCompensation(monthlyGross, exemptions)
	annual := taxtable.IndividualCompensation.Tax(taxable)
	return money.Round(annual.Div(monthsPerYear)), nil
}

// AnnualTaxableCompensation annualizes monthly pay and deducts the personal
// and per-slot exemptions, clamped at zero.
func AnnualTaxableCompensation(monthlyGross decimal.Decimal, exemptions int) decimal.Decimal {
	annual := monthlyGross.Mul(monthsPerYear)
	deduction := personalExemption.Add(perSlotExemption.Mul(decimal.NewFromInt(int64(exemptions))))
	taxable := annual.Sub(deduction)
	if taxable.IsNegative() {
		return decimal.Zero
	}
	return taxable
}
