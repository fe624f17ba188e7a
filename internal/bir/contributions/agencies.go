package contributions

import (
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-pos/internal/bir/money"
)

var (
	philHealthRate       = decimal.RequireFromString("0.05")
	philHealthPremiumCap = decimal.NewFromInt(5000)
	pagIBIGRate          = decimal.RequireFromString("0.02")
	pagIBIGShareCap      = decimal.NewFromInt(200)
	two                  = decimal.NewFromInt(2)
)

// PhilHealth splits the 5% premium, capped at 5,000, evenly between
// employee and employer.
func PhilHealth(monthlySalary decimal.Decimal) (Contribution, error) {
	if err := money.RequireNonNegative(monthlySalary); err != nil {
		return Contribution{}, err
	}
	premium := decimal.Min(monthlySalary.Mul(philHealthRate), philHealthPremiumCap)
	share := money.Round(premium.Div(two))
	return newContribution(share, share), nil
}

// PagIBIG charges each side 2% of salary, capped at 200.
func PagIBIG(monthlySalary decimal.Decimal) (Contribution, error) {
	if err := money.RequireNonNegative(monthlySalary); err != nil {
		return Contribution{}, err
	}
	share := money.Round(decimal.Min(monthlySalary.Mul(pagIBIGRate), pagIBIGShareCap))
	return newContribution(share, share), nil
}
