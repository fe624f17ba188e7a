// Package contributions computes SSS, PhilHealth and Pag-IBIG employee and
// employer shares.
package contributions

import (
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-pos/internal/bir/money"
)

// Contribution is one agency's monthly split.
type Contribution struct {
	Employee decimal.Decimal `json:"employee"`
	Employer decimal.Decimal `json:"employer"`
	Total    decimal.Decimal `json:"total"`
}

func newContribution(employee, employer decimal.Decimal) Contribution {
	return Contribution{Employee: employee, Employer: employer, Total: employee.Add(employer)}
}

// Summary groups the three statutory contributions for one monthly salary.
type Summary struct {
	SSS           Contribution    `json:"sss"`
	PhilHealth    Contribution    `json:"philhealth"`
	PagIBIG       Contribution    `json:"pagibig"`
	EmployeeTotal decimal.Decimal `json:"employee_total"`
	EmployerTotal decimal.Decimal `json:"employer_total"`
}

// Compute returns all three contributions for monthlySalary.
func Compute(monthlySalary decimal.Decimal) (Summary, error) {
	sss, err := SSS(monthlySalary)
	if err != nil {
		return Summary{}, err
	}
	ph, err := PhilHealth(monthlySalary)
	if err != nil {
		return Summary{}, err
	}
	hdmf, err := PagIBIG(monthlySalary)
	if err != nil {
		return Summary{}, err
	}
	return Summary{
		SSS:           sss,
		PhilHealth:    ph,
		PagIBIG:       hdmf,
		EmployeeTotal: money.Sum(sss.Employee, ph.Employee, hdmf.Employee),
		EmployerTotal: money.Sum(sss.Employer, ph.Employer, hdmf.Employer),
	}, nil
}
