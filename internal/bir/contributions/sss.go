package contributions

import (
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-pos/internal/bir/money"
)

// SSSBracket is one row of the SSS contribution schedule. A zero Max marks
// the open-ended top bracket.
type SSSBracket struct {
	Min                 decimal.Decimal
	Max                 decimal.Decimal
	MonthlySalaryCredit decimal.Decimal
	Employee            decimal.Decimal
	Employer            decimal.Decimal
}

func sssRow(lo, hi, msc, ee, er string) SSSBracket {
	row := SSSBracket{
		Min:                 decimal.RequireFromString(lo),
		MonthlySalaryCredit: decimal.RequireFromString(msc),
		Employee:            decimal.RequireFromString(ee),
		Employer:            decimal.RequireFromString(er),
	}
	if hi != "" {
		row.Max = decimal.RequireFromString(hi)
	}
	return row
}

// SSSTable is the monthly schedule. Shares are kept as published figures
// rather than derived from the monthly salary credit.
var SSSTable = []SSSBracket{
	sssRow("0", "4249.99", "4000", "180.00", "380.00"),
	sssRow("4250", "4749.99", "4500", "202.50", "427.50"),
	sssRow("4750", "5249.99", "5000", "225.00", "475.00"),
	sssRow("5250", "5749.99", "5500", "247.50", "522.50"),
	sssRow("5750", "6249.99", "6000", "270.00", "570.00"),
	sssRow("6250", "6749.99", "6500", "292.50", "617.50"),
	sssRow("6750", "7249.99", "7000", "315.00", "665.00"),
	sssRow("7250", "7749.99", "7500", "337.50", "712.50"),
	sssRow("7750", "8249.99", "8000", "360.00", "760.00"),
	sssRow("8250", "8749.99", "8500", "382.50", "807.50"),
	sssRow("8750", "9249.99", "9000", "405.00", "855.00"),
	sssRow("9250", "9749.99", "9500", "427.50", "902.50"),
	sssRow("9750", "10249.99", "10000", "450.00", "950.00"),
	sssRow("10250", "10749.99", "10500", "472.50", "997.50"),
	sssRow("10750", "11249.99", "11000", "495.00", "1045.00"),
	sssRow("11250", "11749.99", "11500", "517.50", "1092.50"),
	sssRow("11750", "12249.99", "12000", "540.00", "1140.00"),
	sssRow("12250", "12749.99", "12500", "562.50", "1187.50"),
	sssRow("12750", "13249.99", "13000", "585.00", "1235.00"),
	sssRow("13250", "13749.99", "13500", "607.50", "1282.50"),
	sssRow("13750", "14249.99", "14000", "630.00", "1330.00"),
	sssRow("14250", "14749.99", "14500", "652.50", "1377.50"),
	sssRow("14750", "15249.99", "15000", "675.00", "1425.00"),
	sssRow("15250", "15749.99", "15500", "697.50", "1472.50"),
	sssRow("15750", "16249.99", "16000", "720.00", "1520.00"),
	sssRow("16250", "16749.99", "16500", "742.50", "1567.50"),
	sssRow("16750", "17249.99", "17000", "765.00", "1615.00"),
	sssRow("17250", "17749.99", "17500", "787.50", "1662.50"),
	sssRow("17750", "18249.99", "18000", "810.00", "1710.00"),
	sssRow("18250", "18749.99", "18500", "832.50", "1757.50"),
	sssRow("18750", "19249.99", "19000", "855.00", "1805.00"),
	sssRow("19250", "19749.99", "19500", "877.50", "1852.50"),
	sssRow("19750", "", "20000", "900.00", "1900.00"),
}

// SSS looks up the bracket for monthlySalary. Salaries at or above the top
// bracket floor are capped.
func SSS(monthlySalary decimal.Decimal) (Contribution, error) {
	if err := money.RequireNonNegative(monthlySalary); err != nil {
		return Contribution{}, err
	}
	row := SSSBracketFor(monthlySalary)
	return newContribution(row.Employee, row.Employer), nil
}

// SSSBracketFor returns the schedule row covering monthlySalary.
func SSSBracketFor(monthlySalary decimal.Decimal) SSSBracket {
	salary := money.Round(monthlySalary)
	selected := SSSTable[0]
	for _, row := range SSSTable[1:] {
		if salary.LessThan(row.Min) {
			break
		}
		selected = row
	}
	return selected
}
