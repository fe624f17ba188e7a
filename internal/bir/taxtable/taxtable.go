// Package taxtable holds the graduated income tax schedules.
//
// The individual and corporate schedules look alike but are separate legal
// tables, so they are kept as two independently maintained values.
package taxtable

import (
	"github.com/shopspring/decimal"
)

// Bracket taxes income above Over at Rate, on top of the fixed Base amount
// owed for everything up to Over.
type Bracket struct {
	Over decimal.Decimal
	Base decimal.Decimal
	Rate decimal.Decimal
}

// Schedule is an ordered list of brackets, lowest first.
type Schedule struct {
	Name     string
	Brackets []Bracket
}

func bracket(over, base, rate string) Bracket {
	return Bracket{
		Over: decimal.RequireFromString(over),
		Base: decimal.RequireFromString(base),
		Rate: decimal.RequireFromString(rate),
	}
}

// IndividualCompensation is the annual schedule used for employee
// compensation withholding (TRAIN law, 2023 onwards).
var IndividualCompensation = Schedule{
	Name: "individual-compensation",
	Brackets: []Bracket{
		bracket("0", "0", "0"),
		bracket("250000", "0", "0.20"),
		bracket("400000", "30000", "0.25"),
		bracket("800000", "130000", "0.30"),
		bracket("2000000", "490000", "0.32"),
		bracket("8000000", "2410000", "0.35"),
	},
}

// CorporateIncome is the graduated schedule applied by the income tax
// report. Its top bracket starts at 2,000,000 at 35%.
var CorporateIncome = Schedule{
	Name: "corporate-income",
	Brackets: []Bracket{
		bracket("0", "0", "0"),
		bracket("250000", "0", "0.20"),
		bracket("400000", "30000", "0.25"),
		bracket("800000", "130000", "0.30"),
		bracket("2000000", "490000", "0.35"),
	},
}

// Tax returns the unrounded tax owed on income. Income at or below zero
// owes nothing.
func (s Schedule) Tax(income decimal.Decimal) decimal.Decimal {
	if !income.IsPositive() || len(s.Brackets) == 0 {
		return decimal.Zero
	}
	b := s.bracketFor(income)
	return b.Base.Add(income.Sub(b.Over).Mul(b.Rate))
}

// MarginalRate returns the rate of the bracket income falls into.
func (s Schedule) MarginalRate(income decimal.Decimal) decimal.Decimal {
	if !income.IsPositive() || len(s.Brackets) == 0 {
		return decimal.Zero
	}
	return s.bracketFor(income).Rate
}

func (s Schedule) bracketFor(income decimal.Decimal) Bracket {
	selected := s.Brackets[0]
	for _, b := range s.Brackets[1:] {
		if income.GreaterThan(b.Over) {
			selected = b
			continue
		}
		break
	}
	return selected
}
