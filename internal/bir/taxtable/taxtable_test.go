package taxtable

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestIndividualCompensationTax(t *testing.T) {
	cases := []struct {
		income string
		want   string
	}{
		{"-5", "0"},
		{"0", "0"},
		{"250000", "0"},
		{"300000", "10000"},
		{"400000", "30000"},
		{"450000", "42500"},
		{"800000", "130000"},
		{"1000000", "190000"},
		{"2000000", "490000"},
		{"3000000", "810000"},
		{"8000000", "2410000"},
		{"9000000", "2760000"},
	}
	for _, tc := range cases {
		got := IndividualCompensation.Tax(dec(tc.income))
		assert.True(t, dec(tc.want).Equal(got), "income %s: want %s got %s", tc.income, tc.want, got)
	}
}

func TestCorporateIncomeTax(t *testing.T) {
	cases := []struct {
		income string
		want   string
	}{
		{"250000", "0"},
		{"500000", "55000"},
		{"2000000", "490000"},
		{"3000000", "840000"},
		{"9000000", "2940000"},
	}
	for _, tc := range cases {
		got := CorporateIncome.Tax(dec(tc.income))
		assert.True(t, dec(tc.want).Equal(got), "income %s: want %s got %s", tc.income, tc.want, got)
	}
}

// Each bracket's base must equal the tax owed at its lower bound under the
// previous bracket, otherwise the schedule jumps.
func TestSchedulesAreContinuous(t *testing.T) {
	for _, s := range []Schedule{IndividualCompensation, CorporateIncome} {
		for i := 1; i < len(s.Brackets); i++ {
			prev, cur := s.Brackets[i-1], s.Brackets[i]
			atBoundary := prev.Base.Add(cur.Over.Sub(prev.Over).Mul(prev.Rate))
			assert.True(t, atBoundary.Equal(cur.Base), "%s bracket %d: base %s, expected %s", s.Name, i, cur.Base, atBoundary)
		}
	}
}

func TestMarginalRate(t *testing.T) {
	assert.True(t, dec("0").Equal(IndividualCompensation.MarginalRate(dec("250000"))))
	assert.True(t, dec("0.2").Equal(IndividualCompensation.MarginalRate(dec("250000.01"))))
	assert.True(t, dec("0.32").Equal(IndividualCompensation.MarginalRate(dec("5000000"))))
	assert.True(t, dec("0.35").Equal(CorporateIncome.MarginalRate(dec("5000000"))))
}
