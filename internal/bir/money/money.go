// Package money holds the peso primitives shared by the BIR engines.
package money

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Places is the number of fractional digits carried by every public amount.
const Places int32 = 2

// PesoSign replaces the PHP currency code in formatted output.
const PesoSign = "₱"

var (
	// ErrInvalidAmount indicates a negative, NaN, or non-finite monetary input.
	ErrInvalidAmount = errors.New("money: invalid amount")

	// Centavo is the smallest representable peso fraction and the
	// reconciliation tolerance used across validators.
	Centavo = decimal.New(1, -Places)

	printer = message.NewPrinter(language.English)
)

// Round rounds to centavo precision, half away from zero.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// FromFloat converts a float into a centavo-rounded decimal.
func FromFloat(f float64) (decimal.Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrInvalidAmount, f)
	}
	return Round(decimal.NewFromFloat(f)), nil
}

// Parse reads a decimal string such as "1,250.75" or "1250.75".
func Parse(s string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(strings.ReplaceAll(strings.TrimPrefix(strings.TrimSpace(s), PesoSign), ",", ""))
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return d, nil
}

// RequireNonNegative fails with ErrInvalidAmount when d is below zero.
func RequireNonNegative(d decimal.Decimal) error {
	if d.IsNegative() {
		return fmt.Errorf("%w: %s is negative", ErrInvalidAmount, d.String())
	}
	return nil
}

// WithinTolerance reports whether a and b differ by at most one centavo.
func WithinTolerance(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(Centavo)
}

// Sum adds the amounts without intermediate rounding.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// Format renders an amount as "₱1,234.50", with a leading "-" when negative.
func Format(d decimal.Decimal) string {
	rounded := Round(d)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Abs()
	}
	return sign + PesoSign + printer.Sprint(number.Decimal(rounded.InexactFloat64(), number.Scale(int(Places))))
}
