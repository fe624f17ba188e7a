// Package vat computes Philippine value-added tax on a sale amount.
package vat

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-pos/internal/bir/money"
)

// Mode selects how the amount handed to Calculate is treated.
type Mode string

const (
	// ModeExclusive adds VAT on top of the amount.
	ModeExclusive Mode = "EXCLUSIVE"
	// ModeInclusive extracts VAT already contained in the amount.
	ModeInclusive Mode = "INCLUSIVE"
	// ModeExempt marks the sale as VAT-exempt.
	ModeExempt Mode = "EXEMPT"
	// ModeZeroRated marks the sale as zero-rated (export, PEZA, etc).
	ModeZeroRated Mode = "ZERO_RATED"
)

// DefaultRate is the standard 12% VAT rate.
var DefaultRate = decimal.RequireFromString("0.12")

var (
	// ErrInvalidRate indicates a negative VAT rate.
	ErrInvalidRate = errors.New("vat: invalid rate")
	// ErrUnknownMode indicates an unsupported Mode value.
	ErrUnknownMode = errors.New("vat: unknown mode")
)

// Options tunes a calculation. The zero value is exclusive VAT at DefaultRate.
type Options struct {
	Mode Mode
	Rate decimal.Decimal
}

// ParseMode maps user input to a Mode. An empty string is ModeExclusive.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeExclusive:
		return ModeExclusive, nil
	case ModeInclusive, ModeExempt, ModeZeroRated:
		return Mode(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// Summary is the flat view of a Result used for display, JSON and
// reconciliation.
type Summary struct {
	Mode            Mode             `json:"mode"`
	VatableAmount   decimal.Decimal  `json:"vatable_amount"`
	VATAmount       decimal.Decimal  `json:"vat_amount"`
	TotalAmount     decimal.Decimal  `json:"total_amount"`
	VATRate         decimal.Decimal  `json:"vat_rate"`
	ExemptAmount    *decimal.Decimal `json:"exempt_amount,omitempty"`
	ZeroRatedAmount *decimal.Decimal `json:"zero_rated_amount,omitempty"`
}

// Result is implemented by Standard, Exempt and ZeroRated only.
type Result interface {
	Mode() Mode
	Summary() Summary
	sealed()
}

// Standard is a VAT-able sale, computed either exclusive or inclusive.
type Standard struct {
	VatableAmount decimal.Decimal
	VATAmount     decimal.Decimal
	TotalAmount   decimal.Decimal
	Rate          decimal.Decimal
	Inclusive     bool
}

// Mode implements Result.
func (s Standard) Mode() Mode {
	if s.Inclusive {
		return ModeInclusive
	}
	return ModeExclusive
}

// Summary implements Result.
func (s Standard) Summary() Summary {
	return Summary{
		Mode:          s.Mode(),
		VatableAmount: s.VatableAmount,
		VATAmount:     s.VATAmount,
		TotalAmount:   s.TotalAmount,
		VATRate:       s.Rate,
	}
}

func (Standard) sealed() {}

// Exempt is a VAT-exempt sale; the whole amount is reported as exempt.
type Exempt struct {
	ExemptAmount decimal.Decimal
}

// Mode implements Result.
func (Exempt) Mode() Mode { return ModeExempt }

// Summary implements Result.
func (e Exempt) Summary() Summary {
	exempt := e.ExemptAmount
	return Summary{
		Mode:          ModeExempt,
		VatableAmount: decimal.Zero,
		VATAmount:     decimal.Zero,
		TotalAmount:   e.ExemptAmount,
		VATRate:       decimal.Zero,
		ExemptAmount:  &exempt,
	}
}

func (Exempt) sealed() {}

// ZeroRated is a sale taxed at 0%; the amount stays in the vatable base.
type ZeroRated struct {
	ZeroRatedAmount decimal.Decimal
}

// Mode implements Result.
func (ZeroRated) Mode() Mode { return ModeZeroRated }

// Summary implements Result.
func (z ZeroRated) Summary() Summary {
	zero := z.ZeroRatedAmount
	return Summary{
		Mode:            ModeZeroRated,
		VatableAmount:   z.ZeroRatedAmount,
		VATAmount:       decimal.Zero,
		TotalAmount:     z.ZeroRatedAmount,
		VATRate:         decimal.Zero,
		ZeroRatedAmount: &zero,
	}
}

func (ZeroRated) sealed() {}

// Calculate computes VAT for amount. Rounding to centavos happens on the
// final figures only.
func Calculate(amount decimal.Decimal, opts Options) (Result, error) {
	if err := money.RequireNonNegative(amount); err != nil {
		return nil, err
	}
	rate := opts.Rate
	if rate.IsZero() {
		rate = DefaultRate
	}
	if rate.IsNegative() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRate, rate)
	}

	mode, err := ParseMode(string(opts.Mode))
	if err != nil {
		return nil, err
	}

	switch mode {
	case ModeExempt:
		return Exempt{ExemptAmount: money.Round(amount)}, nil
	case ModeZeroRated:
		return ZeroRated{ZeroRatedAmount: money.Round(amount)}, nil
	case ModeInclusive:
		vatable := amount.Div(decimal.NewFromInt(1).Add(rate))
		return Standard{
			VatableAmount: money.Round(vatable),
			VATAmount:     money.Round(amount.Sub(vatable)),
			TotalAmount:   money.Round(amount),
			Rate:          rate,
			Inclusive:     true,
		}, nil
	default:
		tax := money.Round(amount.Mul(rate))
		return Standard{
			VatableAmount: money.Round(amount),
			VATAmount:     tax,
			TotalAmount:   money.Round(amount).Add(tax),
			Rate:          rate,
		}, nil
	}
}

// Exclusive is shorthand for Calculate at the default rate, VAT on top.
func Exclusive(amount decimal.Decimal) (Standard, error) {
	res, err := Calculate(amount, Options{})
	if err != nil {
		return Standard{}, err
	}
	return res.(Standard), nil
}
