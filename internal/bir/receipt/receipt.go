package receipt

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-pos/internal/bir/identifiers"
	"github.com/odyssey-erp/odyssey-pos/internal/bir/money"
	"github.com/odyssey-erp/odyssey-pos/internal/bir/vat"
)

// LineItem is a receipt line.
type LineItem struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
}

// Receipt is the structural record printed on a BIR official receipt.
type Receipt struct {
	ORNumber        string          `json:"or_number" validate:"required"`
	TIN             string          `json:"tin" validate:"required,ph_tin"`
	BusinessName    string          `json:"business_name" validate:"required"`
	BusinessAddress string          `json:"business_address" validate:"required"`
	Date            time.Time       `json:"date"`
	Items           []LineItem      `json:"items"`
	VatableAmount   decimal.Decimal `json:"vatable_amount"`
	VATAmount       decimal.Decimal `json:"vat_amount"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	CustomerTIN     string          `json:"customer_tin,omitempty" validate:"omitempty,ph_tin"`
	CustomerName    string          `json:"customer_name,omitempty"`
}

// ValidationResult lists every problem found on a receipt.
type ValidationResult struct {
	IsValid bool     `json:"is_valid"`
	Errors  []string `json:"errors"`
}

var fieldLabels = map[string]string{
	"ORNumber":        "OR number",
	"TIN":             "TIN",
	"BusinessName":    "business name",
	"BusinessAddress": "business address",
	"CustomerTIN":     "customer TIN",
}

var structValidator = identifiers.NewValidator()

// Validate checks mandatory fields, TIN formats, VAT reconciliation and line
// item arithmetic. It never stops at the first problem.
func Validate(r Receipt) ValidationResult {
	var problems []string

	if err := structValidator.Struct(r); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				problems = append(problems, describeFieldError(fe))
			}
		} else {
			problems = append(problems, err.Error())
		}
	}
	if r.Date.IsZero() {
		problems = append(problems, "date is required")
	}
	if len(r.Items) == 0 {
		problems = append(problems, "at least one item is required")
	}

	problems = append(problems, reconcileVAT(r)...)

	for idx, item := range r.Items {
		expected := item.Quantity.Mul(item.UnitPrice)
		if !money.WithinTolerance(expected, item.Amount) {
			problems = append(problems, fmt.Sprintf("item %d amount %s does not match quantity x unit price %s",
				idx+1, item.Amount.StringFixed(2), money.Round(expected).StringFixed(2)))
		}
	}

	if problems == nil {
		problems = []string{}
	}
	return ValidationResult{IsValid: len(problems) == 0, Errors: problems}
}

func reconcileVAT(r Receipt) []string {
	computed, err := vat.Exclusive(r.VatableAmount)
	if err != nil {
		return []string{fmt.Sprintf("vatable amount is invalid: %v", err)}
	}
	var problems []string
	if !money.WithinTolerance(computed.VATAmount, r.VATAmount) {
		problems = append(problems, fmt.Sprintf("VAT amount %s does not match computed %s",
			r.VATAmount.StringFixed(2), computed.VATAmount.StringFixed(2)))
	}
	if !money.WithinTolerance(computed.TotalAmount, r.TotalAmount) {
		problems = append(problems, fmt.Sprintf("total amount %s does not match computed %s",
			r.TotalAmount.StringFixed(2), computed.TotalAmount.StringFixed(2)))
	}
	return problems
}

func describeFieldError(fe validator.FieldError) string {
	label, ok := fieldLabels[fe.StructField()]
	if !ok {
		label = fe.Field()
	}
	switch fe.Tag() {
	case "required":
		return label + " is required"
	case identifiers.TagTIN:
		return label + " has an invalid format (expected 000-000-000-000)"
	}
	return fmt.Sprintf("%s failed %s validation", label, fe.Tag())
}
