package birhttp

import (
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-pos/internal/bir/records"
	"github.com/odyssey-erp/odyssey-pos/internal/bir/reports"
)

type vatRequest struct {
	Amount decimal.Decimal  `json:"amount"`
	Mode   string           `json:"mode" validate:"omitempty,oneof=EXCLUSIVE INCLUSIVE EXEMPT ZERO_RATED"`
	Rate   *decimal.Decimal `json:"rate,omitempty"`
}

type withholdingRequest struct {
	Amount   decimal.Decimal `json:"amount"`
	Category string          `json:"category" validate:"required"`
}

type employeeTaxRequest struct {
	MonthlySalary decimal.Decimal `json:"monthly_salary"`
	Exemptions    *int            `json:"exemptions,omitempty" validate:"omitempty,min=0"`
}

type employeeTaxResponse struct {
	MonthlySalary       decimal.Decimal `json:"monthly_salary"`
	Exemptions          int             `json:"exemptions"`
	AnnualTaxableIncome decimal.Decimal `json:"annual_taxable_income"`
	MonthlyTax          decimal.Decimal `json:"monthly_tax"`
}

type contributionsRequest struct {
	MonthlySalary decimal.Decimal `json:"monthly_salary"`
}

type identifiersRequest struct {
	TIN        string `json:"tin,omitempty" validate:"omitempty,ph_tin"`
	SSS        string `json:"sss,omitempty" validate:"omitempty,ph_sss"`
	PhilHealth string `json:"philhealth,omitempty" validate:"omitempty,ph_philhealth"`
	PagIBIG    string `json:"pagibig,omitempty" validate:"omitempty,ph_pagibig"`
}

type orNumberResponse struct {
	ORNumber string `json:"or_number"`
}

type reportRequest struct {
	Type    string           `json:"type" validate:"required,oneof=VAT INCOME_TAX"`
	Period  string           `json:"period" validate:"required"`
	Records []reports.Record `json:"records"`
}

type form2550MRequest struct {
	Period string         `json:"period" validate:"required"`
	Sales  []records.Sale `json:"sales"`
}

type alphalistRequest struct {
	Year      int                `json:"year" validate:"required,min=1900,max=9999"`
	Employees []records.Employee `json:"employees"`
}

type formatResponse struct {
	Amount    decimal.Decimal `json:"amount"`
	Formatted string          `json:"formatted"`
}
