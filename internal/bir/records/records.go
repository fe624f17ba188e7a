// Package records defines the sale and employee shapes the BIR engines
// consume from the POS and HR modules.
package records

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod enumerates how a sale was settled.
type PaymentMethod string

const (
	PaymentCash  PaymentMethod = "cash"
	PaymentCard  PaymentMethod = "card"
	PaymentGCash PaymentMethod = "gcash"
	PaymentMaya  PaymentMethod = "maya"
)

// IsCard reports whether the sale settles through a card acquirer.
func (m PaymentMethod) IsCard() bool {
	return strings.EqualFold(string(m), string(PaymentCard))
}

// SaleItem is a line on a POS sale.
type SaleItem struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Amount    decimal.Decimal `json:"amount"`
}

// Sale is a completed POS transaction.
type Sale struct {
	ID            string          `json:"id"`
	Items         []SaleItem      `json:"items"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Tax           decimal.Decimal `json:"tax"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	CustomerID    *string         `json:"customer_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Employee is the subset of the HR record used by payroll reports.
type Employee struct {
	ID          string          `json:"id"`
	FirstName   string          `json:"first_name"`
	LastName    string          `json:"last_name"`
	MiddleName  *string         `json:"middle_name,omitempty"`
	TINNumber   *string         `json:"tin_number,omitempty"`
	BasicSalary decimal.Decimal `json:"basic_salary"`
}

// FullName renders "Last, First Middle" as used on BIR alphalists.
func (e Employee) FullName() string {
	name := e.LastName + ", " + e.FirstName
	if e.MiddleName != nil && *e.MiddleName != "" {
		name += " " + *e.MiddleName
	}
	return name
}
