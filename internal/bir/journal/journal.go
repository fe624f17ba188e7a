// Package journal builds double-entry journal entries from POS sales.
package journal

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-pos/internal/bir/money"
	"github.com/odyssey-erp/odyssey-pos/internal/bir/records"
)

// Ledger account names used by sale postings.
const (
	AccountCash            = "Cash"
	AccountCardReceivables = "Card Receivables"
	AccountSalesRevenue    = "Sales Revenue"
	AccountVATPayable      = "VAT Payable"
)

// SourceModule tags entries created from POS sales.
const SourceModule = "pos.sale"

var (
	// ErrUnbalanced indicates debit != credit.
	ErrUnbalanced = errors.New("journal: lines must balance")
	// ErrTooFewLines indicates less than two lines.
	ErrTooFewLines = errors.New("journal: entry requires at least two lines")
)

// Line is one debit or credit posting.
type Line struct {
	Account     string          `json:"account"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description"`
}

// Entry is an ordered, balanced set of lines.
type Entry struct {
	ID           uuid.UUID `json:"id"`
	Date         time.Time `json:"date"`
	SourceModule string    `json:"source_module"`
	SourceID     string    `json:"source_id"`
	Memo         string    `json:"memo"`
	Lines        []Line    `json:"lines"`
}

// TotalDebit sums the debit side.
func (e Entry) TotalDebit() decimal.Decimal {
	total := decimal.Zero
	for _, l := range e.Lines {
		total = total.Add(l.Debit)
	}
	return total
}

// TotalCredit sums the credit side.
func (e Entry) TotalCredit() decimal.Decimal {
	total := decimal.Zero
	for _, l := range e.Lines {
		total = total.Add(l.Credit)
	}
	return total
}

// Validate ensures the entry meets minimum posting criteria.
func (e Entry) Validate() error {
	if len(e.Lines) < 2 {
		return ErrTooFewLines
	}
	for idx, line := range e.Lines {
		if line.Account == "" {
			return fmt.Errorf("journal: line %d missing account", idx)
		}
		if line.Debit.IsNegative() || line.Credit.IsNegative() {
			return fmt.Errorf("journal: line %d negative amount", idx)
		}
		if line.Debit.IsPositive() && line.Credit.IsPositive() {
			return fmt.Errorf("journal: line %d cannot be both debit and credit", idx)
		}
	}
	if !e.TotalDebit().Equal(e.TotalCredit()) {
		return ErrUnbalanced
	}
	return nil
}

// FromSale posts a sale: the settlement account is debited for the total,
// revenue is credited for the subtotal and output VAT for the tax. The VAT
// line is omitted for untaxed sales.
func FromSale(sale records.Sale) (Entry, error) {
	for _, amount := range []decimal.Decimal{sale.Subtotal, sale.Tax, sale.Total} {
		if err := money.RequireNonNegative(amount); err != nil {
			return Entry{}, err
		}
	}
	subtotal := money.Round(sale.Subtotal)
	tax := money.Round(sale.Tax)
	total := money.Round(sale.Total)
	if !subtotal.Add(tax).Equal(total) {
		return Entry{}, fmt.Errorf("%w: sale %s subtotal %s + tax %s != total %s",
			ErrUnbalanced, sale.ID, subtotal, tax, total)
	}

	debitAccount := AccountCash
	if sale.PaymentMethod.IsCard() {
		debitAccount = AccountCardReceivables
	}

	lines := []Line{
		{Account: debitAccount, Debit: total, Credit: decimal.Zero, Description: "Sale " + sale.ID},
		{Account: AccountSalesRevenue, Debit: decimal.Zero, Credit: subtotal, Description: "Sales revenue"},
	}
	if tax.IsPositive() {
		lines = append(lines, Line{Account: AccountVATPayable, Debit: decimal.Zero, Credit: tax, Description: "Output VAT"})
	}

	entry := Entry{
		ID:           uuid.New(),
		Date:         sale.CreatedAt,
		SourceModule: SourceModule,
		SourceID:     sale.ID,
		Memo:         fmt.Sprintf("POS sale %s", sale.ID),
		Lines:        lines,
	}
	if err := entry.Validate(); err != nil {
		return Entry{}, err
	}
	return entry, nil
}
