// Package store loads POS sales and payroll records from PostgreSQL and
// keeps track of generated filings.
package store

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-pos/internal/bir/money"
	"github.com/odyssey-erp/odyssey-pos/internal/bir/records"
)

// Schema creates the tables read and written by this package.
//
//go:embed schema.sql
var Schema string

// ErrInvalidFiling indicates a filing record is missing its form or period.
var ErrInvalidFiling = errors.New("store: invalid filing")

// DB is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Store reads sales and employees and records filings.
type Store struct {
	db  DB
	now func() time.Time
}

// New constructs a store.
func New(db DB) *Store {
	return &Store{db: db, now: time.Now}
}

// WithNow overrides the clock for testing.
func (s *Store) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Migrate applies Schema. Every statement is idempotent.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("store: migrate: %w", err)
	}
	return nil
}

const listSalesSQL = `
	SELECT id::text, subtotal::text, tax::text, total::text, payment_method,
	       customer_id::text, created_at
	FROM pos_sales
	WHERE status = 'completed' AND created_at >= $1 AND created_at < $2
	ORDER BY created_at, id`

const listSaleItemsSQL = `
	SELECT sale_id::text, product_id::text, name, quantity::text, unit_price::text, amount::text
	FROM pos_sale_items
	WHERE sale_id::text = ANY($1::text[])
	ORDER BY sale_id, line_no`

// ListSales returns completed sales created in [from, to) with their items.
func (s *Store) ListSales(ctx context.Context, from, to time.Time) ([]records.Sale, error) {
	rows, err := s.db.Query(ctx, listSalesSQL, from, to)
	if err != nil {
		return nil, fmt.Errorf("store: list sales: %w", err)
	}
	sales, err := pgx.CollectRows(rows, scanSale)
	if err != nil {
		return nil, fmt.Errorf("store: scan sales: %w", err)
	}
	if len(sales) == 0 {
		return sales, nil
	}

	ids := make([]string, len(sales))
	index := make(map[string]int, len(sales))
	for i, sale := range sales {
		ids[i] = sale.ID
		index[sale.ID] = i
	}
	rows, err = s.db.Query(ctx, listSaleItemsSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("store: list sale items: %w", err)
	}
	items, err := pgx.CollectRows(rows, scanSaleItem)
	if err != nil {
		return nil, fmt.Errorf("store: scan sale items: %w", err)
	}
	for _, item := range items {
		if i, ok := index[item.saleID]; ok {
			sales[i].Items = append(sales[i].Items, item.SaleItem)
		}
	}
	return sales, nil
}

const listActiveEmployeesSQL = `
	SELECT id::text, first_name, last_name, middle_name, tin_number, basic_salary::text
	FROM employees
	WHERE active
	ORDER BY last_name, first_name, id`

// ListActiveEmployees returns employees included in payroll filings.
func (s *Store) ListActiveEmployees(ctx context.Context) ([]records.Employee, error) {
	rows, err := s.db.Query(ctx, listActiveEmployeesSQL)
	if err != nil {
		return nil, fmt.Errorf("store: list employees: %w", err)
	}
	employees, err := pgx.CollectRows(rows, scanEmployee)
	if err != nil {
		return nil, fmt.Errorf("store: scan employees: %w", err)
	}
	return employees, nil
}

// Filing describes a generated BIR document.
type Filing struct {
	ID          uuid.UUID `json:"id"`
	Form        string    `json:"form"`
	Period      string    `json:"period"`
	Location    string    `json:"location"`
	Rows        int       `json:"rows"`
	GeneratedAt time.Time `json:"generated_at"`
}

const recordFilingSQL = `
	INSERT INTO bir_filings (id, form, period, location, row_count, generated_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (form, period)
	DO UPDATE SET location = EXCLUDED.location,
		row_count = EXCLUDED.row_count,
		generated_at = EXCLUDED.generated_at`

// RecordFiling upserts filing metadata. Regenerating a form for the same
// period replaces the earlier record. Missing ID and GeneratedAt are filled in.
func (s *Store) RecordFiling(ctx context.Context, f Filing) (Filing, error) {
	if f.Form == "" || f.Period == "" {
		return Filing{}, fmt.Errorf("%w: form and period required", ErrInvalidFiling)
	}
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	if f.GeneratedAt.IsZero() {
		f.GeneratedAt = s.now().UTC()
	}
	if _, err := s.db.Exec(ctx, recordFilingSQL, f.ID, f.Form, f.Period, f.Location, f.Rows, f.GeneratedAt); err != nil {
		return Filing{}, fmt.Errorf("store: record filing %s %s: %w", f.Form, f.Period, err)
	}
	return f, nil
}

func scanSale(row pgx.CollectableRow) (records.Sale, error) {
	var (
		sale                 records.Sale
		subtotal, tax, total string
		method               string
		customerID           *string
	)
	if err := row.Scan(&sale.ID, &subtotal, &tax, &total, &method, &customerID, &sale.CreatedAt); err != nil {
		return records.Sale{}, err
	}
	var err error
	if sale.Subtotal, err = parseAmount("subtotal", subtotal); err != nil {
		return records.Sale{}, err
	}
	if sale.Tax, err = parseAmount("tax", tax); err != nil {
		return records.Sale{}, err
	}
	if sale.Total, err = parseAmount("total", total); err != nil {
		return records.Sale{}, err
	}
	sale.PaymentMethod = records.PaymentMethod(method)
	sale.CustomerID = customerID
	return sale, nil
}

type saleItemRow struct {
	records.SaleItem
	saleID string
}

func scanSaleItem(row pgx.CollectableRow) (saleItemRow, error) {
	var (
		item                    saleItemRow
		quantity, price, amount string
	)
	if err := row.Scan(&item.saleID, &item.ProductID, &item.Name, &quantity, &price, &amount); err != nil {
		return saleItemRow{}, err
	}
	var err error
	if item.Quantity, err = parseAmount("quantity", quantity); err != nil {
		return saleItemRow{}, err
	}
	if item.UnitPrice, err = parseAmount("unit_price", price); err != nil {
		return saleItemRow{}, err
	}
	if item.Amount, err = parseAmount("amount", amount); err != nil {
		return saleItemRow{}, err
	}
	return item, nil
}

func scanEmployee(row pgx.CollectableRow) (records.Employee, error) {
	var (
		e      records.Employee
		salary string
	)
	if err := row.Scan(&e.ID, &e.FirstName, &e.LastName, &e.MiddleName, &e.TINNumber, &salary); err != nil {
		return records.Employee{}, err
	}
	var err error
	if e.BasicSalary, err = parseAmount("basic_salary", salary); err != nil {
		return records.Employee{}, err
	}
	return e, nil
}

func parseAmount(column, raw string) (decimal.Decimal, error) {
	d, err := money.Parse(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("store: column %s: %w", column, err)
	}
	return d, nil
}
