package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-pos/internal/bir/money"
	"github.com/odyssey-erp/odyssey-pos/internal/bir/records"
)

type fakeRows struct {
	data [][]any
	pos  int
	err  error
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return r.err }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.data) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Values() ([]any, error) {
	return r.data[r.pos-1], nil
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.data[r.pos-1]
	if len(dest) != len(row) {
		return fmt.Errorf("scan: %d destinations for %d columns", len(dest), len(row))
	}
	for i, d := range dest {
		switch target := d.(type) {
		case *string:
			*target = row[i].(string)
		case **string:
			if row[i] == nil {
				*target = nil
				continue
			}
			v := row[i].(string)
			*target = &v
		case *time.Time:
			*target = row[i].(time.Time)
		default:
			return fmt.Errorf("scan: unsupported destination %T", d)
		}
	}
	return nil
}

type execCall struct {
	sql  string
	args []any
}

type fakeDB struct {
	results  []*fakeRows
	queries  []execCall
	execs    []execCall
	queryErr error
	execErr  error
}

func (db *fakeDB) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	db.queries = append(db.queries, execCall{sql: sql, args: args})
	if db.queryErr != nil {
		return nil, db.queryErr
	}
	rows := db.results[0]
	db.results = db.results[1:]
	return rows, nil
}

func (db *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	db.execs = append(db.execs, execCall{sql: sql, args: args})
	return pgconn.NewCommandTag("INSERT 0 1"), db.execErr
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestListSalesAttachesItems(t *testing.T) {
	created := time.Date(2024, 3, 5, 2, 0, 0, 0, time.UTC)
	db := &fakeDB{results: []*fakeRows{
		{data: [][]any{
			{"s1", "1000.00", "120.00", "1120.00", "cash", nil, created},
			{"s2", "50.00", "6.00", "56.00", "card", "c1", created.Add(time.Hour)},
		}},
		{data: [][]any{
			{"s1", "p1", "Rice", "2.000", "300.00", "600.00"},
			{"s1", "p2", "Oil", "1.000", "400.00", "400.00"},
			{"s2", "p3", "Candy", "5.000", "10.00", "50.00"},
		}},
	}}
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	sales, err := New(db).ListSales(context.Background(), from, to)
	require.NoError(t, err)
	require.Len(t, sales, 2)

	assert.Equal(t, "s1", sales[0].ID)
	assert.True(t, dec("1120").Equal(sales[0].Total))
	assert.Nil(t, sales[0].CustomerID)
	require.Len(t, sales[0].Items, 2)
	assert.Equal(t, "Oil", sales[0].Items[1].Name)

	assert.Equal(t, records.PaymentCard, sales[1].PaymentMethod)
	require.NotNil(t, sales[1].CustomerID)
	assert.Equal(t, "c1", *sales[1].CustomerID)
	require.Len(t, sales[1].Items, 1)
	assert.True(t, dec("5").Equal(sales[1].Items[0].Quantity))

	require.Len(t, db.queries, 2)
	assert.Equal(t, []any{from, to}, db.queries[0].args)
	assert.Equal(t, []any{[]string{"s1", "s2"}}, db.queries[1].args)
}

func TestListSalesSkipsItemQueryWhenEmpty(t *testing.T) {
	db := &fakeDB{results: []*fakeRows{{}}}
	sales, err := New(db).ListSales(context.Background(), time.Time{}, time.Now())
	require.NoError(t, err)
	assert.Empty(t, sales)
	assert.Len(t, db.queries, 1)
}

func TestListSalesRejectsBadNumeric(t *testing.T) {
	db := &fakeDB{results: []*fakeRows{
		{data: [][]any{{"s1", "abc", "0", "0", "cash", nil, time.Now()}}},
	}}
	_, err := New(db).ListSales(context.Background(), time.Time{}, time.Now())
	require.Error(t, err)
	assert.ErrorIs(t, err, money.ErrInvalidAmount)
	assert.Contains(t, err.Error(), "subtotal")
}

func TestListSalesQueryError(t *testing.T) {
	db := &fakeDB{queryErr: errors.New("connection reset")}
	_, err := New(db).ListSales(context.Background(), time.Time{}, time.Now())
	assert.ErrorContains(t, err, "connection reset")
}

func TestListActiveEmployees(t *testing.T) {
	db := &fakeDB{results: []*fakeRows{
		{data: [][]any{
			{"e1", "Juan", "Dela Cruz", "Santos", "111-222-333-000", "30000.00"},
			{"e2", "Maria", "Clara", nil, nil, "20000.00"},
		}},
	}}
	employees, err := New(db).ListActiveEmployees(context.Background())
	require.NoError(t, err)
	require.Len(t, employees, 2)
	assert.Equal(t, "Dela Cruz, Juan Santos", employees[0].FullName())
	assert.True(t, dec("30000").Equal(employees[0].BasicSalary))
	assert.Nil(t, employees[1].TINNumber)
}

func TestRecordFilingFillsDefaults(t *testing.T) {
	db := &fakeDB{}
	s := New(db)
	fixed := time.Date(2024, 4, 1, 1, 0, 0, 0, time.UTC)
	s.WithNow(func() time.Time { return fixed })

	f, err := s.RecordFiling(context.Background(), Filing{Form: "2550M", Period: "2024-03", Location: "/tmp/2550M-2024-03.pdf", Rows: 12})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, f.ID)
	assert.Equal(t, fixed, f.GeneratedAt)

	require.Len(t, db.execs, 1)
	assert.Contains(t, db.execs[0].sql, "ON CONFLICT (form, period)")
	assert.Equal(t, []any{f.ID, "2550M", "2024-03", "/tmp/2550M-2024-03.pdf", 12, fixed}, db.execs[0].args)
}

func TestRecordFilingValidation(t *testing.T) {
	_, err := New(&fakeDB{}).RecordFiling(context.Background(), Filing{Form: "2550M"})
	assert.ErrorIs(t, err, ErrInvalidFiling)

	_, err = New(&fakeDB{execErr: errors.New("disk full")}).RecordFiling(context.Background(), Filing{Form: "2550M", Period: "2024-03"})
	assert.ErrorContains(t, err, "disk full")
}

func TestMigrateRunsSchema(t *testing.T) {
	db := &fakeDB{}
	require.NoError(t, New(db).Migrate(context.Background()))
	require.Len(t, db.execs, 1)
	assert.Contains(t, db.execs[0].sql, "CREATE TABLE IF NOT EXISTS or_sequences")
	assert.Contains(t, db.execs[0].sql, "bir_filings")
}
