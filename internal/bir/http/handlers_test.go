package birhttp

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-pos/internal/bir"
	"github.com/odyssey-erp/odyssey-pos/internal/bir/contributions"
	"github.com/odyssey-erp/odyssey-pos/internal/bir/receipt"
	"github.com/odyssey-erp/odyssey-pos/internal/bir/reports"
	"github.com/odyssey-erp/odyssey-pos/internal/bir/vat"
	"github.com/odyssey-erp/odyssey-pos/internal/bir/withholding"
	"github.com/odyssey-erp/odyssey-pos/internal/platform/httpx"
	_ "github.com/odyssey-erp/odyssey-pos/testing"
)

type stubRenderer struct {
	err error
}

func (s stubRenderer) RenderHTML(ctx context.Context, html string) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []byte("%PDF-1.7\n" + html), nil
}

func newRouter(t *testing.T, renderer bir.HTMLRenderer) http.Handler {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)
	svc := bir.NewService(receipt.NewMemorySequence(), bir.Options{
		Profile: reports.BusinessProfile{
			TIN:            "123-456-789-000",
			RegisteredName: "Odyssey Mart",
			Address:        "1 Ayala Ave, Makati",
			RDOCode:        "047",
		},
		Renderer: renderer,
		Logger:   logger,
	})
	r := chi.NewRouter()
	r.Route("/bir", NewHandler(logger, svc).MountRoutes)
	return r
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeProblem(t *testing.T, rr *httptest.ResponseRecorder) httpx.ProblemDetail {
	t.Helper()
	var p httpx.ProblemDetail
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&p))
	return p
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestVATEndpoint(t *testing.T) {
	h := newRouter(t, nil)

	rr := do(t, h, http.MethodPost, "/bir/vat", `{"amount":"1000"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var sum vat.Summary
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&sum))
	assert.Equal(t, vat.ModeExclusive, sum.Mode)
	assert.True(t, dec("120").Equal(sum.VATAmount))
	assert.True(t, dec("1120").Equal(sum.TotalAmount))

	rr = do(t, h, http.MethodPost, "/bir/vat", `{"amount":"1120","mode":"INCLUSIVE"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&sum))
	assert.True(t, dec("1000").Equal(sum.VatableAmount))

	rr = do(t, h, http.MethodPost, "/bir/vat", `{"amount":"500","mode":"EXEMPT"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&sum))
	require.NotNil(t, sum.ExemptAmount)
	assert.True(t, dec("500").Equal(*sum.ExemptAmount))
}

func TestVATEndpointRejectsBadInput(t *testing.T) {
	h := newRouter(t, nil)

	rr := do(t, h, http.MethodPost, "/bir/vat", `{"amount":"100","mode":"HALF"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	p := decodeProblem(t, rr)
	assert.Equal(t, []string{"mode must be one of [EXCLUSIVE INCLUSIVE EXEMPT ZERO_RATED]"}, p.Errors)

	rr = do(t, h, http.MethodPost, "/bir/vat", `{"amount":"-1"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, decodeProblem(t, rr).Detail, "invalid amount")

	rr = do(t, h, http.MethodPost, "/bir/vat", `{"amount":"100","rate":"-0.12"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = do(t, h, http.MethodPost, "/bir/vat", `{"amount":`)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestWithholdingEndpoint(t *testing.T) {
	h := newRouter(t, nil)

	rr := do(t, h, http.MethodPost, "/bir/withholding", `{"amount":"1000","category":"goods"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	var res withholding.Result
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
	assert.True(t, dec("10").Equal(res.Amount))
	assert.True(t, dec("990").Equal(res.NetAmount))

	rr = do(t, h, http.MethodPost, "/bir/withholding", `{"amount":"1000","category":"rent"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = do(t, h, http.MethodPost, "/bir/withholding", `{"amount":"1000"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, []string{"category is required"}, decodeProblem(t, rr).Errors)
}

func TestEmployeeTaxEndpoint(t *testing.T) {
	h := newRouter(t, nil)

	rr := do(t, h, http.MethodPost, "/bir/employee-tax", `{"monthly_salary":"50000"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	var res employeeTaxResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
	assert.Equal(t, withholding.DefaultExemptions, res.Exemptions)
	assert.True(t, dec("450000").Equal(res.AnnualTaxableIncome))
	assert.True(t, dec("3541.67").Equal(res.MonthlyTax), res.MonthlyTax.String())

	rr = do(t, h, http.MethodPost, "/bir/employee-tax", `{"monthly_salary":"50000","exemptions":-1}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, []string{"exemptions must be at least 0"}, decodeProblem(t, rr).Errors)
}

func TestContributionsEndpoint(t *testing.T) {
	h := newRouter(t, nil)

	rr := do(t, h, http.MethodPost, "/bir/contributions", `{"monthly_salary":"30000"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	var sum contributions.Summary
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&sum))
	assert.True(t, dec("900").Equal(sum.SSS.Employee))
	assert.True(t, dec("750").Equal(sum.PhilHealth.Employee))
	assert.True(t, dec("200").Equal(sum.PagIBIG.Employee))
	assert.True(t, dec("1850").Equal(sum.EmployeeTotal))
}

func TestIdentifiersEndpointListsEveryProblem(t *testing.T) {
	h := newRouter(t, nil)

	rr := do(t, h, http.MethodPost, "/bir/identifiers/validate", `{"tin":"123-456-789-000","sss":"12-3456789-0"}`)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, h, http.MethodPost, "/bir/identifiers/validate", `{"tin":"123456789","pagibig":"1234-5678"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.ElementsMatch(t, []string{
		"tin has an invalid format (expected 000-000-000-000)",
		"pagibig has an invalid format (expected 0000-0000-0000)",
	}, decodeProblem(t, rr).Errors)
}

func TestFormatEndpoint(t *testing.T) {
	h := newRouter(t, nil)

	rr := do(t, h, http.MethodGet, "/bir/format?amount=1234.5", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var res formatResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
	assert.Equal(t, "₱1,234.50", res.Formatted)

	rr = do(t, h, http.MethodGet, "/bir/format?amount=abc", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestIssueORNumbersAreSequential(t *testing.T) {
	h := newRouter(t, nil)

	for _, want := range []string{"0000000001", "0000000002"} {
		rr := do(t, h, http.MethodPost, "/bir/or-numbers", "")
		require.Equal(t, http.StatusCreated, rr.Code)
		var res orNumberResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
		assert.Equal(t, want, res.ORNumber)
	}
}

const validReceiptJSON = `{
	"or_number": "0000000001",
	"tin": "123-456-789-000",
	"business_name": "Odyssey Mart",
	"business_address": "1 Ayala Ave, Makati",
	"date": "2024-03-15T09:30:00+08:00",
	"items": [{"description": "Coffee", "quantity": "2", "unit_price": "50", "amount": "100"}],
	"vatable_amount": "100",
	"vat_amount": "12",
	"total_amount": "112"
}`

func TestValidateReceiptEndpoint(t *testing.T) {
	h := newRouter(t, nil)

	rr := do(t, h, http.MethodPost, "/bir/receipts/validate", validReceiptJSON)
	require.Equal(t, http.StatusOK, rr.Code)
	var res receipt.ValidationResult
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
	assert.True(t, res.IsValid, res.Errors)

	bad := strings.Replace(validReceiptJSON, `"vat_amount": "12"`, `"vat_amount": "15"`, 1)
	rr = do(t, h, http.MethodPost, "/bir/receipts/validate", bad)
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
	assert.False(t, res.IsValid)
	assert.Len(t, res.Errors, 1)
}

func TestReceiptPDFEndpoint(t *testing.T) {
	h := newRouter(t, nil)

	rr := do(t, h, http.MethodPost, "/bir/receipts/pdf", validReceiptJSON)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/pdf", rr.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rr.Body.String(), "%PDF-"))

	bad := strings.Replace(validReceiptJSON, `"tin": "123-456-789-000"`, `"tin": ""`, 1)
	rr = do(t, h, http.MethodPost, "/bir/receipts/pdf", bad)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, []string{"TIN is required"}, decodeProblem(t, rr).Errors)
}

func TestJournalEndpoint(t *testing.T) {
	h := newRouter(t, nil)

	body := `{"id":"s-1","subtotal":"100","tax":"12","total":"112","payment_method":"cash","created_at":"2024-03-01T00:00:00Z"}`
	rr := do(t, h, http.MethodPost, "/bir/journal", body)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var entry struct {
		SourceID string `json:"source_id"`
		Lines    []struct {
			Account string `json:"account"`
		} `json:"lines"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&entry))
	assert.Equal(t, "s-1", entry.SourceID)
	assert.Len(t, entry.Lines, 3)

	unbalanced := strings.Replace(body, `"total":"112"`, `"total":"120"`, 1)
	rr = do(t, h, http.MethodPost, "/bir/journal", unbalanced)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestReportEndpoint(t *testing.T) {
	h := newRouter(t, nil)

	body := `{"type":"VAT","period":"2024-03","records":[
		{"date":"2024-03-02T00:00:00Z","amount":"1000","vat":"120","revenue":"0","expenses":"0"},
		{"date":"2024-04-02T00:00:00Z","amount":"500","vat":"60","revenue":"0","expenses":"0"}
	]}`
	rr := do(t, h, http.MethodPost, "/bir/reports", body)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var report reports.BIRReport
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&report))
	require.NotNil(t, report.VAT)
	assert.Equal(t, 1, report.VAT.RecordCount)

	rr = do(t, h, http.MethodPost, "/bir/reports", `{"type":"VAT","period":"2024-13"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

const salesJSON = `[
	{"id":"a","subtotal":"1000","tax":"120","total":"1120","payment_method":"cash","created_at":"2024-03-02T02:00:00Z"},
	{"id":"b","subtotal":"100","tax":"12","total":"112","payment_method":"card","created_at":"2024-02-02T02:00:00Z"}
]`

func TestForm2550MEndpoint(t *testing.T) {
	h := newRouter(t, nil)

	rr := do(t, h, http.MethodPost, "/bir/forms/2550m", `{"period":"2024-03","sales":`+salesJSON+`}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var form reports.Form2550M
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&form))
	assert.Equal(t, "123-456-789-000", form.TIN)
	assert.Equal(t, 1, form.SalesCount)
	assert.True(t, dec("120").Equal(form.OutputVAT))

	rr = do(t, h, http.MethodPost, "/bir/forms/2550m", `{"period":"2024-Q1","sales":[]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestForm2550MPDFEndpoint(t *testing.T) {
	rr := do(t, newRouter(t, stubRenderer{}), http.MethodPost, "/bir/forms/2550m/pdf", `{"period":"2024-03","sales":`+salesJSON+`}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/pdf", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "2550M-2024-03.pdf")

	rr = do(t, newRouter(t, nil), http.MethodPost, "/bir/forms/2550m/pdf", `{"period":"2024-03","sales":[]}`)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)

	rr = do(t, newRouter(t, stubRenderer{err: errors.New("gotenberg down")}), http.MethodPost, "/bir/forms/2550m/pdf", `{"period":"2024-03","sales":[]}`)
	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.NotContains(t, decodeProblem(t, rr).Detail, "gotenberg down")
}

func TestAlphalistEndpoint(t *testing.T) {
	h := newRouter(t, nil)
	body := `{"year":2024,"employees":[{"id":"e1","first_name":"Jose","last_name":"Rizal","basic_salary":"30000"}]}`

	rr := do(t, h, http.MethodPost, "/bir/alphalist", body)
	require.Equal(t, http.StatusOK, rr.Code)
	var entries []reports.AlphalistEntry
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&entries))
	require.Len(t, entries, 1)
	assert.True(t, dec("17560").Equal(entries[0].TaxWithheld))

	rr = do(t, h, http.MethodPost, "/bir/alphalist?format=csv", body)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rr.Header().Get("Content-Type"))
	rows, err := csv.NewReader(rr.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Rizal", rows[1][2])

	rr = do(t, h, http.MethodPost, "/bir/alphalist", `{"employees":[]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, []string{"year is required"}, decodeProblem(t, rr).Errors)
}
