package birhttp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/odyssey-pos/internal/bir"
	"github.com/odyssey-erp/odyssey-pos/internal/bir/contributions"
	"github.com/odyssey-erp/odyssey-pos/internal/bir/identifiers"
	"github.com/odyssey-erp/odyssey-pos/internal/bir/journal"
	"github.com/odyssey-erp/odyssey-pos/internal/bir/money"
	"github.com/odyssey-erp/odyssey-pos/internal/bir/receipt"
	"github.com/odyssey-erp/odyssey-pos/internal/bir/records"
	"github.com/odyssey-erp/odyssey-pos/internal/bir/reports"
	"github.com/odyssey-erp/odyssey-pos/internal/bir/vat"
	"github.com/odyssey-erp/odyssey-pos/internal/bir/withholding"
	"github.com/odyssey-erp/odyssey-pos/internal/platform/httpx"
)

// Service is the subset of bir.Service used by the handlers.
type Service interface {
	IssueORNumber(ctx context.Context) (string, error)
	ValidateReceipt(r receipt.Receipt) receipt.ValidationResult
	ReceiptPDF(r receipt.Receipt) ([]byte, error)
	JournalForSale(sale records.Sale) (journal.Entry, error)
	Report(kind reports.ReportType, recs []reports.Record, period reports.Period) (reports.BIRReport, error)
	Form2550M(sales []records.Sale, period reports.Period) (reports.Form2550M, error)
	Form2550MPDF(ctx context.Context, form reports.Form2550M) ([]byte, error)
	Alphalist(employees []records.Employee, year int) ([]reports.AlphalistEntry, error)
}

// Handler serves the BIR compliance API.
type Handler struct {
	logger   *slog.Logger
	service  Service
	validate *validator.Validate
}

// NewHandler constructs the BIR HTTP handler.
func NewHandler(logger *slog.Logger, service Service) *Handler {
	v := identifiers.NewValidator()
	v.RegisterTagNameFunc(jsonFieldName)
	return &Handler{logger: logger, service: service, validate: v}
}

func (h *Handler) handleVAT(w http.ResponseWriter, r *http.Request) {
	var req vatRequest
	if !h.decode(w, r, &req) {
		return
	}
	mode, err := vat.ParseMode(req.Mode)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	opts := vat.Options{Mode: mode}
	if req.Rate != nil {
		opts.Rate = *req.Rate
	}
	result, err := vat.Calculate(req.Amount, opts)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result.Summary())
}

func (h *Handler) handleWithholding(w http.ResponseWriter, r *http.Request) {
	var req withholdingRequest
	if !h.decode(w, r, &req) {
		return
	}
	category, err := withholding.ParseCategory(req.Category)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	result, err := withholding.Calculate(req.Amount, category)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) handleEmployeeTax(w http.ResponseWriter, r *http.Request) {
	var req employeeTaxRequest
	if !h.decode(w, r, &req) {
		return
	}
	exemptions := withholding.DefaultExemptions
	if req.Exemptions != nil {
		exemptions = *req.Exemptions
	}
	tax, err := withholding.EmployeeMonthlyTax(req.MonthlySalary, exemptions)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, employeeTaxResponse{
		MonthlySalary:       req.MonthlySalary,
		Exemptions:          exemptions,
		AnnualTaxableIncome: money.Round(withholding.AnnualTaxableCompensation(req.MonthlySalary, exemptions)),
		MonthlyTax:          tax,
	})
}

func (h *Handler) handleContributions(w http.ResponseWriter, r *http.Request) {
	var req contributionsRequest
	if !h.decode(w, r, &req) {
		return
	}
	summary, err := contributions.Compute(req.MonthlySalary)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) handleIdentifiers(w http.ResponseWriter, r *http.Request) {
	var req identifiersRequest
	if !h.decode(w, r, &req) {
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"valid": true})
}

func (h *Handler) handleFormat(w http.ResponseWriter, r *http.Request) {
	amount, err := money.Parse(r.URL.Query().Get("amount"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, formatResponse{Amount: money.Round(amount), Formatted: money.Format(amount)})
}

func (h *Handler) handleIssueORNumber(w http.ResponseWriter, r *http.Request) {
	number, err := h.service.IssueORNumber(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, orNumberResponse{ORNumber: number})
}

func (h *Handler) handleValidateReceipt(w http.ResponseWriter, r *http.Request) {
	var rec receipt.Receipt
	if err := httpx.DecodeJSON(r, &rec); err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, h.service.ValidateReceipt(rec))
}

func (h *Handler) handleReceiptPDF(w http.ResponseWriter, r *http.Request) {
	var rec receipt.Receipt
	if err := httpx.DecodeJSON(r, &rec); err != nil {
		h.respondError(w, r, err)
		return
	}
	pdf, err := h.service.ReceiptPDF(rec)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writePDF(w, "OR-"+rec.ORNumber+".pdf", pdf)
}

func (h *Handler) handleJournal(w http.ResponseWriter, r *http.Request) {
	var sale records.Sale
	if err := httpx.DecodeJSON(r, &sale); err != nil {
		h.respondError(w, r, err)
		return
	}
	entry, err := h.service.JournalForSale(sale)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	var req reportRequest
	if !h.decode(w, r, &req) {
		return
	}
	period, err := reports.ParsePeriod(req.Period)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	report, err := h.service.Report(reports.ReportType(req.Type), req.Records, period)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) buildForm2550M(w http.ResponseWriter, r *http.Request) (reports.Form2550M, bool) {
	var req form2550MRequest
	if !h.decode(w, r, &req) {
		return reports.Form2550M{}, false
	}
	period, err := reports.ParsePeriod(req.Period)
	if err != nil {
		h.respondError(w, r, err)
		return reports.Form2550M{}, false
	}
	form, err := h.service.Form2550M(req.Sales, period)
	if err != nil {
		h.respondError(w, r, err)
		return reports.Form2550M{}, false
	}
	return form, true
}

func (h *Handler) handleForm2550M(w http.ResponseWriter, r *http.Request) {
	form, ok := h.buildForm2550M(w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, form)
}

func (h *Handler) handleForm2550MPDF(w http.ResponseWriter, r *http.Request) {
	form, ok := h.buildForm2550M(w, r)
	if !ok {
		return
	}
	pdf, err := h.service.Form2550MPDF(r.Context(), form)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writePDF(w, "2550M-"+form.Period+".pdf", pdf)
}

func (h *Handler) handleAlphalist(w http.ResponseWriter, r *http.Request) {
	var req alphalistRequest
	if !h.decode(w, r, &req) {
		return
	}
	entries, err := h.service.Alphalist(req.Employees, req.Year)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if r.URL.Query().Get("format") != "csv" {
		httpx.JSON(w, http.StatusOK, entries)
		return
	}
	var buf bytes.Buffer
	if err := reports.WriteAlphalistCSV(&buf, entries); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=alphalist-%d.csv", req.Year))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// decode reads and validates a request body, writing the problem response
// itself on failure.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := httpx.DecodeJSON(r, target); err != nil {
		h.respondError(w, r, err)
		return false
	}
	if err := h.validate.Struct(target); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			h.respondError(w, r, err)
			return false
		}
		problems := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			problems = append(problems, describeFieldError(fe))
		}
		httpx.ValidationProblem(w, problems)
		return false
	}
	return true
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	var invalid *bir.InvalidReceiptError
	if errors.As(err, &invalid) {
		httpx.ValidationProblem(w, invalid.Problems)
		return
	}
	switch {
	case isValidationError(err):
		httpx.RespondError(w, fmt.Errorf("%w: %w", httpx.ErrValidation, err))
	case errors.Is(err, bir.ErrPDFUnavailable):
		httpx.RespondError(w, fmt.Errorf("%w: %w", httpx.ErrUnavailable, err))
	case errors.Is(err, bir.ErrRenderFailed):
		h.logger.Error("render pdf", slog.String("path", r.URL.Path), slog.Any("error", err))
		httpx.RespondError(w, fmt.Errorf("%w: pdf rendering failed", httpx.ErrUpstream))
	default:
		h.logger.Error("bir request failed", slog.String("path", r.URL.Path), slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}

var validationErrors = []error{
	httpx.ErrValidation,
	money.ErrInvalidAmount,
	vat.ErrInvalidRate,
	vat.ErrUnknownMode,
	withholding.ErrUnknownCategory,
	withholding.ErrInvalidExemptions,
	reports.ErrInvalidPeriod,
	reports.ErrMonthlyPeriodRequired,
	reports.ErrUnknownReportType,
	journal.ErrUnbalanced,
	journal.ErrTooFewLines,
}

func isValidationError(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

var identifierFormats = map[string]string{
	identifiers.TagTIN:        "000-000-000-000",
	identifiers.TagSSS:        "00-0000000-0",
	identifiers.TagPhilHealth: "00-000000000-0",
	identifiers.TagPagIBIG:    "0000-0000-0000",
}

func describeFieldError(fe validator.FieldError) string {
	if format, ok := identifierFormats[fe.Tag()]; ok {
		return fmt.Sprintf("%s has an invalid format (expected %s)", fe.Field(), format)
	}
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	}
	return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
}

func jsonFieldName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return field.Name
	}
	return name
}

func writePDF(w http.ResponseWriter, filename string, pdf []byte) {
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "inline; filename="+filename)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}
