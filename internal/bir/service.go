// Package bir wires the BIR compliance engines into a service used by the
// HTTP API, the CLI and the filing worker.
package bir

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/odyssey-erp/odyssey-pos/internal/bir/journal"
	"github.com/odyssey-erp/odyssey-pos/internal/bir/receipt"
	"github.com/odyssey-erp/odyssey-pos/internal/bir/records"
	"github.com/odyssey-erp/odyssey-pos/internal/bir/reports"
	"github.com/odyssey-erp/odyssey-pos/internal/observability"
)

// Form names used in metrics, task payloads and filing records.
const (
	FormVAT2550M  = "2550M"
	FormAlphalist = "alphalist"
)

var (
	// ErrInvalidReceipt is returned when printing a receipt that fails validation.
	ErrInvalidReceipt = errors.New("bir: invalid receipt")
	// ErrPDFUnavailable indicates no HTML to PDF renderer is configured.
	ErrPDFUnavailable = errors.New("bir: pdf renderer unavailable")
	// ErrRenderFailed indicates the HTML to PDF renderer returned an error.
	ErrRenderFailed = errors.New("bir: pdf render failed")
)

// InvalidReceiptError lists every problem found on a receipt.
type InvalidReceiptError struct {
	Problems []string
}

func (e *InvalidReceiptError) Error() string {
	return ErrInvalidReceipt.Error() + ": " + strings.Join(e.Problems, "; ")
}

func (e *InvalidReceiptError) Unwrap() error {
	return ErrInvalidReceipt
}

// HTMLRenderer converts an HTML document into PDF bytes.
type HTMLRenderer interface {
	RenderHTML(ctx context.Context, html string) ([]byte, error)
}

// Options configures a Service. Zero values fall back to UTC, a discarding
// logger and no metrics.
type Options struct {
	Profile  reports.BusinessProfile
	Location *time.Location
	Renderer HTMLRenderer
	Metrics  *observability.Metrics
	Logger   *slog.Logger
}

// Service coordinates OR issuance, receipt checks, journal drafting and
// filing generation.
type Service struct {
	orNumbers *receipt.Generator
	profile   reports.BusinessProfile
	loc       *time.Location
	renderer  HTMLRenderer
	metrics   *observability.Metrics
	logger    *slog.Logger
}

// NewService constructs the BIR service around the OR sequence provider.
func NewService(seq receipt.SequenceProvider, opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		orNumbers: receipt.NewGenerator(seq),
		profile:   opts.Profile,
		loc:       loc,
		renderer:  opts.Renderer,
		metrics:   opts.Metrics,
		logger:    logger,
	}
}

// Profile returns the registered business identity.
func (s *Service) Profile() reports.BusinessProfile {
	return s.profile
}

// Location returns the time zone used for period matching.
func (s *Service) Location() *time.Location {
	return s.loc
}

// IssueORNumber returns the next zero-padded official receipt number.
func (s *Service) IssueORNumber(ctx context.Context) (string, error) {
	number, err := s.orNumbers.Next(ctx)
	if err != nil {
		s.logger.Error("issue OR number", slog.Any("error", err))
		return "", err
	}
	s.metrics.ObserveORIssued()
	s.logger.Debug("issued OR number", slog.String("or_number", number))
	return number, nil
}

// ValidateReceipt checks a receipt and records the outcome.
func (s *Service) ValidateReceipt(r receipt.Receipt) receipt.ValidationResult {
	result := receipt.Validate(r)
	s.metrics.ObserveReceiptValidation(result.IsValid)
	if !result.IsValid {
		s.logger.Warn("receipt failed validation",
			slog.String("or_number", r.ORNumber),
			slog.Int("problems", len(result.Errors)))
	}
	return result
}

// ReceiptPDF prints a receipt after validating it.
func (s *Service) ReceiptPDF(r receipt.Receipt) ([]byte, error) {
	if result := s.ValidateReceipt(r); !result.IsValid {
		return nil, &InvalidReceiptError{Problems: result.Errors}
	}
	return receipt.RenderPDF(r)
}

// JournalForSale drafts the balanced journal entry for a completed sale.
func (s *Service) JournalForSale(sale records.Sale) (journal.Entry, error) {
	entry, err := journal.FromSale(sale)
	if err != nil {
		s.logger.Warn("sale journal rejected", slog.String("sale_id", sale.ID), slog.Any("error", err))
		return journal.Entry{}, err
	}
	return entry, nil
}

// Report aggregates VAT or income tax records for a period.
func (s *Service) Report(kind reports.ReportType, recs []reports.Record, period reports.Period) (reports.BIRReport, error) {
	return reports.GenerateBIRReport(kind, recs, s.localize(period))
}

// Form2550M summarises the month's sales under the configured profile.
func (s *Service) Form2550M(sales []records.Sale, period reports.Period) (reports.Form2550M, error) {
	form, err := reports.GenerateForm2550M(s.profile, sales, s.localize(period))
	if err != nil {
		return reports.Form2550M{}, err
	}
	s.metrics.ObserveFormGenerated(FormVAT2550M)
	s.logger.Info("generated form 2550M",
		slog.String("period", form.Period),
		slog.Int("sales", form.SalesCount),
		slog.String("output_vat", form.OutputVAT.StringFixed(2)))
	return form, nil
}

// Form2550MPDF renders a generated declaration to PDF.
func (s *Service) Form2550MPDF(ctx context.Context, form reports.Form2550M) ([]byte, error) {
	if s.renderer == nil {
		return nil, ErrPDFUnavailable
	}
	html, err := reports.RenderForm2550MHTML(form)
	if err != nil {
		return nil, err
	}
	pdf, err := s.renderer.RenderHTML(ctx, html)
	if err != nil {
		return nil, fmt.Errorf("%w: form 2550M: %w", ErrRenderFailed, err)
	}
	return pdf, nil
}

// Alphalist builds the annual employee alphalist.
func (s *Service) Alphalist(employees []records.Employee, year int) ([]reports.AlphalistEntry, error) {
	entries, err := reports.GenerateAlphalist(employees, year)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveFormGenerated(FormAlphalist)
	s.logger.Info("generated alphalist", slog.Int("year", year), slog.Int("employees", len(entries)))
	return entries, nil
}

func (s *Service) localize(p reports.Period) reports.Period {
	if p.Loc == nil {
		p.Loc = s.loc
	}
	return p
}
