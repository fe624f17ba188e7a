package jobs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/odyssey-erp/odyssey-pos/internal/bir"
	"github.com/odyssey-erp/odyssey-pos/internal/bir/records"
	"github.com/odyssey-erp/odyssey-pos/internal/bir/reports"
	"github.com/odyssey-erp/odyssey-pos/internal/bir/store"
	jobmetrics "github.com/odyssey-erp/odyssey-pos/internal/jobs"
)

// FilingService is the part of bir.Service used by the filing jobs.
type FilingService interface {
	Location() *time.Location
	Report(kind reports.ReportType, recs []reports.Record, period reports.Period) (reports.BIRReport, error)
	Form2550M(sales []records.Sale, period reports.Period) (reports.Form2550M, error)
	Form2550MPDF(ctx context.Context, form reports.Form2550M) ([]byte, error)
	Alphalist(employees []records.Employee, year int) ([]reports.AlphalistEntry, error)
}

// FilingStore loads source records and remembers generated filings.
type FilingStore interface {
	ListSales(ctx context.Context, from, to time.Time) ([]records.Sale, error)
	ListActiveEmployees(ctx context.Context) ([]records.Employee, error)
	RecordFiling(ctx context.Context, f store.Filing) (store.Filing, error)
}

// FilingJobConfig wires dependencies required by the filing jobs.
type FilingJobConfig struct {
	Service    FilingService
	Store      FilingStore
	StorageDir string
	Logger     *slog.Logger
	Metrics    *jobmetrics.Metrics
}

// FilingJob generates BIR filings from the queue.
type FilingJob struct {
	service    FilingService
	store      FilingStore
	storageDir string
	logger     *slog.Logger
	metrics    *jobmetrics.Metrics
	clock      func() time.Time
}

// NewFilingJob constructs the filing handlers.
func NewFilingJob(cfg FilingJobConfig) *FilingJob {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &FilingJob{
		service:    cfg.Service,
		store:      cfg.Store,
		storageDir: cfg.StorageDir,
		logger:     logger,
		metrics:    cfg.Metrics,
		clock:      time.Now,
	}
}

// Handlers returns the task registrations for the worker.
func (j *FilingJob) Handlers() []TaskHandler {
	return []TaskHandler{
		{Type: TaskForm2550MGenerate, Handler: j.HandleForm2550M},
		{Type: TaskAlphalistGenerate, Handler: j.HandleAlphalist},
	}
}

// HandleForm2550M files the monthly VAT declaration: the PDF through the
// renderer and the VAT summary as JSON, built concurrently.
func (j *FilingJob) HandleForm2550M(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil || j.service == nil || j.store == nil {
		return errors.New("form 2550M job: not configured")
	}
	var payload Form2550MPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	period, err := j.monthToFile(payload.Period)
	if err != nil {
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}

	tracker := j.metrics.Track(TaskForm2550MGenerate)
	defer func() {
		err = tracker.End(err)
	}()
	logger := j.logger.With(slog.String("task", TaskForm2550MGenerate), slog.String("period", period.String()))

	from, to := period.Bounds()
	sales, err := j.store.ListSales(ctx, from, to)
	if err != nil {
		logger.Error("load sales", slog.Any("error", err))
		return err
	}
	form, err := j.service.Form2550M(sales, period)
	if err != nil {
		return err
	}

	var pdfPath string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		pdf, err := j.service.Form2550MPDF(gctx, form)
		if err != nil {
			return err
		}
		pdfPath, err = j.save(fmt.Sprintf("2550M-%s.pdf", form.Period), pdf)
		return err
	})
	g.Go(func() error {
		summary, err := j.service.Report(reports.ReportVAT, reports.VATRecords(sales), period)
		if err != nil {
			return err
		}
		data, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			return err
		}
		_, err = j.save(fmt.Sprintf("2550M-%s-vat.json", form.Period), data)
		return err
	})
	if err := g.Wait(); err != nil {
		logger.Error("generate form 2550M", slog.Any("error", err))
		return err
	}

	filing, err := j.store.RecordFiling(ctx, store.Filing{
		Form:     bir.FormVAT2550M,
		Period:   form.Period,
		Location: pdfPath,
		Rows:     form.SalesCount,
	})
	if err != nil {
		return err
	}
	j.metrics.AddFiledRows(filing.Form, filing.Period, filing.Rows)
	logger.Info("form 2550M filed",
		slog.String("file", pdfPath),
		slog.Int("sales", form.SalesCount),
		slog.String("output_vat", form.OutputVAT.StringFixed(2)))
	return nil
}

// HandleAlphalist writes the annual alphalist CSV for active employees.
func (j *FilingJob) HandleAlphalist(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil || j.service == nil || j.store == nil {
		return errors.New("alphalist job: not configured")
	}
	var payload AlphalistPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	year := payload.Year
	if year == 0 {
		year = j.now().In(j.service.Location()).Year() - 1
	}
	if year < 1 || year > 9999 {
		return fmt.Errorf("alphalist year %d: %w", year, asynq.SkipRetry)
	}

	tracker := j.metrics.Track(TaskAlphalistGenerate)
	defer func() {
		err = tracker.End(err)
	}()
	logger := j.logger.With(slog.String("task", TaskAlphalistGenerate), slog.Int("year", year))

	employees, err := j.store.ListActiveEmployees(ctx)
	if err != nil {
		logger.Error("load employees", slog.Any("error", err))
		return err
	}
	entries, err := j.service.Alphalist(employees, year)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := reports.WriteAlphalistCSV(&buf, entries); err != nil {
		return err
	}
	path, err := j.save(fmt.Sprintf("alphalist-%d.csv", year), buf.Bytes())
	if err != nil {
		return err
	}
	filing, err := j.store.RecordFiling(ctx, store.Filing{
		Form:     bir.FormAlphalist,
		Period:   fmt.Sprintf("%04d", year),
		Location: path,
		Rows:     len(entries),
	})
	if err != nil {
		return err
	}
	j.metrics.AddFiledRows(filing.Form, filing.Period, filing.Rows)
	logger.Info("alphalist exported", slog.String("file", path), slog.Int("employees", len(entries)))
	return nil
}

// monthToFile resolves the payload period, defaulting to the previous month
// in the service time zone.
func (j *FilingJob) monthToFile(raw string) (reports.Period, error) {
	loc := j.service.Location()
	if raw == "" {
		now := j.now().In(loc)
		prev := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc).AddDate(0, -1, 0)
		p := reports.MonthPeriod(prev.Year(), prev.Month())
		p.Loc = loc
		return p, nil
	}
	p, err := reports.ParsePeriod(raw)
	if err != nil {
		return reports.Period{}, err
	}
	if !p.IsMonthly() {
		return reports.Period{}, fmt.Errorf("%w: got %s", reports.ErrMonthlyPeriodRequired, p)
	}
	p.Loc = loc
	return p, nil
}

func (j *FilingJob) now() time.Time {
	return j.clock()
}

func (j *FilingJob) save(name string, data []byte) (string, error) {
	dir := j.storageDir
	if strings.TrimSpace(dir) == "" {
		dir = filepath.Join(os.TempDir(), "bir-filings")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
