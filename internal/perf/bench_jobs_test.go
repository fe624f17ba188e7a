package perf

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/odyssey-erp/odyssey-pos/internal/bir"
	"github.com/odyssey-erp/odyssey-pos/internal/bir/records"
	"github.com/odyssey-erp/odyssey-pos/internal/bir/store"
	jobmetrics "github.com/odyssey-erp/odyssey-pos/internal/jobs"
	"github.com/odyssey-erp/odyssey-pos/jobs"
)

type staticStore struct {
	sales []records.Sale
}

func (s staticStore) ListSales(context.Context, time.Time, time.Time) ([]records.Sale, error) {
	return s.sales, nil
}

func (s staticStore) ListActiveEmployees(context.Context) ([]records.Employee, error) {
	return nil, nil
}

func (s staticStore) RecordFiling(_ context.Context, f store.Filing) (store.Filing, error) {
	return f, nil
}

type flakyRenderer struct {
	calls int
	every int
}

func (r *flakyRenderer) RenderHTML(context.Context, string) ([]byte, error) {
	r.calls++
	if r.every > 0 && r.calls%r.every == 0 {
		return nil, errors.New("gotenberg: 503")
	}
	return []byte("%PDF-1.4"), nil
}

func TestFilingJobThroughputAndReliability(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := jobmetrics.NewMetrics(reg)
	renderer := &flakyRenderer{every: 20}
	job := jobs.NewFilingJob(jobs.FilingJobConfig{
		Service:    bir.NewService(nil, bir.Options{Renderer: renderer}),
		Store:      staticStore{sales: monthOfSales(5000)},
		StorageDir: t.TempDir(),
		Metrics:    metrics,
	})

	task, err := jobs.NewForm2550MTask("2024-03")
	if err != nil {
		t.Fatalf("build task: %v", err)
	}
	for i := 0; i < 40; i++ {
		_ = job.HandleForm2550M(context.Background(), task)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	success := metricValue(t, families, "odyssey_jobs_total", map[string]string{"job": jobs.TaskForm2550MGenerate, "status": "success"})
	failure := metricValue(t, families, "odyssey_jobs_total", map[string]string{"job": jobs.TaskForm2550MGenerate, "status": "failure"})
	if success+failure != 40 {
		t.Fatalf("expected 40 runs, got %v", success+failure)
	}
	if ratio := success / (success + failure); ratio < 0.9 {
		t.Fatalf("form 2550M success ratio too low: %f", ratio)
	}

	mean := histogramMean(t, families, "odyssey_job_duration_seconds", map[string]string{"job": jobs.TaskForm2550MGenerate})
	if mean > 2.0 {
		t.Fatalf("form 2550M duration above budget: %f", mean)
	}

	rows := metricValue(t, families, "odyssey_bir_filing_rows_total", map[string]string{"form": bir.FormVAT2550M, "period": "2024-03"})
	if rows != success*5000 {
		t.Fatalf("expected %v filed rows, got %v", success*5000, rows)
	}
}

func metricValue(t *testing.T, families []*dto.MetricFamily, name string, labels map[string]string) float64 {
	t.Helper()
	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}
		for _, metric := range fam.GetMetric() {
			if hasLabels(metric, labels) {
				if fam.GetType() == dto.MetricType_COUNTER {
					return metric.GetCounter().GetValue()
				}
				if fam.GetType() == dto.MetricType_GAUGE {
					return metric.GetGauge().GetValue()
				}
			}
		}
	}
	t.Fatalf("metric %s with labels %v not found", name, labels)
	return 0
}

func histogramMean(t *testing.T, families []*dto.MetricFamily, name string, labels map[string]string) float64 {
	t.Helper()
	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}
		for _, metric := range fam.GetMetric() {
			if hasLabels(metric, labels) {
				hist := metric.GetHistogram()
				if hist == nil || hist.GetSampleCount() == 0 {
					t.Fatalf("histogram %s missing samples", name)
				}
				return hist.GetSampleSum() / float64(hist.GetSampleCount())
			}
		}
	}
	t.Fatalf("histogram %s with labels %v not found", name, labels)
	return 0
}

func hasLabels(metric *dto.Metric, labels map[string]string) bool {
	for _, lp := range metric.GetLabel() {
		if val, ok := labels[lp.GetName()]; ok {
			if lp.GetValue() != val {
				return false
			}
		}
	}
	for key := range labels {
		found := false
		for _, lp := range metric.GetLabel() {
			if lp.GetName() == key {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
