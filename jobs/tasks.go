package jobs

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/odyssey-pos/internal/bir/reports"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskForm2550MGenerate files the monthly VAT declaration.
	TaskForm2550MGenerate = "bir:form2550m:generate"
	// TaskAlphalistGenerate exports the annual employee alphalist.
	TaskAlphalistGenerate = "bir:alphalist:generate"
)

// ErrInvalidPayload is returned when a task cannot be built from its input.
var ErrInvalidPayload = errors.New("jobs: invalid payload")

// Form2550MPayload selects the month to file. An empty Period means the
// month before the job runs.
type Form2550MPayload struct {
	Period string `json:"period,omitempty"`
}

// AlphalistPayload selects the year to export. Zero means the year before
// the job runs.
type AlphalistPayload struct {
	Year int `json:"year,omitempty"`
}

// NewForm2550MTask constructs an Asynq task.
func NewForm2550MTask(period string) (*asynq.Task, error) {
	period = strings.TrimSpace(period)
	if period != "" {
		p, err := reports.ParsePeriod(period)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
		}
		if !p.IsMonthly() {
			return nil, fmt.Errorf("%w: period %s is not a month", ErrInvalidPayload, period)
		}
		period = p.String()
	}
	data, err := json.Marshal(Form2550MPayload{Period: period})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskForm2550MGenerate, data), nil
}

// NewAlphalistTask constructs an Asynq task.
func NewAlphalistTask(year int) (*asynq.Task, error) {
	if year < 0 || year > 9999 {
		return nil, fmt.Errorf("%w: alphalist year %d", ErrInvalidPayload, year)
	}
	data, err := json.Marshal(AlphalistPayload{Year: year})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAlphalistGenerate, data), nil
}
