package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEnqueuer struct {
	period string
	year   int
	err    error
}

func (f *fakeEnqueuer) EnqueueForm2550M(_ context.Context, period string) (*asynq.TaskInfo, error) {
	f.period = period
	if f.err != nil {
		return nil, f.err
	}
	if _, err := NewForm2550MTask(period); err != nil {
		return nil, err
	}
	return &asynq.TaskInfo{ID: "task-1", Queue: QueueDefault}, nil
}

func (f *fakeEnqueuer) EnqueueAlphalist(_ context.Context, year int) (*asynq.TaskInfo, error) {
	f.year = year
	if f.err != nil {
		return nil, f.err
	}
	return &asynq.TaskInfo{ID: "task-2", Queue: QueueDefault}, nil
}

func jobsRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Route("/jobs", h.MountRoutes)
	return r
}

func TestHandlerHealthWithoutInspector(t *testing.T) {
	rr := httptest.NewRecorder()
	jobsRouter(NewHandler(nil, nil, nil)).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/jobs/health", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"queue":"default","pending":0}`, rr.Body.String())
}

func TestHandlerEnqueueForm2550M(t *testing.T) {
	enq := &fakeEnqueuer{}
	router := jobsRouter(NewHandler(nil, enq, nil))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/jobs/form2550m?period=2024-03", nil))
	require.Equal(t, http.StatusAccepted, rr.Code)
	assert.Equal(t, "2024-03", enq.period)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, TaskForm2550MGenerate, body["task"])
	assert.Equal(t, "task-1", body["id"])

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/jobs/form2550m?period=2024-Q2", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandlerEnqueueAlphalist(t *testing.T) {
	enq := &fakeEnqueuer{}
	router := jobsRouter(NewHandler(nil, enq, nil))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/jobs/alphalist?year=2023", nil))
	assert.Equal(t, http.StatusAccepted, rr.Code)
	assert.Equal(t, 2023, enq.year)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/jobs/alphalist?year=last", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandlerEnqueueUnavailable(t *testing.T) {
	rr := httptest.NewRecorder()
	jobsRouter(NewHandler(nil, nil, nil)).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/jobs/alphalist", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)

	rr = httptest.NewRecorder()
	enq := &fakeEnqueuer{err: errors.New("redis: connection refused")}
	jobsRouter(NewHandler(nil, enq, nil)).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/jobs/form2550m", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestNewForm2550MTask(t *testing.T) {
	task, err := NewForm2550MTask(" 2024-3 ")
	require.NoError(t, err)
	assert.Equal(t, TaskForm2550MGenerate, task.Type())
	assert.JSONEq(t, `{"period":"2024-03"}`, string(task.Payload()))

	task, err = NewForm2550MTask("")
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(task.Payload()))

	_, err = NewForm2550MTask("2024")
	assert.ErrorIs(t, err, ErrInvalidPayload)
	_, err = NewForm2550MTask("March")
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestNewAlphalistTask(t *testing.T) {
	task, err := NewAlphalistTask(2024)
	require.NoError(t, err)
	assert.JSONEq(t, `{"year":2024}`, string(task.Payload()))

	_, err = NewAlphalistTask(-1)
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestNewServeMuxSkipsIncompleteHandlers(t *testing.T) {
	called := false
	mux := newServeMux([]TaskHandler{
		{Type: "", Handler: func(context.Context, *asynq.Task) error { return nil }},
		{Type: TaskAlphalistGenerate},
		{Type: TaskForm2550MGenerate, Handler: func(context.Context, *asynq.Task) error {
			called = true
			return nil
		}},
	})
	require.NoError(t, mux.ProcessTask(context.Background(), asynq.NewTask(TaskForm2550MGenerate, nil)))
	assert.True(t, called)
	assert.Error(t, mux.ProcessTask(context.Background(), asynq.NewTask(TaskAlphalistGenerate, nil)))
}
