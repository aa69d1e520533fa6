// Package runner provides the execution context handed to task adapters:
// expression rendering, logging, metrics collection, a working directory
// and access to result storage. It is the plugin-side stand-in for the
// workflow host's run context.
package runner

import (
	"fmt"
	"os"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/flowstack-io/plugin-aws/internal/interpolate"
	"github.com/flowstack-io/plugin-aws/internal/models"
)

// RunContext carries everything a task needs from the host for one
// invocation. It is not shared across invocations.
type RunContext struct {
	logger     *logrus.Entry
	workingDir string
	storage    Storage
	variables  map[string]any

	mu      sync.Mutex
	metrics []models.Metric
}

// Option configures a RunContext.
type Option func(*RunContext)

func WithLogger(logger *logrus.Entry) Option {
	return func(r *RunContext) { r.logger = logger }
}

func WithStorage(storage Storage) Option {
	return func(r *RunContext) { r.storage = storage }
}

func WithVariables(variables map[string]any) Option {
	return func(r *RunContext) { r.variables = variables }
}

// NewRunContext builds a run context rooted at workingDir. Without
// WithStorage, stored results stay under the working directory.
func NewRunContext(workingDir string, opts ...Option) (*RunContext, error) {
	r := &RunContext{
		logger:     logrus.NewEntry(logrus.StandardLogger()),
		workingDir: workingDir,
		variables:  map[string]any{},
	}
	for _, opt := range opts {
		opt(r)
	}

	if r.storage == nil {
		storage, err := NewLocalStorage(workingDir)
		if err != nil {
			return nil, err
		}
		r.storage = storage
	}
	return r, nil
}

// Render expands a templated string property. Plain strings pass through;
// `${ ... }` expressions evaluate against the run variables. Non-string
// expression results are formatted, a null result renders empty.
func (r *RunContext) Render(value string) (string, error) {
	rendered, err := r.RenderAny(value)
	if err != nil {
		return "", err
	}
	switch v := rendered.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	default:
		return fmt.Sprint(v), nil
	}
}

// RenderAny expands expressions in an arbitrary decoded value, recursing
// into maps and slices.
func (r *RunContext) RenderAny(value any) (any, error) {
	return interpolate.Traverse(value, r.variables, nil)
}

// RenderStringMap renders every key and value of a templated map.
func (r *RunContext) RenderStringMap(values map[string]string) (map[string]string, error) {
	if values == nil {
		return nil, nil
	}
	rendered := make(map[string]string, len(values))
	for key, value := range values {
		renderedKey, err := r.Render(key)
		if err != nil {
			return nil, err
		}
		renderedValue, err := r.Render(value)
		if err != nil {
			return nil, err
		}
		rendered[renderedKey] = renderedValue
	}
	return rendered, nil
}

func (r *RunContext) Logger() *logrus.Entry {
	return r.logger
}

func (r *RunContext) WorkingDir() string {
	return r.workingDir
}

func (r *RunContext) Storage() Storage {
	return r.storage
}

func (r *RunContext) Variables() map[string]any {
	return r.variables
}

// TempFile creates a file in the working directory with the given
// extension, e.g. ".ndjson". The caller owns the file.
func (r *RunContext) TempFile(ext string) (*os.File, error) {
	return os.CreateTemp(r.workingDir, "*"+ext)
}

// Metric records a measurement for this run.
func (r *RunContext) Metric(metric models.Metric) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.metrics = append(r.metrics, metric)
}

// Metrics returns the measurements collected so far.
func (r *RunContext) Metrics() []models.Metric {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Metric(nil), r.metrics...)
}
