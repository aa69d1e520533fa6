// Package tasks defines the task contract and the type registry task
// packages register themselves into.
package tasks

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/flowstack-io/plugin-aws/internal/runner"
)

// Task is a single executable unit wrapping one AWS operation. Run renders
// the task's templated properties through the run context, issues the SDK
// call(s) and returns the task's output record.
type Task interface {
	Run(ctx context.Context, rc *runner.RunContext) (any, error)
}

// Factory returns a fresh task instance ready for property decoding. Each
// invocation gets its own instance; tasks hold no cross-run state.
type Factory func() Task

var (
	registry      = make(map[string]Factory)
	registryMutex sync.RWMutex
)

// Register adds a task type to the registry. Called from task package init
// functions; duplicate registrations are ignored.
func Register(name string, factory Factory) {
	name = strings.ToLower(name)
	registryMutex.Lock()
	defer registryMutex.Unlock()
	if _, exists := registry[name]; exists {
		return
	}
	registry[name] = factory
}

// Create returns a new instance of the named task type.
func Create(name string) (Task, error) {
	name = strings.ToLower(name)
	registryMutex.RLock()
	factory, exists := registry[name]
	registryMutex.RUnlock()
	if !exists {
		return nil, fmt.Errorf("task type not found: %s", name)
	}
	return factory(), nil
}

// Types lists the registered task type names, sorted.
func Types() []string {
	registryMutex.RLock()
	defer registryMutex.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
