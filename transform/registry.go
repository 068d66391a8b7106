// Package transform implements the six concrete stage transforms named in
// the design (logger, uppercaser, rotator, flipper, expander, typewriter)
// and the registry that stands in for dynamic plugin loading: each
// transform registers a constructor under a well-known name, and the
// registry hands back a freshly built stage.Module per call, so using the
// same transform name twice in a pipeline yields two independent
// instances, with no shared process-wide state.
package transform

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/outpostlabs/analyzer/stage"
)

// Constructor builds a fresh, independent stage.Module for a transform
// name. It is the in-process analog of resolving a symbol in a loaded
// plugin module.
type Constructor func(log *zap.SugaredLogger) stage.Module

var (
	registryMu sync.RWMutex
	registry   = map[string]Constructor{}
)

// Register adds ctor under name. Called from each transform file's init,
// analogous to a plugin module exposing its well-known symbols.
func Register(name string, ctor Constructor) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = ctor
}

// ErrUnknownStage is returned by New when name has no registered
// constructor, the in-process analog of a stage name that fails to
// resolve to a loadable module.
var ErrUnknownStage = fmt.Errorf("transform: unknown stage name")

// New resolves name in the registry and constructs a fresh stage.Module.
func New(name string, log *zap.SugaredLogger) (stage.Module, error) {
	registryMu.RLock()
	ctor, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStage, name)
	}
	return ctor(log), nil
}

// Names returns every registered stage name, sorted, for usage messages
// and validation.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// IsRegistered reports whether name resolves to a constructor.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := registry[name]
	return ok
}
