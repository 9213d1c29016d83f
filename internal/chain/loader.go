// Copyright 2026 The Batchllm Authors
// SPDX-License-Identifier: MIT

package chain

import (
	"fmt"
	"sort"
	"sync"

	"github.com/davetashner/batchllm/internal/config"
	"github.com/davetashner/batchllm/internal/fault"
	"github.com/davetashner/batchllm/internal/llm"
)

// LoadFunc rebuilds a chain of one type from its serialized config. It may
// call back into l to load nested chains.
type LoadFunc func(l *Loader, cfg Config) (Chain, error)

var (
	mu       sync.RWMutex
	registry = make(map[string]LoadFunc)
)

func init() {
	Register(TypeLLMChain, loadLLMChain)
	Register(TypeStuffDocuments, loadStuffDocumentsChain)
}

// Register adds a loader for a chain type tag. It panics if the tag is
// already registered.
func Register(typ string, fn LoadFunc) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := registry[typ]; exists {
		panic(fmt.Sprintf("chain type already registered: %s", typ))
	}
	registry[typ] = fn
}

// Types returns every registered type tag, sorted.
func Types() []string {
	mu.RLock()
	defer mu.RUnlock()

	types := make([]string, 0, len(registry))
	for t := range registry {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

func lookup(typ string) LoadFunc {
	mu.RLock()
	defer mu.RUnlock()
	return registry[typ]
}

// Loader rebuilds chains from serialized configs.
type Loader struct {
	// Resolver expands nested dependencies. Nil means a config.FileResolver
	// rooted at the working directory.
	Resolver config.Resolver

	// Transports builds the transport named by an engine's type tag.
	Transports llm.Factory
}

// NewLoader returns a Loader that resolves relative references against
// baseDir.
func NewLoader(baseDir string, transports llm.Factory) *Loader {
	return &Loader{
		Resolver:   config.FileResolver{BaseDir: baseDir},
		Transports: transports,
	}
}

// Load dispatches on cfg's type tag.
func (l *Loader) Load(cfg Config) (Chain, error) {
	raw, ok := cfg[TypeKey]
	if !ok {
		return nil, &fault.ConfigResolutionError{Key: TypeKey, Reason: "missing chain type tag"}
	}
	typ, _ := raw.(string)
	fn := lookup(typ)
	if fn == nil {
		return nil, &fault.ConfigResolutionError{
			Key:    TypeKey,
			Reason: fmt.Sprintf("unknown chain type %v (registered: %v)", raw, Types()),
		}
	}
	return fn(l, cfg)
}

// LoadFile reads a serialized chain from path and loads it. The format
// follows the extension.
func (l *Loader) LoadFile(path string) (Chain, error) {
	cfg, err := l.resolver().Resolve("chain", map[string]any{"chain" + config.PathSuffix: path})
	if err != nil {
		return nil, err
	}
	return l.Load(cfg)
}

func (l *Loader) resolver() config.Resolver {
	if l.Resolver == nil {
		return config.FileResolver{}
	}
	return l.Resolver
}

// resetForTesting clears the registry and restores the built-in types.
func resetForTesting() {
	mu.Lock()
	registry = make(map[string]LoadFunc)
	mu.Unlock()

	Register(TypeLLMChain, loadLLMChain)
	Register(TypeStuffDocuments, loadStuffDocumentsChain)
}
