package app

import (
	"fmt"
	"sort"
	"sync"

	"grnseeds/domain/experiment"
	apperrors "grnseeds/internal/errors"
	"grnseeds/ports"
)

// AlgorithmRegistry maps algorithm tags to inference engines. Names that were
// never registered are rejected with UNSUPPORTED_ALGORITHM.
type AlgorithmRegistry struct {
	mu      sync.RWMutex
	engines map[experiment.Algorithm]ports.InferencePort
}

// NewAlgorithmRegistry creates an empty registry
func NewAlgorithmRegistry() *AlgorithmRegistry {
	return &AlgorithmRegistry{engines: make(map[experiment.Algorithm]ports.InferencePort)}
}

// Register binds algorithm to engine, replacing any previous binding
func (r *AlgorithmRegistry) Register(algorithm experiment.Algorithm, engine ports.InferencePort) error {
	if algorithm == "" {
		return apperrors.ValidationError("algorithm name cannot be empty")
	}
	if engine == nil {
		return apperrors.ValidationError(fmt.Sprintf("no engine given for %s", algorithm))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.engines[algorithm] = engine
	return nil
}

// Resolve looks up name exactly as given
func (r *AlgorithmRegistry) Resolve(name string) (experiment.Algorithm, ports.InferencePort, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	algorithm := experiment.Algorithm(name)
	engine, ok := r.engines[algorithm]
	if !ok {
		return "", nil, apperrors.UnsupportedAlgorithm(name)
	}
	return algorithm, engine, nil
}

// Algorithms lists registered names in lexical order
func (r *AlgorithmRegistry) Algorithms() []experiment.Algorithm {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]experiment.Algorithm, 0, len(r.engines))
	for a := range r.engines {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
