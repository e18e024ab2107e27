package inmemory

import (
	"context"
	"sync"
)

// repo is an in-process shared state store. It mirrors the external store
// contract for tests and single-process runs.
type repo struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewRepo() *repo {
	return &repo{values: make(map[string]string)}
}

func (r *repo) Get(_ context.Context, key string) (string, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	value, ok := r.values[key]
	return value, ok, nil
}

func (r *repo) Set(_ context.Context, key string, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.values[key] = value
	return nil
}
