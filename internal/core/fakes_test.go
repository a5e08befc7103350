// ABOUTME: Test doubles for core tests
// ABOUTME: Recording and scripted embedders

package core

import (
	"context"
	"sync"

	"github.com/harper/catmatch/internal/models"
)

// recordingEmbedder wraps HashEmbedder, records inputs, and fails on demand
type recordingEmbedder struct {
	mu       sync.Mutex
	inner    *HashEmbedder
	calls    []string
	failures map[string]error
}

func newRecordingEmbedder() *recordingEmbedder {
	return &recordingEmbedder{inner: NewHashEmbedder(64), failures: map[string]error{}}
}

func (r *recordingEmbedder) Embed(ctx context.Context, text string) (models.Vector, error) {
	r.mu.Lock()
	r.calls = append(r.calls, text)
	err := r.failures[text]
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return r.inner.Embed(ctx, text)
}

func (r *recordingEmbedder) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.calls))
	copy(out, r.calls)
	return out
}

// scriptedEmbedder returns queued errors before succeeding
type scriptedEmbedder struct {
	mu     sync.Mutex
	errs   []error
	calls  int
	result models.Vector
}

func (s *scriptedEmbedder) Embed(ctx context.Context, text string) (models.Vector, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		return nil, err
	}
	return s.result, nil
}

func (s *scriptedEmbedder) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}
