// Package store provides the ApplicationStore implementations: the volatile
// in-memory reference store plus optional postgres and redis backings.
package store

import (
	"context"
	"sync"

	"bvi/citizenship_backend/internal/citizenship"
)

// Memory is the reference store: a mutex-guarded map, one record per
// applicant. The single mutex makes every read-modify-write sequence appear
// atomic, which is all the per-key serialization contract requires at this
// scale.
type Memory struct {
	mu   sync.Mutex
	apps map[string]citizenship.Application
}

func NewMemory() *Memory {
	return &Memory{apps: make(map[string]citizenship.Application)}
}

func (s *Memory) Put(_ context.Context, app citizenship.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apps[app.ApplicantID] = app
	return nil
}

func (s *Memory) Get(_ context.Context, applicantID string) (citizenship.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.apps[applicantID]
	if !ok {
		return citizenship.Application{}, citizenship.ErrNotFound
	}
	return app, nil
}

func (s *Memory) ListByStatus(_ context.Context, status citizenship.Status) ([]citizenship.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []citizenship.Application
	for _, app := range s.apps {
		if app.Status == status {
			out = append(out, app)
		}
	}
	return out, nil
}

func (s *Memory) CreateIfNoPending(_ context.Context, app citizenship.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.apps[app.ApplicantID]; ok && existing.Status == citizenship.StatusPending {
		return citizenship.ErrDuplicatePending
	}
	s.apps[app.ApplicantID] = app
	return nil
}

func (s *Memory) Mutate(_ context.Context, applicantID string, fn func(citizenship.Application) (citizenship.Application, error)) (citizenship.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.apps[applicantID]
	if !ok {
		return citizenship.Application{}, citizenship.ErrNotFound
	}
	updated, err := fn(app)
	if err != nil {
		return citizenship.Application{}, err
	}
	s.apps[applicantID] = updated
	return updated, nil
}
