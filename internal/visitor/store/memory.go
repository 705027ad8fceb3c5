package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"portaria/internal/visitor/models"
	"portaria/pkg/platform/sentinel"
)

// InMemory is the test double and single-process implementation of the
// visitor directory.
type InMemory struct {
	mu       sync.RWMutex
	visitors map[uuid.UUID]*models.Visitor
}

func NewInMemory() *InMemory {
	return &InMemory{visitors: make(map[uuid.UUID]*models.Visitor)}
}

func (s *InMemory) Insert(_ context.Context, v *models.Visitor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *v
	s.visitors[v.ID] = &cp
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id uuid.UUID) (*models.Visitor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.visitors[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *v
	return &cp, nil
}

func (s *InMemory) FindMostRecentByCPF(_ context.Context, cpf string) (*models.Visitor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var latest *models.Visitor
	for _, v := range s.visitors {
		if v.CPF != cpf {
			continue
		}
		if latest == nil || v.CreatedAt.After(latest.CreatedAt) {
			latest = v
		}
	}
	if latest == nil {
		return nil, sentinel.ErrNotFound
	}
	cp := *latest
	return &cp, nil
}

func (s *InMemory) ListInRoom(_ context.Context, room string, status models.Status) ([]*models.Visitor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Visitor
	for _, v := range s.visitors {
		if v.Room == room && v.Status == status {
			cp := *v
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *InMemory) List(_ context.Context, filter models.Filter) ([]*models.Visitor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Visitor
	for _, v := range s.visitors {
		if filter != models.FilterAll && models.Filter(v.Status) != filter {
			continue
		}
		cp := *v
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *InMemory) MarkCheckedOut(_ context.Context, id uuid.UUID, operator models.Operator, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.visitors[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	v.Status = models.StatusCheckedOut
	checkOut := now
	v.CheckOutTime = &checkOut
	v.CheckedOutBy = operator.Name
	v.CheckedOutByID = operator.ID
	v.UpdatedAt = now
	return nil
}
