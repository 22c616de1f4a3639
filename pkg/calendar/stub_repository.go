package calendar

import (
	"context"
	"sort"
	"sync"
)

// StubRepository is an in-memory Repository for tests.
type StubRepository struct {
	mu        sync.RWMutex
	calendars map[string]Calendar
}

func NewStubRepository() *StubRepository {
	return &StubRepository{calendars: make(map[string]Calendar)}
}

func (s *StubRepository) Store(ctx context.Context, cal Calendar) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calendars[cal.ID] = cal
	return nil
}

func (s *StubRepository) FindByID(ctx context.Context, id string) (*Calendar, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if cal, ok := s.calendars[id]; ok {
		return &cal, nil
	}
	return nil, nil
}

func (s *StubRepository) FindAll(ctx context.Context) ([]Calendar, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := make([]Calendar, 0, len(s.calendars))
	for _, cal := range s.calendars {
		all = append(all, cal)
	}
	sort.Slice(all, func(a, b int) bool {
		if all[a].Name == all[b].Name {
			return all[a].ID < all[b].ID
		}
		return all[a].Name < all[b].Name
	})
	return all, nil
}

func (s *StubRepository) Update(ctx context.Context, cal Calendar) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.calendars[cal.ID]; !ok {
		return ErrCalendarNotFound
	}
	s.calendars[cal.ID] = cal
	return nil
}

func (s *StubRepository) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.calendars[id]; !ok {
		return ErrCalendarNotFound
	}
	delete(s.calendars, id)
	return nil
}

func (s *StubRepository) SetDefault(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.calendars[id]; !ok {
		return ErrCalendarNotFound
	}
	for key, cal := range s.calendars {
		cal.IsDefault = key == id
		s.calendars[key] = cal
	}
	return nil
}
