package calendar

import (
	"context"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/timegrid/timegrid/internal/event_bus"
)

type Service interface {
	Create(ctx context.Context, cal Calendar) (Calendar, error)
	Get(ctx context.Context, id string) (Calendar, error)
	List(ctx context.Context) ([]Calendar, error)
	Update(ctx context.Context, cal Calendar) (Calendar, error)
	SetDefault(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

type ServiceImpl struct {
	repo Repository
	bus  *event_bus.EventBus
}

func NewService(repo Repository, bus *event_bus.EventBus) *ServiceImpl {
	return &ServiceImpl{repo: repo, bus: bus}
}

func (s *ServiceImpl) Create(ctx context.Context, cal Calendar) (Calendar, error) {
	if cal.ID == "" {
		cal.ID = uuid.New().String()
	}

	// The first calendar becomes the default automatically.
	existing, err := s.repo.FindAll(ctx)
	if err != nil {
		return Calendar{}, err
	}
	if len(existing) == 0 {
		cal.IsDefault = true
	}

	if err := s.repo.Store(ctx, cal); err != nil {
		return Calendar{}, err
	}
	if cal.IsDefault && len(existing) > 0 {
		if err := s.repo.SetDefault(ctx, cal.ID); err != nil {
			return Calendar{}, err
		}
	}
	s.notify(ctx)
	return cal, nil
}

func (s *ServiceImpl) Get(ctx context.Context, id string) (Calendar, error) {
	found, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return Calendar{}, err
	}
	if found == nil {
		return Calendar{}, ErrCalendarNotFound
	}
	return *found, nil
}

func (s *ServiceImpl) List(ctx context.Context) ([]Calendar, error) {
	return s.repo.FindAll(ctx)
}

func (s *ServiceImpl) Update(ctx context.Context, cal Calendar) (Calendar, error) {
	current, err := s.Get(ctx, cal.ID)
	if err != nil {
		return Calendar{}, err
	}
	if current.ReadOnly {
		return Calendar{}, ErrReadOnlyCalendar
	}

	// The default flag is only changed through SetDefault.
	cal.IsDefault = current.IsDefault
	if err := s.repo.Update(ctx, cal); err != nil {
		return Calendar{}, err
	}
	s.notify(ctx)
	return cal, nil
}

func (s *ServiceImpl) SetDefault(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.SetDefault(ctx, id); err != nil {
		return err
	}
	s.notify(ctx)
	return nil
}

func (s *ServiceImpl) Delete(ctx context.Context, id string) error {
	current, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if current.IsDefault {
		return ErrDefaultCalendar
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.notify(ctx)
	return nil
}

func (s *ServiceImpl) notify(ctx context.Context) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(event_bus.NewEvent(ctx, event_bus.CalendarChanged, nil)); err != nil {
		log.Warnf("calendar change notification failed: %v", err)
	}
}
