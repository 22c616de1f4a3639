package task

import (
	"context"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/timegrid/timegrid/internal/event_bus"
)

type Service interface {
	Create(ctx context.Context, content string, projectID string) (Task, error)
	List(ctx context.Context) ([]Task, error)
	Update(ctx context.Context, task Task) (Task, error)
	SetPosition(ctx context.Context, id string, position int) error
	Delete(ctx context.Context, id string) error
}

type ServiceImpl struct {
	repo Repository
	bus  *event_bus.EventBus
}

func NewService(repo Repository, bus *event_bus.EventBus) *ServiceImpl {
	return &ServiceImpl{repo: repo, bus: bus}
}

func (s *ServiceImpl) Create(ctx context.Context, content string, projectID string) (Task, error) {
	max, err := s.repo.MaxPosition(ctx)
	if err != nil {
		return Task{}, err
	}
	task := Task{
		ID:        uuid.New().String(),
		Content:   content,
		Position:  max + 1,
		ProjectID: projectID,
	}
	if err := s.repo.Store(ctx, task); err != nil {
		return Task{}, err
	}
	s.notify(ctx)
	return task, nil
}

func (s *ServiceImpl) List(ctx context.Context) ([]Task, error) {
	return s.repo.FindAll(ctx)
}

func (s *ServiceImpl) Update(ctx context.Context, task Task) (Task, error) {
	current, err := s.repo.FindByID(ctx, task.ID)
	if err != nil {
		return Task{}, err
	}
	if current == nil {
		return Task{}, ErrTaskNotFound
	}
	// Position changes go through SetPosition to keep the list contiguous.
	task.Position = current.Position
	if err := s.repo.Update(ctx, task); err != nil {
		return Task{}, err
	}
	s.notify(ctx)
	return task, nil
}

// SetPosition moves a task to the given position and shifts the tasks in
// between, mirroring a drag in the list UI.
func (s *ServiceImpl) SetPosition(ctx context.Context, id string, position int) error {
	all, err := s.repo.FindAll(ctx)
	if err != nil {
		return err
	}

	moving := -1
	for i, task := range all {
		if task.ID == id {
			moving = i
			break
		}
	}
	if moving == -1 {
		return ErrTaskNotFound
	}
	if position < 0 {
		position = 0
	}
	if position >= len(all) {
		position = len(all) - 1
	}

	task := all[moving]
	all = append(all[:moving], all[moving+1:]...)
	all = append(all[:position], append([]Task{task}, all[position:]...)...)

	for i := range all {
		if all[i].Position == i {
			continue
		}
		all[i].Position = i
		if err := s.repo.Update(ctx, all[i]); err != nil {
			return err
		}
	}
	s.notify(ctx)
	return nil
}

func (s *ServiceImpl) Delete(ctx context.Context, id string) error {
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
	if err := s.bus.Publish(event_bus.NewEvent(ctx, event_bus.TaskChanged, nil)); err != nil {
		log.Warnf("task change notification failed: %v", err)
	}
}
