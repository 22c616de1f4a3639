package task

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/timegrid/timegrid/internal/event_bus"
)

type ProjectService interface {
	Create(ctx context.Context, name string, parentID string) (Project, error)
	List(ctx context.Context) ([]Project, error)
	Update(ctx context.Context, project Project) (Project, error)
	SetPosition(ctx context.Context, id string, position int) error
	SetDefault(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

type ProjectServiceImpl struct {
	repo ProjectRepository
	bus  *event_bus.EventBus
}

func NewProjectService(repo ProjectRepository, bus *event_bus.EventBus) *ProjectServiceImpl {
	return &ProjectServiceImpl{repo: repo, bus: bus}
}

func (s *ProjectServiceImpl) Create(ctx context.Context, name string, parentID string) (Project, error) {
	if parentID != "" {
		parent, err := s.repo.FindByID(ctx, parentID)
		if err != nil {
			return Project{}, err
		}
		if parent == nil {
			return Project{}, fmt.Errorf("parent: %w", ErrProjectNotFound)
		}
	}
	max, err := s.repo.MaxDisplayOrder(ctx)
	if err != nil {
		return Project{}, err
	}
	project := Project{
		ID:           uuid.New().String(),
		Name:         name,
		ParentID:     parentID,
		DisplayOrder: max + 1,
		// The first project becomes the default one.
		IsDefault: max == -1,
	}
	if err := s.repo.Store(ctx, project); err != nil {
		return Project{}, err
	}
	s.notify(ctx)
	return project, nil
}

func (s *ProjectServiceImpl) List(ctx context.Context) ([]Project, error) {
	return s.repo.FindAll(ctx)
}

func (s *ProjectServiceImpl) Update(ctx context.Context, project Project) (Project, error) {
	current, err := s.repo.FindByID(ctx, project.ID)
	if err != nil {
		return Project{}, err
	}
	if current == nil {
		return Project{}, ErrProjectNotFound
	}
	if project.ParentID != current.ParentID {
		if err := s.checkParent(ctx, project.ID, project.ParentID); err != nil {
			return Project{}, err
		}
	}
	// The default flag only changes through SetDefault, and ordering only
	// through SetPosition.
	project.IsDefault = current.IsDefault
	project.DisplayOrder = current.DisplayOrder
	if err := s.repo.Update(ctx, project); err != nil {
		return Project{}, err
	}
	s.notify(ctx)
	return project, nil
}

// SetPosition moves a project to the given position in display order and
// shifts the projects in between.
func (s *ProjectServiceImpl) SetPosition(ctx context.Context, id string, position int) error {
	all, err := s.repo.FindAll(ctx)
	if err != nil {
		return err
	}

	moving := -1
	for i, project := range all {
		if project.ID == id {
			moving = i
			break
		}
	}
	if moving == -1 {
		return ErrProjectNotFound
	}
	if position < 0 {
		position = 0
	}
	if position >= len(all) {
		position = len(all) - 1
	}

	project := all[moving]
	all = append(all[:moving], all[moving+1:]...)
	all = append(all[:position], append([]Project{project}, all[position:]...)...)

	for i := range all {
		if all[i].DisplayOrder == i {
			continue
		}
		all[i].DisplayOrder = i
		if err := s.repo.Update(ctx, all[i]); err != nil {
			return err
		}
	}
	s.notify(ctx)
	return nil
}

func (s *ProjectServiceImpl) SetDefault(ctx context.Context, id string) error {
	if err := s.repo.SetDefault(ctx, id); err != nil {
		return err
	}
	s.notify(ctx)
	return nil
}

// Delete removes a project; its tasks move to the default project and its
// children move up to its parent. The default project itself cannot be
// deleted.
func (s *ProjectServiceImpl) Delete(ctx context.Context, id string) error {
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if current == nil {
		return ErrProjectNotFound
	}
	if current.IsDefault {
		return ErrDefaultProject
	}

	reassignTo := ""
	all, err := s.repo.FindAll(ctx)
	if err != nil {
		return err
	}
	for _, project := range all {
		if project.IsDefault {
			reassignTo = project.ID
			break
		}
	}
	if err := s.repo.Delete(ctx, id, reassignTo); err != nil {
		return err
	}
	s.notify(ctx)
	return nil
}

// checkParent rejects a parent that does not exist or that would close a
// cycle through the project's own descendants.
func (s *ProjectServiceImpl) checkParent(ctx context.Context, id string, parentID string) error {
	if parentID == "" {
		return nil
	}
	if parentID == id {
		return ErrProjectCycle
	}
	all, err := s.repo.FindAll(ctx)
	if err != nil {
		return err
	}
	parents := make(map[string]string, len(all))
	found := false
	for _, project := range all {
		parents[project.ID] = project.ParentID
		if project.ID == parentID {
			found = true
		}
	}
	if !found {
		return fmt.Errorf("parent: %w", ErrProjectNotFound)
	}
	for cursor := parentID; cursor != ""; cursor = parents[cursor] {
		if cursor == id {
			return ErrProjectCycle
		}
	}
	return nil
}

func (s *ProjectServiceImpl) notify(ctx context.Context) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(event_bus.NewEvent(ctx, event_bus.TaskChanged, nil)); err != nil {
		log.Warnf("project change notification failed: %v", err)
	}
}
