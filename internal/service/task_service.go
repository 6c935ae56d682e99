package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"taskhub/internal/domain"
	"taskhub/internal/repository"
)

// TaskService coordinates task operations. The owner id always comes from the
// authenticated session, never from client input.
type TaskService interface {
	Create(ctx context.Context, ownerID, description string, completed bool) (*domain.Task, error)
	Get(ctx context.Context, ownerID, id string) (*domain.Task, error)
	List(ctx context.Context, ownerID string) ([]domain.Task, error)
	Update(ctx context.Context, ownerID, id string, fields map[string]any) (*domain.Task, error)
	Delete(ctx context.Context, ownerID, id string) (*domain.Task, error)
}

type taskService struct {
	tasks repository.TaskRepository
}

func NewTaskService(tasks repository.TaskRepository) TaskService {
	return &taskService{tasks: tasks}
}

func (s *taskService) Create(ctx context.Context, ownerID, description string, completed bool) (*domain.Task, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, validationf("description is required")
	}

	task := &domain.Task{
		ID:          uuid.NewString(),
		Description: description,
		Completed:   completed,
		OwnerID:     ownerID,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *taskService) Get(ctx context.Context, ownerID, id string) (*domain.Task, error) {
	task, err := s.tasks.Get(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return task, nil
}

func (s *taskService) List(ctx context.Context, ownerID string) ([]domain.Task, error) {
	return s.tasks.ListByOwner(ctx, ownerID)
}

func (s *taskService) Update(ctx context.Context, ownerID, id string, fields map[string]any) (*domain.Task, error) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	if !authorizeUpdate(resourceTask, keys) {
		return nil, ErrInvalidUpdate
	}

	task, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	for field, value := range fields {
		switch field {
		case "description":
			description, ok := value.(string)
			if !ok || strings.TrimSpace(description) == "" {
				return nil, validationf("description is required")
			}
			task.Description = strings.TrimSpace(description)
		case "completed":
			completed, ok := value.(bool)
			if !ok {
				return nil, validationf("completed must be a boolean")
			}
			task.Completed = completed
		}
	}

	if err := s.tasks.Update(ctx, task); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return task, nil
}

func (s *taskService) Delete(ctx context.Context, ownerID, id string) (*domain.Task, error) {
	task, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if err := s.tasks.Delete(ctx, ownerID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return task, nil
}
