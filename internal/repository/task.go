package repository

import (
	"context"

	"taskhub/internal/domain"
)

// TaskRepository defines persistence operations for Task entities. Every
// read/write that targets a single task carries the owner id as part of the
// lookup predicate; a task owned by someone else is ErrNotFound.
type TaskRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, task *domain.Task) error
	Get(ctx context.Context, ownerID, id string) (*domain.Task, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Task, error)
	Update(ctx context.Context, task *domain.Task) error
	Delete(ctx context.Context, ownerID, id string) error
	DeleteByOwner(ctx context.Context, ownerID string) error
}
