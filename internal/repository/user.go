package repository

import (
	"context"

	"taskhub/internal/domain"
)

// UserRepository defines persistence operations for User entities. GetByID and
// GetByEmail load the user's session token list alongside the row.
type UserRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id string) error

	AppendToken(ctx context.Context, userID, token string) error
	RemoveToken(ctx context.Context, userID, token string) error
	ClearTokens(ctx context.Context, userID string) error
	ReplaceTokens(ctx context.Context, userID string, tokens []string) error

	SetAvatar(ctx context.Context, userID string, avatar []byte, key string) error
}
