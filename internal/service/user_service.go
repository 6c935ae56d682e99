package service

import (
	"context"
	"errors"
	"fmt"
	netmail "net/mail"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"taskhub/internal/domain"
	"taskhub/internal/mail"
	"taskhub/internal/repository"
	"taskhub/internal/storage"
)

const minPasswordLength = 7

// UserService owns credentials, sessions and the avatar pipeline.
type UserService interface {
	Register(ctx context.Context, name, email, password string, age int64) (*domain.User, string, error)
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
	IssueToken(ctx context.Context, user *domain.User) (string, error)
	ValidateToken(ctx context.Context, token string) (*domain.User, error)
	RevokeToken(ctx context.Context, user *domain.User, token string) error
	RevokeAll(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User, currentToken string, fields map[string]any) (*domain.User, error)
	Delete(ctx context.Context, user *domain.User) error

	SetAvatar(ctx context.Context, user *domain.User, data []byte, filename string) error
	ClearAvatar(ctx context.Context, user *domain.User) error
	GetAvatar(ctx context.Context, userID string) ([]byte, string, error)
}

// UserServiceConfig carries session and avatar storage settings.
type UserServiceConfig struct {
	JWTSecret string
	// TokenTTL of zero signs tokens without expiry; the token-list membership
	// check is the revocation mechanism either way.
	TokenTTL time.Duration
	// AvatarStore is optional; when nil avatar bytes live in the database.
	AvatarStore  storage.Service
	AvatarPrefix string
}

type userService struct {
	users        repository.UserRepository
	tasks        repository.TaskRepository
	mailer       mail.Mailer
	logger       *logrus.Logger
	jwtSecret    []byte
	tokenTTL     time.Duration
	avatarStore  storage.Service
	avatarPrefix string
}

func NewUserService(users repository.UserRepository, tasks repository.TaskRepository, mailer mail.Mailer, logger *logrus.Logger, cfg UserServiceConfig) UserService {
	return &userService{
		users:        users,
		tasks:        tasks,
		mailer:       mailer,
		logger:       logger,
		jwtSecret:    []byte(cfg.JWTSecret),
		tokenTTL:     cfg.TokenTTL,
		avatarStore:  cfg.AvatarStore,
		avatarPrefix: strings.Trim(cfg.AvatarPrefix, "/"),
	}
}

func (s *userService) Register(ctx context.Context, name, email, password string, age int64) (*domain.User, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, "", validationf("name is required")
	}
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, "", err
	}
	if err := validatePassword(password); err != nil {
		return nil, "", err
	}
	if age < 0 {
		return nil, "", validationf("age must be a positive number")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Age:          age,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, "", validationf("email already registered")
		}
		return nil, "", err
	}

	token, err := s.IssueToken(ctx, user)
	if err != nil {
		return nil, "", err
	}

	s.notify(func() error { return s.mailer.SendWelcome(user.Email, user.Name) })

	return user, token, nil
}

func (s *userService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *userService) IssueToken(ctx context.Context, user *domain.User) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:  user.ID,
		ID:       uuid.NewString(),
		IssuedAt: jwt.NewNumericDate(now),
	}
	if s.tokenTTL > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(s.tokenTTL))
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	if err := s.users.AppendToken(ctx, user.ID, token); err != nil {
		return "", err
	}
	user.Tokens = append(user.Tokens, token)
	return token, nil
}

func (s *userService) ValidateToken(ctx context.Context, raw string) (*domain.User, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	// a cryptographically valid token that was logged out is no longer in the
	// user's token list
	if !slices.Contains(user.Tokens, raw) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *userService) RevokeToken(ctx context.Context, user *domain.User, token string) error {
	if err := s.users.RemoveToken(ctx, user.ID, token); err != nil {
		return err
	}
	user.Tokens = slices.DeleteFunc(user.Tokens, func(t string) bool { return t == token })
	return nil
}

func (s *userService) RevokeAll(ctx context.Context, user *domain.User) error {
	if err := s.users.ClearTokens(ctx, user.ID); err != nil {
		return err
	}
	user.Tokens = nil
	return nil
}

func (s *userService) Update(ctx context.Context, user *domain.User, currentToken string, fields map[string]any) (*domain.User, error) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	if !authorizeUpdate(resourceUser, keys) {
		return nil, ErrInvalidUpdate
	}

	passwordChanged := false
	for field, value := range fields {
		switch field {
		case "name":
			name, ok := value.(string)
			if !ok || strings.TrimSpace(name) == "" {
				return nil, validationf("name is required")
			}
			user.Name = strings.TrimSpace(name)
		case "email":
			raw, ok := value.(string)
			if !ok {
				return nil, validationf("email must be a string")
			}
			email, err := normalizeEmail(raw)
			if err != nil {
				return nil, err
			}
			user.Email = email
		case "password":
			password, ok := value.(string)
			if !ok {
				return nil, validationf("password must be a string")
			}
			if err := validatePassword(password); err != nil {
				return nil, err
			}
			hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
			if err != nil {
				return nil, fmt.Errorf("hash password: %w", err)
			}
			user.PasswordHash = string(hash)
			passwordChanged = true
		case "age":
			age, ok := asInt64(value)
			if !ok || age < 0 {
				return nil, validationf("age must be a positive number")
			}
			user.Age = age
		}
	}

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, validationf("email already registered")
		}
		return nil, err
	}

	if passwordChanged {
		// a password change logs out every other device
		kept := []string{}
		if currentToken != "" {
			kept = append(kept, currentToken)
		}
		if err := s.users.ReplaceTokens(ctx, user.ID, kept); err != nil {
			return nil, err
		}
		user.Tokens = kept
	}

	return user, nil
}

func (s *userService) Delete(ctx context.Context, user *domain.User) error {
	if err := s.tasks.DeleteByOwner(ctx, user.ID); err != nil {
		return fmt.Errorf("cascade tasks: %w", err)
	}
	if user.AvatarKey != "" && s.avatarStore != nil {
		if err := s.avatarStore.Delete(ctx, user.AvatarKey); err != nil {
			s.logger.Warnf("delete avatar object %s: %v", user.AvatarKey, err)
		}
	}
	if err := s.users.Delete(ctx, user.ID); err != nil {
		return err
	}

	s.notify(func() error { return s.mailer.SendCancellation(user.Email, user.Name) })
	return nil
}

// notify runs a mail send in the background; failures are logged, never
// surfaced to the caller.
func (s *userService) notify(send func() error) {
	if s.mailer == nil {
		return
	}
	go func() {
		if err := send(); err != nil {
			s.logger.Warnf("send mail: %v", err)
		}
	}()
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", validationf("email is required")
	}
	addr, err := netmail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", validationf("email is invalid")
	}
	return email, nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return validationf("password must be at least %d characters", minPasswordLength)
	}
	if strings.Contains(strings.ToLower(password), "password") {
		return validationf(`password cannot contain "password"`)
	}
	return nil
}

func asInt64(value any) (int64, bool) {
	switch v := value.(type) {
	case float64:
		if v != float64(int64(v)) {
			return 0, false
		}
		return int64(v), true
	case int64:
		return v, true
	case int:
		return int64(v), true
	default:
		return 0, false
	}
}
