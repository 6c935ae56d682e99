package service

import (
	"bytes"
	"context"
	"errors"
	"path"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	"taskhub/internal/domain"
	"taskhub/internal/repository"
)

const (
	// maxAvatarBytes matches the 2.5MB upload ceiling.
	maxAvatarBytes = 2_500_000
	avatarDim      = 250

	// AvatarContentType is the canonical encoding every stored avatar is
	// normalized to.
	AvatarContentType = "image/png"
)

var allowedAvatarExts = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
}

func (s *userService) SetAvatar(ctx context.Context, user *domain.User, data []byte, filename string) error {
	if len(data) == 0 {
		return validationf("avatar file is required")
	}
	if len(data) > maxAvatarBytes {
		return validationf("avatar file exceeds %d bytes", maxAvatarBytes)
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := allowedAvatarExts[ext]; !ok {
		return validationf("file must be an image")
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return validationf("file is not a valid image")
	}
	normalized := imaging.Fill(img, avatarDim, avatarDim, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, normalized, imaging.PNG); err != nil {
		return validationf("encode avatar: %v", err)
	}

	if s.avatarStore != nil {
		key := path.Join(s.avatarPrefix, user.ID+".png")
		if err := s.avatarStore.Put(ctx, key, buf.Bytes(), AvatarContentType); err != nil {
			return err
		}
		if err := s.users.SetAvatar(ctx, user.ID, nil, key); err != nil {
			return err
		}
		user.Avatar = nil
		user.AvatarKey = key
		return nil
	}

	if err := s.users.SetAvatar(ctx, user.ID, buf.Bytes(), ""); err != nil {
		return err
	}
	user.Avatar = buf.Bytes()
	user.AvatarKey = ""
	return nil
}

func (s *userService) ClearAvatar(ctx context.Context, user *domain.User) error {
	if !user.HasAvatar() {
		return ErrAvatarNotFound
	}
	if user.AvatarKey != "" && s.avatarStore != nil {
		if err := s.avatarStore.Delete(ctx, user.AvatarKey); err != nil {
			s.logger.Warnf("delete avatar object %s: %v", user.AvatarKey, err)
		}
	}
	if err := s.users.SetAvatar(ctx, user.ID, nil, ""); err != nil {
		return err
	}
	user.Avatar = nil
	user.AvatarKey = ""
	return nil
}

func (s *userService) GetAvatar(ctx context.Context, userID string) ([]byte, string, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", ErrNotFound
		}
		return nil, "", err
	}

	if user.AvatarKey != "" && s.avatarStore != nil {
		data, err := s.avatarStore.Get(ctx, user.AvatarKey)
		if err != nil {
			return nil, "", err
		}
		return data, AvatarContentType, nil
	}
	if len(user.Avatar) > 0 {
		return user.Avatar, AvatarContentType, nil
	}
	return nil, "", ErrAvatarNotFound
}
