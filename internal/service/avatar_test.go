package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func encodeTestImage(t *testing.T, width, height int, format string) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 100, A: 255})
		}
	}

	var buf bytes.Buffer
	var err error
	switch format {
	case "png":
		err = png.Encode(&buf, img)
	case "jpeg":
		err = jpeg.Encode(&buf, img, nil)
	default:
		t.Fatalf("unknown format %q", format)
	}
	if err != nil {
		t.Fatalf("encode %s: %v", format, err)
	}
	return buf.Bytes()
}

func TestSetAvatarNormalizesToSquarePNG(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := registerOwner(t, env, "ada@example.com")

	data := encodeTestImage(t, 400, 300, "jpeg")
	if err := env.users.SetAvatar(ctx, user, data, "photo.jpg"); err != nil {
		t.Fatalf("set avatar: %v", err)
	}

	stored, contentType, err := env.users.GetAvatar(ctx, user.ID)
	if err != nil {
		t.Fatalf("get avatar: %v", err)
	}
	if contentType != AvatarContentType {
		t.Fatalf("content type = %q, want %q", contentType, AvatarContentType)
	}

	decoded, err := png.Decode(bytes.NewReader(stored))
	if err != nil {
		t.Fatalf("stored avatar is not png: %v", err)
	}
	bounds := decoded.Bounds()
	if bounds.Dx() != avatarDim || bounds.Dy() != avatarDim {
		t.Fatalf("avatar is %dx%d, want %dx%d", bounds.Dx(), bounds.Dy(), avatarDim, avatarDim)
	}
}

func TestSetAvatarRejectsOversizeFile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := registerOwner(t, env, "ada@example.com")

	oversize := make([]byte, maxAvatarBytes+1)
	if err := env.users.SetAvatar(ctx, user, oversize, "big.png"); !IsValidation(err) {
		t.Fatalf("oversize file accepted: %v", err)
	}
}

func TestSetAvatarRejectsBadFiles(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := registerOwner(t, env, "ada@example.com")

	if err := env.users.SetAvatar(ctx, user, encodeTestImage(t, 10, 10, "png"), "notes.txt"); !IsValidation(err) {
		t.Fatalf("non-image extension accepted: %v", err)
	}
	if err := env.users.SetAvatar(ctx, user, []byte("not image bytes"), "fake.png"); !IsValidation(err) {
		t.Fatalf("undecodable bytes accepted: %v", err)
	}
	if err := env.users.SetAvatar(ctx, user, nil, "empty.png"); !IsValidation(err) {
		t.Fatalf("empty upload accepted: %v", err)
	}
}

func TestClearAvatar(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := registerOwner(t, env, "ada@example.com")

	if err := env.users.ClearAvatar(ctx, user); !errors.Is(err, ErrAvatarNotFound) {
		t.Fatalf("clearing unset avatar: got %v, want ErrAvatarNotFound", err)
	}

	if err := env.users.SetAvatar(ctx, user, encodeTestImage(t, 100, 100, "png"), "me.png"); err != nil {
		t.Fatalf("set avatar: %v", err)
	}
	if err := env.users.ClearAvatar(ctx, user); err != nil {
		t.Fatalf("clear avatar: %v", err)
	}
	if _, _, err := env.users.GetAvatar(ctx, user.ID); !errors.Is(err, ErrAvatarNotFound) {
		t.Fatalf("avatar still retrievable after clear: %v", err)
	}
}

func TestGetAvatarUnknownUser(t *testing.T) {
	env := newTestEnv(t)

	if _, _, err := env.users.GetAvatar(context.Background(), "no-such-user"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}
