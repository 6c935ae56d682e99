package domain

import "time"

// User represents a registered account. PasswordHash, Tokens and the avatar
// fields never leave the service layer in API responses.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Age          int64
	Avatar       []byte
	AvatarKey    string
	Tokens       []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasAvatar reports whether an avatar is stored, either inline or offloaded
// to object storage.
func (u *User) HasAvatar() bool {
	return len(u.Avatar) > 0 || u.AvatarKey != ""
}
