package domain

import "time"

type User struct {
	ID           string // uuid v4, immutable
	Username     string
	PasswordHash string // argon2id PHC string
	TOTPSecret   string // base32, set once at creation
	Email        string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserPatch is a partial update. Nil fields are left unchanged.
type UserPatch struct {
	Username *string
	Email    *string
	Active   *bool
}

// Empty reports whether the patch changes nothing.
func (p UserPatch) Empty() bool {
	return p.Username == nil && p.Email == nil && p.Active == nil
}
