package models

import "time"

// Teacher is an account that owns word lists and students
type Teacher struct {
	ID            int64     `json:"id"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	PasswordHash  string    `json:"-"`
	OAuthProvider string    `json:"oauthProvider,omitempty"`
	OAuthSubject  string    `json:"-"`
	CreatedAt     time.Time `json:"createdAt"`
}

// HasPassword reports whether the teacher can sign in with a password
func (t *Teacher) HasPassword() bool {
	return t.PasswordHash != ""
}
