package domain

import (
	"strings"
	"time"
)

// User models an identity registered on the site.
type User struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Username   string    `json:"username"`
	FirstName  string    `json:"firstName"`
	LastName   string    `json:"lastName"`
	Patronymic string    `json:"patronymic,omitempty"`
	Role       Role      `json:"role"`
	CreatedAt  time.Time `json:"createdAt"`
	Avatar     string    `json:"avatar,omitempty"`
}

// DisplayName is the name captured into author snapshots: "First Last", or
// the username when the profile has no names yet.
func (u User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

// Credential maps a username to its hashed secret. It is stored apart from
// the User record and never serialised.
type Credential struct {
	Username   string
	SecretHash string
}
