package domain

import (
	"slices"
	"time"
)

const RoleAdmin = "admin"

type User struct {
	ID         int64     `json:"id"`
	Email      string    `json:"email"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Roles      []string  `json:"roles"`
	DateJoined time.Time `json:"date_joined"`
}

func (u *User) IsAdmin() bool {
	return u != nil && slices.Contains(u.Roles, RoleAdmin)
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Registration struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
	FirstName       string `json:"first_name,omitempty"`
	LastName        string `json:"last_name,omitempty"`
}
