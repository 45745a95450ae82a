package user

import "time"

type Role string

const (
	RoleEmployee Role = "employee"
	RoleManager  Role = "manager"
	RoleAdmin    Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleEmployee, RoleManager, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID           string
	Username     string
	FullName     string
	Email        string
	PasswordHash string
	Role         Role
	Department   string
	Position     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AvatarInitial is the single letter shown on the dashboard avatar.
func (u User) AvatarInitial() string {
	if u.FullName == "" {
		return "?"
	}
	return string([]rune(u.FullName)[0])
}
