package user

import (
	"github.com/sitepulse/attendance-backend-go/internal/pkg/validator"
)

type CreateUserRequest struct {
	Username   string `json:"username"`
	FullName   string `json:"full_name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Role       string `json:"role"`
	Department string `json:"department"`
	Position   string `json:"position"`
}

func (r CreateUserRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUsername(r.Username) {
		errs = append(errs, validator.ValidationError{Field: "username", Message: "must be 3-50 characters (letters, digits, . _ -)"})
	}
	if validator.IsEmpty(r.FullName) {
		errs = append(errs, validator.ValidationError{Field: "full_name", Message: "is required"})
	}
	if !validator.IsValidEmail(r.Email) {
		errs = append(errs, validator.ValidationError{Field: "email", Message: "must be a valid email address"})
	}
	if len(r.Password) < 8 {
		errs = append(errs, validator.ValidationError{Field: "password", Message: "must be at least 8 characters"})
	}
	if !Role(r.Role).Valid() {
		errs = append(errs, validator.ValidationError{Field: "role", Message: "must be employee, manager or admin"})
	}
	if validator.IsEmpty(r.Department) {
		errs = append(errs, validator.ValidationError{Field: "department", Message: "is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type UpdateUserRequest struct {
	ID         string  `json:"-"`
	FullName   *string `json:"full_name"`
	Email      *string `json:"email"`
	Role       *string `json:"role"`
	Department *string `json:"department"`
	Position   *string `json:"position"`
}

func (r UpdateUserRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Email != nil && !validator.IsValidEmail(*r.Email) {
		errs = append(errs, validator.ValidationError{Field: "email", Message: "must be a valid email address"})
	}
	if r.Role != nil && !Role(*r.Role).Valid() {
		errs = append(errs, validator.ValidationError{Field: "role", Message: "must be employee, manager or admin"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type UserResponse struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	FullName      string `json:"full_name"`
	Email         string `json:"email"`
	Role          string `json:"role"`
	Department    string `json:"department"`
	Position      string `json:"position"`
	AvatarInitial string `json:"avatar_initial"`
}

func ToResponse(u User) UserResponse {
	return UserResponse{
		ID:            u.ID,
		Username:      u.Username,
		FullName:      u.FullName,
		Email:         u.Email,
		Role:          string(u.Role),
		Department:    u.Department,
		Position:      u.Position,
		AvatarInitial: u.AvatarInitial(),
	}
}
