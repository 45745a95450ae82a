package user

import (
	"context"
	"fmt"

	"github.com/sitepulse/attendance-backend-go/internal/domain/user"

	"golang.org/x/crypto/bcrypt"
)

type UserService interface {
	Create(ctx context.Context, req user.CreateUserRequest) (user.UserResponse, error)
	Get(ctx context.Context, id string) (user.UserResponse, error)
	List(ctx context.Context) ([]user.UserResponse, error)
	ListByDepartment(ctx context.Context, department string) ([]user.UserResponse, error)
	Update(ctx context.Context, req user.UpdateUserRequest) (user.UserResponse, error)
	Delete(ctx context.Context, id string) error
}

type userServiceImpl struct {
	userRepo user.UserRepository
}

func NewUserService(userRepo user.UserRepository) UserService {
	return &userServiceImpl{userRepo: userRepo}
}

func (s *userServiceImpl) Create(ctx context.Context, req user.CreateUserRequest) (user.UserResponse, error) {
	if err := req.Validate(); err != nil {
		return user.UserResponse{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return user.UserResponse{}, fmt.Errorf("failed to hash password: %w", err)
	}

	created, err := s.userRepo.Create(ctx, user.User{
		Username:     req.Username,
		FullName:     req.FullName,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         user.Role(req.Role),
		Department:   req.Department,
		Position:     req.Position,
	})
	if err != nil {
		return user.UserResponse{}, err
	}

	return user.ToResponse(created), nil
}

func (s *userServiceImpl) Get(ctx context.Context, id string) (user.UserResponse, error) {
	u, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return user.UserResponse{}, err
	}
	return user.ToResponse(u), nil
}

func (s *userServiceImpl) List(ctx context.Context) ([]user.UserResponse, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	return toResponses(users), nil
}

func (s *userServiceImpl) ListByDepartment(ctx context.Context, department string) ([]user.UserResponse, error) {
	users, err := s.userRepo.ListByDepartment(ctx, department)
	if err != nil {
		return nil, err
	}
	return toResponses(users), nil
}

func (s *userServiceImpl) Update(ctx context.Context, req user.UpdateUserRequest) (user.UserResponse, error) {
	if err := req.Validate(); err != nil {
		return user.UserResponse{}, err
	}

	u, err := s.userRepo.GetByID(ctx, req.ID)
	if err != nil {
		return user.UserResponse{}, err
	}

	if req.FullName != nil {
		u.FullName = *req.FullName
	}
	if req.Email != nil {
		u.Email = *req.Email
	}
	if req.Role != nil {
		u.Role = user.Role(*req.Role)
	}
	if req.Department != nil {
		u.Department = *req.Department
	}
	if req.Position != nil {
		u.Position = *req.Position
	}

	if err := s.userRepo.Update(ctx, u); err != nil {
		return user.UserResponse{}, err
	}

	return user.ToResponse(u), nil
}

func (s *userServiceImpl) Delete(ctx context.Context, id string) error {
	return s.userRepo.Delete(ctx, id)
}

func toResponses(users []user.User) []user.UserResponse {
	out := make([]user.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, user.ToResponse(u))
	}
	return out
}
