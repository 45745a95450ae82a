package auth

import (
	"context"
	"errors"

	"github.com/sitepulse/attendance-backend-go/internal/domain/auth"
	"github.com/sitepulse/attendance-backend-go/internal/domain/user"
	"github.com/sitepulse/attendance-backend-go/internal/pkg/jwt"

	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	Login(ctx context.Context, req auth.LoginRequest) (auth.LoginResponse, string, int64, error)
	Refresh(ctx context.Context, userID string) (auth.LoginResponse, error)
}

type authServiceImpl struct {
	userRepo   user.UserRepository
	jwtService jwt.Service
}

func NewAuthService(userRepo user.UserRepository, jwtService jwt.Service) AuthService {
	return &authServiceImpl{
		userRepo:   userRepo,
		jwtService: jwtService,
	}
}

// Login verifies credentials and issues an access token plus a refresh
// token for the cookie. Unknown usernames and wrong passwords are
// indistinguishable to the caller.
func (s *authServiceImpl) Login(ctx context.Context, req auth.LoginRequest) (auth.LoginResponse, string, int64, error) {
	if err := req.Validate(); err != nil {
		return auth.LoginResponse{}, "", 0, err
	}

	u, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.LoginResponse{}, "", 0, auth.ErrInvalidCredentials
		}
		return auth.LoginResponse{}, "", 0, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return auth.LoginResponse{}, "", 0, auth.ErrInvalidCredentials
	}

	accessToken, expiresAt, err := s.jwtService.GenerateAccessToken(u.ID, u.Username, u.Role, u.Department)
	if err != nil {
		return auth.LoginResponse{}, "", 0, err
	}

	refreshToken, refreshExpiresAt, err := s.jwtService.GenerateRefreshToken(u.ID)
	if err != nil {
		return auth.LoginResponse{}, "", 0, err
	}

	return auth.LoginResponse{
		AccessToken: accessToken,
		ExpiresAt:   expiresAt,
		User:        user.ToResponse(u),
	}, refreshToken, refreshExpiresAt, nil
}

// Refresh issues a fresh access token for an already-validated refresh
// token subject.
func (s *authServiceImpl) Refresh(ctx context.Context, userID string) (auth.LoginResponse, error) {
	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.LoginResponse{}, auth.ErrInvalidToken
		}
		return auth.LoginResponse{}, err
	}

	accessToken, expiresAt, err := s.jwtService.GenerateAccessToken(u.ID, u.Username, u.Role, u.Department)
	if err != nil {
		return auth.LoginResponse{}, err
	}

	return auth.LoginResponse{
		AccessToken: accessToken,
		ExpiresAt:   expiresAt,
		User:        user.ToResponse(u),
	}, nil
}
