package http

import (
	"encoding/json"
	"net/http"

	"github.com/sitepulse/attendance-backend-go/internal/domain/auth"
	"github.com/sitepulse/attendance-backend-go/internal/handler/http/response"
	"github.com/sitepulse/attendance-backend-go/internal/pkg/jwt"
	authService "github.com/sitepulse/attendance-backend-go/internal/service/auth"

	"github.com/go-chi/jwtauth/v5"
)

type AuthHandler interface {
	Login(w http.ResponseWriter, r *http.Request)
	Refresh(w http.ResponseWriter, r *http.Request)
	Logout(w http.ResponseWriter, r *http.Request)
}

type authHandlerImpl struct {
	authService authService.AuthService
	jwtService  jwt.Service
}

func NewAuthHandler(service authService.AuthService, jwtService jwt.Service) AuthHandler {
	return &authHandlerImpl{
		authService: service,
		jwtService:  jwtService,
	}
}

// Login implements AuthHandler.
func (h *authHandlerImpl) Login(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	resp, refreshToken, refreshExpiresAt, err := h.authService.Login(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	http.SetCookie(w, h.jwtService.RefreshTokenCookie(refreshToken, refreshExpiresAt))
	response.Success(w, resp)
}

// Refresh implements AuthHandler.
func (h *authHandlerImpl) Refresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie("refresh_token")
	if err != nil {
		response.HandleError(w, auth.ErrInvalidToken)
		return
	}

	token, err := jwtauth.VerifyToken(h.jwtService.JWTAuth(), cookie.Value)
	if err != nil {
		response.HandleError(w, auth.ErrInvalidToken)
		return
	}

	claims, err := token.AsMap(r.Context())
	if err != nil {
		response.HandleError(w, auth.ErrInvalidToken)
		return
	}

	userID, _ := claims["user_id"].(string)
	tokenType, _ := claims["type"].(string)
	if userID == "" || tokenType != "refresh" {
		response.HandleError(w, auth.ErrInvalidToken)
		return
	}

	resp, err := h.authService.Refresh(r.Context(), userID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, resp)
}

// Logout implements AuthHandler.
func (h *authHandlerImpl) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, h.jwtService.RefreshTokenCookie("", 0))
	response.SuccessWithMessage(w, "Logged out", nil)
}
