package jwt

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sitepulse/attendance-backend-go/internal/domain/user"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// Token kinds carried in the "type" claim. Middleware and handlers
// check the kind so a refresh token can never pass as an access token.
const (
	kindAccess  = "access"
	kindRefresh = "refresh"
	kindSSE     = "sse"
)

const sseTokenTTL = 5 * time.Minute

type Service interface {
	GenerateAccessToken(userID string, username string, role user.Role, department string) (token string, expiresAt int64, err error)
	GenerateRefreshToken(userID string) (token string, expiresAt int64, err error)
	JWTAuth() *jwtauth.JWTAuth
	RefreshTokenCookie(token string, expiresAt int64) *http.Cookie
	ValidateSSEToken(tokenString string) (userID string, err error)
	GenerateSSEToken(userID string) (token string, expiresIn int, err error)
}

type JWTService struct {
	accessTTL  time.Duration
	refreshTTL time.Duration
	tokenAuth  *jwtauth.JWTAuth
}

func NewJWTService(secretKey string, accessTTL string, refreshTTL string) Service {
	return &JWTService{
		accessTTL:  parseTTL(accessTTL, 15*time.Minute),
		refreshTTL: parseTTL(refreshTTL, 7*24*time.Hour),
		tokenAuth:  jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

func parseTTL(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		slog.Warn("invalid token lifetime, using fallback", "value", s, "fallback", fallback)
		return fallback
	}
	return d
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func (j *JWTService) encode(kind string, ttl time.Duration, claims map[string]interface{}) (string, int64, error) {
	expiresAt := time.Now().Add(ttl).Unix()
	claims["type"] = kind
	claims["exp"] = expiresAt

	_, tokenString, err := j.tokenAuth.Encode(claims)
	if err != nil {
		return "", 0, fmt.Errorf("encode %s token: %w", kind, err)
	}
	return tokenString, expiresAt, nil
}

func (j *JWTService) GenerateAccessToken(userID string, username string, role user.Role, department string) (string, int64, error) {
	return j.encode(kindAccess, j.accessTTL, map[string]interface{}{
		"user_id":    userID,
		"username":   username,
		"role":       string(role),
		"department": department,
	})
}

func (j *JWTService) GenerateRefreshToken(userID string) (string, int64, error) {
	return j.encode(kindRefresh, j.refreshTTL, map[string]interface{}{
		"user_id": userID,
	})
}

func (j *JWTService) RefreshTokenCookie(token string, expiresAt int64) *http.Cookie {
	return &http.Cookie{
		Name:     "refresh_token",
		Value:    token,
		Path:     "/api/v1/auth",
		Expires:  time.Unix(expiresAt, 0),
		HttpOnly: true,
		Secure:   false,
		SameSite: http.SameSiteStrictMode,
	}
}

// GenerateSSEToken issues a short-lived token passed as a query
// parameter, since EventSource cannot set an Authorization header.
func (j *JWTService) GenerateSSEToken(userID string) (string, int, error) {
	tokenString, _, err := j.encode(kindSSE, sseTokenTTL, map[string]interface{}{
		"user_id": userID,
	})
	if err != nil {
		return "", 0, err
	}
	return tokenString, int(sseTokenTTL.Seconds()), nil
}

func (j *JWTService) ValidateSSEToken(tokenString string) (string, error) {
	token, err := j.tokenAuth.Decode(tokenString)
	if err != nil {
		return "", err
	}

	if kind, ok := token.Get("type"); !ok || kind != kindSSE {
		return "", jwt.ErrInvalidJWT()
	}

	userID, ok := token.Get("user_id")
	if !ok {
		return "", jwt.ErrInvalidJWT()
	}
	id, ok := userID.(string)
	if !ok {
		return "", jwt.ErrInvalidJWT()
	}
	return id, nil
}
