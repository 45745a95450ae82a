package middleware

import (
	"net/http"

	"github.com/sitepulse/attendance-backend-go/internal/domain/auth"
	"github.com/sitepulse/attendance-backend-go/internal/handler/http/response"

	"github.com/go-chi/jwtauth/v5"
)

func AuthRequired(ja *jwtauth.JWTAuth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			token, _, err := jwtauth.FromContext(r.Context())

			if err != nil {
				response.Unauthorized(w, err.Error())
				return
			}

			if token == nil {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			claims, err := token.AsMap(r.Context())
			if err != nil {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}
			tokenType, ok := claims["type"].(string)
			if !ok || tokenType != "access" {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			next.ServeHTTP(w, r)
		}
		return http.HandlerFunc(hfn)
	}
}

// Claims extracts the identity claims set by the access token. Handlers
// behind AuthRequired can rely on the values being present.
func Claims(r *http.Request) (userID, username, role, department string) {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return "", "", "", ""
	}

	userID, _ = claims["user_id"].(string)
	username, _ = claims["username"].(string)
	role, _ = claims["role"].(string)
	department, _ = claims["department"].(string)
	return userID, username, role, department
}
