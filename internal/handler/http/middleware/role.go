package middleware

import (
	"net/http"

	"github.com/sitepulse/attendance-backend-go/internal/domain/user"
	"github.com/sitepulse/attendance-backend-go/internal/handler/http/response"

	"github.com/go-chi/jwtauth/v5"
)

func requireRole(deny error, allowed ...user.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, claims, err := jwtauth.FromContext(r.Context())
			if err != nil {
				response.HandleError(w, deny)
				return
			}

			roleStr, ok := claims["role"].(string)
			if !ok {
				response.HandleError(w, deny)
				return
			}

			role := user.Role(roleStr)
			for _, a := range allowed {
				if role == a {
					next.ServeHTTP(w, r)
					return
				}
			}
			response.HandleError(w, deny)
		})
	}
}

// RequireAdmin admits admins only.
var RequireAdmin = requireRole(user.ErrAdminAccessRequired, user.RoleAdmin)

// RequireManager admits managers and admins.
var RequireManager = requireRole(user.ErrManagerAccessRequired, user.RoleManager, user.RoleAdmin)
