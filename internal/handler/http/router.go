package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/sitepulse/attendance-backend-go/internal/config"
	"github.com/sitepulse/attendance-backend-go/internal/handler/http/middleware"
	"github.com/sitepulse/attendance-backend-go/internal/pkg/jwt"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type Handlers struct {
	Auth       AuthHandler
	Attendance AttendanceHandler
	Leave      LeaveHandler
	User       UserHandler
	Department DepartmentHandler
	Settings   SettingsHandler
	SSE        SSEHandler
}

func NewRouter(cfg *config.Config, jwtService jwt.Service, h Handlers) *chi.Mux {
	r := chi.NewRouter()

	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "sitepulse-attendance"),
		slog.String("env", cfg.App.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.App.FrontendURL},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	// Stored selfies
	fileServer := http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.Storage.BasePath)))
	r.Get("/uploads/*", fileServer.ServeHTTP)

	r.Route("/api/v1", func(r chi.Router) {

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", h.Auth.Login)
			r.Post("/refresh", h.Auth.Refresh)
			r.Post("/logout", h.Auth.Logout)
		})

		// The dashboard stream authenticates with its own token
		r.Get("/events", h.SSE.Stream)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(jwtService.JWTAuth()))
			r.Use(middleware.AuthRequired(jwtService.JWTAuth()))

			r.Get("/events/token", h.SSE.GetToken)

			r.Route("/attendance", func(r chi.Router) {
				r.Post("/check-in", h.Attendance.CheckIn)
				r.Post("/check-out", h.Attendance.CheckOut)
				r.Get("/today", h.Attendance.Today)
				r.Get("/my", h.Attendance.MyHistory)

				// Manager and admin
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireManager)
					r.Get("/", h.Attendance.ListByDate)
				})
			})

			r.Route("/leave-requests", func(r chi.Router) {
				r.Post("/", h.Leave.Create)
				r.Get("/my", h.Leave.MyRequests)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireManager)
					r.Get("/department", h.Leave.DepartmentRequests)
					r.Post("/{id}/approve", h.Leave.Approve)
					r.Post("/{id}/reject", h.Leave.Reject)
				})

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireAdmin)
					r.Get("/pending-admin", h.Leave.PendingAdmin)
				})
			})

			r.Route("/users", func(r chi.Router) {
				r.Get("/me", h.User.Me)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireAdmin)
					r.Get("/", h.User.List)
					r.Post("/", h.User.Create)
					r.Get("/{id}", h.User.Get)
					r.Put("/{id}", h.User.Update)
					r.Delete("/{id}", h.User.Delete)
				})
			})

			r.Route("/departments", func(r chi.Router) {
				r.Get("/", h.Department.List)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireAdmin)
					r.Post("/", h.Department.Create)
					r.Get("/{id}", h.Department.Get)
					r.Put("/{id}", h.Department.Update)
					r.Delete("/{id}", h.Department.Delete)
				})
			})

			r.Route("/settings", func(r chi.Router) {
				r.Get("/", h.Settings.Get)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireAdmin)
					r.Put("/", h.Settings.Update)
				})
			})
		})
	})

	return r
}
