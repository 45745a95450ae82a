package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/sitepulse/attendance-backend-go/internal/config"
	appHTTP "github.com/sitepulse/attendance-backend-go/internal/handler/http"
	"github.com/sitepulse/attendance-backend-go/internal/pkg/cron"
	"github.com/sitepulse/attendance-backend-go/internal/pkg/database"
	"github.com/sitepulse/attendance-backend-go/internal/pkg/email"
	"github.com/sitepulse/attendance-backend-go/internal/pkg/jwt"
	"github.com/sitepulse/attendance-backend-go/internal/pkg/sse"
	"github.com/sitepulse/attendance-backend-go/internal/pkg/storage"
	"github.com/sitepulse/attendance-backend-go/internal/repository/postgresql"
	attendanceService "github.com/sitepulse/attendance-backend-go/internal/service/attendance"
	authService "github.com/sitepulse/attendance-backend-go/internal/service/auth"
	departmentService "github.com/sitepulse/attendance-backend-go/internal/service/department"
	"github.com/sitepulse/attendance-backend-go/internal/service/file"
	leaveService "github.com/sitepulse/attendance-backend-go/internal/service/leave"
	settingsService "github.com/sitepulse/attendance-backend-go/internal/service/settings"
	userService "github.com/sitepulse/attendance-backend-go/internal/service/user"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}

	userRepo := postgresql.NewUserRepository(db)
	departmentRepo := postgresql.NewDepartmentRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	leaveRepo := postgresql.NewLeaveRepository(db)
	settingsRepo := postgresql.NewSettingsRepository(db)

	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration, cfg.JWT.RefreshExpiration)

	var fileStorage storage.FileStorage
	switch cfg.Storage.Type {
	case "local":
		fileStorage, err = storage.NewLocalStorage(cfg.Storage.BasePath, cfg.Storage.BaseURL)
		if err != nil {
			log.Fatal("Failed to initialize local storage:", err)
		}
	default:
		log.Fatal("Unsupported storage type: ", cfg.Storage.Type)
	}

	hub := sse.NewHub()
	fileSvc := file.NewFileService(fileStorage)
	emailSvc := email.NewEmailService(cfg.SMTP)

	runTx := func(ctx context.Context, fn func(ctx context.Context) error) error {
		return postgresql.WithTransaction(ctx, db, fn)
	}

	attendanceSvc := attendanceService.NewAttendanceService(attendanceRepo, settingsRepo, fileSvc, hub, cfg.Site, runTx)
	leaveSvc := leaveService.NewLeaveService(leaveRepo, userRepo, emailSvc)
	authSvc := authService.NewAuthService(userRepo, jwtService)
	userSvc := userService.NewUserService(userRepo)
	departmentSvc := departmentService.NewDepartmentService(departmentRepo)
	settingsSvc := settingsService.NewSettingsService(settingsRepo)

	scheduler := cron.NewScheduler()
	cron.NewAttendanceJobs(attendanceRepo, settingsRepo).RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	router := appHTTP.NewRouter(cfg, jwtService, appHTTP.Handlers{
		Auth:       appHTTP.NewAuthHandler(authSvc, jwtService),
		Attendance: appHTTP.NewAttendanceHandler(attendanceSvc),
		Leave:      appHTTP.NewLeaveHandler(leaveSvc),
		User:       appHTTP.NewUserHandler(userSvc),
		Department: appHTTP.NewDepartmentHandler(departmentSvc),
		Settings:   appHTTP.NewSettingsHandler(settingsSvc),
		SSE:        appHTTP.NewSSEHandler(hub, jwtService),
	})

	port := fmt.Sprintf(":%d", cfg.App.Port)
	fmt.Printf("Server running at http://localhost%s\n", port)
	if err := http.ListenAndServe(port, router); err != nil {
		fmt.Println("Server error:", err)
	}
}
