package main

import (
	"context"
	"log"
	"net/http"

	_ "clinicdesk/docs" // swagger docs

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"clinicdesk/internal/auth"
	"clinicdesk/internal/cache"
	"clinicdesk/internal/config"
	"clinicdesk/internal/db"
	"clinicdesk/internal/handler"
	"clinicdesk/internal/model"
	"clinicdesk/internal/repository"
	"clinicdesk/internal/router"
	"clinicdesk/internal/service"
	"clinicdesk/internal/storage"
)

// @title Clinic Management API
// @version 1.0
// @description Clinic management backend with appointment scheduling, messaging, document uploads and JWT authentication.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()

	e := echo.New()
	e.Use(middleware.RequestID())

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	// Run migrations for all models
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Appointment{},
		&model.Message{},
		&model.Document{},
	); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	appointmentRepo := repository.NewAppointmentRepository(gormDB)
	messageRepo := repository.NewMessageRepository(gormDB)
	documentRepo := repository.NewDocumentRepository(gormDB)

	// The scheduling and messaging flows assume a single clinician account.
	if err := ensureClinician(context.Background(), userRepo); err != nil {
		log.Fatalf("ensure clinician: %v", err)
	}

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	tokenStore := auth.NewTokenStore(cacheClient)

	// Initialize services
	blobStore := storage.NewDiskStore(cfg.UploadDir)
	authService := service.NewAuthService(userRepo, jwtService, tokenStore, cacheClient)
	scheduleService := service.NewScheduleService(userRepo, appointmentRepo)
	messageService := service.NewMessageService(userRepo, messageRepo)
	documentService := service.NewDocumentService(userRepo, documentRepo, blobStore)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	appointmentHandler := handler.NewAppointmentHandler(scheduleService)
	messageHandler := handler.NewMessageHandler(messageService)
	documentHandler := handler.NewDocumentHandler(documentService)

	// Register routes
	router.Register(
		e,
		cfg,
		userRepo,
		authHandler,
		appointmentHandler,
		messageHandler,
		documentHandler,
	)

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}

// ensureClinician seeds the default clinician account on first start so the
// single-clinician invariant holds from the very first request.
func ensureClinician(ctx context.Context, userRepo repository.UserRepository) error {
	if _, err := userRepo.FindClinician(ctx); err == nil {
		return nil
	} else if err != gorm.ErrRecordNotFound {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("senha123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	clinician := &model.User{
		Username:     "dra_pediatra",
		Email:        "dra@clinica.com.br",
		PasswordHash: string(hashedPassword),
		Role:         model.RoleClinician,
		FullName:     "Dra. Pediatra",
		Phone:        "(11) 99999-9999",
	}
	if err := userRepo.Create(ctx, clinician); err != nil {
		return err
	}
	log.Printf("default clinician created: username=%s", clinician.Username)
	return nil
}
