package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"clinicdesk/internal/auth"
	"clinicdesk/internal/config"
	"clinicdesk/internal/handler"
	"clinicdesk/internal/repository"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	userRepo repository.UserRepository,
	authHandler *handler.AuthHandler,
	appointmentHandler *handler.AppointmentHandler,
	messageHandler *handler.MessageHandler,
	documentHandler *handler.DocumentHandler,
) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// Add validator
	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/refresh", authHandler.Refresh)
	api.POST("/auth/logout", authHandler.Logout)
	api.GET("/horarios-disponiveis", appointmentHandler.AvailableSlots)

	// Secured routes (require JWT authentication and a live user behind it)
	secured := api.Group("", echojwt.WithConfig(echojwt.Config{
		SigningKey:  []byte(cfg.JWTSecret),
		TokenLookup: "header:" + echo.HeaderAuthorization,
	}), auth.ResolveActor(userRepo))

	secured.GET("/auth/profile", authHandler.GetProfile)
	secured.PUT("/auth/profile", authHandler.UpdateProfile)

	secured.POST("/agendamentos", appointmentHandler.Create)
	secured.GET("/agendamentos", appointmentHandler.List)
	secured.PUT("/agendamentos/:id", appointmentHandler.Update)
	secured.DELETE("/agendamentos/:id", appointmentHandler.Cancel)

	secured.POST("/mensagens", messageHandler.Send)
	secured.GET("/mensagens", messageHandler.List)
	secured.GET("/conversas", messageHandler.Conversations)

	secured.POST("/documentos", documentHandler.Upload)
	secured.GET("/documentos", documentHandler.List)
	secured.GET("/documentos/:id", documentHandler.Download)
	secured.DELETE("/documentos/:id", documentHandler.Delete)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
