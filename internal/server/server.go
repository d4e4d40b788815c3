// Package server assembles the HTTP application from its dependencies.
package server

import (
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/travel-assistant/internal/auth"
	"github.com/ahmetcoskunkizilkaya/travel-assistant/internal/config"
	"github.com/ahmetcoskunkizilkaya/travel-assistant/internal/dto"
	"github.com/ahmetcoskunkizilkaya/travel-assistant/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/travel-assistant/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/travel-assistant/internal/places"
	"github.com/ahmetcoskunkizilkaya/travel-assistant/internal/planner"
	"github.com/ahmetcoskunkizilkaya/travel-assistant/internal/routes"
	"github.com/ahmetcoskunkizilkaya/travel-assistant/internal/services"
	"github.com/ahmetcoskunkizilkaya/travel-assistant/internal/store"
	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"gorm.io/gorm"
)

const bodyLimit = 10 * 1024 * 1024

// Deps are the external collaborators of the application.
type Deps struct {
	Config    *config.Config
	DB        *gorm.DB
	Generator planner.Generator
	Places    places.Finder
	Logger    *slog.Logger
	// AccessLog enables the per-request log line.
	AccessLog bool
}

// New wires stores, services and handlers into a Fiber app.
func New(d Deps) (*fiber.App, error) {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}

	sqlDB, err := d.DB.DB()
	if err != nil {
		return nil, err
	}

	users := store.NewUsers(d.DB)
	plans := store.NewPlans(d.DB)
	authority := auth.NewAuthority(d.Config.JWTSecret, d.Config.JWTExpiry, users)
	pipeline := planner.NewPipeline(d.Generator, d.Places, planner.Policy(d.Config.GenerationFallback), d.Logger)

	authService := services.NewAuthService(users, authority)
	userService := services.NewUserService(users, plans)
	travelService := services.NewTravelService(pipeline, plans)

	app := fiber.New(fiber.Config{
		BodyLimit:    bodyLimit,
		ErrorHandler: ErrorHandler,
	})

	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))
	app.Use(recover.New())
	app.Use(requestid.New())
	if d.AccessLog {
		app.Use(fiberlogger.New(fiberlogger.Config{
			Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path} | ${locals:requestid}\n",
		}))
	}
	app.Use(middleware.SecurityHeaders())
	app.Use(middleware.CORS(d.Config))

	routes.Setup(app, d.Config, authority, routes.Handlers{
		Auth:   handlers.NewAuthHandler(authService),
		Travel: handlers.NewTravelHandler(travelService),
		User:   handlers.NewUserHandler(userService),
		Health: handlers.NewHealthHandler(sqlDB, d.Config.AppEnv),
	})

	return app, nil
}

// ErrorHandler renders errors returned by handlers. Details of 5xx errors are
// logged and reported to Sentry but never sent to the client.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}

	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error(), "action", "http")
		if hub := sentryfiber.GetHubFromContext(c); hub != nil {
			hub.CaptureException(err)
		} else {
			sentry.CaptureException(err)
		}
		message = "Internal server error"
	}

	return c.Status(code).JSON(dto.ErrorResponse{
		Error:   "Request failed",
		Message: message,
	})
}
