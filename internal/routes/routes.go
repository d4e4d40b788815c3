package routes

import (
	"github.com/ahmetcoskunkizilkaya/travel-assistant/internal/auth"
	"github.com/ahmetcoskunkizilkaya/travel-assistant/internal/config"
	"github.com/ahmetcoskunkizilkaya/travel-assistant/internal/dto"
	"github.com/ahmetcoskunkizilkaya/travel-assistant/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/travel-assistant/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// Handlers groups the route handlers mounted by Setup.
type Handlers struct {
	Auth   *handlers.AuthHandler
	Travel *handlers.TravelHandler
	User   *handlers.UserHandler
	Health *handlers.HealthHandler
}

func Setup(app *fiber.App, cfg *config.Config, authority *auth.Authority, h Handlers) {
	api := app.Group("/api")

	// General API rate limiter, per IP
	if cfg.RateLimitMax > 0 {
		api.Use(limiter.New(limiter.Config{
			Max:               cfg.RateLimitMax,
			Expiration:        cfg.RateLimitWindow,
			LimiterMiddleware: limiter.SlidingWindow{},
			KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{
					Error:   "Too many requests",
					Message: "Too many requests from this IP, please try again later.",
				})
			},
		}))
	}

	api.Get("/health", h.Health.Check)

	// Auth (public)
	authGroup := api.Group("/auth")
	authGroup.Post("/register", h.Auth.Register)
	authGroup.Post("/login", h.Auth.Login)
	authGroup.Get("/verify", h.Auth.Verify)

	protected := middleware.JWTProtected(authority)

	travel := api.Group("/travel", protected)
	travel.Post("/generate", h.Travel.Generate)
	travel.Post("/save", h.Travel.Save)
	travel.Get("/history", h.Travel.History)
	travel.Get("/:id", h.Travel.Get)
	travel.Delete("/:id", h.Travel.Delete)

	user := api.Group("/user", protected)
	user.Get("/profile", h.User.Profile)
	user.Put("/profile", h.User.UpdateProfile)
	user.Get("/stats", h.User.Stats)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error:   "Route not found",
			Message: "Cannot " + c.Method() + " " + c.OriginalURL(),
		})
	})
}
