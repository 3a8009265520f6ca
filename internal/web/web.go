// Package web serves the salon API as JSON over HTTP with fiber. It mirrors
// the gRPC service method for method.
package web

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"

	"salon-api/internal/auth"
	"salon-api/internal/middleware"
	"salon-api/internal/salon"
	"salon-api/internal/session"
	"salon-api/internal/store"
)

const identityLocal = "identity"

type Handler struct {
	svc      *salon.Service
	sessions *session.Manager
	limiter  *middleware.RateLimiter
}

// NewHandler shares rl with the gRPC server so both surfaces draw from the
// same per-IP buckets.
func NewHandler(svc *salon.Service, sessions *session.Manager, rl *middleware.RateLimiter) *Handler {
	return &Handler{svc: svc, sessions: sessions, limiter: rl}
}

// NewApp builds the fiber app with every route registered.
func NewApp(h *Handler) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: errorHandler})
	app.Use(logger.New())
	setupCORS(app)

	h.RegisterPublicRoutes(app)
	h.RegisterProtectedRoutes(app)
	h.RegisterAdminRoutes(app)
	return app
}

func setupCORS(app *fiber.App) {
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PATCH,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
}

// RequireAuth rejects requests without a live session. With optional set,
// anonymous requests pass through but a bad token is still rejected.
func RequireAuth(v middleware.Validator, optional bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := middleware.BearerToken(c.Get(fiber.HeaderAuthorization))
		if raw == "" {
			if optional {
				return c.Next()
			}
			return fiber.NewError(fiber.StatusUnauthorized, "no token")
		}
		claims, u, err := v.Validate(c.UserContext(), raw)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "bad token")
		}
		c.Locals(identityLocal, middleware.Identity{Claims: claims, User: u, Token: raw})
		return c.Next()
	}
}

// RateLimit takes a token from the caller's bucket and answers 429 when it
// is empty.
func RateLimit(rl *middleware.RateLimiter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !rl.Allow(c.IP()) {
			return fiber.NewError(fiber.StatusTooManyRequests, "too many requests")
		}
		return c.Next()
	}
}

func RequireAdmin(c *fiber.Ctx) error {
	id, ok := identityFrom(c)
	if !ok || !id.Claims.IsAdmin() {
		return fiber.NewError(fiber.StatusForbidden, "admin only")
	}
	return c.Next()
}

func identityFrom(c *fiber.Ctx) (middleware.Identity, bool) {
	id, ok := c.Locals(identityLocal).(middleware.Identity)
	return id, ok
}

func userID(c *fiber.Ctx) string {
	id, _ := identityFrom(c)
	return id.User.ID
}

func httpStatus(err error) int {
	switch {
	case errors.Is(err, salon.ErrInvalidInput):
		return fiber.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, salon.ErrEmailTaken):
		return fiber.StatusConflict
	case errors.Is(err, session.ErrLockedOut):
		return fiber.StatusTooManyRequests
	case errors.Is(err, session.ErrInvalidCredentials),
		errors.Is(err, session.ErrSessionClosed),
		errors.Is(err, auth.ErrBadToken):
		return fiber.StatusUnauthorized
	case errors.Is(err, salon.ErrForbidden):
		return fiber.StatusForbidden
	}
	return fiber.StatusInternalServerError
}

func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"message": fe.Message})
	}
	code := httpStatus(err)
	msg := err.Error()
	if code == fiber.StatusInternalServerError {
		log.Printf("internal error on %s %s: %v", c.Method(), c.Path(), err)
		msg = "internal error"
	}
	return c.Status(code).JSON(fiber.Map{"message": msg})
}
