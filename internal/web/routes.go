package web

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"salon-api/internal/dashboard"
	"salon-api/internal/model"
	"salon-api/internal/salon"
	"salon-api/internal/store"
)

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	limited := RateLimit(h.limiter)
	app.Post("/api/v1/auth/register", limited, h.register)
	app.Post("/api/v1/auth/login", limited, h.login)
	app.Get("/api/v1/catalog", h.catalog)
	app.Get("/api/v1/testimonials", h.approvedTestimonials)
	app.Post("/api/v1/newsletter", limited, h.subscribe)
	app.Post("/api/v1/appointments", RequireAuth(h.sessions, true), h.book)
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	authed := RequireAuth(h.sessions, false)
	app.Post("/api/v1/auth/logout", authed, h.logout)
	app.Get("/api/v1/dashboard", authed, h.dashboard)
	app.Get("/api/v1/appointments/history", authed, h.history)
	app.Post("/api/v1/appointments/:id/cancel", authed, h.cancel)
	app.Post("/api/v1/testimonials", authed, h.submitTestimonial)
	app.Get("/api/v1/profile", authed, h.profile)
	app.Patch("/api/v1/profile", authed, h.updateProfile)
}

func (h *Handler) RegisterAdminRoutes(app *fiber.App) {
	admin := app.Group("/api/v1/admin", RequireAuth(h.sessions, false), RequireAdmin)
	admin.Get("/appointments", h.allAppointments)
	admin.Patch("/appointments/:id/status", h.setStatus)
	admin.Get("/testimonials/pending", h.pendingTestimonials)
	admin.Post("/testimonials/:id/approve", h.approveTestimonial)
	admin.Get("/top-clients", h.topClients)
	admin.Get("/newsletter", h.subscribers)
}

func parse(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return nil
}

func (h *Handler) register(c *fiber.Ctx) error {
	var in salon.RegisterInput
	if err := parse(c, &in); err != nil {
		return err
	}
	u, err := h.svc.Register(c.UserContext(), in)
	if err != nil {
		return err
	}
	tok, err := h.sessions.Open(c.UserContext(), u)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"user": u, "token": tok})
}

func (h *Handler) login(c *fiber.Ctx) error {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := parse(c, &in); err != nil {
		return err
	}
	if in.Email == "" || in.Password == "" {
		return fiber.NewError(fiber.StatusBadRequest, "email and password required")
	}
	tok, u, err := h.sessions.Login(c.UserContext(), in.Email, in.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"user": u, "token": tok})
}

func (h *Handler) logout(c *fiber.Ctx) error {
	id, _ := identityFrom(c)
	if err := h.sessions.Logout(c.UserContext(), id.Token); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) catalog(c *fiber.Ctx) error {
	return c.JSON(h.svc.Catalog())
}

func (h *Handler) approvedTestimonials(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"testimonials": h.svc.ApprovedTestimonials()})
}

func (h *Handler) book(c *fiber.Ctx) error {
	var in salon.BookInput
	if err := parse(c, &in); err != nil {
		return err
	}
	a, err := h.svc.Book(c.UserContext(), userID(c), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"appointment": a})
}

func (h *Handler) dashboard(c *fiber.Ctx) error {
	sum, err := h.svc.Dashboard(c.UserContext(), userID(c))
	if err != nil {
		return err
	}
	return c.JSON(sum)
}

func (h *Handler) history(c *fiber.Ctx) error {
	f := dashboard.HistoryFilter(c.Query("filter", string(dashboard.FilterAll)))
	return c.JSON(fiber.Map{"appointments": h.svc.History(userID(c), f)})
}

func (h *Handler) cancel(c *fiber.Ctx) error {
	a, err := h.svc.CancelAppointment(c.UserContext(), userID(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"appointment": a})
}

func (h *Handler) submitTestimonial(c *fiber.Ctx) error {
	var in salon.TestimonialInput
	if err := parse(c, &in); err != nil {
		return err
	}
	t, err := h.svc.SubmitTestimonial(c.UserContext(), userID(c), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"testimonial": t})
}

func (h *Handler) profile(c *fiber.Ctx) error {
	u, err := h.svc.Profile(userID(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"user": u})
}

func (h *Handler) updateProfile(c *fiber.Ctx) error {
	var in salon.ProfileInput
	if err := parse(c, &in); err != nil {
		return err
	}
	id, _ := identityFrom(c)
	u, err := h.svc.UpdateProfile(c.UserContext(), id.User.ID, in)
	if err != nil {
		return err
	}
	if err := h.sessions.Refresh(c.UserContext(), id.Claims, u); err != nil {
		log.Printf("refresh session %s: %v", id.Claims.SessionID(), err)
	}
	return c.JSON(fiber.Map{"user": u})
}

func (h *Handler) allAppointments(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"appointments": h.svc.AllAppointments()})
}

func (h *Handler) setStatus(c *fiber.Ctx) error {
	var in struct {
		Status model.Status `json:"status"`
	}
	if err := parse(c, &in); err != nil {
		return err
	}
	a, err := h.svc.SetAppointmentStatus(c.UserContext(), c.Params("id"), in.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"appointment": a})
}

func (h *Handler) pendingTestimonials(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"testimonials": h.svc.PendingTestimonials()})
}

func (h *Handler) approveTestimonial(c *fiber.Ctx) error {
	t, err := h.svc.ApproveTestimonial(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"testimonial": t})
}

func (h *Handler) topClients(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"clients": h.svc.TopClients(c.QueryInt("limit", store.DefaultTopClients))})
}

func (h *Handler) subscribe(c *fiber.Ctx) error {
	var in struct {
		Email string `json:"email"`
	}
	if err := parse(c, &in); err != nil {
		return err
	}
	added, err := h.svc.Subscribe(c.UserContext(), in.Email)
	if err != nil {
		return err
	}
	code := fiber.StatusOK
	if added {
		code = fiber.StatusCreated
	}
	return c.Status(code).JSON(fiber.Map{"subscribed": true, "new": added})
}

func (h *Handler) subscribers(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"subscribers": h.svc.Subscribers()})
}
