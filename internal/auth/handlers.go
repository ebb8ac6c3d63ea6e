package auth

import (
	"backend-xclone/internal/shared/apperr"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, gate fiber.Handler) {
	r.Post("/signup", func(c *fiber.Ctx) error {
		var req SignupRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		acct, err := svc.Signup(c.Context(), req)
		if err != nil {
			return apperr.ToFiber(err)
		}
		cookie, err := svc.SessionFor(acct.ID)
		if err != nil {
			return apperr.ToFiber(err)
		}
		c.Cookie(cookie)
		return c.Status(fiber.StatusCreated).JSON(acct)
	})

	r.Post("/login", func(c *fiber.Ctx) error {
		var req LoginRequest
		if err := c.BodyParser(&req); err != nil || req.Username == "" || req.Password == "" {
			return fiber.NewError(fiber.StatusBadRequest, "username and password required")
		}
		acct, err := svc.Login(c.Context(), req)
		if err != nil {
			return apperr.ToFiber(err)
		}
		cookie, err := svc.SessionFor(acct.ID)
		if err != nil {
			return apperr.ToFiber(err)
		}
		c.Cookie(cookie)
		return c.JSON(acct)
	})

	r.Post("/logout", func(c *fiber.Ctx) error {
		c.Cookie(svc.ExpiredSession())
		return c.JSON(fiber.Map{"message": "logged out successfully"})
	})

	r.Get("/me", gate, func(c *fiber.Ctx) error {
		acct, err := svc.AccountByID(c.Context(), AuthedID(c))
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(acct)
	})
}
