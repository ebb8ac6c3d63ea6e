package user

import (
	"backend-xclone/internal/auth"
	"backend-xclone/internal/shared/apperr"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, gate fiber.Handler) {
	// Registered before /:username so the literal path wins.
	r.Get("/suggested", gate, func(c *fiber.Ctx) error {
		accounts, err := svc.Suggested(c.Context(), auth.AuthedID(c))
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(accounts)
	})

	r.Post("/follow/:id", gate, func(c *fiber.Ctx) error {
		followed, err := svc.FollowToggle(c.Context(), auth.AuthedID(c), c.Params("id"))
		if err != nil {
			return apperr.ToFiber(err)
		}
		if followed {
			return c.JSON(fiber.Map{"message": "user followed successfully"})
		}
		return c.JSON(fiber.Map{"message": "user unfollowed successfully"})
	})

	r.Post("/update", gate, func(c *fiber.Ctx) error {
		var req UpdateRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		acct, err := svc.Update(c.Context(), auth.AuthedID(c), req)
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(acct)
	})

	r.Get("/:username", gate, func(c *fiber.Ctx) error {
		acct, err := svc.Profile(c.Context(), c.Params("username"))
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(acct)
	})
}
