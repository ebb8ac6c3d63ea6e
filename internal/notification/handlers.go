package notification

import (
	"backend-xclone/internal/auth"
	"backend-xclone/internal/shared/apperr"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, gate fiber.Handler) {
	r.Get("/", gate, func(c *fiber.Ctx) error {
		list, err := svc.ListFor(c.Context(), auth.AuthedID(c))
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(list)
	})

	r.Delete("/", gate, func(c *fiber.Ctx) error {
		if err := svc.DeleteAllFor(c.Context(), auth.AuthedID(c)); err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(fiber.Map{"message": "notifications deleted successfully"})
	})
}
