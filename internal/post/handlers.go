package post

import (
	"backend-xclone/internal/auth"
	"backend-xclone/internal/shared/apperr"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, gate fiber.Handler) {
	r.Get("/allpost", gate, func(c *fiber.Ctx) error {
		posts, err := svc.All(c.Context())
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(posts)
	})

	r.Get("/following", gate, func(c *fiber.Ctx) error {
		posts, err := svc.FollowingFeed(c.Context(), auth.AuthedID(c))
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(posts)
	})

	r.Get("/likes/:id", gate, func(c *fiber.Ctx) error {
		posts, err := svc.LikedBy(c.Context(), c.Params("id"))
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(posts)
	})

	r.Get("/user/:username", gate, func(c *fiber.Ctx) error {
		posts, err := svc.ByAuthor(c.Context(), c.Params("username"))
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(posts)
	})

	r.Post("/createpost", gate, func(c *fiber.Ctx) error {
		var req CreateRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		created, err := svc.Create(c.Context(), auth.AuthedID(c), req.Text, req.Img)
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.Status(fiber.StatusCreated).JSON(created)
	})

	r.Post("/like/:id", gate, func(c *fiber.Ctx) error {
		liked, err := svc.ToggleLike(c.Context(), c.Params("id"), auth.AuthedID(c))
		if err != nil {
			return apperr.ToFiber(err)
		}
		if liked {
			return c.JSON(fiber.Map{"message": "post liked successfully"})
		}
		return c.JSON(fiber.Map{"message": "post unliked successfully"})
	})

	r.Post("/comment/:id", gate, func(c *fiber.Ctx) error {
		var req CommentRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		updated, err := svc.Comment(c.Context(), c.Params("id"), auth.AuthedID(c), req.Text)
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(updated)
	})

	r.Delete("/:id", gate, func(c *fiber.Ctx) error {
		if err := svc.Delete(c.Context(), c.Params("id"), auth.AuthedID(c)); err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(fiber.Map{"message": "post has been deleted successfully"})
	})
}
