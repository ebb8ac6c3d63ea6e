package auth

import (
	"errors"

	"backend-xclone/internal/db"
	"backend-xclone/internal/shared/apperr"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
)

// CookieAuth resolves the session cookie to an authenticated account or
// rejects the request. On success the scrubbed account is stored in
// Locals("user") and its id in Locals("user_id"). The token is never
// refreshed or rotated here.
func CookieAuth(tokens *TokenService, q db.Querier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Cookies(CookieName)
		if raw == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "you are not logged in, please login")
		}

		accountID, err := tokens.Verify(raw)
		if err != nil {
			return apperr.ToFiber(err)
		}

		acct, err := accountByField(c.Context(), q, "id", accountID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fiber.NewError(fiber.StatusNotFound, "user not found")
			}
			return apperr.ToFiber(err)
		}

		c.Locals("user_id", acct.ID)
		c.Locals("user", acct)
		return c.Next()
	}
}

// AuthedID pulls the account id the gate stored for this request.
func AuthedID(c *fiber.Ctx) string {
	id, _ := c.Locals("user_id").(string)
	return id
}
