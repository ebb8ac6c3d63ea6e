package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
)

func expectAccountRow(mock pgxmock.PgxPoolIface, id string) {
	created := time.Now()
	mock.ExpectQuery(`SELECT id, username, email, full_name, bio, link, profile_img, cover_img, created_at, updated_at FROM users WHERE id=`).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"id", "username", "email", "full_name", "bio", "link", "profile_img", "cover_img", "created_at", "updated_at"}).
			AddRow(id, "alice", "alice@x.com", "Alice A", "", "", "", "", created, created))
}

func gateApp(t *testing.T, mock pgxmock.PgxPoolIface, tokens *TokenService) *fiber.App {
	t.Helper()
	app := fiber.New()
	app.Get("/private", CookieAuth(tokens, mock), func(c *fiber.Ctx) error {
		if AuthedID(c) == "" {
			return fiber.NewError(fiber.StatusInternalServerError, "gate did not set user_id")
		}
		if _, ok := c.Locals("user").(Account); !ok {
			return fiber.NewError(fiber.StatusInternalServerError, "gate did not set user")
		}
		return c.SendStatus(http.StatusOK)
	})
	return app
}

func TestCookieAuthMissingCookie(t *testing.T) {
	app := gateApp(t, newMock(t), NewTokenService("secret", 15))

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/private", nil))
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestCookieAuthBadToken(t *testing.T) {
	app := gateApp(t, newMock(t), NewTokenService("secret", 15))

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "garbage"})
	resp, _ := app.Test(req)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestCookieAuthAccountGone(t *testing.T) {
	mock := newMock(t)
	tokens := NewTokenService("secret", 15)
	app := gateApp(t, mock, tokens)

	mock.ExpectQuery(`SELECT id, username, email, full_name, bio, link, profile_img, cover_img, created_at, updated_at FROM users WHERE id=`).
		WithArgs("user-1").
		WillReturnError(pgx.ErrNoRows)

	token, _ := tokens.Issue("user-1")
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	resp, _ := app.Test(req)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestCookieAuthSuccess(t *testing.T) {
	mock := newMock(t)
	tokens := NewTokenService("secret", 15)
	app := gateApp(t, mock, tokens)

	expectAccountRow(mock, "user-1")

	token, _ := tokens.Issue("user-1")
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	resp, _ := app.Test(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}
