package apperr

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		kind error
		want int
	}{
		{ErrInvalidInput, http.StatusBadRequest},
		{ErrConflict, http.StatusBadRequest},
		{ErrInvalidCredentials, http.StatusUnauthorized},
		{ErrUnauthenticated, http.StatusUnauthorized},
		{ErrForbidden, http.StatusForbidden},
		{ErrNotFound, http.StatusNotFound},
		{ErrUpstream, http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := Status(New(tc.kind, "msg")); got != tc.want {
			t.Fatalf("status for %v: got %d want %d", tc.kind, got, tc.want)
		}
	}
}

func TestNewKeepsMessageAndKind(t *testing.T) {
	err := New(ErrConflict, "username is already taken")
	if err.Error() != "username is already taken" {
		t.Fatalf("unexpected message: %s", err.Error())
	}
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict kind")
	}
}

func TestToFiberKnownKind(t *testing.T) {
	err := ToFiber(New(ErrNotFound, "user not found"))
	var fe *fiber.Error
	if !errors.As(err, &fe) {
		t.Fatalf("expected fiber error")
	}
	if fe.Code != http.StatusNotFound || fe.Message != "user not found" {
		t.Fatalf("unexpected fiber error: %d %s", fe.Code, fe.Message)
	}
}

func TestToFiberHidesInternalDetail(t *testing.T) {
	err := ToFiber(errors.New("pq: connection refused"))
	var fe *fiber.Error
	if !errors.As(err, &fe) {
		t.Fatalf("expected fiber error")
	}
	if fe.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500")
	}
	if fe.Message != "internal server error" {
		t.Fatalf("internal detail leaked: %s", fe.Message)
	}
}

func TestToFiberUpstreamMessagePassesThrough(t *testing.T) {
	err := ToFiber(New(ErrUpstream, "media upload failed"))
	var fe *fiber.Error
	if !errors.As(err, &fe) {
		t.Fatalf("expected fiber error")
	}
	if fe.Code != http.StatusInternalServerError || fe.Message != "media upload failed" {
		t.Fatalf("unexpected fiber error: %d %s", fe.Code, fe.Message)
	}
}

func TestErrorHandlerRendersJSON(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusBadRequest, "bad payload")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil))
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400")
	}
	body, _ := io.ReadAll(resp.Body)
	var payload map[string]string
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("expected json body: %v", err)
	}
	if payload["error"] != "bad payload" {
		t.Fatalf("unexpected error payload: %v", payload)
	}
}

func TestErrorHandlerPlainError(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return errors.New("raw failure")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil))
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500")
	}
	body, _ := io.ReadAll(resp.Body)
	var payload map[string]string
	_ = json.Unmarshal(body, &payload)
	if payload["error"] != "internal server error" {
		t.Fatalf("unexpected error payload: %v", payload)
	}
}
