package apperr

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
)

// Error kinds. Services wrap one of these with New; handlers map the kind
// to an HTTP status with ToFiber.
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrConflict           = errors.New("conflict")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrUpstream           = errors.New("upstream failure")
)

type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

// New attaches a user-facing message to an error kind.
func New(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

func Status(err error) int {
	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrConflict):
		return fiber.StatusBadRequest
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrUnauthenticated):
		return fiber.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

// ToFiber converts a service error into the error fiber renders to the
// client. Messages of known kinds pass through; anything unexpected is
// logged server-side and replaced with a generic message.
func ToFiber(err error) error {
	status := Status(err)
	if status == fiber.StatusInternalServerError && !errors.Is(err, ErrUpstream) {
		log.Printf("internal error: %v", err)
		return fiber.NewError(status, "internal server error")
	}
	return fiber.NewError(status, err.Error())
}

// ErrorHandler renders every handler error as a JSON payload.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "internal server error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}
	return c.Status(code).JSON(fiber.Map{"error": message})
}
