// Package httpapi is the Resource handlers component (spec.md §2, §6):
// Fiber routes implementing every endpoint in §6's table, each resolving a
// Principal, applying internal/policy's predicates, performing the
// operation, and returning the uniform envelope.
package httpapi

import (
	"github.com/authcore/authcore/pkg/errx"
	"github.com/authcore/authcore/pkg/logx"
	"github.com/gofiber/fiber/v2"
)

// envelope is spec.md §6's uniform response shape:
// {"status": <int>, "message": <string>, "data": <payload>}; the data key
// is omitted when there is no payload.
type envelope struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func ok(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(envelope{Status: status, Message: message, Data: data})
}

// fail writes err into the uniform envelope as a handler's final action.
// errx.Error values use their registered HTTPStatus/Message; anything else
// is logged and surfaced as a generic 500 (spec.md §7: "store errors are
// fatal to the request").
func fail(c *fiber.Ctx, err error) error {
	return writeEnvelopeError(c, err)
}

// writeEnvelopeError is the single conversion spec.md §7 describes
// ("handlers map [typed errors] to the response envelope by a single
// conversion"). It backs both fail (called directly by handlers) and the
// app-level ErrorHandler (router.go) for handlers that instead propagate an
// error up the call chain — which guard helpers like requireAdmin and
// requirePrincipal rely on: forbidden/badRequest build a real, non-nil
// error so `if err := guard(c); err != nil { return err }` short-circuits
// correctly instead of silently continuing.
func writeEnvelopeError(c *fiber.Ctx, err error) error {
	var e *errx.Error
	if errx.As(err, &e) {
		return c.Status(e.HTTPStatus).JSON(envelope{Status: e.HTTPStatus, Message: e.Message})
	}
	logx.WithError(err).Error("unhandled error in request handler")
	return c.Status(fiber.StatusInternalServerError).JSON(envelope{Status: 500, Message: "internal server error"})
}

func forbidden(c *fiber.Ctx, message string) error {
	e := errx.New(message, errx.TypeAuthorization)
	e.Code = "HTTP_FORBIDDEN"
	e.HTTPStatus = fiber.StatusForbidden
	return e
}

func badRequest(c *fiber.Ctx, message string) error {
	e := errx.New(message, errx.TypeValidation)
	e.Code = "HTTP_BAD_REQUEST"
	return e
}
