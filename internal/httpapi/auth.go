package httpapi

import (
	"time"

	"github.com/authcore/authcore/internal/authflow"
	"github.com/authcore/authcore/internal/authn"
	"github.com/authcore/authcore/internal/mfa"
	"github.com/gofiber/fiber/v2"
)

// authHandlers groups the unauthenticated and MFA-challenge endpoints
// spec.md §6 names under /auth (register, login, MFA verify).
type authHandlers struct {
	flow   *authflow.Flow
	mfa    *mfa.Engine
	hasher *authn.Hasher
}

type registerBody struct {
	Email            string `json:"email"`
	Password         string `json:"password"`
	FirstName        string `json:"firstName"`
	LastName         string `json:"lastName"`
	RegistrationCode string `json:"registrationCode"`
}

func (h *authHandlers) register(c *fiber.Ctx) error {
	var body registerBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	user, err := h.flow.Register(c.Context(), authflow.RegisterRequest{
		Email:            body.Email,
		Password:         body.Password,
		FirstName:        body.FirstName,
		LastName:         body.LastName,
		RegistrationCode: body.RegistrationCode,
	})
	if err != nil {
		return fail(c, err)
	}

	return ok(c, fiber.StatusCreated, "registered", fiber.Map{
		"user":  user.ToDTO(),
		"token": user.Token,
	})
}

type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *authHandlers) login(c *fiber.Ctx) error {
	var body loginBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	result, err := h.flow.Login(c.Context(), authflow.LoginRequest{Email: body.Email, Password: body.Password})
	if err != nil {
		return fail(c, err)
	}

	if result.MFARequired {
		return ok(c, fiber.StatusUnauthorized, "mfa verification required", fiber.Map{
			"mfaRequired": true,
			"flowId":      result.MFAFlowID,
		})
	}

	return ok(c, fiber.StatusOK, "logged in", fiber.Map{
		"user":  result.User.ToDTO(),
		"token": result.BearerToken,
	})
}

type mfaVerifyBody struct {
	FlowID string `json:"flowId"`
	Code   string `json:"code"`
}

// verifyMFA covers both the login-challenge and enable-flow verify steps
// (spec.md §4.3): the flow kind recorded at session-creation time
// disambiguates which is in progress.
func (h *authHandlers) verifyMFA(c *fiber.Ctx) error {
	var body mfaVerifyBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	result, err := h.mfa.Verify(c.Context(), body.FlowID, body.Code)
	if err != nil {
		return fail(c, err)
	}

	return ok(c, fiber.StatusOK, "verified", fiber.Map{
		"user":     result.User.ToDTO(),
		"token":    result.BearerToken,
		"enrolled": result.Enrolled,
	})
}

func (h *authHandlers) enableMFA(c *fiber.Ctx) error {
	p, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	if !p.IsUser() {
		return forbidden(c, "only a user principal may enroll TOTP")
	}

	challenge, err := h.mfa.StartEnable(c.Context(), p.User)
	if err != nil {
		return fail(c, err)
	}

	return ok(c, fiber.StatusOK, "enrollment started", fiber.Map{
		"flowId":  challenge.FlowID,
		"qrImage": challenge.QRImage,
	})
}

type mfaDisableBody struct {
	Code     string `json:"code"`
	Password string `json:"password"`
}

func (h *authHandlers) disableMFA(c *fiber.Ctx) error {
	p, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	if !p.IsUser() {
		return forbidden(c, "only a user principal may disable TOTP")
	}

	var body mfaDisableBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	proofOK := false
	if body.Code != "" && p.User.TOTPSecret != nil {
		if code, err := mfa.CurrentCode(*p.User.TOTPSecret, time.Now().UTC()); err == nil && code == body.Code {
			proofOK = true
		}
	}
	if !proofOK && body.Password != "" {
		if valid, err := h.hasher.Verify(body.Password, p.User.PasswordHash, p.User.Salt); err == nil && valid {
			proofOK = true
		}
	}

	if err := h.mfa.Disable(c.Context(), p.User, proofOK); err != nil {
		return fail(c, err)
	}

	return ok(c, fiber.StatusOK, "TOTP disabled", nil)
}
