package httpapi

import (
	"github.com/authcore/authcore/internal/model"
	"github.com/authcore/authcore/internal/policy"
	"github.com/authcore/authcore/internal/store"
	"github.com/authcore/authcore/pkg/kernel"
	"github.com/gofiber/fiber/v2"
)

// connectionHandlers implements spec.md §6's /connections endpoints: a
// user's view of the OAuth applications they've granted tokens to. Allows
// a user principal (self or admin) or a token principal holding the
// connections:read|delete scope (§6's endpoint table).
type connectionHandlers struct {
	tokens store.OAuthTokenRepository
}

func (h *connectionHandlers) get(c *fiber.Ctx) error {
	p, err := requirePrincipal(c)
	if err != nil {
		return err
	}

	userID := kernel.NewUserID(c.Params("userId"))
	if !policy.CanReadSelfOrAdmin(p, userID, model.ResourceConnections, model.ActionRead) {
		return forbidden(c, "not permitted")
	}

	appID := c.Params("applicationId")
	tok, err := h.tokens.FindByUserAndApplication(c.Context(), userID, appID)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, "", tok)
}

func (h *connectionHandlers) delete(c *fiber.Ctx) error {
	p, err := requirePrincipal(c)
	if err != nil {
		return err
	}

	userID := kernel.NewUserID(c.Params("userId"))
	if !policy.CanReadSelfOrAdmin(p, userID, model.ResourceConnections, model.ActionDelete) {
		return forbidden(c, "not permitted")
	}

	appID := c.Params("applicationId")
	tok, err := h.tokens.FindByUserAndApplication(c.Context(), userID, appID)
	if err != nil {
		return fail(c, err)
	}

	if err := h.tokens.Delete(c.Context(), tok.ID); err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, "disconnected", nil)
}
