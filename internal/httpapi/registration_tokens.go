package httpapi

import (
	"time"

	"github.com/authcore/authcore/internal/audit"
	"github.com/authcore/authcore/internal/authn"
	"github.com/authcore/authcore/internal/model"
	"github.com/authcore/authcore/internal/store"
	"github.com/authcore/authcore/pkg/kernel"
	"github.com/google/uuid"
	"github.com/gofiber/fiber/v2"
)

// registrationTokenHandlers implements spec.md §6's /registration-tokens
// endpoints: admin-only CRUD for invite-gated registration.
type registrationTokenHandlers struct {
	tokens store.RegistrationTokenRepository
	audit  *audit.Writer
}

func (h *registrationTokenHandlers) requireAdmin(c *fiber.Ctx) (kernel.UserID, error) {
	p, err := requirePrincipal(c)
	if err != nil {
		return "", err
	}
	if !p.IsUser() || !p.User.IsAdmin() {
		return "", forbidden(c, "admin only")
	}
	return p.UserID, nil
}

func (h *registrationTokenHandlers) list(c *fiber.Ctx) error {
	if _, err := h.requireAdmin(c); err != nil {
		return err
	}
	page, err := h.tokens.List(c.Context(), paginationFromQuery(c))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, "", page)
}

func (h *registrationTokenHandlers) get(c *fiber.Ctx) error {
	if _, err := h.requireAdmin(c); err != nil {
		return err
	}
	tok, err := h.tokens.FindByID(c.Context(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, "", tok)
}

type createRegistrationTokenBody struct {
	MaxUses     int             `json:"maxUses"`
	ExpiresIn   *int64          `json:"expiresIn"`
	AutoRoles   []kernel.RoleID `json:"autoRoles"`
}

func (h *registrationTokenHandlers) create(c *fiber.Ctx) error {
	author, err := h.requireAdmin(c)
	if err != nil {
		return err
	}

	var body createRegistrationTokenBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	code, err := authn.NewRegistrationCode()
	if err != nil {
		return fail(c, err)
	}

	now := time.Now().UTC()
	maxUses := body.MaxUses
	if maxUses <= 0 {
		maxUses = 1
	}

	tok := &model.RegistrationToken{
		ID:          uuid.NewString(),
		Code:        code,
		MaxUses:     maxUses,
		ExpiresIn:   body.ExpiresIn,
		AutoRoles:   body.AutoRoles,
		CreatedAt:   now,
	}
	if body.ExpiresIn != nil {
		tok.ExpiresFrom = &now
	}

	if err := h.tokens.Insert(c.Context(), tok); err != nil {
		return fail(c, err)
	}

	h.audit.LogCreate(c.Context(), model.EntityRegistrationToken, tok.ID, author, map[string]any{"code": tok.Code})

	return ok(c, fiber.StatusCreated, "created", tok)
}

func (h *registrationTokenHandlers) delete(c *fiber.Ctx) error {
	author, err := h.requireAdmin(c)
	if err != nil {
		return err
	}

	id := c.Params("id")
	if _, err := h.tokens.FindByID(c.Context(), id); err != nil {
		return fail(c, err)
	}

	if err := h.tokens.Delete(c.Context(), id); err != nil {
		return fail(c, err)
	}

	h.audit.LogDelete(c.Context(), model.EntityRegistrationToken, id, author)

	return ok(c, fiber.StatusOK, "deleted", nil)
}
