package httpapi

import (
	"bytes"
	"encoding/json"

	"github.com/authcore/authcore/internal/audit"
	"github.com/authcore/authcore/internal/model"
	"github.com/authcore/authcore/internal/passkey"
	"github.com/authcore/authcore/internal/policy"
	"github.com/authcore/authcore/internal/store"
	"github.com/go-webauthn/webauthn/protocol"
	"github.com/gofiber/fiber/v2"
)

// passkeyHandlers implements spec.md §6's passkey endpoints: authenticated
// registration ceremony, unauthenticated discoverable login, a list of the
// caller's own passkeys, and owner-or-admin delete.
type passkeyHandlers struct {
	engine   *passkey.Engine
	passkeys store.PasskeyRepository
	audit    *audit.Writer
}

func (h *passkeyHandlers) get(c *fiber.Ctx) error {
	p, err := requirePrincipal(c)
	if err != nil {
		return err
	}

	id := c.Params("id")
	pk, err := h.passkeys.FindByID(c.Context(), id)
	if err != nil {
		return fail(c, err)
	}
	if !policy.CanWriteOwnerOrAdmin(p, pk.OwnerID) {
		return forbidden(c, "not permitted")
	}
	return ok(c, fiber.StatusOK, "", pk.ToDTO())
}

type patchPasskeyBody struct {
	Name *string `json:"name"`
}

func (h *passkeyHandlers) patch(c *fiber.Ctx) error {
	p, err := requirePrincipal(c)
	if err != nil {
		return err
	}

	id := c.Params("id")
	pk, err := h.passkeys.FindByID(c.Context(), id)
	if err != nil {
		return fail(c, err)
	}
	if !policy.CanWriteOwnerOrAdmin(p, pk.OwnerID) {
		return forbidden(c, "not permitted")
	}

	var body patchPasskeyBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	current := map[string]any{"name": pk.Name}
	patch := map[string]any{}
	if body.Name != nil {
		patch["name"] = *body.Name
	}

	old, new, modified := audit.Diff(current, patch)
	if !modified {
		return ok(c, fiber.StatusOK, "No updates applied.", pk.ToDTO())
	}
	if v, ok := new["name"]; ok {
		pk.Name = v.(string)
	}

	if err := h.passkeys.Replace(c.Context(), pk); err != nil {
		return fail(c, err)
	}

	h.audit.LogUpdate(c.Context(), model.EntityPasskey, pk.ID, p.UserID, old, new)

	return ok(c, fiber.StatusOK, "updated", pk.ToDTO())
}

func (h *passkeyHandlers) beginRegistration(c *fiber.Ctx) error {
	p, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	if !p.IsUser() {
		return forbidden(c, "only a user principal may register a passkey")
	}

	creation, regID, err := h.engine.BeginRegistration(c.Context(), p.User)
	if err != nil {
		return fail(c, err)
	}

	return ok(c, fiber.StatusOK, "registration started", fiber.Map{
		"registrationId": regID,
		"options":        creation,
	})
}

type finishRegistrationBody struct {
	RegistrationID string          `json:"registrationId"`
	Response       json.RawMessage `json:"response"`
}

func (h *passkeyHandlers) finishRegistration(c *fiber.Ctx) error {
	p, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	if !p.IsUser() {
		return forbidden(c, "only a user principal may register a passkey")
	}

	var body finishRegistrationBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	parsed, err := protocol.ParseCredentialCreationResponseBody(bytes.NewReader(body.Response))
	if err != nil {
		return badRequest(c, "invalid credential creation response")
	}

	pk, err := h.engine.FinishRegistration(c.Context(), p.UserID.String(), body.RegistrationID, parsed)
	if err != nil {
		return fail(c, err)
	}

	return ok(c, fiber.StatusCreated, "passkey registered", pk.ToDTO())
}

func (h *passkeyHandlers) beginLogin(c *fiber.Ctx) error {
	assertion, authID, err := h.engine.BeginDiscoverableLogin(c.Context())
	if err != nil {
		return fail(c, err)
	}

	return ok(c, fiber.StatusOK, "login started", fiber.Map{
		"authenticationId": authID,
		"options":          assertion,
	})
}

type finishLoginBody struct {
	AuthenticationID string          `json:"authenticationId"`
	Response         json.RawMessage `json:"response"`
}

func (h *passkeyHandlers) finishLogin(c *fiber.Ctx) error {
	var body finishLoginBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	parsed, err := protocol.ParseCredentialRequestResponseBody(bytes.NewReader(body.Response))
	if err != nil {
		return badRequest(c, "invalid credential assertion response")
	}

	result, err := h.engine.FinishDiscoverableLogin(c.Context(), body.AuthenticationID, parsed)
	if err != nil {
		return fail(c, err)
	}

	return ok(c, fiber.StatusOK, "logged in", fiber.Map{
		"user":  result.User.ToDTO(),
		"token": result.BearerToken,
	})
}

func (h *passkeyHandlers) list(c *fiber.Ctx) error {
	p, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	ownerID := p.UserID
	if !policy.CanWriteOwnerOrAdmin(p, ownerID) {
		return forbidden(c, "not permitted")
	}

	keys, err := h.passkeys.ListByOwner(c.Context(), ownerID)
	if err != nil {
		return fail(c, err)
	}

	dtos := make([]model.PasskeyDTO, 0, len(keys))
	for _, k := range keys {
		dtos = append(dtos, k.ToDTO())
	}
	return ok(c, fiber.StatusOK, "", dtos)
}

func (h *passkeyHandlers) delete(c *fiber.Ctx) error {
	p, err := requirePrincipal(c)
	if err != nil {
		return err
	}

	id := c.Params("id")
	pk, err := h.passkeys.FindByID(c.Context(), id)
	if err != nil {
		return fail(c, err)
	}
	if !policy.CanWriteOwnerOrAdmin(p, pk.OwnerID) {
		return forbidden(c, "not permitted")
	}

	if err := h.passkeys.Delete(c.Context(), id); err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, "deleted", nil)
}
