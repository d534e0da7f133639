package httpapi

import (
	"time"

	"github.com/authcore/authcore/internal/audit"
	"github.com/authcore/authcore/internal/authn"
	"github.com/authcore/authcore/internal/model"
	"github.com/authcore/authcore/internal/oauth"
	"github.com/authcore/authcore/internal/policy"
	"github.com/authcore/authcore/internal/store"
	"github.com/authcore/authcore/pkg/errx"
	"github.com/authcore/authcore/pkg/ptrx"
	"github.com/google/uuid"
	"github.com/gofiber/fiber/v2"
)

var oauthAppRegistry = errx.NewRegistry("OAUTH_APPLICATIONS")

var ErrOAuthAppsDisabled = oauthAppRegistry.Register("DISABLED_FOR_USERS", errx.TypeAuthorization, 403, "user-owned OAuth applications are disabled")

// oauthApplicationHandlers implements spec.md §6's /oauth-applications
// endpoints: owner-or-admin CRUD, gated by the settings singleton's
// allow_oauth_apps_for_users flag for non-admin owners.
type oauthApplicationHandlers struct {
	apps     store.OAuthApplicationRepository
	settings store.SettingsRepository
	oauth    *oauth.Engine
	audit    *audit.Writer
}

func (h *oauthApplicationHandlers) list(c *fiber.Ctx) error {
	p, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	if p.IsUser() && p.User.IsAdmin() {
		page, err := h.apps.List(c.Context(), paginationFromQuery(c))
		if err != nil {
			return fail(c, err)
		}
		return ok(c, fiber.StatusOK, "", page)
	}
	if p.IsToken() && !policy.TokenHasScope(p, model.ResourceOAuthApplications, model.ActionRead) {
		return forbidden(c, "token missing oauth-applications:read scope")
	}

	apps, err := h.apps.ListByOwner(c.Context(), p.UserID)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, "", apps)
}

func (h *oauthApplicationHandlers) get(c *fiber.Ctx) error {
	p, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	app, err := h.apps.FindByID(c.Context(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	if p.IsToken() {
		if p.UserID != app.OwnerID || !policy.TokenHasScope(p, model.ResourceOAuthApplications, model.ActionRead) {
			return forbidden(c, "not permitted")
		}
		return ok(c, fiber.StatusOK, "", app)
	}
	if !policy.CanWriteOwnerOrAdmin(p, app.OwnerID) {
		return forbidden(c, "not permitted")
	}
	return ok(c, fiber.StatusOK, "", app)
}

type createOAuthAppBody struct {
	Name         string   `json:"name"`
	Description  *string  `json:"description"`
	RedirectURIs []string `json:"redirectUris"`
}

func (h *oauthApplicationHandlers) create(c *fiber.Ctx) error {
	p, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	if !p.IsUser() {
		return forbidden(c, "only a user principal may register an application")
	}

	if !p.User.IsAdmin() {
		settings, err := h.settings.Get(c.Context())
		if err != nil {
			return fail(c, err)
		}
		if !settings.AllowOAuthAppsForUsers {
			return fail(c, oauthAppRegistry.New(ErrOAuthAppsDisabled))
		}
	}

	var body createOAuthAppBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	secret, err := authn.NewClientSecret()
	if err != nil {
		return fail(c, err)
	}

	app := &model.OAuthApplication{
		ID:           uuid.NewString(),
		Name:         body.Name,
		Description:  body.Description,
		RedirectURIs: body.RedirectURIs,
		ClientSecret: secret,
		OwnerID:      p.UserID,
		CreatedAt:    time.Now().UTC(),
	}

	if err := h.apps.Insert(c.Context(), app); err != nil {
		return fail(c, err)
	}

	h.audit.LogCreate(c.Context(), model.EntityOAuthApplication, app.ID, p.UserID, map[string]any{"name": app.Name})

	return ok(c, fiber.StatusCreated, "created", app)
}

type patchOAuthAppBody struct {
	Name         *string  `json:"name"`
	Description  *string  `json:"description"`
	RedirectURIs []string `json:"redirectUris"`
}

func (h *oauthApplicationHandlers) patch(c *fiber.Ctx) error {
	p, err := requirePrincipal(c)
	if err != nil {
		return err
	}

	app, err := h.apps.FindByID(c.Context(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	if !policy.CanWriteOwnerOrAdmin(p, app.OwnerID) {
		return forbidden(c, "not permitted")
	}

	var body patchOAuthAppBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	current := map[string]any{
		"name":         app.Name,
		"description":  app.Description,
		"redirectUris": app.RedirectURIs,
	}
	patch := map[string]any{}
	if body.Name != nil {
		patch["name"] = *body.Name
	}
	if body.Description != nil {
		patch["description"] = ptrx.String(*body.Description)
	}
	if body.RedirectURIs != nil {
		patch["redirectUris"] = body.RedirectURIs
	}

	old, new, modified := audit.Diff(current, patch)
	if !modified {
		return ok(c, fiber.StatusOK, "No updates applied.", app)
	}
	if v, ok := new["name"]; ok {
		app.Name = v.(string)
	}
	if v, ok := new["description"]; ok {
		app.Description = v.(*string)
	}
	if v, ok := new["redirectUris"]; ok {
		app.RedirectURIs = v.([]string)
	}

	if err := h.apps.Replace(c.Context(), app); err != nil {
		return fail(c, err)
	}

	h.audit.LogUpdate(c.Context(), model.EntityOAuthApplication, app.ID, p.UserID, old, new)

	return ok(c, fiber.StatusOK, "updated", app)
}

// delete implements the application-delete cascade (spec.md §4.7
// "Cascade"): every token by application_id, then the application.
func (h *oauthApplicationHandlers) delete(c *fiber.Ctx) error {
	p, err := requirePrincipal(c)
	if err != nil {
		return err
	}

	app, err := h.apps.FindByID(c.Context(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	if !policy.CanWriteOwnerOrAdmin(p, app.OwnerID) {
		return forbidden(c, "not permitted")
	}

	if err := h.oauth.DeleteApplication(c.Context(), app); err != nil {
		return fail(c, err)
	}

	h.audit.LogDelete(c.Context(), model.EntityOAuthApplication, app.ID, p.UserID)

	return ok(c, fiber.StatusOK, "deleted", nil)
}
