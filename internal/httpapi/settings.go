package httpapi

import (
	"github.com/authcore/authcore/internal/audit"
	"github.com/authcore/authcore/internal/model"
	"github.com/authcore/authcore/internal/store"
	"github.com/gofiber/fiber/v2"
)

// settingsHandlers implements spec.md §6's /settings endpoints: public
// read (needed by unauthenticated clients to know whether registration is
// open), system-user-only patch.
type settingsHandlers struct {
	settings store.SettingsRepository
	audit    *audit.Writer
}

func (h *settingsHandlers) get(c *fiber.Ctx) error {
	s, err := h.settings.Get(c.Context())
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, "", s)
}

type patchSettingsBody struct {
	OpenRegistration       *bool `json:"openRegistration"`
	AllowOAuthAppsForUsers *bool `json:"allowOAuthAppsForUsers"`
}

func (h *settingsHandlers) patch(c *fiber.Ctx) error {
	// spec.md §3/§6: settings are mutable only by the system user, not by
	// admins in general (§9 flags exactly this admin/system-admin mixup as
	// a bug to correct).
	p, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	if !p.IsUser() || !p.User.IsSystem() {
		return forbidden(c, "system user only")
	}

	s, err := h.settings.Get(c.Context())
	if err != nil {
		return fail(c, err)
	}

	var body patchSettingsBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	current := map[string]any{"openRegistration": s.OpenRegistration, "allowOAuthAppsForUsers": s.AllowOAuthAppsForUsers}
	patch := map[string]any{}
	if body.OpenRegistration != nil {
		patch["openRegistration"] = *body.OpenRegistration
	}
	if body.AllowOAuthAppsForUsers != nil {
		patch["allowOAuthAppsForUsers"] = *body.AllowOAuthAppsForUsers
	}

	old, new, modified := audit.Diff(current, patch)
	if !modified {
		return ok(c, fiber.StatusOK, "No updates applied.", s)
	}
	if v, ok := new["openRegistration"]; ok {
		s.OpenRegistration = v.(bool)
	}
	if v, ok := new["allowOAuthAppsForUsers"]; ok {
		s.AllowOAuthAppsForUsers = v.(bool)
	}

	if err := h.settings.Replace(c.Context(), s); err != nil {
		return fail(c, err)
	}

	h.audit.LogUpdate(c.Context(), model.EntitySettings, s.ID, p.UserID, old, new)

	return ok(c, fiber.StatusOK, "updated", s)
}
