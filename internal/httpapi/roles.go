package httpapi

import (
	"github.com/authcore/authcore/internal/audit"
	"github.com/authcore/authcore/internal/model"
	"github.com/authcore/authcore/internal/policy"
	"github.com/authcore/authcore/internal/store"
	"github.com/authcore/authcore/pkg/kernel"
	"github.com/google/uuid"
	"github.com/gofiber/fiber/v2"
)

// roleHandlers implements spec.md §6's /roles endpoints: admin-only
// writes; reads also allow a token principal holding roles:read|* (§6's
// endpoint table), plus the role-delete unassignment fan-out (pull the id
// from every user's role set before dropping the role document).
type roleHandlers struct {
	roles store.RoleRepository
	users store.UserRepository
	audit *audit.Writer
}

func (h *roleHandlers) requireAdmin(c *fiber.Ctx) error {
	p, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	if !p.IsUser() || !p.User.IsAdmin() {
		return forbidden(c, "admin only")
	}
	return nil
}

func (h *roleHandlers) requireReadAccess(c *fiber.Ctx) error {
	p, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	if p.IsUser() && p.User.IsAdmin() {
		return nil
	}
	if policy.TokenHasScope(p, model.ResourceRoles, model.ActionRead) {
		return nil
	}
	return forbidden(c, "admin or roles:read scope required")
}

func (h *roleHandlers) list(c *fiber.Ctx) error {
	if err := h.requireReadAccess(c); err != nil {
		return err
	}
	page, err := h.roles.List(c.Context(), paginationFromQuery(c))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, "", page)
}

func (h *roleHandlers) get(c *fiber.Ctx) error {
	if err := h.requireReadAccess(c); err != nil {
		return err
	}
	role, err := h.roles.FindByID(c.Context(), kernel.NewRoleID(c.Params("id")))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, "", role)
}

type createRoleBody struct {
	Name string `json:"name"`
}

func (h *roleHandlers) create(c *fiber.Ctx) error {
	p, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	if reqErr := h.requireAdmin(c); reqErr != nil {
		return reqErr
	}

	var body createRoleBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	role := model.NewRole(kernel.NewRoleID(uuid.NewString()), body.Name)
	if err := h.roles.Insert(c.Context(), role); err != nil {
		return fail(c, err)
	}

	h.audit.LogCreate(c.Context(), model.EntityRole, role.ID.String(), p.UserID, map[string]any{"name": role.Name})

	return ok(c, fiber.StatusCreated, "created", role)
}

type patchRoleBody struct {
	Name *string `json:"name"`
}

func (h *roleHandlers) patch(c *fiber.Ctx) error {
	p, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	if reqErr := h.requireAdmin(c); reqErr != nil {
		return reqErr
	}

	id := kernel.NewRoleID(c.Params("id"))
	role, err := h.roles.FindByID(c.Context(), id)
	if err != nil {
		return fail(c, err)
	}
	if role.System {
		return forbidden(c, "system roles cannot be renamed")
	}

	var body patchRoleBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	current := map[string]any{"name": role.Name}
	patch := map[string]any{}
	if body.Name != nil {
		patch["name"] = *body.Name
	}

	old, new, modified := audit.Diff(current, patch)
	if !modified {
		return ok(c, fiber.StatusOK, "No updates applied.", role)
	}
	if name, ok := new["name"]; ok {
		role.Name = name.(string)
	}

	if err := h.roles.Replace(c.Context(), role); err != nil {
		return fail(c, err)
	}

	h.audit.LogUpdate(c.Context(), model.EntityRole, role.ID.String(), p.UserID, old, new)

	return ok(c, fiber.StatusOK, "updated", role)
}

// delete implements the role-delete unassignment fan-out: pulls the role
// id from every user's role set before deleting the role document. Refuses
// to delete either sentinel role (spec.md §3: the Admin/Default roles are
// load-bearing for bootstrap and registration).
func (h *roleHandlers) delete(c *fiber.Ctx) error {
	p, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	if reqErr := h.requireAdmin(c); reqErr != nil {
		return reqErr
	}

	id := kernel.NewRoleID(c.Params("id"))
	if id == model.AdminRoleID || id == model.DefaultRoleID {
		return forbidden(c, "system roles cannot be deleted")
	}

	role, err := h.roles.FindByID(c.Context(), id)
	if err != nil {
		return fail(c, err)
	}

	if err := h.users.RemoveRoleFromAll(c.Context(), id); err != nil {
		return fail(c, err)
	}
	if err := h.roles.Delete(c.Context(), id); err != nil {
		return fail(c, err)
	}

	h.audit.LogDelete(c.Context(), model.EntityRole, role.ID.String(), p.UserID)

	return ok(c, fiber.StatusOK, "deleted", nil)
}
