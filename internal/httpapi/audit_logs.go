package httpapi

import (
	"github.com/authcore/authcore/internal/model"
	"github.com/authcore/authcore/internal/policy"
	"github.com/authcore/authcore/internal/store"
	"github.com/authcore/authcore/pkg/kernel"
	"github.com/gofiber/fiber/v2"
)

// auditLogHandlers implements spec.md §6's /audit-logs endpoints: admin-
// only read by entity type (/audit-logs/<type>), and the per-user
// aggregation view (/users/<id>/audit-logs) that allows self, admin, or a
// token principal holding audit-logs:read (supplementing
// original_source/models/audit_log.rs::get_by_user_id).
type auditLogHandlers struct {
	logs store.AuditLogRepository
}

func (h *auditLogHandlers) requireAdmin(c *fiber.Ctx) error {
	p, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	if !p.IsUser() || !p.User.IsAdmin() {
		return forbidden(c, "admin only")
	}
	return nil
}

func (h *auditLogHandlers) listByEntityType(c *fiber.Ctx) error {
	if err := h.requireAdmin(c); err != nil {
		return err
	}

	entityType := model.EntityType(c.Params("entityType"))
	page, err := h.logs.ListByEntityType(c.Context(), entityType, paginationFromQuery(c))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, "", page)
}

func (h *auditLogHandlers) listByAuthor(c *fiber.Ctx) error {
	p, err := requirePrincipal(c)
	if err != nil {
		return err
	}

	author := kernel.NewUserID(c.Params("authorId"))
	if !policy.CanReadSelfOrAdmin(p, author, model.ResourceAuditLogs, model.ActionRead) {
		return forbidden(c, "not permitted")
	}

	page, err := h.logs.ListByAuthor(c.Context(), author, paginationFromQuery(c))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, "", page)
}
