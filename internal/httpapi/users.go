package httpapi

import (
	"strings"
	"time"

	"github.com/authcore/authcore/internal/audit"
	"github.com/authcore/authcore/internal/authn"
	"github.com/authcore/authcore/internal/model"
	"github.com/authcore/authcore/internal/oauth"
	"github.com/authcore/authcore/internal/policy"
	"github.com/authcore/authcore/internal/store"
	"github.com/authcore/authcore/pkg/errx"
	"github.com/authcore/authcore/pkg/kernel"
	"github.com/google/uuid"
	"github.com/gofiber/fiber/v2"
)

var userRegistry = errx.NewRegistry("USERS")

var (
	ErrUserNotFound       = userRegistry.Register("NOT_FOUND", errx.TypeNotFound, 404, "user not found")
	ErrUserEmailTaken     = userRegistry.Register("EMAIL_TAKEN", errx.TypeConflict, 409, "email already registered")
	ErrSystemUserModified = userRegistry.Register("SYSTEM_USER_MODIFICATION", errx.TypeAuthorization, 403, "the system user cannot be modified")
)

// userHandlers implements spec.md §6's /users endpoints: self-read, admin
// CRUD+list, and the cascade delete into OAuth applications/tokens.
type userHandlers struct {
	users  store.UserRepository
	oauth  *oauth.Engine
	audit  *audit.Writer
	hasher *authn.Hasher
}

func (h *userHandlers) me(c *fiber.Ctx) error {
	p, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	if p.IsToken() && !policy.TokenHasScope(p, model.ResourceUsers, model.ActionRead) {
		return forbidden(c, "token missing user:read scope")
	}

	user, err := h.users.FindByID(c.Context(), p.UserID)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, "", user.ToDTO())
}

func (h *userHandlers) get(c *fiber.Ctx) error {
	p, err := requirePrincipal(c)
	if err != nil {
		return err
	}

	id := kernel.NewUserID(c.Params("id"))
	if !policy.CanReadSelfOrAdmin(p, id, model.ResourceUsers, model.ActionRead) {
		return forbidden(c, "not permitted")
	}

	user, err := h.users.FindByID(c.Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, "", user.ToDTO())
}

func (h *userHandlers) list(c *fiber.Ctx) error {
	p, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	if !p.IsUser() || !p.User.IsAdmin() {
		return forbidden(c, "not permitted")
	}

	opts := paginationFromQuery(c)
	page, err := h.users.List(c.Context(), opts)
	if err != nil {
		return fail(c, err)
	}

	dtoPage := kernel.NewPaginated(toUserDTOs(page.Items), page.Page.Number, page.Page.Size, page.Page.Total)
	return ok(c, fiber.StatusOK, "", dtoPage)
}

func toUserDTOs(users []*model.User) []model.UserDTO {
	out := make([]model.UserDTO, 0, len(users))
	for _, u := range users {
		out = append(out, u.ToDTO())
	}
	return out
}

type createUserBody struct {
	Email     string          `json:"email"`
	Password  string          `json:"password"`
	FirstName string          `json:"firstName"`
	LastName  string          `json:"lastName"`
	Roles     []kernel.RoleID `json:"roles"`
}

// create implements the admin-created registration lifecycle path
// (spec.md §3): skips the open-registration/invite-code gate that
// internal/authflow.Register enforces for self-service signups.
func (h *userHandlers) create(c *fiber.Ctx) error {
	p, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	if !p.IsUser() || !p.User.IsAdmin() {
		return forbidden(c, "admin only")
	}

	var body createUserBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	body.Email = strings.ToLower(body.Email)

	if _, err := h.users.FindByEmail(c.Context(), body.Email); err == nil {
		return fail(c, userRegistry.New(ErrUserEmailTaken))
	}

	hash, salt, err := h.hasher.Hash(body.Password)
	if err != nil {
		return fail(c, err)
	}
	token, err := authn.NewUserBearerToken()
	if err != nil {
		return fail(c, err)
	}

	roles := body.Roles
	if len(roles) == 0 {
		roles = []kernel.RoleID{model.DefaultRoleID}
	}

	user := &model.User{
		ID:           kernel.NewUserID(uuid.NewString()),
		Email:        body.Email,
		FirstName:    body.FirstName,
		LastName:     body.LastName,
		PasswordHash: hash,
		Salt:         salt,
		Token:        token,
		Roles:        roles,
		CreatedAt:    time.Now().UTC(),
	}

	if err := h.users.Insert(c.Context(), user); err != nil {
		return fail(c, err)
	}

	h.audit.LogCreate(c.Context(), model.EntityUser, user.ID.String(), p.UserID, map[string]any{"email": user.Email})

	return ok(c, fiber.StatusCreated, "created", user.ToDTO())
}

type patchUserBody struct {
	FirstName *string         `json:"firstName"`
	LastName  *string         `json:"lastName"`
	Disabled  *bool           `json:"disabled"`
	Roles     []kernel.RoleID `json:"roles"`
}

func (h *userHandlers) patch(c *fiber.Ctx) error {
	p, err := requirePrincipal(c)
	if err != nil {
		return err
	}

	id := kernel.NewUserID(c.Params("id"))
	if !policy.CanReadSelfOrAdmin(p, id, model.ResourceUsers, model.ActionUpdate) {
		return forbidden(c, "not permitted")
	}

	user, err := h.users.FindByID(c.Context(), id)
	if err != nil {
		return fail(c, err)
	}
	if user.IsSystem() {
		return fail(c, userRegistry.New(ErrSystemUserModified))
	}

	var body patchUserBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	// Only an admin may change disabled/roles (spec.md §4.8: non-admin
	// self-write is limited to profile fields).
	isAdminCaller := p.IsUser() && p.User.IsAdmin()

	current := map[string]any{
		"firstName": user.FirstName,
		"lastName":  user.LastName,
		"disabled":  user.Disabled,
		"roles":     user.Roles,
	}
	patch := map[string]any{}
	if body.FirstName != nil {
		patch["firstName"] = *body.FirstName
	}
	if body.LastName != nil {
		patch["lastName"] = *body.LastName
	}
	if isAdminCaller {
		if body.Disabled != nil {
			patch["disabled"] = *body.Disabled
		}
		if body.Roles != nil {
			// spec.md §3: every user's role set logically contains Default.
			patch["roles"] = ensureDefaultRole(body.Roles)
		}
	}

	old, new, modified := audit.Diff(current, patch)
	if !modified {
		return ok(c, fiber.StatusOK, "No updates applied.", user.ToDTO())
	}
	if v, ok := new["firstName"]; ok {
		user.FirstName = v.(string)
	}
	if v, ok := new["lastName"]; ok {
		user.LastName = v.(string)
	}
	if v, ok := new["disabled"]; ok {
		user.Disabled = v.(bool)
	}
	if v, ok := new["roles"]; ok {
		user.Roles = v.([]kernel.RoleID)
	}

	if err := h.users.Replace(c.Context(), user); err != nil {
		return fail(c, err)
	}

	h.audit.LogUpdate(c.Context(), model.EntityUser, user.ID.String(), p.UserID, old, new)

	return ok(c, fiber.StatusOK, "updated", user.ToDTO())
}

// ensureDefaultRole implements spec.md §3's invariant that every user's
// role set logically contains the Default role.
func ensureDefaultRole(roles []kernel.RoleID) []kernel.RoleID {
	for _, r := range roles {
		if r == model.DefaultRoleID {
			return roles
		}
	}
	return append(append([]kernel.RoleID{}, roles...), model.DefaultRoleID)
}

// delete implements the user-delete cascade (spec.md §4.7 "Cascade"):
// owned OAuth applications (cascading further) then tokens by user_id,
// then the user document itself.
func (h *userHandlers) delete(c *fiber.Ctx) error {
	p, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	id := kernel.NewUserID(c.Params("id"))
	if !policy.CanReadSelfOrAdmin(p, id, model.ResourceUsers, model.ActionDelete) {
		return forbidden(c, "not permitted")
	}

	user, err := h.users.FindByID(c.Context(), id)
	if err != nil {
		return fail(c, err)
	}
	if user.IsSystem() {
		return fail(c, userRegistry.New(ErrSystemUserModified))
	}

	if err := h.oauth.DeleteUserCascade(c.Context(), id); err != nil {
		return fail(c, err)
	}
	if err := h.users.Delete(c.Context(), id); err != nil {
		return fail(c, err)
	}

	h.audit.LogDelete(c.Context(), model.EntityUser, id.String(), p.UserID)

	return ok(c, fiber.StatusOK, "deleted", nil)
}

func paginationFromQuery(c *fiber.Ctx) kernel.PaginationOptions {
	page := c.QueryInt("page", 1)
	size := c.QueryInt("pageSize", 20)
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 20
	}
	return kernel.PaginationOptions{Page: page, PageSize: size}
}
