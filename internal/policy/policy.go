// Package policy implements the Authorization policy component (spec.md
// §4.8): a decision function consulted by every handler, not a middleware.
package policy

import (
	"github.com/authcore/authcore/internal/model"
	"github.com/authcore/authcore/internal/principal"
	"github.com/authcore/authcore/pkg/kernel"
)

// IsAdmin implements `is_admin(user) := user.id = system-user-sentinel ∨
// admin-role-sentinel ∈ user.roles`.
func IsAdmin(u *model.User) bool {
	return u.IsAdmin()
}

// IsSystem implements `is_system(user) := user.id = system-user-sentinel`.
func IsSystem(u *model.User) bool {
	return u.IsSystem()
}

// CanReadSelfOrAdmin implements the §4.8 predicate: true for a user
// principal iff it matches the target or is admin; for a token principal
// iff user_id = target and the token holds the required resource-scope.
func CanReadSelfOrAdmin(p *principal.Principal, targetUserID kernel.UserID, resource model.Resource, action model.Action) bool {
	switch p.Kind {
	case principal.KindUser:
		return p.User.ID == targetUserID || p.User.IsAdmin()
	case principal.KindToken:
		if p.Token.UserID != targetUserID {
			return false
		}
		scopes, err := p.Token.ParsedScope()
		if err != nil {
			return false
		}
		return model.HasAny(scopes, resource, action)
	default:
		return false
	}
}

// TokenHasScope is the standalone scope check §4.8 mandates on every
// resource endpoint for token principals.
func TokenHasScope(p *principal.Principal, resource model.Resource, action model.Action) bool {
	if p.Kind != principal.KindToken {
		return false
	}
	scopes, err := p.Token.ParsedScope()
	if err != nil {
		return false
	}
	return model.HasAny(scopes, resource, action)
}

// CanWriteOwnerOrAdmin covers the owner-or-admin write pattern used by
// OAuth applications and passkeys (§6's endpoint table): only a user
// principal may write, and only if they own the resource or are admin.
func CanWriteOwnerOrAdmin(p *principal.Principal, ownerID kernel.UserID) bool {
	return p.Kind == principal.KindUser && (p.User.ID == ownerID || p.User.IsAdmin())
}

// CanAuthorizeOAuth implements the precondition in §4.7's Authorize:
// caller is a user principal, not disabled, not the system user.
func CanAuthorizeOAuth(p *principal.Principal) bool {
	return p.Kind == principal.KindUser && !p.User.Disabled && !p.User.IsSystem()
}
