package model

import (
	"fmt"
	"strings"

	"github.com/authcore/authcore/pkg/errx"
)

// Resource is a scopeable resource kind (spec.md §4.6).
type Resource string

const (
	ResourceUsers             Resource = "user"
	ResourceRoles             Resource = "roles"
	ResourceAuditLogs         Resource = "audit-logs"
	ResourceConnections       Resource = "connections"
	ResourceOAuthApplications Resource = "oauth-applications"
)

// Action is a scopeable action kind; All ("*") is not wildcard-expanded at
// check time — §4.6 is explicit that handlers test for either (R, A) or
// (R, All) as required.
type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionAll    Action = "*"
)

var scopeRegistry = errx.NewRegistry("SCOPE")

var ErrInvalidScope = scopeRegistry.Register("INVALID_FORMAT", errx.TypeValidation, 400, "invalid scope format")

// Scope is a (resource, action) pair.
type Scope struct {
	Resource Resource
	Action   Action
}

// String renders the scope as "<resource>:<action>", using "*" for All.
func (s Scope) String() string {
	if s.Action == ActionAll {
		return fmt.Sprintf("%s:*", s.Resource)
	}
	return fmt.Sprintf("%s:%s", s.Resource, s.Action)
}

// ParseScope parses "<resource>:<action>"; an unknown resource or action
// fails hard, per §4.6 "Deserialization of an unknown resource or action
// fails hard."
func ParseScope(s string) (Scope, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return Scope{}, scopeRegistry.New(ErrInvalidScope).WithDetail("scope", s)
	}

	resource := Resource(parts[0])
	switch resource {
	case ResourceUsers, ResourceRoles, ResourceAuditLogs, ResourceConnections, ResourceOAuthApplications:
	default:
		return Scope{}, scopeRegistry.New(ErrInvalidScope).WithDetail("resource", parts[0])
	}

	action := Action(parts[1])
	if action == "*" {
		action = ActionAll
	}
	switch action {
	case ActionCreate, ActionRead, ActionUpdate, ActionDelete, ActionAll:
	default:
		return Scope{}, scopeRegistry.New(ErrInvalidScope).WithDetail("action", parts[1])
	}

	return Scope{Resource: resource, Action: action}, nil
}

// ParseScopeList parses a list of scope strings, failing on the first
// invalid entry.
func ParseScopeList(ss []string) ([]Scope, error) {
	out := make([]Scope, 0, len(ss))
	for _, s := range ss {
		sc, err := ParseScope(s)
		if err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, nil
}

// FormatScopeList renders scopes back to their string form.
func FormatScopeList(scopes []Scope) []string {
	out := make([]string, len(scopes))
	for i, s := range scopes {
		out[i] = s.String()
	}
	return out
}

// Has reports exact membership: the scope list contains exactly (resource,
// action). Per §4.6, Action All is never expanded here — callers test for
// both (R, A) and (R, All) explicitly when either should satisfy a check.
func Has(scopes []Scope, resource Resource, action Action) bool {
	for _, s := range scopes {
		if s.Resource == resource && s.Action == action {
			return true
		}
	}
	return false
}

// HasAny reports whether the scope list grants any of (resource, action)
// or (resource, All) — the common "read|* " / "update|*" endpoint pattern
// from §6's endpoint table.
func HasAny(scopes []Scope, resource Resource, action Action) bool {
	return Has(scopes, resource, action) || Has(scopes, resource, ActionAll)
}
