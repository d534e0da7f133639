package model

import (
	"time"

	"github.com/authcore/authcore/pkg/kernel"
)

// EntityType tags which kind of entity an audit entry describes.
// spec.md §3 extends the original three (User, Role, OAuthApplication)
// with RegistrationToken, Passkey, and Settings.
type EntityType string

const (
	EntityUser              EntityType = "User"
	EntityRole              EntityType = "Role"
	EntityOAuthApplication   EntityType = "OAuthApplication"
	EntityRegistrationToken  EntityType = "RegistrationToken"
	EntityPasskey            EntityType = "Passkey"
	EntitySettings           EntityType = "Settings"
)

// Collection returns the `<type>-logs` Mongo collection name for this
// entity type (spec.md §6 "a logs database holding one append-only
// collection per audit-log entity type (suffix -logs)").
func (e EntityType) Collection() string {
	switch e {
	case EntityUser:
		return "user-logs"
	case EntityRole:
		return "role-logs"
	case EntityOAuthApplication:
		return "oauth-application-logs"
	case EntityRegistrationToken:
		return "registration-token-logs"
	case EntityPasskey:
		return "passkey-logs"
	case EntitySettings:
		return "settings-logs"
	default:
		return "unknown-logs"
	}
}

var AllEntityTypes = []EntityType{
	EntityUser, EntityRole, EntityOAuthApplication,
	EntityRegistrationToken, EntityPasskey, EntitySettings,
}

// Audit actions tag what happened to the entity; they share the Action
// string type declared in scope.go. Login is a supplement over the
// original source's three-value enum (spec.md §3, §8 property 11).
const (
	ActionCreateLog Action = "Create"
	ActionUpdateLog Action = "Update"
	ActionLoginLog  Action = "Login"
	ActionDeleteLog Action = "Delete"
)

// AuditLog is one append-only entry (spec.md §3 "AuditLog").
type AuditLog struct {
	ID         string          `bson:"_id" json:"id"`
	EntityID   string          `bson:"entity_id" json:"entityId"`
	EntityType EntityType      `bson:"entity_type" json:"entityType"`
	Action     Action          `bson:"action" json:"action"`
	Reason     string          `bson:"reason" json:"reason"`
	AuthorID   kernel.UserID   `bson:"author_id" json:"authorId"`
	OldValues  map[string]any  `bson:"old_values,omitempty" json:"oldValues,omitempty"`
	NewValues  map[string]any  `bson:"new_values,omitempty" json:"newValues,omitempty"`
	CreatedAt  time.Time       `bson:"created_at" json:"createdAt"`
}
