package model

import (
	"time"

	"github.com/authcore/authcore/pkg/kernel"
)

// Role is a named, possibly-system, grouping of users (spec.md §3 "Role").
type Role struct {
	ID        kernel.RoleID `bson:"_id" json:"id"`
	Name      string        `bson:"name" json:"name"`
	System    bool          `bson:"system" json:"system"`
	CreatedAt time.Time     `bson:"created_at" json:"createdAt"`
}

// NewRole builds a fresh, non-system role.
func NewRole(id kernel.RoleID, name string) *Role {
	return &Role{ID: id, Name: name, System: false, CreatedAt: time.Now().UTC()}
}

// NewSystemRole builds one of the two sentinel roles.
func NewSystemRole(id kernel.RoleID, name string) *Role {
	return &Role{ID: id, Name: name, System: true, CreatedAt: time.Now().UTC()}
}
